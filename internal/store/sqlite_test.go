package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/relaylabs/chatrelay/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(context.Background(), filepath.Join(t.TempDir(), "chat.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(s.Close)
	return s
}

func TestAppendAssignsIncreasingIDs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	var last int64
	for _, text := range []string{"one", "two", "three"} {
		msg, err := s.Append(ctx, "john", "default", text, models.RoleUser)
		if err != nil {
			t.Fatal(err)
		}
		if msg.ID <= last {
			t.Fatalf("ids must increase: got %d after %d", msg.ID, last)
		}
		last = msg.ID
	}
}

func TestAppendNormalizesDefaults(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	msg, err := s.Append(ctx, "", "", "text", "")
	if err != nil {
		t.Fatal(err)
	}
	if msg.User != models.AnonymousUser {
		t.Fatalf("expected %q, got %q", models.AnonymousUser, msg.User)
	}
	if msg.Room != models.DefaultRoom {
		t.Fatalf("expected %q, got %q", models.DefaultRoom, msg.Room)
	}
	if msg.Role != models.RoleUser {
		t.Fatalf("expected %q, got %q", models.RoleUser, msg.Role)
	}

	ai, err := s.Append(ctx, "mock-ai", "default", "reply", models.RoleAI)
	if err != nil {
		t.Fatal(err)
	}
	if ai.Role != models.RoleAI {
		t.Fatalf("expected %q, got %q", models.RoleAI, ai.Role)
	}
}

func TestRecentChronologicalOrderAndLimit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, text := range []string{"a", "b", "c", "d", "e"} {
		if _, err := s.Append(ctx, "john", "default", text, models.RoleUser); err != nil {
			t.Fatal(err)
		}
	}

	msgs, err := s.Recent(ctx, "default", 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(msgs))
	}
	// Most recent 3, oldest first.
	for i, want := range []string{"c", "d", "e"} {
		if msgs[i].Text != want {
			t.Fatalf("position %d: expected %q, got %q", i, want, msgs[i].Text)
		}
	}
	for i := 1; i < len(msgs); i++ {
		if msgs[i].ID <= msgs[i-1].ID {
			t.Fatalf("ids out of order: %d before %d", msgs[i-1].ID, msgs[i].ID)
		}
	}
}

func TestRecentIsScopedByRoom(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.Append(ctx, "ana", "alpha", "in alpha", models.RoleUser); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Append(ctx, "ben", "beta", "in beta", models.RoleUser); err != nil {
		t.Fatal(err)
	}

	msgs, err := s.Recent(ctx, "alpha", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 1 || msgs[0].Text != "in alpha" {
		t.Fatalf("expected only alpha messages, got %+v", msgs)
	}
}

func TestRecentEmptyRoom(t *testing.T) {
	s := newTestStore(t)

	msgs, err := s.Recent(context.Background(), "nowhere", 20)
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 0 {
		t.Fatalf("expected no messages, got %d", len(msgs))
	}
}

func TestReopenIsIdempotentAndKeepsData(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chat.db")
	ctx := context.Background()

	s1, err := NewSQLiteStore(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s1.Append(ctx, "john", "default", "persisted", models.RoleUser); err != nil {
		t.Fatal(err)
	}
	s1.Close()

	// Schema creation runs again on the same file.
	s2, err := NewSQLiteStore(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()

	msgs, err := s2.Recent(ctx, "default", 20)
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 1 || msgs[0].Text != "persisted" {
		t.Fatalf("expected surviving message, got %+v", msgs)
	}
}
