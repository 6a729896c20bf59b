package store

import (
	"context"

	"github.com/relaylabs/chatrelay/internal/models"
)

// MessageStore defines the interface for the append-only message log.
// Both SQLiteStore and PostgresStore implement this interface.
type MessageStore interface {
	// Close releases the underlying connection(s).
	Close()
	// Ping checks the backend connection.
	Ping(ctx context.Context) error

	// Append stores a message, assigning its id and timestamp. Empty user,
	// room, and role fall back to their defaults. There is no update or
	// delete.
	Append(ctx context.Context, user, room, text, role string) (*models.Message, error)

	// Recent returns up to limit of the most recent messages for a room in
	// chronological (oldest-first) order.
	Recent(ctx context.Context, room string, limit int) ([]models.Message, error)
}
