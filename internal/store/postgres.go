package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/relaylabs/chatrelay/internal/models"
)

// PostgresStore handles PostgreSQL database operations.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL store with a connection pool.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, err
	}

	store := &PostgresStore{pool: pool}

	if err := store.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return store, nil
}

// initSchema creates tables if they don't exist. Safe to run repeatedly.
func (s *PostgresStore) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS messages (
		id BIGSERIAL PRIMARY KEY,
		"user" TEXT NOT NULL,
		room TEXT NOT NULL,
		text TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'user',
		ts TIMESTAMPTZ NOT NULL DEFAULT now()
	);

	CREATE INDEX IF NOT EXISTS idx_messages_room ON messages(room, id);
	`

	_, err := s.pool.Exec(ctx, schema)
	return err
}

// Close closes the database connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Ping checks the database connection.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Append inserts a message and returns it with its assigned id and
// timestamp.
func (s *PostgresStore) Append(ctx context.Context, user, room, text, role string) (*models.Message, error) {
	msg := &models.Message{
		User: models.NormalizeUser(user),
		Room: models.NormalizeRoom(room),
		Text: text,
		Role: models.NormalizeRole(role),
	}

	err := s.pool.QueryRow(ctx, `
		INSERT INTO messages ("user", room, text, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id, ts
	`, msg.User, msg.Room, msg.Text, msg.Role).Scan(&msg.ID, &msg.Timestamp)
	if err != nil {
		return nil, err
	}
	return msg, nil
}

// Recent returns up to limit most recent messages for a room, oldest first.
func (s *PostgresStore) Recent(ctx context.Context, room string, limit int) ([]models.Message, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, "user", room, text, role, ts
		FROM messages
		WHERE room = $1
		ORDER BY id DESC
		LIMIT $2
	`, room, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		var msg models.Message
		if err := rows.Scan(&msg.ID, &msg.User, &msg.Room, &msg.Text, &msg.Role, &msg.Timestamp); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}
