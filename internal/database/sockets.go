package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrUserNotFound is returned when no user row matches the user code.
var ErrUserNotFound = errors.New("user not found")

// execer is the subset of *pgxpool.Pool used by SocketStore.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

var _ execer = (*pgxpool.Pool)(nil)

const (
	registerSocketSQL = `UPDATE users SET socket_id = $1 WHERE user_code = $2`
	clearSocketSQL    = `UPDATE users SET socket_id = NULL WHERE user_code = $1 AND socket_id = $2`
)

// SocketStore records which realtime socket belongs to which user.
type SocketStore struct {
	db     execer
	logger *slog.Logger
}

// NewSocketStore creates a store on db, typically a *pgxpool.Pool.
func NewSocketStore(db execer, logger *slog.Logger) *SocketStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &SocketStore{db: db, logger: logger}
}

// RegisterSocketID stores socketID on the user's row.
func (s *SocketStore) RegisterSocketID(ctx context.Context, userCode int, socketID string) error {
	if socketID == "" {
		return errors.New("register socket id: empty socket id")
	}

	tag, err := s.db.Exec(ctx, registerSocketSQL, socketID, userCode)
	if err != nil {
		return fmt.Errorf("register socket id: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("register socket id for user %d: %w", userCode, ErrUserNotFound)
	}

	s.logger.Info("socket id registered", "user_code", userCode, "socket_id", socketID)
	return nil
}

// ClearSocketID removes socketID from the user's row. A row that already
// holds a newer socket ID is left alone.
func (s *SocketStore) ClearSocketID(ctx context.Context, userCode int, socketID string) error {
	tag, err := s.db.Exec(ctx, clearSocketSQL, userCode, socketID)
	if err != nil {
		return fmt.Errorf("clear socket id: %w", err)
	}

	s.logger.Debug("socket id cleared", "user_code", userCode, "rows", tag.RowsAffected())
	return nil
}
