package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"room-chat-service/internal/models"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionRepository records connection lifecycles. It never stores message
// bodies.
type SessionRepository interface {
	OpenSession(ctx context.Context, socketID, ip string, connectedAt time.Time) error
	BindUsername(ctx context.Context, socketID, username string) error
	SetRoom(ctx context.Context, socketID string, roomID *string) error
	CloseSession(ctx context.Context, socketID, reason string) error
	RecentSessions(ctx context.Context, limit int) ([]models.Session, error)
}

// SessionRepo is a sqlx-backed implementation.
type SessionRepo struct {
	db *sqlx.DB
}

// NewSessionRepo constructs a SessionRepo.
func NewSessionRepo(db *sqlx.DB) *SessionRepo {
	return &SessionRepo{db: db}
}

// OpenSession inserts a row for a freshly accepted connection.
func (r *SessionRepo) OpenSession(ctx context.Context, socketID, ip string, connectedAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO ws_sessions (socket_id, ip, connected_at) VALUES ($1, $2, $3)`, socketID, ip, connectedAt)
	return err
}

// BindUsername stores the username once it has been accepted.
func (r *SessionRepo) BindUsername(ctx context.Context, socketID, username string) error {
	return r.update(ctx, `UPDATE ws_sessions SET username=$2 WHERE socket_id=$1 AND username IS NULL`, socketID, username)
}

// SetRoom records the room the connection currently sits in; nil clears it.
func (r *SessionRepo) SetRoom(ctx context.Context, socketID string, roomID *string) error {
	return r.update(ctx, `UPDATE ws_sessions SET room_id=$2 WHERE socket_id=$1`, socketID, roomID)
}

// CloseSession stamps the disconnect time and reason.
func (r *SessionRepo) CloseSession(ctx context.Context, socketID, reason string) error {
	return r.update(ctx, `UPDATE ws_sessions SET disconnected_at=NOW(), close_reason=$2 WHERE socket_id=$1 AND disconnected_at IS NULL`, socketID, reason)
}

// RecentSessions returns the newest sessions first.
func (r *SessionRepo) RecentSessions(ctx context.Context, limit int) ([]models.Session, error) {
	var sessions []models.Session
	err := r.db.SelectContext(ctx, &sessions, `SELECT id, socket_id, username, room_id, ip, connected_at, disconnected_at, close_reason FROM ws_sessions ORDER BY connected_at DESC LIMIT $1`, limit)
	return sessions, err
}

func (r *SessionRepo) update(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// NopSessionRepo is used when no database is configured.
type NopSessionRepo struct{}

func (NopSessionRepo) OpenSession(context.Context, string, string, time.Time) error { return nil }
func (NopSessionRepo) BindUsername(context.Context, string, string) error          { return nil }
func (NopSessionRepo) SetRoom(context.Context, string, *string) error              { return nil }
func (NopSessionRepo) CloseSession(context.Context, string, string) error          { return nil }
func (NopSessionRepo) RecentSessions(context.Context, int) ([]models.Session, error) {
	return []models.Session{}, nil
}
