// Package audit records authentication events (registrations, logins,
// and their failures) for offline review. Auditing is best-effort: a
// failed insert is logged by the caller but never fails the request.
package audit

import (
	"context"
	"database/sql"
	"time"
)

// Event kinds.
const (
	KindRegister = "register"
	KindLogin    = "login"
)

// Event is one recorded authentication attempt.
type Event struct {
	// Kind is one of the Kind* constants.
	Kind string

	// UserID is the resolved user id, zero when the attempt never
	// matched an account.
	UserID int

	// Subject is the identifier presented by the caller (email or
	// username), kept even for failed attempts.
	Subject string

	// ClientIP is the remote address of the caller.
	ClientIP string

	// Success reports whether the attempt succeeded.
	Success bool
}

// Store persists audit events.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Record inserts one audit event.
func (s *Store) Record(ctx context.Context, event Event) error {
	const query = `
		INSERT INTO audit_events (kind, user_id, subject, client_ip, success, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	var userID any
	if event.UserID > 0 {
		userID = event.UserID
	}
	_, err := s.db.ExecContext(
		ctx,
		query,
		event.Kind,
		userID,
		event.Subject,
		event.ClientIP,
		event.Success,
		time.Now(),
	)
	return err
}
