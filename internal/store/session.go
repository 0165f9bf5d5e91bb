package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// Session is one recorded run of landmark detections.
type Session struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Frames    int           `json:"frames"`
	Duration  time.Duration `json:"duration"`
	CreatedAt time.Time     `json:"created_at"`
}

// SessionRepository provides CRUD operations for sessions.
type SessionRepository struct {
	db *sql.DB
}

// Sessions returns the session repository for this store.
func (s *Store) Sessions() *SessionRepository {
	return &SessionRepository{db: s.db}
}

// Create inserts a new session. An empty ID is filled with a new UUID.
func (r *SessionRepository) Create(sess *Session) error {
	if sess.ID == "" {
		sess.ID = uuid.New().String()
	}
	sess.CreatedAt = time.Now()

	_, err := r.db.Exec(
		`INSERT INTO sessions (id, name, frames, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		sess.ID, sess.Name, sess.Frames, sess.Duration.Milliseconds(), sess.CreatedAt,
	)
	return err
}

// GetByID retrieves a session by its ID.
func (r *SessionRepository) GetByID(id string) (*Session, error) {
	sess := &Session{}
	var durationMs int64

	err := r.db.QueryRow(
		`SELECT id, name, frames, duration_ms, created_at
		 FROM sessions WHERE id = ?`,
		id,
	).Scan(&sess.ID, &sess.Name, &sess.Frames, &durationMs, &sess.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	sess.Duration = time.Duration(durationMs) * time.Millisecond
	return sess, nil
}

// List returns all sessions, newest first.
func (r *SessionRepository) List() ([]*Session, error) {
	rows, err := r.db.Query(
		`SELECT id, name, frames, duration_ms, created_at
		 FROM sessions ORDER BY created_at DESC, rowid DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		sess := &Session{}
		var durationMs int64
		if err := rows.Scan(&sess.ID, &sess.Name, &sess.Frames, &durationMs, &sess.CreatedAt); err != nil {
			return nil, err
		}
		sess.Duration = time.Duration(durationMs) * time.Millisecond
		sessions = append(sessions, sess)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sessions, nil
}

// Finish stores the final frame count and duration of a session.
func (r *SessionRepository) Finish(id string, frames int, duration time.Duration) error {
	result, err := r.db.Exec(
		`UPDATE sessions SET frames = ?, duration_ms = ? WHERE id = ?`,
		frames, duration.Milliseconds(), id,
	)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// Delete removes a session and, by cascade, its frames.
func (r *SessionRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(result)
}

func requireRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
