package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ayusman/aura/internal/detector"
)

// Frame is one stored detection result.
type Frame struct {
	Sequence  int
	Timestamp time.Duration
	Hands     []detector.HandLandmarks
}

// FrameRepository stores the frames of a session.
type FrameRepository struct {
	db *sql.DB
}

// Frames returns the frame repository for this store.
func (s *Store) Frames() *FrameRepository {
	return &FrameRepository{db: s.db}
}

// Append inserts frames for a session in a single transaction.
func (r *FrameRepository) Append(sessionID string, frames []Frame) error {
	if len(frames) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT INTO session_frames (session_id, sequence, timestamp_ms, hands) VALUES (?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, f := range frames {
		hands := f.Hands
		if hands == nil {
			hands = []detector.HandLandmarks{}
		}
		data, err := json.Marshal(hands)
		if err != nil {
			return fmt.Errorf("encode frame %d: %w", f.Sequence, err)
		}
		if _, err := stmt.Exec(sessionID, f.Sequence, f.Timestamp.Milliseconds(), string(data)); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// List returns the frames of a session in sequence order.
func (r *FrameRepository) List(sessionID string) ([]Frame, error) {
	rows, err := r.db.Query(
		`SELECT sequence, timestamp_ms, hands
		 FROM session_frames
		 WHERE session_id = ?
		 ORDER BY sequence`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var frames []Frame
	for rows.Next() {
		var f Frame
		var ts int64
		var data string
		if err := rows.Scan(&f.Sequence, &ts, &data); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(data), &f.Hands); err != nil {
			return nil, fmt.Errorf("decode frame %d: %w", f.Sequence, err)
		}
		f.Timestamp = time.Duration(ts) * time.Millisecond
		frames = append(frames, f)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return frames, nil
}

// Count returns how many frames a session holds.
func (r *FrameRepository) Count(sessionID string) (int, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM session_frames WHERE session_id = ?`, sessionID).Scan(&n)
	return n, err
}
