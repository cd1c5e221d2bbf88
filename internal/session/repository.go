package session

import (
	"context"
	"database/sql"
	"time"
)

type Repository interface {
	CreateSession(ctx context.Context, s *Session) error
	GetSession(ctx context.Context, id string) (*Session, error)
	ListSessions(ctx context.Context) ([]*Session, error)
	UpdateSession(ctx context.Context, s *Session) error
	DeleteSession(ctx context.Context, id string) error

	SaveSnapshot(ctx context.Context, sessionID string, doc []byte, savedAt time.Time) error
	GetSnapshot(ctx context.Context, sessionID string) ([]byte, error)
	DeleteSnapshot(ctx context.Context, sessionID string) error

	GetConfig(ctx context.Context, key string) (string, error)
	SetConfig(ctx context.Context, key, value string) error
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) CreateSession(ctx context.Context, s *Session) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sessions (id, name, video_url, duration_s, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, s.ID, s.Name, nullString(s.VideoURL), s.Duration,
		s.CreatedAt.Format(time.RFC3339), s.UpdatedAt.Format(time.RFC3339))
	return err
}

func (r *SQLiteRepository) GetSession(ctx context.Context, id string) (*Session, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, video_url, duration_s, created_at, updated_at
		FROM sessions WHERE id = ?
	`, id)
	return r.scanSession(row)
}

func (r *SQLiteRepository) scanSession(row *sql.Row) (*Session, error) {
	var s Session
	var videoURL sql.NullString
	var createdAt, updatedAt string

	err := row.Scan(&s.ID, &s.Name, &videoURL, &s.Duration, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	s.VideoURL = videoURL.String
	s.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	s.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &s, nil
}

func (r *SQLiteRepository) ListSessions(ctx context.Context) ([]*Session, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, video_url, duration_s, created_at, updated_at
		FROM sessions ORDER BY updated_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		var s Session
		var videoURL sql.NullString
		var createdAt, updatedAt string

		if err := rows.Scan(&s.ID, &s.Name, &videoURL, &s.Duration, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		s.VideoURL = videoURL.String
		s.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		s.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		sessions = append(sessions, &s)
	}
	return sessions, rows.Err()
}

func (r *SQLiteRepository) UpdateSession(ctx context.Context, s *Session) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE sessions SET name = ?, video_url = ?, duration_s = ?, updated_at = ?
		WHERE id = ?
	`, s.Name, nullString(s.VideoURL), s.Duration, s.UpdatedAt.Format(time.RFC3339), s.ID)
	return err
}

func (r *SQLiteRepository) DeleteSession(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", id)
	return err
}

// SaveSnapshot keeps a single document per session; a newer save replaces
// the previous one in place.
func (r *SQLiteRepository) SaveSnapshot(ctx context.Context, sessionID string, doc []byte, savedAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO snapshots (session_id, doc, saved_at) VALUES (?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			doc = excluded.doc,
			saved_at = excluded.saved_at
	`, sessionID, string(doc), savedAt.Format(time.RFC3339))
	return err
}

func (r *SQLiteRepository) GetSnapshot(ctx context.Context, sessionID string) ([]byte, error) {
	var doc string
	err := r.db.QueryRowContext(ctx, "SELECT doc FROM snapshots WHERE session_id = ?", sessionID).Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return []byte(doc), nil
}

func (r *SQLiteRepository) DeleteSnapshot(ctx context.Context, sessionID string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM snapshots WHERE session_id = ?", sessionID)
	return err
}

func (r *SQLiteRepository) GetConfig(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, "SELECT value FROM config WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

func (r *SQLiteRepository) SetConfig(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO config (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
