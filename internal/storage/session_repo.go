package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"scripture-journey/internal/journey"
)

// SessionStore defines the interface for guided session storage operations.
type SessionStore interface {
	// List returns every session with its messages, ordered by creation time.
	List(ctx context.Context) ([]journey.GuidedSession, error)
	// Upsert inserts or replaces a session together with all of its messages.
	Upsert(ctx context.Context, session *journey.GuidedSession) error
	// Delete removes a session and its messages. Returns ErrNotFound if it does not exist.
	Delete(ctx context.Context, id string) error
}

// SessionRepo stores guided study sessions and their messages.
// It implements the SessionStore interface.
type SessionRepo struct {
	db *sql.DB
}

// NewSessionRepo creates a new SessionRepo.
func NewSessionRepo(db *sql.DB) *SessionRepo {
	return &SessionRepo{db: db}
}

// List returns every session ordered by created_at, then id.
// Messages keep the order they were written in.
func (r *SessionRepo) List(ctx context.Context) ([]journey.GuidedSession, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, scripture_id, book_name, chapter, verse_start, verse_end, title, text_name, created_at, updated_at
		 FROM guided_sessions ORDER BY created_at, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	sessions := []journey.GuidedSession{}
	index := make(map[string]int)
	for rows.Next() {
		var s journey.GuidedSession
		var verseStart, verseEnd sql.NullInt64
		var createdAt, updatedAt string
		if err := rows.Scan(&s.ID, &s.ScriptureID, &s.BookName, &s.Chapter, &verseStart, &verseEnd, &s.Title, &s.TextName, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		s.VerseStart = nullIntPtr(verseStart)
		s.VerseEnd = nullIntPtr(verseEnd)
		if s.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse created_at for session %s: %w", s.ID, err)
		}
		if s.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return nil, fmt.Errorf("failed to parse updated_at for session %s: %w", s.ID, err)
		}
		index[s.ID] = len(sessions)
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	if err := r.attachMessages(ctx, sessions, index); err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *SessionRepo) attachMessages(ctx context.Context, sessions []journey.GuidedSession, index map[string]int) error {
	rows, err := r.db.QueryContext(ctx,
		"SELECT session_id, role, content, created_at FROM session_messages ORDER BY session_id, position",
	)
	if err != nil {
		return fmt.Errorf("failed to query session messages: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	for rows.Next() {
		var sessionID, createdAt string
		var msg journey.SessionMessage
		if err := rows.Scan(&sessionID, &msg.Role, &msg.Content, &createdAt); err != nil {
			return fmt.Errorf("failed to scan session message: %w", err)
		}
		if msg.CreatedAt, err = parseTime(createdAt); err != nil {
			return fmt.Errorf("failed to parse message created_at for session %s: %w", sessionID, err)
		}
		i, ok := index[sessionID]
		if !ok {
			continue
		}
		sessions[i].Messages = append(sessions[i].Messages, msg)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("row iteration error: %w", err)
	}
	return nil
}

// Upsert writes a session and replaces its messages in one transaction.
// A session without an ID gets a fresh UUID.
func (r *SessionRepo) Upsert(ctx context.Context, session *journey.GuidedSession) error {
	if session.ID == "" {
		session.ID = uuid.New().String()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO guided_sessions (id, scripture_id, book_name, chapter, verse_start, verse_end, title, text_name, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		 scripture_id = excluded.scripture_id, book_name = excluded.book_name, chapter = excluded.chapter,
		 verse_start = excluded.verse_start, verse_end = excluded.verse_end, title = excluded.title,
		 text_name = excluded.text_name, created_at = excluded.created_at, updated_at = excluded.updated_at`,
		session.ID, session.ScriptureID, session.BookName, session.Chapter,
		intPtrValue(session.VerseStart), intPtrValue(session.VerseEnd),
		session.Title, session.TextName, formatTime(session.CreatedAt), formatTime(session.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert session: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM session_messages WHERE session_id = ?", session.ID); err != nil {
		return fmt.Errorf("failed to clear session messages: %w", err)
	}
	for i, msg := range session.Messages {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO session_messages (session_id, position, role, content, created_at) VALUES (?, ?, ?, ?, ?)",
			session.ID, i, msg.Role, msg.Content, formatTime(msg.CreatedAt),
		)
		if err != nil {
			return fmt.Errorf("failed to insert session message: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit session: %w", err)
	}
	return nil
}

// Delete removes a session by ID; its messages cascade.
func (r *SessionRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM guided_sessions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return requireAffected(res)
}

func nullIntPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}

func intPtrValue(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}
