package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"scripture-journey/internal/journey"
)

var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")
)

// RecordStore defines the interface for journey record storage operations.
type RecordStore interface {
	// List returns every record ordered by creation time.
	List(ctx context.Context) ([]journey.JourneyRecord, error)
	// Upsert inserts a new record or replaces an existing one with the same ID.
	Upsert(ctx context.Context, rec *journey.JourneyRecord) error
	// Delete removes a record. Returns ErrNotFound if it does not exist.
	Delete(ctx context.Context, id string) error
}

// RecordRepo stores highlights, notes and bookmarks.
// It implements the RecordStore interface.
type RecordRepo struct {
	db *sql.DB
}

// NewRecordRepo creates a new RecordRepo.
func NewRecordRepo(db *sql.DB) *RecordRepo {
	return &RecordRepo{db: db}
}

// List returns every record ordered by created_at, then id.
func (r *RecordRepo) List(ctx context.Context) ([]journey.JourneyRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, type, verse_id, reference, text, note, tags, text_name, created_at
		 FROM journey_records ORDER BY created_at, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	records := []journey.JourneyRecord{}
	for rows.Next() {
		var rec journey.JourneyRecord
		var tags, createdAt string
		if err := rows.Scan(&rec.ID, &rec.Type, &rec.VerseID, &rec.Reference, &rec.Text, &rec.Note, &tags, &rec.TextName, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		if err := json.Unmarshal([]byte(tags), &rec.Tags); err != nil {
			return nil, fmt.Errorf("failed to decode tags for record %s: %w", rec.ID, err)
		}
		if len(rec.Tags) == 0 {
			rec.Tags = nil
		}
		if rec.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse created_at for record %s: %w", rec.ID, err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return records, nil
}

// Upsert inserts a new record or replaces an existing one.
// A record without an ID gets a fresh UUID.
func (r *RecordRepo) Upsert(ctx context.Context, rec *journey.JourneyRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}

	tags := rec.Tags
	if tags == nil {
		tags = []string{}
	}
	encoded, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("failed to encode tags: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO journey_records (id, type, verse_id, reference, text, note, tags, text_name, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		 type = excluded.type, verse_id = excluded.verse_id, reference = excluded.reference,
		 text = excluded.text, note = excluded.note, tags = excluded.tags,
		 text_name = excluded.text_name, created_at = excluded.created_at`,
		rec.ID, rec.Type, rec.VerseID, rec.Reference, rec.Text, rec.Note, string(encoded), rec.TextName, formatTime(rec.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert record: %w", err)
	}

	return nil
}

// Delete removes a record by ID.
func (r *RecordRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM journey_records WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
