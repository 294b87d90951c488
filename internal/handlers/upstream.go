package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"scripture-journey/internal/contextutil"
	"scripture-journey/internal/journey"
	"scripture-journey/internal/scripture"
	"scripture-journey/internal/service"
)

// RecordPayload is the wire form of a highlight, note or bookmark.
type RecordPayload struct {
	ID        string     `json:"id"`
	Type      string     `json:"type"`
	VerseID   string     `json:"verseId"`
	Reference string     `json:"reference"`
	Text      string     `json:"text"`
	Note      string     `json:"note"`
	Tags      []string   `json:"tags"`
	TextName  string     `json:"textName"`
	CreatedAt *time.Time `json:"createdAt"`
}

// SessionMessagePayload is one turn of a stored guided session.
type SessionMessagePayload struct {
	Role      string     `json:"role"`
	Content   string     `json:"content"`
	CreatedAt *time.Time `json:"createdAt"`
}

// SessionPayload is the wire form of a guided session.
type SessionPayload struct {
	ID          string                  `json:"id"`
	ScriptureID string                  `json:"scriptureId"`
	BookName    string                  `json:"bookName"`
	Chapter     int                     `json:"chapter"`
	VerseStart  *int                    `json:"verseStart"`
	VerseEnd    *int                    `json:"verseEnd"`
	Title       string                  `json:"title"`
	TextName    string                  `json:"textName"`
	Messages    []SessionMessagePayload `json:"messages"`
	CreatedAt   *time.Time              `json:"createdAt"`
	UpdatedAt   *time.Time              `json:"updatedAt"`
}

func (h *JourneyHandler) putRecord(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var payload RecordPayload
	if !decodeBody(w, r, &payload) {
		return
	}
	payload.ID = chi.URLParam(r, "id")
	if err := payload.validate(); err != nil {
		writeRequestError(w, r, err)
		return
	}

	now := h.now()
	rec := journey.JourneyRecord{
		ID:        payload.ID,
		Type:      payload.Type,
		VerseID:   payload.VerseID,
		Reference: payload.Reference,
		Text:      payload.Text,
		Note:      payload.Note,
		Tags:      payload.Tags,
		TextName:  payload.TextName,
		CreatedAt: timeOr(payload.CreatedAt, now),
	}
	if err := h.records.Upsert(ctx, &rec); err != nil {
		writeRequestError(w, r, storageError(err, "Record"))
		return
	}
	h.feed.Notify(journey.SourceRecords)

	contextutil.LoggerFromContext(ctx).InfoContext(ctx, "journey record saved", "id", rec.ID, "type", rec.Type)
	payload.CreatedAt = &rec.CreatedAt
	writeJSON(ctx, w, http.StatusAccepted, payload)
}

func (h *JourneyHandler) deleteRecord(w http.ResponseWriter, r *http.Request) {
	if err := h.records.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeRequestError(w, r, storageError(err, "Record"))
		return
	}
	h.feed.Notify(journey.SourceRecords)
	w.WriteHeader(http.StatusNoContent)
}

func (h *JourneyHandler) putSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var payload SessionPayload
	if !decodeBody(w, r, &payload) {
		return
	}
	payload.ID = chi.URLParam(r, "id")
	if err := payload.validate(); err != nil {
		writeRequestError(w, r, err)
		return
	}

	now := h.now()
	session := journey.GuidedSession{
		ID:          payload.ID,
		ScriptureID: payload.ScriptureID,
		BookName:    payload.BookName,
		Chapter:     payload.Chapter,
		VerseStart:  payload.VerseStart,
		VerseEnd:    payload.VerseEnd,
		Title:       payload.Title,
		TextName:    payload.TextName,
		CreatedAt:   timeOr(payload.CreatedAt, now),
		UpdatedAt:   timeOr(payload.UpdatedAt, now),
	}
	for _, msg := range payload.Messages {
		session.Messages = append(session.Messages, journey.SessionMessage{
			Role:      msg.Role,
			Content:   msg.Content,
			CreatedAt: timeOr(msg.CreatedAt, now),
		})
	}
	if err := h.sessions.Upsert(ctx, &session); err != nil {
		writeRequestError(w, r, storageError(err, "Session"))
		return
	}
	h.feed.Notify(journey.SourceSessions)

	contextutil.LoggerFromContext(ctx).InfoContext(ctx, "guided session saved", "id", session.ID, "messages", len(session.Messages))
	payload.CreatedAt = &session.CreatedAt
	payload.UpdatedAt = &session.UpdatedAt
	writeJSON(ctx, w, http.StatusAccepted, payload)
}

func (h *JourneyHandler) deleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeRequestError(w, r, storageError(err, "Session"))
		return
	}
	h.feed.Notify(journey.SourceSessions)
	w.WriteHeader(http.StatusNoContent)
}

func (p RecordPayload) validate() error {
	switch p.Type {
	case journey.RecordHighlight, journey.RecordNote, journey.RecordBookmark:
	default:
		return &service.ValidationError{Field: "type", Message: "type must be highlight, note or bookmark"}
	}
	if _, ok := scripture.FromIdentifier(p.VerseID, p.Reference); !ok {
		return &service.ValidationError{Field: "verseId", Message: "verseId must look like scripture-book-chapter-verse"}
	}
	return nil
}

func (p SessionPayload) validate() error {
	if strings.TrimSpace(p.ScriptureID) == "" {
		return &service.ValidationError{Field: "scriptureId", Message: "scriptureId and bookName are required"}
	}
	if strings.TrimSpace(p.BookName) == "" {
		return &service.ValidationError{Field: "bookName", Message: "scriptureId and bookName are required"}
	}
	if p.Chapter <= 0 {
		return &service.ValidationError{Field: "chapter", Message: "chapter must be positive"}
	}
	return nil
}

func timeOr(t *time.Time, fallback time.Time) time.Time {
	if t == nil || t.IsZero() {
		return fallback
	}
	return *t
}
