// Package journey merges a reader's highlights, notes, guided sessions and saved
// insights into one filterable, sortable list.
package journey

import (
	"fmt"
	"slices"
	"time"

	"scripture-journey/internal/scripture"
)

// Kind classifies a unified item by where it came from.
type Kind string

const (
	KindHighlight     Kind = "highlight"
	KindNote          Kind = "note"
	KindGuidedSession Kind = "guided-session"
	KindGuidedInsight Kind = "guided-insight"
	KindBookmark      Kind = "bookmark"
)

// Kinds returns every kind in display order.
func Kinds() []Kind {
	return []Kind{KindHighlight, KindNote, KindGuidedSession, KindGuidedInsight, KindBookmark}
}

// ParseKind validates a kind name.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds() {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown item kind %q", s)
}

// UnifiedItem is one row of the journey, whatever its source.
type UnifiedItem struct {
	ID        string        `json:"id"`
	Kind      Kind          `json:"kind"`
	Ref       scripture.Ref `json:"ref"`
	Title     *string       `json:"title,omitempty"`
	Body      *string       `json:"body,omitempty"`
	Quote     *string       `json:"quote,omitempty"`
	Tags      []string      `json:"tags,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
	// Pinned only ever changes for guided insights.
	Pinned    bool    `json:"pinned"`
	SessionID *string `json:"sessionId,omitempty"`
	TextName  *string `json:"textName,omitempty"`
}

// Record types carried by a JourneyRecord.
const (
	RecordHighlight = "highlight"
	RecordNote      = "note"
	RecordBookmark  = "bookmark"
)

// JourneyRecord is a highlight, note or bookmark from the reader's upstream store.
type JourneyRecord struct {
	ID   string
	Type string
	// VerseID is the composite "scripture-book-chapter-verse" identifier.
	VerseID   string
	Reference string
	Text      string
	Note      string
	Tags      []string
	TextName  string
	CreatedAt time.Time
}

// SessionMessage is one turn of a guided study conversation.
type SessionMessage struct {
	Role      string
	Content   string
	CreatedAt time.Time
}

// GuidedSession is a guided study conversation about one passage.
type GuidedSession struct {
	ID          string
	ScriptureID string
	BookName    string
	Chapter     int
	VerseStart  *int
	VerseEnd    *int
	Title       string
	TextName    string
	Messages    []SessionMessage
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Clone returns a copy of item that shares no tags, pointers or verse bounds with it.
func (item UnifiedItem) Clone() UnifiedItem {
	out := item
	out.Ref.VerseStart = clonePtr(item.Ref.VerseStart)
	out.Ref.VerseEnd = clonePtr(item.Ref.VerseEnd)
	out.Title = clonePtr(item.Title)
	out.Body = clonePtr(item.Body)
	out.Quote = clonePtr(item.Quote)
	out.SessionID = clonePtr(item.SessionID)
	out.TextName = clonePtr(item.TextName)
	out.Tags = slices.Clone(item.Tags)
	return out
}

func cloneItems(items []UnifiedItem) []UnifiedItem {
	out := make([]UnifiedItem, len(items))
	for i, item := range items {
		out[i] = item.Clone()
	}
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
