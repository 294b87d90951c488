package journey

import (
	"slices"

	"scripture-journey/internal/scripture"
)

// BuildUnifiedItems converts the upstream collections into unified items and
// appends the locally owned insights. Output order is records, then sessions,
// then insights, each in input order.
//
// Records whose verse identifier cannot be parsed, or whose type is unknown,
// are dropped.
func BuildUnifiedItems(records []JourneyRecord, sessions []GuidedSession, insights []UnifiedItem) []UnifiedItem {
	items := make([]UnifiedItem, 0, len(records)+len(sessions)+len(insights))

	for _, rec := range records {
		item, ok := itemFromRecord(rec)
		if !ok {
			continue
		}
		items = append(items, item)
	}

	for _, session := range sessions {
		items = append(items, itemFromSession(session))
	}

	return append(items, insights...)
}

func itemFromRecord(rec JourneyRecord) (UnifiedItem, bool) {
	ref, ok := scripture.FromIdentifier(rec.VerseID, rec.Reference)
	if !ok {
		return UnifiedItem{}, false
	}

	item := UnifiedItem{
		ID:        rec.ID,
		Ref:       ref,
		Quote:     optional(rec.Text),
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.CreatedAt,
		TextName:  optional(rec.TextName),
	}
	if len(rec.Tags) > 0 {
		item.Tags = slices.Clone(rec.Tags)
	}

	switch rec.Type {
	case RecordHighlight:
		item.Kind = KindHighlight
	case RecordNote:
		item.Kind = KindNote
		item.Body = optional(rec.Note)
	case RecordBookmark:
		item.Kind = KindBookmark
	default:
		return UnifiedItem{}, false
	}
	return item, true
}

func itemFromSession(session GuidedSession) UnifiedItem {
	item := UnifiedItem{
		ID:        session.ID,
		Kind:      KindGuidedSession,
		Ref:       scripture.FromSession(session.ScriptureID, session.BookName, session.Chapter, session.VerseStart, session.VerseEnd),
		Title:     optional(session.Title),
		CreatedAt: session.CreatedAt,
		UpdatedAt: session.UpdatedAt,
		TextName:  optional(session.TextName),
	}
	for _, msg := range session.Messages {
		if msg.Role == "user" {
			item.Body = optional(msg.Content)
			break
		}
	}
	return item
}
