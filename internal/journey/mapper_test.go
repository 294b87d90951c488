package journey

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"scripture-journey/internal/scripture"
)

func strPtr(s string) *string { return &s }

func intPtr(v int) *int { return &v }

var baseTime = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

func TestBuildUnifiedItems_Records(t *testing.T) {
	records := []JourneyRecord{
		{ID: "h1", Type: RecordHighlight, VerseID: "bible-john-3-16", Reference: "John 3:16", Text: "For God so loved", TextName: "KJV", CreatedAt: baseTime},
		{ID: "bad-segments", Type: RecordHighlight, VerseID: "bible-john-3", Reference: "John 3", CreatedAt: baseTime},
		{ID: "n1", Type: RecordNote, VerseID: "bible-genesis-1-1", Reference: "Genesis 1:1", Text: "In the beginning", Note: "Creation", Tags: []string{"origins"}, CreatedAt: baseTime.Add(time.Hour)},
		{ID: "bad-chapter", Type: RecordNote, VerseID: "bible-genesis-one-1", Reference: "Genesis 1:1", CreatedAt: baseTime},
		{ID: "bad-type", Type: "underline", VerseID: "bible-genesis-1-2", Reference: "Genesis 1:2", CreatedAt: baseTime},
		{ID: "b1", Type: RecordBookmark, VerseID: "bible-psalms-23-1", Reference: "Psalms 23:1", CreatedAt: baseTime},
	}

	got := BuildUnifiedItems(records, nil, nil)

	john, _ := scripture.FromIdentifier("bible-john-3-16", "John 3:16")
	genesis, _ := scripture.FromIdentifier("bible-genesis-1-1", "Genesis 1:1")
	psalms, _ := scripture.FromIdentifier("bible-psalms-23-1", "Psalms 23:1")
	want := []UnifiedItem{
		{ID: "h1", Kind: KindHighlight, Ref: john, Quote: strPtr("For God so loved"), TextName: strPtr("KJV"), CreatedAt: baseTime, UpdatedAt: baseTime},
		{ID: "n1", Kind: KindNote, Ref: genesis, Body: strPtr("Creation"), Quote: strPtr("In the beginning"), Tags: []string{"origins"}, CreatedAt: baseTime.Add(time.Hour), UpdatedAt: baseTime.Add(time.Hour)},
		{ID: "b1", Kind: KindBookmark, Ref: psalms, CreatedAt: baseTime, UpdatedAt: baseTime},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("BuildUnifiedItems() mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildUnifiedItems_Sessions(t *testing.T) {
	sessions := []GuidedSession{
		{
			ID:          "s1",
			ScriptureID: "bible",
			BookName:    "1 Corinthians",
			Chapter:     13,
			VerseStart:  intPtr(4),
			VerseEnd:    intPtr(7),
			Title:       "Love",
			Messages: []SessionMessage{
				{Role: "assistant", Content: "Welcome"},
				{Role: "user", Content: "What is love?"},
				{Role: "user", Content: "Second question"},
			},
			CreatedAt: baseTime,
			UpdatedAt: baseTime.Add(time.Minute),
		},
		{
			ID:          "s2",
			ScriptureID: "bible",
			BookName:    "Ruth",
			Chapter:     1,
			CreatedAt:   baseTime,
			UpdatedAt:   baseTime,
		},
	}

	got := BuildUnifiedItems(nil, sessions, nil)
	if len(got) != 2 {
		t.Fatalf("BuildUnifiedItems() returned %d items, want 2", len(got))
	}

	first := got[0]
	if first.Kind != KindGuidedSession || first.ID != "s1" {
		t.Errorf("session item = %+v", first)
	}
	if first.Ref.BookID != "1-corinthians" {
		t.Errorf("session BookID = %q, want 1-corinthians", first.Ref.BookID)
	}
	if deref(first.Body) != "What is love?" {
		t.Errorf("session Body = %q, want first user message", deref(first.Body))
	}
	if deref(first.Title) != "Love" || !first.UpdatedAt.Equal(baseTime.Add(time.Minute)) {
		t.Errorf("session title/timestamps not copied: %+v", first)
	}

	if got[1].Body != nil {
		t.Errorf("session without user messages should have no body, got %q", *got[1].Body)
	}
	if got[1].Ref.VerseStart != nil || got[1].Ref.VerseEnd != nil {
		t.Error("session without verses should have nil verse range")
	}
}

func TestBuildUnifiedItems_Order(t *testing.T) {
	records := []JourneyRecord{
		{ID: "r2", Type: RecordHighlight, VerseID: "bible-john-1-2", CreatedAt: baseTime},
		{ID: "r1", Type: RecordHighlight, VerseID: "bible-john-1-1", CreatedAt: baseTime.Add(time.Hour)},
	}
	sessions := []GuidedSession{{ID: "s1", ScriptureID: "bible", BookName: "John", Chapter: 1}}
	insights := []UnifiedItem{{ID: "i1", Kind: KindGuidedInsight, Pinned: true}}

	got := BuildUnifiedItems(records, sessions, insights)

	var ids []string
	for _, item := range got {
		ids = append(ids, item.ID)
	}
	want := []string{"r2", "r1", "s1", "i1"}
	if diff := cmp.Diff(want, ids); diff != "" {
		t.Errorf("BuildUnifiedItems() order mismatch (-want +got):\n%s", diff)
	}
	if !got[3].Pinned {
		t.Error("insights should be appended verbatim")
	}
}
