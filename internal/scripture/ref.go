// Package scripture normalizes the different ways a passage is identified into a single Ref.
package scripture

import (
	"fmt"
	"strconv"
	"strings"
)

// Ref identifies a passage of text.
//
// Refs are derived from source records and never edited directly.
type Ref struct {
	ScriptureID string `json:"scriptureId"`
	BookID      string `json:"bookId"`
	Chapter     int    `json:"chapter"`
	VerseStart  *int   `json:"verseStart,omitempty"`
	VerseEnd    *int   `json:"verseEnd,omitempty"`
	Display     string `json:"display"`
}

// Equal reports whether two refs agree on every field.
func (r Ref) Equal(other Ref) bool {
	return r.ScriptureID == other.ScriptureID &&
		r.BookID == other.BookID &&
		r.Chapter == other.Chapter &&
		intPtrEqual(r.VerseStart, other.VerseStart) &&
		intPtrEqual(r.VerseEnd, other.VerseEnd) &&
		r.Display == other.Display
}

// Key returns a string usable as a map key; equal refs have equal keys.
func (r Ref) Key() string {
	return fmt.Sprintf("%s|%s|%d|%s|%s|%s",
		r.ScriptureID, r.BookID, r.Chapter, intPtrString(r.VerseStart), intPtrString(r.VerseEnd), r.Display)
}

// FromIdentifier parses a composite verse identifier of the form
// "scripture-book-chapter-verse". The book segment may itself contain hyphens
// ("bible-song-of-solomon-2-1"): the first segment is the scripture id and the
// last two are chapter and verse.
//
// It returns false when there are fewer than four segments or when chapter or
// verse is not an integer.
func FromIdentifier(id, display string) (Ref, bool) {
	parts := strings.Split(id, "-")
	if len(parts) < 4 {
		return Ref{}, false
	}

	chapter, err := strconv.Atoi(parts[len(parts)-2])
	if err != nil {
		return Ref{}, false
	}
	verse, err := strconv.Atoi(parts[len(parts)-1])
	if err != nil {
		return Ref{}, false
	}

	start, end := verse, verse
	return Ref{
		ScriptureID: parts[0],
		BookID:      strings.Join(parts[1:len(parts)-2], "-"),
		Chapter:     chapter,
		VerseStart:  &start,
		VerseEnd:    &end,
		Display:     display,
	}, true
}

// FromSession builds a ref from the loose fields a guided session carries.
// It always succeeds.
func FromSession(scriptureID, bookName string, chapter int, verseStart, verseEnd *int) Ref {
	return Ref{
		ScriptureID: scriptureID,
		BookID:      BookIDFromName(bookName),
		Chapter:     chapter,
		VerseStart:  copyInt(verseStart),
		VerseEnd:    copyInt(verseEnd),
		Display:     displayFor(bookName, chapter, verseStart, verseEnd),
	}
}

// BookIDFromName lowercases a book name and replaces spaces with hyphens.
func BookIDFromName(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "-")
}

func displayFor(bookName string, chapter int, verseStart, verseEnd *int) string {
	var b strings.Builder
	b.WriteString(bookName)
	fmt.Fprintf(&b, " %d", chapter)
	if verseStart != nil {
		fmt.Fprintf(&b, ":%d", *verseStart)
		if verseEnd != nil && *verseEnd != *verseStart {
			fmt.Fprintf(&b, "-%d", *verseEnd)
		}
	}
	return b.String()
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

func intPtrEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func intPtrString(v *int) string {
	if v == nil {
		return "-"
	}
	return strconv.Itoa(*v)
}
