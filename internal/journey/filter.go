package journey

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"
)

// SortMode orders the visible items.
type SortMode string

const (
	SortRecent      SortMode = "recent"
	SortOldest      SortMode = "oldest"
	SortPinnedFirst SortMode = "pinned-first"
)

// ParseSortMode validates a sort mode name. The empty string means recent.
func ParseSortMode(s string) (SortMode, error) {
	switch SortMode(s) {
	case "", SortRecent:
		return SortRecent, nil
	case SortOldest, SortPinnedFirst:
		return SortMode(s), nil
	}
	return "", fmt.Errorf("unknown sort mode %q", s)
}

// Filter is the filter and sort configuration applied to the journey.
// Empty sets and an empty search disable their stage.
type Filter struct {
	Search       string
	Kinds        map[Kind]bool
	ScriptureIDs map[string]bool
	BookIDs      map[string]bool
	Sort         SortMode
	PinnedOnly   bool
}

// DefaultFilter matches everything, most recent first.
func DefaultFilter() Filter {
	return Filter{Sort: SortRecent}
}

// Clone returns a copy that shares no sets with f.
func (f Filter) Clone() Filter {
	out := f
	out.Kinds = cloneSet(f.Kinds)
	out.ScriptureIDs = cloneSet(f.ScriptureIDs)
	out.BookIDs = cloneSet(f.BookIDs)
	return out
}

// ActiveCount is the number of filter dimensions in use, 0 to 5.
// The sort mode is not a filter.
func (f Filter) ActiveCount() int {
	n := 0
	if f.Search != "" {
		n++
	}
	if len(f.Kinds) > 0 {
		n++
	}
	if len(f.ScriptureIDs) > 0 {
		n++
	}
	if len(f.BookIDs) > 0 {
		n++
	}
	if f.PinnedOnly {
		n++
	}
	return n
}

// Active reports whether any filter dimension is in use.
func (f Filter) Active() bool {
	return f.ActiveCount() > 0
}

// Matches applies the predicate stages in order: search, kind, scripture, book, pinned.
func (f Filter) Matches(item UnifiedItem) bool {
	if f.Search != "" && !matchesSearch(item, strings.ToLower(f.Search)) {
		return false
	}
	if len(f.Kinds) > 0 && !f.Kinds[item.Kind] {
		return false
	}
	if len(f.ScriptureIDs) > 0 && !f.ScriptureIDs[item.Ref.ScriptureID] {
		return false
	}
	if len(f.BookIDs) > 0 && !f.BookIDs[item.Ref.BookID] {
		return false
	}
	if f.PinnedOnly && !item.Pinned {
		return false
	}
	return true
}

func matchesSearch(item UnifiedItem, needle string) bool {
	fields := []string{item.Ref.Display, deref(item.Title), deref(item.Body), deref(item.Quote), deref(item.TextName)}
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

// Apply filters then sorts items. The input slice is not modified.
func Apply(items []UnifiedItem, f Filter) []UnifiedItem {
	out := make([]UnifiedItem, 0, len(items))
	for _, item := range items {
		if f.Matches(item) {
			out = append(out, item.Clone())
		}
	}
	SortItems(out, f.Sort)
	return out
}

// SortItems sorts in place. The sort is stable so equal timestamps keep input order.
func SortItems(items []UnifiedItem, mode SortMode) {
	switch mode {
	case SortOldest:
		slices.SortStableFunc(items, func(a, b UnifiedItem) int {
			return a.UpdatedAt.Compare(b.UpdatedAt)
		})
	case SortPinnedFirst:
		slices.SortStableFunc(items, func(a, b UnifiedItem) int {
			if a.Pinned != b.Pinned {
				if a.Pinned {
					return -1
				}
				return 1
			}
			return a.UpdatedAt.Compare(b.UpdatedAt)
		})
	default:
		slices.SortStableFunc(items, func(a, b UnifiedItem) int {
			return b.UpdatedAt.Compare(a.UpdatedAt)
		})
	}
}

// Time bucket names, in display order.
const (
	GroupToday    = "today"
	GroupThisWeek = "this-week"
	GroupEarlier  = "earlier"
)

const week = 7 * 24 * time.Hour

// Group is a named time bucket of items.
type Group struct {
	Name  string        `json:"name"`
	Items []UnifiedItem `json:"items"`
}

// GroupByTime partitions items into today, this-week and earlier, keeping
// their order within each bucket. Empty buckets are omitted.
//
// Today is the calendar day of now in now's location. This-week covers the
// seven days before now, with an item exactly seven days old included.
func GroupByTime(items []UnifiedItem, now time.Time) []Group {
	buckets := map[string][]UnifiedItem{}
	for _, item := range items {
		name := bucketFor(item.UpdatedAt, now)
		buckets[name] = append(buckets[name], item)
	}

	var groups []Group
	for _, name := range []string{GroupToday, GroupThisWeek, GroupEarlier} {
		if len(buckets[name]) > 0 {
			groups = append(groups, Group{Name: name, Items: buckets[name]})
		}
	}
	return groups
}

// bucketFor places t relative to now. Timestamps after now, from clock skew
// between devices, count as today.
func bucketFor(t, now time.Time) string {
	if sameDay(t.In(now.Location()), now) || t.After(now) {
		return GroupToday
	}
	if now.Sub(t) <= week {
		return GroupThisWeek
	}
	return GroupEarlier
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func cloneSet[K comparable](in map[K]bool) map[K]bool {
	if len(in) == 0 {
		return nil
	}
	out := make(map[K]bool, len(in))
	for k, v := range in {
		if v {
			out[k] = true
		}
	}
	return out
}

func sortedKeys[K cmp.Ordered](in map[K]bool) []K {
	out := make([]K, 0, len(in))
	for k := range in {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
