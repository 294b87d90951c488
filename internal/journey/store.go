package journey

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"scripture-journey/internal/scripture"
)

// Upstream provides the externally owned collections the journey is derived from.
type Upstream interface {
	JourneyRecords(ctx context.Context) ([]JourneyRecord, error)
	GuidedSessions(ctx context.Context) ([]GuidedSession, error)
}

// NewInsight holds the fields a reader supplies when saving an insight.
type NewInsight struct {
	Title     *string
	Body      string
	Quote     *string
	SessionID string
	Ref       scripture.Ref
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides the insight ID generator.
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

// WithLogger sets the store logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// Store owns the unified item collection, the locally owned insights and the
// current filter configuration.
//
// The unified collection is rebuilt wholesale whenever the upstream
// collections or the insights change. Only guided insights are mutable.
type Store struct {
	mu          sync.RWMutex
	upstream    Upstream
	persistence *InsightPersistence
	now         func() time.Time
	newID       func() string
	logger      *slog.Logger

	records  []JourneyRecord
	sessions []GuidedSession
	insights []UnifiedItem
	items    []UnifiedItem
	filter   Filter
}

// NewStore loads the persisted insights and builds the initial collection.
// A nil upstream is allowed; the store then only holds insights.
func NewStore(ctx context.Context, upstream Upstream, persistence *InsightPersistence, opts ...Option) *Store {
	s := &Store{
		upstream:    upstream,
		persistence: persistence,
		now:         time.Now,
		newID:       uuid.NewString,
		logger:      slog.Default(),
		filter:      DefaultFilter(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.insights = persistence.Load(ctx)
	s.rebuild()

	if err := s.Refresh(ctx); err != nil {
		s.logger.WarnContext(ctx, "initial journey refresh failed", "error", err)
	}
	return s
}

// Refresh reloads both upstream collections and rebuilds. On error the
// previous snapshot is kept.
func (s *Store) Refresh(ctx context.Context) error {
	if s.upstream == nil {
		return nil
	}

	records, err := s.upstream.JourneyRecords(ctx)
	if err != nil {
		return fmt.Errorf("failed to load journey records: %w", err)
	}
	sessions, err := s.upstream.GuidedSessions(ctx)
	if err != nil {
		return fmt.Errorf("failed to load guided sessions: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = records
	s.sessions = sessions
	s.rebuild()

	s.logger.DebugContext(ctx, "journey rebuilt", "records", len(records), "sessions", len(sessions), "items", len(s.items))
	return nil
}

// Run handles change notifications one at a time until ctx is done.
func (s *Store) Run(ctx context.Context, feed *Feed) {
	for {
		select {
		case <-ctx.Done():
			return
		case source := <-feed.C():
			if err := s.Refresh(ctx); err != nil {
				s.logger.ErrorContext(ctx, "journey refresh failed", "source", source, "error", err)
			}
		}
	}
}

// rebuild must be called with mu held for writing.
func (s *Store) rebuild() {
	s.items = BuildUnifiedItems(s.records, s.sessions, s.insights)
}

// SaveInsight creates a guided insight, persists the insight collection and rebuilds.
func (s *Store) SaveInsight(ctx context.Context, in NewInsight) UnifiedItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	title := in.Title
	if title == nil || *title == "" {
		title = optional("Insight from " + in.Ref.Display)
	}
	body := in.Body

	item := UnifiedItem{
		ID:        s.newID(),
		Kind:      KindGuidedInsight,
		Ref:       in.Ref,
		Title:     title,
		Body:      &body,
		Quote:     in.Quote,
		CreatedAt: now,
		UpdatedAt: now,
		SessionID: optional(in.SessionID),
	}

	s.insights = append(s.insights, item.Clone())
	s.persistence.Save(ctx, s.insights)
	s.rebuild()
	return item
}

// TogglePin flips the pinned flag of an insight and returns the updated item.
// Derived items cannot be pinned; ids that are not insights are ignored and
// report false.
func (s *Store) TogglePin(ctx context.Context, id string) (UnifiedItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.insightIndex(id)
	if i < 0 {
		return UnifiedItem{}, false
	}
	s.insights[i].Pinned = !s.insights[i].Pinned
	s.insights[i].UpdatedAt = s.now()
	s.persistence.Save(ctx, s.insights)
	s.rebuild()
	return s.insights[i].Clone(), true
}

// DeleteInsight removes an insight. Unknown ids are ignored and report false.
func (s *Store) DeleteInsight(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.insightIndex(id)
	if i < 0 {
		return false
	}
	s.insights = slices.Delete(s.insights, i, i+1)
	s.persistence.Save(ctx, s.insights)
	s.rebuild()
	return true
}

// UpdateInsightBody replaces an insight's body and returns the updated item.
// Unknown ids are ignored and report false.
func (s *Store) UpdateInsightBody(ctx context.Context, id, body string) (UnifiedItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.insightIndex(id)
	if i < 0 {
		return UnifiedItem{}, false
	}
	s.insights[i].Body = &body
	s.insights[i].UpdatedAt = s.now()
	s.persistence.Save(ctx, s.insights)
	s.rebuild()
	return s.insights[i].Clone(), true
}

func (s *Store) insightIndex(id string) int {
	return slices.IndexFunc(s.insights, func(item UnifiedItem) bool { return item.ID == id })
}

// Item looks up an item by id across the whole collection.
func (s *Store) Item(id string) (UnifiedItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, item := range s.items {
		if item.ID == id {
			return item.Clone(), true
		}
	}
	return UnifiedItem{}, false
}

// Items returns a copy of the full unified collection in build order.
func (s *Store) Items() []UnifiedItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneItems(s.items)
}

// Insights returns a copy of the locally owned insights.
func (s *Store) Insights() []UnifiedItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneItems(s.insights)
}

// Filter returns the current filter configuration.
func (s *Store) Filter() Filter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter.Clone()
}

// SetFilter replaces the filter configuration.
func (s *Store) SetFilter(f Filter) {
	f = f.Clone()
	if f.Sort == "" {
		f.Sort = SortRecent
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter = f
}

// ClearFilters resets search, sets, sort and pinned-only to their defaults.
func (s *Store) ClearFilters() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter = DefaultFilter()
}

// SetSearch sets the free-text search.
func (s *Store) SetSearch(search string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter.Search = search
}

// SetSort sets the sort mode.
func (s *Store) SetSort(mode SortMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter.Sort = mode
}

// SetPinnedOnly restricts the view to pinned items.
func (s *Store) SetPinnedOnly(pinnedOnly bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter.PinnedOnly = pinnedOnly
}

// ToggleKind adds or removes a kind from the selected kinds.
func (s *Store) ToggleKind(kind Kind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter.Kinds = toggle(s.filter.Kinds, kind)
}

// ToggleScripture adds or removes a scripture id from the selection.
func (s *Store) ToggleScripture(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter.ScriptureIDs = toggle(s.filter.ScriptureIDs, id)
}

// ToggleBook adds or removes a book id from the selection.
func (s *Store) ToggleBook(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter.BookIDs = toggle(s.filter.BookIDs, id)
}

func toggle[K comparable](set map[K]bool, key K) map[K]bool {
	if set[key] {
		delete(set, key)
		return set
	}
	if set == nil {
		set = make(map[K]bool)
	}
	set[key] = true
	return set
}

// Visible returns the items matching the current filter, sorted.
func (s *Store) Visible() []UnifiedItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Apply(s.items, s.filter)
}

// Query returns the items matching f, sorted. The store's own filter is untouched.
func (s *Store) Query(f Filter) []UnifiedItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Apply(s.items, f)
}

// Groups buckets the visible items by time.
func (s *Store) Groups() []Group {
	return GroupByTime(s.Visible(), s.now())
}

// GroupsFor buckets the items matching f by time.
func (s *Store) GroupsFor(f Filter) []Group {
	return GroupByTime(s.Query(f), s.now())
}

// ScriptureIDs returns the distinct scripture ids across all items, sorted.
func (s *Store) ScriptureIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]bool)
	for _, item := range s.items {
		seen[item.Ref.ScriptureID] = true
	}
	return sortedKeys(seen)
}

// BookIDs returns the distinct book ids, sorted. A non-empty scriptureID
// limits the result to that scripture.
func (s *Store) BookIDs(scriptureID string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]bool)
	for _, item := range s.items {
		if scriptureID != "" && item.Ref.ScriptureID != scriptureID {
			continue
		}
		seen[item.Ref.BookID] = true
	}
	return sortedKeys(seen)
}

// KindCounts counts every item by kind. All kinds are present, zero or not.
func (s *Store) KindCounts() map[Kind]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[Kind]int, len(Kinds()))
	for _, k := range Kinds() {
		counts[k] = 0
	}
	for _, item := range s.items {
		counts[item.Kind]++
	}
	return counts
}

// HasActiveFilters reports whether any filter dimension is in use.
func (s *Store) HasActiveFilters() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter.Active()
}

// ActiveFilterCount is the number of filter dimensions in use.
func (s *Store) ActiveFilterCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter.ActiveCount()
}
