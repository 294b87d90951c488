package handlers

import (
	"encoding/json"
	"fmt"
	"html/template"
	"maps"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/yuin/goldmark"

	"scripture-journey/internal/contextutil"
	"scripture-journey/internal/journey"
	"scripture-journey/internal/scripture"
	"scripture-journey/internal/service"
	"scripture-journey/internal/storage"
)

// maxJourneyBody bounds JSON bodies on the journey write paths.
const maxJourneyBody = 1 << 20

// JourneyHandler serves the unified journey and its write paths.
type JourneyHandler struct {
	store    *journey.Store
	records  storage.RecordStore
	sessions storage.SessionStore
	feed     *journey.Feed
	markdown goldmark.Markdown
	page     *template.Template
	now      func() time.Time
}

// NewJourneyHandler creates a new JourneyHandler. Record and session writes
// notify feed so the store rebuilds from storage.
func NewJourneyHandler(store *journey.Store, records storage.RecordStore, sessions storage.SessionStore, feed *journey.Feed) *JourneyHandler {
	return &JourneyHandler{
		store:    store,
		records:  records,
		sessions: sessions,
		feed:     feed,
		markdown: newMarkdown(),
		page:     exportPage,
		now:      time.Now,
	}
}

// Routes registers the journey endpoints on r.
func (h *JourneyHandler) Routes(r chi.Router) {
	r.Get("/items", h.listItems)
	r.Get("/items/{id}", h.getItem)
	r.Get("/groups", h.listGroups)
	r.Get("/view", h.getView)

	r.Get("/filters", h.getFilters)
	r.Put("/filters", h.putFilters)
	r.Patch("/filters", h.patchFilters)
	r.Delete("/filters", h.clearFilters)
	r.Post("/filters/toggle", h.toggleFilter)

	r.Get("/facets", h.getFacets)
	r.Get("/export", h.export)

	r.Post("/insights", h.createInsight)
	r.Post("/insights/{id}/pin", h.togglePin)
	r.Put("/insights/{id}/body", h.updateInsightBody)
	r.Delete("/insights/{id}", h.deleteInsight)

	r.Put("/records/{id}", h.putRecord)
	r.Delete("/records/{id}", h.deleteRecord)
	r.Put("/sessions/{id}", h.putSession)
	r.Delete("/sessions/{id}", h.deleteSession)
}

// ItemsResponse is a filtered, sorted list of journey items.
type ItemsResponse struct {
	Items []journey.UnifiedItem `json:"items"`
	Count int                   `json:"count"`
}

// GroupsResponse is the time-grouped view.
type GroupsResponse struct {
	Groups []journey.Group `json:"groups"`
}

// FilterPayload is the wire form of the filter configuration.
type FilterPayload struct {
	Search       string         `json:"search"`
	Kinds        []journey.Kind `json:"kinds"`
	ScriptureIDs []string       `json:"scriptureIds"`
	BookIDs      []string       `json:"bookIds"`
	Sort         string         `json:"sort"`
	PinnedOnly   bool           `json:"pinnedOnly"`
}

// FilterResponse reports the store's filter state.
type FilterResponse struct {
	FilterPayload
	ActiveCount int  `json:"activeCount"`
	Active      bool `json:"active"`
}

// ViewResponse is the store's own filtered view.
type ViewResponse struct {
	Filter FilterResponse  `json:"filter"`
	Groups []journey.Group `json:"groups"`
}

// FacetsResponse lists the values available to filter on.
type FacetsResponse struct {
	ScriptureIDs []string             `json:"scriptureIds"`
	BookIDs      []string             `json:"bookIds"`
	KindCounts   map[journey.Kind]int `json:"kindCounts"`
}

// FilterPatch changes individual filter fields; absent fields are kept.
type FilterPatch struct {
	Search     *string `json:"search"`
	Sort       *string `json:"sort"`
	PinnedOnly *bool   `json:"pinnedOnly"`
}

// FilterToggle flips one value in a filter set.
type FilterToggle struct {
	Kind      string `json:"kind"`
	Scripture string `json:"scripture"`
	Book      string `json:"book"`
}

// InsightRequest creates a guided insight. When Ref is omitted it is taken
// from the guided session named by SessionID.
type InsightRequest struct {
	Title     *string        `json:"title"`
	Body      string         `json:"body"`
	Quote     *string        `json:"quote"`
	SessionID string         `json:"sessionId"`
	Ref       *scripture.Ref `json:"ref"`
}

// InsightBodyRequest replaces an insight's body.
type InsightBodyRequest struct {
	Body string `json:"body"`
}

func (h *JourneyHandler) listItems(w http.ResponseWriter, r *http.Request) {
	f, err := filterFromQuery(r.URL.Query())
	if err != nil {
		writeRequestError(w, r, err)
		return
	}
	items := h.store.Query(f)
	writeJSON(r.Context(), w, http.StatusOK, ItemsResponse{Items: items, Count: len(items)})
}

func (h *JourneyHandler) getItem(w http.ResponseWriter, r *http.Request) {
	item, ok := h.store.Item(chi.URLParam(r, "id"))
	if !ok {
		writeRequestError(w, r, notFound("Item"))
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, item)
}

func (h *JourneyHandler) listGroups(w http.ResponseWriter, r *http.Request) {
	f, err := filterFromQuery(r.URL.Query())
	if err != nil {
		writeRequestError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, GroupsResponse{Groups: nonNilGroups(h.store.GroupsFor(f))})
}

func (h *JourneyHandler) getView(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, ViewResponse{
		Filter: h.filterResponse(),
		Groups: nonNilGroups(h.store.Groups()),
	})
}

func (h *JourneyHandler) getFilters(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, h.filterResponse())
}

func (h *JourneyHandler) putFilters(w http.ResponseWriter, r *http.Request) {
	var payload FilterPayload
	if !decodeBody(w, r, &payload) {
		return
	}
	f, err := payload.toFilter()
	if err != nil {
		writeRequestError(w, r, err)
		return
	}
	h.store.SetFilter(f)
	writeJSON(r.Context(), w, http.StatusOK, h.filterResponse())
}

func (h *JourneyHandler) patchFilters(w http.ResponseWriter, r *http.Request) {
	var patch FilterPatch
	if !decodeBody(w, r, &patch) {
		return
	}
	if patch.Sort != nil {
		mode, err := journey.ParseSortMode(*patch.Sort)
		if err != nil {
			writeRequestError(w, r, invalidInput(err))
			return
		}
		h.store.SetSort(mode)
	}
	if patch.Search != nil {
		h.store.SetSearch(*patch.Search)
	}
	if patch.PinnedOnly != nil {
		h.store.SetPinnedOnly(*patch.PinnedOnly)
	}
	writeJSON(r.Context(), w, http.StatusOK, h.filterResponse())
}

func (h *JourneyHandler) clearFilters(w http.ResponseWriter, r *http.Request) {
	h.store.ClearFilters()
	writeJSON(r.Context(), w, http.StatusOK, h.filterResponse())
}

func (h *JourneyHandler) toggleFilter(w http.ResponseWriter, r *http.Request) {
	var toggle FilterToggle
	if !decodeBody(w, r, &toggle) {
		return
	}
	if toggle.Kind == "" && toggle.Scripture == "" && toggle.Book == "" {
		writeRequestError(w, r, &service.ValidationError{Field: "kind", Message: "one of kind, scripture or book is required"})
		return
	}
	if toggle.Kind != "" {
		kind, err := journey.ParseKind(toggle.Kind)
		if err != nil {
			writeRequestError(w, r, invalidInput(err))
			return
		}
		h.store.ToggleKind(kind)
	}
	if toggle.Scripture != "" {
		h.store.ToggleScripture(toggle.Scripture)
	}
	if toggle.Book != "" {
		h.store.ToggleBook(toggle.Book)
	}
	writeJSON(r.Context(), w, http.StatusOK, h.filterResponse())
}

func (h *JourneyHandler) getFacets(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, FacetsResponse{
		ScriptureIDs: h.store.ScriptureIDs(),
		BookIDs:      h.store.BookIDs(r.URL.Query().Get("scripture")),
		KindCounts:   h.store.KindCounts(),
	})
}

func (h *JourneyHandler) createInsight(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req InsightRequest
	if !decodeBody(w, r, &req) {
		return
	}
	in, err := h.newInsight(req)
	if err != nil {
		writeRequestError(w, r, err)
		return
	}

	item := h.store.SaveInsight(ctx, in)
	contextutil.LoggerFromContext(ctx).InfoContext(ctx, "insight saved", "id", item.ID, "ref", in.Ref.Display)
	writeJSON(ctx, w, http.StatusCreated, item)
}

// newInsight validates req. Without an explicit ref the insight is anchored
// to the guided session named by SessionID.
func (h *JourneyHandler) newInsight(req InsightRequest) (journey.NewInsight, error) {
	if strings.TrimSpace(req.Body) == "" {
		return journey.NewInsight{}, &service.ValidationError{Field: "body", Message: "body is required"}
	}

	var ref scripture.Ref
	switch {
	case req.Ref != nil:
		ref = *req.Ref
	case req.SessionID != "":
		session, ok := h.store.Item(req.SessionID)
		if !ok || session.Kind != journey.KindGuidedSession {
			return journey.NewInsight{}, &service.ValidationError{Field: "sessionId", Message: "ref is required when sessionId does not name a guided session"}
		}
		ref = session.Ref
	default:
		return journey.NewInsight{}, &service.ValidationError{Field: "ref", Message: "ref or sessionId is required"}
	}

	return journey.NewInsight{
		Title:     req.Title,
		Body:      req.Body,
		Quote:     req.Quote,
		SessionID: req.SessionID,
		Ref:       ref,
	}, nil
}

func (h *JourneyHandler) togglePin(w http.ResponseWriter, r *http.Request) {
	item, ok := h.store.TogglePin(r.Context(), chi.URLParam(r, "id"))
	if !ok {
		writeRequestError(w, r, notFound("Insight"))
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, item)
}

func (h *JourneyHandler) updateInsightBody(w http.ResponseWriter, r *http.Request) {
	var req InsightBodyRequest
	if !decodeBody(w, r, &req) {
		return
	}
	item, ok := h.store.UpdateInsightBody(r.Context(), chi.URLParam(r, "id"), req.Body)
	if !ok {
		writeRequestError(w, r, notFound("Insight"))
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, item)
}

func (h *JourneyHandler) deleteInsight(w http.ResponseWriter, r *http.Request) {
	if !h.store.DeleteInsight(r.Context(), chi.URLParam(r, "id")) {
		writeRequestError(w, r, notFound("Insight"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *JourneyHandler) filterResponse() FilterResponse {
	f := h.store.Filter()
	return FilterResponse{
		FilterPayload: payloadFromFilter(f),
		ActiveCount:   f.ActiveCount(),
		Active:        f.Active(),
	}
}

func (p FilterPayload) toFilter() (journey.Filter, error) {
	mode, err := journey.ParseSortMode(p.Sort)
	if err != nil {
		return journey.Filter{}, invalidInput(err)
	}
	f := journey.Filter{Search: p.Search, Sort: mode, PinnedOnly: p.PinnedOnly}
	for _, k := range p.Kinds {
		kind, err := journey.ParseKind(string(k))
		if err != nil {
			return journey.Filter{}, invalidInput(err)
		}
		f.Kinds = addToSet(f.Kinds, kind)
	}
	for _, id := range p.ScriptureIDs {
		f.ScriptureIDs = addToSet(f.ScriptureIDs, id)
	}
	for _, id := range p.BookIDs {
		f.BookIDs = addToSet(f.BookIDs, id)
	}
	return f, nil
}

func payloadFromFilter(f journey.Filter) FilterPayload {
	return FilterPayload{
		Search:       f.Search,
		Kinds:        sortedSet(f.Kinds),
		ScriptureIDs: sortedSet(f.ScriptureIDs),
		BookIDs:      sortedSet(f.BookIDs),
		Sort:         string(f.Sort),
		PinnedOnly:   f.PinnedOnly,
	}
}

// filterFromQuery reads q, kind, scripture, book, sort and pinned.
// Set parameters may repeat or hold comma-separated values.
func filterFromQuery(q url.Values) (journey.Filter, error) {
	payload := FilterPayload{
		Search:       q.Get("q"),
		ScriptureIDs: queryList(q, "scripture"),
		BookIDs:      queryList(q, "book"),
		Sort:         q.Get("sort"),
	}
	for _, k := range queryList(q, "kind") {
		payload.Kinds = append(payload.Kinds, journey.Kind(k))
	}
	if raw := q.Get("pinned"); raw != "" {
		pinned, err := strconv.ParseBool(raw)
		if err != nil {
			return journey.Filter{}, &service.ValidationError{Field: "pinned", Message: fmt.Sprintf("invalid pinned value %q", raw)}
		}
		payload.PinnedOnly = pinned
	}
	return payload.toFilter()
}

func queryList(q url.Values, key string) []string {
	var out []string
	for _, v := range q[key] {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func addToSet[K comparable](set map[K]bool, key K) map[K]bool {
	if set == nil {
		set = make(map[K]bool)
	}
	set[key] = true
	return set
}

func sortedSet[K ~string](set map[K]bool) []K {
	out := slices.Sorted(maps.Keys(set))
	if out == nil {
		out = []K{}
	}
	return out
}

func nonNilGroups(groups []journey.Group) []journey.Group {
	if groups == nil {
		return []journey.Group{}
	}
	return groups
}

// decodeBody decodes a JSON request body into v, writing 400 on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	ctx := r.Context()
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJourneyBody)).Decode(v); err != nil {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "invalid request body", "error", err)
		writeError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}
