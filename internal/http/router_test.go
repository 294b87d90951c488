package http

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"go.uber.org/mock/gomock"

	"scripture-journey/internal/journey"
	"scripture-journey/internal/service"
	"scripture-journey/internal/service/mocks"
	"scripture-journey/internal/storage"
)

func newTestDeps(t *testing.T, svc service.GuidedStudyService) *Deps {
	t.Helper()

	db, err := storage.New(filepath.Join(t.TempDir(), "router.db"))
	if err != nil {
		t.Fatalf("storage.New() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := storage.Migrate(db); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	records := storage.NewRecordRepo(db)
	sessions := storage.NewSessionRepo(db)
	store := journey.NewStore(context.Background(),
		storage.NewJourneySource(records, sessions),
		journey.NewInsightPersistence(storage.NewKVRepo(db)),
	)

	return &Deps{
		GuidedStudyService: svc,
		JourneyStore:       store,
		Records:            records,
		Sessions:           sessions,
		Feed:               journey.NewFeed(),
		AllowedOrigins:     []string{"http://*", "https://*"},
	}
}

func TestNewRouter(t *testing.T) {
	ctrl := gomock.NewController(t)

	router := NewRouter(newTestDeps(t, mocks.NewMockGuidedStudyService(ctrl)))
	if router == nil {
		t.Fatal("NewRouter() returned nil")
	}
}

func TestRouter_Routes(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockService := mocks.NewMockGuidedStudyService(ctrl)
	mockService.EXPECT().
		Study(gomock.Any(), gomock.Any()).
		Return(service.GuidedStudyResponse{StatusCode: http.StatusOK, Body: []byte(`{}`)}, nil)

	router := NewRouter(newTestDeps(t, mockService))

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{name: "GET /api/health", method: http.MethodGet, path: "/api/health", wantStatus: http.StatusOK},
		{name: "POST /api/health not allowed", method: http.MethodPost, path: "/api/health", wantStatus: http.StatusMethodNotAllowed},
		{name: "POST /api/guided-study", method: http.MethodPost, path: "/api/guided-study", body: `{}`, wantStatus: http.StatusOK},
		{name: "GET /api/guided-study not allowed", method: http.MethodGet, path: "/api/guided-study", wantStatus: http.StatusMethodNotAllowed},
		{name: "DELETE /api/guided-study not allowed", method: http.MethodDelete, path: "/api/guided-study", wantStatus: http.StatusMethodNotAllowed},
		{name: "GET /api/journey/items", method: http.MethodGet, path: "/api/journey/items", wantStatus: http.StatusOK},
		{name: "GET /api/journey/view", method: http.MethodGet, path: "/api/journey/view", wantStatus: http.StatusOK},
		{name: "GET /api/journey/facets", method: http.MethodGet, path: "/api/journey/facets", wantStatus: http.StatusOK},
		{name: "GET /api/journey/export", method: http.MethodGet, path: "/api/journey/export", wantStatus: http.StatusOK},
		{name: "unknown route", method: http.MethodGet, path: "/api/unknown", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("Router %s %s status = %v, want %v", tt.method, tt.path, w.Code, tt.wantStatus)
			}
		})
	}
}

func TestRouter_MiddlewareApplied(t *testing.T) {
	ctrl := gomock.NewController(t)
	router := NewRouter(newTestDeps(t, mocks.NewMockGuidedStudyService(ctrl)))

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("Router should apply CORS middleware, Access-Control-Allow-Origin = %q", got)
	}
}
