package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"scripture-journey/internal/handlers"
	"scripture-journey/internal/journey"
	"scripture-journey/internal/service"
	"scripture-journey/internal/storage"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	GuidedStudyService service.GuidedStudyService
	JourneyStore       *journey.Store
	Records            storage.RecordStore
	Sessions           storage.SessionStore
	Feed               *journey.Feed
	AllowedOrigins     []string
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(LoggerMiddleware)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(CORS(deps.AllowedOrigins))

	healthHandler := handlers.NewHealthHandler()
	guidedStudyHandler := handlers.NewGuidedStudyHandler(deps.GuidedStudyService)
	journeyHandler := handlers.NewJourneyHandler(deps.JourneyStore, deps.Records, deps.Sessions, deps.Feed)

	r.Route("/api", func(r chi.Router) {
		// Both handlers answer 405 themselves for the wrong method.
		r.Handle("/health", healthHandler)
		r.Handle("/guided-study", guidedStudyHandler)
		r.Route("/journey", journeyHandler.Routes)
	})

	return r
}
