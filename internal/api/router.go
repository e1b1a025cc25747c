package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/snapfest/snapfest/internal/api/handler"
	apimiddleware "github.com/snapfest/snapfest/internal/api/middleware"
	"github.com/snapfest/snapfest/internal/api/sse"
	"github.com/snapfest/snapfest/internal/middleware"
	"github.com/snapfest/snapfest/internal/services/directory"
	"github.com/snapfest/snapfest/internal/services/feed"
	"github.com/snapfest/snapfest/internal/services/identity"
	"github.com/snapfest/snapfest/internal/services/uploads"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger            *slog.Logger
	IdentityService   *identity.Service
	DirectoryService  *directory.Service
	FeedService       *feed.Service
	UploadCoordinator *uploads.Coordinator
	GuestResolver     apimiddleware.GuestResolver
	Hub               *sse.Hub
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	guestHandler := handler.NewGuestHandler(cfg.IdentityService, cfg.DirectoryService)
	photoHandler := handler.NewPhotoHandler(cfg.FeedService, cfg.UploadCoordinator)
	eventsHandler := handler.NewEventsHandler(cfg.Hub)

	requireGuest := apimiddleware.RequireGuest(cfg.GuestResolver)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(apimiddleware.Recovery(cfg.Logger))
	api.Use(middleware.Logging(cfg.Logger))

	// Sign-in routes carry no guest identity yet
	api.HandleFunc("/guests/signin", guestHandler.SignIn).Methods(http.MethodPost)
	api.HandleFunc("/guests/confirm", guestHandler.ConfirmSuggestion).Methods(http.MethodPost)
	api.HandleFunc("/guests", guestHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/guests/{guest_id}/recount", guestHandler.RecalculatePhotoCount).Methods(http.MethodPost)

	// Routes that act on behalf of an identified guest
	me := api.PathPrefix("/guests/me").Subrouter()
	me.Use(requireGuest)
	me.HandleFunc("/role", guestHandler.ElevateRole).Methods(http.MethodPost)

	api.HandleFunc("/photos", photoHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/uploads", photoHandler.UploadTasks).Methods(http.MethodGet)

	photos := api.PathPrefix("/photos").Subrouter()
	photos.Use(requireGuest)
	photos.HandleFunc("", photoHandler.Upload).Methods(http.MethodPost)
	photos.HandleFunc("/{photo_id}/like", photoHandler.ToggleLike).Methods(http.MethodPost)
	photos.HandleFunc("/{photo_id}", photoHandler.Delete).Methods(http.MethodDelete)

	events := api.PathPrefix("/events").Subrouter()
	events.Use(requireGuest)
	events.HandleFunc("", eventsHandler.Stream).Methods(http.MethodGet)

	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
