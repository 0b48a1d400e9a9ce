package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	imageHandler "github.com/endoscribe/backend/internal/handler/image"
	"github.com/endoscribe/backend/internal/handler/realtime"
	sessionHandler "github.com/endoscribe/backend/internal/handler/session"
	middlewarePkg "github.com/endoscribe/backend/internal/middleware"
	"github.com/endoscribe/backend/internal/service/ai"
	"github.com/endoscribe/backend/internal/service/imagestore"
	"github.com/endoscribe/backend/internal/service/thumbnail"
	"github.com/endoscribe/backend/internal/service/transcribe"
	"github.com/endoscribe/backend/pkg/utils"

	sessionstore "github.com/endoscribe/backend/internal/service/session"
)

// NewRouter wires HTTP routes to core services. aiSvc and transcribeSvc
// may be nil when their credentials are not configured; the affected
// operations then report themselves unavailable instead of failing at
// startup.
func NewRouter(sessions *sessionstore.Store, images *imagestore.Store, aiSvc *ai.Service, transcribeSvc *transcribe.Service, thumbnailer *thumbnail.Generator) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	// A nil *ai.Service must stay a nil interface so downstream nil
	// checks work.
	var notes sessionHandler.NoteGenerator
	var classifier realtime.Classifier
	if aiSvc != nil {
		notes = aiSvc
		classifier = aiSvc
	}
	var transcriber realtime.Transcriber
	if transcribeSvc != nil {
		transcriber = transcribeSvc
	}

	sessionH := sessionHandler.New(sessions, notes)
	imageH := imageHandler.New(images)
	realtimeH := realtime.NewHandler(sessions, classifier, transcriber, images, thumbnailer)

	r.Route("/api", func(api chi.Router) {
		sessionH.RegisterRoutes(api)
		imageH.RegisterRoutes(api)
		realtimeH.RegisterRoutes(api)

		api.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			utils.RespondJSON(w, http.StatusOK, map[string]any{
				"status":       "ok",
				"aiEnabled":    aiSvc != nil,
				"audioEnabled": transcribeSvc != nil,
			})
		})
	})

	return r
}
