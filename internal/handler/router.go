package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	chathandler "github.com/zhouzirui/objectchat/backend/internal/handler/chat"
	personahandler "github.com/zhouzirui/objectchat/backend/internal/handler/persona"
	sessionhandler "github.com/zhouzirui/objectchat/backend/internal/handler/session"
	"github.com/zhouzirui/objectchat/backend/internal/middleware"
	chatservice "github.com/zhouzirui/objectchat/backend/internal/service/chat"
	"github.com/zhouzirui/objectchat/backend/pkg/utils"
)

// Pinger reports database reachability for the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Availability reports completion provider readiness for the health endpoint.
type Availability interface {
	Available() bool
}

// NewRouter wires HTTP routes to core services.
func NewRouter(chatSvc *chatservice.Service, sessions sessionhandler.Store, db Pinger, gateway Availability) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS)
	r.Use(middleware.Identity)

	chatHandler := chathandler.New(chatSvc)
	personaHandler := personahandler.New()

	r.Route("/api", func(api chi.Router) {
		chatHandler.RegisterRoutes(api)
		personaHandler.RegisterRoutes(api)

		if sessions != nil {
			sessionHandler := sessionhandler.New(sessions)
			sessionHandler.RegisterRoutes(api)
		}

		api.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			database := "connected"
			if db == nil {
				database = "disabled"
			} else if err := db.Ping(r.Context()); err != nil {
				database = "error"
			}

			llm := "not initialized"
			if gateway != nil && gateway.Available() {
				llm = "initialized"
			}

			utils.RespondJSON(w, http.StatusOK, map[string]string{
				"status":   "healthy",
				"version":  "1.0.0",
				"database": database,
				"llm":      llm,
			})
		})
	})

	return r
}
