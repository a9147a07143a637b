package rest

import (
	"net/http"

	"braincore/application/ports"
	"braincore/application/services"
	"braincore/infrastructure/config"
	"braincore/interfaces/http/rest/handlers"
	"braincore/interfaces/http/rest/middleware"
	"braincore/pkg/observability"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Router creates and configures the HTTP router
type Router struct {
	cfg         *config.Config
	former      *services.MemoryFormer
	store       ports.DocumentStore
	personality handlers.PersonalitySource
	metrics     *observability.Metrics
	logger      *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(
	cfg *config.Config,
	former *services.MemoryFormer,
	store ports.DocumentStore,
	personality handlers.PersonalitySource,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *Router {
	return &Router{
		cfg:         cfg,
		former:      former,
		store:       store,
		personality: personality,
		metrics:     metrics,
		logger:      logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() *chi.Mux {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))

	if rt.cfg.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"http://localhost:3000"},
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Health check
	router.Get("/health", rt.healthCheck)

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Authenticate(rt.cfg.JWTSecret, rt.cfg.JWTIssuer, rt.logger))

		messageHandler := handlers.NewMessageHandler(rt.former, rt.logger)
		r.Post("/messages", messageHandler.IngestMessage)

		memoryHandler := handlers.NewMemoryHandler(rt.store, rt.logger)
		r.Route("/memories", func(r chi.Router) {
			r.Get("/", memoryHandler.ListMemories)
			r.Get("/{memoryID}", memoryHandler.GetMemory)
		})
		r.Get("/contacts", memoryHandler.GetContact)

		promptHandler := handlers.NewPromptHandler(rt.personality, rt.metrics, rt.logger)
		r.Post("/prompts", promptHandler.ComposePrompt)
	})

	return router
}

func (rt *Router) healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}
