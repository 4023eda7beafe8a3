package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/tripdesk/backend/internal/api/handlers"
	"github.com/tripdesk/backend/internal/api/middleware"
	"github.com/tripdesk/backend/internal/cache"
	"github.com/tripdesk/backend/internal/config"
	"github.com/tripdesk/backend/internal/geo"
	"github.com/tripdesk/backend/internal/itinerary"
	"github.com/tripdesk/backend/internal/llm"
	"github.com/tripdesk/backend/internal/llmcall"
	"github.com/tripdesk/backend/internal/prompt"
	"github.com/tripdesk/backend/internal/queue"
	"github.com/tripdesk/backend/internal/regen"
)

type Router struct {
	mux   *chi.Mux
	db    *pgxpool.Pool
	redis *redis.Client
	cfg   *config.Config
}

func NewRouter(db *pgxpool.Pool, rdb *redis.Client, cfg *config.Config) *Router {
	return &Router{
		mux:   chi.NewRouter(),
		db:    db,
		redis: rdb,
		cfg:   cfg,
	}
}

func (rt *Router) Setup() http.Handler {
	r := rt.mux

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS([]string{"*"}))

	rl := middleware.NewRateLimiter(100, 200)
	r.Use(rl.Limit)

	// Health endpoints
	health := handlers.NewHealthHandler(rt.db, rt.redis)
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)

	// Initialize services
	redisCache := cache.NewCache(rt.redis)
	promptSvc := prompt.NewService(rt.db)
	callSvc := llmcall.NewService(rt.db)
	itinSvc := itinerary.NewService(rt.db)
	geoSvc := geo.NewService(rt.db, geo.NewPlacesClient(rt.cfg.Places))

	queueClient := queue.NewClient(rt.cfg.Redis, rt.cfg.Generation)
	batchStore := regen.NewPostgresStore(rt.db)
	executor := regen.NewQueueExecutor(queueClient, redisCache)
	orch := regen.NewOrchestrator(batchStore, executor, itinSvc)
	tracker := regen.NewTracker(batchStore, redisCache, rt.cfg.Generation.RecentWindow, rt.cfg.Generation.StatusCacheTTL)

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Prompt routes
		promptH := handlers.NewPromptHandler(promptSvc)
		r.Route("/prompts", func(r chi.Router) {
			r.Post("/", promptH.Create)
			r.Get("/", promptH.List)
			r.Get("/{id}", promptH.Get)
			r.Put("/{id}", promptH.CreateVersion)
			r.Post("/{id}/revert", promptH.Revert)
			r.Get("/{id}/active", promptH.ActiveVersion)
		})

		// Regeneration routes
		regenH := handlers.NewRegenHandler(orch, tracker, batchStore)
		r.Route("/projects/{projectID}/regenerate", func(r chi.Router) {
			r.Post("/single", regenH.Single)
			r.Post("/day", regenH.Day)
			r.Post("/column", regenH.Column)
			r.Post("/", regenH.Project)
		})
		r.Get("/projects/{projectID}/regeneration-status", regenH.Status)
		r.Get("/batches/{batchID}", regenH.GetBatch)

		// Itinerary routes
		itinH := handlers.NewItineraryHandler(itinSvc, callSvc)
		r.Get("/projects/{projectID}/days", itinH.Days)
		r.Route("/days/{dayID}", func(r chi.Router) {
			r.Get("/travel", itinH.DayTravel)
			r.Get("/activities", itinH.DayActivities)
			r.Put("/supplementary", promptH.SetSupplementary)
		})
		r.Get("/llm-calls/{id}", itinH.Call)

		// LLM routes
		llmH := handlers.NewLLMHandler(llm.NewGateway(rt.cfg.LLM))
		r.Get("/llm/models", llmH.Models)

		// Geo routes
		geoH := handlers.NewGeoHandler(geoSvc)
		r.Route("/places", func(r chi.Router) {
			r.Get("/autocomplete", geoH.Autocomplete)
			r.Post("/import", geoH.ImportPlace)
		})
	})

	return r
}
