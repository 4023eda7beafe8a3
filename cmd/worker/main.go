package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/tripdesk/backend/internal/cache"
	"github.com/tripdesk/backend/internal/config"
	"github.com/tripdesk/backend/internal/database"
	"github.com/tripdesk/backend/internal/itinerary"
	"github.com/tripdesk/backend/internal/llm"
	"github.com/tripdesk/backend/internal/llmcall"
	"github.com/tripdesk/backend/internal/prompt"
	"github.com/tripdesk/backend/internal/queue"
	"github.com/tripdesk/backend/internal/queue/workers"
	"github.com/tripdesk/backend/internal/regen"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	db, err := database.NewPool(ctx, cfg.Database)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		slog.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	defer rdb.Close()

	itinSvc := itinerary.NewService(db)
	promptSvc := prompt.NewService(db)
	callSvc := llmcall.NewService(db)
	gateway := llm.NewGateway(cfg.LLM)

	pipeline := regen.NewPipeline(itinSvc, promptSvc, callSvc, gateway, itinSvc, cfg.LLM.DefaultProvider, cfg.LLM.DefaultModel)
	settler := regen.NewSettler(regen.NewPostgresStore(db), cache.NewCache(rdb))

	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
		},
	)

	registry := queue.NewHandlersRegistry()

	// Register workers
	generationWorker := workers.NewGenerationWorker(pipeline, settler)

	registry.Register(queue.TypeGenerationRun, asynq.HandlerFunc(generationWorker.ProcessTask))

	slog.Info("starting worker", "concurrency", 10)
	if err := srv.Run(registry.Mux()); err != nil {
		slog.Error("worker error", "error", err)
		os.Exit(1)
	}
}
