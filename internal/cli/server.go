package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/config"
	"trivia-quiz-service/internal/domain"
	"trivia-quiz-service/internal/infra/memory"
	pgcatalog "trivia-quiz-service/internal/infra/postgres"
	redisinfra "trivia-quiz-service/internal/infra/redis"
	transport "trivia-quiz-service/internal/transport/http"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 0)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	loader, err := chooseCatalogLoader(cfg, pool)
	if err != nil {
		return err
	}

	catalogTTL := config.TTLDuration(cfg.Quiz.CatalogTTL, 10*time.Minute)
	var catalogs app.CatalogRepository
	if redisClient != nil {
		catalogs = redisinfra.NewCatalogRepository(redisClient, loader, catalogTTL)
	} else {
		catalogs = memory.NewCatalogRepository(loader, catalogTTL)
	}

	var store app.SessionStore
	if redisClient != nil {
		store = redisinfra.NewSessionStore(redisClient, redisTTL)
	} else {
		store = memory.NewSessionStore()
	}

	questionDuration := config.TTLDuration(cfg.Quiz.QuestionDuration, 30*time.Second)
	service := app.NewSessionService(store, catalogs, questionDuration)
	handler := transport.NewHandler(service)

	router := mux.NewRouter()
	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	handler.Register(router)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting trivia quiz service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// chooseCatalogLoader picks the catalog source: a YAML file when
// configured, else Postgres, else the built-in sample.
func chooseCatalogLoader(cfg config.Config, pool *pgxpool.Pool) (memory.CatalogLoader, error) {
	if cfg.Quiz.CatalogPath != "" {
		catalog, err := config.LoadCatalog(cfg.Quiz.CatalogPath)
		if err != nil {
			return nil, err
		}
		return memory.NewStaticCatalogLoader(catalog), nil
	}
	if pool != nil {
		return pgcatalog.NewCatalogLoader(pool), nil
	}
	return memory.NewStaticCatalogLoader(sampleCatalog()), nil
}

// sampleCatalog provides a minimal question set; configure a catalog
// file or Postgres in production.
func sampleCatalog() domain.Catalog {
	return domain.Catalog{
		Questions: []domain.Question{
			{
				ID:     "q1",
				Prompt: "What is 2 + 2?",
				Options: []domain.Option{
					{ID: "q1-a", Label: "3"},
					{ID: "q1-b", Label: "4"},
					{ID: "q1-c", Label: "5"},
				},
				CorrectOptionID: "q1-b",
			},
			{
				ID:     "q2",
				Prompt: "Which planet is known as the Red Planet?",
				Options: []domain.Option{
					{ID: "q2-a", Label: "Venus"},
					{ID: "q2-b", Label: "Jupiter"},
					{ID: "q2-c", Label: "Mars"},
				},
				CorrectOptionID: "q2-c",
			},
		},
	}
}
