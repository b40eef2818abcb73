package integration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/domain"
	pgcatalog "trivia-quiz-service/internal/infra/postgres"
	pgmigrations "trivia-quiz-service/internal/infra/postgres/migrations"
	infraredis "trivia-quiz-service/internal/infra/redis"
	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
)

func TestQuizRoundEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	seedCatalog(t, ctx, pgURL, sampleCatalog())

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	loader := pgcatalog.NewCatalogLoader(pool)

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	catalogs := infraredis.NewCatalogRepository(redisClient, loader, 5*time.Minute)
	sessionStore := infraredis.NewSessionStore(redisClient, 5*time.Minute)
	service := app.NewSessionService(sessionStore, catalogs, 30*time.Second)

	alice, err := service.Join(ctx, "Alice", "")
	if err != nil {
		t.Fatalf("join alice: %v", err)
	}
	if !alice.Host {
		t.Fatalf("expected alice to be host")
	}
	bob, err := service.Join(ctx, "Bob", "")
	if err != nil {
		t.Fatalf("join bob: %v", err)
	}

	view, err := service.Start(ctx, alice.PlayerID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if view.Question == nil || view.Question.ID != "q1" {
		t.Fatalf("expected q1 active, got %+v", view.Question)
	}

	// Play both questions: Alice always right, Bob always wrong.
	for _, qid := range []string{"q1", "q2"} {
		if _, err := service.SubmitAnswer(ctx, alice.PlayerID, qid, qid+"-b"); err != nil {
			t.Fatalf("alice %s: %v", qid, err)
		}
		if view, err = service.SubmitAnswer(ctx, bob.PlayerID, qid, qid+"-a"); err != nil {
			t.Fatalf("bob %s: %v", qid, err)
		}
	}

	if view.Session.Status != domain.StatusFinished {
		t.Fatalf("expected finished, got %s", view.Session.Status)
	}
	if len(view.Results) != 2 ||
		view.Results[0].PlayerID != alice.PlayerID || view.Results[0].CorrectCount != 2 ||
		view.Results[1].PlayerID != bob.PlayerID || view.Results[1].CorrectCount != 0 {
		t.Fatalf("unexpected results: %+v", view.Results)
	}

	// The record survives a fresh service over the same redis.
	rehydrated := app.NewSessionService(infraredis.NewSessionStore(redisClient, 5*time.Minute), catalogs, 30*time.Second)
	view, err = rehydrated.GetView(ctx)
	if err != nil {
		t.Fatalf("rehydrated view: %v", err)
	}
	if view.Session.Status != domain.StatusFinished {
		t.Fatalf("session lost across services: %s", view.Session.Status)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func seedCatalog(t *testing.T, ctx context.Context, dsn string, catalog domain.Catalog) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	for position, question := range catalog.Questions {
		data, err := json.Marshal(question)
		if err != nil {
			t.Fatalf("marshal question: %v", err)
		}
		if _, err := db.ExecContext(ctx,
			`INSERT INTO catalog_questions (id, position, data) VALUES (?, ?, ?::jsonb)
			 ON CONFLICT (id) DO UPDATE SET position=EXCLUDED.position, data=EXCLUDED.data`,
			question.ID, position, string(data)); err != nil {
			t.Fatalf("insert question: %v", err)
		}
	}
}

func sampleCatalog() domain.Catalog {
	return domain.Catalog{
		Questions: []domain.Question{
			{
				ID:     "q1",
				Prompt: "What is 2 + 2?",
				Options: []domain.Option{
					{ID: "q1-a", Label: "3"},
					{ID: "q1-b", Label: "4"},
				},
				CorrectOptionID: "q1-b",
			},
			{
				ID:     "q2",
				Prompt: "Which planet is the Red Planet?",
				Options: []domain.Option{
					{ID: "q2-a", Label: "Venus"},
					{ID: "q2-b", Label: "Mars"},
				},
				CorrectOptionID: "q2-b",
			},
		},
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
