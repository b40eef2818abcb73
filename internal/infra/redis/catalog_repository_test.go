package redis

import (
	"context"
	"testing"
	"time"

	"trivia-quiz-service/internal/domain"
)

func TestCatalogRepositoryFillsCache(t *testing.T) {
	ctx := context.Background()
	client, mr := testClient(t)

	loader := &countingLoader{catalog: sampleCatalog()}
	repo := NewCatalogRepository(client, loader, 5*time.Minute)

	catalog, err := repo.GetCatalog(ctx)
	if err != nil {
		t.Fatalf("get catalog: %v", err)
	}
	if catalog.Len() != 2 {
		t.Fatalf("expected 2 questions, got %d", catalog.Len())
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls)
	}
	if !mr.Exists("quiz:catalog") {
		t.Fatalf("expected catalog cached in redis")
	}

	// Second fetch is served from redis without hitting the loader.
	catalog, err = repo.GetCatalog(ctx)
	if err != nil {
		t.Fatalf("get catalog 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls)
	}
	if catalog.Questions[0].ID != "q1" || catalog.Questions[1].ID != "q2" {
		t.Fatalf("catalog order lost through cache: %+v", catalog.Questions)
	}
}

func TestCatalogRepositoryReloadsAfterExpiry(t *testing.T) {
	ctx := context.Background()
	client, mr := testClient(t)

	loader := &countingLoader{catalog: sampleCatalog()}
	repo := NewCatalogRepository(client, loader, time.Minute)

	if _, err := repo.GetCatalog(ctx); err != nil {
		t.Fatalf("get catalog: %v", err)
	}

	mr.FastForward(3 * time.Minute)
	if _, err := repo.GetCatalog(ctx); err != nil {
		t.Fatalf("get catalog after expiry: %v", err)
	}
	if loader.calls != 2 {
		t.Fatalf("expected reload after expiry, loader calls %d", loader.calls)
	}
}

type countingLoader struct {
	catalog domain.Catalog
	calls   int
}

func (l *countingLoader) LoadCatalog(_ context.Context) (domain.Catalog, error) {
	l.calls++
	return l.catalog, nil
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
				Prompt: "Pick B",
				Options: []domain.Option{
					{ID: "q2-a", Label: "A"},
					{ID: "q2-b", Label: "B"},
				},
				CorrectOptionID: "q2-b",
			},
		},
	}
}
