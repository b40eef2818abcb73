package redis

import (
	"context"
	"testing"
	"time"

	"trivia-quiz-service/internal/domain"
	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestSessionStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	client, mr := testClient(t)
	store := NewSessionStore(client, time.Minute)

	if _, exists, err := store.Load(ctx); err != nil || exists {
		t.Fatalf("expected no record yet, exists=%v err=%v", exists, err)
	}

	state := domain.SessionState{
		Status:               domain.StatusInProgress,
		HostID:               "p1",
		CurrentQuestionIndex: 1,
		ExpiresAt:            12_345,
		QuestionCount:        2,
		Players: []domain.Player{
			{ID: "p1", Name: "Alice", JoinedAt: 1},
			{ID: "p2", Name: "Bob", JoinedAt: 2},
		},
		Answers: map[string]map[string]domain.Answer{
			"q1": {
				"p1": {OptionID: "q1-b", SubmittedAt: 5},
			},
			"q2": {},
		},
		StartedAt: 1,
	}
	if err := store.Save(ctx, state); err != nil {
		t.Fatalf("save: %v", err)
	}
	if !mr.Exists("quiz:session") {
		t.Fatalf("expected session key in redis")
	}

	loaded, exists, err := store.Load(ctx)
	if err != nil || !exists {
		t.Fatalf("load: exists=%v err=%v", exists, err)
	}
	if loaded.Status != domain.StatusInProgress || loaded.HostID != "p1" {
		t.Fatalf("unexpected state: %+v", loaded)
	}
	if len(loaded.Players) != 2 || loaded.Players[1].Name != "Bob" {
		t.Fatalf("players lost in round trip: %+v", loaded.Players)
	}
	if answer := loaded.Answers["q1"]["p1"]; answer.OptionID != "q1-b" || answer.SubmittedAt != 5 {
		t.Fatalf("answers lost in round trip: %+v", loaded.Answers)
	}
}

func TestSessionStoreAppliesTTL(t *testing.T) {
	ctx := context.Background()
	client, mr := testClient(t)
	store := NewSessionStore(client, time.Minute)

	if err := store.Save(ctx, domain.SessionState{Status: domain.StatusLobby, CurrentQuestionIndex: -1}); err != nil {
		t.Fatalf("save: %v", err)
	}

	mr.FastForward(2 * time.Minute)
	if _, exists, err := store.Load(ctx); err != nil || exists {
		t.Fatalf("expected record expired, exists=%v err=%v", exists, err)
	}
}

func testClient(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()}), mr
}
