package app

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"trivia-quiz-service/internal/domain"
	"github.com/google/uuid"
)

// SessionStore abstracts how the single session record is persisted
// (in-memory, Redis, etc). Load reports false when no record exists yet.
type SessionStore interface {
	Load(ctx context.Context) (domain.SessionState, bool, error)
	Save(ctx context.Context, state domain.SessionState) error
}

// CatalogRepository loads the question catalog (from cache/backing store).
type CatalogRepository interface {
	GetCatalog(ctx context.Context) (domain.Catalog, error)
}

// SessionService owns the quiz session lifecycle: join, start, answer
// submission, lazy auto-advance and view projection. Every operation is
// one read-modify-write pass over the stored record; a single mutex
// serializes them so concurrent polls and submissions cannot interleave
// mid-transition.
type SessionService struct {
	mu       sync.Mutex
	store    SessionStore
	catalogs CatalogRepository
	duration time.Duration

	now         func() time.Time
	newPlayerID func() string
}

func NewSessionService(store SessionStore, catalogs CatalogRepository, questionDuration time.Duration) *SessionService {
	return &SessionService{
		store:    store,
		catalogs: catalogs,
		duration: questionDuration,
		now:      time.Now,
		newPlayerID: func() string {
			return "player-" + uuid.NewString()
		},
	}
}

// WithClock overrides the service clock. Test-only.
func (s *SessionService) WithClock(now func() time.Time) *SessionService {
	s.now = now
	return s
}

// WithPlayerIDs overrides player id minting. Test-only.
func (s *SessionService) WithPlayerIDs(mint func() string) *SessionService {
	s.newPlayerID = mint
	return s
}

// GetView returns the projected view, creating the session lazily and
// running auto-advance first. Repeated calls only mutate state through
// the time-driven advance.
func (s *SessionService) GetView(ctx context.Context) (domain.SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	catalog, state, err := s.readSession(ctx)
	if err != nil {
		return domain.SessionView{}, err
	}

	advance(&state, catalog, s.duration.Milliseconds(), s.nowMillis())
	if err := s.writeSession(ctx, &state, catalog); err != nil {
		return domain.SessionView{}, err
	}
	return BuildView(state, catalog), nil
}

// Join registers a new player in the lobby, or renames/reuses an
// existing one when existingPlayerID resolves. The first player to ever
// join becomes the host. Safe to repeat with the same player id.
func (s *SessionService) Join(ctx context.Context, name, existingPlayerID string) (domain.JoinResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return domain.JoinResult{}, domain.NewError(domain.ErrInvalidInput, "player name is required")
	}

	catalog, state, err := s.readSession(ctx)
	if err != nil {
		return domain.JoinResult{}, err
	}

	if state.Status != domain.StatusLobby {
		return domain.JoinResult{}, domain.NewError(domain.ErrConflict, "quiz already started")
	}

	for _, player := range state.Players {
		if strings.EqualFold(player.Name, trimmed) && player.ID != existingPlayerID {
			return domain.JoinResult{}, domain.NewError(domain.ErrConflict, "name already taken")
		}
	}

	now := s.nowMillis()
	playerID := ""
	if existingPlayerID != "" {
		for i := range state.Players {
			if state.Players[i].ID == existingPlayerID {
				state.Players[i].Name = trimmed
				playerID = existingPlayerID
				break
			}
		}
	}
	if playerID == "" {
		playerID = s.newPlayerID()
		state.Players = append(state.Players, domain.Player{
			ID:       playerID,
			Name:     trimmed,
			JoinedAt: now,
		})
	}

	if state.HostID == "" {
		state.HostID = playerID
	}

	if err := s.writeSession(ctx, &state, catalog); err != nil {
		return domain.JoinResult{}, err
	}
	return domain.JoinResult{
		View:     BuildView(state, catalog),
		PlayerID: playerID,
		Host:     state.HostID == playerID,
	}, nil
}

// Start moves the lobby into play. Host-only; requires at least one
// player and a non-empty catalog.
func (s *SessionService) Start(ctx context.Context, playerID string) (domain.SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	catalog, state, err := s.readSession(ctx)
	if err != nil {
		return domain.SessionView{}, err
	}

	if state.Status != domain.StatusLobby {
		return domain.SessionView{}, domain.NewError(domain.ErrConflict, "quiz already started")
	}
	if state.HostID == "" || state.HostID != playerID {
		return domain.SessionView{}, domain.NewError(domain.ErrForbidden, "only the host can start the quiz")
	}
	if len(state.Players) == 0 {
		return domain.SessionView{}, domain.NewError(domain.ErrInvalidInput, "at least one player is required to start")
	}
	if catalog.Len() == 0 {
		return domain.SessionView{}, domain.NewError(domain.ErrInternal, "quiz questions are not configured")
	}

	now := s.nowMillis()
	state.Status = domain.StatusInProgress
	state.CurrentQuestionIndex = 0
	state.StartedAt = now
	state.FinishedAt = 0
	state.ExpiresAt = now + s.duration.Milliseconds()
	ensureAnswerSlot(&state, catalog.Questions[0].ID)

	if err := s.writeSession(ctx, &state, catalog); err != nil {
		return domain.SessionView{}, err
	}
	return BuildView(state, catalog), nil
}

// SubmitAnswer records a player's pick for the active question, then
// runs auto-advance. A resubmission for the same open question
// overwrites the earlier pick; last write wins.
func (s *SessionService) SubmitAnswer(ctx context.Context, playerID, questionID, optionID string) (domain.SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	catalog, state, err := s.readSession(ctx)
	if err != nil {
		return domain.SessionView{}, err
	}

	if state.Status != domain.StatusInProgress {
		return domain.SessionView{}, domain.NewError(domain.ErrConflict, "quiz is not active")
	}
	if _, ok := state.FindPlayer(playerID); !ok {
		return domain.SessionView{}, domain.NewError(domain.ErrNotFound, "player not found in session")
	}
	question, ok := currentQuestion(&state, catalog)
	if !ok || question.ID != questionID {
		return domain.SessionView{}, domain.NewError(domain.ErrInvalidInput, "question is no longer active")
	}
	if !question.HasOption(optionID) {
		return domain.SessionView{}, domain.NewError(domain.ErrInvalidInput, "invalid option for this question")
	}

	now := s.nowMillis()
	ensureAnswerSlot(&state, question.ID)
	state.Answers[question.ID][playerID] = domain.Answer{
		OptionID:    optionID,
		SubmittedAt: now,
	}

	advance(&state, catalog, s.duration.Milliseconds(), now)
	if err := s.writeSession(ctx, &state, catalog); err != nil {
		return domain.SessionView{}, err
	}
	return BuildView(state, catalog), nil
}

// Reset unconditionally replaces the session with a fresh lobby. An
// administrative escape hatch, not reachable by ordinary players.
func (s *SessionService) Reset(ctx context.Context) (domain.SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	catalog, err := s.catalogs.GetCatalog(ctx)
	if err != nil {
		return domain.SessionView{}, fmt.Errorf("load catalog: %w", err)
	}

	state := initialState(catalog)
	if err := s.store.Save(ctx, state); err != nil {
		return domain.SessionView{}, fmt.Errorf("save session: %w", err)
	}
	return BuildView(state, catalog), nil
}

// readSession loads the catalog and the stored session, creating a fresh
// lobby on first access. The question count is recomputed on every read
// so a catalog change between deployments cannot leave a stale count in
// the record.
func (s *SessionService) readSession(ctx context.Context) (domain.Catalog, domain.SessionState, error) {
	catalog, err := s.catalogs.GetCatalog(ctx)
	if err != nil {
		return domain.Catalog{}, domain.SessionState{}, fmt.Errorf("load catalog: %w", err)
	}

	state, exists, err := s.store.Load(ctx)
	if err != nil {
		return domain.Catalog{}, domain.SessionState{}, fmt.Errorf("load session: %w", err)
	}
	if !exists {
		state = initialState(catalog)
		if err := s.store.Save(ctx, state); err != nil {
			return domain.Catalog{}, domain.SessionState{}, fmt.Errorf("save session: %w", err)
		}
	}

	state.QuestionCount = catalog.Len()
	if state.Players == nil {
		state.Players = []domain.Player{}
	}
	if state.Answers == nil {
		state.Answers = map[string]map[string]domain.Answer{}
	}
	return catalog, state, nil
}

func (s *SessionService) writeSession(ctx context.Context, state *domain.SessionState, catalog domain.Catalog) error {
	state.QuestionCount = catalog.Len()
	if err := s.store.Save(ctx, *state); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *SessionService) nowMillis() int64 {
	return s.now().UnixMilli()
}
