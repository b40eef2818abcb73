package app

import (
	"trivia-quiz-service/internal/domain"
)

// Pure transition functions over the session state. All of them take the
// state by value-ish mutation (pointer) plus the catalog and a wall-clock
// instant in epoch milliseconds, and never touch persistence. The
// service serializes callers and persists the result.

// initialState builds a fresh lobby with an empty answer slot per
// catalog question.
func initialState(catalog domain.Catalog) domain.SessionState {
	answers := make(map[string]map[string]domain.Answer, catalog.Len())
	for _, q := range catalog.Questions {
		answers[q.ID] = map[string]domain.Answer{}
	}
	return domain.SessionState{
		Status:               domain.StatusLobby,
		CurrentQuestionIndex: -1,
		QuestionCount:        catalog.Len(),
		Players:              []domain.Player{},
		Answers:              answers,
	}
}

// currentQuestion returns the active question, or false outside 0..N-1.
func currentQuestion(state *domain.SessionState, catalog domain.Catalog) (domain.Question, bool) {
	return catalog.QuestionAt(state.CurrentQuestionIndex)
}

// ensureAnswerSlot guarantees a (possibly empty) answer map exists for
// the question, so projections and completeness checks never nil-deref.
func ensureAnswerSlot(state *domain.SessionState, questionID string) {
	if state.Answers == nil {
		state.Answers = map[string]map[string]domain.Answer{}
	}
	if state.Answers[questionID] == nil {
		state.Answers[questionID] = map[string]domain.Answer{}
	}
}

// finish pins the session in its terminal state. The index stays one
// past the final question so it is clear there is no active prompt.
func finish(state *domain.SessionState, catalog domain.Catalog, now int64) {
	if state.Status == domain.StatusFinished {
		return
	}
	state.Status = domain.StatusFinished
	state.ExpiresAt = 0
	state.FinishedAt = now
	state.CurrentQuestionIndex = catalog.Len()
}

// advance is the auto-advance evaluation: it closes the current question
// when either every known player has answered it or its deadline has
// passed, moving to the next question or finishing the session. It is
// the sole mechanism that moves the session forward and is invoked
// lazily on every access; outside in-progress it is a no-op and it never
// fails.
func advance(state *domain.SessionState, catalog domain.Catalog, duration int64, now int64) {
	if state.Status != domain.StatusInProgress {
		return
	}

	question, ok := currentQuestion(state, catalog)
	if !ok {
		finish(state, catalog, now)
		return
	}

	ensureAnswerSlot(state, question.ID)
	answersForQuestion := state.Answers[question.ID]
	allAnswered := len(state.Players) > 0
	for _, player := range state.Players {
		if _, answered := answersForQuestion[player.ID]; !answered {
			allAnswered = false
			break
		}
	}
	expired := state.ExpiresAt > 0 && state.ExpiresAt <= now

	if !allAnswered && !expired {
		return
	}

	nextIndex := state.CurrentQuestionIndex + 1
	next, ok := catalog.QuestionAt(nextIndex)
	if !ok {
		finish(state, catalog, now)
		return
	}

	state.CurrentQuestionIndex = nextIndex
	ensureAnswerSlot(state, next.ID)
	state.ExpiresAt = now + duration
}
