package app

import (
	"sort"

	"trivia-quiz-service/internal/domain"
)

// BuildView projects the internal session state into the client-safe
// snapshot. The active question never carries its answer key, and
// per-answer correctness is withheld until the whole quiz has finished.
func BuildView(state domain.SessionState, catalog domain.Catalog) domain.SessionView {
	question, hasQuestion := catalog.QuestionAt(state.CurrentQuestionIndex)

	view := domain.SessionView{
		Session:         buildSummary(state),
		Answers:         buildAnswerStatuses(state, question, hasQuestion),
		Results:         buildResults(state, catalog),
		QuestionResults: buildQuestionResults(state, catalog),
	}
	if hasQuestion {
		view.Question = &domain.QuestionView{
			ID:      question.ID,
			Prompt:  question.Prompt,
			Options: question.Options,
		}
	}
	return view
}

func buildSummary(state domain.SessionState) domain.SessionSummary {
	players := state.Players
	if players == nil {
		players = []domain.Player{}
	}
	return domain.SessionSummary{
		Status:               state.Status,
		HostID:               optionalString(state.HostID),
		CurrentQuestionIndex: state.CurrentQuestionIndex,
		ExpiresAt:            optionalMillis(state.ExpiresAt),
		QuestionCount:        state.QuestionCount,
		Players:              players,
		StartedAt:            optionalMillis(state.StartedAt),
		FinishedAt:           optionalMillis(state.FinishedAt),
	}
}

// buildAnswerStatuses reports each player's standing against the current
// question only. Without an active question every player shows as
// unanswered.
func buildAnswerStatuses(state domain.SessionState, question domain.Question, hasQuestion bool) []domain.PlayerAnswerStatus {
	statuses := make([]domain.PlayerAnswerStatus, 0, len(state.Players))
	var answersForQuestion map[string]domain.Answer
	if hasQuestion {
		answersForQuestion = state.Answers[question.ID]
	}

	for _, player := range state.Players {
		status := domain.PlayerAnswerStatus{PlayerID: player.ID}
		if answer, ok := answersForQuestion[player.ID]; ok {
			status.OptionID = optionalString(answer.OptionID)
			status.SubmittedAt = optionalMillis(answer.SubmittedAt)
			if state.Status == domain.StatusFinished {
				correct := answer.OptionID == question.CorrectOptionID
				status.IsCorrect = &correct
			}
		}
		statuses = append(statuses, status)
	}
	return statuses
}

// buildResults computes the final scoreboard: total correct answers per
// player, ranked by count descending with earlier joiners winning ties.
// Empty until the session has finished.
func buildResults(state domain.SessionState, catalog domain.Catalog) []domain.PlayerResult {
	if state.Status != domain.StatusFinished {
		return []domain.PlayerResult{}
	}

	scoreByPlayer := make(map[string]int, len(state.Players))
	for _, question := range catalog.Questions {
		for playerID, answer := range state.Answers[question.ID] {
			if answer.OptionID == question.CorrectOptionID {
				scoreByPlayer[playerID]++
			}
		}
	}

	joinedAt := make(map[string]int64, len(state.Players))
	results := make([]domain.PlayerResult, 0, len(state.Players))
	for _, player := range state.Players {
		joinedAt[player.ID] = player.JoinedAt
		results = append(results, domain.PlayerResult{
			PlayerID:     player.ID,
			CorrectCount: scoreByPlayer[player.ID],
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].CorrectCount != results[j].CorrectCount {
			return results[i].CorrectCount > results[j].CorrectCount
		}
		return joinedAt[results[i].PlayerID] < joinedAt[results[j].PlayerID]
	})
	return results
}

// buildQuestionResults exposes the full per-question review: question
// detail including the answer key, plus every player's answer and its
// correctness. Structurally computable at any time; clients surface it
// once the quiz is finished.
func buildQuestionResults(state domain.SessionState, catalog domain.Catalog) []domain.QuestionResult {
	results := make([]domain.QuestionResult, 0, catalog.Len())
	for _, question := range catalog.Questions {
		answersForQuestion := state.Answers[question.ID]
		statuses := make([]domain.PlayerAnswerStatus, 0, len(state.Players))
		for _, player := range state.Players {
			status := domain.PlayerAnswerStatus{PlayerID: player.ID}
			if answer, ok := answersForQuestion[player.ID]; ok {
				correct := answer.OptionID == question.CorrectOptionID
				status.OptionID = optionalString(answer.OptionID)
				status.SubmittedAt = optionalMillis(answer.SubmittedAt)
				status.IsCorrect = &correct
			}
			statuses = append(statuses, status)
		}
		results = append(results, domain.QuestionResult{
			Question: domain.QuestionDetail{
				ID:              question.ID,
				Prompt:          question.Prompt,
				Options:         question.Options,
				CorrectOptionID: question.CorrectOptionID,
			},
			Answers: statuses,
		})
	}
	return results
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func optionalMillis(ms int64) *int64 {
	if ms == 0 {
		return nil
	}
	return &ms
}
