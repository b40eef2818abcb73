package domain

// SessionStatus tracks the lifecycle of the shared quiz session.
type SessionStatus string

const (
	// StatusLobby means players may still join; the quiz has not started.
	StatusLobby SessionStatus = "lobby"
	// StatusInProgress means a question is active and accepting answers.
	StatusInProgress SessionStatus = "in-progress"
	// StatusFinished means every question has been played out.
	StatusFinished SessionStatus = "finished"
)

// Option represents a possible answer for a question.
type Option struct {
	ID    string `json:"id" yaml:"id"`
	Label string `json:"label" yaml:"label"`
}

// Question models an MCQ question with exactly one correct option.
type Question struct {
	ID              string   `json:"id" yaml:"id"`
	Prompt          string   `json:"prompt" yaml:"prompt"`
	Options         []Option `json:"options" yaml:"options"`
	CorrectOptionID string   `json:"correctOptionId" yaml:"correctOptionId"`
}

// HasOption reports whether optionID is one of the question's options.
func (q Question) HasOption(optionID string) bool {
	for _, opt := range q.Options {
		if opt.ID == optionID {
			return true
		}
	}
	return false
}

// Catalog is the fixed, ordered list of questions for a deployment.
type Catalog struct {
	Questions []Question `json:"questions" yaml:"questions"`
}

// Len returns the number of questions in the catalog.
func (c Catalog) Len() int {
	return len(c.Questions)
}

// QuestionAt returns the question at index, or false when out of range.
func (c Catalog) QuestionAt(index int) (Question, bool) {
	if index < 0 || index >= len(c.Questions) {
		return Question{}, false
	}
	return c.Questions[index], true
}

// Validate checks that the catalog is well formed: unique question ids,
// at least one option per question, and a correctOptionId that
// references one of the question's own options.
func (c Catalog) Validate() error {
	seen := make(map[string]struct{}, len(c.Questions))
	for _, q := range c.Questions {
		if q.ID == "" {
			return NewError(ErrInvalidInput, "question without id")
		}
		if _, dup := seen[q.ID]; dup {
			return NewError(ErrInvalidInput, "duplicate question id "+q.ID)
		}
		seen[q.ID] = struct{}{}
		if len(q.Options) == 0 {
			return NewError(ErrInvalidInput, "question "+q.ID+" has no options")
		}
		if !q.HasOption(q.CorrectOptionID) {
			return NewError(ErrInvalidInput, "question "+q.ID+" correct option not among its options")
		}
	}
	return nil
}

// Player is a participant in the session. Players are appended in join
// order and are never removed while a session is active.
type Player struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	JoinedAt int64  `json:"joinedAt"`
}

// Answer records a single player's pick for a question.
type Answer struct {
	OptionID    string `json:"optionId"`
	SubmittedAt int64  `json:"submittedAt"`
}

// SessionState is the persisted shape of the single quiz session. All
// timestamps are epoch milliseconds; zero means unset.
type SessionState struct {
	Status               SessionStatus                `json:"status"`
	HostID               string                       `json:"hostId"`
	CurrentQuestionIndex int                          `json:"currentQuestionIndex"`
	ExpiresAt            int64                        `json:"expiresAt"`
	QuestionCount        int                          `json:"questionCount"`
	Players              []Player                     `json:"players"`
	Answers              map[string]map[string]Answer `json:"answers"`
	StartedAt            int64                        `json:"startedAt"`
	FinishedAt           int64                        `json:"finishedAt"`
}

// FindPlayer returns the player with the given id, or false.
func (s SessionState) FindPlayer(playerID string) (Player, bool) {
	for _, p := range s.Players {
		if p.ID == playerID {
			return p, true
		}
	}
	return Player{}, false
}

// QuestionView is a question as shown to players while it is active:
// the correct option is withheld.
type QuestionView struct {
	ID      string   `json:"id"`
	Prompt  string   `json:"prompt"`
	Options []Option `json:"options"`
}

// QuestionDetail is the full question including its answer key, exposed
// only through the post-quiz review.
type QuestionDetail struct {
	ID              string   `json:"id"`
	Prompt          string   `json:"prompt"`
	Options         []Option `json:"options"`
	CorrectOptionID string   `json:"correctOptionId"`
}

// PlayerAnswerStatus is one player's standing against a question.
// IsCorrect stays null until the whole quiz has finished.
type PlayerAnswerStatus struct {
	PlayerID    string  `json:"playerId"`
	OptionID    *string `json:"optionId"`
	SubmittedAt *int64  `json:"submittedAt"`
	IsCorrect   *bool   `json:"isCorrect"`
}

// PlayerResult is a scoreboard row.
type PlayerResult struct {
	PlayerID     string `json:"playerId"`
	CorrectCount int    `json:"correctCount"`
}

// QuestionResult pairs a question's full detail with every player's
// answer to it, for the review screen.
type QuestionResult struct {
	Question QuestionDetail       `json:"question"`
	Answers  []PlayerAnswerStatus `json:"answers"`
}

// SessionSummary is the session header included in every view. Nullable
// fields are pointers so absent values serialize as null.
type SessionSummary struct {
	Status               SessionStatus `json:"status"`
	HostID               *string       `json:"hostId"`
	CurrentQuestionIndex int           `json:"currentQuestionIndex"`
	ExpiresAt            *int64        `json:"expiresAt"`
	QuestionCount        int           `json:"questionCount"`
	Players              []Player      `json:"players"`
	StartedAt            *int64        `json:"startedAt"`
	FinishedAt           *int64        `json:"finishedAt"`
}

// SessionView is the client-safe projection of the session. Clients only
// ever see views, never raw state.
type SessionView struct {
	Session         SessionSummary       `json:"session"`
	Question        *QuestionView        `json:"question"`
	Answers         []PlayerAnswerStatus `json:"answers"`
	Results         []PlayerResult       `json:"results"`
	QuestionResults []QuestionResult     `json:"questionResults"`
}

// JoinResult is returned to a joining player along with the fresh view.
type JoinResult struct {
	View     SessionView `json:"view"`
	PlayerID string      `json:"playerId"`
	Host     bool        `json:"host"`
}
