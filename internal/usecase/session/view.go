package session

import "github.com/quizduel/quizduel-backend/internal/domain"

// QuestionView is the question as shown to a player. The correct answer
// stays server-side; checking happens in SubmitAnswer.
type QuestionView struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Category string   `json:"category"`
}

// OutcomeView is the rendered terminal result.
type OutcomeView struct {
	Tie      bool   `json:"tie"`
	WinnerID string `json:"winnerId,omitempty"`
	YouWon   bool   `json:"youWon"`
	Score    int    `json:"score"`
	Message  string `json:"message"`
}

// View is a consistent copy of the session for delivery.
type View struct {
	MatchID        string        `json:"matchId"`
	PlayerID       string        `json:"playerId"`
	Role           string        `json:"role,omitempty"`
	State          string        `json:"state"`
	Pointer        int           `json:"currentQuestionIndex"`
	TotalQuestions int           `json:"totalQuestions"`
	PlayerOneID    string        `json:"playerOneId,omitempty"`
	PlayerTwoID    string        `json:"playerTwoId,omitempty"`
	PlayerOneScore int           `json:"playerOneScore"`
	PlayerTwoScore int           `json:"playerTwoScore"`
	Question       *QuestionView `json:"question,omitempty"`
	Outcome        *OutcomeView  `json:"outcome,omitempty"`
	Error          string        `json:"error,omitempty"`
}

// View snapshots the session under its lock.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		MatchID:  s.matchID,
		PlayerID: s.playerID,
		State:    s.state.String(),
		Pointer:  s.pointer,
	}
	if s.role != 0 {
		v.Role = s.role.String()
	}
	if s.lastErr != nil {
		v.Error = s.lastErr.Error()
	}
	if s.game == nil {
		return v
	}

	v.TotalQuestions = len(s.game.Questions)
	v.PlayerOneID = s.game.PlayerOneID
	if s.game.PlayerTwoID != domain.PlayerTwoUnassigned {
		v.PlayerTwoID = s.game.PlayerTwoID
	}
	v.PlayerOneScore = s.game.PlayerOneScore
	v.PlayerTwoScore = s.game.PlayerTwoScore

	if s.state == domain.StateQuiz && s.pointer >= 0 && s.pointer < len(s.game.Questions) {
		q := s.game.Questions[s.pointer]
		v.Question = &QuestionView{
			Question: q.Question,
			Options:  q.Options,
			Category: q.Category,
		}
	}

	if s.state == domain.StateComplete {
		out := s.game.OutcomeFor(s.playerID)
		v.Outcome = &OutcomeView{
			Tie:      out.Tie,
			WinnerID: out.WinnerID,
			YouWon:   out.YouWon,
			Score:    out.Score,
			Message:  out.Render(),
		}
	}

	return v
}

// Outcome returns the terminal result, valid once the state is complete.
func (s *Session) Outcome() (domain.Outcome, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != domain.StateComplete || s.game == nil {
		return domain.Outcome{}, false
	}
	return s.game.OutcomeFor(s.playerID), true
}

// State returns the current session state.
func (s *Session) State() domain.GameState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Pointer returns the local question pointer.
func (s *Session) Pointer() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pointer
}
