package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/quizduel/quizduel-backend/internal/domain"
	"github.com/quizduel/quizduel-backend/internal/repository"
	"github.com/quizduel/quizduel-backend/internal/usecase/matchmaking"
)

// Generator is the opaque question source. The Gemini client satisfies
// it in production; tests inject stubs.
type Generator interface {
	GenerateQuestions(ctx context.Context, description string) (domain.QuestionList, error)
}

// Session is one player's side of a match: the local state machine fed
// by observer-derived transitions, plus the record writes the peer's
// observer will pick up. All coordination with the other player goes
// through the store; the two sessions never talk directly, even when
// they happen to be hosted by the same process.
type Session struct {
	store repository.MatchStore
	gen   Generator
	log   *slog.Logger

	playerID string
	matchID  string
	role     domain.Role

	cancel context.CancelFunc
	done   chan struct{}

	mu        sync.Mutex
	state     domain.GameState
	game      *domain.Match
	pointer   int
	generated bool
	lastErr   error
}

func newSession(store repository.MatchStore, gen Generator, log *slog.Logger, playerID string) *Session {
	return &Session{
		store:    store,
		gen:      gen,
		log:      log,
		playerID: playerID,
		state:    domain.StateIdle,
		pointer:  -1,
		done:     make(chan struct{}),
	}
}

// start runs matchmaking and hands the match to the observer before
// returning. The observer keeps running for the life of the match.
func (s *Session) start(ctx context.Context, coord *matchmaking.Coordinator) error {
	handle, err := coord.FindOrCreate(ctx, s.playerID)
	if err != nil {
		s.mu.Lock()
		s.state = domain.StateError
		s.lastErr = err
		s.mu.Unlock()
		close(s.done)
		return err
	}

	s.mu.Lock()
	s.matchID = handle.Match.ID
	s.role = handle.Role
	s.state = handle.State
	s.game = handle.Match
	s.mu.Unlock()

	obsCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	observer := matchmaking.NewObserver(s.store, s.log, handle.State)

	go func() {
		defer close(s.done)
		if err := observer.Run(obsCtx, handle.Match.ID, s); err != nil && obsCtx.Err() == nil {
			s.log.Error("match observation ended", "match_id", handle.Match.ID, "error", err)
			s.fail(err)
		}
	}()

	return nil
}

// End stops observing the match. It is the session's only cancellation
// point; in-flight store writes are not aborted.
func (s *Session) End() {
	if s.cancel != nil {
		s.cancel()
	}
}

// Done is closed once the observer has stopped.
func (s *Session) Done() <-chan struct{} { return s.done }

func (s *Session) MatchID() string { return s.matchID }

func (s *Session) fail(err error) {
	s.mu.Lock()
	s.state = domain.StateError
	s.lastErr = err
	s.mu.Unlock()
}

// QuizStarted implements matchmaking.Sink.
func (s *Session) QuizStarted(match domain.Match) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Terminal() {
		return
	}
	s.state = domain.StateQuiz
	s.game = &match
}

// Paired implements matchmaking.Sink. The creator owns generation and
// triggers it exactly once, here, on learning it has a peer.
func (s *Session) Paired(match domain.Match) {
	s.mu.Lock()
	if s.state == domain.StateSearching {
		s.state = domain.StateFound
		s.game = &match
	}
	trigger := s.role == domain.RolePlayerOne && !s.generated
	if trigger {
		s.generated = true
	}
	s.mu.Unlock()

	if trigger {
		// Off the observer loop so snapshot delivery keeps flowing
		// while the generator runs.
		go func() {
			if err := s.GenerateAndPublish(context.Background(), match.ID); err != nil {
				s.log.Error("generation hand-off failed", "match_id", match.ID, "error", err)
			}
		}()
	}
}

// PointerAdvanced implements matchmaking.Sink.
func (s *Session) PointerAdvanced(pointer int, match domain.Match) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Terminal() {
		return
	}
	s.pointer = pointer
	if s.state == domain.StateQuiz {
		s.game = &match
		if s.pointer >= len(s.game.Questions) {
			s.state = domain.StateComplete
			s.log.Info("quiz complete",
				"match_id", match.ID,
				"player_one_score", match.PlayerOneScore,
				"player_two_score", match.PlayerTwoScore)
		}
	}
}

// Snapshot implements matchmaking.Sink. Keeps the cached game view
// current while in quiz so score writes build on the latest observed
// own-score value.
func (s *Session) Snapshot(match domain.Match) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == domain.StateQuiz {
		s.game = &match
	}
}

// GenerateAndPublish calls the generator and, on success, writes the
// whole question list to the match in a single update. That one write is
// what flips both observers into the quiz state. On failure the session
// goes to its error state and nothing is written; the peer is left
// waiting.
func (s *Session) GenerateAndPublish(ctx context.Context, matchID string) error {
	questions, err := s.gen.GenerateQuestions(ctx, "")
	if err != nil {
		s.fail(err)
		return err
	}

	if _, err := s.store.Update(ctx, matchID, domain.MatchUpdate{Questions: &questions}); err != nil {
		err = &domain.CoordinationError{Op: "publish questions", Err: err}
		s.fail(err)
		return err
	}

	s.log.Info("questions published", "match_id", matchID, "count", len(questions))
	return nil
}

// SubmitAnswer checks the chosen option against the question at the
// local pointer and writes the advance (and, when correct, the absolute
// new value of the submitter's own score) in one unconditional update.
// Local state is not rolled back if the write fails.
func (s *Session) SubmitAnswer(ctx context.Context, chosenOption string) (bool, error) {
	s.mu.Lock()
	if s.state != domain.StateQuiz {
		s.mu.Unlock()
		return false, domain.ErrNotInQuiz
	}
	if s.game == nil || s.pointer < 0 || s.pointer >= len(s.game.Questions) {
		s.mu.Unlock()
		return false, domain.ErrNoQuestion
	}

	pointer := s.pointer
	question := s.game.Questions[pointer]
	correct := chosenOption == question.CorrectAnswer

	update := domain.MatchUpdate{CurrentQuestionIndex: &pointer}
	if correct {
		if s.role == domain.RolePlayerOne {
			score := s.game.PlayerOneScore + domain.AnswerAward
			update.PlayerOneScore = &score
		} else {
			score := s.game.PlayerTwoScore + domain.AnswerAward
			update.PlayerTwoScore = &score
		}
	}
	matchID := s.matchID
	s.mu.Unlock()

	if _, err := s.store.Update(ctx, matchID, update); err != nil {
		subErr := &domain.AnswerSubmissionError{MatchID: matchID, Err: err}
		s.log.Error("answer write failed", "match_id", matchID, "error", err)
		return correct, subErr
	}
	return correct, nil
}
