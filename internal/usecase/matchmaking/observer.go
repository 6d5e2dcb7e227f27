package matchmaking

import (
	"context"
	"log/slog"

	"github.com/quizduel/quizduel-backend/internal/domain"
	"github.com/quizduel/quizduel-backend/internal/repository"
)

// Sink receives the transitions an Observer derives from snapshots.
// Callbacks are serialized; no two fire concurrently for one observer.
type Sink interface {
	// QuizStarted fires once, when a snapshot first carries questions.
	QuizStarted(match domain.Match)
	// Paired fires when the open slot is seen claimed while the local
	// side is still searching (the creator learning it has a peer).
	Paired(match domain.Match)
	// PointerAdvanced fires whenever the shared index changes; pointer
	// is the derived local question pointer (shared index plus one).
	PointerAdvanced(pointer int, match domain.Match)
	// Snapshot fires for every delivery, after any derived transitions.
	Snapshot(match domain.Match)
}

// Observer subscribes to one match's change feed and turns each snapshot
// into local state transitions. The three derivation rules are evaluated
// independently per snapshot: one delivery may reveal new questions and
// a new index at the same time.
type Observer struct {
	store repository.MatchStore
	log   *slog.Logger

	state       domain.GameState
	enteredQuiz bool
	lastIndex   int
}

// NewObserver starts from the state matchmaking ended in (searching for
// the creator, found for the claimer).
func NewObserver(store repository.MatchStore, log *slog.Logger, initial domain.GameState) *Observer {
	return &Observer{
		store:     store,
		log:       log,
		state:     initial,
		lastIndex: -1,
	}
}

// Run blocks consuming the feed until ctx is canceled or the feed ends.
// Cancelling ctx is the caller's only way to stop observation.
func (o *Observer) Run(ctx context.Context, matchID string, sink Sink) error {
	sub, err := o.store.Subscribe(ctx, matchID)
	if err != nil {
		return &domain.CoordinationError{Op: "subscribe to match", Err: err}
	}
	defer sub.Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case snap, ok := <-sub.C:
			if !ok {
				return nil
			}
			o.apply(snap, sink)
		}
	}
}

func (o *Observer) apply(snap domain.Match, sink Sink) {
	if len(snap.Questions) > 0 && !o.enteredQuiz {
		o.enteredQuiz = true
		o.state = domain.StateQuiz
		o.log.Debug("questions arrived", "match_id", snap.ID, "count", len(snap.Questions))
		sink.QuizStarted(snap)
	} else if snap.IsPaired() && o.state == domain.StateSearching {
		o.state = domain.StateFound
		o.log.Debug("match paired", "match_id", snap.ID, "player_two_id", snap.PlayerTwoID)
		sink.Paired(snap)
	}

	// The derived pointer is one past the shared index, while the write
	// path stores the pointer itself. Question zero is never presented.
	if snap.CurrentQuestionIndex != o.lastIndex {
		o.lastIndex = snap.CurrentQuestionIndex
		sink.PointerAdvanced(snap.CurrentQuestionIndex+1, snap)
	}

	sink.Snapshot(snap)
}
