package matchmaking

import (
	"context"
	"log/slog"

	"github.com/quizduel/quizduel-backend/internal/domain"
	"github.com/quizduel/quizduel-backend/internal/repository"
)

// Coordinator pairs two anonymous players through the shared store:
// claim some open match if one exists, otherwise create a new open one.
// The claim is an unconditional write; if two players race for the same
// open match the last writer silently wins. That double-claim window is
// an accepted limitation of the protocol, not something this code hides.
type Coordinator struct {
	store repository.MatchStore
	log   *slog.Logger
}

func NewCoordinator(store repository.MatchStore, log *slog.Logger) *Coordinator {
	return &Coordinator{store: store, log: log}
}

// Handle is the result of matchmaking, handed straight to the observer.
type Handle struct {
	Match *domain.Match
	Role  domain.Role
	State domain.GameState
}

// FindOrCreate runs once at game start. Any store failure surfaces as a
// CoordinationError and the caller's session moves to its error state;
// there is no retry.
func (c *Coordinator) FindOrCreate(ctx context.Context, playerID string) (*Handle, error) {
	open, err := c.store.ListOpen(ctx)
	if err != nil {
		return nil, &domain.CoordinationError{Op: "list open matches", Err: err}
	}

	if len(open) > 0 {
		// Any open match will do; the store's order is arbitrary and
		// fairness is not a goal, only pairing.
		target := open[0]
		claimed, err := c.store.Update(ctx, target.ID, domain.MatchUpdate{
			PlayerTwoID: &playerID,
		})
		if err != nil {
			return nil, &domain.CoordinationError{Op: "claim open match", Err: err}
		}
		c.log.Info("claimed open match",
			"match_id", claimed.ID, "player_id", playerID, "player_one_id", claimed.PlayerOneID)
		return &Handle{Match: claimed, Role: domain.RolePlayerTwo, State: domain.StateFound}, nil
	}

	match := &domain.Match{
		PlayerOneID: playerID,
		PlayerTwoID: domain.PlayerTwoUnassigned,
		Questions:   domain.QuestionList{},
	}
	if err := c.store.Create(ctx, match); err != nil {
		return nil, &domain.CoordinationError{Op: "create match", Err: err}
	}
	c.log.Info("created open match", "match_id", match.ID, "player_id", playerID)
	return &Handle{Match: match, Role: domain.RolePlayerOne, State: domain.StateSearching}, nil
}
