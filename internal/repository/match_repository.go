package repository

import (
	"context"

	"github.com/quizduel/quizduel-backend/internal/domain"
)

// MatchStore is the shared mutable-record store both players coordinate
// through. Consistency contract, relied on by the whole protocol:
//   - Update is an unconditional last-write-wins overwrite of the fields
//     present in the partial set; no compare-and-swap.
//   - Read-your-writes is not guaranteed across clients.
//   - A subscription delivers the current record first, then a full
//     snapshot on every change. Delivery is at-most-once per change; a
//     slow consumer may miss intermediate snapshots.
type MatchStore interface {
	Create(ctx context.Context, match *domain.Match) error
	GetByID(ctx context.Context, id string) (*domain.Match, error)

	// ListOpen returns matches whose second slot is unassigned, in no
	// guaranteed order.
	ListOpen(ctx context.Context) ([]*domain.Match, error)

	Update(ctx context.Context, id string, update domain.MatchUpdate) (*domain.Match, error)

	Subscribe(ctx context.Context, id string) (*Subscription, error)
}

// Subscription is a cancellable snapshot feed for a single match.
type Subscription struct {
	// C carries full snapshots. It is closed when the subscription ends,
	// either by Close or by cancellation of the subscribing context.
	C <-chan domain.Match

	close func()
}

// NewSubscription wires a feed channel to its cancel func. Intended for
// MatchStore implementations.
func NewSubscription(c <-chan domain.Match, close func()) *Subscription {
	return &Subscription{C: c, close: close}
}

// Close ends observation. Safe to call more than once.
func (s *Subscription) Close() {
	if s.close != nil {
		s.close()
	}
}
