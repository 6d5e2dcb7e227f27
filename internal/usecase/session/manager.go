package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/quizduel/quizduel-backend/internal/domain"
	"github.com/quizduel/quizduel-backend/internal/repository"
	"github.com/quizduel/quizduel-backend/internal/usecase/matchmaking"
)

// Manager hosts at most one live session per player identity.
type Manager struct {
	store repository.MatchStore
	gen   Generator
	coord *matchmaking.Coordinator
	log   *slog.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager(store repository.MatchStore, gen Generator, log *slog.Logger) *Manager {
	return &Manager{
		store:    store,
		gen:      gen,
		coord:    matchmaking.NewCoordinator(store, log),
		log:      log,
		sessions: make(map[string]*Session),
	}
}

// StartSearch begins matchmaking for the player and returns the session
// once a match is created or claimed. A player with a live session must
// end it first; a finished or failed one is replaced.
func (m *Manager) StartSearch(ctx context.Context, playerID string) (*Session, error) {
	m.mu.Lock()
	if existing, ok := m.sessions[playerID]; ok {
		if !existing.State().Terminal() {
			m.mu.Unlock()
			return nil, domain.ErrSessionExists
		}
		existing.End()
		delete(m.sessions, playerID)
	}
	m.mu.Unlock()

	s := newSession(m.store, m.gen, m.log, playerID)
	if err := s.start(ctx, m.coord); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.sessions[playerID] = s
	m.mu.Unlock()
	return s, nil
}

// Get returns the player's live session for the given match.
func (m *Manager) Get(playerID, matchID string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[playerID]
	if !ok || s.MatchID() != matchID {
		return nil, domain.ErrSessionUnknown
	}
	return s, nil
}

// End cancels observation and forgets the session.
func (m *Manager) End(playerID, matchID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[playerID]
	if !ok || s.MatchID() != matchID {
		return domain.ErrSessionUnknown
	}
	s.End()
	delete(m.sessions, playerID)
	return nil
}
