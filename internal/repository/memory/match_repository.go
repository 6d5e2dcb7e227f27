package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/quizduel/quizduel-backend/internal/domain"
	"github.com/quizduel/quizduel-backend/internal/repository"
)

const feedBuffer = 64

// MatchStore is an in-process implementation of repository.MatchStore.
// It mirrors the production store's contract: last-write-wins partial
// updates and a snapshot-per-change feed that starts with the current
// record. Used as the injected test double.
type MatchStore struct {
	mu      sync.Mutex
	matches map[string]*domain.Match
	feeds   map[string]map[int]chan domain.Match
	nextSub int
}

func NewMatchStore() *MatchStore {
	return &MatchStore{
		matches: make(map[string]*domain.Match),
		feeds:   make(map[string]map[int]chan domain.Match),
	}
}

func (s *MatchStore) Create(ctx context.Context, match *domain.Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	match.ID = uuid.NewString()
	now := time.Now().UTC()
	match.CreatedAt = now
	match.UpdatedAt = now
	if match.Questions == nil {
		match.Questions = domain.QuestionList{}
	}

	stored := cloneMatch(match)
	s.matches[match.ID] = stored
	s.publishLocked(stored)
	return nil
}

func (s *MatchStore) GetByID(ctx context.Context, id string) (*domain.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.matches[id]
	if !ok {
		return nil, domain.ErrMatchNotFound
	}
	return cloneMatch(m), nil
}

func (s *MatchStore) ListOpen(ctx context.Context) ([]*domain.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var open []*domain.Match
	for _, m := range s.matches {
		if m.IsOpen() {
			open = append(open, cloneMatch(m))
		}
	}
	return open, nil
}

func (s *MatchStore) Update(ctx context.Context, id string, update domain.MatchUpdate) (*domain.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.matches[id]
	if !ok {
		return nil, domain.ErrMatchNotFound
	}

	if update.PlayerTwoID != nil {
		m.PlayerTwoID = *update.PlayerTwoID
	}
	if update.Questions != nil {
		m.Questions = append(domain.QuestionList{}, (*update.Questions)...)
	}
	if update.CurrentQuestionIndex != nil {
		m.CurrentQuestionIndex = *update.CurrentQuestionIndex
	}
	if update.PlayerOneScore != nil {
		m.PlayerOneScore = *update.PlayerOneScore
	}
	if update.PlayerTwoScore != nil {
		m.PlayerTwoScore = *update.PlayerTwoScore
	}
	m.UpdatedAt = time.Now().UTC()

	s.publishLocked(m)
	return cloneMatch(m), nil
}

func (s *MatchStore) Subscribe(ctx context.Context, id string) (*repository.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.matches[id]
	if !ok {
		return nil, domain.ErrMatchNotFound
	}

	ch := make(chan domain.Match, feedBuffer)
	ch <- *cloneMatch(m)

	s.nextSub++
	subID := s.nextSub
	if s.feeds[id] == nil {
		s.feeds[id] = make(map[int]chan domain.Match)
	}
	s.feeds[id][subID] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.feeds[id], subID)
			s.mu.Unlock()
			close(ch)
		})
	}

	if ctx.Done() != nil {
		go func() {
			<-ctx.Done()
			cancel()
		}()
	}

	return repository.NewSubscription(ch, cancel), nil
}

// publishLocked fans a snapshot out to every live feed. Sends never
// block; a full buffer means the subscriber is too slow and the snapshot
// is dropped, which the feed contract permits.
func (s *MatchStore) publishLocked(m *domain.Match) {
	for _, ch := range s.feeds[m.ID] {
		select {
		case ch <- *cloneMatch(m):
		default:
		}
	}
}

func cloneMatch(m *domain.Match) *domain.Match {
	c := *m
	c.Questions = append(domain.QuestionList{}, m.Questions...)
	return &c
}
