package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/quizduel/quizduel-backend/internal/domain"
	"github.com/quizduel/quizduel-backend/internal/repository"
)

const feedBuffer = 64

// MatchStore persists matches in PostgreSQL and broadcasts every write as
// a full-row JSON snapshot on a per-match redis channel. Subscribers get
// the current row first, then the pub/sub stream; updates are plain
// last-write-wins SETs with no row locking, which is the consistency
// model the protocol is built on.
type MatchStore struct {
	db  *sqlx.DB
	rdb *redis.Client
	log *slog.Logger
}

func NewMatchStore(db *sqlx.DB, rdb *redis.Client, log *slog.Logger) *MatchStore {
	return &MatchStore{db: db, rdb: rdb, log: log}
}

func matchChannel(id string) string {
	return "match:" + id
}

func (s *MatchStore) Create(ctx context.Context, match *domain.Match) error {
	match.ID = uuid.NewString()
	if match.Questions == nil {
		match.Questions = domain.QuestionList{}
	}

	query := `
		INSERT INTO matches (id, player_one_id, player_two_id, questions, current_question_index, player_one_score, player_two_score)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`
	err := s.db.QueryRowContext(ctx, query,
		match.ID, match.PlayerOneID, match.PlayerTwoID, match.Questions,
		match.CurrentQuestionIndex, match.PlayerOneScore, match.PlayerTwoScore,
	).Scan(&match.CreatedAt, &match.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create match: %w", err)
	}

	s.publish(ctx, match)
	return nil
}

func (s *MatchStore) GetByID(ctx context.Context, id string) (*domain.Match, error) {
	var match domain.Match
	query := `SELECT * FROM matches WHERE id = $1`
	if err := s.db.GetContext(ctx, &match, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrMatchNotFound
		}
		return nil, err
	}
	return &match, nil
}

func (s *MatchStore) ListOpen(ctx context.Context) ([]*domain.Match, error) {
	var matches []*domain.Match
	query := `SELECT * FROM matches WHERE player_two_id = $1`
	if err := s.db.SelectContext(ctx, &matches, query, domain.PlayerTwoUnassigned); err != nil {
		return nil, err
	}
	return matches, nil
}

func (s *MatchStore) Update(ctx context.Context, id string, update domain.MatchUpdate) (*domain.Match, error) {
	if update.IsZero() {
		return s.GetByID(ctx, id)
	}

	sets := []string{"updated_at = now()"}
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if update.PlayerTwoID != nil {
		sets = append(sets, "player_two_id = "+arg(*update.PlayerTwoID))
	}
	if update.Questions != nil {
		sets = append(sets, "questions = "+arg(*update.Questions))
	}
	if update.CurrentQuestionIndex != nil {
		sets = append(sets, "current_question_index = "+arg(*update.CurrentQuestionIndex))
	}
	if update.PlayerOneScore != nil {
		sets = append(sets, "player_one_score = "+arg(*update.PlayerOneScore))
	}
	if update.PlayerTwoScore != nil {
		sets = append(sets, "player_two_score = "+arg(*update.PlayerTwoScore))
	}

	query := fmt.Sprintf(
		`UPDATE matches SET %s WHERE id = %s RETURNING *`,
		strings.Join(sets, ", "), arg(id),
	)

	var match domain.Match
	if err := s.db.GetContext(ctx, &match, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to update match: %w", err)
	}

	s.publish(ctx, &match)
	return &match, nil
}

func (s *MatchStore) Subscribe(ctx context.Context, id string) (*repository.Subscription, error) {
	initial, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	pubsub := s.rdb.Subscribe(ctx, matchChannel(id))
	ch := make(chan domain.Match, feedBuffer)

	subCtx, cancelCtx := context.WithCancel(ctx)
	var once sync.Once
	cancel := func() {
		once.Do(func() {
			cancelCtx()
			_ = pubsub.Close()
		})
	}

	go func() {
		defer close(ch)
		defer cancel()

		ch <- *initial
		for {
			select {
			case <-subCtx.Done():
				return
			case msg, ok := <-pubsub.Channel():
				if !ok {
					return
				}
				var match domain.Match
				if err := json.Unmarshal([]byte(msg.Payload), &match); err != nil {
					s.log.Warn("dropping undecodable match snapshot",
						"match_id", id, "error", err)
					continue
				}
				select {
				case ch <- match:
				default:
					s.log.Warn("slow subscriber, dropping snapshot", "match_id", id)
				}
			}
		}
	}()

	return repository.NewSubscription(ch, cancel), nil
}

// publish broadcasts the post-write state of the row. A publish failure
// only degrades freshness for subscribers, so it is logged, not returned.
func (s *MatchStore) publish(ctx context.Context, match *domain.Match) {
	payload, err := json.Marshal(match)
	if err != nil {
		s.log.Error("failed to encode match snapshot", "match_id", match.ID, "error", err)
		return
	}
	if err := s.rdb.Publish(ctx, matchChannel(match.ID), payload).Err(); err != nil {
		s.log.Warn("failed to publish match snapshot", "match_id", match.ID, "error", err)
	}
}
