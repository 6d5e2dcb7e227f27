package matchmaking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quizduel/quizduel-backend/internal/domain"
	"github.com/quizduel/quizduel-backend/internal/repository/memory"
)

type recordingSink struct {
	quizStarted []domain.Match
	paired      []domain.Match
	pointers    []int
	snapshots   []domain.Match
}

func (r *recordingSink) QuizStarted(m domain.Match) { r.quizStarted = append(r.quizStarted, m) }
func (r *recordingSink) Paired(m domain.Match)      { r.paired = append(r.paired, m) }
func (r *recordingSink) PointerAdvanced(p int, m domain.Match) {
	r.pointers = append(r.pointers, p)
	r.snapshots = append(r.snapshots, m)
}
func (r *recordingSink) Snapshot(domain.Match) {}

func tenQuestions() domain.QuestionList {
	qs := make(domain.QuestionList, 10)
	for i := range qs {
		qs[i] = domain.Question{
			Question:      "q",
			Options:       []string{"a", "b", "c", "d"},
			CorrectAnswer: "a",
			Category:      "History",
		}
	}
	return qs
}

func snapshot(questions domain.QuestionList, playerTwoID string, index int) domain.Match {
	return domain.Match{
		ID:                   "m1",
		PlayerOneID:          "alice",
		PlayerTwoID:          playerTwoID,
		Questions:            questions,
		CurrentQuestionIndex: index,
	}
}

func TestObserver_InitialSnapshotDerivesPointerOne(t *testing.T) {
	o := NewObserver(nil, testLogger(), domain.StateSearching)
	sink := &recordingSink{}

	// Default record: open, no questions, index zero. The pointer rule
	// still fires because the tracked index starts below zero.
	o.apply(snapshot(nil, domain.PlayerTwoUnassigned, 0), sink)

	assert.Empty(t, sink.quizStarted)
	assert.Empty(t, sink.paired)
	assert.Equal(t, []int{1}, sink.pointers)
}

func TestObserver_PairingWhileSearching(t *testing.T) {
	o := NewObserver(nil, testLogger(), domain.StateSearching)
	sink := &recordingSink{}

	o.apply(snapshot(nil, domain.PlayerTwoUnassigned, 0), sink)
	o.apply(snapshot(nil, "bob", 0), sink)

	require.Len(t, sink.paired, 1)
	assert.Equal(t, "bob", sink.paired[0].PlayerTwoID)
	assert.Empty(t, sink.quizStarted)
}

func TestObserver_NoPairingEventWhenAlreadyFound(t *testing.T) {
	// The claimer enters observation already in found; the pairing rule
	// must not re-fire for it.
	o := NewObserver(nil, testLogger(), domain.StateFound)
	sink := &recordingSink{}

	o.apply(snapshot(nil, "bob", 0), sink)

	assert.Empty(t, sink.paired)
	assert.Empty(t, sink.quizStarted)
}

func TestObserver_QuestionsArriveOnce(t *testing.T) {
	o := NewObserver(nil, testLogger(), domain.StateFound)
	sink := &recordingSink{}

	qs := tenQuestions()
	o.apply(snapshot(qs, "bob", 0), sink)
	o.apply(snapshot(qs, "bob", 0), sink)

	require.Len(t, sink.quizStarted, 1)
	assert.Len(t, sink.quizStarted[0].Questions, 10)
	// Pointer derived as one for the first delivery only; the repeated
	// index does not re-fire.
	assert.Equal(t, []int{1}, sink.pointers)
}

func TestObserver_OneSnapshotCanRevealQuestionsAndIndex(t *testing.T) {
	o := NewObserver(nil, testLogger(), domain.StateFound)
	sink := &recordingSink{}

	o.apply(snapshot(tenQuestions(), "bob", 2), sink)

	require.Len(t, sink.quizStarted, 1)
	assert.Equal(t, []int{3}, sink.pointers)
}

func TestObserver_PointerFollowsIndexPlusOne(t *testing.T) {
	o := NewObserver(nil, testLogger(), domain.StateFound)
	sink := &recordingSink{}

	qs := tenQuestions()
	for _, idx := range []int{0, 1, 2, 2, 3} {
		o.apply(snapshot(qs, "bob", idx), sink)
	}

	assert.Equal(t, []int{1, 2, 3, 4}, sink.pointers)

	// Observed sequence of shared indexes is non-decreasing.
	last := -1
	for _, m := range sink.snapshots {
		assert.GreaterOrEqual(t, m.CurrentQuestionIndex, last)
		last = m.CurrentQuestionIndex
	}
}

func TestObserver_RunDeliversFromStoreFeed(t *testing.T) {
	store := memory.NewMatchStore()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := &domain.Match{
		PlayerOneID: "alice",
		PlayerTwoID: domain.PlayerTwoUnassigned,
	}
	require.NoError(t, store.Create(ctx, m))

	o := NewObserver(store, testLogger(), domain.StateSearching)
	sink := &syncSink{paired: make(chan domain.Match, 1)}

	done := make(chan error, 1)
	go func() { done <- o.Run(ctx, m.ID, sink) }()

	bob := "bob"
	_, err := store.Update(ctx, m.ID, domain.MatchUpdate{PlayerTwoID: &bob})
	require.NoError(t, err)

	select {
	case paired := <-sink.paired:
		assert.Equal(t, "bob", paired.PlayerTwoID)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for pairing")
	}

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("observer did not stop on cancellation")
	}
}

type syncSink struct {
	paired chan domain.Match
}

func (s *syncSink) QuizStarted(domain.Match)          {}
func (s *syncSink) Paired(m domain.Match)             { s.paired <- m }
func (s *syncSink) PointerAdvanced(int, domain.Match) {}
func (s *syncSink) Snapshot(domain.Match)             {}
