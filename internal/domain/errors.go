package domain

import (
	"errors"
	"fmt"
)

var (
	ErrMatchNotFound  = errors.New("match not found")
	ErrNotInQuiz      = errors.New("session is not in the quiz state")
	ErrNoQuestion     = errors.New("no question at the current pointer")
	ErrSessionExists  = errors.New("player already has a live session")
	ErrSessionUnknown = errors.New("no live session for player")
)

// CoordinationError wraps store failures during matchmaking. The session
// moves to the error state; nothing is retried.
type CoordinationError struct {
	Op  string
	Err error
}

func (e *CoordinationError) Error() string {
	return fmt.Sprintf("coordination failed during %s: %v", e.Op, e.Err)
}

func (e *CoordinationError) Unwrap() error { return e.Err }

// GenerationError wraps a failed or invalid question generation. Only the
// invoking session sees it; the peer is left waiting.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("question generation failed: %v", e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// AnswerSubmissionError wraps a store write failure during answer
// submission. Local quiz state is not rolled back.
type AnswerSubmissionError struct {
	MatchID string
	Err     error
}

func (e *AnswerSubmissionError) Error() string {
	return fmt.Sprintf("answer submission for match %s failed: %v", e.MatchID, e.Err)
}

func (e *AnswerSubmissionError) Unwrap() error { return e.Err }
