package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// PlayerTwoUnassigned is the sentinel stored in PlayerTwoID while a match
// waits for a second player. A match carrying it is "open".
const PlayerTwoUnassigned = "notAssigned"

// AnswerAward is the score increment for a correct answer.
const AnswerAward = 10

// Match is the single shared record coordinating one two-player quiz.
// Both players mutate it through unconditional last-write-wins field
// updates; there is no server-side arbitration.
type Match struct {
	ID                   string       `json:"id" db:"id"`
	PlayerOneID          string       `json:"playerOneId" db:"player_one_id"`
	PlayerTwoID          string       `json:"playerTwoId" db:"player_two_id"`
	Questions            QuestionList `json:"questions" db:"questions"`
	CurrentQuestionIndex int          `json:"currentQuestionIndex" db:"current_question_index"`
	PlayerOneScore       int          `json:"playerOneScore" db:"player_one_score"`
	PlayerTwoScore       int          `json:"playerTwoScore" db:"player_two_score"`
	CreatedAt            time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt            time.Time    `json:"updatedAt" db:"updated_at"`
}

// Question is immutable once the match's question list has been written.
type Question struct {
	Question      string   `json:"question" validate:"required"`
	Options       []string `json:"options" validate:"required,len=4,unique,dive,required"`
	CorrectAnswer string   `json:"correctAnswer" validate:"required"`
	Category      string   `json:"category" validate:"required"`
}

// QuestionList is stored as a single JSONB value; the list is written
// exactly once, as a whole, never merged incrementally.
type QuestionList []Question

func (q QuestionList) Value() (driver.Value, error) {
	if q == nil {
		q = QuestionList{}
	}
	return json.Marshal(q)
}

func (q *QuestionList) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*q = QuestionList{}
		return nil
	case []byte:
		return json.Unmarshal(v, q)
	case string:
		return json.Unmarshal([]byte(v), q)
	default:
		return fmt.Errorf("unsupported questions column type %T", src)
	}
}

// IsOpen reports whether the second slot is still unclaimed.
func (m *Match) IsOpen() bool {
	return m.PlayerTwoID == PlayerTwoUnassigned
}

// IsPaired reports whether both slots are taken.
func (m *Match) IsPaired() bool {
	return !m.IsOpen()
}

func (m *Match) HasPlayer(playerID string) bool {
	return m.PlayerOneID == playerID || m.PlayerTwoID == playerID
}

// ScoreOf returns the score owned by the given identity.
func (m *Match) ScoreOf(playerID string) int {
	if m.PlayerOneID == playerID {
		return m.PlayerOneScore
	}
	return m.PlayerTwoScore
}

// Opponent returns the other player's identity string.
func (m *Match) Opponent(playerID string) string {
	if m.PlayerOneID == playerID {
		return m.PlayerTwoID
	}
	return m.PlayerOneID
}

// RoleOf returns the role the given identity holds in this match.
func (m *Match) RoleOf(playerID string) (Role, bool) {
	switch playerID {
	case m.PlayerOneID:
		return RolePlayerOne, true
	case m.PlayerTwoID:
		return RolePlayerTwo, true
	}
	return 0, false
}

// MatchUpdate is a partial field set for an unconditional update. Nil
// fields are left untouched; set fields overwrite, last writer wins.
// Scores are absolute values computed by the writer, not increments.
type MatchUpdate struct {
	PlayerTwoID          *string
	Questions            *QuestionList
	CurrentQuestionIndex *int
	PlayerOneScore       *int
	PlayerTwoScore       *int
}

// IsZero reports whether the update would touch nothing.
func (u MatchUpdate) IsZero() bool {
	return u.PlayerTwoID == nil && u.Questions == nil &&
		u.CurrentQuestionIndex == nil && u.PlayerOneScore == nil && u.PlayerTwoScore == nil
}
