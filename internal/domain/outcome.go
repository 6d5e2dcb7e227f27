package domain

import "fmt"

// Outcome is the terminal result of a match from one player's viewpoint.
type Outcome struct {
	Tie      bool   `json:"tie"`
	WinnerID string `json:"winnerId,omitempty"`
	YouWon   bool   `json:"youWon"`
	Score    int    `json:"score"`
}

// OutcomeFor computes the result as seen by viewerID. The winner is the
// higher-scoring identity; the reported score is the viewer's own.
func (m *Match) OutcomeFor(viewerID string) Outcome {
	out := Outcome{Score: m.ScoreOf(viewerID)}
	if m.PlayerOneScore == m.PlayerTwoScore {
		out.Tie = true
		return out
	}
	if m.PlayerOneScore > m.PlayerTwoScore {
		out.WinnerID = m.PlayerOneID
	} else {
		out.WinnerID = m.PlayerTwoID
	}
	out.YouWon = out.WinnerID == viewerID
	return out
}

// Render formats the outcome the way the quiz-over screen shows it.
func (o Outcome) Render() string {
	if o.Tie {
		return fmt.Sprintf("It's a tie with %d!", o.Score)
	}
	who := o.WinnerID
	if o.YouWon {
		who = "You"
	}
	return fmt.Sprintf("%s won with %d points!", who, o.Score)
}
