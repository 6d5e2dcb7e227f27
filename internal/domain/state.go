package domain

// GameState is the per-player session state. Legal flow is
// idle -> searching|found -> quiz -> complete, with error absorbing from
// any state on unrecoverable failure.
type GameState int

const (
	StateIdle GameState = iota
	StateSearching
	StateFound
	StateQuiz
	StateComplete
	StateError
)

func (s GameState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSearching:
		return "searching"
	case StateFound:
		return "found"
	case StateQuiz:
		return "quiz"
	case StateComplete:
		return "complete"
	case StateError:
		return "error"
	}
	return "unknown"
}

// Terminal reports whether no further transitions can happen.
func (s GameState) Terminal() bool {
	return s == StateComplete || s == StateError
}

// Role identifies which slot of the match a session occupies. The creator
// of the record is player one and owns question generation.
type Role int

const (
	RolePlayerOne Role = iota + 1
	RolePlayerTwo
)

func (r Role) String() string {
	switch r {
	case RolePlayerOne:
		return "playerOne"
	case RolePlayerTwo:
		return "playerTwo"
	}
	return "unknown"
}
