package model

import "time"

// GameType identifies which rule engine a session runs.
type GameType string

const (
	GameTicTacToe GameType = "tictactoe"
	GameDice      GameType = "dicedice"
	GameRPS       GameType = "rps"
)

// Valid reports whether gt is one of the supported game types.
func (gt GameType) Valid() bool {
	switch gt {
	case GameTicTacToe, GameDice, GameRPS:
		return true
	}
	return false
}

// Role is a participant's position within a session. The first entrant is
// always RoleFirst.
type Role string

const (
	RoleFirst  Role = "first"
	RoleSecond Role = "second"
)

// Other returns the opposing role.
func (r Role) Other() Role {
	if r == RoleFirst {
		return RoleSecond
	}
	return RoleFirst
}

// Participant ties a transport-level connection to a role.
type Participant struct {
	ConnID string `json:"connectionId"`
	Role   Role   `json:"role"`
}

// Scores are cumulative per-role round wins. They survive round resets and
// are discarded only when the session itself is destroyed.
type Scores struct {
	First  int `json:"first"`
	Second int `json:"second"`
}

// Session is one live match: at most two participants playing one game type,
// looked up by a 6-character invitation code.
//
// Exactly one of TicTacToe, Dice, RPS is non-nil, matching GameType.
type Session struct {
	Code         string
	GameType     GameType
	Participants []Participant
	// Seats records the latest connection to hold each role. Unlike
	// Participants, entries survive a leave, so a round that resolves after
	// a mid-round disconnect can still attribute its result.
	Seats map[Role]string
	// Turn is the role expected to act next; nil while a terminal outcome is
	// pending its scheduled reset.
	Turn      *Role
	TicTacToe *TicTacToeState
	Dice      *DiceState
	RPS       *RPSState
	Scores    Scores
	// Outcome is the terminal result of the current round, zero while play
	// continues. Cleared by the round reset.
	Outcome        Outcome
	CreatedAt      time.Time
	LastActivityAt time.Time
}

// RoleOf returns the role of the given connection, or false if the
// connection is not a participant.
func (s *Session) RoleOf(connID string) (Role, bool) {
	for _, p := range s.Participants {
		if p.ConnID == connID {
			return p.Role, true
		}
	}
	return "", false
}

// ParticipantIDs returns seat connection IDs in role order (first, second).
// Seats are used rather than the live participant list so the IDs stay
// complete after a participant leaves.
func (s *Session) ParticipantIDs() []string {
	ids := make([]string, 0, len(s.Seats))
	for _, role := range []Role{RoleFirst, RoleSecond} {
		if id, ok := s.Seats[role]; ok {
			ids = append(ids, id)
		}
	}
	return ids
}
