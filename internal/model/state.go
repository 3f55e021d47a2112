package model

// TicTacToeState is the 3x3 grid. A cell holds the role that claimed it, or
// "" while empty.
type TicTacToeState struct {
	Grid [9]Role `json:"grid"`
}

// DiceState holds the pending roll per role for the current round. Both
// roles act independently; the round resolves once both rolls are present.
type DiceState struct {
	Rolls RollPair `json:"rolls"`
}

// RollPair is the per-role pending die value, nil until that role has rolled
// this round.
type RollPair struct {
	First  *int `json:"first"`
	Second *int `json:"second"`
}

// Choice is a rock-paper-scissors hand.
type Choice string

const (
	ChoiceRock     Choice = "rock"
	ChoicePaper    Choice = "paper"
	ChoiceScissors Choice = "scissors"
)

// Valid reports whether c is one of the three hands.
func (c Choice) Valid() bool {
	switch c {
	case ChoiceRock, ChoicePaper, ChoiceScissors:
		return true
	}
	return false
}

// RPSPhase is the rock-paper-scissors round state machine.
type RPSPhase string

const (
	RPSWaiting    RPSPhase = "waitingForSecondPlayer"
	RPSFirstTurn  RPSPhase = "firstTurn"
	RPSSecondTurn RPSPhase = "secondTurn"
	RPSResolved   RPSPhase = "resolved"
)

// RPSState holds the round phase and recorded choices.
type RPSState struct {
	Phase   RPSPhase   `json:"phase"`
	Choices ChoicePair `json:"choices"`
}

// ChoicePair is the per-role recorded hand, "" until that role has chosen.
type ChoicePair struct {
	First  Choice `json:"first"`
	Second Choice `json:"second"`
}
