package game

import (
	"math/rand"

	"gameplatform/internal/model"
)

// RollDie is the default fair die.
func RollDie() int {
	return rand.Intn(6) + 1
}

// ApplyRoll records a die value for role. Both roles roll independently; the
// round resolves once both values are present. A role with a pending roll
// may not roll again until the round resets.
func ApplyRoll(st model.DiceState, role model.Role, roll int) (model.DiceState, model.Outcome, error) {
	if roll < 1 || roll > 6 {
		return st, model.Outcome{}, ErrInvalidMove
	}

	switch role {
	case model.RoleFirst:
		if st.Rolls.First != nil {
			return st, model.Outcome{}, ErrInvalidMove
		}
		st.Rolls.First = &roll
	case model.RoleSecond:
		if st.Rolls.Second != nil {
			return st, model.Outcome{}, ErrInvalidMove
		}
		st.Rolls.Second = &roll
	default:
		return st, model.Outcome{}, ErrInvalidMove
	}

	if st.Rolls.First == nil || st.Rolls.Second == nil {
		return st, model.Outcome{Kind: model.OutcomeContinue}, nil
	}

	switch {
	case *st.Rolls.First == *st.Rolls.Second:
		return st, model.Outcome{Kind: model.OutcomeDraw}, nil
	case *st.Rolls.First > *st.Rolls.Second:
		return st, model.Outcome{Kind: model.OutcomeWin, Winner: model.RoleFirst}, nil
	default:
		return st, model.Outcome{Kind: model.OutcomeWin, Winner: model.RoleSecond}, nil
	}
}
