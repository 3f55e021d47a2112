package game

import "gameplatform/internal/model"

// beats maps each hand to the hand it defeats.
var beats = map[model.Choice]model.Choice{
	model.ChoiceRock:     model.ChoiceScissors,
	model.ChoiceScissors: model.ChoicePaper,
	model.ChoicePaper:    model.ChoiceRock,
}

// ApplyChoice records role's hand and advances the round state machine:
// firstTurn -> secondTurn -> resolved. The caller is responsible for phase
// and turn checks; this only validates the hand itself.
func ApplyChoice(st model.RPSState, role model.Role, choice model.Choice) (model.RPSState, model.Outcome, error) {
	if !choice.Valid() {
		return st, model.Outcome{}, ErrInvalidMove
	}

	if role == model.RoleFirst {
		st.Choices.First = choice
		st.Phase = model.RPSSecondTurn
		return st, model.Outcome{Kind: model.OutcomeContinue}, nil
	}

	st.Choices.Second = choice
	st.Phase = model.RPSResolved
	return st, Resolve(st.Choices.First, st.Choices.Second), nil
}

// Resolve applies the beats relation to two recorded hands.
func Resolve(first, second model.Choice) model.Outcome {
	if first == second {
		return model.Outcome{Kind: model.OutcomeDraw}
	}
	if beats[first] == second {
		return model.Outcome{Kind: model.OutcomeWin, Winner: model.RoleFirst}
	}
	return model.Outcome{Kind: model.OutcomeWin, Winner: model.RoleSecond}
}
