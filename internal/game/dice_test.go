package game

import (
	"testing"

	"gameplatform/internal/model"
)

func TestApplyRollFirstRollContinues(t *testing.T) {
	st, out, err := ApplyRoll(model.DiceState{}, model.RoleFirst, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Kind != model.OutcomeContinue {
		t.Fatalf("expected continue, got %+v", out)
	}
	if st.Rolls.First == nil || *st.Rolls.First != 4 {
		t.Fatalf("first roll not recorded: %+v", st.Rolls)
	}
	if st.Rolls.Second != nil {
		t.Fatalf("second roll should still be pending")
	}
}

func TestApplyRollResolvesHigherWins(t *testing.T) {
	st, _, err := ApplyRoll(model.DiceState{}, model.RoleFirst, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, out, err := ApplyRoll(st, model.RoleSecond, 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Kind != model.OutcomeWin || out.Winner != model.RoleSecond {
		t.Fatalf("expected second to win 6 vs 4, got %+v", out)
	}
}

func TestApplyRollTieIsDraw(t *testing.T) {
	st, _, _ := ApplyRoll(model.DiceState{}, model.RoleSecond, 3)
	_, out, err := ApplyRoll(st, model.RoleFirst, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Kind != model.OutcomeDraw {
		t.Fatalf("expected draw on 3 vs 3, got %+v", out)
	}
}

func TestApplyRollRejectsDuplicate(t *testing.T) {
	st, _, _ := ApplyRoll(model.DiceState{}, model.RoleFirst, 5)
	if _, _, err := ApplyRoll(st, model.RoleFirst, 2); err != ErrInvalidMove {
		t.Fatalf("expected ErrInvalidMove on a second roll, got %v", err)
	}
}

func TestApplyRollRejectsOutOfRange(t *testing.T) {
	for _, roll := range []int{0, 7, -1} {
		if _, _, err := ApplyRoll(model.DiceState{}, model.RoleFirst, roll); err != ErrInvalidMove {
			t.Fatalf("roll %d: expected ErrInvalidMove, got %v", roll, err)
		}
	}
}

func TestRollDieRange(t *testing.T) {
	for i := 0; i < 1000; i++ {
		if v := RollDie(); v < 1 || v > 6 {
			t.Fatalf("die rolled %d", v)
		}
	}
}
