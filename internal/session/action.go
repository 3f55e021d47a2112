package session

import (
	"gameplatform/internal/game"
	"gameplatform/internal/model"
)

// Action is one game input submitted by a participant. The concrete type
// must match the session's game type.
type Action interface {
	isAction()
}

// MoveAction claims a tic-tac-toe cell, index 0-8.
type MoveAction struct {
	Index int
}

// RollAction requests a die roll; the server generates the value.
type RollAction struct{}

// ChoiceAction submits a rock-paper-scissors hand.
type ChoiceAction struct {
	Choice model.Choice
}

func (MoveAction) isAction()   {}
func (RollAction) isAction()   {}
func (ChoiceAction) isAction() {}

// HandleAction is the single entry point for game inputs: it resolves the
// session, verifies the actor and turn order, delegates to the matching
// rule engine, and broadcasts the new state. Rejections leave the session
// untouched and are returned to the caller only.
func (m *Manager) HandleAction(code, connID string, act Action) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.store.Get(NormalizeCode(code))
	if s == nil {
		return m.reject(ErrSessionNotFound)
	}
	role, ok := s.RoleOf(connID)
	if !ok {
		return m.reject(ErrNotAParticipant)
	}
	// Turn is nil between a terminal outcome and its scheduled reset; every
	// action in that window gets the same rejection.
	if s.Turn == nil {
		return m.reject(ErrNotYourTurn)
	}

	var out model.Outcome
	switch a := act.(type) {
	case MoveAction:
		if s.GameType != model.GameTicTacToe {
			return m.reject(ErrInvalidMove)
		}
		if *s.Turn != role {
			return m.reject(ErrNotYourTurn)
		}
		st, o, err := game.ApplyMove(*s.TicTacToe, role, a.Index)
		if err != nil {
			return m.reject(err)
		}
		*s.TicTacToe, out = st, o

	case RollAction:
		if s.GameType != model.GameDice {
			return m.reject(ErrInvalidMove)
		}
		// Both roles roll independently; only the terminal window blocks.
		st, o, err := game.ApplyRoll(*s.Dice, role, m.cfg.RollDie())
		if err != nil {
			return m.reject(err)
		}
		*s.Dice, out = st, o

	case ChoiceAction:
		if s.GameType != model.GameRPS {
			return m.reject(ErrInvalidMove)
		}
		if expected, ok := rpsActor(s.RPS.Phase); !ok || expected != role {
			return m.reject(ErrNotYourTurn)
		}
		st, o, err := game.ApplyChoice(*s.RPS, role, a.Choice)
		if err != nil {
			return m.reject(err)
		}
		*s.RPS, out = st, o

	default:
		return m.reject(ErrInvalidMove)
	}

	s.LastActivityAt = m.cfg.Now()
	metricActions.WithLabelValues(string(s.GameType)).Inc()

	if out.Terminal() {
		m.finishRound(s, out)
	} else {
		next := role.Other()
		s.Turn = &next
	}

	m.cfg.Broadcaster.Broadcast(s.Code, EventGameUpdate, snapshotOf(s, out))
	return nil
}

// rpsActor maps the round phase to the role expected to act; no role may
// act while waiting for the second player or mid-resolution.
func rpsActor(phase model.RPSPhase) (model.Role, bool) {
	switch phase {
	case model.RPSFirstTurn:
		return model.RoleFirst, true
	case model.RPSSecondTurn:
		return model.RoleSecond, true
	}
	return "", false
}

// finishRound records the terminal outcome and schedules the delayed round
// reset. Must be called with the lock held.
func (m *Manager) finishRound(s *model.Session, out model.Outcome) {
	switch out.Winner {
	case model.RoleFirst:
		s.Scores.First++
	case model.RoleSecond:
		s.Scores.Second++
	}
	s.Turn = nil
	s.Outcome = out

	m.cfg.Recorder.Record(model.MatchResult{
		SessionCode:    s.Code,
		GameType:       s.GameType,
		ParticipantIDs: s.ParticipantIDs(),
		WinnerRole:     out.Winner,
		Result:         string(out.Kind),
		RecordedAt:     m.cfg.Now(),
	})

	code := s.Code
	m.resets[code] = m.cfg.Scheduler.Schedule(m.cfg.ResetDelay, func() {
		m.resetRound(code)
	})
}

// resetRound clears the game-specific state and restores the turn to the
// first role, preserving cumulative scores. If the session vanished before
// the timer fired this is a silent no-op.
func (m *Manager) resetRound(code string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.resets, code)
	s := m.store.Get(code)
	if s == nil {
		return
	}

	switch s.GameType {
	case model.GameTicTacToe:
		s.TicTacToe.Grid = [9]model.Role{}
	case model.GameDice:
		s.Dice.Rolls = model.RollPair{}
	case model.GameRPS:
		s.RPS.Choices = model.ChoicePair{}
		s.RPS.Phase = model.RPSFirstTurn
	}
	turn := model.RoleFirst
	s.Turn = &turn
	s.Outcome = model.Outcome{}

	m.cfg.Broadcaster.Broadcast(code, EventGameUpdate, snapshotOf(s, s.Outcome))
}
