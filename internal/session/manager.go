// Package session implements the coordination core: the registry of live
// sessions, their lifecycle, turn-ordered action handling, deferred round
// resets, and the janitor sweep.
//
// The Manager serializes every inbound event (create, join, action,
// disconnect, reset, sweep) under one mutex, so each event runs to
// completion before the next. There is never parallel mutation of a
// session, and broadcasts for a session leave in the order their actions
// were accepted.
package session

import (
	"log"
	"sync"
	"time"

	"gameplatform/internal/game"
	"gameplatform/internal/model"
)

// Broadcast event names.
const (
	EventGameUpdate        = "gameUpdate"
	EventParticipantJoined = "participantJoined"
)

const (
	DefaultResetDelay = 3 * time.Second
	DefaultSessionTTL = 30 * time.Minute
)

// Broadcaster fans a payload out to every connected participant of a
// session. Delivery is best-effort and must never fail the triggering
// action.
type Broadcaster interface {
	Broadcast(code, event string, payload any)
}

// Recorder is the persistence collaborator notified when a session reaches
// a terminal outcome. Implementations must not block the caller.
type Recorder interface {
	Record(result model.MatchResult)
}

// Config carries the Manager's collaborators and tunables. Zero fields get
// production defaults, so tests only set what they stub.
type Config struct {
	Broadcaster Broadcaster
	Recorder    Recorder
	Scheduler   Scheduler
	ResetDelay  time.Duration
	SessionTTL  time.Duration
	Now         func() time.Time
	RollDie     func() int
}

// Manager owns the session store. Construct one per process (or per test);
// there is no package-level registry.
type Manager struct {
	mu     sync.Mutex
	store  *Store
	cfg    Config
	resets map[string]Timer // pending round reset per session code
}

func NewManager(cfg Config) *Manager {
	if cfg.Broadcaster == nil {
		cfg.Broadcaster = noopBroadcaster{}
	}
	if cfg.Recorder == nil {
		cfg.Recorder = noopRecorder{}
	}
	if cfg.Scheduler == nil {
		cfg.Scheduler = timerScheduler{}
	}
	if cfg.ResetDelay <= 0 {
		cfg.ResetDelay = DefaultResetDelay
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = DefaultSessionTTL
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.RollDie == nil {
		cfg.RollDie = game.RollDie
	}
	return &Manager{
		store:  NewStore(),
		cfg:    cfg,
		resets: make(map[string]Timer),
	}
}

// Create allocates a session for the requesting connection, which becomes
// the first participant with the turn.
func (m *Manager) Create(gt model.GameType, connID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !gt.Valid() {
		return "", m.reject(ErrUnknownGameType)
	}

	code, err := m.store.AllocateCode()
	if err != nil {
		return "", err
	}

	now := m.cfg.Now()
	turn := model.RoleFirst
	s := &model.Session{
		Code:           code,
		GameType:       gt,
		Participants:   []model.Participant{{ConnID: connID, Role: model.RoleFirst}},
		Seats:          map[model.Role]string{model.RoleFirst: connID},
		Turn:           &turn,
		CreatedAt:      now,
		LastActivityAt: now,
	}
	switch gt {
	case model.GameTicTacToe:
		s.TicTacToe = &model.TicTacToeState{}
	case model.GameDice:
		s.Dice = &model.DiceState{}
	case model.GameRPS:
		s.RPS = &model.RPSState{Phase: model.RPSWaiting}
	}

	m.store.Put(s)
	metricActiveSessions.Set(float64(m.store.Len()))
	log.Printf("session %s created (%s) by %s", code, gt, connID)
	return code, nil
}

// Join adds the connection as the session's missing participant and
// notifies the session. Joining a session you are already in returns your
// existing role without mutation.
func (m *Manager) Join(code, connID string) (model.Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.store.Get(NormalizeCode(code))
	if s == nil {
		return "", m.reject(ErrSessionNotFound)
	}
	if role, ok := s.RoleOf(connID); ok {
		return role, nil
	}
	if len(s.Participants) >= 2 {
		return "", m.reject(ErrSessionFull)
	}

	role := freeRole(s)
	s.Participants = append(s.Participants, model.Participant{ConnID: connID, Role: role})
	s.Seats[role] = connID
	s.LastActivityAt = m.cfg.Now()

	// The RPS round can only start once both seats are taken.
	if s.GameType == model.GameRPS && s.RPS.Phase == model.RPSWaiting {
		s.RPS.Phase = model.RPSFirstTurn
	}

	log.Printf("session %s: %s joined as %s", s.Code, connID, role)
	m.cfg.Broadcaster.Broadcast(s.Code, EventParticipantJoined, model.JoinedNotice{
		Role:         role,
		Participants: len(s.Participants),
	})
	m.cfg.Broadcaster.Broadcast(s.Code, EventGameUpdate, snapshotOf(s, s.Outcome))
	return role, nil
}

// Leave removes the connection from every session it belongs to. A session
// left with no participants is destroyed immediately; its pending reset, if
// any, is cancelled.
func (m *Manager) Leave(connID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var emptied []string
	m.store.Each(func(s *model.Session) {
		kept := s.Participants[:0]
		for _, p := range s.Participants {
			if p.ConnID != connID {
				kept = append(kept, p)
			}
		}
		if len(kept) == len(s.Participants) {
			return
		}
		s.Participants = kept
		if len(kept) == 0 {
			emptied = append(emptied, s.Code)
		} else {
			log.Printf("session %s: %s left", s.Code, connID)
		}
	})

	for _, code := range emptied {
		m.destroy(code, "empty")
	}
}

// Snapshot returns the session's current broadcast view, for transports
// that need an initial state (SSE subscribers, REST polling).
func (m *Manager) Snapshot(code string) (model.GameUpdate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.store.Get(NormalizeCode(code))
	if s == nil {
		return model.GameUpdate{}, m.reject(ErrSessionNotFound)
	}
	return snapshotOf(s, s.Outcome), nil
}

// destroy must be called with the lock held.
func (m *Manager) destroy(code, why string) {
	if t, ok := m.resets[code]; ok {
		t.Stop()
		delete(m.resets, code)
	}
	m.store.Remove(code)
	metricActiveSessions.Set(float64(m.store.Len()))
	log.Printf("session %s destroyed (%s)", code, why)
}

func (m *Manager) reject(err error) error {
	metricRejections.WithLabelValues(rejectionReason(err)).Inc()
	return err
}

// freeRole picks the unoccupied seat; the first entrant always holds first.
func freeRole(s *model.Session) model.Role {
	for _, p := range s.Participants {
		if p.Role == model.RoleFirst {
			return model.RoleSecond
		}
	}
	return model.RoleFirst
}

// snapshotOf builds the broadcast payload for a session's current state.
// Game state is copied so the payload stays stable after the lock is
// released.
func snapshotOf(s *model.Session, out model.Outcome) model.GameUpdate {
	u := model.GameUpdate{Scores: s.Scores}
	if s.Turn != nil {
		t := *s.Turn
		u.Turn = &t
	}
	switch s.GameType {
	case model.GameTicTacToe:
		u.GameState = *s.TicTacToe
	case model.GameDice:
		u.GameState = cloneDice(*s.Dice)
	case model.GameRPS:
		u.GameState = *s.RPS
	}
	if out.Terminal() {
		u.Outcome = string(out.Kind)
		u.Winner = out.Winner
	}
	return u
}

func cloneDice(st model.DiceState) model.DiceState {
	if st.Rolls.First != nil {
		v := *st.Rolls.First
		st.Rolls.First = &v
	}
	if st.Rolls.Second != nil {
		v := *st.Rolls.Second
		st.Rolls.Second = &v
	}
	return st
}

type noopBroadcaster struct{}

func (noopBroadcaster) Broadcast(string, string, any) {}

type noopRecorder struct{}

func (noopRecorder) Record(model.MatchResult) {}
