package session

import (
	"errors"
	"sync"
	"testing"
	"time"

	"gameplatform/internal/model"
)

// fakeScheduler captures scheduled callbacks so tests fire resets on demand.
// Schedule is invoked with the Manager lock held, so it must never run the
// callback inline.
type fakeScheduler struct {
	mu      sync.Mutex
	pending []func()
}

type fakeTimer struct{ stopped *bool }

func (t fakeTimer) Stop() bool {
	*t.stopped = true
	return true
}

func (f *fakeScheduler) Schedule(_ time.Duration, fn func()) Timer {
	f.mu.Lock()
	defer f.mu.Unlock()
	stopped := false
	f.pending = append(f.pending, func() {
		if !stopped {
			fn()
		}
	})
	return fakeTimer{stopped: &stopped}
}

// FireAll runs every pending callback outside any lock.
func (f *fakeScheduler) FireAll() {
	f.mu.Lock()
	pending := f.pending
	f.pending = nil
	f.mu.Unlock()
	for _, fn := range pending {
		fn()
	}
}

type recordedEvent struct {
	Code    string
	Event   string
	Payload any
}

type fakeBroadcaster struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (b *fakeBroadcaster) Broadcast(code, event string, payload any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, recordedEvent{code, event, payload})
}

func (b *fakeBroadcaster) last() (recordedEvent, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.events) == 0 {
		return recordedEvent{}, false
	}
	return b.events[len(b.events)-1], true
}

type fakeRecorder struct {
	mu      sync.Mutex
	results []model.MatchResult
}

func (r *fakeRecorder) Record(result model.MatchResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, result)
}

func newTestManager(t *testing.T) (*Manager, *fakeScheduler, *fakeBroadcaster, *fakeRecorder) {
	t.Helper()
	sched := &fakeScheduler{}
	bc := &fakeBroadcaster{}
	rec := &fakeRecorder{}
	m := NewManager(Config{
		Broadcaster: bc,
		Recorder:    rec,
		Scheduler:   sched,
	})
	return m, sched, bc, rec
}

func TestCreateRejectsUnknownGameType(t *testing.T) {
	m, _, _, _ := newTestManager(t)
	if _, err := m.Create("chess", "c1"); !errors.Is(err, ErrUnknownGameType) {
		t.Fatalf("expected ErrUnknownGameType, got %v", err)
	}
}

func TestCreateAssignsFirstRoleAndTurn(t *testing.T) {
	m, _, _, _ := newTestManager(t)
	code, err := m.Create(model.GameTicTacToe, "c1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(code) != 6 {
		t.Fatalf("expected 6-char code, got %q", code)
	}

	snap, err := m.Snapshot(code)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap.Turn == nil || *snap.Turn != model.RoleFirst {
		t.Fatalf("creator should hold the turn, got %+v", snap.Turn)
	}
}

func TestJoinAssignsSecondRole(t *testing.T) {
	m, _, bc, _ := newTestManager(t)
	code, _ := m.Create(model.GameTicTacToe, "c1")

	role, err := m.Join(code, "c2")
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if role != model.RoleSecond {
		t.Fatalf("expected second, got %s", role)
	}

	ev, ok := bc.last()
	if !ok || ev.Event != EventGameUpdate {
		t.Fatalf("expected a gameUpdate broadcast after join, got %+v", ev)
	}
}

func TestJoinIsIdempotentForExistingParticipant(t *testing.T) {
	m, _, _, _ := newTestManager(t)
	code, _ := m.Create(model.GameTicTacToe, "c1")
	m.Join(code, "c2")

	role, err := m.Join(code, "c2")
	if err != nil {
		t.Fatalf("re-join: %v", err)
	}
	if role != model.RoleSecond {
		t.Fatalf("re-join should return the existing role, got %s", role)
	}
}

func TestJoinThirdConnectionRejected(t *testing.T) {
	m, _, _, _ := newTestManager(t)
	code, _ := m.Create(model.GameTicTacToe, "c1")
	m.Join(code, "c2")

	if _, err := m.Join(code, "c3"); !errors.Is(err, ErrSessionFull) {
		t.Fatalf("expected ErrSessionFull, got %v", err)
	}
	if _, ok := m.store.Get(code).RoleOf("c3"); ok {
		t.Fatalf("rejected joiner must not be a participant")
	}
}

func TestJoinUnknownCode(t *testing.T) {
	m, _, _, _ := newTestManager(t)
	if _, err := m.Join("ZZZZZZ", "c1"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestJoinNormalizesCode(t *testing.T) {
	m, _, _, _ := newTestManager(t)
	code, _ := m.Create(model.GameTicTacToe, "c1")

	lowered := "  " + lower(code) + " "
	if _, err := m.Join(lowered, "c2"); err != nil {
		t.Fatalf("join with lowercase padded code: %v", err)
	}
}

func lower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + 32
		}
	}
	return string(b)
}

func TestMoveOutOfTurnLeavesGridUnchanged(t *testing.T) {
	m, _, _, _ := newTestManager(t)
	code, _ := m.Create(model.GameTicTacToe, "c1")
	m.Join(code, "c2")

	if err := m.HandleAction(code, "c2", MoveAction{Index: 0}); !errors.Is(err, ErrNotYourTurn) {
		t.Fatalf("expected ErrNotYourTurn, got %v", err)
	}
	if grid := m.store.Get(code).TicTacToe.Grid; grid != ([9]model.Role{}) {
		t.Fatalf("rejected action mutated the grid: %v", grid)
	}
}

func TestMoveByStrangerRejected(t *testing.T) {
	m, _, _, _ := newTestManager(t)
	code, _ := m.Create(model.GameTicTacToe, "c1")
	m.Join(code, "c2")

	if err := m.HandleAction(code, "nobody", MoveAction{Index: 0}); !errors.Is(err, ErrNotAParticipant) {
		t.Fatalf("expected ErrNotAParticipant, got %v", err)
	}
}

func TestActionOfWrongKindRejected(t *testing.T) {
	m, _, _, _ := newTestManager(t)
	code, _ := m.Create(model.GameTicTacToe, "c1")
	m.Join(code, "c2")

	if err := m.HandleAction(code, "c1", RollAction{}); !errors.Is(err, ErrInvalidMove) {
		t.Fatalf("expected ErrInvalidMove for a roll in tic-tac-toe, got %v", err)
	}
}

func TestMovesAlternateTurns(t *testing.T) {
	m, _, _, _ := newTestManager(t)
	code, _ := m.Create(model.GameTicTacToe, "c1")
	m.Join(code, "c2")

	if err := m.HandleAction(code, "c1", MoveAction{Index: 0}); err != nil {
		t.Fatalf("first move: %v", err)
	}
	s := m.store.Get(code)
	if s.Turn == nil || *s.Turn != model.RoleSecond {
		t.Fatalf("turn should pass to second, got %+v", s.Turn)
	}
	if err := m.HandleAction(code, "c1", MoveAction{Index: 1}); !errors.Is(err, ErrNotYourTurn) {
		t.Fatalf("first moving twice should be rejected, got %v", err)
	}
}

// playTicTacToeWin drives c1 to a win on the top row.
func playTicTacToeWin(t *testing.T, m *Manager, code string) {
	t.Helper()
	moves := []struct {
		conn  string
		index int
	}{
		{"c1", 0}, {"c2", 3}, {"c1", 1}, {"c2", 4}, {"c1", 2},
	}
	for _, mv := range moves {
		if err := m.HandleAction(code, mv.conn, MoveAction{Index: mv.index}); err != nil {
			t.Fatalf("move %+v: %v", mv, err)
		}
	}
}

func TestWinScoresAndBlocksUntilReset(t *testing.T) {
	m, sched, _, rec := newTestManager(t)
	code, _ := m.Create(model.GameTicTacToe, "c1")
	m.Join(code, "c2")
	playTicTacToeWin(t, m, code)

	s := m.store.Get(code)
	if s.Scores.First != 1 || s.Scores.Second != 0 {
		t.Fatalf("expected 1-0, got %+v", s.Scores)
	}
	if s.Turn != nil {
		t.Fatalf("turn should be nil after a terminal outcome")
	}

	// Terminal window: every action is rejected the same way.
	if err := m.HandleAction(code, "c2", MoveAction{Index: 5}); !errors.Is(err, ErrNotYourTurn) {
		t.Fatalf("expected ErrNotYourTurn during terminal window, got %v", err)
	}

	rec.mu.Lock()
	results := len(rec.results)
	rec.mu.Unlock()
	if results != 1 {
		t.Fatalf("expected one recorded result, got %d", results)
	}

	sched.FireAll()

	s = m.store.Get(code)
	if s.TicTacToe.Grid != ([9]model.Role{}) {
		t.Fatalf("reset should blank the grid, got %v", s.TicTacToe.Grid)
	}
	if s.Turn == nil || *s.Turn != model.RoleFirst {
		t.Fatalf("reset should restore the turn to first, got %+v", s.Turn)
	}
	if s.Scores.First != 1 {
		t.Fatalf("reset must preserve scores, got %+v", s.Scores)
	}
}

func TestRecordedResultShape(t *testing.T) {
	m, _, _, rec := newTestManager(t)
	code, _ := m.Create(model.GameTicTacToe, "c1")
	m.Join(code, "c2")
	playTicTacToeWin(t, m, code)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	r := rec.results[0]
	if r.SessionCode != code || r.GameType != model.GameTicTacToe {
		t.Fatalf("unexpected result identity: %+v", r)
	}
	if r.WinnerRole != model.RoleFirst || r.Result != string(model.OutcomeWin) {
		t.Fatalf("unexpected result outcome: %+v", r)
	}
	if len(r.ParticipantIDs) != 2 {
		t.Fatalf("expected both participants recorded, got %v", r.ParticipantIDs)
	}
}

func TestDiceRollsResolveIndependently(t *testing.T) {
	// The die is rolled before the duplicate check, so the rejected second
	// roll below consumes a value too.
	rolls := []int{4, 1, 6}
	i := 0
	sched := &fakeScheduler{}
	m := NewManager(Config{
		Scheduler: sched,
		RollDie: func() int {
			v := rolls[i]
			i++
			return v
		},
	})
	code, _ := m.Create(model.GameDice, "c1")
	m.Join(code, "c2")

	// Second rolls before first: no turn enforcement for dice.
	if err := m.HandleAction(code, "c2", RollAction{}); err != nil {
		t.Fatalf("second's roll: %v", err)
	}
	if err := m.HandleAction(code, "c2", RollAction{}); !errors.Is(err, ErrInvalidMove) {
		t.Fatalf("duplicate roll should be rejected, got %v", err)
	}
	if err := m.HandleAction(code, "c1", RollAction{}); err != nil {
		t.Fatalf("first's roll: %v", err)
	}

	s := m.store.Get(code)
	if s.Turn != nil {
		t.Fatalf("round should have resolved")
	}
	// c2 rolled 4, c1 rolled 6: first wins.
	if s.Scores.First != 1 || s.Scores.Second != 0 {
		t.Fatalf("expected first 1-0, got %+v", s.Scores)
	}

	sched.FireAll()
	s = m.store.Get(code)
	if s.Dice.Rolls.First != nil || s.Dice.Rolls.Second != nil {
		t.Fatalf("reset should clear rolls, got %+v", s.Dice.Rolls)
	}
}

func TestResultAttributionSurvivesLeaveMidRound(t *testing.T) {
	rolls := []int{6, 2}
	i := 0
	sched := &fakeScheduler{}
	rec := &fakeRecorder{}
	m := NewManager(Config{
		Scheduler: sched,
		Recorder:  rec,
		RollDie: func() int {
			v := rolls[i]
			i++
			return v
		},
	})
	code, _ := m.Create(model.GameDice, "c1")
	m.Join(code, "c2")

	if err := m.HandleAction(code, "c1", RollAction{}); err != nil {
		t.Fatalf("first's roll: %v", err)
	}
	// The eventual winner disconnects before the round resolves.
	m.Leave("c1")
	if err := m.HandleAction(code, "c2", RollAction{}); err != nil {
		t.Fatalf("second's roll: %v", err)
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.results) != 1 {
		t.Fatalf("expected one recorded result, got %d", len(rec.results))
	}
	r := rec.results[0]
	if r.WinnerRole != model.RoleFirst {
		t.Fatalf("6 beats 2, expected first to win, got %+v", r)
	}
	if len(r.ParticipantIDs) != 2 || r.ParticipantIDs[0] != "c1" || r.ParticipantIDs[1] != "c2" {
		t.Fatalf("both seats must be recorded after a leave, got %v", r.ParticipantIDs)
	}
	if r.WinnerID() != "c1" {
		t.Fatalf("win must credit the departed winner, got %q", r.WinnerID())
	}
}

func TestSnapshotShowsOutcomeDuringTerminalWindow(t *testing.T) {
	m, sched, _, _ := newTestManager(t)
	code, _ := m.Create(model.GameTicTacToe, "c1")
	m.Join(code, "c2")
	playTicTacToeWin(t, m, code)

	snap, err := m.Snapshot(code)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap.Turn != nil {
		t.Fatalf("turn should be nil in the terminal window, got %v", *snap.Turn)
	}
	if snap.Outcome != string(model.OutcomeWin) || snap.Winner != model.RoleFirst {
		t.Fatalf("snapshot should carry the round outcome, got %+v", snap)
	}

	sched.FireAll()

	snap, err = m.Snapshot(code)
	if err != nil {
		t.Fatalf("snapshot after reset: %v", err)
	}
	if snap.Outcome != "" || snap.Winner != "" {
		t.Fatalf("reset should clear the outcome, got %+v", snap)
	}
}

func TestRPSPhaseEnforcement(t *testing.T) {
	m, sched, _, _ := newTestManager(t)
	code, _ := m.Create(model.GameRPS, "c1")

	// Waiting phase: nobody may act before the second participant joins.
	if err := m.HandleAction(code, "c1", ChoiceAction{Choice: model.ChoiceRock}); !errors.Is(err, ErrNotYourTurn) {
		t.Fatalf("expected ErrNotYourTurn while waiting, got %v", err)
	}

	m.Join(code, "c2")

	if err := m.HandleAction(code, "c2", ChoiceAction{Choice: model.ChoicePaper}); !errors.Is(err, ErrNotYourTurn) {
		t.Fatalf("second may not act in firstTurn, got %v", err)
	}
	if err := m.HandleAction(code, "c1", ChoiceAction{Choice: model.ChoiceRock}); err != nil {
		t.Fatalf("first's hand: %v", err)
	}
	if err := m.HandleAction(code, "c2", ChoiceAction{Choice: model.ChoicePaper}); err != nil {
		t.Fatalf("second's hand: %v", err)
	}

	s := m.store.Get(code)
	if s.RPS.Phase != model.RPSResolved {
		t.Fatalf("expected resolved, got %s", s.RPS.Phase)
	}
	// Paper beats rock.
	if s.Scores.Second != 1 {
		t.Fatalf("expected second 0-1, got %+v", s.Scores)
	}

	sched.FireAll()
	s = m.store.Get(code)
	if s.RPS.Phase != model.RPSFirstTurn {
		t.Fatalf("reset should restart at firstTurn, got %s", s.RPS.Phase)
	}
	if s.RPS.Choices != (model.ChoicePair{}) {
		t.Fatalf("reset should clear hands, got %+v", s.RPS.Choices)
	}
}

func TestLeaveDestroysEmptySessionAndCancelsReset(t *testing.T) {
	m, sched, _, _ := newTestManager(t)
	code, _ := m.Create(model.GameTicTacToe, "c1")
	m.Join(code, "c2")
	playTicTacToeWin(t, m, code)

	m.Leave("c1")
	if m.store.Get(code) == nil {
		t.Fatalf("session with a remaining participant must survive")
	}
	m.Leave("c2")
	if m.store.Get(code) != nil {
		t.Fatalf("emptied session should be destroyed")
	}

	// The pending reset must be a no-op after destruction.
	sched.FireAll()
	if m.store.Get(code) != nil {
		t.Fatalf("reset resurrected a destroyed session")
	}
}

func TestLeaveUnknownConnectionIsNoOp(t *testing.T) {
	m, _, _, _ := newTestManager(t)
	code, _ := m.Create(model.GameTicTacToe, "c1")
	m.Leave("nobody")
	if m.store.Get(code) == nil {
		t.Fatalf("unrelated leave destroyed the session")
	}
}

func TestSweepEvictsOnlyExpired(t *testing.T) {
	now := time.Now()
	m := NewManager(Config{
		Scheduler:  &fakeScheduler{},
		SessionTTL: 30 * time.Minute,
		Now:        func() time.Time { return now },
	})

	stale, _ := m.Create(model.GameTicTacToe, "c1")
	fresh, _ := m.Create(model.GameDice, "c2")

	// Age only the first session past the TTL.
	m.store.Get(stale).LastActivityAt = now.Add(-31 * time.Minute)

	if n := m.Sweep(); n != 1 {
		t.Fatalf("expected 1 eviction, got %d", n)
	}
	if m.store.Get(stale) != nil {
		t.Fatalf("expired session should be gone")
	}
	if m.store.Get(fresh) == nil {
		t.Fatalf("fresh session should survive")
	}
}

func TestSnapshotUnknownCode(t *testing.T) {
	m, _, _, _ := newTestManager(t)
	if _, err := m.Snapshot("NOPE42"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}
