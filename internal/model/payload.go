package model

import "time"

// Outcome classifies the result of applying a single action.
type Outcome struct {
	Kind   OutcomeKind `json:"kind"`
	Winner Role        `json:"winner,omitempty"` // set when Kind == OutcomeWin
}

type OutcomeKind string

const (
	OutcomeContinue OutcomeKind = "continue"
	OutcomeWin      OutcomeKind = "win"
	OutcomeDraw     OutcomeKind = "draw"
)

// Terminal reports whether the outcome ends the current round.
func (o Outcome) Terminal() bool {
	return o.Kind == OutcomeWin || o.Kind == OutcomeDraw
}

// GameUpdate is the broadcast payload pushed to every participant of a
// session after an accepted action, a join, or a round reset.
type GameUpdate struct {
	GameState any    `json:"gameState"`
	Scores    Scores `json:"scores"`
	Turn      *Role  `json:"turn"`
	Outcome   string `json:"outcome,omitempty"` // "win" or "draw" on terminal updates
	Winner    Role   `json:"winner,omitempty"`
}

// JoinedNotice announces a participant joining a session.
type JoinedNotice struct {
	Role         Role `json:"role"`
	Participants int  `json:"participants"`
}

// MatchResult is handed to the persistence collaborator once a session
// reaches a terminal outcome.
type MatchResult struct {
	SessionCode    string    `bson:"sessionCode" json:"sessionCode"`
	GameType       GameType  `bson:"gameType" json:"gameType"`
	ParticipantIDs []string  `bson:"participantIds" json:"participantIds"`
	WinnerRole     Role      `bson:"winnerRole,omitempty" json:"winnerRole,omitempty"`
	Result         string    `bson:"result" json:"result"` // "win" or "draw"
	RecordedAt     time.Time `bson:"recordedAt" json:"recordedAt"`
}

// WinnerID returns the winning participant's connection ID, or "" for a
// draw.
func (m MatchResult) WinnerID() string {
	switch m.WinnerRole {
	case RoleFirst:
		if len(m.ParticipantIDs) > 0 {
			return m.ParticipantIDs[0]
		}
	case RoleSecond:
		if len(m.ParticipantIDs) > 1 {
			return m.ParticipantIDs[1]
		}
	}
	return ""
}
