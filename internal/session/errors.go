package session

import (
	"errors"

	"gameplatform/internal/game"
)

// Rejection taxonomy. Every one of these is recoverable: the action is
// refused, nothing is mutated, and the error is reported to the acting
// connection only, never broadcast.
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionFull     = errors.New("session full")
	ErrUnknownGameType = errors.New("unknown game type")
	ErrNotAParticipant = errors.New("not a participant of this session")
	ErrNotYourTurn     = errors.New("not your turn")
	ErrInvalidMove     = game.ErrInvalidMove
)

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		return "session_not_found"
	case errors.Is(err, ErrSessionFull):
		return "session_full"
	case errors.Is(err, ErrUnknownGameType):
		return "unknown_game_type"
	case errors.Is(err, ErrNotAParticipant):
		return "not_a_participant"
	case errors.Is(err, ErrNotYourTurn):
		return "not_your_turn"
	case errors.Is(err, ErrInvalidMove):
		return "invalid_move"
	default:
		return "other"
	}
}
