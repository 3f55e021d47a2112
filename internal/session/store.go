package session

import (
	"crypto/rand"
	"fmt"
	"strings"

	"gameplatform/internal/model"
)

// Invitation codes are 6 characters drawn from an alphabet without the
// ambiguous 0/O and 1/I.
const (
	codeAlphabet    = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	codeLength      = 6
	maxCodeAttempts = 10
)

// Store is the in-memory registry of live sessions keyed by invitation code.
// It is not safe for concurrent use on its own; the owning Manager
// serializes every access.
type Store struct {
	sessions map[string]*model.Session
}

func NewStore() *Store {
	return &Store{sessions: make(map[string]*model.Session)}
}

// Get returns the session for code, or nil if none exists.
func (st *Store) Get(code string) *model.Session {
	return st.sessions[code]
}

// Put registers a session under its code.
func (st *Store) Put(s *model.Session) {
	st.sessions[s.Code] = s
}

// Remove drops the session for code, if present.
func (st *Store) Remove(code string) {
	delete(st.sessions, code)
}

// Len reports the number of live sessions.
func (st *Store) Len() int {
	return len(st.sessions)
}

// Each calls fn for every live session.
func (st *Store) Each(fn func(*model.Session)) {
	for _, s := range st.sessions {
		fn(s)
	}
}

// AllocateCode generates an invitation code that does not collide with any
// live session, retrying a bounded number of times.
func (st *Store) AllocateCode() (string, error) {
	for attempts := 0; attempts < maxCodeAttempts; attempts++ {
		b := make([]byte, codeLength)
		if _, err := rand.Read(b); err != nil {
			return "", err
		}

		code := make([]byte, codeLength)
		for i := range code {
			code[i] = codeAlphabet[int(b[i])%len(codeAlphabet)]
		}

		if _, taken := st.sessions[string(code)]; !taken {
			return string(code), nil
		}
	}
	return "", fmt.Errorf("failed to allocate a unique session code")
}

// NormalizeCode uppercases and trims a client-supplied invitation code so
// lookups are case-insensitive.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
