package session

import (
	"context"
	"log"
	"time"

	"gameplatform/internal/model"
)

// RunJanitor sweeps expired sessions on a fixed period until ctx is done.
// Run it in its own goroutine.
func (m *Manager) RunJanitor(ctx context.Context, period time.Duration) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Sweep(); n > 0 {
				log.Printf("janitor: evicted %d expired session(s)", n)
			}
		}
	}
}

// Sweep removes every session whose last activity is older than the
// configured TTL and reports how many were evicted. Participants still
// connected get no notice; eviction is best-effort cleanup, not a delivery
// guarantee.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.cfg.Now()
	var expired []string
	m.store.Each(func(s *model.Session) {
		if now.Sub(s.LastActivityAt) > m.cfg.SessionTTL {
			expired = append(expired, s.Code)
		}
	})

	for _, code := range expired {
		m.destroy(code, "expired")
		metricEvictions.Inc()
	}
	return len(expired)
}
