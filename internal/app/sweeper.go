package app

import (
	"context"
	"log"
	"time"
)

// Sweep removes games that have not changed since now-ttl and closes their
// subscribers. It returns the number of games removed.
func (s *Service) Sweep(now time.Time, ttl time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, gs := range s.games {
		if now.Sub(gs.Updated) < ttl {
			continue
		}
		for sub := range s.subs[id] {
			sub.close()
		}
		delete(s.subs, id)
		delete(s.games, id)
		removed++
	}
	return removed
}

// Len returns the number of live games.
func (s *Service) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.games)
}

// RunSweeper evicts idle games every interval until ctx is done.
func (s *Service) RunSweeper(ctx context.Context, interval, ttl time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	log.Printf("[SWEEP] Evicting games idle for %s, checking every %s", ttl, interval)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(s.now(), ttl); n > 0 {
				log.Printf("[SWEEP] Removed %d idle games, %d remaining", n, s.Len())
			}
		}
	}
}
