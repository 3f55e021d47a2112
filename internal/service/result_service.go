package service

import (
	"context"
	"log"
	"time"

	"gameplatform/internal/cache"
	"gameplatform/internal/model"
	"gameplatform/internal/repository"
)

const recordTimeout = 5 * time.Second

// ResultService persists terminal outcomes: a match document in MongoDB and
// a win-count bump in the Redis leaderboard. It implements session.Recorder.
type ResultService struct {
	matches     repository.MatchRepo
	leaderboard cache.LeaderboardCache
}

func NewResultService(matches repository.MatchRepo, leaderboard cache.LeaderboardCache) *ResultService {
	return &ResultService{matches: matches, leaderboard: leaderboard}
}

// Record stores the result asynchronously. Storage failures are logged and
// swallowed; gameplay must never stall or fail on the persistence path.
func (s *ResultService) Record(result model.MatchResult) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		defer cancel()

		if err := s.matches.Insert(ctx, &result); err != nil {
			log.Printf("result: insert match for session %s: %v", result.SessionCode, err)
		}
		if winnerID := result.WinnerID(); winnerID != "" {
			if err := s.leaderboard.IncrementWins(ctx, result.GameType, winnerID); err != nil {
				log.Printf("result: leaderboard update for session %s: %v", result.SessionCode, err)
			}
		}
	}()
}
