package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"gameplatform/internal/model"
)

// LeaderboardCache keeps a per-game-type win count in a Redis ZSET.
type LeaderboardCache interface {
	IncrementWins(ctx context.Context, gt model.GameType, playerID string) error
	Top(ctx context.Context, gt model.GameType, limit int) ([]LeaderboardEntry, error)
}

// LeaderboardEntry is one ranked row.
type LeaderboardEntry struct {
	PlayerID string `json:"playerId"`
	Wins     int    `json:"wins"`
	Rank     int    `json:"rank"`
}

type leaderboardCache struct {
	client *redis.Client
}

func NewLeaderboardCache(client *redis.Client) LeaderboardCache {
	return &leaderboardCache{client: client}
}

func (c *leaderboardCache) key(gt model.GameType) string {
	return fmt.Sprintf("leaderboard:%s:wins", gt)
}

func (c *leaderboardCache) IncrementWins(ctx context.Context, gt model.GameType, playerID string) error {
	return c.client.ZIncrBy(ctx, c.key(gt), 1, playerID).Err()
}

func (c *leaderboardCache) Top(ctx context.Context, gt model.GameType, limit int) ([]LeaderboardEntry, error) {
	results, err := c.client.ZRevRangeWithScores(ctx, c.key(gt), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, len(results))
	for i, z := range results {
		entries[i] = LeaderboardEntry{
			PlayerID: z.Member.(string),
			Wins:     int(z.Score),
			Rank:     i + 1,
		}
	}
	return entries, nil
}
