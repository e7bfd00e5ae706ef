package cache

import (
	"context"

	"github.com/redis/go-redis/v9"
)

const (
	leaderboardKey = "leaderboard:scores"
	usernamesKey   = "leaderboard:usernames"
)

// LeaderboardCache maintains the global lifetime-score ranking in a Redis
// ZSET keyed by user id, with a companion hash for display names.
type LeaderboardCache interface {
	AddScore(ctx context.Context, userID, username string, points int) error
	GetTop(ctx context.Context, limit int) ([]LeaderboardEntry, error)
	GetRank(ctx context.Context, userID string) (int64, error)
}

// LeaderboardEntry is a single ranked row
type LeaderboardEntry struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Score    int    `json:"score"`
	Rank     int    `json:"rank"`
}

type leaderboardCache struct {
	client *redis.Client
}

// NewLeaderboardCache creates a new leaderboard cache
func NewLeaderboardCache(client *redis.Client) LeaderboardCache {
	return &leaderboardCache{
		client: client,
	}
}

func (c *leaderboardCache) AddScore(ctx context.Context, userID, username string, points int) error {
	pipe := c.client.Pipeline()
	pipe.ZIncrBy(ctx, leaderboardKey, float64(points), userID)
	pipe.HSet(ctx, usernamesKey, userID, username)
	_, err := pipe.Exec(ctx)
	return err
}

func (c *leaderboardCache) GetTop(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	results, err := c.client.ZRevRangeWithScores(ctx, leaderboardKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return []LeaderboardEntry{}, nil
	}

	ids := make([]string, len(results))
	for i, z := range results {
		ids[i] = z.Member.(string)
	}
	names, err := c.client.HMGet(ctx, usernamesKey, ids...).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, len(results))
	for i, z := range results {
		entry := LeaderboardEntry{
			UserID: ids[i],
			Score:  int(z.Score),
			Rank:   i + 1,
		}
		if name, ok := names[i].(string); ok {
			entry.Username = name
		}
		entries[i] = entry
	}
	return entries, nil
}

func (c *leaderboardCache) GetRank(ctx context.Context, userID string) (int64, error) {
	rank, err := c.client.ZRevRank(ctx, leaderboardKey, userID).Result()
	if err == redis.Nil {
		return -1, nil
	}
	return rank + 1, err // 1-indexed
}
