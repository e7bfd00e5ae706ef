package service

import (
	"context"
	"log"

	"drawdash/internal/cache"
	"drawdash/internal/model"
	"drawdash/internal/repository"
)

// StatsService persists per-account play counters and mirrors lifetime
// scores into the Redis leaderboard. It satisfies the game engine's
// UserStore, which treats every call as best-effort.
type StatsService struct {
	users       repository.UserRepo
	leaderboard cache.LeaderboardCache
}

// NewStatsService creates a new stats service
func NewStatsService(users repository.UserRepo, leaderboard cache.LeaderboardCache) *StatsService {
	return &StatsService{
		users:       users,
		leaderboard: leaderboard,
	}
}

// IncrementStats applies a counter delta to the account document. A score
// delta also feeds the leaderboard; a failure there is logged and ignored
// so the Mongo write stays authoritative.
func (s *StatsService) IncrementStats(ctx context.Context, userID string, delta model.StatsDelta) error {
	if err := s.users.IncrementStats(ctx, userID, delta); err != nil {
		return err
	}

	if delta.TotalScore > 0 && s.leaderboard != nil {
		user, err := s.users.GetByID(ctx, userID)
		if err != nil || user == nil {
			log.Printf("leaderboard username lookup failed for %s: %v", userID, err)
			return nil
		}
		if err := s.leaderboard.AddScore(ctx, userID, user.Username, delta.TotalScore); err != nil {
			log.Printf("leaderboard update failed for %s: %v", userID, err)
		}
	}
	return nil
}

// ReadStats returns the current counters for an account.
func (s *StatsService) ReadStats(ctx context.Context, userID string) (*model.UserStats, error) {
	return s.users.ReadStats(ctx, userID)
}

// Leaderboard returns the top lifetime scorers.
func (s *StatsService) Leaderboard(ctx context.Context, limit int) ([]cache.LeaderboardEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	return s.leaderboard.GetTop(ctx, limit)
}

// Rank returns the 1-indexed leaderboard position, or -1 when unranked.
func (s *StatsService) Rank(ctx context.Context, userID string) (int64, error) {
	return s.leaderboard.GetRank(ctx, userID)
}
