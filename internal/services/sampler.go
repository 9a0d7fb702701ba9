package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/examstack/exam-service/internal/cache"
	"github.com/examstack/exam-service/internal/models"
	"github.com/examstack/exam-service/internal/repositories"
)

const questionPoolTTL = 5 * time.Minute

// Sampler draws an unordered random subset of a subject's question pool
// without replacement. Pure read plus shuffle; the pool itself is never
// mutated.
type Sampler struct {
	repo   repositories.Repository
	cache  cache.CacheService // optional
	logger *slog.Logger
	seed   func() int64
}

func NewSampler(repo repositories.Repository, cacheSvc cache.CacheService, logger *slog.Logger) *Sampler {
	return &Sampler{
		repo:   repo,
		cache:  cacheSvc,
		logger: logger,
		seed:   func() int64 { return time.Now().UnixNano() },
	}
}

// Sample returns up to count questions for subject in random order. When
// the pool holds count questions or fewer, the whole pool is returned
// shuffled. An empty or unknown subject yields an empty result; only a
// storage read failure is an error.
func (s *Sampler) Sample(ctx context.Context, subject string, count int) ([]*models.Question, error) {
	if count < 0 {
		return nil, NewValidationError("count", "must be zero or a positive number", count)
	}

	pool, err := s.loadPool(ctx, subject)
	if err != nil {
		return nil, NewStorageError("question pool read", err)
	}
	if len(pool) == 0 || count == 0 {
		return []*models.Question{}, nil
	}

	shuffled := make([]*models.Question, len(pool))
	copy(shuffled, pool)

	r := rand.New(rand.NewSource(s.seed()))
	r.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	if count >= len(shuffled) {
		return shuffled, nil
	}
	return shuffled[:count], nil
}

// PoolSize reports how many questions a subject currently has.
func (s *Sampler) PoolSize(ctx context.Context, subject string) (int64, error) {
	count, err := s.repo.Questions().CountBySubject(ctx, nil, subject)
	if err != nil {
		return 0, NewStorageError("question count read", err)
	}
	return count, nil
}

func (s *Sampler) loadPool(ctx context.Context, subject string) ([]*models.Question, error) {
	key := poolCacheKey(subject)

	if s.cache != nil {
		var cached []*models.Question
		err := s.cache.Get(ctx, key, &cached)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn("question pool cache read failed", "subject", subject, "error", err)
		}
	}

	pool, err := s.repo.Questions().GetBySubject(ctx, nil, subject)
	if err != nil {
		return nil, err
	}

	if s.cache != nil && len(pool) > 0 {
		if err := s.cache.Set(ctx, key, pool, questionPoolTTL); err != nil {
			s.logger.Warn("question pool cache write failed", "subject", subject, "error", err)
		}
	}

	return pool, nil
}

func poolCacheKey(subject string) string {
	return fmt.Sprintf("questions:subject:%s", subject)
}
