package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/VanAubrey/aws-cert-review/internal/config"
	"github.com/VanAubrey/aws-cert-review/internal/model"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// CacheRepository holds read-through copies of exams and results in Redis.
type CacheRepository struct {
	rdb *redis.Client
}

// NewCacheRepository creates a new CacheRepository.
func NewCacheRepository(rdb *redis.Client) *CacheRepository {
	return &CacheRepository{rdb: rdb}
}

// GetExam returns a cached canonical exam.
func (r *CacheRepository) GetExam(ctx context.Context, id uuid.UUID) (*model.Exam, error) {
	var e model.Exam
	if err := r.getJSON(ctx, config.CacheKey.ExamPayloadKey(id.String()), &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// SetExam caches a canonical exam. Exams are immutable once seeded, so no TTL.
func (r *CacheRepository) SetExam(ctx context.Context, e *model.Exam) error {
	return r.setJSON(ctx, config.CacheKey.ExamPayloadKey(e.ID.String()), e, 0)
}

// GetExamList returns the cached catalog.
func (r *CacheRepository) GetExamList(ctx context.Context) ([]model.ExamSummary, error) {
	var list []model.ExamSummary
	if err := r.getJSON(ctx, config.CacheKey.ExamListKey(), &list); err != nil {
		return nil, err
	}
	return list, nil
}

// SetExamList caches the catalog.
func (r *CacheRepository) SetExamList(ctx context.Context, list []model.ExamSummary) error {
	return r.setJSON(ctx, config.CacheKey.ExamListKey(), list, 0)
}

// InvalidateExamList drops the cached catalog, e.g. after seeding.
func (r *CacheRepository) InvalidateExamList(ctx context.Context) error {
	return r.rdb.Del(ctx, config.CacheKey.ExamListKey()).Err()
}

// GetResults returns cached attempt results.
func (r *CacheRepository) GetResults(ctx context.Context, attemptID uuid.UUID) (*model.Results, error) {
	var res model.Results
	if err := r.getJSON(ctx, config.CacheKey.AttemptResultsKey(attemptID.String()), &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// SetResults caches attempt results for ttl.
func (r *CacheRepository) SetResults(ctx context.Context, res *model.Results, ttl time.Duration) error {
	return r.setJSON(ctx, config.CacheKey.AttemptResultsKey(res.AttemptID), res, ttl)
}

// EnqueueResultsWarm asks the results cache worker to load an attempt's results.
func (r *CacheRepository) EnqueueResultsWarm(ctx context.Context, attemptID uuid.UUID) error {
	return r.rdb.RPush(ctx, config.WorkerKey.WarmResultsQueue, attemptID.String()).Err()
}

func (r *CacheRepository) getJSON(ctx context.Context, key string, dst any) error {
	data, err := r.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrCacheMiss
		}
		return fmt.Errorf("get %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("unmarshal %s: %w", key, err)
	}
	return nil
}

func (r *CacheRepository) setJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return r.rdb.Set(ctx, key, data, ttl).Err()
}
