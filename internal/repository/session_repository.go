package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/VanAubrey/aws-cert-review/internal/config"
	"github.com/VanAubrey/aws-cert-review/internal/model"
	"github.com/redis/go-redis/v9"
)

// maxUpdateRetries bounds optimistic retries when a watched session key changes mid-update.
const maxUpdateRetries = 5

// SessionRepository keeps in-progress sessions in Redis.
// Timed sessions are also indexed in a deadline sorted set for the expiry worker.
type SessionRepository struct {
	rdb *redis.Client
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(rdb *redis.Client) *SessionRepository {
	return &SessionRepository{rdb: rdb}
}

// Save writes a new session with the given lifetime.
func (r *SessionRepository) Save(ctx context.Context, s *model.Session, ttl time.Duration) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	pipe := r.rdb.TxPipeline()
	pipe.Set(ctx, config.CacheKey.SessionKey(s.ID), data, ttl)
	if deadline, ok := s.Deadline(); ok {
		pipe.ZAdd(ctx, config.CacheKey.SessionDeadlinesKey(), redis.Z{
			Score:  float64(deadline.Unix()),
			Member: s.ID,
		})
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Get loads a session.
func (r *SessionRepository) Get(ctx context.Context, id string) (*model.Session, error) {
	data, err := r.rdb.Get(ctx, config.CacheKey.SessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	return decodeSession(data)
}

// Update applies fn to the stored session inside a WATCH/MULTI transaction,
// retrying when another writer touched the key first. The key's TTL is kept.
// When fn returns an error nothing is written and that error is returned.
func (r *SessionRepository) Update(ctx context.Context, id string, fn func(*model.Session) error) (*model.Session, error) {
	key := config.CacheKey.SessionKey(id)
	var updated *model.Session

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return ErrNotFound
			}
			return err
		}
		s, err := decodeSession(data)
		if err != nil {
			return err
		}
		if err := fn(s); err != nil {
			return err
		}

		out, err := json.Marshal(s)
		if err != nil {
			return fmt.Errorf("marshal session: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, out, redis.KeepTTL)
			return nil
		})
		if err == nil {
			updated = s
		}
		return err
	}

	for i := 0; i < maxUpdateRetries; i++ {
		err := r.rdb.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return updated, nil
	}
	return nil, ErrConcurrentUpdate
}

// Delete removes a session and its deadline entry.
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	pipe := r.rdb.TxPipeline()
	pipe.Del(ctx, config.CacheKey.SessionKey(id))
	pipe.ZRem(ctx, config.CacheKey.SessionDeadlinesKey(), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Expired returns up to limit ids of timed sessions whose deadline is at or before now.
func (r *SessionRepository) Expired(ctx context.Context, now time.Time, limit int64) ([]string, error) {
	ids, err := r.rdb.ZRangeByScore(ctx, config.CacheKey.SessionDeadlinesKey(), &redis.ZRangeBy{
		Min:   "-inf",
		Max:   strconv.FormatInt(now.Unix(), 10),
		Count: limit,
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("range deadlines: %w", err)
	}
	return ids, nil
}

// Unschedule drops a session from the deadline index without touching the session itself.
func (r *SessionRepository) Unschedule(ctx context.Context, id string) error {
	return r.rdb.ZRem(ctx, config.CacheKey.SessionDeadlinesKey(), id).Err()
}

func decodeSession(data []byte) (*model.Session, error) {
	var s model.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &s, nil
}
