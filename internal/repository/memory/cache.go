package memory

import (
	"context"
	"sync"
	"time"

	"github.com/VanAubrey/aws-cert-review/internal/model"
	"github.com/VanAubrey/aws-cert-review/internal/repository"
	"github.com/google/uuid"
)

// Cache is an in-memory stand-in for the Redis cache. Results TTLs are not
// enforced and warm requests are recorded instead of queued.
type Cache struct {
	mu       sync.RWMutex
	exams    map[uuid.UUID]*model.Exam
	list     []model.ExamSummary
	hasList  bool
	results  map[uuid.UUID]*model.Results
	warmReqs []uuid.UUID
}

func NewCache() *Cache {
	return &Cache{
		exams:   make(map[uuid.UUID]*model.Exam),
		results: make(map[uuid.UUID]*model.Results),
	}
}

func (c *Cache) GetExam(_ context.Context, id uuid.UUID) (*model.Exam, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.exams[id]
	if !ok {
		return nil, repository.ErrCacheMiss
	}
	return clone(e)
}

func (c *Cache) SetExam(_ context.Context, e *model.Exam) error {
	cp, err := clone(e)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.exams[e.ID] = cp
	c.mu.Unlock()
	return nil
}

func (c *Cache) GetExamList(_ context.Context) ([]model.ExamSummary, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.hasList {
		return nil, repository.ErrCacheMiss
	}
	return append([]model.ExamSummary(nil), c.list...), nil
}

func (c *Cache) SetExamList(_ context.Context, list []model.ExamSummary) error {
	c.mu.Lock()
	c.list = append([]model.ExamSummary(nil), list...)
	c.hasList = true
	c.mu.Unlock()
	return nil
}

func (c *Cache) InvalidateExamList(_ context.Context) error {
	c.mu.Lock()
	c.list, c.hasList = nil, false
	c.mu.Unlock()
	return nil
}

func (c *Cache) GetResults(_ context.Context, attemptID uuid.UUID) (*model.Results, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	r, ok := c.results[attemptID]
	if !ok {
		return nil, repository.ErrCacheMiss
	}
	return clone(r)
}

func (c *Cache) SetResults(_ context.Context, r *model.Results, _ time.Duration) error {
	id, err := uuid.Parse(r.AttemptID)
	if err != nil {
		return err
	}
	cp, err := clone(r)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.results[id] = cp
	c.mu.Unlock()
	return nil
}

func (c *Cache) EnqueueResultsWarm(_ context.Context, attemptID uuid.UUID) error {
	c.mu.Lock()
	c.warmReqs = append(c.warmReqs, attemptID)
	c.mu.Unlock()
	return nil
}

// WarmRequests returns the attempt ids passed to EnqueueResultsWarm.
func (c *Cache) WarmRequests() []uuid.UUID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]uuid.UUID(nil), c.warmReqs...)
}
