// Package memory provides in-process implementations of the exam, attempt,
// session, and cache stores. It backs STORE_DRIVER=memory and the tests.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/VanAubrey/aws-cert-review/internal/model"
	"github.com/VanAubrey/aws-cert-review/internal/repository"
	"github.com/google/uuid"
)

// clone deep-copies v through JSON so callers never share memory with the store.
func clone[T any](v *T) (*T, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ExamStore keeps canonical exams in memory.
type ExamStore struct {
	mu     sync.RWMutex
	byID   map[uuid.UUID]*model.Exam
	byCode map[string]uuid.UUID
}

func NewExamStore() *ExamStore {
	return &ExamStore{byID: make(map[uuid.UUID]*model.Exam), byCode: make(map[string]uuid.UUID)}
}

func (s *ExamStore) ListSummaries(_ context.Context) ([]model.ExamSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]model.ExamSummary, 0, len(s.byID))
	for _, e := range s.byID {
		list = append(list, e.Summary())
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Code < list[j].Code })
	return list, nil
}

func (s *ExamStore) GetByID(_ context.Context, id uuid.UUID) (*model.Exam, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return clone(e)
}

func (s *ExamStore) GetByCode(ctx context.Context, code string) (*model.Exam, error) {
	s.mu.RLock()
	id, ok := s.byCode[code]
	s.mu.RUnlock()
	if !ok {
		return nil, repository.ErrNotFound
	}
	return s.GetByID(ctx, id)
}

func (s *ExamStore) Create(_ context.Context, e *model.Exam) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byCode[e.Code]; ok {
		return repository.ErrConflict
	}
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC().Truncate(time.Microsecond)
	}
	for i := range e.Questions {
		q := &e.Questions[i]
		if q.ID == uuid.Nil {
			q.ID = uuid.New()
		}
		q.Position = i
		for j := range q.Options {
			if q.Options[j].ID == uuid.Nil {
				q.Options[j].ID = uuid.New()
			}
			q.Options[j].Position = j
		}
	}

	stored, err := clone(e)
	if err != nil {
		return fmt.Errorf("copy exam: %w", err)
	}
	s.byID[e.ID] = stored
	s.byCode[e.Code] = e.ID
	return nil
}

type attemptRecord struct {
	attempt *model.Attempt
	results *model.Results
}

// AttemptStore keeps graded attempts in memory. Records are write-once.
type AttemptStore struct {
	mu       sync.RWMutex
	attempts map[uuid.UUID]attemptRecord
}

func NewAttemptStore() *AttemptStore {
	return &AttemptStore{attempts: make(map[uuid.UUID]attemptRecord)}
}

func (s *AttemptStore) Create(_ context.Context, a *model.Attempt, results *model.Results) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.attempts[a.ID]; ok {
		return false, nil
	}
	ac, err := clone(a)
	if err != nil {
		return false, err
	}
	rc, err := clone(results)
	if err != nil {
		return false, err
	}
	s.attempts[a.ID] = attemptRecord{attempt: ac, results: rc}
	return true, nil
}

func (s *AttemptStore) GetByID(_ context.Context, id uuid.UUID) (*model.Attempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.attempts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return clone(rec.attempt)
}

func (s *AttemptStore) GetResults(_ context.Context, id uuid.UUID) (*model.Results, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.attempts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return clone(rec.results)
}

func (s *AttemptStore) ListByExam(_ context.Context, examID uuid.UUID, limit int) ([]model.Attempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]model.Attempt, 0)
	for _, rec := range s.attempts {
		if rec.attempt.ExamID != examID {
			continue
		}
		a := *rec.attempt
		a.Answers = nil
		list = append(list, a)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CompletedAt.After(list[j].CompletedAt) })
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}
