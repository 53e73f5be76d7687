package service

import (
	"context"
	"time"

	"github.com/VanAubrey/aws-cert-review/internal/model"
	"github.com/google/uuid"
)

// ExamStore is the canonical exam store (Postgres or memory).
type ExamStore interface {
	ListSummaries(ctx context.Context) ([]model.ExamSummary, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error)
	GetByCode(ctx context.Context, code string) (*model.Exam, error)
	Create(ctx context.Context, e *model.Exam) error
}

// AttemptStore persists graded attempts. Create must not overwrite an existing id.
type AttemptStore interface {
	Create(ctx context.Context, a *model.Attempt, results *model.Results) (created bool, err error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Attempt, error)
	GetResults(ctx context.Context, id uuid.UUID) (*model.Results, error)
	ListByExam(ctx context.Context, examID uuid.UUID, limit int) ([]model.Attempt, error)
}

// SessionStore holds in-progress sessions.
type SessionStore interface {
	Save(ctx context.Context, s *model.Session, ttl time.Duration) error
	Get(ctx context.Context, id string) (*model.Session, error)
	Update(ctx context.Context, id string, fn func(*model.Session) error) (*model.Session, error)
	Delete(ctx context.Context, id string) error
	Expired(ctx context.Context, now time.Time, limit int64) ([]string, error)
	Unschedule(ctx context.Context, id string) error
}

// Cache is the read-through cache for exams and results.
type Cache interface {
	GetExam(ctx context.Context, id uuid.UUID) (*model.Exam, error)
	SetExam(ctx context.Context, e *model.Exam) error
	GetExamList(ctx context.Context) ([]model.ExamSummary, error)
	SetExamList(ctx context.Context, list []model.ExamSummary) error
	InvalidateExamList(ctx context.Context) error
	GetResults(ctx context.Context, attemptID uuid.UUID) (*model.Results, error)
	SetResults(ctx context.Context, r *model.Results, ttl time.Duration) error
	EnqueueResultsWarm(ctx context.Context, attemptID uuid.UUID) error
}
