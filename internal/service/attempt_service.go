package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/VanAubrey/aws-cert-review/internal/grading"
	"github.com/VanAubrey/aws-cert-review/internal/metrics"
	"github.com/VanAubrey/aws-cert-review/internal/model"
	"github.com/VanAubrey/aws-cert-review/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// HistoryLimit caps the attempt history returned per exam.
const HistoryLimit = 20

// AttemptService grades submissions and serves stored results.
type AttemptService struct {
	exams      *ExamService
	attempts   AttemptStore
	cache      Cache
	resultsTTL time.Duration
	now        func() time.Time
	log        zerolog.Logger
}

// NewAttemptService creates a new AttemptService.
func NewAttemptService(exams *ExamService, attempts AttemptStore, cache Cache, resultsTTL time.Duration, log zerolog.Logger) *AttemptService {
	return &AttemptService{
		exams:      exams,
		attempts:   attempts,
		cache:      cache,
		resultsTTL: resultsTTL,
		now:        time.Now,
		log:        log.With().Str("component", "attempt_service").Logger(),
	}
}

// Submit grades a client-held session against every question of the
// canonical exam.
func (s *AttemptService) Submit(ctx context.Context, examID uuid.UUID, req *model.SubmitExamRequest) (*model.SubmitResult, error) {
	answers, err := grading.ParseAnswers(req.Answers)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if req.StartTime.After(now) {
		return nil, ErrInvalidStartTime
	}

	exam, err := s.exams.Get(ctx, examID)
	if err != nil {
		return nil, err
	}
	return s.record(ctx, exam, uuid.New(), answers, nil, req.StartTime, now, "stateless")
}

// Record grades a server-side session. The attempt id comes from the session,
// so recording the same session twice returns the first stored result.
func (s *AttemptService) Record(ctx context.Context, sess *model.Session, completedAt time.Time) (*model.SubmitResult, error) {
	attemptID, err := uuid.Parse(sess.AttemptID)
	if err != nil {
		return nil, fmt.Errorf("session attempt id: %w", err)
	}
	examID, err := uuid.Parse(sess.ExamID)
	if err != nil {
		return nil, fmt.Errorf("session exam id: %w", err)
	}
	exam, err := s.exams.Get(ctx, examID)
	if err != nil {
		return nil, err
	}

	answers := make(map[string]string, len(sess.Answers))
	for qid, oid := range sess.Answers {
		if oid != "" {
			answers[qid] = oid
		}
	}
	return s.record(ctx, exam, attemptID, answers, sess.QuestionIDs(), sess.StartTime, completedAt, string(sess.Mode))
}

func (s *AttemptService) record(
	ctx context.Context,
	exam *model.Exam,
	attemptID uuid.UUID,
	answers map[string]string,
	scope []string,
	startedAt, completedAt time.Time,
	source string,
) (*model.SubmitResult, error) {
	out := grading.Grade(answers, exam, scope)

	attempt := &model.Attempt{
		ID:          attemptID,
		ExamID:      exam.ID,
		StartedAt:   startedAt.UTC().Truncate(time.Microsecond),
		CompletedAt: completedAt.UTC().Truncate(time.Microsecond),
		Score:       out.Score,
		IsPassed:    out.IsPassed,
		Answers:     answers,
	}
	results := grading.BuildResults(attempt, exam, out)

	created, err := s.attempts.Create(ctx, attempt, results)
	if err != nil {
		return nil, fmt.Errorf("store attempt: %w", err)
	}
	if !created {
		existing, err := s.attempts.GetByID(ctx, attemptID)
		if err != nil {
			return nil, fmt.Errorf("load existing attempt: %w", err)
		}
		s.log.Info().Str("attempt_id", attemptID.String()).Msg("Attempt already recorded, returning stored result")
		return existing.SubmitResult(), nil
	}

	for _, ex := range out.Excluded {
		s.log.Warn().
			Str("exam_id", exam.ID.String()).
			Str("question_id", ex.QuestionID).
			Str("reason", ex.Reason).
			Msg("Question excluded from grading")
	}
	metrics.ObserveGraded(out.Score, out.IsPassed, len(out.Excluded), source)

	if err := s.cache.EnqueueResultsWarm(ctx, attemptID); err != nil {
		s.log.Warn().Err(err).Str("attempt_id", attemptID.String()).Msg("Failed to enqueue results warm")
	}

	s.log.Info().
		Str("attempt_id", attemptID.String()).
		Str("exam_code", exam.Code).
		Int("score", out.Score).
		Bool("passed", out.IsPassed).
		Msg("Attempt graded")
	return attempt.SubmitResult(), nil
}

// Results returns the results stored when the attempt was graded.
func (s *AttemptService) Results(ctx context.Context, attemptID uuid.UUID) (*model.Results, error) {
	res, err := s.cache.GetResults(ctx, attemptID)
	if err == nil {
		return res, nil
	}
	if !errors.Is(err, repository.ErrCacheMiss) {
		s.log.Warn().Err(err).Str("attempt_id", attemptID.String()).Msg("Results cache read failed, falling back to store")
	}
	return s.WarmResults(ctx, attemptID)
}

// WarmResults loads results from the store into the cache.
func (s *AttemptService) WarmResults(ctx context.Context, attemptID uuid.UUID) (*model.Results, error) {
	res, err := s.attempts.GetResults(ctx, attemptID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("get results: %w", err)
	}
	if err := s.cache.SetResults(ctx, res, s.resultsTTL); err != nil {
		s.log.Warn().Err(err).Str("attempt_id", attemptID.String()).Msg("Failed to cache results")
	}
	return res, nil
}

// History returns the latest attempts of an exam.
func (s *AttemptService) History(ctx context.Context, examID uuid.UUID) ([]model.Attempt, error) {
	if _, err := s.exams.Get(ctx, examID); err != nil {
		return nil, err
	}
	attempts, err := s.attempts.ListByExam(ctx, examID, HistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	return attempts, nil
}
