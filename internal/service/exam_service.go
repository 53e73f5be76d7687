package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/VanAubrey/aws-cert-review/internal/grading"
	"github.com/VanAubrey/aws-cert-review/internal/model"
	"github.com/VanAubrey/aws-cert-review/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ExamService serves canonical exams through the cache.
type ExamService struct {
	exams ExamStore
	cache Cache
	log   zerolog.Logger
}

// NewExamService creates a new ExamService.
func NewExamService(exams ExamStore, cache Cache, log zerolog.Logger) *ExamService {
	return &ExamService{
		exams: exams,
		cache: cache,
		log:   log.With().Str("component", "exam_service").Logger(),
	}
}

// List returns the exam catalog ordered by code.
func (s *ExamService) List(ctx context.Context) ([]model.ExamSummary, error) {
	list, err := s.cache.GetExamList(ctx)
	if err == nil {
		return list, nil
	}
	if !errors.Is(err, repository.ErrCacheMiss) {
		s.log.Warn().Err(err).Msg("Exam list cache read failed, falling back to store")
	}

	list, err = s.exams.ListSummaries(ctx)
	if err != nil {
		return nil, fmt.Errorf("list exams: %w", err)
	}
	if err := s.cache.SetExamList(ctx, list); err != nil {
		s.log.Warn().Err(err).Msg("Failed to cache exam list")
	}
	return list, nil
}

// Get returns the canonical exam with its questions.
func (s *ExamService) Get(ctx context.Context, id uuid.UUID) (*model.Exam, error) {
	exam, err := s.cache.GetExam(ctx, id)
	if err == nil {
		return exam, nil
	}
	if !errors.Is(err, repository.ErrCacheMiss) {
		s.log.Warn().Err(err).Str("exam_id", id.String()).Msg("Exam cache read failed, falling back to store")
	}

	exam, err = s.exams.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("get exam: %w", err)
	}
	if err := s.cache.SetExam(ctx, exam); err != nil {
		s.log.Warn().Err(err).Str("exam_id", id.String()).Msg("Failed to cache exam")
	}
	return exam, nil
}

// Create validates and stores a new exam bank. It returns repository.ErrConflict
// when the code already exists.
func (s *ExamService) Create(ctx context.Context, exam *model.Exam) error {
	if err := grading.ValidateExam(exam); err != nil {
		return err
	}
	if err := s.exams.Create(ctx, exam); err != nil {
		return err
	}
	if err := s.cache.InvalidateExamList(ctx); err != nil {
		s.log.Warn().Err(err).Msg("Failed to invalidate exam list cache")
	}

	s.log.Info().
		Str("exam_id", exam.ID.String()).
		Str("code", exam.Code).
		Int("questions", len(exam.Questions)).
		Msg("Exam created")
	return nil
}

// PrewarmAllCaches loads every exam into the cache on application startup.
func (s *ExamService) PrewarmAllCaches(ctx context.Context) error {
	list, err := s.exams.ListSummaries(ctx)
	if err != nil {
		return fmt.Errorf("list exams: %w", err)
	}
	if len(list) == 0 {
		s.log.Info().Msg("No exams to prewarm")
		return nil
	}

	s.log.Info().Int("count", len(list)).Msg("Prewarming exams...")

	warmed := 0
	for _, summary := range list {
		exam, err := s.exams.GetByID(ctx, summary.ID)
		if err == nil {
			if verr := grading.ValidateExam(exam); verr != nil {
				s.log.Warn().Err(verr).Str("code", exam.Code).Msg("Exam has questions that grading will exclude")
			}
			err = s.cache.SetExam(ctx, exam)
		}
		if err != nil {
			s.log.Warn().
				Err(err).
				Str("exam_id", summary.ID.String()).
				Msg("Failed to warm exam, skipping")
			continue
		}
		warmed++
	}
	if err := s.cache.SetExamList(ctx, list); err != nil {
		s.log.Warn().Err(err).Msg("Failed to cache exam list")
	}

	s.log.Info().
		Int("warmed", warmed).
		Int("total", len(list)).
		Msg("Prewarming complete")
	return nil
}
