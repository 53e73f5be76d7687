package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/VanAubrey/aws-cert-review/internal/metrics"
	"github.com/VanAubrey/aws-cert-review/internal/model"
	"github.com/VanAubrey/aws-cert-review/internal/repository"
	"github.com/VanAubrey/aws-cert-review/internal/session"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// SessionService runs server-side exam sessions.
type SessionService struct {
	exams      *ExamService
	attempts   *AttemptService
	sessions   SessionStore
	init       *session.Initializer
	untimedTTL time.Duration
	grace      time.Duration
	now        func() time.Time
	log        zerolog.Logger
}

// SessionOptions tunes session lifetimes.
type SessionOptions struct {
	DefaultQuestionCount int
	// UntimedTTL bounds how long an untimed session survives without activity.
	UntimedTTL time.Duration
	// Grace is added to a timed session's duration for its store lifetime.
	Grace time.Duration
}

// NewSessionService creates a new SessionService.
func NewSessionService(exams *ExamService, attempts *AttemptService, sessions SessionStore, opts SessionOptions, log zerolog.Logger) *SessionService {
	return &SessionService{
		exams:      exams,
		attempts:   attempts,
		sessions:   sessions,
		init:       session.NewInitializer(nil, opts.DefaultQuestionCount),
		untimedTTL: opts.UntimedTTL,
		grace:      opts.Grace,
		now:        time.Now,
		log:        log.With().Str("component", "session_service").Logger(),
	}
}

// Start initializes and stores a new session. count <= 0 uses the default.
func (s *SessionService) Start(ctx context.Context, examID uuid.UUID, mode model.Mode, count int) (*model.Session, error) {
	if !mode.Valid() {
		return nil, session.ErrInvalidMode
	}
	exam, err := s.exams.Get(ctx, examID)
	if err != nil {
		return nil, err
	}

	sess, err := s.init.Initialize(exam, mode, count, s.now().UTC().Truncate(time.Microsecond))
	if err != nil {
		return nil, err
	}

	ttl := s.untimedTTL
	if mode == model.ModeTimed {
		ttl = time.Duration(exam.Duration)*time.Minute + s.grace
	}
	if err := s.sessions.Save(ctx, sess, ttl); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	metrics.SessionsStarted.WithLabelValues(string(mode)).Inc()

	s.log.Info().
		Str("session_id", sess.ID).
		Str("exam_code", exam.Code).
		Str("mode", string(mode)).
		Int("questions", len(sess.Questions)).
		Msg("Session started")
	return sess, nil
}

// Get returns a stored session.
func (s *SessionService) Get(ctx context.Context, id string) (*model.Session, error) {
	sess, err := s.sessions.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return sess, nil
}

// apply runs one state machine transition inside a store update.
func (s *SessionService) apply(ctx context.Context, id string, fn func(m *session.Machine) error) (*model.Session, error) {
	sess, err := s.sessions.Update(ctx, id, func(sess *model.Session) error {
		return fn(session.NewMachine(sess, s.log))
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return sess, nil
}

func (s *SessionService) SetCurrentIndex(ctx context.Context, id string, index int) (*model.Session, error) {
	return s.apply(ctx, id, func(m *session.Machine) error { return m.SetCurrentIndex(index) })
}

func (s *SessionService) Next(ctx context.Context, id string) (*model.Session, error) {
	return s.apply(ctx, id, (*session.Machine).NextQuestion)
}

func (s *SessionService) Previous(ctx context.Context, id string) (*model.Session, error) {
	return s.apply(ctx, id, (*session.Machine).PreviousQuestion)
}

func (s *SessionService) Answer(ctx context.Context, id, questionID, optionID string) (*model.Session, error) {
	return s.apply(ctx, id, func(m *session.Machine) error { return m.AnswerQuestion(questionID, optionID) })
}

func (s *SessionService) ClearAnswer(ctx context.Context, id, questionID string) (*model.Session, error) {
	return s.apply(ctx, id, func(m *session.Machine) error { return m.ClearAnswer(questionID) })
}

func (s *SessionService) ToggleFlag(ctx context.Context, id, questionID string) (*model.Session, error) {
	return s.apply(ctx, id, func(m *session.Machine) error { return m.ToggleFlag(questionID) })
}

func (s *SessionService) ClearFlag(ctx context.Context, id, questionID string) (*model.Session, error) {
	return s.apply(ctx, id, func(m *session.Machine) error { return m.ClearFlag(questionID) })
}

// Tick stores the countdown value. A tick for a session that no longer
// exists or is closed is dropped and returns a nil session.
func (s *SessionService) Tick(ctx context.Context, id string, remaining int) (*model.Session, error) {
	sess, err := s.apply(ctx, id, func(m *session.Machine) error { return m.UpdateTimeRemaining(remaining) })
	if errors.Is(err, ErrSessionNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if sess.State != model.SessionStateActive {
		return nil, nil
	}
	return sess, nil
}

// Submit closes the session and grades its final answers. The session is
// marked SUBMITTED before grading, so a retry after a failed grade and a
// duplicate submit both land on the same stored attempt.
func (s *SessionService) Submit(ctx context.Context, id string) (*model.SubmitResult, error) {
	sess, err := s.apply(ctx, id, func(m *session.Machine) error {
		if err := m.Submit(); err != nil && m.Session().State != model.SessionStateSubmitted {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result, err := s.attempts.Record(ctx, sess, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Unschedule(ctx, id); err != nil {
		s.log.Warn().Err(err).Str("session_id", id).Msg("Failed to drop session deadline")
	}
	return result, nil
}

// Discard abandons an active session. Nothing is persisted.
func (s *SessionService) Discard(ctx context.Context, id string) error {
	_, err := s.apply(ctx, id, (*session.Machine).Discard)
	if err != nil {
		return err
	}
	if err := s.sessions.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	s.log.Info().Str("session_id", id).Msg("Session discarded")
	return nil
}

// SubmitExpired auto-submits up to limit timed sessions whose deadline passed.
// It returns how many were submitted.
func (s *SessionService) SubmitExpired(ctx context.Context, limit int64) (int, error) {
	ids, err := s.sessions.Expired(ctx, s.now(), limit)
	if err != nil {
		return 0, err
	}

	submitted := 0
	for _, id := range ids {
		_, err := s.Submit(ctx, id)
		switch {
		case err == nil:
			submitted++
		case errors.Is(err, ErrSessionNotFound), errors.Is(err, session.ErrSessionClosed):
			// Lifetime already elapsed or discarded; just drop the index entry.
			if uerr := s.sessions.Unschedule(ctx, id); uerr != nil {
				s.log.Warn().Err(uerr).Str("session_id", id).Msg("Failed to drop stale deadline")
			}
		default:
			s.log.Error().Err(err).Str("session_id", id).Msg("Auto-submit failed")
		}
	}
	return submitted, nil
}
