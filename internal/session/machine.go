// Package session owns the in-progress attempt: its initialization from a
// canonical exam and every transition applied until submit or discard.
package session

import (
	"errors"

	"github.com/VanAubrey/aws-cert-review/internal/model"
	"github.com/rs/zerolog"
)

var (
	ErrSessionClosed   = errors.New("session is no longer active")
	ErrUnknownQuestion = errors.New("question is not part of this session")
	ErrUntimedSession  = errors.New("session is untimed")
)

// Machine applies transitions to a single session. It is not safe for
// concurrent use; callers serialize access per session.
type Machine struct {
	s     *model.Session
	index map[string]int
	log   zerolog.Logger
}

// NewMachine wraps s. Nil answer/flag maps are replaced with empty ones and an
// empty state is treated as ACTIVE.
func NewMachine(s *model.Session, log zerolog.Logger) *Machine {
	if s.Answers == nil {
		s.Answers = map[string]string{}
	}
	if s.Flags == nil {
		s.Flags = map[string]bool{}
	}
	if s.State == "" {
		s.State = model.SessionStateActive
	}

	index := make(map[string]int, len(s.Questions))
	for i, q := range s.Questions {
		index[q.ID] = i
	}

	return &Machine{
		s:     s,
		index: index,
		log:   log.With().Str("session_id", s.ID).Logger(),
	}
}

// Session returns the wrapped session.
func (m *Machine) Session() *model.Session {
	return m.s
}

// Active reports whether the session still accepts transitions.
func (m *Machine) Active() bool {
	return m.s.State == model.SessionStateActive
}

func (m *Machine) ensureActive() error {
	if !m.Active() {
		return ErrSessionClosed
	}
	return nil
}

func (m *Machine) ensureQuestion(questionID string) error {
	if _, ok := m.index[questionID]; !ok {
		return ErrUnknownQuestion
	}
	return nil
}

// SetCurrentIndex moves to question i. Out-of-range indexes are ignored with a warning.
func (m *Machine) SetCurrentIndex(i int) error {
	if err := m.ensureActive(); err != nil {
		return err
	}
	if i < 0 || i >= len(m.s.Questions) {
		m.log.Warn().Int("index", i).Int("total", len(m.s.Questions)).Msg("Invalid question index")
		return nil
	}
	m.s.CurrentIndex = i
	return nil
}

// GoToQuestion is SetCurrentIndex under the name the question grid uses.
func (m *Machine) GoToQuestion(i int) error {
	return m.SetCurrentIndex(i)
}

// NextQuestion advances by one; at the last question it does nothing.
func (m *Machine) NextQuestion() error {
	if err := m.ensureActive(); err != nil {
		return err
	}
	if next := m.s.CurrentIndex + 1; next < len(m.s.Questions) {
		m.s.CurrentIndex = next
	}
	return nil
}

// PreviousQuestion retreats by one; at the first question it does nothing.
func (m *Machine) PreviousQuestion() error {
	if err := m.ensureActive(); err != nil {
		return err
	}
	if prev := m.s.CurrentIndex - 1; prev >= 0 {
		m.s.CurrentIndex = prev
	}
	return nil
}

// AnswerQuestion records optionID for questionID, replacing any prior answer.
// optionID is not checked against the question's options; grading settles that.
func (m *Machine) AnswerQuestion(questionID, optionID string) error {
	if err := m.ensureActive(); err != nil {
		return err
	}
	if err := m.ensureQuestion(questionID); err != nil {
		return err
	}
	m.s.Answers[questionID] = optionID
	return nil
}

// ClearAnswer removes the answer for questionID if there is one.
func (m *Machine) ClearAnswer(questionID string) error {
	if err := m.ensureActive(); err != nil {
		return err
	}
	delete(m.s.Answers, questionID)
	return nil
}

// ToggleFlag flips the review flag of questionID. Un-flagging deletes the key.
func (m *Machine) ToggleFlag(questionID string) error {
	if err := m.ensureActive(); err != nil {
		return err
	}
	if err := m.ensureQuestion(questionID); err != nil {
		return err
	}
	if m.s.Flags[questionID] {
		delete(m.s.Flags, questionID)
	} else {
		m.s.Flags[questionID] = true
	}
	return nil
}

// ClearFlag removes the review flag of questionID.
func (m *Machine) ClearFlag(questionID string) error {
	if err := m.ensureActive(); err != nil {
		return err
	}
	delete(m.s.Flags, questionID)
	return nil
}

// UpdateTimeRemaining stores the countdown value reported by the timer.
// Ticks on a closed session are dropped silently. Negative values clamp to 0.
// Monotonic decrease is the caller's responsibility.
func (m *Machine) UpdateTimeRemaining(seconds int) error {
	if !m.Active() {
		return nil
	}
	if m.s.Mode != model.ModeTimed {
		return ErrUntimedSession
	}
	seconds = max(seconds, 0)
	m.s.TimeRemaining = &seconds
	return nil
}

// Submit closes the session for grading.
func (m *Machine) Submit() error {
	if err := m.ensureActive(); err != nil {
		return err
	}
	m.s.State = model.SessionStateSubmitted
	return nil
}

// Discard abandons the session; nothing of it is persisted.
func (m *Machine) Discard() error {
	if err := m.ensureActive(); err != nil {
		return err
	}
	m.s.State = model.SessionStateDiscarded
	return nil
}
