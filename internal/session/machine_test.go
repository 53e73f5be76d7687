package session

import (
	"errors"
	"maps"
	"testing"

	"github.com/VanAubrey/aws-cert-review/internal/model"
)

func TestNavigationBounds(t *testing.T) {
	m := newTestMachine(t, 3, model.ModeUntimed)
	s := m.Session()

	if err := m.PreviousQuestion(); err != nil {
		t.Fatalf("PreviousQuestion: %v", err)
	}
	if s.CurrentIndex != 0 {
		t.Fatalf("PreviousQuestion at 0 moved to %d", s.CurrentIndex)
	}

	for i := 0; i < 5; i++ {
		if err := m.NextQuestion(); err != nil {
			t.Fatalf("NextQuestion: %v", err)
		}
	}
	if s.CurrentIndex != 2 {
		t.Fatalf("NextQuestion past the end: index %d, want 2", s.CurrentIndex)
	}

	if err := m.PreviousQuestion(); err != nil {
		t.Fatalf("PreviousQuestion: %v", err)
	}
	if s.CurrentIndex != 1 {
		t.Fatalf("PreviousQuestion: index %d, want 1", s.CurrentIndex)
	}
}

func TestSetCurrentIndexIgnoresOutOfRange(t *testing.T) {
	m := newTestMachine(t, 4, model.ModeUntimed)
	s := m.Session()

	if err := m.SetCurrentIndex(3); err != nil || s.CurrentIndex != 3 {
		t.Fatalf("SetCurrentIndex(3): err=%v index=%d", err, s.CurrentIndex)
	}
	for _, i := range []int{-1, 4, 100} {
		if err := m.SetCurrentIndex(i); err != nil {
			t.Fatalf("SetCurrentIndex(%d) returned %v, want nil", i, err)
		}
		if s.CurrentIndex != 3 {
			t.Fatalf("SetCurrentIndex(%d) moved to %d", i, s.CurrentIndex)
		}
	}
	if err := m.GoToQuestion(0); err != nil || s.CurrentIndex != 0 {
		t.Fatalf("GoToQuestion(0): err=%v index=%d", err, s.CurrentIndex)
	}
}

func TestAnswerQuestion(t *testing.T) {
	m := newTestMachine(t, 3, model.ModeUntimed)
	s := m.Session()
	q := s.Questions[0]

	if err := m.AnswerQuestion(q.ID, q.Options[0].ID); err != nil {
		t.Fatalf("AnswerQuestion: %v", err)
	}
	once := maps.Clone(s.Answers)
	if err := m.AnswerQuestion(q.ID, q.Options[0].ID); err != nil {
		t.Fatalf("AnswerQuestion: %v", err)
	}
	if !maps.Equal(once, s.Answers) {
		t.Fatalf("answering twice changed the map: %v vs %v", once, s.Answers)
	}

	if err := m.AnswerQuestion(q.ID, q.Options[1].ID); err != nil {
		t.Fatalf("AnswerQuestion overwrite: %v", err)
	}
	if s.Answers[q.ID] != q.Options[1].ID {
		t.Fatalf("answer = %s, want overwrite to %s", s.Answers[q.ID], q.Options[1].ID)
	}

	// Option ids are not validated by the state machine.
	if err := m.AnswerQuestion(q.ID, "not-an-option"); err != nil {
		t.Fatalf("foreign option id rejected: %v", err)
	}

	if err := m.AnswerQuestion("missing", "x"); !errors.Is(err, ErrUnknownQuestion) {
		t.Fatalf("unknown question: got %v, want ErrUnknownQuestion", err)
	}
	if _, ok := s.Answers["missing"]; ok {
		t.Fatal("unknown question id leaked into answers")
	}
}

func TestClearAnswer(t *testing.T) {
	m := newTestMachine(t, 2, model.ModeUntimed)
	s := m.Session()
	q := s.Questions[1]

	_ = m.AnswerQuestion(q.ID, q.Options[0].ID)
	if err := m.ClearAnswer(q.ID); err != nil {
		t.Fatalf("ClearAnswer: %v", err)
	}
	if len(s.Answers) != 0 {
		t.Fatalf("answers after clear = %v", s.Answers)
	}
	if err := m.ClearAnswer(q.ID); err != nil {
		t.Fatalf("ClearAnswer on unanswered: %v", err)
	}
}

func TestToggleFlagIsInvolution(t *testing.T) {
	m := newTestMachine(t, 2, model.ModeUntimed)
	s := m.Session()
	qid := s.Questions[0].ID

	if err := m.ToggleFlag(qid); err != nil {
		t.Fatalf("ToggleFlag: %v", err)
	}
	if !IsFlagged(s, qid) {
		t.Fatal("first toggle did not flag")
	}
	if err := m.ToggleFlag(qid); err != nil {
		t.Fatalf("ToggleFlag: %v", err)
	}
	if IsFlagged(s, qid) || FlaggedCount(s) != 0 {
		t.Fatal("second toggle did not restore the original flag")
	}

	if err := m.ToggleFlag("missing"); !errors.Is(err, ErrUnknownQuestion) {
		t.Fatalf("unknown question: got %v, want ErrUnknownQuestion", err)
	}

	_ = m.ToggleFlag(qid)
	if err := m.ClearFlag(qid); err != nil || IsFlagged(s, qid) {
		t.Fatalf("ClearFlag: err=%v flagged=%v", err, IsFlagged(s, qid))
	}
}

func TestUpdateTimeRemaining(t *testing.T) {
	m := newTestMachine(t, 2, model.ModeTimed)
	s := m.Session()

	if err := m.UpdateTimeRemaining(120); err != nil {
		t.Fatalf("UpdateTimeRemaining: %v", err)
	}
	if *s.TimeRemaining != 120 {
		t.Fatalf("TimeRemaining = %d, want 120", *s.TimeRemaining)
	}
	// Increases are accepted; monotonicity belongs to the timer.
	if err := m.UpdateTimeRemaining(300); err != nil || *s.TimeRemaining != 300 {
		t.Fatalf("UpdateTimeRemaining(300): err=%v value=%d", err, *s.TimeRemaining)
	}
	if err := m.UpdateTimeRemaining(-5); err != nil || *s.TimeRemaining != 0 {
		t.Fatalf("UpdateTimeRemaining(-5): err=%v value=%d", err, *s.TimeRemaining)
	}

	untimed := newTestMachine(t, 2, model.ModeUntimed)
	if err := untimed.UpdateTimeRemaining(10); !errors.Is(err, ErrUntimedSession) {
		t.Fatalf("untimed: got %v, want ErrUntimedSession", err)
	}
	if untimed.Session().TimeRemaining != nil {
		t.Fatal("untimed session gained a timer")
	}
}

func TestClosedSessionRejectsTransitions(t *testing.T) {
	m := newTestMachine(t, 3, model.ModeTimed)
	s := m.Session()
	qid := s.Questions[0].ID

	if err := m.Submit(); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if s.State != model.SessionStateSubmitted {
		t.Fatalf("State = %s, want SUBMITTED", s.State)
	}

	calls := map[string]func() error{
		"SetCurrentIndex":  func() error { return m.SetCurrentIndex(1) },
		"NextQuestion":     m.NextQuestion,
		"PreviousQuestion": m.PreviousQuestion,
		"AnswerQuestion":   func() error { return m.AnswerQuestion(qid, "x") },
		"ClearAnswer":      func() error { return m.ClearAnswer(qid) },
		"ToggleFlag":       func() error { return m.ToggleFlag(qid) },
		"ClearFlag":        func() error { return m.ClearFlag(qid) },
		"Submit":           m.Submit,
		"Discard":          m.Discard,
	}
	for name, call := range calls {
		if err := call(); !errors.Is(err, ErrSessionClosed) {
			t.Errorf("%s on submitted session: got %v, want ErrSessionClosed", name, err)
		}
	}

	before := *s.TimeRemaining
	if err := m.UpdateTimeRemaining(1); err != nil {
		t.Fatalf("tick after submit must be ignored, got %v", err)
	}
	if *s.TimeRemaining != before {
		t.Fatal("tick after submit changed the timer")
	}
	if len(s.Answers) != 0 || s.CurrentIndex != 0 {
		t.Fatal("closed session was mutated")
	}
}

func TestDiscard(t *testing.T) {
	m := newTestMachine(t, 1, model.ModeUntimed)
	if err := m.Discard(); err != nil {
		t.Fatalf("Discard: %v", err)
	}
	if m.Session().State != model.SessionStateDiscarded || m.Active() {
		t.Fatal("Discard did not close the session")
	}
}

func TestNewMachineNormalizesDecodedSession(t *testing.T) {
	s := &model.Session{ID: "s1", Questions: []model.ExamQuestion{{ID: "q1"}}}
	m := NewMachine(s, newTestMachine(t, 1, model.ModeUntimed).log)
	if s.Answers == nil || s.Flags == nil || s.State != model.SessionStateActive {
		t.Fatal("NewMachine did not normalize the session")
	}
	if err := m.AnswerQuestion("q1", "o1"); err != nil {
		t.Fatalf("AnswerQuestion: %v", err)
	}
}
