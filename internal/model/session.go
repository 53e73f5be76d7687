package model

import (
	"encoding/json"
	"time"
)

// Mode selects whether an attempt runs against the clock.
type Mode string

const (
	ModeTimed   Mode = "timed"
	ModeUntimed Mode = "untimed"
)

// Valid reports whether m is one of the recognized modes.
func (m Mode) Valid() bool {
	return m == ModeTimed || m == ModeUntimed
}

// SessionState enumerates the lifecycle states of an exam session.
type SessionState string

const (
	SessionStateActive    SessionState = "ACTIVE"
	SessionStateSubmitted SessionState = "SUBMITTED"
	SessionStateDiscarded SessionState = "DISCARDED"
)

// ExamOption is the session/results projection of an option.
// IsCorrect is kept for immediate feedback in untimed mode; grading never trusts it.
type ExamOption struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"isCorrect"`
}

// ExamQuestion is a question as snapshotted into a session.
type ExamQuestion struct {
	ID      string       `json:"id"`
	Text    string       `json:"text"`
	Options []ExamOption `json:"options"`
}

// Session is the working state of an attempt that has not been submitted.
type Session struct {
	ID        string `json:"id"`
	AttemptID string `json:"attemptId"`

	ExamID       string `json:"examId"`
	ExamCode     string `json:"examCode"`
	ExamTitle    string `json:"examTitle"`
	Duration     int    `json:"duration"`
	PassingScore int    `json:"passingScore"`

	Questions     []ExamQuestion    `json:"questions"`
	CurrentIndex  int               `json:"currentIndex"`
	Answers       map[string]string `json:"answers"`
	Flags         map[string]bool   `json:"flags"`
	Mode          Mode              `json:"mode"`
	StartTime     time.Time         `json:"startTime"`
	TimeRemaining *int              `json:"timeRemaining"`
	State         SessionState      `json:"state"`
}

// Deadline returns when a timed session runs out. ok is false for untimed sessions.
func (s *Session) Deadline() (deadline time.Time, ok bool) {
	if s.Mode != ModeTimed {
		return time.Time{}, false
	}
	return s.StartTime.Add(time.Duration(s.Duration) * time.Minute), true
}

// QuestionIDs returns the session's question ids in presentation order.
func (s *Session) QuestionIDs() []string {
	ids := make([]string, len(s.Questions))
	for i, q := range s.Questions {
		ids[i] = q.ID
	}
	return ids
}

// StartExamRequest is the payload for starting an exam attempt.
// A QuestionCount of 0 or absent selects the default; counts above the bank
// size are truncated.
type StartExamRequest struct {
	Mode          Mode `json:"mode" binding:"required,exam_mode"`
	QuestionCount *int `json:"questionCount" binding:"omitempty,gte=0"`
}

// SubmitExamRequest is the payload for grading a client-held session.
// Answers is kept raw so that malformed maps can be rejected explicitly.
type SubmitExamRequest struct {
	Answers   json.RawMessage `json:"answers" binding:"required"`
	StartTime time.Time       `json:"startTime" binding:"required"`
}

// SetCurrentIndexRequest moves a server-side session to a question.
type SetCurrentIndexRequest struct {
	Index *int `json:"index" binding:"required"`
}

// AnswerQuestionRequest records an answer on a server-side session.
type AnswerQuestionRequest struct {
	OptionID string `json:"optionId" binding:"required,max=64"`
}
