package model

import (
	"time"

	"github.com/google/uuid"
)

// Attempt is the persisted, write-once record of a submitted exam.
type Attempt struct {
	ID          uuid.UUID         `json:"id"`
	ExamID      uuid.UUID         `json:"examId"`
	StartedAt   time.Time         `json:"startedAt"`
	CompletedAt time.Time         `json:"completedAt"`
	Score       int               `json:"score"`
	IsPassed    bool              `json:"isPassed"`
	Answers     map[string]string `json:"answers"`
}

// SubmitResult is returned to the client right after grading.
type SubmitResult struct {
	AttemptID uuid.UUID `json:"attemptId"`
	Score     int       `json:"score"`
	IsPassed  bool      `json:"isPassed"`
}

// QuestionResult is the per-question breakdown of a graded attempt.
type QuestionResult struct {
	QuestionID      string       `json:"questionId"`
	QuestionText    string       `json:"questionText"`
	Options         []ExamOption `json:"options"`
	UserAnswerID    *string      `json:"userAnswerId"`
	CorrectAnswerID string       `json:"correctAnswerId"`
	IsCorrect       bool         `json:"isCorrect"`
}

// ExcludedQuestion records a canonical question that could not be scored.
type ExcludedQuestion struct {
	QuestionID string `json:"questionId"`
	Reason     string `json:"reason"`
}

// Results is the immutable, post-grading record of a submitted attempt.
type Results struct {
	AttemptID        string             `json:"attemptId"`
	ExamID           string             `json:"examId"`
	ExamCode         string             `json:"examCode"`
	ExamTitle        string             `json:"examTitle"`
	Score            int                `json:"score"`
	IsPassed         bool               `json:"isPassed"`
	PassingScore     int                `json:"passingScore"`
	TotalQuestions   int                `json:"totalQuestions"`
	CorrectAnswers   int                `json:"correctAnswers"`
	IncorrectAnswers int                `json:"incorrectAnswers"`
	Unanswered       int                `json:"unanswered"`
	StartedAt        time.Time          `json:"startedAt"`
	CompletedAt      time.Time          `json:"completedAt"`
	Duration         int                `json:"duration"`  // exam duration, minutes
	TimeTaken        int                `json:"timeTaken"` // seconds
	QuestionResults  []QuestionResult   `json:"questionResults"`
	Excluded         []ExcludedQuestion `json:"excludedQuestions,omitempty"`
}

// SubmitResult projects the client-facing submit response.
func (a *Attempt) SubmitResult() *SubmitResult {
	return &SubmitResult{AttemptID: a.ID, Score: a.Score, IsPassed: a.IsPassed}
}
