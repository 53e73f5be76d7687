package model

import (
	"time"

	"github.com/google/uuid"
)

// Exam is the canonical, stored question bank for a certification exam.
// It is read-only for the lifetime of any session started from it.
type Exam struct {
	ID           uuid.UUID  `json:"id"`
	Code         string     `json:"code"`
	Title        string     `json:"title"`
	Duration     int        `json:"duration"`     // minutes
	PassingScore int        `json:"passingScore"` // 0-1000
	Questions    []Question `json:"questions,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// Question is a canonical multiple-choice question.
type Question struct {
	ID       uuid.UUID `json:"id"`
	Text     string    `json:"text"`
	Position int       `json:"position"`
	Options  []Option  `json:"options"`
}

// Option is one answer choice of a canonical question.
type Option struct {
	ID        uuid.UUID `json:"id"`
	Text      string    `json:"text"`
	IsCorrect bool      `json:"isCorrect"`
	Position  int       `json:"position"`
}

// ExamSummary is the catalog view of an exam, without its question bank.
type ExamSummary struct {
	ID            uuid.UUID `json:"id"`
	Code          string    `json:"code"`
	Title         string    `json:"title"`
	Duration      int       `json:"duration"`
	PassingScore  int       `json:"passingScore"`
	QuestionCount int       `json:"questionCount"`
}

// Summary strips the question bank, keeping only its size.
func (e *Exam) Summary() ExamSummary {
	return ExamSummary{
		ID:            e.ID,
		Code:          e.Code,
		Title:         e.Title,
		Duration:      e.Duration,
		PassingScore:  e.PassingScore,
		QuestionCount: len(e.Questions),
	}
}
