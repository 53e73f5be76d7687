package session

import (
	"fmt"
	"testing"
	"time"

	"github.com/VanAubrey/aws-cert-review/internal/model"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var testNow = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

// buildExam returns an exam whose questions each have optionCount options,
// the first of which is correct.
func buildExam(questions, optionCount int) *model.Exam {
	exam := &model.Exam{
		ID:           uuid.New(),
		Code:         "CLF-C02",
		Title:        "AWS Certified Cloud Practitioner",
		Duration:     90,
		PassingScore: 700,
	}
	for i := 0; i < questions; i++ {
		q := model.Question{ID: uuid.New(), Text: fmt.Sprintf("Question %d", i+1), Position: i}
		for j := 0; j < optionCount; j++ {
			q.Options = append(q.Options, model.Option{
				ID:        uuid.New(),
				Text:      fmt.Sprintf("Option %d", j+1),
				IsCorrect: j == 0,
				Position:  j,
			})
		}
		exam.Questions = append(exam.Questions, q)
	}
	return exam
}

func newTestMachine(t *testing.T, questions int, mode model.Mode) *Machine {
	t.Helper()
	s, err := NewInitializer(nil, 0).Initialize(buildExam(questions, 4), mode, 0, testNow)
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	return NewMachine(s, zerolog.Nop())
}
