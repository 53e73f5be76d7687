package grading

import (
	"errors"
	"fmt"

	"github.com/VanAubrey/aws-cert-review/internal/model"
)

// ErrDataIntegrity marks canonical questions that do not have exactly one correct option.
var ErrDataIntegrity = errors.New("data integrity violation")

// Reasons a question cannot be scored.
const (
	ReasonNoCorrectOption        = "NO_CORRECT_OPTION"
	ReasonMultipleCorrectOptions = "MULTIPLE_CORRECT_OPTIONS"
)

// IntegrityError describes one question that violates the one-correct-option rule.
type IntegrityError struct {
	QuestionID string
	Reason     string
	Correct    int
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("question %s: %s (%d correct options)", e.QuestionID, e.Reason, e.Correct)
}

func (e *IntegrityError) Unwrap() error {
	return ErrDataIntegrity
}

// CorrectOption returns the id of the single correct option of q.
func CorrectOption(q *model.Question) (string, error) {
	var id string
	n := 0
	for _, o := range q.Options {
		if o.IsCorrect {
			id = o.ID.String()
			n++
		}
	}
	switch {
	case n == 1:
		return id, nil
	case n == 0:
		return "", &IntegrityError{QuestionID: q.ID.String(), Reason: ReasonNoCorrectOption}
	default:
		return "", &IntegrityError{QuestionID: q.ID.String(), Reason: ReasonMultipleCorrectOptions, Correct: n}
	}
}

// ValidateExam reports every question of exam that grading would exclude.
func ValidateExam(exam *model.Exam) error {
	var errs []error
	for i := range exam.Questions {
		if _, err := CorrectOption(&exam.Questions[i]); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
