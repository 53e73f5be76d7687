// Package grading scores submitted answers against the canonical exam.
//
// Correctness is always re-derived from the stored options; the isCorrect
// flags carried by a client-held session are never consulted.
package grading

import (
	"errors"
	"time"

	"github.com/VanAubrey/aws-cert-review/internal/model"
	"github.com/VanAubrey/aws-cert-review/internal/scoring"
)

// Outcome is the full grading computation prior to persistence.
type Outcome struct {
	Total      int
	Correct    int
	Incorrect  int
	Unanswered int
	Score      int
	IsPassed   bool
	Questions  []model.QuestionResult
	Excluded   []model.ExcludedQuestion
}

// Grade scores answers over the canonical questions of exam, in canonical order.
// When scope is non-empty only questions whose id is listed are graded.
// Questions without exactly one correct option are excluded from every count
// and reported in Outcome.Excluded.
func Grade(answers map[string]string, exam *model.Exam, scope []string) Outcome {
	var inScope map[string]bool
	if len(scope) > 0 {
		inScope = make(map[string]bool, len(scope))
		for _, id := range scope {
			inScope[id] = true
		}
	}

	out := Outcome{Questions: make([]model.QuestionResult, 0, len(exam.Questions))}
	for i := range exam.Questions {
		q := &exam.Questions[i]
		qid := q.ID.String()
		if inScope != nil && !inScope[qid] {
			continue
		}

		correctID, err := CorrectOption(q)
		if err != nil {
			var ie *IntegrityError
			if errors.As(err, &ie) {
				out.Excluded = append(out.Excluded, model.ExcludedQuestion{QuestionID: qid, Reason: ie.Reason})
			}
			continue
		}

		result := model.QuestionResult{
			QuestionID:      qid,
			QuestionText:    q.Text,
			Options:         optionViews(q.Options),
			CorrectAnswerID: correctID,
		}

		out.Total++
		if userAnswer, ok := answers[qid]; ok && userAnswer != "" {
			result.UserAnswerID = &userAnswer
			if userAnswer == correctID {
				result.IsCorrect = true
				out.Correct++
			} else {
				out.Incorrect++
			}
		} else {
			out.Unanswered++
		}
		out.Questions = append(out.Questions, result)
	}

	out.Score = scoring.NormalizeScore(out.Correct, out.Total)
	out.IsPassed = scoring.IsPassing(out.Score, exam.PassingScore)
	return out
}

// BuildResults assembles the immutable results record of attempt.
func BuildResults(attempt *model.Attempt, exam *model.Exam, out Outcome) *model.Results {
	return &model.Results{
		AttemptID:        attempt.ID.String(),
		ExamID:           exam.ID.String(),
		ExamCode:         exam.Code,
		ExamTitle:        exam.Title,
		Score:            out.Score,
		IsPassed:         out.IsPassed,
		PassingScore:     exam.PassingScore,
		TotalQuestions:   out.Total,
		CorrectAnswers:   out.Correct,
		IncorrectAnswers: out.Incorrect,
		Unanswered:       out.Unanswered,
		StartedAt:        attempt.StartedAt,
		CompletedAt:      attempt.CompletedAt,
		Duration:         exam.Duration,
		TimeTaken:        int(max(attempt.CompletedAt.Sub(attempt.StartedAt), 0) / time.Second),
		QuestionResults:  out.Questions,
		Excluded:         out.Excluded,
	}
}

func optionViews(options []model.Option) []model.ExamOption {
	views := make([]model.ExamOption, len(options))
	for i, o := range options {
		views[i] = model.ExamOption{ID: o.ID.String(), Text: o.Text, IsCorrect: o.IsCorrect}
	}
	return views
}
