// Package bank loads question bank files used to seed exams.
package bank

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/VanAubrey/aws-cert-review/internal/grading"
	"github.com/VanAubrey/aws-cert-review/internal/model"
	"github.com/VanAubrey/aws-cert-review/internal/validator"
)

// Defaults applied when a bank omits timing or scoring.
const (
	DefaultDuration     = 90
	DefaultPassingScore = 700
)

// File is the on-disk shape of a question bank.
type File struct {
	ExamCode     string     `json:"examCode" validate:"required,exam_code"`
	ExamTitle    string     `json:"examTitle" validate:"required,max=255"`
	Duration     int        `json:"duration" validate:"omitempty,min=1,max=600"`
	PassingScore *int       `json:"passingScore" validate:"omitempty,min=0,max=1000"`
	Questions    []Question `json:"questions" validate:"required,min=1,dive"`
}

type Question struct {
	Text    string   `json:"text" validate:"required"`
	Options []Option `json:"options" validate:"required,min=1,dive"`
}

type Option struct {
	Text      string `json:"text" validate:"required"`
	IsCorrect bool   `json:"isCorrect"`
}

// Issues lists every problem found in a bank file.
type Issues []string

func (is Issues) Error() string {
	return strings.Join(is, "; ")
}

// Load reads and decodes a bank file from path.
func Load(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	bank, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return bank, nil
}

// Decode parses a bank from r. It does not validate it.
func Decode(r io.Reader) (*File, error) {
	var bank File
	if err := json.NewDecoder(r).Decode(&bank); err != nil {
		return nil, fmt.Errorf("decode bank: %w", err)
	}
	return &bank, nil
}

// Validate checks field constraints and that every question has exactly one
// correct option. It returns Issues, or nil when the bank can be seeded.
func (f *File) Validate() error {
	var issues Issues

	if fields := validator.Struct(f); fields != nil {
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			issues = append(issues, k+": "+fields[k])
		}
	}

	exam := f.ToExam()
	for i := range exam.Questions {
		if _, err := grading.CorrectOption(&exam.Questions[i]); err != nil {
			var ie *grading.IntegrityError
			if errors.As(err, &ie) {
				issues = append(issues, fmt.Sprintf("questions[%d]: %s", i, ie.Reason))
			}
		}
	}

	if len(issues) == 0 {
		return nil
	}
	return issues
}

// ToExam converts the bank into a canonical exam with defaults applied.
// Ids are left for the store to assign.
func (f *File) ToExam() *model.Exam {
	exam := &model.Exam{
		Code:         f.ExamCode,
		Title:        f.ExamTitle,
		Duration:     f.Duration,
		PassingScore: DefaultPassingScore,
		Questions:    make([]model.Question, len(f.Questions)),
	}
	if exam.Duration == 0 {
		exam.Duration = DefaultDuration
	}
	if f.PassingScore != nil {
		exam.PassingScore = *f.PassingScore
	}

	for i, q := range f.Questions {
		question := model.Question{Text: q.Text, Position: i, Options: make([]model.Option, len(q.Options))}
		for j, o := range q.Options {
			question.Options[j] = model.Option{Text: o.Text, IsCorrect: o.IsCorrect, Position: j}
		}
		exam.Questions[i] = question
	}
	return exam
}
