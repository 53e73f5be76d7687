package session

import (
	"errors"
	"math/rand/v2"
	"time"

	"github.com/VanAubrey/aws-cert-review/internal/model"
	"github.com/VanAubrey/aws-cert-review/internal/shuffle"
	"github.com/google/uuid"
)

// DefaultQuestionCount is used when the start request does not ask for a count.
const DefaultQuestionCount = 65

var (
	ErrInvalidMode = errors.New("invalid exam mode, must be timed or untimed")
	ErrNoQuestions = errors.New("exam has no answerable questions")
)

// Initializer builds fresh sessions from canonical exams.
type Initializer struct {
	rng          *rand.Rand
	defaultCount int
}

// NewInitializer creates an Initializer. A nil rng uses the process-wide source;
// defaultCount <= 0 falls back to DefaultQuestionCount.
func NewInitializer(rng *rand.Rand, defaultCount int) *Initializer {
	if defaultCount <= 0 {
		defaultCount = DefaultQuestionCount
	}
	return &Initializer{rng: rng, defaultCount: defaultCount}
}

// Initialize selects up to requested questions from exam in random order,
// shuffles each question's options and returns the ACTIVE session.
// requested <= 0 means unspecified; counts above the bank size are truncated.
func (in *Initializer) Initialize(exam *model.Exam, mode model.Mode, requested int, now time.Time) (*model.Session, error) {
	if !mode.Valid() {
		return nil, ErrInvalidMode
	}
	if requested <= 0 {
		requested = in.defaultCount
	}

	bank := make([]model.Question, 0, len(exam.Questions))
	for _, q := range exam.Questions {
		if len(q.Options) > 0 {
			bank = append(bank, q)
		}
	}
	if len(bank) == 0 {
		return nil, ErrNoQuestions
	}

	picked := shuffle.SliceWith(in.rng, bank)
	picked = picked[:min(requested, len(picked))]

	questions := make([]model.ExamQuestion, len(picked))
	for i, q := range picked {
		options := shuffle.SliceWith(in.rng, q.Options)
		views := make([]model.ExamOption, len(options))
		for j, o := range options {
			views[j] = model.ExamOption{ID: o.ID.String(), Text: o.Text, IsCorrect: o.IsCorrect}
		}
		questions[i] = model.ExamQuestion{ID: q.ID.String(), Text: q.Text, Options: views}
	}

	var remaining *int
	if mode == model.ModeTimed {
		secs := exam.Duration * 60
		remaining = &secs
	}

	return &model.Session{
		ID:            uuid.NewString(),
		AttemptID:     uuid.NewString(),
		ExamID:        exam.ID.String(),
		ExamCode:      exam.Code,
		ExamTitle:     exam.Title,
		Duration:      exam.Duration,
		PassingScore:  exam.PassingScore,
		Questions:     questions,
		CurrentIndex:  0,
		Answers:       map[string]string{},
		Flags:         map[string]bool{},
		Mode:          mode,
		StartTime:     now,
		TimeRemaining: remaining,
		State:         model.SessionStateActive,
	}, nil
}
