package session

import (
	"errors"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/VanAubrey/aws-cert-review/internal/model"
)

func TestInitializeTruncatesOversizedRequest(t *testing.T) {
	exam := buildExam(10, 4)
	s, err := NewInitializer(nil, 0).Initialize(exam, model.ModeUntimed, 65, testNow)
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if len(s.Questions) != 10 {
		t.Fatalf("got %d questions, want 10", len(s.Questions))
	}
}

func TestInitializeDefaultsQuestionCount(t *testing.T) {
	exam := buildExam(80, 2)
	s, err := NewInitializer(nil, 0).Initialize(exam, model.ModeTimed, 0, testNow)
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if len(s.Questions) != DefaultQuestionCount {
		t.Fatalf("got %d questions, want %d", len(s.Questions), DefaultQuestionCount)
	}

	s, err = NewInitializer(nil, 20).Initialize(exam, model.ModeTimed, 0, testNow)
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if len(s.Questions) != 20 {
		t.Fatalf("configured default: got %d questions, want 20", len(s.Questions))
	}
}

func TestInitializeSelectsWithoutReplacement(t *testing.T) {
	exam := buildExam(30, 4)
	s, err := NewInitializer(rand.New(rand.NewPCG(7, 7)), 0).Initialize(exam, model.ModeUntimed, 12, testNow)
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	canonical := map[string]model.Question{}
	for _, q := range exam.Questions {
		canonical[q.ID.String()] = q
	}

	seen := map[string]bool{}
	for _, q := range s.Questions {
		if seen[q.ID] {
			t.Fatalf("question %s selected twice", q.ID)
		}
		seen[q.ID] = true

		src, ok := canonical[q.ID]
		if !ok {
			t.Fatalf("question %s is not in the exam", q.ID)
		}
		if q.Text != src.Text {
			t.Fatalf("question text = %q, want %q", q.Text, src.Text)
		}

		var want, got []string
		for _, o := range src.Options {
			want = append(want, o.ID.String())
		}
		correct := 0
		for _, o := range q.Options {
			got = append(got, o.ID.String())
			if o.IsCorrect {
				correct++
			}
		}
		slices.Sort(want)
		slices.Sort(got)
		if !slices.Equal(want, got) {
			t.Fatalf("options of %s are not a permutation of the canonical options", q.ID)
		}
		if correct != 1 {
			t.Fatalf("snapshot of %s carries %d correct flags, want 1", q.ID, correct)
		}
	}
}

func TestInitializeDoesNotMutateExam(t *testing.T) {
	exam := buildExam(8, 4)
	var before []string
	for _, q := range exam.Questions {
		before = append(before, q.ID.String())
		for _, o := range q.Options {
			before = append(before, o.ID.String())
		}
	}
	if _, err := NewInitializer(nil, 0).Initialize(exam, model.ModeTimed, 5, testNow); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	var after []string
	for _, q := range exam.Questions {
		after = append(after, q.ID.String())
		for _, o := range q.Options {
			after = append(after, o.ID.String())
		}
	}
	if !slices.Equal(before, after) {
		t.Fatal("Initialize reordered the canonical exam")
	}
}

func TestInitializeSetsBaseline(t *testing.T) {
	exam := buildExam(5, 3)

	timed, err := NewInitializer(nil, 0).Initialize(exam, model.ModeTimed, 5, testNow)
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if timed.TimeRemaining == nil || *timed.TimeRemaining != 90*60 {
		t.Fatalf("timed TimeRemaining = %v, want %d", timed.TimeRemaining, 90*60)
	}
	if timed.CurrentIndex != 0 || len(timed.Answers) != 0 || len(timed.Flags) != 0 {
		t.Fatal("new session must start at index 0 with no answers or flags")
	}
	if !timed.StartTime.Equal(testNow) {
		t.Fatalf("StartTime = %v, want %v", timed.StartTime, testNow)
	}
	if timed.State != model.SessionStateActive {
		t.Fatalf("State = %s, want ACTIVE", timed.State)
	}
	if timed.ExamCode != exam.Code || timed.PassingScore != exam.PassingScore || timed.Duration != exam.Duration {
		t.Fatal("exam identity fields not copied")
	}
	if timed.ID == "" || timed.AttemptID == "" || timed.ID == timed.AttemptID {
		t.Fatal("session and attempt ids must be distinct and non-empty")
	}

	untimed, err := NewInitializer(nil, 0).Initialize(exam, model.ModeUntimed, 5, testNow)
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if untimed.TimeRemaining != nil {
		t.Fatalf("untimed TimeRemaining = %d, want nil", *untimed.TimeRemaining)
	}
}

func TestInitializeFiltersOptionlessQuestions(t *testing.T) {
	exam := buildExam(4, 3)
	exam.Questions[1].Options = nil
	exam.Questions[3].Options = nil

	s, err := NewInitializer(nil, 0).Initialize(exam, model.ModeUntimed, 0, testNow)
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if len(s.Questions) != 2 {
		t.Fatalf("got %d questions, want 2", len(s.Questions))
	}
	for _, q := range s.Questions {
		if q.ID == exam.Questions[1].ID.String() || q.ID == exam.Questions[3].ID.String() {
			t.Fatalf("optionless question %s was selected", q.ID)
		}
	}
}

func TestInitializeErrors(t *testing.T) {
	if _, err := NewInitializer(nil, 0).Initialize(buildExam(3, 3), model.Mode("practice"), 0, testNow); !errors.Is(err, ErrInvalidMode) {
		t.Fatalf("invalid mode: got %v, want ErrInvalidMode", err)
	}
	if _, err := NewInitializer(nil, 0).Initialize(buildExam(0, 0), model.ModeTimed, 0, testNow); !errors.Is(err, ErrNoQuestions) {
		t.Fatalf("empty exam: got %v, want ErrNoQuestions", err)
	}
	exam := buildExam(2, 0)
	if _, err := NewInitializer(nil, 0).Initialize(exam, model.ModeTimed, 0, testNow); !errors.Is(err, ErrNoQuestions) {
		t.Fatalf("optionless exam: got %v, want ErrNoQuestions", err)
	}
}
