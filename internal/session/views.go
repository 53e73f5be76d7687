package session

import (
	"maps"
	"time"

	"github.com/VanAubrey/aws-cert-review/internal/model"
	"github.com/VanAubrey/aws-cert-review/internal/scoring"
)

// Read-only projections over one session value. None of them cache state.

// Progress summarizes how far an attempt has come.
type Progress struct {
	Answered           int `json:"answered"`
	Flagged            int `json:"flagged"`
	Unanswered         int `json:"unanswered"`
	Total              int `json:"total"`
	Percentage         int `json:"percentage"`
	PositionPercentage int `json:"positionPercentage"`
}

// ProgressOf derives answer, flag and position counters.
func ProgressOf(s *model.Session) Progress {
	total := len(s.Questions)
	answered := AnsweredCount(s)
	return Progress{
		Answered:           answered,
		Flagged:            FlaggedCount(s),
		Unanswered:         total - answered,
		Total:              total,
		Percentage:         scoring.Percentage(answered, total),
		PositionPercentage: scoring.Percentage(s.CurrentIndex+1, total),
	}
}

// AnsweredCount is the number of questions with a non-empty recorded answer.
func AnsweredCount(s *model.Session) int {
	n := 0
	for _, a := range s.Answers {
		if a != "" {
			n++
		}
	}
	return n
}

// FlaggedCount is the number of questions currently flagged for review.
func FlaggedCount(s *model.Session) int {
	n := 0
	for _, flagged := range s.Flags {
		if flagged {
			n++
		}
	}
	return n
}

// Metadata is the exam identity and timing part of a session.
type Metadata struct {
	ExamID       string     `json:"examId"`
	ExamCode     string     `json:"examCode"`
	ExamTitle    string     `json:"examTitle"`
	Duration     int        `json:"duration"`
	PassingScore int        `json:"passingScore"`
	Mode         model.Mode `json:"mode"`
	StartTime    time.Time  `json:"startTime"`
}

func MetadataOf(s *model.Session) Metadata {
	return Metadata{
		ExamID:       s.ExamID,
		ExamCode:     s.ExamCode,
		ExamTitle:    s.ExamTitle,
		Duration:     s.Duration,
		PassingScore: s.PassingScore,
		Mode:         s.Mode,
		StartTime:    s.StartTime,
	}
}

// CurrentQuestion returns the question at the current index, or nil.
func CurrentQuestion(s *model.Session) *model.ExamQuestion {
	if s.CurrentIndex < 0 || s.CurrentIndex >= len(s.Questions) {
		return nil
	}
	return &s.Questions[s.CurrentIndex]
}

// CurrentAnswer returns the answer recorded for the current question.
func CurrentAnswer(s *model.Session) (string, bool) {
	q := CurrentQuestion(s)
	if q == nil {
		return "", false
	}
	return answerOf(s, q.ID)
}

func IsCurrentFlagged(s *model.Session) bool {
	q := CurrentQuestion(s)
	return q != nil && s.Flags[q.ID]
}

// Navigation tells the UI which arrows are enabled.
type Navigation struct {
	CanNext bool `json:"canNext"`
	CanPrev bool `json:"canPrev"`
}

func NavigationOf(s *model.Session) Navigation {
	return Navigation{
		CanNext: s.CurrentIndex < len(s.Questions)-1,
		CanPrev: s.CurrentIndex > 0,
	}
}

// QuestionStatus is the badge shown for a question in the grid.
type QuestionStatus string

const (
	StatusCurrent    QuestionStatus = "current"
	StatusFlagged    QuestionStatus = "flagged"
	StatusAnswered   QuestionStatus = "answered"
	StatusUnanswered QuestionStatus = "unanswered"
)

// StatusOf ranks current over flagged over answered.
func StatusOf(s *model.Session, questionID string) QuestionStatus {
	if q := CurrentQuestion(s); q != nil && q.ID == questionID {
		return StatusCurrent
	}
	if s.Flags[questionID] {
		return StatusFlagged
	}
	if IsAnswered(s, questionID) {
		return StatusAnswered
	}
	return StatusUnanswered
}

func IsAnswered(s *model.Session, questionID string) bool {
	_, ok := answerOf(s, questionID)
	return ok
}

func IsFlagged(s *model.Session, questionID string) bool {
	return s.Flags[questionID]
}

// CanSubmit requires at least one answered question.
func CanSubmit(s *model.Session) bool {
	return AnsweredCount(s) > 0
}

// AnswersOf returns a copy of the recorded answers.
func AnswersOf(s *model.Session) map[string]string {
	out := make(map[string]string, len(s.Answers))
	maps.Copy(out, s.Answers)
	return out
}

// FlagsOf returns the flagged question ids as a set.
func FlagsOf(s *model.Session) map[string]bool {
	out := make(map[string]bool, len(s.Flags))
	for id, flagged := range s.Flags {
		if flagged {
			out[id] = true
		}
	}
	return out
}

func answerOf(s *model.Session, questionID string) (string, bool) {
	a, ok := s.Answers[questionID]
	return a, ok && a != ""
}

// View bundles a session with its derived progress for API responses.
type View struct {
	Session    *model.Session `json:"session"`
	Progress   Progress       `json:"progress"`
	Navigation Navigation     `json:"navigation"`
	CanSubmit  bool           `json:"canSubmit"`
}

func ViewOf(s *model.Session) View {
	return View{
		Session:    s,
		Progress:   ProgressOf(s),
		Navigation: NavigationOf(s),
		CanSubmit:  CanSubmit(s),
	}
}
