package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/VanAubrey/aws-cert-review/internal/grading"
	"github.com/VanAubrey/aws-cert-review/internal/model"
	"github.com/VanAubrey/aws-cert-review/internal/repository"
	"github.com/VanAubrey/aws-cert-review/internal/repository/memory"
	"github.com/VanAubrey/aws-cert-review/internal/session"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type testEnv struct {
	exams    *ExamService
	attempts *AttemptService
	sessions *SessionService
	cache    *memory.Cache
	clock    time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := zerolog.Nop()
	cache := memory.NewCache()

	env := &testEnv{cache: cache, clock: time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)}
	env.exams = NewExamService(memory.NewExamStore(), cache, log)
	env.attempts = NewAttemptService(env.exams, memory.NewAttemptStore(), cache, time.Hour, log)
	env.sessions = NewSessionService(env.exams, env.attempts, memory.NewSessionStore(), SessionOptions{
		UntimedTTL: 24 * time.Hour,
		Grace:      2 * time.Minute,
	}, log)

	now := func() time.Time { return env.clock }
	env.attempts.now = now
	env.sessions.now = now
	return env
}

// seedExam stores an exam whose first option is correct for every question.
func (e *testEnv) seedExam(t *testing.T, code string, questions int) *model.Exam {
	t.Helper()
	exam := &model.Exam{Code: code, Title: "Exam " + code, Duration: 90, PassingScore: 700}
	for i := 0; i < questions; i++ {
		q := model.Question{Text: fmt.Sprintf("Q%d", i+1)}
		for j := 0; j < 4; j++ {
			q.Options = append(q.Options, model.Option{Text: fmt.Sprintf("O%d", j+1), IsCorrect: j == 0})
		}
		exam.Questions = append(exam.Questions, q)
	}
	if err := e.exams.Create(context.Background(), exam); err != nil {
		t.Fatalf("seed exam: %v", err)
	}
	return exam
}

func correctOptionOf(t *testing.T, exam *model.Exam, questionID string) string {
	t.Helper()
	for _, q := range exam.Questions {
		if q.ID.String() == questionID {
			return q.Options[0].ID.String()
		}
	}
	t.Fatalf("question %s not in exam", questionID)
	return ""
}

func wrongOptionOf(t *testing.T, exam *model.Exam, questionID string) string {
	t.Helper()
	for _, q := range exam.Questions {
		if q.ID.String() == questionID {
			return q.Options[3].ID.String()
		}
	}
	t.Fatalf("question %s not in exam", questionID)
	return ""
}

func TestStartChecksModeBeforeExam(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.sessions.Start(context.Background(), uuid.New(), model.Mode("speedrun"), 0)
	if !errors.Is(err, session.ErrInvalidMode) {
		t.Fatalf("err = %v, want ErrInvalidMode", err)
	}
	_, err = env.sessions.Start(context.Background(), uuid.New(), model.ModeTimed, 0)
	if !errors.Is(err, ErrExamNotFound) {
		t.Fatalf("err = %v, want ErrExamNotFound", err)
	}
}

func TestStartTimedSession(t *testing.T) {
	env := newTestEnv(t)
	exam := env.seedExam(t, "CLF-C02", 80)

	sess, err := env.sessions.Start(context.Background(), exam.ID, model.ModeTimed, 0)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if len(sess.Questions) != session.DefaultQuestionCount {
		t.Errorf("got %d questions, want %d", len(sess.Questions), session.DefaultQuestionCount)
	}
	if sess.TimeRemaining == nil || *sess.TimeRemaining != 90*60 {
		t.Errorf("TimeRemaining = %v, want 5400", sess.TimeRemaining)
	}

	stored, err := env.sessions.Get(context.Background(), sess.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if stored.AttemptID != sess.AttemptID || len(stored.Questions) != len(sess.Questions) {
		t.Errorf("stored session differs from the started one")
	}
}

func TestSessionSubmitFlow(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	exam := env.seedExam(t, "SAA-C03", 10)

	sess, err := env.sessions.Start(ctx, exam.ID, model.ModeUntimed, 4)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	ids := sess.QuestionIDs()
	for _, qid := range ids[:3] {
		if _, err := env.sessions.Answer(ctx, sess.ID, qid, correctOptionOf(t, exam, qid)); err != nil {
			t.Fatalf("Answer: %v", err)
		}
	}
	if _, err := env.sessions.Answer(ctx, sess.ID, ids[3], wrongOptionOf(t, exam, ids[3])); err != nil {
		t.Fatalf("Answer: %v", err)
	}

	result, err := env.sessions.Submit(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if result.Score != 750 || !result.IsPassed {
		t.Errorf("result = %+v, want score 750 passed", result)
	}
	if result.AttemptID.String() != sess.AttemptID {
		t.Errorf("attempt id %s does not match session attempt id %s", result.AttemptID, sess.AttemptID)
	}

	again, err := env.sessions.Submit(ctx, sess.ID)
	if err != nil {
		t.Fatalf("second Submit: %v", err)
	}
	if *again != *result {
		t.Errorf("duplicate submit returned %+v, want %+v", again, result)
	}

	if _, err := env.sessions.Answer(ctx, sess.ID, ids[3], correctOptionOf(t, exam, ids[3])); !errors.Is(err, session.ErrSessionClosed) {
		t.Errorf("answer after submit err = %v, want ErrSessionClosed", err)
	}
	if err := env.sessions.Discard(ctx, sess.ID); !errors.Is(err, session.ErrSessionClosed) {
		t.Errorf("discard after submit err = %v, want ErrSessionClosed", err)
	}

	res, err := env.attempts.Results(ctx, result.AttemptID)
	if err != nil {
		t.Fatalf("Results: %v", err)
	}
	if res.TotalQuestions != 4 || res.CorrectAnswers != 3 || res.IncorrectAnswers != 1 || res.Unanswered != 0 {
		t.Errorf("results counts wrong: %+v", res)
	}
	for i, qr := range res.QuestionResults {
		if i > 0 && qr.QuestionID == res.QuestionResults[i-1].QuestionID {
			t.Errorf("duplicate question in results")
		}
	}

	cached, err := env.attempts.Results(ctx, result.AttemptID)
	if err != nil {
		t.Fatalf("Results (cached): %v", err)
	}
	if !reflect.DeepEqual(res, cached) {
		t.Errorf("results differ between queries")
	}
	if warm := env.cache.WarmRequests(); len(warm) != 1 || warm[0] != result.AttemptID {
		t.Errorf("warm requests = %v, want one for the attempt", warm)
	}
}

func TestSubmitGradesFinalAnswersOnly(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	exam := env.seedExam(t, "DVA-C02", 2)

	sess, _ := env.sessions.Start(ctx, exam.ID, model.ModeUntimed, 0)
	qid := sess.QuestionIDs()[0]
	env.sessions.Answer(ctx, sess.ID, qid, wrongOptionOf(t, exam, qid))
	env.sessions.Answer(ctx, sess.ID, qid, correctOptionOf(t, exam, qid))
	env.sessions.ToggleFlag(ctx, sess.ID, qid)

	result, err := env.sessions.Submit(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	res, _ := env.attempts.Results(ctx, result.AttemptID)
	if res.CorrectAnswers != 1 || res.Unanswered != 1 || res.Score != 500 {
		t.Errorf("results = %+v, want 1 correct 1 unanswered score 500", res)
	}
}

func TestDiscardRemovesSession(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	exam := env.seedExam(t, "SOA-C02", 3)

	sess, _ := env.sessions.Start(ctx, exam.ID, model.ModeTimed, 0)
	if err := env.sessions.Discard(ctx, sess.ID); err != nil {
		t.Fatalf("Discard: %v", err)
	}
	if _, err := env.sessions.Get(ctx, sess.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Get after discard err = %v, want ErrSessionNotFound", err)
	}
	if _, err := env.sessions.Submit(ctx, sess.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Submit after discard err = %v, want ErrSessionNotFound", err)
	}
	if list, _ := env.attempts.History(ctx, exam.ID); len(list) != 0 {
		t.Errorf("discarded session left %d attempts", len(list))
	}
}

func TestTick(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	exam := env.seedExam(t, "CLF-C02", 3)

	if sess, err := env.sessions.Tick(ctx, "missing", 10); sess != nil || err != nil {
		t.Errorf("tick on missing session = %v, %v; want nil, nil", sess, err)
	}

	timed, _ := env.sessions.Start(ctx, exam.ID, model.ModeTimed, 0)
	sess, err := env.sessions.Tick(ctx, timed.ID, 5399)
	if err != nil || sess == nil || *sess.TimeRemaining != 5399 {
		t.Fatalf("Tick = %+v, %v", sess, err)
	}

	untimed, _ := env.sessions.Start(ctx, exam.ID, model.ModeUntimed, 0)
	if _, err := env.sessions.Tick(ctx, untimed.ID, 10); !errors.Is(err, session.ErrUntimedSession) {
		t.Errorf("tick on untimed err = %v, want ErrUntimedSession", err)
	}

	env.sessions.Submit(ctx, timed.ID)
	if sess, err := env.sessions.Tick(ctx, timed.ID, 100); sess != nil || err != nil {
		t.Errorf("tick after submit = %v, %v; want nil, nil", sess, err)
	}
}

func TestSubmitExpired(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	exam := env.seedExam(t, "SAP-C02", 5)

	timed, _ := env.sessions.Start(ctx, exam.ID, model.ModeTimed, 0)
	env.sessions.Start(ctx, exam.ID, model.ModeUntimed, 0)

	if n, err := env.sessions.SubmitExpired(ctx, 10); n != 0 || err != nil {
		t.Fatalf("SubmitExpired before deadline = %d, %v", n, err)
	}

	env.clock = env.clock.Add(91 * time.Minute)
	n, err := env.sessions.SubmitExpired(ctx, 10)
	if err != nil || n != 1 {
		t.Fatalf("SubmitExpired = %d, %v; want 1", n, err)
	}

	sess, err := env.sessions.Get(ctx, timed.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if sess.State != model.SessionStateSubmitted {
		t.Errorf("state = %s, want SUBMITTED", sess.State)
	}
	if n, _ := env.sessions.SubmitExpired(ctx, 10); n != 0 {
		t.Errorf("expired session submitted twice")
	}

	history, _ := env.attempts.History(ctx, exam.ID)
	if len(history) != 1 || history[0].Score != 0 || history[0].IsPassed {
		t.Errorf("history = %+v, want one failed attempt", history)
	}
}

func TestStatelessSubmit(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	exam := env.seedExam(t, "CLF-C02", 4)

	answers := map[string]string{}
	for i, q := range exam.Questions {
		if i < 3 {
			answers[q.ID.String()] = q.Options[0].ID.String()
		} else {
			answers[q.ID.String()] = q.Options[2].ID.String()
		}
	}
	raw, _ := json.Marshal(answers)

	req := &model.SubmitExamRequest{Answers: raw, StartTime: env.clock.Add(-30 * time.Minute)}
	result, err := env.attempts.Submit(ctx, exam.ID, req)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if result.Score != 750 || !result.IsPassed {
		t.Errorf("result = %+v, want 750 passed", result)
	}

	res, _ := env.attempts.Results(ctx, result.AttemptID)
	if res.TimeTaken != 1800 {
		t.Errorf("TimeTaken = %d, want 1800", res.TimeTaken)
	}
}

func TestStatelessSubmitGradesWholeExam(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	exam := env.seedExam(t, "CLF-C02", 10)

	q0 := exam.Questions[0]
	raw, _ := json.Marshal(map[string]string{q0.ID.String(): q0.Options[0].ID.String()})
	req := &model.SubmitExamRequest{Answers: raw, StartTime: env.clock.Add(-time.Minute)}

	result, err := env.attempts.Submit(ctx, exam.ID, req)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if result.Score != 100 || result.IsPassed {
		t.Errorf("result = %+v, want 100 failed", result)
	}

	res, err := env.attempts.Results(ctx, result.AttemptID)
	if err != nil {
		t.Fatal(err)
	}
	if res.TotalQuestions != 10 || res.CorrectAnswers != 1 || res.Unanswered != 9 {
		t.Errorf("counts = %d/%d/%d, want 10/1/9", res.TotalQuestions, res.CorrectAnswers, res.Unanswered)
	}
}

func TestStatelessSubmitErrors(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	exam := env.seedExam(t, "CLF-C02", 2)

	tests := []struct {
		name   string
		examID uuid.UUID
		req    *model.SubmitExamRequest
		want   error
	}{
		{
			name:   "malformed answers",
			examID: exam.ID,
			req:    &model.SubmitExamRequest{Answers: json.RawMessage(`[1,2]`), StartTime: env.clock},
			want:   grading.ErrInvalidAnswers,
		},
		{
			name:   "future start",
			examID: exam.ID,
			req:    &model.SubmitExamRequest{Answers: json.RawMessage(`{}`), StartTime: env.clock.Add(time.Hour)},
			want:   ErrInvalidStartTime,
		},
		{
			name:   "unknown exam",
			examID: uuid.New(),
			req:    &model.SubmitExamRequest{Answers: json.RawMessage(`{}`), StartTime: env.clock},
			want:   ErrExamNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := env.attempts.Submit(ctx, tt.examID, tt.req); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestResultsNotFound(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.attempts.Results(context.Background(), uuid.New()); !errors.Is(err, ErrAttemptNotFound) {
		t.Errorf("err = %v, want ErrAttemptNotFound", err)
	}
}

func TestExamServiceCreateAndList(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seedExam(t, "SAA-C03", 2)

	list, err := env.exams.List(ctx)
	if err != nil || len(list) != 1 {
		t.Fatalf("List = %v, %v", list, err)
	}

	env.seedExam(t, "CLF-C02", 3)
	list, _ = env.exams.List(ctx)
	if len(list) != 2 || list[0].Code != "CLF-C02" {
		t.Errorf("list after create = %+v, want cache invalidated and ordered by code", list)
	}

	dup := &model.Exam{Code: "CLF-C02", Title: "dup", Questions: []model.Question{
		{Text: "q", Options: []model.Option{{Text: "a", IsCorrect: true}}},
	}}
	if err := env.exams.Create(ctx, dup); !errors.Is(err, repository.ErrConflict) {
		t.Errorf("duplicate create err = %v, want ErrConflict", err)
	}

	bad := &model.Exam{Code: "DVA-C02", Title: "bad", Questions: []model.Question{
		{Text: "q", Options: []model.Option{{Text: "a"}, {Text: "b"}}},
	}}
	if err := env.exams.Create(ctx, bad); !errors.Is(err, grading.ErrDataIntegrity) {
		t.Errorf("integrity create err = %v, want ErrDataIntegrity", err)
	}
}

func TestPrewarmAllCaches(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	exam := env.seedExam(t, "SAA-C03", 2)

	if err := env.exams.PrewarmAllCaches(ctx); err != nil {
		t.Fatalf("PrewarmAllCaches: %v", err)
	}
	cached, err := env.cache.GetExam(ctx, exam.ID)
	if err != nil {
		t.Fatalf("exam not cached: %v", err)
	}
	if cached.Code != "SAA-C03" || len(cached.Questions) != 2 {
		t.Errorf("cached exam = %+v", cached)
	}
}
