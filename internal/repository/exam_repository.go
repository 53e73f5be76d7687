package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/VanAubrey/aws-cert-review/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ExamRepository handles exam data access.
type ExamRepository struct {
	pool *pgxpool.Pool
}

// NewExamRepository creates a new ExamRepository.
func NewExamRepository(pool *pgxpool.Pool) *ExamRepository {
	return &ExamRepository{pool: pool}
}

// ListSummaries returns every exam without its questions, ordered by code.
func (r *ExamRepository) ListSummaries(ctx context.Context) ([]model.ExamSummary, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT e.id, e.code, e.title, e.duration_minutes, e.passing_score,
		        (SELECT COUNT(*) FROM questions q WHERE q.exam_id = e.id)
		 FROM exams e
		 ORDER BY e.code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summaries := make([]model.ExamSummary, 0)
	for rows.Next() {
		var s model.ExamSummary
		if err := rows.Scan(&s.ID, &s.Code, &s.Title, &s.Duration, &s.PassingScore, &s.QuestionCount); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// GetByID retrieves an exam with its questions and options in canonical order.
func (r *ExamRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error) {
	e := &model.Exam{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, code, title, duration_minutes, passing_score, created_at
		 FROM exams WHERE id = $1`, id,
	).Scan(&e.ID, &e.Code, &e.Title, &e.Duration, &e.PassingScore, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if err := r.loadQuestions(ctx, e); err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	return e, nil
}

// GetByCode retrieves an exam by its certification code, e.g. CLF-C02.
func (r *ExamRepository) GetByCode(ctx context.Context, code string) (*model.Exam, error) {
	var id uuid.UUID
	err := r.pool.QueryRow(ctx, `SELECT id FROM exams WHERE code = $1`, code).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *ExamRepository) loadQuestions(ctx context.Context, e *model.Exam) error {
	rows, err := r.pool.Query(ctx,
		`SELECT q.id, q.text, q.position, o.id, o.text, o.is_correct, o.position
		 FROM questions q
		 LEFT JOIN options o ON o.question_id = q.id
		 WHERE q.exam_id = $1
		 ORDER BY q.position, o.position`, e.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	e.Questions = make([]model.Question, 0)
	for rows.Next() {
		var (
			q         model.Question
			optID     *uuid.UUID
			optText   *string
			isCorrect *bool
			optPos    *int
		)
		if err := rows.Scan(&q.ID, &q.Text, &q.Position, &optID, &optText, &isCorrect, &optPos); err != nil {
			return err
		}

		if n := len(e.Questions); n == 0 || e.Questions[n-1].ID != q.ID {
			q.Options = make([]model.Option, 0)
			e.Questions = append(e.Questions, q)
		}
		if optID == nil {
			continue
		}
		last := &e.Questions[len(e.Questions)-1]
		last.Options = append(last.Options, model.Option{
			ID:        *optID,
			Text:      *optText,
			IsCorrect: *isCorrect,
			Position:  *optPos,
		})
	}
	return rows.Err()
}

// Create inserts an exam with its questions and options in one transaction.
// Missing ids are generated; positions follow slice order.
func (r *ExamRepository) Create(ctx context.Context, e *model.Exam) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	err = tx.QueryRow(ctx,
		`INSERT INTO exams (id, code, title, duration_minutes, passing_score)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at`,
		e.ID, e.Code, e.Title, e.Duration, e.PassingScore,
	).Scan(&e.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrConflict
		}
		return fmt.Errorf("insert exam: %w", err)
	}

	batch := &pgx.Batch{}
	for i := range e.Questions {
		q := &e.Questions[i]
		if q.ID == uuid.Nil {
			q.ID = uuid.New()
		}
		q.Position = i
		batch.Queue(`INSERT INTO questions (id, exam_id, text, position) VALUES ($1, $2, $3, $4)`,
			q.ID, e.ID, q.Text, q.Position)

		for j := range q.Options {
			o := &q.Options[j]
			if o.ID == uuid.Nil {
				o.ID = uuid.New()
			}
			o.Position = j
			batch.Queue(`INSERT INTO options (id, question_id, text, is_correct, position) VALUES ($1, $2, $3, $4, $5)`,
				o.ID, q.ID, o.Text, o.IsCorrect, o.Position)
		}
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert questions: %w", err)
	}
	return tx.Commit(ctx)
}
