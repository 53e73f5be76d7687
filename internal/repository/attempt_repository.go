package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/VanAubrey/aws-cert-review/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AttemptRepository handles graded attempt data access. Attempts are insert-only.
type AttemptRepository struct {
	pool *pgxpool.Pool
}

// NewAttemptRepository creates a new AttemptRepository.
func NewAttemptRepository(pool *pgxpool.Pool) *AttemptRepository {
	return &AttemptRepository{pool: pool}
}

// Create stores an attempt together with its computed results.
// created is false when an attempt with the same id already exists; the
// existing row is left untouched.
func (r *AttemptRepository) Create(ctx context.Context, a *model.Attempt, results *model.Results) (created bool, err error) {
	answersJSON, err := json.Marshal(a.Answers)
	if err != nil {
		return false, fmt.Errorf("marshal answers: %w", err)
	}
	resultsJSON, err := json.Marshal(results)
	if err != nil {
		return false, fmt.Errorf("marshal results: %w", err)
	}

	tag, err := r.pool.Exec(ctx,
		`INSERT INTO attempts (id, exam_id, started_at, completed_at, score, is_passed, answers, results)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (id) DO NOTHING`,
		a.ID, a.ExamID, a.StartedAt, a.CompletedAt, a.Score, a.IsPassed, answersJSON, resultsJSON)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// GetByID retrieves an attempt.
func (r *AttemptRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Attempt, error) {
	a := &model.Attempt{}
	var answersJSON []byte
	err := r.pool.QueryRow(ctx,
		`SELECT id, exam_id, started_at, completed_at, score, is_passed, answers
		 FROM attempts WHERE id = $1`, id,
	).Scan(&a.ID, &a.ExamID, &a.StartedAt, &a.CompletedAt, &a.Score, &a.IsPassed, &answersJSON)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(answersJSON, &a.Answers); err != nil {
		return nil, fmt.Errorf("unmarshal answers: %w", err)
	}
	return a, nil
}

// GetResults returns the results stored when the attempt was graded.
func (r *AttemptRepository) GetResults(ctx context.Context, id uuid.UUID) (*model.Results, error) {
	var resultsJSON []byte
	err := r.pool.QueryRow(ctx, `SELECT results FROM attempts WHERE id = $1`, id).Scan(&resultsJSON)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var results model.Results
	if err := json.Unmarshal(resultsJSON, &results); err != nil {
		return nil, fmt.Errorf("unmarshal results: %w", err)
	}
	return &results, nil
}

// ListByExam returns the most recent attempts of an exam, latest first.
func (r *AttemptRepository) ListByExam(ctx context.Context, examID uuid.UUID, limit int) ([]model.Attempt, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, exam_id, started_at, completed_at, score, is_passed
		 FROM attempts
		 WHERE exam_id = $1
		 ORDER BY completed_at DESC
		 LIMIT $2`, examID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	attempts := make([]model.Attempt, 0)
	for rows.Next() {
		var a model.Attempt
		if err := rows.Scan(&a.ID, &a.ExamID, &a.StartedAt, &a.CompletedAt, &a.Score, &a.IsPassed); err != nil {
			return nil, err
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}
