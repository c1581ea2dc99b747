package repository

import (
	"context"

	"github.com/Tuyetzz/QuizWeb/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ResultSummaryRepository handles result summary data access. Each attempt
// owns at most one summary row, written by the grading engine.
type ResultSummaryRepository struct {
	db DBTX
}

// NewResultSummaryRepository creates a new ResultSummaryRepository.
func NewResultSummaryRepository(pool *pgxpool.Pool) *ResultSummaryRepository {
	return &ResultSummaryRepository{db: pool}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *ResultSummaryRepository) WithTx(tx pgx.Tx) *ResultSummaryRepository {
	return &ResultSummaryRepository{db: tx}
}

const resultSummaryColumns = `id, attempt_id, total_questions, correct_count, wrong_count,
	blank_count, score, max_score, rank, created_at, updated_at`

func scanResultSummary(row pgx.Row) (*model.ResultSummary, error) {
	s := &model.ResultSummary{}
	err := row.Scan(&s.ID, &s.AttemptID, &s.TotalQuestions, &s.CorrectCount, &s.WrongCount,
		&s.BlankCount, &s.Score, &s.MaxScore, &s.Rank, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// GetByAttempt retrieves the summary of an attempt.
func (r *ResultSummaryRepository) GetByAttempt(ctx context.Context, attemptID int64) (*model.ResultSummary, error) {
	return scanResultSummary(r.db.QueryRow(ctx,
		`SELECT `+resultSummaryColumns+` FROM result_summaries
		 WHERE attempt_id = $1`, attemptID))
}

// Upsert writes the summary of an attempt, replacing a previous grading run.
func (r *ResultSummaryRepository) Upsert(ctx context.Context, s *model.ResultSummary) error {
	return r.db.QueryRow(ctx,
		`INSERT INTO result_summaries (attempt_id, total_questions, correct_count,
			wrong_count, blank_count, score, max_score, rank)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (attempt_id) DO UPDATE
		 SET total_questions = EXCLUDED.total_questions,
		     correct_count = EXCLUDED.correct_count,
		     wrong_count = EXCLUDED.wrong_count,
		     blank_count = EXCLUDED.blank_count,
		     score = EXCLUDED.score,
		     max_score = EXCLUDED.max_score,
		     rank = EXCLUDED.rank,
		     updated_at = NOW()
		 RETURNING id, created_at, updated_at`,
		s.AttemptID, s.TotalQuestions, s.CorrectCount, s.WrongCount,
		s.BlankCount, s.Score, s.MaxScore, s.Rank,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
}
