package repository

import (
	"context"

	"github.com/Tuyetzz/QuizWeb/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// OptionRepository handles option data access.
type OptionRepository struct {
	db DBTX
}

// NewOptionRepository creates a new OptionRepository.
func NewOptionRepository(pool *pgxpool.Pool) *OptionRepository {
	return &OptionRepository{db: pool}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *OptionRepository) WithTx(tx pgx.Tx) *OptionRepository {
	return &OptionRepository{db: tx}
}

// ListByQuestionIDs retrieves all options of the given questions, ordered
// by their natural display order within each question.
func (r *OptionRepository) ListByQuestionIDs(ctx context.Context, questionIDs []int64) ([]model.Option, error) {
	if len(questionIDs) == 0 {
		return nil, nil
	}
	rows, err := r.db.Query(ctx,
		`SELECT id, question_id, text, is_correct, "order"
		 FROM options WHERE question_id = ANY($1)
		 ORDER BY question_id, "order", id`, questionIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var options []model.Option
	for rows.Next() {
		var o model.Option
		if err := rows.Scan(&o.ID, &o.QuestionID, &o.Text, &o.IsCorrect, &o.Order); err != nil {
			return nil, err
		}
		options = append(options, o)
	}
	return options, rows.Err()
}

// CreateMany inserts all options of one question.
func (r *OptionRepository) CreateMany(ctx context.Context, questionID int64, options []model.Option) error {
	for i := range options {
		options[i].QuestionID = questionID
		err := r.db.QueryRow(ctx,
			`INSERT INTO options (question_id, text, is_correct, "order")
			 VALUES ($1, $2, $3, $4)
			 RETURNING id`,
			questionID, options[i].Text, options[i].IsCorrect, options[i].Order,
		).Scan(&options[i].ID)
		if err != nil {
			return err
		}
	}
	return nil
}

// DeleteByQuestion removes all options of a question (used on update).
func (r *OptionRepository) DeleteByQuestion(ctx context.Context, questionID int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM options WHERE question_id = $1`, questionID)
	return err
}
