package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Tuyetzz/QuizWeb/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AttemptQuestionRepository handles the exam-mode question snapshot rows.
type AttemptQuestionRepository struct {
	db DBTX
}

// NewAttemptQuestionRepository creates a new AttemptQuestionRepository.
func NewAttemptQuestionRepository(pool *pgxpool.Pool) *AttemptQuestionRepository {
	return &AttemptQuestionRepository{db: pool}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *AttemptQuestionRepository) WithTx(tx pgx.Tx) *AttemptQuestionRepository {
	return &AttemptQuestionRepository{db: tx}
}

// BulkCreate inserts the snapshot rows of an attempt in one round trip.
func (r *AttemptQuestionRepository) BulkCreate(ctx context.Context, rows []model.AttemptQuestion) error {
	if len(rows) == 0 {
		return nil
	}
	attemptIDs := make([]int64, len(rows))
	questionIDs := make([]int64, len(rows))
	optionOrders := make([]string, len(rows))
	pageIndexes := make([]int, len(rows))

	for i, aq := range rows {
		attemptIDs[i] = aq.AttemptID
		questionIDs[i] = aq.QuestionID
		pageIndexes[i] = aq.PageIndex
		order := aq.OptionOrder
		if order == nil {
			order = []int64{}
		}
		raw, err := json.Marshal(order)
		if err != nil {
			return fmt.Errorf("encode option order: %w", err)
		}
		optionOrders[i] = string(raw)
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO attempt_questions (attempt_id, question_id, option_order, page_index)
		 SELECT * FROM UNNEST($1::bigint[], $2::bigint[], $3::jsonb[], $4::int[])`,
		attemptIDs, questionIDs, optionOrders, pageIndexes)
	return err
}

// ListByAttempt retrieves the frozen question set of an attempt in page order.
func (r *AttemptQuestionRepository) ListByAttempt(ctx context.Context, attemptID int64) ([]model.AttemptQuestion, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, attempt_id, question_id, option_order, page_index
		 FROM attempt_questions
		 WHERE attempt_id = $1
		 ORDER BY page_index, id`, attemptID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.AttemptQuestion
	for rows.Next() {
		var aq model.AttemptQuestion
		if err := rows.Scan(&aq.ID, &aq.AttemptID, &aq.QuestionID, &aq.OptionOrder, &aq.PageIndex); err != nil {
			return nil, err
		}
		result = append(result, aq)
	}
	return result, rows.Err()
}
