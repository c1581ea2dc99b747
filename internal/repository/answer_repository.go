package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Tuyetzz/QuizWeb/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AnswerRepository handles answer data access. There is at most one answer
// row per (attempt, question); writes during the answering phase go through
// Upsert so the pair is never duplicated.
type AnswerRepository struct {
	db DBTX
}

// NewAnswerRepository creates a new AnswerRepository.
func NewAnswerRepository(pool *pgxpool.Pool) *AnswerRepository {
	return &AnswerRepository{db: pool}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *AnswerRepository) WithTx(tx pgx.Tx) *AnswerRepository {
	return &AnswerRepository{db: tx}
}

const answerColumns = `id, attempt_id, question_id, selected_option_ids, option_order,
	value, is_correct, earned_points, answered_at, flagged, created_at, updated_at`

func scanAnswer(row pgx.Row) (*model.Answer, error) {
	a := &model.Answer{}
	err := row.Scan(&a.ID, &a.AttemptID, &a.QuestionID, &a.SelectedOptionIDs, &a.OptionOrder,
		&a.Value, &a.IsCorrect, &a.EarnedPoints, &a.AnsweredAt, &a.Flagged, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// GetOne retrieves the answer of one (attempt, question) pair.
func (r *AnswerRepository) GetOne(ctx context.Context, attemptID, questionID int64) (*model.Answer, error) {
	return scanAnswer(r.db.QueryRow(ctx,
		`SELECT `+answerColumns+` FROM answers
		 WHERE attempt_id = $1 AND question_id = $2`, attemptID, questionID))
}

// ListByAttempt retrieves all answers of an attempt.
func (r *AnswerRepository) ListByAttempt(ctx context.Context, attemptID int64) ([]model.Answer, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+answerColumns+` FROM answers
		 WHERE attempt_id = $1 ORDER BY id`, attemptID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var answers []model.Answer
	for rows.Next() {
		a, err := scanAnswer(rows)
		if err != nil {
			return nil, err
		}
		answers = append(answers, *a)
	}
	return answers, rows.Err()
}

// Create inserts an answer row as-is (used by grading for questions the
// client never opened).
func (r *AnswerRepository) Create(ctx context.Context, a *model.Answer) error {
	selected, optionOrder, err := encodeAnswerArrays(a)
	if err != nil {
		return err
	}
	return r.db.QueryRow(ctx,
		`INSERT INTO answers (attempt_id, question_id, selected_option_ids, option_order,
			value, is_correct, earned_points, answered_at, flagged)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id, created_at, updated_at`,
		a.AttemptID, a.QuestionID, selected, optionOrder,
		a.Value, a.IsCorrect, a.EarnedPoints, a.AnsweredAt, a.Flagged,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
}

// Upsert records the user's response, inserting or replacing the single row
// of the (attempt, question) pair. Grading fields are left untouched on
// conflict; they belong to the grading engine.
func (r *AnswerRepository) Upsert(ctx context.Context, a *model.Answer) error {
	selected, optionOrder, err := encodeAnswerArrays(a)
	if err != nil {
		return err
	}
	return r.db.QueryRow(ctx,
		`INSERT INTO answers (attempt_id, question_id, selected_option_ids, option_order,
			value, answered_at, flagged)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (attempt_id, question_id) DO UPDATE
		 SET selected_option_ids = EXCLUDED.selected_option_ids,
		     value = EXCLUDED.value,
		     answered_at = EXCLUDED.answered_at,
		     flagged = EXCLUDED.flagged,
		     updated_at = NOW()
		 RETURNING id, created_at, updated_at`,
		a.AttemptID, a.QuestionID, selected, optionOrder,
		a.Value, a.AnsweredAt, a.Flagged,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
}

// SaveGrade persists the grading outcome of an existing answer.
func (r *AnswerRepository) SaveGrade(ctx context.Context, a *model.Answer) error {
	_, err := r.db.Exec(ctx,
		`UPDATE answers
		 SET is_correct = $1, earned_points = $2, answered_at = $3, updated_at = NOW()
		 WHERE id = $4`,
		a.IsCorrect, a.EarnedPoints, a.AnsweredAt, a.ID)
	return err
}

// BulkCreate inserts one empty answer per question of a freshly
// materialized practice attempt, preserving the delivered option order.
func (r *AnswerRepository) BulkCreate(ctx context.Context, answers []model.Answer) error {
	if len(answers) == 0 {
		return nil
	}
	attemptIDs := make([]int64, len(answers))
	questionIDs := make([]int64, len(answers))
	selected := make([]string, len(answers))
	optionOrders := make([]string, len(answers))

	for i := range answers {
		attemptIDs[i] = answers[i].AttemptID
		questionIDs[i] = answers[i].QuestionID
		sel, order, err := encodeAnswerArrays(&answers[i])
		if err != nil {
			return err
		}
		selected[i] = string(sel)
		optionOrders[i] = string(order)
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO answers (attempt_id, question_id, selected_option_ids, option_order)
		 SELECT * FROM UNNEST($1::bigint[], $2::bigint[], $3::jsonb[], $4::jsonb[])`,
		attemptIDs, questionIDs, selected, optionOrders)
	return err
}

func encodeAnswerArrays(a *model.Answer) (selected, optionOrder []byte, err error) {
	sel := a.SelectedOptionIDs
	if sel == nil {
		sel = []int64{}
	}
	selected, err = json.Marshal(sel)
	if err != nil {
		return nil, nil, fmt.Errorf("encode selected option ids: %w", err)
	}
	order := a.OptionOrder
	if order == nil {
		order = []int64{}
	}
	optionOrder, err = json.Marshal(order)
	if err != nil {
		return nil, nil, fmt.Errorf("encode option order: %w", err)
	}
	return selected, optionOrder, nil
}
