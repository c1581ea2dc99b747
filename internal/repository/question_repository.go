package repository

import (
	"context"
	"fmt"

	"github.com/Tuyetzz/QuizWeb/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// QuestionRef is the minimal projection the attempt materializer needs:
// identity and point value, nothing else.
type QuestionRef struct {
	ID     int64
	Points float64
}

// QuestionFilter narrows question listings.
type QuestionFilter struct {
	SubjectID  *int64
	ChapterID  *int64
	Type       *model.QuestionType
	Difficulty *int
}

// QuestionRepository handles question bank data access.
type QuestionRepository struct {
	db DBTX
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{db: pool}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *QuestionRepository) WithTx(tx pgx.Tx) *QuestionRepository {
	return &QuestionRepository{db: tx}
}

const questionColumns = `id, subject_id, chapter_id, type, text, explanation, difficulty, points, tags, created_at, updated_at`

func scanQuestion(row pgx.Row) (*model.Question, error) {
	q := &model.Question{}
	var explanation *string
	err := row.Scan(&q.ID, &q.SubjectID, &q.ChapterID, &q.Type, &q.Text,
		&explanation, &q.Difficulty, &q.Points, &q.Tags, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if explanation != nil {
		q.Explanation = *explanation
	}
	return q, nil
}

// GetByID retrieves a question without its options.
func (r *QuestionRepository) GetByID(ctx context.Context, id int64) (*model.Question, error) {
	return scanQuestion(r.db.QueryRow(ctx,
		`SELECT `+questionColumns+` FROM questions WHERE id = $1`, id))
}

// CountByChapter counts the available questions of a (subject, chapter) pair.
func (r *QuestionRepository) CountByChapter(ctx context.Context, subjectID, chapterID int64) (int, error) {
	var n int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM questions WHERE subject_id = $1 AND chapter_id = $2`,
		subjectID, chapterID,
	).Scan(&n)
	return n, err
}

// ListRefsByChapter returns id+points of every question in the chapter,
// ordered ascending or descending by id. Random ordering is done in the
// application layer with a seedable shuffle, never in SQL.
func (r *QuestionRepository) ListRefsByChapter(ctx context.Context, subjectID, chapterID int64, desc bool) ([]QuestionRef, error) {
	order := "ASC"
	if desc {
		order = "DESC"
	}
	rows, err := r.db.Query(ctx,
		`SELECT id, points FROM questions
		 WHERE subject_id = $1 AND chapter_id = $2
		 ORDER BY id `+order, subjectID, chapterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var refs []QuestionRef
	for rows.Next() {
		var ref QuestionRef
		if err := rows.Scan(&ref.ID, &ref.Points); err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

// ListByIDs retrieves full question rows for the given ids, without options.
// The result order follows the ids slice.
func (r *QuestionRepository) ListByIDs(ctx context.Context, ids []int64) ([]model.Question, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.db.Query(ctx,
		`SELECT `+questionColumns+` FROM questions WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byID := make(map[int64]model.Question, len(ids))
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		byID[q.ID] = *q
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	ordered := make([]model.Question, 0, len(byID))
	for _, id := range ids {
		if q, ok := byID[id]; ok {
			ordered = append(ordered, q)
		}
	}
	return ordered, nil
}

// List retrieves questions matching the filter, newest first.
func (r *QuestionRepository) List(ctx context.Context, f QuestionFilter, limit, offset int) ([]model.Question, int64, error) {
	baseQuery := ` FROM questions WHERE TRUE`
	args := []any{}

	if f.SubjectID != nil {
		args = append(args, *f.SubjectID)
		baseQuery += fmt.Sprintf(" AND subject_id = $%d", len(args))
	}
	if f.ChapterID != nil {
		args = append(args, *f.ChapterID)
		baseQuery += fmt.Sprintf(" AND chapter_id = $%d", len(args))
	}
	if f.Type != nil {
		args = append(args, *f.Type)
		baseQuery += fmt.Sprintf(" AND type = $%d", len(args))
	}
	if f.Difficulty != nil {
		args = append(args, *f.Difficulty)
		baseQuery += fmt.Sprintf(" AND difficulty = $%d", len(args))
	}

	var total int64
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*)"+baseQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := "SELECT " + questionColumns + baseQuery +
		fmt.Sprintf(" ORDER BY id DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, 0, err
		}
		questions = append(questions, *q)
	}
	return questions, total, rows.Err()
}

// Create inserts a question row. Options are inserted separately by the
// OptionRepository inside the same transaction.
func (r *QuestionRepository) Create(ctx context.Context, q *model.Question) error {
	var explanation *string
	if q.Explanation != "" {
		explanation = &q.Explanation
	}
	return r.db.QueryRow(ctx,
		`INSERT INTO questions (subject_id, chapter_id, type, text, explanation, difficulty, points, tags)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at, updated_at`,
		q.SubjectID, q.ChapterID, q.Type, q.Text, explanation, q.Difficulty, q.Points, q.Tags,
	).Scan(&q.ID, &q.CreatedAt, &q.UpdatedAt)
}

// Update rewrites the mutable columns of a question.
func (r *QuestionRepository) Update(ctx context.Context, q *model.Question) error {
	var explanation *string
	if q.Explanation != "" {
		explanation = &q.Explanation
	}
	_, err := r.db.Exec(ctx,
		`UPDATE questions
		 SET type = $1, text = $2, explanation = $3, difficulty = $4, points = $5, tags = $6, updated_at = NOW()
		 WHERE id = $7`,
		q.Type, q.Text, explanation, q.Difficulty, q.Points, q.Tags, q.ID)
	return err
}

// Delete removes a question. Options cascade in the database.
func (r *QuestionRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM questions WHERE id = $1`, id)
	return err
}

// ListAttemptIDsReferencing returns ids of graded attempts whose question
// set includes the given question. Used to queue regrades after content
// changes.
func (r *QuestionRepository) ListAttemptIDsReferencing(ctx context.Context, questionID int64) ([]int64, error) {
	rows, err := r.db.Query(ctx,
		`SELECT DISTINCT a.id
		 FROM attempts a
		 LEFT JOIN attempt_questions aq ON aq.attempt_id = a.id
		 LEFT JOIN answers ans ON ans.attempt_id = a.id
		 WHERE a.status = 'graded'
		   AND (aq.question_id = $1 OR ans.question_id = $1)`, questionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
