package repository

import (
	"context"

	"github.com/Tuyetzz/QuizWeb/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ChapterRepository handles chapter data access.
type ChapterRepository struct {
	db DBTX
}

// NewChapterRepository creates a new ChapterRepository.
func NewChapterRepository(pool *pgxpool.Pool) *ChapterRepository {
	return &ChapterRepository{db: pool}
}

// GetByID retrieves a chapter by id.
func (r *ChapterRepository) GetByID(ctx context.Context, id int64) (*model.Chapter, error) {
	c := &model.Chapter{}
	err := r.db.QueryRow(ctx,
		`SELECT id, subject_id, name, "order", created_at, updated_at
		 FROM chapters WHERE id = $1`, id,
	).Scan(&c.ID, &c.SubjectID, &c.Name, &c.Order, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ListBySubject retrieves all chapters of a subject ordered by their order column.
func (r *ChapterRepository) ListBySubject(ctx context.Context, subjectID int64) ([]model.Chapter, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, subject_id, name, "order", created_at, updated_at
		 FROM chapters WHERE subject_id = $1
		 ORDER BY "order", id`, subjectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chapters []model.Chapter
	for rows.Next() {
		var c model.Chapter
		if err := rows.Scan(&c.ID, &c.SubjectID, &c.Name, &c.Order, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		chapters = append(chapters, c)
	}
	return chapters, rows.Err()
}

// Create inserts a new chapter.
func (r *ChapterRepository) Create(ctx context.Context, c *model.Chapter) error {
	return r.db.QueryRow(ctx,
		`INSERT INTO chapters (subject_id, name, "order") VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at`,
		c.SubjectID, c.Name, c.Order,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

// Delete removes a chapter. Questions cascade in the database.
func (r *ChapterRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM chapters WHERE id = $1`, id)
	return err
}
