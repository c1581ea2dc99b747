package repository

import (
	"context"

	"github.com/Tuyetzz/QuizWeb/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SubjectRepository handles subject data access.
type SubjectRepository struct {
	db DBTX
}

// NewSubjectRepository creates a new SubjectRepository.
func NewSubjectRepository(pool *pgxpool.Pool) *SubjectRepository {
	return &SubjectRepository{db: pool}
}

// GetByID retrieves a subject by id.
func (r *SubjectRepository) GetByID(ctx context.Context, id int64) (*model.Subject, error) {
	s := &model.Subject{}
	err := r.db.QueryRow(ctx,
		`SELECT id, name, slug, created_at, updated_at FROM subjects WHERE id = $1`, id,
	).Scan(&s.ID, &s.Name, &s.Slug, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// List retrieves all subjects ordered by name.
func (r *SubjectRepository) List(ctx context.Context) ([]model.Subject, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, name, slug, created_at, updated_at FROM subjects ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subjects []model.Subject
	for rows.Next() {
		var s model.Subject
		if err := rows.Scan(&s.ID, &s.Name, &s.Slug, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		subjects = append(subjects, s)
	}
	return subjects, rows.Err()
}

// Create inserts a new subject.
func (r *SubjectRepository) Create(ctx context.Context, s *model.Subject) error {
	return r.db.QueryRow(ctx,
		`INSERT INTO subjects (name, slug) VALUES ($1, $2)
		 RETURNING id, created_at, updated_at`,
		s.Name, s.Slug,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
}

// Delete removes a subject. Chapters and questions cascade in the database.
func (r *SubjectRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM subjects WHERE id = $1`, id)
	return err
}
