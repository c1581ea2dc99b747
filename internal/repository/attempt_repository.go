package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Tuyetzz/QuizWeb/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// sortableAttemptColumns is the allowlist for attempt listing sort keys.
var sortableAttemptColumns = map[string]bool{
	"created_at":   true,
	"started_at":   true,
	"submitted_at": true,
	"score":        true,
	"max_score":    true,
}

// AttemptFilter narrows attempt listings.
type AttemptFilter struct {
	UserID    *int64
	SubjectID *int64
	ChapterID *int64
	Status    *model.AttemptStatus
	Mode      *model.AttemptMode
}

// AttemptRepository handles attempt data access.
type AttemptRepository struct {
	db DBTX
}

// NewAttemptRepository creates a new AttemptRepository.
func NewAttemptRepository(pool *pgxpool.Pool) *AttemptRepository {
	return &AttemptRepository{db: pool}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *AttemptRepository) WithTx(tx pgx.Tx) *AttemptRepository {
	return &AttemptRepository{db: tx}
}

const attemptColumns = `id, user_id, subject_id, chapter_id, mode, status,
	started_at, submitted_at, expires_at, duration_minutes, time_spent_seconds,
	score, max_score, settings, created_at, updated_at`

func encodeSettings(s *model.AttemptSettings) ([]byte, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

func scanAttempt(row pgx.Row) (*model.Attempt, error) {
	a := &model.Attempt{}
	var rawSettings []byte
	err := row.Scan(&a.ID, &a.UserID, &a.SubjectID, &a.ChapterID, &a.Mode, &a.Status,
		&a.StartedAt, &a.SubmittedAt, &a.ExpiresAt, &a.DurationMinutes, &a.TimeSpentSeconds,
		&a.Score, &a.MaxScore, &rawSettings, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	settings, err := model.DecodeSettings(rawSettings)
	if err != nil {
		return nil, fmt.Errorf("decode attempt settings: %w", err)
	}
	a.Settings = settings
	return a, nil
}

// Create inserts a new attempt.
func (r *AttemptRepository) Create(ctx context.Context, a *model.Attempt) error {
	rawSettings, err := encodeSettings(a.Settings)
	if err != nil {
		return fmt.Errorf("encode attempt settings: %w", err)
	}
	return r.db.QueryRow(ctx,
		`INSERT INTO attempts (user_id, subject_id, chapter_id, mode, status,
			started_at, submitted_at, expires_at, duration_minutes,
			time_spent_seconds, score, max_score, settings)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		 RETURNING id, created_at, updated_at`,
		a.UserID, a.SubjectID, a.ChapterID, a.Mode, a.Status,
		a.StartedAt, a.SubmittedAt, a.ExpiresAt, a.DurationMinutes,
		a.TimeSpentSeconds, a.Score, a.MaxScore, rawSettings,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
}

// GetByID retrieves an attempt, optionally scoped to a user for ownership.
func (r *AttemptRepository) GetByID(ctx context.Context, id int64, userID *int64) (*model.Attempt, error) {
	query := `SELECT ` + attemptColumns + ` FROM attempts WHERE id = $1`
	args := []any{id}
	if userID != nil {
		query += ` AND user_id = $2`
		args = append(args, *userID)
	}
	return scanAttempt(r.db.QueryRow(ctx, query, args...))
}

// GetByIDForUpdate retrieves an attempt under an exclusive row lock.
// Must be called on a repository bound to a transaction; the lock serializes
// concurrent grading of the same attempt.
func (r *AttemptRepository) GetByIDForUpdate(ctx context.Context, id int64, userID *int64) (*model.Attempt, error) {
	query := `SELECT ` + attemptColumns + ` FROM attempts WHERE id = $1`
	args := []any{id}
	if userID != nil {
		query += ` AND user_id = $2`
		args = append(args, *userID)
	}
	query += ` FOR UPDATE`
	return scanAttempt(r.db.QueryRow(ctx, query, args...))
}

// Update rewrites all mutable columns of an attempt.
func (r *AttemptRepository) Update(ctx context.Context, a *model.Attempt) error {
	rawSettings, err := encodeSettings(a.Settings)
	if err != nil {
		return fmt.Errorf("encode attempt settings: %w", err)
	}
	_, err = r.db.Exec(ctx,
		`UPDATE attempts
		 SET status = $1, started_at = $2, submitted_at = $3, expires_at = $4,
		     duration_minutes = $5, time_spent_seconds = $6, score = $7,
		     max_score = $8, settings = $9, updated_at = NOW()
		 WHERE id = $10`,
		a.Status, a.StartedAt, a.SubmittedAt, a.ExpiresAt,
		a.DurationMinutes, a.TimeSpentSeconds, a.Score,
		a.MaxScore, rawSettings, a.ID)
	return err
}

// Delete removes an attempt. AttemptQuestions, Answers and the
// ResultSummary cascade in the database.
func (r *AttemptRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM attempts WHERE id = $1`, id)
	return err
}

// List retrieves attempts matching the filter with pagination and a
// sort key restricted to the allowlist.
func (r *AttemptRepository) List(ctx context.Context, f AttemptFilter, limit, offset int, sortBy, sortDir string) ([]model.Attempt, int64, error) {
	if !sortableAttemptColumns[sortBy] {
		sortBy = "created_at"
	}
	if sortDir != "ASC" {
		sortDir = "DESC"
	}

	baseQuery := ` FROM attempts WHERE TRUE`
	args := []any{}

	if f.UserID != nil {
		args = append(args, *f.UserID)
		baseQuery += fmt.Sprintf(" AND user_id = $%d", len(args))
	}
	if f.SubjectID != nil {
		args = append(args, *f.SubjectID)
		baseQuery += fmt.Sprintf(" AND subject_id = $%d", len(args))
	}
	if f.ChapterID != nil {
		args = append(args, *f.ChapterID)
		baseQuery += fmt.Sprintf(" AND chapter_id = $%d", len(args))
	}
	if f.Status != nil {
		args = append(args, *f.Status)
		baseQuery += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if f.Mode != nil {
		args = append(args, *f.Mode)
		baseQuery += fmt.Sprintf(" AND mode = $%d", len(args))
	}

	var total int64
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*)"+baseQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := "SELECT " + attemptColumns + baseQuery +
		fmt.Sprintf(" ORDER BY %s %s LIMIT $%d OFFSET $%d", sortBy, sortDir, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var attempts []model.Attempt
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, 0, err
		}
		attempts = append(attempts, *a)
	}
	return attempts, total, rows.Err()
}
