package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Tuyetzz/QuizWeb/internal/model"
	"github.com/Tuyetzz/QuizWeb/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// SubjectService handles subject catalog logic.
type SubjectService struct {
	subjectRepo *repository.SubjectRepository
	log         zerolog.Logger
}

// NewSubjectService creates a new SubjectService.
func NewSubjectService(subjectRepo *repository.SubjectRepository, log zerolog.Logger) *SubjectService {
	return &SubjectService{
		subjectRepo: subjectRepo,
		log:         log.With().Str("component", "subject_service").Logger(),
	}
}

// List retrieves all subjects.
func (s *SubjectService) List(ctx context.Context) ([]model.Subject, error) {
	subjects, err := s.subjectRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	if subjects == nil {
		subjects = []model.Subject{}
	}
	return subjects, nil
}

// GetByID retrieves one subject.
func (s *SubjectService) GetByID(ctx context.Context, id int64) (*model.Subject, error) {
	subject, err := s.subjectRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return subject, nil
}

// Create adds a subject.
func (s *SubjectService) Create(ctx context.Context, req *model.CreateSubjectRequest) (*model.Subject, error) {
	subject := &model.Subject{Name: req.Name, Slug: req.Slug}
	if err := s.subjectRepo.Create(ctx, subject); err != nil {
		return nil, fmt.Errorf("create subject: %w", err)
	}
	s.log.Info().Int64("subject_id", subject.ID).Str("slug", subject.Slug).Msg("subject created")
	return subject, nil
}

// Delete removes a subject and, via cascades, its chapters and questions.
func (s *SubjectService) Delete(ctx context.Context, id int64) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	return s.subjectRepo.Delete(ctx, id)
}
