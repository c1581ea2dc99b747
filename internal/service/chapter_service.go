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

// ChapterService handles chapter catalog logic.
type ChapterService struct {
	chapterRepo *repository.ChapterRepository
	subjectRepo *repository.SubjectRepository
	log         zerolog.Logger
}

// NewChapterService creates a new ChapterService.
func NewChapterService(chapterRepo *repository.ChapterRepository, subjectRepo *repository.SubjectRepository, log zerolog.Logger) *ChapterService {
	return &ChapterService{
		chapterRepo: chapterRepo,
		subjectRepo: subjectRepo,
		log:         log.With().Str("component", "chapter_service").Logger(),
	}
}

// ListBySubject retrieves the chapters of one subject ordered by position.
func (s *ChapterService) ListBySubject(ctx context.Context, subjectID int64) ([]model.Chapter, error) {
	if _, err := s.subjectRepo.GetByID(ctx, subjectID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	chapters, err := s.chapterRepo.ListBySubject(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	if chapters == nil {
		chapters = []model.Chapter{}
	}
	return chapters, nil
}

// GetByID retrieves one chapter.
func (s *ChapterService) GetByID(ctx context.Context, id int64) (*model.Chapter, error) {
	chapter, err := s.chapterRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return chapter, nil
}

// Create adds a chapter to an existing subject.
func (s *ChapterService) Create(ctx context.Context, req *model.CreateChapterRequest) (*model.Chapter, error) {
	if _, err := s.subjectRepo.GetByID(ctx, req.SubjectID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	chapter := &model.Chapter{SubjectID: req.SubjectID, Name: req.Name, Order: req.Order}
	if err := s.chapterRepo.Create(ctx, chapter); err != nil {
		return nil, fmt.Errorf("create chapter: %w", err)
	}
	s.log.Info().Int64("chapter_id", chapter.ID).Int64("subject_id", chapter.SubjectID).Msg("chapter created")
	return chapter, nil
}

// Delete removes a chapter and its questions.
func (s *ChapterService) Delete(ctx context.Context, id int64) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	return s.chapterRepo.Delete(ctx, id)
}
