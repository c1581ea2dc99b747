package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Tuyetzz/QuizWeb/internal/model"
	"github.com/Tuyetzz/QuizWeb/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// AnswerService records user responses during the answering phase. It never
// writes grading fields; those belong to the grading engine.
type AnswerService struct {
	answerRepo  *repository.AnswerRepository
	attemptRepo *repository.AttemptRepository
	aqRepo      *repository.AttemptQuestionRepository
	log         zerolog.Logger
}

// NewAnswerService creates a new AnswerService.
func NewAnswerService(
	answerRepo *repository.AnswerRepository,
	attemptRepo *repository.AttemptRepository,
	aqRepo *repository.AttemptQuestionRepository,
	log zerolog.Logger,
) *AnswerService {
	return &AnswerService{
		answerRepo:  answerRepo,
		attemptRepo: attemptRepo,
		aqRepo:      aqRepo,
		log:         log.With().Str("component", "answer_service").Logger(),
	}
}

// writableAttempt loads the attempt and checks it still accepts answers.
func (s *AnswerService) writableAttempt(ctx context.Context, attemptID int64, userID *int64) (*model.Attempt, error) {
	attempt, err := s.attemptRepo.GetByID(ctx, attemptID, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if attempt.Status != model.AttemptStatusInProgress {
		return nil, ErrAttemptNotWritable
	}
	return attempt, nil
}

// questionInAttempt verifies the question belongs to the attempt's set. Exam
// attempts carry a snapshot; practice attempts carry pre-created answer rows.
func (s *AnswerService) questionInAttempt(ctx context.Context, attempt *model.Attempt, questionID int64) error {
	if attempt.Mode == model.AttemptModeExam {
		snapshot, err := s.aqRepo.ListByAttempt(ctx, attempt.ID)
		if err != nil {
			return err
		}
		for _, row := range snapshot {
			if row.QuestionID == questionID {
				return nil
			}
		}
		return ErrQuestionNotInAttempt
	}
	if _, err := s.answerRepo.GetOne(ctx, attempt.ID, questionID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrQuestionNotInAttempt
		}
		return err
	}
	return nil
}

// Upsert records or replaces the response to one question. Last write wins;
// concurrent upserts to different questions of the same attempt are
// independent.
func (s *AnswerService) Upsert(ctx context.Context, attemptID, questionID int64, userID *int64, req *model.UpsertAnswerRequest) (*model.Answer, error) {
	attempt, err := s.writableAttempt(ctx, attemptID, userID)
	if err != nil {
		return nil, err
	}
	if err := s.questionInAttempt(ctx, attempt, questionID); err != nil {
		return nil, err
	}

	now := time.Now()
	answer := &model.Answer{
		AttemptID:         attemptID,
		QuestionID:        questionID,
		SelectedOptionIDs: req.SelectedOptionIDs,
		Value:             req.Value,
		AnsweredAt:        &now,
	}
	if req.Flagged != nil {
		answer.Flagged = *req.Flagged
	}
	// Practice rows already hold the delivered option order; keep it.
	if existing, err := s.answerRepo.GetOne(ctx, attemptID, questionID); err == nil {
		answer.OptionOrder = existing.OptionOrder
	}

	if err := s.answerRepo.Upsert(ctx, answer); err != nil {
		return nil, fmt.Errorf("upsert answer: %w", err)
	}
	return answer, nil
}

// SubmitAll bulk-upserts answers ahead of submission. Client-supplied
// correctness is never accepted; grading computes it.
func (s *AnswerService) SubmitAll(ctx context.Context, attemptID int64, userID *int64, req *model.SubmitAnswersRequest) (int, error) {
	attempt, err := s.writableAttempt(ctx, attemptID, userID)
	if err != nil {
		return 0, err
	}

	saved := 0
	now := time.Now()
	for _, item := range req.Answers {
		if err := s.questionInAttempt(ctx, attempt, item.QuestionID); err != nil {
			if errors.Is(err, ErrQuestionNotInAttempt) {
				s.log.Warn().
					Int64("attempt_id", attemptID).
					Int64("question_id", item.QuestionID).
					Msg("ignoring answer to question outside attempt")
				continue
			}
			return saved, err
		}
		answer := &model.Answer{
			AttemptID:         attemptID,
			QuestionID:        item.QuestionID,
			SelectedOptionIDs: item.SelectedOptionIDs,
			Value:             item.Value,
			AnsweredAt:        &now,
		}
		if existing, err := s.answerRepo.GetOne(ctx, attemptID, item.QuestionID); err == nil {
			answer.OptionOrder = existing.OptionOrder
			answer.Flagged = existing.Flagged
		}
		if err := s.answerRepo.Upsert(ctx, answer); err != nil {
			return saved, fmt.Errorf("upsert answer for question %d: %w", item.QuestionID, err)
		}
		saved++
	}
	return saved, nil
}

// ListByAttempt retrieves all answers of an attempt the caller may see.
func (s *AnswerService) ListByAttempt(ctx context.Context, attemptID int64, userID *int64) ([]model.Answer, error) {
	if _, err := s.attemptRepo.GetByID(ctx, attemptID, userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	answers, err := s.answerRepo.ListByAttempt(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	if answers == nil {
		answers = []model.Answer{}
	}
	return answers, nil
}
