package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Tuyetzz/QuizWeb/internal/config"
	"github.com/Tuyetzz/QuizWeb/internal/model"
	"github.com/Tuyetzz/QuizWeb/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// regradeDedupTTL bounds how long an attempt stays marked as queued for
// regrading if the worker dies before clearing it.
const regradeDedupTTL = 10 * time.Minute

// QuestionService handles question bank authoring and listing.
type QuestionService struct {
	pool         *pgxpool.Pool
	questionRepo *repository.QuestionRepository
	optionRepo   *repository.OptionRepository
	chapterRepo  *repository.ChapterRepository
	rdb          *redis.Client
	log          zerolog.Logger
}

// NewQuestionService creates a new QuestionService.
func NewQuestionService(
	pool *pgxpool.Pool,
	questionRepo *repository.QuestionRepository,
	optionRepo *repository.OptionRepository,
	chapterRepo *repository.ChapterRepository,
	rdb *redis.Client,
	log zerolog.Logger,
) *QuestionService {
	return &QuestionService{
		pool:         pool,
		questionRepo: questionRepo,
		optionRepo:   optionRepo,
		chapterRepo:  chapterRepo,
		rdb:          rdb,
		log:          log.With().Str("component", "question_service").Logger(),
	}
}

// GetByID retrieves one question with its options.
func (s *QuestionService) GetByID(ctx context.Context, id int64) (*model.Question, error) {
	q, err := s.questionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	options, err := s.optionRepo.ListByQuestionIDs(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	q.Options = options
	return q, nil
}

// List retrieves questions matching the filter, with options attached.
func (s *QuestionService) List(ctx context.Context, f repository.QuestionFilter, limit, offset int) ([]model.Question, int64, error) {
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	questions, total, err := s.questionRepo.List(ctx, f, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	if questions == nil {
		questions = []model.Question{}
	}
	if err := s.attachOptions(ctx, questions); err != nil {
		return nil, 0, err
	}
	return questions, total, nil
}

func (s *QuestionService) attachOptions(ctx context.Context, questions []model.Question) error {
	if len(questions) == 0 {
		return nil
	}
	ids := make([]int64, len(questions))
	for i := range questions {
		ids[i] = questions[i].ID
	}
	options, err := s.optionRepo.ListByQuestionIDs(ctx, ids)
	if err != nil {
		return err
	}
	byQuestion := make(map[int64][]model.Option, len(questions))
	for _, opt := range options {
		byQuestion[opt.QuestionID] = append(byQuestion[opt.QuestionID], opt)
	}
	for i := range questions {
		questions[i].Options = byQuestion[questions[i].ID]
	}
	return nil
}

// Create inserts a question and its options in one transaction.
func (s *QuestionService) Create(ctx context.Context, req *model.CreateQuestionRequest) (*model.Question, error) {
	if err := s.validateChapter(ctx, req.SubjectID, req.ChapterID); err != nil {
		return nil, err
	}
	if err := validateQuestionShape(req); err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	q, err := s.createInTx(ctx, tx, req)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	s.log.Info().Int64("question_id", q.ID).Str("type", string(q.Type)).Msg("question created")
	return q, nil
}

func (s *QuestionService) createInTx(ctx context.Context, tx pgx.Tx, req *model.CreateQuestionRequest) (*model.Question, error) {
	points := 1.0
	if req.Points != nil {
		points = *req.Points
	}
	q := &model.Question{
		SubjectID:   req.SubjectID,
		ChapterID:   req.ChapterID,
		Type:        model.QuestionType(req.Type),
		Text:        req.Text,
		Explanation: req.Explanation,
		Difficulty:  req.Difficulty,
		Points:      points,
		Tags:        req.Tags,
	}
	if err := s.questionRepo.WithTx(tx).Create(ctx, q); err != nil {
		return nil, fmt.Errorf("create question: %w", err)
	}

	options := make([]model.Option, len(req.Options))
	for i, o := range req.Options {
		options[i] = model.Option{QuestionID: q.ID, Text: o.Text, IsCorrect: o.IsCorrect, Order: o.Order}
	}
	if err := s.optionRepo.WithTx(tx).CreateMany(ctx, q.ID, options); err != nil {
		return nil, fmt.Errorf("create options: %w", err)
	}
	q.Options = options
	return q, nil
}

// BatchCreate inserts many questions at once. Under all_or_nothing the whole
// batch shares one transaction; under partial each item gets its own, and
// failures are collected per index while the rest proceed.
func (s *QuestionService) BatchCreate(ctx context.Context, req *model.BatchCreateQuestionsRequest) ([]model.Question, []model.BatchItemError, error) {
	policy := model.BatchPolicy(req.Policy)
	if policy == "" {
		policy = model.BatchPolicyAllOrNothing
	}

	if policy == model.BatchPolicyAllOrNothing {
		tx, err := s.pool.Begin(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("begin tx: %w", err)
		}
		defer tx.Rollback(ctx)

		created := make([]model.Question, 0, len(req.Questions))
		for i := range req.Questions {
			item := &req.Questions[i]
			if err := s.validateBatchItem(ctx, item); err != nil {
				return nil, nil, fmt.Errorf("item %d: %w", i, err)
			}
			q, err := s.createInTx(ctx, tx, item)
			if err != nil {
				return nil, nil, fmt.Errorf("item %d: %w", i, err)
			}
			created = append(created, *q)
		}
		if err := tx.Commit(ctx); err != nil {
			return nil, nil, fmt.Errorf("commit: %w", err)
		}
		s.log.Info().Int("count", len(created)).Msg("question batch created")
		return created, nil, nil
	}

	var created []model.Question
	var failures []model.BatchItemError
	for i := range req.Questions {
		item := &req.Questions[i]
		if err := s.validateBatchItem(ctx, item); err != nil {
			failures = append(failures, model.BatchItemError{Index: i, Message: err.Error()})
			continue
		}
		q, err := s.Create(ctx, item)
		if err != nil {
			failures = append(failures, model.BatchItemError{Index: i, Message: err.Error()})
			continue
		}
		created = append(created, *q)
	}
	return created, failures, nil
}

func (s *QuestionService) validateBatchItem(ctx context.Context, req *model.CreateQuestionRequest) error {
	if err := s.validateChapter(ctx, req.SubjectID, req.ChapterID); err != nil {
		return err
	}
	return validateQuestionShape(req)
}

// Update rewrites a question and replaces its options, then queues every
// graded attempt that references it for regrading.
func (s *QuestionService) Update(ctx context.Context, id int64, req *model.CreateQuestionRequest) (*model.Question, error) {
	if _, err := s.GetByID(ctx, id); err != nil {
		return nil, err
	}
	if err := s.validateChapter(ctx, req.SubjectID, req.ChapterID); err != nil {
		return nil, err
	}
	if err := validateQuestionShape(req); err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	points := 1.0
	if req.Points != nil {
		points = *req.Points
	}
	q := &model.Question{
		ID:          id,
		SubjectID:   req.SubjectID,
		ChapterID:   req.ChapterID,
		Type:        model.QuestionType(req.Type),
		Text:        req.Text,
		Explanation: req.Explanation,
		Difficulty:  req.Difficulty,
		Points:      points,
		Tags:        req.Tags,
	}
	if err := s.questionRepo.WithTx(tx).Update(ctx, q); err != nil {
		return nil, fmt.Errorf("update question: %w", err)
	}
	if err := s.optionRepo.WithTx(tx).DeleteByQuestion(ctx, id); err != nil {
		return nil, fmt.Errorf("delete options: %w", err)
	}
	options := make([]model.Option, len(req.Options))
	for i, o := range req.Options {
		options[i] = model.Option{QuestionID: id, Text: o.Text, IsCorrect: o.IsCorrect, Order: o.Order}
	}
	if err := s.optionRepo.WithTx(tx).CreateMany(ctx, id, options); err != nil {
		return nil, fmt.Errorf("create options: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	q.Options = options

	s.enqueueRegrades(ctx, id)
	return q, nil
}

// Delete removes a question. Attempt snapshots referencing it keep their
// frozen rows; grading treats the missing question as zero points.
func (s *QuestionService) Delete(ctx context.Context, id int64) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	return s.questionRepo.Delete(ctx, id)
}

// enqueueRegrades pushes every graded attempt referencing the question onto
// the regrade queue. Failures are logged, not returned: the question update
// already committed.
func (s *QuestionService) enqueueRegrades(ctx context.Context, questionID int64) {
	attemptIDs, err := s.questionRepo.ListAttemptIDsReferencing(ctx, questionID)
	if err != nil {
		s.log.Error().Err(err).Int64("question_id", questionID).Msg("list attempts for regrade failed")
		return
	}
	for _, attemptID := range attemptIDs {
		ok, err := s.rdb.SetNX(ctx, config.CacheKey.AttemptGradingKey(attemptID), "1", regradeDedupTTL).Result()
		if err != nil {
			s.log.Error().Err(err).Int64("attempt_id", attemptID).Msg("regrade dedup check failed")
			continue
		}
		if !ok {
			continue // already queued
		}
		if err := s.rdb.RPush(ctx, config.WorkerKey.RegradeQueue, attemptID).Err(); err != nil {
			s.log.Error().Err(err).Int64("attempt_id", attemptID).Msg("enqueue regrade failed")
		}
	}
	if len(attemptIDs) > 0 {
		s.log.Info().Int64("question_id", questionID).Int("attempts", len(attemptIDs)).Msg("regrades enqueued")
	}
}

func (s *QuestionService) validateChapter(ctx context.Context, subjectID, chapterID int64) error {
	chapter, err := s.chapterRepo.GetByID(ctx, chapterID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	if chapter.SubjectID != subjectID {
		return ErrChapterNotInSubject
	}
	return nil
}

// validateQuestionShape enforces per-type structural rules that tag-level
// validation cannot express.
func validateQuestionShape(req *model.CreateQuestionRequest) error {
	correct := 0
	for _, o := range req.Options {
		if o.IsCorrect {
			correct++
		}
	}
	switch model.QuestionType(req.Type) {
	case model.QuestionTypeSingle:
		if len(req.Options) < 2 || correct != 1 {
			return fmt.Errorf("%w: single choice requires at least two options with exactly one correct", ErrInvalidQuestion)
		}
	case model.QuestionTypeTrueFalse:
		if len(req.Options) != 2 || correct != 1 {
			return fmt.Errorf("%w: true/false requires exactly two options with exactly one correct", ErrInvalidQuestion)
		}
	case model.QuestionTypeMultiple:
		if len(req.Options) < 2 || correct < 1 {
			return fmt.Errorf("%w: multiple choice requires at least two options with at least one correct", ErrInvalidQuestion)
		}
	case model.QuestionTypeFillBlank:
		if req.Explanation == "" {
			return fmt.Errorf("%w: fill blank requires the expected answer in explanation", ErrInvalidQuestion)
		}
	}
	return nil
}
