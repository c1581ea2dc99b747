package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Tuyetzz/QuizWeb/internal/config"
	"github.com/Tuyetzz/QuizWeb/internal/model"
	"github.com/Tuyetzz/QuizWeb/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	defaultPracticeDurationMinutes = 120
	defaultPracticeOrderBy         = "id.asc"
)

// AttemptService materializes attempts and manages their lifecycle.
type AttemptService struct {
	pool         *pgxpool.Pool
	attemptRepo  *repository.AttemptRepository
	aqRepo       *repository.AttemptQuestionRepository
	answerRepo   *repository.AnswerRepository
	questionRepo *repository.QuestionRepository
	optionRepo   *repository.OptionRepository
	chapterRepo  *repository.ChapterRepository
	summaryRepo  *repository.ResultSummaryRepository
	rdb          *redis.Client
	shuffleSeed  int64
	log          zerolog.Logger
}

// NewAttemptService creates a new AttemptService.
func NewAttemptService(
	pool *pgxpool.Pool,
	attemptRepo *repository.AttemptRepository,
	aqRepo *repository.AttemptQuestionRepository,
	answerRepo *repository.AnswerRepository,
	questionRepo *repository.QuestionRepository,
	optionRepo *repository.OptionRepository,
	chapterRepo *repository.ChapterRepository,
	summaryRepo *repository.ResultSummaryRepository,
	rdb *redis.Client,
	shuffleSeed int64,
	log zerolog.Logger,
) *AttemptService {
	return &AttemptService{
		pool:         pool,
		attemptRepo:  attemptRepo,
		aqRepo:       aqRepo,
		answerRepo:   answerRepo,
		questionRepo: questionRepo,
		optionRepo:   optionRepo,
		chapterRepo:  chapterRepo,
		summaryRepo:  summaryRepo,
		rdb:          rdb,
		shuffleSeed:  shuffleSeed,
		log:          log.With().Str("component", "attempt_service").Logger(),
	}
}

// ─── Materialization ────────────────────────────────────────────────────────

// StartExam validates the request, selects and freezes the question set, and
// creates an in_progress exam attempt in one transaction. When the chapter
// holds fewer questions than requested, the count is silently clamped.
func (s *AttemptService) StartExam(ctx context.Context, userID int64, req *model.StartExamRequest) (*model.StartExamResponse, error) {
	if err := s.validateChapter(ctx, req.SubjectID, req.ChapterID); err != nil {
		return nil, err
	}

	available, err := s.questionRepo.CountByChapter(ctx, req.SubjectID, req.ChapterID)
	if err != nil {
		return nil, fmt.Errorf("count questions: %w", err)
	}
	if available == 0 {
		return nil, ErrNoQuestions
	}

	finalCount := req.Settings.QuestionCount
	if finalCount > available {
		finalCount = available
	}

	refs, err := s.questionRepo.ListRefsByChapter(ctx, req.SubjectID, req.ChapterID, false)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}

	rng := newShuffleRand(s.shuffleSeed)
	if req.Settings.ShuffleQuestions {
		shuffleRefs(rng, refs)
	}
	refs = refs[:finalCount]

	questionIDs := make([]int64, len(refs))
	maxScore := 0.0
	for i, ref := range refs {
		questionIDs[i] = ref.ID
		maxScore += ref.Points
	}

	options, err := s.optionRepo.ListByQuestionIDs(ctx, questionIDs)
	if err != nil {
		return nil, fmt.Errorf("list options: %w", err)
	}
	optionIDsByQuestion := make(map[int64][]int64, len(refs))
	for _, opt := range options {
		optionIDsByQuestion[opt.QuestionID] = append(optionIDsByQuestion[opt.QuestionID], opt.ID)
	}

	now := time.Now()
	expiresAt := now.Add(time.Duration(req.DurationMinutes) * time.Minute)

	attempt := &model.Attempt{
		UserID:          userID,
		SubjectID:       &req.SubjectID,
		ChapterID:       &req.ChapterID,
		Mode:            model.AttemptModeExam,
		Status:          model.AttemptStatusInProgress,
		StartedAt:       &now,
		ExpiresAt:       &expiresAt,
		DurationMinutes: req.DurationMinutes,
		MaxScore:        maxScore,
		Settings: &model.AttemptSettings{
			Exam: &model.ExamSettings{
				QuestionCount:        finalCount,
				PageSize:             req.Settings.PageSize,
				ShuffleQuestions:     req.Settings.ShuffleQuestions,
				ShuffleOptions:       req.Settings.ShuffleOptions,
				RevealAnswerOnSelect: req.Settings.RevealAnswerOnSelect,
			},
			Grading: req.Settings.Grading,
		},
	}

	snapshot := make([]model.AttemptQuestion, len(refs))
	for i, ref := range refs {
		order := append([]int64(nil), optionIDsByQuestion[ref.ID]...)
		if req.Settings.ShuffleOptions {
			shuffleInt64(rng, order)
		}
		snapshot[i] = model.AttemptQuestion{
			QuestionID:  ref.ID,
			OptionOrder: order,
			PageIndex:   pageFor(i, req.Settings.PageSize),
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := s.attemptRepo.WithTx(tx).Create(ctx, attempt); err != nil {
		return nil, fmt.Errorf("create attempt: %w", err)
	}
	for i := range snapshot {
		snapshot[i].AttemptID = attempt.ID
	}
	if err := s.aqRepo.WithTx(tx).BulkCreate(ctx, snapshot); err != nil {
		return nil, fmt.Errorf("create snapshot: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	s.cacheClock(ctx, attempt.ID, expiresAt)
	s.log.Info().
		Int64("attempt_id", attempt.ID).
		Int64("user_id", userID).
		Int("question_count", finalCount).
		Msg("exam attempt started")

	return &model.StartExamResponse{
		ID:        attempt.ID,
		StartedAt: now,
		ExpiresAt: expiresAt,
		Settings: model.ExamStartSettings{
			Mode:                   model.AttemptModeExam,
			QuestionCountRequested: req.Settings.QuestionCount,
			QuestionCountUsed:      finalCount,
			PageSize:               req.Settings.PageSize,
			ShuffleQuestions:       req.Settings.ShuffleQuestions,
			ShuffleOptions:         req.Settings.ShuffleOptions,
			RevealAnswerOnSelect:   req.Settings.RevealAnswerOnSelect,
		},
		Totals: model.ExamStartTotals{
			TotalAvailable: available,
			TotalQuestions: finalCount,
			TotalPages:     totalPages(finalCount, req.Settings.PageSize),
			MaxScore:       maxScore,
		},
	}, nil
}

// StartPractice creates a self-contained practice attempt: the response
// carries the question payload itself, and one empty answer row per question
// records the delivered option order.
func (s *AttemptService) StartPractice(ctx context.Context, userID int64, req *model.StartPracticeRequest) (*model.StartPracticeResponse, error) {
	if err := s.validateChapter(ctx, req.SubjectID, req.ChapterID); err != nil {
		return nil, err
	}

	total, err := s.questionRepo.CountByChapter(ctx, req.SubjectID, req.ChapterID)
	if err != nil {
		return nil, fmt.Errorf("count questions: %w", err)
	}
	if total == 0 {
		return nil, ErrNoQuestions
	}

	offset := 0
	limit := total
	if req.Range != nil {
		if req.Range.Offset != nil {
			offset = *req.Range.Offset
		}
		if req.Range.Limit != nil {
			limit = *req.Range.Limit
		}
	}
	if offset >= total {
		return nil, ErrOffsetOutOfRange
	}
	if offset+limit > total {
		limit = total - offset
	}

	duration := defaultPracticeDurationMinutes
	if req.DurationMinutes != nil {
		duration = *req.DurationMinutes
	}
	reveal := true
	if req.Settings.RevealAnswerOnSelect != nil {
		reveal = *req.Settings.RevealAnswerOnSelect
	}
	orderBy := req.Settings.OrderBy
	if orderBy == "" {
		orderBy = defaultPracticeOrderBy
	}

	// shuffleQuestions takes precedence over orderBy.
	rng := newShuffleRand(s.shuffleSeed)
	random := req.Settings.ShuffleQuestions || orderBy == "random"
	refs, err := s.questionRepo.ListRefsByChapter(ctx, req.SubjectID, req.ChapterID, orderBy == "id.desc")
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	if random {
		shuffleRefs(rng, refs)
	}
	refs = refs[offset : offset+limit]

	questionIDs := make([]int64, len(refs))
	maxScore := 0.0
	for i, ref := range refs {
		questionIDs[i] = ref.ID
		maxScore += ref.Points
	}

	questions, err := s.questionRepo.ListByIDs(ctx, questionIDs)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	options, err := s.optionRepo.ListByQuestionIDs(ctx, questionIDs)
	if err != nil {
		return nil, fmt.Errorf("load options: %w", err)
	}
	optionsByQuestion := make(map[int64][]model.Option, len(questions))
	for _, opt := range options {
		optionsByQuestion[opt.QuestionID] = append(optionsByQuestion[opt.QuestionID], opt)
	}

	now := time.Now()

	// Practice is self-paced: no expiry is set, so lazy expiry at grading
	// never fires. durationMinutes is kept as informational metadata.
	attempt := &model.Attempt{
		UserID:          userID,
		SubjectID:       &req.SubjectID,
		ChapterID:       &req.ChapterID,
		Mode:            model.AttemptModePractice,
		Status:          model.AttemptStatusInProgress,
		StartedAt:       &now,
		DurationMinutes: duration,
		MaxScore:        maxScore,
		Settings: &model.AttemptSettings{
			Practice: &model.PracticeSettings{
				Range:                model.Range{Offset: offset, Limit: limit},
				OrderBy:              orderBy,
				ShuffleQuestions:     req.Settings.ShuffleQuestions,
				ShuffleOptions:       req.Settings.ShuffleOptions,
				RevealAnswerOnSelect: reveal,
			},
			Grading: req.Settings.Grading,
		},
	}

	items := make([]model.PracticeQuestion, 0, len(questions))
	emptyAnswers := make([]model.Answer, 0, len(questions))
	for _, q := range questions {
		opts := append([]model.Option(nil), optionsByQuestion[q.ID]...)
		if req.Settings.ShuffleOptions {
			for i := len(opts) - 1; i > 0; i-- {
				j := rng.Intn(i + 1)
				opts[i], opts[j] = opts[j], opts[i]
			}
		}
		order := make([]int64, len(opts))
		for i, opt := range opts {
			order[i] = opt.ID
		}

		item := model.PracticeQuestion{
			ID:     q.ID,
			Text:   q.Text,
			Type:   q.Type,
			Points: q.Points,
		}
		if reveal {
			item.Explanation = q.Explanation
			item.Options = opts
		} else {
			public := make([]model.PublicOption, len(opts))
			for i, opt := range opts {
				public[i] = opt.Public()
			}
			item.PublicOptions = public
		}
		items = append(items, item)
		emptyAnswers = append(emptyAnswers, model.Answer{QuestionID: q.ID, OptionOrder: order})
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := s.attemptRepo.WithTx(tx).Create(ctx, attempt); err != nil {
		return nil, fmt.Errorf("create attempt: %w", err)
	}
	for i := range emptyAnswers {
		emptyAnswers[i].AttemptID = attempt.ID
	}
	if err := s.answerRepo.WithTx(tx).BulkCreate(ctx, emptyAnswers); err != nil {
		return nil, fmt.Errorf("create answers: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	s.log.Info().
		Int64("attempt_id", attempt.ID).
		Int64("user_id", userID).
		Int("returned", len(items)).
		Msg("practice attempt started")

	return &model.StartPracticeResponse{
		ID:        attempt.ID,
		Mode:      model.AttemptModePractice,
		StartedAt: now,
		Range:     model.Range{Offset: offset, Limit: limit},
		Totals:    model.PracticeStartTotals{TotalAvailable: total, Returned: len(items)},
		Settings: model.PracticeStartSettings{
			RevealAnswerOnSelect: reveal,
			ShuffleQuestions:     req.Settings.ShuffleQuestions,
			ShuffleOptions:       req.Settings.ShuffleOptions,
			OrderBy:              orderBy,
		},
		Items: items,
	}, nil
}

// cacheClock stores the attempt expiry in Redis for the WebSocket clock.
// A cache miss only degrades the clock endpoint, so failures are logged.
func (s *AttemptService) cacheClock(ctx context.Context, attemptID int64, expiresAt time.Time) {
	key := config.CacheKey.AttemptClockKey(attemptID)
	ttl := time.Until(expiresAt) + time.Minute
	if err := s.rdb.Set(ctx, key, strconv.FormatInt(expiresAt.Unix(), 10), ttl).Err(); err != nil {
		s.log.Warn().Err(err).Int64("attempt_id", attemptID).Msg("cache attempt clock failed")
	}
}

// ─── Lifecycle (generic paths) ──────────────────────────────────────────────

// Create makes a draft attempt with no time bounds. StartExam/StartPractice
// bypass this path and begin directly in in_progress.
func (s *AttemptService) Create(ctx context.Context, userID int64, req *model.CreateAttemptRequest) (*model.Attempt, error) {
	if req.SubjectID != nil && req.ChapterID != nil {
		if err := s.validateChapter(ctx, *req.SubjectID, *req.ChapterID); err != nil {
			return nil, err
		}
	}
	attempt := &model.Attempt{
		UserID:          userID,
		SubjectID:       req.SubjectID,
		ChapterID:       req.ChapterID,
		Mode:            model.AttemptMode(req.Mode),
		Status:          model.AttemptStatusDraft,
		DurationMinutes: req.DurationMinutes,
		Settings:        req.Settings,
	}
	if err := s.attemptRepo.Create(ctx, attempt); err != nil {
		return nil, fmt.Errorf("create attempt: %w", err)
	}
	return attempt, nil
}

// GetByID retrieves an attempt, scoped to userID unless nil.
func (s *AttemptService) GetByID(ctx context.Context, id int64, userID *int64) (*model.Attempt, error) {
	attempt, err := s.attemptRepo.GetByID(ctx, id, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return attempt, nil
}

// List retrieves attempts matching the filter with pagination.
func (s *AttemptService) List(ctx context.Context, f repository.AttemptFilter, limit, offset int, sortBy, sortDir string) ([]model.Attempt, int64, error) {
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	attempts, total, err := s.attemptRepo.List(ctx, f, limit, offset, sortBy, sortDir)
	if err != nil {
		return nil, 0, err
	}
	if attempts == nil {
		attempts = []model.Attempt{}
	}
	return attempts, total, nil
}

// Update applies a controlled patch. Status changes must follow the legal
// transition graph and numeric fields must stay non-negative.
func (s *AttemptService) Update(ctx context.Context, id int64, userID *int64, req *model.UpdateAttemptRequest) (*model.Attempt, error) {
	attempt, err := s.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if req.Status != nil {
		next := model.AttemptStatus(*req.Status)
		if !model.ValidAttemptStatus(next) {
			return nil, fmt.Errorf("%w: unknown status %q", ErrIllegalTransition, *req.Status)
		}
		if !model.CanTransition(attempt.Status, next) {
			return nil, fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, attempt.Status, next)
		}
		attempt.Status = next
	}
	if req.TimeSpentSeconds != nil {
		if *req.TimeSpentSeconds < 0 {
			return nil, fmt.Errorf("%w: time_spent_seconds must not be negative", ErrInvalidAttempt)
		}
		attempt.TimeSpentSeconds = *req.TimeSpentSeconds
	}
	if req.Score != nil {
		if *req.Score < 0 {
			return nil, fmt.Errorf("%w: score must not be negative", ErrInvalidAttempt)
		}
		attempt.Score = *req.Score
	}
	if req.MaxScore != nil {
		if *req.MaxScore < 0 {
			return nil, fmt.Errorf("%w: max_score must not be negative", ErrInvalidAttempt)
		}
		attempt.MaxScore = *req.MaxScore
	}
	if req.StartedAt != nil {
		attempt.StartedAt = req.StartedAt
	}
	if req.SubmittedAt != nil {
		attempt.SubmittedAt = req.SubmittedAt
	}
	if req.ExpiresAt != nil {
		attempt.ExpiresAt = req.ExpiresAt
	}
	if req.Settings != nil {
		attempt.Settings = req.Settings
	}

	if err := s.attemptRepo.Update(ctx, attempt); err != nil {
		return nil, fmt.Errorf("update attempt: %w", err)
	}
	return attempt, nil
}

// Delete removes an attempt; snapshot rows, answers and the summary cascade.
func (s *AttemptService) Delete(ctx context.Context, id int64, userID *int64) error {
	if _, err := s.GetByID(ctx, id, userID); err != nil {
		return err
	}
	return s.attemptRepo.Delete(ctx, id)
}

// ─── Rendering and results ──────────────────────────────────────────────────

// ExamPageQuestion is a question rendered from the frozen snapshot: options
// appear in the persisted order with correctness stripped.
type ExamPageQuestion struct {
	QuestionID int64                `json:"question_id"`
	PageIndex  int                  `json:"page_index"`
	Text       string               `json:"text"`
	Type       model.QuestionType   `json:"type"`
	Points     float64              `json:"points"`
	Options    []model.PublicOption `json:"options"`
}

// GetQuestions renders an exam attempt's question set from the snapshot.
// The persisted option order is authoritative; it is never recomputed.
func (s *AttemptService) GetQuestions(ctx context.Context, attemptID int64, userID *int64) ([]ExamPageQuestion, error) {
	if _, err := s.GetByID(ctx, attemptID, userID); err != nil {
		return nil, err
	}
	snapshot, err := s.aqRepo.ListByAttempt(ctx, attemptID)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	if len(snapshot) == 0 {
		return []ExamPageQuestion{}, nil
	}

	questionIDs := make([]int64, len(snapshot))
	for i, row := range snapshot {
		questionIDs[i] = row.QuestionID
	}
	questions, err := s.questionRepo.ListByIDs(ctx, questionIDs)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	questionByID := make(map[int64]*model.Question, len(questions))
	for i := range questions {
		questionByID[questions[i].ID] = &questions[i]
	}
	options, err := s.optionRepo.ListByQuestionIDs(ctx, questionIDs)
	if err != nil {
		return nil, fmt.Errorf("load options: %w", err)
	}
	optionByID := make(map[int64]model.Option, len(options))
	for _, opt := range options {
		optionByID[opt.ID] = opt
	}

	pages := make([]ExamPageQuestion, 0, len(snapshot))
	for _, row := range snapshot {
		q := questionByID[row.QuestionID]
		if q == nil {
			continue // question deleted after materialization
		}
		ordered := make([]model.PublicOption, 0, len(row.OptionOrder))
		for _, optID := range row.OptionOrder {
			if opt, ok := optionByID[optID]; ok {
				ordered = append(ordered, opt.Public())
			}
		}
		pages = append(pages, ExamPageQuestion{
			QuestionID: q.ID,
			PageIndex:  row.PageIndex,
			Text:       q.Text,
			Type:       q.Type,
			Points:     q.Points,
			Options:    ordered,
		})
	}
	return pages, nil
}

// GetResult assembles the full result view: attempt, summary and answers
// with their questions. Correctness is hidden for practice attempts that
// were started without answer reveal.
func (s *AttemptService) GetResult(ctx context.Context, attemptID int64, userID *int64) (*model.AttemptResult, error) {
	attempt, err := s.GetByID(ctx, attemptID, userID)
	if err != nil {
		return nil, err
	}

	summary, err := s.summaryRepo.GetByAttempt(ctx, attemptID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("load summary: %w", err)
	}

	answers, err := s.answerRepo.ListByAttempt(ctx, attemptID)
	if err != nil {
		return nil, fmt.Errorf("load answers: %w", err)
	}

	reveal := true
	if attempt.Mode == model.AttemptModePractice && attempt.Settings != nil && attempt.Settings.Practice != nil {
		reveal = attempt.Settings.Practice.RevealAnswerOnSelect
	}

	questionIDs := make([]int64, len(answers))
	for i, a := range answers {
		questionIDs[i] = a.QuestionID
	}
	var questionByID map[int64]*model.Question
	var optionsByQuestion map[int64][]model.Option
	if len(questionIDs) > 0 {
		questions, err := s.questionRepo.ListByIDs(ctx, questionIDs)
		if err != nil {
			return nil, fmt.Errorf("load questions: %w", err)
		}
		questionByID = make(map[int64]*model.Question, len(questions))
		for i := range questions {
			questionByID[questions[i].ID] = &questions[i]
		}
		options, err := s.optionRepo.ListByQuestionIDs(ctx, questionIDs)
		if err != nil {
			return nil, fmt.Errorf("load options: %w", err)
		}
		optionsByQuestion = make(map[int64][]model.Option, len(questions))
		for _, opt := range options {
			optionsByQuestion[opt.QuestionID] = append(optionsByQuestion[opt.QuestionID], opt)
		}
	}

	details := make([]model.AnswerDetail, 0, len(answers))
	for _, a := range answers {
		detail := model.AnswerDetail{Answer: a}
		if !reveal {
			detail.IsCorrect = nil
		}
		if q := questionByID[a.QuestionID]; q != nil {
			rq := &model.ResultQuestion{
				ID:     q.ID,
				Text:   q.Text,
				Type:   q.Type,
				Points: q.Points,
			}
			opts := optionsByQuestion[q.ID]
			if reveal {
				rq.Explanation = q.Explanation
				rq.Options = opts
			} else {
				public := make([]model.PublicOption, len(opts))
				for i, opt := range opts {
					public[i] = opt.Public()
				}
				rq.PublicOptions = public
			}
			detail.Question = rq
		}
		details = append(details, detail)
	}

	return &model.AttemptResult{Attempt: attempt, Summary: summary, Answers: details}, nil
}

func (s *AttemptService) validateChapter(ctx context.Context, subjectID, chapterID int64) error {
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
