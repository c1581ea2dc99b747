package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Tuyetzz/QuizWeb/internal/model"
	"github.com/Tuyetzz/QuizWeb/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// GradingService computes attempt scores. All work happens inside one
// transaction holding an exclusive row lock on the attempt, so concurrent
// grading calls against the same attempt serialize.
type GradingService struct {
	pool         *pgxpool.Pool
	attemptRepo  *repository.AttemptRepository
	aqRepo       *repository.AttemptQuestionRepository
	answerRepo   *repository.AnswerRepository
	questionRepo *repository.QuestionRepository
	optionRepo   *repository.OptionRepository
	summaryRepo  *repository.ResultSummaryRepository
	log          zerolog.Logger
}

// NewGradingService creates a new GradingService.
func NewGradingService(
	pool *pgxpool.Pool,
	attemptRepo *repository.AttemptRepository,
	aqRepo *repository.AttemptQuestionRepository,
	answerRepo *repository.AnswerRepository,
	questionRepo *repository.QuestionRepository,
	optionRepo *repository.OptionRepository,
	summaryRepo *repository.ResultSummaryRepository,
	log zerolog.Logger,
) *GradingService {
	return &GradingService{
		pool:         pool,
		attemptRepo:  attemptRepo,
		aqRepo:       aqRepo,
		answerRepo:   answerRepo,
		questionRepo: questionRepo,
		optionRepo:   optionRepo,
		summaryRepo:  summaryRepo,
		log:          log.With().Str("component", "grading_service").Logger(),
	}
}

// GradeAttempt grades one attempt. Unless force is set, a graded attempt
// returns its stored result untouched, and an attempt past its expiry is
// moved to expired without scoring. userID scopes ownership when non-nil.
func (g *GradingService) GradeAttempt(ctx context.Context, attemptID int64, userID *int64, force bool) (*model.GradeResult, error) {
	tx, err := g.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	attemptRepo := g.attemptRepo.WithTx(tx)
	attempt, err := attemptRepo.GetByIDForUpdate(ctx, attemptID, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("lock attempt: %w", err)
	}

	// Idempotence: repeat grading of a graded attempt is a no-op.
	if !force && attempt.Status == model.AttemptStatusGraded {
		return gradeResultOf(attempt), nil
	}

	// Lazy expiry: time limits are enforced here, not only at answer time.
	// Practice attempts never carry an expiry and are unaffected.
	now := time.Now()
	if !force && attemptExpired(attempt, now) {
		attempt.Status = model.AttemptStatusExpired
		if err := attemptRepo.Update(ctx, attempt); err != nil {
			return nil, fmt.Errorf("expire attempt: %w", err)
		}
		if err := tx.Commit(ctx); err != nil {
			return nil, fmt.Errorf("commit: %w", err)
		}
		g.log.Info().Int64("attempt_id", attempt.ID).Msg("attempt expired at grading")
		return gradeResultOf(attempt), nil
	}

	result, err := g.gradeLocked(ctx, tx, attempt, now)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	g.log.Info().
		Int64("attempt_id", attempt.ID).
		Float64("score", result.Score).
		Float64("max_score", result.MaxScore).
		Msg("attempt graded")
	return result, nil
}

// RegradeAttempt recomputes an attempt's score unconditionally. Used when
// question content changes after initial grading.
func (g *GradingService) RegradeAttempt(ctx context.Context, attemptID int64) (*model.GradeResult, error) {
	return g.GradeAttempt(ctx, attemptID, nil, true)
}

// gradeLocked runs the scoring pass. The caller holds the attempt row lock.
func (g *GradingService) gradeLocked(ctx context.Context, tx pgx.Tx, attempt *model.Attempt, now time.Time) (*model.GradeResult, error) {
	questionIDs, err := g.attemptQuestionSet(ctx, tx, attempt)
	if err != nil {
		return nil, err
	}

	answerRepo := g.answerRepo.WithTx(tx)
	answers, err := answerRepo.ListByAttempt(ctx, attempt.ID)
	if err != nil {
		return nil, fmt.Errorf("load answers: %w", err)
	}
	answerByQuestion := make(map[int64]*model.Answer, len(answers))
	for i := range answers {
		answerByQuestion[answers[i].QuestionID] = &answers[i]
	}

	var questionByID map[int64]*model.Question
	if len(questionIDs) > 0 {
		questions, err := g.questionRepo.WithTx(tx).ListByIDs(ctx, questionIDs)
		if err != nil {
			return nil, fmt.Errorf("load questions: %w", err)
		}
		options, err := g.optionRepo.WithTx(tx).ListByQuestionIDs(ctx, questionIDs)
		if err != nil {
			return nil, fmt.Errorf("load options: %w", err)
		}
		optionsByQuestion := make(map[int64][]model.Option, len(questions))
		for _, opt := range options {
			optionsByQuestion[opt.QuestionID] = append(optionsByQuestion[opt.QuestionID], opt)
		}
		questionByID = make(map[int64]*model.Question, len(questions))
		for i := range questions {
			questions[i].Options = optionsByQuestion[questions[i].ID]
			questionByID[questions[i].ID] = &questions[i]
		}
	}

	policy := attempt.ResolvePolicy()

	var totalEarned, maxScore float64
	var correctCount, wrongCount, blankCount int
	for _, questionID := range questionIDs {
		q := questionByID[questionID]
		if q == nil {
			// Question deleted since materialization; worth zero.
			blankCount++
			continue
		}
		maxScore += q.Points

		ans := answerByQuestion[questionID]
		grade := gradeQuestion(q, ans, policy)
		totalEarned += grade.EarnedPoints

		switch {
		case grade.IsCorrect == nil:
			blankCount++
		case *grade.IsCorrect:
			correctCount++
		default:
			wrongCount++
		}

		if ans != nil {
			ans.IsCorrect = grade.IsCorrect
			ans.EarnedPoints = grade.EarnedPoints
			if ans.AnsweredAt == nil && !isBlankAnswer(ans) {
				ans.AnsweredAt = &now
			}
			if err := answerRepo.SaveGrade(ctx, ans); err != nil {
				return nil, fmt.Errorf("save grade for question %d: %w", questionID, err)
			}
		} else {
			// Exam-mode question the client never opened.
			blank := &model.Answer{
				AttemptID:    attempt.ID,
				QuestionID:   questionID,
				IsCorrect:    grade.IsCorrect,
				EarnedPoints: grade.EarnedPoints,
			}
			if err := answerRepo.Create(ctx, blank); err != nil {
				return nil, fmt.Errorf("create blank answer for question %d: %w", questionID, err)
			}
		}
	}

	attempt.Score = totalEarned
	attempt.MaxScore = maxScore
	if attempt.SubmittedAt == nil {
		attempt.SubmittedAt = &now
	}
	attempt.Status = model.AttemptStatusGraded
	if err := g.attemptRepo.WithTx(tx).Update(ctx, attempt); err != nil {
		return nil, fmt.Errorf("update attempt: %w", err)
	}

	summary := &model.ResultSummary{
		AttemptID:      attempt.ID,
		TotalQuestions: len(questionIDs),
		CorrectCount:   correctCount,
		WrongCount:     wrongCount,
		BlankCount:     blankCount,
		Score:          totalEarned,
		MaxScore:       maxScore,
	}
	if err := g.summaryRepo.WithTx(tx).Upsert(ctx, summary); err != nil {
		return nil, fmt.Errorf("upsert summary: %w", err)
	}

	return gradeResultOf(attempt), nil
}

// attemptQuestionSet resolves which questions the attempt covers: the frozen
// snapshot for exams, the pre-created answer rows for practice.
func (g *GradingService) attemptQuestionSet(ctx context.Context, tx pgx.Tx, attempt *model.Attempt) ([]int64, error) {
	if attempt.Mode == model.AttemptModeExam {
		snapshot, err := g.aqRepo.WithTx(tx).ListByAttempt(ctx, attempt.ID)
		if err != nil {
			return nil, fmt.Errorf("load snapshot: %w", err)
		}
		ids := make([]int64, len(snapshot))
		for i, row := range snapshot {
			ids[i] = row.QuestionID
		}
		return ids, nil
	}
	answers, err := g.answerRepo.WithTx(tx).ListByAttempt(ctx, attempt.ID)
	if err != nil {
		return nil, fmt.Errorf("load answers: %w", err)
	}
	ids := make([]int64, len(answers))
	for i, a := range answers {
		ids[i] = a.QuestionID
	}
	return ids, nil
}

func gradeResultOf(a *model.Attempt) *model.GradeResult {
	return &model.GradeResult{
		AttemptID:   a.ID,
		Status:      a.Status,
		Score:       a.Score,
		MaxScore:    a.MaxScore,
		SubmittedAt: a.SubmittedAt,
	}
}
