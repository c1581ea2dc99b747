package model

import (
	"encoding/json"
	"time"
)

// AttemptMode distinguishes timed exams from self-paced practice.
type AttemptMode string

const (
	AttemptModeExam     AttemptMode = "exam"
	AttemptModePractice AttemptMode = "practice"
)

// AttemptStatus enumerates attempt lifecycle states.
type AttemptStatus string

const (
	AttemptStatusDraft      AttemptStatus = "draft"
	AttemptStatusInProgress AttemptStatus = "in_progress"
	AttemptStatusSubmitted  AttemptStatus = "submitted"
	AttemptStatusExpired    AttemptStatus = "expired"
	AttemptStatusGraded     AttemptStatus = "graded"
)

// legalTransitions maps each status to the statuses reachable from it.
// Self-transitions are allowed so idempotent patches don't conflict.
var legalTransitions = map[AttemptStatus][]AttemptStatus{
	AttemptStatusDraft:      {AttemptStatusDraft, AttemptStatusInProgress},
	AttemptStatusInProgress: {AttemptStatusInProgress, AttemptStatusSubmitted, AttemptStatusExpired, AttemptStatusGraded},
	AttemptStatusSubmitted:  {AttemptStatusSubmitted, AttemptStatusGraded},
	AttemptStatusExpired:    {AttemptStatusExpired},
	AttemptStatusGraded:     {AttemptStatusGraded},
}

// ValidAttemptStatus reports whether s is a known status value.
func ValidAttemptStatus(s AttemptStatus) bool {
	_, ok := legalTransitions[s]
	return ok
}

// CanTransition reports whether an attempt may move from one status to
// another. Regressing to draft from any later state is always rejected.
func CanTransition(from, to AttemptStatus) bool {
	for _, next := range legalTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Attempt is one user's pass through a set of questions, exam or practice.
type Attempt struct {
	ID               int64            `json:"id"`
	UserID           int64            `json:"user_id"`
	SubjectID        *int64           `json:"subject_id,omitempty"`
	ChapterID        *int64           `json:"chapter_id,omitempty"`
	Mode             AttemptMode      `json:"mode"`
	Status           AttemptStatus    `json:"status"`
	StartedAt        *time.Time       `json:"started_at,omitempty"`
	SubmittedAt      *time.Time       `json:"submitted_at,omitempty"`
	ExpiresAt        *time.Time       `json:"expires_at,omitempty"`
	DurationMinutes  int              `json:"duration_minutes"`
	TimeSpentSeconds int              `json:"time_spent_seconds"`
	Score            float64          `json:"score"`
	MaxScore         float64          `json:"max_score"`
	Settings         *AttemptSettings `json:"settings,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// AttemptQuestion is the frozen (attempt, question) pairing used in exam
// mode: the persisted option order and page assignment are the source of
// truth for rendering and are never recomputed.
type AttemptQuestion struct {
	ID          int64   `json:"id"`
	AttemptID   int64   `json:"attempt_id"`
	QuestionID  int64   `json:"question_id"`
	OptionOrder []int64 `json:"option_order"`
	PageIndex   int     `json:"page_index"`
}

// ─── Settings (tagged union keyed by mode) ──────────────────────────────────

// AttemptSettings holds the mode-specific configuration of an attempt.
// Exactly one of Exam or Practice is set, matching Attempt.Mode. Unknown
// keys in stored JSON are ignored on decode rather than trusted.
type AttemptSettings struct {
	Exam     *ExamSettings     `json:"exam,omitempty"`
	Practice *PracticeSettings `json:"practice,omitempty"`
	Grading  *GradingPolicy    `json:"grading,omitempty"`
}

// ExamSettings is the effective configuration of an exam attempt. The
// question count stored here is the clamped value actually used.
type ExamSettings struct {
	QuestionCount        int  `json:"question_count"`
	PageSize             int  `json:"page_size"`
	ShuffleQuestions     bool `json:"shuffle_questions"`
	ShuffleOptions       bool `json:"shuffle_options"`
	RevealAnswerOnSelect bool `json:"reveal_answer_on_select"`
}

// PracticeSettings is the effective configuration of a practice attempt.
type PracticeSettings struct {
	Range                Range  `json:"range"`
	OrderBy              string `json:"order_by"`
	ShuffleQuestions     bool   `json:"shuffle_questions"`
	ShuffleOptions       bool   `json:"shuffle_options"`
	RevealAnswerOnSelect bool   `json:"reveal_answer_on_select"`
}

// Range is an offset/limit window over the ordered question set.
type Range struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// DecodeSettings parses a stored settings blob. A nil or empty blob yields
// nil settings, not an error.
func DecodeSettings(raw []byte) (*AttemptSettings, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var s AttemptSettings
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// ─── Grading policy ─────────────────────────────────────────────────────────

// Fill-blank comparison modes.
const (
	FillBlankModeExact = "exact"
	FillBlankModeRegex = "regex"
)

// GradingPolicy configures how the grading engine scores an attempt.
// The zero value is the default policy: no partial credit, no penalty,
// exact-match fill-blank comparison.
type GradingPolicy struct {
	PartialCredit   bool    `json:"partial_credit"`
	PenaltyPerWrong float64 `json:"penalty_per_wrong"`
	FillBlankMode   string  `json:"fill_blank_mode"`
	PassThreshold   float64 `json:"pass_threshold"`
}

// ResolvePolicy returns the grading policy of an attempt, falling back to
// defaults when settings carry none.
func (a *Attempt) ResolvePolicy() GradingPolicy {
	if a.Settings != nil && a.Settings.Grading != nil {
		p := *a.Settings.Grading
		if p.FillBlankMode == "" {
			p.FillBlankMode = FillBlankModeExact
		}
		if p.PenaltyPerWrong < 0 {
			p.PenaltyPerWrong = 0
		}
		return p
	}
	return GradingPolicy{FillBlankMode: FillBlankModeExact}
}

// ─── Request / response payloads ────────────────────────────────────────────

// CreateAttemptRequest is the payload for the generic draft-create path.
// StartExam/StartPractice begin directly in in_progress and do not use it.
type CreateAttemptRequest struct {
	SubjectID       *int64           `json:"subject_id" binding:"omitempty,min=1"`
	ChapterID       *int64           `json:"chapter_id" binding:"omitempty,min=1"`
	Mode            string           `json:"mode" binding:"required,oneof=exam practice"`
	DurationMinutes int              `json:"duration_minutes" binding:"required,min=1"`
	Settings        *AttemptSettings `json:"settings" binding:"omitempty"`
}

// UpdateAttemptRequest is the controlled patch payload (administrative path).
type UpdateAttemptRequest struct {
	Status           *string          `json:"status" binding:"omitempty"`
	StartedAt        *time.Time       `json:"started_at" binding:"omitempty"`
	SubmittedAt      *time.Time       `json:"submitted_at" binding:"omitempty"`
	ExpiresAt        *time.Time       `json:"expires_at" binding:"omitempty"`
	TimeSpentSeconds *int             `json:"time_spent_seconds" binding:"omitempty"`
	Score            *float64         `json:"score" binding:"omitempty"`
	MaxScore         *float64         `json:"max_score" binding:"omitempty"`
	Settings         *AttemptSettings `json:"settings" binding:"omitempty"`
}

// StartExamRequest is the payload for starting a timed exam attempt.
type StartExamRequest struct {
	SubjectID       int64             `json:"subject_id" binding:"required,min=1"`
	ChapterID       int64             `json:"chapter_id" binding:"required,min=1"`
	DurationMinutes int               `json:"duration_minutes" binding:"required,min=1,max=480"`
	Settings        StartExamSettings `json:"settings" binding:"required"`
}

// StartExamSettings carries the requested exam configuration.
type StartExamSettings struct {
	QuestionCount        int            `json:"question_count" binding:"required,min=1"`
	PageSize             int            `json:"page_size" binding:"required,min=1"`
	ShuffleQuestions     bool           `json:"shuffle_questions"`
	ShuffleOptions       bool           `json:"shuffle_options"`
	RevealAnswerOnSelect bool           `json:"reveal_answer_on_select"`
	Grading              *GradingPolicy `json:"grading" binding:"omitempty"`
}

// StartExamResponse returns attempt identity, effective settings and totals.
type StartExamResponse struct {
	ID        int64             `json:"id"`
	StartedAt time.Time         `json:"started_at"`
	ExpiresAt time.Time         `json:"expires_at"`
	Settings  ExamStartSettings `json:"settings"`
	Totals    ExamStartTotals   `json:"totals"`
}

// ExamStartSettings echoes requested vs. used configuration.
type ExamStartSettings struct {
	Mode                   AttemptMode `json:"mode"`
	QuestionCountRequested int         `json:"question_count_requested"`
	QuestionCountUsed      int         `json:"question_count_used"`
	PageSize               int         `json:"page_size"`
	ShuffleQuestions       bool        `json:"shuffle_questions"`
	ShuffleOptions         bool        `json:"shuffle_options"`
	RevealAnswerOnSelect   bool        `json:"reveal_answer_on_select"`
}

// ExamStartTotals reports the materialized question set size.
type ExamStartTotals struct {
	TotalAvailable int     `json:"total_available"`
	TotalQuestions int     `json:"total_questions"`
	TotalPages     int     `json:"total_pages"`
	MaxScore       float64 `json:"max_score"`
}

// StartPracticeRequest is the payload for starting a practice attempt.
type StartPracticeRequest struct {
	SubjectID       int64                 `json:"subject_id" binding:"required,min=1"`
	ChapterID       int64                 `json:"chapter_id" binding:"required,min=1"`
	DurationMinutes *int                  `json:"duration_minutes" binding:"omitempty,min=1"`
	Range           *RangeRequest         `json:"range" binding:"omitempty"`
	Settings        StartPracticeSettings `json:"settings"`
}

// RangeRequest is the requested offset/limit window.
type RangeRequest struct {
	Offset *int `json:"offset" binding:"omitempty,min=0"`
	Limit  *int `json:"limit" binding:"omitempty,min=1"`
}

// StartPracticeSettings carries the requested practice configuration.
type StartPracticeSettings struct {
	RevealAnswerOnSelect *bool          `json:"reveal_answer_on_select"`
	ShuffleQuestions     bool           `json:"shuffle_questions"`
	ShuffleOptions       bool           `json:"shuffle_options"`
	OrderBy              string         `json:"order_by" binding:"omitempty,oneof=id.asc id.desc random"`
	Grading              *GradingPolicy `json:"grading" binding:"omitempty"`
}

// StartPracticeResponse is self-contained: it carries the question payload
// so the client needs no separate question fetch.
type StartPracticeResponse struct {
	ID        int64                 `json:"id"`
	Mode      AttemptMode           `json:"mode"`
	StartedAt time.Time             `json:"started_at"`
	Range     Range                 `json:"range"`
	Totals    PracticeStartTotals   `json:"totals"`
	Settings  PracticeStartSettings `json:"settings"`
	Items     []PracticeQuestion    `json:"items"`
}

// PracticeStartTotals reports the slice actually returned.
type PracticeStartTotals struct {
	TotalAvailable int `json:"total_available"`
	Returned       int `json:"returned"`
}

// PracticeStartSettings echoes the effective practice configuration.
type PracticeStartSettings struct {
	RevealAnswerOnSelect bool   `json:"reveal_answer_on_select"`
	ShuffleQuestions     bool   `json:"shuffle_questions"`
	ShuffleOptions       bool   `json:"shuffle_options"`
	OrderBy              string `json:"order_by"`
}

// PracticeQuestion is a question as delivered in a practice payload.
// Options is used when correctness may be revealed; PublicOptions otherwise.
type PracticeQuestion struct {
	ID            int64          `json:"id"`
	Text          string         `json:"text"`
	Explanation   string         `json:"explanation,omitempty"`
	Type          QuestionType   `json:"type"`
	Points        float64        `json:"points"`
	Options       []Option       `json:"options,omitempty"`
	PublicOptions []PublicOption `json:"public_options,omitempty"`
}

// GradeResult is the outcome of grading an attempt.
type GradeResult struct {
	AttemptID   int64         `json:"attempt_id"`
	Status      AttemptStatus `json:"status"`
	Score       float64       `json:"score"`
	MaxScore    float64       `json:"max_score"`
	SubmittedAt *time.Time    `json:"submitted_at,omitempty"`
}
