package model

import "time"

// Answer is the user's recorded response to one question within one attempt,
// plus the grading outcome. There is at most one row per (attempt, question).
// IsCorrect stays nil until graded; nil means ungraded or blank.
type Answer struct {
	ID                int64      `json:"id"`
	AttemptID         int64      `json:"attempt_id"`
	QuestionID        int64      `json:"question_id"`
	SelectedOptionIDs []int64    `json:"selected_option_ids"`
	OptionOrder       []int64    `json:"option_order,omitempty"`
	Value             *string    `json:"value,omitempty"`
	IsCorrect         *bool      `json:"is_correct"`
	EarnedPoints      float64    `json:"earned_points"`
	AnsweredAt        *time.Time `json:"answered_at,omitempty"`
	Flagged           bool       `json:"flagged"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// UpsertAnswerRequest is the payload for recording or changing an answer
// during the answering phase.
type UpsertAnswerRequest struct {
	SelectedOptionIDs []int64 `json:"selected_option_ids" binding:"omitempty,dive,min=1"`
	Value             *string `json:"value" binding:"omitempty,max=4000"`
	Flagged           *bool   `json:"flagged" binding:"omitempty"`
}

// SubmitAnswersRequest bulk-upserts answers before submission. Correctness
// and points are never accepted from the client; the grading engine computes
// them.
type SubmitAnswersRequest struct {
	Answers []SubmitAnswerItem `json:"answers" binding:"required,min=1,dive"`
}

// SubmitAnswerItem is one answer inside a bulk submission.
type SubmitAnswerItem struct {
	QuestionID        int64   `json:"question_id" binding:"required,min=1"`
	SelectedOptionIDs []int64 `json:"selected_option_ids" binding:"omitempty,dive,min=1"`
	Value             *string `json:"value" binding:"omitempty,max=4000"`
}
