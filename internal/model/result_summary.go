package model

import "time"

// ResultSummary aggregates correct/wrong/blank counts for a graded attempt.
// One-to-one with Attempt; recomputed on every (re)grading.
type ResultSummary struct {
	ID             int64     `json:"id"`
	AttemptID      int64     `json:"attempt_id"`
	TotalQuestions int       `json:"total_questions"`
	CorrectCount   int       `json:"correct_count"`
	WrongCount     int       `json:"wrong_count"`
	BlankCount     int       `json:"blank_count"`
	Score          float64   `json:"score"`
	MaxScore       float64   `json:"max_score"`
	Rank           *int      `json:"rank,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// AttemptResult is the full result view of an attempt.
type AttemptResult struct {
	Attempt *Attempt       `json:"attempt"`
	Summary *ResultSummary `json:"summary,omitempty"`
	Answers []AnswerDetail `json:"answers"`
}

// AnswerDetail nests the question (with options) under an answer for the
// result view. Options are stripped of correctness when the attempt's
// settings forbid revealing the key.
type AnswerDetail struct {
	Answer
	Question *ResultQuestion `json:"question,omitempty"`
}

// ResultQuestion is a question as embedded in a result payload.
type ResultQuestion struct {
	ID            int64          `json:"id"`
	Text          string         `json:"text"`
	Explanation   string         `json:"explanation,omitempty"`
	Type          QuestionType   `json:"type"`
	Points        float64        `json:"points"`
	Options       []Option       `json:"options,omitempty"`
	PublicOptions []PublicOption `json:"public_options,omitempty"`
}
