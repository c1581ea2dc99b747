package model

import (
	"encoding/json"
	"time"
)

// QuestionType enumerates supported question kinds.
type QuestionType string

const (
	QuestionTypeSingle    QuestionType = "single"
	QuestionTypeMultiple  QuestionType = "multiple"
	QuestionTypeTrueFalse QuestionType = "true_false"
	QuestionTypeFillBlank QuestionType = "fill_blank"
)

// Question represents one bank question. For fill_blank questions the
// Explanation column doubles as the expected answer (or regex pattern).
type Question struct {
	ID          int64           `json:"id"`
	SubjectID   int64           `json:"subject_id"`
	ChapterID   int64           `json:"chapter_id"`
	Type        QuestionType    `json:"type"`
	Text        string          `json:"text"`
	Explanation string          `json:"explanation,omitempty"`
	Difficulty  int             `json:"difficulty"`
	Points      float64         `json:"points"`
	Tags        json.RawMessage `json:"tags,omitempty"`
	Options     []Option        `json:"options,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Option is one selectable choice of a choice-type question.
type Option struct {
	ID         int64  `json:"id"`
	QuestionID int64  `json:"question_id"`
	Text       string `json:"text"`
	IsCorrect  bool   `json:"is_correct"`
	Order      int    `json:"order"`
}

// PublicOption is an option with the correctness flag stripped, sent to
// clients that must not see the answer key yet.
type PublicOption struct {
	ID    int64  `json:"id"`
	Text  string `json:"text"`
	Order int    `json:"order"`
}

// Public strips IsCorrect from an option.
func (o Option) Public() PublicOption {
	return PublicOption{ID: o.ID, Text: o.Text, Order: o.Order}
}

// CreateQuestionRequest is the payload for creating a question with its options.
type CreateQuestionRequest struct {
	SubjectID   int64                 `json:"subject_id" binding:"required,min=1"`
	ChapterID   int64                 `json:"chapter_id" binding:"required,min=1"`
	Type        string                `json:"type" binding:"required,oneof=single multiple true_false fill_blank"`
	Text        string                `json:"text" binding:"required,min=1,max=4000"`
	Explanation string                `json:"explanation" binding:"omitempty,max=4000"`
	Difficulty  int                   `json:"difficulty" binding:"omitempty,min=1,max=3"`
	Points      *float64              `json:"points" binding:"omitempty,min=0"`
	Tags        json.RawMessage       `json:"tags" binding:"omitempty"`
	Options     []CreateOptionRequest `json:"options" binding:"omitempty,dive"`
}

// CreateOptionRequest is one option inside a question payload.
type CreateOptionRequest struct {
	Text      string `json:"text" binding:"required,min=1,max=255"`
	IsCorrect bool   `json:"is_correct"`
	Order     int    `json:"order" binding:"min=0"`
}

// BatchPolicy selects the failure semantics of a bulk question insert.
type BatchPolicy string

const (
	// BatchPolicyAllOrNothing runs the whole batch in one transaction;
	// any item failure aborts everything.
	BatchPolicyAllOrNothing BatchPolicy = "all_or_nothing"
	// BatchPolicyPartial isolates each item in its own transaction and
	// collects per-index failures without aborting later items.
	BatchPolicyPartial BatchPolicy = "partial"
)

// BatchCreateQuestionsRequest is the payload for bulk question authoring.
type BatchCreateQuestionsRequest struct {
	Policy    string                  `json:"policy" binding:"omitempty,oneof=all_or_nothing partial"`
	Questions []CreateQuestionRequest `json:"questions" binding:"required,min=1,dive"`
}

// BatchItemError reports one failed item of a partial batch.
type BatchItemError struct {
	Index   int    `json:"index"`
	Message string `json:"message"`
}
