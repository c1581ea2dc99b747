package model

import "time"

// Subject groups chapters and questions (e.g. "Toán 12").
type Subject struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Chapter is a section of a subject; questions belong to exactly one chapter.
type Chapter struct {
	ID        int64     `json:"id"`
	SubjectID int64     `json:"subject_id"`
	Name      string    `json:"name"`
	Order     int       `json:"order"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateSubjectRequest is the payload for creating a subject.
type CreateSubjectRequest struct {
	Name string `json:"name" binding:"required,min=1,max=150"`
	Slug string `json:"slug" binding:"required,min=1,max=150"`
}

// CreateChapterRequest is the payload for creating a chapter.
type CreateChapterRequest struct {
	SubjectID int64  `json:"subject_id" binding:"required,min=1"`
	Name      string `json:"name" binding:"required,min=1,max=150"`
	Order     int    `json:"order" binding:"min=0"`
}
