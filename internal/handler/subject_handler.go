package handler

import (
	"net/http"

	"github.com/Tuyetzz/QuizWeb/internal/model"
	"github.com/Tuyetzz/QuizWeb/internal/response"
	"github.com/Tuyetzz/QuizWeb/internal/service"
	"github.com/Tuyetzz/QuizWeb/internal/validator"
	"github.com/gin-gonic/gin"
)

// SubjectHandler handles subject catalog endpoints.
type SubjectHandler struct {
	subjectService *service.SubjectService
	chapterService *service.ChapterService
}

// NewSubjectHandler creates a new SubjectHandler.
func NewSubjectHandler(subjectService *service.SubjectService, chapterService *service.ChapterService) *SubjectHandler {
	return &SubjectHandler{subjectService: subjectService, chapterService: chapterService}
}

// List godoc
// GET /api/v1/subjects
func (h *SubjectHandler) List(c *gin.Context) {
	subjects, err := h.subjectService.List(c.Request.Context())
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"subjects": subjects})
}

// Get godoc
// GET /api/v1/subjects/:id
func (h *SubjectHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	subject, err := h.subjectService.GetByID(c.Request.Context(), id)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"subject": subject})
}

// ListChapters godoc
// GET /api/v1/subjects/:id/chapters
func (h *SubjectHandler) ListChapters(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	chapters, err := h.chapterService.ListBySubject(c.Request.Context(), id)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"chapters": chapters})
}

// Create godoc
// POST /api/v1/subjects
func (h *SubjectHandler) Create(c *gin.Context) {
	var req model.CreateSubjectRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	subject, err := h.subjectService.Create(c.Request.Context(), &req)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"subject": subject})
}

// Delete godoc
// DELETE /api/v1/subjects/:id
func (h *SubjectHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.subjectService.Delete(c.Request.Context(), id); err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
