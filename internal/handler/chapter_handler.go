package handler

import (
	"net/http"

	"github.com/Tuyetzz/QuizWeb/internal/model"
	"github.com/Tuyetzz/QuizWeb/internal/response"
	"github.com/Tuyetzz/QuizWeb/internal/service"
	"github.com/Tuyetzz/QuizWeb/internal/validator"
	"github.com/gin-gonic/gin"
)

// ChapterHandler handles chapter catalog endpoints.
type ChapterHandler struct {
	chapterService *service.ChapterService
}

// NewChapterHandler creates a new ChapterHandler.
func NewChapterHandler(chapterService *service.ChapterService) *ChapterHandler {
	return &ChapterHandler{chapterService: chapterService}
}

// Get godoc
// GET /api/v1/chapters/:id
func (h *ChapterHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	chapter, err := h.chapterService.GetByID(c.Request.Context(), id)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"chapter": chapter})
}

// Create godoc
// POST /api/v1/chapters
func (h *ChapterHandler) Create(c *gin.Context) {
	var req model.CreateChapterRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	chapter, err := h.chapterService.Create(c.Request.Context(), &req)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"chapter": chapter})
}

// Delete godoc
// DELETE /api/v1/chapters/:id
func (h *ChapterHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.chapterService.Delete(c.Request.Context(), id); err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
