package handler

import (
	"net/http"
	"strconv"

	"github.com/Tuyetzz/QuizWeb/internal/model"
	"github.com/Tuyetzz/QuizWeb/internal/repository"
	"github.com/Tuyetzz/QuizWeb/internal/response"
	"github.com/Tuyetzz/QuizWeb/internal/service"
	"github.com/Tuyetzz/QuizWeb/internal/validator"
	"github.com/gin-gonic/gin"
)

// QuestionHandler handles question bank endpoints.
type QuestionHandler struct {
	questionService *service.QuestionService
}

// NewQuestionHandler creates a new QuestionHandler.
func NewQuestionHandler(questionService *service.QuestionService) *QuestionHandler {
	return &QuestionHandler{questionService: questionService}
}

// List godoc
// GET /api/v1/questions?subject_id=&chapter_id=&type=&difficulty=&limit=&offset=
func (h *QuestionHandler) List(c *gin.Context) {
	var f repository.QuestionFilter
	if v, err := strconv.ParseInt(c.Query("subject_id"), 10, 64); err == nil {
		f.SubjectID = &v
	}
	if v, err := strconv.ParseInt(c.Query("chapter_id"), 10, 64); err == nil {
		f.ChapterID = &v
	}
	if v := c.Query("type"); v != "" {
		qt := model.QuestionType(v)
		f.Type = &qt
	}
	if v, err := strconv.Atoi(c.Query("difficulty")); err == nil {
		f.Difficulty = &v
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	questions, total, err := h.questionService.List(c.Request.Context(), f, limit, offset)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.SuccessWithPagination(c, http.StatusOK, gin.H{"questions": questions},
		&response.Pagination{Total: total, Limit: limit, Offset: offset})
}

// Get godoc
// GET /api/v1/questions/:id
func (h *QuestionHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	question, err := h.questionService.GetByID(c.Request.Context(), id)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"question": question})
}

// Create godoc
// POST /api/v1/questions
func (h *QuestionHandler) Create(c *gin.Context) {
	var req model.CreateQuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	question, err := h.questionService.Create(c.Request.Context(), &req)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"question": question})
}

// BatchCreate godoc
// POST /api/v1/questions/batch
func (h *QuestionHandler) BatchCreate(c *gin.Context) {
	var req model.BatchCreateQuestionsRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	created, failures, err := h.questionService.BatchCreate(c.Request.Context(), &req)
	if err != nil {
		failFromService(c, err)
		return
	}
	status := http.StatusCreated
	if len(failures) > 0 {
		status = http.StatusMultiStatus
	}
	response.Success(c, status, gin.H{"questions": created, "errors": failures})
}

// Update godoc
// PUT /api/v1/questions/:id
func (h *QuestionHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req model.CreateQuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	question, err := h.questionService.Update(c.Request.Context(), id, &req)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"question": question})
}

// Delete godoc
// DELETE /api/v1/questions/:id
func (h *QuestionHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.questionService.Delete(c.Request.Context(), id); err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
