package handler

import (
	"net/http"

	"github.com/Tuyetzz/QuizWeb/internal/middleware"
	"github.com/Tuyetzz/QuizWeb/internal/model"
	"github.com/Tuyetzz/QuizWeb/internal/response"
	"github.com/Tuyetzz/QuizWeb/internal/service"
	"github.com/Tuyetzz/QuizWeb/internal/validator"
	"github.com/gin-gonic/gin"
)

// AnswerHandler handles answer recording endpoints.
type AnswerHandler struct {
	answerService *service.AnswerService
}

// NewAnswerHandler creates a new AnswerHandler.
func NewAnswerHandler(answerService *service.AnswerService) *AnswerHandler {
	return &AnswerHandler{answerService: answerService}
}

// Upsert godoc
// PUT /api/v1/attempts/:id/answers/:question_id
func (h *AnswerHandler) Upsert(c *gin.Context) {
	attemptID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	questionID, ok := parseIDParam(c, "question_id")
	if !ok {
		return
	}
	var req model.UpsertAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	answer, err := h.answerService.Upsert(c.Request.Context(), attemptID, questionID, middleware.ScopeUserID(c), &req)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"answer": answer})
}

// SubmitAll godoc
// POST /api/v1/attempts/:id/answers
// Bulk-upserts answers before submission. Correctness is never read from the
// payload; the grading engine computes it.
func (h *AnswerHandler) SubmitAll(c *gin.Context) {
	attemptID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req model.SubmitAnswersRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	saved, err := h.answerService.SubmitAll(c.Request.Context(), attemptID, middleware.ScopeUserID(c), &req)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"saved": saved})
}

// List godoc
// GET /api/v1/attempts/:id/answers
func (h *AnswerHandler) List(c *gin.Context) {
	attemptID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	answers, err := h.answerService.ListByAttempt(c.Request.Context(), attemptID, middleware.ScopeUserID(c))
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"answers": answers})
}
