package handler

import (
	"net/http"
	"strconv"

	"github.com/Tuyetzz/QuizWeb/internal/middleware"
	"github.com/Tuyetzz/QuizWeb/internal/model"
	"github.com/Tuyetzz/QuizWeb/internal/repository"
	"github.com/Tuyetzz/QuizWeb/internal/response"
	"github.com/Tuyetzz/QuizWeb/internal/service"
	"github.com/Tuyetzz/QuizWeb/internal/validator"
	"github.com/gin-gonic/gin"
)

// AttemptHandler handles attempt lifecycle endpoints.
type AttemptHandler struct {
	attemptService *service.AttemptService
	gradingService *service.GradingService
}

// NewAttemptHandler creates a new AttemptHandler.
func NewAttemptHandler(attemptService *service.AttemptService, gradingService *service.GradingService) *AttemptHandler {
	return &AttemptHandler{attemptService: attemptService, gradingService: gradingService}
}

// StartExam godoc
// POST /api/v1/attempts/exam
func (h *AttemptHandler) StartExam(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}
	var req model.StartExamRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	res, err := h.attemptService.StartExam(c.Request.Context(), claims.UserID, &req)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusCreated, res)
}

// StartPractice godoc
// POST /api/v1/attempts/practice
func (h *AttemptHandler) StartPractice(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}
	var req model.StartPracticeRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	res, err := h.attemptService.StartPractice(c.Request.Context(), claims.UserID, &req)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusCreated, res)
}

// Create godoc
// POST /api/v1/attempts
// Generic draft-create path; time bounds stay unset until started.
func (h *AttemptHandler) Create(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}
	var req model.CreateAttemptRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	attempt, err := h.attemptService.Create(c.Request.Context(), claims.UserID, &req)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"attempt": attempt})
}

// List godoc
// GET /api/v1/attempts?status=&mode=&subject_id=&chapter_id=&sort_by=&sort_dir=&limit=&offset=
// Students see their own attempts; teachers and admins see everyone's.
func (h *AttemptHandler) List(c *gin.Context) {
	f := repository.AttemptFilter{UserID: middleware.ScopeUserID(c)}
	if v := c.Query("status"); v != "" {
		st := model.AttemptStatus(v)
		if !model.ValidAttemptStatus(st) {
			response.FailWithMessage(c, http.StatusBadRequest, response.ErrValidation, "unknown status filter")
			return
		}
		f.Status = &st
	}
	if v := c.Query("mode"); v != "" {
		m := model.AttemptMode(v)
		f.Mode = &m
	}
	if v, err := strconv.ParseInt(c.Query("subject_id"), 10, 64); err == nil {
		f.SubjectID = &v
	}
	if v, err := strconv.ParseInt(c.Query("chapter_id"), 10, 64); err == nil {
		f.ChapterID = &v
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	attempts, total, err := h.attemptService.List(c.Request.Context(), f, limit, offset,
		c.DefaultQuery("sort_by", "created_at"), c.DefaultQuery("sort_dir", "desc"))
	if err != nil {
		failFromService(c, err)
		return
	}
	response.SuccessWithPagination(c, http.StatusOK, gin.H{"attempts": attempts},
		&response.Pagination{Total: total, Limit: limit, Offset: offset})
}

// Get godoc
// GET /api/v1/attempts/:id
func (h *AttemptHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	attempt, err := h.attemptService.GetByID(c.Request.Context(), id, middleware.ScopeUserID(c))
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"attempt": attempt})
}

// GetQuestions godoc
// GET /api/v1/attempts/:id/questions
// Renders the frozen exam snapshot; option order comes from materialization.
func (h *AttemptHandler) GetQuestions(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	questions, err := h.attemptService.GetQuestions(c.Request.Context(), id, middleware.ScopeUserID(c))
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"questions": questions})
}

// Update godoc
// PATCH /api/v1/attempts/:id
// Administrative patch path; teacher or admin only.
func (h *AttemptHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req model.UpdateAttemptRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	attempt, err := h.attemptService.Update(c.Request.Context(), id, nil, &req)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"attempt": attempt})
}

// Delete godoc
// DELETE /api/v1/attempts/:id
func (h *AttemptHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.attemptService.Delete(c.Request.Context(), id, middleware.ScopeUserID(c)); err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// Grade godoc
// POST /api/v1/attempts/:id/grade
// Grades the attempt; repeat calls on a graded attempt are no-ops.
func (h *AttemptHandler) Grade(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	result, err := h.gradingService.GradeAttempt(c.Request.Context(), id, middleware.ScopeUserID(c), false)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// Regrade godoc
// POST /api/v1/attempts/:id/regrade
// Forces a full recomputation; teacher or admin only.
func (h *AttemptHandler) Regrade(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	result, err := h.gradingService.RegradeAttempt(c.Request.Context(), id)
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// GetResult godoc
// GET /api/v1/attempts/:id/result
func (h *AttemptHandler) GetResult(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	result, err := h.attemptService.GetResult(c.Request.Context(), id, middleware.ScopeUserID(c))
	if err != nil {
		failFromService(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}
