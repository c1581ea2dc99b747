package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Tuyetzz/QuizWeb/internal/response"
	"github.com/Tuyetzz/QuizWeb/internal/service"
	"github.com/gin-gonic/gin"
)

// parseIDParam reads a positive int64 path parameter, failing the request
// with INVALID_ID when malformed.
func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id < 1 {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return 0, false
	}
	return id, true
}

// failFromService maps service sentinel errors onto HTTP responses. Unknown
// errors become a 500 without leaking detail.
func failFromService(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrForbidden):
		response.Fail(c, http.StatusForbidden, response.ErrForbidden)
	case errors.Is(err, service.ErrEmailTaken):
		response.Fail(c, http.StatusConflict, response.ErrEmailTaken)
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
	case errors.Is(err, service.ErrAccountInactive):
		response.Fail(c, http.StatusForbidden, response.ErrAccountInactive)
	case errors.Is(err, service.ErrNoQuestions):
		response.Fail(c, http.StatusUnprocessableEntity, response.ErrNoQuestions)
	case errors.Is(err, service.ErrChapterNotInSubject):
		response.Fail(c, http.StatusUnprocessableEntity, response.ErrChapterMismatch)
	case errors.Is(err, service.ErrOffsetOutOfRange):
		response.Fail(c, http.StatusUnprocessableEntity, response.ErrOffsetOutOfRange)
	case errors.Is(err, service.ErrIllegalTransition):
		response.FailWithMessage(c, http.StatusConflict, response.ErrIllegalTransition, err.Error())
	case errors.Is(err, service.ErrAttemptNotWritable):
		response.Fail(c, http.StatusConflict, response.ErrAttemptNotWritable)
	case errors.Is(err, service.ErrInvalidQuestion):
		response.FailWithMessage(c, http.StatusUnprocessableEntity, response.ErrValidation, err.Error())
	case errors.Is(err, service.ErrInvalidAttempt):
		response.FailWithMessage(c, http.StatusUnprocessableEntity, response.ErrValidation, err.Error())
	case errors.Is(err, service.ErrQuestionNotInAttempt):
		response.FailWithMessage(c, http.StatusUnprocessableEntity, response.ErrValidation, err.Error())
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
