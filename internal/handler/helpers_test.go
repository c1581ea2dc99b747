package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Tuyetzz/QuizWeb/internal/response"
	"github.com/Tuyetzz/QuizWeb/internal/service"
	"github.com/gin-gonic/gin"
)

func failStatusOf(t *testing.T, err error) (int, response.Response) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	failFromService(c, err)

	var body response.Response
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return rec.Code, body
}

func TestFailFromService(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", service.ErrNotFound, http.StatusNotFound},
		{"forbidden", service.ErrForbidden, http.StatusForbidden},
		{"email taken", service.ErrEmailTaken, http.StatusConflict},
		{"illegal transition", service.ErrIllegalTransition, http.StatusConflict},
		{"attempt not writable", service.ErrAttemptNotWritable, http.StatusConflict},
		{"no questions", service.ErrNoQuestions, http.StatusUnprocessableEntity},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, _ := failStatusOf(t, tt.err)
			if status != tt.status {
				t.Errorf("status = %d, want %d", status, tt.status)
			}
		})
	}
}

func TestFailFromServiceValidationDetail(t *testing.T) {
	// Wrapped validation sentinels surface their message as a 422, never 500.
	for _, err := range []error{
		fmt.Errorf("%w: time_spent_seconds must not be negative", service.ErrInvalidAttempt),
		fmt.Errorf("%w: single question needs exactly one correct option", service.ErrInvalidQuestion),
	} {
		status, body := failStatusOf(t, err)
		if status != http.StatusUnprocessableEntity {
			t.Errorf("status = %d, want %d for %v", status, http.StatusUnprocessableEntity, err)
		}
		if body.Error == nil || body.Error.Message == "" {
			t.Errorf("expected structured error message for %v, got %+v", err, body.Error)
		}
	}
}
