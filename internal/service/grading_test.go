package service

import (
	"testing"
	"time"

	"github.com/Tuyetzz/QuizWeb/internal/model"
)

func strPtr(s string) *string { return &s }

func optionSet(correct ...int64) []model.Option {
	isCorrect := make(map[int64]bool)
	for _, id := range correct {
		isCorrect[id] = true
	}
	opts := make([]model.Option, 0, 4)
	for id := int64(1); id <= 4; id++ {
		opts = append(opts, model.Option{ID: id, IsCorrect: isCorrect[id]})
	}
	return opts
}

func TestGradeSingle(t *testing.T) {
	tests := []struct {
		name     string
		options  []model.Option
		selected []int64
		correct  bool
		earned   float64
	}{
		{"first selected matches", optionSet(2), []int64{2}, true, 2},
		{"wrong option", optionSet(2), []int64{3}, false, 0},
		{"first of several selections counts", optionSet(2), []int64{2, 3}, true, 2},
		{"no correct option defined", optionSet(), []int64{1}, false, 0},
		{"two correct options defined", optionSet(1, 2), []int64{1}, false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := &model.Question{Type: model.QuestionTypeSingle, Points: 2, Options: tt.options}
			ans := &model.Answer{SelectedOptionIDs: tt.selected}
			got := gradeQuestion(q, ans, model.GradingPolicy{})
			if got.IsCorrect == nil || *got.IsCorrect != tt.correct {
				t.Errorf("IsCorrect = %v, want %v", got.IsCorrect, tt.correct)
			}
			if got.EarnedPoints != tt.earned {
				t.Errorf("EarnedPoints = %v, want %v", got.EarnedPoints, tt.earned)
			}
		})
	}
}

func TestGradeMultipleExact(t *testing.T) {
	q := &model.Question{Type: model.QuestionTypeMultiple, Points: 3, Options: optionSet(1, 2, 3)}

	tests := []struct {
		name     string
		selected []int64
		correct  bool
		earned   float64
	}{
		{"exact set", []int64{1, 2, 3}, true, 3},
		{"exact set out of order", []int64{3, 1, 2}, true, 3},
		{"missing one", []int64{1, 2}, false, 0},
		{"one wrong extra", []int64{1, 2, 3, 4}, false, 0},
		{"duplicates collapse", []int64{1, 1, 2, 3}, true, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ans := &model.Answer{SelectedOptionIDs: tt.selected}
			got := gradeQuestion(q, ans, model.GradingPolicy{})
			if got.IsCorrect == nil || *got.IsCorrect != tt.correct {
				t.Errorf("IsCorrect = %v, want %v", got.IsCorrect, tt.correct)
			}
			if got.EarnedPoints != tt.earned {
				t.Errorf("EarnedPoints = %v, want %v", got.EarnedPoints, tt.earned)
			}
		})
	}
}

func TestGradeMultiplePartial(t *testing.T) {
	q := &model.Question{Type: model.QuestionTypeMultiple, Points: 3, Options: optionSet(1, 2, 3)}
	policy := model.GradingPolicy{PartialCredit: true, PenaltyPerWrong: 0.5}

	tests := []struct {
		name     string
		selected []int64
		correct  bool
		earned   float64
	}{
		{"two hits one miss", []int64{1, 2, 4}, false, 1.5},
		{"all hits", []int64{1, 2, 3}, true, 3},
		{"penalty clamps at zero", []int64{4, 4, 4}, false, 0},
		{"single hit", []int64{3}, false, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ans := &model.Answer{SelectedOptionIDs: tt.selected}
			got := gradeQuestion(q, ans, policy)
			if got.IsCorrect == nil || *got.IsCorrect != tt.correct {
				t.Errorf("IsCorrect = %v, want %v", got.IsCorrect, tt.correct)
			}
			if got.EarnedPoints != tt.earned {
				t.Errorf("EarnedPoints = %v, want %v", got.EarnedPoints, tt.earned)
			}
		})
	}
}

func TestGradeFillBlank(t *testing.T) {
	tests := []struct {
		name     string
		expected string
		value    string
		policy   model.GradingPolicy
		correct  bool
	}{
		{"exact match", "ha noi", "ha noi", model.GradingPolicy{}, true},
		{"diacritics stripped", "Hà Nội", "ha noi", model.GradingPolicy{}, true},
		{"case and whitespace", "Paris", "  PARIS ", model.GradingPolicy{}, true},
		{"vietnamese d", "Đà Nẵng", "da nang", model.GradingPolicy{}, true},
		{"plain mismatch", "hanoi", "saigon", model.GradingPolicy{}, false},
		{"regex match", "^ha\\s*noi$", "Ha Noi", model.GradingPolicy{FillBlankMode: model.FillBlankModeRegex}, true},
		{"regex mismatch", "^ha\\s*noi$", "hannoi", model.GradingPolicy{FillBlankMode: model.FillBlankModeRegex}, false},
		{"regex sees raw value", "^\\s+x$", "  x", model.GradingPolicy{FillBlankMode: model.FillBlankModeRegex}, true},
		{"regex anchors see surrounding space", "^x$", " x ", model.GradingPolicy{FillBlankMode: model.FillBlankModeRegex}, false},
		{"bad regex falls back to exact", "ha(noi", "ha(noi", model.GradingPolicy{FillBlankMode: model.FillBlankModeRegex}, true},
		{"empty answer key never matches", "", "", model.GradingPolicy{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := &model.Question{Type: model.QuestionTypeFillBlank, Points: 1, Explanation: tt.expected}
			ans := &model.Answer{Value: strPtr(tt.value)}
			got := gradeFillBlank(q, ans, tt.policy)
			if got.IsCorrect == nil || *got.IsCorrect != tt.correct {
				t.Errorf("IsCorrect = %v, want %v", got.IsCorrect, tt.correct)
			}
		})
	}
}

func TestGradeBlankAnswer(t *testing.T) {
	q := &model.Question{Type: model.QuestionTypeSingle, Points: 2, Options: optionSet(1)}

	for _, ans := range []*model.Answer{
		nil,
		{},
		{Value: strPtr("   ")},
	} {
		got := gradeQuestion(q, ans, model.GradingPolicy{})
		if got.IsCorrect != nil {
			t.Errorf("blank answer: IsCorrect = %v, want nil", *got.IsCorrect)
		}
		if got.EarnedPoints != 0 {
			t.Errorf("blank answer: EarnedPoints = %v, want 0", got.EarnedPoints)
		}
	}
}

func TestAttemptExpired(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	practice := &model.Attempt{Mode: model.AttemptModePractice, StartedAt: &past}
	if attemptExpired(practice, now) {
		t.Error("attempt without expiry reported expired")
	}

	exam := &model.Attempt{Mode: model.AttemptModeExam, ExpiresAt: &future}
	if attemptExpired(exam, now) {
		t.Error("attempt before its deadline reported expired")
	}

	exam.ExpiresAt = &past
	if !attemptExpired(exam, now) {
		t.Error("attempt past its deadline not reported expired")
	}
}

func TestNormalizeText(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Hà Nội", "ha noi"},
		{"  Đà Nẵng  ", "da nang"},
		{"PLAIN", "plain"},
		{"café", "cafe"},
	}
	for _, tt := range tests {
		if got := normalizeText(tt.in); got != tt.want {
			t.Errorf("normalizeText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPaging(t *testing.T) {
	tests := []struct {
		idx, pageSize, page int
	}{
		{0, 5, 0},
		{4, 5, 0},
		{5, 5, 1},
		{12, 5, 2},
		{3, 0, 0},
	}
	for _, tt := range tests {
		if got := pageFor(tt.idx, tt.pageSize); got != tt.page {
			t.Errorf("pageFor(%d, %d) = %d, want %d", tt.idx, tt.pageSize, got, tt.page)
		}
	}

	pages := []struct {
		n, pageSize, want int
	}{
		{0, 5, 0},
		{1, 5, 1},
		{5, 5, 1},
		{6, 5, 2},
		{10, 0, 0},
	}
	for _, tt := range pages {
		if got := totalPages(tt.n, tt.pageSize); got != tt.want {
			t.Errorf("totalPages(%d, %d) = %d, want %d", tt.n, tt.pageSize, got, tt.want)
		}
	}
}
