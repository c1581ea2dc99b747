package service

import (
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/Tuyetzz/QuizWeb/internal/model"
	"golang.org/x/text/unicode/norm"
)

// questionGrade is the per-question grading outcome. IsCorrect stays nil for
// blank answers.
type questionGrade struct {
	IsCorrect    *bool
	EarnedPoints float64
}

func boolPtr(b bool) *bool { return &b }

// gradeQuestion dispatches on question type. A blank answer (no selections,
// no text) earns nothing and keeps IsCorrect nil regardless of type.
func gradeQuestion(q *model.Question, ans *model.Answer, policy model.GradingPolicy) questionGrade {
	if isBlankAnswer(ans) {
		return questionGrade{}
	}
	switch q.Type {
	case model.QuestionTypeSingle, model.QuestionTypeTrueFalse:
		return gradeSingle(q, ans)
	case model.QuestionTypeMultiple:
		return gradeMultiple(q, ans, policy)
	case model.QuestionTypeFillBlank:
		return gradeFillBlank(q, ans, policy)
	}
	return questionGrade{IsCorrect: boolPtr(false)}
}

func isBlankAnswer(ans *model.Answer) bool {
	if ans == nil {
		return true
	}
	hasText := ans.Value != nil && strings.TrimSpace(*ans.Value) != ""
	return len(ans.SelectedOptionIDs) == 0 && !hasText
}

// gradeSingle awards full points when the first selection matches the sole
// correct option. A question with zero or several correct options can never
// be answered correctly in this mode.
func gradeSingle(q *model.Question, ans *model.Answer) questionGrade {
	var correctID int64
	var correctCount int
	for _, opt := range q.Options {
		if opt.IsCorrect {
			correctID = opt.ID
			correctCount++
		}
	}
	if correctCount == 1 && len(ans.SelectedOptionIDs) > 0 && ans.SelectedOptionIDs[0] == correctID {
		return questionGrade{IsCorrect: boolPtr(true), EarnedPoints: q.Points}
	}
	return questionGrade{IsCorrect: boolPtr(false)}
}

// gradeMultiple compares the selected set against the correct set. Without
// partial credit it is all-or-nothing on exact set equality; with it, each
// correct selection earns a proportional share and each wrong selection costs
// the configured penalty, the total clamped to [0, points], and IsCorrect is
// true iff the clamped total reaches full points.
func gradeMultiple(q *model.Question, ans *model.Answer, policy model.GradingPolicy) questionGrade {
	correct := make(map[int64]bool)
	for _, opt := range q.Options {
		if opt.IsCorrect {
			correct[opt.ID] = true
		}
	}

	var hits, misses int
	seen := make(map[int64]bool)
	for _, id := range ans.SelectedOptionIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		if correct[id] {
			hits++
		} else {
			misses++
		}
	}

	exact := misses == 0 && hits == len(correct) && len(correct) > 0

	if !policy.PartialCredit {
		if exact {
			return questionGrade{IsCorrect: boolPtr(true), EarnedPoints: q.Points}
		}
		return questionGrade{IsCorrect: boolPtr(false)}
	}

	var earned float64
	if len(correct) > 0 {
		earned = q.Points * float64(hits) / float64(len(correct))
	}
	earned -= policy.PenaltyPerWrong * float64(misses)
	if earned < 0 {
		earned = 0
	}
	if earned > q.Points {
		earned = q.Points
	}
	return questionGrade{IsCorrect: boolPtr(earned == q.Points && q.Points > 0), EarnedPoints: earned}
}

// gradeFillBlank compares the typed value against the expected answer stored
// in the question's explanation field. In regex mode the expected answer is
// compiled as a case-insensitive pattern; if it does not compile, comparison
// falls back to exact matching.
func gradeFillBlank(q *model.Question, ans *model.Answer, policy model.GradingPolicy) questionGrade {
	var value string
	if ans.Value != nil {
		value = *ans.Value
	}
	// An empty answer key or an empty submission never matches.
	if strings.TrimSpace(q.Explanation) == "" || strings.TrimSpace(value) == "" {
		return questionGrade{IsCorrect: boolPtr(false)}
	}

	if policy.FillBlankMode == model.FillBlankModeRegex {
		re, err := regexp.Compile("(?i)" + q.Explanation)
		if err == nil {
			// The pattern sees the submitted value untouched; only the
			// author-side emptiness guard above trims.
			if re.MatchString(value) {
				return questionGrade{IsCorrect: boolPtr(true), EarnedPoints: q.Points}
			}
			return questionGrade{IsCorrect: boolPtr(false)}
		}
	}

	if normalizeText(value) == normalizeText(q.Explanation) {
		return questionGrade{IsCorrect: boolPtr(true), EarnedPoints: q.Points}
	}
	return questionGrade{IsCorrect: boolPtr(false)}
}

// normalizeText lowers, trims and strips diacritics so "Hà Nội" and "ha noi"
// compare equal. The Vietnamese đ/Đ do not decompose under NFD and are mapped
// explicitly.
func normalizeText(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	decomposed := norm.NFD.String(s)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		switch r {
		case 'đ':
			b.WriteRune('d')
		case 'Đ':
			b.WriteRune('D')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// attemptExpired reports whether the attempt's deadline has passed. Attempts
// without an expiry (practice) never expire.
func attemptExpired(a *model.Attempt, now time.Time) bool {
	return a.ExpiresAt != nil && now.After(*a.ExpiresAt)
}

// pageFor assigns a question at position idx to a page of the given size.
func pageFor(idx, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	return idx / pageSize
}

// totalPages is the page count needed to hold n questions.
func totalPages(n, pageSize int) int {
	if pageSize <= 0 || n <= 0 {
		return 0
	}
	return (n + pageSize - 1) / pageSize
}
