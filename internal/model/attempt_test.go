package model

import "testing"

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to AttemptStatus
		ok       bool
	}{
		{AttemptStatusDraft, AttemptStatusInProgress, true},
		{AttemptStatusDraft, AttemptStatusDraft, true},
		{AttemptStatusInProgress, AttemptStatusSubmitted, true},
		{AttemptStatusInProgress, AttemptStatusExpired, true},
		{AttemptStatusInProgress, AttemptStatusGraded, true},
		{AttemptStatusSubmitted, AttemptStatusGraded, true},
		{AttemptStatusSubmitted, AttemptStatusInProgress, false},
		{AttemptStatusExpired, AttemptStatusInProgress, false},
		{AttemptStatusGraded, AttemptStatusGraded, true},
		{AttemptStatusGraded, AttemptStatusDraft, false},
		{AttemptStatusSubmitted, AttemptStatusDraft, false},
		{AttemptStatusDraft, AttemptStatusGraded, false},
	}
	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.ok {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.ok)
		}
	}
}

func TestValidAttemptStatus(t *testing.T) {
	for _, s := range []AttemptStatus{
		AttemptStatusDraft, AttemptStatusInProgress, AttemptStatusSubmitted,
		AttemptStatusExpired, AttemptStatusGraded,
	} {
		if !ValidAttemptStatus(s) {
			t.Errorf("ValidAttemptStatus(%s) = false", s)
		}
	}
	if ValidAttemptStatus("archived") {
		t.Error("ValidAttemptStatus accepted unknown status")
	}
}

func TestDecodeSettings(t *testing.T) {
	s, err := DecodeSettings(nil)
	if err != nil || s != nil {
		t.Fatalf("nil blob: got %v, %v", s, err)
	}

	raw := []byte(`{"exam":{"question_count":20,"page_size":5,"shuffle_questions":true},"grading":{"partial_credit":true,"penalty_per_wrong":0.25}}`)
	s, err = DecodeSettings(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if s.Exam == nil || s.Exam.QuestionCount != 20 || s.Exam.PageSize != 5 || !s.Exam.ShuffleQuestions {
		t.Errorf("exam settings not decoded: %+v", s.Exam)
	}
	if s.Practice != nil {
		t.Errorf("practice settings should be nil, got %+v", s.Practice)
	}
	if s.Grading == nil || !s.Grading.PartialCredit || s.Grading.PenaltyPerWrong != 0.25 {
		t.Errorf("grading policy not decoded: %+v", s.Grading)
	}

	if _, err := DecodeSettings([]byte(`{broken`)); err == nil {
		t.Error("malformed blob should fail")
	}
}

func TestResolvePolicy(t *testing.T) {
	a := &Attempt{}
	p := a.ResolvePolicy()
	if p.PartialCredit || p.PenaltyPerWrong != 0 || p.FillBlankMode != FillBlankModeExact {
		t.Errorf("default policy = %+v", p)
	}

	a = &Attempt{Settings: &AttemptSettings{Grading: &GradingPolicy{
		PartialCredit:   true,
		PenaltyPerWrong: -1,
	}}}
	p = a.ResolvePolicy()
	if !p.PartialCredit {
		t.Error("partial credit dropped")
	}
	if p.PenaltyPerWrong != 0 {
		t.Errorf("negative penalty not zeroed: %v", p.PenaltyPerWrong)
	}
	if p.FillBlankMode != FillBlankModeExact {
		t.Errorf("empty mode not defaulted: %q", p.FillBlankMode)
	}
}
