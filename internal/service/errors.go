package service

import "errors"

// Domain Errors shared across services. Handlers map these onto response
// error codes.
var (
	ErrNotFound             = errors.New("resource not found")
	ErrForbidden            = errors.New("access denied")
	ErrEmailTaken           = errors.New("email already registered")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrAccountInactive      = errors.New("account is not active")
	ErrNoQuestions          = errors.New("no questions available in this chapter")
	ErrChapterNotInSubject  = errors.New("chapter does not belong to subject")
	ErrOffsetOutOfRange     = errors.New("range offset exceeds available questions")
	ErrInvalidQuestion      = errors.New("invalid question payload")
	ErrInvalidAttempt       = errors.New("invalid attempt payload")
	ErrIllegalTransition    = errors.New("illegal attempt status transition")
	ErrAttemptNotWritable   = errors.New("attempt is not accepting answers")
	ErrQuestionNotInAttempt = errors.New("question is not part of this attempt")
)
