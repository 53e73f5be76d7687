package service

import "errors"

// Domain Errors
var (
	ErrExamNotFound     = errors.New("exam not found")
	ErrAttemptNotFound  = errors.New("attempt not found")
	ErrSessionNotFound  = errors.New("session not found")
	ErrInvalidStartTime = errors.New("start time is in the future")
)
