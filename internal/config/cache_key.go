package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// SessionKey returns the cache key holding an in-progress exam session
func (r *CacheKeyStruct) SessionKey(sessionID string) string {
	return fmt.Sprintf("session:%s", sessionID)
}

// SessionDeadlinesKey returns the sorted set of timed session deadlines (score = unix seconds)
func (r *CacheKeyStruct) SessionDeadlinesKey() string {
	return "sessions:deadlines"
}

// ExamPayloadKey returns the cache key for a canonical exam (questions + answer key)
func (r *CacheKeyStruct) ExamPayloadKey(examID string) string {
	return fmt.Sprintf("exam:%s:payload", examID)
}

// ExamListKey returns the cache key for the exam catalog
func (r *CacheKeyStruct) ExamListKey() string {
	return "exams:list"
}

// AttemptResultsKey returns the cache key for a graded attempt's results
func (r *CacheKeyStruct) AttemptResultsKey(attemptID string) string {
	return fmt.Sprintf("attempt:%s:results", attemptID)
}

var CacheKey = NewCacheKeyStruct()
