package repository

import "errors"

var (
	// ErrNotFound is returned when the requested row or key does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a unique constraint rejects an insert.
	ErrConflict = errors.New("conflict")
	// ErrCacheMiss is returned by cache lookups that found nothing.
	ErrCacheMiss = errors.New("cache miss")
	// ErrConcurrentUpdate is returned when an optimistic update kept losing races.
	ErrConcurrentUpdate = errors.New("concurrent update")
)
