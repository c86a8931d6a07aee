package entity

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound means user input did not resolve to a canonical entity.
	ErrNotFound = errors.New("entity not found")
	// ErrUpstreamFetch means the article source failed.
	ErrUpstreamFetch = errors.New("upstream fetch failed")
	// ErrInvalidInput covers missing or malformed request parameters.
	ErrInvalidInput = errors.New("invalid input")
)

// NotFoundError reports an unresolvable name with optional close matches.
type NotFoundError struct {
	Input       string
	Type        Type
	Suggestions []string
}

func (e *NotFoundError) Error() string {
	msg := fmt.Sprintf("%s %q not found", e.Type, e.Input)
	if len(e.Suggestions) > 0 {
		msg += "; did you mean " + strings.Join(e.Suggestions, ", ") + "?"
	}
	return msg
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// UpstreamError wraps an article source failure without interpreting it.
type UpstreamError struct {
	Source string
	Err    error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("fetch from %s: %v", e.Source, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

func (e *UpstreamError) Is(target error) bool { return target == ErrUpstreamFetch }
