package issue

import (
	"fmt"
	"strings"
	"time"
)

// ErrorType represents the type of error that occurred
type ErrorType int

const (
	// ErrorTypeValidation indicates invalid input (URL, filter bounds, limit)
	ErrorTypeValidation ErrorType = iota
	// ErrorTypeNotFound indicates the repository does not exist or is inaccessible
	ErrorTypeNotFound
	// ErrorTypePrivateRepository indicates the repository exists but is private
	ErrorTypePrivateRepository
	// ErrorTypeRateLimit indicates the GitHub API rate limit was exhausted
	ErrorTypeRateLimit
	// ErrorTypeNetwork indicates a network connectivity error
	ErrorTypeNetwork
	// ErrorTypeAPI indicates a general GitHub API error
	ErrorTypeAPI
	// ErrorTypeInternal indicates an unexpected failure inside the pipeline
	ErrorTypeInternal
)

// String returns a short name for the error type
func (t ErrorType) String() string {
	switch t {
	case ErrorTypeValidation:
		return "validation"
	case ErrorTypeNotFound:
		return "not_found"
	case ErrorTypePrivateRepository:
		return "private_repository"
	case ErrorTypeRateLimit:
		return "rate_limit"
	case ErrorTypeNetwork:
		return "network"
	case ErrorTypeAPI:
		return "api"
	default:
		return "internal"
	}
}

// AnalysisError is a structured error carrying a type, an optional
// suggestion for the user, and the pipeline phase at which it occurred.
// Dispatch on Type rather than on concrete error identity.
type AnalysisError struct {
	Type       ErrorType
	Message    string
	Cause      error
	Suggestion string
	Phase      string

	// Rate limit details, populated for ErrorTypeRateLimit
	RateRemaining int
	RateLimit     int
	RateReset     time.Time
}

// Error implements the error interface
func (e *AnalysisError) Error() string {
	var parts []string

	if e.Phase != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Phase))
	}

	if e.Message != "" {
		parts = append(parts, e.Message)
	}

	if e.Cause != nil {
		parts = append(parts, fmt.Sprintf("caused by: %v", e.Cause))
	}

	if e.Suggestion != "" {
		parts = append(parts, e.Suggestion)
	}

	return strings.Join(parts, ": ")
}

// Unwrap returns the underlying error
func (e *AnalysisError) Unwrap() error {
	return e.Cause
}

// Is checks if the error is of a specific type
func (e *AnalysisError) Is(target error) bool {
	t, ok := target.(*AnalysisError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// NewValidationError creates a new validation error
func NewValidationError(message string, cause error) *AnalysisError {
	return &AnalysisError{
		Type:       ErrorTypeValidation,
		Message:    message,
		Cause:      cause,
		Suggestion: "Check your input parameters and try again",
	}
}

// NewNotFoundError creates a new repository-not-found error
func NewNotFoundError(repository string) *AnalysisError {
	return &AnalysisError{
		Type:       ErrorTypeNotFound,
		Message:    fmt.Sprintf("repository %s not found or inaccessible", repository),
		Suggestion: "Verify the URL and ensure the repository is public",
	}
}

// NewPrivateRepositoryError creates an error for a private repository
func NewPrivateRepositoryError(repository string) *AnalysisError {
	return &AnalysisError{
		Type:       ErrorTypePrivateRepository,
		Message:    fmt.Sprintf("repository %s is private", repository),
		Suggestion: "Only public repositories are supported",
	}
}

// NewRateLimitError creates a rate limit error carrying quota details
func NewRateLimitError(remaining, limit int, reset time.Time) *AnalysisError {
	wait := time.Until(reset).Round(time.Second)
	if wait < 0 {
		wait = 0
	}
	return &AnalysisError{
		Type:          ErrorTypeRateLimit,
		Message:       "GitHub API rate limit exceeded",
		Suggestion:    fmt.Sprintf("Quota resets at %s (in %s); wait or use an authenticated token", reset.Format(time.RFC3339), wait),
		RateRemaining: remaining,
		RateLimit:     limit,
		RateReset:     reset,
	}
}

// NewNetworkError creates a new network error
func NewNetworkError(message string, cause error) *AnalysisError {
	return &AnalysisError{
		Type:       ErrorTypeNetwork,
		Message:    message,
		Cause:      cause,
		Suggestion: "Check your internet connection and try again",
	}
}

// NewAPIError creates a new general API error
func NewAPIError(message string, cause error) *AnalysisError {
	return &AnalysisError{
		Type:       ErrorTypeAPI,
		Message:    message,
		Cause:      cause,
		Suggestion: "Check GitHub status at https://www.githubstatus.com/ and try again",
	}
}

// NewInternalError creates an error for unexpected failures
func NewInternalError(message string, cause error) *AnalysisError {
	return &AnalysisError{
		Type:    ErrorTypeInternal,
		Message: message,
		Cause:   cause,
	}
}

// WrapError wraps an existing error with additional context. The type and
// suggestion of an AnalysisError cause are preserved.
func WrapError(err error, message string) *AnalysisError {
	if analysisErr, ok := err.(*AnalysisError); ok {
		return &AnalysisError{
			Type:          analysisErr.Type,
			Message:       message,
			Cause:         err,
			Suggestion:    analysisErr.Suggestion,
			Phase:         analysisErr.Phase,
			RateRemaining: analysisErr.RateRemaining,
			RateLimit:     analysisErr.RateLimit,
			RateReset:     analysisErr.RateReset,
		}
	}

	return NewAPIError(message, err)
}

// WithPhase returns a copy of the error tagged with the pipeline phase at
// which it occurred. Used for diagnostics only.
func (e *AnalysisError) WithPhase(phase string) *AnalysisError {
	clone := *e
	clone.Phase = phase
	return &clone
}
