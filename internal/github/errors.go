package github

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies diff source failures. The dispatcher branches on
// this: not-found and auth fail the task immediately, rate-limited and
// transient failures are retried with backoff.
type ErrorKind int

const (
	KindNotFound ErrorKind = iota
	KindAuth
	KindRateLimited
	KindTransient
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindAuth:
		return "auth"
	case KindRateLimited:
		return "rate_limited"
	default:
		return "transient"
	}
}

// SourceError is a classified failure from the diff source
type SourceError struct {
	Kind    ErrorKind
	Status  int
	Message string
}

func (e *SourceError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("github: %s (status %d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("github: %s: %s", e.Kind, e.Message)
}

// IsRetryable reports whether the error is a transient or rate-limit
// failure worth retrying
func IsRetryable(err error) bool {
	var se *SourceError
	if errors.As(err, &se) {
		return se.Kind == KindRateLimited || se.Kind == KindTransient
	}
	return false
}

// KindOf extracts the failure class, defaulting to transient for
// unclassified errors (network failures, timeouts)
func KindOf(err error) ErrorKind {
	var se *SourceError
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindTransient
}

func classifyStatus(status int, body string) *SourceError {
	msg := strings.TrimSpace(body)
	if len(msg) > 200 {
		msg = msg[:200]
	}
	switch {
	case status == 404:
		return &SourceError{Kind: KindNotFound, Status: status, Message: msg}
	case status == 401:
		return &SourceError{Kind: KindAuth, Status: status, Message: msg}
	case status == 403:
		// GitHub reports primary rate limiting as 403 with an
		// explanatory message, not 429
		if strings.Contains(strings.ToLower(msg), "rate limit") {
			return &SourceError{Kind: KindRateLimited, Status: status, Message: msg}
		}
		return &SourceError{Kind: KindAuth, Status: status, Message: msg}
	case status == 429:
		return &SourceError{Kind: KindRateLimited, Status: status, Message: msg}
	default:
		return &SourceError{Kind: KindTransient, Status: status, Message: msg}
	}
}
