package services

import "fmt"

// ErrorKind classifies every expected, recoverable failure of a core
// operation. Each rejected operation reports a kind distinguishable from
// every other; callers map kinds to transport-level responses.
type ErrorKind string

const (
	KindInvalidTransition       ErrorKind = "invalid_transition"
	KindDeadlineNotFuture       ErrorKind = "deadline_not_future"
	KindSubmissionNotFound      ErrorKind = "submission_not_found"
	KindInvalidSubmissionStatus ErrorKind = "invalid_submission_status"
	KindReviewerNotEligible     ErrorKind = "reviewer_not_eligible"
	KindAlreadyAssigned         ErrorKind = "already_assigned"
	KindAssignmentNotFound      ErrorKind = "assignment_not_found"
	KindNotEligible             ErrorKind = "not_eligible"
	KindIncompleteOrOutOfRange  ErrorKind = "incomplete_or_out_of_range"
	KindNoReviews               ErrorKind = "no_reviews"
	KindPersistence             ErrorKind = "persistence_error"
)

// DomainError is the structured result of a rejected core operation.
type DomainError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return string(e.Kind)
}

func (e *DomainError) Unwrap() error { return e.Err }

func domainErr(kind ErrorKind, format string, args ...interface{}) *DomainError {
	return &DomainError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// persistenceErr wraps a storage-layer failure as a single opaque kind. The
// unit of work is aborted by the caller; no partial writes survive.
func persistenceErr(err error) *DomainError {
	return &DomainError{Kind: KindPersistence, Message: "storage operation failed", Err: err}
}

// KindOf extracts the ErrorKind from err, or empty string if err is not a
// DomainError.
func KindOf(err error) ErrorKind {
	if de, ok := err.(*DomainError); ok {
		return de.Kind
	}
	return ""
}
