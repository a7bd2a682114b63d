package apperr

import (
	"github.com/cockroachdb/errors"
)

// Kind classifies an error into one of the outcome categories the delivery
// layer maps to responses. Domain kinds are deterministic outcomes of input
// and current state; KindInfra marks infrastructure faults.
type Kind string

const (
	KindNotFound     Kind = "not_found"
	KindUnavailable  Kind = "unavailable"
	KindForbidden    Kind = "forbidden"
	KindValidation   Kind = "validation"
	KindConflict     Kind = "conflict"
	KindInvalidState Kind = "invalid_state"
	KindInfra        Kind = "infra"
)

// Reason constants carried alongside a kind.
const (
	ReasonPastDate        = "past_date"
	ReasonInvalidDuration = "invalid_duration"
	ReasonSlotTaken       = "slot_taken"
	ReasonNotAllowed      = "transition_not_allowed"
	ReasonTimeout         = "timeout"
)

// Error is a classified domain or infrastructure error. Entity names the
// offending entity ("patient", "doctor", "appointment") and Reason refines
// the kind where one kind covers several causes.
type Error struct {
	Kind   Kind
	Entity string
	Reason string
	msg    string
	cause  error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.msg + ": " + e.cause.Error()
	}
	return e.msg
}

func (e *Error) Unwrap() error {
	return e.cause
}

// New creates a classified error with no underlying cause.
func New(kind Kind, entity, reason, msg string) *Error {
	return &Error{Kind: kind, Entity: entity, Reason: reason, msg: msg}
}

// Infra wraps an unexpected fault (DB, cache, network) with a stack trace.
func Infra(cause error, msg string) *Error {
	return &Error{Kind: KindInfra, Reason: ReasonTimeout, msg: msg, cause: errors.WithStack(cause)}
}

// KindOf returns the kind of err, or KindInfra for unclassified errors.
// A nil err has no kind and returns the empty string.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInfra
}

// IsKind reports whether err carries the given kind anywhere in its chain.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// IsDomain reports whether err is a deterministic domain outcome, as opposed
// to an infrastructure fault. Domain errors must never be retried.
func IsDomain(err error) bool {
	k := KindOf(err)
	return k != "" && k != KindInfra
}
