package digest

import "errors"

// Kind is a stable category for programmatic error handling.
type Kind string

const (
	// KindUnsupportedAlgorithm means the algorithm identifier is outside the
	// supported set. It is a caller configuration error.
	KindUnsupportedAlgorithm Kind = "UnsupportedAlgorithm"
	// KindBackendUnavailable means the algorithm is valid but no working
	// implementation is linked into this binary.
	KindBackendUnavailable Kind = "BackendUnavailable"
	// KindMalformed means a rendered digest could not be parsed.
	KindMalformed Kind = "Malformed"
	// KindInternal marks a provider that violated its contract.
	KindInternal Kind = "Internal"
)

// Error is the structured error returned by this package.
//
// Remediation, when set, tells an operator what to install or enable.
type Error struct {
	Kind        Kind
	RuleID      string
	Message     string
	Remediation string
	Cause       error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Remediation == "" {
		return e.Message
	}
	return e.Message + " (" + e.Remediation + ")"
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func newError(kind Kind, ruleID, msg string) error {
	return &Error{Kind: kind, RuleID: ruleID, Message: msg}
}

// IsKind reports whether err is (or wraps) a *Error with the given Kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}

// IsUnsupportedAlgorithm reports whether err is an unsupported-algorithm error.
func IsUnsupportedAlgorithm(err error) bool { return IsKind(err, KindUnsupportedAlgorithm) }

// IsBackendUnavailable reports whether err is a backend-unavailable error.
func IsBackendUnavailable(err error) bool { return IsKind(err, KindBackendUnavailable) }

// RuleID returns the stable RuleID for a structured error, or "" if unknown.
func RuleID(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return ""
	}
	return e.RuleID
}
