package canon

import "errors"

// Kind is a stable category for programmatic error handling.
//
// Callers should branch on Kind/RuleID rather than matching error strings.
type Kind string

const (
	// KindEncoding means the record cannot be canonicalized: a non-finite
	// number, an unrepresentable type, invalid UTF-8 or a cyclic reference.
	KindEncoding Kind = "Encoding"
	// KindDecode means the input bytes are not a single well-formed JSON value
	// with unique object keys.
	KindDecode Kind = "Decode"
)

// Error is the structured error returned by this package.
//
// RuleID names the violated rule (e.g. CANON-NUM-001). Path is the location
// of the offending value in JSONPath-like notation ("$.items[2].price"), or
// empty when the failure is not tied to a value.
type Error struct {
	Kind    Kind
	RuleID  string
	Path    string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Path == "" {
		return e.Message
	}
	return e.Message + " at " + e.Path
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func newError(kind Kind, ruleID, path, msg string) error {
	return &Error{Kind: kind, RuleID: ruleID, Path: path, Message: msg}
}

func wrapError(kind Kind, ruleID, path, msg string, cause error) error {
	if cause == nil {
		return newError(kind, ruleID, path, msg)
	}
	return &Error{Kind: kind, RuleID: ruleID, Path: path, Message: msg, Cause: cause}
}

// IsKind reports whether err is (or wraps) a *Error with the given Kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}

// IsEncoding reports whether err is an encoding failure.
func IsEncoding(err error) bool { return IsKind(err, KindEncoding) }

// RuleID returns the stable RuleID for a structured error, or "" if unknown.
func RuleID(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return ""
	}
	return e.RuleID
}
