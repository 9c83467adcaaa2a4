package extract

import (
	"errors"
	"fmt"
)

// FailureKind is the machine-readable classification of a pipeline failure.
type FailureKind string

const (
	// KindInvalidInput covers rejections before any extraction work: missing
	// file, unsupported type, empty or out-of-bounds size.
	KindInvalidInput FailureKind = "invalid_input"

	// KindNoText means no text was recoverable from the document after all
	// fallbacks.
	KindNoText FailureKind = "no_text"

	// KindCollaborator means an external OCR or LLM call failed.
	KindCollaborator FailureKind = "collaborator"

	// KindParse means a collaborator responded but its output contained no
	// usable value.
	KindParse FailureKind = "parse"
)

// Error is the structured failure value every pipeline dead-end terminates
// in. Local, recoverable conditions are handled internally and never surface
// as one of these.
type Error struct {
	Kind    FailureKind
	Message string
	// Hint is an optional user-facing remediation suggestion.
	Hint string
	// Err is the wrapped cause, if any.
	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// invalidInput builds a KindInvalidInput error.
func invalidInput(msg string) *Error {
	return &Error{Kind: KindInvalidInput, Message: msg}
}

// noText builds a KindNoText error with the standard remediation hint.
func noText(msg string) *Error {
	return &Error{
		Kind:    KindNoText,
		Message: msg,
		Hint:    "retry with a clearer scan or a smaller file",
	}
}

// collaboratorErr wraps a failed external call.
func collaboratorErr(service string, err error) *Error {
	return &Error{
		Kind:    KindCollaborator,
		Message: fmt.Sprintf("%s call failed", service),
		Err:     err,
	}
}

// parseErr builds a KindParse error.
func parseErr(msg string, cause error) *Error {
	return &Error{Kind: KindParse, Message: msg, Err: cause}
}

// KindOf returns the failure kind of err, or an empty kind when err is not a
// pipeline error.
func KindOf(err error) FailureKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// HintOf returns the remediation hint of err, if any.
func HintOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Hint
	}
	return ""
}
