package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind identifies one of the failure kinds a client call can end with.
// The set is closed.
type ErrorKind int

const (
	// KindRequestFailed transport failure or a non-2xx status
	KindRequestFailed ErrorKind = iota + 1
	// KindDeserializeFailed malformed body or a missing required field
	KindDeserializeFailed
	// KindAPIError the provider answered with its error envelope
	KindAPIError
	// KindNoResult zero rows where at least one is required
	KindNoResult
	// KindConversionFailed a decimal or date string could not be converted
	KindConversionFailed
)

func (k ErrorKind) String() string {
	switch k {
	case KindRequestFailed:
		return "request_failed"
	case KindDeserializeFailed:
		return "deserialize_failed"
	case KindAPIError:
		return "api_error"
	case KindNoResult:
		return "no_result"
	case KindConversionFailed:
		return "conversion_failed"
	}
	return fmt.Sprintf("unknown(%d)", int(k))
}

// Error a failure of one of the ErrorKind kinds with enough context to diagnose it.
type Error struct {
	Kind ErrorKind

	// Op the client operation, e.g. "currencies"
	Op string

	// Field and Index locate the offending wire field. Index is -1 when not tied to a record.
	Field string
	Index int

	// Value the raw text that failed
	Value string

	// Status the HTTP status of a non-2xx response
	Status int

	// Message the provider message or a description of the failure
	Message string

	// Err the transport or parser cause, if any
	Err error
}

// Sentinels matching any *Error of their kind with errors.Is.
var (
	ErrRequestFailed     = &Error{Kind: KindRequestFailed, Index: -1}
	ErrDeserializeFailed = &Error{Kind: KindDeserializeFailed, Index: -1}
	ErrAPIError          = &Error{Kind: KindAPIError, Index: -1}
	ErrNoResult          = &Error{Kind: KindNoResult, Index: -1}
	ErrConversionFailed  = &Error{Kind: KindConversionFailed, Index: -1}
)

func (e *Error) Error() string {
	var b strings.Builder
	switch e.Kind {
	case KindRequestFailed:
		b.WriteString("request to Banca d'Italia API failed")
	case KindDeserializeFailed:
		b.WriteString("deserializing response from Banca d'Italia API failed")
	case KindAPIError:
		b.WriteString("Banca d'Italia returned api error")
	case KindNoResult:
		b.WriteString("Banca d'Italia API returned an empty dataset")
	case KindConversionFailed:
		b.WriteString("conversion failed")
	default:
		b.WriteString(e.Kind.String())
	}
	if e.Op != "" {
		fmt.Fprintf(&b, " [%v]", e.Op)
	}
	if e.Field != "" {
		fmt.Fprintf(&b, " field %v", e.Field)
	}
	if e.Index >= 0 {
		fmt.Fprintf(&b, " record %d", e.Index)
	}
	if e.Status != 0 {
		fmt.Fprintf(&b, " status %d", e.Status)
	}
	if e.Value != "" || e.Kind == KindConversionFailed {
		fmt.Fprintf(&b, " value %q", e.Value)
	}
	if e.Message != "" {
		fmt.Fprintf(&b, ": %v", e.Message)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches a sentinel of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && isSentinel(t)
}

func isSentinel(e *Error) bool {
	switch e {
	case ErrRequestFailed, ErrDeserializeFailed, ErrAPIError, ErrNoResult, ErrConversionFailed:
		return true
	}
	return false
}

// KindOf returns the kind of err, or zero when err is not an *Error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// RequestFailed transport failure of op
func RequestFailed(op string, err error) *Error {
	return &Error{Kind: KindRequestFailed, Op: op, Index: -1, Err: err}
}

// BadStatus non-2xx response of op
func BadStatus(op string, status int, message string) *Error {
	return &Error{Kind: KindRequestFailed, Op: op, Index: -1, Status: status, Message: message}
}

// DeserializeFailed a malformed body, or field missing from record index (-1 for the whole body)
func DeserializeFailed(op, field string, index int, message string, err error) *Error {
	return &Error{Kind: KindDeserializeFailed, Op: op, Field: field, Index: index, Message: message, Err: err}
}

// APIError the provider message, verbatim
func APIError(op, message string) *Error {
	return &Error{Kind: KindAPIError, Op: op, Index: -1, Message: message}
}

// NoResult empty dataset for op
func NoResult(op string) *Error {
	return &Error{Kind: KindNoResult, Op: op, Index: -1}
}

// ConversionFailed raw could not be converted
func ConversionFailed(value, message string, err error) *Error {
	return &Error{Kind: KindConversionFailed, Index: -1, Value: value, Message: message, Err: err}
}

// At returns a copy of e located at field of record index of op.
func (e *Error) At(op, field string, index int) *Error {
	c := *e
	c.Op = op
	c.Field = field
	c.Index = index
	return &c
}
