package goerror

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
)

var (
	// ErrNotFound indicates that the requested resource could not be found.
	ErrNotFound = errors.New("resource not found")

	// ErrConflict indicates that the request could not be completed due to a conflict.
	ErrConflict = errors.New("resource conflict")
)

// Kind is the closed set of error categories understood by the HTTP error handler.
type Kind int

const (
	// KindUnclassified is any error that carries no explicit status.
	KindUnclassified Kind = iota
	// KindApplication carries an explicit HTTP status and a user-facing message.
	KindApplication
	// KindValidation carries a list of field-level violation messages.
	KindValidation
)

// String returns the string representation of the error kind.
func (k Kind) String() string {
	switch k {
	case KindApplication:
		return "ERROR_KIND_APPLICATION"
	case KindValidation:
		return "ERROR_KIND_VALIDATION"
	case KindUnclassified:
		return "ERROR_KIND_UNCLASSIFIED"
	default:
		return "ERROR_KIND_UNKNOWN"
	}
}

// Code is a stable identifier used for mapping errors to HTTP status codes.
type Code int

const (
	// CodeInternal represents an internal or unspecified error.
	CodeInternal Code = iota
	// CodeInvalidFormat indicates invalid request format.
	CodeInvalidFormat
	// CodeInvalidInput indicates invalid request input.
	CodeInvalidInput
	// CodeNotFound indicates a missing resource.
	CodeNotFound
	// CodeConflict indicates a conflict (e.g., duplicate).
	CodeConflict
	// CodeTooManyRequest indicates rate limiting.
	CodeTooManyRequest
	// CodeUnauthorized indicates authentication failure.
	CodeUnauthorized
	// CodeForbidden indicates authorization failure.
	CodeForbidden
	// CodeTimeout indicates a timeout.
	CodeTimeout
)

// String returns the string representation of the error code.
func (c Code) String() string {
	switch c {
	case CodeInvalidFormat:
		return "ERROR_CODE_INVALID_FORMAT"
	case CodeInvalidInput:
		return "ERROR_CODE_INVALID_INPUT"
	case CodeNotFound:
		return "ERROR_CODE_NOT_FOUND"
	case CodeConflict:
		return "ERROR_CODE_CONFLICT"
	case CodeTooManyRequest:
		return "ERROR_CODE_TOO_MANY_REQUESTS"
	case CodeUnauthorized:
		return "ERROR_CODE_UNAUTHORIZED"
	case CodeForbidden:
		return "ERROR_CODE_FORBIDDEN"
	case CodeTimeout:
		return "ERROR_CODE_TIMEOUT"
	default:
		return "ERROR_CODE_INTERNAL"
	}
}

// StatusCode maps the error code to an HTTP status code.
func (c Code) StatusCode() int {
	switch c {
	case CodeInvalidFormat, CodeInvalidInput:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeTimeout:
		return http.StatusRequestTimeout
	case CodeTooManyRequest:
		return http.StatusTooManyRequests
	case CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error is a structured error used across the application.
//
// An application error carries an HTTP status and a single message, a
// validation error carries one message per violated field, and a server
// error only wraps the underlying cause.
type Error struct {
	err    error
	kind   Kind
	code   Code
	status int
	msg    string
	msgs   []string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.err != nil {
		return e.err.Error()
	}

	if e.msg != "" {
		return e.msg
	}

	if len(e.msgs) > 0 {
		return strings.Join(e.msgs, "; ")
	}

	switch e.kind {
	case KindValidation:
		return "Validation violation"
	case KindApplication:
		return "Logical business not meet with requirement"
	default:
		return "Internal error"
	}
}

// String returns a verbose representation of the error for debugging/logging.
func (e *Error) String() string {
	return fmt.Sprintf(
		"Error Kind: %s, Code: %s, Status: %d, Message: %s, Messages: %v, Underlying Error: %v",
		e.kind.String(),
		e.code.String(),
		e.status,
		e.msg,
		e.msgs,
		e.err,
	)
}

// Kind returns the error category.
func (e *Error) Kind() Kind {
	return e.kind
}

// Code returns the stable error code.
func (e *Error) Code() Code {
	return e.code
}

// Msg returns the user-facing message, if set.
func (e *Error) Msg() string {
	return e.msg
}

// Messages returns the field-level messages of a validation error.
func (e *Error) Messages() []string {
	return e.msgs
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.err
}

// StatusCode returns the HTTP status carried by the error.
func (e *Error) StatusCode() int {
	switch e.kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindApplication:
		if e.status != 0 {
			return e.status
		}
		return e.code.StatusCode()
	default:
		return http.StatusInternalServerError
	}
}

// NewApplication creates an application error with an explicit HTTP status and message.
func NewApplication(status int, msg string) error {
	return &Error{kind: KindApplication, code: codeFromStatus(status), status: status, msg: msg}
}

// NewBusiness creates an application error with the specified message and code.
func NewBusiness(msg string, code Code) error {
	return &Error{kind: KindApplication, code: code, status: code.StatusCode(), msg: msg}
}

// NewValidation creates a validation error listing every violation message.
func NewValidation(msgs ...string) error {
	return &Error{kind: KindValidation, code: CodeInvalidInput, msgs: msgs}
}

// NewInvalidInput turns a validator failure into a validation error.
//
// Errors exposing Messages() (like validator.V10ValidationError) keep their
// ordered message list; any other error contributes its text as one message.
func NewInvalidInput(err error) error {
	if err == nil {
		return NewValidation()
	}

	var withMessages interface{ Messages() []string }
	if errors.As(err, &withMessages) {
		return &Error{err: err, kind: KindValidation, code: CodeInvalidInput, msgs: withMessages.Messages()}
	}

	return &Error{err: err, kind: KindValidation, code: CodeInvalidInput, msgs: []string{err.Error()}}
}

// NewInvalidFormat creates an application error for an invalid request body format.
func NewInvalidFormat(msgs ...string) error {
	if len(msgs) == 0 {
		return NewBusiness("Invalid request body", CodeInvalidFormat)
	}
	return NewBusiness(msgs[0], CodeInvalidFormat)
}

// NewServer wraps an unexpected failure. It stays unclassified so the handler
// decides, by environment, whether its text may reach the client.
func NewServer(err error) error {
	if err == nil {
		err = errors.New("internal error")
	}
	return &Error{err: err, kind: KindUnclassified, code: CodeInternal}
}

// Classify returns the kind of err and the structured error when there is one.
func Classify(err error) (Kind, *Error) {
	var gerr *Error
	if !errors.As(err, &gerr) {
		return KindUnclassified, nil
	}
	return gerr.kind, gerr
}

// Name reports a short name for err, used when notifying operators.
//
// Errors may expose Name() string; otherwise the dynamic type of the root
// cause is used, e.g. "PgError" for *pgconn.PgError.
func Name(err error) string {
	if err == nil {
		return ""
	}

	var named interface{ Name() string }
	if errors.As(err, &named) {
		return named.Name()
	}

	root := err
	for {
		next := errors.Unwrap(root)
		if next == nil {
			break
		}
		root = next
	}

	t := reflect.TypeOf(root)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	// plain errors.New values have no meaningful type name
	if t.Name() == "" || t.PkgPath() == "errors" {
		return "Error"
	}
	return t.Name()
}

func codeFromStatus(status int) Code {
	switch status {
	case http.StatusBadRequest:
		return CodeInvalidFormat
	case http.StatusUnprocessableEntity:
		return CodeInvalidInput
	case http.StatusNotFound:
		return CodeNotFound
	case http.StatusConflict:
		return CodeConflict
	case http.StatusTooManyRequests:
		return CodeTooManyRequest
	case http.StatusUnauthorized:
		return CodeUnauthorized
	case http.StatusForbidden:
		return CodeForbidden
	case http.StatusRequestTimeout:
		return CodeTimeout
	default:
		return CodeInternal
	}
}
