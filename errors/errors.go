package errors

import (
	"errors"
	"net/http"
	"strings"
)

type ErrCode string

const (
	ErrCodeNotImplemented ErrCode = "NotImplemented"
	ErrCodeNotFound       ErrCode = "NotFound"
	ErrCodeServiceFailure ErrCode = "ServiceFailure"
	ErrCodeBadInput       ErrCode = "BadRequest"
	ErrCodeInvalid        ErrCode = "Invalid"
	ErrCodeExisted        ErrCode = "Existed"
)

type Err struct {
	Code  ErrCode
	msg   string
	cause error
}

func (e *Err) Error() string {
	return e.msg
}

// Trace returns the stacktrace associated with the error
func (e *Err) Trace() string {
	b := &strings.Builder{}
	b.WriteString(e.msg)
	depth := 1
	err := errors.Unwrap(e)
	for err != nil {
		b.WriteString("\n")
		b.WriteString(strings.Repeat("\t", depth))
		b.WriteString("Caused by: ")
		b.WriteString(err.Error())
		depth++
		err = errors.Unwrap(err)
	}
	return b.String()
}

func (e *Err) Unwrap() error {
	return e.cause
}

func (e *Err) WithCause(c error) *Err {
	e.cause = c
	return e
}

func (e *Err) WithMsg(m string) *Err {
	e.msg = m
	return e
}

// prefer appSpecificErr(msg) over appSpecificErr(msg, cause) since the latter's method signature has less
// readability - user needs to look up docs to know the 2nd param is for cause, while the first one can use
// WithCause() to be explicit
func NewServiceFailure(m string) *Err {
	return &Err{
		Code: ErrCodeServiceFailure,
		msg:  m,
	}
}

func NewNotFound(m string) *Err {
	return &Err{
		Code: ErrCodeNotFound,
		msg:  m,
	}
}

func NewBadInput(m string) *Err {
	return &Err{
		Code: ErrCodeBadInput,
		msg:  m,
	}
}

// NewInvalid marks input which fails validation rules, e.g. an unsupported
// document extension. It maps to 422 rather than 400 since the request itself
// is well-formed.
func NewInvalid(m string) *Err {
	return &Err{
		Code: ErrCodeInvalid,
		msg:  m,
	}
}

func NewNotImplemented() *Err {
	return &Err{
		Code: ErrCodeNotImplemented,
		msg:  "Not implemented",
	}
}

func NewExisted(m string) *Err {
	return &Err{
		Code: ErrCodeExisted,
		msg:  m,
	}
}

// StatusCode returns the http response status code associated with the Err value
func (e *Err) StatusCode() int {
	switch e.Code {
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeBadInput:
		return http.StatusBadRequest
	case ErrCodeInvalid:
		return http.StatusUnprocessableEntity
	case ErrCodeExisted:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
