package yangcontext

import "fmt"

// ErrCode classifies the failures of the context and the LYB codec.
type ErrCode int

const (
	// ESys - a filesystem or OS call failed.
	ESys ErrCode = iota + 1
	// EInval - the request is inconsistent with the context.
	EInval
	// EMem - an allocation failed.
	EMem
	// EValid - data tree validation failed.
	EValid
	// EInt - an internal invariant was violated.
	EInt
)

func (ec ErrCode) String() string {
	switch ec {
	case ESys:
		return "system-error"
	case EInval:
		return "invalid-argument"
	case EMem:
		return "out-of-memory"
	case EValid:
		return "validation-failed"
	case EInt:
		return "internal-error"
	default:
		return "unknown"
	}
}

// Error() lets an ErrCode be used as an errors.Is() target.
func (ec ErrCode) Error() string { return ec.String() }

// Error is an error record of the context. The schema path and the data path
// are filled when the failure is bound to a node.
type Error struct {
	Code       ErrCode
	Message    string
	SchemaPath string
	DataPath   string
	wrapped    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := "[" + e.Code.String() + "] " + e.Message
	if e.SchemaPath != "" {
		msg += " (schema " + e.SchemaPath + ")"
	}
	if e.DataPath != "" {
		msg += " (data " + e.DataPath + ")"
	}
	return msg
}

func (e *Error) Unwrap() error { return e.wrapped }

// Is() matches an *Error against its ErrCode.
func (e *Error) Is(target error) bool {
	if ec, ok := target.(ErrCode); ok {
		return e.Code == ec
	}
	return false
}

// Errorf creates a new error record with the code.
func Errorf(code ErrCode, format string, arg ...interface{}) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, arg...),
	}
}

// WrapErrorf keeps err as the cause of the new error record.
func WrapErrorf(code ErrCode, err error, format string, arg ...interface{}) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, arg...) + ": " + err.Error(),
		wrapped: err,
	}
}

func (e *Error) atSchema(path string) *Error {
	e.SchemaPath = path
	return e
}

func (e *Error) atData(path string) *Error {
	e.DataPath = path
	return e
}

// record() appends the error to the context error list and returns it.
func (c *Context) record(e *Error) *Error {
	if c != nil && e != nil {
		c.errs = append(c.errs, e)
	}
	return e
}

// Errors returns the error records collected by the context so far.
func (c *Context) Errors() []*Error { return c.errs }

// ClearErrors drops all collected error records.
func (c *Context) ClearErrors() { c.errs = nil }
