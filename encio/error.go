package encio

import (
	"errors"
	"fmt"
	"runtime"
)

// Error handling in cborfree is designed to provide an easy way to distinguish io errors from encoding and decoding errors,
// and to reuse a small set of common error kinds for as many errors as possible, with extra information wrapped as applicable.
// Panics are only used when there is a clear misuse of the library; programmer error.
// Errors are grouped into three wrappers; IOError, Error and IncompleteError, the idea being that
// IOError errors indicate a bad io.Reader/io.Writer and the caller should stop using it,
// Error errors indicate the value or the data cannot be encoded or decoded, and
// IncompleteError is not a failure at all in sequence mode; it says how many more bytes are needed.
//
// In this way, errors can be checked with
//
//	var incomplete *IncompleteError
//	switch {
//	case errors.As(err, &incomplete):
//		// read incomplete.Need more bytes and retry
//	case errors.Is(err, ErrMalformed):
//		// bad data
//	}
//
// These errors will be wrapped by IOError, Error or IncompleteError.
var (
	// ErrUnrecognized is returned when encoding meets a value it cannot represent.
	ErrUnrecognized = errors.New("unrecognized value")

	// ErrWideCharacter is returned when a string mode requires one byte per character,
	// but the string holds a character above U+00FF.
	ErrWideCharacter = errors.New("wide character")

	// ErrRecursion is returned when nesting exceeds the configured depth.
	ErrRecursion = errors.New("recursion limit exceeded")

	// ErrMalformed is returned when the read data is impossible to decode.
	ErrMalformed = errors.New("malformed")

	// ErrDanglingReference is returned when a shared reference names an index that was never registered.
	ErrDanglingReference = errors.New("dangling reference")

	// ErrIncomplete is matched by an IncompleteError when more input may still arrive.
	ErrIncomplete = errors.New("incomplete")

	// ErrTruncated is matched by an IncompleteError when the input is final.
	ErrTruncated = errors.New("truncated")

	// ErrBadConfig is returned when the config cannot be used.
	ErrBadConfig = errors.New("bad config")
)

// NewIOError returns an IOError wrapping err with the given message.
// err is typically the error returned from the io.Reader/io.Writer, or another error describing why the reader isn't operating correctly.
// message has extra information about the error; if empty, it is filled with the calling fucntions name.
func NewIOError(err error, message string) error {
	if err == nil {
		return NewError(errors.New("unknown error"), "trying to create new IOError", "encio.NewIOError")
	}
	if message == "" {
		message = "in " + GetCaller(1)
	}

	return IOError{
		Err:     err,
		Message: message,
	}
}

// IOError is returned when io errors occour.
type IOError struct {
	Err     error
	Message string
}

// Error implements error
func (e IOError) Error() string {
	if e.Message != "" {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// Unwrap implements errors's Unwrap()
func (e IOError) Unwrap() error {
	return e.Err
}

// NewError returns an Error wrapping err with message and caller.
// If caller is empty, it is automatically filled with the calling functions name.
func NewError(err error, message string, caller string) error {
	if caller == "" {
		caller = GetCaller(1)
	}

	return Error{
		Err:     err,
		Message: message,
		Caller:  caller,
	}
}

// Errorf is NewError with a formatted message and the caller filled in.
func Errorf(err error, format string, args ...interface{}) error {
	return Error{
		Err:     err,
		Message: fmt.Sprintf(format, args...),
		Caller:  GetCaller(1),
	}
}

// Error is returned when a value cannot be encoded, or data cannot be decoded.
type Error struct {
	Err     error
	Message string
	Caller  string
}

// Error implements error
func (e Error) Error() (str string) {
	if e.Caller != "" {
		str = e.Caller + ": "
	}

	str += e.Err.Error()

	if e.Message != "" {
		str += " (" + e.Message + ")"
	}

	return str
}

// Unwrap implements errors's Unwrap()
func (e Error) Unwrap() error {
	return e.Err
}

// IncompleteError reports that decoding ran off the end of the available input.
// Need is the number of bytes missing for the read in progress; it is exact when the
// shortfall is inside the last item of the buffer, and a lower bound otherwise.
type IncompleteError struct {
	Need int

	// Final is set when no more input will arrive, turning the signal into a failure.
	Final bool
}

// Error implements error
func (e *IncompleteError) Error() string {
	if e.Final {
		return fmt.Sprintf("%v: input ends %v bytes short", ErrTruncated, e.Need)
	}
	return fmt.Sprintf("%v: need %v more bytes", ErrIncomplete, e.Need)
}

// Unwrap implements errors's Unwrap()
func (e *IncompleteError) Unwrap() error {
	if e.Final {
		return ErrTruncated
	}
	return ErrIncomplete
}

// GetCaller returns the name of the calling function, skipping skip functions.
// i.e. 0 writes the calling function, 1 the function calling that etc...
func GetCaller(skip int) string {
	pcs := make([]uintptr, 1)
	n := runtime.Callers(2+skip, pcs)
	if n != 1 {
		return "Unknown Function"
	}

	frames := runtime.CallersFrames(pcs)
	frame, _ := frames.Next()
	return frame.Function
}
