// Package errs holds common error objects used across the service and
// storage layers built around the grammar-constrained engine. It contains
// the Error type, which can be created with one or more "cause" errors:
// calling errors.Is on an Error with any of its causes as the target
// returns true.
package errs

import "errors"

var (
	ErrNotFound       = errors.New("the requested entity could not be found")
	ErrAlreadyExists  = errors.New("resource with same identifying information already exists")
	ErrBadArgument    = errors.New("one or more of the arguments is invalid")
	ErrPermissions    = errors.New("you don't have permission to do that")
	ErrBadCredentials = errors.New("the supplied username/password combination is incorrect")
	ErrStorage        = errors.New("an error occurred with the backing store")
)

// Error is a typed error returned by the profiles store implementations as
// their error value; the httpapi package maps its causes to HTTP statuses. It carries a message and one or more causes, and is
// compatible with errors.Is: calling errors.Is on an Error along with any
// value it holds as a cause returns true.
//
// Error should not be used directly; call New or WrapStorage to create one.
type Error struct {
	msg   string
	cause []error
}

// Error returns the message defined for e, concatenated with the result of
// calling Error() on its first cause if one is defined.
func (e Error) Error() string {
	if e.msg == "" && e.cause != nil {
		return e.cause[0].Error()
	}
	if e.cause != nil {
		return e.msg + ": " + e.cause[0].Error()
	}
	return e.msg
}

// Unwrap returns the causes of e, or nil if none were defined.
//
// This is only consulted by errors.Is on Go 1.20 and later; Is below covers
// the same cases for 1.19.
func (e Error) Unwrap() []error {
	if len(e.cause) > 0 {
		return e.cause
	}
	return nil
}

// Is returns whether e either is itself the given target error, or one of
// its causes is.
func (e Error) Is(target error) bool {
	if errTarget, ok := target.(Error); ok {
		return e.msg == errTarget.msg && len(e.cause) == len(errTarget.cause)
	}
	for _, c := range e.cause {
		if c == target {
			return true
		}
	}
	return false
}

// New creates a new Error with the given message and causes. Causes are not
// required, but each makes errors.Is(err, cause) true.
func New(msg string, causes ...error) Error {
	err := Error{msg: msg}
	if len(causes) > 0 {
		err.cause = make([]error, len(causes))
		copy(err.cause, causes)
	}
	return err
}

// WrapStorage creates an Error wrapping err as a cause along with
// ErrStorage, for failures originating in a profiles store.
func WrapStorage(msg string, err error) Error {
	return Error{msg: msg, cause: []error{err, ErrStorage}}
}
