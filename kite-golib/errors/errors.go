package errors

import (
	stderrors "errors"
	"fmt"

	"github.com/pkg/errors"
)

// Errorf is re-exported from fmt
var Errorf = fmt.Errorf

// New is an alias to Errorf
var New = Errorf

// Cause is re-exported from github.com/pkg/errors
var Cause = errors.Cause

// As is re-exported from the standard library errors package
var As = stderrors.As

// Is is re-exported from the standard library errors package
var Is = stderrors.Is

// WrapfOrNil annotates err with a formatted message, returning nil when err is nil.
func WrapfOrNil(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return errors.WithMessage(err, fmt.Sprintf(format, args...))
}

// Wrapf is WrapfOrNil if err != nil, and Errorf otherwise: it never returns nil
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return Errorf(format, args...)
	}
	return WrapfOrNil(err, format, args...)
}
