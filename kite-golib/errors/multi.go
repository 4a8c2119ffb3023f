package errors

import (
	"strings"
)

// Errors is a non-empty list of errors. A nil Errors means no error occurred.
type Errors interface {
	error
	// Slice returns a copy of the underlying (non-nil) errors.
	Slice() []error
}

type errorList []error

func (l errorList) Slice() []error {
	return append([]error(nil), l...)
}

func (l errorList) Error() string {
	msgs := make([]string, 0, len(l))
	for _, err := range l {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "\n")
}

func flatten(err error) []error {
	if l, ok := err.(errorList); ok {
		return l
	}
	return []error{err}
}

// Combine combines e and f into a single error, dropping nils.
func Combine(e, f error) error {
	switch {
	case e == nil:
		return f
	case f == nil:
		return e
	}
	// always build a fresh list so neither input's backing array is shared
	var out errorList
	out = append(out, flatten(e)...)
	out = append(out, flatten(f)...)
	return out
}

// Defer folds the result of f into *err; use it to keep Close errors from deferred calls.
func Defer(err *error, f func() error) {
	*err = Combine(*err, f())
}
