package errors

import (
	"strings"
)

type Verbose interface {
	Verbose() string
}

// CUIError is an error to be shown to the command line user.
//
// Error() is the short message for normal output.
// Verbose() adds hints and the cause chain for --verbose output.
type CUIError interface {
	error
	Verbose
}

type cuierror struct {
	summary string
	hints   []string
	detail  string
	base    error
}

func (ce *cuierror) Unwrap() error {
	return ce.base
}

func (ce *cuierror) Error() string {
	return ce.summary
}

func (ce *cuierror) Verbose() string {
	message := []string{ce.summary}
	if ce.detail != "" {
		message = append(message, " ("+ce.detail+") ")
	}
	for _, h := range ce.hints {
		message = append(message, "hint: "+h)
	}

	switch base := ce.base.(type) {
	case nil:
		// no-op
	case Verbose:
		message = append(message, "caused by: ", base.Verbose())
	default:
		message = append(message, "caused by: ", base.Error())
	}
	return strings.Join(message, "\n")
}

type CuiErrorOption func(cerr *cuierror) *cuierror

func NewCuiError(
	summary string,
	options ...CuiErrorOption,
) CUIError {
	err := &cuierror{summary: summary}
	for _, o := range options {
		err = o(err)
	}
	return err
}

// WithDetail adds a parenthesized note shown in verbose output.
func WithDetail(detail string) CuiErrorOption {
	return func(cerr *cuierror) *cuierror {
		cerr.detail = detail
		return cerr
	}
}

// WithHint adds a "hint:" line telling the user what to do about it.
func WithHint(hint string) CuiErrorOption {
	return func(cerr *cuierror) *cuierror {
		cerr.hints = append(cerr.hints, hint)
		return cerr
	}
}

func WithCause(err error) CuiErrorOption {
	return func(cerr *cuierror) *cuierror {
		cerr.base = err
		return cerr
	}
}
