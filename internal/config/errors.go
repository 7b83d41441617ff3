package config

import "errors"

// ErrConfiguration matches every error returned by Resolve.
var ErrConfiguration = errors.New("configuration error")

// Kind classifies a configuration failure.
type Kind int

const (
	// KindMalformed covers unparsable URLs or files, missing sections and
	// missing required fields.
	KindMalformed Kind = iota
	// KindNoSource means neither a connection string nor a fallback file exists.
	KindNoSource
	// KindUnsupportedAdapter means the URL scheme or file adapter is not PostgreSQL.
	KindUnsupportedAdapter
)

func (k Kind) String() string {
	switch k {
	case KindNoSource:
		return "no connection source"
	case KindUnsupportedAdapter:
		return "unsupported adapter"
	default:
		return "malformed configuration"
	}
}

// Error is returned when connection parameters cannot be resolved. It is
// always fatal: no external command runs after it.
type Error struct {
	Kind   Kind
	Detail string
	Err    error
}

func newError(kind Kind, detail string, err error) *Error {
	return &Error{Kind: kind, Detail: detail, Err: err}
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is ErrConfiguration.
func (e *Error) Is(target error) bool { return target == ErrConfiguration }
