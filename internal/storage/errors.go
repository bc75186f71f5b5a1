package storage

import (
	"errors"
	"fmt"
)

// Kind classifies a storage failure
type Kind int

const (
	// KindUnknown is never produced by the service; it is what KindOf
	// reports for errors that did not originate here.
	KindUnknown Kind = iota
	KindPathViolation
	KindNotFound
	KindNotADirectory
	KindIsADirectory
	KindDirectoryNotEmpty
	KindIOFailure
)

var kindNames = map[Kind]string{
	KindUnknown:           "Unknown",
	KindPathViolation:     "PathViolation",
	KindNotFound:          "NotFound",
	KindNotADirectory:     "NotADirectory",
	KindIsADirectory:      "IsADirectory",
	KindDirectoryNotEmpty: "DirectoryNotEmpty",
	KindIOFailure:         "IOFailure",
}

// String returns the string representation of the kind
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// ParseKind converts a kind name back into a Kind.
// Unrecognized names yield KindUnknown.
func ParseKind(name string) Kind {
	for k, n := range kindNames {
		if n == name {
			return k
		}
	}
	return KindUnknown
}

// Sentinels for errors.Is matching against any *Error of the same kind.
var (
	ErrPathViolation     = &Error{Kind: KindPathViolation}
	ErrNotFound          = &Error{Kind: KindNotFound}
	ErrNotADirectory     = &Error{Kind: KindNotADirectory}
	ErrIsADirectory      = &Error{Kind: KindIsADirectory}
	ErrDirectoryNotEmpty = &Error{Kind: KindDirectoryNotEmpty}
	ErrIOFailure         = &Error{Kind: KindIOFailure}
)

// Error is the single error type returned by Service operations
type Error struct {
	Kind Kind
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Path != "" {
		msg += fmt.Sprintf(" %q", e.Path)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports kind equality so callers can match on the exported sentinels.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Op == "" || t.Op == e.Op) && (t.Path == "" || t.Path == e.Path)
}

// KindOf returns the Kind carried by err, or KindUnknown.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindUnknown
}

func newError(kind Kind, op, path string, err error) *Error {
	return &Error{Kind: kind, Op: op, Path: path, Err: err}
}
