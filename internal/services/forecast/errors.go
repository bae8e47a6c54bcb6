package forecast

import "fmt"

// Kind classifies forecast errors so callers can decide to skip, log or surface them.
type Kind string

const (
	KindInsufficientData Kind = "insufficient_data"
	KindInvalidParameter Kind = "invalid_parameter"
)

// Error is returned by every operation of this package.
type Error struct {
	Kind Kind
	Msg  string
}

var (
	ErrInsufficientData = &Error{Kind: KindInsufficientData}
	ErrInvalidParameter = &Error{Kind: KindInvalidParameter}
)

func (e *Error) Error() string {
	if e.Msg == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrInsufficientData) works
// for wrapped, detailed errors.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func insufficientData(got int) error {
	return &Error{Kind: KindInsufficientData, Msg: fmt.Sprintf("need at least %d observations, got %d", MinObservations, got)}
}

func invalidParameter(format string, a ...interface{}) error {
	return &Error{Kind: KindInvalidParameter, Msg: fmt.Sprintf(format, a...)}
}
