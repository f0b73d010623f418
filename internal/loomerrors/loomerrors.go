// Package loomerrors defines the error taxonomy used across loom: a
// fatal-at-load ParseError and a fatal-at-runtime InvariantError. Ordinary
// match failure is never represented as an error value (see
// internal/loom's match and engine files); only these two kinds ever
// escape to a caller.
package loomerrors

import "fmt"

// loadError is a failure to interpret program text at construction time. It
// carries both a human-readable message suitable for display to an operator
// and the more detailed technical message returned by Error().
type loadError struct {
	msg   string
	human string
	wrap  error
}

func (e *loadError) Error() string {
	return e.msg
}

// Message returns the human-readable description of the error.
func (e *loadError) Message() string {
	return e.human
}

func (e *loadError) Unwrap() error {
	return e.wrap
}

// Load returns a new error with both a message for display and a technical
// description.
func Load(human, technical string) error {
	if technical == "" {
		technical = fmt.Sprintf("got ParseError(%q)", human)
	}
	return &loadError{msg: technical, human: human}
}

// Loadf returns a new error whose display message is formatted, with an
// automatically generated technical description.
func Loadf(humanFormat string, a ...interface{}) error {
	return Load(fmt.Sprintf(humanFormat, a...), "")
}

// WrapLoad returns a new error that wraps e, with both a display message and
// a technical description.
func WrapLoad(e error, human, technical string) error {
	if technical == "" {
		technical = fmt.Sprintf("got ParseError(%q)", human)
	}
	return &loadError{msg: technical, human: human, wrap: e}
}

// Message returns the display message for err. If err is not one defined in
// this package, err.Error() is returned.
func Message(err error) string {
	if le, ok := err.(*loadError); ok {
		return le.Message()
	}
	return err.Error()
}

// invariantError signals a bug: the engine reached a state the driver loop
// guarantees should be unreachable under normal operation.
type invariantError struct {
	msg string
}

func (e *invariantError) Error() string {
	return e.msg
}

// Invariant returns a new error reporting a broken engine invariant.
func Invariant(technical string) error {
	return &invariantError{msg: technical}
}

// Invariantf is Invariant with fmt.Sprintf-style formatting.
func Invariantf(format string, a ...interface{}) error {
	return Invariant(fmt.Sprintf(format, a...))
}
