package redisbus

import (
	"errors"
	"fmt"
)

// ErrTimeout is returned by result retrieval when a caller-supplied deadline passed first.
var ErrTimeout = errors.New("redisbus: timed out waiting for result")

// NotFoundError: the method name is not registered.
type NotFoundError struct {
	Method string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("redisbus: %q is not a known method", e.Method)
}

/*
RegistrationError is returned when a target cannot be registered, or cannot be resolved
in this process. Workers look targets up purely by their reference, so a reference that
only exists in one binary's main package is refused.
*/
type RegistrationError struct {
	Target string
	Reason string
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("redisbus: cannot register %q: %s", e.Target, e.Reason)
}

// BindingError: the arguments of a call do not match the declared parameters.
type BindingError struct {
	Method  string
	Message string
}

func (e *BindingError) Error() string {
	if e.Method == "" {
		return "redisbus: " + e.Message
	}
	return fmt.Sprintf("redisbus: %s(): %s", e.Method, e.Message)
}

// KeyFormatError: a cache key template cannot be interpolated.
type KeyFormatError struct {
	Template string
	Message  string
}

func (e *KeyFormatError) Error() string {
	return fmt.Sprintf("redisbus: bad cache key template %q: %s", e.Template, e.Message)
}

// ConfigError is a fatal misconfiguration, e.g. serving a pattern that matches no method.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return "redisbus: " + e.Message
}

/*
Fault is an execution fault captured by a worker. It travels to the caller inside the
call's outcome and is returned from AsyncResult.Get(). Error() returns the original
error text unchanged.

Only the type name and the text of the original error survive the trip: a Fault
wraps nothing, so errors.Is(err, io.EOF) on the caller's side is false even when the
target returned io.EOF. Compare faults with errors.Is against another *Fault, or
inspect Kind and Message.
*/
type Fault struct {
	// Go type of the original error (e.g. "*errors.errorString"), or "panic"
	Kind    string
	Message string
}

const panicKind = "panic"

// NewFault captures err. A *Fault (possibly wrapped) is kept as is.
func NewFault(err error) *Fault {
	var f *Fault
	if errors.As(err, &f) {
		return f
	}
	return &Fault{Kind: fmt.Sprintf("%T", err), Message: err.Error()}
}

// PanicFault captures a value recovered from a panicking target.
func PanicFault(r any) *Fault {
	return &Fault{Kind: panicKind, Message: fmt.Sprint(r)}
}

func (f *Fault) Error() string {
	return f.Message
}

// Is reports whether target is a Fault with the same kind and message.
func (f *Fault) Is(target error) bool {
	t, ok := target.(*Fault)
	if !ok {
		return false
	}
	return t.Kind == f.Kind && t.Message == f.Message
}

// Panicked reports whether the target panicked instead of returning an error.
func (f *Fault) Panicked() bool {
	return f.Kind == panicKind
}
