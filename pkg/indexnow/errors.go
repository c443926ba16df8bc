package indexnow

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failed notification.
type ErrorKind int

const (
	// KindConnection means the HTTP exchange never produced a response:
	// DNS, TCP, TLS, timeouts, cancellation or a request that could not be built.
	KindConnection ErrorKind = iota + 1
	// KindStatus means the search engine answered with a status other than 200.
	KindStatus
)

func (k ErrorKind) String() string {
	switch k {
	case KindConnection:
		return "connection"
	case KindStatus:
		return "status"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// Error is returned by Notify and HTTPTransport.Post for every failure.
//
// For KindConnection, Message is the description of the underlying transport
// error and Err holds that error. For KindStatus, StatusCode is the response
// status and Message is the response body text, verbatim.
type Error struct {
	Kind       ErrorKind
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	if e.Kind == KindStatus && e.Message == "" {
		return fmt.Sprintf("indexnow: search engine returned status %d", e.StatusCode)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func connectionError(err error) *Error {
	return &Error{Kind: KindConnection, Message: err.Error(), Err: err}
}

func statusError(code int, body string) *Error {
	return &Error{Kind: KindStatus, StatusCode: code, Message: body}
}

// IsConnection reports whether err is a KindConnection *Error.
func IsConnection(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindConnection
}

// StatusCode returns the HTTP status carried by a KindStatus *Error.
func StatusCode(err error) (int, bool) {
	var e *Error
	if errors.As(err, &e) && e.Kind == KindStatus {
		return e.StatusCode, true
	}
	return 0, false
}
