package chat

import (
	"errors"
	"fmt"
)

type Kind string

// Kinds the service returns. Authorization and availability failures are
// decided in the HTTP layer and never reach the service.
const (
	KindBadRequest Kind = "bad_request"
	KindNotFound   Kind = "not_found"
	KindServer     Kind = "server_error"
)

// ErrPostNotFound is returned by PostStore when the post record is absent.
var ErrPostNotFound = errors.New("post not found")

// Error is a failure the HTTP layer reports as {error: Kind, message: Detail}.
type Error struct {
	Kind   Kind
	Detail string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf reports the kind of err; anything that is not an *Error is a server error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindServer
}

func badRequest(detail string) *Error {
	return &Error{Kind: KindBadRequest, Detail: detail}
}

func notFound(err error) *Error {
	return &Error{Kind: KindNotFound, Detail: "post not found", Err: err}
}

func serverError(detail string, err error) *Error {
	return &Error{Kind: KindServer, Detail: detail, Err: err}
}
