package resource

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/naveenspark/nksadmin/pkg/client"
)

var (
	// ErrSuperseded is returned by a List whose result arrived after a newer
	// List started, or after Cancel. Its result is discarded.
	ErrSuperseded = errors.New("superseded by a newer request")

	// ErrInvalidTransition is returned when an order status change is not allowed.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrNoPendingRemoval is returned by ConfirmRemove without a matching RequestRemove.
	ErrNoPendingRemoval = errors.New("no pending removal")

	// ErrNotLoaded is returned when an operation needs an entity missing from the snapshot.
	ErrNotLoaded = errors.New("not in the current list")
)

// Kind classifies a failed controller operation for the view layer.
type Kind int

const (
	KindNetwork Kind = iota + 1
	KindSessionExpired
	KindValidation
	KindNotFound
	KindServer
	KindCanceled
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindSessionExpired:
		return "session_expired"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindServer:
		return "server"
	case KindCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Error is the only error type a controller returns. Message is suitable
// for display as-is.
type Error struct {
	Op      string
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Retryable reports whether the same call may succeed unchanged.
func (e *Error) Retryable() bool {
	return e.Kind == KindNetwork || e.Kind == KindServer
}

// Classify maps an error from the gateway to an *Error. An *Error is
// returned unchanged; nil stays nil.
func Classify(op string, err error) *Error {
	if err == nil {
		return nil
	}
	var re *Error
	if errors.As(err, &re) {
		return re
	}

	e := &Error{Op: op, Err: err}
	var httpErr *client.HTTPError
	switch {
	case errors.Is(err, ErrSuperseded), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		e.Kind = KindCanceled
		e.Message = "request canceled"
	case errors.Is(err, client.ErrSessionExpired):
		e.Kind = KindSessionExpired
		e.Message = "Session expired, please log in again."
	case errors.Is(err, client.ErrNetwork):
		e.Kind = KindNetwork
		e.Message = "Network error. Please try again."
	case errors.Is(err, ErrInvalidTransition):
		e.Kind = KindValidation
		e.Message = "That status change is not allowed."
	case errors.Is(err, ErrNotLoaded):
		e.Kind = KindNotFound
		e.Message = "Item no longer exists."
	case errors.Is(err, errors.ErrUnsupported):
		e.Kind = KindValidation
		e.Message = "Not supported for this list."
	case errors.As(err, &httpErr):
		e.Status = httpErr.StatusCode
		e.Message = httpErr.Message
		switch {
		case httpErr.StatusCode == http.StatusNotFound || httpErr.StatusCode == http.StatusConflict:
			e.Kind = KindNotFound
		case httpErr.StatusCode >= 400 && httpErr.StatusCode < 500:
			e.Kind = KindValidation
		default:
			e.Kind = KindServer
		}
		if e.Message == "" {
			e.Message = fmt.Sprintf("Request failed (HTTP %d)", httpErr.StatusCode)
		}
	default:
		e.Kind = KindServer
		e.Message = err.Error()
	}
	return e
}
