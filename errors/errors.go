package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	ErrWorkerPanic        = fmt.Errorf("worker panic")
	ErrConnection         = fmt.Errorf("connection error")
	ErrTransportWrite     = fmt.Errorf("transport write error")
	ErrTransportRead      = fmt.Errorf("transport read error")
	ErrClassificationMiss = fmt.Errorf("classification miss")
	ErrSessionClosed      = fmt.Errorf("session is closed")
	ErrSessionReused      = fmt.Errorf("session cannot be reconnected")
	ErrNotConnected       = fmt.Errorf("session is not connected")
	ErrQueueClosed        = fmt.Errorf("queue closed for writing")
	ErrQueueDrained       = fmt.Errorf("queue drained")
	ErrMessagesDropped    = fmt.Errorf("accepted messages were not written")
)

// Wrap tags err with one of the sentinels above so callers can use errors.Is on both.
func Wrap(sentinel, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", sentinel, err)
}

// IsCancellation reports whether err is the expected outcome of a shutdown.
// Such errors must never be surfaced to the user.
func IsCancellation(err error) bool {
	if err == nil {
		return false
	}
	if stderrors.Is(err, context.Canceled) {
		return true
	}
	return status.Code(err) == codes.Canceled
}

// IsEndOfStream reports a clean close by the remote side.
func IsEndOfStream(err error) bool {
	return stderrors.Is(err, io.EOF)
}

// Is mirrors the standard library so callers importing this package need only one errors import.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}
