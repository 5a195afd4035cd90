package eventbus

import (
	"context"
	"errors"
)

// ErrInvalidPayload marks an event that can never be consumed. It is not
// retried.
var ErrInvalidPayload = errors.New("invalid event payload")

type Consumer interface {
	Consume(ctx context.Context, event Event) error
	GetWorkerCount() int
}
