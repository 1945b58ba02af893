package fsmutil

import (
	"context"

	"github.com/looplab/fsm"
)

// WrapEvent adapts an error-returning handler to a looplab fsm.Callback,
// propagating the error through the event.
func WrapEvent(fn func(ctx context.Context, event *fsm.Event) error) fsm.Callback {
	return func(ctx context.Context, event *fsm.Event) {
		if err := fn(ctx, event); err != nil {
			event.Err = err
		}
	}
}
