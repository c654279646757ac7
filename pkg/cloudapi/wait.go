package cloudapi

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// errStatePending marks a poll that observed a non-target state, telling
// the backoff loop to try again after the interval.
var errStatePending = errors.New("cloudapi: target state not reached")

// waitState runs poll at a fixed interval until it reports done, the poll
// fails, or the context ends. The first poll happens immediately.
func waitState(ctx context.Context, interval time.Duration, poll func(context.Context) (bool, error)) error {
	op := func() error {
		done, err := poll(ctx)
		if err != nil {
			return backoff.Permanent(err)
		}
		if !done {
			return errStatePending
		}
		return nil
	}

	b := backoff.WithContext(backoff.NewConstantBackOff(interval), ctx)
	if err := backoff.Retry(op, b); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: %v", ErrWaitAborted, err)
		}
		return err
	}
	return nil
}
