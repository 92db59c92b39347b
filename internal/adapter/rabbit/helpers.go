package rabbit

import (
	"context"
	"errors"
	"time"

	"github.com/Temutjin2k/campus-radar/pkg/rabbit"
	"github.com/rabbitmq/amqp091-go"
)

const (
	publishAttempts = 2
	publishBackoff  = 100 * time.Millisecond
)

// isRecoverableError reports whether a reconnect may fix the failure.
func isRecoverableError(err error) bool {
	return oneOf(err, amqp091.ErrClosed, rabbit.ErrChannelClosed)
}

func oneOf(err error, targets ...error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

// retry runs fn up to n times, stopping early on success, on an unrecoverable
// error or when ctx is done.
func retry(ctx context.Context, n int, sleep time.Duration, fn func() error) error {
	var err error
	for i := range n {
		if err = fn(); err == nil || !isRecoverableError(err) {
			return err
		}
		if i == n-1 {
			break
		}
		select {
		case <-ctx.Done():
			return err
		case <-time.After(sleep):
		}
	}
	return err
}
