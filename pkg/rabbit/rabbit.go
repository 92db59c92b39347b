package rabbit

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Temutjin2k/campus-radar/internal/domain/types"
	"github.com/Temutjin2k/campus-radar/pkg/logger"
	wrap "github.com/Temutjin2k/campus-radar/pkg/logger/wrapper"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	dialTimeout       = 5 * time.Second
	reconnectAttempts = 5
)

var ErrChannelClosed = errors.New("rabbitmq channel is closed")

type RabbitMQ struct {
	Conn    *amqp.Connection
	Channel *amqp.Channel
	mu      sync.Mutex
	dsn     string

	// isClosed is set by the close monitor, closing by Close.
	isClosed atomic.Bool
	closing  atomic.Bool

	log logger.Logger
}

// New creates rabbitMQ client
func New(ctx context.Context, dsn string, log logger.Logger) (*RabbitMQ, error) {
	r := &RabbitMQ{
		dsn: dsn,
		log: log,
	}

	conn, channel, err := r.dial(ctx)
	if err != nil {
		return nil, err
	}
	r.install(conn, channel)

	log.Info(wrap.WithAction(ctx, types.ActionRabbitMQConnected), "connected to rabbitMQ")

	return r, nil
}

func (r *RabbitMQ) dial(ctx context.Context) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.DialConfig(r.dsn, amqp.Config{
		Heartbeat: 10 * time.Second,
		Dial:      contextDialer(ctx),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("failed to open a channel: %w", err)
	}
	return conn, channel, nil
}

// contextDialer bounds the TCP dial and the AMQP handshake by the ctx deadline,
// or by dialTimeout when ctx has none. The library clears the deadline once the
// connection is open.
func contextDialer(ctx context.Context) func(network, addr string) (net.Conn, error) {
	return func(network, addr string) (net.Conn, error) {
		deadline, ok := ctx.Deadline()
		if !ok {
			deadline = time.Now().Add(dialTimeout)
		}

		d := net.Dialer{Deadline: deadline}
		conn, err := d.DialContext(ctx, network, addr)
		if err != nil {
			return nil, err
		}
		if err := conn.SetDeadline(deadline); err != nil {
			conn.Close()
			return nil, err
		}
		return conn, nil
	}
}

// install swaps in a fresh connection and starts watching it. Callers other
// than New must hold mu.
func (r *RabbitMQ) install(conn *amqp.Connection, channel *amqp.Channel) {
	connClose := conn.NotifyClose(make(chan *amqp.Error, 1))
	chClose := channel.NotifyClose(make(chan *amqp.Error, 1))

	r.Conn = conn
	r.Channel = channel
	r.isClosed.Store(false)

	go r.monitorConnection(connClose, chClose)
}

// monitorConnection waits for the connection or the channel to close and, unless
// Close was called, reconnects in the background with backoff.
func (r *RabbitMQ) monitorConnection(connClose, chClose <-chan *amqp.Error) {
	var closeErr *amqp.Error
	select {
	case closeErr = <-connClose:
	case closeErr = <-chClose:
	}
	r.isClosed.Store(true)

	ctx := wrap.WithAction(context.Background(), types.ActionRabbitConnectionClosed)

	if closeErr != nil {
		r.log.Error(ctx, "RabbitMQ connection closed with error", closeErr)
	} else {
		r.log.Debug(ctx, "RabbitMQ connection closed gracefully")
	}

	if r.closing.Load() {
		return
	}
	if err := r.Reconnect(context.Background()); err != nil {
		r.log.Error(ctx, "RabbitMQ background reconnect failed", err)
	}
}

// IsConnectionClosed checks if the connection is closed
func (r *RabbitMQ) IsConnectionClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closedLocked()
}

func (r *RabbitMQ) closedLocked() bool {
	if r.Conn == nil || r.Channel == nil {
		return true
	}
	return r.isClosed.Load() || r.Conn.IsClosed() || r.Channel.IsClosed()
}

// Close closes rabbit connection
func (r *RabbitMQ) Close(ctx context.Context) error {
	return r.closeWithContext(ctx)
}

// closeWithContext - closes RabbitMQ channel and connection using context
func (r *RabbitMQ) closeWithContext(ctx context.Context) error {
	ctx = wrap.WithAction(ctx, types.ActionRabbitConnectionClosing)

	if r.closing.Swap(true) {
		return nil
	}

	r.log.Debug(ctx, "closing channel")

	r.mu.Lock()
	ch := r.Channel
	conn := r.Conn
	r.Channel = nil
	r.Conn = nil
	r.mu.Unlock()

	// Close channel first (if any)
	if ch != nil {
		if err := closeWithCtxFunc(ctx, ch.Close); err != nil {
			if ctx.Err() != nil {
				r.log.Debug(ctx, "context cancelled while closing channel")
			} else {
				r.log.Error(ctx, "error closing channel", err)
			}
		}
	}

	r.log.Debug(ctx, "closing RabbitMQ connection")

	if conn != nil {
		if err := closeWithCtxFunc(ctx, conn.Close); err != nil {
			if ctx.Err() != nil {
				r.log.Debug(ctx, "context cancelled while closing connection")
				return ctx.Err()
			}
			return fmt.Errorf("failed to close connection: %w", err)
		}
	}

	ctx = wrap.WithAction(ctx, types.ActionRabbitConnectionClosed)
	r.log.Info(ctx, "rabbitMQ closed")

	return nil
}

// helper to close a resource with context cancellation safely
func closeWithCtxFunc(ctx context.Context, fn func() error) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- fn()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Reconnect retries with linear backoff. mu is held only for each dial attempt,
// so publishers fail fast instead of queueing behind the backoff.
func (r *RabbitMQ) Reconnect(ctx context.Context) error {
	if r.dsn == "" {
		return fmt.Errorf("dsn is empty: can't reconnect")
	}

	var err error
	for i := range reconnectAttempts {
		if err = r.reconnectOnce(ctx); err == nil {
			return nil
		}
		if r.closing.Load() {
			return err
		}

		wait := time.Duration(i+1) * 2 * time.Second
		r.log.Debug(ctx, fmt.Sprintf("reconnect attempt %d failed, retrying in %v", i+1, wait))

		select {
		case <-ctx.Done():
			r.log.Debug(ctx, "graceful shutdown, stopping reconnect attempts")
			return ctx.Err()
		case <-time.After(wait):
		}
	}

	return fmt.Errorf("failed to reconnect to RabbitMQ: %w", err)
}

func (r *RabbitMQ) reconnectOnce(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closing.Load() {
		return ErrChannelClosed
	}
	if !r.closedLocked() {
		return nil
	}

	conn, ch, err := r.dial(ctx)
	if err != nil {
		return err
	}
	r.install(conn, ch)

	r.log.Info(wrap.WithAction(context.Background(), types.ActionRabbitReconnected), "RabbitMQ reconnected successfully")
	return nil
}

// EnsureConnection makes a single reconnect attempt bounded by ctx when the
// connection is down.
func (r *RabbitMQ) EnsureConnection(ctx context.Context) error {
	if !r.IsConnectionClosed() {
		return nil
	}
	if r.dsn == "" {
		return fmt.Errorf("dsn is empty: can't reconnect")
	}
	if err := r.reconnectOnce(ctx); err != nil {
		return fmt.Errorf("failed to reconnect to RabbitMQ: %w", err)
	}
	return nil
}

// Publish sends msg on the current channel.
func (r *RabbitMQ) Publish(ctx context.Context, exchange, key string, msg amqp.Publishing) error {
	r.mu.Lock()
	ch := r.Channel
	r.mu.Unlock()
	if ch == nil {
		return ErrChannelClosed
	}

	return ch.PublishWithContext(ctx, exchange, key, false, false, msg)
}

// DeclareTopicExchange declares a durable topic exchange on the current channel.
func (r *RabbitMQ) DeclareTopicExchange(ctx context.Context, name string) error {
	if err := r.EnsureConnection(ctx); err != nil {
		return err
	}

	r.mu.Lock()
	ch := r.Channel
	r.mu.Unlock()
	if ch == nil {
		return ErrChannelClosed
	}

	if err := ch.ExchangeDeclare(
		name,
		amqp.ExchangeTopic,
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		return fmt.Errorf("failed to declare exchange %q: %w", name, err)
	}

	r.log.Debug(wrap.WithAction(ctx, types.ActionRabbitExchangeDeclared), "exchange declared", "exchange", name)
	return nil
}
