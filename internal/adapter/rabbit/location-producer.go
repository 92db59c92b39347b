package rabbit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Temutjin2k/campus-radar/internal/domain/models"
	"github.com/Temutjin2k/campus-radar/internal/domain/types"
	wrap "github.com/Temutjin2k/campus-radar/pkg/logger/wrapper"
	"github.com/Temutjin2k/campus-radar/pkg/metrics"
	"github.com/Temutjin2k/campus-radar/pkg/rabbit"
	"github.com/rabbitmq/amqp091-go"
)

type LocationProducer struct {
	client   *rabbit.RabbitMQ
	exchange string
}

func NewLocationProducer(client *rabbit.RabbitMQ, exchange string) *LocationProducer {
	return &LocationProducer{
		client:   client,
		exchange: exchange,
	}
}

// PublishLocationEvent publishes msg with a routing key like location.updated.<user_id>.
// A publish on a closed channel is retried once after reconnecting.
func (p *LocationProducer) PublishLocationEvent(ctx context.Context, msg models.LocationEvent) (err error) {
	const op = "LocationProducer.PublishLocationEvent"
	defer func() { metrics.RecordRabbitMQPublish(p.exchange, err) }()

	body, err := json.Marshal(msg)
	if err != nil {
		ctx = wrap.WithAction(ctx, "marshal_location_event")
		return wrap.Error(ctx, fmt.Errorf("%s: failed to marshal message: %w", op, err))
	}

	key := msg.Type.RoutingKey(msg.UserID.String())

	err = retry(ctx, publishAttempts, publishBackoff, func() error {
		if err := p.client.EnsureConnection(ctx); err != nil {
			return err
		}
		return p.client.Publish(ctx, p.exchange, key, amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Body:         body,
			Timestamp:    time.Now(),
		})
	})
	if err != nil {
		ctx = wrap.WithAction(ctx, types.ActionEventPublishFailed)
		return wrap.Error(ctx, fmt.Errorf("%s: failed to publish with context: %w", op, err))
	}

	return nil
}
