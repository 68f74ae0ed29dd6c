package feed

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/samuelfneumann/tabular/errs"
)

// Publisher publishes transitions to a queue
type Publisher struct {
	*connection
}

// NewPublisher connects to the broker described by cfg
func NewPublisher(cfg Config) (*Publisher, error) {
	c, err := dial(cfg)
	if err != nil {
		return nil, err
	}
	return &Publisher{c}, nil
}

// Publish publishes t and returns its message ID. A new ID is assigned
// if t has none.
func (p *Publisher) Publish(ctx context.Context, t Transition) (string,
	error) {
	msg, err := publishing(t)
	if err != nil {
		return "", err
	}

	err = p.ch.PublishWithContext(ctx, "", p.queue, false, false, msg)
	if err != nil {
		return "", errs.Wrap(errs.Upstream, err, "publish: could not "+
			"publish transition %v", msg.MessageId)
	}
	return msg.MessageId, nil
}

// publishing builds the message for t
func publishing(t Transition) (amqp.Publishing, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}

	body, err := json.Marshal(t)
	if err != nil {
		return amqp.Publishing{}, errs.Wrap(errs.InvalidArgument, err,
			"publish: could not encode transition")
	}

	return amqp.Publishing{
		ContentType:  ContentType,
		DeliveryMode: amqp.Persistent,
		MessageId:    t.ID,
		Body:         body,
	}, nil
}
