package feed

import (
	"context"

	"github.com/golang/glog"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/samuelfneumann/tabular/errs"
	"github.com/samuelfneumann/tabular/metrics"
)

// Consumer applies transitions from a queue to a Learner
type Consumer struct {
	*connection
	learner Learner
	metrics *metrics.Collectors
}

// NewConsumer connects to the broker described by cfg. Metrics are
// recorded to m, which may be nil.
func NewConsumer(cfg Config, l Learner, m *metrics.Collectors) (*Consumer,
	error) {
	c, err := dial(cfg)
	if err != nil {
		return nil, err
	}
	return newConsumer(c, l, m), nil
}

func newConsumer(c *connection, l Learner, m *metrics.Collectors) *Consumer {
	return &Consumer{connection: c, learner: l, metrics: m}
}

// Run consumes transitions with manual acknowledgement until ctx is
// cancelled or the delivery channel is closed by the broker
func (c *Consumer) Run(ctx context.Context) error {
	msgs, err := c.ch.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return errs.Wrap(errs.Upstream, err, "run: could not consume %v",
			c.queue)
	}

	glog.Infof("consuming transitions from %v", c.queue)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errs.New(errs.Upstream, "run: delivery channel "+
					"closed")
			}
			if err := c.Handle(d); err != nil {
				glog.Warningf("transition %v: %v", d.MessageId, err)
			}
		}
	}
}

// Handle applies a single delivery to the Learner and settles it.
// Malformed messages and invalid transitions are rejected without
// being requeued. Other failures are negatively acknowledged and
// requeued. The error of the update is returned.
func (c *Consumer) Handle(d amqp.Delivery) error {
	t, err := Decode(d.Body)
	if err == nil {
		_, err = Apply(c.learner, t)
	}
	c.metrics.ObserveUpdate(metrics.SourceFeed, err, c.learner.Len())

	switch {
	case err == nil:
		if ackErr := d.Ack(false); ackErr != nil {
			return errs.Wrap(errs.Upstream, ackErr, "handle: could not ack")
		}
		glog.V(2).Infof("applied transition %v", t)
		return nil

	case errs.Retryable(err) || errs.CodeOf(err) == errs.Unknown:
		if nackErr := d.Nack(false, true); nackErr != nil {
			glog.Errorf("handle: could not nack: %v", nackErr)
		}

	default:
		if rejectErr := d.Reject(false); rejectErr != nil {
			glog.Errorf("handle: could not reject: %v", rejectErr)
		}
	}
	return err
}
