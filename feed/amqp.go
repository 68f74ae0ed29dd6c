package feed

import (
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/samuelfneumann/tabular/errs"
)

const defaultQueue = "tabular.transitions"

// Config describes the connection to the AMQP broker
type Config struct {
	URL      string
	Queue    string // defaults to "tabular.transitions"
	Prefetch int
	Durable  bool
}

// connection holds a channel to a declared queue
type connection struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string
}

// dial connects to the broker and declares the queue
func dial(cfg Config) (*connection, error) {
	if cfg.URL == "" {
		return nil, errs.New(errs.InvalidConfiguration,
			"amqp url must not be empty")
	}
	queue := cfg.Queue
	if queue == "" {
		queue = defaultQueue
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, errs.Wrap(errs.Upstream, err, "could not connect to "+
			"amqp broker")
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, errs.Wrap(errs.Upstream, err, "could not open amqp "+
			"channel")
	}
	if cfg.Prefetch > 0 {
		if err := ch.Qos(cfg.Prefetch, 0, false); err != nil {
			ch.Close()
			conn.Close()
			return nil, errs.Wrap(errs.Upstream, err, "could not set qos")
		}
	}
	_, err = ch.QueueDeclare(queue, cfg.Durable, false, false, false, nil)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, errs.Wrap(errs.Upstream, err, "could not declare "+
			"queue %v", queue)
	}

	return &connection{conn: conn, ch: ch, queue: queue}, nil
}

// Close closes the channel and connection
func (c *connection) Close() error {
	if c == nil {
		return nil
	}
	if c.ch != nil {
		_ = c.ch.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
