package feed

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samuelfneumann/tabular/agent/tabular/qlearning"
	"github.com/samuelfneumann/tabular/errs"
)

// acknowledger records how a delivery was settled
type acknowledger struct {
	acked, nacked, rejected bool
	requeue                 bool
}

func (a *acknowledger) Ack(tag uint64, multiple bool) error {
	a.acked = true
	return nil
}

func (a *acknowledger) Nack(tag uint64, multiple, requeue bool) error {
	a.nacked, a.requeue = true, requeue
	return nil
}

func (a *acknowledger) Reject(tag uint64, requeue bool) error {
	a.rejected, a.requeue = true, requeue
	return nil
}

// failingLearner fails every update with err
type failingLearner struct{ err error }

func (f failingLearner) UpdateValue(qlearning.State, int, float64,
	qlearning.State) (float64, error) {
	return 0, f.err
}

func (f failingLearner) UpdateTerminal(qlearning.State, int, float64) (float64,
	error) {
	return 0, f.err
}

func (f failingLearner) Len() int { return 0 }

func delivery(t *testing.T, body interface{}) (amqp.Delivery, *acknowledger) {
	t.Helper()

	var data []byte
	switch b := body.(type) {
	case []byte:
		data = b
	default:
		var err error
		data, err = json.Marshal(b)
		require.NoError(t, err)
	}

	ack := &acknowledger{}
	return amqp.Delivery{Acknowledger: ack, Body: data, DeliveryTag: 1}, ack
}

func newLearner(t *testing.T) *qlearning.QLearning {
	t.Helper()

	q, err := qlearning.New(qlearning.DefaultConfig(), 0)
	require.NoError(t, err)
	return q
}

func TestHandleAppliesTransition(t *testing.T) {
	q := newLearner(t)
	c := newConsumer(nil, q, nil)

	d, ack := delivery(t, Transition{State: "s1", Action: 1, Reward: 1,
		NextState: "s2"})
	require.NoError(t, c.Handle(d))

	assert.True(t, ack.acked)
	assert.InDeltaSlice(t, []float64{0, 0.1}, q.Values("s1"), 1e-12)
	assert.True(t, q.Known("s2"))
}

func TestHandleTerminalTransition(t *testing.T) {
	q := newLearner(t)
	c := newConsumer(nil, q, nil)

	d, ack := delivery(t, Transition{State: "s1", Action: 0, Reward: 2,
		Terminal: true})
	require.NoError(t, c.Handle(d))

	assert.True(t, ack.acked)
	assert.InDeltaSlice(t, []float64{0.2, 0}, q.Values("s1"), 1e-12)
	assert.Equal(t, 1, q.Len())
}

func TestHandleRejectsMalformed(t *testing.T) {
	q := newLearner(t)
	c := newConsumer(nil, q, nil)

	d, ack := delivery(t, []byte("{not json"))
	err := c.Handle(d)

	assert.True(t, errs.Is(err, errs.InvalidArgument))
	assert.True(t, ack.rejected)
	assert.False(t, ack.requeue)
	assert.Equal(t, 0, q.Len())
}

func TestHandleRejectsInvalidAction(t *testing.T) {
	q := newLearner(t)
	c := newConsumer(nil, q, nil)

	d, ack := delivery(t, Transition{State: "s1", Action: 99, Reward: 1,
		NextState: "s2"})
	err := c.Handle(d)

	assert.True(t, errs.Is(err, errs.InvalidArgument))
	assert.True(t, ack.rejected)
	assert.False(t, ack.requeue)
	assert.False(t, q.Known("s1"))
}

func TestHandleRequeuesRetryableErrors(t *testing.T) {
	c := newConsumer(nil, failingLearner{errs.New(errs.Storage, "down")}, nil)

	d, ack := delivery(t, Transition{State: "s1", NextState: "s2"})
	err := c.Handle(d)

	assert.True(t, errs.Is(err, errs.Storage))
	assert.True(t, ack.nacked)
	assert.True(t, ack.requeue)
}

func TestPublishingAssignsID(t *testing.T) {
	msg, err := publishing(Transition{State: "s1", NextState: "s2"})
	require.NoError(t, err)

	_, err = uuid.Parse(msg.MessageId)
	assert.NoError(t, err)
	assert.Equal(t, ContentType, msg.ContentType)

	decoded, err := Decode(msg.Body)
	require.NoError(t, err)
	assert.Equal(t, msg.MessageId, decoded.ID)

	msg, err = publishing(Transition{ID: "fixed"})
	require.NoError(t, err)
	assert.Equal(t, "fixed", msg.MessageId)
}

func TestDialRequiresURL(t *testing.T) {
	_, err := NewPublisher(Config{})
	assert.True(t, errs.Is(err, errs.InvalidConfiguration))
}

func TestPublishConsume(t *testing.T) {
	url := os.Getenv("TABULAR_AMQP_URL")
	if url == "" {
		t.Skip("TABULAR_AMQP_URL not set")
	}

	cfg := Config{URL: url, Queue: "tabular-test-" + uuid.NewString()}
	p, err := NewPublisher(cfg)
	require.NoError(t, err)
	defer p.Close()

	q := newLearner(t)
	c, err := NewConsumer(cfg, q, nil)
	require.NoError(t, err)
	defer func() {
		c.ch.QueueDelete(c.queue, false, false, false)
		c.Close()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err = p.Publish(ctx, Transition{State: "s1", Action: 1, Reward: 1,
		NextState: "s2"})
	require.NoError(t, err)

	done := make(chan error, 1)
	runCtx, stop := context.WithCancel(ctx)
	go func() { done <- c.Run(runCtx) }()

	assert.Eventually(t, func() bool { return q.Known("s1") }, 5*time.Second,
		50*time.Millisecond)
	stop()
	assert.ErrorIs(t, <-done, context.Canceled)
}
