package amqp

import (
	"context"
	"errors"
	"testing"

	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChannel struct {
	exchange string
	key      string
	msg      amqp091.Publishing
	hadDL    bool
	err      error
	closed   bool
}

func (c *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, _, _ bool, msg amqp091.Publishing) error {
	_, c.hadDL = ctx.Deadline()
	c.exchange, c.key, c.msg = exchange, key, msg
	return c.err
}

func (c *fakeChannel) Close() error {
	c.closed = true
	return nil
}

func TestPublisher_Publish(t *testing.T) {
	ch := &fakeChannel{}
	p := newPublisherWithChannel(ch, "tripboard")

	err := p.Publish(context.Background(), "trip_overview_refreshed", []byte("3"), []byte(`{"session_id":3}`))

	require.NoError(t, err)
	assert.Equal(t, "tripboard", ch.exchange)
	assert.Equal(t, "trip_overview_refreshed", ch.key)
	assert.Equal(t, "3", ch.msg.MessageId)
	assert.Equal(t, "application/json", ch.msg.ContentType)
	assert.Equal(t, amqp091.Persistent, ch.msg.DeliveryMode)
	assert.Equal(t, []byte(`{"session_id":3}`), ch.msg.Body)
	assert.True(t, ch.hadDL, "publish should run under a timeout")
}

func TestPublisher_PublishError(t *testing.T) {
	ch := &fakeChannel{err: errors.New("channel closed")}
	p := newPublisherWithChannel(ch, "tripboard")

	err := p.Publish(context.Background(), "k", nil, nil)

	require.Error(t, err)
	assert.ErrorContains(t, err, "amqp publish")
}

func TestPublisher_Close(t *testing.T) {
	ch := &fakeChannel{}
	p := newPublisherWithChannel(ch, "tripboard")

	require.NoError(t, p.Close())
	assert.True(t, ch.closed)
}
