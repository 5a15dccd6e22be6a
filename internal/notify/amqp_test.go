package notify

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GlebRadaev/homeservices/internal/domain"
)

type recordingChannel struct {
	exchange string
	key      string
	msg      amqp.Publishing
}

func (c *recordingChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	c.exchange, c.key, c.msg = exchange, key, msg
	return nil
}

func TestAMQPSender_Send(t *testing.T) {
	ch := &recordingChannel{}
	sender := &AMQPSender{ch: ch, exchange: "notifications"}
	n := domain.Notification{
		ID:              "0b6f",
		UserID:          2,
		Title:           "Booking confirmed",
		Category:        domain.CategoryBooking,
		RelatedEntityID: 1,
		CreatedAt:       time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC),
	}

	require.NoError(t, sender.Send(context.Background(), n))

	assert.Equal(t, "notifications", ch.exchange)
	assert.Equal(t, "notification.booking", ch.key)
	assert.Equal(t, "application/json", ch.msg.ContentType)
	assert.Equal(t, "0b6f", ch.msg.MessageId)

	var got domain.Notification
	require.NoError(t, json.Unmarshal(ch.msg.Body, &got))
	assert.Equal(t, n, got)
}

func TestRoutingKey(t *testing.T) {
	assert.Equal(t, "notification.payout", RoutingKey(domain.CategoryPayout))
	assert.Equal(t, "notification.review", RoutingKey(domain.CategoryReview))
}
