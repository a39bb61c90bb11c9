package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func expectMessage(topic, key, eventType string) mocks.MessageChecker {
	return func(msg *sarama.ProducerMessage) error {
		if msg.Topic != topic {
			return fmt.Errorf("topic %q, want %q", msg.Topic, topic)
		}
		k, err := msg.Key.Encode()
		if err != nil || string(k) != key {
			return fmt.Errorf("key %q, want %q", k, key)
		}
		v, err := msg.Value.Encode()
		if err != nil {
			return err
		}
		var e Event
		if err := json.Unmarshal(v, &e); err != nil {
			return err
		}
		if e.Type != eventType || e.OrderRef != key {
			return fmt.Errorf("unexpected event %+v", e)
		}
		return nil
	}
}

func TestKafkaSenderPublishes(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(expectMessage("orders.placed", "ref-1", EventOrderPlaced))
	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(expectMessage("orders.status-changed", "ref-1", EventOrderStatusChanged))

	sender := NewKafkaSender(producer, "orders")
	order := models.Order{ID: 3, OrderRef: "ref-1", UserID: "u1"}

	require.NoError(t, sender.SendOrderConfirmation(context.Background(), order))
	require.NoError(t, sender.SendOrderStatusUpdate(context.Background(), order, models.OrderStatusPending, models.OrderStatusShipped))
	require.NoError(t, sender.Close())
}

func TestKafkaSenderReportsBrokerErrors(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	brokerErr := errors.New("leader not available")
	producer.ExpectSendMessageAndFail(brokerErr)

	sender := NewKafkaSender(producer, "shop")
	err := sender.SendOrderConfirmation(context.Background(), models.Order{OrderRef: "ref-2"})
	assert.ErrorIs(t, err, brokerErr)
	assert.Contains(t, err.Error(), "shop.placed")
	require.NoError(t, sender.Close())
}

func TestKafkaSenderHonoursCancelledContext(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	sender := NewKafkaSender(producer, "orders")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sender.SendOrderConfirmation(ctx, models.Order{OrderRef: "ref-3"}), context.Canceled)
	require.NoError(t, sender.Close())
}
