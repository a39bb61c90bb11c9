package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type mockSender struct {
	mock.Mock
}

func (m *mockSender) SendOrderConfirmation(ctx context.Context, order models.Order) error {
	return m.Called(ctx, order).Error(0)
}

func (m *mockSender) SendOrderStatusUpdate(ctx context.Context, order models.Order, oldStatus, newStatus models.OrderStatus) error {
	return m.Called(ctx, order, oldStatus, newStatus).Error(0)
}

// blockingSender parks every confirmation until release is closed.
type blockingSender struct {
	mu      sync.Mutex
	calls   int
	started chan struct{}
	release chan struct{}
}

func (b *blockingSender) SendOrderConfirmation(context.Context, models.Order) error {
	b.mu.Lock()
	b.calls++
	b.mu.Unlock()
	b.started <- struct{}{}
	<-b.release
	return nil
}

func (b *blockingSender) SendOrderStatusUpdate(context.Context, models.Order, models.OrderStatus, models.OrderStatus) error {
	return nil
}

type panickySender struct{}

func (panickySender) SendOrderConfirmation(context.Context, models.Order) error { panic("template missing") }
func (panickySender) SendOrderStatusUpdate(context.Context, models.Order, models.OrderStatus, models.OrderStatus) error {
	return nil
}

func sampleOrder(ref string) models.Order {
	return models.Order{ID: 1, OrderRef: ref, UserID: "u1", OrderStatus: models.OrderStatusPending}
}

func observed() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.InfoLevel)
	return zap.New(core), logs
}

func TestDispatcherDelivers(t *testing.T) {
	defer goleak.VerifyNone(t)

	sender := new(mockSender)
	sender.On("SendOrderConfirmation", mock.Anything, mock.MatchedBy(func(o models.Order) bool { return o.OrderRef == "r1" })).Return(nil).Once()
	sender.On("SendOrderStatusUpdate", mock.Anything, mock.Anything, models.OrderStatusPending, models.OrderStatusShipped).Return(nil).Once()

	d := NewDispatcher(sender, zap.NewNop(), 2, 8)
	d.OrderPlaced(sampleOrder("r1"))
	d.OrderStatusChanged(sampleOrder("r1"), models.OrderStatusPending, models.OrderStatusShipped)
	d.Close()

	sender.AssertExpectations(t)
}

func TestDispatcherLogsFailures(t *testing.T) {
	defer goleak.VerifyNone(t)

	sender := new(mockSender)
	sender.On("SendOrderConfirmation", mock.Anything, mock.Anything).Return(errors.New("smtp down"))

	logger, logs := observed()
	d := NewDispatcher(sender, logger, 1, 4)
	d.OrderPlaced(sampleOrder("r2"))
	d.Close()

	failures := logs.FilterMessage("notification failed").All()
	require.Len(t, failures, 1)
	assert.Contains(t, failures[0].ContextMap()["error"], "smtp down")
	assert.Contains(t, failures[0].ContextMap()["error"], "r2")
}

func TestDispatcherRecoversSenderPanic(t *testing.T) {
	defer goleak.VerifyNone(t)

	logger, logs := observed()
	d := NewDispatcher(panickySender{}, logger, 1, 4)
	d.OrderPlaced(sampleOrder("r3"))
	d.Close()

	assert.Equal(t, 1, logs.FilterMessage("notification failed").Len())
}

func TestDispatcherDropsWhenQueueFull(t *testing.T) {
	defer goleak.VerifyNone(t)

	sender := &blockingSender{started: make(chan struct{}, 4), release: make(chan struct{})}
	logger, logs := observed()
	d := NewDispatcher(sender, logger, 1, 1)

	d.OrderPlaced(sampleOrder("a"))
	select {
	case <-sender.started:
	case <-time.After(2 * time.Second):
		t.Fatal("worker never picked up the first event")
	}

	d.OrderPlaced(sampleOrder("b")) // queued
	d.OrderPlaced(sampleOrder("c")) // dropped

	done := make(chan struct{})
	go func() {
		d.OrderPlaced(sampleOrder("d"))
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("enqueue blocked on a full queue")
	}

	close(sender.release)
	d.Close()

	assert.Equal(t, 2, sender.calls)
	assert.Equal(t, 2, logs.FilterMessage("notification dropped, queue full").Len())
}

func TestDispatcherAfterClose(t *testing.T) {
	defer goleak.VerifyNone(t)

	sender := new(mockSender)
	logger, logs := observed()
	d := NewDispatcher(sender, logger, 1, 1)
	d.Close()
	d.Close()

	d.OrderPlaced(sampleOrder("late"))
	assert.Equal(t, 1, logs.FilterMessage("notification dropped, dispatcher closed").Len())
	sender.AssertNotCalled(t, "SendOrderConfirmation", mock.Anything, mock.Anything)
}

func TestMultiJoinsErrors(t *testing.T) {
	ok := new(mockSender)
	ok.On("SendOrderConfirmation", mock.Anything, mock.Anything).Return(nil)
	ok.On("SendOrderStatusUpdate", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	bad := new(mockSender)
	badErr := errors.New("broker unreachable")
	bad.On("SendOrderConfirmation", mock.Anything, mock.Anything).Return(badErr)
	bad.On("SendOrderStatusUpdate", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	m := Multi{bad, ok}
	err := m.SendOrderConfirmation(context.Background(), sampleOrder("x"))
	assert.ErrorIs(t, err, badErr)
	assert.NoError(t, m.SendOrderStatusUpdate(context.Background(), sampleOrder("x"), models.OrderStatusPending, models.OrderStatusShipped))

	ok.AssertNumberOfCalls(t, "SendOrderConfirmation", 1)
}

func TestLogSender(t *testing.T) {
	logger, logs := observed()
	s := LogSender{Logger: logger}

	require.NoError(t, s.SendOrderConfirmation(context.Background(), sampleOrder("log-1")))
	require.NoError(t, s.SendOrderStatusUpdate(context.Background(), sampleOrder("log-1"), models.OrderStatusPending, models.OrderStatusCancelled))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "log-1", entries[0].ContextMap()["order_ref"])
	assert.Equal(t, "cancelled", entries[1].ContextMap()["new_status"])
}
