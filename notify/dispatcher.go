package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/junaidrashid-git/storefront-api/models"
	"go.uber.org/zap"
)

const deliveryTimeout = 10 * time.Second

// DeliveryError is what reaches the error channel when a sender fails.
type DeliveryError struct {
	Event Event
	Err   error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("deliver %s for order %s: %v", e.Event.Type, e.Event.OrderRef, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// Dispatcher hands notifications to a fixed pool of workers. Enqueueing
// never blocks the caller: when the queue is full the event is dropped and
// logged. Delivery failures are sent to a dedicated error channel that is
// drained by a logging goroutine, so they never reach the code that placed
// or updated the order.
type Dispatcher struct {
	sender Sender
	logger *zap.Logger

	jobs    chan Event
	errs    chan error
	errDone chan struct{}
	workers sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

func NewDispatcher(sender Sender, logger *zap.Logger, workers, queueSize int) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	d := &Dispatcher{
		sender:  sender,
		logger:  logger,
		jobs:    make(chan Event, queueSize),
		errs:    make(chan error, workers),
		errDone: make(chan struct{}),
	}

	d.workers.Add(workers)
	for i := 0; i < workers; i++ {
		go d.work()
	}
	go d.drainErrors()
	return d
}

// OrderPlaced queues an order confirmation.
func (d *Dispatcher) OrderPlaced(order models.Order) {
	d.enqueue(placedEvent(order))
}

// OrderStatusChanged queues a status update.
func (d *Dispatcher) OrderStatusChanged(order models.Order, oldStatus, newStatus models.OrderStatus) {
	d.enqueue(statusEvent(order, oldStatus, newStatus))
}

func (d *Dispatcher) enqueue(e Event) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.logger.Warn("notification dropped, dispatcher closed",
			zap.String("type", e.Type), zap.String("order_ref", e.OrderRef))
		return
	}
	select {
	case d.jobs <- e:
	default:
		d.logger.Warn("notification dropped, queue full",
			zap.String("type", e.Type), zap.String("order_ref", e.OrderRef))
	}
}

func (d *Dispatcher) work() {
	defer d.workers.Done()
	for e := range d.jobs {
		if err := d.deliver(e); err != nil {
			d.errs <- &DeliveryError{Event: e, Err: err}
		}
	}
}

func (d *Dispatcher) deliver(e Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sender panic: %v", r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
	defer cancel()

	switch e.Type {
	case EventOrderStatusChanged:
		return d.sender.SendOrderStatusUpdate(ctx, e.Order, e.OldStatus, e.NewStatus)
	default:
		return d.sender.SendOrderConfirmation(ctx, e.Order)
	}
}

func (d *Dispatcher) drainErrors() {
	defer close(d.errDone)
	for err := range d.errs {
		d.logger.Error("notification failed", zap.Error(err))
	}
}

// Close stops accepting events, waits for queued ones to be delivered and
// for their errors to be logged. It is safe to call more than once.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		<-d.errDone
		return
	}
	d.closed = true
	close(d.jobs)
	d.mu.Unlock()

	d.workers.Wait()
	close(d.errs)
	<-d.errDone
}
