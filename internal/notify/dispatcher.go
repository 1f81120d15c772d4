package notify

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/BorisDmv/snip-api/internal/metrics"
	"github.com/BorisDmv/snip-api/internal/service"
)

var (
	ErrQueueFull = errors.New("notification queue full")
	ErrStopped   = errors.New("notification dispatcher stopped")
)

// Dispatcher decouples delivery from the request path: Notify only enqueues,
// a single worker delivers through the wrapped sink.
type Dispatcher struct {
	sink    service.Notifier
	queue   chan service.Notification
	timeout time.Duration
	logger  *logrus.Logger
	metrics *metrics.Metrics

	mu      sync.RWMutex
	stopped bool
	done    chan struct{}
}

func NewDispatcher(sink service.Notifier, size int, logger *logrus.Logger, m *metrics.Metrics) *Dispatcher {
	if size <= 0 {
		size = 256
	}
	return &Dispatcher{
		sink:    sink,
		queue:   make(chan service.Notification, size),
		timeout: 5 * time.Second,
		logger:  logger,
		metrics: m,
		done:    make(chan struct{}),
	}
}

func (d *Dispatcher) Notify(_ context.Context, n service.Notification) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.stopped {
		return ErrStopped
	}
	select {
	case d.queue <- n:
		return nil
	default:
		d.metrics.Notification("dropped")
		return ErrQueueFull
	}
}

// Run delivers queued notifications until Stop is called and the queue drains.
func (d *Dispatcher) Run() {
	defer close(d.done)
	for n := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		err := d.sink.Notify(ctx, n)
		cancel()
		if err != nil {
			d.metrics.Notification("failed")
			d.logger.WithError(err).WithFields(logrus.Fields{
				"recipient_id": n.RecipientID,
				"type":         n.Type,
			}).Warn("notification delivery failed")
			continue
		}
		d.metrics.Notification("sent")
	}
}

// Stop refuses new notifications and waits for queued ones, or for ctx.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if !d.stopped {
		d.stopped = true
		close(d.queue)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
