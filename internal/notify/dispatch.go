package notify

import (
	"context"
	"sync"
	"time"

	"dabmon/internal/alerts"
	"dabmon/internal/logger"
)

// queueSize bounds the number of pending deliveries.
const queueSize = 100

// Dispatcher fans alerts out to the configured notifiers on a background
// worker. Notify never blocks the evaluation pass; when the queue is full
// the delivery is dropped with a warning.
type Dispatcher struct {
	notifiers []Notifier
	timeout   time.Duration

	queue chan alerts.Alert
	wg    sync.WaitGroup

	mu      sync.Mutex
	stopped bool

	ctx    context.Context
	cancel context.CancelFunc
}

// NewDispatcher creates a dispatcher delivering to the given notifiers with
// a bounded per-delivery timeout.
func NewDispatcher(notifiers []Notifier, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Dispatcher{
		notifiers: notifiers,
		timeout:   timeout,
		queue:     make(chan alerts.Alert, queueSize),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start begins the delivery worker.
func (d *Dispatcher) Start() {
	d.wg.Add(1)
	go d.deliveryWorker()
}

// Stop drains pending deliveries and shuts the worker down. Calling Stop
// again is a no-op.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	close(d.queue)
	d.mu.Unlock()

	d.cancel()
	d.wg.Wait()
}

// Notify queues an alert for delivery. Implements alerts.Notifier. Alerts
// arriving after Stop, or while the queue is full, are dropped with a
// warning.
func (d *Dispatcher) Notify(a alerts.Alert) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		logger.Warn("dispatcher stopped, dropping alert",
			"id", a.ID,
			"metric", a.Metric)
		return
	}

	select {
	case d.queue <- a:
	default:
		logger.Warn("notification queue full, dropping alert",
			"id", a.ID,
			"metric", a.Metric)
	}
}

// deliveryWorker processes queued alerts.
func (d *Dispatcher) deliveryWorker() {
	defer d.wg.Done()

	for {
		select {
		case <-d.ctx.Done():
			// Drain whatever is still queued before exiting.
			for {
				select {
				case a, ok := <-d.queue:
					if !ok {
						return
					}
					d.deliver(a)
				default:
					return
				}
			}
		case a, ok := <-d.queue:
			if !ok {
				return
			}
			d.deliver(a)
		}
	}
}

// deliver sends one alert to every notifier. Failures are logged, never
// propagated: storage is authoritative, delivery is best-effort.
func (d *Dispatcher) deliver(a alerts.Alert) {
	for _, n := range d.notifiers {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		err := n.Deliver(ctx, a)
		cancel()

		if err != nil {
			logger.Warn("alert delivery failed",
				"notifier", n.Name(),
				"id", a.ID,
				"metric", a.Metric,
				"error", err.Error())
			continue
		}
		logger.Debug("alert delivered", "notifier", n.Name(), "id", a.ID)
	}
}
