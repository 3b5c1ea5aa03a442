package delivery

import (
	"context"
	"sync"
	"time"

	"energy-calculator/internal/models"
	"energy-calculator/pkg/logging"
	"energy-calculator/pkg/metrics"
)

// Recorder stores delivered submissions for auditing.
type Recorder interface {
	RecordSubmission(ctx context.Context, lead *models.LeadSubmission) error
}

// Dispatcher delivers submissions asynchronously on a single worker.
// Dispatch never blocks; when the queue is full the submission is dropped.
type Dispatcher struct {
	sender   Sender
	recorder Recorder
	timeout  time.Duration
	logger   *logging.StructuredLogger
	metrics  *metrics.Collector

	mu     sync.RWMutex
	closed bool
	queue  chan Submission
	done   chan struct{}
}

// NewDispatcher creates a dispatcher with a queue of queueSize submissions.
// recorder may be nil.
func NewDispatcher(sender Sender, recorder Recorder, queueSize int, timeout time.Duration, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *Dispatcher {
	return &Dispatcher{
		sender:   sender,
		recorder: recorder,
		timeout:  timeout,
		logger:   logger,
		metrics:  metricsCollector,
		queue:    make(chan Submission, queueSize),
		done:     make(chan struct{}),
	}
}

// Start launches the delivery worker.
func (d *Dispatcher) Start() {
	go d.run()
}

// Dispatch enqueues sub for delivery and reports whether it was accepted.
func (d *Dispatcher) Dispatch(sub Submission) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.drop(sub, "dispatcher closed")
		return false
	}

	d.metrics.DeliveryQueueSize.Inc()
	select {
	case d.queue <- sub:
		return true
	default:
		d.metrics.DeliveryQueueSize.Dec()
		d.drop(sub, "queue full")
		return false
	}
}

// Close stops accepting submissions and waits until queued ones have been
// delivered or ctx expires.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
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

func (d *Dispatcher) run() {
	defer close(d.done)

	for sub := range d.queue {
		d.metrics.DeliveryQueueSize.Dec()
		d.deliver(sub)
	}
}

func (d *Dispatcher) deliver(sub Submission) {
	ctx, cancel := context.WithTimeout(logging.WithSessionID(context.Background(), sub.SessionID), d.timeout)
	defer cancel()

	out := d.sender.Deliver(ctx, sub)

	d.metrics.RecordDelivery(string(out.Status))
	if out.Duration > 0 {
		d.metrics.DeliveryDuration.Observe(out.Duration.Seconds())
	}

	fields := logging.Fields{
		"status":      out.Status,
		"http_status": out.HTTPStatus,
		"duration_ms": out.Duration.Milliseconds(),
	}
	switch out.Status {
	case models.DeliveryDelivered:
		d.logger.Info(ctx, "[DELIVERY_SUCCESS] Data sent to webhook successfully", fields)
	case models.DeliverySkipped:
		d.logger.Debug(ctx, "[DELIVERY_SKIPPED] No webhook configured", fields)
	default:
		d.logger.Error(ctx, "[DELIVERY_ERROR] Failed to send data to webhook", fields, out.Err)
	}

	d.record(ctx, sub, out)
}

func (d *Dispatcher) record(ctx context.Context, sub Submission, out Outcome) {
	if d.recorder == nil {
		return
	}

	lead := models.NewLeadSubmission(sub.SessionID, sub.Payload, sub.SubmittedAt)
	lead.DeliveryStatus = out.Status
	if out.HTTPStatus != 0 {
		code := out.HTTPStatus
		lead.HTTPStatus = &code
	}
	if out.Err != nil {
		msg := out.Err.Error()
		lead.DeliveryError = &msg
	}
	if out.Status == models.DeliveryDelivered {
		now := time.Now().UTC()
		lead.DeliveredAt = &now
	}

	// The delivery deadline may already be spent; recording gets its own.
	recordCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := d.recorder.RecordSubmission(recordCtx, lead); err != nil {
		d.logger.Error(ctx, "[DELIVERY_RECORD_ERROR] Failed to record submission", logging.Fields{
			"status": out.Status,
		}, err)
	}
}

func (d *Dispatcher) drop(sub Submission, reason string) {
	d.metrics.RecordDelivery(string(models.DeliveryDropped))
	d.logger.Warn(logging.WithSessionID(context.Background(), sub.SessionID), "[DELIVERY_DROPPED] Submission not queued for delivery", logging.Fields{
		"reason": reason,
	})
}
