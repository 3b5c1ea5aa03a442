// Package delivery posts accepted lead submissions to the configured
// webhook. Delivery is best effort: outcomes are logged, counted and
// optionally recorded, but never reported back to the questionnaire.
package delivery

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/valyala/fasthttp"

	"energy-calculator/internal/models"
	"energy-calculator/pkg/logging"
)

// Submission is an accepted questionnaire payload waiting for delivery.
type Submission struct {
	SessionID   string
	Payload     models.SubmissionPayload
	SubmittedAt time.Time
}

// Outcome describes a single delivery attempt.
type Outcome struct {
	Status     models.DeliveryStatus
	HTTPStatus int
	Err        error
	Duration   time.Duration
}

// Sender delivers one submission.
type Sender interface {
	Deliver(ctx context.Context, sub Submission) Outcome
}

// WebhookSender POSTs the submission payload as JSON to a fixed URL.
type WebhookSender struct {
	url     string
	timeout time.Duration
	client  *fasthttp.Client
	logger  *logging.StructuredLogger
}

// NewWebhookSender creates a sender for url. Each delivery is a single
// attempt bounded by timeout.
func NewWebhookSender(url string, timeout time.Duration, logger *logging.StructuredLogger) *WebhookSender {
	return &WebhookSender{
		url:     url,
		timeout: timeout,
		client: &fasthttp.Client{
			Name:                "energy-calculator-webhook",
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxIdleConnDuration: time.Minute,
		},
		logger: logger,
	}
}

// Deliver performs one POST and classifies the result.
func (s *WebhookSender) Deliver(ctx context.Context, sub Submission) Outcome {
	start := time.Now()

	if err := ctx.Err(); err != nil {
		return Outcome{Status: models.DeliveryFailed, Err: err}
	}

	body, err := json.Marshal(sub.Payload)
	if err != nil {
		return Outcome{Status: models.DeliveryFailed, Err: fmt.Errorf("failed to encode payload: %w", err)}
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(s.url)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBody(body)

	ctx = logging.WithSessionID(ctx, sub.SessionID)
	s.logger.Debug(ctx, "[WEBHOOK_ATTEMPT] Posting lead to webhook", logging.Fields{
		"body_bytes": len(body),
		"stage":      "DELIVERY",
	})

	timeout := s.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}

	if err := s.client.DoTimeout(req, resp, timeout); err != nil {
		return Outcome{
			Status:   models.DeliveryFailed,
			Err:      fmt.Errorf("webhook request failed: %w", err),
			Duration: time.Since(start),
		}
	}

	code := resp.StatusCode()
	out := Outcome{HTTPStatus: code, Duration: time.Since(start)}
	s.logger.Debug(ctx, "[WEBHOOK_RESPONSE] Webhook responded", logging.Fields{
		"http_status": code,
		"duration_ms": out.Duration.Milliseconds(),
		"stage":       "DELIVERY",
	})
	if code < 200 || code >= 300 {
		out.Status = models.DeliveryRejected
		out.Err = fmt.Errorf("webhook returned %d", code)
		return out
	}

	out.Status = models.DeliveryDelivered
	return out
}

// DisabledSender is used when no webhook URL is configured.
type DisabledSender struct{}

// Deliver reports the submission as skipped.
func (DisabledSender) Deliver(ctx context.Context, sub Submission) Outcome {
	return Outcome{Status: models.DeliverySkipped}
}
