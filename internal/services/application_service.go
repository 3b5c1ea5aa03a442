package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"energy-calculator/internal/delivery"
	"energy-calculator/internal/models"
	"energy-calculator/internal/questionnaire"
	"energy-calculator/pkg/logging"
	"energy-calculator/pkg/metrics"
)

// SubmissionConfirmation is shown after every accepted submission, whatever
// happens to the delivery afterwards.
const SubmissionConfirmation = "Thank you! Your application has been submitted successfully. We'll be in touch soon!"

// Dispatcher hands accepted submissions to delivery without waiting.
type Dispatcher interface {
	Dispatch(sub delivery.Submission) bool
}

// ApplicationSnapshot is the externally visible state of one session.
type ApplicationSnapshot struct {
	ID              string            `json:"id"`
	Step            int               `json:"step"`
	TotalSteps      int               `json:"total_steps"`
	ProgressPercent float64           `json:"progress_percent"`
	Fields          map[string]string `json:"fields"`
	AddressPrompt   string            `json:"address_prompt"`
}

// SubmissionReceipt is returned for an accepted submission.
type SubmissionReceipt struct {
	ID      string                   `json:"id"`
	Message string                   `json:"message"`
	Payload models.SubmissionPayload `json:"payload"`
	Queued  bool                     `json:"queued"`
}

type session struct {
	mu         sync.Mutex
	machine    *questionnaire.Machine
	lastActive time.Time
	closed     bool
}

// ApplicationService owns the questionnaire sessions of the server. The
// session map is guarded by mu; each session by its own mutex, so steps of
// one session never interleave while different sessions proceed in parallel.
type ApplicationService struct {
	mu         sync.RWMutex
	sessions   map[string]*session
	dispatcher Dispatcher
	logger     *logging.StructuredLogger
	metrics    *metrics.Collector
	now        func() time.Time
}

// NewApplicationService creates a new application service
func NewApplicationService(dispatcher Dispatcher, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *ApplicationService {
	return &ApplicationService{
		sessions:   make(map[string]*session),
		dispatcher: dispatcher,
		logger:     logger,
		metrics:    metricsCollector,
		now:        time.Now,
	}
}

// Start opens a new session at step 1.
func (s *ApplicationService) Start(ctx context.Context) ApplicationSnapshot {
	id := uuid.Must(uuid.NewV7()).String()
	sess := &session{machine: questionnaire.New(), lastActive: s.now()}

	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()

	s.metrics.SessionsStartedTotal.Inc()
	s.metrics.SessionsActive.Inc()

	s.logger.Info(logging.WithSessionID(ctx, id), "[APPLICATION_START] Questionnaire session started", nil)

	return snapshot(id, sess.machine)
}

// Get returns the current snapshot of a session.
func (s *ApplicationService) Get(ctx context.Context, id string) (ApplicationSnapshot, error) {
	var snap ApplicationSnapshot
	err := s.withSession(id, func(sess *session) error {
		snap = snapshot(id, sess.machine)
		return nil
	})
	return snap, err
}

// SelectOption records the step-1 choice and advances.
func (s *ApplicationService) SelectOption(ctx context.Context, id, field, value string) (ApplicationSnapshot, error) {
	return s.transition(ctx, id, "option", func(m *questionnaire.Machine) error {
		return m.SelectOption(field, value)
	})
}

// Capture stores a typed field value without moving.
func (s *ApplicationService) Capture(ctx context.Context, id, field, value string) (ApplicationSnapshot, error) {
	var snap ApplicationSnapshot
	err := s.withSession(id, func(sess *session) error {
		if err := sess.machine.Capture(field, value); err != nil {
			return err
		}
		snap = snapshot(id, sess.machine)
		return nil
	})
	return snap, err
}

// Next advances the session when the current step is complete.
func (s *ApplicationService) Next(ctx context.Context, id string) (ApplicationSnapshot, error) {
	return s.transition(ctx, id, "next", func(m *questionnaire.Machine) error {
		return m.Next()
	})
}

// Previous moves the session back one step.
func (s *ApplicationService) Previous(ctx context.Context, id string) (ApplicationSnapshot, error) {
	return s.transition(ctx, id, "previous", func(m *questionnaire.Machine) error {
		m.Previous()
		return nil
	})
}

// Submit validates the session and, when accepted, hands the payload to the
// dispatcher and closes the session. Delivery runs in the background and its
// outcome never reaches the caller.
func (s *ApplicationService) Submit(ctx context.Context, id string) (*SubmissionReceipt, error) {
	ctx = logging.WithSessionID(ctx, id)

	var payload models.SubmissionPayload
	err := s.withSession(id, func(sess *session) error {
		p, err := sess.machine.Submit()
		if err != nil {
			return err
		}
		payload = p
		sess.machine.Close()
		sess.closed = true
		return nil
	})
	if err != nil {
		var subErr *models.SubmissionError
		if errors.As(err, &subErr) {
			s.metrics.RecordSubmission("rejected")
			s.logger.Info(ctx, "[APPLICATION_SUBMIT_REJECTED] Submission missing required fields", logging.Fields{
				"missing": subErr.Missing,
			})
		}
		return nil, err
	}

	s.remove(id)
	s.metrics.RecordSubmission("accepted")

	queued := s.dispatcher.Dispatch(delivery.Submission{
		SessionID:   id,
		Payload:     payload,
		SubmittedAt: s.now(),
	})

	s.logger.Info(ctx, "[APPLICATION_SUBMIT] Submission accepted", logging.Fields{
		"property_type": payload[models.FieldPropertyType],
		"queued":        queued,
	})

	return &SubmissionReceipt{
		ID:      id,
		Message: SubmissionConfirmation,
		Payload: payload,
		Queued:  queued,
	}, nil
}

// Close abandons a session.
func (s *ApplicationService) Close(ctx context.Context, id string) error {
	err := s.withSession(id, func(sess *session) error {
		sess.machine.Close()
		sess.closed = true
		return nil
	})
	if err != nil {
		return err
	}
	s.remove(id)

	s.logger.Info(logging.WithSessionID(ctx, id), "[APPLICATION_CLOSE] Questionnaire session closed", nil)
	return nil
}

// SweepIdle closes every session idle for longer than maxIdle and returns
// how many were removed.
func (s *ApplicationService) SweepIdle(ctx context.Context, maxIdle time.Duration) int {
	cutoff := s.now().Add(-maxIdle)

	s.mu.RLock()
	candidates := make(map[string]*session, len(s.sessions))
	for id, sess := range s.sessions {
		candidates[id] = sess
	}
	s.mu.RUnlock()

	expired := 0
	for id, sess := range candidates {
		sess.mu.Lock()
		idle := !sess.closed && sess.lastActive.Before(cutoff)
		if idle {
			sess.machine.Close()
			sess.closed = true
		}
		sess.mu.Unlock()

		if idle {
			s.remove(id)
			expired++
		}
	}

	if expired > 0 {
		s.metrics.SessionsExpiredTotal.Add(float64(expired))
		s.logger.Info(ctx, "[APPLICATION_SWEEP] Idle sessions expired", logging.Fields{
			"expired":  expired,
			"max_idle": maxIdle.String(),
		})
	}
	return expired
}

// RunSweeper calls SweepIdle every interval until ctx is done.
func (s *ApplicationService) RunSweeper(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.SweepIdle(ctx, maxIdle)
		}
	}
}

// Len returns the number of open sessions.
func (s *ApplicationService) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *ApplicationService) transition(ctx context.Context, id, action string, fn func(*questionnaire.Machine) error) (ApplicationSnapshot, error) {
	var snap ApplicationSnapshot
	err := s.withSession(id, func(sess *session) error {
		if err := fn(sess.machine); err != nil {
			return err
		}
		snap = snapshot(id, sess.machine)
		return nil
	})
	if err != nil {
		var stepErr *models.StepValidationError
		if errors.As(err, &stepErr) {
			s.metrics.RecordStepRejected(stepErr.Field)
			s.logger.Debug(logging.WithSessionID(ctx, id), "[APPLICATION_STEP_REJECTED] Required field blank", logging.Fields{
				"step":  stepErr.Step,
				"field": stepErr.Field,
			})
		}
		return snap, err
	}

	s.metrics.RecordTransition(action, snap.Step)
	return snap, nil
}

// withSession runs fn with the session locked. Closed or unknown sessions
// yield a NotFoundError.
func (s *ApplicationService) withSession(id string, fn func(*session) error) error {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return &models.NotFoundError{Resource: "application", ID: id}
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.closed {
		return &models.NotFoundError{Resource: "application", ID: id}
	}
	sess.lastActive = s.now()
	return fn(sess)
}

func (s *ApplicationService) remove(id string) {
	s.mu.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if ok {
		s.metrics.SessionsActive.Dec()
	}
}

func snapshot(id string, m *questionnaire.Machine) ApplicationSnapshot {
	step, total, percent := m.Progress()
	return ApplicationSnapshot{
		ID:              id,
		Step:            step,
		TotalSteps:      total,
		ProgressPercent: percent,
		Fields:          m.State().Fields,
		AddressPrompt:   m.AddressPrompt(),
	}
}
