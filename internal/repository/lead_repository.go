package repository

import (
	"context"
	"fmt"

	"energy-calculator/internal/models"
	"energy-calculator/pkg/database"
	"energy-calculator/pkg/logging"
	"energy-calculator/pkg/metrics"
)

// LeadRepository stores the audit log of accepted questionnaire submissions.
// Questionnaire state in progress is never persisted.
type LeadRepository interface {
	RecordSubmission(ctx context.Context, lead *models.LeadSubmission) error
	ListSubmissions(ctx context.Context, filter LeadFilter) ([]*models.LeadSubmission, int, error)
	HealthCheck(ctx context.Context) error
}

// LeadFilter defines filters for querying submissions
type LeadFilter struct {
	Status    *models.DeliveryStatus
	SessionID *string
	Limit     int
	Offset    int
}

// leadRepository implements LeadRepository on PostgreSQL
type leadRepository struct {
	db      *database.PostgresDB
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewLeadRepository creates a new lead repository
func NewLeadRepository(db *database.PostgresDB, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) LeadRepository {
	return &leadRepository{
		db:      db,
		logger:  logger,
		metrics: metricsCollector,
	}
}

const insertLeadQuery = `
	INSERT INTO lead_submissions (
		session_id, property_type, address, first_name, last_name, email, phone,
		delivery_status, http_status, delivery_error, submitted_at, delivered_at
	)
	VALUES (
		:session_id, :property_type, :address, :first_name, :last_name, :email, :phone,
		:delivery_status, :http_status, :delivery_error, :submitted_at, :delivered_at
	)
	RETURNING id
`

// RecordSubmission inserts a submission together with its delivery outcome
func (r *leadRepository) RecordSubmission(ctx context.Context, lead *models.LeadSubmission) error {
	if err := r.db.NamedQueryRowContext(ctx, "insert_lead", insertLeadQuery, lead, &lead.ID); err != nil {
		return fmt.Errorf("failed to record submission: %w", err)
	}

	r.logger.Debug(ctx, "[REPO_RECORD_LEAD] Submission recorded", logging.Fields{
		"id":              lead.ID,
		"session_id":      lead.SessionID,
		"delivery_status": lead.DeliveryStatus,
	})

	return nil
}

// ListSubmissions retrieves submissions with filtering and pagination, newest first
func (r *leadRepository) ListSubmissions(ctx context.Context, filter LeadFilter) ([]*models.LeadSubmission, int, error) {
	query, args := buildLeadQuery(filter)

	countQuery := "SELECT COUNT(*) FROM (" + query + ") AS count_query"
	var totalCount int
	if err := r.db.GetContext(ctx, "count_leads", &totalCount, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count submissions: %w", err)
	}

	query += " ORDER BY submitted_at DESC, id DESC"
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, filter.Limit, filter.Offset)

	var leads []*models.LeadSubmission
	if err := r.db.SelectContext(ctx, "list_leads", &leads, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list submissions: %w", err)
	}

	return leads, totalCount, nil
}

// HealthCheck delegates to the connection pool
func (r *leadRepository) HealthCheck(ctx context.Context) error {
	return r.db.HealthCheck(ctx)
}

func buildLeadQuery(filter LeadFilter) (string, []interface{}) {
	query := `
		SELECT id, session_id, property_type, address, first_name, last_name, email, phone,
		       delivery_status, http_status, delivery_error, submitted_at, delivered_at
		FROM lead_submissions
		WHERE 1=1
	`
	args := []interface{}{}
	argNum := 1

	if filter.Status != nil {
		query += fmt.Sprintf(" AND delivery_status = $%d", argNum)
		args = append(args, string(*filter.Status))
		argNum++
	}

	if filter.SessionID != nil {
		query += fmt.Sprintf(" AND session_id = $%d", argNum)
		args = append(args, *filter.SessionID)
	}

	return query, args
}
