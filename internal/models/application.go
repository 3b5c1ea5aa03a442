package models

import "time"

// Questionnaire field names, in step order.
const (
	FieldPropertyType = "propertyType"
	FieldAddress      = "address"
	FieldFirstName    = "firstName"
	FieldLastName     = "lastName"
	FieldEmail        = "email"
	FieldPhone        = "phone"
)

// ApplicationState is the questionnaire position plus captured fields.
type ApplicationState struct {
	CurrentStep int               `json:"current_step"`
	Fields      map[string]string `json:"fields"`
}

// SubmissionPayload is the lead handed to the delivery collaborator.
type SubmissionPayload map[string]string

// DeliveryStatus classifies the outcome of a webhook delivery.
type DeliveryStatus string

const (
	DeliveryDelivered DeliveryStatus = "delivered"
	DeliveryRejected  DeliveryStatus = "rejected"
	DeliveryFailed    DeliveryStatus = "failed"
	DeliveryDropped   DeliveryStatus = "dropped"
	DeliverySkipped   DeliveryStatus = "skipped"
)

// LeadSubmission is an accepted questionnaire submission together with its
// delivery outcome, as kept in the audit log.
type LeadSubmission struct {
	ID             int64          `json:"id" db:"id"`
	SessionID      string         `json:"session_id" db:"session_id"`
	PropertyType   string         `json:"property_type" db:"property_type"`
	Address        string         `json:"address" db:"address"`
	FirstName      string         `json:"first_name" db:"first_name"`
	LastName       string         `json:"last_name" db:"last_name"`
	Email          string         `json:"email" db:"email"`
	Phone          string         `json:"phone" db:"phone"`
	DeliveryStatus DeliveryStatus `json:"delivery_status" db:"delivery_status"`
	HTTPStatus     *int           `json:"http_status,omitempty" db:"http_status"`
	DeliveryError  *string        `json:"delivery_error,omitempty" db:"delivery_error"`
	SubmittedAt    time.Time      `json:"submitted_at" db:"submitted_at"`
	DeliveredAt    *time.Time     `json:"delivered_at,omitempty" db:"delivered_at"`
}

// NewLeadSubmission copies the known payload fields into a LeadSubmission.
func NewLeadSubmission(sessionID string, payload SubmissionPayload, submittedAt time.Time) *LeadSubmission {
	return &LeadSubmission{
		SessionID:    sessionID,
		PropertyType: payload[FieldPropertyType],
		Address:      payload[FieldAddress],
		FirstName:    payload[FieldFirstName],
		LastName:     payload[FieldLastName],
		Email:        payload[FieldEmail],
		Phone:        payload[FieldPhone],
		SubmittedAt:  submittedAt.UTC(),
	}
}
