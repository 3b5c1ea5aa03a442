package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/goccy/go-json"

	"energy-calculator/internal/chart"
	"energy-calculator/internal/models"
	"energy-calculator/pkg/logging"
	"energy-calculator/pkg/metrics"
)

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 64 << 10

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string   `json:"error"`
	Message string   `json:"message"`
	Code    int      `json:"code"`
	Field   string   `json:"field,omitempty"`
	Reason  string   `json:"reason,omitempty"`
	Missing []string `json:"missing,omitempty"`
}

// PaginatedResponse represents a paginated API response
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Total      int         `json:"total"`
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
	TotalPages int         `json:"total_pages"`
}

// responder carries the logger and metrics shared by every handler.
type responder struct {
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// sendJSON sends a JSON response
func (h *responder) sendJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// sendError sends an error response
func (h *responder) sendError(w http.ResponseWriter, message string, statusCode int) {
	h.sendJSON(w, ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	}, statusCode)
}

// sendDomainError maps a service error onto its status code. Anything
// unrecognized is logged and reported as a 500.
func (h *responder) sendDomainError(w http.ResponseWriter, r *http.Request, endpoint string, err error) {
	resp := ErrorResponse{Message: err.Error()}

	var (
		inputErr   *models.InputValidationError
		stepErr    *models.StepValidationError
		submitErr  *models.SubmissionError
		fieldErr   *models.UnknownFieldError
		notFound   *models.NotFoundError
		errorLabel string
	)

	switch {
	case errors.As(err, &inputErr):
		resp.Code = http.StatusBadRequest
		resp.Message = inputErr.Message()
		resp.Field = inputErr.Field
		resp.Reason = string(inputErr.Reason)
		errorLabel = "invalid_input"
	case errors.As(err, &stepErr):
		resp.Code = http.StatusUnprocessableEntity
		resp.Message = stepErr.Message()
		resp.Field = stepErr.Field
		errorLabel = "step_incomplete"
	case errors.As(err, &submitErr):
		resp.Code = http.StatusUnprocessableEntity
		resp.Message = submitErr.Message()
		resp.Missing = submitErr.Missing
		errorLabel = "submission_incomplete"
	case errors.As(err, &fieldErr):
		resp.Code = http.StatusBadRequest
		resp.Field = fieldErr.Field
		errorLabel = "unknown_field"
	case errors.Is(err, models.ErrNotOptionStep):
		resp.Code = http.StatusBadRequest
		errorLabel = "not_option_step"
	case errors.As(err, &notFound):
		resp.Code = http.StatusNotFound
		errorLabel = "not_found"
	case errors.Is(err, chart.ErrUnknownHandle):
		resp.Code = http.StatusNotFound
		errorLabel = "not_found"
	case errors.Is(err, chart.ErrRegistryFull):
		resp.Code = http.StatusTooManyRequests
		errorLabel = "too_many_charts"
	default:
		resp.Code = http.StatusInternalServerError
		resp.Message = "internal server error"
		errorLabel = "internal_error"
		h.logger.Error(r.Context(), "[API_ERROR] Request failed", logging.Fields{
			"endpoint": endpoint,
			"method":   r.Method,
		}, err)
	}

	resp.Error = http.StatusText(resp.Code)
	h.metrics.RecordAPIError(errorLabel, endpoint)
	h.sendJSON(w, resp, resp.Code)
}

// decodeJSON reads a bounded JSON body into dst. An empty body leaves dst
// untouched.
func decodeJSON(r *http.Request, dst interface{}) error {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return err
	}
	if len(data) > maxBodyBytes {
		return errors.New("request body too large")
	}
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, dst)
}

// pagination reads page and limit query parameters with the given defaults.
func pagination(r *http.Request, defaultLimit, maxLimit int) (page, limit int) {
	page, limit = 1, defaultLimit

	if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && p > 0 {
		page = p
	}
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 && l <= maxLimit {
		limit = l
	}
	return page, limit
}
