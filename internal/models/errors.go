package models

import (
	"errors"
	"fmt"
	"strings"
)

// InputReason names the constraint a projection input failed.
type InputReason string

const (
	ReasonMissing     InputReason = "missing"
	ReasonNonNumeric  InputReason = "non_numeric"
	ReasonNonPositive InputReason = "non_positive"
	ReasonNegative    InputReason = "negative"
)

// InputValidationError reports a missing, non-numeric or out-of-range
// calculator input. No projection is produced when it is returned.
type InputValidationError struct {
	Field  string
	Value  string
	Reason InputReason
}

func (e *InputValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message())
}

// Message returns the user-facing notice for the failure.
func (e *InputValidationError) Message() string {
	switch e.Reason {
	case ReasonMissing, ReasonNonNumeric:
		return "Please fill in all fields with valid numbers."
	default:
		return "Please enter positive values for all fields."
	}
}

// IsTransient returns false as validation errors are permanent
func (e *InputValidationError) IsTransient() bool {
	return false
}

// StepValidationError reports a blank required field that blocks a step
// transition.
type StepValidationError struct {
	Step  int
	Field string
}

func (e *StepValidationError) Error() string {
	return fmt.Sprintf("step %d: %s is required", e.Step, e.Field)
}

// Message returns the user-facing notice naming the field.
func (e *StepValidationError) Message() string {
	switch e.Field {
	case FieldAddress:
		return "Please enter your address."
	case FieldFirstName:
		return "Please enter your first name."
	case FieldLastName:
		return "Please enter your last name."
	case FieldPhone:
		return "Please enter your phone number."
	default:
		return fmt.Sprintf("Please enter your %s.", e.Field)
	}
}

func (e *StepValidationError) IsTransient() bool {
	return false
}

// SubmissionError lists the required fields missing at submit time.
type SubmissionError struct {
	Missing []string
}

func (e *SubmissionError) Error() string {
	return "missing required fields: " + strings.Join(e.Missing, ", ")
}

// Message returns the user-facing notice.
func (e *SubmissionError) Message() string {
	return "Please fill in all required fields marked with *."
}

func (e *SubmissionError) IsTransient() bool {
	return false
}

// UnknownFieldError reports a capture for a field the questionnaire does not have.
type UnknownFieldError struct {
	Field string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("unknown questionnaire field: %q", e.Field)
}

// ErrNotOptionStep is returned when an option is selected away from step 1.
var ErrNotOptionStep = errors.New("options can only be selected on the first step")

// NotFoundError represents a resource not found error
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

func (e *NotFoundError) IsTransient() bool {
	return false
}
