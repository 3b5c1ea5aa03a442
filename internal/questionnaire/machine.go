// Package questionnaire implements the six-step lead intake flow: step
// position, captured fields, per-step validation and final submission.
//
// A Machine has a single owner and is not safe for concurrent use.
package questionnaire

import (
	"strings"

	"energy-calculator/internal/models"
)

// TotalSteps is the number of data-entry steps; step 6 ends with submit.
const TotalSteps = 6

// Step-level requirements. Step 1 advances through SelectOption and step 5
// (email) is optional.
var stepRequirements = map[int]string{
	2: models.FieldAddress,
	3: models.FieldFirstName,
	4: models.FieldLastName,
	6: models.FieldPhone,
}

// Fields that must be present at submit, in report order.
var submitRequirements = []string{
	models.FieldPropertyType,
	models.FieldFirstName,
	models.FieldLastName,
	models.FieldPhone,
}

var knownFields = map[string]bool{
	models.FieldPropertyType: true,
	models.FieldAddress:      true,
	models.FieldFirstName:    true,
	models.FieldLastName:     true,
	models.FieldEmail:        true,
	models.FieldPhone:        true,
}

// Machine tracks one questionnaire session.
type Machine struct {
	step   int
	fields map[string]string
}

// New returns a started machine at step 1 with no fields.
func New() *Machine {
	m := &Machine{}
	m.Start()
	return m
}

// Start resets the machine to step 1 and clears every captured field.
func (m *Machine) Start() {
	m.step = 1
	m.fields = make(map[string]string)
}

// Step returns the current step.
func (m *Machine) Step() int {
	return m.step
}

// State returns a copy of the current state.
func (m *Machine) State() models.ApplicationState {
	fields := make(map[string]string, len(m.fields))
	for k, v := range m.fields {
		fields[k] = v
	}
	return models.ApplicationState{CurrentStep: m.step, Fields: fields}
}

// SelectOption records a choice made on step 1 and advances.
func (m *Machine) SelectOption(field, value string) error {
	if m.step != 1 {
		return models.ErrNotOptionStep
	}
	if !knownFields[field] {
		return &models.UnknownFieldError{Field: field}
	}
	m.fields[field] = value
	return m.Next()
}

// Capture stores a field value typed by the user. Phone numbers are
// normalized with FormatPhone on every capture.
func (m *Machine) Capture(field, value string) error {
	if !knownFields[field] {
		return &models.UnknownFieldError{Field: field}
	}
	if field == models.FieldPhone {
		value = FormatPhone(value)
	}
	m.fields[field] = value
	return nil
}

// Next advances one step unless the current step's required field is blank.
// The last step is sticky.
func (m *Machine) Next() error {
	if err := m.ValidateStep(); err != nil {
		return err
	}
	if m.step < TotalSteps {
		m.step++
	}
	return nil
}

// Previous moves back one step; at step 1 it does nothing.
func (m *Machine) Previous() {
	if m.step > 1 {
		m.step--
	}
}

// ValidateStep checks the required field of the current step, if any.
func (m *Machine) ValidateStep() error {
	field, ok := stepRequirements[m.step]
	if !ok {
		return nil
	}
	if strings.TrimSpace(m.fields[field]) == "" {
		return &models.StepValidationError{Step: m.step, Field: field}
	}
	return nil
}

// Submit checks the submit-time required fields and, when all are present,
// returns every captured field and resets the machine. On failure the state
// is left untouched.
func (m *Machine) Submit() (models.SubmissionPayload, error) {
	var missing []string
	for _, field := range submitRequirements {
		if m.fields[field] == "" {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return nil, &models.SubmissionError{Missing: missing}
	}

	payload := make(models.SubmissionPayload, len(m.fields))
	for k, v := range m.fields {
		payload[k] = v
	}
	m.Start()
	return payload, nil
}

// Close abandons the session: back to step 1, fields cleared.
func (m *Machine) Close() {
	m.Start()
}

// Progress returns the current step, the step count and the completion
// percentage shown on the progress bar.
func (m *Machine) Progress() (step, total int, percent float64) {
	return m.step, TotalSteps, float64(m.step) / TotalSteps * 100
}

// AddressPrompt returns the step-2 question, which depends on the property
// type chosen on step 1.
func (m *Machine) AddressPrompt() string {
	if m.fields[models.FieldPropertyType] == "homeowner" {
		return "What is your home address?"
	}
	return "What is your rental property address?"
}
