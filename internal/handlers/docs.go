package handlers

import (
	"net/http"

	"github.com/goccy/go-json"
)

type object = map[string]interface{}

func jsonContent(schema object) object {
	return object{
		"application/json": object{"schema": schema},
	}
}

func ref(name string) object {
	return object{"$ref": "#/components/schemas/" + name}
}

func response(description string, schema object) object {
	r := object{"description": description}
	if schema != nil {
		r["content"] = jsonContent(schema)
	}
	return r
}

func pathParam(name, description string) object {
	return object{
		"name":        name,
		"in":          "path",
		"description": description,
		"required":    true,
		"schema":      object{"type": "string"},
	}
}

func queryParam(name, description, typ string) object {
	return object{
		"name":        name,
		"in":          "query",
		"description": description,
		"required":    false,
		"schema":      object{"type": typ},
	}
}

// openAPIDocument describes the public API in OpenAPI 3.0 form.
func openAPIDocument() object {
	errorResponse := response("Error", ref("ErrorResponse"))
	snapshot := response("Questionnaire session", ref("ApplicationSnapshot"))
	projectionBody := object{
		"required": true,
		"content":  jsonContent(ref("ProjectionRequest")),
	}
	sessionID := pathParam("id", "Questionnaire session ID")
	chartID := pathParam("id", "Chart handle")

	return object{
		"openapi": "3.0.0",
		"info": object{
			"title":       apiTitle,
			"description": "30-year energy cost projections and the solar lead questionnaire",
			"version":     "1.0.0",
		},
		"servers": []object{
			{"url": "http://localhost:8080", "description": "Local development server"},
		},
		"paths": object{
			"/api/projection": object{
				"post": object{
					"summary":     "Calculate a 30-year projection",
					"description": "Values may be sent as JSON strings or numbers",
					"requestBody": projectionBody,
					"responses": object{
						"200": response("Projection, summary and chart data", ref("Projection")),
						"400": errorResponse,
					},
				},
				"get": object{
					"summary": "Calculate a 30-year projection from query parameters",
					"parameters": []object{
						queryParam("monthly_usage_kwh", "Monthly consumption in kWh", "number"),
						queryParam("price_per_kwh_cents", "Current price in cents per kWh", "number"),
						queryParam("rate_increase_percent", "Annual rate increase in percent", "number"),
					},
					"responses": object{
						"200": response("Projection, summary and chart data", ref("Projection")),
						"400": errorResponse,
					},
				},
			},
			"/api/projection/defaults": object{
				"get": object{
					"summary":   "Initial calculator form values",
					"responses": object{"200": response("Default inputs", nil)},
				},
			},
			"/api/projection/check": object{
				"get": object{
					"summary":     "Live feedback for one calculator field",
					"description": "A value is acceptable when it is a non-empty decimal number of at least zero",
					"parameters": []object{
						queryParam("field", "monthly_usage_kwh, price_per_kwh_cents or rate_increase_percent", "string"),
						queryParam("value", "Value as typed", "string"),
					},
					"responses": object{"200": response("Field check", nil), "400": errorResponse},
				},
			},
			"/api/charts": object{
				"post": object{
					"summary":     "Create a chart handle for a projection",
					"description": "Handles not read for CHART_IDLE_TTL are released",
					"requestBody": projectionBody,
					"responses": object{
						"201": response("Chart handle and data", nil),
						"400": errorResponse,
						"429": errorResponse,
					},
				},
			},
			"/api/charts/{id}": object{
				"parameters": []object{chartID},
				"get": object{
					"summary":   "Get chart data",
					"responses": object{"200": response("Chart handle and data", nil), "404": errorResponse},
				},
				"put": object{
					"summary":     "Replace a chart with a new projection",
					"description": "Destroys the given handle and returns a new one",
					"requestBody": projectionBody,
					"responses":   object{"200": response("New chart handle and data", nil), "400": errorResponse, "404": errorResponse},
				},
				"delete": object{
					"summary":   "Destroy a chart handle",
					"responses": object{"204": response("Destroyed", nil), "404": errorResponse},
				},
			},
			"/api/applications": object{
				"post": object{
					"summary":   "Start a questionnaire session",
					"responses": object{"201": snapshot},
				},
			},
			"/api/applications/{id}": object{
				"parameters": []object{sessionID},
				"get": object{
					"summary":   "Get a questionnaire session",
					"responses": object{"200": snapshot, "404": errorResponse},
				},
				"delete": object{
					"summary":   "Abandon a questionnaire session",
					"responses": object{"204": response("Closed", nil), "404": errorResponse},
				},
			},
			"/api/applications/{id}/option": object{
				"parameters": []object{sessionID},
				"post": object{
					"summary":     "Select the property type on step 1 and advance",
					"requestBody": object{"content": jsonContent(ref("OptionRequest"))},
					"responses":   object{"200": snapshot, "400": errorResponse, "404": errorResponse},
				},
			},
			"/api/applications/{id}/fields/{field}": object{
				"parameters": []object{sessionID, pathParam("field", "propertyType, address, firstName, lastName, email or phone")},
				"put": object{
					"summary":     "Capture a field value",
					"requestBody": object{"content": jsonContent(ref("ValueRequest"))},
					"responses":   object{"200": snapshot, "400": errorResponse, "404": errorResponse},
				},
			},
			"/api/applications/{id}/next": object{
				"parameters": []object{sessionID},
				"post": object{
					"summary":   "Advance one step",
					"responses": object{"200": snapshot, "404": errorResponse, "422": errorResponse},
				},
			},
			"/api/applications/{id}/previous": object{
				"parameters": []object{sessionID},
				"post": object{
					"summary":   "Go back one step",
					"responses": object{"200": snapshot, "404": errorResponse},
				},
			},
			"/api/applications/{id}/submit": object{
				"parameters": []object{sessionID},
				"post": object{
					"summary":   "Submit the questionnaire",
					"responses": object{"202": response("Accepted; delivery continues in the background", nil), "404": errorResponse, "422": errorResponse},
				},
			},
			"/api/format/phone": object{
				"post": object{
					"summary":     "Format a partial US phone number",
					"requestBody": object{"content": jsonContent(ref("ValueRequest"))},
					"responses":   object{"200": response("Formatted value", ref("ValueRequest"))},
				},
			},
			"/api/leads": object{
				"get": object{
					"summary": "List submitted leads",
					"parameters": []object{
						queryParam("status", "Delivery status filter", "string"),
						queryParam("session_id", "Session filter", "string"),
						queryParam("page", "Page number (default: 1)", "integer"),
						queryParam("limit", "Records per page (default: 50)", "integer"),
					},
					"responses": object{"200": response("Paginated submissions", nil), "503": errorResponse},
				},
			},
			"/health": object{
				"get": object{
					"summary":   "Health check",
					"responses": object{"200": response("Service is healthy", nil), "503": response("Database unavailable", nil)},
				},
			},
			"/metrics": object{
				"get": object{
					"summary":     "Prometheus metrics",
					"description": "Prometheus metrics endpoint for monitoring",
					"responses": object{
						"200": object{
							"description": "Prometheus metrics in text format",
							"content":     object{"text/plain": object{"schema": object{"type": "string"}}},
						},
					},
				},
			},
		},
		"components": object{
			"schemas": object{
				"ProjectionRequest": object{
					"type": "object",
					"properties": object{
						"monthly_usage_kwh":     object{"type": "number", "example": 800},
						"price_per_kwh_cents":   object{"type": "number", "example": 19.0},
						"rate_increase_percent": object{"type": "number", "example": 7.0},
					},
				},
				"Projection": object{
					"type": "object",
					"properties": object{
						"input":   object{"type": "object"},
						"result":  object{"type": "object"},
						"summary": object{"type": "object"},
						"chart":   object{"type": "object"},
					},
				},
				"ApplicationSnapshot": object{
					"type": "object",
					"properties": object{
						"id":               object{"type": "string"},
						"step":             object{"type": "integer"},
						"total_steps":      object{"type": "integer"},
						"progress_percent": object{"type": "number"},
						"fields":           object{"type": "object", "additionalProperties": object{"type": "string"}},
						"address_prompt":   object{"type": "string"},
					},
				},
				"OptionRequest": object{
					"type": "object",
					"properties": object{
						"field": object{"type": "string", "example": "propertyType"},
						"value": object{"type": "string", "example": "homeowner"},
					},
				},
				"ValueRequest": object{
					"type":       "object",
					"properties": object{"value": object{"type": "string"}},
				},
				"ErrorResponse": object{
					"type": "object",
					"properties": object{
						"error":   object{"type": "string"},
						"message": object{"type": "string"},
						"code":    object{"type": "integer"},
						"field":   object{"type": "string"},
						"reason":  object{"type": "string"},
						"missing": object{"type": "array", "items": object{"type": "string"}},
					},
				},
			},
		},
	}
}

// OpenAPISpec returns the OpenAPI 3.0 specification for the API
func OpenAPISpec(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(openAPIDocument())
}
