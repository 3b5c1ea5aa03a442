package handlers

import (
	"html/template"
	"net/http"

	"energy-calculator/pkg/logging"
)

const (
	apiTitle          = "Energy Cost Calculator API"
	openAPIPath       = "/api/docs/openapi.json"
	swaggerAssetsBase = "https://unpkg.com/swagger-ui-dist@5.10.0"
)

type docsPage struct {
	Title      string
	SpecURL    string
	AssetsBase string
}

var docsTemplate = template.Must(template.New("docs").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>{{.Title}} Documentation</title>
    <link rel="stylesheet" href="{{.AssetsBase}}/swagger-ui.css">
    <style>body { margin: 0; }</style>
</head>
<body>
    <div id="swagger-ui"></div>
    <script src="{{.AssetsBase}}/swagger-ui-bundle.js"></script>
    <script>
        window.onload = function() {
            window.ui = SwaggerUIBundle({
                url: {{.SpecURL}},
                dom_id: "#swagger-ui",
                deepLinking: true,
                tryItOutEnabled: true
            });
        };
    </script>
</body>
</html>`))

// SwaggerUI serves the interactive documentation page for the OpenAPI document.
func (h *SystemHandler) SwaggerUI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	page := docsPage{Title: apiTitle, SpecURL: openAPIPath, AssetsBase: swaggerAssetsBase}
	if err := docsTemplate.Execute(w, page); err != nil {
		h.logger.Error(r.Context(), "[DOCS_ERROR] Failed to render documentation page", logging.Fields{}, err)
	}
}
