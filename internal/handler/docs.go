package handler

import (
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi31"

	"github.com/sakif/birthday-tracker/internal/model"
)

// DocsHandler serves the machine-readable API description and a Swagger UI
// page rendering it.
type DocsHandler struct {
	versions VersionSource
	page     *template.Template
	logger   *slog.Logger
}

func NewDocsHandler(versions VersionSource, logger *slog.Logger) *DocsHandler {
	return &DocsHandler{
		versions: versions,
		page:     template.Must(template.New("docs").Parse(docsPage)),
		logger:   logger,
	}
}

// HandleOpenAPI serves GET /openapi.json.
func (h *DocsHandler) HandleOpenAPI(w http.ResponseWriter, r *http.Request) {
	version, err := h.versions.Version()
	if err != nil {
		version = fallbackVersion
	}

	doc, err := openAPIDocument(version)
	if err != nil {
		h.logger.Error("failed to build OpenAPI document", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// HandleDocs serves GET /docs.
func (h *DocsHandler) HandleDocs(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := h.page.Execute(w, struct {
		Title       string
		DocumentURL string
	}{
		Title:       APIName + " - Swagger UI",
		DocumentURL: OpenAPIPath,
	})
	if err != nil {
		h.logger.Error("failed to render docs page", slog.String("error", err.Error()))
	}
}

// openAPIDocument reflects the OpenAPI 3.1 description from the request and
// response types themselves, so a field added to model.UserCreate shows up in
// /openapi.json without touching this file.
//
// REFLECTION RULES (swaggest/jsonschema-go):
//   - json tags name the properties
//   - required:"true" lists a property as required
//   - pointer fields become nullable (type: [string, null])
func openAPIDocument(version string) (*openapi31.Spec, error) {
	r := openapi31.NewReflector()
	r.Spec = &openapi31.Spec{Openapi: "3.1.0"}
	r.Spec.Info.
		WithTitle(APIName).
		WithVersion(version)

	root, err := r.NewOperationContext(http.MethodGet, "/")
	if err != nil {
		return nil, err
	}
	root.SetSummary("Service description")
	root.AddRespStructure(new(RootResponse), withStatus(http.StatusOK))
	if err := r.AddOperation(root); err != nil {
		return nil, fmt.Errorf("describing GET /: %w", err)
	}

	createUser, err := r.NewOperationContext(http.MethodPost, "/users/")
	if err != nil {
		return nil, err
	}
	createUser.SetSummary("Create User")
	createUser.AddReqStructure(new(model.UserCreate))
	createUser.AddRespStructure(new(model.UserPublic), withStatus(http.StatusOK))
	createUser.AddRespStructure(new(DetailResponse), withStatus(http.StatusConflict))
	createUser.AddRespStructure(new(ValidationErrorResponse), withStatus(http.StatusUnprocessableEntity))
	if err := r.AddOperation(createUser); err != nil {
		return nil, fmt.Errorf("describing POST /users/: %w", err)
	}

	return r.Spec, nil
}

func withStatus(status int) openapi.ContentOption {
	return func(cu *openapi.ContentUnit) {
		cu.HTTPStatus = status
	}
}

var docsPage = fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<link rel="stylesheet" href="%[1]s/swagger-ui.css">
</head>
<body>
<div id="swagger-ui"></div>
<script src="%[1]s/swagger-ui-bundle.js"></script>
<script>
window.ui = SwaggerUIBundle({
  url: "{{.DocumentURL}}",
  dom_id: "#swagger-ui",
  deepLinking: true,
});
</script>
</body>
</html>
`, swaggerUICDN)

const swaggerUICDN = "https://cdn.jsdelivr.net/npm/swagger-ui-dist@5"
