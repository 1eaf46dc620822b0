package handler

import (
	"log/slog"
	"net/http"
)

const (
	APIName     = "API birthday"
	DocsPath    = "/docs"
	OpenAPIPath = "/openapi.json"

	fallbackVersion = "0.0.0"
)

// VersionSource reports the application version (manifest.Loader).
type VersionSource interface {
	Version() (string, error)
}

// RootResponse is the body of GET /.
type RootResponse struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Message     string `json:"message"`
	Environment string `json:"environment"`
	Docs        string `json:"docs"`
	OpenAPI     string `json:"openapi"`
}

type MetaHandler struct {
	versions    VersionSource
	environment string
	logger      *slog.Logger
}

func NewMetaHandler(versions VersionSource, environment string, logger *slog.Logger) *MetaHandler {
	return &MetaHandler{versions: versions, environment: environment, logger: logger}
}

// HandleRoot describes the service. It always answers 200; a broken manifest
// only shows up in the version and message fields.
func (h *MetaHandler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	resp := RootResponse{
		Name:        APIName,
		Message:     "ok",
		Environment: h.environment,
		Docs:        DocsPath,
		OpenAPI:     OpenAPIPath,
	}

	version, err := h.versions.Version()
	if err != nil {
		h.logger.Warn("failed to read version", slog.String("error", err.Error()))
		version = fallbackVersion
		resp.Message = err.Error()
	}
	resp.Version = version

	writeJSON(w, http.StatusOK, resp)
}
