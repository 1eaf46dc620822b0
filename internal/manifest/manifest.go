// Package manifest reads the project version from the build manifest
// (project.toml, table [project]).
package manifest

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/pelletier/go-toml/v2"
)

// PlaceholderVersion is reported when the manifest cannot be read.
const PlaceholderVersion = "0.0.0"

type document struct {
	Project struct {
		Name    string `toml:"name"`
		Version string `toml:"version"`
	} `toml:"project"`
}

// Loader reads the manifest lazily. A successful read is cached for the life
// of the process; failures are retried on the next call.
type Loader struct {
	path   string
	logger *slog.Logger

	mu      sync.Mutex
	version string
}

func NewLoader(path string, logger *slog.Logger) *Loader {
	return &Loader{path: path, logger: logger}
}

// Version returns the [project] version string.
func (l *Loader) Version() (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.version != "" {
		return l.version, nil
	}

	l.logger.Debug("reading manifest", slog.String("path", l.path))

	data, err := os.ReadFile(l.path)
	if err != nil {
		return "", fmt.Errorf("manifest: %w", err)
	}

	var doc document
	if err := toml.Unmarshal(data, &doc); err != nil {
		return "", fmt.Errorf("manifest: parsing %s: %w", l.path, err)
	}
	if doc.Project.Version == "" {
		return "", errors.New("manifest: project.version is missing")
	}

	l.version = doc.Project.Version
	return l.version, nil
}
