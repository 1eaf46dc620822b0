package manifest

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLoader(t *testing.T, content string) (*Loader, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "project.toml")
	if content != "" {
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}
	return NewLoader(path, slog.New(slog.NewTextHandler(io.Discard, nil))), path
}

func TestVersion(t *testing.T) {
	l, _ := newTestLoader(t, "[project]\nname = \"birthday-tracker\"\nversion = \"1.2.3\"\n")

	v, err := l.Version()
	require.NoError(t, err)
	assert.Equal(t, "1.2.3", v)
}

func TestVersion_CachedAfterSuccess(t *testing.T) {
	l, path := newTestLoader(t, "[project]\nversion = \"1.2.3\"\n")

	_, err := l.Version()
	require.NoError(t, err)

	// Changing or deleting the file no longer matters.
	require.NoError(t, os.Remove(path))

	v, err := l.Version()
	require.NoError(t, err)
	assert.Equal(t, "1.2.3", v)
}

func TestVersion_RetriesAfterFailure(t *testing.T) {
	l, path := newTestLoader(t, "")

	_, err := l.Version()
	require.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("[project]\nversion = \"2.0.0\"\n"), 0o600))

	v, err := l.Version()
	require.NoError(t, err)
	assert.Equal(t, "2.0.0", v)
}

func TestVersion_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"missing file", "", "no such file"},
		{"invalid toml", "[project\nversion=", "parsing"},
		{"missing version", "[project]\nname = \"x\"\n", "project.version is missing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, _ := newTestLoader(t, tt.content)
			_, err := l.Version()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
