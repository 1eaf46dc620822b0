// Package config loads typed application settings.
//
// Values are merged in increasing priority: compiled-in defaults, an optional
// local .env file, then the live process environment. Keys match
// case-insensitively (app_env and APP_ENV are the same setting) and unknown
// keys are ignored. A key that is present but empty is a value, not an absent
// key: LOG_LEVEL= fails validation instead of falling back to INFO.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment is the deployment flavour of the process.
type Environment string

const (
	Development Environment = "development"
	Production  Environment = "production"
)

// LogLevels lists the accepted LOG_LEVEL values in severity order.
var LogLevels = []string{"DEBUG", "INFO", "WARNING", "ERROR", "CRITICAL"}

const (
	DefaultDatabaseURL  = "sqlite://:memory:"
	DefaultLogFile      = "logs/app.log"
	DefaultManifestPath = "project.toml"
	DefaultPort         = 8080

	// DefaultEnvFile is read from the working directory when present.
	DefaultEnvFile = ".env"
)

// Config is immutable after Load returns.
type Config struct {
	AppEnv       Environment
	LogLevel     string
	DatabaseURL  string
	Port         int
	LogFile      string // "" disables file logging (LOG_FILE=- or LOG_FILE=)
	ManifestPath string
}

// IsDevelopment reports whether dev-only behaviour (SQL echo, seeding) is on.
func (c Config) IsDevelopment() bool {
	return c.AppEnv == Development
}

// Load reads the configuration from DefaultEnvFile and the environment.
func Load() (Config, error) {
	return LoadFrom(DefaultEnvFile)
}

// LoadFrom is Load with an explicit .env path. A missing file is not an error.
func LoadFrom(envFile string) (Config, error) {
	file := map[string]string{}
	if envFile != "" {
		values, err := godotenv.Read(envFile)
		switch {
		case err == nil:
			for k, v := range values {
				file[strings.ToUpper(k)] = v
			}
		case errors.Is(err, fs.ErrNotExist):
			// optional
		default:
			return Config{}, fmt.Errorf("config: reading %s: %w", envFile, err)
		}
	}

	lookup := func(key, def string) string {
		if v, ok := lookupEnv(key); ok {
			return strings.TrimSpace(v)
		}
		if v, ok := file[key]; ok {
			return strings.TrimSpace(v)
		}
		return def
	}

	appEnv, err := ParseEnvironment(lookup("APP_ENV", string(Development)))
	if err != nil {
		return Config{}, err
	}

	logLevel, err := ParseLogLevel(lookup("LOG_LEVEL", "INFO"))
	if err != nil {
		return Config{}, err
	}

	port, err := parsePort(lookup("PORT", strconv.Itoa(DefaultPort)))
	if err != nil {
		return Config{}, err
	}

	databaseURL := lookup("DATABASE_URL", DefaultDatabaseURL)
	if databaseURL == "" {
		return Config{}, errors.New("config: database_url must not be empty")
	}

	logFile := lookup("LOG_FILE", DefaultLogFile)
	if logFile == "-" {
		logFile = ""
	}

	return Config{
		AppEnv:       appEnv,
		LogLevel:     logLevel,
		DatabaseURL:  databaseURL,
		Port:         port,
		LogFile:      logFile,
		ManifestPath: lookup("MANIFEST_PATH", DefaultManifestPath),
	}, nil
}

// lookupEnv finds key in the process environment. The exact spelling wins;
// otherwise the first variable whose name matches ignoring case is used.
func lookupEnv(key string) (string, bool) {
	if v, ok := os.LookupEnv(key); ok {
		return v, true
	}
	for _, kv := range os.Environ() {
		name, value, found := strings.Cut(kv, "=")
		if found && strings.EqualFold(name, key) {
			return value, true
		}
	}
	return "", false
}

// ParseEnvironment normalises v case-insensitively.
func ParseEnvironment(v string) (Environment, error) {
	switch env := Environment(strings.ToLower(strings.TrimSpace(v))); env {
	case Development, Production:
		return env, nil
	default:
		return "", fmt.Errorf("config: app_env must be one of [%s %s], got %q", Development, Production, v)
	}
}

// ParseLogLevel upper-cases v and checks it against LogLevels.
func ParseLogLevel(v string) (string, error) {
	upper := strings.ToUpper(strings.TrimSpace(v))
	for _, allowed := range LogLevels {
		if upper == allowed {
			return upper, nil
		}
	}
	return "", fmt.Errorf("config: log_level must be one of %v, got %q", LogLevels, v)
}

func parsePort(v string) (int, error) {
	port, err := strconv.Atoi(v)
	if err != nil || port < 1 || port > 65535 {
		return 0, fmt.Errorf("config: port must be an integer between 1 and 65535, got %q", v)
	}
	return port, nil
}
