// Package core holds configuration, typed configuration errors, and the
// small shared atoms the rest of the editor backend composes.
package core

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// EditorDefaults are the tunable editor behaviors, overridable from a YAML
// file. The interactive snap thresholds themselves are fixed constants in
// the geometry package; these knobs only cover inputs the geometry engine
// takes per call.
type EditorDefaults struct {
	// ScaleFactor sizes newly inserted layers relative to their target area.
	ScaleFactor float64 `yaml:"scale_factor"`

	// Placement anchors new layers: "top-left" or "center".
	Placement string `yaml:"placement"`

	// DisableSnapping turns off edge/center snapping during drags.
	DisableSnapping bool `yaml:"disable_snapping"`

	// PreviewMaxSize bounds the longest edge of locally rendered previews.
	PreviewMaxSize int `yaml:"preview_max_size"`
}

// DefaultEditorDefaults returns the built-in editor tuning.
func DefaultEditorDefaults() EditorDefaults {
	return EditorDefaults{
		ScaleFactor:    0.9,
		Placement:      "top-left",
		PreviewMaxSize: 1024,
	}
}

// LoadEditorDefaults reads editor tuning from a YAML file. A missing file is
// not an error; the built-in defaults are returned. Unset numeric fields
// fall back to their defaults so a partial file stays valid.
func LoadEditorDefaults(path string) (EditorDefaults, error) {
	defaults := DefaultEditorDefaults()
	if path == "" {
		return defaults, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return defaults, nil
	}
	if err != nil {
		return defaults, fmt.Errorf("read editor defaults: %w", err)
	}

	if err := yaml.Unmarshal(data, &defaults); err != nil {
		return DefaultEditorDefaults(), ErrInvalidEditorDefaults(path, err.Error())
	}
	if defaults.ScaleFactor <= 0 {
		defaults.ScaleFactor = DefaultEditorDefaults().ScaleFactor
	}
	if defaults.PreviewMaxSize <= 0 {
		defaults.PreviewMaxSize = DefaultEditorDefaults().PreviewMaxSize
	}
	return defaults, nil
}

// Config holds all configuration for the editor backend.
type Config struct {
	// Imagor service the editor builds transform requests against.
	ImagorBaseURL        string
	ImagorSecret         string
	AllowSelfSignedCerts bool

	// HTTP server.
	Host string
	Port int

	// EditorPassword protects the editor API; empty disables auth.
	EditorPassword string

	// Persistence.
	DatabasePath   string
	MigrationsPath string

	// AutosaveDelay is how long the session autosaver coalesces writes.
	AutosaveDelay time.Duration

	// ShutdownTimeout bounds the graceful shutdown sequence.
	ShutdownTimeout time.Duration

	LogFilePath string
	DevMode     bool

	Defaults EditorDefaults
}

// LoadConfig builds the configuration from environment variables (load a
// .env file first if desired) and the optional EDITOR_DEFAULTS_FILE YAML.
func LoadConfig() (*Config, error) {
	imagorURL := os.Getenv("IMAGOR_URL")
	if imagorURL == "" {
		return nil, ErrMissingConfig("IMAGOR_URL")
	}
	if parsed, err := url.Parse(imagorURL); err != nil {
		return nil, ErrInvalidImagorURL(imagorURL, err.Error())
	} else if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, ErrInvalidImagorURL(imagorURL, "scheme must be http or https")
	}

	defaults, err := LoadEditorDefaults(GetEnvOrDefault("EDITOR_DEFAULTS_FILE", "editor.yaml"))
	if err != nil {
		return nil, err
	}

	return &Config{
		ImagorBaseURL:        imagorURL,
		ImagorSecret:         os.Getenv("IMAGOR_SECRET"),
		AllowSelfSignedCerts: ParseBoolEnv("ALLOW_SELF_SIGNED_CERTS", false),
		Host:                 GetEnvOrDefault("HOST", "localhost"),
		Port:                 ParseIntEnv("PORT", 3000),
		EditorPassword:       os.Getenv("EDITOR_PASSWORD"),
		DatabasePath:         GetEnvOrDefault("DATABASE_PATH", "editor.sqlite"),
		MigrationsPath:       GetEnvOrDefault("MIGRATIONS_PATH", "file://db/migrations"),
		AutosaveDelay:        ParseDurationEnv("AUTOSAVE_DELAY_SECONDS", 2),
		ShutdownTimeout:      ParseDurationEnv("SHUTDOWN_TIMEOUT_SECONDS", 30),
		LogFilePath:          GetEnvOrDefault("LOG_FILE", "editor.log"),
		DevMode:              ParseBoolEnv("DEV_MODE", false),
		Defaults:             defaults,
	}, nil
}
