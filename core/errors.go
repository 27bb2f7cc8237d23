package core

import (
	"fmt"
)

// ConfigError represents a configuration-related error with actionable instructions.
type ConfigError struct {
	Code    string // Error code for programmatic handling
	Message string // Human-readable error message
	Action  string // Actionable instruction for resolution
}

func (e *ConfigError) Error() string {
	if e.Action != "" {
		return fmt.Sprintf("%s. %s", e.Message, e.Action)
	}
	return e.Message
}

// Error codes for configuration errors
const (
	ErrCodeEnvFileMissing        = "ENV_FILE_MISSING"
	ErrCodeInvalidImagorURL      = "INVALID_IMAGOR_URL"
	ErrCodeImagorUnreachable     = "IMAGOR_UNREACHABLE"
	ErrCodeMissingConfig         = "MISSING_CONFIG"
	ErrCodeInvalidEditorDefaults = "INVALID_EDITOR_DEFAULTS"
)

// ErrEnvFileMissing returns an error for missing .env file
func ErrEnvFileMissing(path string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeEnvFileMissing,
		Message: fmt.Sprintf("Configuration file not found: %s", path),
		Action:  "Copy example.env to .env and configure the required values",
	}
}

// ErrInvalidImagorURL returns an error for invalid imagor base URL format
func ErrInvalidImagorURL(url string, reason string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeInvalidImagorURL,
		Message: fmt.Sprintf("Invalid IMAGOR_URL '%s': %s", url, reason),
		Action:  "Set IMAGOR_URL to a valid URL (e.g., https://imagor.example.com)",
	}
}

// ErrImagorUnreachable returns an error when the imagor service cannot be reached
func ErrImagorUnreachable(url string, reason string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeImagorUnreachable,
		Message: fmt.Sprintf("Cannot connect to imagor at %s: %s", url, reason),
		Action:  "Check that IMAGOR_URL is correct and the service is running. For self-signed certificates, set ALLOW_SELF_SIGNED_CERTS=true",
	}
}

// ErrMissingConfig returns an error for missing required configuration
func ErrMissingConfig(varName string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeMissingConfig,
		Message: fmt.Sprintf("Missing required configuration: %s", varName),
		Action:  fmt.Sprintf("Set %s in your .env file", varName),
	}
}

// ErrInvalidEditorDefaults returns an error for an unparsable editor defaults file
func ErrInvalidEditorDefaults(path string, reason string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeInvalidEditorDefaults,
		Message: fmt.Sprintf("Invalid editor defaults file %s: %s", path, reason),
		Action:  "Fix the YAML syntax or remove the file to use built-in defaults",
	}
}

// IsConfigError checks if an error is a ConfigError and returns it if so
func IsConfigError(err error) (*ConfigError, bool) {
	if configErr, ok := err.(*ConfigError); ok {
		return configErr, true
	}
	return nil, false
}

// GetErrorCode extracts the error code from an error if it's a ConfigError
func GetErrorCode(err error) string {
	if configErr, ok := IsConfigError(err); ok {
		return configErr.Code
	}
	return ""
}
