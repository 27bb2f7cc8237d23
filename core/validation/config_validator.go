package validation

import (
	"go_editor/core"
)

// ValidationResult represents the result of a configuration validation check.
type ValidationResult struct {
	Valid   bool
	Message string
	Error   error
}

// ConfigValidator composes validation atoms to provide comprehensive configuration checking.
// This is a molecule that orchestrates URL validation, file existence, and editor defaults checks.
type ConfigValidator struct {
	envPath      string // Path to .env file (default: ".env")
	defaultsPath string // Path to editor defaults YAML (default: "editor.yaml")
}

// NewConfigValidator creates a new ConfigValidator with default settings.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{
		envPath:      ".env",
		defaultsPath: "editor.yaml",
	}
}

// WithEnvPath sets a custom path for the .env file.
func (v *ConfigValidator) WithEnvPath(path string) *ConfigValidator {
	v.envPath = path
	return v
}

// WithDefaultsPath sets a custom path for the editor defaults file.
func (v *ConfigValidator) WithDefaultsPath(path string) *ConfigValidator {
	v.defaultsPath = path
	return v
}

// CheckEnvFile validates that the .env file exists.
// Returns a ValidationResult with error details if the file is missing.
func (v *ConfigValidator) CheckEnvFile() ValidationResult {
	if err := CheckFileExists(v.envPath); err != nil {
		return ValidationResult{
			Valid:   false,
			Message: "Configuration file not found. Copy example.env to .env and configure your imagor connection.",
			Error:   core.ErrEnvFileMissing(v.envPath),
		}
	}
	return ValidationResult{
		Valid:   true,
		Message: "Environment file found",
	}
}

// CheckImagorURL validates the IMAGOR_URL environment variable.
// Returns a ValidationResult with error details if the URL is invalid.
func (v *ConfigValidator) CheckImagorURL() ValidationResult {
	imagorURL := core.GetEnvOrDefault("IMAGOR_URL", "")

	if imagorURL == "" {
		return ValidationResult{
			Valid:   false,
			Message: "IMAGOR_URL required. Set your imagor instance URL (e.g., https://imagor.example.com)",
			Error:   core.ErrMissingConfig("IMAGOR_URL"),
		}
	}

	if err := ValidateServiceURL(imagorURL); err != nil {
		return ValidationResult{
			Valid:   false,
			Message: "Invalid imagor URL: " + imagorURL + ". Example: https://imagor.example.com",
			Error:   core.ErrInvalidImagorURL(imagorURL, err.Error()),
		}
	}

	return ValidationResult{
		Valid:   true,
		Message: "Imagor URL valid",
	}
}

// CheckEditorDefaults validates that the editor defaults file, when present,
// parses cleanly. A missing file is valid because built-in defaults apply.
func (v *ConfigValidator) CheckEditorDefaults() ValidationResult {
	if err := CheckFileExists(v.defaultsPath); err != nil {
		return ValidationResult{
			Valid:   true,
			Message: "No editor defaults file, using built-in defaults",
		}
	}

	if _, err := core.LoadEditorDefaults(v.defaultsPath); err != nil {
		return ValidationResult{
			Valid:   false,
			Message: "Editor defaults file is not valid YAML: " + v.defaultsPath,
			Error:   err,
		}
	}

	return ValidationResult{
		Valid:   true,
		Message: "Editor defaults valid",
	}
}

// ValidateRequired runs only the required configuration checks.
// Returns the first validation failure, or nil if all required checks pass.
func (v *ConfigValidator) ValidateRequired() error {
	if result := v.CheckEnvFile(); !result.Valid {
		return result.Error
	}

	if result := v.CheckImagorURL(); !result.Valid {
		return result.Error
	}

	if result := v.CheckEditorDefaults(); !result.Valid {
		return result.Error
	}

	return nil
}

// IsValid returns true if all required configuration is valid.
func (v *ConfigValidator) IsValid() bool {
	return v.ValidateRequired() == nil
}

// GetFirstError returns the first validation error, or nil if all required checks pass.
func (v *ConfigValidator) GetFirstError() error {
	return v.ValidateRequired()
}
