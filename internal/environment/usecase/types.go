package usecase

import (
	"strings"

	"docdb-dashboard/internal/environment/domain/model"
	"docdb-dashboard/internal/shared/errors"
)

// Request DTOs for the environment usecase

// CreateEnvironmentRequest is the body of POST /api/environments
type CreateEnvironmentRequest struct {
	model.EnvironmentInput
}

// UpdateEnvironmentRequest is the body of PUT /api/environments/:id.
// An empty password keeps the stored one.
type UpdateEnvironmentRequest struct {
	ID string `json:"-"`
	model.EnvironmentInput
}

// Validate checks the create form.
func (r CreateEnvironmentRequest) Validate() error {
	return validateInput(r.EnvironmentInput, true)
}

// Validate checks the update form.
func (r UpdateEnvironmentRequest) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return errors.NewValidationError("environment id is required")
	}
	return validateInput(r.EnvironmentInput, false)
}

func validateInput(in model.EnvironmentInput, passwordRequired bool) error {
	ve := errors.NewValidationErrors()

	if strings.TrimSpace(in.Name) == "" {
		ve.Add("name", "Environment name is required", in.Name)
	}
	if strings.TrimSpace(in.Hostname) == "" {
		ve.Add("hostname", "Hostname is required", in.Hostname)
	}
	if !isDigits(in.Port) {
		ve.Add("port", "Port must be a number", in.Port)
	}
	if strings.TrimSpace(in.Username) == "" {
		ve.Add("username", "Username is required", in.Username)
	}
	if passwordRequired && in.Password == "" {
		ve.Add("password", "Password is required", nil)
	}
	if strings.TrimSpace(in.Database) == "" {
		ve.Add("database", "Database name is required", in.Database)
	}

	if ve.HasErrors() {
		return ve
	}
	return nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
