package repository

import (
	"context"

	"docdb-dashboard/internal/environment/domain/model"
)

// EnvironmentRepository persists connection profiles. Implementations return
// an error satisfying errors.IsNotFound for unknown IDs and hand back
// passwords in clear.
type EnvironmentRepository interface {
	List(ctx context.Context) ([]*model.Environment, error)
	Get(ctx context.Context, id string) (*model.Environment, error)
	Save(ctx context.Context, env *model.Environment) error
	Delete(ctx context.Context, id string) error

	// SetActive marks id as the only active profile and returns it.
	SetActive(ctx context.Context, id string) (*model.Environment, error)

	// Active returns the active profile, or nil when none is.
	Active(ctx context.Context) (*model.Environment, error)
}

// PasswordSealer encrypts passwords at rest.
type PasswordSealer interface {
	Seal(plaintext string) ([]byte, error)
	Open(sealed []byte) (string, error)
}
