package usecase

import (
	"context"
	"strings"
	"sync"
	"time"

	"docdb-dashboard/internal/environment/domain/model"
	"docdb-dashboard/internal/environment/domain/repository"
	"docdb-dashboard/internal/shared/errors"
	"docdb-dashboard/internal/shared/eventbus"
	"docdb-dashboard/internal/shared/logger"
	"docdb-dashboard/internal/shared/utils"

	"github.com/google/uuid"
)

const eventSource = "environment"

// EnvironmentUsecaseInterface defines the contract for managing connection profiles.
// Every returned environment has its password masked.
type EnvironmentUsecaseInterface interface {
	ListEnvironments(ctx context.Context) ([]model.Environment, error)
	CreateEnvironment(ctx context.Context, req CreateEnvironmentRequest) (*model.Environment, error)
	UpdateEnvironment(ctx context.Context, req UpdateEnvironmentRequest) (*model.Environment, error)
	DeleteEnvironment(ctx context.Context, id string) error
	ActivateEnvironment(ctx context.Context, id string) (*model.Environment, error)

	// RestoreActive re-applies the stored active profile, typically at startup.
	RestoreActive(ctx context.Context) error
}

// EnvironmentUsecase implements EnvironmentUsecaseInterface
type EnvironmentUsecase struct {
	repo   repository.EnvironmentRepository
	events eventbus.Publisher
	logger logger.Logger

	// mu orders writes so subscribers always see the latest activation.
	mu    sync.Mutex
	now   func() time.Time
	newID func() string
}

// NewEnvironmentUsecase creates a new EnvironmentUsecase. events may be nil.
// Activation events carry the *model.Environment with its password in clear;
// deletion events carry the id.
func NewEnvironmentUsecase(repo repository.EnvironmentRepository, events eventbus.Publisher, log logger.Logger) *EnvironmentUsecase {
	return &EnvironmentUsecase{
		repo:   repo,
		events: events,
		logger: log.WithComponent("environment_usecase"),
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
	}
}

var _ EnvironmentUsecaseInterface = (*EnvironmentUsecase)(nil)

func maskAll(envs []*model.Environment) []model.Environment {
	out := make([]model.Environment, 0, len(envs))
	for _, e := range envs {
		out = append(out, e.Masked())
	}
	return out
}

func masked(env *model.Environment) *model.Environment {
	m := env.Masked()
	return &m
}

// ListEnvironments returns every profile sorted by name.
func (uc *EnvironmentUsecase) ListEnvironments(ctx context.Context) ([]model.Environment, error) {
	envs, err := uc.repo.List(ctx)
	if err != nil {
		uc.logger.WithContext(ctx).WithFields(map[string]interface{}{"error": err.Error()}).Error("Failed to list environments")
		return nil, err
	}
	return maskAll(envs), nil
}

// CreateEnvironment stores a new inactive profile.
func (uc *EnvironmentUsecase) CreateEnvironment(ctx context.Context, req CreateEnvironmentRequest) (*model.Environment, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	now := uc.now()
	env := &model.Environment{ID: uc.newID(), CreatedAt: now}
	applyInput(env, req.EnvironmentInput)
	env.UpdatedAt = now

	if err := uc.repo.Save(ctx, env); err != nil {
		uc.logger.WithContext(ctx).WithFields(map[string]interface{}{"name": env.Name, "error": err.Error()}).Error("Failed to save environment")
		return nil, err
	}

	uc.logger.WithContext(ctx).WithFields(map[string]interface{}{"id": env.ID, "name": env.Name}).Info("Environment created")
	return masked(env), nil
}

// UpdateEnvironment replaces the editable fields of a profile. When the
// profile is active the new connection details take effect immediately.
func (uc *EnvironmentUsecase) UpdateEnvironment(ctx context.Context, req UpdateEnvironmentRequest) (*model.Environment, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	ctx = utils.WithEnvironmentID(ctx, req.ID)
	env, err := uc.repo.Get(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	// An empty or echoed masked password keeps the stored one.
	password := env.Password
	applyInput(env, req.EnvironmentInput)
	if req.Password == "" || req.Password == model.MaskedPassword {
		env.Password = password
	}
	env.UpdatedAt = uc.now()

	if err := uc.repo.Save(ctx, env); err != nil {
		uc.logger.WithContext(ctx).WithFields(map[string]interface{}{"error": err.Error()}).Error("Failed to update environment")
		return nil, err
	}

	uc.publish(ctx, eventbus.EventEnvironmentUpdated, env)
	if env.IsActive {
		uc.publish(ctx, eventbus.EventEnvironmentActivated, env)
	}

	uc.logger.WithContext(ctx).WithFields(map[string]interface{}{"name": env.Name}).Info("Environment updated")
	return masked(env), nil
}

// DeleteEnvironment removes a profile. Deleting the active profile leaves the
// current connection in place.
func (uc *EnvironmentUsecase) DeleteEnvironment(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return errors.NewValidationError("environment id is required")
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	ctx = utils.WithEnvironmentID(ctx, id)
	if err := uc.repo.Delete(ctx, id); err != nil {
		return err
	}

	uc.publish(ctx, eventbus.EventEnvironmentDeleted, id)
	uc.logger.WithContext(ctx).Info("Environment deleted")
	return nil
}

// ActivateEnvironment makes id the only active profile and re-points the
// primary connection at it.
func (uc *EnvironmentUsecase) ActivateEnvironment(ctx context.Context, id string) (*model.Environment, error) {
	if strings.TrimSpace(id) == "" {
		return nil, errors.NewValidationError("environment id is required")
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	ctx = utils.WithEnvironmentID(ctx, id)
	env, err := uc.repo.SetActive(ctx, id)
	if err != nil {
		return nil, err
	}

	uc.publish(ctx, eventbus.EventEnvironmentActivated, env)
	uc.logger.WithContext(ctx).WithFields(map[string]interface{}{"name": env.Name}).Info("Environment activated")
	return masked(env), nil
}

// RestoreActive applies the stored active profile, if any.
func (uc *EnvironmentUsecase) RestoreActive(ctx context.Context) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	env, err := uc.repo.Active(ctx)
	if err != nil {
		return err
	}
	if env == nil {
		return nil
	}

	uc.publish(utils.WithEnvironmentID(ctx, env.ID), eventbus.EventEnvironmentActivated, env)
	uc.logger.WithFields(map[string]interface{}{"id": env.ID, "name": env.Name}).Info("Restored active environment")
	return nil
}

// publish delivers an event. Subscriber failures are logged; the stored
// change already happened and is not rolled back.
func (uc *EnvironmentUsecase) publish(ctx context.Context, eventType string, payload interface{}) {
	if uc.events == nil {
		return
	}
	if err := uc.events.Publish(ctx, eventbus.NewEvent(eventType, eventSource, payload)); err != nil {
		uc.logger.WithContext(ctx).WithFields(map[string]interface{}{"event": eventType, "error": err.Error()}).Warn("Event subscriber failed")
	}
}

func applyInput(env *model.Environment, in model.EnvironmentInput) {
	env.Name = strings.TrimSpace(in.Name)
	env.Hostname = strings.TrimSpace(in.Hostname)
	env.Port = in.Port
	env.Username = in.Username
	env.Password = in.Password
	env.Database = strings.TrimSpace(in.Database)
	env.SSL = in.SSL
}
