package workspace

import (
	"context"
	"time"

	models "lumina/internal/domain/models/collection"
)

type environmentStore interface {
	ListEnvironments(ctx context.Context, projectID string) ([]models.Environment, error)
	CreateEnvironment(ctx context.Context, projectID, name string, variables models.KeyValues) (*models.Environment, error)
	UpdateEnvironment(ctx context.Context, id string, name *string, variables models.KeyValues) (*models.Environment, error)
	DeleteEnvironment(ctx context.Context, id string) error
	ActivateEnvironment(ctx context.Context, projectID, id string) error
	BaseEnvironment(ctx context.Context, projectID string) (*models.Environment, error)
	ResolveVariables(ctx context.Context, projectID string) (map[string]string, error)
}

// EnvironmentManager edits a project's environments. The base environment
// always applies; at most one other environment is active on top of it.
type EnvironmentManager struct {
	store   environmentStore
	timeout time.Duration
}

func NewEnvironmentManager(store environmentStore, timeout time.Duration) *EnvironmentManager {
	return &EnvironmentManager{store: store, timeout: timeout}
}

func (m *EnvironmentManager) List(ctx context.Context, projectID string) ([]models.Environment, error) {
	return call(ctx, m.timeout, "list environments", func(ctx context.Context) ([]models.Environment, error) {
		return m.store.ListEnvironments(ctx, projectID)
	})
}

// Active returns the active environment, or nil when only the base applies
func (m *EnvironmentManager) Active(ctx context.Context, projectID string) (*models.Environment, error) {
	envs, err := m.List(ctx, projectID)
	if err != nil {
		return nil, err
	}
	for i := range envs {
		if envs[i].IsActive {
			return &envs[i], nil
		}
	}
	return nil, nil
}

func (m *EnvironmentManager) Create(ctx context.Context, projectID, name string) (*models.Environment, error) {
	return call(ctx, m.timeout, "create environment", func(ctx context.Context) (*models.Environment, error) {
		return m.store.CreateEnvironment(ctx, projectID, name, models.KeyValues{})
	})
}

func (m *EnvironmentManager) Rename(ctx context.Context, id, name string) (*models.Environment, error) {
	return call(ctx, m.timeout, "rename environment", func(ctx context.Context) (*models.Environment, error) {
		return m.store.UpdateEnvironment(ctx, id, &name, nil)
	})
}

// SetVariables replaces the variables of an environment
func (m *EnvironmentManager) SetVariables(ctx context.Context, id string, vars models.KeyValues) (*models.Environment, error) {
	if vars == nil {
		vars = models.KeyValues{}
	}
	return call(ctx, m.timeout, "update environment", func(ctx context.Context) (*models.Environment, error) {
		return m.store.UpdateEnvironment(ctx, id, nil, vars)
	})
}

// Base returns the project's base environment, creating an empty one on first use
func (m *EnvironmentManager) Base(ctx context.Context, projectID string) (*models.Environment, error) {
	return call(ctx, m.timeout, "load base environment", func(ctx context.Context) (*models.Environment, error) {
		return m.store.BaseEnvironment(ctx, projectID)
	})
}

// SetBaseVariable sets one variable on the project's base environment
func (m *EnvironmentManager) SetBaseVariable(ctx context.Context, projectID, key, value string) (*models.Environment, error) {
	base, err := m.Base(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return m.SetVariables(ctx, base.ID, base.Variables.Set(key, value))
}

func (m *EnvironmentManager) Delete(ctx context.Context, id string) error {
	return callErr(ctx, m.timeout, "delete environment", func(ctx context.Context) error {
		return m.store.DeleteEnvironment(ctx, id)
	})
}

// Activate selects id, or leaves only the base environment in effect when id is empty
func (m *EnvironmentManager) Activate(ctx context.Context, projectID, id string) error {
	return callErr(ctx, m.timeout, "activate environment", func(ctx context.Context) error {
		return m.store.ActivateEnvironment(ctx, projectID, id)
	})
}

// Variables returns the variables requests of the project are resolved with
func (m *EnvironmentManager) Variables(ctx context.Context, projectID string) (map[string]string, error) {
	return call(ctx, m.timeout, "resolve variables", func(ctx context.Context) (map[string]string, error) {
		return m.store.ResolveVariables(ctx, projectID)
	})
}
