package collection

import "time"

// BaseEnvironmentName names the environment whose variables apply to every request.
const BaseEnvironmentName = "Base Environment"

// Environment is a named set of variables referenced from requests as {{name}}.
// A project has at most one base environment and at most one active one.
type Environment struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	Name      string    `json:"name"`
	IsBase    bool      `json:"is_base"`
	IsActive  bool      `json:"is_active"`
	Variables KeyValues `json:"variables"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Clone deep-copies the environment.
func (e *Environment) Clone() *Environment {
	c := *e
	c.Variables = e.Variables.Clone()
	return &c
}

// EffectiveVariables merges a project's environments: base values first, then the
// active environment's non-empty values on top.
func EffectiveVariables(envs []Environment) map[string]string {
	vars := make(map[string]string)
	for _, env := range envs {
		if env.IsBase {
			for _, kv := range env.Variables {
				vars[kv.Key] = kv.Value
			}
		}
	}
	for _, env := range envs {
		if env.IsActive && !env.IsBase {
			for _, kv := range env.Variables {
				if kv.Value != "" {
					vars[kv.Key] = kv.Value
				}
			}
		}
	}
	return vars
}
