package collection

import (
	"context"
	"errors"
	"testing"

	"lumina/internal/domain"
	models "lumina/internal/domain/models/collection"
	collectionSvc "lumina/internal/domain/services/collection"
)

func (e *testEnv) createEnvironment(t *testing.T, projectID, name string, vars models.KeyValues) *models.Environment {
	t.Helper()
	created, err := e.svc.Environments.CreateEnvironment(context.Background(), &collectionSvc.CreateEnvironmentRequest{
		ProjectID: projectID,
		Name:      name,
		Variables: vars,
	})
	if err != nil {
		t.Fatalf("CreateEnvironment(%q): %v", name, err)
	}
	return created
}

func TestEnvironmentService_ActiveOverridesBase(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.createProject(t, "P")
	envs := env.svc.Environments

	base, err := envs.BaseEnvironment(ctx, p.ID)
	if err != nil {
		t.Fatalf("BaseEnvironment: %v", err)
	}
	again, err := envs.BaseEnvironment(ctx, p.ID)
	if err != nil || again.ID != base.ID {
		t.Fatalf("expected the same base environment, got %v / %v", again, err)
	}
	if _, err := envs.UpdateEnvironment(ctx, base.ID, &collectionSvc.UpdateEnvironmentRequest{
		Variables: models.KeyValues{{Key: "host", Value: "base.test"}, {Key: "token", Value: "t0"}},
	}); err != nil {
		t.Fatalf("UpdateEnvironment: %v", err)
	}

	prod := env.createEnvironment(t, p.ID, "prod", models.KeyValues{{Key: "host", Value: "prod.test"}, {Key: "token", Value: ""}})

	active, err := envs.GetActiveEnvironment(ctx, p.ID)
	if err != nil || active != nil {
		t.Fatalf("expected no active environment, got %v / %v", active, err)
	}
	vars, err := envs.Variables(ctx, p.ID)
	if err != nil {
		t.Fatalf("Variables: %v", err)
	}
	if vars["host"] != "base.test" {
		t.Errorf("host = %q before activation", vars["host"])
	}

	if err := envs.SetActiveEnvironment(ctx, p.ID, prod.ID); err != nil {
		t.Fatalf("SetActiveEnvironment: %v", err)
	}
	active, err = envs.GetActiveEnvironment(ctx, p.ID)
	if err != nil || active == nil || active.ID != prod.ID {
		t.Fatalf("expected prod active, got %v / %v", active, err)
	}
	vars, _ = envs.Variables(ctx, p.ID)
	if vars["host"] != "prod.test" || vars["token"] != "t0" {
		t.Errorf("unexpected effective variables %v", vars)
	}

	if err := envs.SetActiveEnvironment(ctx, p.ID, ""); err != nil {
		t.Fatalf("clear: %v", err)
	}
	vars, _ = envs.Variables(ctx, p.ID)
	if vars["host"] != "base.test" {
		t.Errorf("host = %q after clearing", vars["host"])
	}
}

func TestEnvironmentService_Errors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.createProject(t, "P")
	other := env.createProject(t, "Other")
	envs := env.svc.Environments

	base, err := envs.BaseEnvironment(ctx, p.ID)
	if err != nil {
		t.Fatalf("BaseEnvironment: %v", err)
	}
	foreign := env.createEnvironment(t, other.ID, "foreign", nil)
	blank := "  "

	tests := []struct {
		name string
		run  func() error
		want error
	}{
		{"blank name", func() error {
			_, err := envs.CreateEnvironment(ctx, &collectionSvc.CreateEnvironmentRequest{ProjectID: p.ID, Name: " "})
			return err
		}, domain.ErrValidation},
		{"blank rename", func() error {
			_, err := envs.UpdateEnvironment(ctx, foreign.ID, &collectionSvc.UpdateEnvironmentRequest{Name: &blank})
			return err
		}, domain.ErrValidation},
		{"second base", func() error {
			_, err := envs.CreateEnvironment(ctx, &collectionSvc.CreateEnvironmentRequest{ProjectID: p.ID, Name: "b", IsBase: true})
			return err
		}, domain.ErrConflict},
		{"unknown project", func() error {
			_, err := envs.ListEnvironments(ctx, "missing")
			return err
		}, domain.ErrNotFound},
		{"activate base", func() error {
			return envs.SetActiveEnvironment(ctx, p.ID, base.ID)
		}, domain.ErrValidation},
		{"activate other project's environment", func() error {
			return envs.SetActiveEnvironment(ctx, p.ID, foreign.ID)
		}, domain.ErrNotFound},
		{"delete base", func() error {
			return envs.DeleteEnvironment(ctx, base.ID)
		}, domain.ErrValidation},
		{"delete unknown", func() error {
			return envs.DeleteEnvironment(ctx, "missing")
		}, domain.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.run(); !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}

	if err := envs.DeleteEnvironment(ctx, foreign.ID); err != nil {
		t.Fatalf("DeleteEnvironment: %v", err)
	}
	list, _ := envs.ListEnvironments(ctx, other.ID)
	if len(list) != 0 {
		t.Errorf("expected no environments left, got %d", len(list))
	}
}

func TestExecutionService_ResolvesVariables(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.createProject(t, "P")
	req := env.createRequest(t, p.RootFolderID, "users")

	base, err := env.svc.Environments.BaseEnvironment(ctx, p.ID)
	if err != nil {
		t.Fatalf("BaseEnvironment: %v", err)
	}
	if _, err := env.svc.Environments.UpdateEnvironment(ctx, base.ID, &collectionSvc.UpdateEnvironmentRequest{
		Variables: models.KeyValues{{Key: "base_url", Value: "https://api.test"}, {Key: "token", Value: "abc"}},
	}); err != nil {
		t.Fatalf("UpdateEnvironment: %v", err)
	}

	fields := req.Fields()
	fields.URL = "{{base_url}}/users"
	fields.Headers = models.KeyValues{{Key: "X-Unknown", Value: "{{nope}}"}}
	fields.Auth = models.BearerAuth{Token: "{{token}}"}
	if _, err := env.svc.Requests.UpdateRequest(ctx, req.ID, &fields); err != nil {
		t.Fatalf("UpdateRequest: %v", err)
	}

	entry, err := env.svc.Execution.ExecuteRequest(ctx, req.ID)
	if err != nil {
		t.Fatalf("ExecuteRequest: %v", err)
	}

	sent := env.executor.sent[0]
	if sent.URL != "https://api.test/users" {
		t.Errorf("executor saw URL %q", sent.URL)
	}
	if v, _ := sent.Headers.Get("X-Unknown"); v != "{{nope}}" {
		t.Errorf("unknown variable rewritten to %q", v)
	}
	if auth, ok := sent.Auth.(models.BearerAuth); !ok || auth.Token != "abc" {
		t.Errorf("executor saw auth %#v", sent.Auth)
	}
	if entry.Request.URL != "{{base_url}}/users" {
		t.Errorf("history snapshot URL = %q, want the unresolved template", entry.Request.URL)
	}

	stored, err := env.svc.Requests.GetRequest(ctx, req.ID)
	if err != nil {
		t.Fatalf("GetRequest: %v", err)
	}
	if stored.URL != "{{base_url}}/users" {
		t.Errorf("stored URL = %q", stored.URL)
	}
}

const insomniaWithEnvironments = `{
  "_type": "export",
  "__export_format": 4,
  "resources": [
    {"_id": "wrk_1", "_type": "workspace", "name": "Shop"},
    {"_id": "req_1", "_type": "request", "parentId": "wrk_1", "name": "Orders", "method": "GET", "url": "{{ base_url }}/orders"},
    {"_id": "env_base", "_type": "environment", "parentId": "wrk_1", "name": "Base Environment", "data": {"base_url": "https://shop.test", "retries": 3}},
    {"_id": "env_stage", "_type": "environment", "parentId": "env_base", "name": "Staging", "metaSortKey": 1, "data": {"base_url": "https://staging.shop.test"}},
    {"_id": "env_prod", "_type": "environment", "parentId": "env_base", "name": "Production", "metaSortKey": 2, "data": {"base_url": "https://prod.shop.test"}}
  ]
}`

func TestTransferService_ImportInsomniaEnvironments(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.createProject(t, "P")

	base, err := env.svc.Environments.BaseEnvironment(ctx, p.ID)
	if err != nil {
		t.Fatalf("BaseEnvironment: %v", err)
	}
	if _, err := env.svc.Environments.UpdateEnvironment(ctx, base.ID, &collectionSvc.UpdateEnvironmentRequest{
		Variables: models.KeyValues{{Key: "kept", Value: "yes"}},
	}); err != nil {
		t.Fatalf("UpdateEnvironment: %v", err)
	}

	summary, err := env.svc.Transfer.ImportCollection(ctx, &collectionSvc.ImportCollectionRequest{
		ProjectID: p.ID,
		Format:    "insomnia",
		Data:      []byte(insomniaWithEnvironments),
	})
	if err != nil {
		t.Fatalf("ImportCollection: %v", err)
	}
	if summary.ImportedCount != 1 || summary.EnvironmentCount != 3 {
		t.Errorf("unexpected summary %+v", summary)
	}

	list, err := env.svc.Environments.ListEnvironments(ctx, p.ID)
	if err != nil {
		t.Fatalf("ListEnvironments: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected base plus 2 environments, got %d", len(list))
	}
	if list[0].ID != base.ID {
		t.Errorf("imported base was not merged into the existing one")
	}
	for key, want := range map[string]string{"kept": "yes", "base_url": "https://shop.test", "retries": "3"} {
		if got, _ := list[0].Variables.Get(key); got != want {
			t.Errorf("base %s = %q, want %q", key, got, want)
		}
	}
	if list[1].Name != "Staging" || !list[1].IsActive || list[2].Name != "Production" || list[2].IsActive {
		t.Errorf("unexpected environments %+v", list[1:])
	}

	req := env.tree(t, p.ID).Requests[0]
	if _, err := env.svc.Execution.ExecuteRequest(ctx, req.ID); err != nil {
		t.Fatalf("ExecuteRequest: %v", err)
	}
	if got := env.executor.sent[0].URL; got != "https://staging.shop.test/orders" {
		t.Errorf("executor saw %q", got)
	}
}
