package format

import (
	"testing"

	models "lumina/internal/domain/models/collection"
)

func strPtr(s string) *string { return &s }

// sampleTree builds Root{ Users{ Admin{} }, Health } with requests spread across levels.
func sampleTree() *models.FolderNode {
	root := &models.FolderNode{ID: "root-1", Name: "Root"}
	users := &models.FolderNode{ID: "fld-users", Name: "Users", ParentID: strPtr("root-1")}
	admin := &models.FolderNode{ID: "fld-admin", Name: "Admin", ParentID: strPtr("fld-users")}
	users.Folders = []*models.FolderNode{admin}
	root.Folders = []*models.FolderNode{users}

	root.Requests = []*models.Request{{
		ID:      "req-health",
		Name:    "Health",
		Method:  "GET",
		URL:     "https://api.example.com/health",
		Headers: models.KeyValues{},
		Params:  models.KeyValues{},
		Body:    models.Body{Type: models.BodyTypeNone},
		Auth:    models.NoAuth{},
	}}
	users.Requests = []*models.Request{
		{
			ID:      "req-list",
			Name:    "List users",
			Method:  "GET",
			URL:     "https://api.example.com/users",
			Headers: models.KeyValues{{Key: "Accept", Value: "application/json"}},
			Params:  models.KeyValues{{Key: "page", Value: "2"}, {Key: "size", Value: "50"}},
			Body:    models.Body{Type: models.BodyTypeNone},
			Auth:    models.BearerAuth{Token: "tok"},
		},
		{
			ID:            "req-create",
			Name:          "Create user",
			Method:        "POST",
			URL:           "https://api.example.com/users",
			Headers:       models.KeyValues{{Key: "Content-Type", Value: "application/json"}},
			Params:        models.KeyValues{},
			Body:          models.RawBody(`{"name":"ada"}`),
			Auth:          models.BasicAuth{Username: "u", Password: "p"},
			Documentation: "Creates a user.",
		},
	}
	admin.Requests = []*models.Request{{
		ID:      "req-purge",
		Name:    "Purge",
		Method:  "DELETE",
		URL:     "https://api.example.com/admin/purge?force=true",
		Headers: models.KeyValues{},
		Params:  models.KeyValues{{Key: "dry", Value: "false"}},
		Body:    models.RawBody("plain text"),
		Auth:    models.APIKeyAuth{Name: "X-Key", Value: "k", Location: models.APIKeyInQuery},
	}}
	return root
}

// assertSameTree compares folder names and nesting and the round-tripped request fields.
func assertSameTree(t *testing.T, want, got *models.FolderNode, path string) {
	t.Helper()

	if len(got.Folders) != len(want.Folders) {
		t.Fatalf("%s: expected %d folders, got %d", path, len(want.Folders), len(got.Folders))
	}
	if len(got.Requests) != len(want.Requests) {
		t.Fatalf("%s: expected %d requests, got %d", path, len(want.Requests), len(got.Requests))
	}
	for i, w := range want.Requests {
		g := got.Requests[i]
		where := path + "/" + w.Name
		if g.Name != w.Name {
			t.Errorf("%s: name = %q, want %q", where, g.Name, w.Name)
		}
		if g.Method != w.Method {
			t.Errorf("%s: method = %q, want %q", where, g.Method, w.Method)
		}
		if g.URL != w.URL {
			t.Errorf("%s: url = %q, want %q", where, g.URL, w.URL)
		}
		if !g.Headers.Equal(w.Headers) {
			t.Errorf("%s: headers = %v, want %v", where, g.Headers, w.Headers)
		}
		if !g.Params.Equal(w.Params) {
			t.Errorf("%s: params = %v, want %v", where, g.Params, w.Params)
		}
		if g.Body != w.Body {
			t.Errorf("%s: body = %+v, want %+v", where, g.Body, w.Body)
		}
	}
	for i, w := range want.Folders {
		g := got.Folders[i]
		if g.Name != w.Name {
			t.Errorf("%s: folder %d name = %q, want %q", path, i, g.Name, w.Name)
		}
		assertSameTree(t, w, g, path+"/"+w.Name)
	}
}
