package collection

import (
	"reflect"
	"testing"
)

func TestResolveVariables(t *testing.T) {
	vars := map[string]string{"host": "api.test", "token": "s3cret", "empty": ""}

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no variables", "https://api.test/users", "https://api.test/users"},
		{"single", "https://{{host}}/users", "https://api.test/users"},
		{"repeated", "{{host}}/{{host}}", "api.test/api.test"},
		{"spaces inside braces", "{{ host }}", "api.test"},
		{"unknown kept as written", "{{host}}/{{ missing }}", "api.test/{{ missing }}"},
		{"empty value", "x{{empty}}y", "xy"},
		{"unclosed", "{{host", "{{host"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveVariables(tt.in, vars); got != tt.want {
				t.Errorf("ResolveVariables(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}

	if got := ResolveVariables("{{host}}", nil); got != "{{host}}" {
		t.Errorf("expected text untouched without variables, got %q", got)
	}
}

func TestFindVariables(t *testing.T) {
	got := FindVariables("{{a}}/x/{{ b }}?q={{a}}")
	want := []string{"a", "b", "a"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("FindVariables = %v, want %v", got, want)
	}
}

func TestRequestResolve(t *testing.T) {
	vars := map[string]string{"base": "https://api.test", "id": "42", "tok": "abc", "user": "ann"}

	tests := []struct {
		name  string
		auth  Auth
		check func(t *testing.T, a Auth)
	}{
		{"bearer", BearerAuth{Token: "{{tok}}"}, func(t *testing.T, a Auth) {
			if a.(BearerAuth).Token != "abc" {
				t.Errorf("token not resolved: %#v", a)
			}
		}},
		{"basic", BasicAuth{Username: "{{user}}", Password: "{{nope}}"}, func(t *testing.T, a Auth) {
			b := a.(BasicAuth)
			if b.Username != "ann" || b.Password != "{{nope}}" {
				t.Errorf("unexpected basic auth %#v", b)
			}
		}},
		{"api key", APIKeyAuth{Name: "X-Key", Value: "{{tok}}", Location: APIKeyInQuery}, func(t *testing.T, a Auth) {
			k := a.(APIKeyAuth)
			if k.Value != "abc" || k.Location != APIKeyInQuery {
				t.Errorf("unexpected api key auth %#v", k)
			}
		}},
		{"none", nil, func(t *testing.T, a Auth) {
			if a != nil {
				t.Errorf("expected nil auth to stay nil, got %#v", a)
			}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &Request{
				Method:  "POST",
				URL:     "{{base}}/items/{{id}}",
				Headers: KeyValues{{Key: "X-Id", Value: "{{id}}"}},
				Params:  KeyValues{{Key: "q", Value: "{{missing}}"}},
				Body:    RawBody(`{"id": {{id}}}`),
				Auth:    tt.auth,
			}

			got := req.Resolve(vars)

			if got.URL != "https://api.test/items/42" {
				t.Errorf("URL = %q", got.URL)
			}
			if v, _ := got.Headers.Get("X-Id"); v != "42" {
				t.Errorf("header = %q", v)
			}
			if v, _ := got.Params.Get("q"); v != "{{missing}}" {
				t.Errorf("param = %q, want unknown variable kept", v)
			}
			if got.Body.Raw != `{"id": 42}` {
				t.Errorf("body = %q", got.Body.Raw)
			}
			tt.check(t, got.Auth)

			if req.URL != "{{base}}/items/{{id}}" {
				t.Errorf("original request modified: %q", req.URL)
			}
			if v, _ := req.Headers.Get("X-Id"); v != "{{id}}" {
				t.Errorf("original header modified: %q", v)
			}
		})
	}
}

func TestEffectiveVariables(t *testing.T) {
	envs := []Environment{
		{Name: BaseEnvironmentName, IsBase: true, Variables: KeyValues{
			{Key: "host", Value: "base.test"},
			{Key: "token", Value: "base-token"},
			{Key: "only_base", Value: "1"},
		}},
		{Name: "staging", Variables: KeyValues{{Key: "host", Value: "staging.test"}}},
		{Name: "prod", IsActive: true, Variables: KeyValues{
			{Key: "host", Value: "prod.test"},
			{Key: "token", Value: ""},
			{Key: "only_prod", Value: "2"},
		}},
	}

	got := EffectiveVariables(envs)
	want := map[string]string{
		"host":      "prod.test",
		"token":     "base-token",
		"only_base": "1",
		"only_prod": "2",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("EffectiveVariables = %v, want %v", got, want)
	}

	envs[2].IsActive = false
	if got := EffectiveVariables(envs); got["host"] != "base.test" {
		t.Errorf("expected base value without an active environment, got %q", got["host"])
	}
}
