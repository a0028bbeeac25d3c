package main

import (
	"testing"

	models "lumina/internal/domain/models/collection"
	"lumina/internal/workspace"
)

func TestParseAuth(t *testing.T) {
	tests := []struct {
		in      string
		want    models.Auth
		wantErr bool
	}{
		{"none", models.NoAuth{}, false},
		{"basic:u:p:w", models.BasicAuth{Username: "u", Password: "p:w"}, false},
		{"bearer:tok", models.BearerAuth{Token: "tok"}, false},
		{"apikey:X-Key:v", models.APIKeyAuth{Name: "X-Key", Value: "v", Location: models.APIKeyInHeader}, false},
		{"apikey:key:v:query", models.APIKeyAuth{Name: "key", Value: "v", Location: models.APIKeyInQuery}, false},
		{"APIKEY:key:v:header", models.APIKeyAuth{Name: "key", Value: "v", Location: models.APIKeyInHeader}, false},
		{"apikey:onlyname", nil, true},
		{"digest:x", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseAuth(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseAuth(%q) = %v, want error", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseAuth(%q): %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("parseAuth(%q) = %#v, want %#v", tt.in, got, tt.want)
			}
		})
	}
}

func TestTargetRow(t *testing.T) {
	rows := []workspace.KVRow{{Key: "Accept", Value: "a"}, {Key: "X-Id", Value: "1"}, {}}
	tests := []struct {
		key  string
		want int
	}{
		{"accept", 0},
		{"X-Id", 1},
		{"New", 2},
	}
	for _, tt := range tests {
		if got := targetRow(rows, tt.key); got != tt.want {
			t.Errorf("targetRow(%q) = %d, want %d", tt.key, got, tt.want)
		}
	}
}

func TestSplitPair(t *testing.T) {
	if k, v, err := splitPair("a=b=c"); err != nil || k != "a" || v != "b=c" {
		t.Errorf("splitPair(a=b=c) = %q, %q, %v", k, v, err)
	}
	for _, bad := range []string{"novalue", "=x"} {
		if _, _, err := splitPair(bad); err == nil {
			t.Errorf("splitPair(%q) succeeded, want error", bad)
		}
	}
}
