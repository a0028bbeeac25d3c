package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRespondErrorWithExtras(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondErrorWithExtras(rec, http.StatusServiceUnavailable, "send: timeout", map[string]interface{}{"retryable": true})

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/problem+json" {
		t.Errorf("Content-Type = %q", ct)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["retryable"] != true || body["status"] != float64(503) || body["detail"] != "send: timeout" {
		t.Errorf("body = %v", body)
	}
	if body["title"] != "Service Unavailable" {
		t.Errorf("title = %v", body["title"])
	}
}

func TestRespondError_UnknownStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondError(rec, http.StatusTeapot, "")
	if !strings.Contains(rec.Body.String(), `"type":"about:blank"`) {
		t.Errorf("body = %s", rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "detail") {
		t.Errorf("empty detail should be omitted: %s", rec.Body.String())
	}
}

func TestOptional(t *testing.T) {
	var body struct {
		Name Optional[string] `json:"name"`
		Size Optional[int]    `json:"size"`
	}
	tests := []struct {
		in          string
		present     bool
		null        bool
		wantName    string
		sizePresent bool
	}{
		{`{}`, false, false, "", false},
		{`{"name":null}`, true, true, "", false},
		{`{"name":"x","size":3}`, true, false, "x", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			body.Name, body.Size = Optional[string]{}, Optional[int]{}
			if err := json.Unmarshal([]byte(tt.in), &body); err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			if body.Name.Present != tt.present || body.Name.IsNull() != tt.null {
				t.Errorf("name = %+v", body.Name)
			}
			if tt.wantName != "" && *body.Name.Value != tt.wantName {
				t.Errorf("name value = %q", *body.Name.Value)
			}
			if body.Size.Present != tt.sizePresent {
				t.Errorf("size = %+v", body.Size)
			}
		})
	}
}

func TestContextValues(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	if GetUserID(r) != "" || GetRequestID(r) != "" {
		t.Fatal("fresh request carries values")
	}
	r = WithRequestID(WithUserID(r, "u1"), "req-1")
	if GetUserID(r) != "u1" || GetRequestID(r) != "req-1" {
		t.Errorf("user = %q, request = %q", GetUserID(r), GetRequestID(r))
	}
}

func TestParseJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"object", `{"name":"a"}`, false},
		{"trailing whitespace", "{\"name\":\"a\"}\n", false},
		{"trailing value", `{"name":"a"}{"name":"b"}`, true},
		{"broken", `{"name":`, true},
		{"empty", ``, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var dest struct {
				Name string `json:"name"`
			}
			r := httptest.NewRequest("POST", "/", strings.NewReader(tt.body))
			err := ParseJSON(httptest.NewRecorder(), r, &dest)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && dest.Name != "a" {
				t.Errorf("name = %q", dest.Name)
			}
		})
	}
}
