package collection

import (
	"encoding/json"
	"time"
)

// BodyType tags a request body.
type BodyType string

const (
	BodyTypeNone BodyType = "none"
	BodyTypeRaw  BodyType = "raw"
)

// Body is the request payload.
type Body struct {
	Type BodyType `json:"type"`
	Raw  string   `json:"raw"`
}

// RawBody builds a raw body, or an empty body when text is empty.
func RawBody(text string) Body {
	if text == "" {
		return Body{Type: BodyTypeNone}
	}
	return Body{Type: BodyTypeRaw, Raw: text}
}

// Request is a saved HTTP request. It belongs to exactly one folder.
type Request struct {
	ID            string    `json:"id"`
	ProjectID     string    `json:"project_id"`
	FolderID      string    `json:"folder_id"`
	Name          string    `json:"name"`
	Method        string    `json:"method"`
	URL           string    `json:"url"`
	Headers       KeyValues `json:"headers"`
	Params        KeyValues `json:"params"`
	Body          Body      `json:"body"`
	Auth          Auth      `json:"-"`
	Documentation string    `json:"documentation"`
	Position      int       `json:"position"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// RequestFields is the full editable snapshot written by updateRequest.
type RequestFields struct {
	Name          string    `json:"name"`
	Method        string    `json:"method"`
	URL           string    `json:"url"`
	Headers       KeyValues `json:"headers"`
	Params        KeyValues `json:"params"`
	Body          Body      `json:"body"`
	Auth          Auth      `json:"-"`
	Documentation string    `json:"documentation"`
}

// Fields returns the editable fields of the request.
func (r *Request) Fields() RequestFields {
	return RequestFields{
		Name:          r.Name,
		Method:        r.Method,
		URL:           r.URL,
		Headers:       r.Headers.Clone(),
		Params:        r.Params.Clone(),
		Body:          r.Body,
		Auth:          AuthOrNone(r.Auth),
		Documentation: r.Documentation,
	}
}

// Apply overwrites every editable field with the snapshot.
func (r *Request) Apply(f RequestFields) {
	r.Name = f.Name
	r.Method = f.Method
	r.URL = f.URL
	r.Headers = f.Headers.Normalize()
	r.Params = f.Params.Normalize()
	r.Body = f.Body
	r.Auth = AuthOrNone(f.Auth)
	r.Documentation = f.Documentation
}

// Clone deep-copies the request.
func (r *Request) Clone() *Request {
	c := *r
	c.Headers = r.Headers.Clone()
	c.Params = r.Params.Clone()
	return &c
}

// Snapshot captures the fields recorded in history.
func (r *Request) Snapshot() RequestSnapshot {
	return RequestSnapshot{
		Name:    r.Name,
		Method:  r.Method,
		URL:     r.URL,
		Headers: r.Headers.Clone(),
		Params:  r.Params.Clone(),
		Body:    r.Body,
	}
}

func (r Request) MarshalJSON() ([]byte, error) {
	type alias Request
	auth, err := MarshalAuth(r.Auth)
	if err != nil {
		return nil, err
	}
	return json.Marshal(struct {
		alias
		Auth json.RawMessage `json:"auth"`
	}{alias(r), auth})
}

func (r *Request) UnmarshalJSON(data []byte) error {
	type alias Request
	aux := struct {
		*alias
		Auth json.RawMessage `json:"auth"`
	}{alias: (*alias)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	auth, err := UnmarshalAuth(aux.Auth)
	if err != nil {
		return err
	}
	r.Auth = auth
	return nil
}

func (f RequestFields) MarshalJSON() ([]byte, error) {
	type alias RequestFields
	auth, err := MarshalAuth(f.Auth)
	if err != nil {
		return nil, err
	}
	return json.Marshal(struct {
		alias
		Auth json.RawMessage `json:"auth"`
	}{alias(f), auth})
}

func (f *RequestFields) UnmarshalJSON(data []byte) error {
	type alias RequestFields
	aux := struct {
		*alias
		Auth json.RawMessage `json:"auth"`
	}{alias: (*alias)(f)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	auth, err := UnmarshalAuth(aux.Auth)
	if err != nil {
		return err
	}
	f.Auth = auth
	return nil
}
