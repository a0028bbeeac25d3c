package collection

import (
	"encoding/json"
	"fmt"
)

// AuthType discriminates the Auth variants.
type AuthType string

const (
	AuthTypeNone   AuthType = "none"
	AuthTypeBasic  AuthType = "basic"
	AuthTypeBearer AuthType = "bearer"
	AuthTypeAPIKey AuthType = "apikey"
)

// APIKeyLocation is where an API key is sent.
type APIKeyLocation string

const (
	APIKeyInHeader APIKeyLocation = "header"
	APIKeyInQuery  APIKeyLocation = "query"
)

// Auth is a closed union over the supported request authentication schemes.
// Use a type switch over NoAuth, BasicAuth, BearerAuth and APIKeyAuth.
type Auth interface {
	Type() AuthType
	isAuth()
}

type NoAuth struct{}

type BasicAuth struct {
	Username string
	Password string
}

type BearerAuth struct {
	Token string
}

type APIKeyAuth struct {
	Name     string
	Value    string
	Location APIKeyLocation
}

func (NoAuth) Type() AuthType     { return AuthTypeNone }
func (BasicAuth) Type() AuthType  { return AuthTypeBasic }
func (BearerAuth) Type() AuthType { return AuthTypeBearer }
func (APIKeyAuth) Type() AuthType { return AuthTypeAPIKey }

func (NoAuth) isAuth()     {}
func (BasicAuth) isAuth()  {}
func (BearerAuth) isAuth() {}
func (APIKeyAuth) isAuth() {}

// authWire is the flat JSON form shared by the API and the database column.
type authWire struct {
	Type     AuthType       `json:"type"`
	Username string         `json:"username,omitempty"`
	Password string         `json:"password,omitempty"`
	Token    string         `json:"token,omitempty"`
	Name     string         `json:"name,omitempty"`
	Value    string         `json:"value,omitempty"`
	Location APIKeyLocation `json:"location,omitempty"`
}

// MarshalAuth encodes an Auth value. A nil Auth encodes as {"type":"none"}.
func MarshalAuth(a Auth) ([]byte, error) {
	var w authWire
	switch v := a.(type) {
	case nil, NoAuth:
		w.Type = AuthTypeNone
	case BasicAuth:
		w = authWire{Type: AuthTypeBasic, Username: v.Username, Password: v.Password}
	case BearerAuth:
		w = authWire{Type: AuthTypeBearer, Token: v.Token}
	case APIKeyAuth:
		w = authWire{Type: AuthTypeAPIKey, Name: v.Name, Value: v.Value, Location: v.Location}
	default:
		return nil, fmt.Errorf("unknown auth variant %T", a)
	}
	return json.Marshal(w)
}

// UnmarshalAuth decodes the JSON produced by MarshalAuth. Empty input and null
// decode to NoAuth.
func UnmarshalAuth(data []byte) (Auth, error) {
	if len(data) == 0 || string(data) == "null" {
		return NoAuth{}, nil
	}
	var w authWire
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("decode auth: %w", err)
	}
	switch w.Type {
	case "", AuthTypeNone:
		return NoAuth{}, nil
	case AuthTypeBasic:
		return BasicAuth{Username: w.Username, Password: w.Password}, nil
	case AuthTypeBearer:
		return BearerAuth{Token: w.Token}, nil
	case AuthTypeAPIKey:
		loc := w.Location
		if loc == "" {
			loc = APIKeyInHeader
		}
		if loc != APIKeyInHeader && loc != APIKeyInQuery {
			return nil, fmt.Errorf("unknown api key location %q", loc)
		}
		return APIKeyAuth{Name: w.Name, Value: w.Value, Location: loc}, nil
	default:
		return nil, fmt.Errorf("unknown auth type %q", w.Type)
	}
}

// AuthOrNone replaces a nil Auth with NoAuth.
func AuthOrNone(a Auth) Auth {
	if a == nil {
		return NoAuth{}
	}
	return a
}
