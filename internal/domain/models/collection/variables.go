package collection

import (
	"regexp"
	"strings"
)

var variablePattern = regexp.MustCompile(`\{\{([^}]+)\}\}`)

// ResolveVariables replaces every {{name}} in text with its value. Names are
// trimmed; unknown names are left as written.
func ResolveVariables(text string, vars map[string]string) string {
	if len(vars) == 0 || !strings.Contains(text, "{{") {
		return text
	}
	return variablePattern.ReplaceAllStringFunc(text, func(match string) string {
		name := strings.TrimSpace(match[2 : len(match)-2])
		if v, ok := vars[name]; ok {
			return v
		}
		return match
	})
}

// FindVariables lists the variable names text refers to, in order of appearance.
func FindVariables(text string) []string {
	var names []string
	for _, m := range variablePattern.FindAllStringSubmatch(text, -1) {
		names = append(names, strings.TrimSpace(m[1]))
	}
	return names
}

// Resolve returns a copy of the request with variables substituted in the URL,
// header and param values, the body and the auth fields.
func (r *Request) Resolve(vars map[string]string) *Request {
	c := r.Clone()
	if len(vars) == 0 {
		return c
	}
	c.URL = ResolveVariables(r.URL, vars)
	for i := range c.Headers {
		c.Headers[i].Value = ResolveVariables(c.Headers[i].Value, vars)
	}
	for i := range c.Params {
		c.Params[i].Value = ResolveVariables(c.Params[i].Value, vars)
	}
	c.Body.Raw = ResolveVariables(r.Body.Raw, vars)

	switch a := AuthOrNone(r.Auth).(type) {
	case BasicAuth:
		c.Auth = BasicAuth{Username: ResolveVariables(a.Username, vars), Password: ResolveVariables(a.Password, vars)}
	case BearerAuth:
		c.Auth = BearerAuth{Token: ResolveVariables(a.Token, vars)}
	case APIKeyAuth:
		c.Auth = APIKeyAuth{Name: ResolveVariables(a.Name, vars), Value: ResolveVariables(a.Value, vars), Location: a.Location}
	}
	return c
}
