package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	models "lumina/internal/domain/models/collection"

	"gopkg.in/yaml.v3"
)

// render writes v as JSON or YAML, or calls text for the default format
func render(w io.Writer, v interface{}, text func(io.Writer)) error {
	switch strings.ToLower(flagOutput) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		// Round-trip through JSON so YAML keys follow the json tags
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		var generic interface{}
		if err := json.Unmarshal(data, &generic); err != nil {
			return err
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(generic)
	case "text", "":
		text(w)
		return nil
	default:
		return fmt.Errorf("unknown output format %q (text/json/yaml)", flagOutput)
	}
}

func printTree(w io.Writer, n *models.FolderNode, depth int) {
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(w, "%s%s/  [%s]\n", indent, n.Name, n.ID)
	for _, f := range n.Folders {
		printTree(w, f, depth+1)
	}
	for _, r := range n.Requests {
		fmt.Fprintf(w, "%s  %-7s %s  [%s]\n", indent, r.Method, r.Name, r.ID)
	}
}

func printRequest(w io.Writer, r *models.Request) {
	fmt.Fprintf(w, "%s  [%s]\n", r.Name, r.ID)
	fmt.Fprintf(w, "%s %s\n", r.Method, r.URL)
	printPairs(w, "Headers", r.Headers)
	printPairs(w, "Params", r.Params)
	if r.Auth != nil && r.Auth.Type() != models.AuthTypeNone {
		fmt.Fprintf(w, "Auth: %s\n", r.Auth.Type())
	}
	if r.Body.Raw != "" {
		fmt.Fprintf(w, "\n%s\n", r.Body.Raw)
	}
	if r.Documentation != "" {
		fmt.Fprintf(w, "\n%s\n", r.Documentation)
	}
}

func printPairs(w io.Writer, title string, kv models.KeyValues) {
	if len(kv) == 0 {
		return
	}
	fmt.Fprintf(w, "%s:\n", title)
	for _, p := range kv {
		fmt.Fprintf(w, "  %s: %s\n", p.Key, p.Value)
	}
}

func printEntry(w io.Writer, e *models.HistoryEntry) {
	fmt.Fprintf(w, "%s  %s %s  [%s]\n", e.Timestamp.Format("2006-01-02 15:04:05"), e.Request.Method, e.Request.URL, e.ID)
	if e.Response.Error != "" {
		fmt.Fprintf(w, "error: %s\n", e.Response.Error)
		return
	}
	fmt.Fprintf(w, "%d %s  (%d ms, %d bytes)\n", e.Response.StatusCode, e.Response.StatusText, e.Response.ElapsedMS, e.Response.SizeBytes)
	printPairs(w, "Headers", e.Response.Headers)
	if e.Response.Body != "" {
		fmt.Fprintf(w, "\n%s\n", e.Response.Body)
	}
}
