package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	models "lumina/internal/domain/models/collection"
	"lumina/internal/workspace"

	"github.com/spf13/cobra"
)

var requestCmd = &cobra.Command{
	Use:     "request",
	Aliases: []string{"req"},
	Short:   "Manage saved requests",
}

// Flags for request create
var (
	flagCreateMethod string
	flagCreateURL    string
)

// Flags for request set
var (
	flagMethod       string
	flagURL          string
	flagName         string
	flagBody         string
	flagDoc          string
	flagAuth         string
	flagHeaders      []string
	flagParams       []string
	flagUnsetHeaders []string
	flagUnsetParams  []string
)

var requestCreateCmd = &cobra.Command{
	Use:   "create <folder-id> <name>",
	Short: "Create a request at the end of a folder",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := sess.ws.CreateRequest(cmd.Context(), args[0], args[1], flagCreateMethod, flagCreateURL)
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), r, func(w io.Writer) { printRequest(w, r) })
	},
}

var requestShowCmd = &cobra.Command{
	Use:   "show <request-id>",
	Short: "Show a saved request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := sess.ws.Tree.GetRequest(args[0])
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), r, func(w io.Writer) { printRequest(w, r) })
	},
}

var requestSetCmd = &cobra.Command{
	Use:   "set <request-id>",
	Short: "Edit fields of a saved request",
	Long: `Edit fields of a saved request. Every change is saved immediately.

Auth is one of:
  none
  basic:<user>:<password>
  bearer:<token>
  apikey:<name>:<value>[:header|query]`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := sess.ws.SelectRequest(ctx, args[0]); err != nil {
			return err
		}
		if err := applyEdits(ctx, cmd, sess.ws.Editor); err != nil {
			return err
		}
		saved, err := sess.ws.Editor.Flush(ctx)
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), saved, func(w io.Writer) { printRequest(w, saved) })
	},
}

// applyEdits runs each changed flag through the editor
func applyEdits(ctx context.Context, cmd *cobra.Command, e *workspace.EditorSync) error {
	flags := cmd.Flags()
	if flags.Changed("name") {
		if err := e.SetName(ctx, flagName); err != nil {
			return err
		}
	}
	if flags.Changed("method") {
		if err := e.SetMethod(ctx, flagMethod); err != nil {
			return err
		}
	}
	if flags.Changed("url") {
		if err := e.SetURL(ctx, flagURL); err != nil {
			return err
		}
	}
	if flags.Changed("body") {
		if err := e.SetBody(ctx, flagBody); err != nil {
			return err
		}
	}
	if flags.Changed("doc") {
		if err := e.SetDocumentation(ctx, flagDoc); err != nil {
			return err
		}
	}
	if flags.Changed("auth") {
		auth, err := parseAuth(flagAuth)
		if err != nil {
			return err
		}
		if err := e.SetAuth(ctx, auth); err != nil {
			return err
		}
	}

	for _, key := range flagUnsetHeaders {
		if i := rowIndex(e.Headers(), key); i >= 0 {
			if err := e.RemoveHeader(ctx, i); err != nil {
				return err
			}
		}
	}
	for _, key := range flagUnsetParams {
		if i := rowIndex(e.Params(), key); i >= 0 {
			if err := e.RemoveParam(ctx, i); err != nil {
				return err
			}
		}
	}
	for _, pair := range flagHeaders {
		key, value, err := splitPair(pair)
		if err != nil {
			return err
		}
		if err := e.SetHeader(ctx, targetRow(e.Headers(), key), key, value); err != nil {
			return err
		}
	}
	for _, pair := range flagParams {
		key, value, err := splitPair(pair)
		if err != nil {
			return err
		}
		if err := e.SetParam(ctx, targetRow(e.Params(), key), key, value); err != nil {
			return err
		}
	}
	return nil
}

// rowIndex finds the row holding key, or -1
func rowIndex(rows []workspace.KVRow, key string) int {
	for i, r := range rows {
		if r.Key != "" && strings.EqualFold(r.Key, key) {
			return i
		}
	}
	return -1
}

// targetRow is the row already holding key, else the trailing blank row
func targetRow(rows []workspace.KVRow, key string) int {
	if i := rowIndex(rows, key); i >= 0 {
		return i
	}
	return len(rows) - 1
}

func splitPair(s string) (string, string, error) {
	key, value, ok := strings.Cut(s, "=")
	if !ok || key == "" {
		return "", "", fmt.Errorf("expected key=value, got %q", s)
	}
	return key, value, nil
}

func parseAuth(s string) (models.Auth, error) {
	kind, rest, _ := strings.Cut(s, ":")
	switch models.AuthType(strings.ToLower(kind)) {
	case models.AuthTypeNone:
		return models.NoAuth{}, nil
	case models.AuthTypeBasic:
		user, pass, _ := strings.Cut(rest, ":")
		return models.BasicAuth{Username: user, Password: pass}, nil
	case models.AuthTypeBearer:
		return models.BearerAuth{Token: rest}, nil
	case models.AuthTypeAPIKey:
		parts := strings.SplitN(rest, ":", 3)
		if len(parts) < 2 || parts[0] == "" {
			return nil, fmt.Errorf("apikey auth needs apikey:<name>:<value>")
		}
		loc := models.APIKeyInHeader
		if len(parts) == 3 && models.APIKeyLocation(parts[2]) == models.APIKeyInQuery {
			loc = models.APIKeyInQuery
		}
		return models.APIKeyAuth{Name: parts[0], Value: parts[1], Location: loc}, nil
	default:
		return nil, fmt.Errorf("unknown auth type %q", kind)
	}
}

var requestDeleteCmd = &cobra.Command{
	Use:   "delete <request-id>",
	Short: "Delete a request and its history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return sess.ws.DeleteRequest(cmd.Context(), args[0])
	},
}

var requestMoveCmd = &cobra.Command{
	Use:   "move <request-id> <target-folder-id>",
	Short: "Move a request to the end of another folder",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return sess.ws.Moves.MoveRequest(cmd.Context(), args[0], args[1])
	},
}

func init() {
	requestCreateCmd.Flags().StringVarP(&flagCreateMethod, "method", "X", "GET", "HTTP method")
	requestCreateCmd.Flags().StringVar(&flagCreateURL, "url", "", "Request URL")

	requestSetCmd.Flags().StringVar(&flagName, "name", "", "Request name")
	requestSetCmd.Flags().StringVarP(&flagMethod, "method", "X", "", "HTTP method")
	requestSetCmd.Flags().StringVar(&flagURL, "url", "", "Request URL")
	requestSetCmd.Flags().StringVarP(&flagBody, "body", "b", "", "Raw body (empty clears it)")
	requestSetCmd.Flags().StringVar(&flagDoc, "doc", "", "Documentation text")
	requestSetCmd.Flags().StringVar(&flagAuth, "auth", "", "Auth (none, basic:u:p, bearer:t, apikey:n:v[:header|query])")
	requestSetCmd.Flags().StringArrayVarP(&flagHeaders, "header", "H", nil, "Set header key=value, can be repeated")
	requestSetCmd.Flags().StringArrayVarP(&flagParams, "param", "q", nil, "Set query param key=value, can be repeated")
	requestSetCmd.Flags().StringArrayVar(&flagUnsetHeaders, "unset-header", nil, "Remove header by key")
	requestSetCmd.Flags().StringArrayVar(&flagUnsetParams, "unset-param", nil, "Remove query param by key")

	requestCmd.AddCommand(requestCreateCmd, requestShowCmd, requestSetCmd, requestDeleteCmd, requestMoveCmd)
	rootCmd.AddCommand(requestCmd)
}
