package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"lumina/internal/config"
	models "lumina/internal/domain/models/collection"

	"github.com/spf13/cobra"
)

var sendCmd = &cobra.Command{
	Use:   "send <request-id>",
	Short: "Execute a saved request and record it in history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := sess.ws.SelectRequest(ctx, args[0]); err != nil {
			return err
		}
		entry, err := sess.ws.Send(ctx)
		if entry != nil {
			if renderErr := render(cmd.OutOrStdout(), entry, func(w io.Writer) { printEntry(w, entry) }); renderErr != nil {
				return renderErr
			}
		}
		return err
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect and restore past executions",
}

var (
	flagLimit int
	flagYes   bool
)

var historyListCmd = &cobra.Command{
	Use:   "list <request-id>",
	Short: "List executions of a request, newest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := sess.ws.History.List(cmd.Context(), args[0], flagLimit)
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), entries, func(w io.Writer) {
			for _, e := range entries {
				status := fmt.Sprintf("%d", e.Response.StatusCode)
				if e.Response.Error != "" {
					status = "ERR"
				}
				fmt.Fprintf(w, "%s  %-3s  %s %s  [%s]\n",
					e.Timestamp.Format("2006-01-02 15:04:05"), status, e.Request.Method, e.Request.URL, e.ID)
			}
		})
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <request-id> <entry-id>",
	Short: "Show one execution",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		entry, err := sess.ws.History.Detail(cmd.Context(), args[0], args[1], flagLimit)
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), entry, func(w io.Writer) { printEntry(w, entry) })
	},
}

var historyRestoreCmd = &cobra.Command{
	Use:   "restore <request-id> <entry-id>",
	Short: "Replace a request's fields with those captured by an execution",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		entry, err := sess.ws.History.Detail(ctx, args[0], args[1], flagLimit)
		if err != nil {
			return err
		}
		if err := sess.ws.SelectRequest(ctx, args[0]); err != nil {
			return err
		}

		loaded, err := sess.ws.History.Load(entry, func(e *models.HistoryEntry) bool {
			return flagYes || confirm(cmd, fmt.Sprintf("Overwrite %q with the version sent %s?",
				e.Request.Name, e.Timestamp.Format("2006-01-02 15:04:05")))
		})
		if err != nil || !loaded {
			return err
		}

		saved, err := sess.ws.Editor.Flush(ctx)
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), saved, func(w io.Writer) { printRequest(w, saved) })
	},
}

// confirm asks a yes/no question on stdin; anything but y/yes is no
func confirm(cmd *cobra.Command, question string) bool {
	fmt.Fprintf(cmd.ErrOrStderr(), "%s [y/N] ", question)
	line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func init() {
	historyCmd.PersistentFlags().IntVarP(&flagLimit, "limit", "n", config.DefaultHistoryLimit, "Number of entries to consider")
	historyRestoreCmd.Flags().BoolVarP(&flagYes, "yes", "y", false, "Do not ask for confirmation")

	historyCmd.AddCommand(historyListCmd, historyShowCmd, historyRestoreCmd)
	rootCmd.AddCommand(sendCmd, historyCmd)
}
