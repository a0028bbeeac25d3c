package main

import (
	"fmt"
	"io"
	"os"
	"time"

	collectionSvc "lumina/internal/domain/services/collection"

	"github.com/spf13/cobra"
)

var (
	flagFolder   string
	flagFile     string
	flagReadOnly bool
	flagTTL      time.Duration
)

var importCmd = &cobra.Command{
	Use:   "import <format> <file>",
	Short: "Import a Postman, Insomnia or OpenAPI document into the loaded project",
	Long: `Import a collection document. Use "-" to read it from stdin.

The imported tree is appended under --folder, or the project root.
Nothing is written when the document cannot be converted.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var data []byte
		var err error
		if args[1] == "-" {
			data, err = io.ReadAll(cmd.InOrStdin())
		} else {
			data, err = os.ReadFile(args[1])
		}
		if err != nil {
			return fmt.Errorf("failed to read document: %w", err)
		}

		summary, err := sess.ws.Import(cmd.Context(), args[0], data, flagFolder)
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), summary, func(w io.Writer) {
			printSummary(w, summary)
		})
	},
}

func printSummary(w io.Writer, s *collectionSvc.ImportSummary) {
	fmt.Fprintf(w, "imported %d requests in %d folders\n", s.ImportedCount, s.FolderCount)
	if s.EnvironmentCount > 0 {
		fmt.Fprintf(w, "imported %d environments\n", s.EnvironmentCount)
	}
}

var exportCmd = &cobra.Command{
	Use:   "export <format>",
	Short: "Export the loaded project as a Postman or Insomnia collection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := sess.ws.Export(args[0])
		if err != nil {
			return err
		}
		if flagFile == "" {
			_, err = cmd.OutOrStdout().Write(append(data, '\n'))
			return err
		}
		if err := os.WriteFile(flagFile, data, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", flagFile, err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", flagFile)
		return nil
	},
}

var shareCmd = &cobra.Command{
	Use:   "share",
	Short: "Share project snapshots",
}

var shareCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Snapshot the loaded project under a share token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var expiresAt *time.Time
		if flagTTL > 0 {
			t := time.Now().Add(flagTTL)
			expiresAt = &t
		}
		share, err := sess.ws.Share(cmd.Context(), flagReadOnly, expiresAt)
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), share, func(w io.Writer) {
			fmt.Fprintln(w, share.ID)
		})
	},
}

var shareImportCmd = &cobra.Command{
	Use:   "import <token>",
	Short: "Copy a shared snapshot into a new project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := sess.ws.ImportShare(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return renderProject(cmd, p)
	},
}

func init() {
	importCmd.Flags().StringVar(&flagFolder, "folder", "", "Target folder ID (default: project root)")
	exportCmd.Flags().StringVarP(&flagFile, "file", "f", "", "Write to file instead of stdout")
	shareCreateCmd.Flags().BoolVar(&flagReadOnly, "read-only", false, "Mark the share read-only")
	shareCreateCmd.Flags().DurationVar(&flagTTL, "ttl", 0, "Expire the share after this long (e.g. 72h)")

	shareCmd.AddCommand(shareCreateCmd, shareImportCmd)
	rootCmd.AddCommand(importCmd, exportCmd, shareCmd)
}
