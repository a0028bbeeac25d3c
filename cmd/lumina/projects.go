package main

import (
	"fmt"
	"io"

	models "lumina/internal/domain/models/collection"

	"github.com/spf13/cobra"
)

var projectsCmd = &cobra.Command{
	Use:     "projects",
	Aliases: []string{"project"},
	Short:   "Manage projects",
}

var projectsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects; the active one is marked with *",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		projects, err := sess.ws.Projects.List(cmd.Context())
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), projects, func(w io.Writer) {
			for _, p := range projects {
				mark := " "
				if p.IsActive {
					mark = "*"
				}
				fmt.Fprintf(w, "%s %s  [%s]\n", mark, p.Name, p.ID)
			}
		})
	},
}

var projectsCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := sess.ws.CreateProject(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return renderProject(cmd, p)
	},
}

var projectsRenameCmd = &cobra.Command{
	Use:   "rename <project-id> <name>",
	Short: "Rename a project",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := sess.ws.Projects.Rename(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		return renderProject(cmd, p)
	},
}

var projectsUseCmd = &cobra.Command{
	Use:   "use <project-id>",
	Short: "Make a project the active one",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := sess.ws.SwitchProject(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return renderProject(cmd, p)
	},
}

var projectsDeleteCmd = &cobra.Command{
	Use:   "delete <project-id>",
	Short: "Delete a project with all of its folders, requests and history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := sess.ws.DeleteProject(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
		return nil
	},
}

func renderProject(cmd *cobra.Command, p *models.Project) error {
	return render(cmd.OutOrStdout(), p, func(w io.Writer) {
		fmt.Fprintf(w, "%s  [%s]\n", p.Name, p.ID)
	})
}

func init() {
	projectsCmd.AddCommand(projectsListCmd, projectsCreateCmd, projectsRenameCmd, projectsUseCmd, projectsDeleteCmd)
	rootCmd.AddCommand(projectsCmd)
}
