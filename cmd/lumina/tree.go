package main

import (
	"fmt"
	"io"

	models "lumina/internal/domain/models/collection"

	"github.com/spf13/cobra"
)

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Show the loaded project's folders and requests",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := loadedRoot()
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), root, func(w io.Writer) {
			printTree(w, root, 0)
		})
	},
}

func loadedRoot() (*models.FolderNode, error) {
	root := sess.ws.Tree.Root()
	if root == nil {
		return nil, fmt.Errorf("no project loaded")
	}
	return root, nil
}

var folderCmd = &cobra.Command{
	Use:   "folder",
	Short: "Manage folders",
}

var flagParent string

var folderCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a folder (under the root unless --parent is set)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		parent := flagParent
		if parent == "" {
			root, err := loadedRoot()
			if err != nil {
				return err
			}
			parent = root.ID
		}
		f, err := sess.ws.CreateFolder(cmd.Context(), parent, args[0])
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), f, func(w io.Writer) {
			fmt.Fprintf(w, "%s/  [%s]\n", f.Name, f.ID)
		})
	},
}

var folderRenameCmd = &cobra.Command{
	Use:   "rename <folder-id> <name>",
	Short: "Rename a folder",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return sess.ws.RenameFolder(cmd.Context(), args[0], args[1])
	},
}

var folderDeleteCmd = &cobra.Command{
	Use:   "delete <folder-id>",
	Short: "Delete a folder and everything below it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return sess.ws.DeleteFolder(cmd.Context(), args[0])
	},
}

var folderMoveCmd = &cobra.Command{
	Use:   "move <folder-id> <target-folder-id>",
	Short: "Move a folder to the end of another folder",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return sess.ws.Moves.MoveFolder(cmd.Context(), args[0], args[1])
	},
}

func init() {
	folderCreateCmd.Flags().StringVar(&flagParent, "parent", "", "Parent folder ID")

	folderCmd.AddCommand(folderCreateCmd, folderRenameCmd, folderDeleteCmd, folderMoveCmd)
	rootCmd.AddCommand(treeCmd, folderCmd)
}
