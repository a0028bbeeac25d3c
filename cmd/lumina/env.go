package main

import (
	"context"
	"fmt"
	"io"

	"lumina/internal/domain"
	models "lumina/internal/domain/models/collection"

	"github.com/spf13/cobra"
)

var envCmd = &cobra.Command{
	Use:     "env",
	Aliases: []string{"environments"},
	Short:   "Manage environments and their {{variables}}",
}

var flagEnvID string

var envListCmd = &cobra.Command{
	Use:   "list",
	Short: "List environments; the active one is marked with *",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		projectID, err := loadedProjectID()
		if err != nil {
			return err
		}
		envs, err := sess.ws.Environments.List(cmd.Context(), projectID)
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), envs, func(w io.Writer) {
			for _, e := range envs {
				mark := " "
				switch {
				case e.IsActive:
					mark = "*"
				case e.IsBase:
					mark = "~"
				}
				fmt.Fprintf(w, "%s %s  [%s]\n", mark, e.Name, e.ID)
				for _, kv := range e.Variables {
					fmt.Fprintf(w, "    %s = %s\n", kv.Key, kv.Value)
				}
			}
		})
	},
}

var envCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create an environment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		projectID, err := loadedProjectID()
		if err != nil {
			return err
		}
		env, err := sess.ws.Environments.Create(cmd.Context(), projectID, args[0])
		if err != nil {
			return err
		}
		return renderEnvironment(cmd, env)
	},
}

var envSetCmd = &cobra.Command{
	Use:   "set key=value...",
	Short: "Set variables on the base environment, or on --env",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editVariables(cmd, func(vars models.KeyValues) (models.KeyValues, error) {
			for _, arg := range args {
				k, v, err := splitPair(arg)
				if err != nil {
					return nil, err
				}
				vars = vars.Set(k, v)
			}
			return vars, nil
		})
	},
}

var envUnsetCmd = &cobra.Command{
	Use:   "unset key...",
	Short: "Remove variables from the base environment, or from --env",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editVariables(cmd, func(vars models.KeyValues) (models.KeyValues, error) {
			for _, k := range args {
				vars = vars.Delete(k)
			}
			return vars, nil
		})
	},
}

var envUseCmd = &cobra.Command{
	Use:   "use [environment-id]",
	Short: "Activate an environment; without an id only the base environment applies",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		projectID, err := loadedProjectID()
		if err != nil {
			return err
		}
		id := ""
		if len(args) == 1 {
			id = args[0]
		}
		if err := sess.ws.Environments.Activate(cmd.Context(), projectID, id); err != nil {
			return err
		}
		if id == "" {
			fmt.Fprintln(cmd.OutOrStdout(), "no active environment")
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "activated %s\n", id)
		}
		return nil
	},
}

var envDeleteCmd = &cobra.Command{
	Use:   "delete <environment-id>",
	Short: "Delete an environment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := sess.ws.Environments.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
		return nil
	},
}

// editVariables applies edit to the variables of --env, or of the base environment
func editVariables(cmd *cobra.Command, edit func(models.KeyValues) (models.KeyValues, error)) error {
	ctx := cmd.Context()
	projectID, err := loadedProjectID()
	if err != nil {
		return err
	}
	env, err := targetEnvironment(ctx, projectID)
	if err != nil {
		return err
	}
	vars, err := edit(env.Variables.Clone())
	if err != nil {
		return err
	}
	env, err = sess.ws.Environments.SetVariables(ctx, env.ID, vars)
	if err != nil {
		return err
	}
	return renderEnvironment(cmd, env)
}

func targetEnvironment(ctx context.Context, projectID string) (*models.Environment, error) {
	envs, err := sess.ws.Environments.List(ctx, projectID)
	if err != nil {
		return nil, err
	}
	for i := range envs {
		if (flagEnvID == "" && envs[i].IsBase) || (flagEnvID != "" && envs[i].ID == flagEnvID) {
			return &envs[i], nil
		}
	}
	if flagEnvID != "" {
		return nil, domain.NewNotFound("environment", flagEnvID)
	}
	// No base environment yet: setting a variable creates it
	return sess.ws.Environments.Base(ctx, projectID)
}

func loadedProjectID() (string, error) {
	p := sess.ws.Project()
	if p == nil {
		return "", &domain.ValidationError{Message: "no project loaded"}
	}
	return p.ID, nil
}

func renderEnvironment(cmd *cobra.Command, env *models.Environment) error {
	return render(cmd.OutOrStdout(), env, func(w io.Writer) {
		fmt.Fprintf(w, "%s  [%s]\n", env.Name, env.ID)
		for _, kv := range env.Variables {
			fmt.Fprintf(w, "  %s = %s\n", kv.Key, kv.Value)
		}
	})
}

func init() {
	envSetCmd.Flags().StringVar(&flagEnvID, "env", "", "Environment to edit instead of the base environment")
	envUnsetCmd.Flags().StringVar(&flagEnvID, "env", "", "Environment to edit instead of the base environment")
	envCmd.AddCommand(envListCmd, envCreateCmd, envSetCmd, envUnsetCmd, envUseCmd, envDeleteCmd)
	rootCmd.AddCommand(envCmd)
}
