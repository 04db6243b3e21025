package commands

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/pressroom-io/papi/internal/constants"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewEnvCommand creates the env command group.
func NewEnvCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "env",
		Short: "Manage content environment variables",
		Long: `Manage the runtime environment variables of a content item.

Values are write-only: the server only ever reports variable names, never
their values.`,
	}

	cmd.AddCommand(newEnvListCommand())
	cmd.AddCommand(newEnvSetCommand())
	cmd.AddCommand(newEnvUnsetCommand())
	cmd.AddCommand(newEnvReplaceCommand())
	cmd.AddCommand(newEnvClearCommand())

	return cmd
}

func newEnvListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list CONTENT_GUID_OR_NAME",
		Short: "List environment variable names",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient, err := CreateClient(cmd.Flag("server").Value.String())
			if err != nil {
				return err
			}

			ctx := context.Background()

			item, err := findContentByGUIDOrName(ctx, apiClient, args[0])
			if err != nil {
				return err
			}

			names, err := apiClient.Environment().List(ctx, item.GUID())
			if err != nil {
				return fmt.Errorf("failed to list environment: %w", err)
			}

			return outputEnvNames(names)
		},
	}
}

func outputEnvNames(names []string) error {
	sort.Strings(names)

	output := viper.GetString("output")
	switch output {
	case OutputFormatJSON:
		return StandardJSONRenderer(names)
	case OutputFormatYAML:
		return StandardYAMLRenderer(names)
	default:
		if len(names) == 0 {
			_, _ = os.Stdout.WriteString("No environment variables set\n")

			return nil
		}

		for _, name := range names {
			_, _ = fmt.Fprintln(os.Stdout, name)
		}

		return nil
	}
}

func newEnvSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set CONTENT_GUID_OR_NAME KEY=VALUE...",
		Short: "Set environment variables",
		Long:  "Merge the given KEY=VALUE pairs into the content item's environment",
		Args:  cobra.MinimumNArgs(constants.TwoArguments),
		RunE: func(cmd *cobra.Command, args []string) error {
			assignments, err := parseEnvAssignments(args[1:])
			if err != nil {
				return err
			}

			apiClient, err := CreateClient(cmd.Flag("server").Value.String())
			if err != nil {
				return err
			}

			ctx := context.Background()

			item, err := findContentByGUIDOrName(ctx, apiClient, args[0])
			if err != nil {
				return err
			}

			vars := make(map[string]*string, len(assignments))
			for key, value := range assignments {
				value := value
				vars[key] = &value
			}

			names, err := apiClient.Environment().Set(ctx, item.GUID(), vars)
			if err != nil {
				return fmt.Errorf("failed to set environment: %w", err)
			}

			_, _ = fmt.Fprintf(os.Stdout, "Set %d variable(s); environment now holds %d\n", len(vars), len(names))

			return nil
		},
	}
}

func newEnvUnsetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unset CONTENT_GUID_OR_NAME KEY...",
		Short: "Remove environment variables",
		Args:  cobra.MinimumNArgs(constants.TwoArguments),
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient, err := CreateClient(cmd.Flag("server").Value.String())
			if err != nil {
				return err
			}

			ctx := context.Background()

			item, err := findContentByGUIDOrName(ctx, apiClient, args[0])
			if err != nil {
				return err
			}

			// A nil value deletes the variable server-side.
			vars := make(map[string]*string, len(args)-1)
			for _, key := range args[1:] {
				vars[key] = nil
			}

			names, err := apiClient.Environment().Set(ctx, item.GUID(), vars)
			if err != nil {
				return fmt.Errorf("failed to unset environment: %w", err)
			}

			_, _ = fmt.Fprintf(os.Stdout, "Removed %d variable(s); environment now holds %d\n", len(vars), len(names))

			return nil
		},
	}
}

func newEnvReplaceCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "replace CONTENT_GUID_OR_NAME KEY=VALUE...",
		Short: "Replace the whole environment",
		Long:  "Swap the content item's entire environment for the given KEY=VALUE pairs",
		Args:  cobra.MinimumNArgs(constants.TwoArguments),
		RunE: func(cmd *cobra.Command, args []string) error {
			vars, err := parseEnvAssignments(args[1:])
			if err != nil {
				return err
			}

			apiClient, err := CreateClient(cmd.Flag("server").Value.String())
			if err != nil {
				return err
			}

			ctx := context.Background()

			item, err := findContentByGUIDOrName(ctx, apiClient, args[0])
			if err != nil {
				return err
			}

			names, err := apiClient.Environment().Replace(ctx, item.GUID(), vars)
			if err != nil {
				return fmt.Errorf("failed to replace environment: %w", err)
			}

			_, _ = fmt.Fprintf(os.Stdout, "Environment replaced; now holds %d variable(s)\n", len(names))

			return nil
		},
	}
}

func newEnvClearCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "clear CONTENT_GUID_OR_NAME",
		Short: "Remove all environment variables",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient, err := CreateClient(cmd.Flag("server").Value.String())
			if err != nil {
				return err
			}

			ctx := context.Background()

			item, err := findContentByGUIDOrName(ctx, apiClient, args[0])
			if err != nil {
				return err
			}

			if !force && !confirmAction(fmt.Sprintf("Clear all environment variables on '%s'?", item.Name())) {
				_, _ = os.Stdout.WriteString("Cancelled\n")

				return nil
			}

			err = apiClient.Environment().Clear(ctx, item.GUID())
			if err != nil {
				return fmt.Errorf("failed to clear environment: %w", err)
			}

			_, _ = fmt.Fprintf(os.Stdout, "Cleared environment on '%s'\n", item.Name())

			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "clear without confirmation")

	return cmd
}
