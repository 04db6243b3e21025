package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/pressroom-io/papi/internal/constants"
	"github.com/pressroom-io/papi/pkg/papi"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewVanityCommand creates the vanity command group.
func NewVanityCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vanity",
		Short: "Manage vanity paths",
		Long:  "Get, set, and delete human-readable vanity paths for content items",
	}

	cmd.AddCommand(newVanityGetCommand())
	cmd.AddCommand(newVanitySetCommand())
	cmd.AddCommand(newVanityDeleteCommand())
	cmd.AddCommand(newVanityListCommand())

	return cmd
}

func newVanityGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get CONTENT_GUID_OR_NAME",
		Short: "Show a content item's vanity path",
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

			vanity, err := apiClient.Vanities().Get(ctx, item.GUID())
			if err != nil {
				return fmt.Errorf("failed to get vanity path: %w", err)
			}

			return outputVanity(vanity)
		},
	}
}

func outputVanity(vanity *papi.Vanity) error {
	output := viper.GetString("output")
	switch output {
	case OutputFormatJSON:
		return StandardJSONRenderer(vanity.Attrs())
	case OutputFormatYAML:
		return StandardYAMLRenderer(vanity.Attrs())
	default:
		table := tablewriter.NewWriter(os.Stdout)
		table.Header("Property", "Value")

		_ = table.Append("Path", vanity.PathPrefix())
		_ = table.Append("Content GUID", vanity.ContentGUID())

		if err := table.Render(); err != nil {
			return fmt.Errorf("failed to render table: %w", err)
		}

		return nil
	}
}

func newVanitySetCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "set CONTENT_GUID_OR_NAME PATH",
		Short: "Set a content item's vanity path",
		Long: `Point a vanity path at the content item.

With --force the path is taken over even if another content item
currently holds it.`,
		Args: cobra.ExactArgs(constants.TwoArguments),
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

			vanity, err := apiClient.Vanities().Set(ctx, item.GUID(), &papi.VanitySetRequest{
				Path:  args[1],
				Force: force,
			})
			if err != nil {
				return fmt.Errorf("failed to set vanity path: %w", err)
			}

			_, _ = fmt.Fprintf(os.Stdout, "Vanity path '%s' now points at '%s'\n", vanity.PathPrefix(), item.Name())

			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "steal the path from whatever content item holds it")

	return cmd
}

func newVanityDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete CONTENT_GUID_OR_NAME",
		Short: "Delete a content item's vanity path",
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

			err = apiClient.Vanities().Delete(ctx, item.GUID())
			if err != nil {
				return fmt.Errorf("failed to delete vanity path: %w", err)
			}

			_, _ = fmt.Fprintf(os.Stdout, "Deleted vanity path for '%s'\n", item.Name())

			return nil
		},
	}
}

func newVanityListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all vanity paths",
		Long:  "List every vanity path on the server (requires administrator privileges)",
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient, err := CreateClient(cmd.Flag("server").Value.String())
			if err != nil {
				return err
			}

			vanities, err := apiClient.Vanities().List(context.Background())
			if err != nil {
				return fmt.Errorf("failed to list vanity paths: %w", err)
			}

			output := viper.GetString("output")
			switch output {
			case OutputFormatJSON:
				return StandardJSONRenderer(resourceAttrs(vanities))
			case OutputFormatYAML:
				return StandardYAMLRenderer(resourceAttrs(vanities))
			default:
				if len(vanities) == 0 {
					_, _ = os.Stdout.WriteString("No vanity paths found\n")

					return nil
				}

				table := tablewriter.NewWriter(os.Stdout)
				table.Header("Path", "Content GUID")

				for _, vanity := range vanities {
					_ = table.Append(vanity.PathPrefix(), vanity.ContentGUID())
				}

				if err := table.Render(); err != nil {
					return fmt.Errorf("failed to render table: %w", err)
				}

				return nil
			}
		},
	}
}
