package commands

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/pressroom-io/papi/internal/constants"
	"github.com/pressroom-io/papi/pkg/papi"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewBundlesCommand creates the bundles command group.
func NewBundlesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "bundles",
		Aliases: []string{"bundle"},
		Short:   "Manage content bundles",
		Long:    "List and inspect the uploaded bundles of a content item",
	}

	cmd.AddCommand(newBundlesListCommand())
	cmd.AddCommand(newBundlesShowCommand())
	cmd.AddCommand(newBundlesActiveCommand())
	cmd.AddCommand(newBundlesDeleteCommand())

	return cmd
}

func newBundlesListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list CONTENT_GUID_OR_NAME",
		Short: "List a content item's bundles",
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

			bundles, err := apiClient.Bundles().List(ctx, item.GUID())
			if err != nil {
				return fmt.Errorf("failed to list bundles: %w", err)
			}

			output := viper.GetString("output")
			switch output {
			case OutputFormatJSON:
				return StandardJSONRenderer(resourceAttrs(bundles))
			case OutputFormatYAML:
				return StandardYAMLRenderer(resourceAttrs(bundles))
			default:
				return renderBundlesTable(bundles)
			}
		},
	}
}

func renderBundlesTable(bundles []*papi.Bundle) error {
	if len(bundles) == 0 {
		_, _ = os.Stdout.WriteString("No bundles found\n")

		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("ID", "Size", "Active", "Created")

	for _, bundle := range bundles {
		_ = table.Append(bundle.ID(), strconv.Itoa(bundle.Size()),
			yesNo(bundle.Active()), bundle.CreatedTime())
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

func newBundlesShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show CONTENT_GUID_OR_NAME BUNDLE_ID",
		Short: "Show bundle details",
		Args:  cobra.ExactArgs(constants.TwoArguments),
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

			bundle, err := apiClient.Bundles().Get(ctx, item.GUID(), args[1])
			if err != nil {
				return fmt.Errorf("failed to get bundle: %w", err)
			}

			return outputBundleDetails(bundle)
		},
	}
}

func outputBundleDetails(bundle *papi.Bundle) error {
	output := viper.GetString("output")
	switch output {
	case OutputFormatJSON:
		return StandardJSONRenderer(bundle.Attrs())
	case OutputFormatYAML:
		return StandardYAMLRenderer(bundle.Attrs())
	default:
		table := tablewriter.NewWriter(os.Stdout)
		table.Header("Property", "Value")

		_ = table.Append("ID", bundle.ID())
		_ = table.Append("Content GUID", bundle.ContentGUID())
		_ = table.Append("Size", strconv.Itoa(bundle.Size()))
		_ = table.Append("Active", yesNo(bundle.Active()))
		_ = table.Append("Created", bundle.CreatedTime())

		if err := table.Render(); err != nil {
			return fmt.Errorf("failed to render table: %w", err)
		}

		return nil
	}
}

func newBundlesActiveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "active CONTENT_GUID_OR_NAME",
		Short: "Show the active bundle",
		Long:  "Display the bundle currently being served for a content item",
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

			bundle, found, err := apiClient.Bundles().Active(ctx, item.GUID())
			if err != nil {
				return fmt.Errorf("failed to find active bundle: %w", err)
			}

			if !found {
				return fmt.Errorf("'%s': %w", item.Name(), constants.ErrNoActiveBundle)
			}

			return outputBundleDetails(bundle)
		},
	}
}

func newBundlesDeleteCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete CONTENT_GUID_OR_NAME BUNDLE_ID",
		Short: "Delete a bundle",
		Args:  cobra.ExactArgs(constants.TwoArguments),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force && !confirmAction(fmt.Sprintf("Delete bundle '%s'?", args[1])) {
				_, _ = os.Stdout.WriteString("Cancelled\n")

				return nil
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

			err = apiClient.Bundles().Delete(ctx, item.GUID(), args[1])
			if err != nil {
				return fmt.Errorf("failed to delete bundle: %w", err)
			}

			_, _ = fmt.Fprintf(os.Stdout, "Successfully deleted bundle '%s'\n", args[1])

			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "delete without confirmation")

	return cmd
}
