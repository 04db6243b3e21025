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

// NewContentCommand creates the content command group.
func NewContentCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "content",
		Short: "Manage content items",
		Long:  "List, create, update, delete, and deploy Pressroom content items",
	}

	cmd.AddCommand(newContentListCommand())
	cmd.AddCommand(newContentShowCommand())
	cmd.AddCommand(newContentCreateCommand())
	cmd.AddCommand(newContentUpdateCommand())
	cmd.AddCommand(newContentDeleteCommand())
	cmd.AddCommand(newContentDeployCommand())

	return cmd
}

func newContentListCommand() *cobra.Command {
	var (
		owner string
		name  string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List content items",
		Long:  "List content items visible to the caller, optionally filtered by owner or name",
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient, err := CreateClient(cmd.Flag("server").Value.String())
			if err != nil {
				return err
			}

			params := papi.NewQueryParams()
			if owner != "" {
				params.WithFilter("owner_guid", owner)
			}

			if name != "" {
				params.WithFilter("name", name)
			}

			items, err := apiClient.Content().List(context.Background(), params)
			if err != nil {
				return fmt.Errorf("failed to list content: %w", err)
			}

			output := viper.GetString("output")
			switch output {
			case OutputFormatJSON:
				return StandardJSONRenderer(resourceAttrs(items))
			case OutputFormatYAML:
				return StandardYAMLRenderer(resourceAttrs(items))
			default:
				return renderContentTable(items)
			}
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "filter by owner guid")
	cmd.Flags().StringVar(&name, "name", "", "filter by short name")

	return cmd
}

func renderContentTable(items []*papi.ContentItem) error {
	if len(items) == 0 {
		_, _ = os.Stdout.WriteString("No content items found\n")

		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("GUID", "Name", "Title", "Mode", "Access", "Owner GUID")

	for _, item := range items {
		_ = table.Append(item.GUID(), item.Name(),
			truncate(item.Title(), constants.DescriptionDisplayLength),
			item.Mode(), item.AccessType(), item.OwnerGUID())
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

func newContentShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show CONTENT_GUID_OR_NAME",
		Short: "Show content item details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient, err := CreateClient(cmd.Flag("server").Value.String())
			if err != nil {
				return err
			}

			item, err := findContentByGUIDOrName(context.Background(), apiClient, args[0])
			if err != nil {
				return err
			}

			return outputContentDetails(item)
		},
	}
}

func findContentByGUIDOrName(ctx context.Context, apiClient papi.Client, guidOrName string) (*papi.ContentItem, error) {
	contentClient := apiClient.Content()

	item, err := contentClient.Get(ctx, guidOrName)
	if err == nil {
		return item, nil
	}

	if !papi.IsNotFound(err) {
		return nil, fmt.Errorf("failed to get content item: %w", err)
	}

	item, found, err := contentClient.FindBy(ctx, map[string]any{"name": guidOrName})
	if err != nil {
		return nil, fmt.Errorf("failed to find content item: %w", err)
	}

	if !found {
		return nil, fmt.Errorf("'%s': %w", guidOrName, constants.ErrContentNotFound)
	}

	return item, nil
}

func outputContentDetails(item *papi.ContentItem) error {
	output := viper.GetString("output")
	switch output {
	case OutputFormatJSON:
		return StandardJSONRenderer(item.Attrs())
	case OutputFormatYAML:
		return StandardYAMLRenderer(item.Attrs())
	default:
		table := tablewriter.NewWriter(os.Stdout)
		table.Header("Property", "Value")

		_ = table.Append("GUID", item.GUID())
		_ = table.Append("Name", item.Name())
		_ = table.Append("Title", item.Title())
		_ = table.Append("Description", item.Description())
		_ = table.Append("Mode", item.Mode())
		_ = table.Append("Access type", item.AccessType())
		_ = table.Append("Owner GUID", item.OwnerGUID())
		_ = table.Append("Active bundle", item.BundleID())
		_ = table.Append("Content URL", item.ContentURL())
		_ = table.Append("Dashboard URL", item.DashboardURL())

		if err := table.Render(); err != nil {
			return fmt.Errorf("failed to render table: %w", err)
		}

		return nil
	}
}

func newContentCreateCommand() *cobra.Command {
	var (
		title       string
		description string
		accessType  string
	)

	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a content item",
		Long:  "Create a new content item with the given URL-safe short name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient, err := CreateClient(cmd.Flag("server").Value.String())
			if err != nil {
				return err
			}

			item, err := apiClient.Content().Create(context.Background(), &papi.ContentCreateRequest{
				Name:        args[0],
				Title:       title,
				Description: description,
				AccessType:  accessType,
			})
			if err != nil {
				return fmt.Errorf("failed to create content item: %w", err)
			}

			output := viper.GetString("output")
			switch output {
			case OutputFormatJSON:
				return StandardJSONRenderer(item.Attrs())
			case OutputFormatYAML:
				return StandardYAMLRenderer(item.Attrs())
			default:
				_, _ = fmt.Fprintf(os.Stdout, "Successfully created content item '%s' (GUID: %s)\n", item.Name(), item.GUID())

				return nil
			}
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "human-readable title")
	cmd.Flags().StringVar(&description, "description", "", "long-form description")
	cmd.Flags().StringVar(&accessType, "access-type", "", "who may view the item (all, logged_in, acl)")

	return cmd
}

func newContentUpdateCommand() *cobra.Command {
	var (
		name        string
		title       string
		description string
		accessType  string
	)

	cmd := &cobra.Command{
		Use:   "update CONTENT_GUID_OR_NAME",
		Short: "Update a content item",
		Long:  "Update the name, title, description, or visibility of a content item",
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

			request := &papi.ContentUpdateRequest{}
			hasUpdate := false

			if cmd.Flags().Changed("name") {
				request.Name = &name
				hasUpdate = true
			}

			if cmd.Flags().Changed("title") {
				request.Title = &title
				hasUpdate = true
			}

			if cmd.Flags().Changed("description") {
				request.Description = &description
				hasUpdate = true
			}

			if cmd.Flags().Changed("access-type") {
				request.AccessType = &accessType
				hasUpdate = true
			}

			if !hasUpdate {
				return constants.ErrNoUpdatesSpecified
			}

			updated, err := apiClient.Content().Update(ctx, item.GUID(), request)
			if err != nil {
				return fmt.Errorf("failed to update content item: %w", err)
			}

			output := viper.GetString("output")
			switch output {
			case OutputFormatJSON:
				return StandardJSONRenderer(updated.Attrs())
			case OutputFormatYAML:
				return StandardYAMLRenderer(updated.Attrs())
			default:
				_, _ = fmt.Fprintf(os.Stdout, "Successfully updated content item '%s'\n", updated.Name())

				return nil
			}
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "new short name")
	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&description, "description", "", "new description")
	cmd.Flags().StringVar(&accessType, "access-type", "", "new access type (all, logged_in, acl)")

	return cmd
}

func newContentDeleteCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete CONTENT_GUID_OR_NAME",
		Short: "Delete a content item",
		Long:  "Delete a content item, its bundles, and its deployment history",
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

			if !force && !confirmAction(fmt.Sprintf("Delete content item '%s' (%s)?", item.Name(), item.GUID())) {
				_, _ = os.Stdout.WriteString("Cancelled\n")

				return nil
			}

			err = apiClient.Content().Delete(ctx, item.GUID())
			if err != nil {
				return fmt.Errorf("failed to delete content item: %w", err)
			}

			_, _ = fmt.Fprintf(os.Stdout, "Successfully deleted content item '%s'\n", item.Name())

			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "delete without confirmation")

	return cmd
}

func newContentDeployCommand() *cobra.Command {
	var (
		bundleID string
		wait     bool
	)

	cmd := &cobra.Command{
		Use:   "deploy CONTENT_GUID_OR_NAME",
		Short: "Deploy a content item",
		Long: `Start publishing a bundle of the content item.

Deploys the active bundle unless --bundle picks a specific one. With
--wait the command follows the server-side task until it finishes and
streams its output.`,
		Args: cobra.ExactArgs(1),
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

			task, err := apiClient.Content().Deploy(ctx, item.GUID(), bundleID)
			if err != nil {
				return fmt.Errorf("failed to start deploy: %w", err)
			}

			if !wait {
				_, _ = fmt.Fprintf(os.Stdout, "Deploy started for '%s' (task: %s)\n", item.Name(), task.ID())
				_, _ = fmt.Fprintf(os.Stdout, "Use 'papi tasks wait %s' to follow it\n", task.ID())

				return nil
			}

			finished, err := followTask(ctx, apiClient, task.ID())
			if err != nil {
				return err
			}

			if finished.Code() != 0 {
				return fmt.Errorf("%w: %s", constants.ErrDeployFailed, finished.ErrorMessage())
			}

			_, _ = fmt.Fprintf(os.Stdout, "Successfully deployed '%s'\n", item.Name())

			return nil
		},
	}

	cmd.Flags().StringVar(&bundleID, "bundle", "", "bundle id to deploy (defaults to the active bundle)")
	cmd.Flags().BoolVar(&wait, "wait", false, "wait for the deploy to finish")

	return cmd
}
