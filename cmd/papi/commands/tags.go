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

// NewTagsCommand creates the tags command group.
func NewTagsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tags",
		Aliases: []string{"tag"},
		Short:   "Manage tags",
		Long:    "Manage the tag tree and the tags assigned to content items",
	}

	cmd.AddCommand(newTagsListCommand())
	cmd.AddCommand(newTagsShowCommand())
	cmd.AddCommand(newTagsCreateCommand())
	cmd.AddCommand(newTagsDeleteCommand())
	cmd.AddCommand(newTagsChildrenCommand())
	cmd.AddCommand(newTagsForContentCommand())
	cmd.AddCommand(newTagsAssignCommand())
	cmd.AddCommand(newTagsUnassignCommand())

	return cmd
}

func newTagsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all tags",
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient, err := CreateClient(cmd.Flag("server").Value.String())
			if err != nil {
				return err
			}

			tags, err := apiClient.Tags().List(context.Background())
			if err != nil {
				return fmt.Errorf("failed to list tags: %w", err)
			}

			return outputTags(tags)
		},
	}
}

func outputTags(tags []*papi.Tag) error {
	output := viper.GetString("output")
	switch output {
	case OutputFormatJSON:
		return StandardJSONRenderer(resourceAttrs(tags))
	case OutputFormatYAML:
		return StandardYAMLRenderer(resourceAttrs(tags))
	default:
		return renderTagsTable(tags)
	}
}

func renderTagsTable(tags []*papi.Tag) error {
	if len(tags) == 0 {
		_, _ = os.Stdout.WriteString("No tags found\n")

		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("ID", "Name", "Parent ID")

	for _, tag := range tags {
		_ = table.Append(tag.ID(), tag.Name(), tag.ParentID())
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

func newTagsShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show TAG_ID",
		Short: "Show tag details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient, err := CreateClient(cmd.Flag("server").Value.String())
			if err != nil {
				return err
			}

			tag, err := apiClient.Tags().Get(context.Background(), args[0])
			if err != nil {
				return fmt.Errorf("failed to get tag: %w", err)
			}

			output := viper.GetString("output")
			switch output {
			case OutputFormatJSON:
				return StandardJSONRenderer(tag.Attrs())
			case OutputFormatYAML:
				return StandardYAMLRenderer(tag.Attrs())
			default:
				table := tablewriter.NewWriter(os.Stdout)
				table.Header("Property", "Value")

				_ = table.Append("ID", tag.ID())
				_ = table.Append("Name", tag.Name())
				_ = table.Append("Parent ID", tag.ParentID())

				if err := table.Render(); err != nil {
					return fmt.Errorf("failed to render table: %w", err)
				}

				return nil
			}
		},
	}
}

func newTagsCreateCommand() *cobra.Command {
	var parentID string

	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a tag",
		Long:  "Create a tag, either as a top-level category or under a parent tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient, err := CreateClient(cmd.Flag("server").Value.String())
			if err != nil {
				return err
			}

			tag, err := apiClient.Tags().Create(context.Background(), &papi.TagCreateRequest{
				Name:     args[0],
				ParentID: parentID,
			})
			if err != nil {
				return fmt.Errorf("failed to create tag: %w", err)
			}

			_, _ = fmt.Fprintf(os.Stdout, "Successfully created tag '%s' (ID: %s)\n", tag.Name(), tag.ID())

			return nil
		},
	}

	cmd.Flags().StringVar(&parentID, "parent", "", "parent tag id (omit for a top-level category)")

	return cmd
}

func newTagsDeleteCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete TAG_ID",
		Short: "Delete a tag",
		Long:  "Delete a tag and its whole subtree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force && !confirmAction(fmt.Sprintf("Delete tag '%s' and its subtree?", args[0])) {
				_, _ = os.Stdout.WriteString("Cancelled\n")

				return nil
			}

			apiClient, err := CreateClient(cmd.Flag("server").Value.String())
			if err != nil {
				return err
			}

			err = apiClient.Tags().Delete(context.Background(), args[0])
			if err != nil {
				return fmt.Errorf("failed to delete tag: %w", err)
			}

			_, _ = fmt.Fprintf(os.Stdout, "Successfully deleted tag '%s'\n", args[0])

			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "delete without confirmation")

	return cmd
}

func newTagsChildrenCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "children TAG_ID",
		Short: "List a tag's direct children",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient, err := CreateClient(cmd.Flag("server").Value.String())
			if err != nil {
				return err
			}

			tags, err := apiClient.Tags().Children(context.Background(), args[0])
			if err != nil {
				return fmt.Errorf("failed to list tag children: %w", err)
			}

			return outputTags(tags)
		},
	}
}

func newTagsForContentCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "for-content CONTENT_GUID_OR_NAME",
		Short: "List the tags on a content item",
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

			tags, err := apiClient.Tags().ListContentTags(ctx, item.GUID())
			if err != nil {
				return fmt.Errorf("failed to list content tags: %w", err)
			}

			return outputTags(tags)
		},
	}
}

func newTagsAssignCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "assign CONTENT_GUID_OR_NAME TAG_ID",
		Short: "Assign a tag to a content item",
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

			err = apiClient.Tags().AddContentTag(ctx, item.GUID(), args[1])
			if err != nil {
				return fmt.Errorf("failed to assign tag: %w", err)
			}

			_, _ = fmt.Fprintf(os.Stdout, "Assigned tag '%s' to '%s'\n", args[1], item.Name())

			return nil
		},
	}
}

func newTagsUnassignCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unassign CONTENT_GUID_OR_NAME TAG_ID",
		Short: "Remove a tag from a content item",
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

			err = apiClient.Tags().RemoveContentTag(ctx, item.GUID(), args[1])
			if err != nil {
				return fmt.Errorf("failed to unassign tag: %w", err)
			}

			_, _ = fmt.Fprintf(os.Stdout, "Removed tag '%s' from '%s'\n", args[1], item.Name())

			return nil
		},
	}
}
