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

// NewGroupsCommand creates the groups command group.
func NewGroupsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "groups",
		Aliases: []string{"group"},
		Short:   "Manage groups",
		Long:    "List, create, and delete groups, and manage their members",
	}

	cmd.AddCommand(newGroupsListCommand())
	cmd.AddCommand(newGroupsShowCommand())
	cmd.AddCommand(newGroupsCreateCommand())
	cmd.AddCommand(newGroupsDeleteCommand())
	cmd.AddCommand(newGroupsMembersCommand())
	cmd.AddCommand(newGroupsAddMemberCommand())
	cmd.AddCommand(newGroupsRemoveMemberCommand())

	return cmd
}

func newGroupsListCommand() *cobra.Command {
	var prefix string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List groups",
		Long:  "List groups, optionally filtered by a name prefix",
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient, err := CreateClient(cmd.Flag("server").Value.String())
			if err != nil {
				return err
			}

			params := papi.NewQueryParams()
			if prefix != "" {
				params.WithPrefix(prefix)
			}

			groups, err := apiClient.Groups().List(context.Background(), params)
			if err != nil {
				return fmt.Errorf("failed to list groups: %w", err)
			}

			output := viper.GetString("output")
			switch output {
			case OutputFormatJSON:
				return StandardJSONRenderer(resourceAttrs(groups))
			case OutputFormatYAML:
				return StandardYAMLRenderer(resourceAttrs(groups))
			default:
				return renderGroupsTable(groups)
			}
		},
	}

	cmd.Flags().StringVar(&prefix, "prefix", "", "filter by group name prefix")

	return cmd
}

func renderGroupsTable(groups []*papi.Group) error {
	if len(groups) == 0 {
		_, _ = os.Stdout.WriteString("No groups found\n")

		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("GUID", "Name", "Owner GUID")

	for _, group := range groups {
		_ = table.Append(group.GUID(), group.Name(), group.OwnerGUID())
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

func newGroupsShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show GROUP_GUID",
		Short: "Show group details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient, err := CreateClient(cmd.Flag("server").Value.String())
			if err != nil {
				return err
			}

			group, err := apiClient.Groups().Get(context.Background(), args[0])
			if err != nil {
				return fmt.Errorf("failed to get group: %w", err)
			}

			output := viper.GetString("output")
			switch output {
			case OutputFormatJSON:
				return StandardJSONRenderer(group.Attrs())
			case OutputFormatYAML:
				return StandardYAMLRenderer(group.Attrs())
			default:
				table := tablewriter.NewWriter(os.Stdout)
				table.Header("Property", "Value")

				_ = table.Append("GUID", group.GUID())
				_ = table.Append("Name", group.Name())
				_ = table.Append("Owner GUID", group.OwnerGUID())

				if err := table.Render(); err != nil {
					return fmt.Errorf("failed to render table: %w", err)
				}

				return nil
			}
		},
	}
}

func newGroupsCreateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "create NAME",
		Short: "Create a group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient, err := CreateClient(cmd.Flag("server").Value.String())
			if err != nil {
				return err
			}

			group, err := apiClient.Groups().Create(context.Background(), &papi.GroupCreateRequest{
				Name: args[0],
			})
			if err != nil {
				return fmt.Errorf("failed to create group: %w", err)
			}

			_, _ = fmt.Fprintf(os.Stdout, "Successfully created group '%s' (GUID: %s)\n", group.Name(), group.GUID())

			return nil
		},
	}
}

func newGroupsDeleteCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete GROUP_GUID",
		Short: "Delete a group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force && !confirmAction(fmt.Sprintf("Delete group '%s'?", args[0])) {
				_, _ = os.Stdout.WriteString("Cancelled\n")

				return nil
			}

			apiClient, err := CreateClient(cmd.Flag("server").Value.String())
			if err != nil {
				return err
			}

			err = apiClient.Groups().Delete(context.Background(), args[0])
			if err != nil {
				return fmt.Errorf("failed to delete group: %w", err)
			}

			_, _ = fmt.Fprintf(os.Stdout, "Successfully deleted group '%s'\n", args[0])

			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "delete without confirmation")

	return cmd
}

func newGroupsMembersCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "members GROUP_GUID",
		Short: "List group members",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient, err := CreateClient(cmd.Flag("server").Value.String())
			if err != nil {
				return err
			}

			members, err := apiClient.Groups().Members(context.Background(), args[0], nil)
			if err != nil {
				return fmt.Errorf("failed to list group members: %w", err)
			}

			return outputUsers(members)
		},
	}
}

func newGroupsAddMemberCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add-member GROUP_GUID USER_GUID_OR_USERNAME",
		Short: "Add a user to a group",
		Args:  cobra.ExactArgs(constants.TwoArguments),
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient, err := CreateClient(cmd.Flag("server").Value.String())
			if err != nil {
				return err
			}

			ctx := context.Background()

			user, err := findUserByGUIDOrUsername(ctx, apiClient, args[1])
			if err != nil {
				return err
			}

			err = apiClient.Groups().AddMember(ctx, args[0], user.GUID())
			if err != nil {
				return fmt.Errorf("failed to add group member: %w", err)
			}

			_, _ = fmt.Fprintf(os.Stdout, "Added '%s' to group '%s'\n", user.Username(), args[0])

			return nil
		},
	}
}

func newGroupsRemoveMemberCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove-member GROUP_GUID USER_GUID_OR_USERNAME",
		Short: "Remove a user from a group",
		Args:  cobra.ExactArgs(constants.TwoArguments),
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient, err := CreateClient(cmd.Flag("server").Value.String())
			if err != nil {
				return err
			}

			ctx := context.Background()

			user, err := findUserByGUIDOrUsername(ctx, apiClient, args[1])
			if err != nil {
				return err
			}

			err = apiClient.Groups().RemoveMember(ctx, args[0], user.GUID())
			if err != nil {
				return fmt.Errorf("failed to remove group member: %w", err)
			}

			_, _ = fmt.Fprintf(os.Stdout, "Removed '%s' from group '%s'\n", user.Username(), args[0])

			return nil
		},
	}
}
