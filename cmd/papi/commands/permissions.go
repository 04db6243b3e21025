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

// NewPermissionsCommand creates the permissions command group.
func NewPermissionsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "permissions",
		Aliases: []string{"perms"},
		Short:   "Manage content access rules",
		Long:    "List, grant, update, and revoke access to content items",
	}

	cmd.AddCommand(newPermissionsListCommand())
	cmd.AddCommand(newPermissionsGrantCommand())
	cmd.AddCommand(newPermissionsUpdateCommand())
	cmd.AddCommand(newPermissionsRevokeCommand())

	return cmd
}

func newPermissionsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list CONTENT_GUID_OR_NAME",
		Short: "List a content item's access rules",
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

			permissions, err := apiClient.Permissions().List(ctx, item.GUID())
			if err != nil {
				return fmt.Errorf("failed to list permissions: %w", err)
			}

			output := viper.GetString("output")
			switch output {
			case OutputFormatJSON:
				return StandardJSONRenderer(resourceAttrs(permissions))
			case OutputFormatYAML:
				return StandardYAMLRenderer(resourceAttrs(permissions))
			default:
				return renderPermissionsTable(permissions)
			}
		},
	}
}

func renderPermissionsTable(permissions []*papi.Permission) error {
	if len(permissions) == 0 {
		_, _ = os.Stdout.WriteString("No permissions found\n")

		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("ID", "Principal GUID", "Type", "Role")

	for _, permission := range permissions {
		_ = table.Append(permission.ID(), permission.PrincipalGUID(),
			permission.PrincipalType(), permission.Role())
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

func newPermissionsGrantCommand() *cobra.Command {
	var (
		principalType string
		role          string
	)

	cmd := &cobra.Command{
		Use:   "grant CONTENT_GUID_OR_NAME PRINCIPAL_GUID",
		Short: "Grant access to a content item",
		Long:  "Grant a user or group a role on a content item",
		Args:  cobra.ExactArgs(constants.TwoArguments),
		RunE: func(cmd *cobra.Command, args []string) error {
			if principalType != "user" && principalType != "group" {
				return fmt.Errorf("%w: '%s'", constants.ErrInvalidPrincipalType, principalType)
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

			permission, err := apiClient.Permissions().Create(ctx, item.GUID(), &papi.PermissionCreateRequest{
				PrincipalGUID: args[1],
				PrincipalType: principalType,
				Role:          role,
			})
			if err != nil {
				return fmt.Errorf("failed to grant permission: %w", err)
			}

			_, _ = fmt.Fprintf(os.Stdout, "Granted %s '%s' role '%s' on '%s' (permission: %s)\n",
				principalType, args[1], permission.Role(), item.Name(), permission.ID())

			return nil
		},
	}

	cmd.Flags().StringVar(&principalType, "type", "user", "principal type (user or group)")
	cmd.Flags().StringVar(&role, "role", "viewer", "role to grant (viewer or editor)")

	return cmd
}

func newPermissionsUpdateCommand() *cobra.Command {
	var role string

	cmd := &cobra.Command{
		Use:   "update CONTENT_GUID_OR_NAME PRINCIPAL_GUID",
		Short: "Change a granted role",
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

			permission, found, err := apiClient.Permissions().FindByUser(ctx, item.GUID(), args[1])
			if err != nil {
				return fmt.Errorf("failed to find permission: %w", err)
			}

			if !found {
				return fmt.Errorf("principal '%s': %w", args[1], constants.ErrPermissionNotFound)
			}

			updated, err := apiClient.Permissions().Update(ctx, item.GUID(), permission.ID(), &papi.PermissionUpdateRequest{
				Role: role,
			})
			if err != nil {
				return fmt.Errorf("failed to update permission: %w", err)
			}

			_, _ = fmt.Fprintf(os.Stdout, "Updated permission %s to role '%s'\n", updated.ID(), updated.Role())

			return nil
		},
	}

	cmd.Flags().StringVar(&role, "role", "viewer", "new role (viewer or editor)")
	_ = cmd.MarkFlagRequired("role")

	return cmd
}

func newPermissionsRevokeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "revoke CONTENT_GUID_OR_NAME PRINCIPAL_GUID",
		Short: "Revoke access to a content item",
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

			permission, found, err := apiClient.Permissions().FindByUser(ctx, item.GUID(), args[1])
			if err != nil {
				return fmt.Errorf("failed to find permission: %w", err)
			}

			if !found {
				return fmt.Errorf("principal '%s': %w", args[1], constants.ErrPermissionNotFound)
			}

			err = apiClient.Permissions().Delete(ctx, item.GUID(), permission.ID())
			if err != nil {
				return fmt.Errorf("failed to revoke permission: %w", err)
			}

			_, _ = fmt.Fprintf(os.Stdout, "Revoked access for '%s' on '%s'\n", args[1], item.Name())

			return nil
		},
	}
}
