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
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NewUsersCommand creates the users command group.
func NewUsersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "users",
		Aliases: []string{"user"},
		Short:   "Manage user accounts",
		Long:    "List, inspect, update, and lock Pressroom user accounts",
	}

	cmd.AddCommand(newUsersListCommand())
	cmd.AddCommand(newUsersShowCommand())
	cmd.AddCommand(newUsersCurrentCommand())
	cmd.AddCommand(newUsersUpdateCommand())
	cmd.AddCommand(newUsersLockCommand(true))
	cmd.AddCommand(newUsersLockCommand(false))

	return cmd
}

func newUsersListCommand() *cobra.Command {
	var (
		allPages bool
		pageSize int
		prefix   string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List user accounts",
		Long:  "List user accounts, optionally filtered by a username/name/email prefix",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUsersListCommand(cmd, allPages, pageSize, prefix)
		},
	}

	cmd.Flags().BoolVar(&allPages, "all", false, "fetch all pages")
	cmd.Flags().IntVar(&pageSize, "page-size", constants.CLIPageSize, "results per page")
	cmd.Flags().StringVar(&prefix, "prefix", "", "filter by username, name, or email prefix")

	return cmd
}

func runUsersListCommand(cmd *cobra.Command, allPages bool, pageSize int, prefix string) error {
	apiClient, err := CreateClient(cmd.Flag("server").Value.String())
	if err != nil {
		return err
	}

	ctx := context.Background()

	params := papi.NewQueryParams().WithPageSize(pageSize)
	if prefix != "" {
		params.WithPrefix(prefix)
	}

	var users []*papi.User
	if allPages {
		users, err = apiClient.Users().ListAll(ctx, params)
	} else {
		users, err = apiClient.Users().List(ctx, params)
	}

	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}

	return outputUsers(users)
}

func outputUsers(users []*papi.User) error {
	output := viper.GetString("output")
	switch output {
	case OutputFormatJSON:
		return StandardJSONRenderer(resourceAttrs(users))
	case OutputFormatYAML:
		return StandardYAMLRenderer(resourceAttrs(users))
	default:
		return renderUsersTable(users)
	}
}

func renderUsersTable(users []*papi.User) error {
	if len(users) == 0 {
		_, _ = os.Stdout.WriteString("No users found\n")

		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("GUID", "Username", "Name", "Email", "Role", "Locked")

	for _, user := range users {
		_ = table.Append(user.GUID(), user.Username(), user.FullName(),
			user.Email(), user.Role(), yesNo(user.Locked()))
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

func newUsersShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show USER_GUID_OR_USERNAME",
		Short: "Show user details",
		Long:  "Display detailed information about a user account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient, err := CreateClient(cmd.Flag("server").Value.String())
			if err != nil {
				return err
			}

			ctx := context.Background()

			user, err := findUserByGUIDOrUsername(ctx, apiClient, args[0])
			if err != nil {
				return err
			}

			return outputUserDetails(user)
		},
	}
}

func findUserByGUIDOrUsername(ctx context.Context, apiClient papi.Client, guidOrUsername string) (*papi.User, error) {
	usersClient := apiClient.Users()

	user, err := usersClient.Get(ctx, guidOrUsername)
	if err == nil {
		return user, nil
	}

	if !papi.IsNotFound(err) {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	user, found, err := usersClient.FindBy(ctx, map[string]any{"username": guidOrUsername})
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !found {
		return nil, fmt.Errorf("'%s': %w", guidOrUsername, constants.ErrUserNotFound)
	}

	return user, nil
}

func outputUserDetails(user *papi.User) error {
	output := viper.GetString("output")
	switch output {
	case OutputFormatJSON:
		return StandardJSONRenderer(user.Attrs())
	case OutputFormatYAML:
		return StandardYAMLRenderer(user.Attrs())
	default:
		table := tablewriter.NewWriter(os.Stdout)
		table.Header("Property", "Value")

		_ = table.Append("GUID", user.GUID())
		_ = table.Append("Username", user.Username())
		_ = table.Append("Name", user.FullName())
		_ = table.Append("Email", user.Email())
		_ = table.Append("Role", user.Role())
		_ = table.Append("Locked", yesNo(user.Locked()))

		if err := table.Render(); err != nil {
			return fmt.Errorf("failed to render table: %w", err)
		}

		return nil
	}
}

func newUsersCurrentCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "current",
		Short: "Show the authenticated user",
		Long:  "Display the user account the current credentials belong to",
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient, err := CreateClient(cmd.Flag("server").Value.String())
			if err != nil {
				return err
			}

			user, err := apiClient.Users().GetCurrent(context.Background())
			if err != nil {
				return fmt.Errorf("failed to get current user: %w", err)
			}

			return outputUserDetails(user)
		},
	}
}

func newUsersUpdateCommand() *cobra.Command {
	var (
		firstName string
		lastName  string
		email     string
		role      string
	)

	cmd := &cobra.Command{
		Use:   "update USER_GUID_OR_USERNAME",
		Short: "Update a user account",
		Long:  "Update the name, email, or platform role of a user account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient, err := CreateClient(cmd.Flag("server").Value.String())
			if err != nil {
				return err
			}

			ctx := context.Background()

			user, err := findUserByGUIDOrUsername(ctx, apiClient, args[0])
			if err != nil {
				return err
			}

			request := &papi.UserUpdateRequest{}
			hasUpdate := false

			if cmd.Flags().Changed("first-name") {
				request.FirstName = &firstName
				hasUpdate = true
			}

			if cmd.Flags().Changed("last-name") {
				request.LastName = &lastName
				hasUpdate = true
			}

			if cmd.Flags().Changed("email") {
				request.Email = &email
				hasUpdate = true
			}

			if cmd.Flags().Changed("role") {
				request.Role = &role
				hasUpdate = true
			}

			if !hasUpdate {
				return constants.ErrNoUpdatesSpecified
			}

			updated, err := apiClient.Users().Update(ctx, user.GUID(), request)
			if err != nil {
				return fmt.Errorf("failed to update user: %w", err)
			}

			output := viper.GetString("output")
			switch output {
			case OutputFormatJSON:
				return StandardJSONRenderer(updated.Attrs())
			case OutputFormatYAML:
				return StandardYAMLRenderer(updated.Attrs())
			default:
				_, _ = fmt.Fprintf(os.Stdout, "Successfully updated user '%s'\n", updated.Username())

				return nil
			}
		},
	}

	cmd.Flags().StringVar(&firstName, "first-name", "", "new first name")
	cmd.Flags().StringVar(&lastName, "last-name", "", "new last name")
	cmd.Flags().StringVar(&email, "email", "", "new email address")
	cmd.Flags().StringVar(&role, "role", "", "new platform role (viewer, publisher, administrator)")

	return cmd
}

func newUsersLockCommand(lock bool) *cobra.Command {
	use, verb := "lock", "locked"
	if !lock {
		use, verb = "unlock", "unlocked"
	}

	return &cobra.Command{
		Use:   use + " USER_GUID_OR_USERNAME",
		Short: fmt.Sprintf("%s a user account", cases.Title(language.English).String(use)),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient, err := CreateClient(cmd.Flag("server").Value.String())
			if err != nil {
				return err
			}

			ctx := context.Background()

			user, err := findUserByGUIDOrUsername(ctx, apiClient, args[0])
			if err != nil {
				return err
			}

			if lock {
				err = apiClient.Users().Lock(ctx, user.GUID())
			} else {
				err = apiClient.Users().Unlock(ctx, user.GUID())
			}

			if err != nil {
				return fmt.Errorf("failed to %s user: %w", use, err)
			}

			_, _ = fmt.Fprintf(os.Stdout, "Successfully %s user '%s'\n", verb, user.Username())

			return nil
		},
	}
}
