package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/pressroom-io/papi/internal/constants"
	"github.com/pressroom-io/papi/pkg/prclient"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewServersCommand creates the servers command group.
func NewServersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "servers",
		Aliases: []string{"server"},
		Short:   "Manage saved servers",
		Long:    "List, add, select, and remove saved Pressroom servers",
	}

	cmd.AddCommand(newServersListCommand())
	cmd.AddCommand(newServersAddCommand())
	cmd.AddCommand(newServersUseCommand())
	cmd.AddCommand(newServersRemoveCommand())

	return cmd
}

// serverListing is the structured-output shape of one saved server.
type serverListing struct {
	Name     string `json:"name"     yaml:"name"`
	Endpoint string `json:"endpoint" yaml:"endpoint"`
	Username string `json:"username,omitempty" yaml:"username,omitempty"`
	Current  bool   `json:"current"  yaml:"current"`
}

func newServersListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved servers",
		Long:  "List all saved Pressroom servers",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			listings := make([]serverListing, 0, len(config.Servers))
			for name, server := range config.Servers {
				listings = append(listings, serverListing{
					Name:     name,
					Endpoint: server.Endpoint,
					Username: server.Username,
					Current:  name == config.CurrentServer,
				})
			}

			output := viper.GetString("output")
			switch output {
			case OutputFormatJSON:
				return StandardJSONRenderer(listings)
			case OutputFormatYAML:
				return StandardYAMLRenderer(listings)
			default:
				if len(listings) == 0 {
					_, _ = os.Stdout.WriteString("No servers saved. Use 'papi login' to add one.\n")

					return nil
				}

				table := tablewriter.NewWriter(os.Stdout)
				table.Header("", "Name", "Endpoint", "Username")

				for _, listing := range listings {
					marker := ""
					if listing.Current {
						marker = "*"
					}

					_ = table.Append(marker, listing.Name, listing.Endpoint, listing.Username)
				}

				if err := table.Render(); err != nil {
					return fmt.Errorf("failed to render table: %w", err)
				}

				return nil
			}
		},
	}
}

func newServersAddCommand() *cobra.Command {
	var (
		apiKey   string
		validate bool
	)

	cmd := &cobra.Command{
		Use:   "add NAME ENDPOINT",
		Short: "Add a server",
		Long:  "Save a Pressroom server under a name without logging in interactively",
		Args:  cobra.ExactArgs(constants.TwoArguments),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, endpoint := args[0], args[1]

			if apiKey == "" {
				apiKey = viper.GetString("api_key")
			}

			if validate {
				ctx := context.Background()

				apiClient, err := prclient.NewWithAPIKey(ctx, endpoint, apiKey)
				if err != nil {
					return fmt.Errorf("failed to create client: %w", err)
				}

				_, err = apiClient.Settings().Get(ctx)
				if err != nil {
					return fmt.Errorf("failed to connect to server: %w", err)
				}
			}

			config := loadConfig()
			if config.Servers == nil {
				config.Servers = make(map[string]*ServerConfig)
			}

			config.Servers[name] = &ServerConfig{
				Endpoint: endpoint,
				APIKey:   apiKey,
			}

			if config.CurrentServer == "" {
				config.CurrentServer = name
			}

			if err := saveConfigStruct(config); err != nil {
				return fmt.Errorf("failed to save configuration: %w", err)
			}

			_, _ = fmt.Fprintf(os.Stdout, "Added server '%s' (%s)\n", name, endpoint)

			return nil
		},
	}

	cmd.Flags().StringVar(&apiKey, "api-key", "", "API key for the server")
	cmd.Flags().BoolVar(&validate, "validate", true, "verify the server is reachable before saving")

	return cmd
}

func newServersUseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "use NAME",
		Short: "Select the current server",
		Long:  "Make the named server the default target for all commands",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			config := loadConfig()

			if _, exists := config.Servers[name]; !exists {
				return fmt.Errorf("%w: '%s'", constants.ErrServerConfigNotFound, name)
			}

			config.CurrentServer = name

			if err := saveConfigStruct(config); err != nil {
				return fmt.Errorf("failed to save configuration: %w", err)
			}

			_, _ = fmt.Fprintf(os.Stdout, "Now using server '%s'\n", name)

			return nil
		},
	}
}

func newServersRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove NAME",
		Short: "Remove a saved server",
		Long:  "Delete a saved server and its credentials from the configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			config := loadConfig()

			if _, exists := config.Servers[name]; !exists {
				return fmt.Errorf("%w: '%s'", constants.ErrServerConfigNotFound, name)
			}

			delete(config.Servers, name)

			if config.CurrentServer == name {
				config.CurrentServer = ""
				for remaining := range config.Servers {
					config.CurrentServer = remaining

					break
				}
			}

			if err := saveConfigStruct(config); err != nil {
				return fmt.Errorf("failed to save configuration: %w", err)
			}

			_, _ = fmt.Fprintf(os.Stdout, "Removed server '%s'\n", name)

			return nil
		},
	}
}
