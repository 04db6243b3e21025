package commands

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/pressroom-io/papi/internal/constants"
	"github.com/pressroom-io/papi/pkg/papi"
	"github.com/pressroom-io/papi/pkg/prclient"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

// NewLoginCommand creates the login command
func NewLoginCommand() *cobra.Command {
	var (
		endpoint     string
		name         string
		apiKey       string
		username     string
		password     string
		clientID     string
		clientSecret string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Login to a Pressroom server",
		Long: `Authenticate against a Pressroom server and save the credentials.

The normal flow uses an API key (--api-key, or entered at the prompt).
Username/password and service-account credentials are also supported for
servers with OAuth2 enabled.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Resolve the endpoint: flag, saved server, or prompt.
			if endpoint == "" {
				endpoint = viper.GetString("server")
			}

			if endpoint == "" {
				config := loadConfig()
				if config.CurrentServer != "" {
					if server, exists := config.Servers[config.CurrentServer]; exists {
						endpoint = server.Endpoint
					}
				}
			}

			if endpoint == "" {
				reader := bufio.NewReader(os.Stdin)
				fmt.Print("Server endpoint: ")
				endpoint, _ = reader.ReadString('\n')
				endpoint = strings.TrimSpace(endpoint)
			}

			if endpoint == "" {
				return constants.ErrEndpointRequired
			}

			// A saved server name resolves to its endpoint.
			if server, exists := loadConfig().Servers[endpoint]; exists {
				if name == "" {
					name = endpoint
				}

				endpoint = server.Endpoint
			}

			skipTLS := viper.GetBool("skip_tls_verify")

			config := &papi.Config{
				APIEndpoint:   endpoint,
				SkipTLSVerify: skipTLS,
			}

			// Determine authentication method
			switch {
			case clientID != "" && clientSecret != "":
				config.ClientID = clientID
				config.ClientSecret = clientSecret
			case username != "" || password != "":
				if username == "" {
					reader := bufio.NewReader(os.Stdin)
					fmt.Print("Username: ")
					username, _ = reader.ReadString('\n')
					username = strings.TrimSpace(username)
				}

				if password == "" {
					fmt.Print("Password: ")
					bytePassword, err := term.ReadPassword(int(syscall.Stdin))
					if err != nil {
						return fmt.Errorf("failed to read password: %w", err)
					}
					password = string(bytePassword)
					fmt.Println()
				}

				config.Username = username
				config.Password = password
			default:
				if apiKey == "" {
					apiKey = viper.GetString("api_key")
				}

				if apiKey == "" {
					fmt.Print("API key: ")
					byteKey, err := term.ReadPassword(int(syscall.Stdin))
					if err != nil {
						return fmt.Errorf("failed to read API key: %w", err)
					}
					apiKey = string(byteKey)
					fmt.Println()
				}

				if apiKey == "" {
					return constants.ErrAPIKeyRequired
				}

				config.APIKey = apiKey
			}

			// Create the client and verify the credentials work.
			ctx := context.Background()

			apiClient, err := prclient.New(ctx, config)
			if err != nil {
				return fmt.Errorf("failed to create client: %w", err)
			}

			settings, err := apiClient.Settings().Get(ctx)
			if err != nil {
				return fmt.Errorf("failed to connect to server: %w", err)
			}

			// config.APIEndpoint was normalized during client construction.
			normalizedEndpoint := config.APIEndpoint

			configKey := name
			if configKey == "" {
				configKey = extractServerName(normalizedEndpoint)
			}

			configStruct := loadConfig()
			if configStruct.Servers == nil {
				configStruct.Servers = make(map[string]*ServerConfig)
			}

			server, exists := configStruct.Servers[configKey]
			if !exists {
				server = &ServerConfig{}
				configStruct.Servers[configKey] = server
			}

			server.Endpoint = normalizedEndpoint
			server.Username = username
			server.SkipTLSVerify = skipTLS
			server.APIKey = apiKey

			// OAuth flows leave a token behind; save it so later invocations
			// can refresh instead of re-authenticating.
			if apiKey == "" {
				if tokenGetter, ok := apiClient.(interface {
					GetToken(context.Context) (string, error)
				}); ok {
					if token, err := tokenGetter.GetToken(ctx); err == nil && token != "" {
						server.Token = token
					}
				}
			}

			if configStruct.CurrentServer == "" || len(configStruct.Servers) == 1 {
				configStruct.CurrentServer = configKey
			}

			if err := saveConfigStruct(configStruct); err != nil {
				return fmt.Errorf("failed to save configuration: %w", err)
			}

			fmt.Printf("Successfully logged in to %s\n", normalizedEndpoint)
			fmt.Printf("Server version: %s\n", settings.Version)

			if configStruct.CurrentServer == configKey {
				fmt.Printf("Server '%s' set as current\n", configKey)
			}

			return nil
		},
	}

	// Add flags
	cmd.Flags().StringVarP(&endpoint, "endpoint", "e", "", "server endpoint URL or saved server name")
	cmd.Flags().StringVarP(&name, "name", "n", "", "name to save the server under (defaults to the hostname)")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "Pressroom API key")
	cmd.Flags().StringVarP(&username, "username", "u", "", "username for OAuth2 password authentication")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password for OAuth2 password authentication")
	cmd.Flags().StringVar(&clientID, "client-id", "", "OAuth2 service account client ID")
	cmd.Flags().StringVar(&clientSecret, "client-secret", "", "OAuth2 service account client secret")

	return cmd
}

// NewLogoutCommand creates the logout command
func NewLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Logout from a Pressroom server",
		Long:  "Clear saved credentials for the current server",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			serverName := cmd.Flag("server").Value.String()
			if serverName == "" {
				serverName = config.CurrentServer
			}

			server, exists := config.Servers[serverName]
			if !exists {
				return fmt.Errorf("%w: '%s'", constants.ErrServerConfigNotFound, serverName)
			}

			server.APIKey = ""
			server.Token = ""
			server.RefreshToken = ""
			server.TokenExpiresAt = nil
			server.LastRefreshed = nil

			if err := saveConfigStruct(config); err != nil {
				return fmt.Errorf("failed to save configuration: %w", err)
			}

			fmt.Printf("Logged out from '%s'\n", serverName)
			return nil
		},
	}
}
