package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/pressroom-io/papi/internal/auth"
	"github.com/pressroom-io/papi/internal/client"
	"github.com/pressroom-io/papi/internal/constants"
	"github.com/pressroom-io/papi/pkg/papi"
	"github.com/pressroom-io/papi/pkg/prclient"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config represents the CLI configuration.
type Config struct {
	// Multi-server configuration
	Servers       map[string]*ServerConfig `json:"servers,omitempty"        yaml:"servers,omitempty"`
	CurrentServer string                   `json:"current_server,omitempty" yaml:"current_server,omitempty"`

	// Global settings
	Output  string `json:"output"   yaml:"output"`
	NoColor bool   `json:"no_color" yaml:"no_color"`
}

// ServerConfig represents configuration for a single Pressroom server.
type ServerConfig struct {
	Endpoint       string     `json:"endpoint"                   yaml:"endpoint"`
	APIKey         string     `json:"api_key,omitempty"          yaml:"api_key,omitempty"`
	Token          string     `json:"token,omitempty"            yaml:"token,omitempty"`
	TokenExpiresAt *time.Time `json:"token_expires_at,omitempty" yaml:"token_expires_at,omitempty"`
	RefreshToken   string     `json:"refresh_token,omitempty"    yaml:"refresh_token,omitempty"`
	LastRefreshed  *time.Time `json:"last_refreshed,omitempty"   yaml:"last_refreshed,omitempty"`
	Username       string     `json:"username,omitempty"         yaml:"username,omitempty"`
	SkipTLSVerify  bool       `json:"skip_tls_verify"            yaml:"skip_tls_verify"`
}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Manage papi CLI configuration including servers and global settings",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetCommand())
	cmd.AddCommand(newConfigUnsetCommand())
	cmd.AddCommand(newConfigClearCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the current CLI configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			output := viper.GetString("output")
			switch output {
			case OutputFormatJSON:
				encoder := json.NewEncoder(os.Stdout)
				encoder.SetIndent("", "  ")

				return encoder.Encode(redactConfig(config))
			case OutputFormatYAML:
				encoder := yaml.NewEncoder(os.Stdout)

				return encoder.Encode(redactConfig(config))
			default:
				return displayConfigTable(config)
			}
		},
	}
}

// redactConfig masks credentials before the config is printed.
func redactConfig(config *Config) *Config {
	redacted := &Config{
		Servers:       make(map[string]*ServerConfig, len(config.Servers)),
		CurrentServer: config.CurrentServer,
		Output:        config.Output,
		NoColor:       config.NoColor,
	}

	for name, server := range config.Servers {
		clone := *server
		if clone.APIKey != "" {
			clone.APIKey = constants.MaskedSecret
		}

		if clone.Token != "" {
			clone.Token = constants.MaskedSecret
		}

		if clone.RefreshToken != "" {
			clone.RefreshToken = constants.MaskedSecret
		}

		redacted.Servers[name] = &clone
	}

	return redacted
}

func displayConfigTable(config *Config) error {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Setting", "Value")

	_ = table.Append("Current server", config.CurrentServer)
	_ = table.Append("Output", config.Output)
	_ = table.Append("Servers", fmt.Sprintf("%d configured", len(config.Servers)))

	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	if len(config.Servers) > 0 {
		_, _ = os.Stdout.WriteString("\nUse 'papi servers list' to see configured servers\n")
	}

	return nil
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Long:  "Set a global configuration value (output, no_color)",
		Args:  cobra.ExactArgs(constants.TwoArguments),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]
			config := loadConfig()

			switch key {
			case "output":
				config.Output = value
			case "no_color":
				config.NoColor = value == "true" || value == "1"
			default:
				return fmt.Errorf("%w: %s", constants.ErrUnknownConfigKey, key)
			}

			err := saveConfigStruct(config)
			if err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			_, _ = fmt.Fprintf(os.Stdout, "Set %s to %s\n", key, value)

			return nil
		},
	}
}

func newConfigUnsetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unset KEY",
		Short: "Unset a configuration value",
		Long:  "Reset a global configuration value to its default",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			config := loadConfig()

			switch key {
			case "output":
				config.Output = "table"
			case "no_color":
				config.NoColor = false
			default:
				return fmt.Errorf("%w: %s", constants.ErrUnknownConfigKey, key)
			}

			err := saveConfigStruct(config)
			if err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			_, _ = fmt.Fprintf(os.Stdout, "Unset %s\n", key)

			return nil
		},
	}
}

func newConfigClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear configuration",
		Long:  "Remove the configuration file, including all saved servers",
		RunE: func(cmd *cobra.Command, args []string) error {
			configFile := viper.ConfigFileUsed()
			if configFile == "" {
				home, _ := os.UserHomeDir()
				configFile = filepath.Join(home, ".papi", "config.yml")
			}

			err := os.Remove(configFile)
			if err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("failed to remove config file: %w", err)
			}

			_, _ = os.Stdout.WriteString("Cleared all configuration\n")

			return nil
		},
	}
}

// loadConfig assembles the CLI config from whatever viper read in.
func loadConfig() *Config {
	config := &Config{
		Servers:       make(map[string]*ServerConfig),
		CurrentServer: viper.GetString("current_server"),
		Output:        viper.GetString("output"),
		NoColor:       viper.GetBool("no_color"),
	}

	serversRaw := viper.GetStringMap("servers")
	for name, serverRaw := range serversRaw {
		if serverMap, ok := serverRaw.(map[string]interface{}); ok {
			config.Servers[name] = parseServerConfig(serverMap)
		}
	}

	return config
}

// parseServerConfig parses one server entry from a config map.
func parseServerConfig(serverMap map[string]interface{}) *ServerConfig {
	server := &ServerConfig{}

	stringFields := map[string]*string{
		"endpoint":      &server.Endpoint,
		"api_key":       &server.APIKey,
		"token":         &server.Token,
		"refresh_token": &server.RefreshToken,
		"username":      &server.Username,
	}

	for key, field := range stringFields {
		if value, ok := serverMap[key].(string); ok {
			*field = value
		}
	}

	if skipTLS, ok := serverMap["skip_tls_verify"].(bool); ok {
		server.SkipTLSVerify = skipTLS
	}

	if expiresAtStr, ok := serverMap["token_expires_at"].(string); ok && expiresAtStr != "" {
		t, err := time.Parse(time.RFC3339, expiresAtStr)
		if err == nil {
			server.TokenExpiresAt = &t
		}
	}

	if lastRefreshedStr, ok := serverMap["last_refreshed"].(string); ok && lastRefreshedStr != "" {
		t, err := time.Parse(time.RFC3339, lastRefreshedStr)
		if err == nil {
			server.LastRefreshed = &t
		}
	}

	return server
}

// saveConfigStruct writes the config back to the active config file.
func saveConfigStruct(config *Config) error {
	configFile := viper.ConfigFileUsed()
	if configFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get user home directory: %w", err)
		}

		configDir := filepath.Join(home, ".papi")

		err = os.MkdirAll(configDir, constants.ConfigDirPerm)
		if err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}

		configFile = filepath.Join(configDir, "config.yml")
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	err = os.WriteFile(configFile, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// extractServerName derives a config key from an endpoint URL: the bare
// host, without scheme, path, or port.
func extractServerName(endpoint string) string {
	name := endpoint
	name = strings.TrimPrefix(name, "https://")
	name = strings.TrimPrefix(name, "http://")

	if idx := strings.Index(name, "/"); idx != -1 {
		name = name[:idx]
	}

	if idx := strings.Index(name, ":"); idx != -1 {
		name = name[:idx]
	}

	return name
}

// resolveServerConfig finds the server entry to talk to: the --server flag
// (a saved name or a literal endpoint), or the current server.
func resolveServerConfig(serverFlag string) (*ServerConfig, string, error) {
	config := loadConfig()

	if serverFlag != "" {
		if server, exists := config.Servers[serverFlag]; exists {
			return server, serverFlag, nil
		}

		for name, server := range config.Servers {
			if server.Endpoint == serverFlag {
				return server, name, nil
			}
		}

		// Not saved: treat the flag as a literal endpoint.
		if strings.Contains(serverFlag, ".") || strings.Contains(serverFlag, "://") {
			return &ServerConfig{Endpoint: serverFlag}, extractServerName(serverFlag), nil
		}

		return nil, "", fmt.Errorf("%w: '%s'", constants.ErrServerConfigNotFound, serverFlag)
	}

	if config.CurrentServer == "" {
		if len(config.Servers) == 0 {
			return nil, "", constants.ErrNoServersConfigured
		}

		for name, server := range config.Servers {
			return server, name, nil
		}
	}

	server, exists := config.Servers[config.CurrentServer]
	if !exists {
		return nil, "", fmt.Errorf("%w: '%s'", constants.ErrCurrentServerNotFound, config.CurrentServer)
	}

	return server, config.CurrentServer, nil
}

// CreateClient builds a papi.Client for the server selected by the
// --server flag (or the current server). A --api-key flag or PAPI_API_KEY
// overrides whatever credential the config holds.
func CreateClient(serverFlag string) (papi.Client, error) {
	server, serverName, err := resolveServerConfig(serverFlag)
	if err != nil {
		return nil, err
	}

	if server.Endpoint == "" {
		return nil, constants.ErrEndpointRequired
	}

	if apiKey := viper.GetString("api_key"); apiKey != "" {
		server = &ServerConfig{
			Endpoint:      server.Endpoint,
			APIKey:        apiKey,
			SkipTLSVerify: server.SkipTLSVerify,
		}
	}

	if viper.GetBool("skip_tls_verify") {
		server.SkipTLSVerify = true
	}

	ctx := context.Background()

	switch {
	case server.APIKey != "":
		return prclient.New(ctx, &papi.Config{
			APIEndpoint:   server.Endpoint,
			APIKey:        server.APIKey,
			SkipTLSVerify: server.SkipTLSVerify,
		})
	case server.RefreshToken != "" || server.Token != "":
		return createOAuthClient(ctx, server, serverName)
	default:
		return nil, constants.ErrNotAuthenticated
	}
}

// createOAuthClient builds a client whose tokens refresh automatically and
// persist back into the config file.
func createOAuthClient(ctx context.Context, server *ServerConfig, serverName string) (papi.Client, error) {
	oauthConfig := &auth.OAuth2Config{
		TokenURL:     strings.TrimSuffix(server.Endpoint, "/") + "/oauth/token",
		Username:     server.Username,
		RefreshToken: server.RefreshToken,
		AccessToken:  server.Token,
	}

	initialExpiry := time.Time{}
	if server.TokenExpiresAt != nil {
		initialExpiry = *server.TokenExpiresAt
	}

	tokenManager := auth.NewConfigTokenManager(oauthConfig, NewConfigPersister(), serverName, server.Token, initialExpiry)

	apiClient, err := client.NewWithTokenManager(ctx, &papi.Config{
		APIEndpoint:   server.Endpoint,
		SkipTLSVerify: server.SkipTLSVerify,
	}, tokenManager)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return apiClient, nil
}
