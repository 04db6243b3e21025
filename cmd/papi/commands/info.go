package commands

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewInfoCommand creates the info command.
func NewInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show server information",
		Long:  "Display version and capability information about the targeted Pressroom server",
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient, err := CreateClient(cmd.Flag("server").Value.String())
			if err != nil {
				return err
			}

			ctx := context.Background()

			settings, err := apiClient.Settings().Get(ctx)
			if err != nil {
				return fmt.Errorf("failed to fetch server settings: %w", err)
			}

			output := viper.GetString("output")
			switch output {
			case OutputFormatJSON:
				return StandardJSONRenderer(settings)
			case OutputFormatYAML:
				return StandardYAMLRenderer(settings)
			default:
				table := tablewriter.NewWriter(os.Stdout)
				table.Header("Property", "Value")

				_ = table.Append("Version", settings.Version)
				_ = table.Append("Build", settings.Build)
				_ = table.Append("Hostname", settings.Hostname)
				_ = table.Append("About", settings.About)
				_ = table.Append("Authentication", settings.Authentication)
				_ = table.Append("Mail configured", yesNo(settings.MailConfigured))
				_ = table.Append("Vanity paths", yesNo(settings.VanitiesEnabled))
				_ = table.Append("Max bundle size", strconv.FormatInt(settings.MaxBundleSizeBytes, 10))
				_ = table.Append("Max bundle files", strconv.Itoa(settings.MaxBundleFiles))

				if err := table.Render(); err != nil {
					return fmt.Errorf("failed to render table: %w", err)
				}

				return nil
			}
		},
	}
}
