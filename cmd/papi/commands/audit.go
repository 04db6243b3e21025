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

// NewAuditCommand creates the audit command group.
func NewAuditCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Read the audit trail",
		Long:  "List audit log entries recorded by the server (requires administrator privileges)",
	}

	cmd.AddCommand(newAuditListCommand())

	return cmd
}

func newAuditListCommand() *cobra.Command {
	var (
		limit    int
		allPages bool
		maxPages int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List audit log entries",
		Long:  "List audit log entries, one page by default or the whole trail with --all",
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient, err := CreateClient(cmd.Flag("server").Value.String())
			if err != nil {
				return err
			}

			ctx := context.Background()
			params := papi.NewQueryParams().WithLimit(limit)

			var entries []papi.AuditEntry

			if allPages {
				entries, err = apiClient.AuditLogs().All(ctx, params, maxPages)
				if err != nil {
					return fmt.Errorf("failed to list audit logs: %w", err)
				}
			} else {
				page, err := apiClient.AuditLogs().List(ctx, params)
				if err != nil {
					return fmt.Errorf("failed to list audit logs: %w", err)
				}

				entries = page.Results
			}

			return outputAuditEntries(entries, allPages)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", constants.CLIPageSize, "entries per page")
	cmd.Flags().BoolVar(&allPages, "all", false, "walk the whole trail")
	cmd.Flags().IntVar(&maxPages, "max-pages", 0, "page cap when walking with --all (0 is unbounded)")

	return cmd
}

func outputAuditEntries(entries []papi.AuditEntry, allPages bool) error {
	output := viper.GetString("output")
	switch output {
	case OutputFormatJSON:
		return StandardJSONRenderer(entries)
	case OutputFormatYAML:
		return StandardYAMLRenderer(entries)
	default:
		if len(entries) == 0 {
			_, _ = os.Stdout.WriteString("No audit entries found\n")

			return nil
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.Header("Time", "User", "Action", "Description")

		for _, entry := range entries {
			user := entry.UserDescription
			if user == "" {
				user = entry.UserGUID
			}

			_ = table.Append(entry.Time, user, entry.Action,
				truncate(entry.EventDescription, constants.DescriptionDisplayLength))
		}

		if err := table.Render(); err != nil {
			return fmt.Errorf("failed to render table: %w", err)
		}

		if !allPages {
			_, _ = os.Stdout.WriteString("\nShowing the first page. Use --all to walk the whole trail.\n")
		}

		return nil
	}
}
