package commands

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/pressroom-io/papi/internal/constants"
	"github.com/pressroom-io/papi/pkg/papi"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewTasksCommand creates the tasks command group.
func NewTasksCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tasks",
		Aliases: []string{"task"},
		Short:   "Inspect server-side tasks",
		Long:    "Show and follow long-running server-side tasks such as deploys",
	}

	cmd.AddCommand(newTasksShowCommand())
	cmd.AddCommand(newTasksWaitCommand())

	return cmd
}

func newTasksShowCommand() *cobra.Command {
	var (
		first int
		wait  int
	)

	cmd := &cobra.Command{
		Use:   "show TASK_ID",
		Short: "Show a task snapshot",
		Long:  "Fetch one snapshot of a task, optionally long-polling the server for new output",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient, err := CreateClient(cmd.Flag("server").Value.String())
			if err != nil {
				return err
			}

			task, err := apiClient.Tasks().Get(context.Background(), args[0], first, wait)
			if err != nil {
				return fmt.Errorf("failed to get task: %w", err)
			}

			return outputTask(task)
		},
	}

	cmd.Flags().IntVar(&first, "first", 0, "output offset already seen")
	cmd.Flags().IntVar(&wait, "wait", 0, "seconds the server should long-poll for new output")

	return cmd
}

func outputTask(task *papi.Task) error {
	output := viper.GetString("output")
	switch output {
	case OutputFormatJSON:
		return StandardJSONRenderer(task.Attrs())
	case OutputFormatYAML:
		return StandardYAMLRenderer(task.Attrs())
	default:
		table := tablewriter.NewWriter(os.Stdout)
		table.Header("Property", "Value")

		_ = table.Append("ID", task.ID())
		_ = table.Append("Finished", yesNo(task.Finished()))
		_ = table.Append("Code", fmt.Sprintf("%d", task.Code()))

		if msg := task.ErrorMessage(); msg != "" {
			_ = table.Append("Error", msg)
		}

		if err := table.Render(); err != nil {
			return fmt.Errorf("failed to render table: %w", err)
		}

		if lines := task.Output(); len(lines) > 0 {
			_, _ = os.Stdout.WriteString("\nOutput:\n" + strings.Join(lines, "\n") + "\n")
		}

		return nil
	}
}

func newTasksWaitCommand() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "wait TASK_ID",
		Short: "Wait for a task to finish",
		Long:  "Poll a task until the server reports it finished, printing its output",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient, err := CreateClient(cmd.Flag("server").Value.String())
			if err != nil {
				return err
			}

			ctx := context.Background()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			task, err := followTask(ctx, apiClient, args[0])
			if err != nil {
				return err
			}

			if task.Code() != 0 {
				return fmt.Errorf("%w: %s", constants.ErrTaskFailed, task.ErrorMessage())
			}

			_, _ = fmt.Fprintf(os.Stdout, "Task %s finished\n", task.ID())

			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 0, "give up after this long (0 waits forever)")

	return cmd
}

// followTask waits for the task and prints its accumulated output.
func followTask(ctx context.Context, apiClient papi.Client, taskID string) (*papi.Task, error) {
	task, err := apiClient.Tasks().WaitFor(ctx, taskID, papi.DefaultPollOptions())
	if err != nil {
		return nil, fmt.Errorf("failed while waiting for task: %w", err)
	}

	for _, line := range task.Output() {
		_, _ = fmt.Fprintln(os.Stdout, line)
	}

	return task, nil
}
