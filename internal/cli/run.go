package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// NewRunsCmd создаёт группу команд для работы с запусками через API.
func NewRunsCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Manage runs via the API",
	}

	cmd.AddCommand(
		newRunsListCmd(clientFn, outputFn),
		newRunsStartCmd(clientFn, outputFn),
		newRunsShowCmd(clientFn, outputFn),
		newRunsResultsCmd(clientFn, outputFn),
	)

	return cmd
}

func newRunsListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var status string
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			runs, err := client.ListRuns(ListRunsOpts{
				Status: status,
				Limit:  limit,
			})
			if err != nil {
				return err
			}

			headers := []string{"ID", "MODE", "ENGINE", "STATUS", "CREATED"}
			rows := make([][]string, len(runs))
			for i, r := range runs {
				rows[i] = []string{r.ID, r.Mode, r.Engine, r.Status, r.CreatedAt}
			}

			out.Print(headers, rows, runs)
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Filter by status (PENDING, RUNNING, PASSED, FAILED, ERROR)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of results")

	return cmd
}

func newRunsStartCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var mode string
	var engine string
	var skip []string
	var idempotencyKey string

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Request a new run",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			run, err := client.CreateRun(CreateRunRequest{
				Mode:           mode,
				Engine:         engine,
				Skip:           skip,
				IdempotencyKey: idempotencyKey,
			})
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Run requested: %s", run.ID))
			out.Print(
				[]string{"ID", "MODE", "ENGINE", "STATUS", "CREATED"},
				[][]string{{run.ID, run.Mode, run.Engine, run.Status, run.CreatedAt}},
				run,
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "", "Execution mode (strict, degraded, kernel-only)")
	cmd.Flags().StringVar(&engine, "engine", "", "Engine (sequential, waves)")
	cmd.Flags().StringSliceVar(&skip, "skip", nil, "Step IDs to skip (repeatable)")
	cmd.Flags().StringVar(&idempotencyKey, "idempotency-key", "", "Idempotency key")

	return cmd
}

func newRunsShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show run details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			run, err := client.GetRun(args[0])
			if err != nil {
				return err
			}

			out.Print(
				[]string{"ID", "MODE", "ENGINE", "STATUS", "ERROR", "CREATED"},
				[][]string{{run.ID, run.Mode, run.Engine, run.Status, run.Error, run.CreatedAt}},
				run,
			)
			return nil
		},
	}
}

func newRunsResultsCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "results RUN_ID",
		Short: "List step results of a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			results, err := client.ListResults(args[0])
			if err != nil {
				return err
			}

			headers := []string{"STEP", "STATUS", "REASON", "EXIT", "DURATION_MS"}
			rows := make([][]string, len(results))
			for i, r := range results {
				rows[i] = []string{
					r.StepID, r.Status, r.Reason,
					strconv.Itoa(r.ExitCode), strconv.FormatInt(r.DurationMS, 10),
				}
			}

			out.Print(headers, rows, results)
			return nil
		},
	}
}
