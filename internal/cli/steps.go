package cli

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// NewStepsCmd создаёт группу команд для просмотра реестра через API.
func NewStepsCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "steps",
		Short: "Inspect the step registry via the API",
	}

	cmd.AddCommand(
		newStepsListCmd(clientFn, outputFn),
		newStepsPlanCmd(clientFn, outputFn),
	)

	return cmd
}

func newStepsListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered steps",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			steps, err := client.ListSteps()
			if err != nil {
				return err
			}

			headers := []string{"ID", "NAME", "TIER", "SEVERITY", "TIMEOUT", "DEPENDS_ON"}
			rows := make([][]string, len(steps))
			for i, s := range steps {
				rows[i] = []string{
					s.ID, s.Name, s.Tier, s.Severity,
					strconv.Itoa(s.TimeoutSec) + "s",
					strings.Join(s.DependsOn, ","),
				}
			}

			out.Print(headers, rows, steps)
			return nil
		},
	}
}

func newStepsPlanCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "plan",
		Short: "Show the server-side execution plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			plan, err := client.GetPlan()
			if err != nil {
				return err
			}

			out.JSON(plan)
			return nil
		},
	}
}
