// Gatekeeper CLI — инструмент командной строки для выполнения gate
// и управления запусками через HTTP API.
//
// Использование:
//
//	gatekeeper [--api-url URL] [--json] <command> [flags]
//
// Команды:
//
//	run       Локальное выполнение gate (код выхода по вердикту)
//	plan      План реестра без выполнения
//	validate  Структурная валидация реестра
//	runs      Управление запусками через API
//	steps     Просмотр реестра через API
//	schedule  Управление schedules
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shaiso/Gatekeeper/internal/cli"
	"github.com/shaiso/Gatekeeper/internal/telemetry"
)

// version задаётся через ldflags при сборке.
var version = "dev"

func main() {
	var apiURL string
	var jsonOutput bool

	logger := telemetry.SetupLogger("gatekeeper")

	rootCmd := &cobra.Command{
		Use:           "gatekeeper",
		Short:         "Gatekeeper CLI — governance check gate",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "http://localhost:8080", "API server URL")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	clientFn := func() *cli.Client { return cli.NewClient(apiURL) }
	outputFn := func() *cli.Output { return cli.NewOutput(jsonOutput) }

	rootCmd.AddCommand(
		cli.NewGateRunCmd(logger, outputFn),
		cli.NewPlanCmd(outputFn),
		cli.NewValidateCmd(outputFn),
		cli.NewRunsCmd(clientFn, outputFn),
		cli.NewStepsCmd(clientFn, outputFn),
		cli.NewScheduleCmd(clientFn, outputFn),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
