package cli

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/shaiso/Gatekeeper/internal/domain"
	"github.com/shaiso/Gatekeeper/internal/engine"
	"github.com/shaiso/Gatekeeper/internal/executor"
	"github.com/shaiso/Gatekeeper/internal/ledger"
	"github.com/shaiso/Gatekeeper/internal/orchestrator"
	"github.com/shaiso/Gatekeeper/internal/override"
	"github.com/shaiso/Gatekeeper/internal/registry"
	"github.com/shaiso/Gatekeeper/internal/report"
)

// NewGateRunCmd создаёт команду локального запуска gate.
//
// В отличие от remote-команд, gate выполняется прямо в текущем
// процессе: для CI достаточно бинарника, API не нужен.
func NewGateRunCmd(logger *slog.Logger, outputFn func() *Output) *cobra.Command {
	var (
		mode       string
		engineKind string
		skip       []string
		poolSize   int
		workDir    string
		overrides  string
		ledgerPath string
		reportPath string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute the gate locally",
		Long: `Execute all registered steps in the current process.

The process exit code reflects the verdict: 0 for PASS, non-zero for FAIL.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()

			m := domain.Mode(mode)
			if !m.IsValid() {
				return fmt.Errorf("invalid mode %q", mode)
			}

			kind := domain.EngineKind(engineKind)
			if kind != domain.EngineSequential && kind != domain.EngineWaves {
				return fmt.Errorf("invalid engine %q", engineKind)
			}

			reg := registry.New(registry.DefaultSteps())
			exec := executor.New(executor.Config{
				WorkDir: workDir,
				Logger:  logger,
			})

			var ov override.Checker = override.Nop{}
			if overrides != "" {
				fc, err := override.LoadFile(overrides)
				if err != nil {
					return fmt.Errorf("load overrides: %w", err)
				}
				ov = fc
			}

			var led ledger.Recorder = ledger.Nop{}
			if ledgerPath != "" {
				fr, err := ledger.OpenFile(ledgerPath)
				if err != nil {
					return fmt.Errorf("open ledger: %w", err)
				}
				defer fr.Close()
				led = fr
			}

			var rep *orchestrator.Report
			var err error

			switch kind {
			case domain.EngineWaves:
				eng := orchestrator.NewWave(orchestrator.WaveConfig{
					Registry: reg,
					Waves:    registry.DefaultWaves(),
					Executor: exec,
					PoolSize: poolSize,
					Logger:   logger,
				})
				rep, err = eng.Run(cmd.Context())

			default:
				skipSet := make(map[string]struct{}, len(skip))
				for _, id := range skip {
					skipSet[id] = struct{}{}
				}

				eng := orchestrator.NewSequential(orchestrator.SequentialConfig{
					Registry: reg,
					Executor: exec,
					Override: ov,
					Ledger:   led,
					Logger:   logger,
				})
				rep, err = eng.Run(cmd.Context(), orchestrator.RunOptions{
					Mode: m,
					Skip: skipSet,
				})
			}

			if err != nil {
				return err
			}

			printResults(out, rep)

			if reportPath != "" {
				doc := report.Build(kind, m, rep)
				if err := report.WriteFile(reportPath, doc); err != nil {
					return fmt.Errorf("write report: %w", err)
				}
				out.Success("Report written: " + reportPath)
			}

			if !rep.Verdict() {
				return fmt.Errorf("gate verdict: FAIL")
			}

			out.Success("Gate verdict: PASS")
			return nil
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "strict", "Execution mode (strict, degraded, kernel-only)")
	cmd.Flags().StringVar(&engineKind, "engine", "sequential", "Engine (sequential, waves)")
	cmd.Flags().StringSliceVar(&skip, "skip", nil, "Step IDs to skip (repeatable)")
	cmd.Flags().IntVar(&poolSize, "pool", 0, "Worker pool size for the waves engine")
	cmd.Flags().StringVar(&workDir, "workdir", "", "Working directory for step commands")
	cmd.Flags().StringVar(&overrides, "overrides", "", "Path to the override file")
	cmd.Flags().StringVar(&ledgerPath, "ledger", "", "Path to the degradation ledger (degraded mode)")
	cmd.Flags().StringVar(&reportPath, "report", "", "Write a JSON report to this path")

	return cmd
}

// NewPlanCmd создаёт команду просмотра плана без выполнения.
func NewPlanCmd(outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "plan",
		Short: "Show the execution plan without running anything",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()

			reg := registry.New(registry.DefaultSteps())
			plan := registry.BuildPlan(reg)

			headers := []string{"ID", "NAME", "TIER", "SEVERITY", "CATEGORY", "DEPENDS_ON"}
			rows := make([][]string, len(plan.Steps))
			for i, s := range plan.Steps {
				rows[i] = []string{
					s.ID, s.Name, string(s.Tier), string(s.Severity),
					string(s.Category), strings.Join(s.DependsOn, ","),
				}
			}

			out.Print(headers, rows, plan)
			return nil
		},
	}
}

// NewValidateCmd создаёт команду структурной валидации реестра.
func NewValidateCmd(outputFn func() *Output) *cobra.Command {
	var checkWaves bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the step registry structure",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()

			reg := registry.New(registry.DefaultSteps())

			diags := engine.ValidateRegistry(reg)
			if checkWaves {
				diags = append(diags, engine.ValidateWaves(reg, registry.DefaultWaves())...)
			}

			if len(diags) == 0 {
				out.Success(fmt.Sprintf("Registry OK: %d step(s)", reg.Len()))
				return nil
			}

			for _, d := range diags {
				out.Error(d.Error())
			}
			return fmt.Errorf("registry validation failed: %d issue(s)", len(diags))
		},
	}

	cmd.Flags().BoolVar(&checkWaves, "waves", false, "Also validate the wave assignment")

	return cmd
}

// printResults печатает таблицу результатов запуска.
func printResults(out *Output, rep *orchestrator.Report) {
	headers := []string{"STEP", "STATUS", "REASON", "EXIT", "DURATION"}
	rows := make([][]string, len(rep.Results))
	for i, r := range rep.Results {
		rows[i] = []string{
			r.StepID,
			string(r.Status),
			r.ReasonTag(),
			strconv.Itoa(r.ExitCode),
			r.Duration.Round(time.Millisecond).String(),
		}
	}
	out.Print(headers, rows, rep)
}
