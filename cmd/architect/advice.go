package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/architect/internal/observability"
)

var adviceCmd = &cobra.Command{
	Use:   "advice <project> <step>",
	Short: "Get detailed guidance for a roadmap step",
	Args:  cobra.ExactArgs(2),
	RunE:  runAdvice,
}

func init() {
	rootCmd.AddCommand(adviceCmd)
}

func runAdvice(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	p, err := resolveProject(a.store.Projects(), args[0], a.cfg.MatchThreshold)
	if err != nil {
		return err
	}
	step, err := resolveStep(p, args[1])
	if err != nil {
		return err
	}
	advice, err := a.panels.StepAdvice(ctx, p.ID, step.ID)
	if err != nil {
		return err
	}
	observability.NewPrinter(os.Stdout).PrintAdvice(step.Title, advice)
	return nil
}
