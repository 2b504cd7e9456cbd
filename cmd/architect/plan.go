package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/architect/internal/observability"
)

var planCmd = &cobra.Command{
	Use:   "plan <goal>",
	Short: "Generate a roadmap for a business goal",
	Long:  "Generate a new project with a step-by-step Shopify roadmap from a plain-language business goal.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runPlan,
}

func init() {
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	goal := strings.Join(args, " ")
	fmt.Fprintf(os.Stderr, "Planning %q...\n", goal)

	p, err := a.store.Generate(ctx, goal)
	if err != nil {
		return fmt.Errorf("failed to generate plan: %w", err)
	}
	observability.NewPrinter(os.Stdout).PrintProject(p)
	return nil
}
