package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/architect/internal/observability"
)

var projectsCmd = &cobra.Command{
	Use:     "projects",
	Aliases: []string{"ls"},
	Short:   "List projects",
	Args:    cobra.NoArgs,
	RunE:    runListProjects,
}

var showCmd = &cobra.Command{
	Use:   "show <project>",
	Short: "Show a project's roadmap",
	Long:  "Show a project's roadmap. The project may be given by id or by an approximate name.",
	Args:  cobra.ExactArgs(1),
	RunE:  runShowProject,
}

var toggleCmd = &cobra.Command{
	Use:   "toggle <project> <step>",
	Short: "Mark a step done, or not done",
	Long:  "Flip a step's completion. The step may be given by its position in the roadmap or by id.",
	Args:  cobra.ExactArgs(2),
	RunE:  runToggleStep,
}

var deleteCmd = &cobra.Command{
	Use:   "delete <project>",
	Short: "Delete a project",
	Args:  cobra.ExactArgs(1),
	RunE:  runDeleteProject,
}

func init() {
	projectsCmd.AddCommand(showCmd, toggleCmd, deleteCmd)
	rootCmd.AddCommand(projectsCmd)
}

func runListProjects(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	observability.NewPrinter(os.Stdout).PrintProjects(a.store.Projects(), a.store.ActiveID())
	return nil
}

func runShowProject(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	p, err := resolveProject(a.store.Projects(), args[0], a.cfg.MatchThreshold)
	if err != nil {
		return err
	}
	observability.NewPrinter(os.Stdout).PrintProject(p)
	return nil
}

func runToggleStep(cmd *cobra.Command, args []string) error {
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
	updated, err := a.store.ToggleStep(ctx, p.ID, step.ID)
	if err != nil {
		return err
	}
	observability.NewPrinter(os.Stdout).PrintProject(updated)
	return nil
}

func runDeleteProject(cmd *cobra.Command, args []string) error {
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
	if _, err := a.store.Delete(ctx, p.ID); err != nil {
		return err
	}
	fmt.Printf("Deleted %s\n", p.Name)
	return nil
}
