package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/architect/internal/observability"
)

var (
	prefsLanguage string
	prefsEInk     bool
)

var prefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "Show or change preferences",
	Long:  "Show the stored preferences. Pass --language or --eink to change them.",
	Args:  cobra.NoArgs,
	RunE:  runPrefs,
}

func init() {
	prefsCmd.Flags().StringVar(&prefsLanguage, "language", "", "Language for generated plans and the assistant")
	prefsCmd.Flags().BoolVar(&prefsEInk, "eink", false, "High-contrast e-ink display mode")
	rootCmd.AddCommand(prefsCmd)
}

func runPrefs(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	prefs := a.store.Prefs()
	changed := false
	if cmd.Flags().Changed("language") {
		prefs.Language = prefsLanguage
		changed = true
	}
	if cmd.Flags().Changed("eink") {
		prefs.IsEInkMode = prefsEInk
		changed = true
	}
	if changed {
		if err := a.store.SavePrefs(ctx, prefs); err != nil {
			return err
		}
		prefs = a.store.Prefs()
	}
	observability.NewPrinter(os.Stdout).PrintPrefs(prefs)
	return nil
}
