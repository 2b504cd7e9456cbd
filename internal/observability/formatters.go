// Package observability provides formatted output utilities for the CLI.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/architect/internal/storefront"
	"github.com/jonathan/architect/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in short lists
	maxItemsToShow = 5
)

// Printer handles formatted terminal output
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(title, boxWidth-4))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to at most n runes, ending in "..." when cut.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// progressBar renders pct (0..100) as a fixed-width bar.
func progressBar(pct int) string {
	const width = 20
	pct = max(0, min(pct, 100))
	filled := pct * width / 100
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + "]"
}

// PrintProjects outputs the project list, marking the active project.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintProjects(projects []types.Project, activeID string) {
	if len(projects) == 0 {
		fmt.Fprintln(p.out, "No projects yet. Run `architect plan \"<your goal>\"` to create one.")
		return
	}

	var sb strings.Builder
	for i, proj := range projects {
		marker := " "
		if proj.ID == activeID {
			marker = "*"
		}
		sb.WriteString(fmt.Sprintf("%s %s\n", marker, proj.Name))
		sb.WriteString(fmt.Sprintf("  %s %3d%%  %s\n", progressBar(proj.Progress), proj.Progress, proj.VentureType))
		sb.WriteString(fmt.Sprintf("  id: %s", proj.ID))
		if i < len(projects)-1 {
			sb.WriteString("\n\n")
		}
	}

	p.printBox(fmt.Sprintf("PROJECTS (%d)", len(projects)), sb.String())
}

// PrintProject outputs a project's summary and its roadmap.
func (p *Printer) PrintProject(proj *types.Project) {
	if proj == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Venture:  %s\n", proj.VentureType))
	sb.WriteString(fmt.Sprintf("Progress: %s %d%%\n", progressBar(proj.Progress), proj.Progress))
	if proj.FeasibilityScore != nil {
		sb.WriteString(fmt.Sprintf("Feasibility: %.0f/100\n", *proj.FeasibilityScore))
	}
	if proj.Description != "" {
		sb.WriteString("\n")
		sb.WriteString(proj.Description)
		sb.WriteString("\n")
	}
	p.printBox(strings.ToUpper(proj.Name), strings.TrimSuffix(sb.String(), "\n"))
	p.PrintSteps(proj.Steps)
}

// PrintSteps outputs roadmap steps with their completion state.
func (p *Printer) PrintSteps(steps []types.Step) {
	if len(steps) == 0 {
		return
	}

	var sb strings.Builder
	for i, s := range steps {
		check := "[ ]"
		if s.IsCompleted {
			check = "[x]"
		}
		sb.WriteString(fmt.Sprintf("%s %d. %s\n", check, i+1, s.Title))
		meta := string(s.Category)
		if s.EstimatedTime != "" {
			meta += " · " + s.EstimatedTime
		}
		sb.WriteString(fmt.Sprintf("    %s\n", meta))
		sb.WriteString(fmt.Sprintf("    id: %s", s.ID))
		if i < len(steps)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("ROADMAP", sb.String())
}

// PrintAdvice outputs the detailed guidance for a step.
func (p *Printer) PrintAdvice(title string, advice *types.StepAdvice) {
	if advice == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString("How:\n")
	for _, line := range wrap(advice.DetailedInstructions, boxWidth-6) {
		sb.WriteString("  " + line + "\n")
	}
	sb.WriteString("\nWhy it matters:\n")
	for _, line := range wrap(advice.WhyItMatters, boxWidth-6) {
		sb.WriteString("  " + line + "\n")
	}

	if len(advice.CommonPitfalls) > 0 {
		sb.WriteString("\nCommon pitfalls:\n")
		count := min(len(advice.CommonPitfalls), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", advice.CommonPitfalls[i]))
		}
		if len(advice.CommonPitfalls) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(advice.CommonPitfalls)-maxItemsToShow))
		}
	}

	if advice.SuggestedAdminPath != "" {
		sb.WriteString(fmt.Sprintf("\nShopify admin: %s\n", advice.SuggestedAdminPath))
	}
	if t := advice.SuggestedExternalTool; t != nil {
		sb.WriteString(fmt.Sprintf("\nTool: %s (%s)\n", t.Name, t.URL))
	}

	p.printBox("ADVICE: "+strings.ToUpper(title), strings.TrimSuffix(sb.String(), "\n"))
}

// PrintPricing outputs a price recommendation.
func (p *Printer) PrintPricing(product string, rec *types.PricingRecommendation) {
	if rec == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Suggested price: $%.2f\n", rec.SuggestedPrice))
	sb.WriteString(fmt.Sprintf("Margin:          %.0f%%\n", rec.Margin))
	sb.WriteString(fmt.Sprintf("Competitor avg:  $%.2f\n", rec.CompetitorAvg))
	if len(rec.TieredPricing) > 0 {
		sb.WriteString("\nTiers:\n")
		for _, t := range rec.TieredPricing {
			sb.WriteString(fmt.Sprintf("  %4d+  $%.2f\n", t.Quantity, t.Price))
		}
	}
	if rec.Reasoning != "" {
		sb.WriteString("\n")
		for _, line := range wrap(rec.Reasoning, boxWidth-4) {
			sb.WriteString(line + "\n")
		}
	}

	p.printBox("PRICING: "+strings.ToUpper(product), strings.TrimSuffix(sb.String(), "\n"))
}

// PrintLogistics outputs a carrier recommendation.
func (p *Printer) PrintLogistics(destination string, advice *types.LogisticsAdvice) {
	if advice == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Carrier: %s\n", advice.OptimalCarrier))
	sb.WriteString(fmt.Sprintf("Cost:    $%.2f\n", advice.EstimatedCost))
	sb.WriteString(fmt.Sprintf("Days:    %s\n", advice.EstimatedDays))
	if advice.CustomsRequirements != "" {
		sb.WriteString(fmt.Sprintf("Customs: %s\n", advice.CustomsRequirements))
	}
	for _, pro := range advice.Pros {
		sb.WriteString(fmt.Sprintf("  + %s\n", pro))
	}
	for _, con := range advice.Cons {
		sb.WriteString(fmt.Sprintf("  - %s\n", con))
	}

	p.printBox("SHIPPING TO "+strings.ToUpper(destination), strings.TrimSuffix(sb.String(), "\n"))
}

// PrintGroundedInfo outputs a research answer followed by its sources.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintGroundedInfo(info *types.GroundedInfo) {
	if info == nil {
		return
	}

	fmt.Fprintln(p.out, info.Text)
	if len(info.Sources) == 0 {
		return
	}

	var sb strings.Builder
	for i, src := range info.Sources {
		title := src.Title
		if title == "" {
			title = src.URI
		}
		sb.WriteString(fmt.Sprintf("%d. [%s] %s\n", i+1, src.Kind, title))
		if src.URI != "" && src.URI != title {
			sb.WriteString(fmt.Sprintf("   %s\n", src.URI))
		}
	}

	p.printBox("SOURCES", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintPrefs outputs the stored preferences.
func (p *Printer) PrintPrefs(prefs types.UserPrefs) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Language:   %s\n", prefs.Language))
	sb.WriteString(fmt.Sprintf("E-ink mode: %t\n", prefs.IsEInkMode))
	sb.WriteString(fmt.Sprintf("Onboarded:  %t", prefs.OnboardingCompleted))
	p.printBox("PREFERENCES", sb.String())
}

// PrintStorefront outputs a storefront audit with one line per check.
func (p *Printer) PrintStorefront(r *storefront.Report) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s %3d%%\n", progressBar(r.Score), r.Score))
	if r.Title != "" {
		sb.WriteString(fmt.Sprintf("Title: %s\n", r.Title))
	}
	sb.WriteString(fmt.Sprintf("Products: %d  Collections: %d", r.ProductLinks, r.CollectionLinks))
	if r.Rendered {
		sb.WriteString("  (rendered)")
	}
	sb.WriteString("\n\n")
	for _, c := range r.Checks {
		mark := "[ ]"
		if c.Passed {
			mark = "[x]"
		}
		sb.WriteString(fmt.Sprintf("%s %s\n", mark, c.Name))
		if !c.Passed && c.Detail != "" {
			sb.WriteString("    " + c.Detail + "\n")
		}
	}
	p.printBox("STOREFRONT: "+r.URL, strings.TrimSuffix(sb.String(), "\n"))
}

// wrap breaks text into lines of at most width runes on word boundaries.
func wrap(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	var (
		lines []string
		line  string
	)
	for _, w := range words {
		switch {
		case line == "":
			line = w
		case len([]rune(line))+1+len([]rune(w)) <= width:
			line += " " + w
		default:
			lines = append(lines, line)
			line = w
		}
	}
	return append(lines, line)
}
