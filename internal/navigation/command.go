// Package navigation maps symbolic navigation actions onto view-state transitions.
package navigation

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FunctionName is the chat function through which the model requests navigation.
const FunctionName = "navigateApp"

// FunctionDescription describes FunctionName to the model.
const FunctionDescription = "Navigate within the Architect dashboard or filter project steps."

// Action is a navigation verb.
type Action string

// The closed action vocabulary.
const (
	SwitchProject     Action = "switch_project"
	FilterSteps       Action = "filter_steps"
	OpenSidebar       Action = "open_sidebar"
	CloseSidebar      Action = "close_sidebar"
	CreateNew         Action = "create_new"
	ShowDashboard     Action = "show_dashboard"
	ToggleKindleMode  Action = "toggle_kindle_mode"
	AWSSync           Action = "aws_sync"
	ShowAnalytics     Action = "show_analytics"
	ShowMobilePreview Action = "show_mobile_preview"
	ShowShipping      Action = "show_shipping_studio"
	ShowIntegrations  Action = "show_integrations"
	ShowPricing       Action = "show_pricing"
	ShowWholesale     Action = "show_wholesale"
	ShowPayments      Action = "show_payments"
	ShowMarketing     Action = "show_marketing"
	ShowAutomations   Action = "show_automations"
	ShowBundles       Action = "show_bundles"
	ShowInsights      Action = "show_insights"
)

// View is a named dashboard screen.
type View string

// Views.
const (
	ViewRoadmap       View = "roadmap"
	ViewAnalytics     View = "analytics"
	ViewMobilePreview View = "mobile_preview"
	ViewShipping      View = "shipping"
	ViewIntegrations  View = "integrations"
	ViewPricing       View = "pricing"
	ViewWholesale     View = "wholesale"
	ViewPayments      View = "payments"
	ViewMarketing     View = "marketing"
	ViewAutomations   View = "automations"
	ViewBundles       View = "bundles"
	ViewInsights      View = "insights"
)

var showViews = map[Action]View{
	ShowDashboard:     ViewRoadmap,
	ShowAnalytics:     ViewAnalytics,
	ShowMobilePreview: ViewMobilePreview,
	ShowShipping:      ViewShipping,
	ShowIntegrations:  ViewIntegrations,
	ShowPricing:       ViewPricing,
	ShowWholesale:     ViewWholesale,
	ShowPayments:      ViewPayments,
	ShowMarketing:     ViewMarketing,
	ShowAutomations:   ViewAutomations,
	ShowBundles:       ViewBundles,
	ShowInsights:      ViewInsights,
}

// Actions returns the full vocabulary in a stable order.
func Actions() []Action {
	return []Action{
		SwitchProject, FilterSteps, OpenSidebar, CloseSidebar, CreateNew, ShowDashboard,
		ToggleKindleMode, AWSSync, ShowAnalytics, ShowMobilePreview, ShowShipping,
		ShowIntegrations, ShowPricing, ShowWholesale, ShowPayments, ShowMarketing,
		ShowAutomations, ShowBundles, ShowInsights,
	}
}

// Views returns every view.
func Views() []View {
	return []View{
		ViewRoadmap, ViewAnalytics, ViewMobilePreview, ViewShipping, ViewIntegrations, ViewPricing,
		ViewWholesale, ViewPayments, ViewMarketing, ViewAutomations, ViewBundles, ViewInsights,
	}
}

// Known reports whether a is part of the vocabulary.
func (a Action) Known() bool {
	for _, k := range Actions() {
		if a == k {
			return true
		}
	}
	return false
}

// ParseView validates a view name.
func ParseView(s string) (View, bool) {
	for _, v := range Views() {
		if string(v) == s {
			return v, true
		}
	}
	return "", false
}

// Command is a navigation request from the user or from the chat model.
type Command struct {
	Action Action `json:"action"`
	Target string `json:"target,omitempty"`
}

func (c Command) String() string {
	if c.Target == "" {
		return string(c.Action)
	}
	return fmt.Sprintf("%s(%q)", c.Action, c.Target)
}

// ParseCommand builds a Command from function-call arguments.
// An unknown action string still parses; dispatch ignores it.
func ParseCommand(args map[string]any) (Command, error) {
	raw, ok := args["action"]
	if !ok {
		return Command{}, fmt.Errorf("missing required argument \"action\"")
	}
	action, ok := raw.(string)
	if !ok || strings.TrimSpace(action) == "" {
		return Command{}, fmt.Errorf("argument \"action\" must be a non-empty string")
	}

	cmd := Command{Action: Action(strings.TrimSpace(action))}
	if t, ok := args["target"]; ok && t != nil {
		target, ok := t.(string)
		if !ok {
			return Command{}, fmt.Errorf("argument \"target\" must be a string")
		}
		cmd.Target = strings.TrimSpace(target)
	}
	return cmd, nil
}

// FunctionParameters returns the JSON Schema for FunctionName's arguments.
func FunctionParameters() []byte {
	actions := Actions()
	enum := make([]string, len(actions))
	for i, a := range actions {
		enum[i] = string(a)
	}
	doc := map[string]any{
		"type":        "object",
		"description": FunctionDescription,
		"properties": map[string]any{
			"action": map[string]any{
				"type":        "string",
				"description": "The navigation action to perform.",
				"enum":        enum,
			},
			"target": map[string]any{
				"type":        "string",
				"description": "The target project name, category name, or specific step title.",
			},
		},
		"required": []string{"action"},
	}
	data, _ := json.Marshal(doc)
	return data
}
