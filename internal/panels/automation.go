package panels

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/jonathan/architect/internal/types"
)

// ErrNoWebhook is returned when an automation runs without an active Zapier connection.
var ErrNoWebhook = errors.New("zapier integration is not active")

// defaultFlows are added the first time the automation center is opened.
func defaultFlows() []types.AutomationFlow {
	return []types.AutomationFlow{
		{ID: uuid.NewString(), Name: "Low Stock Trigger", Trigger: "inventory_below_threshold", Action: "notify_supplier", IsActive: true},
		{ID: uuid.NewString(), Name: "VIP Tagging", Trigger: "order_total_above_500", Action: "tag_customer_vip", IsActive: false},
	}
}

// Automations returns the project's flows, adding the defaults when none exist.
func (s *Service) Automations(ctx context.Context, id string) ([]types.AutomationFlow, error) {
	p, err := s.projects.Get(id)
	if err != nil {
		return nil, err
	}
	if len(p.Automations) > 0 {
		return p.Automations, nil
	}
	p, err = s.projects.Modify(ctx, id, func(p *types.Project) error {
		if len(p.Automations) == 0 {
			p.Automations = append(p.Automations, defaultFlows()...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p.Automations, nil
}

// ToggleAutomation flips a flow's active flag.
func (s *Service) ToggleAutomation(ctx context.Context, id, flowID string) (*types.AutomationFlow, error) {
	var out types.AutomationFlow
	_, err := s.projects.Modify(ctx, id, func(p *types.Project) error {
		for i := range p.Automations {
			if p.Automations[i].ID == flowID {
				p.Automations[i].IsActive = !p.Automations[i].IsActive
				out = p.Automations[i]
				return nil
			}
		}
		return &InputError{Field: "flow", Reason: "not found"}
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// RunAutomation sends an active flow's event to the project's Zapier webhook.
func (s *Service) RunAutomation(ctx context.Context, id, flowID string, data map[string]any) error {
	p, err := s.projects.Get(id)
	if err != nil {
		return err
	}
	var flow *types.AutomationFlow
	for i := range p.Automations {
		if p.Automations[i].ID == flowID {
			flow = &p.Automations[i]
			break
		}
	}
	if flow == nil {
		return &InputError{Field: "flow", Reason: "not found"}
	}
	if !flow.IsActive {
		return &InputError{Field: "flow", Reason: "flow is paused"}
	}
	if p.Integrations == nil || !p.Integrations.Zapier.IsActive {
		return ErrNoWebhook
	}

	payload := map[string]any{"flow": flow.Name, "trigger": flow.Trigger, "action": flow.Action}
	for k, v := range data {
		payload[k] = v
	}
	if err := s.integrations.TriggerWebhook(ctx, p.Integrations.Zapier.Endpoint, flow.Trigger, payload); err != nil {
		s.notes.Error("Automation failed: " + err.Error())
		return err
	}
	s.notes.Success(flow.Name + " triggered")
	return nil
}
