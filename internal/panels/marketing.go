package panels

import (
	"context"
	"fmt"

	"github.com/jonathan/architect/internal/types"
)

// Marketing channels and flows that can be toggled.
const (
	ChannelKlaviyo    = "klaviyo"
	ChannelMailchimp  = "mailchimp"
	ChannelSMS        = "sms"
	ChannelUGC        = "ugc"
	FlowAbandonedCart = "abandonedCart"
	FlowPostPurchase  = "postPurchase"
	FlowWinBack       = "winBack"
)

func marketing(p *types.Project) *types.MarketingConfig {
	if p.Marketing == nil {
		p.Marketing = types.DefaultMarketingConfig()
	}
	return p.Marketing
}

// Marketing returns the marketing configuration, or the default when unset.
func (s *Service) Marketing(id string) (*types.MarketingConfig, error) {
	p, err := s.projects.Get(id)
	if err != nil {
		return nil, err
	}
	return marketing(p), nil
}

// ToggleMarketing flips a channel or lifecycle flow.
func (s *Service) ToggleMarketing(ctx context.Context, id, name string) (*types.MarketingConfig, error) {
	p, err := s.projects.Modify(ctx, id, func(p *types.Project) error {
		m := marketing(p)
		switch name {
		case ChannelKlaviyo:
			m.KlaviyoActive = !m.KlaviyoActive
		case ChannelMailchimp:
			m.MailchimpActive = !m.MailchimpActive
		case ChannelSMS:
			m.SMSMarketing = !m.SMSMarketing
		case ChannelUGC:
			m.UGCEnabled = !m.UGCEnabled
		case FlowAbandonedCart:
			m.AutomationFlows.AbandonedCart = !m.AutomationFlows.AbandonedCart
		case FlowPostPurchase:
			m.AutomationFlows.PostPurchase = !m.AutomationFlows.PostPurchase
		case FlowWinBack:
			m.AutomationFlows.WinBack = !m.AutomationFlows.WinBack
		default:
			return &InputError{Field: "marketing", Reason: fmt.Sprintf("unknown channel or flow %q", name)}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p.Marketing, nil
}
