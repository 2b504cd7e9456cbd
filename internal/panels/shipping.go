package panels

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/architect/internal/types"
)

// defaultParcelOz is the parcel weight used when estimating carrier cost for a zone.
const defaultParcelOz = 16

// AddZone creates a shipping zone from a comma separated country list with one flat rate.
func (s *Service) AddZone(ctx context.Context, id, name, countries string, flatRate float64) (*types.ShippingZone, error) {
	name = strings.TrimSpace(name)
	list := splitCountries(countries)
	if name == "" {
		return nil, &InputError{Field: "name", Reason: "must not be empty"}
	}
	if len(list) == 0 {
		return nil, &InputError{Field: "countries", Reason: "must not be empty"}
	}
	if flatRate < 0 {
		return nil, &InputError{Field: "rate", Reason: "must not be negative"}
	}

	zone := types.ShippingZone{
		ID:        uuid.NewString(),
		Name:      name,
		Countries: list,
		Rates: []types.ShippingRate{{
			ID:    uuid.NewString(),
			Name:  "Standard",
			Price: flatRate,
			Type:  types.RateFlat,
		}},
	}
	_, err := s.projects.Modify(ctx, id, func(p *types.Project) error {
		p.ShippingZones = append(p.ShippingZones, zone)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &zone, nil
}

// RemoveZone deletes a zone.
func (s *Service) RemoveZone(ctx context.Context, id, zoneID string) error {
	_, err := s.projects.Modify(ctx, id, func(p *types.Project) error {
		for i := range p.ShippingZones {
			if p.ShippingZones[i].ID == zoneID {
				p.ShippingZones = append(p.ShippingZones[:i], p.ShippingZones[i+1:]...)
				return nil
			}
		}
		return &InputError{Field: "zone", Reason: "not found"}
	})
	return err
}

// AddRate adds a rate to a zone.
func (s *Service) AddRate(ctx context.Context, id, zoneID, name string, price float64, rateType types.RateType) (*types.ShippingRate, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &InputError{Field: "rate name", Reason: "must not be empty"}
	}
	if price < 0 {
		return nil, &InputError{Field: "price", Reason: "must not be negative"}
	}
	if rateType == "" {
		rateType = types.RateFlat
	}

	rate := types.ShippingRate{ID: uuid.NewString(), Name: name, Price: price, Type: rateType}
	_, err := s.projects.Modify(ctx, id, func(p *types.Project) error {
		z := findZone(p, zoneID)
		if z == nil {
			return &InputError{Field: "zone", Reason: "not found"}
		}
		z.Rates = append(z.Rates, rate)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &rate, nil
}

// RemoveRate deletes a rate from a zone.
func (s *Service) RemoveRate(ctx context.Context, id, zoneID, rateID string) error {
	_, err := s.projects.Modify(ctx, id, func(p *types.Project) error {
		z := findZone(p, zoneID)
		if z == nil {
			return &InputError{Field: "zone", Reason: "not found"}
		}
		for i := range z.Rates {
			if z.Rates[i].ID == rateID {
				z.Rates = append(z.Rates[:i], z.Rates[i+1:]...)
				return nil
			}
		}
		return &InputError{Field: "rate", Reason: "not found"}
	})
	return err
}

// ZoneReport combines maps-grounded coverage research with a carrier recommendation.
type ZoneReport struct {
	Zone        types.ShippingZone     `json:"zone"`
	Feasibility *types.GroundedInfo    `json:"feasibility"`
	Carrier     *types.LogisticsAdvice `json:"carrier"`
}

// VerifyZone runs coverage research and carrier advice for a zone concurrently.
// Either failure fails the whole check.
func (s *Service) VerifyZone(ctx context.Context, id, zoneID string) (*ZoneReport, error) {
	p, err := s.projects.Get(id)
	if err != nil {
		return nil, err
	}
	z := findZone(p, zoneID)
	if z == nil {
		return nil, &InputError{Field: "zone", Reason: "not found"}
	}

	report := &ZoneReport{Zone: *z}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		info, err := s.ai.ZoneFeasibility(gctx, *z)
		if err != nil {
			return err
		}
		report.Feasibility = info
		return nil
	})
	g.Go(func() error {
		advice, err := s.ai.GetLogisticsAdvice(gctx, strings.Join(z.Countries, ", "), defaultParcelOz, true)
		if err != nil {
			return err
		}
		report.Carrier = advice
		return nil
	})
	if err := g.Wait(); err != nil {
		s.notes.Error(fmt.Sprintf("Could not verify zone %s", z.Name))
		return nil, err
	}
	s.notes.Success(fmt.Sprintf("Zone %s verified", z.Name))
	return report, nil
}

func findZone(p *types.Project, zoneID string) *types.ShippingZone {
	for i := range p.ShippingZones {
		if p.ShippingZones[i].ID == zoneID {
			return &p.ShippingZones[i]
		}
	}
	return nil
}

func splitCountries(s string) []string {
	var out []string
	for _, c := range strings.Split(s, ",") {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}
