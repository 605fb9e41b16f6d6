package engine

import (
	"fmt"
	"math"
	"strings"

	"github.com/kirillkom/internship-allocator/internal/core/domain"
)

// DefaultPolicyConfig returns the policy constants the service ships with.
func DefaultPolicyConfig() domain.PolicyConfig {
	return domain.PolicyConfig{
		Threshold: 0.75,
		CategoryBonuses: []domain.CategoryBonus{
			{Name: "scheduled", Categories: []string{"SC", "ST"}, Bonus: 0.15},
			{Name: "backward", Categories: []string{"OBC", "BC", "SBC", "EWS"}, Bonus: 0.10},
		},
		AspirationalBonus: 0.10,
		RuralBonus:        0.05,
		ParticipationBonuses: map[string]float64{
			string(domain.ParticipationRejected):   0.15,
			string(domain.ParticipationNew):        0.10,
			string(domain.ParticipationBenefitted): 0.00,
		},
		AspirationalDistricts: []domain.District{
			{District: "Mewat", State: "Haryana"},
			{District: "Nuh", State: "Haryana"},
			{District: "Kalahandi", State: "Odisha"},
			{District: "Dhar", State: "Madhya Pradesh"},
			{District: "Koraput", State: "Odisha"},
			{District: "Gaya", State: "Bihar"},
			{District: "Dantewada", State: "Chhattisgarh"},
			{District: "Barmer", State: "Rajasthan"},
			{District: "Nandurbar", State: "Maharashtra"},
			{District: "Rajgarh", State: "Madhya Pradesh"},
		},
		RuralDistricts: []domain.District{
			{District: "Nuh", State: "Haryana"},
			{District: "Kalahandi", State: "Odisha"},
			{District: "Koraput", State: "Odisha"},
			{District: "Dantewada", State: "Chhattisgarh"},
			{District: "Nandurbar", State: "Maharashtra"},
		},
	}
}

// Bonus is the per-component fairness adjustment applied to one applicant.
type Bonus struct {
	Category      float64 `json:"category"`
	Geo           float64 `json:"geo"`
	Participation float64 `json:"participation"`
}

func (b Bonus) Total() float64 {
	return b.Category + b.Geo + b.Participation
}

// Policy is the pure fairness adjustment. Bonuses stack additively and the
// result is clamped to [0, 1].
type Policy struct {
	categories    map[string]float64
	aspirational  float64
	rural         float64
	participation map[string]float64
}

func NewPolicy(cfg domain.PolicyConfig) (*Policy, error) {
	p := &Policy{
		categories:    make(map[string]float64),
		aspirational:  cfg.AspirationalBonus,
		rural:         cfg.RuralBonus,
		participation: make(map[string]float64, len(cfg.ParticipationBonuses)),
	}
	if err := validBonus("aspirational_bonus", cfg.AspirationalBonus); err != nil {
		return nil, err
	}
	if err := validBonus("rural_bonus", cfg.RuralBonus); err != nil {
		return nil, err
	}

	for _, group := range cfg.CategoryBonuses {
		if err := validBonus("category bonus "+group.Name, group.Bonus); err != nil {
			return nil, err
		}
		for _, category := range group.Categories {
			key := normalizeLabel(category)
			if key == "" {
				continue
			}
			if _, dup := p.categories[key]; dup {
				return nil, fmt.Errorf("social category %q listed in more than one bonus group", category)
			}
			p.categories[key] = group.Bonus
		}
	}

	for status, bonus := range cfg.ParticipationBonuses {
		if err := validBonus("participation bonus "+status, bonus); err != nil {
			return nil, err
		}
		p.participation[normalizeLabel(status)] = bonus
	}
	return p, nil
}

func (p *Policy) Breakdown(category domain.SocialCategory, status domain.ParticipationStatus, geo GeoFlags) Bonus {
	var b Bonus
	b.Category = p.categories[normalizeLabel(string(category))]
	if geo.Aspirational {
		b.Geo += p.aspirational
	}
	if geo.Rural {
		b.Geo += p.rural
	}
	b.Participation = p.participation[normalizeLabel(string(status))]
	return b
}

func (p *Policy) Adjust(raw float64, category domain.SocialCategory, status domain.ParticipationStatus, geo GeoFlags) float64 {
	return clamp01(raw + p.Breakdown(category, status, geo).Total())
}

func validBonus(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || v > 1 {
		return fmt.Errorf("%s must be within [0, 1], got %v", name, v)
	}
	return nil
}

func normalizeLabel(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
