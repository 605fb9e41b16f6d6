package engine

import (
	"strings"

	"github.com/kirillkom/internship-allocator/internal/core/domain"
)

type GeoFlags struct {
	Aspirational bool `json:"is_aspirational"`
	Rural        bool `json:"is_rural"`
}

// DistrictSet is a read-only membership set of (district, state) pairs.
type DistrictSet map[string]struct{}

func NewDistrictSet(districts []domain.District) DistrictSet {
	set := make(DistrictSet, len(districts))
	for _, d := range districts {
		if strings.TrimSpace(d.District) == "" || strings.TrimSpace(d.State) == "" {
			continue
		}
		set[districtKey(d.District, d.State)] = struct{}{}
	}
	return set
}

func (s DistrictSet) Contains(district, state string) bool {
	_, ok := s[districtKey(district, state)]
	return ok
}

type GeoClassifier struct {
	aspirational DistrictSet
	rural        DistrictSet
}

func NewGeoClassifier(aspirational, rural []domain.District) *GeoClassifier {
	return &GeoClassifier{
		aspirational: NewDistrictSet(aspirational),
		rural:        NewDistrictSet(rural),
	}
}

// Classify never fails: anything other than a two-part "district, state"
// string yields both flags false.
func (g *GeoClassifier) Classify(nativeLocation string) GeoFlags {
	district, state, ok := ParseNativeLocation(nativeLocation)
	if !ok {
		return GeoFlags{}
	}
	return GeoFlags{
		Aspirational: g.aspirational.Contains(district, state),
		Rural:        g.rural.Contains(district, state),
	}
}

func ParseNativeLocation(nativeLocation string) (district, state string, ok bool) {
	parts := strings.Split(nativeLocation, ",")
	if len(parts) != 2 {
		return "", "", false
	}
	district = strings.TrimSpace(parts[0])
	state = strings.TrimSpace(parts[1])
	if district == "" || state == "" {
		return "", "", false
	}
	return district, state, true
}

func districtKey(district, state string) string {
	return strings.ToLower(strings.TrimSpace(district)) + "|" + strings.ToLower(strings.TrimSpace(state))
}
