// Package search narrows and orders hospital lists for the list endpoints.
package search

import (
	"cmp"
	"slices"
	"strings"

	"bedfinder-backend/internal/model"
	"bedfinder-backend/internal/parse"
)

// Criteria selects hospitals. Zero values mean "no constraint".
type Criteria struct {
	Query         string
	BedTypes      []model.BedCategory
	Insurance     []string
	Features      []string
	EmergencyOnly bool
	AvailableOnly bool
	MaxDistance   float64
	MaxWait       int
}

// FromFilters builds criteria from parsed filter tokens.
func FromFilters(query string, f parse.Filters) Criteria {
	return Criteria{
		Query:       query,
		BedTypes:    f.BedTypes,
		Insurance:   f.Insurance,
		Features:    f.Features,
		MaxDistance: f.MaxDistance,
		MaxWait:     f.MaxWait,
	}
}

// Apply returns the hospitals matching c. When every survivor has a known
// distance the result is ordered nearest first; otherwise input order is kept.
func Apply(hospitals []model.Hospital, c Criteria) []model.Hospital {
	out := make([]model.Hospital, 0, len(hospitals))
	for i := range hospitals {
		if c.matches(&hospitals[i]) {
			out = append(out, hospitals[i])
		}
	}

	if allHaveDistance(out) {
		slices.SortStableFunc(out, func(a, b model.Hospital) int {
			return cmp.Compare(*a.Distance, *b.Distance)
		})
	}
	return out
}

// Nearby keeps hospitals within radius miles, nearest first. Hospitals without
// a distance are dropped.
func Nearby(hospitals []model.Hospital, radius float64) []model.Hospital {
	out := make([]model.Hospital, 0, len(hospitals))
	for _, h := range hospitals {
		if h.Distance != nil && *h.Distance <= radius {
			out = append(out, h)
		}
	}
	slices.SortStableFunc(out, func(a, b model.Hospital) int {
		return cmp.Compare(*a.Distance, *b.Distance)
	})
	return out
}

func (c Criteria) matches(h *model.Hospital) bool {
	if q := strings.ToLower(strings.TrimSpace(c.Query)); q != "" {
		if !strings.Contains(strings.ToLower(h.Name), q) && !strings.Contains(strings.ToLower(h.Address.City), q) {
			return false
		}
	}

	for _, bt := range c.BedTypes {
		if h.Bed(bt).Available <= 0 {
			return false
		}
	}

	for _, ins := range c.Insurance {
		if !acceptsInsurance(h, ins) {
			return false
		}
	}

	for _, f := range c.Features {
		if !hasFeature(h, f) {
			return false
		}
	}

	if c.EmergencyOnly && !h.Features.Has24EmergencyServices {
		return false
	}

	if c.AvailableOnly && h.TotalAvailable() == 0 {
		return false
	}

	if c.MaxDistance > 0 && h.Distance != nil && *h.Distance > c.MaxDistance {
		return false
	}

	if c.MaxWait > 0 && h.WaitTimes.ER > c.MaxWait {
		return false
	}
	return true
}

func acceptsInsurance(h *model.Hospital, name string) bool {
	name = strings.ToLower(name)
	for _, accepted := range h.Insurance {
		a := strings.ToLower(accepted)
		if strings.Contains(a, name) || strings.HasPrefix(a, "all insurance") || strings.HasPrefix(a, "all major insurance") {
			if strings.Contains(name, "uninsured") && !strings.Contains(a, "uninsured") {
				continue
			}
			return true
		}
	}
	return false
}

func hasFeature(h *model.Hospital, feature string) bool {
	switch feature {
	case parse.FeatureTraumaCenter:
		return h.Features.IsTraumaCenter()
	case parse.FeatureTeachingHospital:
		return h.Features.TeachingHospital
	case parse.FeatureEmergency247:
		return h.Features.Has24EmergencyServices
	case parse.FeatureOnsitePharmacy:
		return h.Features.HasPharmacy
	}
	return false
}

func allHaveDistance(hs []model.Hospital) bool {
	if len(hs) == 0 {
		return false
	}
	for _, h := range hs {
		if h.Distance == nil {
			return false
		}
	}
	return true
}
