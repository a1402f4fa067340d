// Package recommend implements the keyword-driven hospital recommendation:
// classify a query, filter by bed category, rank, and shortlist.
package recommend

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"bedfinder-backend/internal/model"
)

// Result is a ranked shortlist with the facts used to explain the top pick.
type Result struct {
	Intent       Intent
	MatchedCount int
	TopPick      *model.Hospital
	Alternates   []model.Hospital
	BedType      string
	BedCount     int
	WaitMinutes  int
	Reasons      []string
	Advisory     string
}

// Shortlist returns the top pick followed by the alternates.
func (r Result) Shortlist() []model.Hospital {
	if r.TopPick == nil {
		return nil
	}
	return append([]model.Hospital{*r.TopPick}, r.Alternates...)
}

// Summary renders a short human-readable recommendation.
func (r Result) Summary() string {
	if r.TopPick == nil {
		return "No hospitals are available right now. Please call 911 if this is an emergency."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Based on your situation, I've found %d hospitals that can help. ", r.MatchedCount)
	fmt.Fprintf(&b, "My recommendation is %s: %s Beds: %d available, wait time ~%d minutes.",
		r.TopPick.Name, r.BedType, r.BedCount, r.WaitMinutes)
	return b.String()
}

// EmergencyScore weighs ER capacity, ER wait and distance. Unknown distance
// counts as zero.
func EmergencyScore(h *model.Hospital) float64 {
	return float64(h.Beds.ER.Available*2) + float64(60-h.WaitTimes.ER) - h.DistanceOr(0)*5
}

// Recommend classifies query and ranks hospitals for it. An empty hospital
// list yields an empty result; a non-empty list always yields a top pick.
func Recommend(query string, hospitals []model.Hospital) Result {
	intent := Classify(query)
	res := Result{Intent: intent, BedType: intent.BedLabel()}
	if len(hospitals) == 0 {
		return res
	}

	ranked := rank(intent, hospitals)
	res.MatchedCount = len(ranked)

	if len(ranked) == 0 {
		top := hospitals[0]
		res.TopPick = &top
	} else {
		top := ranked[0]
		res.TopPick = &top
		end := min(len(ranked), 3)
		res.Alternates = append([]model.Hospital(nil), ranked[1:end]...)
	}

	explain(&res)
	return res
}

func rank(intent Intent, hospitals []model.Hospital) []model.Hospital {
	if intent == IntentGeneral {
		return append([]model.Hospital(nil), hospitals...)
	}

	category := intent.Category()
	filtered := make([]model.Hospital, 0, len(hospitals))
	for _, h := range hospitals {
		if h.Bed(category).Available > 0 {
			filtered = append(filtered, h)
		}
	}

	if intent == IntentEmergency {
		slices.SortStableFunc(filtered, func(a, b model.Hospital) int {
			return cmp.Compare(EmergencyScore(&b), EmergencyScore(&a))
		})
		return filtered
	}

	slices.SortStableFunc(filtered, func(a, b model.Hospital) int {
		return cmp.Compare(b.Bed(category).Available, a.Bed(category).Available)
	})
	return filtered
}

func explain(res *Result) {
	top := res.TopPick
	res.BedCount = top.Bed(res.Intent.Category()).Available
	if res.Intent == IntentPediatric {
		res.WaitMinutes = top.WaitTimes.Pediatric
	} else {
		res.WaitMinutes = top.WaitTimes.ER
	}

	if res.BedCount > 5 {
		res.Reasons = append(res.Reasons, fmt.Sprintf("High availability with %d %s beds", res.BedCount, strings.ToLower(res.BedType)))
	}
	if top.Distance != nil && *top.Distance < 3 {
		res.Reasons = append(res.Reasons, fmt.Sprintf("Very close to your location (%.1f miles)", *top.Distance))
	}
	if res.WaitMinutes < 20 {
		res.Reasons = append(res.Reasons, "Short wait time expected")
	}
	if res.Intent == IntentPediatric && top.HasSpecialty("pediatric") {
		res.Reasons = append(res.Reasons, "Specialized pediatric care available")
	}
	if res.Intent == IntentEmergency {
		res.Advisory = "Given the urgent nature, please call 911 if symptoms worsen during travel."
	}
}
