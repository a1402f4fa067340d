package recommend

import (
	"strings"

	"bedfinder-backend/internal/model"
)

// Intent is the category a free-text query was classified into.
type Intent string

const (
	IntentPediatric Intent = "pediatric"
	IntentICU       Intent = "icu"
	IntentMaternity Intent = "maternity"
	IntentEmergency Intent = "emergency"
	IntentGeneral   Intent = "general"
)

type rule struct {
	intent   Intent
	keywords []string
}

// rules are evaluated in order; the first rule with a matching keyword wins.
var rules = []rule{
	{IntentPediatric, []string{"child", "kid", "baby", "daughter", "son"}},
	{IntentICU, []string{"icu", "intensive", "critical"}},
	{IntentMaternity, []string{"pregnant", "labor", "delivery", "maternity"}},
	{IntentEmergency, []string{"emergency", "urgent", "pain", "fever", "bleeding"}},
}

// Classify maps a query to an intent by plain substring matching.
func Classify(query string) Intent {
	lower := strings.ToLower(query)
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(lower, kw) {
				return r.intent
			}
		}
	}
	return IntentGeneral
}

// Category is the bed category an intent filters and reports on. General and
// emergency intents report ER beds.
func (i Intent) Category() model.BedCategory {
	switch i {
	case IntentPediatric:
		return model.CategoryPediatric
	case IntentICU:
		return model.CategoryICU
	case IntentMaternity:
		return model.CategoryMaternity
	default:
		return model.CategoryER
	}
}

// BedLabel is the display name of the intent's bed category.
func (i Intent) BedLabel() string {
	switch i {
	case IntentPediatric:
		return "Pediatric"
	case IntentICU:
		return "ICU"
	case IntentMaternity:
		return "Maternity"
	default:
		return "ER"
	}
}
