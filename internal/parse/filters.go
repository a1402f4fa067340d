package parse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"bedfinder-backend/internal/model"
)

var (
	distanceRe = regexp.MustCompile(`(?i)^distance-(.*)$`)
	waitRe     = regexp.MustCompile(`(?i)^wait-(.*)$`)
	numberRe   = regexp.MustCompile(`^\d+(?:\.\d+)?$`)
)

// Feature tokens understood by the hospital filter.
const (
	FeatureTraumaCenter     = "Trauma Center"
	FeatureTeachingHospital = "Teaching Hospital"
	FeatureEmergency247     = "24/7 Emergency"
	FeatureOnsitePharmacy   = "On-site Pharmacy"
)

var knownFeatures = []string{FeatureTraumaCenter, FeatureTeachingHospital, FeatureEmergency247, FeatureOnsitePharmacy}

// Filters holds the structured form of a list of filter tokens.
type Filters struct {
	BedTypes    []model.BedCategory
	Insurance   []string
	Features    []string
	MaxDistance float64 // 0 means no limit
	MaxWait     int     // 0 means no limit
}

// FilterTokens parses tokens such as "er", "distance-10", "wait-30",
// "Medicare" or "24/7 Emergency". Unknown plain tokens are treated as
// insurance names.
func FilterTokens(tokens []string) (Filters, error) {
	var f Filters
	for _, raw := range tokens {
		tok := strings.TrimSpace(raw)
		if tok == "" {
			continue
		}

		if c, ok := model.ParseBedCategory(tok); ok {
			f.BedTypes = appendUnique(f.BedTypes, c)
			continue
		}
		if strings.EqualFold(tok, "all") {
			continue
		}

		if m := distanceRe.FindStringSubmatch(tok); m != nil {
			if !numberRe.MatchString(m[1]) {
				return Filters{}, fmt.Errorf("invalid distance filter %q", raw)
			}
			d, err := strconv.ParseFloat(m[1], 64)
			if err != nil {
				return Filters{}, fmt.Errorf("invalid distance filter %q: %w", raw, err)
			}
			f.MaxDistance = d
			continue
		}

		if m := waitRe.FindStringSubmatch(tok); m != nil {
			if strings.EqualFold(m[1], "any") {
				f.MaxWait = 0
				continue
			}
			w, err := strconv.Atoi(m[1])
			if err != nil || w < 0 {
				return Filters{}, fmt.Errorf("invalid wait filter %q", raw)
			}
			f.MaxWait = w
			continue
		}

		if feature, ok := matchFeature(tok); ok {
			f.Features = appendUnique(f.Features, feature)
			continue
		}

		f.Insurance = appendUnique(f.Insurance, tok)
	}
	return f, nil
}

// SplitList splits a comma separated query value, dropping empty entries.
func SplitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func matchFeature(tok string) (string, bool) {
	for _, f := range knownFeatures {
		if strings.EqualFold(tok, f) {
			return f, true
		}
	}
	return "", false
}

func appendUnique[T comparable](list []T, v T) []T {
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}
