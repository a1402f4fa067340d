package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"bedfinder-backend/internal/model"
)

func TestFilterTokens(t *testing.T) {
	testCases := []struct {
		name      string
		tokens    []string
		expected  Filters
		expectErr bool
	}{
		{
			name:     "Bed types",
			tokens:   []string{"er", "ICU", "er"},
			expected: Filters{BedTypes: []model.BedCategory{model.CategoryER, model.CategoryICU}},
		},
		{
			name:     "Distance and wait",
			tokens:   []string{"distance-10", "wait-30"},
			expected: Filters{MaxDistance: 10, MaxWait: 30},
		},
		{
			name:     "Fractional distance",
			tokens:   []string{"distance-2.5"},
			expected: Filters{MaxDistance: 2.5},
		},
		{
			name:     "Wait any",
			tokens:   []string{"wait-any"},
			expected: Filters{},
		},
		{
			name:   "Insurance and features",
			tokens: []string{"Medicare", "24/7 emergency", "Uninsured Accepted", "On-site Pharmacy"},
			expected: Filters{
				Insurance: []string{"Medicare", "Uninsured Accepted"},
				Features:  []string{FeatureEmergency247, FeatureOnsitePharmacy},
			},
		},
		{
			name:     "All and blanks ignored",
			tokens:   []string{"all", " ", ""},
			expected: Filters{},
		},
		{
			name:      "Bad distance",
			tokens:    []string{"distance-far"},
			expectErr: true,
		},
		{
			name:      "Bad wait",
			tokens:    []string{"wait-soon"},
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			parsed, err := FilterTokens(tc.tokens)
			if tc.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tc.expected, parsed)
			}
		})
	}
}

func TestSplitList(t *testing.T) {
	assert.Nil(t, SplitList(""))
	assert.Equal(t, []string{"er", "distance-10"}, SplitList("er, ,distance-10,"))
}

func TestCoordinates(t *testing.T) {
	testCases := []struct {
		name      string
		raw       string
		expected  model.Coordinates
		expectErr bool
	}{
		{"Comma", "37.7749,-122.4194", model.Coordinates{Lat: 37.7749, Lng: -122.4194}, false},
		{"Semicolon with spaces", " 37.5 ; -122 ", model.Coordinates{Lat: 37.5, Lng: -122}, false},
		{"Address", "1001 Potrero Avenue", model.Coordinates{}, true},
		{"Out of range", "95,10", model.Coordinates{}, true},
		{"Single value", "37.7", model.Coordinates{}, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c, err := Coordinates(tc.raw)
			if tc.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tc.expected, c)
			}
		})
	}
}
