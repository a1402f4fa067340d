package recommend

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bedfinder-backend/internal/model"
	"bedfinder-backend/internal/seed"
)

func ids(hs []model.Hospital) []string {
	out := make([]string, 0, len(hs))
	for _, h := range hs {
		out = append(out, h.ID)
	}
	return out
}

func seedHospitals() []model.Hospital {
	return seed.Hospitals(time.Now())
}

func TestClassify(t *testing.T) {
	testCases := []struct {
		query    string
		expected Intent
	}{
		{"pediatric ER for my daughter", IntentPediatric},
		{"My KID has a fever", IntentPediatric},
		{"need an ICU bed for transfer", IntentICU},
		{"critical condition", IntentICU},
		{"she is pregnant", IntentMaternity},
		{"Maternity ward availability", IntentMaternity},
		{"severe chest pain", IntentEmergency},
		{"Urgent!", IntentEmergency},
		{"", IntentGeneral},
		{"Find nearest trauma center", IntentGeneral},
		// first match wins: pediatric is checked before emergency
		{"my son is bleeding", IntentPediatric},
		// substring matching, so "reason" contains "son"
		{"no reason", IntentPediatric},
		// icu is checked before maternity
		{"intensive care after delivery", IntentICU},
	}

	for _, tc := range testCases {
		t.Run(tc.query, func(t *testing.T) {
			assert.Equal(t, tc.expected, Classify(tc.query))
		})
	}
}

func TestRecommend_SeedScenarios(t *testing.T) {
	testCases := []struct {
		name          string
		query         string
		expectedIDs   []string
		expectedMatch int
	}{
		{"pediatric", "pediatric ER for my daughter", []string{"4", "1", "6"}, 6},
		{"icu", "need an ICU bed", []string{"6", "4", "1"}, 5},
		{"maternity", "she is pregnant", []string{"1", "5", "6"}, 4},
		{"emergency without distance", "severe chest pain", []string{"6", "1", "4"}, 6},
		{"general keeps input order", "hello there", []string{"1", "2", "3"}, 6},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			res := Recommend(tc.query, seedHospitals())
			require.NotNil(t, res.TopPick)
			assert.Equal(t, tc.expectedIDs, ids(res.Shortlist()))
			assert.Equal(t, tc.expectedMatch, res.MatchedCount)
		})
	}
}

func TestRecommend_PediatricDaughterPicksChildrensHospital(t *testing.T) {
	res := Recommend("pediatric ER for my daughter", seedHospitals())

	require.NotNil(t, res.TopPick)
	assert.Equal(t, "UCSF Benioff Children's Hospital", res.TopPick.Name)
	assert.Equal(t, "Pediatric", res.BedType)
	assert.Equal(t, 15, res.BedCount)
	assert.Equal(t, 15, res.WaitMinutes)
	assert.Equal(t, []string{
		"High availability with 15 pediatric beds",
		"Short wait time expected",
		"Specialized pediatric care available",
	}, res.Reasons)
	assert.Empty(t, res.Advisory)
	assert.Contains(t, res.Summary(), "UCSF Benioff Children's Hospital")
}

func TestRecommend_EmergencyUsesDistancePenalty(t *testing.T) {
	hospitals := seedHospitals()
	distances := map[string]float64{"1": 2.3, "2": 3.7, "3": 1.8, "4": 4.1, "5": 3.2, "6": 2.8}
	for i := range hospitals {
		hospitals[i].SetDerived(distances[hospitals[i].ID], 10)
	}

	res := Recommend("bleeding badly", hospitals)

	assert.Equal(t, IntentEmergency, res.Intent)
	assert.Equal(t, []string{"1", "6", "4"}, ids(res.Shortlist()))
	assert.Contains(t, res.Reasons, "Very close to your location (2.3 miles)")
	assert.NotEmpty(t, res.Advisory)
}

func TestRecommend_FallbackWhenNothingMatches(t *testing.T) {
	hospitals := seedHospitals()
	for i := range hospitals {
		hospitals[i].Beds.ICU.Available = 0
	}

	res := Recommend("icu please", hospitals)

	require.NotNil(t, res.TopPick)
	assert.Equal(t, "1", res.TopPick.ID)
	assert.Empty(t, res.Alternates)
	assert.Equal(t, 0, res.MatchedCount)
	assert.Len(t, res.Shortlist(), 1)
}

func TestRecommend_EmptyInput(t *testing.T) {
	res := Recommend("my child is sick", nil)

	assert.Nil(t, res.TopPick)
	assert.Empty(t, res.Shortlist())
	assert.Equal(t, IntentPediatric, res.Intent)
	assert.NotEmpty(t, res.Summary())
}

func TestRecommend_TiesKeepInputOrder(t *testing.T) {
	hospitals := []model.Hospital{
		{ID: "a", Name: "A", Beds: model.Beds{Maternity: model.BedCount{Available: 2, Total: 5}}},
		{ID: "b", Name: "B", Beds: model.Beds{Maternity: model.BedCount{Available: 4, Total: 5}}},
		{ID: "c", Name: "C", Beds: model.Beds{Maternity: model.BedCount{Available: 2, Total: 5}}},
		{ID: "d", Name: "D", Beds: model.Beds{Maternity: model.BedCount{Available: 2, Total: 5}}},
	}

	res := Recommend("labor started", hospitals)
	assert.Equal(t, []string{"b", "a", "c"}, ids(res.Shortlist()))
}

func TestRecommend_DoesNotMutateInput(t *testing.T) {
	hospitals := seedHospitals()
	before := ids(hospitals)

	Recommend("severe pain", hospitals)
	Recommend("my baby", hospitals)

	assert.Equal(t, before, ids(hospitals))
}

func randomHospitals(r *rand.Rand, n int) []model.Hospital {
	out := make([]model.Hospital, 0, n)
	for i := 0; i < n; i++ {
		bed := func() model.BedCount {
			total := r.Intn(10)
			return model.BedCount{Available: r.Intn(total + 1), Total: total}
		}
		h := model.Hospital{
			ID:        fmt.Sprintf("h%d", i),
			Name:      fmt.Sprintf("Hospital %d", i),
			Beds:      model.Beds{ER: bed(), ICU: bed(), Pediatric: bed(), Maternity: bed()},
			WaitTimes: model.WaitTimes{ER: r.Intn(120), Pediatric: r.Intn(120)},
		}
		if r.Intn(2) == 0 {
			h.SetDerived(r.Float64()*10, r.Intn(40))
		}
		out = append(out, h)
	}
	return out
}

func TestRecommend_Properties(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	queries := []string{"my kid", "icu", "pregnant", "fever", "anything", ""}

	for iter := 0; iter < 200; iter++ {
		hospitals := randomHospitals(r, r.Intn(8))
		for _, q := range queries {
			res := Recommend(q, hospitals)
			shortlist := res.Shortlist()

			assert.LessOrEqual(t, len(shortlist), 3)
			if len(hospitals) == 0 {
				assert.Empty(t, shortlist)
				continue
			}
			assert.NotEmpty(t, shortlist)

			category := res.Intent.Category()
			if res.Intent != IntentGeneral && res.MatchedCount > 0 {
				for _, h := range shortlist {
					assert.Greater(t, h.Bed(category).Available, 0, "query %q included %s", q, h.ID)
				}
			}

			if res.Intent == IntentEmergency {
				for i := 1; i < len(shortlist); i++ {
					assert.GreaterOrEqual(t, EmergencyScore(&shortlist[i-1]), EmergencyScore(&shortlist[i]))
				}
			}
		}
	}
}
