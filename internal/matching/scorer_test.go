// internal/matching/scorer_test.go
package matching

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/campolink/campolink-backend/internal/models"
)

func activeCoop(name string, products, categories []string, region string) models.Cooperative {
	return models.Cooperative{
		Name:           name,
		Products:       products,
		Categories:     categories,
		Region:         region,
		Status:         models.CooperativeStatusActive,
		SeekingMembers: true,
		FounderID:      uuid.New(),
	}
}

func TestScorePerfectMatch(t *testing.T) {
	profile := &models.ProducerProfile{
		Products:   []string{"café organico"},
		Categories: []string{"Café"},
		Region:     "Orizaba",
	}
	coop := activeCoop("Café de Orizaba", []string{"café"}, []string{"Café"}, "Orizaba")

	// "café" is a substring of "café organico" (40), category exact (35),
	// region exact (25).
	assert.Equal(t, 100, Score(profile, &coop))
}

func TestScoreNoOverlap(t *testing.T) {
	profile := &models.ProducerProfile{
		Products:   []string{"café organico"},
		Categories: []string{"Café"},
		Region:     "Orizaba",
	}
	coop := activeCoop("Miel del Valle", []string{"miel"}, []string{"Miel"}, "Córdoba")

	assert.Equal(t, 0, Score(profile, &coop))
}

func TestScorePartialProductOverlap(t *testing.T) {
	profile := &models.ProducerProfile{
		Products: []string{"café", "vainilla"},
	}
	coop := activeCoop("Cafetaleros", []string{"café de altura"}, nil, "")

	// One of two products matched: 40 * 1/2 = 20.
	assert.Equal(t, 20, Score(profile, &coop))
}

func TestScoreRegionSubstring(t *testing.T) {
	profile := &models.ProducerProfile{Region: "Orizaba"}
	coop := activeCoop("Regional", nil, nil, "Valle de Orizaba")

	assert.Equal(t, 15, Score(profile, &coop))
}

func TestScoreRegionMissingSide(t *testing.T) {
	profile := &models.ProducerProfile{Region: ""}
	coop := activeCoop("Sin región", nil, nil, "Orizaba")

	// An empty region must not match as a substring of everything.
	assert.Equal(t, 0, Score(profile, &coop))
}

func TestScoreCategoryExactOnly(t *testing.T) {
	profile := &models.ProducerProfile{Categories: []string{"Café"}}
	coop := activeCoop("Sub", nil, []string{"Café de especialidad"}, "")

	// Categories never match on substrings.
	assert.Equal(t, 0, Score(profile, &coop))
}

func TestScoreEmptyProfileDegradesToZero(t *testing.T) {
	profile := &models.ProducerProfile{}
	coop := activeCoop("Cualquiera", []string{"maíz"}, []string{"Granos"}, "Puebla")

	assert.Equal(t, 0, Score(profile, &coop))
}

func TestScoreBounds(t *testing.T) {
	profiles := []*models.ProducerProfile{
		{},
		{Products: []string{"café"}, Categories: []string{"Café"}, Region: "Orizaba"},
		{Products: []string{"a", "b", "c"}, Categories: []string{"x"}, Region: "y"},
	}
	coops := []models.Cooperative{
		activeCoop("a", nil, nil, ""),
		activeCoop("b", []string{"café", "a", "b", "c"}, []string{"Café", "x"}, "Orizaba"),
	}

	for _, p := range profiles {
		for i := range coops {
			s := Score(p, &coops[i])
			assert.GreaterOrEqual(t, s, 0)
			assert.LessOrEqual(t, s, 100)
		}
	}
}

func TestScoreDeterminism(t *testing.T) {
	profile := &models.ProducerProfile{
		Products:   []string{"Café Organico", "miel"},
		Categories: []string{"café", "Miel"},
		Region:     "Córdoba",
	}
	coop := activeCoop("Mixta", []string{"café"}, []string{"Café"}, "Córdoba, Veracruz")

	first := Score(profile, &coop)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Score(profile, &coop))
	}
}

func TestFilterExcludesIneligible(t *testing.T) {
	requester := uuid.New()

	inactive := activeCoop("inactiva", nil, nil, "")
	inactive.Status = models.CooperativeStatusInactive

	notSeeking := activeCoop("cerrada", nil, nil, "")
	notSeeking.SeekingMembers = false

	own := activeCoop("propia", nil, nil, "")
	own.FounderID = requester

	open := activeCoop("abierta", nil, nil, "")

	eligible := Filter([]models.Cooperative{inactive, notSeeking, own, open}, requester)
	assert.Len(t, eligible, 1)
	assert.Equal(t, "abierta", eligible[0].Name)
}

func TestRankOrdersDescending(t *testing.T) {
	profile := &models.ProducerProfile{
		Products:   []string{"café"},
		Categories: []string{"Café"},
		Region:     "Orizaba",
	}

	low := activeCoop("baja", []string{"miel"}, []string{"Miel"}, "Puebla")
	mid := activeCoop("media", []string{"café"}, nil, "")
	high := activeCoop("alta", []string{"café"}, []string{"Café"}, "Orizaba")

	ranked := Rank(profile, []models.Cooperative{low, mid, high}, uuid.New())

	assert.Len(t, ranked, 3)
	assert.Equal(t, "alta", ranked[0].Cooperative.Name)
	assert.Equal(t, "media", ranked[1].Cooperative.Name)
	assert.Equal(t, "baja", ranked[2].Cooperative.Name)
	assert.Equal(t, 100, ranked[0].Score)
}

func TestRankStableOnTies(t *testing.T) {
	profile := &models.ProducerProfile{Products: []string{"café"}}

	first := activeCoop("primera", []string{"café"}, nil, "")
	second := activeCoop("segunda", []string{"café"}, nil, "")
	third := activeCoop("tercera", []string{"café"}, nil, "")

	ranked := Rank(profile, []models.Cooperative{first, second, third}, uuid.New())

	assert.Equal(t, "primera", ranked[0].Cooperative.Name)
	assert.Equal(t, "segunda", ranked[1].Cooperative.Name)
	assert.Equal(t, "tercera", ranked[2].Cooperative.Name)
	for _, m := range ranked {
		assert.Equal(t, ranked[0].Score, m.Score)
	}
}
