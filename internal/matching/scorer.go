// internal/matching/scorer.go
package matching

import (
	"math"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/campolink/campolink-backend/internal/models"
)

// Factor weights. The three contributions sum to at most 100.
const (
	productWeight      = 40.0
	categoryWeight     = 35.0
	regionExactScore   = 25.0
	regionPartialScore = 15.0
)

// Match pairs a candidate cooperative with its compatibility score.
type Match struct {
	Cooperative models.Cooperative `json:"cooperative"`
	Score       int                `json:"score"`
}

// Score computes the compatibility of a producer profile against one
// cooperative as an integer in [0,100]. All comparisons are case-insensitive.
// Empty product or category lists contribute 0 for that factor; nothing
// errors, missing data simply scores lower.
func Score(profile *models.ProducerProfile, coop *models.Cooperative) int {
	if profile == nil || coop == nil {
		return 0
	}

	total := productOverlap(profile.Products, coop.Products)
	total += categoryOverlap(profile.Categories, coop.Categories)
	total += regionAffinity(profile.Region, coop.Region)

	return int(math.Round(total))
}

// productOverlap counts a profile product as matched when it is a substring
// of, or a superstring of, any product the cooperative offers.
func productOverlap(profileProducts, coopProducts []string) float64 {
	matched := 0
	for _, pp := range profileProducts {
		p := normalize(pp)
		if p == "" {
			continue
		}
		for _, cp := range coopProducts {
			c := normalize(cp)
			if c == "" {
				continue
			}
			if strings.Contains(c, p) || strings.Contains(p, c) {
				matched++
				break
			}
		}
	}
	return productWeight * float64(matched) / float64(max(len(profileProducts), 1))
}

// categoryOverlap requires exact (non-substring) matches.
func categoryOverlap(profileCategories, coopCategories []string) float64 {
	matched := 0
	for _, pc := range profileCategories {
		p := normalize(pc)
		if p == "" {
			continue
		}
		for _, cc := range coopCategories {
			if normalize(cc) == p {
				matched++
				break
			}
		}
	}
	return categoryWeight * float64(matched) / float64(max(len(profileCategories), 1))
}

func regionAffinity(profileRegion, coopRegion string) float64 {
	p := normalize(profileRegion)
	c := normalize(coopRegion)
	if p == "" || c == "" {
		return 0
	}
	if p == c {
		return regionExactScore
	}
	if strings.Contains(p, c) || strings.Contains(c, p) {
		return regionPartialScore
	}
	return 0
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Filter returns the cooperatives eligible for scoring: active, seeking
// members, and not founded by the requesting producer. Input order is
// preserved.
func Filter(candidates []models.Cooperative, requesterID uuid.UUID) []models.Cooperative {
	eligible := make([]models.Cooperative, 0, len(candidates))
	for _, c := range candidates {
		if c.Status != models.CooperativeStatusActive {
			continue
		}
		if !c.SeekingMembers {
			continue
		}
		if c.FounderID == requesterID {
			continue
		}
		eligible = append(eligible, c)
	}
	return eligible
}

// Rank filters the candidates and returns them sorted descending by score.
// The sort is stable: candidates with equal scores keep their input order,
// so repeated calls over identical inputs yield identical rankings.
func Rank(profile *models.ProducerProfile, candidates []models.Cooperative, requesterID uuid.UUID) []Match {
	eligible := Filter(candidates, requesterID)

	matches := make([]Match, len(eligible))
	for i, c := range eligible {
		matches[i] = Match{Cooperative: c, Score: Score(profile, &c)}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	return matches
}
