// internal/services/matching_service_test.go
package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campolink/campolink-backend/internal/models"
	"github.com/campolink/campolink-backend/internal/repository"
)

func seedMatchingFixtures(store *repository.MemoryStore) (producer models.User, best, other models.Cooperative) {
	founderID := uuid.New()

	producer = store.AddUser(models.User{
		Username: "maria",
		UserType: models.UserTypeProductor,
		Status:   models.UserStatusActive,
	})
	store.AddProfile(models.ProducerProfile{
		UserID:     producer.ID,
		Products:   []string{"café orgánico"},
		Categories: []string{"Café"},
		Region:     "Orizaba",
	})

	best = store.AddCooperative(models.Cooperative{
		Name:           "Café de Altura Orizaba",
		Categories:     []string{"Café"},
		Region:         "Orizaba",
		Products:       []string{"café orgánico"},
		SeekingMembers: true,
		Status:         models.CooperativeStatusActive,
		FounderID:      founderID,
	})
	other = store.AddCooperative(models.Cooperative{
		Name:           "Miel de la Sierra",
		Categories:     []string{"Miel"},
		Region:         "Zongolica",
		Products:       []string{"miel multifloral"},
		SeekingMembers: true,
		Status:         models.CooperativeStatusActive,
		FounderID:      founderID,
	})
	return producer, best, other
}

func TestRecommendCooperativesRanksDescending(t *testing.T) {
	store := repository.NewMemoryStore()
	producer, best, other := seedMatchingFixtures(store)

	service := NewMatchingService(store)
	matches, err := service.RecommendCooperatives(producer.ID, 0)
	require.NoError(t, err)
	require.Len(t, matches, 2)

	assert.Equal(t, best.ID, matches[0].Cooperative.ID)
	assert.Equal(t, 100, matches[0].Score)
	assert.Equal(t, other.ID, matches[1].Cooperative.ID)
	assert.Greater(t, matches[0].Score, matches[1].Score)
}

func TestRecommendCooperativesHonorsLimit(t *testing.T) {
	store := repository.NewMemoryStore()
	producer, best, _ := seedMatchingFixtures(store)

	service := NewMatchingService(store)
	matches, err := service.RecommendCooperatives(producer.ID, 1)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, best.ID, matches[0].Cooperative.ID)
}

func TestRecommendCooperativesRequiresProfile(t *testing.T) {
	store := repository.NewMemoryStore()
	user := store.AddUser(models.User{
		Username: "nuevo",
		UserType: models.UserTypeProductor,
		Status:   models.UserStatusActive,
	})

	service := NewMatchingService(store)
	_, err := service.RecommendCooperatives(user.ID, 0)
	assert.True(t, IsValidation(err))
}

func TestScoreAgainstMatchesSubmittedSnapshot(t *testing.T) {
	store := repository.NewMemoryStore()
	producer, best, other := seedMatchingFixtures(store)

	service := NewMatchingService(store)

	score, err := service.ScoreAgainst(producer.ID, best.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, score)

	score, err = service.ScoreAgainst(producer.ID, other.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, score)
}
