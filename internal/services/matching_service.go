// internal/services/matching_service.go
package services

import (
	"errors"

	"github.com/google/uuid"

	"github.com/campolink/campolink-backend/internal/matching"
	"github.com/campolink/campolink-backend/internal/repository"
)

// MatchingService ranks cooperatives against a producer's onboarding
// profile. It only reads; all scoring is delegated to the pure engine in
// internal/matching.
type MatchingService struct {
	store repository.Store
}

func NewMatchingService(store repository.Store) *MatchingService {
	return &MatchingService{store: store}
}

// RecommendCooperatives returns the producer's candidate cooperatives
// ranked descending by match score. limit <= 0 means no limit.
func (s *MatchingService) RecommendCooperatives(userID uuid.UUID, limit int) ([]matching.Match, error) {
	profile, err := s.store.Profiles().GetByUserID(userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newValidationError("profile", "producer profile not found; complete onboarding first")
		}
		return nil, persistErr("load producer profile", err)
	}

	candidates, err := s.store.Cooperatives().ListCandidates()
	if err != nil {
		return nil, persistErr("list candidate cooperatives", err)
	}

	matches := matching.Rank(profile, candidates, userID)
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// ScoreAgainst computes the snapshot score of the producer's profile
// against a single cooperative, the same number SubmitJoin embeds in the
// request payload.
func (s *MatchingService) ScoreAgainst(userID, cooperativeID uuid.UUID) (int, error) {
	profile, err := s.store.Profiles().GetByUserID(userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, newValidationError("profile", "producer profile not found; complete onboarding first")
		}
		return 0, persistErr("load producer profile", err)
	}

	coop, err := s.store.Cooperatives().GetByID(cooperativeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, newValidationError("cooperative_id", "cooperative not found")
		}
		return 0, persistErr("load cooperative", err)
	}

	return matching.Score(profile, coop), nil
}
