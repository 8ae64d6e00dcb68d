// internal/repository/memory_test.go
package repository

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campolink/campolink-backend/internal/models"
)

func seedRequest(t *testing.T, store *MemoryStore, requesterID uuid.UUID) *models.CooperativeRequest {
	t.Helper()
	req := &models.CooperativeRequest{
		Kind:        models.RequestKindCreate,
		RequesterID: requesterID,
		Status:      models.RequestStatusPending,
	}
	require.NoError(t, store.Requests().Create(req))
	return req
}

func TestTransitionAppliesOnlyFromEligibleStatus(t *testing.T) {
	store := NewMemoryStore()
	req := seedRequest(t, store, uuid.New())
	reviewer := uuid.New()

	applied, err := store.Requests().Transition(req.ID,
		[]models.RequestStatus{models.RequestStatusPending},
		Transition{To: models.RequestStatusInReview, ReviewerID: &reviewer})
	require.NoError(t, err)
	assert.True(t, applied)

	// Same from-set no longer matches.
	applied, err = store.Requests().Transition(req.ID,
		[]models.RequestStatus{models.RequestStatusPending},
		Transition{To: models.RequestStatusInReview, ReviewerID: &reviewer})
	require.NoError(t, err)
	assert.False(t, applied)

	current, err := store.Requests().GetByID(req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusInReview, current.Status)
	require.NotNil(t, current.ReviewerID)
	assert.Equal(t, reviewer, *current.ReviewerID)
}

func TestTransitionOnUnknownRequest(t *testing.T) {
	store := NewMemoryStore()

	applied, err := store.Requests().Transition(uuid.New(),
		[]models.RequestStatus{models.RequestStatusPending},
		Transition{To: models.RequestStatusApproved})
	require.NoError(t, err)
	assert.False(t, applied)
}

func TestInTransactionCommitsAtomically(t *testing.T) {
	store := NewMemoryStore()
	coop := store.AddCooperative(models.Cooperative{
		Name:           "Granos del Valle",
		Status:         models.CooperativeStatusActive,
		SeekingMembers: true,
		MemberCount:    3,
		FounderID:      uuid.New(),
	})
	userID := uuid.New()

	err := store.InTransaction(func(tx Store) error {
		if err := tx.Memberships().Create(&models.MembershipRecord{
			CooperativeID: coop.ID,
			UserID:        userID,
			Role:          models.MembershipRoleMember,
			Status:        models.MembershipStatusActive,
		}); err != nil {
			return err
		}
		return tx.Cooperatives().IncrementMemberCount(coop.ID, 1)
	})
	require.NoError(t, err)

	got, err := store.Cooperatives().GetByID(coop.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.MemberCount)

	active, err := store.Memberships().HasActive(coop.ID, userID)
	require.NoError(t, err)
	assert.True(t, active)
}

func TestInTransactionRollsBackOnError(t *testing.T) {
	store := NewMemoryStore()
	coop := store.AddCooperative(models.Cooperative{
		Name:           "Granos del Valle",
		Status:         models.CooperativeStatusActive,
		SeekingMembers: true,
		MemberCount:    3,
		FounderID:      uuid.New(),
	})
	userID := uuid.New()
	boom := errors.New("boom")

	err := store.InTransaction(func(tx Store) error {
		if err := tx.Cooperatives().IncrementMemberCount(coop.ID, 1); err != nil {
			return err
		}
		if err := tx.Memberships().Create(&models.MembershipRecord{
			CooperativeID: coop.ID,
			UserID:        userID,
			Status:        models.MembershipStatusActive,
		}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	// Neither write is visible.
	got, err := store.Cooperatives().GetByID(coop.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.MemberCount)

	active, err := store.Memberships().HasActive(coop.ID, userID)
	require.NoError(t, err)
	assert.False(t, active)
}

func TestDuplicateMembershipRejected(t *testing.T) {
	store := NewMemoryStore()
	coopID := uuid.New()
	userID := uuid.New()

	first := &models.MembershipRecord{CooperativeID: coopID, UserID: userID, Status: models.MembershipStatusActive}
	require.NoError(t, store.Memberships().Create(first))

	second := &models.MembershipRecord{CooperativeID: coopID, UserID: userID, Status: models.MembershipStatusActive}
	assert.Error(t, store.Memberships().Create(second))
}

func TestListCandidatesFiltersAndKeepsCreationOrder(t *testing.T) {
	store := NewMemoryStore()
	founderID := uuid.New()

	first := store.AddCooperative(models.Cooperative{
		Name: "Primera", Status: models.CooperativeStatusActive, SeekingMembers: true, FounderID: founderID,
	})
	store.AddCooperative(models.Cooperative{
		Name: "Inactiva", Status: models.CooperativeStatusInactive, SeekingMembers: true, FounderID: founderID,
	})
	store.AddCooperative(models.Cooperative{
		Name: "Cerrada", Status: models.CooperativeStatusActive, SeekingMembers: false, FounderID: founderID,
	})
	second := store.AddCooperative(models.Cooperative{
		Name: "Segunda", Status: models.CooperativeStatusActive, SeekingMembers: true, FounderID: founderID,
	})

	candidates, err := store.Cooperatives().ListCandidates()
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Equal(t, first.ID, candidates[0].ID)
	assert.Equal(t, second.ID, candidates[1].ID)
}

func TestCountOpenScopesByKindAndCooperative(t *testing.T) {
	store := NewMemoryStore()
	requesterID := uuid.New()
	coopA := uuid.New()
	coopB := uuid.New()

	require.NoError(t, store.Requests().Create(&models.CooperativeRequest{
		Kind: models.RequestKindJoin, RequesterID: requesterID,
		CooperativeID: &coopA, Status: models.RequestStatusPending,
	}))
	require.NoError(t, store.Requests().Create(&models.CooperativeRequest{
		Kind: models.RequestKindJoin, RequesterID: requesterID,
		CooperativeID: &coopB, Status: models.RequestStatusRejected,
	}))
	require.NoError(t, store.Requests().Create(&models.CooperativeRequest{
		Kind: models.RequestKindCreate, RequesterID: requesterID,
		Status: models.RequestStatusInReview,
	}))

	count, err := store.Requests().CountOpen(requesterID, models.RequestKindJoin, &coopA)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	// The rejected request for coopB does not count as open.
	count, err = store.Requests().CountOpen(requesterID, models.RequestKindJoin, &coopB)
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)

	count, err = store.Requests().CountOpen(requesterID, models.RequestKindCreate, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestPromoteTypePersists(t *testing.T) {
	store := NewMemoryStore()
	user := store.AddUser(models.User{
		Username: "maria",
		UserType: models.UserTypeProductor,
		Status:   models.UserStatusActive,
	})

	require.NoError(t, store.Users().PromoteType(user.ID, models.UserTypeCooperativa))

	got, err := store.Users().GetByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UserTypeCooperativa, got.UserType)
}
