// internal/services/request_service_test.go
package services

import (
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/campolink/campolink-backend/internal/models"
	"github.com/campolink/campolink-backend/internal/repository"
)

type RequestWorkflowTestSuite struct {
	suite.Suite
	store   *repository.MemoryStore
	service *RequestService

	admin    models.User
	producer models.User
	founder  models.User
	coop     models.Cooperative
}

func (suite *RequestWorkflowTestSuite) SetupTest() {
	suite.store = repository.NewMemoryStore()
	suite.service = NewRequestService(suite.store, nil)

	suite.admin = suite.store.AddUser(models.User{
		Username:    "admin",
		Email:       "admin@campolink.mx",
		DisplayName: "Administrador",
		UserType:    models.UserTypeAdmin,
		Status:      models.UserStatusActive,
	})
	suite.producer = suite.store.AddUser(models.User{
		Username:    "maria",
		Email:       "maria@example.com",
		DisplayName: "María López",
		UserType:    models.UserTypeProductor,
		Status:      models.UserStatusActive,
	})
	suite.founder = suite.store.AddUser(models.User{
		Username:    "jorge",
		Email:       "jorge@example.com",
		DisplayName: "Jorge Ruiz",
		UserType:    models.UserTypeCooperativa,
		Status:      models.UserStatusActive,
	})
	suite.coop = suite.store.AddCooperative(models.Cooperative{
		Name:           "Café de Altura Orizaba",
		Description:    "Productores de café de la región de Orizaba",
		Categories:     []string{"Café"},
		Region:         "Orizaba",
		Products:       []string{"café orgánico", "café tostado"},
		MemberCount:    9,
		SeekingMembers: true,
		Status:         models.CooperativeStatusActive,
		FounderID:      suite.founder.ID,
	})
}

func (suite *RequestWorkflowTestSuite) addProfile(userID uuid.UUID) {
	suite.store.AddProfile(models.ProducerProfile{
		UserID:     userID,
		Products:   []string{"café orgánico"},
		Categories: []string{"Café"},
		Region:     "Orizaba",
		Goal:       models.ProducerGoalJoinCooperative,
	})
}

func (suite *RequestWorkflowTestSuite) submitJoin(userID uuid.UUID) *models.CooperativeRequest {
	request, err := suite.service.SubmitJoin(userID, &SubmitJoinRequest{
		CooperativeID: suite.coop.ID,
		Motivation:    "Quiero vender mi café junto con otros productores de la región",
	})
	suite.Require().NoError(err)
	return request
}

func (suite *RequestWorkflowTestSuite) submitCreate(userID uuid.UUID) *models.CooperativeRequest {
	request, err := suite.service.SubmitCreate(userID, &SubmitCreateRequest{
		Name:       "Miel de la Sierra",
		Categories: []string{"Miel"},
		Region:     "Zongolica",
		Products:   []string{"miel multifloral"},
	})
	suite.Require().NoError(err)
	return request
}

func (suite *RequestWorkflowTestSuite) TestSubmitCreateStartsPending() {
	request := suite.submitCreate(suite.producer.ID)

	assert.Equal(suite.T(), models.RequestKindCreate, request.Kind)
	assert.Equal(suite.T(), models.RequestStatusPending, request.Status)
	assert.Equal(suite.T(), suite.producer.DisplayName, request.RequesterName)
	assert.Equal(suite.T(), "Miel de la Sierra", request.CooperativeName)
	suite.Require().NotNil(request.Payload.Create)
	assert.Equal(suite.T(), []string{"miel multifloral"}, request.Payload.Create.Products)
	assert.False(suite.T(), request.SubmittedAt.IsZero())
}

func (suite *RequestWorkflowTestSuite) TestSubmitCreateValidatesDraft() {
	_, err := suite.service.SubmitCreate(suite.producer.ID, &SubmitCreateRequest{
		Name:     "",
		Products: []string{"miel"},
	})
	assert.True(suite.T(), IsValidation(err))
}

func (suite *RequestWorkflowTestSuite) TestSubmitCreateRejectsSecondOpenRequest() {
	suite.submitCreate(suite.producer.ID)

	_, err := suite.service.SubmitCreate(suite.producer.ID, &SubmitCreateRequest{
		Name:       "Otra Cooperativa",
		Categories: []string{"Cacao"},
		Products:   []string{"cacao"},
	})
	assert.True(suite.T(), IsValidation(err))
}

func (suite *RequestWorkflowTestSuite) TestSubmitJoinSnapshotsMatchScore() {
	suite.addProfile(suite.producer.ID)

	request := suite.submitJoin(suite.producer.ID)

	suite.Require().NotNil(request.Payload.Join)
	assert.Equal(suite.T(), 100, request.Payload.Join.MatchScore)
	assert.Equal(suite.T(), "Orizaba", request.Payload.Join.ProfileSnapshot.Region)
	assert.Equal(suite.T(), suite.coop.ID, *request.CooperativeID)
}

func (suite *RequestWorkflowTestSuite) TestSubmitJoinWithoutProfileScoresZero() {
	request := suite.submitJoin(suite.producer.ID)

	suite.Require().NotNil(request.Payload.Join)
	assert.Equal(suite.T(), 0, request.Payload.Join.MatchScore)
}

func (suite *RequestWorkflowTestSuite) TestSubmitJoinGuards() {
	// Founder cannot apply to their own cooperative.
	_, err := suite.service.SubmitJoin(suite.founder.ID, &SubmitJoinRequest{
		CooperativeID: suite.coop.ID,
		Motivation:    "Soy el fundador",
	})
	assert.True(suite.T(), IsValidation(err))

	// Unknown cooperative.
	_, err = suite.service.SubmitJoin(suite.producer.ID, &SubmitJoinRequest{
		CooperativeID: uuid.New(),
		Motivation:    "Quiero unirme",
	})
	assert.True(suite.T(), IsValidation(err))

	// Cooperative not seeking members.
	closed := suite.store.AddCooperative(models.Cooperative{
		Name:           "Cerrada",
		Categories:     []string{"Café"},
		SeekingMembers: false,
		Status:         models.CooperativeStatusActive,
		FounderID:      suite.founder.ID,
	})
	_, err = suite.service.SubmitJoin(suite.producer.ID, &SubmitJoinRequest{
		CooperativeID: closed.ID,
		Motivation:    "Quiero unirme",
	})
	assert.True(suite.T(), IsValidation(err))

	// Duplicate open request for the same cooperative.
	suite.submitJoin(suite.producer.ID)
	_, err = suite.service.SubmitJoin(suite.producer.ID, &SubmitJoinRequest{
		CooperativeID: suite.coop.ID,
		Motivation:    "Segunda solicitud",
	})
	assert.True(suite.T(), IsValidation(err))
}

func (suite *RequestWorkflowTestSuite) TestSuspendedRequesterCannotSubmit() {
	suspended := suite.store.AddUser(models.User{
		Username: "baja",
		Email:    "baja@example.com",
		UserType: models.UserTypeProductor,
		Status:   models.UserStatusSuspended,
	})

	_, err := suite.service.SubmitJoin(suspended.ID, &SubmitJoinRequest{
		CooperativeID: suite.coop.ID,
		Motivation:    "Quiero unirme",
	})
	assert.True(suite.T(), IsValidation(err))
}

func (suite *RequestWorkflowTestSuite) TestMarkInReviewIsOptional() {
	request := suite.submitJoin(suite.producer.ID)

	reviewed, err := suite.service.MarkInReview(request.ID, suite.admin.ID)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), models.RequestStatusInReview, reviewed.Status)
	suite.Require().NotNil(reviewed.ReviewerID)
	assert.Equal(suite.T(), suite.admin.ID, *reviewed.ReviewerID)
	assert.Nil(suite.T(), reviewed.ReviewedAt)

	// A second claim loses the compare-and-set and reports the conflict.
	_, err = suite.service.MarkInReview(request.ID, suite.admin.ID)
	assert.True(suite.T(), IsStateConflict(err))

	// The claimed request can still be approved.
	result, err := suite.service.Approve(request.ID, suite.admin.ID, nil)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), models.RequestStatusApproved, result.Request.Status)
}

func (suite *RequestWorkflowTestSuite) TestApproveCreateInstantiatesCooperative() {
	request := suite.submitCreate(suite.producer.ID)

	result, err := suite.service.Approve(request.ID, suite.admin.ID, &ApproveRequest{Notes: "Documentación completa"})
	suite.Require().NoError(err)

	assert.Equal(suite.T(), models.RequestStatusApproved, result.Request.Status)
	assert.NotNil(suite.T(), result.Request.ReviewedAt)

	suite.Require().NotNil(result.Cooperative)
	assert.Equal(suite.T(), "Miel de la Sierra", result.Cooperative.Name)
	assert.Equal(suite.T(), models.CooperativeStatusActive, result.Cooperative.Status)
	assert.Equal(suite.T(), 1, result.Cooperative.MemberCount)
	assert.True(suite.T(), result.Cooperative.SeekingMembers)
	assert.Equal(suite.T(), suite.producer.ID, result.Cooperative.FounderID)

	suite.Require().NotNil(result.Membership)
	assert.Equal(suite.T(), models.MembershipRoleFounder, result.Membership.Role)

	user, err := suite.store.Users().GetByID(suite.producer.ID)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), models.UserTypeCooperativa, user.UserType)
}

func (suite *RequestWorkflowTestSuite) TestApproveJoinAddsMemberAndIncrementsCount() {
	suite.addProfile(suite.producer.ID)
	request := suite.submitJoin(suite.producer.ID)

	result, err := suite.service.Approve(request.ID, suite.admin.ID, nil)
	suite.Require().NoError(err)

	suite.Require().NotNil(result.Membership)
	assert.Equal(suite.T(), models.MembershipRoleMember, result.Membership.Role)
	assert.Equal(suite.T(), suite.coop.ID, result.Membership.CooperativeID)

	suite.Require().NotNil(result.Cooperative)
	assert.Equal(suite.T(), 10, result.Cooperative.MemberCount)

	user, err := suite.store.Users().GetByID(suite.producer.ID)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), models.UserTypeCooperativa, user.UserType)

	active, err := suite.store.Memberships().HasActive(suite.coop.ID, suite.producer.ID)
	suite.Require().NoError(err)
	assert.True(suite.T(), active)
}

func (suite *RequestWorkflowTestSuite) TestFounderReviewsJoinRequestsForOwnCooperative() {
	request := suite.submitJoin(suite.producer.ID)

	result, err := suite.service.Approve(request.ID, suite.founder.ID, nil)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), models.RequestStatusApproved, result.Request.Status)
}

func (suite *RequestWorkflowTestSuite) TestOnlyAdminsReviewCreateRequests() {
	request := suite.submitCreate(suite.producer.ID)

	_, err := suite.service.Approve(request.ID, suite.founder.ID, nil)
	assert.True(suite.T(), IsValidation(err))

	_, err = suite.service.Reject(request.ID, suite.producer.ID, &RejectRequest{
		Notes: "No deberías poder hacer esto",
	})
	assert.True(suite.T(), IsValidation(err))
}

func (suite *RequestWorkflowTestSuite) TestTerminalRequestsAreImmutable() {
	request := suite.submitJoin(suite.producer.ID)

	_, err := suite.service.Approve(request.ID, suite.admin.ID, nil)
	suite.Require().NoError(err)

	_, err = suite.service.Approve(request.ID, suite.admin.ID, nil)
	suite.Require().Error(err)
	var conflict *StateConflictError
	suite.Require().True(errors.As(err, &conflict))
	assert.Equal(suite.T(), models.RequestStatusApproved, conflict.Status)

	_, err = suite.service.Reject(request.ID, suite.admin.ID, &RejectRequest{
		Notes: "Cambié de opinión sobre esta solicitud",
	})
	assert.True(suite.T(), IsStateConflict(err))

	_, err = suite.service.MarkInReview(request.ID, suite.admin.ID)
	assert.True(suite.T(), IsStateConflict(err))
}

func (suite *RequestWorkflowTestSuite) TestRejectRequiresSubstantiveNotes() {
	request := suite.submitJoin(suite.producer.ID)

	_, err := suite.service.Reject(request.ID, suite.admin.ID, nil)
	assert.True(suite.T(), IsValidation(err))

	_, err = suite.service.Reject(request.ID, suite.admin.ID, &RejectRequest{Notes: "corto"})
	assert.True(suite.T(), IsValidation(err))

	// Request is untouched by the failed attempts.
	current, err := suite.service.GetRequest(request.ID)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), models.RequestStatusPending, current.Status)
}

func (suite *RequestWorkflowTestSuite) TestRejectLeavesEntitiesUntouched() {
	request := suite.submitJoin(suite.producer.ID)

	rejected, err := suite.service.Reject(request.ID, suite.admin.ID, &RejectRequest{
		Notes: "La cooperativa está enfocada en otra región",
	})
	suite.Require().NoError(err)
	assert.Equal(suite.T(), models.RequestStatusRejected, rejected.Status)
	assert.Equal(suite.T(), "La cooperativa está enfocada en otra región", rejected.ReviewNotes)

	coop, err := suite.store.Cooperatives().GetByID(suite.coop.ID)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), 9, coop.MemberCount)

	active, err := suite.store.Memberships().HasActive(suite.coop.ID, suite.producer.ID)
	suite.Require().NoError(err)
	assert.False(suite.T(), active)

	user, err := suite.store.Users().GetByID(suite.producer.ID)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), models.UserTypeProductor, user.UserType)
}

func (suite *RequestWorkflowTestSuite) TestRejectedRequesterMayReapply() {
	request := suite.submitJoin(suite.producer.ID)

	_, err := suite.service.Reject(request.ID, suite.admin.ID, &RejectRequest{
		Notes: "Falta información sobre tu producción",
	})
	suite.Require().NoError(err)

	again := suite.submitJoin(suite.producer.ID)
	assert.Equal(suite.T(), models.RequestStatusPending, again.Status)
}

func (suite *RequestWorkflowTestSuite) TestApprovalRollsBackOnPersistenceFailure() {
	request := suite.submitJoin(suite.producer.ID)

	flaky := &flakyStore{Store: suite.store, failMemberships: true}
	service := NewRequestService(flaky, nil)

	_, err := service.Approve(request.ID, suite.admin.ID, nil)
	suite.Require().Error(err)
	assert.True(suite.T(), IsPersistence(err))

	// The whole approval rolled back: status, counter and role are untouched.
	current, err := suite.store.Requests().GetByID(request.ID)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), models.RequestStatusPending, current.Status)

	coop, err := suite.store.Cooperatives().GetByID(suite.coop.ID)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), 9, coop.MemberCount)

	user, err := suite.store.Users().GetByID(suite.producer.ID)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), models.UserTypeProductor, user.UserType)

	// Retrying against a healthy store succeeds.
	result, err := suite.service.Approve(request.ID, suite.admin.ID, nil)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), 10, result.Cooperative.MemberCount)
}

func (suite *RequestWorkflowTestSuite) TestConcurrentApprovalResolvesExactlyOnce() {
	request := suite.submitJoin(suite.producer.ID)

	const reviewers = 8
	var wg sync.WaitGroup
	results := make(chan error, reviewers)

	for i := 0; i < reviewers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := suite.service.Approve(request.ID, suite.admin.ID, nil)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var successes, conflicts int
	for err := range results {
		switch {
		case err == nil:
			successes++
		case IsStateConflict(err):
			conflicts++
		default:
			suite.T().Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(suite.T(), 1, successes)
	assert.Equal(suite.T(), reviewers-1, conflicts)

	// The side effects applied exactly once.
	coop, err := suite.store.Cooperatives().GetByID(suite.coop.ID)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), 10, coop.MemberCount)
}

func (suite *RequestWorkflowTestSuite) TestListByRequesterNewestFirst() {
	suite.submitJoin(suite.producer.ID)
	suite.submitCreate(suite.producer.ID)

	requests, err := suite.service.ListByRequester(suite.producer.ID)
	suite.Require().NoError(err)
	suite.Require().Len(requests, 2)
	assert.Equal(suite.T(), models.RequestKindCreate, requests[0].Kind)
	assert.Equal(suite.T(), models.RequestKindJoin, requests[1].Kind)
}

func TestRequestWorkflowSuite(t *testing.T) {
	suite.Run(t, new(RequestWorkflowTestSuite))
}

// flakyStore wraps a Store and fails membership writes, for exercising
// transactional rollback.
type flakyStore struct {
	repository.Store
	failMemberships bool
}

func (f *flakyStore) InTransaction(fn func(repository.Store) error) error {
	return f.Store.InTransaction(func(tx repository.Store) error {
		return fn(&flakyStore{Store: tx, failMemberships: f.failMemberships})
	})
}

func (f *flakyStore) Memberships() repository.MembershipRepository {
	if f.failMemberships {
		return failingMemberships{inner: f.Store.Memberships()}
	}
	return f.Store.Memberships()
}

type failingMemberships struct {
	inner repository.MembershipRepository
}

func (r failingMemberships) Create(record *models.MembershipRecord) error {
	return errors.New("simulated write failure")
}

func (r failingMemberships) HasActive(cooperativeID, userID uuid.UUID) (bool, error) {
	return r.inner.HasActive(cooperativeID, userID)
}

func (r failingMemberships) ListByUser(userID uuid.UUID) ([]models.MembershipRecord, error) {
	return r.inner.ListByUser(userID)
}
