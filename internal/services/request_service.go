// internal/services/request_service.go
package services

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/campolink/campolink-backend/internal/matching"
	"github.com/campolink/campolink-backend/internal/models"
	"github.com/campolink/campolink-backend/internal/repository"
	"github.com/campolink/campolink-backend/internal/utils"
)

// RequestService is the workflow engine for cooperative requests. It is the
// sole writer of cooperatives, memberships and request records, and applies
// every approval as one atomic unit: request stamping, entity creation,
// member counter and role promotion either all commit or none do.
type RequestService struct {
	store               repository.Store
	notificationService *NotificationService
}

type SubmitCreateRequest struct {
	Name           string   `json:"name" validate:"required"`
	Description    string   `json:"description,omitempty"`
	Categories     []string `json:"categories" validate:"required,min=1"`
	Region         string   `json:"region,omitempty"`
	Products       []string `json:"products" validate:"required,min=1"`
	CapacityBucket string   `json:"capacity_bucket,omitempty"`
	MemberTarget   int      `json:"member_target,omitempty" validate:"omitempty,min=2"`
}

type SubmitJoinRequest struct {
	CooperativeID uuid.UUID `json:"cooperative_id" validate:"required"`
	Motivation    string    `json:"motivation" validate:"required"`
}

type ApproveRequest struct {
	Notes string `json:"notes,omitempty"`
}

type RejectRequest struct {
	Notes string `json:"notes" validate:"required,min=10"`
}

// ApprovalResult carries the updated request plus the entities an approval
// instantiated; the notification/UI layer renders it, the engine does not
// send anything itself.
type ApprovalResult struct {
	Request     *models.CooperativeRequest `json:"request"`
	Cooperative *models.Cooperative        `json:"cooperative,omitempty"`
	Membership  *models.MembershipRecord   `json:"membership,omitempty"`
}

var openStatuses = []models.RequestStatus{
	models.RequestStatusPending,
	models.RequestStatusInReview,
}

func NewRequestService(store repository.Store, notificationService *NotificationService) *RequestService {
	return &RequestService{
		store:               store,
		notificationService: notificationService,
	}
}

// SubmitCreate records a proposal to found a new cooperative. Nothing but
// the request row is created; the cooperative itself is instantiated on
// approval.
func (s *RequestService) SubmitCreate(requesterID uuid.UUID, req *SubmitCreateRequest) (*models.CooperativeRequest, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, validationFromStruct(err)
	}

	requester, err := s.activeUser(requesterID)
	if err != nil {
		return nil, err
	}

	open, err := s.store.Requests().CountOpen(requesterID, models.RequestKindCreate, nil)
	if err != nil {
		return nil, persistErr("count open create requests", err)
	}
	if open > 0 {
		return nil, newValidationError("", "you already have an open cooperative creation request")
	}

	request := &models.CooperativeRequest{
		Kind:            models.RequestKindCreate,
		RequesterID:     requester.ID,
		RequesterName:   requester.DisplayName,
		RequesterEmail:  requester.Email,
		CooperativeName: req.Name,
		Payload: models.RequestPayload{
			Create: &models.CooperativeDraft{
				Name:           req.Name,
				Description:    req.Description,
				Categories:     req.Categories,
				Region:         req.Region,
				Products:       req.Products,
				CapacityBucket: req.CapacityBucket,
				MemberTarget:   req.MemberTarget,
			},
		},
		Status:      models.RequestStatusPending,
		SubmittedAt: time.Now(),
	}

	if err := s.store.Requests().Create(request); err != nil {
		return nil, persistErr("create request", err)
	}

	return request, nil
}

// SubmitJoin records a proposal to join an existing cooperative. The match
// score and the producer profile are snapshotted into the payload at
// submission time for later display; they are not recomputed on review.
func (s *RequestService) SubmitJoin(requesterID uuid.UUID, req *SubmitJoinRequest) (*models.CooperativeRequest, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, validationFromStruct(err)
	}

	requester, err := s.activeUser(requesterID)
	if err != nil {
		return nil, err
	}

	coop, err := s.store.Cooperatives().GetByID(req.CooperativeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newValidationError("cooperative_id", "cooperative not found")
		}
		return nil, persistErr("load cooperative", err)
	}

	if coop.Status != models.CooperativeStatusActive {
		return nil, newValidationError("cooperative_id", "cooperative is not active")
	}
	if !coop.SeekingMembers {
		return nil, newValidationError("cooperative_id", "cooperative is not seeking members")
	}
	if coop.FounderID == requesterID {
		return nil, newValidationError("cooperative_id", "you are the founder of this cooperative")
	}

	member, err := s.store.Memberships().HasActive(coop.ID, requesterID)
	if err != nil {
		return nil, persistErr("check membership", err)
	}
	if member {
		return nil, newValidationError("cooperative_id", "you are already a member of this cooperative")
	}

	open, err := s.store.Requests().CountOpen(requesterID, models.RequestKindJoin, &coop.ID)
	if err != nil {
		return nil, persistErr("count open join requests", err)
	}
	if open > 0 {
		return nil, newValidationError("cooperative_id", "you already have an open request for this cooperative")
	}

	details := &models.JoinDetails{Motivation: req.Motivation}
	profile, err := s.store.Profiles().GetByUserID(requesterID)
	switch {
	case err == nil:
		details.MatchScore = matching.Score(profile, coop)
		details.ProfileSnapshot = profile.Snapshot()
	case errors.Is(err, repository.ErrNotFound):
		// No onboarding profile yet: score snapshot stays 0.
	default:
		return nil, persistErr("load producer profile", err)
	}

	request := &models.CooperativeRequest{
		Kind:            models.RequestKindJoin,
		RequesterID:     requester.ID,
		RequesterName:   requester.DisplayName,
		RequesterEmail:  requester.Email,
		CooperativeID:   &coop.ID,
		CooperativeName: coop.Name,
		Payload:         models.RequestPayload{Join: details},
		Status:          models.RequestStatusPending,
		SubmittedAt:     time.Now(),
	}

	if err := s.store.Requests().Create(request); err != nil {
		return nil, persistErr("create request", err)
	}

	return request, nil
}

// MarkInReview claims a pending request for review. The step is optional; a
// pending request may be approved or rejected directly.
func (s *RequestService) MarkInReview(requestID, reviewerID uuid.UUID) (*models.CooperativeRequest, error) {
	request, err := s.getRequest(requestID)
	if err != nil {
		return nil, err
	}
	if _, err := s.authorizeReviewer(request, reviewerID); err != nil {
		return nil, err
	}

	applied, err := s.store.Requests().Transition(requestID,
		[]models.RequestStatus{models.RequestStatusPending},
		repository.Transition{
			To:         models.RequestStatusInReview,
			ReviewerID: &reviewerID,
		})
	if err != nil {
		return nil, persistErr("mark request in review", err)
	}
	if !applied {
		return nil, s.conflict(requestID)
	}

	return s.getRequest(requestID)
}

// Approve resolves a pending or in-review request. All side effects run in
// one transaction guarded by a status compare-and-set, so two concurrent
// reviewers resolve it exactly once and a partial persistence failure leaves
// no trace. Member targets are advisory: approving a join request never
// re-checks the seeking flag or the target, over-subscription is allowed.
func (s *RequestService) Approve(requestID, reviewerID uuid.UUID, req *ApproveRequest) (*ApprovalResult, error) {
	if req == nil {
		req = &ApproveRequest{}
	}

	current, err := s.getRequest(requestID)
	if err != nil {
		return nil, err
	}
	if _, err := s.authorizeReviewer(current, reviewerID); err != nil {
		return nil, err
	}

	result := &ApprovalResult{}
	now := time.Now()

	err = s.store.InTransaction(func(tx repository.Store) error {
		applied, err := tx.Requests().Transition(requestID, openStatuses, repository.Transition{
			To:         models.RequestStatusApproved,
			ReviewerID: &reviewerID,
			ReviewedAt: &now,
			Notes:      req.Notes,
		})
		if err != nil {
			return persistErr("approve request", err)
		}
		if !applied {
			return conflictIn(tx, requestID)
		}

		request, err := tx.Requests().GetByID(requestID)
		if err != nil {
			return persistErr("reload request", err)
		}
		result.Request = request

		switch request.Kind {
		case models.RequestKindCreate:
			return s.applyCreateApproval(tx, request, result, now)
		case models.RequestKindJoin:
			return s.applyJoinApproval(tx, request, result, now)
		default:
			return newValidationError("kind", "unknown request kind")
		}
	})
	if err != nil {
		return nil, err
	}

	if s.notificationService != nil {
		go s.notificationService.NotifyRequestResolved(result.Request)
	}

	return result, nil
}

func (s *RequestService) applyCreateApproval(tx repository.Store, request *models.CooperativeRequest, result *ApprovalResult, now time.Time) error {
	draft := request.Payload.Create
	if draft == nil {
		return newValidationError("payload", "create request carries no cooperative draft")
	}

	coop := &models.Cooperative{
		Name:           draft.Name,
		Description:    draft.Description,
		Categories:     draft.Categories,
		Region:         draft.Region,
		Products:       draft.Products,
		CapacityBucket: draft.CapacityBucket,
		MemberTarget:   draft.MemberTarget,
		MemberCount:    1, // founder is always the first member
		SeekingMembers: true,
		Status:         models.CooperativeStatusActive,
		FounderID:      request.RequesterID,
	}
	if err := tx.Cooperatives().Create(coop); err != nil {
		return persistErr("create cooperative", err)
	}
	result.Cooperative = coop

	membership := &models.MembershipRecord{
		CooperativeID: coop.ID,
		UserID:        request.RequesterID,
		Role:          models.MembershipRoleFounder,
		Status:        models.MembershipStatusActive,
		JoinedAt:      now,
	}
	if err := tx.Memberships().Create(membership); err != nil {
		return persistErr("create founder membership", err)
	}
	result.Membership = membership

	if err := tx.Users().PromoteType(request.RequesterID, models.UserTypeCooperativa); err != nil {
		return persistErr("promote requester", err)
	}
	return nil
}

func (s *RequestService) applyJoinApproval(tx repository.Store, request *models.CooperativeRequest, result *ApprovalResult, now time.Time) error {
	if request.Payload.Join == nil {
		return newValidationError("payload", "join request carries no join details")
	}
	if request.CooperativeID == nil {
		return newValidationError("cooperative_id", "join request has no target cooperative")
	}

	membership := &models.MembershipRecord{
		CooperativeID: *request.CooperativeID,
		UserID:        request.RequesterID,
		Role:          models.MembershipRoleMember,
		Status:        models.MembershipStatusActive,
		JoinedAt:      now,
	}
	if err := tx.Memberships().Create(membership); err != nil {
		return persistErr("create membership", err)
	}
	result.Membership = membership

	if err := tx.Cooperatives().IncrementMemberCount(*request.CooperativeID, 1); err != nil {
		return persistErr("increment member count", err)
	}

	if err := tx.Users().PromoteType(request.RequesterID, models.UserTypeCooperativa); err != nil {
		return persistErr("promote requester", err)
	}

	coop, err := tx.Cooperatives().GetByID(*request.CooperativeID)
	if err != nil {
		return persistErr("reload cooperative", err)
	}
	result.Cooperative = coop
	return nil
}

// Reject resolves a request negatively. Notes are mandatory: a rejection
// without a stated reason is a validation error, not a UI nicety. No
// cooperative or membership entity is touched.
func (s *RequestService) Reject(requestID, reviewerID uuid.UUID, req *RejectRequest) (*models.CooperativeRequest, error) {
	if req == nil {
		return nil, newValidationError("notes", "rejection notes are required")
	}
	if err := utils.ValidateStruct(req); err != nil {
		return nil, validationFromStruct(err)
	}

	current, err := s.getRequest(requestID)
	if err != nil {
		return nil, err
	}
	if _, err := s.authorizeReviewer(current, reviewerID); err != nil {
		return nil, err
	}

	now := time.Now()
	applied, err := s.store.Requests().Transition(requestID, openStatuses, repository.Transition{
		To:         models.RequestStatusRejected,
		ReviewerID: &reviewerID,
		ReviewedAt: &now,
		Notes:      req.Notes,
	})
	if err != nil {
		return nil, persistErr("reject request", err)
	}
	if !applied {
		return nil, s.conflict(requestID)
	}

	request, err := s.getRequest(requestID)
	if err != nil {
		return nil, err
	}

	if s.notificationService != nil {
		go s.notificationService.NotifyRequestResolved(request)
	}

	return request, nil
}

func (s *RequestService) GetRequest(requestID uuid.UUID) (*models.CooperativeRequest, error) {
	return s.getRequest(requestID)
}

// CanReview reports whether the user may resolve the request under the same
// policy Approve and Reject enforce: admins always, the target cooperative's
// founder for join requests.
func (s *RequestService) CanReview(request *models.CooperativeRequest, userID uuid.UUID) bool {
	_, err := s.authorizeReviewer(request, userID)
	return err == nil
}

func (s *RequestService) ListByRequester(requesterID uuid.UUID) ([]models.CooperativeRequest, error) {
	requests, err := s.store.Requests().ListByRequester(requesterID)
	if err != nil {
		return nil, persistErr("list requests", err)
	}
	return requests, nil
}

func (s *RequestService) getRequest(requestID uuid.UUID) (*models.CooperativeRequest, error) {
	request, err := s.store.Requests().GetByID(requestID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newValidationError("request_id", "request not found")
		}
		return nil, persistErr("load request", err)
	}
	return request, nil
}

func (s *RequestService) activeUser(userID uuid.UUID) (*models.User, error) {
	user, err := s.store.Users().GetByID(userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newValidationError("requester", "user not found")
		}
		return nil, persistErr("load user", err)
	}
	if user.Status != models.UserStatusActive {
		return nil, newValidationError("requester", "account is not active")
	}
	return user, nil
}

// authorizeReviewer allows admins to resolve any request and cooperative
// founders to resolve join requests targeting their own cooperative.
func (s *RequestService) authorizeReviewer(request *models.CooperativeRequest, reviewerID uuid.UUID) (*models.User, error) {
	reviewer, err := s.activeUser(reviewerID)
	if err != nil {
		return nil, err
	}
	if reviewer.UserType == models.UserTypeAdmin {
		return reviewer, nil
	}

	if request.Kind == models.RequestKindJoin && request.CooperativeID != nil {
		coop, err := s.store.Cooperatives().GetByID(*request.CooperativeID)
		if err == nil && coop.FounderID == reviewerID {
			return reviewer, nil
		}
	}

	return nil, newValidationError("reviewer", "not authorized to review this request")
}

// conflict builds a StateConflictError carrying the request's current
// persisted status so the caller can decide what to do.
func (s *RequestService) conflict(requestID uuid.UUID) error {
	return conflictIn(s.store, requestID)
}

func conflictIn(store repository.Store, requestID uuid.UUID) error {
	request, err := store.Requests().GetByID(requestID)
	if err != nil {
		return &StateConflictError{RequestID: requestID}
	}
	return &StateConflictError{RequestID: requestID, Status: request.Status}
}
