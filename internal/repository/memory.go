// internal/repository/memory.go
package repository

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/campolink/campolink-backend/internal/models"
)

// MemoryStore is the reference Store implementation. It keeps every entity
// by value in maps guarded by one mutex; InTransaction clones the state,
// applies fn to the clone, and swaps it in only on success, which gives the
// same all-or-nothing visibility as a database transaction.
//
// Entities are stored and returned by value. State methods never mutate
// shared slices or maps in place, so a shallow map clone is a correct
// snapshot.
type MemoryStore struct {
	mu    sync.Mutex
	state *memoryState
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: newMemoryState()}
}

func (s *MemoryStore) Users() UserRepository               { return memUsers{s} }
func (s *MemoryStore) Profiles() ProfileRepository         { return memProfiles{s} }
func (s *MemoryStore) Cooperatives() CooperativeRepository { return memCooperatives{s} }
func (s *MemoryStore) Memberships() MembershipRepository   { return memMemberships{s} }
func (s *MemoryStore) Requests() RequestRepository         { return memRequests{s} }

func (s *MemoryStore) InTransaction(fn func(Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := s.state.clone()
	if err := fn(&memoryTx{state: clone}); err != nil {
		return err
	}
	s.state = clone
	return nil
}

// Seed helpers for callers that need fixtures outside the Store contract
// (the production write paths for users and profiles live in the auth and
// onboarding services).

func (s *MemoryStore) AddUser(user models.User) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	stampBase(&user.BaseModel)
	s.state.users[user.ID] = user
	return user
}

func (s *MemoryStore) AddProfile(profile models.ProducerProfile) models.ProducerProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	stampBase(&profile.BaseModel)
	s.state.profiles[profile.UserID] = profile
	return profile
}

func (s *MemoryStore) AddCooperative(coop models.Cooperative) models.Cooperative {
	s.mu.Lock()
	defer s.mu.Unlock()
	stampBase(&coop.BaseModel)
	s.state.cooperatives[coop.ID] = coop
	s.state.cooperativeIDs = append(s.state.cooperativeIDs, coop.ID)
	return coop
}

// memoryTx serves a transaction over the cloned state. The caller of
// InTransaction holds the store mutex, so no locking happens here. Nested
// transactions share the same clone.
type memoryTx struct {
	state *memoryState
}

func (t *memoryTx) Users() UserRepository               { return memUsers{t} }
func (t *memoryTx) Profiles() ProfileRepository         { return memProfiles{t} }
func (t *memoryTx) Cooperatives() CooperativeRepository { return memCooperatives{t} }
func (t *memoryTx) Memberships() MembershipRepository   { return memMemberships{t} }
func (t *memoryTx) Requests() RequestRepository         { return memRequests{t} }

func (t *memoryTx) InTransaction(fn func(Store) error) error {
	return fn(t)
}

// stateHolder abstracts "locked live state" (MemoryStore) from "unlocked
// transaction clone" (memoryTx) for the repository wrappers below.
type stateHolder interface {
	withState(fn func(*memoryState) error) error
}

func (s *MemoryStore) withState(fn func(*memoryState) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.state)
}

func (t *memoryTx) withState(fn func(*memoryState) error) error {
	return fn(t.state)
}

type memUsers struct{ h stateHolder }

func (r memUsers) GetByID(id uuid.UUID) (*models.User, error) {
	var user *models.User
	err := r.h.withState(func(s *memoryState) error {
		var err error
		user, err = s.getUser(id)
		return err
	})
	return user, err
}

func (r memUsers) PromoteType(id uuid.UUID, userType models.UserType) error {
	return r.h.withState(func(s *memoryState) error {
		return s.promoteUserType(id, userType)
	})
}

type memProfiles struct{ h stateHolder }

func (r memProfiles) GetByUserID(userID uuid.UUID) (*models.ProducerProfile, error) {
	var profile *models.ProducerProfile
	err := r.h.withState(func(s *memoryState) error {
		var err error
		profile, err = s.getProfile(userID)
		return err
	})
	return profile, err
}

type memCooperatives struct{ h stateHolder }

func (r memCooperatives) Create(coop *models.Cooperative) error {
	return r.h.withState(func(s *memoryState) error {
		return s.createCooperative(coop)
	})
}

func (r memCooperatives) GetByID(id uuid.UUID) (*models.Cooperative, error) {
	var coop *models.Cooperative
	err := r.h.withState(func(s *memoryState) error {
		var err error
		coop, err = s.getCooperative(id)
		return err
	})
	return coop, err
}

func (r memCooperatives) ListCandidates() ([]models.Cooperative, error) {
	var coops []models.Cooperative
	err := r.h.withState(func(s *memoryState) error {
		coops = s.listCandidateCooperatives()
		return nil
	})
	return coops, err
}

func (r memCooperatives) IncrementMemberCount(id uuid.UUID, delta int) error {
	return r.h.withState(func(s *memoryState) error {
		return s.incrementMemberCount(id, delta)
	})
}

type memMemberships struct{ h stateHolder }

func (r memMemberships) Create(record *models.MembershipRecord) error {
	return r.h.withState(func(s *memoryState) error {
		return s.createMembership(record)
	})
}

func (r memMemberships) HasActive(cooperativeID, userID uuid.UUID) (bool, error) {
	var active bool
	err := r.h.withState(func(s *memoryState) error {
		active = s.hasActiveMembership(cooperativeID, userID)
		return nil
	})
	return active, err
}

func (r memMemberships) ListByUser(userID uuid.UUID) ([]models.MembershipRecord, error) {
	var records []models.MembershipRecord
	err := r.h.withState(func(s *memoryState) error {
		records = s.listMembershipsByUser(userID)
		return nil
	})
	return records, err
}

type memRequests struct{ h stateHolder }

func (r memRequests) Create(req *models.CooperativeRequest) error {
	return r.h.withState(func(s *memoryState) error {
		return s.createRequest(req)
	})
}

func (r memRequests) GetByID(id uuid.UUID) (*models.CooperativeRequest, error) {
	var req *models.CooperativeRequest
	err := r.h.withState(func(s *memoryState) error {
		var err error
		req, err = s.getRequest(id)
		return err
	})
	return req, err
}

func (r memRequests) ListByRequester(requesterID uuid.UUID) ([]models.CooperativeRequest, error) {
	var requests []models.CooperativeRequest
	err := r.h.withState(func(s *memoryState) error {
		requests = s.listRequestsByRequester(requesterID)
		return nil
	})
	return requests, err
}

func (r memRequests) CountOpen(requesterID uuid.UUID, kind models.RequestKind, cooperativeID *uuid.UUID) (int64, error) {
	var count int64
	err := r.h.withState(func(s *memoryState) error {
		count = s.countOpenRequests(requesterID, kind, cooperativeID)
		return nil
	})
	return count, err
}

func (r memRequests) Transition(id uuid.UUID, from []models.RequestStatus, t Transition) (bool, error) {
	var applied bool
	err := r.h.withState(func(s *memoryState) error {
		applied = s.transitionRequest(id, from, t)
		return nil
	})
	return applied, err
}

// memoryState holds the actual data and logic. All methods assume the
// caller synchronizes access.
type memoryState struct {
	users          map[uuid.UUID]models.User
	profiles       map[uuid.UUID]models.ProducerProfile // keyed by user id
	cooperatives   map[uuid.UUID]models.Cooperative
	cooperativeIDs []uuid.UUID // insertion order
	memberships    map[uuid.UUID]models.MembershipRecord
	membershipIDs  []uuid.UUID
	requests       map[uuid.UUID]models.CooperativeRequest
	requestIDs     []uuid.UUID
}

func newMemoryState() *memoryState {
	return &memoryState{
		users:        make(map[uuid.UUID]models.User),
		profiles:     make(map[uuid.UUID]models.ProducerProfile),
		cooperatives: make(map[uuid.UUID]models.Cooperative),
		memberships:  make(map[uuid.UUID]models.MembershipRecord),
		requests:     make(map[uuid.UUID]models.CooperativeRequest),
	}
}

func (s *memoryState) clone() *memoryState {
	c := newMemoryState()
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.profiles {
		c.profiles[k] = v
	}
	for k, v := range s.cooperatives {
		c.cooperatives[k] = v
	}
	for k, v := range s.memberships {
		c.memberships[k] = v
	}
	for k, v := range s.requests {
		c.requests[k] = v
	}
	c.cooperativeIDs = append([]uuid.UUID(nil), s.cooperativeIDs...)
	c.membershipIDs = append([]uuid.UUID(nil), s.membershipIDs...)
	c.requestIDs = append([]uuid.UUID(nil), s.requestIDs...)
	return c
}

func stampBase(b *models.BaseModel) {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	now := time.Now()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now
}

func (s *memoryState) getUser(id uuid.UUID) (*models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

func (s *memoryState) promoteUserType(id uuid.UUID, userType models.UserType) error {
	user, ok := s.users[id]
	if !ok {
		return ErrNotFound
	}
	user.UserType = userType
	user.UpdatedAt = time.Now()
	s.users[id] = user
	return nil
}

func (s *memoryState) getProfile(userID uuid.UUID) (*models.ProducerProfile, error) {
	profile, ok := s.profiles[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return &profile, nil
}

func (s *memoryState) createCooperative(coop *models.Cooperative) error {
	stampBase(&coop.BaseModel)
	if _, exists := s.cooperatives[coop.ID]; exists {
		return fmt.Errorf("duplicate cooperative id %s", coop.ID)
	}
	s.cooperatives[coop.ID] = *coop
	s.cooperativeIDs = append(s.cooperativeIDs, coop.ID)
	return nil
}

func (s *memoryState) getCooperative(id uuid.UUID) (*models.Cooperative, error) {
	coop, ok := s.cooperatives[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &coop, nil
}

func (s *memoryState) listCandidateCooperatives() []models.Cooperative {
	coops := make([]models.Cooperative, 0, len(s.cooperativeIDs))
	for _, id := range s.cooperativeIDs {
		c := s.cooperatives[id]
		if c.Status == models.CooperativeStatusActive && c.SeekingMembers {
			coops = append(coops, c)
		}
	}
	return coops
}

func (s *memoryState) incrementMemberCount(id uuid.UUID, delta int) error {
	coop, ok := s.cooperatives[id]
	if !ok {
		return ErrNotFound
	}
	coop.MemberCount += delta
	coop.UpdatedAt = time.Now()
	s.cooperatives[id] = coop
	return nil
}

func (s *memoryState) createMembership(record *models.MembershipRecord) error {
	for _, id := range s.membershipIDs {
		m := s.memberships[id]
		if m.CooperativeID == record.CooperativeID && m.UserID == record.UserID {
			return fmt.Errorf("duplicate membership for user %s in cooperative %s",
				record.UserID, record.CooperativeID)
		}
	}
	stampBase(&record.BaseModel)
	s.memberships[record.ID] = *record
	s.membershipIDs = append(s.membershipIDs, record.ID)
	return nil
}

func (s *memoryState) hasActiveMembership(cooperativeID, userID uuid.UUID) bool {
	for _, id := range s.membershipIDs {
		m := s.memberships[id]
		if m.CooperativeID == cooperativeID && m.UserID == userID && m.Status == models.MembershipStatusActive {
			return true
		}
	}
	return false
}

func (s *memoryState) listMembershipsByUser(userID uuid.UUID) []models.MembershipRecord {
	var records []models.MembershipRecord
	for _, id := range s.membershipIDs {
		m := s.memberships[id]
		if m.UserID == userID {
			records = append(records, m)
		}
	}
	return records
}

func (s *memoryState) createRequest(req *models.CooperativeRequest) error {
	stampBase(&req.BaseModel)
	if _, exists := s.requests[req.ID]; exists {
		return fmt.Errorf("duplicate request id %s", req.ID)
	}
	s.requests[req.ID] = *req
	s.requestIDs = append(s.requestIDs, req.ID)
	return nil
}

func (s *memoryState) getRequest(id uuid.UUID) (*models.CooperativeRequest, error) {
	req, ok := s.requests[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &req, nil
}

func (s *memoryState) listRequestsByRequester(requesterID uuid.UUID) []models.CooperativeRequest {
	var requests []models.CooperativeRequest
	// newest first
	for i := len(s.requestIDs) - 1; i >= 0; i-- {
		req := s.requests[s.requestIDs[i]]
		if req.RequesterID == requesterID {
			requests = append(requests, req)
		}
	}
	return requests
}

func (s *memoryState) countOpenRequests(requesterID uuid.UUID, kind models.RequestKind, cooperativeID *uuid.UUID) int64 {
	var count int64
	for _, id := range s.requestIDs {
		req := s.requests[id]
		if req.RequesterID != requesterID || req.Kind != kind {
			continue
		}
		if req.Status != models.RequestStatusPending && req.Status != models.RequestStatusInReview {
			continue
		}
		if cooperativeID != nil {
			if req.CooperativeID == nil || *req.CooperativeID != *cooperativeID {
				continue
			}
		}
		count++
	}
	return count
}

func (s *memoryState) transitionRequest(id uuid.UUID, from []models.RequestStatus, t Transition) bool {
	req, ok := s.requests[id]
	if !ok {
		return false
	}

	eligible := false
	for _, status := range from {
		if req.Status == status {
			eligible = true
			break
		}
	}
	if !eligible {
		return false
	}

	req.Status = t.To
	req.ReviewerID = t.ReviewerID
	req.ReviewedAt = t.ReviewedAt
	if t.Notes != "" {
		req.ReviewNotes = t.Notes
	}
	req.UpdatedAt = time.Now()
	s.requests[id] = req
	return true
}
