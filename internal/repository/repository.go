// internal/repository/repository.go
package repository

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/campolink/campolink-backend/internal/models"
)

// ErrNotFound is returned when a looked-up record does not exist, regardless
// of the backing store.
var ErrNotFound = errors.New("record not found")

// Store is the persistence contract the matching and request workflow code
// operates against. It owns no business logic.
//
// InTransaction runs fn against a store view whose writes become visible
// atomically when fn returns nil, and not at all when it returns an error.
// No intermediate state is observable by other callers.
type Store interface {
	Users() UserRepository
	Profiles() ProfileRepository
	Cooperatives() CooperativeRepository
	Memberships() MembershipRepository
	Requests() RequestRepository

	InTransaction(fn func(Store) error) error
}

type UserRepository interface {
	GetByID(id uuid.UUID) (*models.User, error)

	// PromoteType sets the account type of the user. Promotion is
	// one-way in practice; the repository does not enforce direction.
	PromoteType(id uuid.UUID, userType models.UserType) error
}

type ProfileRepository interface {
	GetByUserID(userID uuid.UUID) (*models.ProducerProfile, error)
}

type CooperativeRepository interface {
	Create(coop *models.Cooperative) error
	GetByID(id uuid.UUID) (*models.Cooperative, error)

	// ListCandidates returns active, member-seeking cooperatives in a
	// deterministic order (creation order) so that repeated ranking calls
	// over unchanged data are bit-identical.
	ListCandidates() ([]models.Cooperative, error)

	// IncrementMemberCount applies an atomic relative update to the
	// member counter. Never read-then-write.
	IncrementMemberCount(id uuid.UUID, delta int) error
}

type MembershipRepository interface {
	Create(record *models.MembershipRecord) error
	HasActive(cooperativeID, userID uuid.UUID) (bool, error)
	ListByUser(userID uuid.UUID) ([]models.MembershipRecord, error)
}

// Transition describes a status change stamped onto a request.
type Transition struct {
	To         models.RequestStatus
	ReviewerID *uuid.UUID
	ReviewedAt *time.Time
	Notes      string
}

type RequestRepository interface {
	Create(req *models.CooperativeRequest) error
	GetByID(id uuid.UUID) (*models.CooperativeRequest, error)
	ListByRequester(requesterID uuid.UUID) ([]models.CooperativeRequest, error)

	// CountOpen counts pending or in-review requests by the requester for
	// the given kind; for join requests, cooperativeID narrows the count
	// to one target cooperative.
	CountOpen(requesterID uuid.UUID, kind models.RequestKind, cooperativeID *uuid.UUID) (int64, error)

	// Transition performs a compare-and-set: the update applies only if
	// the current status is one of from, and reports whether it did.
	// A false return with nil error means a concurrent writer won.
	Transition(id uuid.UUID, from []models.RequestStatus, t Transition) (bool, error)
}
