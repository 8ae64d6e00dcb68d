// internal/repository/gorm.go
package repository

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/campolink/campolink-backend/internal/database"
	"github.com/campolink/campolink-backend/internal/models"
)

// gormStore backs the Store contract with GORM/PostgreSQL. InTransaction
// runs on database.WithTransaction, so every repository inside the closure
// shares one transaction handle.
type gormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Users() UserRepository               { return gormUsers{s.db} }
func (s *gormStore) Profiles() ProfileRepository         { return gormProfiles{s.db} }
func (s *gormStore) Cooperatives() CooperativeRepository { return gormCooperatives{s.db} }
func (s *gormStore) Memberships() MembershipRepository   { return gormMemberships{s.db} }
func (s *gormStore) Requests() RequestRepository         { return gormRequests{s.db} }

func (s *gormStore) InTransaction(fn func(Store) error) error {
	return database.WithTransaction(s.db, func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}

func translateErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

type gormUsers struct{ db *gorm.DB }

func (r gormUsers) GetByID(id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, translateErr(err)
	}
	return &user, nil
}

func (r gormUsers) PromoteType(id uuid.UUID, userType models.UserType) error {
	res := r.db.Model(&models.User{}).Where("id = ?", id).Update("user_type", userType)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

type gormProfiles struct{ db *gorm.DB }

func (r gormProfiles) GetByUserID(userID uuid.UUID) (*models.ProducerProfile, error) {
	var profile models.ProducerProfile
	if err := r.db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, translateErr(err)
	}
	return &profile, nil
}

type gormCooperatives struct{ db *gorm.DB }

func (r gormCooperatives) Create(coop *models.Cooperative) error {
	return r.db.Create(coop).Error
}

func (r gormCooperatives) GetByID(id uuid.UUID) (*models.Cooperative, error) {
	var coop models.Cooperative
	if err := r.db.First(&coop, id).Error; err != nil {
		return nil, translateErr(err)
	}
	return &coop, nil
}

func (r gormCooperatives) ListCandidates() ([]models.Cooperative, error) {
	var coops []models.Cooperative
	err := r.db.
		Where("status = ? AND seeking_members = ?", models.CooperativeStatusActive, true).
		Order("created_at ASC, id ASC").
		Find(&coops).Error
	if err != nil {
		return nil, err
	}
	return coops, nil
}

func (r gormCooperatives) IncrementMemberCount(id uuid.UUID, delta int) error {
	res := r.db.Model(&models.Cooperative{}).
		Where("id = ?", id).
		UpdateColumn("member_count", gorm.Expr("member_count + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

type gormMemberships struct{ db *gorm.DB }

func (r gormMemberships) Create(record *models.MembershipRecord) error {
	return r.db.Create(record).Error
}

func (r gormMemberships) HasActive(cooperativeID, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.Model(&models.MembershipRecord{}).
		Where("cooperative_id = ? AND user_id = ? AND status = ?",
			cooperativeID, userID, models.MembershipStatusActive).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r gormMemberships) ListByUser(userID uuid.UUID) ([]models.MembershipRecord, error) {
	var records []models.MembershipRecord
	err := r.db.Where("user_id = ?", userID).
		Order("joined_at ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

type gormRequests struct{ db *gorm.DB }

func (r gormRequests) Create(req *models.CooperativeRequest) error {
	return r.db.Create(req).Error
}

func (r gormRequests) GetByID(id uuid.UUID) (*models.CooperativeRequest, error) {
	var req models.CooperativeRequest
	if err := r.db.First(&req, id).Error; err != nil {
		return nil, translateErr(err)
	}
	return &req, nil
}

func (r gormRequests) ListByRequester(requesterID uuid.UUID) ([]models.CooperativeRequest, error) {
	var requests []models.CooperativeRequest
	err := r.db.Where("requester_id = ?", requesterID).
		Order("submitted_at DESC").
		Find(&requests).Error
	if err != nil {
		return nil, err
	}
	return requests, nil
}

func (r gormRequests) CountOpen(requesterID uuid.UUID, kind models.RequestKind, cooperativeID *uuid.UUID) (int64, error) {
	query := r.db.Model(&models.CooperativeRequest{}).
		Where("requester_id = ? AND kind = ? AND status IN ?",
			requesterID, kind,
			[]models.RequestStatus{models.RequestStatusPending, models.RequestStatusInReview})
	if cooperativeID != nil {
		query = query.Where("cooperative_id = ?", *cooperativeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r gormRequests) Transition(id uuid.UUID, from []models.RequestStatus, t Transition) (bool, error) {
	updates := map[string]interface{}{
		"status":      t.To,
		"reviewer_id": t.ReviewerID,
		"reviewed_at": t.ReviewedAt,
	}
	if t.Notes != "" {
		updates["review_notes"] = t.Notes
	}

	res := r.db.Model(&models.CooperativeRequest{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return false, fmt.Errorf("transition request %s: %w", id, res.Error)
	}
	return res.RowsAffected > 0, nil
}
