// internal/services/cooperative_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/campolink/campolink-backend/internal/models"
	"github.com/campolink/campolink-backend/internal/utils"
)

// CooperativeService serves the cooperative directory: browsing, detail and
// founder-side updates. Creation and membership changes go exclusively
// through the request workflow.
type CooperativeService struct {
	db *gorm.DB
}

type CooperativeSearchParams struct {
	utils.PaginationParams
	Region  string                    `json:"region,omitempty"`
	Seeking *bool                     `json:"seeking,omitempty"`
	Status  *models.CooperativeStatus `json:"status,omitempty"`
}

type UpdateCooperativeRequest struct {
	Description    *string  `json:"description,omitempty"`
	Products       []string `json:"products,omitempty"`
	Categories     []string `json:"categories,omitempty"`
	SeekingMembers *bool    `json:"seeking_members,omitempty"`
	MemberTarget   *int     `json:"member_target,omitempty" validate:"omitempty,min=0"`
}

func NewCooperativeService(db *gorm.DB) *CooperativeService {
	return &CooperativeService{db: db}
}

func (s *CooperativeService) SearchCooperatives(params CooperativeSearchParams) ([]models.Cooperative, int64, error) {
	query := s.db.Model(&models.Cooperative{})

	// Public searches only ever see active cooperatives; admins may filter
	// by any status explicitly.
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	} else {
		query = query.Where("status = ?", models.CooperativeStatusActive)
	}

	if params.Seeking != nil {
		query = query.Where("seeking_members = ?", *params.Seeking)
	}
	if params.Region != "" {
		query = query.Where("region ILIKE ?", "%"+params.Region+"%")
	}
	if params.Category != "" {
		query = query.Where("? = ANY(categories)", params.Category)
	}
	if params.Search != "" {
		searchTerm := "%" + params.Search + "%"
		query = query.Where("name ILIKE ? OR description ILIKE ?", searchTerm, searchTerm)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count cooperatives: %w", err)
	}

	allowedSortFields := []string{"created_at", "updated_at", "name", "member_count", "region"}
	query = utils.ApplySort(query, params.PaginationParams, allowedSortFields)
	query = utils.ApplyPagination(query, params.PaginationParams)

	var coops []models.Cooperative
	if err := query.Find(&coops).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch cooperatives: %w", err)
	}

	return coops, total, nil
}

func (s *CooperativeService) GetCooperative(id uuid.UUID) (*models.Cooperative, error) {
	var coop models.Cooperative
	if err := s.db.Preload("Founder").Preload("Members").Preload("Members.User").
		First(&coop, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newValidationError("id", "cooperative not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &coop, nil
}

// UpdateCooperative applies founder edits. Member count and status are not
// editable here: the workflow engine owns them.
func (s *CooperativeService) UpdateCooperative(id, actorID uuid.UUID, req *UpdateCooperativeRequest) (*models.Cooperative, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, validationFromStruct(err)
	}

	var coop models.Cooperative
	if err := s.db.First(&coop, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newValidationError("id", "cooperative not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if err := s.requireFounderOrAdmin(&coop, actorID); err != nil {
		return nil, err
	}

	if req.Description != nil {
		coop.Description = *req.Description
	}
	if req.Products != nil {
		coop.Products = req.Products
	}
	if req.Categories != nil {
		coop.Categories = req.Categories
	}
	if req.SeekingMembers != nil {
		coop.SeekingMembers = *req.SeekingMembers
	}
	if req.MemberTarget != nil {
		coop.MemberTarget = *req.MemberTarget
	}

	if err := s.db.Save(&coop).Error; err != nil {
		return nil, fmt.Errorf("failed to update cooperative: %w", err)
	}

	return &coop, nil
}

// DeactivateCooperative retires a cooperative. Records are never deleted;
// an inactive cooperative simply stops appearing in searches and matching.
func (s *CooperativeService) DeactivateCooperative(id, actorID uuid.UUID) error {
	var coop models.Cooperative
	if err := s.db.First(&coop, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return newValidationError("id", "cooperative not found")
		}
		return fmt.Errorf("database error: %w", err)
	}

	if err := s.requireFounderOrAdmin(&coop, actorID); err != nil {
		return err
	}

	coop.Status = models.CooperativeStatusInactive
	coop.SeekingMembers = false

	if err := s.db.Save(&coop).Error; err != nil {
		return fmt.Errorf("failed to deactivate cooperative: %w", err)
	}
	return nil
}

func (s *CooperativeService) GetMembers(id uuid.UUID) ([]models.MembershipRecord, error) {
	var coop models.Cooperative
	if err := s.db.First(&coop, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newValidationError("id", "cooperative not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	var members []models.MembershipRecord
	if err := s.db.Preload("User").
		Where("cooperative_id = ?", id).
		Order("joined_at ASC").
		Find(&members).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch members: %w", err)
	}
	return members, nil
}

func (s *CooperativeService) requireFounderOrAdmin(coop *models.Cooperative, actorID uuid.UUID) error {
	if coop.FounderID == actorID {
		return nil
	}
	var actor models.User
	if err := s.db.First(&actor, actorID).Error; err != nil {
		return newValidationError("actor", "not authorized to manage this cooperative")
	}
	if actor.UserType != models.UserTypeAdmin {
		return newValidationError("actor", "not authorized to manage this cooperative")
	}
	return nil
}
