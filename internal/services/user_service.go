// internal/services/user_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/campolink/campolink-backend/internal/models"
	"github.com/campolink/campolink-backend/internal/utils"
)

type UserService struct {
	db *gorm.DB
}

type UpdateUserProfileRequest struct {
	Username    string                 `json:"username,omitempty" validate:"omitempty,username"`
	DisplayName string                 `json:"display_name,omitempty" validate:"omitempty,max=100"`
	ProfileData map[string]interface{} `json:"profile_data,omitempty"`
}

// ProducerProfileRequest is the onboarding write path for the matching
// profile. Lists may be empty; the scorer degrades gracefully.
type ProducerProfileRequest struct {
	Products       []string            `json:"products,omitempty"`
	Categories     []string            `json:"categories,omitempty"`
	Region         string              `json:"region,omitempty" validate:"omitempty,max=100"`
	CapacityBucket string              `json:"capacity_bucket,omitempty" validate:"omitempty,max=50"`
	Goal           models.ProducerGoal `json:"goal,omitempty" validate:"omitempty,oneof=create_cooperative join_cooperative sell_individually"`
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

func (s *UserService) GetUserByID(userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("user not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &user, nil
}

func (s *UserService) GetPublicProfile(userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.Select("id, username, display_name, user_type, profile_data, created_at").
		First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("user not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &user, nil
}

func (s *UserService) UpdateProfile(userID uuid.UUID, req *UpdateUserProfileRequest) (*models.User, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, validationFromStruct(err)
	}

	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}

	// Check username uniqueness if updating
	if req.Username != "" && req.Username != user.Username {
		var existingUser models.User
		if err := s.db.Where("username = ? AND id != ?", req.Username, userID).First(&existingUser).Error; err == nil {
			return nil, newValidationError("username", "username already taken")
		}
		user.Username = req.Username
	}

	if req.DisplayName != "" {
		user.DisplayName = req.DisplayName
	}

	if req.ProfileData != nil {
		if user.ProfileData == nil {
			user.ProfileData = make(models.JSONB)
		}
		// Merge with existing profile data
		for key, value := range req.ProfileData {
			user.ProfileData[key] = value
		}
	}

	if err := s.db.Save(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return &user, nil
}

// UpsertProducerProfile creates or replaces the user's matching profile.
// Only producers carry one.
func (s *UserService) UpsertProducerProfile(userID uuid.UUID, req *ProducerProfileRequest) (*models.ProducerProfile, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, validationFromStruct(err)
	}

	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("user not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	var profile models.ProducerProfile
	err := s.db.Where("user_id = ?", userID).First(&profile).Error
	switch {
	case err == nil:
		// update in place
	case errors.Is(err, gorm.ErrRecordNotFound):
		profile = models.ProducerProfile{UserID: userID}
	default:
		return nil, fmt.Errorf("database error: %w", err)
	}

	profile.Products = req.Products
	profile.Categories = req.Categories
	profile.Region = req.Region
	profile.CapacityBucket = req.CapacityBucket
	if req.Goal != "" {
		profile.Goal = req.Goal
	}

	if err := s.db.Save(&profile).Error; err != nil {
		return nil, fmt.Errorf("failed to save producer profile: %w", err)
	}

	return &profile, nil
}

func (s *UserService) GetProducerProfile(userID uuid.UUID) (*models.ProducerProfile, error) {
	var profile models.ProducerProfile
	if err := s.db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newValidationError("profile", "producer profile not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &profile, nil
}

// GetMemberships lists the user's cooperative memberships with the
// cooperative preloaded.
func (s *UserService) GetMemberships(userID uuid.UUID) ([]models.MembershipRecord, error) {
	var records []models.MembershipRecord
	if err := s.db.Preload("Cooperative").
		Where("user_id = ?", userID).
		Order("joined_at ASC").
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch memberships: %w", err)
	}
	return records, nil
}
