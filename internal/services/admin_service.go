// internal/services/admin_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/campolink/campolink-backend/internal/models"
	"github.com/campolink/campolink-backend/internal/utils"
)

// AdminService backs the review console: the request queue, platform
// stats and account moderation.
type AdminService struct {
	db                  *gorm.DB
	notificationService *NotificationService
}

type DashboardStats struct {
	Users        UserStats        `json:"users"`
	Cooperatives CooperativeStats `json:"cooperatives"`
	Requests     RequestStats     `json:"requests"`
}

type UserStats struct {
	Total      int64 `json:"total"`
	Productors int64 `json:"productors"`
	Members    int64 `json:"members"`
	NewToday   int64 `json:"new_today"`
}

type CooperativeStats struct {
	Total   int64 `json:"total"`
	Active  int64 `json:"active"`
	Seeking int64 `json:"seeking"`
}

type RequestStats struct {
	Total    int64 `json:"total"`
	Pending  int64 `json:"pending"`
	InReview int64 `json:"in_review"`
	Approved int64 `json:"approved"`
	Rejected int64 `json:"rejected"`
}

// AdminRequestFilter narrows the review queue. Zero values mean "any".
type AdminRequestFilter struct {
	utils.PaginationParams
	Status        *models.RequestStatus `json:"status,omitempty"`
	Kind          *models.RequestKind   `json:"kind,omitempty"`
	CooperativeID *uuid.UUID            `json:"cooperative_id,omitempty"`
}

func NewAdminService(db *gorm.DB, notificationService *NotificationService) *AdminService {
	return &AdminService{
		db:                  db,
		notificationService: notificationService,
	}
}

func (s *AdminService) GetDashboardStats() (*DashboardStats, error) {
	stats := &DashboardStats{}

	userModel := s.db.Model(&models.User{})
	userModel.Count(&stats.Users.Total)
	s.db.Model(&models.User{}).Where("user_type = ?", models.UserTypeProductor).Count(&stats.Users.Productors)
	s.db.Model(&models.User{}).Where("user_type = ?", models.UserTypeCooperativa).Count(&stats.Users.Members)
	today := time.Now().Truncate(24 * time.Hour)
	s.db.Model(&models.User{}).Where("created_at >= ?", today).Count(&stats.Users.NewToday)

	s.db.Model(&models.Cooperative{}).Count(&stats.Cooperatives.Total)
	s.db.Model(&models.Cooperative{}).Where("status = ?", models.CooperativeStatusActive).Count(&stats.Cooperatives.Active)
	s.db.Model(&models.Cooperative{}).
		Where("status = ? AND seeking_members = ?", models.CooperativeStatusActive, true).
		Count(&stats.Cooperatives.Seeking)

	s.db.Model(&models.CooperativeRequest{}).Count(&stats.Requests.Total)
	s.db.Model(&models.CooperativeRequest{}).Where("status = ?", models.RequestStatusPending).Count(&stats.Requests.Pending)
	s.db.Model(&models.CooperativeRequest{}).Where("status = ?", models.RequestStatusInReview).Count(&stats.Requests.InReview)
	s.db.Model(&models.CooperativeRequest{}).Where("status = ?", models.RequestStatusApproved).Count(&stats.Requests.Approved)
	s.db.Model(&models.CooperativeRequest{}).Where("status = ?", models.RequestStatusRejected).Count(&stats.Requests.Rejected)

	return stats, nil
}

// GetRequestQueue lists requests for review, oldest submissions first so
// the queue drains in order.
func (s *AdminService) GetRequestQueue(filter AdminRequestFilter) ([]models.CooperativeRequest, int64, error) {
	query := s.db.Model(&models.CooperativeRequest{})

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Kind != nil {
		query = query.Where("kind = ?", *filter.Kind)
	}
	if filter.CooperativeID != nil {
		query = query.Where("cooperative_id = ?", *filter.CooperativeID)
	}
	if filter.Search != "" {
		searchTerm := "%" + filter.Search + "%"
		query = query.Where("requester_name ILIKE ? OR cooperative_name ILIKE ?", searchTerm, searchTerm)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count requests: %w", err)
	}

	query = query.Order("submitted_at ASC")
	query = utils.ApplyPagination(query, filter.PaginationParams)

	var requests []models.CooperativeRequest
	if err := query.Preload("Requester").Find(&requests).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch requests: %w", err)
	}
	return requests, total, nil
}

func (s *AdminService) GetUsers(params utils.PaginationParams, userType *models.UserType, status *models.UserStatus) ([]models.User, int64, error) {
	query := s.db.Model(&models.User{})

	if userType != nil {
		query = query.Where("user_type = ?", *userType)
	}
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	if params.Search != "" {
		searchTerm := "%" + params.Search + "%"
		query = query.Where("username ILIKE ? OR email ILIKE ? OR display_name ILIKE ?",
			searchTerm, searchTerm, searchTerm)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	allowedSortFields := []string{"created_at", "updated_at", "username", "email", "last_login_at"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var users []models.User
	if err := query.Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch users: %w", err)
	}
	return users, total, nil
}

func (s *AdminService) UpdateUserStatus(userID, adminID uuid.UUID, status models.UserStatus, reason string) error {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("user not found")
		}
		return fmt.Errorf("database error: %w", err)
	}

	oldStatus := user.Status
	user.Status = status

	if err := s.db.Save(&user).Error; err != nil {
		return fmt.Errorf("failed to update user status: %w", err)
	}

	s.createAuditLog(&adminID, "user_status_change", "user", &userID,
		models.JSONB{"status": string(oldStatus)},
		models.JSONB{"status": string(status), "reason": reason})

	if s.notificationService != nil {
		title := "Estado de cuenta actualizado"
		message := fmt.Sprintf("El estado de tu cuenta cambió a %s.", status)
		if reason != "" {
			message += " Motivo: " + reason
		}
		go s.notificationService.Create(userID, NotificationTypeAccountStatus, title, message, models.JSONB{
			"old_status": string(oldStatus),
			"new_status": string(status),
		})
	}

	return nil
}

func (s *AdminService) GetAuditLogs(params utils.PaginationParams, action string) ([]models.AuditLog, int64, error) {
	query := s.db.Model(&models.AuditLog{})

	if action != "" {
		query = query.Where("action = ?", action)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count audit logs: %w", err)
	}

	query = utils.ApplySort(query, params, []string{"created_at"})
	query = utils.ApplyPagination(query, params)

	var logs []models.AuditLog
	if err := query.Preload("User").Find(&logs).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch audit logs: %w", err)
	}
	return logs, total, nil
}

func (s *AdminService) createAuditLog(userID *uuid.UUID, action, resourceType string, resourceID *uuid.UUID, oldValues, newValues models.JSONB) {
	log := &models.AuditLog{
		UserID:       userID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		OldValues:    oldValues,
		NewValues:    newValues,
	}
	s.db.Create(log)
}
