// internal/services/notification_service.go
package services

import (
	"errors"
	"fmt"
	"net/smtp"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/campolink/campolink-backend/internal/config"
	"github.com/campolink/campolink-backend/internal/models"
	"github.com/campolink/campolink-backend/internal/utils"
)

// NotificationService turns workflow outcomes into user-visible messages.
// The workflow engine only hands over the resolved request; rendering and
// delivery (rows, optionally email) happen here.
type NotificationService struct {
	db  *gorm.DB
	cfg *config.Config
}

const (
	NotificationTypeRequestApproved = "request_approved"
	NotificationTypeRequestRejected = "request_rejected"
	NotificationTypeAccountStatus   = "account_status"
)

func NewNotificationService(db *gorm.DB, cfg *config.Config) *NotificationService {
	return &NotificationService{db: db, cfg: cfg}
}

// NotifyRequestResolved records a notification for the requester of an
// approved or rejected request. Called asynchronously after the workflow
// transaction commits; failures are logged, never propagated back into the
// workflow.
func (s *NotificationService) NotifyRequestResolved(request *models.CooperativeRequest) {
	if request == nil || !request.Status.IsTerminal() {
		return
	}

	var notifType, title, message string
	switch request.Status {
	case models.RequestStatusApproved:
		notifType = NotificationTypeRequestApproved
		if request.Kind == models.RequestKindCreate {
			title = "Cooperativa aprobada"
			message = fmt.Sprintf("Tu solicitud para crear la cooperativa %q fue aprobada.", request.CooperativeName)
		} else {
			title = "Solicitud aprobada"
			message = fmt.Sprintf("Tu solicitud para unirte a %q fue aprobada. Ya eres miembro.", request.CooperativeName)
		}
	case models.RequestStatusRejected:
		notifType = NotificationTypeRequestRejected
		title = "Solicitud rechazada"
		message = fmt.Sprintf("Tu solicitud sobre %q fue rechazada. Motivo: %s", request.CooperativeName, request.ReviewNotes)
	}

	notification := &models.Notification{
		UserID:  request.RequesterID,
		Type:    notifType,
		Title:   title,
		Message: message,
		Data: models.JSONB{
			"request_id": request.ID.String(),
			"kind":       string(request.Kind),
			"status":     string(request.Status),
			"notes":      request.ReviewNotes,
		},
	}

	if err := s.db.Create(notification).Error; err != nil {
		logrus.WithError(err).WithField("request_id", request.ID).
			Error("Failed to persist request resolution notification")
		return
	}

	if request.RequesterEmail != "" {
		if err := s.sendEmail(request.RequesterEmail, title, message); err != nil {
			logrus.WithError(err).WithField("request_id", request.ID).
				Warn("Failed to send request resolution email")
		}
	}
}

// SendVerificationEmail mails the registration confirmation link. Fire and
// forget: a failed delivery is logged and the account keeps working
// unverified.
func (s *NotificationService) SendVerificationEmail(user *models.User, code string) {
	if s.cfg == nil || user == nil {
		return
	}

	link := fmt.Sprintf("%s/verificar-correo?code=%s", s.cfg.Frontend.BaseURL, code)
	subject := "Confirma tu correo en CampoLink"
	body := fmt.Sprintf("Hola %s:\n\nConfirma tu dirección de correo abriendo este enlace:\n%s\n", user.DisplayName, link)

	if err := s.sendEmail(user.Email, subject, body); err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).
			Warn("Failed to send verification email")
	}
}

func (s *NotificationService) Create(userID uuid.UUID, notifType, title, message string, data models.JSONB) error {
	notification := &models.Notification{
		UserID:  userID,
		Type:    notifType,
		Title:   title,
		Message: message,
		Data:    data,
	}
	if err := s.db.Create(notification).Error; err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

func (s *NotificationService) ListForUser(userID uuid.UUID, params utils.PaginationParams) ([]models.Notification, int64, error) {
	query := s.db.Model(&models.Notification{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	query = utils.ApplySort(query, params, []string{"created_at"})
	query = utils.ApplyPagination(query, params)

	var notifications []models.Notification
	if err := query.Find(&notifications).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch notifications: %w", err)
	}
	return notifications, total, nil
}

func (s *NotificationService) MarkRead(id, userID uuid.UUID) error {
	res := s.db.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]interface{}{
			"is_read": true,
			"read_at": gorm.Expr("NOW()"),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to mark notification read: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return errors.New("notification not found")
	}
	return nil
}

func (s *NotificationService) MarkAllRead(userID uuid.UUID) error {
	err := s.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]interface{}{
			"is_read": true,
			"read_at": gorm.Expr("NOW()"),
		}).Error
	if err != nil {
		return fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return nil
}

// sendEmail delivers over plain SMTP when configured; a missing SMTP setup
// silently skips email, notification rows are always the source of truth.
func (s *NotificationService) sendEmail(to, subject, body string) error {
	if s.cfg == nil || s.cfg.Email.SMTPHost == "" || s.cfg.Email.SMTPUsername == "" {
		return nil
	}

	msg := fmt.Sprintf("From: %s <%s>\r\nTo: %s\r\nSubject: %s\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n%s\r\n",
		s.cfg.Email.FromName, s.cfg.Email.FromEmail, to, subject, body)

	auth := smtp.PlainAuth("", s.cfg.Email.SMTPUsername, s.cfg.Email.SMTPPassword, s.cfg.Email.SMTPHost)
	addr := s.cfg.Email.SMTPHost + ":" + s.cfg.Email.SMTPPort

	return smtp.SendMail(addr, auth, s.cfg.Email.FromEmail, []string{to}, []byte(msg))
}
