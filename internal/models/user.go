// internal/models/user.go
package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/campolink/campolink-backend/internal/utils"
)

type User struct {
	BaseModel
	Username             string     `json:"username" gorm:"uniqueIndex;size:50;not null"`
	Email                string     `json:"email" gorm:"uniqueIndex;size:255;not null"`
	EmailVerified        bool       `json:"email_verified" gorm:"default:false"`
	VerificationCodeHash string     `json:"-" gorm:"size:64"`
	PasswordHash         string     `json:"-" gorm:"size:255;not null"`
	DisplayName          string     `json:"display_name" gorm:"size:100"`
	UserType             UserType   `json:"user_type" gorm:"type:varchar(20);not null"`
	Status               UserStatus `json:"status" gorm:"type:varchar(20);default:'active'"`
	ProfileData          JSONB      `json:"profile_data" gorm:"type:jsonb"`
	LastLoginAt          *time.Time `json:"last_login_at"`

	// Relationships
	ProducerProfile *ProducerProfile     `json:"producer_profile,omitempty" gorm:"foreignKey:UserID"`
	Memberships     []MembershipRecord   `json:"memberships,omitempty" gorm:"foreignKey:UserID"`
	Requests        []CooperativeRequest `json:"requests,omitempty" gorm:"foreignKey:RequesterID"`
}

func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}

// SetVerificationCode stores only the hash; the plain code goes out by email.
func (u *User) SetVerificationCode(code string) {
	u.VerificationCodeHash = utils.HashString(code)
}

func (u *User) CheckVerificationCode(code string) bool {
	return u.VerificationCodeHash != "" && u.VerificationCodeHash == utils.HashString(code)
}
