// internal/models/membership.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// MembershipRecord is the authoritative join between users and cooperatives.
// At most one active record per (cooperative_id, user_id); a user may hold
// memberships in multiple cooperatives.
type MembershipRecord struct {
	BaseModel
	CooperativeID uuid.UUID        `json:"cooperative_id" gorm:"type:uuid;not null;uniqueIndex:idx_memberships_coop_user"`
	UserID        uuid.UUID        `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_memberships_coop_user"`
	Role          MembershipRole   `json:"role" gorm:"type:varchar(20);not null"`
	Status        MembershipStatus `json:"status" gorm:"type:varchar(20);default:'active'"`
	JoinedAt      time.Time        `json:"joined_at" gorm:"not null"`

	// Relationships
	Cooperative Cooperative `json:"cooperative,omitempty" gorm:"foreignKey:CooperativeID"`
	User        User        `json:"user,omitempty" gorm:"foreignKey:UserID"`
}
