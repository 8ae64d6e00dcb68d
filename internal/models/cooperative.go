// internal/models/cooperative.go
package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Cooperative is a producer group. It is created by an approved "create"
// request, mutated by approved "join" requests (member count) and by its
// founder, and deactivated rather than deleted.
type Cooperative struct {
	BaseModel
	Name           string            `json:"name" gorm:"size:255;not null"`
	Description    string            `json:"description" gorm:"type:text"`
	Categories     pq.StringArray    `json:"categories" gorm:"type:text[]"`
	Region         string            `json:"region" gorm:"size:100;index"`
	Products       pq.StringArray    `json:"products" gorm:"type:text[]"`
	CapacityBucket string            `json:"capacity_bucket" gorm:"size:50"`
	MemberCount    int               `json:"member_count" gorm:"default:0"`
	MemberTarget   int               `json:"member_target" gorm:"default:0"` // 0 = no target; advisory, never a hard cap
	SeekingMembers bool              `json:"seeking_members" gorm:"default:true;index"`
	Status         CooperativeStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	FounderID      uuid.UUID         `json:"founder_id" gorm:"type:uuid;not null;index"`

	// Relationships
	Founder User               `json:"founder,omitempty" gorm:"foreignKey:FounderID"`
	Members []MembershipRecord `json:"members,omitempty" gorm:"foreignKey:CooperativeID"`
}
