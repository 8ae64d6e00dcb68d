// internal/models/profile.go
package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// ProducerProfile is the onboarding output the matching engine consumes.
// It is written by the onboarding flow and read-only to the matching and
// request workflow code paths.
type ProducerProfile struct {
	BaseModel
	UserID         uuid.UUID      `json:"user_id" gorm:"type:uuid;uniqueIndex;not null"`
	Products       pq.StringArray `json:"products" gorm:"type:text[]"`
	Categories     pq.StringArray `json:"categories" gorm:"type:text[]"`
	Region         string         `json:"region" gorm:"size:100;index"`
	CapacityBucket string         `json:"capacity_bucket" gorm:"size:50"`
	Goal           ProducerGoal   `json:"goal" gorm:"type:varchar(30)"`

	// Relationships
	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// ProfileSnapshot is the immutable copy of a profile embedded in a join
// request payload at submission time.
type ProfileSnapshot struct {
	Products       []string     `json:"products"`
	Categories     []string     `json:"categories"`
	Region         string       `json:"region"`
	CapacityBucket string       `json:"capacity_bucket"`
	Goal           ProducerGoal `json:"goal"`
}

func (p *ProducerProfile) Snapshot() *ProfileSnapshot {
	return &ProfileSnapshot{
		Products:       append([]string(nil), p.Products...),
		Categories:     append([]string(nil), p.Categories...),
		Region:         p.Region,
		CapacityBucket: p.CapacityBucket,
		Goal:           p.Goal,
	}
}
