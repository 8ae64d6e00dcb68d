// internal/models/request.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// CooperativeDraft holds the full set of fields a "create" request proposes.
// The cooperative itself is only instantiated on approval.
type CooperativeDraft struct {
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	Categories     []string `json:"categories"`
	Region         string   `json:"region"`
	Products       []string `json:"products"`
	CapacityBucket string   `json:"capacity_bucket"`
	MemberTarget   int      `json:"member_target"`
}

// JoinDetails holds the payload of a "join" request: the requester's
// motivation plus the profile and match score snapshotted at submission time.
type JoinDetails struct {
	Motivation      string           `json:"motivation"`
	MatchScore      int              `json:"match_score"`
	ProfileSnapshot *ProfileSnapshot `json:"profile_snapshot,omitempty"`
}

// RequestPayload is a tagged union keyed by the request kind: exactly one of
// Create or Join is set. Stored as JSONB.
type RequestPayload struct {
	Create *CooperativeDraft `json:"create,omitempty"`
	Join   *JoinDetails      `json:"join,omitempty"`
}

func (p RequestPayload) Value() (driver.Value, error) {
	return json.Marshal(p)
}

func (p *RequestPayload) Scan(value interface{}) error {
	if value == nil {
		*p = RequestPayload{}
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		if s, ok := value.(string); ok {
			bytes = []byte(s)
		} else {
			return errors.New("unsupported payload column type")
		}
	}

	return json.Unmarshal(bytes, p)
}

// CooperativeRequest is a producer's proposal to create or join a
// cooperative. Requester identity fields are snapshots taken at submission,
// not live joins. Records are never deleted; resolved requests are the audit
// trail of the workflow.
type CooperativeRequest struct {
	BaseModel
	Kind            RequestKind    `json:"kind" gorm:"type:varchar(10);not null;index"`
	RequesterID     uuid.UUID      `json:"requester_id" gorm:"type:uuid;not null;index"`
	RequesterName   string         `json:"requester_name" gorm:"size:100"`
	RequesterEmail  string         `json:"requester_email" gorm:"size:255"`
	CooperativeID   *uuid.UUID     `json:"cooperative_id" gorm:"type:uuid;index"`
	CooperativeName string         `json:"cooperative_name" gorm:"size:255"`
	Payload         RequestPayload `json:"payload" gorm:"type:jsonb"`
	Status          RequestStatus  `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	SubmittedAt     time.Time      `json:"submitted_at" gorm:"not null"`
	ReviewerID      *uuid.UUID     `json:"reviewer_id" gorm:"type:uuid"`
	ReviewedAt      *time.Time     `json:"reviewed_at"`
	ReviewNotes     string         `json:"review_notes,omitempty" gorm:"type:text"`

	// Relationships
	Requester   User         `json:"requester,omitempty" gorm:"foreignKey:RequesterID"`
	Cooperative *Cooperative `json:"cooperative,omitempty" gorm:"foreignKey:CooperativeID"`
	Reviewer    *User        `json:"reviewer,omitempty" gorm:"foreignKey:ReviewerID"`
}
