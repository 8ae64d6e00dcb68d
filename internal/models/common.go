// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// JSONB type for PostgreSQL
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}

	return json.Unmarshal(bytes, j)
}

// Enums
type UserType string

const (
	UserTypeProductor   UserType = "productor"
	UserTypeCooperativa UserType = "cooperativa"
	UserTypeComprador   UserType = "comprador"
	UserTypeAdmin       UserType = "admin"
)

type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
	UserStatusBanned    UserStatus = "banned"
)

type ProducerGoal string

const (
	ProducerGoalCreateCooperative ProducerGoal = "create_cooperative"
	ProducerGoalJoinCooperative   ProducerGoal = "join_cooperative"
	ProducerGoalSellIndividually  ProducerGoal = "sell_individually"
)

type CooperativeStatus string

const (
	CooperativeStatusActive   CooperativeStatus = "active"
	CooperativeStatusPending  CooperativeStatus = "pending"
	CooperativeStatusInactive CooperativeStatus = "inactive"
)

type MembershipRole string

const (
	MembershipRoleFounder MembershipRole = "founder"
	MembershipRoleMember  MembershipRole = "member"
)

type MembershipStatus string

const (
	MembershipStatusActive  MembershipStatus = "active"
	MembershipStatusPending MembershipStatus = "pending"
)

type RequestKind string

const (
	RequestKindCreate RequestKind = "create"
	RequestKindJoin   RequestKind = "join"
)

type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusInReview RequestStatus = "in_review"
	RequestStatusApproved RequestStatus = "approved"
	RequestStatusRejected RequestStatus = "rejected"
)

// IsTerminal reports whether no further transition is allowed from s.
func (s RequestStatus) IsTerminal() bool {
	return s == RequestStatusApproved || s == RequestStatusRejected
}
