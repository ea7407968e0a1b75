package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// ValidStatus reports whether s is one of the three submission states.
func ValidStatus(s string) bool {
	return s == StatusPending || s == StatusApproved || s == StatusRejected
}

// Profile mirrors one identity-provider subject. The primary key is the
// provider's subject id, not a locally generated one.
type Profile struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	FullName  *string   `json:"full_name"`
	Phone     *string   `json:"phone"`
	Role      string    `gorm:"not null;default:user" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Submission is one loan/insurance application. Everything except
// Status is immutable once created.
type Submission struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	UserID    *string   `gorm:"type:uuid;index" json:"user_id"`

	Name   string `gorm:"not null" json:"name"`
	Mobile string `gorm:"not null" json:"mobile"`
	Email  string `gorm:"not null" json:"email"`
	City   string `gorm:"not null" json:"city"`

	BusinessName    string `gorm:"not null" json:"business_name"`
	BusinessType    string `gorm:"not null" json:"business_type"`
	AnnualTurnover  string `gorm:"not null" json:"annual_turnover"`
	YearsInBusiness string `gorm:"not null" json:"years_in_business"`

	LoanAmount  string `gorm:"not null" json:"loan_amount"`
	LoanPurpose string `gorm:"not null" json:"loan_purpose"`
	Tenure      string `gorm:"not null" json:"tenure"`

	PANNumber *string `json:"pan_number"`
	GSTNumber *string `json:"gst_number"`

	Status string `gorm:"not null;default:pending" json:"status"`
}

func (s *Submission) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// ActivityLog is append-only; rows are never updated or deleted.
type ActivityLog struct {
	ID        string         `gorm:"primaryKey;type:uuid" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UserID    *string        `gorm:"type:uuid" json:"user_id"`
	Action    string         `gorm:"not null;index" json:"action"`
	Data      datatypes.JSON `gorm:"type:jsonb" json:"data"`
}

func (a *ActivityLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// Backup is a write-only snapshot of the submissions table taken from
// the admin panel. Nothing reads it back; it exists as an audit artifact.
type Backup struct {
	ID        string         `gorm:"primaryKey;type:uuid" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	CreatedBy *string        `gorm:"type:uuid" json:"created_by"`
	ItemCount int            `gorm:"not null;default:0" json:"item_count"`
	Snapshot  datatypes.JSON `gorm:"type:jsonb" json:"snapshot"`
}

func (b *Backup) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}
