package models

import (
	"time"

	"github.com/google/uuid"
)

type InspectionStatus string

const (
	InspectionStatusPending    InspectionStatus = "PENDING"
	InspectionStatusScheduled  InspectionStatus = "SCHEDULED"
	InspectionStatusInProgress InspectionStatus = "IN_PROGRESS"
	InspectionStatusCompleted  InspectionStatus = "COMPLETED"
	InspectionStatusCancelled  InspectionStatus = "CANCELLED"
)

type InspectionType string

const (
	InspectionTypeInitial  InspectionType = "INITIAL"
	InspectionTypeFollowUp InspectionType = "FOLLOW_UP"
	InspectionTypeFinal    InspectionType = "FINAL"
	InspectionTypeRoutine  InspectionType = "ROUTINE"
)

// Inspection represents a scheduled site visit for a verified listing.
// Listing title and location are denormalized at booking time so the record
// stays readable even if the listing is later edited.
type Inspection struct {
	ID               uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	ListingID        uuid.UUID        `gorm:"type:uuid;not null;index" json:"listing_id"`
	ListingTitle     string           `gorm:"size:200" json:"listing_title"`
	ListingLocation  string           `gorm:"size:500" json:"listing_location"`
	ListingImage     *string          `gorm:"size:1000" json:"listing_image,omitempty"`
	Type             InspectionType   `gorm:"size:50;not null" json:"type"`
	Status           InspectionStatus `gorm:"size:50;not null;default:PENDING;index" json:"status"`
	ScheduledDate    string           `gorm:"size:10;not null" json:"scheduled_date"` // YYYY-MM-DD
	ScheduledTime    string           `gorm:"size:5;not null" json:"scheduled_time"`  // HH:MM
	InspectorName    *string          `gorm:"size:255" json:"inspector_name,omitempty"`
	InspectorContact *string          `gorm:"size:100" json:"inspector_contact,omitempty"`
	Notes            string           `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// TableName specifies the table name for Inspection model
func (Inspection) TableName() string {
	return "inspections"
}

// ValidInspectionType reports whether t is a known inspection type.
func ValidInspectionType(t InspectionType) bool {
	switch t {
	case InspectionTypeInitial, InspectionTypeFollowUp, InspectionTypeFinal, InspectionTypeRoutine:
		return true
	}
	return false
}
