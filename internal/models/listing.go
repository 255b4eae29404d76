package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ListingStatus string

const (
	ListingStatusDraft               ListingStatus = "DRAFT"
	ListingStatusSubmitted           ListingStatus = "SUBMITTED"
	ListingStatusPendingVerification ListingStatus = "PENDING_VERIFICATION"
	ListingStatusVerified            ListingStatus = "VERIFIED"
	ListingStatusRejected            ListingStatus = "REJECTED"
)

type ListingType string

const (
	ListingTypeSale    ListingType = "SALE"
	ListingTypeRent    ListingType = "RENT"
	ListingTypeLeadGen ListingType = "LEAD_GEN"
)

type Visibility string

const (
	VisibilityAllCreators       Visibility = "ALL_CREATORS"
	VisibilityExclusiveCreators Visibility = "EXCLUSIVE_CREATORS"
)

type Currency string

const (
	CurrencyNGN Currency = "NGN"
	CurrencyUSD Currency = "USD"
	CurrencyCAD Currency = "CAD"
)

type MediaType string

const (
	MediaTypeImage MediaType = "IMAGE"
	MediaTypeVideo MediaType = "VIDEO"
)

type DocType string

const (
	DocTypeTitleDoc         DocType = "TITLE_DOC"
	DocTypeSurveyPlan       DocType = "SURVEY_PLAN"
	DocTypeBuildingApproval DocType = "BUILDING_APPROVAL"
	DocTypeProofOfOwnership DocType = "PROOF_OF_OWNERSHIP"
	DocTypeTenancyClearance DocType = "TENANCY_CLEARANCE"
	DocTypeOther            DocType = "OTHER"
)

// Listing represents a property listing owned by a developer and subject to
// the verification lifecycle. Status is the single source of truth for
// workflow position; RejectionReason is set only while status is REJECTED.
type Listing struct {
	ID                 uuid.UUID          `gorm:"type:uuid;primaryKey" json:"id"`
	DeveloperID        uint               `gorm:"not null;index" json:"developer_id"`
	Title              string             `gorm:"size:200;not null" json:"title"`
	Description        string             `gorm:"type:text" json:"description,omitempty"`
	ListingType        ListingType        `gorm:"size:50;not null;index" json:"listing_type"`
	Visibility         Visibility         `gorm:"size:50;not null;default:ALL_CREATORS" json:"visibility"`
	AskingPrice        *decimal.Decimal   `gorm:"type:decimal(20,2)" json:"asking_price,omitempty"`
	MinAcceptablePrice *decimal.Decimal   `gorm:"type:decimal(20,2)" json:"min_acceptable_price,omitempty"`
	Currency           Currency           `gorm:"size:10;not null;default:NGN" json:"currency"`
	LocationText       string             `gorm:"size:500" json:"location_text,omitempty"`
	City               string             `gorm:"size:100;index" json:"city,omitempty"`
	State              string             `gorm:"size:100;index" json:"state,omitempty"`
	Country            string             `gorm:"size:100" json:"country,omitempty"`
	Bedrooms           *int               `json:"bedrooms,omitempty"`
	Bathrooms          *int               `json:"bathrooms,omitempty"`
	Status             ListingStatus      `gorm:"size:50;not null;default:DRAFT;index" json:"status"`
	RejectionReason    *string            `gorm:"size:1000" json:"rejection_reason,omitempty"`
	Media              []ListingMedia     `gorm:"foreignKey:ListingID" json:"media"`
	Documents          []ListingDocument  `gorm:"foreignKey:ListingID" json:"documents"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

// TableName specifies the table name for Listing model
func (Listing) TableName() string {
	return "listings"
}

// ListingMedia is an uploaded media reference attached to a listing.
type ListingMedia struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ListingID uuid.UUID `gorm:"type:uuid;not null;index" json:"listing_id"`
	Type      MediaType `gorm:"size:20;not null" json:"type"`
	URL       string    `gorm:"size:1000;not null" json:"url"`
	SortOrder int       `gorm:"not null;default:0" json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for ListingMedia model
func (ListingMedia) TableName() string {
	return "listing_media"
}

// ListingDocument is an uploaded supporting document reference attached to a
// listing, tagged with its declared category.
type ListingDocument struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ListingID uuid.UUID `gorm:"type:uuid;not null;index" json:"listing_id"`
	DocType   DocType   `gorm:"size:50;not null" json:"doc_type"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for ListingDocument model
func (ListingDocument) TableName() string {
	return "listing_documents"
}

// SearchFilters holds the public browse filters. All fields are optional and
// combine with AND semantics.
type SearchFilters struct {
	Query       string           `form:"q"`
	ListingType ListingType      `form:"listing_type"`
	MinPrice    *decimal.Decimal `form:"min_price"`
	MaxPrice    *decimal.Decimal `form:"max_price"`
	Bedrooms    *int             `form:"bedrooms"`
	City        string           `form:"city"`
	State       string           `form:"state"`
}

// ValidListingType reports whether t is a known listing type.
func ValidListingType(t ListingType) bool {
	switch t {
	case ListingTypeSale, ListingTypeRent, ListingTypeLeadGen:
		return true
	}
	return false
}

// ValidVisibility reports whether v is a known visibility setting.
func ValidVisibility(v Visibility) bool {
	switch v {
	case VisibilityAllCreators, VisibilityExclusiveCreators:
		return true
	}
	return false
}

// ValidCurrency reports whether c is a supported currency.
func ValidCurrency(c Currency) bool {
	switch c {
	case CurrencyNGN, CurrencyUSD, CurrencyCAD:
		return true
	}
	return false
}

// ValidMediaType reports whether t is a known media type.
func ValidMediaType(t MediaType) bool {
	return t == MediaTypeImage || t == MediaTypeVideo
}

// ValidDocType reports whether t is a known document category.
func ValidDocType(t DocType) bool {
	switch t {
	case DocTypeTitleDoc, DocTypeSurveyPlan, DocTypeBuildingApproval,
		DocTypeProofOfOwnership, DocTypeTenancyClearance, DocTypeOther:
		return true
	}
	return false
}
