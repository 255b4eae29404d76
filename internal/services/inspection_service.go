package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"property-market/internal/models"
	"property-market/internal/repository"

	"github.com/google/uuid"
)

// InspectionService manages site-visit bookings. Its only coupling to the
// listing lifecycle is the booking precondition: the referenced listing must
// be VERIFIED.
type InspectionService struct {
	repo *repository.Repository
}

func NewInspectionService(repo *repository.Repository) *InspectionService {
	return &InspectionService{repo: repo}
}

// BookInspectionInput holds the fields supplied when booking an inspection.
type BookInspectionInput struct {
	ListingID     uuid.UUID             `json:"listing_id"`
	Type          models.InspectionType `json:"type"`
	ScheduledDate string                `json:"scheduled_date"` // YYYY-MM-DD
	ScheduledTime string                `json:"scheduled_time"` // HH:MM
	Notes         string                `json:"notes"`
}

// Book creates a PENDING inspection for a verified listing, denormalizing
// the listing's title, location and cover image onto the record.
func (s *InspectionService) Book(ctx context.Context, input BookInspectionInput) (*models.Inspection, error) {
	if !models.ValidInspectionType(input.Type) {
		return nil, validationErrorf("invalid inspection type %q", input.Type)
	}
	if _, err := time.Parse("2006-01-02", input.ScheduledDate); err != nil {
		return nil, validationErrorf("scheduled date must be in YYYY-MM-DD format")
	}
	if _, err := time.Parse("15:04", input.ScheduledTime); err != nil {
		return nil, validationErrorf("scheduled time must be in HH:MM format")
	}

	listing, err := s.repo.GetListingByID(ctx, input.ListingID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrListingNotFound
	}
	if err != nil {
		return nil, err
	}

	if listing.Status != models.ListingStatusVerified {
		return nil, ErrInvalidState
	}

	location := listing.LocationText
	if strings.TrimSpace(location) == "" {
		location = "Location not specified"
	}
	var image *string
	if len(listing.Media) > 0 {
		image = &listing.Media[0].URL
	}

	inspection := &models.Inspection{
		ID:              uuid.New(),
		ListingID:       listing.ID,
		ListingTitle:    listing.Title,
		ListingLocation: location,
		ListingImage:    image,
		Type:            input.Type,
		Status:          models.InspectionStatusPending,
		ScheduledDate:   input.ScheduledDate,
		ScheduledTime:   input.ScheduledTime,
		Notes:           input.Notes,
	}

	if err := s.repo.CreateInspection(ctx, inspection); err != nil {
		return nil, err
	}
	return inspection, nil
}

// Get retrieves a single inspection.
func (s *InspectionService) Get(ctx context.Context, id uuid.UUID) (*models.Inspection, error) {
	inspection, err := s.repo.GetInspectionByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInspectionNotFound
	}
	if err != nil {
		return nil, err
	}
	return inspection, nil
}

// List returns all inspections, newest first.
func (s *InspectionService) List(ctx context.Context) ([]*models.Inspection, error) {
	return s.repo.FindAllInspections(ctx)
}

// ListByListing returns all inspections booked for a listing.
func (s *InspectionService) ListByListing(ctx context.Context, listingID uuid.UUID) ([]*models.Inspection, error) {
	return s.repo.FindInspectionsByListing(ctx, listingID)
}

// Cancel marks an inspection CANCELLED. Completed inspections stay as they
// are.
func (s *InspectionService) Cancel(ctx context.Context, id uuid.UUID) (*models.Inspection, error) {
	inspection, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if inspection.Status == models.InspectionStatusCompleted {
		return nil, ErrInvalidState
	}

	inspection.Status = models.InspectionStatusCancelled
	if err := s.repo.SaveInspection(ctx, inspection); err != nil {
		return nil, err
	}
	return inspection, nil
}
