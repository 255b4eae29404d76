package repository

import (
	"context"
	"errors"

	"property-market/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateInspection inserts a new inspection record.
func (r *Repository) CreateInspection(ctx context.Context, inspection *models.Inspection) error {
	return r.db.WithContext(ctx).Create(inspection).Error
}

// GetInspectionByID retrieves an inspection by ID.
func (r *Repository) GetInspectionByID(ctx context.Context, id uuid.UUID) (*models.Inspection, error) {
	var inspection models.Inspection
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&inspection).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &inspection, nil
}

// SaveInspection persists the full state of an inspection.
func (r *Repository) SaveInspection(ctx context.Context, inspection *models.Inspection) error {
	return r.db.WithContext(ctx).Save(inspection).Error
}

// FindInspectionsByListing retrieves all inspections booked for a listing,
// newest first.
func (r *Repository) FindInspectionsByListing(ctx context.Context, listingID uuid.UUID) ([]*models.Inspection, error) {
	var inspections []*models.Inspection
	err := r.db.WithContext(ctx).
		Where("listing_id = ?", listingID).
		Order("created_at DESC").
		Find(&inspections).Error
	if err != nil {
		return nil, err
	}
	return inspections, nil
}

// FindAllInspections retrieves all inspections, newest first.
func (r *Repository) FindAllInspections(ctx context.Context) ([]*models.Inspection, error) {
	var inspections []*models.Inspection
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&inspections).Error
	if err != nil {
		return nil, err
	}
	return inspections, nil
}
