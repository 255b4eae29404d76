package repository

import (
	"context"
	"errors"

	"property-market/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Transaction runs fn against a repository bound to a single database
// transaction. Any error from fn rolls back every write made through it.
func (r *Repository) Transaction(ctx context.Context, fn func(*Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Repository{db: tx})
	})
}

// CreateListing inserts a new listing together with any attached media and
// documents.
func (r *Repository) CreateListing(ctx context.Context, listing *models.Listing) error {
	return r.db.WithContext(ctx).Create(listing).Error
}

// GetListingByID retrieves a listing with its media and documents. Each call
// scans into a fresh struct, so callers always receive their own copy.
func (r *Repository) GetListingByID(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	var listing models.Listing
	err := r.db.WithContext(ctx).
		Preload("Media", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC") }).
		Preload("Documents").
		Where("id = ?", id).
		First(&listing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

// SaveListing persists the full state of a listing. Media and document rows
// are managed through their own methods, not through association writes here.
func (r *Repository) SaveListing(ctx context.Context, listing *models.Listing) error {
	return r.db.WithContext(ctx).Omit("Media", "Documents").Save(listing).Error
}

// DeleteListing removes a listing and its attached media and documents.
func (r *Repository) DeleteListing(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("listing_id = ?", id).Delete(&models.ListingMedia{}).Error; err != nil {
			return err
		}
		if err := tx.Where("listing_id = ?", id).Delete(&models.ListingDocument{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&models.Listing{}).Error
	})
}

// FindListingsByDeveloper retrieves all listings owned by a developer, newest
// first.
func (r *Repository) FindListingsByDeveloper(ctx context.Context, developerID uint) ([]*models.Listing, error) {
	var listings []*models.Listing
	err := r.db.WithContext(ctx).
		Preload("Media", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC") }).
		Preload("Documents").
		Where("developer_id = ?", developerID).
		Order("created_at DESC").
		Find(&listings).Error
	if err != nil {
		return nil, err
	}
	return listings, nil
}

// FindListingsByStatuses retrieves all listings in any of the given statuses,
// oldest first. The review queue relies on this ordering for fairness.
func (r *Repository) FindListingsByStatuses(ctx context.Context, statuses ...models.ListingStatus) ([]*models.Listing, error) {
	var listings []*models.Listing
	err := r.db.WithContext(ctx).
		Preload("Media", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC") }).
		Preload("Documents").
		Where("status IN ?", statuses).
		Order("created_at ASC").
		Find(&listings).Error
	if err != nil {
		return nil, err
	}
	return listings, nil
}

// AddMedia attaches a media reference to a listing.
func (r *Repository) AddMedia(ctx context.Context, media *models.ListingMedia) error {
	return r.db.WithContext(ctx).Create(media).Error
}

// RemoveMedia deletes a media reference from a listing.
func (r *Repository) RemoveMedia(ctx context.Context, listingID, mediaID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND listing_id = ?", mediaID, listingID).
		Delete(&models.ListingMedia{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// AddDocument attaches a document reference to a listing.
func (r *Repository) AddDocument(ctx context.Context, doc *models.ListingDocument) error {
	return r.db.WithContext(ctx).Create(doc).Error
}

// RemoveDocument deletes a document reference from a listing.
func (r *Repository) RemoveDocument(ctx context.Context, listingID, documentID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND listing_id = ?", documentID, listingID).
		Delete(&models.ListingDocument{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
