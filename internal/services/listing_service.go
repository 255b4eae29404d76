package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"unicode/utf8"

	"property-market/internal/models"
	"property-market/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Lifecycle event subjects published on listing transitions.
const (
	EventListingSubmitted = "listings.submitted"
	EventListingVerified  = "listings.verified"
	EventListingRejected  = "listings.rejected"
)

// EventPublisher delivers lifecycle events to interested consumers
// (notification workers, audit trails). Delivery failures never fail the
// transition itself.
type EventPublisher interface {
	Publish(ctx context.Context, subject string, payload interface{}) error
}

// ListingCache is a read-through cache for single listing lookups.
type ListingCache interface {
	GetListing(ctx context.Context, id uuid.UUID) (*models.Listing, error)
	SetListing(ctx context.Context, listing *models.Listing) error
	DeleteListing(ctx context.Context, id uuid.UUID) error
}

// ListingEvent is the payload published on lifecycle transitions.
type ListingEvent struct {
	ListingID   uuid.UUID            `json:"listing_id"`
	DeveloperID uint                 `json:"developer_id"`
	Status      models.ListingStatus `json:"status"`
	Reason      string               `json:"reason,omitempty"`
}

// ListingService enforces the listing lifecycle: which transitions are legal
// from which status, and the document/media policy gating submission. All
// status-changing paths go through here; handlers and other services never
// write listing state directly.
type ListingService struct {
	repo      *repository.Repository
	cache     ListingCache
	publisher EventPublisher
	locks     sync.Map // listing id -> *sync.Mutex
}

func NewListingService(repo *repository.Repository, cache ListingCache, publisher EventPublisher) *ListingService {
	return &ListingService{
		repo:      repo,
		cache:     cache,
		publisher: publisher,
	}
}

// lockListing serializes operations targeting the same listing id so that
// racing calls observe each other's post-state. Returns the unlock func.
func (s *ListingService) lockListing(id uuid.UUID) func() {
	v, _ := s.locks.LoadOrStore(id, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// CreateListingInput holds the fields a developer supplies when creating a
// draft.
type CreateListingInput struct {
	Title              string              `json:"title"`
	Description        string              `json:"description"`
	ListingType        models.ListingType  `json:"listing_type"`
	Visibility         models.Visibility   `json:"visibility"`
	AskingPrice        *decimal.Decimal    `json:"asking_price"`
	MinAcceptablePrice *decimal.Decimal    `json:"min_acceptable_price"`
	Currency           models.Currency     `json:"currency"`
	LocationText       string              `json:"location_text"`
	City               string              `json:"city"`
	State              string              `json:"state"`
	Country            string              `json:"country"`
	Bedrooms           *int                `json:"bedrooms"`
	Bathrooms          *int                `json:"bathrooms"`
}

// UpdateListingInput holds a partial update; nil fields are left unchanged.
type UpdateListingInput struct {
	Title              *string             `json:"title"`
	Description        *string             `json:"description"`
	ListingType        *models.ListingType `json:"listing_type"`
	Visibility         *models.Visibility  `json:"visibility"`
	AskingPrice        *decimal.Decimal    `json:"asking_price"`
	MinAcceptablePrice *decimal.Decimal    `json:"min_acceptable_price"`
	Currency           *models.Currency    `json:"currency"`
	LocationText       *string             `json:"location_text"`
	City               *string             `json:"city"`
	State              *string             `json:"state"`
	Country            *string             `json:"country"`
	Bedrooms           *int                `json:"bedrooms"`
	Bathrooms          *int                `json:"bathrooms"`
}

// CreateDraft validates the input and creates a new listing in DRAFT status
// owned by the given developer.
func (s *ListingService) CreateDraft(ctx context.Context, developerID uint, input CreateListingInput) (*models.Listing, error) {
	if input.Visibility == "" {
		input.Visibility = models.VisibilityAllCreators
	}
	if input.Currency == "" {
		input.Currency = models.CurrencyNGN
	}

	listing := &models.Listing{
		ID:                 uuid.New(),
		DeveloperID:        developerID,
		Title:              strings.TrimSpace(input.Title),
		Description:        input.Description,
		ListingType:        input.ListingType,
		Visibility:         input.Visibility,
		AskingPrice:        input.AskingPrice,
		MinAcceptablePrice: input.MinAcceptablePrice,
		Currency:           input.Currency,
		LocationText:       input.LocationText,
		City:               input.City,
		State:              input.State,
		Country:            input.Country,
		Bedrooms:           input.Bedrooms,
		Bathrooms:          input.Bathrooms,
		Status:             models.ListingStatusDraft,
		Media:              []models.ListingMedia{},
		Documents:          []models.ListingDocument{},
	}

	if err := validateListing(listing); err != nil {
		return nil, err
	}

	if err := s.repo.CreateListing(ctx, listing); err != nil {
		return nil, err
	}
	return listing, nil
}

// EditListing applies a partial update to a listing. Editing is only
// permitted while the listing is in DRAFT or REJECTED.
func (s *ListingService) EditListing(ctx context.Context, session models.Session, id uuid.UUID, input UpdateListingInput) (*models.Listing, error) {
	unlock := s.lockListing(id)
	defer unlock()

	listing, err := s.getOwned(ctx, session, id)
	if err != nil {
		return nil, err
	}

	if !isEditable(listing.Status) {
		return nil, ErrInvalidState
	}

	if input.Title != nil {
		listing.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		listing.Description = *input.Description
	}
	if input.ListingType != nil {
		listing.ListingType = *input.ListingType
	}
	if input.Visibility != nil {
		listing.Visibility = *input.Visibility
	}
	if input.AskingPrice != nil {
		listing.AskingPrice = input.AskingPrice
	}
	if input.MinAcceptablePrice != nil {
		listing.MinAcceptablePrice = input.MinAcceptablePrice
	}
	if input.Currency != nil {
		listing.Currency = *input.Currency
	}
	if input.LocationText != nil {
		listing.LocationText = *input.LocationText
	}
	if input.City != nil {
		listing.City = *input.City
	}
	if input.State != nil {
		listing.State = *input.State
	}
	if input.Country != nil {
		listing.Country = *input.Country
	}
	if input.Bedrooms != nil {
		listing.Bedrooms = input.Bedrooms
	}
	if input.Bathrooms != nil {
		listing.Bathrooms = input.Bathrooms
	}

	if err := validateListing(listing); err != nil {
		return nil, err
	}

	if err := s.repo.SaveListing(ctx, listing); err != nil {
		return nil, err
	}
	s.invalidate(ctx, id)
	return listing, nil
}

// SubmitForVerification moves a DRAFT or REJECTED listing into the admin
// review queue. The submission policy must hold; a failed policy check names
// every unmet requirement and leaves the listing untouched. The transition
// through SUBMITTED to PENDING_VERIFICATION is automatic and happens inside
// this single call.
func (s *ListingService) SubmitForVerification(ctx context.Context, session models.Session, id uuid.UUID) (*models.Listing, error) {
	unlock := s.lockListing(id)
	defer unlock()

	listing, err := s.getOwned(ctx, session, id)
	if err != nil {
		return nil, err
	}

	if listing.Status != models.ListingStatusDraft && listing.Status != models.ListingStatusRejected {
		return nil, ErrInvalidTransition
	}

	if err := EvaluateSubmission(listing); err != nil {
		return nil, err
	}

	// Both writes commit together; a failure leaves the listing exactly as it
	// was before the call.
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		listing.Status = models.ListingStatusSubmitted
		listing.RejectionReason = nil
		if err := tx.SaveListing(ctx, listing); err != nil {
			return err
		}

		// Auto-advance into the review queue's second bucket. Not a separately
		// invocable action; nothing can act on a SUBMITTED listing in between.
		listing.Status = models.ListingStatusPendingVerification
		return tx.SaveListing(ctx, listing)
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, id)
	s.publish(ctx, EventListingSubmitted, ListingEvent{
		ListingID:   listing.ID,
		DeveloperID: listing.DeveloperID,
		Status:      listing.Status,
	})
	return listing, nil
}

// AdminApprove marks a queued listing VERIFIED. Only callers with the admin
// capability may approve, and only from SUBMITTED or PENDING_VERIFICATION.
func (s *ListingService) AdminApprove(ctx context.Context, session models.Session, id uuid.UUID) (*models.Listing, error) {
	if !session.IsAdmin() {
		return nil, ErrForbidden
	}

	unlock := s.lockListing(id)
	defer unlock()

	listing, err := s.getListing(ctx, id)
	if err != nil {
		return nil, err
	}

	if !inReviewQueue(listing.Status) {
		return nil, ErrInvalidTransition
	}

	listing.Status = models.ListingStatusVerified
	listing.RejectionReason = nil
	if err := s.repo.SaveListing(ctx, listing); err != nil {
		return nil, err
	}

	s.invalidate(ctx, id)
	s.publish(ctx, EventListingVerified, ListingEvent{
		ListingID:   listing.ID,
		DeveloperID: listing.DeveloperID,
		Status:      listing.Status,
	})
	return listing, nil
}

// AdminReject marks a queued listing REJECTED with the given reason. The
// reason is required and surfaces to the developer until the next successful
// submission clears it.
func (s *ListingService) AdminReject(ctx context.Context, session models.Session, id uuid.UUID, reason string) (*models.Listing, error) {
	if !session.IsAdmin() {
		return nil, ErrForbidden
	}

	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, validationErrorf("rejection reason is required")
	}

	unlock := s.lockListing(id)
	defer unlock()

	listing, err := s.getListing(ctx, id)
	if err != nil {
		return nil, err
	}

	if !inReviewQueue(listing.Status) {
		return nil, ErrInvalidTransition
	}

	listing.Status = models.ListingStatusRejected
	listing.RejectionReason = &reason
	if err := s.repo.SaveListing(ctx, listing); err != nil {
		return nil, err
	}

	s.invalidate(ctx, id)
	s.publish(ctx, EventListingRejected, ListingEvent{
		ListingID:   listing.ID,
		DeveloperID: listing.DeveloperID,
		Status:      listing.Status,
		Reason:      reason,
	})
	return listing, nil
}

// DeleteDraft removes a listing. Only DRAFT listings may be deleted.
func (s *ListingService) DeleteDraft(ctx context.Context, session models.Session, id uuid.UUID) error {
	unlock := s.lockListing(id)
	defer unlock()

	listing, err := s.getOwned(ctx, session, id)
	if err != nil {
		return err
	}

	if listing.Status != models.ListingStatusDraft {
		return ErrInvalidState
	}

	if err := s.repo.DeleteListing(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	s.locks.Delete(id)
	return nil
}

// AttachMedia adds a media reference to an editable listing.
func (s *ListingService) AttachMedia(ctx context.Context, session models.Session, id uuid.UUID, mediaType models.MediaType, url string) (*models.Listing, error) {
	if !models.ValidMediaType(mediaType) {
		return nil, validationErrorf("invalid media type %q", mediaType)
	}
	if strings.TrimSpace(url) == "" {
		return nil, validationErrorf("media url is required")
	}

	unlock := s.lockListing(id)
	defer unlock()

	listing, err := s.getOwned(ctx, session, id)
	if err != nil {
		return nil, err
	}
	if !isEditable(listing.Status) {
		return nil, ErrInvalidState
	}

	media := &models.ListingMedia{
		ID:        uuid.New(),
		ListingID: listing.ID,
		Type:      mediaType,
		URL:       url,
		SortOrder: nextSortOrder(listing.Media),
	}
	if err := s.repo.AddMedia(ctx, media); err != nil {
		return nil, err
	}
	if err := s.repo.SaveListing(ctx, listing); err != nil { // refresh updated_at
		return nil, err
	}

	s.invalidate(ctx, id)
	return s.getListing(ctx, id)
}

// RemoveMedia detaches a media reference from an editable listing.
func (s *ListingService) RemoveMedia(ctx context.Context, session models.Session, id, mediaID uuid.UUID) (*models.Listing, error) {
	unlock := s.lockListing(id)
	defer unlock()

	listing, err := s.getOwned(ctx, session, id)
	if err != nil {
		return nil, err
	}
	if !isEditable(listing.Status) {
		return nil, ErrInvalidState
	}

	if err := s.repo.RemoveMedia(ctx, id, mediaID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMediaNotFound
		}
		return nil, err
	}
	if err := s.repo.SaveListing(ctx, listing); err != nil {
		return nil, err
	}

	s.invalidate(ctx, id)
	return s.getListing(ctx, id)
}

// AttachDocument adds a document reference to an editable listing.
func (s *ListingService) AttachDocument(ctx context.Context, session models.Session, id uuid.UUID, docType models.DocType, name string) (*models.Listing, error) {
	if !models.ValidDocType(docType) {
		return nil, validationErrorf("invalid document type %q", docType)
	}
	if strings.TrimSpace(name) == "" {
		return nil, validationErrorf("document name is required")
	}

	unlock := s.lockListing(id)
	defer unlock()

	listing, err := s.getOwned(ctx, session, id)
	if err != nil {
		return nil, err
	}
	if !isEditable(listing.Status) {
		return nil, ErrInvalidState
	}

	doc := &models.ListingDocument{
		ID:        uuid.New(),
		ListingID: listing.ID,
		DocType:   docType,
		Name:      name,
	}
	if err := s.repo.AddDocument(ctx, doc); err != nil {
		return nil, err
	}
	if err := s.repo.SaveListing(ctx, listing); err != nil {
		return nil, err
	}

	s.invalidate(ctx, id)
	return s.getListing(ctx, id)
}

// RemoveDocument detaches a document reference from an editable listing.
func (s *ListingService) RemoveDocument(ctx context.Context, session models.Session, id, documentID uuid.UUID) (*models.Listing, error) {
	unlock := s.lockListing(id)
	defer unlock()

	listing, err := s.getOwned(ctx, session, id)
	if err != nil {
		return nil, err
	}
	if !isEditable(listing.Status) {
		return nil, ErrInvalidState
	}

	if err := s.repo.RemoveDocument(ctx, id, documentID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}
	if err := s.repo.SaveListing(ctx, listing); err != nil {
		return nil, err
	}

	s.invalidate(ctx, id)
	return s.getListing(ctx, id)
}

// GetListing fetches a single listing, consulting the cache first when one is
// configured.
func (s *ListingService) GetListing(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetListing(ctx, id); err == nil && cached != nil {
			return cached, nil
		}
	}

	listing, err := s.getListing(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetListing(ctx, listing); err != nil {
			log.Printf("listing cache: failed to store %s: %v", id, err)
		}
	}
	return listing, nil
}

// ListByDeveloper returns all listings owned by the given developer.
func (s *ListingService) ListByDeveloper(ctx context.Context, developerID uint) ([]*models.Listing, error) {
	return s.repo.FindListingsByDeveloper(ctx, developerID)
}

func (s *ListingService) getListing(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	listing, err := s.repo.GetListingByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrListingNotFound
	}
	if err != nil {
		return nil, err
	}
	return listing, nil
}

// getOwned loads a listing and checks the caller owns it (admins bypass the
// ownership check).
func (s *ListingService) getOwned(ctx context.Context, session models.Session, id uuid.UUID) (*models.Listing, error) {
	listing, err := s.getListing(ctx, id)
	if err != nil {
		return nil, err
	}
	if listing.DeveloperID != session.UserID && !session.IsAdmin() {
		return nil, ErrForbidden
	}
	return listing, nil
}

func (s *ListingService) invalidate(ctx context.Context, id uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteListing(ctx, id); err != nil {
		log.Printf("listing cache: failed to invalidate %s: %v", id, err)
	}
}

func (s *ListingService) publish(ctx context.Context, subject string, event ListingEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, subject, event); err != nil {
		log.Printf("failed to publish %s for listing %s: %v", subject, event.ListingID, err)
	}
}

// nextSortOrder places new media after every existing entry. Removals leave
// gaps, so the count alone is not a safe position.
func nextSortOrder(media []models.ListingMedia) int {
	next := 0
	for _, m := range media {
		if m.SortOrder >= next {
			next = m.SortOrder + 1
		}
	}
	return next
}

func isEditable(status models.ListingStatus) bool {
	return status == models.ListingStatusDraft || status == models.ListingStatusRejected
}

func inReviewQueue(status models.ListingStatus) bool {
	return status == models.ListingStatusSubmitted || status == models.ListingStatusPendingVerification
}

// validateListing checks field-level constraints on the full listing state.
func validateListing(listing *models.Listing) error {
	if listing.Title == "" {
		return validationErrorf("title is required")
	}
	if utf8.RuneCountInString(listing.Title) > 200 {
		return validationErrorf("title must be at most 200 characters")
	}
	if !models.ValidListingType(listing.ListingType) {
		return validationErrorf("invalid listing type %q", listing.ListingType)
	}
	if !models.ValidVisibility(listing.Visibility) {
		return validationErrorf("invalid visibility %q", listing.Visibility)
	}
	if !models.ValidCurrency(listing.Currency) {
		return validationErrorf("invalid currency %q", listing.Currency)
	}
	if listing.AskingPrice != nil && !listing.AskingPrice.IsPositive() {
		return validationErrorf("asking price must be positive")
	}
	if listing.MinAcceptablePrice != nil && !listing.MinAcceptablePrice.IsPositive() {
		return validationErrorf("min acceptable price must be positive")
	}
	if listing.AskingPrice != nil && listing.MinAcceptablePrice != nil &&
		listing.MinAcceptablePrice.GreaterThan(*listing.AskingPrice) {
		return validationErrorf("min acceptable price must be less than or equal to asking price")
	}
	if listing.Bedrooms != nil && *listing.Bedrooms < 0 {
		return validationErrorf("bedrooms must be non-negative")
	}
	if listing.Bathrooms != nil && *listing.Bathrooms < 0 {
		return validationErrorf("bathrooms must be non-negative")
	}
	return nil
}
