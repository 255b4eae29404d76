package services

import (
	"context"

	"property-market/internal/models"
	"property-market/internal/repository"

	"github.com/google/uuid"
)

// ReviewService exposes the admin review queue. All decisions delegate to the
// lifecycle engine; the queue itself is a read-side projection.
type ReviewService struct {
	repo     *repository.Repository
	listings *ListingService
}

func NewReviewService(repo *repository.Repository, listings *ListingService) *ReviewService {
	return &ReviewService{
		repo:     repo,
		listings: listings,
	}
}

// ListQueue returns every listing awaiting a verification decision, oldest
// first so earlier submissions are reviewed first.
func (s *ReviewService) ListQueue(ctx context.Context) ([]*models.Listing, error) {
	return s.repo.FindListingsByStatuses(ctx,
		models.ListingStatusSubmitted,
		models.ListingStatusPendingVerification,
	)
}

// Approve verifies a queued listing.
func (s *ReviewService) Approve(ctx context.Context, session models.Session, id uuid.UUID) (*models.Listing, error) {
	return s.listings.AdminApprove(ctx, session, id)
}

// Reject declines a queued listing with the given reason.
func (s *ReviewService) Reject(ctx context.Context, session models.Session, id uuid.UUID, reason string) (*models.Listing, error) {
	return s.listings.AdminReject(ctx, session, id, reason)
}
