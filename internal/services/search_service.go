package services

import (
	"context"
	"strings"

	"property-market/internal/models"
	"property-market/internal/repository"
)

// SearchService answers public browse queries over the verified subset of
// listings. Filters are independently optional and conjunctive. Listing
// volume is small, so results are recomputed by full scan rather than kept in
// secondary indexes.
type SearchService struct {
	repo *repository.Repository
}

func NewSearchService(repo *repository.Repository) *SearchService {
	return &SearchService{repo: repo}
}

// SearchVerified returns the VERIFIED listings matching every provided
// filter. A listing without an asking price never matches a price-bounded
// search.
func (s *SearchService) SearchVerified(ctx context.Context, filters models.SearchFilters) ([]*models.Listing, error) {
	verified, err := s.repo.FindListingsByStatuses(ctx, models.ListingStatusVerified)
	if err != nil {
		return nil, err
	}

	var results []*models.Listing
	for _, listing := range verified {
		if matchesFilters(listing, filters) {
			results = append(results, listing)
		}
	}
	return results, nil
}

func matchesFilters(listing *models.Listing, filters models.SearchFilters) bool {
	if q := strings.ToLower(strings.TrimSpace(filters.Query)); q != "" {
		if !strings.Contains(strings.ToLower(listing.Title), q) &&
			!strings.Contains(strings.ToLower(listing.Description), q) &&
			!strings.Contains(strings.ToLower(listing.LocationText), q) {
			return false
		}
	}

	if filters.ListingType != "" && listing.ListingType != filters.ListingType {
		return false
	}

	if filters.MinPrice != nil {
		if listing.AskingPrice == nil || listing.AskingPrice.LessThan(*filters.MinPrice) {
			return false
		}
	}
	if filters.MaxPrice != nil {
		if listing.AskingPrice == nil || listing.AskingPrice.GreaterThan(*filters.MaxPrice) {
			return false
		}
	}

	if filters.Bedrooms != nil {
		if listing.Bedrooms == nil || *listing.Bedrooms != *filters.Bedrooms {
			return false
		}
	}

	if filters.City != "" && !strings.EqualFold(listing.City, filters.City) {
		return false
	}
	if filters.State != "" && !strings.EqualFold(listing.State, filters.State) {
		return false
	}

	return true
}
