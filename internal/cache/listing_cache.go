package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"property-market/internal/models"
)

const listingTTL = 1 * time.Hour

// ListingCache is a redis-backed cache for single listing reads. Listings are
// stored as JSON under a namespaced key per id.
type ListingCache struct {
	client *redis.Client
}

func NewListingCache(addr string) (*ListingCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	if _, err := client.Ping(context.Background()).Result(); err != nil {
		return nil, err
	}
	return &ListingCache{client: client}, nil
}

func listingKey(id uuid.UUID) string {
	return "listing:" + id.String()
}

// GetListing returns the cached listing or nil on a miss.
func (c *ListingCache) GetListing(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	data, err := c.client.Get(ctx, listingKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil // cache miss
	}
	if err != nil {
		return nil, err
	}
	var listing models.Listing
	if err := json.Unmarshal(data, &listing); err != nil {
		return nil, err
	}
	return &listing, nil
}

func (c *ListingCache) SetListing(ctx context.Context, listing *models.Listing) error {
	data, err := json.Marshal(listing)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, listingKey(listing.ID), data, listingTTL).Err()
}

func (c *ListingCache) DeleteListing(ctx context.Context, id uuid.UUID) error {
	return c.client.Del(ctx, listingKey(id)).Err()
}
