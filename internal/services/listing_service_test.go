package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"property-market/internal/models"
	"property-market/internal/repository"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Listing{},
		&models.ListingMedia{},
		&models.ListingDocument{},
		&models.Inspection{},
	)
	if err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	// The shared in-memory DB survives between tests, so clean all tables
	db.Exec("DELETE FROM listing_documents")
	db.Exec("DELETE FROM listing_media")
	db.Exec("DELETE FROM inspections")
	db.Exec("DELETE FROM listings")
	db.Exec("DELETE FROM users")

	return db
}

func newTestListingService(t *testing.T) (*ListingService, *gorm.DB) {
	db := setupTestDB(t)
	repo := repository.NewRepository(db)
	return NewListingService(repo, nil, nil), db
}

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func intPtr(n int) *int {
	return &n
}

var (
	developerSession = models.Session{UserID: 1, Role: models.RoleDeveloper}
	otherDevSession  = models.Session{UserID: 2, Role: models.RoleDeveloper}
	adminSession     = models.Session{UserID: 99, Role: models.RoleAdmin}
)

func createDraft(t *testing.T, svc *ListingService, listingType models.ListingType) *models.Listing {
	listing, err := svc.CreateDraft(context.Background(), developerSession.UserID, CreateListingInput{
		Title:       "3 Bedroom Duplex in Lekki",
		Description: "Spacious duplex with BQ",
		ListingType: listingType,
		AskingPrice: dec("150000000"),
		City:        "Lagos",
		State:       "Lagos",
	})
	if err != nil {
		t.Fatalf("CreateDraft failed: %v", err)
	}
	return listing
}

// makeSubmittable attaches the image and documents the submission policy
// requires for the listing's type.
func makeSubmittable(t *testing.T, svc *ListingService, listing *models.Listing) {
	ctx := context.Background()
	if _, err := svc.AttachMedia(ctx, developerSession, listing.ID, models.MediaTypeImage, "http://cdn.example.com/front.jpg"); err != nil {
		t.Fatalf("AttachMedia failed: %v", err)
	}
	for _, docType := range RequiredDocuments(listing.ListingType) {
		if _, err := svc.AttachDocument(ctx, developerSession, listing.ID, docType, "http://cdn.example.com/"+string(docType)+".pdf"); err != nil {
			t.Fatalf("AttachDocument %s failed: %v", docType, err)
		}
	}
}

func submitListing(t *testing.T, svc *ListingService, listing *models.Listing) *models.Listing {
	makeSubmittable(t, svc, listing)
	submitted, err := svc.SubmitForVerification(context.Background(), developerSession, listing.ID)
	if err != nil {
		t.Fatalf("SubmitForVerification failed: %v", err)
	}
	return submitted
}

func TestCreateDraftDefaults(t *testing.T) {
	svc, _ := newTestListingService(t)

	listing := createDraft(t, svc, models.ListingTypeSale)

	if listing.Status != models.ListingStatusDraft {
		t.Errorf("expected status DRAFT, got %s", listing.Status)
	}
	if listing.Visibility != models.VisibilityAllCreators {
		t.Errorf("expected default visibility ALL_CREATORS, got %s", listing.Visibility)
	}
	if listing.Currency != models.CurrencyNGN {
		t.Errorf("expected default currency NGN, got %s", listing.Currency)
	}
}

func TestCreateDraftValidation(t *testing.T) {
	svc, _ := newTestListingService(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		input CreateListingInput
	}{
		{"empty title", CreateListingInput{ListingType: models.ListingTypeSale}},
		{"unknown listing type", CreateListingInput{Title: "House", ListingType: "AUCTION"}},
		{"negative asking price", CreateListingInput{Title: "House", ListingType: models.ListingTypeSale, AskingPrice: dec("-5")}},
		{"min above asking", CreateListingInput{Title: "House", ListingType: models.ListingTypeSale, AskingPrice: dec("100"), MinAcceptablePrice: dec("200")}},
		{"negative bedrooms", CreateListingInput{Title: "House", ListingType: models.ListingTypeRent, Bedrooms: intPtr(-1)}},
	}

	for _, tc := range cases {
		_, err := svc.CreateDraft(ctx, developerSession.UserID, tc.input)
		var validationErr *ValidationError
		if !errors.As(err, &validationErr) {
			t.Errorf("%s: expected ValidationError, got %v", tc.name, err)
		}
	}
}

func TestTitleLimitCountsCharacters(t *testing.T) {
	svc, _ := newTestListingService(t)
	ctx := context.Background()

	// 150 two-byte characters exceed 200 bytes but not 200 characters
	multibyte := strings.Repeat("é", 150)
	if _, err := svc.CreateDraft(ctx, developerSession.UserID, CreateListingInput{
		Title:       multibyte,
		ListingType: models.ListingTypeSale,
	}); err != nil {
		t.Errorf("150-character multibyte title should be accepted, got %v", err)
	}

	tooLong := strings.Repeat("a", 201)
	_, err := svc.CreateDraft(ctx, developerSession.UserID, CreateListingInput{
		Title:       tooLong,
		ListingType: models.ListingTypeSale,
	})
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Errorf("expected ValidationError for 201-character title, got %v", err)
	}
}

func TestMinEqualToAskingAllowed(t *testing.T) {
	svc, _ := newTestListingService(t)

	_, err := svc.CreateDraft(context.Background(), developerSession.UserID, CreateListingInput{
		Title:              "House",
		ListingType:        models.ListingTypeSale,
		AskingPrice:        dec("100"),
		MinAcceptablePrice: dec("100"),
	})
	if err != nil {
		t.Errorf("min price equal to asking price should be allowed, got %v", err)
	}
}

func TestSubmitSaleRequiresAllDocuments(t *testing.T) {
	svc, _ := newTestListingService(t)
	listing := createDraft(t, svc, models.ListingTypeSale)

	_, err := svc.SubmitForVerification(context.Background(), developerSession, listing.ID)

	var policyErr *PolicyViolationError
	if !errors.As(err, &policyErr) {
		t.Fatalf("expected PolicyViolationError, got %v", err)
	}
	if policyErr.ImagesAttached != 0 || policyErr.ImagesRequired != 1 {
		t.Errorf("expected image shortfall 0/1, got %d/%d", policyErr.ImagesAttached, policyErr.ImagesRequired)
	}
	if len(policyErr.MissingDocuments) != 3 {
		t.Fatalf("expected all 3 missing documents named, got %v", policyErr.MissingDocuments)
	}

	// Failed submission must not change the listing
	got, err := svc.GetListing(context.Background(), listing.ID)
	if err != nil {
		t.Fatalf("GetListing failed: %v", err)
	}
	if got.Status != models.ListingStatusDraft {
		t.Errorf("failed submission changed status to %s", got.Status)
	}
}

func TestSubmitPolicyNamesRemainingGaps(t *testing.T) {
	svc, _ := newTestListingService(t)
	ctx := context.Background()
	listing := createDraft(t, svc, models.ListingTypeSale)

	// One image and one of the three documents attached
	if _, err := svc.AttachMedia(ctx, developerSession, listing.ID, models.MediaTypeImage, "http://cdn.example.com/1.jpg"); err != nil {
		t.Fatalf("AttachMedia failed: %v", err)
	}
	if _, err := svc.AttachDocument(ctx, developerSession, listing.ID, models.DocTypeTitleDoc, "title.pdf"); err != nil {
		t.Fatalf("AttachDocument failed: %v", err)
	}

	_, err := svc.SubmitForVerification(ctx, developerSession, listing.ID)
	var policyErr *PolicyViolationError
	if !errors.As(err, &policyErr) {
		t.Fatalf("expected PolicyViolationError, got %v", err)
	}
	if policyErr.ImagesAttached != 1 {
		t.Errorf("expected 1 image counted, got %d", policyErr.ImagesAttached)
	}
	if len(policyErr.MissingDocuments) != 2 {
		t.Errorf("expected 2 missing documents, got %v", policyErr.MissingDocuments)
	}
}

func TestVideoDoesNotSatisfyImageRequirement(t *testing.T) {
	svc, _ := newTestListingService(t)
	ctx := context.Background()
	listing := createDraft(t, svc, models.ListingTypeLeadGen)

	if _, err := svc.AttachMedia(ctx, developerSession, listing.ID, models.MediaTypeVideo, "http://cdn.example.com/tour.mp4"); err != nil {
		t.Fatalf("AttachMedia failed: %v", err)
	}

	_, err := svc.SubmitForVerification(ctx, developerSession, listing.ID)
	var policyErr *PolicyViolationError
	if !errors.As(err, &policyErr) {
		t.Fatalf("expected PolicyViolationError, got %v", err)
	}
}

func TestSubmitLeadGenNeedsOnlyImage(t *testing.T) {
	svc, _ := newTestListingService(t)
	ctx := context.Background()
	listing := createDraft(t, svc, models.ListingTypeLeadGen)

	if _, err := svc.AttachMedia(ctx, developerSession, listing.ID, models.MediaTypeImage, "http://cdn.example.com/1.jpg"); err != nil {
		t.Fatalf("AttachMedia failed: %v", err)
	}

	submitted, err := svc.SubmitForVerification(ctx, developerSession, listing.ID)
	if err != nil {
		t.Fatalf("SubmitForVerification failed: %v", err)
	}
	if submitted.Status != models.ListingStatusPendingVerification {
		t.Errorf("expected PENDING_VERIFICATION, got %s", submitted.Status)
	}
}

func TestSubmitAdvancesToPendingVerification(t *testing.T) {
	svc, _ := newTestListingService(t)
	listing := createDraft(t, svc, models.ListingTypeSale)

	submitted := submitListing(t, svc, listing)

	if submitted.Status != models.ListingStatusPendingVerification {
		t.Errorf("expected PENDING_VERIFICATION after submit, got %s", submitted.Status)
	}
}

func TestSubmitFromVerifiedFails(t *testing.T) {
	svc, _ := newTestListingService(t)
	listing := createDraft(t, svc, models.ListingTypeRent)
	submitListing(t, svc, listing)

	if _, err := svc.AdminApprove(context.Background(), adminSession, listing.ID); err != nil {
		t.Fatalf("AdminApprove failed: %v", err)
	}

	_, err := svc.SubmitForVerification(context.Background(), developerSession, listing.ID)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestApproveFlow(t *testing.T) {
	svc, _ := newTestListingService(t)
	ctx := context.Background()
	listing := createDraft(t, svc, models.ListingTypeSale)
	submitListing(t, svc, listing)

	approved, err := svc.AdminApprove(ctx, adminSession, listing.ID)
	if err != nil {
		t.Fatalf("AdminApprove failed: %v", err)
	}
	if approved.Status != models.ListingStatusVerified {
		t.Errorf("expected VERIFIED, got %s", approved.Status)
	}

	// Second decision on the same listing must fail
	_, err = svc.AdminApprove(ctx, adminSession, listing.ID)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition on double approve, got %v", err)
	}
	_, err = svc.AdminReject(ctx, adminSession, listing.ID, "late rejection")
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition on reject after approve, got %v", err)
	}
}

func TestApproveRequiresAdmin(t *testing.T) {
	svc, _ := newTestListingService(t)
	listing := createDraft(t, svc, models.ListingTypeRent)
	submitListing(t, svc, listing)

	_, err := svc.AdminApprove(context.Background(), developerSession, listing.ID)
	if !errors.Is(err, ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
}

func TestRejectRequiresReason(t *testing.T) {
	svc, _ := newTestListingService(t)
	ctx := context.Background()
	listing := createDraft(t, svc, models.ListingTypeRent)
	submitListing(t, svc, listing)

	_, err := svc.AdminReject(ctx, adminSession, listing.ID, "   ")
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError for blank reason, got %v", err)
	}

	// Listing must still be in the queue
	got, err := svc.GetListing(ctx, listing.ID)
	if err != nil {
		t.Fatalf("GetListing failed: %v", err)
	}
	if got.Status != models.ListingStatusPendingVerification {
		t.Errorf("blank-reason rejection changed status to %s", got.Status)
	}
}

func TestRejectAndResubmit(t *testing.T) {
	svc, _ := newTestListingService(t)
	ctx := context.Background()
	listing := createDraft(t, svc, models.ListingTypeRent)
	submitListing(t, svc, listing)

	rejected, err := svc.AdminReject(ctx, adminSession, listing.ID, "Ownership document is illegible")
	if err != nil {
		t.Fatalf("AdminReject failed: %v", err)
	}
	if rejected.Status != models.ListingStatusRejected {
		t.Errorf("expected REJECTED, got %s", rejected.Status)
	}
	if rejected.RejectionReason == nil || *rejected.RejectionReason != "Ownership document is illegible" {
		t.Errorf("rejection reason not recorded: %v", rejected.RejectionReason)
	}

	// Rejected listings are editable again
	newTitle := "3 Bedroom Duplex in Lekki Phase 1"
	if _, err := svc.EditListing(ctx, developerSession, listing.ID, UpdateListingInput{Title: &newTitle}); err != nil {
		t.Fatalf("EditListing after rejection failed: %v", err)
	}

	// Resubmission clears the rejection reason
	resubmitted, err := svc.SubmitForVerification(ctx, developerSession, listing.ID)
	if err != nil {
		t.Fatalf("resubmission failed: %v", err)
	}
	if resubmitted.Status != models.ListingStatusPendingVerification {
		t.Errorf("expected PENDING_VERIFICATION after resubmit, got %s", resubmitted.Status)
	}
	if resubmitted.RejectionReason != nil {
		t.Errorf("rejection reason not cleared on resubmit: %v", *resubmitted.RejectionReason)
	}
}

func TestEditQueuedOrVerifiedFails(t *testing.T) {
	svc, _ := newTestListingService(t)
	ctx := context.Background()
	listing := createDraft(t, svc, models.ListingTypeSale)
	submitListing(t, svc, listing)

	newTitle := "Updated"
	_, err := svc.EditListing(ctx, developerSession, listing.ID, UpdateListingInput{Title: &newTitle})
	if !errors.Is(err, ErrInvalidState) {
		t.Errorf("expected ErrInvalidState editing queued listing, got %v", err)
	}

	if _, err := svc.AdminApprove(ctx, adminSession, listing.ID); err != nil {
		t.Fatalf("AdminApprove failed: %v", err)
	}

	_, err = svc.EditListing(ctx, developerSession, listing.ID, UpdateListingInput{Title: &newTitle})
	if !errors.Is(err, ErrInvalidState) {
		t.Errorf("expected ErrInvalidState editing verified listing, got %v", err)
	}
}

func TestDeleteDraftOnly(t *testing.T) {
	svc, _ := newTestListingService(t)
	ctx := context.Background()

	draft := createDraft(t, svc, models.ListingTypeLeadGen)
	if err := svc.DeleteDraft(ctx, developerSession, draft.ID); err != nil {
		t.Fatalf("DeleteDraft failed: %v", err)
	}
	if _, err := svc.GetListing(ctx, draft.ID); !errors.Is(err, ErrListingNotFound) {
		t.Errorf("expected ErrListingNotFound after delete, got %v", err)
	}

	queued := createDraft(t, svc, models.ListingTypeLeadGen)
	submitListing(t, svc, queued)
	if err := svc.DeleteDraft(ctx, developerSession, queued.ID); !errors.Is(err, ErrInvalidState) {
		t.Errorf("expected ErrInvalidState deleting queued listing, got %v", err)
	}
}

func TestOwnershipEnforced(t *testing.T) {
	svc, _ := newTestListingService(t)
	ctx := context.Background()
	listing := createDraft(t, svc, models.ListingTypeSale)

	newTitle := "Hijacked"
	_, err := svc.EditListing(ctx, otherDevSession, listing.ID, UpdateListingInput{Title: &newTitle})
	if !errors.Is(err, ErrForbidden) {
		t.Errorf("expected ErrForbidden for non-owner edit, got %v", err)
	}
	_, err = svc.SubmitForVerification(ctx, otherDevSession, listing.ID)
	if !errors.Is(err, ErrForbidden) {
		t.Errorf("expected ErrForbidden for non-owner submit, got %v", err)
	}
	if err := svc.DeleteDraft(ctx, otherDevSession, listing.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("expected ErrForbidden for non-owner delete, got %v", err)
	}
}

func TestAttachMediaValidation(t *testing.T) {
	svc, _ := newTestListingService(t)
	ctx := context.Background()
	listing := createDraft(t, svc, models.ListingTypeSale)

	var validationErr *ValidationError
	if _, err := svc.AttachMedia(ctx, developerSession, listing.ID, "GIF", "http://x"); !errors.As(err, &validationErr) {
		t.Errorf("expected ValidationError for unknown media type, got %v", err)
	}
	if _, err := svc.AttachMedia(ctx, developerSession, listing.ID, models.MediaTypeImage, "  "); !errors.As(err, &validationErr) {
		t.Errorf("expected ValidationError for blank url, got %v", err)
	}
}

func TestRemoveMediaNotFound(t *testing.T) {
	svc, _ := newTestListingService(t)
	listing := createDraft(t, svc, models.ListingTypeSale)

	_, err := svc.RemoveMedia(context.Background(), developerSession, listing.ID, uuid.New())
	if !errors.Is(err, ErrMediaNotFound) {
		t.Errorf("expected ErrMediaNotFound, got %v", err)
	}
}

func TestMediaSortOrderAssigned(t *testing.T) {
	svc, _ := newTestListingService(t)
	ctx := context.Background()
	listing := createDraft(t, svc, models.ListingTypeSale)

	first, err := svc.AttachMedia(ctx, developerSession, listing.ID, models.MediaTypeImage, "http://cdn.example.com/1.jpg")
	if err != nil {
		t.Fatalf("AttachMedia failed: %v", err)
	}
	second, err := svc.AttachMedia(ctx, developerSession, listing.ID, models.MediaTypeVideo, "http://cdn.example.com/tour.mp4")
	if err != nil {
		t.Fatalf("AttachMedia failed: %v", err)
	}

	if len(first.Media) != 1 || first.Media[0].SortOrder != 0 {
		t.Errorf("first media should have sort order 0: %+v", first.Media)
	}
	if len(second.Media) != 2 || second.Media[1].SortOrder != 1 {
		t.Errorf("second media should have sort order 1: %+v", second.Media)
	}
}

func TestMediaSortOrderUniqueAfterRemoval(t *testing.T) {
	svc, _ := newTestListingService(t)
	ctx := context.Background()
	listing := createDraft(t, svc, models.ListingTypeSale)

	first, err := svc.AttachMedia(ctx, developerSession, listing.ID, models.MediaTypeImage, "http://cdn.example.com/1.jpg")
	if err != nil {
		t.Fatalf("AttachMedia failed: %v", err)
	}
	if _, err := svc.AttachMedia(ctx, developerSession, listing.ID, models.MediaTypeImage, "http://cdn.example.com/2.jpg"); err != nil {
		t.Fatalf("AttachMedia failed: %v", err)
	}

	if _, err := svc.RemoveMedia(ctx, developerSession, listing.ID, first.Media[0].ID); err != nil {
		t.Fatalf("RemoveMedia failed: %v", err)
	}

	after, err := svc.AttachMedia(ctx, developerSession, listing.ID, models.MediaTypeImage, "http://cdn.example.com/3.jpg")
	if err != nil {
		t.Fatalf("AttachMedia failed: %v", err)
	}

	seen := make(map[int]bool, len(after.Media))
	for _, m := range after.Media {
		if seen[m.SortOrder] {
			t.Fatalf("duplicate sort order %d after removal: %+v", m.SortOrder, after.Media)
		}
		seen[m.SortOrder] = true
	}
	if after.Media[len(after.Media)-1].SortOrder != 2 {
		t.Errorf("new media should sort after the surviving entry, got %+v", after.Media)
	}
}

func TestConcurrentDecisionsOneWins(t *testing.T) {
	svc, _ := newTestListingService(t)
	ctx := context.Background()
	listing := createDraft(t, svc, models.ListingTypeRent)
	submitListing(t, svc, listing)

	var wg sync.WaitGroup
	results := make(chan error, 2)

	wg.Add(2)
	go func() {
		defer wg.Done()
		_, err := svc.AdminApprove(ctx, adminSession, listing.ID)
		results <- err
	}()
	go func() {
		defer wg.Done()
		_, err := svc.AdminReject(ctx, adminSession, listing.ID, "failed physical verification")
		results <- err
	}()
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
		} else if !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("unexpected error from racing decision: %v", err)
		}
	}
	if succeeded != 1 {
		t.Errorf("expected exactly one decision to win, got %d", succeeded)
	}

	got, err := svc.GetListing(ctx, listing.ID)
	if err != nil {
		t.Fatalf("GetListing failed: %v", err)
	}
	if got.Status != models.ListingStatusVerified && got.Status != models.ListingStatusRejected {
		t.Errorf("expected a terminal decision status, got %s", got.Status)
	}
}

func TestListByDeveloper(t *testing.T) {
	svc, _ := newTestListingService(t)
	ctx := context.Background()

	createDraft(t, svc, models.ListingTypeSale)
	createDraft(t, svc, models.ListingTypeRent)
	if _, err := svc.CreateDraft(ctx, otherDevSession.UserID, CreateListingInput{
		Title:       "Other dev's plot",
		ListingType: models.ListingTypeLeadGen,
	}); err != nil {
		t.Fatalf("CreateDraft failed: %v", err)
	}

	mine, err := svc.ListByDeveloper(ctx, developerSession.UserID)
	if err != nil {
		t.Fatalf("ListByDeveloper failed: %v", err)
	}
	if len(mine) != 2 {
		t.Errorf("expected 2 listings for developer, got %d", len(mine))
	}
}
