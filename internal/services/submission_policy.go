package services

import (
	"property-market/internal/models"
)

// minimumImages is the number of IMAGE media entries every listing needs
// before it can be submitted for verification.
const minimumImages = 1

// RequiredDocuments returns the document categories a listing of the given
// type must carry before submission. LEAD_GEN listings need none.
func RequiredDocuments(listingType models.ListingType) []models.DocType {
	switch listingType {
	case models.ListingTypeSale:
		return []models.DocType{
			models.DocTypeTitleDoc,
			models.DocTypeSurveyPlan,
			models.DocTypeBuildingApproval,
		}
	case models.ListingTypeRent:
		return []models.DocType{models.DocTypeProofOfOwnership}
	default:
		return nil
	}
}

// MinimumImages returns the image count floor for submission.
func MinimumImages() int {
	return minimumImages
}

// EvaluateSubmission checks a listing against the submission policy. It
// returns nil when the listing satisfies the policy, or a
// PolicyViolationError naming every unmet requirement.
func EvaluateSubmission(listing *models.Listing) error {
	images := 0
	for _, m := range listing.Media {
		if m.Type == models.MediaTypeImage {
			images++
		}
	}

	attached := make(map[models.DocType]bool, len(listing.Documents))
	for _, d := range listing.Documents {
		attached[d.DocType] = true
	}

	var missing []models.DocType
	for _, required := range RequiredDocuments(listing.ListingType) {
		if !attached[required] {
			missing = append(missing, required)
		}
	}

	if images >= minimumImages && len(missing) == 0 {
		return nil
	}

	return &PolicyViolationError{
		ImagesRequired:   minimumImages,
		ImagesAttached:   images,
		MissingDocuments: missing,
	}
}
