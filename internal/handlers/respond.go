package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"property-market/internal/services"
)

// respondError translates service-layer errors into HTTP responses. Every
// error is returned to the caller; nothing is swallowed here.
func respondError(c *gin.Context, err error) {
	var validationErr *services.ValidationError
	var policyErr *services.PolicyViolationError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Message})
	case errors.As(err, &policyErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":             policyErr.Error(),
			"images_required":   policyErr.ImagesRequired,
			"images_attached":   policyErr.ImagesAttached,
			"missing_documents": policyErr.MissingDocuments,
		})
	case errors.Is(err, services.ErrListingNotFound),
		errors.Is(err, services.ErrMediaNotFound),
		errors.Is(err, services.ErrDocumentNotFound),
		errors.Is(err, services.ErrInspectionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidState),
		errors.Is(err, services.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
