package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"property-market/internal/services"
)

type AdminHandler struct {
	reviews *services.ReviewService
}

func NewAdminHandler(reviews *services.ReviewService) *AdminHandler {
	return &AdminHandler{reviews: reviews}
}

// GetReviewQueue returns every listing awaiting a verification decision,
// oldest submission first
func (h *AdminHandler) GetReviewQueue(c *gin.Context) {
	listings, err := h.reviews.ListQueue(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    listings,
		"count":   len(listings),
	})
}

// ApproveListing marks a queued listing VERIFIED
func (h *AdminHandler) ApproveListing(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	listing, err := h.reviews.Approve(c.Request.Context(), session, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    listing,
	})
}

// RejectListing marks a queued listing REJECTED with a reason
func (h *AdminHandler) RejectListing(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	listing, err := h.reviews.Reject(c.Request.Context(), session, id, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    listing,
	})
}
