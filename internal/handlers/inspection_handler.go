package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"property-market/internal/services"
)

type InspectionHandler struct {
	inspections *services.InspectionService
}

func NewInspectionHandler(inspections *services.InspectionService) *InspectionHandler {
	return &InspectionHandler{inspections: inspections}
}

// BookInspection books a site visit against a verified listing
func (h *InspectionHandler) BookInspection(c *gin.Context) {
	var input services.BookInspectionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	inspection, err := h.inspections.Book(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    inspection,
	})
}

// GetInspection returns a single inspection by id
func (h *InspectionHandler) GetInspection(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	inspection, err := h.inspections.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    inspection,
	})
}

// GetInspections returns all inspections, optionally scoped to a listing
func (h *InspectionHandler) GetInspections(c *gin.Context) {
	if raw := c.Query("listing_id"); raw != "" {
		listingID, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid listing_id"})
			return
		}

		inspections, err := h.inspections.ListByListing(c.Request.Context(), listingID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    inspections,
		})
		return
	}

	inspections, err := h.inspections.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    inspections,
	})
}

// CancelInspection marks an inspection CANCELLED
func (h *InspectionHandler) CancelInspection(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	inspection, err := h.inspections.Cancel(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    inspection,
	})
}
