package handlers

import (
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"property-market/internal/auth"
	"property-market/internal/models"
	"property-market/internal/services"
)

// BlobStorage uploads raw file bytes and returns a stable URL. Nil when no
// object store is configured; attach endpoints then accept URLs directly.
type BlobStorage interface {
	Upload(ctx context.Context, folder, originalFileName string, data []byte) (string, error)
}

type ListingHandler struct {
	listings *services.ListingService
	search   *services.SearchService
	storage  BlobStorage
}

func NewListingHandler(listings *services.ListingService, search *services.SearchService, storage BlobStorage) *ListingHandler {
	return &ListingHandler{
		listings: listings,
		search:   search,
		storage:  storage,
	}
}

// CreateListing creates a new draft owned by the caller
func (h *ListingHandler) CreateListing(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}

	var input services.CreateListingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	listing, err := h.listings.CreateDraft(c.Request.Context(), session.UserID, input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    listing,
	})
}

// UpdateListing applies a partial update to a draft or rejected listing
func (h *ListingHandler) UpdateListing(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var input services.UpdateListingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	listing, err := h.listings.EditListing(c.Request.Context(), session, id, input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    listing,
	})
}

// DeleteListing removes a draft
func (h *ListingHandler) DeleteListing(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.listings.DeleteDraft(c.Request.Context(), session, id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Listing deleted",
	})
}

// SubmitListing sends a listing into the verification queue
func (h *ListingHandler) SubmitListing(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	listing, err := h.listings.SubmitForVerification(c.Request.Context(), session, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    listing,
	})
}

// GetMyListings returns all listings owned by the caller
func (h *ListingHandler) GetMyListings(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}

	listings, err := h.listings.ListByDeveloper(c.Request.Context(), session.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    listings,
	})
}

// GetListing returns a single listing by id
func (h *ListingHandler) GetListing(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	listing, err := h.listings.GetListing(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    listing,
	})
}

// SearchListings returns verified listings matching the query filters
func (h *ListingHandler) SearchListings(c *gin.Context) {
	var filters models.SearchFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	listings, err := h.search.SearchVerified(c.Request.Context(), filters)
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

// AttachMedia adds an image or video to an editable listing. Accepts a
// multipart upload (file + type) when an object store is configured, or a
// JSON body carrying an already hosted URL.
func (h *ListingHandler) AttachMedia(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var mediaType models.MediaType
	var url string

	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		if h.storage == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Media uploads are not configured"})
			return
		}

		fileHeader, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
			return
		}
		data, err := readUpload(fileHeader)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read uploaded file"})
			return
		}

		mediaType = models.MediaType(c.PostForm("type"))
		url, err = h.storage.Upload(c.Request.Context(), "media", fileHeader.Filename, data)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store uploaded file"})
			return
		}
	} else {
		var req struct {
			Type models.MediaType `json:"type"`
			URL  string           `json:"url"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		mediaType = req.Type
		url = req.URL
	}

	listing, err := h.listings.AttachMedia(c.Request.Context(), session, id, mediaType, url)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    listing,
	})
}

// RemoveMedia detaches a media item from an editable listing
func (h *ListingHandler) RemoveMedia(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	mediaID, ok := parseUUIDParam(c, "mediaId")
	if !ok {
		return
	}

	listing, err := h.listings.RemoveMedia(c.Request.Context(), session, id, mediaID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    listing,
	})
}

// AttachDocument adds a verification document to an editable listing.
// Accepts a multipart upload (file + doc_type) or a JSON body with a
// document name.
func (h *ListingHandler) AttachDocument(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var docType models.DocType
	var name string

	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		if h.storage == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Document uploads are not configured"})
			return
		}

		fileHeader, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
			return
		}
		data, err := readUpload(fileHeader)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read uploaded file"})
			return
		}

		docType = models.DocType(c.PostForm("doc_type"))
		name, err = h.storage.Upload(c.Request.Context(), "documents", fileHeader.Filename, data)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store uploaded file"})
			return
		}
	} else {
		var req struct {
			DocType models.DocType `json:"doc_type"`
			Name    string         `json:"name"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		docType = req.DocType
		name = req.Name
	}

	listing, err := h.listings.AttachDocument(c.Request.Context(), session, id, docType, name)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    listing,
	})
}

// RemoveDocument detaches a document from an editable listing
func (h *ListingHandler) RemoveDocument(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	documentID, ok := parseUUIDParam(c, "documentId")
	if !ok {
		return
	}

	listing, err := h.listings.RemoveDocument(c.Request.Context(), session, id, documentID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    listing,
	})
}

// requireSession pulls the authenticated session set by the auth middleware.
func requireSession(c *gin.Context) (models.Session, bool) {
	session, ok := auth.GetSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return models.Session{}, false
	}
	return session, true
}

// parseUUIDParam parses a UUID path parameter, responding 400 on failure.
func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}

func readUpload(fileHeader *multipart.FileHeader) ([]byte, error) {
	f, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
