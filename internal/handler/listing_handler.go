package handler

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"

	"github.com/garden-market/internal/config"
	"github.com/garden-market/internal/middleware"
	"github.com/garden-market/internal/models"
	"github.com/garden-market/internal/service"
	"github.com/garden-market/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ListingHandler handles listing lifecycle API requests
type ListingHandler struct {
	listingService *service.ListingService
	uploads        config.UploadsConfig
}

// NewListingHandler creates a new ListingHandler
func NewListingHandler(listingService *service.ListingService, uploads config.UploadsConfig) *ListingHandler {
	return &ListingHandler{
		listingService: listingService,
		uploads:        uploads,
	}
}

// listingPayload carries the caller-validated listing fields. The ranges are
// the documented contract the lifecycle manager relies on.
type listingPayload struct {
	Name        string      `json:"name" binding:"required,min=1,max=40"`
	Quantity    float64     `json:"quantity" binding:"required,gte=1,lte=2000"`
	Description string      `json:"description" binding:"required,min=1,max=500"`
	Price       float64     `json:"price" binding:"gte=0,lte=5000"`
	Unit        models.Unit `json:"unit" binding:"required,oneof=pound piece ounce kilogram gram other"`
}

// CreateListing creates a listing owned by the caller
// POST /api/v1/listings
func (h *ListingHandler) CreateListing(c *gin.Context) {
	var payload listingPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	id, err := h.listingService.Create(&service.CreateListingRequest{
		Name:         payload.Name,
		Quantity:     payload.Quantity,
		Description:  payload.Description,
		Price:        payload.Price,
		AccountEmail: middleware.GetEmail(c),
		Unit:         payload.Unit,
	})
	if err != nil {
		response.InternalError(c, "failed to create listing")
		return
	}

	response.Created(c, gin.H{"id": id})
}

// GetListing returns one listing
// GET /api/v1/listings/:id
func (h *ListingHandler) GetListing(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.BadRequest(c, "invalid listing id")
		return
	}

	listing, err := h.listingService.Get(id)
	if err != nil {
		if errors.Is(err, service.ErrListingNotFound) {
			response.NotFound(c, "listing not found")
			return
		}
		response.InternalError(c, "failed to load listing")
		return
	}

	response.Success(c, listing)
}

// UpdateListing overwrites the mutable fields of the caller's listing
// PUT /api/v1/listings/:id
func (h *ListingHandler) UpdateListing(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.BadRequest(c, "invalid listing id")
		return
	}

	owner, err := h.listingService.OwnerEmail(id)
	if err != nil {
		if errors.Is(err, service.ErrListingNotFound) {
			response.NotFound(c, "listing not found")
			return
		}
		response.InternalError(c, "failed to load listing")
		return
	}
	if owner != middleware.GetEmail(c) {
		response.Forbidden(c, "cannot update another account's listing")
		return
	}

	var payload listingPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	affected, err := h.listingService.Update(id, payload.Name, payload.Quantity, payload.Description, payload.Price, payload.Unit)
	if err != nil {
		response.InternalError(c, "failed to update listing")
		return
	}
	if affected == 0 {
		response.NotFound(c, "listing not found")
		return
	}

	response.Success(c, gin.H{"updated": affected})
}

// Purchase buys an amount of a listing. The amount is re-checked against the
// remaining quantity here, immediately before the relative update.
// POST /api/v1/listings/:id/purchase
func (h *ListingHandler) Purchase(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.BadRequest(c, "invalid listing id")
		return
	}

	var payload struct {
		Amount float64 `json:"amount" binding:"required,gt=0,lte=2000"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	listing, err := h.listingService.Get(id)
	if err != nil {
		if errors.Is(err, service.ErrListingNotFound) {
			response.NotFound(c, "listing not found")
			return
		}
		response.InternalError(c, "failed to load listing")
		return
	}

	if payload.Amount > listing.Quantity {
		response.BadRequest(c, "invalid amount")
		return
	}

	affected, err := h.listingService.Purchase(id, payload.Amount)
	if err != nil {
		response.InternalError(c, "failed to purchase")
		return
	}
	if affected == 0 {
		response.NotFound(c, "listing not found")
		return
	}

	response.Success(c, gin.H{
		"id":     id,
		"amount": payload.Amount,
		"unit":   listing.Unit,
		"name":   listing.Name,
	})
}

// UploadPhoto stores a photo file for the caller's listing and records both
// the photo row and the denormalized path on the listing.
// POST /api/v1/listings/:id/photo
func (h *ListingHandler) UploadPhoto(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.BadRequest(c, "invalid listing id")
		return
	}

	owner, err := h.listingService.OwnerEmail(id)
	if err != nil {
		if errors.Is(err, service.ErrListingNotFound) {
			response.NotFound(c, "listing not found")
			return
		}
		response.InternalError(c, "failed to load listing")
		return
	}
	if owner != middleware.GetEmail(c) {
		response.Forbidden(c, "cannot add photos to another account's listing")
		return
	}

	file, err := c.FormFile("photo")
	if err != nil {
		response.BadRequest(c, "missing photo file")
		return
	}

	photo, err := h.listingService.InitPhoto(id)
	if err != nil {
		response.InternalError(c, "failed to record photo")
		return
	}

	fileName := uuid.New().String() + filepath.Ext(file.Filename)
	if err := os.MkdirAll(h.uploads.Dir, 0755); err != nil {
		response.InternalError(c, "failed to store photo")
		return
	}
	if err := c.SaveUploadedFile(file, filepath.Join(h.uploads.Dir, fileName)); err != nil {
		response.InternalError(c, "failed to store photo")
		return
	}

	urlPath := h.uploads.URLPrefix + fileName
	if _, err := h.listingService.SetPhoto(photo.ID, urlPath); err != nil {
		response.InternalError(c, "failed to record photo")
		return
	}
	if err := h.listingService.AssociatePhoto(id, urlPath); err != nil {
		response.InternalError(c, "failed to record photo")
		return
	}

	response.Created(c, gin.H{
		"photo_id":  photo.ID,
		"file_path": urlPath,
	})
}

func parseID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	return uint(id), err
}

// RegisterRoutes registers listing routes
func (h *ListingHandler) RegisterRoutes(rg *gin.RouterGroup, authMiddleware gin.HandlerFunc) {
	listings := rg.Group("/listings")
	{
		listings.GET("/:id", h.GetListing)
		listings.POST("", authMiddleware, h.CreateListing)
		listings.PUT("/:id", authMiddleware, h.UpdateListing)
		listings.POST("/:id/purchase", authMiddleware, h.Purchase)
		listings.POST("/:id/photo", authMiddleware, h.UploadPhoto)
	}
}
