package handler

import (
	"strconv"

	"github.com/garden-market/internal/config"
	"github.com/garden-market/internal/middleware"
	"github.com/garden-market/internal/service"
	"github.com/garden-market/pkg/response"
	"github.com/gin-gonic/gin"
)

// FeedHandler handles the public feed API request
type FeedHandler struct {
	listingService *service.ListingService
	defaultLimit   int
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(listingService *service.ListingService, cfg config.ListingsConfig) *FeedHandler {
	limit := cfg.FeedLimit
	if limit <= 0 {
		limit = 100
	}
	return &FeedHandler{
		listingService: listingService,
		defaultLimit:   limit,
	}
}

// GetFeed returns the viewer-scoped feed of active listings, oldest first.
// Logged-in viewers never see their own listings; anonymous viewers see all
// active listings.
// GET /api/v1/feed?limit=
func (h *FeedHandler) GetFeed(c *gin.Context) {
	limit := h.defaultLimit
	if v := c.Query("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			response.BadRequest(c, "invalid limit")
			return
		}
		limit = parsed
	}

	viewer := middleware.GetEmail(c)
	listings, err := h.listingService.FetchFeed(c.Request.Context(), limit, viewer)
	if err != nil {
		response.InternalError(c, "failed to fetch feed")
		return
	}

	response.Success(c, listings)
}

// RegisterRoutes registers the feed route
func (h *FeedHandler) RegisterRoutes(rg *gin.RouterGroup, optionalAuthMiddleware gin.HandlerFunc) {
	rg.GET("/feed", optionalAuthMiddleware, h.GetFeed)
}
