package handler

import (
	"errors"

	"github.com/garden-market/internal/middleware"
	"github.com/garden-market/internal/service"
	"github.com/garden-market/pkg/response"
	"github.com/gin-gonic/gin"
)

// AccountHandler handles account and favorites API requests
type AccountHandler struct {
	accountService *service.AccountService
	listingService *service.ListingService
	socialService  *service.SocialService
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(
	accountService *service.AccountService,
	listingService *service.ListingService,
	socialService *service.SocialService,
) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
		listingService: listingService,
		socialService:  socialService,
	}
}

// ListAccounts returns every account
// GET /api/v1/accounts
func (h *AccountHandler) ListAccounts(c *gin.Context) {
	accounts, err := h.accountService.All()
	if err != nil {
		response.InternalError(c, "failed to list accounts")
		return
	}
	response.Success(c, accounts)
}

// GetAccount returns one account with its non-expired listings
// GET /api/v1/accounts/:email
func (h *AccountHandler) GetAccount(c *gin.Context) {
	email := c.Param("email")

	account, err := h.accountService.Find(email)
	if err != nil {
		if errors.Is(err, service.ErrAccountNotFound) {
			response.NotFound(c, "account not found")
			return
		}
		response.InternalError(c, "failed to load account")
		return
	}

	listings, err := h.listingService.ListByAccount(email)
	if err != nil {
		response.InternalError(c, "failed to load listings")
		return
	}

	response.Success(c, gin.H{
		"account":  account,
		"listings": listings,
	})
}

// updateAccountPayload carries the mutable account fields. An empty password
// keeps the stored credential.
type updateAccountPayload struct {
	FirstName string `json:"first_name" binding:"required,min=1,max=40"`
	LastName  string `json:"last_name" binding:"required,min=1,max=40"`
	Bio       string `json:"bio" binding:"max=2000"`
	Password  string `json:"password" binding:"omitempty,min=6,max=100"`
}

// UpdateAccount updates the caller's own account
// PUT /api/v1/accounts/:email
func (h *AccountHandler) UpdateAccount(c *gin.Context) {
	email := c.Param("email")
	if email != middleware.GetEmail(c) {
		response.Forbidden(c, "cannot update another account")
		return
	}

	var payload updateAccountPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	affected, err := h.accountService.Update(email, payload.FirstName, payload.LastName, payload.Bio, payload.Password)
	if err != nil {
		response.InternalError(c, "failed to update account")
		return
	}
	if affected == 0 {
		response.NotFound(c, "account not found")
		return
	}

	response.Success(c, gin.H{"updated": affected})
}

// MarkFavorite bookmarks another account for the caller
// POST /api/v1/favorites
func (h *AccountHandler) MarkFavorite(c *gin.Context) {
	var payload struct {
		FavoriteEmail string `json:"favorite_email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.socialService.MarkFavorite(middleware.GetEmail(c), payload.FavoriteEmail); err != nil {
		response.InternalError(c, "failed to mark favorite")
		return
	}

	response.Created(c, gin.H{"favorite_email": payload.FavoriteEmail})
}

// ListFavorites returns the favorites marked by an account
// GET /api/v1/favorites/:email
func (h *AccountHandler) ListFavorites(c *gin.Context) {
	email := c.Param("email")

	if _, err := h.accountService.Find(email); err != nil {
		if errors.Is(err, service.ErrAccountNotFound) {
			response.NotFound(c, "account not found")
			return
		}
		response.InternalError(c, "failed to load account")
		return
	}

	favorites, err := h.socialService.ListFavorites(email)
	if err != nil {
		response.InternalError(c, "failed to list favorites")
		return
	}

	response.Success(c, favorites)
}

// RegisterRoutes registers account routes
func (h *AccountHandler) RegisterRoutes(rg *gin.RouterGroup, authMiddleware gin.HandlerFunc) {
	accounts := rg.Group("/accounts")
	{
		accounts.GET("", h.ListAccounts)
		accounts.GET("/:email", h.GetAccount)
		accounts.PUT("/:email", authMiddleware, h.UpdateAccount)
	}

	favorites := rg.Group("/favorites")
	favorites.Use(authMiddleware)
	{
		favorites.POST("", h.MarkFavorite)
		favorites.GET("/:email", h.ListFavorites)
	}
}
