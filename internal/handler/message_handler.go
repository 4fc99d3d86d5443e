package handler

import (
	"errors"

	"github.com/garden-market/internal/middleware"
	"github.com/garden-market/internal/service"
	"github.com/garden-market/pkg/response"
	"github.com/gin-gonic/gin"
)

// MessageHandler handles messaging API requests
type MessageHandler struct {
	socialService  *service.SocialService
	accountService *service.AccountService
}

// NewMessageHandler creates a new MessageHandler
func NewMessageHandler(socialService *service.SocialService, accountService *service.AccountService) *MessageHandler {
	return &MessageHandler{
		socialService:  socialService,
		accountService: accountService,
	}
}

// SendMessage appends a message from the caller to a recipient
// POST /api/v1/messages
func (h *MessageHandler) SendMessage(c *gin.Context) {
	var payload struct {
		Recipient string `json:"recipient" binding:"required,email"`
		Body      string `json:"body" binding:"required,min=1,max=2000"`
		Parent    *uint  `json:"parent"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if _, err := h.accountService.Find(payload.Recipient); err != nil {
		if errors.Is(err, service.ErrAccountNotFound) {
			response.NotFound(c, "recipient not found")
			return
		}
		response.InternalError(c, "failed to load recipient")
		return
	}

	message, err := h.socialService.SendMessage(payload.Body, middleware.GetEmail(c), payload.Recipient, payload.Parent)
	if err != nil {
		response.InternalError(c, "failed to send message")
		return
	}

	response.Created(c, message)
}

// GetThread returns the full bidirectional thread between the caller and
// another account, in store order.
// GET /api/v1/messages/:email
func (h *MessageHandler) GetThread(c *gin.Context) {
	other := c.Param("email")

	messages, err := h.socialService.FetchMessages(middleware.GetEmail(c), other)
	if err != nil {
		response.InternalError(c, "failed to fetch messages")
		return
	}

	response.Success(c, messages)
}

// RegisterRoutes registers message routes
func (h *MessageHandler) RegisterRoutes(rg *gin.RouterGroup, authMiddleware gin.HandlerFunc) {
	messages := rg.Group("/messages")
	messages.Use(authMiddleware)
	{
		messages.POST("", h.SendMessage)
		messages.GET("/:email", h.GetThread)
	}
}
