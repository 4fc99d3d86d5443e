package service

import (
	"fmt"
	"time"

	"github.com/garden-market/internal/models"
	"github.com/garden-market/internal/repository"
)

// SocialService handles the favorites and messaging ledger.
type SocialService struct {
	favoriteRepo *repository.FavoriteRepository
	messageRepo  *repository.MessageRepository
}

// NewSocialService creates a new SocialService
func NewSocialService(favoriteRepo *repository.FavoriteRepository, messageRepo *repository.MessageRepository) *SocialService {
	return &SocialService{
		favoriteRepo: favoriteRepo,
		messageRepo:  messageRepo,
	}
}

// MarkFavorite appends a favorite row. Repeated calls for the same pair
// append duplicate rows; there is no dedup at this layer.
func (s *SocialService) MarkFavorite(accountEmail, favoritesEmail string) error {
	if err := s.favoriteRepo.Create(accountEmail, favoritesEmail); err != nil {
		return fmt.Errorf("mark favorite: %w", err)
	}
	return nil
}

// ListFavorites returns all favorites marked by an account
func (s *SocialService) ListFavorites(email string) ([]models.Favorite, error) {
	return s.favoriteRepo.GetByAccount(email)
}

// SendMessage appends a message to the thread between author and recipient.
// parent, when set, links the message as a reply.
func (s *SocialService) SendMessage(body, author, recipient string, parent *uint) (*models.Message, error) {
	message := &models.Message{
		Body:      body,
		Author:    author,
		Recipient: recipient,
		Parent:    parent,
		SentAt:    time.Now().UTC(),
	}
	if err := s.messageRepo.Create(message); err != nil {
		return nil, fmt.Errorf("send message: %w", err)
	}
	return message, nil
}

// FetchMessages returns the full bidirectional thread between two accounts,
// in store order.
func (s *SocialService) FetchMessages(a, b string) ([]models.Message, error) {
	return s.messageRepo.GetThread(a, b)
}
