package repository

import (
	"github.com/garden-market/internal/models"
	"gorm.io/gorm"
)

// FavoriteRepository handles favorite data access
type FavoriteRepository struct {
	db *gorm.DB
}

// NewFavoriteRepository creates a new FavoriteRepository
func NewFavoriteRepository(db *gorm.DB) *FavoriteRepository {
	return &FavoriteRepository{db: db}
}

// Create inserts a favorite row unconditionally. Duplicate pairs are allowed.
func (r *FavoriteRepository) Create(accountEmail, favoritesEmail string) error {
	return r.db.Create(&models.Favorite{
		AccountEmail:   accountEmail,
		FavoritesEmail: favoritesEmail,
	}).Error
}

// GetByAccount retrieves all favorites marked by an account
func (r *FavoriteRepository) GetByAccount(email string) ([]models.Favorite, error) {
	var favorites []models.Favorite
	result := r.db.Where("account_email = ?", email).Find(&favorites)
	return favorites, result.Error
}
