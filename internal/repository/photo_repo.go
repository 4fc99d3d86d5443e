package repository

import (
	"errors"

	"github.com/garden-market/internal/models"
	"gorm.io/gorm"
)

var (
	ErrPhotoNotFound = errors.New("photo not found")
)

// PhotoRepository handles photo data access
type PhotoRepository struct {
	db *gorm.DB
}

// NewPhotoRepository creates a new PhotoRepository
func NewPhotoRepository(db *gorm.DB) *PhotoRepository {
	return &PhotoRepository{db: db}
}

// Init creates a photo row for a listing with the path still unset
func (r *PhotoRepository) Init(listingID uint) (*models.Photo, error) {
	photo := &models.Photo{ListingID: listingID}
	if err := r.db.Create(photo).Error; err != nil {
		return nil, err
	}
	return photo, nil
}

// SetPath sets the file path on a photo row once the upload completes
func (r *PhotoRepository) SetPath(photoID uint, path string) (int64, error) {
	result := r.db.Model(&models.Photo{}).Where("id = ?", photoID).Update("file_path", path)
	return result.RowsAffected, result.Error
}

// FirstPathByListing retrieves the path of the first photo row for a listing
func (r *PhotoRepository) FirstPathByListing(listingID uint) (*string, error) {
	var photo models.Photo
	result := r.db.Where("listing_id = ?", listingID).First(&photo)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrPhotoNotFound
		}
		return nil, result.Error
	}
	return photo.FilePath, nil
}

// GetByListing retrieves all photo rows for a listing
func (r *PhotoRepository) GetByListing(listingID uint) ([]models.Photo, error) {
	var photos []models.Photo
	result := r.db.Where("listing_id = ?", listingID).Find(&photos)
	return photos, result.Error
}
