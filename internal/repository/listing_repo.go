package repository

import (
	"errors"

	"github.com/garden-market/internal/models"
	"gorm.io/gorm"
)

var (
	ErrListingNotFound = errors.New("listing not found")
)

// ListingRepository handles listing data access
type ListingRepository struct {
	db *gorm.DB
}

// NewListingRepository creates a new ListingRepository
func NewListingRepository(db *gorm.DB) *ListingRepository {
	return &ListingRepository{db: db}
}

// Create inserts a new listing; the store assigns the id
func (r *ListingRepository) Create(listing *models.Listing) error {
	return r.db.Create(listing).Error
}

// GetByID retrieves a listing by id
func (r *ListingRepository) GetByID(id uint) (*models.Listing, error) {
	var listing models.Listing
	result := r.db.First(&listing, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, result.Error
	}
	return &listing, nil
}

// All retrieves every listing ordered by id
func (r *ListingRepository) All() ([]models.Listing, error) {
	var listings []models.Listing
	result := r.db.Order("id").Find(&listings)
	return listings, result.Error
}

// Update overwrites all mutable fields except owner, time_posted, expired and
// the photo path. Returns the affected row count; 0 means the id does not
// exist.
func (r *ListingRepository) Update(id uint, name string, quantity float64, description string, price float64, unit models.Unit) (int64, error) {
	result := r.db.Model(&models.Listing{}).Where("id = ?", id).Updates(map[string]interface{}{
		"name":        name,
		"quantity":    quantity,
		"description": description,
		"price":       price,
		"unit":        unit,
	})
	return result.RowsAffected, result.Error
}

// DecrementQuantity applies a purchase as a column-relative update so that
// concurrent purchases both apply their decrements instead of clobbering each
// other's read snapshot. The amount is not checked against the remaining
// quantity here; that check belongs to the boundary layer.
func (r *ListingRepository) DecrementQuantity(id uint, amount float64) (int64, error) {
	result := r.db.Model(&models.Listing{}).Where("id = ?", id).
		UpdateColumn("quantity", gorm.Expr("quantity - ?", amount))
	return result.RowsAffected, result.Error
}

// DecrementQuantityGuarded is the conditional variant: it refuses to drive
// quantity negative and reports insufficient stock as a zero affected count.
// The purchase path does not use it; see DESIGN.md.
func (r *ListingRepository) DecrementQuantityGuarded(id uint, amount float64) (int64, error) {
	result := r.db.Model(&models.Listing{}).
		Where("id = ? AND quantity >= ?", id, amount).
		UpdateColumn("quantity", gorm.Expr("quantity - ?", amount))
	return result.RowsAffected, result.Error
}

// SetFilePath sets the denormalized photo path on the listing row. Last write
// wins.
func (r *ListingRepository) SetFilePath(id uint, path string) (int64, error) {
	result := r.db.Model(&models.Listing{}).Where("id = ?", id).Update("file_path", path)
	return result.RowsAffected, result.Error
}

// GetByAccountEmail retrieves an account's non-expired listings
func (r *ListingRepository) GetByAccountEmail(email string) ([]models.Listing, error) {
	var listings []models.Listing
	result := r.db.Where("account_email = ? AND expired = ?", email, false).Find(&listings)
	return listings, result.Error
}

// Feed retrieves the viewer-scoped view of active listings: quantity above
// zero, not expired, and not owned by the viewer. An empty viewerEmail skips
// the ownership exclusion. Ordered oldest-first by posting time, capped at
// limit.
func (r *ListingRepository) Feed(limit int, viewerEmail string) ([]models.Listing, error) {
	var listings []models.Listing
	query := r.db.Where("quantity > 0 AND expired = ?", false)
	if viewerEmail != "" {
		query = query.Where("account_email <> ?", viewerEmail)
	}
	result := query.Order("time_posted").Limit(limit).Find(&listings)
	return listings, result.Error
}

// ActiveIDs retrieves the ids of all listings not yet expired
func (r *ListingRepository) ActiveIDs() ([]uint, error) {
	var ids []uint
	result := r.db.Model(&models.Listing{}).Where("expired = ?", false).Pluck("id", &ids)
	return ids, result.Error
}

// TimePosted retrieves the raw stored posting time for a listing. The second
// return value reports whether the listing exists.
func (r *ListingRepository) TimePosted(id uint) (string, bool, error) {
	var raw []string
	result := r.db.Model(&models.Listing{}).Where("id = ?", id).Pluck("time_posted", &raw)
	if result.Error != nil {
		return "", false, result.Error
	}
	if len(raw) == 0 {
		return "", false, nil
	}
	return raw[0], true, nil
}

// MarkExpired flips the expired flag. The transition is one-directional;
// nothing resets it.
func (r *ListingRepository) MarkExpired(id uint) (int64, error) {
	result := r.db.Model(&models.Listing{}).Where("id = ?", id).Update("expired", true)
	return result.RowsAffected, result.Error
}

// OwnerEmail retrieves the owning account email for a listing
func (r *ListingRepository) OwnerEmail(id uint) (string, error) {
	var emails []string
	result := r.db.Model(&models.Listing{}).Where("id = ?", id).Pluck("account_email", &emails)
	if result.Error != nil {
		return "", result.Error
	}
	if len(emails) == 0 {
		return "", ErrListingNotFound
	}
	return emails[0], nil
}
