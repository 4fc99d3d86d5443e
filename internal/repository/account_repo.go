package repository

import (
	"errors"

	"github.com/garden-market/internal/models"
	"gorm.io/gorm"
)

var (
	ErrAccountNotFound = errors.New("account not found")
)

// AccountRepository handles account data access
type AccountRepository struct {
	db *gorm.DB
}

// NewAccountRepository creates a new AccountRepository
func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// Create inserts a new account
func (r *AccountRepository) Create(account *models.Account) error {
	return r.db.Create(account).Error
}

// GetByEmail retrieves an account by email
func (r *AccountRepository) GetByEmail(email string) (*models.Account, error) {
	var account models.Account
	result := r.db.Where("email = ?", email).First(&account)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, result.Error
	}
	return &account, nil
}

// All retrieves every account ordered by email
func (r *AccountRepository) All() ([]models.Account, error) {
	var accounts []models.Account
	result := r.db.Order("email").Find(&accounts)
	return accounts, result.Error
}

// ExistsByEmail reports whether an account with the given email exists
func (r *AccountRepository) ExistsByEmail(email string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Account{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

// Update overwrites name and bio, and the password only when a non-empty
// value is supplied. Returns the affected row count; 0 means the email does
// not exist.
func (r *AccountRepository) Update(email, firstName, lastName, bio, password string) (int64, error) {
	fields := map[string]interface{}{
		"first_name": firstName,
		"last_name":  lastName,
		"bio":        bio,
	}
	if password != "" {
		fields["password"] = password
	}
	result := r.db.Model(&models.Account{}).Where("email = ?", email).Updates(fields)
	return result.RowsAffected, result.Error
}

// GetPassword retrieves the stored credential for an account
func (r *AccountRepository) GetPassword(email string) (string, error) {
	var passwords []string
	result := r.db.Model(&models.Account{}).Where("email = ?", email).Pluck("password", &passwords)
	if result.Error != nil {
		return "", result.Error
	}
	if len(passwords) == 0 {
		return "", ErrAccountNotFound
	}
	return passwords[0], nil
}
