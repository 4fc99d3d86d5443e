package service

import (
	"fmt"

	"github.com/garden-market/internal/models"
	"github.com/garden-market/internal/repository"
)

var (
	ErrAccountNotFound = repository.ErrAccountNotFound
)

// AccountService handles the account data surface. The credential is opaque
// at this layer: it is stored and returned as given, never interpreted.
type AccountService struct {
	accountRepo *repository.AccountRepository
}

// NewAccountService creates a new AccountService
func NewAccountService(accountRepo *repository.AccountRepository) *AccountService {
	return &AccountService{accountRepo: accountRepo}
}

// Create inserts a new account and returns the affected row count
func (s *AccountService) Create(email, firstName, lastName, password string) (int64, error) {
	account := &models.Account{
		Email:     email,
		FirstName: firstName,
		LastName:  lastName,
		Password:  password,
	}
	if err := s.accountRepo.Create(account); err != nil {
		return 0, fmt.Errorf("create account %s: %w", email, err)
	}
	return 1, nil
}

// Find retrieves an account by email
func (s *AccountService) Find(email string) (*models.Account, error) {
	return s.accountRepo.GetByEmail(email)
}

// All retrieves every account ordered by email
func (s *AccountService) All() ([]models.Account, error) {
	return s.accountRepo.All()
}

// Exists reports whether an account with the given email exists
func (s *AccountService) Exists(email string) (bool, error) {
	return s.accountRepo.ExistsByEmail(email)
}

// Update overwrites name and bio. An empty password preserves the stored
// credential; a non-empty one replaces it. Returns the affected row count;
// 0 means the email does not exist.
func (s *AccountService) Update(email, firstName, lastName, bio, password string) (int64, error) {
	affected, err := s.accountRepo.Update(email, firstName, lastName, bio, password)
	if err != nil {
		return 0, fmt.Errorf("update account %s: %w", email, err)
	}
	return affected, nil
}

// FindPassword retrieves the stored credential for an account
func (s *AccountService) FindPassword(email string) (string, error) {
	return s.accountRepo.GetPassword(email)
}
