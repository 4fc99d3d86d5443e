package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/garden-market/internal/config"
	"github.com/garden-market/internal/models"
	"github.com/garden-market/internal/repository"
	"github.com/garden-market/pkg/crypto"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already taken")
	ErrInvalidToken       = errors.New("invalid token")
)

// AuthService handles signup and login. Credential hashing lives here, at the
// boundary, so the account surface below it stays opaque about passwords.
type AuthService struct {
	accountRepo *repository.AccountRepository
	jwtConfig   config.JWTConfig
}

// NewAuthService creates a new AuthService
func NewAuthService(accountRepo *repository.AccountRepository, jwtConfig config.JWTConfig) *AuthService {
	return &AuthService{
		accountRepo: accountRepo,
		jwtConfig:   jwtConfig,
	}
}

// RegisterRequest represents the signup request
type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email"`
	FirstName string `json:"first_name" binding:"required,min=1,max=40"`
	LastName  string `json:"last_name" binding:"required,min=1,max=40"`
	Password  string `json:"password" binding:"required,min=6,max=100"`
}

// LoginRequest represents the login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse represents the JWT token response
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// JWTClaims represents the JWT claims
type JWTClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Register creates a new account with a hashed credential
func (s *AuthService) Register(req *RegisterRequest) (*models.Account, error) {
	exists, err := s.accountRepo.ExistsByEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailTaken
	}

	hash, err := crypto.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	account := &models.Account{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  hash,
	}
	if err := s.accountRepo.Create(account); err != nil {
		return nil, err
	}
	return account, nil
}

// Login authenticates an account and returns a JWT token
func (s *AuthService) Login(req *LoginRequest) (*TokenResponse, error) {
	stored, err := s.accountRepo.GetPassword(req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !crypto.CheckPassword(req.Password, stored) {
		return nil, ErrInvalidCredentials
	}

	return s.generateToken(req.Email)
}

// RefreshToken issues a new token from a still-valid one
func (s *AuthService) RefreshToken(tokenString string) (*TokenResponse, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, ErrInvalidToken
	}
	return s.generateToken(claims.Email)
}

// ValidateToken validates a JWT token and returns the claims
func (s *AuthService) ValidateToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.jwtConfig.Secret), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, ErrInvalidToken
}

func (s *AuthService) generateToken(email string) (*TokenResponse, error) {
	expiresIn := time.Duration(s.jwtConfig.ExpireHours) * time.Hour

	claims := &JWTClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "garden-market",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtConfig.Secret))
	if err != nil {
		return nil, err
	}

	return &TokenResponse{
		AccessToken: tokenString,
		TokenType:   "Bearer",
		ExpiresIn:   s.jwtConfig.ExpireHours * 3600,
	}, nil
}
