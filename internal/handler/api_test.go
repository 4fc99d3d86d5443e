package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/garden-market/internal/config"
	"github.com/garden-market/internal/handler"
	"github.com/garden-market/internal/middleware"
	"github.com/garden-market/internal/models"
	"github.com/garden-market/internal/repository"
	"github.com/garden-market/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testAPI struct {
	router  *gin.Engine
	uploads string
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Account{},
		&models.Listing{},
		&models.Photo{},
		&models.Favorite{},
		&models.Message{},
	))

	accountRepo := repository.NewAccountRepository(db)
	listingRepo := repository.NewListingRepository(db)
	photoRepo := repository.NewPhotoRepository(db)
	favoriteRepo := repository.NewFavoriteRepository(db)
	messageRepo := repository.NewMessageRepository(db)

	listingsCfg := config.ListingsConfig{ExpiryDays: 10, FeedLimit: 100}
	uploadsDir := t.TempDir()
	uploadsCfg := config.UploadsConfig{Dir: uploadsDir, URLPrefix: "/static/photos/"}

	authService := service.NewAuthService(accountRepo, config.JWTConfig{Secret: "test-secret", ExpireHours: 1})
	accountService := service.NewAccountService(accountRepo)
	listingService := service.NewListingService(listingRepo, photoRepo, nil, listingsCfg)
	socialService := service.NewSocialService(favoriteRepo, messageRepo)

	authMw := middleware.AuthMiddleware(authService)
	optionalAuthMw := middleware.OptionalAuthMiddleware(authService)

	router := gin.New()
	api := router.Group("/api/v1")
	handler.NewAuthHandler(authService).RegisterRoutes(api)
	handler.NewAccountHandler(accountService, listingService, socialService).RegisterRoutes(api, authMw)
	handler.NewListingHandler(listingService, uploadsCfg).RegisterRoutes(api, authMw)
	handler.NewFeedHandler(listingService, listingsCfg).RegisterRoutes(api, optionalAuthMw)
	handler.NewMessageHandler(socialService, accountService).RegisterRoutes(api, authMw)

	return &testAPI{router: router, uploads: uploadsDir}
}

func (a *testAPI) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func (a *testAPI) signup(t *testing.T, email string) string {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"email":      email,
		"first_name": "Test",
		"last_name":  "Farmer",
		"password":   "hunter22",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = a.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email":    email,
		"password": "hunter22",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	var token service.TokenResponse
	require.NoError(t, json.Unmarshal(env.Data, &token))
	require.NotEmpty(t, token.AccessToken)
	return token.AccessToken
}

func (a *testAPI) createListing(t *testing.T, token, name string, quantity float64) uint {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/api/v1/listings", token, gin.H{
		"name":        name,
		"quantity":    quantity,
		"description": "fresh from the garden",
		"price":       2.5,
		"unit":        "pound",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	var created struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	require.NotZero(t, created.ID)
	return created.ID
}

func (a *testAPI) feedIDs(t *testing.T, token string) []uint {
	t.Helper()
	rec := a.do(t, http.MethodGet, "/api/v1/feed", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	var listings []models.Listing
	require.NoError(t, json.Unmarshal(env.Data, &listings))
	ids := make([]uint, 0, len(listings))
	for _, l := range listings {
		ids = append(ids, l.ID)
	}
	return ids
}

func TestAuthRequiredForCreate(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/api/v1/listings", "", gin.H{
		"name": "Eggs", "quantity": 12.0, "description": "d", "price": 4.0, "unit": "piece",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestFeedExcludesViewerOwnListings(t *testing.T) {
	api := newTestAPI(t)
	seller := api.signup(t, "seller@x.com")
	buyer := api.signup(t, "buyer@x.com")

	id := api.createListing(t, seller, "Zucchini", 6)

	assert.Contains(t, api.feedIDs(t, buyer), id)
	assert.NotContains(t, api.feedIDs(t, seller), id)
	// Anonymous viewers see everything active
	assert.Contains(t, api.feedIDs(t, ""), id)
}

func TestPurchaseFlow(t *testing.T) {
	api := newTestAPI(t)
	seller := api.signup(t, "seller@x.com")
	buyer := api.signup(t, "buyer@x.com")

	id := api.createListing(t, seller, "Eggs", 12)

	rec := api.do(t, http.MethodPost, fmt.Sprintf("/api/v1/listings/%d/purchase", id), buyer, gin.H{"amount": 5.0})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = api.do(t, http.MethodGet, fmt.Sprintf("/api/v1/listings/%d", id), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	var listing models.Listing
	require.NoError(t, json.Unmarshal(env.Data, &listing))
	assert.Equal(t, 7.0, listing.Quantity)

	// Over-buying the remainder is rejected before any update
	rec = api.do(t, http.MethodPost, fmt.Sprintf("/api/v1/listings/%d/purchase", id), buyer, gin.H{"amount": 8.0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Buying out the remainder drops the listing from the feed
	rec = api.do(t, http.MethodPost, fmt.Sprintf("/api/v1/listings/%d/purchase", id), buyer, gin.H{"amount": 7.0})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, api.feedIDs(t, buyer), id)
}

func TestPurchaseMissingListing(t *testing.T) {
	api := newTestAPI(t)
	buyer := api.signup(t, "buyer@x.com")

	rec := api.do(t, http.MethodPost, "/api/v1/listings/99999/purchase", buyer, gin.H{"amount": 1.0})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateListingOwnershipEnforced(t *testing.T) {
	api := newTestAPI(t)
	seller := api.signup(t, "seller@x.com")
	other := api.signup(t, "other@x.com")

	id := api.createListing(t, seller, "Basil", 10)
	payload := gin.H{
		"name": "Sweet Basil", "quantity": 9.0, "description": "aromatic", "price": 1.5, "unit": "gram",
	}

	rec := api.do(t, http.MethodPut, fmt.Sprintf("/api/v1/listings/%d", id), other, payload)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = api.do(t, http.MethodPut, fmt.Sprintf("/api/v1/listings/%d", id), seller, payload)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestCreateListingValidation(t *testing.T) {
	api := newTestAPI(t)
	seller := api.signup(t, "seller@x.com")

	// Quantity above the accepted range
	rec := api.do(t, http.MethodPost, "/api/v1/listings", seller, gin.H{
		"name": "Corn", "quantity": 2001.0, "description": "d", "price": 1.0, "unit": "piece",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Unknown unit
	rec = api.do(t, http.MethodPost, "/api/v1/listings", seller, gin.H{
		"name": "Corn", "quantity": 10.0, "description": "d", "price": 1.0, "unit": "bushel",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAccountUpdateIsSelfOnly(t *testing.T) {
	api := newTestAPI(t)
	alice := api.signup(t, "alice@x.com")
	api.signup(t, "bob@x.com")

	payload := gin.H{"first_name": "Alicia", "last_name": "Jones", "bio": "grows herbs"}

	rec := api.do(t, http.MethodPut, "/api/v1/accounts/bob@x.com", alice, payload)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = api.do(t, http.MethodPut, "/api/v1/accounts/alice@x.com", alice, payload)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Empty password in the update keeps the credential working
	rec = api.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email": "alice@x.com", "password": "hunter22",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestFavoritesEndpoints(t *testing.T) {
	api := newTestAPI(t)
	alice := api.signup(t, "alice@x.com")
	api.signup(t, "bob@x.com")

	for i := 0; i < 2; i++ {
		rec := api.do(t, http.MethodPost, "/api/v1/favorites", alice, gin.H{"favorite_email": "bob@x.com"})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec := api.do(t, http.MethodGet, "/api/v1/favorites/alice@x.com", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	var favorites []models.Favorite
	require.NoError(t, json.Unmarshal(env.Data, &favorites))
	assert.Len(t, favorites, 2)

	rec = api.do(t, http.MethodGet, "/api/v1/favorites/nobody@x.com", alice, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMessagingEndpoints(t *testing.T) {
	api := newTestAPI(t)
	alice := api.signup(t, "alice@x.com")
	bob := api.signup(t, "bob@x.com")

	rec := api.do(t, http.MethodPost, "/api/v1/messages", alice, gin.H{
		"recipient": "bob@x.com", "body": "still have the squash?",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	var sent models.Message
	require.NoError(t, json.Unmarshal(env.Data, &sent))

	rec = api.do(t, http.MethodPost, "/api/v1/messages", bob, gin.H{
		"recipient": "alice@x.com", "body": "yes, two left", "parent": sent.ID,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = api.do(t, http.MethodGet, "/api/v1/messages/bob@x.com", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	var thread []models.Message
	require.NoError(t, json.Unmarshal(env.Data, &thread))
	require.Len(t, thread, 2)
	require.NotNil(t, thread[1].Parent)
	assert.Equal(t, sent.ID, *thread[1].Parent)

	// Unknown recipient
	rec = api.do(t, http.MethodPost, "/api/v1/messages", alice, gin.H{
		"recipient": "nobody@x.com", "body": "hello?",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPhotoUpload(t *testing.T) {
	api := newTestAPI(t)
	seller := api.signup(t, "seller@x.com")
	id := api.createListing(t, seller, "Plums", 20)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("photo", "plums.jpg")
	require.NoError(t, err)
	_, err = part.Write([]byte("not really a jpeg"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/v1/listings/%d/photo", id), &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+seller)
	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	var uploaded struct {
		PhotoID  uint   `json:"photo_id"`
		FilePath string `json:"file_path"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &uploaded))
	require.NotEmpty(t, uploaded.FilePath)

	// The file landed in the uploads directory
	stored := filepath.Join(api.uploads, filepath.Base(uploaded.FilePath))
	data, err := os.ReadFile(stored)
	require.NoError(t, err)
	assert.Equal(t, "not really a jpeg", string(data))

	// The listing row carries the denormalized path
	getRec := api.do(t, http.MethodGet, fmt.Sprintf("/api/v1/listings/%d", id), "", nil)
	require.Equal(t, http.StatusOK, getRec.Code)
	require.NoError(t, json.Unmarshal(getRec.Body.Bytes(), &env))
	var listing models.Listing
	require.NoError(t, json.Unmarshal(env.Data, &listing))
	require.NotNil(t, listing.FilePath)
	assert.Equal(t, uploaded.FilePath, *listing.FilePath)
}
