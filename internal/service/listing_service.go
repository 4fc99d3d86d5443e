package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/garden-market/internal/cache"
	"github.com/garden-market/internal/config"
	"github.com/garden-market/internal/models"
	"github.com/garden-market/internal/repository"
)

var (
	ErrListingNotFound = repository.ErrListingNotFound
)

// ListingService owns the listing lifecycle: creation, updates, purchases,
// photo association, the expiry sweep and the feed query.
type ListingService struct {
	listingRepo *repository.ListingRepository
	photoRepo   *repository.PhotoRepository
	feedCache   *cache.FeedCache
	expiryAge   time.Duration

	// now is swappable so expiry boundaries can be tested with a fixed clock
	now func() time.Time
}

// NewListingService creates a new ListingService. feedCache may be nil, in
// which case every feed read goes to the store.
func NewListingService(
	listingRepo *repository.ListingRepository,
	photoRepo *repository.PhotoRepository,
	feedCache *cache.FeedCache,
	cfg config.ListingsConfig,
) *ListingService {
	days := cfg.ExpiryDays
	if days <= 0 {
		days = 10
	}
	return &ListingService{
		listingRepo: listingRepo,
		photoRepo:   photoRepo,
		feedCache:   feedCache,
		expiryAge:   time.Duration(days) * 24 * time.Hour,
		now:         time.Now,
	}
}

// CreateListingRequest carries the fields of a new listing. Range validation
// (name 1-40, quantity 1-2000, description 1-500, price 0-5000) is the
// caller's contract, enforced at the HTTP boundary.
type CreateListingRequest struct {
	Name         string      `json:"name"`
	Quantity     float64     `json:"quantity"`
	Description  string      `json:"description"`
	Price        float64     `json:"price"`
	AccountEmail string      `json:"account_email"`
	Unit         models.Unit `json:"unit"`
}

// Create inserts a listing with a server-assigned posting time and returns
// the new id.
func (s *ListingService) Create(req *CreateListingRequest) (uint, error) {
	listing := &models.Listing{
		Name:         req.Name,
		Quantity:     req.Quantity,
		Description:  req.Description,
		Price:        req.Price,
		AccountEmail: req.AccountEmail,
		Unit:         req.Unit,
		TimePosted:   models.FormatPostedTime(s.now()),
		Expired:      false,
	}
	if err := s.listingRepo.Create(listing); err != nil {
		return 0, fmt.Errorf("create listing: %w", err)
	}
	s.invalidateFeed()
	return listing.ID, nil
}

// Update overwrites all mutable fields except owner and posting time. The
// returned count is 0 when the id does not exist; callers treat that as
// not-found.
func (s *ListingService) Update(id uint, name string, quantity float64, description string, price float64, unit models.Unit) (int64, error) {
	affected, err := s.listingRepo.Update(id, name, quantity, description, price, unit)
	if err != nil {
		return 0, fmt.Errorf("update listing %d: %w", id, err)
	}
	if affected > 0 {
		s.invalidateFeed()
	}
	return affected, nil
}

// Purchase decrements the listing quantity by amount via a single relative
// update. The pre-check that amount does not exceed the remaining quantity
// is the boundary layer's responsibility, immediately before this call. A
// zero count means the listing vanished between check and update.
func (s *ListingService) Purchase(id uint, amount float64) (int64, error) {
	affected, err := s.listingRepo.DecrementQuantity(id, amount)
	if err != nil {
		return 0, fmt.Errorf("purchase listing %d: %w", id, err)
	}
	if affected > 0 {
		s.invalidateFeed()
	}
	return affected, nil
}

// AssociatePhoto sets the denormalized photo path on the listing row.
// Idempotent; last write wins.
func (s *ListingService) AssociatePhoto(listingID uint, path string) error {
	if _, err := s.listingRepo.SetFilePath(listingID, path); err != nil {
		return fmt.Errorf("associate photo for listing %d: %w", listingID, err)
	}
	return nil
}

// InitPhoto creates a photo row for the listing with the path still unset
func (s *ListingService) InitPhoto(listingID uint) (*models.Photo, error) {
	return s.photoRepo.Init(listingID)
}

// SetPhoto completes a photo row with its file path
func (s *ListingService) SetPhoto(photoID uint, path string) (int64, error) {
	return s.photoRepo.SetPath(photoID, path)
}

// FirstPhotoPath returns the path of the first photo row for a listing. This
// is the photo-table side of the dual representation; AssociatePhoto writes
// the denormalized side.
func (s *ListingService) FirstPhotoPath(listingID uint) (*string, error) {
	return s.photoRepo.FirstPathByListing(listingID)
}

// Get retrieves a listing by id
func (s *ListingService) Get(id uint) (*models.Listing, error) {
	return s.listingRepo.GetByID(id)
}

// All retrieves every listing ordered by id
func (s *ListingService) All() ([]models.Listing, error) {
	return s.listingRepo.All()
}

// OwnerEmail returns the owning account email for a listing
func (s *ListingService) OwnerEmail(id uint) (string, error) {
	return s.listingRepo.OwnerEmail(id)
}

// ListByAccount sweeps expiry and then returns the account's non-expired
// listings. Sold-out listings stay visible to their owner here even though
// the feed excludes them.
func (s *ListingService) ListByAccount(email string) ([]models.Listing, error) {
	if err := s.SweepAll(); err != nil {
		return nil, err
	}
	return s.listingRepo.GetByAccountEmail(email)
}

// CheckExpire marks the listing expired when its age exceeds the expiry
// threshold. Missing listings, empty posting times and unparsable legacy
// values are all no-ops: a row we cannot date is treated as not yet due
// rather than as an error. The expired flag is never reset.
func (s *ListingService) CheckExpire(id uint) error {
	raw, found, err := s.listingRepo.TimePosted(id)
	if err != nil {
		return fmt.Errorf("check expire listing %d: %w", id, err)
	}
	if !found || raw == "" {
		return nil
	}
	posted, perr := time.Parse(models.TimeLayout, raw)
	if perr != nil {
		return nil
	}
	if s.now().Sub(posted) > s.expiryAge {
		if _, err := s.listingRepo.MarkExpired(id); err != nil {
			return fmt.Errorf("mark listing %d expired: %w", id, err)
		}
		s.invalidateFeed()
	}
	return nil
}

// SweepAll applies CheckExpire to every listing not yet expired. Full-table
// scan; acceptable at the listing counts this system expects.
func (s *ListingService) SweepAll() error {
	ids, err := s.listingRepo.ActiveIDs()
	if err != nil {
		return fmt.Errorf("sweep listings: %w", err)
	}
	for _, id := range ids {
		if err := s.CheckExpire(id); err != nil {
			return err
		}
	}
	return nil
}

// FetchFeed sweeps expiry, then returns up to limit active listings not owned
// by the viewer, oldest first. An empty viewerEmail means an anonymous viewer
// and skips the ownership exclusion. There is no cursor; callers wanting more
// rows call again with a wider limit.
func (s *ListingService) FetchFeed(ctx context.Context, limit int, viewerEmail string) ([]models.Listing, error) {
	if err := s.SweepAll(); err != nil {
		return nil, err
	}
	if s.feedCache != nil {
		if listings, ok := s.feedCache.Get(ctx, viewerEmail, limit); ok {
			return listings, nil
		}
	}
	listings, err := s.listingRepo.Feed(limit, viewerEmail)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	if s.feedCache != nil {
		if err := s.feedCache.Set(ctx, viewerEmail, limit, listings); err != nil {
			log.Printf("feed cache set failed: %v", err)
		}
	}
	return listings, nil
}

func (s *ListingService) invalidateFeed() {
	if s.feedCache == nil {
		return
	}
	if err := s.feedCache.Invalidate(context.Background()); err != nil {
		log.Printf("feed cache invalidate failed: %v", err)
	}
}
