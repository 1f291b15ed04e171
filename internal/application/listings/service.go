package listings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"farmgate-backend/internal/domain"
	"farmgate-backend/internal/geo"
	"farmgate-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrListingNotFound = errors.New("listing not found")
	ErrBatchNotFound   = errors.New("batch not found")
	ErrNotOwner        = errors.New("listing does not belong to seller")
	// ErrConstraintViolation wraps every validation failure on insert.
	ErrConstraintViolation = errors.New("constraint violation")
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Service owns all durable-store operations on listings. Counters are never
// written here; they belong to the engagement service's dedup-gated paths.
type Service struct {
	DB     *gorm.DB
	Fuzzer *geo.Fuzzer
	// PeriodDays is the listing lifetime applied when the seller does not
	// choose one; zero means the default of 30 days.
	PeriodDays int
	// NotifyWindowDays bounds the expiration-warning window; zero means the
	// default of 3 days.
	NotifyWindowDays int
	// Now is injectable for tests; nil means time.Now.
	Now func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) periodDays() int {
	if s.PeriodDays > 0 {
		return s.PeriodDays
	}
	return domain.DefaultListingPeriodDays
}

type CreateListingInput struct {
	SellerID          uuid.UUID
	LivestockType     domain.LivestockType
	Species           string
	Quantity          int
	MinPrice          float64
	MaxPrice          float64
	Currency          string
	Latitude          float64
	Longitude         float64
	FuzzingLevel      domain.FuzzingLevel
	PeriodDays        int
	Description       string
	PhotoURLs         []string
	ContactPreference domain.ContactPreference
	BatchID           *uuid.UUID
}

// CreateListing validates the seller payload, runs the geolocation fuzzer and
// persists the listing with status active.
func (s *Service) CreateListing(ctx context.Context, in CreateListingInput) (*domain.Listing, error) {
	if in.SellerID == uuid.Nil {
		return nil, fmt.Errorf("%w: seller_id is required", ErrConstraintViolation)
	}
	if !domain.IsValidLivestockType(in.LivestockType) {
		return nil, fmt.Errorf("%w: unknown livestock type %q", ErrConstraintViolation, in.LivestockType)
	}
	if !validation.IsValidQuantity(in.Quantity) {
		return nil, fmt.Errorf("%w: quantity must be positive", ErrConstraintViolation)
	}
	if !validation.IsValidPriceRange(in.MinPrice, in.MaxPrice) {
		return nil, fmt.Errorf("%w: prices must be positive and min_price <= max_price", ErrConstraintViolation)
	}
	if !validation.IsValidCurrency(in.Currency) {
		return nil, fmt.Errorf("%w: currency must be a 3-letter code", ErrConstraintViolation)
	}
	if in.ContactPreference != "" && !domain.IsValidContactPreference(in.ContactPreference) {
		return nil, fmt.Errorf("%w: unknown contact preference %q", ErrConstraintViolation, in.ContactPreference)
	}
	periodDays := in.PeriodDays
	if periodDays == 0 {
		periodDays = s.periodDays()
	}
	if periodDays < 1 {
		return nil, fmt.Errorf("%w: listing period must be at least one day", ErrConstraintViolation)
	}

	loc, err := s.Fuzzer.Fuzz(in.Latitude, in.Longitude, in.FuzzingLevel)
	if err != nil {
		return nil, err
	}

	now := s.now()
	var photos datatypes.JSON
	if len(in.PhotoURLs) > 0 {
		b, err := json.Marshal(in.PhotoURLs)
		if err != nil {
			return nil, err
		}
		photos = datatypes.JSON(b)
	}

	listing := &domain.Listing{
		SellerID:          in.SellerID,
		LivestockType:     in.LivestockType,
		Species:           in.Species,
		Quantity:          in.Quantity,
		MinPrice:          in.MinPrice,
		MaxPrice:          in.MaxPrice,
		Currency:          in.Currency,
		PreciseLat:        in.Latitude,
		PreciseLng:        in.Longitude,
		PublicLat:         loc.PublicLat,
		PublicLng:         loc.PublicLng,
		Country:           loc.Country,
		Region:            loc.Region,
		Locality:          loc.Locality,
		FormattedAddress:  loc.FormattedAddress,
		FuzzingLevel:      in.FuzzingLevel,
		Status:            domain.StatusActive,
		ExpiresAt:         domain.CalculateExpirationDate(now, periodDays),
		Description:       in.Description,
		PhotoURLs:         photos,
		ContactPreference: in.ContactPreference,
		BatchID:           in.BatchID,
	}
	if err := s.DB.WithContext(ctx).Create(listing).Error; err != nil {
		return nil, fmt.Errorf("failed to create listing: %w", err)
	}
	return listing, nil
}

// Page is one page of a filtered listing query.
type Page struct {
	Data     []domain.Listing `json:"data"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
}

// GetListings returns one page of active listings matching the criteria.
// Ordering is deterministic (created_at DESC, listing_id as tiebreak) so
// fixed criteria give stable, non-overlapping pages; a page beyond the last
// returns empty data with the correct total.
func (s *Service) GetListings(ctx context.Context, criteria domain.FilterCriteria, page, pageSize int) (*Page, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	q := s.DB.WithContext(ctx).Model(&domain.Listing{}).Where("status = ?", domain.StatusActive)
	q = applyCriteria(q, criteria)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, err
	}

	var data []domain.Listing
	err := q.Order("created_at DESC, listing_id").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&data).Error
	if err != nil {
		return nil, err
	}
	return &Page{Data: data, Total: total, Page: page, PageSize: pageSize}, nil
}

func applyCriteria(q *gorm.DB, c domain.FilterCriteria) *gorm.DB {
	if c.LivestockType != nil {
		q = q.Where("livestock_type = ?", *c.LivestockType)
	}
	if c.MinPrice != nil {
		q = q.Where("min_price >= ?", *c.MinPrice)
	}
	if c.MaxPrice != nil {
		q = q.Where("max_price <= ?", *c.MaxPrice)
	}
	if c.Region != "" {
		term := "%" + strings.ToLower(c.Region) + "%"
		q = q.Where("LOWER(region) LIKE ? OR LOWER(country) LIKE ?", term, term)
	}
	if c.Location != "" {
		term := "%" + strings.ToLower(c.Location) + "%"
		q = q.Where("LOWER(locality) LIKE ? OR LOWER(formatted_address) LIKE ?", term, term)
	}
	return q
}

func (s *Service) GetListingByID(ctx context.Context, listingID uuid.UUID) (*domain.Listing, error) {
	var listing domain.Listing
	if err := s.DB.WithContext(ctx).Where("listing_id = ?", listingID).First(&listing).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, err
	}
	return &listing, nil
}

// GetSellerListings returns all of a seller's listings, newest first,
// regardless of status.
func (s *Service) GetSellerListings(ctx context.Context, sellerID uuid.UUID) ([]domain.Listing, error) {
	var listings []domain.Listing
	err := s.DB.WithContext(ctx).
		Where("seller_id = ?", sellerID).
		Order("created_at DESC, listing_id").
		Find(&listings).Error
	if err != nil {
		return nil, err
	}
	return listings, nil
}

// ChangeStatus moves a listing along the lifecycle table on behalf of its
// seller. Republishing an expired listing restarts the expiration clock.
// The write is conditional on the status the transition was validated
// against, so a concurrent change (another request, the expiration sweep)
// cannot smuggle in a pair the lifecycle table forbids.
func (s *Service) ChangeStatus(ctx context.Context, listingID, sellerID uuid.UUID, to domain.ListingStatus) (*domain.Listing, error) {
	var listing domain.Listing
	if err := s.DB.WithContext(ctx).Where("listing_id = ?", listingID).First(&listing).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, err
	}
	if listing.SellerID != sellerID {
		return nil, ErrNotOwner
	}
	if !domain.ValidateStatusTransition(listing.Status, to) {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, listing.Status, to)
	}

	updates := map[string]interface{}{"status": to}
	if listing.Status == domain.StatusExpired && to == domain.StatusActive {
		updates["expires_at"] = domain.CalculateExpirationDate(s.now(), s.periodDays())
	}
	res := s.DB.WithContext(ctx).
		Model(&domain.Listing{}).
		Where("listing_id = ? AND status = ?", listingID, listing.Status).
		Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		// The status moved underneath us; the validated transition no longer
		// applies.
		return nil, fmt.Errorf("%w: listing status changed concurrently", domain.ErrInvalidTransition)
	}

	listing.Status = to
	if exp, ok := updates["expires_at"].(time.Time); ok {
		listing.ExpiresAt = exp
	}
	return &listing, nil
}

// DeleteListing soft-deletes a seller's listing. Engagement history stays in
// place; rows are never hard-deleted.
func (s *Service) DeleteListing(ctx context.Context, listingID, sellerID uuid.UUID) error {
	var listing domain.Listing
	if err := s.DB.WithContext(ctx).Where("listing_id = ?", listingID).First(&listing).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrListingNotFound
		}
		return err
	}
	if listing.SellerID != sellerID {
		return ErrNotOwner
	}
	return s.DB.WithContext(ctx).Delete(&listing).Error
}

// ExpireDue transitions every active listing whose expires_at has passed to
// expired, returning how many rows changed. The sweep tolerates eventual
// consistency; nothing depends on it running at an exact moment.
func (s *Service) ExpireDue(ctx context.Context, now time.Time) (int64, error) {
	res := s.DB.WithContext(ctx).
		Model(&domain.Listing{}).
		Where("status = ? AND expires_at < ?", domain.StatusActive, now).
		Update("status", domain.StatusExpired)
	return res.RowsAffected, res.Error
}

// ExpiringSoon returns active listings inside the notification window
// (now, now + NotifyWindowDays], across all sellers. The sweeper uses it to
// log warning volume.
func (s *Service) ExpiringSoon(ctx context.Context, now time.Time) ([]domain.Listing, error) {
	return s.expiringSoon(ctx, uuid.Nil, now)
}

// SellerExpiringSoon returns one seller's listings inside the notification
// window.
func (s *Service) SellerExpiringSoon(ctx context.Context, sellerID uuid.UUID, now time.Time) ([]domain.Listing, error) {
	return s.expiringSoon(ctx, sellerID, now)
}

func (s *Service) expiringSoon(ctx context.Context, sellerID uuid.UUID, now time.Time) ([]domain.Listing, error) {
	windowDays := s.NotifyWindowDays
	if windowDays <= 0 {
		windowDays = domain.DefaultNotifyWindowDays
	}
	deadline := now.AddDate(0, 0, windowDays)
	q := s.DB.WithContext(ctx).
		Where("status = ? AND expires_at > ? AND expires_at <= ?", domain.StatusActive, now, deadline)
	if sellerID != uuid.Nil {
		q = q.Where("seller_id = ?", sellerID)
	}
	var listings []domain.Listing
	if err := q.Order("expires_at, listing_id").Find(&listings).Error; err != nil {
		return nil, err
	}
	return listings, nil
}

// PrefillFromBatch loads a production batch and returns a listing draft
// pre-filled from it. The draft is never persisted; location and privacy
// level remain required seller input.
func (s *Service) PrefillFromBatch(ctx context.Context, batchID uuid.UUID) (*domain.Listing, error) {
	var batch domain.Batch
	if err := s.DB.WithContext(ctx).Where("batch_id = ?", batchID).First(&batch).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBatchNotFound
		}
		return nil, err
	}
	return domain.GenerateListingFromBatch(&batch), nil
}
