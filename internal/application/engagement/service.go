package engagement

import (
	"context"
	"errors"
	"time"

	"farmgate-backend/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrListingNotFound = errors.New("listing not found")

// Service enforces the engagement dedup policy over the store's uniqueness
// constraints. The check and the counter increment always run in one
// transaction; two concurrent identical requests cannot both succeed because
// the unique index, not application code, decides the winner.
type Service struct {
	DB *gorm.DB
	// Now is injectable for tests; nil means time.Now.
	Now func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// RecordListingView counts at most one view per (listing, viewer, UTC day).
// It returns true when the view was recorded and the counter incremented,
// false on a same-day duplicate. A duplicate is a normal outcome, not an
// error.
func (s *Service) RecordListingView(ctx context.Context, listingID, viewerID uuid.UUID, viewerIP string) (bool, error) {
	tx := s.DB.WithContext(ctx).Begin()
	if tx.Error != nil {
		return false, tx.Error
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var exists int64
	if err := tx.Model(&domain.Listing{}).Where("listing_id = ?", listingID).Count(&exists).Error; err != nil {
		tx.Rollback()
		return false, err
	}
	if exists == 0 {
		tx.Rollback()
		return false, ErrListingNotFound
	}

	view := &domain.ListingView{
		ListingID: listingID,
		ViewerID:  viewerID,
		ViewDay:   domain.ViewDay(s.now()),
		ViewerIP:  viewerIP,
	}
	res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(view)
	if res.Error != nil {
		tx.Rollback()
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		// Same-day duplicate: no view row, no counter change.
		tx.Rollback()
		return false, nil
	}

	err := tx.Model(&domain.Listing{}).
		Where("listing_id = ?", listingID).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1)).Error
	if err != nil {
		tx.Rollback()
		return false, err
	}
	if err := tx.Commit().Error; err != nil {
		return false, err
	}
	return true, nil
}

type ContactRequestInput struct {
	ListingID     uuid.UUID
	BuyerID       uuid.UUID
	Message       string
	ContactMethod domain.ContactPreference
}

// CreateContactRequest creates at most one contact request per
// (listing, buyer). The first insert increments contact_count; any later
// call returns the existing request id with created=false and mutates
// nothing.
func (s *Service) CreateContactRequest(ctx context.Context, in ContactRequestInput) (uuid.UUID, bool, error) {
	tx := s.DB.WithContext(ctx).Begin()
	if tx.Error != nil {
		return uuid.Nil, false, tx.Error
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var exists int64
	if err := tx.Model(&domain.Listing{}).Where("listing_id = ?", in.ListingID).Count(&exists).Error; err != nil {
		tx.Rollback()
		return uuid.Nil, false, err
	}
	if exists == 0 {
		tx.Rollback()
		return uuid.Nil, false, ErrListingNotFound
	}

	req := &domain.ContactRequest{
		ListingID:     in.ListingID,
		BuyerID:       in.BuyerID,
		Message:       in.Message,
		ContactMethod: in.ContactMethod,
	}
	res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(req)
	if res.Error != nil {
		tx.Rollback()
		return uuid.Nil, false, res.Error
	}
	if res.RowsAffected == 0 {
		var existing domain.ContactRequest
		err := tx.Where("listing_id = ? AND buyer_id = ?", in.ListingID, in.BuyerID).First(&existing).Error
		tx.Rollback()
		if err != nil {
			return uuid.Nil, false, err
		}
		return existing.RequestID, false, nil
	}

	err := tx.Model(&domain.Listing{}).
		Where("listing_id = ?", in.ListingID).
		UpdateColumn("contact_count", gorm.Expr("contact_count + ?", 1)).Error
	if err != nil {
		tx.Rollback()
		return uuid.Nil, false, err
	}
	if err := tx.Commit().Error; err != nil {
		return uuid.Nil, false, err
	}
	return req.RequestID, true, nil
}

// HasExistingContactRequest is a pure existence check with no side effects.
func (s *Service) HasExistingContactRequest(ctx context.Context, listingID, buyerID uuid.UUID) (bool, error) {
	var count int64
	err := s.DB.WithContext(ctx).
		Model(&domain.ContactRequest{}).
		Where("listing_id = ? AND buyer_id = ?", listingID, buyerID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// State is a buyer's engagement standing on one listing, for UI rendering.
type State struct {
	ViewedToday bool `json:"viewed_today"`
	Contacted   bool `json:"contacted"`
}

// EngagementState reports whether the buyer already viewed the listing today
// and whether a contact request exists.
func (s *Service) EngagementState(ctx context.Context, listingID, buyerID uuid.UUID) (*State, error) {
	var views int64
	err := s.DB.WithContext(ctx).
		Model(&domain.ListingView{}).
		Where("listing_id = ? AND viewer_id = ? AND view_day = ?", listingID, buyerID, domain.ViewDay(s.now())).
		Count(&views).Error
	if err != nil {
		return nil, err
	}
	contacted, err := s.HasExistingContactRequest(ctx, listingID, buyerID)
	if err != nil {
		return nil, err
	}
	return &State{ViewedToday: views > 0, Contacted: contacted}, nil
}
