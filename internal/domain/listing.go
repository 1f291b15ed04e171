package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// LivestockType classifies what a listing sells.
type LivestockType string

const (
	LivestockPoultry LivestockType = "poultry"
	LivestockFish    LivestockType = "fish"
	LivestockCattle  LivestockType = "cattle"
	LivestockGoats   LivestockType = "goats"
	LivestockSheep   LivestockType = "sheep"
	LivestockBees    LivestockType = "bees"
)

// IsValidLivestockType reports whether t is one of the known livestock types.
func IsValidLivestockType(t LivestockType) bool {
	switch t {
	case LivestockPoultry, LivestockFish, LivestockCattle, LivestockGoats, LivestockSheep, LivestockBees:
		return true
	}
	return false
}

// ListingStatus is the lifecycle state of a listing.
type ListingStatus string

const (
	StatusActive  ListingStatus = "active"
	StatusPaused  ListingStatus = "paused"
	StatusSold    ListingStatus = "sold"
	StatusExpired ListingStatus = "expired"
)

// FuzzingLevel controls how far a listing's public coordinates are perturbed
// from the precise ones.
type FuzzingLevel string

const (
	FuzzLow    FuzzingLevel = "low"
	FuzzMedium FuzzingLevel = "medium"
	FuzzHigh   FuzzingLevel = "high"
)

// ContactPreference is how a seller wants to be reached.
type ContactPreference string

const (
	ContactApp   ContactPreference = "app"
	ContactPhone ContactPreference = "phone"
	ContactBoth  ContactPreference = "both"
)

// IsValidContactPreference reports whether p is a known contact preference.
func IsValidContactPreference(p ContactPreference) bool {
	switch p {
	case ContactApp, ContactPhone, ContactBoth:
		return true
	}
	return false
}

// Listing is a seller's published offer. Precise coordinates are stored but
// never serialized; only the fuzzed public location leaves the server.
// ViewCount and ContactCount change only through the engagement service's
// dedup-gated increments.
type Listing struct {
	ListingID         uuid.UUID         `gorm:"column:listing_id;type:uuid;primaryKey" json:"listing_id"`
	SellerID          uuid.UUID         `gorm:"column:seller_id;type:uuid;not null;index" json:"seller_id"`
	LivestockType     LivestockType     `gorm:"column:livestock_type;type:varchar(20);not null" json:"livestock_type"`
	Species           string            `gorm:"column:species;not null" json:"species"`
	Quantity          int               `gorm:"column:quantity;not null" json:"quantity"`
	MinPrice          float64           `gorm:"column:min_price;type:decimal(18,2);not null" json:"min_price"`
	MaxPrice          float64           `gorm:"column:max_price;type:decimal(18,2);not null" json:"max_price"`
	Currency          string            `gorm:"column:currency;type:varchar(3);not null" json:"currency"`
	PreciseLat        float64           `gorm:"column:precise_lat;not null" json:"-"`
	PreciseLng        float64           `gorm:"column:precise_lng;not null" json:"-"`
	PublicLat         float64           `gorm:"column:public_lat;not null" json:"public_lat"`
	PublicLng         float64           `gorm:"column:public_lng;not null" json:"public_lng"`
	Country           string            `gorm:"column:country" json:"country"`
	Region            string            `gorm:"column:region" json:"region"`
	Locality          string            `gorm:"column:locality" json:"locality"`
	FormattedAddress  string            `gorm:"column:formatted_address" json:"formatted_address"`
	FuzzingLevel      FuzzingLevel      `gorm:"column:fuzzing_level;type:varchar(10);not null" json:"fuzzing_level"`
	ViewCount         int64             `gorm:"column:view_count;not null;default:0" json:"view_count"`
	ContactCount      int64             `gorm:"column:contact_count;not null;default:0" json:"contact_count"`
	Status            ListingStatus     `gorm:"column:status;type:varchar(10);not null;default:'active'" json:"status"`
	ExpiresAt         time.Time         `gorm:"column:expires_at;not null;index" json:"expires_at"`
	Description       string            `gorm:"column:description" json:"description"`
	PhotoURLs         datatypes.JSON    `gorm:"column:photo_urls" json:"photo_urls"`
	ContactPreference ContactPreference `gorm:"column:contact_preference;type:varchar(10)" json:"contact_preference"`
	BatchID           *uuid.UUID        `gorm:"column:batch_id;type:uuid" json:"batch_id"`
	CreatedAt         time.Time         `gorm:"column:created_at" json:"created_at"`
	UpdatedAt         time.Time         `gorm:"column:updated_at" json:"updated_at"`
	DeletedAt         gorm.DeletedAt    `gorm:"column:deleted_at;index" json:"-"`
}

func (Listing) TableName() string {
	return "listings"
}

// BeforeCreate sets listing_id if not already set (DBs without default uuid).
func (l *Listing) BeforeCreate(tx *gorm.DB) error {
	if l.ListingID == uuid.Nil {
		l.ListingID = uuid.New()
	}
	return nil
}

// ListingView records one successful deduplicated view. It exists only to
// enforce the one-view-per-viewer-per-day invariant and is never read back
// by UI code.
type ListingView struct {
	ViewID    uuid.UUID `gorm:"column:view_id;type:uuid;primaryKey" json:"view_id"`
	ListingID uuid.UUID `gorm:"column:listing_id;type:uuid;not null;uniqueIndex:idx_listing_viewer_day" json:"listing_id"`
	ViewerID  uuid.UUID `gorm:"column:viewer_id;type:uuid;not null;uniqueIndex:idx_listing_viewer_day" json:"viewer_id"`
	ViewDay   string    `gorm:"column:view_day;type:varchar(10);not null;uniqueIndex:idx_listing_viewer_day" json:"view_day"`
	ViewerIP  string    `gorm:"column:viewer_ip" json:"-"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

func (ListingView) TableName() string {
	return "listing_views"
}

func (v *ListingView) BeforeCreate(tx *gorm.DB) error {
	if v.ViewID == uuid.Nil {
		v.ViewID = uuid.New()
	}
	return nil
}

// ViewDay is the UTC calendar day used as the view-dedup key.
func ViewDay(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// ContactRequest is a buyer's request to contact a seller about a listing.
// At most one exists per (listing, buyer); creation is idempotent.
type ContactRequest struct {
	RequestID     uuid.UUID         `gorm:"column:request_id;type:uuid;primaryKey" json:"request_id"`
	ListingID     uuid.UUID         `gorm:"column:listing_id;type:uuid;not null;uniqueIndex:idx_listing_buyer" json:"listing_id"`
	BuyerID       uuid.UUID         `gorm:"column:buyer_id;type:uuid;not null;uniqueIndex:idx_listing_buyer" json:"buyer_id"`
	Message       string            `gorm:"column:message" json:"message"`
	ContactMethod ContactPreference `gorm:"column:contact_method;type:varchar(10)" json:"contact_method"`
	CreatedAt     time.Time         `gorm:"column:created_at" json:"created_at"`
}

func (ContactRequest) TableName() string {
	return "listing_contact_requests"
}

func (r *ContactRequest) BeforeCreate(tx *gorm.DB) error {
	if r.RequestID == uuid.Nil {
		r.RequestID = uuid.New()
	}
	return nil
}
