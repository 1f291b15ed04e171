package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Batch is a production batch owned by the farm-management side. The
// marketplace only reads it to pre-fill a listing draft.
type Batch struct {
	BatchID         uuid.UUID     `gorm:"column:batch_id;type:uuid;primaryKey" json:"batch_id"`
	FarmID          uuid.UUID     `gorm:"column:farm_id;type:uuid;not null;index" json:"farm_id"`
	LivestockType   LivestockType `gorm:"column:livestock_type;type:varchar(20);not null" json:"livestock_type"`
	Species         string        `gorm:"column:species;not null" json:"species"`
	CurrentQuantity int           `gorm:"column:current_quantity;not null" json:"current_quantity"`
	MarketPrice     float64       `gorm:"column:market_price;type:decimal(18,2)" json:"market_price"`
	CreatedAt       time.Time     `gorm:"column:created_at" json:"created_at"`
	UpdatedAt       time.Time     `gorm:"column:updated_at" json:"updated_at"`
}

func (Batch) TableName() string {
	return "batches"
}

func (b *Batch) BeforeCreate(tx *gorm.DB) error {
	if b.BatchID == uuid.Nil {
		b.BatchID = uuid.New()
	}
	return nil
}

// GenerateListingFromBatch pre-fills a listing draft from a batch: species,
// quantity and livestock type verbatim, plus a proposed price band around the
// known market price. Location and privacy level stay empty; they are required
// seller input.
func GenerateListingFromBatch(b *Batch) *Listing {
	l := &Listing{
		LivestockType: b.LivestockType,
		Species:       b.Species,
		Quantity:      b.CurrentQuantity,
	}
	id := b.BatchID
	l.BatchID = &id
	if b.MarketPrice > 0 {
		l.MinPrice = b.MarketPrice * 0.9
		l.MaxPrice = b.MarketPrice * 1.1
	}
	return l
}
