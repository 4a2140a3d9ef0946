package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/farmfresh-in/farmfresh-backend/pkg/enums"
)

// Product represents a farmer's listing. Stock is the authoritative
// on-hand count and is only ever changed through the inventory ledger.
type Product struct {
	ID                uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	FarmerID          uuid.UUID         `gorm:"column:farmer_id;type:uuid;not null;index"`
	Name              string            `gorm:"column:name;not null"`
	Description       *string           `gorm:"column:description"`
	Category          string            `gorm:"column:category;not null"`
	Price             decimal.Decimal   `gorm:"column:price;type:numeric(12,2);not null"`
	Unit              enums.ProductUnit `gorm:"column:unit;not null"`
	Stock             int               `gorm:"column:stock;not null;default:0"`
	LowStockThreshold int               `gorm:"column:low_stock_threshold;not null;default:5"`
	IsOrganic         bool              `gorm:"column:is_organic;not null;default:false"`
	IsActive          bool              `gorm:"column:is_active;not null;default:true"`
	ImageURL          *string           `gorm:"column:image_url"`
	HarvestDate       *time.Time        `gorm:"column:harvest_date"`
	ExpiryDate        *time.Time        `gorm:"column:expiry_date"`
	CreatedAt         time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
