package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/farmfresh-in/farmfresh-backend/pkg/enums"
)

// InventoryLog is an append-only audit record of a single stock
// movement. Quantity is signed: negative for deductions, positive for
// additions, and NewStock always equals PreviousStock + Quantity.
type InventoryLog struct {
	ID            uuid.UUID              `gorm:"column:id;type:uuid;primaryKey"`
	ProductID     uuid.UUID              `gorm:"column:product_id;type:uuid;not null;index"`
	FarmerID      uuid.UUID              `gorm:"column:farmer_id;type:uuid;not null;index"`
	OrderID       *uuid.UUID             `gorm:"column:order_id;type:uuid;index"`
	ActorUserID   *uuid.UUID             `gorm:"column:actor_user_id;type:uuid"`
	Type          enums.InventoryLogType `gorm:"column:type;not null"`
	Quantity      int                    `gorm:"column:quantity;not null"`
	PreviousStock int                    `gorm:"column:previous_stock;not null"`
	NewStock      int                    `gorm:"column:new_stock;not null"`
	Reason        *string                `gorm:"column:reason"`
	CreatedAt     time.Time              `gorm:"column:created_at;autoCreateTime"`
}
