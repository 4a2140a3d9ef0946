package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/farmfresh-in/farmfresh-backend/pkg/enums"
)

// DeliveryAddress is embedded on Order; all fields are required at
// placement time.
type DeliveryAddress struct {
	Name     string `gorm:"column:name;not null"`
	Phone    string `gorm:"column:phone;not null"`
	Address  string `gorm:"column:address;not null"`
	District string `gorm:"column:district;not null"`
	State    string `gorm:"column:state;not null"`
	Pincode  string `gorm:"column:pincode;not null"`
}

// Order is the settlement aggregate. Payment and delivery statuses
// advance independently and never move backwards.
type Order struct {
	ID               uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	UserID           uuid.UUID            `gorm:"column:user_id;type:uuid;not null;index"`
	FarmerID         uuid.UUID            `gorm:"column:farmer_id;type:uuid;not null;index"`
	Items            []OrderItem          `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	TotalPrice       decimal.Decimal      `gorm:"column:total_price;type:numeric(12,2);not null"`
	PaymentMethod    enums.PaymentMethod  `gorm:"column:payment_method;not null"`
	PaymentStatus    enums.PaymentStatus  `gorm:"column:payment_status;not null;default:pending"`
	DeliveryStatus   enums.DeliveryStatus `gorm:"column:delivery_status;not null;default:pending"`
	DeliveryAddress  DeliveryAddress      `gorm:"embedded;embeddedPrefix:delivery_"`
	GatewayOrderID   *string              `gorm:"column:gateway_order_id"`
	GatewayPaymentID *string              `gorm:"column:gateway_payment_id"`
	DeliveredAt      *time.Time           `gorm:"column:delivered_at"`
	CancelledAt      *time.Time           `gorm:"column:cancelled_at"`
	CreatedAt        time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

// OrderItem captures the product, quantity and the unit price at the
// moment of settlement. Later price edits never change past orders.
type OrderItem struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	OrderID   uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	Name      string          `gorm:"column:name;not null"`
	Quantity  int             `gorm:"column:quantity;not null"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
}
