package enums

import "fmt"

// InventoryLogType classifies an audit log entry on the stock ledger.
type InventoryLogType string

const (
	InventoryLogStockAdded     InventoryLogType = "STOCK_ADDED"
	InventoryLogStockReduced   InventoryLogType = "STOCK_REDUCED"
	InventoryLogStockRestored  InventoryLogType = "STOCK_RESTORED"
	InventoryLogOrderPlaced    InventoryLogType = "ORDER_PLACED"
	InventoryLogOrderCancelled InventoryLogType = "ORDER_CANCELLED"
)

var validInventoryLogTypes = []InventoryLogType{
	InventoryLogStockAdded,
	InventoryLogStockReduced,
	InventoryLogStockRestored,
	InventoryLogOrderPlaced,
	InventoryLogOrderCancelled,
}

// String implements fmt.Stringer.
func (t InventoryLogType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known InventoryLogType.
func (t InventoryLogType) IsValid() bool {
	for _, candidate := range validInventoryLogTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseInventoryLogType converts raw input into an InventoryLogType.
func ParseInventoryLogType(value string) (InventoryLogType, error) {
	for _, candidate := range validInventoryLogTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid inventory log type %q", value)
}
