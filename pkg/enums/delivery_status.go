package enums

import "fmt"

// DeliveryStatus tracks the fulfilment lifecycle of an order.
// Transitions move forward only: pending -> shipped -> delivered.
// Cancelled is terminal and only reachable from pending.
type DeliveryStatus string

const (
	DeliveryStatusPending   DeliveryStatus = "pending"
	DeliveryStatusShipped   DeliveryStatus = "shipped"
	DeliveryStatusDelivered DeliveryStatus = "delivered"
	DeliveryStatusCancelled DeliveryStatus = "cancelled"
)

var validDeliveryStatuses = []DeliveryStatus{
	DeliveryStatusPending,
	DeliveryStatusShipped,
	DeliveryStatusDelivered,
	DeliveryStatusCancelled,
}

// String implements fmt.Stringer.
func (d DeliveryStatus) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DeliveryStatus.
func (d DeliveryStatus) IsValid() bool {
	for _, candidate := range validDeliveryStatuses {
		if candidate == d {
			return true
		}
	}
	return false
}

// CanTransitionTo reports whether moving from d to next is a legal
// forward transition.
func (d DeliveryStatus) CanTransitionTo(next DeliveryStatus) bool {
	switch d {
	case DeliveryStatusPending:
		return next == DeliveryStatusShipped || next == DeliveryStatusCancelled
	case DeliveryStatusShipped:
		return next == DeliveryStatusDelivered
	default:
		return false
	}
}

// ParseDeliveryStatus converts raw input into a DeliveryStatus.
func ParseDeliveryStatus(value string) (DeliveryStatus, error) {
	for _, candidate := range validDeliveryStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid delivery status %q", value)
}
