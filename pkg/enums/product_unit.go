package enums

import "fmt"

// ProductUnit names the sale unit of a product listing.
type ProductUnit string

const (
	ProductUnitKg      ProductUnit = "kg"
	ProductUnitGrams   ProductUnit = "grams"
	ProductUnitLiters  ProductUnit = "liters"
	ProductUnitPieces  ProductUnit = "pieces"
	ProductUnitBundles ProductUnit = "bundles"
)

var validProductUnits = []ProductUnit{
	ProductUnitKg,
	ProductUnitGrams,
	ProductUnitLiters,
	ProductUnitPieces,
	ProductUnitBundles,
}

// String implements fmt.Stringer.
func (u ProductUnit) String() string {
	return string(u)
}

// IsValid reports whether the value is a known ProductUnit.
func (u ProductUnit) IsValid() bool {
	for _, candidate := range validProductUnits {
		if candidate == u {
			return true
		}
	}
	return false
}

// ParseProductUnit converts raw input into a ProductUnit.
func ParseProductUnit(value string) (ProductUnit, error) {
	for _, candidate := range validProductUnits {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product unit %q", value)
}
