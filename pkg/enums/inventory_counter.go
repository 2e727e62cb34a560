package enums

import "fmt"

// InventoryCounter names one of the two per-product quantity columns. The
// sellable counter moves at order placement and cancellation; the physical
// counter moves at fulfillment and warehouse receiving.
type InventoryCounter string

const (
	InventoryCounterStock    InventoryCounter = "stock"
	InventoryCounterPhysical InventoryCounter = "physical_inventory"
)

var validInventoryCounters = []InventoryCounter{
	InventoryCounterStock,
	InventoryCounterPhysical,
}

// String implements fmt.Stringer.
func (i InventoryCounter) String() string {
	return string(i)
}

// IsValid reports whether the value is a known InventoryCounter.
func (i InventoryCounter) IsValid() bool {
	for _, candidate := range validInventoryCounters {
		if candidate == i {
			return true
		}
	}
	return false
}

// Column returns the products table column the counter maps to.
func (i InventoryCounter) Column() string {
	switch i {
	case InventoryCounterPhysical:
		return "physical_inventory"
	default:
		return "stock"
	}
}

// ParseInventoryCounter converts raw input into an InventoryCounter.
func ParseInventoryCounter(value string) (InventoryCounter, error) {
	for _, candidate := range validInventoryCounters {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid inventory counter %q", value)
}
