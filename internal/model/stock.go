package model

import "fmt"

// Stock is the per-product stock record. The physical quantity is the
// authoritative on-hand count; the reserved quantity is the sum of active
// reservations held against in-progress documents.
type Stock struct {
	ProductID   int64 `db:"product_id"`
	PhysicalQty int   `db:"physical_qty"`
	ReservedQty int   `db:"reserved_qty"`
}

// Available returns the quantity sellable right now.
func (s *Stock) Available() int {
	return s.PhysicalQty - s.ReservedQty
}

// StockItem is a request line: one product and the quantity a document wants.
// Name is display-only and never persisted by this service.
type StockItem struct {
	ProductID int64
	Name      string
	Quantity  int
}

// StockAvailability describes a shortfall for one product. It is produced
// only when the requested quantity exceeds what is available.
type StockAvailability struct {
	PhysicalQty  int
	ReservedQty  int
	AvailableQty int
	RequestedQty int
}

func (a StockAvailability) String() string {
	return fmt.Sprintf("physical: %d, reserved: %d, available: %d, requested: %d",
		a.PhysicalQty, a.ReservedQty, a.AvailableQty, a.RequestedQty)
}
