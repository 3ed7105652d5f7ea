package model

import "time"

type ReservationStatus string

const (
	ReservationActive    ReservationStatus = "ACTIVE"
	ReservationCancelled ReservationStatus = "CANCELLED"
	ReservationCompleted ReservationStatus = "COMPLETED"
)

// Reservation is a soft hold of stock tied to one document. At most one row
// exists per (product, document kind, document id); repeated reserve calls
// update that row in place. CANCELLED and COMPLETED are terminal.
type Reservation struct {
	ID           string            `db:"id"`
	ProductID    int64             `db:"product_id"`
	DocumentKind DocumentKind      `db:"document_kind"`
	DocumentID   int64             `db:"document_id"`
	ReservedQty  int               `db:"reserved_qty"`
	Status       ReservationStatus `db:"status"`
	Note         string            `db:"note"`
	CreatedAt    time.Time         `db:"created_at"`
	UpdatedAt    time.Time         `db:"updated_at"`
}
