package model

import "time"

type MovementDirection string

const (
	MovementInward  MovementDirection = "INWARD"
	MovementOutward MovementDirection = "OUTWARD"
)

type MovementReason string

const (
	ReasonSale     MovementReason = "SALE"
	ReasonPurchase MovementReason = "PURCHASE"
)

// Direction derives the movement direction from the reason: purchases bring
// stock in, everything else takes it out.
func (r MovementReason) Direction() MovementDirection {
	if r == ReasonPurchase {
		return MovementInward
	}
	return MovementOutward
}

// Movement is one immutable warehouse ledger entry. Rows are never updated;
// they are removed only in bulk when the referenced document is deleted.
type Movement struct {
	ID             string            `db:"id"`
	ProductID      int64             `db:"product_id"`
	OccurredAt     time.Time         `db:"occurred_at"`
	Direction      MovementDirection `db:"direction"`
	Quantity       int               `db:"quantity"`
	Reason         MovementReason    `db:"reason"`
	DocumentNumber string            `db:"document_number"`
	DocumentKind   DocumentKind      `db:"document_kind"`
	Note           string            `db:"note"`
	CreatedAt      time.Time         `db:"created_at"`
}
