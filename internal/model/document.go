package model

import "fmt"

// DocumentKind is the closed set of document kinds whose lifecycle drives
// stock state. It deliberately excludes supplier orders: those only receive
// stock and never hold reservations.
type DocumentKind string

const (
	DocumentOrder   DocumentKind = "ORDER"
	DocumentInvoice DocumentKind = "INVOICE"
)

// Valid reports whether k is one of the known kinds. Repository code must
// call this before dispatching on k so an unknown kind fails loudly instead
// of selecting the wrong detail table.
func (k DocumentKind) Valid() bool {
	switch k {
	case DocumentOrder, DocumentInvoice:
		return true
	}
	return false
}

func (k DocumentKind) String() string {
	return string(k)
}

// ErrUnknownDocumentKind wraps dispatch failures on an out-of-set kind.
func ErrUnknownDocumentKind(k DocumentKind) error {
	return fmt.Errorf("unknown document kind %q", string(k))
}

// DetailLine is one line of a document as recorded by the order/invoice
// modules. The stock service only reads these, to recover old quantities
// during edits and to restore stock on deletion.
type DetailLine struct {
	ProductID int64 `db:"product_id"`
	Quantity  int   `db:"quantity"`
}
