package document

import (
	"context"
	"strconv"
	"time"

	"github.com/gestionale/stock-service/internal/model"
	"github.com/gestionale/stock-service/internal/stock"
	"github.com/gestionale/stock-service/internal/stock/dto"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// Document statuses as supplied by the order/invoice CRUD layer. The stock
// core does not own these; it trusts the strings it is given.
const (
	OrderStatusDraft      = "Draft"
	OrderStatusInProgress = "In Progress"
	OrderStatusCompleted  = "Completed"
	OrderStatusCancelled  = "Cancelled"

	InvoiceStatusDraft  = "Draft"
	InvoiceStatusIssued = "Issued"
	InvoiceStatusPaid   = "Paid"
)

type SaveOrderInput struct {
	OrderID int64
	// ExistingOrderID is set when the save is an edit, so the availability
	// check adds the order's previously committed quantities back.
	ExistingOrderID *int64
	Status          string
	Items           []model.StockItem
	Note            string
}

type SaveInvoiceInput struct {
	InvoiceID         int64
	ExistingInvoiceID *int64
	InvoiceNumber     string
	InvoiceDate       time.Time
	Status            string
	Items             []model.StockItem
}

// Lifecycle translates document-level events (save, complete, delete) into
// stock effects. It holds no state and no connection; like the stock core,
// every method runs on the caller's transactional handle.
type Lifecycle struct {
	stock  stock.UseCase
	logger *zap.Logger
}

func NewLifecycle(s stock.UseCase, log *zap.Logger) *Lifecycle {
	return &Lifecycle{stock: s, logger: log}
}

// SaveOrder checks availability and, when the order is In Progress, reserves
// stock for each line. A non-empty shortfall map means nothing was reserved
// and the caller must not persist the document with these quantities.
func (l *Lifecycle) SaveOrder(ctx context.Context, q sqlx.ExtContext, in *SaveOrderInput) (map[string]model.StockAvailability, error) {
	insufficient, err := l.stock.CheckAvailability(ctx, q, in.Items, in.ExistingOrderID, model.DocumentOrder)
	if err != nil {
		return nil, err
	}
	if len(insufficient) > 0 {
		return insufficient, nil
	}

	if in.Status != OrderStatusInProgress {
		return nil, nil // drafts hold nothing
	}

	for _, item := range in.Items {
		err := l.stock.Reserve(ctx, q, &dto.ReserveInput{
			ProductID:    item.ProductID,
			DocumentKind: model.DocumentOrder,
			DocumentID:   in.OrderID,
			Quantity:     item.Quantity,
			Note:         in.Note,
		})
		if err != nil {
			return nil, err
		}
	}
	return nil, nil
}

// CompleteOrder finalizes the order: every active reservation becomes a
// physical decrement plus a SALE movement. The document layer renders the
// order id as the movement document number so deletion can find the rows.
func (l *Lifecycle) CompleteOrder(ctx context.Context, q sqlx.ExtContext, orderID int64, orderDate time.Time) error {
	return l.stock.CompleteReservations(ctx, q, &dto.CompleteInput{
		DocumentKind:   model.DocumentOrder,
		DocumentID:     orderID,
		DocumentDate:   orderDate,
		DocumentNumber: orderNumber(orderID),
	})
}

// CancelOrder voids the order's active reservations. No stock was ever
// applied, so none moves.
func (l *Lifecycle) CancelOrder(ctx context.Context, q sqlx.ExtContext, orderID int64) error {
	return l.stock.CancelReservations(ctx, q, model.DocumentOrder, orderID)
}

// DeleteOrder undoes the order's stock effect according to its status:
// a Completed order has its detail-line quantities restored, an In Progress
// order has its reservations cancelled, and in every case the order's
// movement rows are removed.
func (l *Lifecycle) DeleteOrder(ctx context.Context, q sqlx.ExtContext, orderID int64, status string) error {
	switch status {
	case OrderStatusCompleted:
		if err := l.stock.RestoreStockFromDocument(ctx, q, orderID, model.DocumentOrder); err != nil {
			return err
		}
	case OrderStatusInProgress:
		if err := l.stock.CancelReservations(ctx, q, model.DocumentOrder, orderID); err != nil {
			return err
		}
	}

	if err := l.stock.DeleteMovements(ctx, q, model.DocumentOrder, orderNumber(orderID)); err != nil {
		return err
	}

	l.logger.Info("order deleted",
		zap.Int64("order_id", orderID),
		zap.String("status", status))
	return nil
}

// SaveInvoice checks availability and, when the invoice is Issued or Paid,
// decrements stock directly with no reservation phase. Editing an invoice
// whose stock effect was already applied requires the caller to undo that
// effect first (DeleteInvoice semantics) before re-saving.
func (l *Lifecycle) SaveInvoice(ctx context.Context, q sqlx.ExtContext, in *SaveInvoiceInput) (map[string]model.StockAvailability, error) {
	insufficient, err := l.stock.CheckAvailability(ctx, q, in.Items, in.ExistingInvoiceID, model.DocumentInvoice)
	if err != nil {
		return nil, err
	}
	if len(insufficient) > 0 {
		return insufficient, nil
	}

	if in.Status != InvoiceStatusIssued && in.Status != InvoiceStatusPaid {
		return nil, nil
	}

	if err := l.stock.DecrementStockDirectly(ctx, q, in.Items, in.InvoiceDate, in.InvoiceNumber, model.DocumentInvoice); err != nil {
		return nil, err
	}
	return nil, nil
}

// DeleteInvoice restores stock when the invoice had been applied (Issued or
// Paid) and removes its movement rows.
func (l *Lifecycle) DeleteInvoice(ctx context.Context, q sqlx.ExtContext, invoiceID int64, invoiceNumber, status string) error {
	if status == InvoiceStatusIssued || status == InvoiceStatusPaid {
		if err := l.stock.RestoreStockFromDocument(ctx, q, invoiceID, model.DocumentInvoice); err != nil {
			return err
		}
	}

	if err := l.stock.DeleteMovements(ctx, q, model.DocumentInvoice, invoiceNumber); err != nil {
		return err
	}

	l.logger.Info("invoice deleted",
		zap.Int64("invoice_id", invoiceID),
		zap.String("invoice_number", invoiceNumber),
		zap.String("status", status))
	return nil
}

// ReceiveSupplierOrder books received goods in: stock grows and one PURCHASE
// movement is appended per line.
func (l *Lifecycle) ReceiveSupplierOrder(ctx context.Context, q sqlx.ExtContext, items []model.StockItem, date time.Time, documentNumber string) error {
	return l.stock.IncrementStock(ctx, q, items, date, documentNumber, model.DocumentOrder)
}

func orderNumber(orderID int64) string {
	return strconv.FormatInt(orderID, 10)
}
