package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/gestionale/stock-service/internal/model"
	"github.com/gestionale/stock-service/internal/stock"
	"github.com/gestionale/stock-service/internal/stock/dto"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

type stockUseCase struct {
	repo   stock.Repository
	logger *zap.Logger
}

func NewStockUseCase(repo stock.Repository, log *zap.Logger) stock.UseCase {
	return &stockUseCase{
		repo:   repo,
		logger: log,
	}
}

// CheckAvailability returns a shortfall entry for every item whose requested
// quantity exceeds available stock (physical minus reserved). When editing an
// existing document, the quantity that document already committed to a product
// is added back before comparing, so keeping or lowering a line never reports
// a false insufficiency. Products without a stock record are skipped and
// treated as unconstrained.
func (uc *stockUseCase) CheckAvailability(ctx context.Context, q sqlx.ExtContext, items []model.StockItem, existingDocumentID *int64, kind model.DocumentKind) (map[string]model.StockAvailability, error) {
	insufficient := make(map[string]model.StockAvailability)

	for _, item := range items {
		s, err := uc.repo.GetStock(ctx, q, item.ProductID)
		if err != nil {
			return nil, err
		}
		if s == nil {
			continue
		}

		available := s.Available()
		if existingDocumentID != nil {
			oldQty, err := uc.repo.GetDetailQuantity(ctx, q, kind, *existingDocumentID, item.ProductID)
			if err != nil {
				return nil, err
			}
			available += oldQty
		}

		if item.Quantity > available {
			insufficient[item.Name] = model.StockAvailability{
				PhysicalQty:  s.PhysicalQty,
				ReservedQty:  s.ReservedQty,
				AvailableQty: available,
				RequestedQty: item.Quantity,
			}
		}
	}

	return insufficient, nil
}

// AvailableStock returns physical minus reserved for one product, zero when
// the product has no stock record.
func (uc *stockUseCase) AvailableStock(ctx context.Context, q sqlx.ExtContext, productID int64) (int, error) {
	s, err := uc.repo.GetStock(ctx, q, productID)
	if err != nil {
		return 0, err
	}
	if s == nil {
		return 0, nil
	}
	return s.Available(), nil
}

func (uc *stockUseCase) GetStock(ctx context.Context, q sqlx.ExtContext, productID int64) (*model.Stock, error) {
	return uc.repo.GetStock(ctx, q, productID)
}

func (uc *stockUseCase) BatchGetStock(ctx context.Context, q sqlx.ExtContext, productIDs []int64) ([]model.Stock, error) {
	return uc.repo.BatchGetStock(ctx, q, productIDs)
}

// Reserve creates or updates the single reservation row for the
// (product, document) pair. An existing row is overwritten with the new
// quantity and note and forced back to ACTIVE. The product's reserved counter
// moves by the delta against whatever the row actively held before.
func (uc *stockUseCase) Reserve(ctx context.Context, q sqlx.ExtContext, in *dto.ReserveInput) error {
	if !in.DocumentKind.Valid() {
		return model.ErrUnknownDocumentKind(in.DocumentKind)
	}
	if in.Quantity <= 0 {
		return fmt.Errorf("reserve: quantity must be positive, got %d", in.Quantity)
	}

	// Lock the stock row first so the reserved counter and the reservation
	// row move under one serialization point. A missing row means the product
	// is untracked; the reservation is still recorded.
	s, err := uc.repo.GetStockForUpdate(ctx, q, in.ProductID)
	if err != nil {
		return err
	}

	existing, err := uc.repo.GetReservation(ctx, q, in.ProductID, in.DocumentKind, in.DocumentID)
	if err != nil {
		return err
	}

	now := time.Now()
	previouslyHeld := 0

	if existing != nil {
		if existing.Status == model.ReservationActive {
			previouslyHeld = existing.ReservedQty
		}
		existing.ReservedQty = in.Quantity
		existing.Status = model.ReservationActive
		existing.Note = in.Note
		existing.UpdatedAt = now
		if err := uc.repo.UpdateReservation(ctx, q, existing); err != nil {
			return err
		}
	} else {
		res := &model.Reservation{
			ID:           uuid.New().String(),
			ProductID:    in.ProductID,
			DocumentKind: in.DocumentKind,
			DocumentID:   in.DocumentID,
			ReservedQty:  in.Quantity,
			Status:       model.ReservationActive,
			Note:         in.Note,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := uc.repo.InsertReservation(ctx, q, res); err != nil {
			return err
		}
	}

	if s != nil {
		if delta := in.Quantity - previouslyHeld; delta != 0 {
			if err := uc.repo.AddReserved(ctx, q, in.ProductID, delta); err != nil {
				return err
			}
		}
	}

	uc.logger.Debug("stock reserved",
		zap.Int64("product_id", in.ProductID),
		zap.String("document_kind", in.DocumentKind.String()),
		zap.Int64("document_id", in.DocumentID),
		zap.Int("quantity", in.Quantity))

	return nil
}

// CancelReservations voids every ACTIVE reservation on the document and
// releases the held quantities. Calling it again is a no-op. Physical stock
// is never touched: cancelled holds were never applied.
func (uc *stockUseCase) CancelReservations(ctx context.Context, q sqlx.ExtContext, kind model.DocumentKind, documentID int64) error {
	if !kind.Valid() {
		return model.ErrUnknownDocumentKind(kind)
	}

	active, err := uc.repo.ListActiveReservations(ctx, q, kind, documentID)
	if err != nil {
		return err
	}

	for _, res := range active {
		s, err := uc.repo.GetStockForUpdate(ctx, q, res.ProductID)
		if err != nil {
			return err
		}
		if s == nil {
			continue
		}
		if err := uc.repo.AddReserved(ctx, q, res.ProductID, -res.ReservedQty); err != nil {
			return err
		}
	}

	n, err := uc.repo.MarkActiveReservations(ctx, q, kind, documentID, model.ReservationCancelled)
	if err != nil {
		return err
	}
	if n > 0 {
		uc.logger.Info("reservations cancelled",
			zap.String("document_kind", kind.String()),
			zap.Int64("document_id", documentID),
			zap.Int64("count", n))
	}
	return nil
}

// CompleteReservations is the single point where a hold becomes a physical
// change: for each ACTIVE reservation on the document, physical stock drops
// by the held quantity, the hold is released, and one SALE movement is
// appended; the rows are then marked COMPLETED. Atomicity is the caller's
// transaction.
func (uc *stockUseCase) CompleteReservations(ctx context.Context, q sqlx.ExtContext, in *dto.CompleteInput) error {
	if !in.DocumentKind.Valid() {
		return model.ErrUnknownDocumentKind(in.DocumentKind)
	}

	active, err := uc.repo.ListActiveReservations(ctx, q, in.DocumentKind, in.DocumentID)
	if err != nil {
		return err
	}

	for _, res := range active {
		s, err := uc.repo.GetStockForUpdate(ctx, q, res.ProductID)
		if err != nil {
			return err
		}
		if s != nil {
			if err := uc.repo.AddPhysical(ctx, q, res.ProductID, -res.ReservedQty); err != nil {
				return err
			}
			if err := uc.repo.AddReserved(ctx, q, res.ProductID, -res.ReservedQty); err != nil {
				return err
			}
		}

		note := fmt.Sprintf("%s %s", in.DocumentKind, in.DocumentNumber)
		if err := uc.recordMovement(ctx, q, res.ProductID, in.DocumentDate, res.ReservedQty, model.ReasonSale, in.DocumentNumber, in.DocumentKind, note); err != nil {
			return err
		}
	}

	n, err := uc.repo.MarkActiveReservations(ctx, q, in.DocumentKind, in.DocumentID, model.ReservationCompleted)
	if err != nil {
		return err
	}

	uc.logger.Info("reservations completed",
		zap.String("document_kind", in.DocumentKind.String()),
		zap.Int64("document_id", in.DocumentID),
		zap.String("document_number", in.DocumentNumber),
		zap.Int64("count", n))

	return nil
}

func (uc *stockUseCase) ListDocumentReservations(ctx context.Context, q sqlx.ExtContext, kind model.DocumentKind, documentID int64) ([]model.Reservation, error) {
	if !kind.Valid() {
		return nil, model.ErrUnknownDocumentKind(kind)
	}
	return uc.repo.ListReservations(ctx, q, kind, documentID)
}

// DecrementStockDirectly applies a sale with no reservation phase: per item,
// physical stock drops by the requested quantity and one SALE movement is
// appended. Used for invoices issued without a prior order. The availability
// check is the caller's pre-flight; no floor is enforced here.
func (uc *stockUseCase) DecrementStockDirectly(ctx context.Context, q sqlx.ExtContext, items []model.StockItem, date time.Time, documentNumber string, kind model.DocumentKind) error {
	if !kind.Valid() {
		return model.ErrUnknownDocumentKind(kind)
	}

	for _, item := range items {
		if _, err := uc.repo.GetStockForUpdate(ctx, q, item.ProductID); err != nil {
			return err
		}
		if err := uc.repo.AddPhysical(ctx, q, item.ProductID, -item.Quantity); err != nil {
			return err
		}

		note := fmt.Sprintf("%s %s", kind, documentNumber)
		if err := uc.recordMovement(ctx, q, item.ProductID, date, item.Quantity, model.ReasonSale, documentNumber, kind, note); err != nil {
			return err
		}
	}
	return nil
}

// IncrementStock receives goods against a supplier document: per item,
// physical stock grows and one PURCHASE movement is appended.
func (uc *stockUseCase) IncrementStock(ctx context.Context, q sqlx.ExtContext, items []model.StockItem, date time.Time, documentNumber string, kind model.DocumentKind) error {
	if !kind.Valid() {
		return model.ErrUnknownDocumentKind(kind)
	}

	for _, item := range items {
		if _, err := uc.repo.GetStockForUpdate(ctx, q, item.ProductID); err != nil {
			return err
		}
		if err := uc.repo.AddPhysical(ctx, q, item.ProductID, item.Quantity); err != nil {
			return err
		}

		note := fmt.Sprintf("supplier order %s", documentNumber)
		if err := uc.recordMovement(ctx, q, item.ProductID, date, item.Quantity, model.ReasonPurchase, documentNumber, kind, note); err != nil {
			return err
		}
	}
	return nil
}

// RestoreStockFromDocument adds the document's recorded detail-line
// quantities back to physical stock. Used when a document whose stock effect
// was already applied is deleted.
func (uc *stockUseCase) RestoreStockFromDocument(ctx context.Context, q sqlx.ExtContext, documentID int64, kind model.DocumentKind) error {
	if !kind.Valid() {
		return model.ErrUnknownDocumentKind(kind)
	}

	lines, err := uc.repo.ListDetailLines(ctx, q, kind, documentID)
	if err != nil {
		return err
	}

	for _, line := range lines {
		if _, err := uc.repo.GetStockForUpdate(ctx, q, line.ProductID); err != nil {
			return err
		}
		if err := uc.repo.AddPhysical(ctx, q, line.ProductID, line.Quantity); err != nil {
			return err
		}
	}

	uc.logger.Info("stock restored from document",
		zap.String("document_kind", kind.String()),
		zap.Int64("document_id", documentID),
		zap.Int("lines", len(lines)))

	return nil
}

// DeleteMovements removes every ledger row for the document. The audit trail
// for that document is gone afterwards; kept for parity with the historical
// behavior and logged loudly for that reason.
func (uc *stockUseCase) DeleteMovements(ctx context.Context, q sqlx.ExtContext, kind model.DocumentKind, documentNumber string) error {
	if !kind.Valid() {
		return model.ErrUnknownDocumentKind(kind)
	}

	n, err := uc.repo.DeleteMovements(ctx, q, kind, documentNumber)
	if err != nil {
		return err
	}
	if n > 0 {
		uc.logger.Warn("warehouse movements deleted",
			zap.String("document_kind", kind.String()),
			zap.String("document_number", documentNumber),
			zap.Int64("count", n))
	}
	return nil
}

func (uc *stockUseCase) ListMovements(ctx context.Context, q sqlx.ExtContext, f *dto.MovementFilters) ([]model.Movement, int, error) {
	return uc.repo.ListMovements(ctx, q, f)
}

func (uc *stockUseCase) recordMovement(ctx context.Context, q sqlx.ExtContext, productID int64, date time.Time, qty int, reason model.MovementReason, documentNumber string, kind model.DocumentKind, note string) error {
	m := &model.Movement{
		ID:             uuid.New().String(),
		ProductID:      productID,
		OccurredAt:     date,
		Direction:      reason.Direction(),
		Quantity:       qty,
		Reason:         reason,
		DocumentNumber: documentNumber,
		DocumentKind:   kind,
		Note:           note,
		CreatedAt:      time.Now(),
	}
	return uc.repo.InsertMovement(ctx, q, m)
}
