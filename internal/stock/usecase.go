package stock

import (
	"context"
	"time"

	"github.com/gestionale/stock-service/internal/model"
	"github.com/gestionale/stock-service/internal/stock/dto"
	"github.com/jmoiron/sqlx"
)

// UseCase is the stock core: availability checks, reservations, physical
// mutations and the movement ledger. Insufficient stock is reported as data
// (the returned shortfall map), never as an error; errors are persistence
// failures only.
type UseCase interface {
	// Availability
	CheckAvailability(ctx context.Context, q sqlx.ExtContext, items []model.StockItem, existingDocumentID *int64, kind model.DocumentKind) (map[string]model.StockAvailability, error)
	AvailableStock(ctx context.Context, q sqlx.ExtContext, productID int64) (int, error)
	GetStock(ctx context.Context, q sqlx.ExtContext, productID int64) (*model.Stock, error)
	BatchGetStock(ctx context.Context, q sqlx.ExtContext, productIDs []int64) ([]model.Stock, error)

	// Reservations
	Reserve(ctx context.Context, q sqlx.ExtContext, in *dto.ReserveInput) error
	CancelReservations(ctx context.Context, q sqlx.ExtContext, kind model.DocumentKind, documentID int64) error
	CompleteReservations(ctx context.Context, q sqlx.ExtContext, in *dto.CompleteInput) error
	ListDocumentReservations(ctx context.Context, q sqlx.ExtContext, kind model.DocumentKind, documentID int64) ([]model.Reservation, error)

	// Physical mutations
	DecrementStockDirectly(ctx context.Context, q sqlx.ExtContext, items []model.StockItem, date time.Time, documentNumber string, kind model.DocumentKind) error
	IncrementStock(ctx context.Context, q sqlx.ExtContext, items []model.StockItem, date time.Time, documentNumber string, kind model.DocumentKind) error
	RestoreStockFromDocument(ctx context.Context, q sqlx.ExtContext, documentID int64, kind model.DocumentKind) error

	// Movement ledger
	DeleteMovements(ctx context.Context, q sqlx.ExtContext, kind model.DocumentKind, documentNumber string) error
	ListMovements(ctx context.Context, q sqlx.ExtContext, f *dto.MovementFilters) ([]model.Movement, int, error)
}
