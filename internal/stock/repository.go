package stock

import (
	"context"

	"github.com/gestionale/stock-service/internal/model"
	"github.com/gestionale/stock-service/internal/stock/dto"
	"github.com/jmoiron/sqlx"
)

// Repository is the persistence surface of the stock core. Every method takes
// the active transactional handle explicitly; both *sqlx.DB and *sqlx.Tx
// satisfy sqlx.ExtContext, and multi-statement operations are only atomic when
// the caller passes a transaction.
type Repository interface {
	// Stock records
	GetStock(ctx context.Context, q sqlx.ExtContext, productID int64) (*model.Stock, error)
	GetStockForUpdate(ctx context.Context, q sqlx.ExtContext, productID int64) (*model.Stock, error)
	BatchGetStock(ctx context.Context, q sqlx.ExtContext, productIDs []int64) ([]model.Stock, error)
	AddPhysical(ctx context.Context, q sqlx.ExtContext, productID int64, delta int) error
	AddReserved(ctx context.Context, q sqlx.ExtContext, productID int64, delta int) error

	// Reservations
	GetReservation(ctx context.Context, q sqlx.ExtContext, productID int64, kind model.DocumentKind, documentID int64) (*model.Reservation, error)
	InsertReservation(ctx context.Context, q sqlx.ExtContext, r *model.Reservation) error
	UpdateReservation(ctx context.Context, q sqlx.ExtContext, r *model.Reservation) error
	ListReservations(ctx context.Context, q sqlx.ExtContext, kind model.DocumentKind, documentID int64) ([]model.Reservation, error)
	ListActiveReservations(ctx context.Context, q sqlx.ExtContext, kind model.DocumentKind, documentID int64) ([]model.Reservation, error)
	MarkActiveReservations(ctx context.Context, q sqlx.ExtContext, kind model.DocumentKind, documentID int64, to model.ReservationStatus) (int64, error)

	// Movements / audit
	InsertMovement(ctx context.Context, q sqlx.ExtContext, m *model.Movement) error
	DeleteMovements(ctx context.Context, q sqlx.ExtContext, kind model.DocumentKind, documentNumber string) (int64, error)
	ListMovements(ctx context.Context, q sqlx.ExtContext, f *dto.MovementFilters) ([]model.Movement, int, error)

	// Document detail lines (owned by the order/invoice modules, read-only here)
	GetDetailQuantity(ctx context.Context, q sqlx.ExtContext, kind model.DocumentKind, documentID, productID int64) (int, error)
	ListDetailLines(ctx context.Context, q sqlx.ExtContext, kind model.DocumentKind, documentID int64) ([]model.DetailLine, error)
}
