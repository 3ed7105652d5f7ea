package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/gestionale/stock-service/internal/model"
	"github.com/gestionale/stock-service/internal/stock/dto"
	"github.com/jmoiron/sqlx"
)

// PGRepository implements stock.Repository against Postgres. It holds no
// connection: every call runs on the sqlx.ExtContext the caller supplies, so
// the surrounding transaction boundary is always explicit.
type PGRepository struct{}

func NewPGRepository() *PGRepository {
	return &PGRepository{}
}

func (r *PGRepository) GetStock(ctx context.Context, q sqlx.ExtContext, productID int64) (*model.Stock, error) {
	return r.getStock(ctx, q, productID, false)
}

// GetStockForUpdate locks the stock row for the duration of the caller's
// transaction. Read-modify-write paths must use this variant.
func (r *PGRepository) GetStockForUpdate(ctx context.Context, q sqlx.ExtContext, productID int64) (*model.Stock, error) {
	return r.getStock(ctx, q, productID, true)
}

func (r *PGRepository) getStock(ctx context.Context, q sqlx.ExtContext, productID int64, forUpdate bool) (*model.Stock, error) {
	query := `SELECT product_id, physical_qty, reserved_qty FROM product_stock WHERE product_id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var s model.Stock
	err := sqlx.GetContext(ctx, q, &s, query, productID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // unknown product, caller decides (lenient by contract)
		}
		return nil, fmt.Errorf("get stock: %w", err)
	}
	return &s, nil
}

func (r *PGRepository) BatchGetStock(ctx context.Context, q sqlx.ExtContext, productIDs []int64) ([]model.Stock, error) {
	if len(productIDs) == 0 {
		return []model.Stock{}, nil
	}

	query, args, err := sqlx.In(`
        SELECT product_id, physical_qty, reserved_qty
        FROM product_stock
        WHERE product_id IN (?)
    `, productIDs)
	if err != nil {
		return nil, err
	}
	query = q.Rebind(query)

	var items []model.Stock
	if err := sqlx.SelectContext(ctx, q, &items, query, args...); err != nil {
		return nil, fmt.Errorf("batch get stock: %w", err)
	}
	return items, nil
}

func (r *PGRepository) AddPhysical(ctx context.Context, q sqlx.ExtContext, productID int64, delta int) error {
	query := `UPDATE product_stock SET physical_qty = physical_qty + $1 WHERE product_id = $2`
	if _, err := q.ExecContext(ctx, query, delta, productID); err != nil {
		return fmt.Errorf("update physical stock: %w", err)
	}
	return nil
}

func (r *PGRepository) AddReserved(ctx context.Context, q sqlx.ExtContext, productID int64, delta int) error {
	query := `UPDATE product_stock SET reserved_qty = reserved_qty + $1 WHERE product_id = $2`
	if _, err := q.ExecContext(ctx, query, delta, productID); err != nil {
		return fmt.Errorf("update reserved stock: %w", err)
	}
	return nil
}

func (r *PGRepository) GetReservation(ctx context.Context, q sqlx.ExtContext, productID int64, kind model.DocumentKind, documentID int64) (*model.Reservation, error) {
	query := `
        SELECT * FROM stock_reservations
        WHERE product_id = $1 AND document_kind = $2 AND document_id = $3
    `
	var res model.Reservation
	err := sqlx.GetContext(ctx, q, &res, query, productID, kind, documentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get reservation: %w", err)
	}
	return &res, nil
}

func (r *PGRepository) InsertReservation(ctx context.Context, q sqlx.ExtContext, res *model.Reservation) error {
	query := `
        INSERT INTO stock_reservations (
            id, product_id, document_kind, document_id,
            reserved_qty, status, note, created_at, updated_at
        )
        VALUES (
            :id, :product_id, :document_kind, :document_id,
            :reserved_qty, :status, :note, :created_at, :updated_at
        )
    `
	if _, err := sqlx.NamedExecContext(ctx, q, query, res); err != nil {
		return fmt.Errorf("insert reservation: %w", err)
	}
	return nil
}

func (r *PGRepository) UpdateReservation(ctx context.Context, q sqlx.ExtContext, res *model.Reservation) error {
	query := `
        UPDATE stock_reservations
        SET reserved_qty = :reserved_qty, status = :status, note = :note, updated_at = :updated_at
        WHERE id = :id
    `
	if _, err := sqlx.NamedExecContext(ctx, q, query, res); err != nil {
		return fmt.Errorf("update reservation: %w", err)
	}
	return nil
}

func (r *PGRepository) ListReservations(ctx context.Context, q sqlx.ExtContext, kind model.DocumentKind, documentID int64) ([]model.Reservation, error) {
	query := `
        SELECT * FROM stock_reservations
        WHERE document_kind = $1 AND document_id = $2
        ORDER BY created_at
    `
	var items []model.Reservation
	if err := sqlx.SelectContext(ctx, q, &items, query, kind, documentID); err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	return items, nil
}

func (r *PGRepository) ListActiveReservations(ctx context.Context, q sqlx.ExtContext, kind model.DocumentKind, documentID int64) ([]model.Reservation, error) {
	query := `
        SELECT * FROM stock_reservations
        WHERE document_kind = $1 AND document_id = $2 AND status = $3
        ORDER BY created_at
    `
	var items []model.Reservation
	if err := sqlx.SelectContext(ctx, q, &items, query, kind, documentID, model.ReservationActive); err != nil {
		return nil, fmt.Errorf("list active reservations: %w", err)
	}
	return items, nil
}

func (r *PGRepository) MarkActiveReservations(ctx context.Context, q sqlx.ExtContext, kind model.DocumentKind, documentID int64, to model.ReservationStatus) (int64, error) {
	query := `
        UPDATE stock_reservations
        SET status = $1, updated_at = now()
        WHERE document_kind = $2 AND document_id = $3 AND status = $4
    `
	res, err := q.ExecContext(ctx, query, to, kind, documentID, model.ReservationActive)
	if err != nil {
		return 0, fmt.Errorf("mark reservations %s: %w", to, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return n, nil
}

func (r *PGRepository) InsertMovement(ctx context.Context, q sqlx.ExtContext, m *model.Movement) error {
	query := `
        INSERT INTO warehouse_movements (
            id, product_id, occurred_at, direction, quantity,
            reason, document_number, document_kind, note, created_at
        )
        VALUES (
            :id, :product_id, :occurred_at, :direction, :quantity,
            :reason, :document_number, :document_kind, :note, :created_at
        )
    `
	if _, err := sqlx.NamedExecContext(ctx, q, query, m); err != nil {
		return fmt.Errorf("insert movement: %w", err)
	}
	return nil
}

func (r *PGRepository) DeleteMovements(ctx context.Context, q sqlx.ExtContext, kind model.DocumentKind, documentNumber string) (int64, error) {
	query := `DELETE FROM warehouse_movements WHERE document_kind = $1 AND document_number = $2`
	res, err := q.ExecContext(ctx, query, kind, documentNumber)
	if err != nil {
		return 0, fmt.Errorf("delete movements: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return n, nil
}

func (r *PGRepository) ListMovements(ctx context.Context, q sqlx.ExtContext, f *dto.MovementFilters) ([]model.Movement, int, error) {
	conditions := []string{}
	args := map[string]interface{}{}

	if f.ProductID != nil {
		conditions = append(conditions, "product_id = :product_id")
		args["product_id"] = *f.ProductID
	}
	if f.DocumentKind != "" {
		conditions = append(conditions, "document_kind = :document_kind")
		args["document_kind"] = f.DocumentKind
	}
	if f.Direction != "" {
		conditions = append(conditions, "direction = :direction")
		args["direction"] = f.Direction
	}
	if f.Reason != "" {
		conditions = append(conditions, "reason = :reason")
		args["reason"] = f.Reason
	}
	if f.StartDate != nil {
		conditions = append(conditions, "occurred_at >= :start_date")
		args["start_date"] = *f.StartDate
	}
	if f.EndDate != nil {
		conditions = append(conditions, "occurred_at <= :end_date")
		args["end_date"] = *f.EndDate
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	var count int
	countQuery, countArgs, err := sqlx.Named("SELECT count(*) FROM warehouse_movements"+whereClause, args)
	if err != nil {
		return nil, 0, err
	}
	countQuery = q.Rebind(countQuery)
	if err := sqlx.GetContext(ctx, q, &count, countQuery, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("count movements: %w", err)
	}

	query := "SELECT * FROM warehouse_movements" + whereClause + " ORDER BY occurred_at DESC, created_at DESC"
	if f.PageSize > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, (page-1)*f.PageSize)
	}

	query, queryArgs, err := sqlx.Named(query, args)
	if err != nil {
		return nil, 0, err
	}
	query = q.Rebind(query)

	var items []model.Movement
	if err := sqlx.SelectContext(ctx, q, &items, query, queryArgs...); err != nil {
		return nil, 0, fmt.Errorf("list movements: %w", err)
	}
	return items, count, nil
}

// detailQuery resolves the per-kind detail-line source. Dispatch is over the
// closed DocumentKind set; caller input never reaches the SQL text.
func detailQuery(kind model.DocumentKind) (table, column string, err error) {
	switch kind {
	case model.DocumentOrder:
		return "order_details", "order_id", nil
	case model.DocumentInvoice:
		return "invoice_details", "invoice_id", nil
	}
	return "", "", model.ErrUnknownDocumentKind(kind)
}

func (r *PGRepository) GetDetailQuantity(ctx context.Context, q sqlx.ExtContext, kind model.DocumentKind, documentID, productID int64) (int, error) {
	table, column, err := detailQuery(kind)
	if err != nil {
		return 0, err
	}

	query := fmt.Sprintf(`SELECT quantity FROM %s WHERE %s = $1 AND product_id = $2`, table, column)

	var qty int
	if err := sqlx.GetContext(ctx, q, &qty, query, documentID, productID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil // no prior line for this product
		}
		return 0, fmt.Errorf("get detail quantity: %w", err)
	}
	return qty, nil
}

func (r *PGRepository) ListDetailLines(ctx context.Context, q sqlx.ExtContext, kind model.DocumentKind, documentID int64) ([]model.DetailLine, error) {
	table, column, err := detailQuery(kind)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT product_id, quantity FROM %s WHERE %s = $1`, table, column)

	var lines []model.DetailLine
	if err := sqlx.SelectContext(ctx, q, &lines, query, documentID); err != nil {
		return nil, fmt.Errorf("list detail lines: %w", err)
	}
	return lines, nil
}
