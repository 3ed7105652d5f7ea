package mocks

import (
	"context"
	"fmt"

	"github.com/gestionale/stock-service/internal/model"
	"github.com/gestionale/stock-service/internal/stock/dto"
	"github.com/jmoiron/sqlx"
)

// MockRepository is an in-memory stock.Repository. It mirrors the Postgres
// implementation's lenient semantics: lookups for unknown products return
// nil, counter updates that match no row are no-ops. Error fields let tests
// inject persistence failures per method.
type MockRepository struct {
	Stocks       map[int64]*model.Stock
	Reservations []*model.Reservation
	Movements    []*model.Movement
	detailLines  map[string][]model.DetailLine

	// LockCalls records every GetStockForUpdate product id, in order.
	LockCalls []int64

	GetStockErr          error
	AddPhysicalErr       error
	AddReservedErr       error
	InsertReservationErr error
	UpdateReservationErr error
	InsertMovementErr    error
	DeleteMovementsErr   error
}

func NewMockRepository() *MockRepository {
	return &MockRepository{
		Stocks:      make(map[int64]*model.Stock),
		detailLines: make(map[string][]model.DetailLine),
	}
}

func (m *MockRepository) SetStock(productID int64, physical, reserved int) {
	m.Stocks[productID] = &model.Stock{ProductID: productID, PhysicalQty: physical, ReservedQty: reserved}
}

func (m *MockRepository) SetDetailLines(kind model.DocumentKind, documentID int64, lines []model.DetailLine) {
	m.detailLines[detailKey(kind, documentID)] = lines
}

func detailKey(kind model.DocumentKind, documentID int64) string {
	return fmt.Sprintf("%s/%d", kind, documentID)
}

func (m *MockRepository) GetStock(ctx context.Context, q sqlx.ExtContext, productID int64) (*model.Stock, error) {
	if m.GetStockErr != nil {
		return nil, m.GetStockErr
	}
	s, ok := m.Stocks[productID]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (m *MockRepository) GetStockForUpdate(ctx context.Context, q sqlx.ExtContext, productID int64) (*model.Stock, error) {
	m.LockCalls = append(m.LockCalls, productID)
	return m.GetStock(ctx, q, productID)
}

func (m *MockRepository) BatchGetStock(ctx context.Context, q sqlx.ExtContext, productIDs []int64) ([]model.Stock, error) {
	if m.GetStockErr != nil {
		return nil, m.GetStockErr
	}
	items := []model.Stock{}
	for _, id := range productIDs {
		if s, ok := m.Stocks[id]; ok {
			items = append(items, *s)
		}
	}
	return items, nil
}

func (m *MockRepository) AddPhysical(ctx context.Context, q sqlx.ExtContext, productID int64, delta int) error {
	if m.AddPhysicalErr != nil {
		return m.AddPhysicalErr
	}
	if s, ok := m.Stocks[productID]; ok {
		s.PhysicalQty += delta
	}
	return nil
}

func (m *MockRepository) AddReserved(ctx context.Context, q sqlx.ExtContext, productID int64, delta int) error {
	if m.AddReservedErr != nil {
		return m.AddReservedErr
	}
	if s, ok := m.Stocks[productID]; ok {
		s.ReservedQty += delta
	}
	return nil
}

func (m *MockRepository) GetReservation(ctx context.Context, q sqlx.ExtContext, productID int64, kind model.DocumentKind, documentID int64) (*model.Reservation, error) {
	for _, r := range m.Reservations {
		if r.ProductID == productID && r.DocumentKind == kind && r.DocumentID == documentID {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *MockRepository) InsertReservation(ctx context.Context, q sqlx.ExtContext, r *model.Reservation) error {
	if m.InsertReservationErr != nil {
		return m.InsertReservationErr
	}
	cp := *r
	m.Reservations = append(m.Reservations, &cp)
	return nil
}

func (m *MockRepository) UpdateReservation(ctx context.Context, q sqlx.ExtContext, r *model.Reservation) error {
	if m.UpdateReservationErr != nil {
		return m.UpdateReservationErr
	}
	for i, existing := range m.Reservations {
		if existing.ID == r.ID {
			cp := *r
			m.Reservations[i] = &cp
			return nil
		}
	}
	return nil
}

func (m *MockRepository) ListReservations(ctx context.Context, q sqlx.ExtContext, kind model.DocumentKind, documentID int64) ([]model.Reservation, error) {
	items := []model.Reservation{}
	for _, r := range m.Reservations {
		if r.DocumentKind == kind && r.DocumentID == documentID {
			items = append(items, *r)
		}
	}
	return items, nil
}

func (m *MockRepository) ListActiveReservations(ctx context.Context, q sqlx.ExtContext, kind model.DocumentKind, documentID int64) ([]model.Reservation, error) {
	items := []model.Reservation{}
	for _, r := range m.Reservations {
		if r.DocumentKind == kind && r.DocumentID == documentID && r.Status == model.ReservationActive {
			items = append(items, *r)
		}
	}
	return items, nil
}

func (m *MockRepository) MarkActiveReservations(ctx context.Context, q sqlx.ExtContext, kind model.DocumentKind, documentID int64, to model.ReservationStatus) (int64, error) {
	var n int64
	for _, r := range m.Reservations {
		if r.DocumentKind == kind && r.DocumentID == documentID && r.Status == model.ReservationActive {
			r.Status = to
			n++
		}
	}
	return n, nil
}

func (m *MockRepository) InsertMovement(ctx context.Context, q sqlx.ExtContext, mv *model.Movement) error {
	if m.InsertMovementErr != nil {
		return m.InsertMovementErr
	}
	cp := *mv
	m.Movements = append(m.Movements, &cp)
	return nil
}

func (m *MockRepository) DeleteMovements(ctx context.Context, q sqlx.ExtContext, kind model.DocumentKind, documentNumber string) (int64, error) {
	if m.DeleteMovementsErr != nil {
		return 0, m.DeleteMovementsErr
	}
	kept := m.Movements[:0]
	var n int64
	for _, mv := range m.Movements {
		if mv.DocumentKind == kind && mv.DocumentNumber == documentNumber {
			n++
			continue
		}
		kept = append(kept, mv)
	}
	m.Movements = kept
	return n, nil
}

func (m *MockRepository) ListMovements(ctx context.Context, q sqlx.ExtContext, f *dto.MovementFilters) ([]model.Movement, int, error) {
	matched := []model.Movement{}
	for _, mv := range m.Movements {
		if f.ProductID != nil && mv.ProductID != *f.ProductID {
			continue
		}
		if f.DocumentKind != "" && mv.DocumentKind != f.DocumentKind {
			continue
		}
		if f.Direction != "" && mv.Direction != f.Direction {
			continue
		}
		if f.Reason != "" && mv.Reason != f.Reason {
			continue
		}
		if f.StartDate != nil && mv.OccurredAt.Before(*f.StartDate) {
			continue
		}
		if f.EndDate != nil && mv.OccurredAt.After(*f.EndDate) {
			continue
		}
		matched = append(matched, *mv)
	}

	total := len(matched)
	if f.PageSize > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		start := (page - 1) * f.PageSize
		if start > total {
			start = total
		}
		end := start + f.PageSize
		if end > total {
			end = total
		}
		matched = matched[start:end]
	}
	return matched, total, nil
}

func (m *MockRepository) GetDetailQuantity(ctx context.Context, q sqlx.ExtContext, kind model.DocumentKind, documentID, productID int64) (int, error) {
	for _, line := range m.detailLines[detailKey(kind, documentID)] {
		if line.ProductID == productID {
			return line.Quantity, nil
		}
	}
	return 0, nil
}

func (m *MockRepository) ListDetailLines(ctx context.Context, q sqlx.ExtContext, kind model.DocumentKind, documentID int64) ([]model.DetailLine, error) {
	return m.detailLines[detailKey(kind, documentID)], nil
}
