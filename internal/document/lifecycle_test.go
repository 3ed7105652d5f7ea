package document

import (
	"context"
	"testing"
	"time"

	"github.com/gestionale/stock-service/internal/model"
	"github.com/gestionale/stock-service/internal/stock/mocks"
	"github.com/gestionale/stock-service/internal/stock/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestLifecycle() (*Lifecycle, *mocks.MockRepository) {
	repo := mocks.NewMockRepository()
	uc := usecase.NewStockUseCase(repo, zap.NewNop())
	return NewLifecycle(uc, zap.NewNop()), repo
}

func int64Ptr(v int64) *int64 { return &v }

func TestSaveOrder_DraftHoldsNothing(t *testing.T) {
	l, repo := newTestLifecycle()
	ctx := context.Background()
	repo.SetStock(1, 10, 0)

	insufficient, err := l.SaveOrder(ctx, nil, &SaveOrderInput{
		OrderID: 42,
		Status:  OrderStatusDraft,
		Items:   []model.StockItem{{ProductID: 1, Name: "Widget", Quantity: 4}},
	})

	require.NoError(t, err)
	assert.Empty(t, insufficient)
	assert.Empty(t, repo.Reservations)
	assert.Equal(t, 0, repo.Stocks[1].ReservedQty)
}

func TestSaveOrder_InProgressReservesEachLine(t *testing.T) {
	l, repo := newTestLifecycle()
	ctx := context.Background()
	repo.SetStock(1, 10, 0)
	repo.SetStock(2, 6, 0)

	insufficient, err := l.SaveOrder(ctx, nil, &SaveOrderInput{
		OrderID: 42,
		Status:  OrderStatusInProgress,
		Items: []model.StockItem{
			{ProductID: 1, Name: "Widget", Quantity: 4},
			{ProductID: 2, Name: "Gadget", Quantity: 2},
		},
		Note: "order 42",
	})

	require.NoError(t, err)
	assert.Empty(t, insufficient)
	require.Len(t, repo.Reservations, 2)
	assert.Equal(t, 4, repo.Stocks[1].ReservedQty)
	assert.Equal(t, 2, repo.Stocks[2].ReservedQty)
	// no physical change until completion
	assert.Equal(t, 10, repo.Stocks[1].PhysicalQty)
	assert.Equal(t, 6, repo.Stocks[2].PhysicalQty)
}

func TestSaveOrder_ShortfallReservesNothing(t *testing.T) {
	l, repo := newTestLifecycle()
	ctx := context.Background()
	repo.SetStock(1, 3, 0)

	insufficient, err := l.SaveOrder(ctx, nil, &SaveOrderInput{
		OrderID: 42,
		Status:  OrderStatusInProgress,
		Items:   []model.StockItem{{ProductID: 1, Name: "Widget", Quantity: 5}},
	})

	require.NoError(t, err)
	require.Contains(t, insufficient, "Widget")
	assert.Empty(t, repo.Reservations)
	assert.Equal(t, 0, repo.Stocks[1].ReservedQty)
}

func TestSaveOrder_EditKeepsOwnQuantity(t *testing.T) {
	l, repo := newTestLifecycle()
	ctx := context.Background()
	// all available stock is already reserved by this same order
	repo.SetStock(1, 10, 8)
	repo.SetDetailLines(model.DocumentOrder, 42, []model.DetailLine{{ProductID: 1, Quantity: 8}})

	insufficient, err := l.SaveOrder(ctx, nil, &SaveOrderInput{
		OrderID:         42,
		ExistingOrderID: int64Ptr(42),
		Status:          OrderStatusInProgress,
		Items:           []model.StockItem{{ProductID: 1, Name: "Widget", Quantity: 8}},
	})

	require.NoError(t, err)
	assert.Empty(t, insufficient)
}

func TestCompleteOrder(t *testing.T) {
	l, repo := newTestLifecycle()
	ctx := context.Background()
	repo.SetStock(1, 10, 0)

	_, err := l.SaveOrder(ctx, nil, &SaveOrderInput{
		OrderID: 42,
		Status:  OrderStatusInProgress,
		Items:   []model.StockItem{{ProductID: 1, Name: "Widget", Quantity: 4}},
	})
	require.NoError(t, err)

	orderDate := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, l.CompleteOrder(ctx, nil, 42, orderDate))

	assert.Equal(t, 6, repo.Stocks[1].PhysicalQty)
	assert.Equal(t, 0, repo.Stocks[1].ReservedQty)
	require.Len(t, repo.Movements, 1)
	assert.Equal(t, "42", repo.Movements[0].DocumentNumber)
	assert.Equal(t, model.DocumentOrder, repo.Movements[0].DocumentKind)
	assert.Equal(t, model.ReservationCompleted, repo.Reservations[0].Status)
}

func TestCancelOrder(t *testing.T) {
	l, repo := newTestLifecycle()
	ctx := context.Background()
	repo.SetStock(1, 10, 0)

	_, err := l.SaveOrder(ctx, nil, &SaveOrderInput{
		OrderID: 42,
		Status:  OrderStatusInProgress,
		Items:   []model.StockItem{{ProductID: 1, Name: "Widget", Quantity: 4}},
	})
	require.NoError(t, err)

	require.NoError(t, l.CancelOrder(ctx, nil, 42))

	assert.Equal(t, 0, repo.Stocks[1].ReservedQty)
	assert.Equal(t, 10, repo.Stocks[1].PhysicalQty)
	assert.Equal(t, model.ReservationCancelled, repo.Reservations[0].Status)
}

func TestDeleteOrder_CompletedRestoresStockAndRemovesMovements(t *testing.T) {
	l, repo := newTestLifecycle()
	ctx := context.Background()
	repo.SetStock(1, 10, 0)
	repo.SetStock(2, 6, 0)

	items := []model.StockItem{
		{ProductID: 1, Name: "Widget", Quantity: 3},
		{ProductID: 2, Name: "Gadget", Quantity: 2},
	}
	_, err := l.SaveOrder(ctx, nil, &SaveOrderInput{OrderID: 42, Status: OrderStatusInProgress, Items: items})
	require.NoError(t, err)
	require.NoError(t, l.CompleteOrder(ctx, nil, 42, time.Now()))
	require.Len(t, repo.Movements, 2)

	// the document layer recorded these lines when the order was saved
	repo.SetDetailLines(model.DocumentOrder, 42, []model.DetailLine{
		{ProductID: 1, Quantity: 3},
		{ProductID: 2, Quantity: 2},
	})

	require.NoError(t, l.DeleteOrder(ctx, nil, 42, OrderStatusCompleted))

	assert.Equal(t, 10, repo.Stocks[1].PhysicalQty)
	assert.Equal(t, 6, repo.Stocks[2].PhysicalQty)
	assert.Empty(t, repo.Movements)
}

func TestDeleteOrder_InProgressCancelsReservations(t *testing.T) {
	l, repo := newTestLifecycle()
	ctx := context.Background()
	repo.SetStock(1, 10, 0)

	_, err := l.SaveOrder(ctx, nil, &SaveOrderInput{
		OrderID: 42,
		Status:  OrderStatusInProgress,
		Items:   []model.StockItem{{ProductID: 1, Name: "Widget", Quantity: 4}},
	})
	require.NoError(t, err)

	require.NoError(t, l.DeleteOrder(ctx, nil, 42, OrderStatusInProgress))

	// no stock was ever applied, so none moves
	assert.Equal(t, 10, repo.Stocks[1].PhysicalQty)
	assert.Equal(t, 0, repo.Stocks[1].ReservedQty)
	assert.Equal(t, model.ReservationCancelled, repo.Reservations[0].Status)
	assert.Empty(t, repo.Movements)
}

func TestDeleteOrder_DraftOnlyRemovesMovements(t *testing.T) {
	l, repo := newTestLifecycle()
	ctx := context.Background()
	repo.SetStock(1, 10, 0)

	require.NoError(t, l.DeleteOrder(ctx, nil, 42, OrderStatusDraft))

	assert.Equal(t, 10, repo.Stocks[1].PhysicalQty)
	assert.Empty(t, repo.Reservations)
}

func TestSaveInvoice_IssuedDecrementsDirectly(t *testing.T) {
	l, repo := newTestLifecycle()
	ctx := context.Background()
	repo.SetStock(1, 10, 0)

	insufficient, err := l.SaveInvoice(ctx, nil, &SaveInvoiceInput{
		InvoiceID:     7,
		InvoiceNumber: "INV-7",
		InvoiceDate:   time.Now(),
		Status:        InvoiceStatusIssued,
		Items:         []model.StockItem{{ProductID: 1, Name: "Widget", Quantity: 4}},
	})

	require.NoError(t, err)
	assert.Empty(t, insufficient)
	assert.Equal(t, 6, repo.Stocks[1].PhysicalQty)
	assert.Empty(t, repo.Reservations)

	require.Len(t, repo.Movements, 1)
	assert.Equal(t, model.MovementOutward, repo.Movements[0].Direction)
	assert.Equal(t, model.ReasonSale, repo.Movements[0].Reason)
	assert.Equal(t, "INV-7", repo.Movements[0].DocumentNumber)
	assert.Equal(t, model.DocumentInvoice, repo.Movements[0].DocumentKind)
}

func TestSaveInvoice_DraftHasNoStockEffect(t *testing.T) {
	l, repo := newTestLifecycle()
	ctx := context.Background()
	repo.SetStock(1, 10, 0)

	insufficient, err := l.SaveInvoice(ctx, nil, &SaveInvoiceInput{
		InvoiceID:     7,
		InvoiceNumber: "INV-7",
		InvoiceDate:   time.Now(),
		Status:        InvoiceStatusDraft,
		Items:         []model.StockItem{{ProductID: 1, Name: "Widget", Quantity: 4}},
	})

	require.NoError(t, err)
	assert.Empty(t, insufficient)
	assert.Equal(t, 10, repo.Stocks[1].PhysicalQty)
	assert.Empty(t, repo.Movements)
}

func TestSaveInvoice_ShortfallReported(t *testing.T) {
	l, repo := newTestLifecycle()
	ctx := context.Background()
	repo.SetStock(1, 2, 0)

	insufficient, err := l.SaveInvoice(ctx, nil, &SaveInvoiceInput{
		InvoiceID:     7,
		InvoiceNumber: "INV-7",
		InvoiceDate:   time.Now(),
		Status:        InvoiceStatusIssued,
		Items:         []model.StockItem{{ProductID: 1, Name: "Widget", Quantity: 4}},
	})

	require.NoError(t, err)
	require.Contains(t, insufficient, "Widget")
	assert.Equal(t, 2, repo.Stocks[1].PhysicalQty)
	assert.Empty(t, repo.Movements)
}

func TestDeleteInvoice_IssuedRestoresStock(t *testing.T) {
	l, repo := newTestLifecycle()
	ctx := context.Background()
	repo.SetStock(1, 10, 0)

	_, err := l.SaveInvoice(ctx, nil, &SaveInvoiceInput{
		InvoiceID:     7,
		InvoiceNumber: "INV-7",
		InvoiceDate:   time.Now(),
		Status:        InvoiceStatusIssued,
		Items:         []model.StockItem{{ProductID: 1, Name: "Widget", Quantity: 4}},
	})
	require.NoError(t, err)
	repo.SetDetailLines(model.DocumentInvoice, 7, []model.DetailLine{{ProductID: 1, Quantity: 4}})

	require.NoError(t, l.DeleteInvoice(ctx, nil, 7, "INV-7", InvoiceStatusIssued))

	assert.Equal(t, 10, repo.Stocks[1].PhysicalQty)
	assert.Empty(t, repo.Movements)
}

func TestDeleteInvoice_DraftRemovesNothingButMovements(t *testing.T) {
	l, repo := newTestLifecycle()
	ctx := context.Background()
	repo.SetStock(1, 10, 0)

	require.NoError(t, l.DeleteInvoice(ctx, nil, 7, "INV-7", InvoiceStatusDraft))
	assert.Equal(t, 10, repo.Stocks[1].PhysicalQty)
}

func TestReceiveSupplierOrder(t *testing.T) {
	l, repo := newTestLifecycle()
	ctx := context.Background()
	repo.SetStock(1, 10, 0)

	err := l.ReceiveSupplierOrder(ctx, nil, []model.StockItem{{ProductID: 1, Name: "Widget", Quantity: 20}}, time.Now(), "PO-9")
	require.NoError(t, err)

	assert.Equal(t, 30, repo.Stocks[1].PhysicalQty)
	require.Len(t, repo.Movements, 1)
	assert.Equal(t, model.MovementInward, repo.Movements[0].Direction)
	assert.Equal(t, model.ReasonPurchase, repo.Movements[0].Reason)
}
