package sales_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/application/sales"
	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
)

// ventaDe crea una venta de qty unidades sobre un lote nuevo y la devuelve con su ítem.
func ventaDe(t *testing.T, e *env, stock, qty int64) (*dto.SaleResponse, *entity.Batch) {
	t.Helper()
	batch := e.seedBatch(t, stock, "12", "8", "15")
	resp, err := e.processor.ProcessSale(context.Background(), dto.CreateSaleRequest{
		Lines: []dto.SaleLineRequest{{BatchID: batch.ID, Quantity: qty}},
	})
	require.NoError(t, err)
	return resp, batch
}

func TestProcessReturn_ReingresaStockAlLoteOriginal(t *testing.T) {
	e := newEnv(t, sales.DefaultConfig())
	venta, batch := ventaDe(t, e, 10, 4)

	out, err := e.returns.ProcessReturn(context.Background(), venta.SaleID, dto.ReturnSaleRequest{
		Lines: []dto.ReturnLineRequest{{SaleItemID: venta.Items[0].ID, Quantity: 3}},
	})
	require.NoError(t, err)

	require.Len(t, out.Lines, 1)
	assert.Equal(t, int64(3), out.Lines[0].Returned)
	assert.Equal(t, int64(3), out.Lines[0].ReturnedQuantity)
	assert.Equal(t, int64(1), out.Lines[0].Remaining)

	actual, repoErr := e.batchRepo.GetByID(batch.ID)
	require.NoError(t, repoErr)
	assert.Equal(t, int64(9), actual.Quantity, "6 tras la venta más 3 devueltas")
}

func TestProcessReturn_DevolucionesParcialesHastaAgotar(t *testing.T) {
	e := newEnv(t, sales.DefaultConfig())
	venta, _ := ventaDe(t, e, 10, 5)
	ctx := context.Background()
	itemID := venta.Items[0].ID

	for _, qty := range []int64{2, 2, 1} {
		_, err := e.returns.ProcessReturn(ctx, venta.SaleID, dto.ReturnSaleRequest{
			Lines: []dto.ReturnLineRequest{{SaleItemID: itemID, Quantity: qty}},
		})
		require.NoError(t, err)
	}

	// Ya no queda nada por devolver.
	_, err := e.returns.ProcessReturn(ctx, venta.SaleID, dto.ReturnSaleRequest{
		Lines: []dto.ReturnLineRequest{{SaleItemID: itemID, Quantity: 1}},
	})
	assert.ErrorIs(t, err, domain.ErrOverReturn)
}

func TestProcessReturn_ExcesoFallaSinEfectos(t *testing.T) {
	e := newEnv(t, sales.DefaultConfig())
	venta, batch := ventaDe(t, e, 10, 4)

	_, err := e.returns.ProcessReturn(context.Background(), venta.SaleID, dto.ReturnSaleRequest{
		Lines: []dto.ReturnLineRequest{{SaleItemID: venta.Items[0].ID, Quantity: 5}},
	})
	assert.ErrorIs(t, err, domain.ErrOverReturn)

	actual, repoErr := e.batchRepo.GetByID(batch.ID)
	require.NoError(t, repoErr)
	assert.Equal(t, int64(6), actual.Quantity, "el stock no cambia si la devolución falla")

	item, repoErr := e.saleRepo.GetItemByID(venta.Items[0].ID)
	require.NoError(t, repoErr)
	assert.Equal(t, int64(0), item.ReturnedQuantity)
}

func TestProcessReturn_TodoONadaEntreLineas(t *testing.T) {
	// Dos líneas: la primera válida, la segunda excede lo vendido. La primera
	// también se revierte.
	e := newEnv(t, sales.DefaultConfig())
	batchA := e.seedBatch(t, 10, "12", "8", "15")
	batchB := e.seedBatch(t, 10, "20", "10", "25")

	venta, err := e.processor.ProcessSale(context.Background(), dto.CreateSaleRequest{
		Lines: []dto.SaleLineRequest{
			{BatchID: batchA.ID, Quantity: 3},
			{BatchID: batchB.ID, Quantity: 2},
		},
	})
	require.NoError(t, err)
	require.Len(t, venta.Items, 2)

	_, err = e.returns.ProcessReturn(context.Background(), venta.SaleID, dto.ReturnSaleRequest{
		Lines: []dto.ReturnLineRequest{
			{SaleItemID: venta.Items[0].ID, Quantity: 1},
			{SaleItemID: venta.Items[1].ID, Quantity: 99},
		},
	})
	assert.ErrorIs(t, err, domain.ErrOverReturn)

	for _, item := range venta.Items {
		actual, repoErr := e.saleRepo.GetItemByID(item.ID)
		require.NoError(t, repoErr)
		assert.Equal(t, int64(0), actual.ReturnedQuantity, "ninguna línea queda aplicada")
	}
}

func TestProcessReturn_RegistraMovimientoReturned(t *testing.T) {
	e := newEnv(t, sales.DefaultConfig())
	venta, batch := ventaDe(t, e, 10, 2)

	_, err := e.returns.ProcessReturn(context.Background(), venta.SaleID, dto.ReturnSaleRequest{
		Lines: []dto.ReturnLineRequest{{SaleItemID: venta.Items[0].ID, Quantity: 2}},
	})
	require.NoError(t, err)

	movs, err := e.ledger.Movements(context.Background(), batch.ProductID, nil, nil, dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, movs, 3, "added, sold y returned")
	assert.Equal(t, entity.MovementReturned, movs[0].Type)
	assert.Equal(t, int64(2), movs[0].Quantity)
}

func TestProcessReturn_ItemDeOtraVenta(t *testing.T) {
	e := newEnv(t, sales.DefaultConfig())
	ventaA, _ := ventaDe(t, e, 10, 2)
	ventaB, _ := ventaDe(t, e, 10, 2)

	// El ítem pertenece a la venta B pero se pide contra la venta A.
	_, err := e.returns.ProcessReturn(context.Background(), ventaA.SaleID, dto.ReturnSaleRequest{
		Lines: []dto.ReturnLineRequest{{SaleItemID: ventaB.Items[0].ID, Quantity: 1}},
	})
	assert.ErrorIs(t, err, domain.ErrSaleItemNotFound)
}

func TestProcessReturn_VentaInexistente(t *testing.T) {
	e := newEnv(t, sales.DefaultConfig())

	_, err := e.returns.ProcessReturn(context.Background(), uuid.New().String(), dto.ReturnSaleRequest{
		Lines: []dto.ReturnLineRequest{{SaleItemID: uuid.New().String(), Quantity: 1}},
	})
	assert.ErrorIs(t, err, domain.ErrSaleNotFound)
}

func TestProcessReturn_ValidaEntrada(t *testing.T) {
	e := newEnv(t, sales.DefaultConfig())
	venta, _ := ventaDe(t, e, 10, 2)

	casos := []dto.ReturnSaleRequest{
		{},
		{Lines: []dto.ReturnLineRequest{{SaleItemID: "", Quantity: 1}}},
		{Lines: []dto.ReturnLineRequest{{SaleItemID: venta.Items[0].ID, Quantity: 0}}},
		{Lines: []dto.ReturnLineRequest{{SaleItemID: venta.Items[0].ID, Quantity: -1}}},
	}
	for _, in := range casos {
		_, err := e.returns.ProcessReturn(context.Background(), venta.SaleID, in)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	}
}
