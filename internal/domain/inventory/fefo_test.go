package inventory_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
)

func lot(id string, exp string, qty int64) *entity.Lot {
	d, _ := time.Parse("2006-01-02", exp)
	return &entity.Lot{ID: id, LotCode: id, ExpDate: d, QtyOnHand: decimal.NewFromInt(qty), Status: entity.LotStatusActive}
}

// A vence primero: 7 unidades = 5 de A + 2 de B, en ese orden.
func TestPlanFEFO_ConsumeElMasProximoAVencer(t *testing.T) {
	lots := []*entity.Lot{lot("B", "2025-06-01", 5), lot("A", "2025-01-01", 5)}

	plan, err := inventory.PlanFEFO(lots, decimal.NewFromInt(7))
	require.NoError(t, err)
	require.Len(t, plan, 2)

	assert.Equal(t, "A", plan[0].Lot.ID)
	assert.True(t, plan[0].Quantity.Equal(decimal.NewFromInt(5)))
	assert.Equal(t, "B", plan[1].Lot.ID)
	assert.True(t, plan[1].Quantity.Equal(decimal.NewFromInt(2)))
}

func TestPlanFEFO_NoTocaElSegundoLoteSiElPrimeroAlcanza(t *testing.T) {
	lots := []*entity.Lot{lot("A", "2025-01-01", 5), lot("B", "2025-06-01", 5)}

	plan, err := inventory.PlanFEFO(lots, decimal.NewFromInt(5))
	require.NoError(t, err)
	require.Len(t, plan, 1)
	assert.Equal(t, "A", plan[0].Lot.ID)
}

// Empate de vencimiento: gana el primero que llegó del repositorio (orden de creación).
func TestPlanFEFO_EmpateRespetaOrdenDeCreacion(t *testing.T) {
	lots := []*entity.Lot{lot("primero", "2025-03-01", 2), lot("segundo", "2025-03-01", 2)}

	plan, err := inventory.PlanFEFO(lots, decimal.NewFromInt(3))
	require.NoError(t, err)
	require.Len(t, plan, 2)
	assert.Equal(t, "primero", plan[0].Lot.ID)
	assert.True(t, plan[0].Quantity.Equal(decimal.NewFromInt(2)))
	assert.Equal(t, "segundo", plan[1].Lot.ID)
}

func TestPlanFEFO_ExactamenteTodoElDisponible(t *testing.T) {
	lots := []*entity.Lot{lot("A", "2025-01-01", 5), lot("B", "2025-06-01", 5)}

	plan, err := inventory.PlanFEFO(lots, decimal.NewFromInt(10))
	require.NoError(t, err)
	total := decimal.Zero
	for _, a := range plan {
		assert.True(t, a.Quantity.Equal(a.Lot.QtyOnHand), "cada lote se consume completo")
		total = total.Add(a.Quantity)
	}
	assert.True(t, total.Equal(decimal.NewFromInt(10)))
}

func TestPlanFEFO_StockInsuficienteInformaDisponible(t *testing.T) {
	lots := []*entity.Lot{lot("A", "2025-01-01", 5), lot("B", "2025-06-01", 5)}

	plan, err := inventory.PlanFEFO(lots, decimal.NewFromInt(11))
	assert.Nil(t, plan)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))

	available, ok := domain.AvailableOf(err)
	require.True(t, ok)
	assert.True(t, available.Equal(decimal.NewFromInt(10)))
}

func TestPlanFEFO_IgnoraLotesSinSaldo(t *testing.T) {
	lots := []*entity.Lot{lot("vacio", "2024-01-01", 0), lot("A", "2025-01-01", 3)}

	plan, err := inventory.PlanFEFO(lots, decimal.NewFromInt(2))
	require.NoError(t, err)
	require.Len(t, plan, 1)
	assert.Equal(t, "A", plan[0].Lot.ID)
}

func TestPlanFEFO_CantidadNoPositiva(t *testing.T) {
	_, err := inventory.PlanFEFO([]*entity.Lot{lot("A", "2025-01-01", 3)}, decimal.Zero)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
