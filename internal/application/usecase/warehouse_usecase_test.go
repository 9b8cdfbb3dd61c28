package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/usecase"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
)

func TestWarehouseUseCase_CreateYConsulta(t *testing.T) {
	uc := usecase.NewWarehouseUseCase(memory.New().Warehouses())
	ctx := context.Background()

	out, err := uc.Create(ctx, dto.CreateWarehouseRequest{Code: " bog ", Name: "Bogotá"})
	require.NoError(t, err)
	assert.Equal(t, "BOG", out.Code)
	assert.NotEmpty(t, out.ID)

	got, err := uc.GetByID(ctx, out.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bogotá", got.Name)

	_, err = uc.Create(ctx, dto.CreateWarehouseRequest{Code: "BOG", Name: "Otra"})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestWarehouseUseCase_Validaciones(t *testing.T) {
	uc := usecase.NewWarehouseUseCase(memory.New().Warehouses())
	ctx := context.Background()

	cases := []dto.CreateWarehouseRequest{
		{Code: "BOG"},
		{Code: "B", Name: "x"},
		{Code: "BO-G", Name: "x"},
	}
	for _, in := range cases {
		_, err := uc.Create(ctx, in)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "%+v", in)
	}

	_, err := uc.GetByID(ctx, "no-existe")
	assert.ErrorIs(t, err, domain.ErrWarehouseNotFound)
}

func TestWarehouseUseCase_ListPaginado(t *testing.T) {
	uc := usecase.NewWarehouseUseCase(memory.New().Warehouses())
	ctx := context.Background()
	for _, code := range []string{"MED", "BOG", "CAL"} {
		_, err := uc.Create(ctx, dto.CreateWarehouseRequest{Code: code, Name: code})
		require.NoError(t, err)
	}

	out, err := uc.List(ctx, dto.PageRequest{Limit: 2})
	require.NoError(t, err)
	require.Len(t, out.Items, 2)
	assert.Equal(t, "BOG", out.Items[0].Code)
	assert.Equal(t, "CAL", out.Items[1].Code)

	out, err = uc.List(ctx, dto.PageRequest{Limit: 2, Offset: 2})
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	assert.Equal(t, "MED", out.Items[0].Code)
}
