package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/application/usecase"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/stock-ledger/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/stock-ledger/pkg/jwt"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

const (
	whBOG   = "wh-bog"
	whMED   = "wh-med"
	product = "prod-arroz"
)

type apiFixture struct {
	app      *fiber.App
	bogToken string
	medToken string
	admToken string
	venToken string
}

func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	store := memory.New()
	ctx := context.Background()
	require.NoError(t, store.Warehouses().Create(ctx, &entity.Warehouse{ID: whBOG, Code: "BOG", Name: "Bogotá"}))
	require.NoError(t, store.Warehouses().Create(ctx, &entity.Warehouse{ID: whMED, Code: "MED", Name: "Medellín"}))

	ledger := inventory.NewLedgerUseCase(store, store.AuditLogs(), nil, logger.Nop(), time.Second)
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		WarehouseUC: usecase.NewWarehouseUseCase(store.Warehouses()),
		Ledger:      ledger,
		JWTSecret:   testJWTSecret,
		Logger:      logger.Nop(),
	})
	return &apiFixture{
		app:      app,
		bogToken: tokenFor(t, pkgjwt.Identity{UserID: "u-bog", WarehouseID: whBOG, Role: pkgjwt.RoleBodeguero}),
		medToken: tokenFor(t, pkgjwt.Identity{UserID: "u-med", WarehouseID: whMED, Role: pkgjwt.RoleBodeguero}),
		admToken: tokenFor(t, pkgjwt.Identity{UserID: "u-adm", Role: pkgjwt.RoleAdmin}),
		venToken: tokenFor(t, pkgjwt.Identity{UserID: "u-ven", WarehouseID: whBOG, Role: pkgjwt.RoleVendedor}),
	}
}

// call envía la petición y decodifica el cuerpo en out (si no es nil).
func (f *apiFixture) call(t *testing.T, method, path, token string, body any, out any) int {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (f *apiFixture) receive(t *testing.T, code string, n int64) dto.ReceiptResponse {
	t.Helper()
	var out []dto.ReceiptResponse
	status := f.call(t, http.MethodPost, "/api/inventory/receipts", f.bogToken, dto.ReceiveRequest{
		Reason: "compra",
		Lines: []dto.ReceiveLineRequest{{
			LotCode:     code,
			ProductID:   product,
			WarehouseID: whBOG,
			ExpDate:     time.Now().AddDate(0, 3, 0),
			Quantity:    decimal.NewFromInt(n),
		}},
	}, &out)
	require.Equal(t, http.StatusCreated, status)
	require.Len(t, out, 1)
	return out[0]
}

func TestAPI_RecepcionYSalidaFEFO(t *testing.T) {
	f := newAPI(t)
	rec := f.receive(t, "L-001", 10)
	assert.True(t, rec.NewLot)
	assert.Contains(t, rec.TransactionNumber, "RCV-BOG-")

	var issue dto.IssueResponse
	status := f.call(t, http.MethodPost, "/api/inventory/issues", f.venToken, dto.IssueRequest{
		Type: entity.IssueTypeSale, ProductID: product, WarehouseID: whBOG, Quantity: decimal.NewFromInt(4),
	}, &issue)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "ISS-BOG-000001", issue.TransactionNumber)
	require.NotNil(t, issue.RemainingStock)
	assert.True(t, issue.RemainingStock.Equal(decimal.NewFromInt(6)))

	var lot dto.LotResponse
	require.Equal(t, http.StatusOK, f.call(t, http.MethodGet, "/api/inventory/lots/"+rec.LotID, f.bogToken, nil, &lot))
	assert.True(t, lot.QtyOnHand.Equal(decimal.NewFromInt(6)))
	require.Len(t, lot.History, 2)
	assert.Equal(t, entity.HistorySale, lot.History[1].TransactionType)

	var avail dto.AvailabilityResponse
	require.Equal(t, http.StatusOK, f.call(t, http.MethodGet,
		"/api/inventory/availability?product_id="+product+"&warehouse_id="+whBOG, f.venToken, nil, &avail))
	assert.True(t, avail.Available.Equal(decimal.NewFromInt(6)))
}

func TestAPI_StockInsuficienteIncluyeDisponible(t *testing.T) {
	f := newAPI(t)
	f.receive(t, "L-001", 5)

	var errBody dto.ErrorResponse
	status := f.call(t, http.MethodPost, "/api/inventory/issues", f.bogToken, dto.IssueRequest{
		Type: entity.IssueTypeGeneral, ProductID: product, WarehouseID: whBOG, Quantity: decimal.NewFromInt(6),
	}, &errBody)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "INSUFFICIENT_STOCK", errBody.Code)
	require.NotNil(t, errBody.Available)
	assert.True(t, errBody.Available.Equal(decimal.NewFromInt(5)))
}

func TestAPI_AnularSalidaDosVeces(t *testing.T) {
	f := newAPI(t)
	f.receive(t, "L-001", 5)
	var issue dto.IssueResponse
	require.Equal(t, http.StatusCreated, f.call(t, http.MethodPost, "/api/inventory/issues", f.bogToken, dto.IssueRequest{
		Type: entity.IssueTypeGeneral, ProductID: product, WarehouseID: whBOG, Quantity: decimal.NewFromInt(2),
	}, &issue))

	path := "/api/inventory/issues/" + issue.ID + "/cancel"
	var cancelled dto.IssueResponse
	require.Equal(t, http.StatusOK, f.call(t, http.MethodPost, path, f.bogToken, dto.CancelRequest{Reason: "error"}, &cancelled))
	assert.Equal(t, entity.IssueStatusCancelled, cancelled.Status)

	var errBody dto.ErrorResponse
	assert.Equal(t, http.StatusConflict, f.call(t, http.MethodPost, path, f.bogToken, nil, &errBody))
	assert.Equal(t, "ALREADY_CANCELLED", errBody.Code)
}

func TestAPI_AlcancePorBodegaYRol(t *testing.T) {
	f := newAPI(t)
	rec := f.receive(t, "L-001", 5)

	var errBody dto.ErrorResponse
	status := f.call(t, http.MethodPost, "/api/inventory/issues", f.medToken, dto.IssueRequest{
		Type: entity.IssueTypeGeneral, ProductID: product, WarehouseID: whBOG, Quantity: decimal.NewFromInt(1),
	}, &errBody)
	assert.Equal(t, http.StatusForbidden, status, "bodeguero de otra bodega")

	status = f.call(t, http.MethodPost, "/api/inventory/lots/"+rec.LotID+"/adjust", f.bogToken,
		dto.AdjustRequest{Delta: decimal.NewFromInt(1), Reason: "conteo"}, &errBody)
	assert.Equal(t, http.StatusForbidden, status, "ajuste solo admin")

	var lot dto.LotResponse
	status = f.call(t, http.MethodPost, "/api/inventory/lots/"+rec.LotID+"/adjust", f.admToken,
		dto.AdjustRequest{Delta: decimal.NewFromInt(-2), Reason: "conteo físico"}, &lot)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, lot.QtyOnHand.Equal(decimal.NewFromInt(3)))

	status = f.call(t, http.MethodPost, "/api/inventory/receipts", f.venToken, dto.ReceiveRequest{}, &errBody)
	assert.Equal(t, http.StatusForbidden, status, "vendedor no recibe")

	assert.Equal(t, http.StatusUnauthorized, f.call(t, http.MethodGet, "/api/inventory/lots/"+rec.LotID, "", nil, nil))
}

func TestAPI_Damage(t *testing.T) {
	f := newAPI(t)
	rec := f.receive(t, "L-001", 5)

	var out dto.DamageResponse
	status := f.call(t, http.MethodPost, "/api/inventory/lots/"+rec.LotID+"/damage", f.bogToken,
		dto.DamageRequest{Quantity: decimal.NewFromInt(2), Reason: "roto"}, &out)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "DMG-BODEGUERO-BOG-000001", out.ReportNumber)
	assert.True(t, out.Damaged.Equal(decimal.NewFromInt(2)))
	assert.True(t, out.QtyOnHand.Equal(decimal.NewFromInt(3)))

	var errBody dto.ErrorResponse
	status = f.call(t, http.MethodPost, "/api/inventory/lots/"+rec.LotID+"/damage", f.medToken,
		dto.DamageRequest{Quantity: decimal.NewFromInt(1), Reason: "roto"}, &errBody)
	assert.Equal(t, http.StatusForbidden, status)
}

func TestAPI_TrasladoConfirmado(t *testing.T) {
	f := newAPI(t)
	rec := f.receive(t, "L-001", 10)

	var tr dto.TransferResponse
	status := f.call(t, http.MethodPost, "/api/transfers", f.bogToken, dto.InitiateTransferRequest{
		SourceWarehouseID:      whBOG,
		DestinationWarehouseID: whMED,
		Lines:                  []dto.TransferLineRequest{{LotID: rec.LotID, Quantity: decimal.NewFromInt(4)}},
	}, &tr)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, entity.TransferPending, tr.Status)
	assert.NotEmpty(t, tr.TrackingNumber)

	var pending dto.TransferListResponse
	require.Equal(t, http.StatusOK, f.call(t, http.MethodGet, "/api/transfers/pending", f.medToken, nil, &pending))
	require.Len(t, pending.Items, 1)
	assert.Equal(t, tr.ID, pending.Items[0].ID)

	var errBody dto.ErrorResponse
	status = f.call(t, http.MethodPost, "/api/transfers/"+tr.ID+"/confirm", f.bogToken, nil, &errBody)
	assert.Equal(t, http.StatusForbidden, status, "solo la bodega destino confirma")
	assert.Equal(t, "UNAUTHORIZED", errBody.Code)

	var confirmed dto.TransferResponse
	require.Equal(t, http.StatusOK, f.call(t, http.MethodPost, "/api/transfers/"+tr.ID+"/confirm", f.medToken, nil, &confirmed))
	assert.Equal(t, entity.TransferConfirmed, confirmed.Status)

	status = f.call(t, http.MethodPost, "/api/transfers/"+tr.ID+"/reject", f.medToken, dto.CancelRequest{Reason: "tarde"}, &errBody)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "INVALID_TRANSFER_STATE", errBody.Code)

	var lot dto.LotResponse
	require.Equal(t, http.StatusOK, f.call(t, http.MethodGet, "/api/inventory/lots/"+confirmed.Lines[0].DestinationLotID, f.medToken, nil, &lot))
	assert.True(t, lot.QtyOnHand.Equal(decimal.NewFromInt(4)))
	assert.Equal(t, entity.LotStatusActive, lot.Status)
}

func TestAPI_TrasladoDesdeBodegaAjena(t *testing.T) {
	f := newAPI(t)
	rec := f.receive(t, "L-001", 10)

	var errBody dto.ErrorResponse
	status := f.call(t, http.MethodPost, "/api/transfers", f.medToken, dto.InitiateTransferRequest{
		SourceWarehouseID:      whBOG,
		DestinationWarehouseID: whMED,
		Lines:                  []dto.TransferLineRequest{{LotID: rec.LotID, Quantity: decimal.NewFromInt(1)}},
	}, &errBody)
	assert.Equal(t, http.StatusForbidden, status)

	status = f.call(t, http.MethodGet, "/api/transfers/pending?warehouse_id="+whBOG, f.medToken, nil, &errBody)
	assert.Equal(t, http.StatusForbidden, status)
}

func TestAPI_NoEncontradosYValidacion(t *testing.T) {
	f := newAPI(t)
	var errBody dto.ErrorResponse

	assert.Equal(t, http.StatusNotFound, f.call(t, http.MethodGet, "/api/inventory/lots/nope", f.bogToken, nil, &errBody))
	assert.Equal(t, "LOT_NOT_FOUND", errBody.Code)

	assert.Equal(t, http.StatusNotFound, f.call(t, http.MethodGet, "/api/transfers/nope", f.bogToken, nil, &errBody))
	assert.Equal(t, "TRANSFER_NOT_FOUND", errBody.Code)

	assert.Equal(t, http.StatusBadRequest, f.call(t, http.MethodGet, "/api/inventory/availability", f.bogToken, nil, &errBody))

	status := f.call(t, http.MethodPost, "/api/inventory/issues", f.bogToken, dto.IssueRequest{
		Type: "regalo", ProductID: product, WarehouseID: whBOG, Quantity: decimal.NewFromInt(1),
	}, &errBody)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", errBody.Code)
}

func TestAPI_Bodegas(t *testing.T) {
	f := newAPI(t)

	var errBody dto.ErrorResponse
	assert.Equal(t, http.StatusForbidden, f.call(t, http.MethodPost, "/api/warehouses", f.bogToken,
		dto.CreateWarehouseRequest{Code: "CAL", Name: "Cali"}, &errBody))

	var created dto.WarehouseResponse
	require.Equal(t, http.StatusCreated, f.call(t, http.MethodPost, "/api/warehouses", f.admToken,
		dto.CreateWarehouseRequest{Code: "cal", Name: "Cali"}, &created))
	assert.Equal(t, "CAL", created.Code)

	var list dto.WarehouseListResponse
	require.Equal(t, http.StatusOK, f.call(t, http.MethodGet, "/api/warehouses?limit=10", f.venToken, nil, &list))
	assert.Len(t, list.Items, 3)

	var got dto.WarehouseResponse
	require.Equal(t, http.StatusOK, f.call(t, http.MethodGet, "/api/warehouses/"+created.ID, f.venToken, nil, &got))
	assert.Equal(t, "Cali", got.Name)

	assert.Equal(t, http.StatusConflict, f.call(t, http.MethodPost, "/api/warehouses", f.admToken,
		dto.CreateWarehouseRequest{Code: "CAL", Name: "Otra"}, &errBody))
}
