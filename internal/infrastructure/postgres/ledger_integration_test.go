//go:build integration

package postgres_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/stock-ledger/pkg/jwt"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

var testPool *pgxpool.Pool

func TestMain(m *testing.M) {
	ctx := context.Background()
	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("ledger_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "no se pudo iniciar postgres: %v\n", err)
		os.Exit(1)
	}
	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err == nil {
		err = postgres.Migrate(dsn, logger.Nop())
	}
	if err == nil {
		testPool, err = postgres.NewPoolFromDSN(ctx, dsn)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "preparar base de pruebas: %v\n", err)
		_ = container.Terminate(ctx)
		os.Exit(1)
	}

	code := m.Run()
	testPool.Close()
	_ = container.Terminate(ctx)
	os.Exit(code)
}

// newWarehouse crea una bodega con código único para aislar cada prueba.
func newWarehouse(t *testing.T) *entity.Warehouse {
	t.Helper()
	now := time.Now().UTC()
	w := &entity.Warehouse{
		ID:        uuid.New().String(),
		Code:      strings.ToUpper(uuid.New().String()[:6]),
		Name:      "Bodega de prueba",
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, postgres.NewWarehouseRepository(testPool).Create(context.Background(), w))
	return w
}

func newLedger() *inventory.LedgerUseCase {
	return inventory.NewLedgerUseCase(
		postgres.NewTxRunner(testPool),
		postgres.NewAuditLogRepository(testPool),
		nil,
		logger.Nop(),
		time.Second,
	)
}

func receive(t *testing.T, uc *inventory.LedgerUseCase, productID, warehouseID string, n int64) string {
	t.Helper()
	res, err := uc.Receive(context.Background(), inventory.Actor{UserID: "u1"}, []inventory.ReceiveLine{{
		LotCode:     "L-" + uuid.New().String()[:8],
		ProductID:   productID,
		WarehouseID: warehouseID,
		ExpDate:     time.Now().AddDate(0, 6, 0),
		Quantity:    decimal.NewFromInt(n),
	}}, "compra")
	require.NoError(t, err)
	return res[0].LotID
}

func TestSequence_ConcurrenteSinDuplicados(t *testing.T) {
	runner := postgres.NewTxRunner(testPool)
	key := "RCV:" + uuid.New().String()[:6]
	const n = 40

	var wg sync.WaitGroup
	var mu sync.Mutex
	seen := map[int64]int{}
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := runner.Run(context.Background(), func(r inventory.Repos) error {
				v, err := r.Sequences.Next(context.Background(), key)
				if err != nil {
					return err
				}
				mu.Lock()
				seen[v]++
				mu.Unlock()
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	require.Len(t, seen, n)
	for v, count := range seen {
		assert.Equal(t, 1, count, "consecutivo %d repetido", v)
		assert.True(t, v >= 1 && v <= n)
	}
}

func TestSequence_RollbackDejaHueco(t *testing.T) {
	runner := postgres.NewTxRunner(testPool)
	ctx := context.Background()
	key := "ISS:" + uuid.New().String()[:6]
	boom := errors.New("boom")

	err := runner.Run(ctx, func(r inventory.Repos) error {
		_, err := r.Sequences.Next(ctx, key)
		require.NoError(t, err)
		return boom
	})
	require.ErrorIs(t, err, boom)

	var v int64
	require.NoError(t, runner.Run(ctx, func(r inventory.Repos) error {
		var err error
		v, err = r.Sequences.Next(ctx, key)
		return err
	}))
	assert.Equal(t, int64(1), v, "el incremento revertido no se consume")
}

func TestIssue_ConcurrentesConBloqueoDeFilas(t *testing.T) {
	uc := newLedger()
	wh := newWarehouse(t)
	product := uuid.New().String()
	lotID := receive(t, uc, product, wh.ID, 10)

	const workers = 8
	var wg sync.WaitGroup
	var mu sync.Mutex
	ok := 0
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.Issue(context.Background(), inventory.Actor{UserID: "u1"}, inventory.IssueInput{
				Type: entity.IssueTypeSale, ProductID: product, WarehouseID: wh.ID, Quantity: decimal.NewFromInt(3),
			})
			if err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, domain.ErrInsufficientStock)
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, ok)
	lot, err := uc.GetLot(context.Background(), lotID)
	require.NoError(t, err)
	assert.True(t, lot.QtyOnHand.Equal(decimal.NewFromInt(1)), "saldo final %s", lot.QtyOnHand)
	for _, h := range lot.History {
		assert.True(t, h.QuantityAdjusted.Equal(h.AfterQty.Sub(h.BeforeQty)))
	}
}

func TestReceive_LoteRevertidoSiFallaUnaLinea(t *testing.T) {
	uc := newLedger()
	wh := newWarehouse(t)
	product := uuid.New().String()

	_, err := uc.Receive(context.Background(), inventory.Actor{UserID: "u1"}, []inventory.ReceiveLine{
		{LotCode: "A", ProductID: product, WarehouseID: wh.ID, ExpDate: time.Now().AddDate(1, 0, 0), Quantity: decimal.NewFromInt(5)},
		{LotCode: "B", ProductID: product, WarehouseID: uuid.New().String(), ExpDate: time.Now().AddDate(1, 0, 0), Quantity: decimal.NewFromInt(5)},
	}, "")
	require.ErrorIs(t, err, domain.ErrWarehouseNotFound)

	total, err := uc.Availability(context.Background(), product, wh.ID)
	require.NoError(t, err)
	assert.True(t, total.IsZero())
}

func TestTransfer_RechazoEliminaPlaceholder(t *testing.T) {
	uc := newLedger()
	src := newWarehouse(t)
	dst := newWarehouse(t)
	product := uuid.New().String()
	lotID := receive(t, uc, product, src.ID, 25)
	ctx := context.Background()

	tr, err := uc.InitiateTransfer(ctx, inventory.Actor{UserID: "u1", WarehouseID: src.ID}, inventory.TransferInput{
		SourceWarehouseID:      src.ID,
		DestinationWarehouseID: dst.ID,
		Lines:                  []inventory.TransferLineInput{{LotID: lotID, Quantity: decimal.NewFromInt(10)}},
	})
	require.NoError(t, err)

	loaded, err := uc.GetTransfer(ctx, tr.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Lines, 1)

	destActor := inventory.Actor{UserID: "u2", WarehouseID: dst.ID, Role: jwt.RoleBodeguero}
	_, err = uc.RejectTransfer(ctx, destActor, tr.ID, "no solicitado")
	require.NoError(t, err)

	source, err := uc.GetLot(ctx, lotID)
	require.NoError(t, err)
	assert.True(t, source.QtyOnHand.Equal(decimal.NewFromInt(25)))

	_, err = uc.GetLot(ctx, tr.Lines[0].DestinationLotID)
	assert.ErrorIs(t, err, domain.ErrLotNotFound)

	_, err = uc.ConfirmTransfer(ctx, destActor, tr.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransferState)
}

func TestTransfer_ConfirmarSumaEnDestino(t *testing.T) {
	uc := newLedger()
	src := newWarehouse(t)
	dst := newWarehouse(t)
	product := uuid.New().String()
	lotID := receive(t, uc, product, src.ID, 12)
	ctx := context.Background()

	tr, err := uc.InitiateTransfer(ctx, inventory.Actor{UserID: "u1"}, inventory.TransferInput{
		SourceWarehouseID:      src.ID,
		DestinationWarehouseID: dst.ID,
		Lines:                  []inventory.TransferLineInput{{LotID: lotID, Quantity: decimal.NewFromInt(12)}},
	})
	require.NoError(t, err)

	pending, err := uc.ListPendingTransfers(ctx, dst.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Len(t, pending[0].Lines, 1)

	_, err = uc.ConfirmTransfer(ctx, inventory.Actor{UserID: "u2", WarehouseID: dst.ID}, tr.ID)
	require.NoError(t, err)

	avail, err := uc.Availability(ctx, product, dst.ID)
	require.NoError(t, err)
	assert.True(t, avail.Equal(decimal.NewFromInt(12)))
	avail, err = uc.Availability(ctx, product, src.ID)
	require.NoError(t, err)
	assert.True(t, avail.IsZero())
}

func TestTxRunner_DeadlockSeReportaComoConflicto(t *testing.T) {
	uc := newLedger()
	wh := newWarehouse(t)
	product := uuid.New().String()
	lotA := receive(t, uc, product, wh.ID, 5)
	lotB := receive(t, uc, product, wh.ID, 5)
	runner := postgres.NewTxRunner(testPool)
	ctx := context.Background()

	var both sync.WaitGroup
	both.Add(2)
	lockInOrder := func(first, second string) error {
		return runner.Run(ctx, func(r inventory.Repos) error {
			if _, err := r.Lots.GetForUpdate(ctx, first); err != nil {
				return err
			}
			both.Done()
			both.Wait()
			_, err := r.Lots.GetForUpdate(ctx, second)
			return err
		})
	}

	errs := make(chan error, 2)
	go func() { errs <- lockInOrder(lotA, lotB) }()
	go func() { errs <- lockInOrder(lotB, lotA) }()

	var conflicts, ok int
	for i := 0; i < 2; i++ {
		err := <-errs
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrConflict)
		conflicts++
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, conflicts)
}
