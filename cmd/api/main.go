package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/timeout"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/application/usecase"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/notify"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/stock-ledger/internal/interfaces/http"
	"github.com/jhoicas/stock-ledger/pkg/config"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.DB.Driver).
		Msg("iniciando aplicación")

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	var (
		txRunner      inventory.TxRunner
		auditRepo     repository.AuditLogRepository
		warehouseRepo repository.WarehouseRepository
	)
	switch cfg.DB.Driver {
	case config.StoreDriverMemory:
		store := memory.New()
		txRunner = store
		auditRepo = store.AuditLogs()
		warehouseRepo = store.Warehouses()
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
	default:
		if cfg.DB.Migrate {
			if err := postgres.Migrate(cfg.DB.ConnectionString(), log); err != nil {
				log.Fatal().Err(err).Msg("migraciones")
			}
		}
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		txRunner = postgres.NewTxRunner(pool)
		auditRepo = postgres.NewAuditLogRepository(pool)
		warehouseRepo = postgres.NewWarehouseRepository(pool)
	}

	// Notificaciones: log siempre; Redis y Kafka solo si están configurados.
	sinks := notify.Multi{notify.NewLogNotifier(log)}
	if cfg.Redis.Enabled() {
		rn, err := notify.NewRedisNotifier(ctx, cfg.Redis)
		if err != nil {
			log.Error().Err(err).Str("addr", cfg.Redis.Addr).Msg("Redis no disponible, se omiten notificaciones pub/sub")
		} else {
			defer rn.Close()
			sinks = append(sinks, rn)
		}
	}
	if cfg.Kafka.Enabled() {
		kn := notify.NewKafkaNotifier(cfg.Kafka)
		defer kn.Close()
		sinks = append(sinks, kn)
	}

	ledgerUC := inventory.NewLedgerUseCase(txRunner, auditRepo, sinks, log, cfg.Ledger.SinkTimeout)
	warehouseUC := usecase.NewWarehouseUseCase(warehouseRepo)

	if cfg.Ledger.ExpirySweepInterval > 0 {
		go ledgerUC.RunExpirySweeper(ctx, cfg.Ledger.ExpirySweepInterval)
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: cfg.HTTP.RequestTimeout + 5*time.Second,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Cada request lleva su deadline; si vence, la transacción en curso se revierte.
	app.Use(timeout.NewWithContext(func(c *fiber.Ctx) error {
		return c.Next()
	}, cfg.HTTP.RequestTimeout))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		WarehouseUC: warehouseUC,
		Ledger:      ledgerUC,
		JWTSecret:   cfg.JWT.Secret,
		Logger:      log,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
