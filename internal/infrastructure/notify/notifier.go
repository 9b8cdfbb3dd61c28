package notify

import (
	"context"
	"errors"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

var (
	_ inventory.Notifier = (*LogNotifier)(nil)
	_ inventory.Notifier = Multi(nil)
)

// LogNotifier escribe cada notificación en el log estructurado.
type LogNotifier struct {
	log *logger.Logger
}

// NewLogNotifier crea el notificador por log. Siempre está activo.
func NewLogNotifier(log *logger.Logger) *LogNotifier {
	if log == nil {
		log = logger.Nop()
	}
	return &LogNotifier{log: log.Named("notify")}
}

// Notify nunca falla.
func (n *LogNotifier) Notify(_ context.Context, ev entity.Notification) error {
	n.log.Info().
		Str("event", ev.Event).
		Str("warehouse_id", ev.WarehouseID).
		Str("reference", ev.Reference).
		Str("user_id", ev.UserID).
		Time("at", ev.At).
		Msg(ev.Title + ": " + ev.Message)
	return nil
}

// Multi reparte la notificación a todos los destinos. Un destino con error no detiene a los demás.
type Multi []inventory.Notifier

// Notify entrega a cada destino y agrega los errores.
func (m Multi) Notify(ctx context.Context, ev entity.Notification) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
