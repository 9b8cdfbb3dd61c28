package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// ExpireLots marca como expired los lotes activos vencidos. No mueve cantidades.
func (uc *LedgerUseCase) ExpireLots(ctx context.Context) (int, error) {
	now := uc.clock()
	var n int
	err := uc.txRunner.Run(ctx, func(r Repos) error {
		var err error
		n, err = r.Lots.MarkExpired(ctx, now)
		return err
	})
	if err != nil {
		return 0, err
	}
	if n > 0 {
		uc.log.Info().Int("lots", n).Msg("lotes vencidos marcados")
		uc.publish(ctx, Actor{UserID: "system"}, entity.Notification{
			Event:   entity.EventLotsExpired,
			Title:   "Lotes vencidos",
			Message: fmt.Sprintf("%d lote(s) pasaron a vencidos", n),
		})
	}
	return n, nil
}

// RunExpirySweeper ejecuta ExpireLots cada interval hasta que ctx se cancele.
func (uc *LedgerUseCase) RunExpirySweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := uc.ExpireLots(ctx); err != nil {
				uc.log.Error().Err(err).Msg("barrido de vencidos falló")
			}
		}
	}
}
