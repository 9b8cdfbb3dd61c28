package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/pkg/config"
)

const defaultRedisChannel = "stock-ledger:notifications"

// publisher subconjunto de *redis.Client que usa el notificador.
type publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// RedisNotifier publica las notificaciones como JSON en un canal pub/sub.
type RedisNotifier struct {
	client  publisher
	closer  func() error
	channel string
}

// NewRedisNotifier conecta con Redis y verifica la conexión con PING.
func NewRedisNotifier(ctx context.Context, cfg config.RedisConfig) (*RedisNotifier, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	n := newRedisNotifier(client, cfg.Channel)
	n.closer = client.Close
	return n, nil
}

func newRedisNotifier(client publisher, channel string) *RedisNotifier {
	if channel == "" {
		channel = defaultRedisChannel
	}
	return &RedisNotifier{client: client, channel: channel}
}

// Notify serializa y publica en el canal configurado.
func (n *RedisNotifier) Notify(ctx context.Context, ev entity.Notification) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	if err := n.client.Publish(ctx, n.channel, data).Err(); err != nil {
		return fmt.Errorf("redis publish %s: %w", ev.Event, err)
	}
	return nil
}

// Close libera el cliente si lo creó este notificador.
func (n *RedisNotifier) Close() error {
	if n.closer == nil {
		return nil
	}
	return n.closer()
}
