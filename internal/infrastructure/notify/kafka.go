package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/pkg/config"
)

const defaultKafkaTopic = "stock-ledger.events"

// messageWriter subconjunto de *kafka.Writer.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaNotifier emite cada notificación como evento, con la bodega como clave
// para conservar el orden por bodega dentro de una partición.
type KafkaNotifier struct {
	w messageWriter
}

// NewKafkaNotifier crea el productor. No abre conexión hasta el primer envío.
func NewKafkaNotifier(cfg config.KafkaConfig) *KafkaNotifier {
	topic := cfg.Topic
	if topic == "" {
		topic = defaultKafkaTopic
	}
	return &KafkaNotifier{w: &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}}
}

// Notify escribe un mensaje; el ctx acota la espera del broker.
func (n *KafkaNotifier) Notify(ctx context.Context, ev entity.Notification) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(ev.WarehouseID),
		Value: data,
		Time:  ev.At,
		Headers: []kafka.Header{
			{Key: "event", Value: []byte(ev.Event)},
		},
	}
	if err := n.w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka write %s: %w", ev.Event, err)
	}
	return nil
}

// Close vacía y cierra el productor.
func (n *KafkaNotifier) Close() error {
	return n.w.Close()
}
