package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/pkg/config"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

var sample = entity.Notification{
	Event:       entity.EventStockReceived,
	Title:       "Recepción registrada",
	Message:     "RCV-L1-20250309-000001",
	WarehouseID: "wh-bog",
	Reference:   "RCV-L1-20250309-000001",
	UserID:      "u1",
	At:          time.Date(2025, 3, 9, 12, 0, 0, 0, time.UTC),
}

type fakePublisher struct {
	channel string
	payload []byte
	err     error
}

func (f *fakePublisher) Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd {
	f.channel = channel
	f.payload, _ = message.([]byte)
	cmd := redis.NewIntCmd(ctx)
	if f.err != nil {
		cmd.SetErr(f.err)
	} else {
		cmd.SetVal(1)
	}
	return cmd
}

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

type countingNotifier struct {
	calls int
	err   error
}

func (c *countingNotifier) Notify(context.Context, entity.Notification) error {
	c.calls++
	return c.err
}

func TestRedisNotifier_PublicaJSON(t *testing.T) {
	pub := &fakePublisher{}
	n := newRedisNotifier(pub, "")

	require.NoError(t, n.Notify(context.Background(), sample))
	assert.Equal(t, defaultRedisChannel, pub.channel)

	var got entity.Notification
	require.NoError(t, json.Unmarshal(pub.payload, &got))
	assert.Equal(t, sample.Event, got.Event)
	assert.Equal(t, sample.Reference, got.Reference)
	assert.True(t, sample.At.Equal(got.At))
	assert.NoError(t, n.Close())
}

func TestRedisNotifier_ErrorDePublish(t *testing.T) {
	n := newRedisNotifier(&fakePublisher{err: errors.New("connection refused")}, "canal")
	err := n.Notify(context.Background(), sample)
	require.Error(t, err)
	assert.Contains(t, err.Error(), entity.EventStockReceived)
}

func TestKafkaNotifier_ClavePorBodega(t *testing.T) {
	w := &fakeWriter{}
	n := &KafkaNotifier{w: w}

	require.NoError(t, n.Notify(context.Background(), sample))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, []byte("wh-bog"), w.msgs[0].Key)
	assert.Equal(t, "event", w.msgs[0].Headers[0].Key)
	assert.Equal(t, []byte(entity.EventStockReceived), w.msgs[0].Headers[0].Value)

	require.NoError(t, n.Close())
	assert.True(t, w.closed)
}

func TestNewKafkaNotifier_TopicPorDefecto(t *testing.T) {
	n := NewKafkaNotifier(config.KafkaConfig{Brokers: []string{"localhost:9092"}})
	w, ok := n.w.(*kafka.Writer)
	require.True(t, ok)
	assert.Equal(t, defaultKafkaTopic, w.Topic)
}

func TestMulti_ContinuaTrasError(t *testing.T) {
	failing := &countingNotifier{err: errors.New("caído")}
	ok := &countingNotifier{}
	m := Multi{NewLogNotifier(logger.Nop()), failing, nil, ok}

	err := m.Notify(context.Background(), sample)
	require.Error(t, err)
	assert.Equal(t, 1, failing.calls)
	assert.Equal(t, 1, ok.calls)
}

func TestMulti_Vacio(t *testing.T) {
	assert.NoError(t, Multi{}.Notify(context.Background(), sample))
}
