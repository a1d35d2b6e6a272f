package notify_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reflex/inventario-api/internal/domain/entity"
	"github.com/reflex/inventario-api/internal/infrastructure/notify"
	"github.com/reflex/inventario-api/pkg/logger"
)

type capturePublisher struct {
	mu      sync.Mutex
	got     []entity.ExpirationAlert
	err     error
	release chan struct{} // si no es nil, Publish espera a que se cierre
}

func (p *capturePublisher) Name() string { return "capture" }

func (p *capturePublisher) Publish(ctx context.Context, alert entity.ExpirationAlert) error {
	if p.release != nil {
		<-p.release
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.got = append(p.got, alert)
	return p.err
}

func (p *capturePublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.got)
}

func alert(id string) entity.ExpirationAlert {
	return entity.ExpirationAlert{ID: id, Kind: entity.AlertKindExpired, ProductCode: 3, Message: "⚠ Producto vencido: Leche (Fecha: 2024-06-01)"}
}

func TestDispatcher_EntregaATodosLosPublishers(t *testing.T) {
	ok := &capturePublisher{}
	failing := &capturePublisher{err: errors.New("sin conexión")}
	d := notify.NewDispatcher(8, time.Second, logger.Nop(), failing, ok)

	assert.True(t, d.Notify(alert("a")))
	assert.True(t, d.Notify(alert("b")))
	require.NoError(t, d.Close(context.Background()))

	assert.Equal(t, 2, ok.count(), "un publisher que falla no impide la entrega a los demás")
	assert.Equal(t, 2, failing.count())
	assert.Equal(t, int64(2), d.Failed())
	assert.Zero(t, d.Dropped())
}

func TestDispatcher_ColaLlenaDescartaSinBloquear(t *testing.T) {
	slow := &capturePublisher{release: make(chan struct{})}
	d := notify.NewDispatcher(1, time.Second, logger.Nop(), slow)

	accepted := 0
	for i := 0; i < 10; i++ {
		if d.Notify(alert("x")) {
			accepted++
		}
	}
	assert.LessOrEqual(t, accepted, 2, "worker ocupado + una en cola")
	assert.Equal(t, int64(10-accepted), d.Dropped())

	close(slow.release)
	require.NoError(t, d.Close(context.Background()))
	assert.False(t, d.Notify(alert("tarde")), "cerrado no acepta alertas")
}

type fakeWriter struct {
	msgs []kafka.Message
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func TestKafkaPublisher_ClavePorProducto(t *testing.T) {
	w := &fakeWriter{}
	p := notify.NewKafkaPublisher(w)

	require.NoError(t, p.Publish(context.Background(), alert("k1")))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "3", string(w.msgs[0].Key))

	var decoded entity.ExpirationAlert
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &decoded))
	assert.Equal(t, "k1", decoded.ID)
	assert.Equal(t, entity.AlertKindExpired, decoded.Kind)
}

func TestRedisPublisher_PublicaEnCanal(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}

	sub := client.Subscribe(ctx, "alertas-test")
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	p := notify.NewRedisPublisher(client, "alertas-test")
	require.NoError(t, p.Publish(ctx, alert("r1")))

	select {
	case msg := <-sub.Channel():
		var decoded entity.ExpirationAlert
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &decoded))
		assert.Equal(t, "r1", decoded.ID)
	case <-time.After(2 * time.Second):
		t.Fatal("no llegó el mensaje")
	}
}
