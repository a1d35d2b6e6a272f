// Package notify entrega alertas de vencimiento a los canales configurados (Redis, Kafka, log).
package notify

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/reflex/inventario-api/internal/domain/entity"
	"github.com/reflex/inventario-api/pkg/logger"
)

const (
	defaultBuffer         = 256
	defaultPublishTimeout = 5 * time.Second
)

// Publisher canal de salida de alertas.
type Publisher interface {
	Name() string
	Publish(ctx context.Context, alert entity.ExpirationAlert) error
}

// Dispatcher cola acotada + worker que reparte cada alerta a todos los publishers.
// Notify nunca bloquea: con la cola llena la alerta se descarta y se cuenta.
type Dispatcher struct {
	queue      chan entity.ExpirationAlert
	publishers []Publisher
	timeout    time.Duration
	log        *logger.Logger

	mu      sync.Mutex
	closed  bool
	done    chan struct{}
	dropped atomic.Int64
	failed  atomic.Int64
}

// NewDispatcher arranca el worker. buffer <= 0 usa el tamaño por defecto.
func NewDispatcher(buffer int, timeout time.Duration, log *logger.Logger, publishers ...Publisher) *Dispatcher {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	if timeout <= 0 {
		timeout = defaultPublishTimeout
	}
	if log == nil {
		log = logger.Nop()
	}
	d := &Dispatcher{
		queue:      make(chan entity.ExpirationAlert, buffer),
		publishers: publishers,
		timeout:    timeout,
		log:        log,
		done:       make(chan struct{}),
	}
	go d.loop()
	return d
}

// Notify encola la alerta. false si se descartó.
func (d *Dispatcher) Notify(alert entity.ExpirationAlert) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		d.dropped.Add(1)
		return false
	}
	select {
	case d.queue <- alert:
		return true
	default:
		d.dropped.Add(1)
		return false
	}
}

// Dropped alertas descartadas desde el arranque.
func (d *Dispatcher) Dropped() int64 { return d.dropped.Load() }

// Failed entregas fallidas (por publisher) desde el arranque.
func (d *Dispatcher) Failed() int64 { return d.failed.Load() }

// Close deja de aceptar alertas y espera a que se entreguen las encoladas o a que ctx termine.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) loop() {
	defer close(d.done)
	for alert := range d.queue {
		for _, p := range d.publishers {
			d.publish(p, alert)
		}
	}
}

func (d *Dispatcher) publish(p Publisher, alert entity.ExpirationAlert) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()
	if err := p.Publish(ctx, alert); err != nil {
		d.failed.Add(1)
		d.log.Warn().
			Err(err).
			Str("publisher", p.Name()).
			Str("alert_id", alert.ID).
			Msg("no se pudo entregar la alerta")
	}
}
