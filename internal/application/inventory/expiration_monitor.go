package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/reflex/inventario-api/internal/domain/entity"
	"github.com/reflex/inventario-api/internal/domain/inventory"
	"github.com/reflex/inventario-api/pkg/logger"
)

const (
	alertDateLayout = "2006-01-02"
	testAlertText   = "🧪 Alerta de prueba desde el backend"
)

// MonitorConfig parámetros del barrido de vencimientos.
type MonitorConfig struct {
	HorizonDays int            // días hacia adelante considerados "por vencer"; 0 = 7
	Location    *time.Location // zona horaria con la que se calcula "hoy"; nil = UTC
	RunOnStart  bool           // barrer una vez al arrancar Run, antes del primer tick
}

// SweepReport resultado de un barrido.
type SweepReport struct {
	Today        time.Time
	Expired      int
	ExpiringSoon int
	Dropped      int
	Interrupted  bool
}

// ExpirationMonitor clasifica lotes vencidos y por vencer y emite una alerta por lote.
// Solo lee del almacén; la entrega de alertas nunca bloquea ni interrumpe el barrido.
type ExpirationMonitor struct {
	reader   ExpirationReader
	notifier Notifier
	cfg      MonitorConfig
	log      *logger.Logger
	tracer   trace.Tracer
	now      func() time.Time
}

// NewExpirationMonitor construye el monitor.
func NewExpirationMonitor(reader ExpirationReader, notifier Notifier, cfg MonitorConfig, log *logger.Logger) *ExpirationMonitor {
	if cfg.HorizonDays <= 0 {
		cfg.HorizonDays = inventory.DefaultHorizonDays
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if log == nil {
		log = logger.Nop()
	}
	return &ExpirationMonitor{
		reader:   reader,
		notifier: notifier,
		cfg:      cfg,
		log:      log,
		tracer:   otel.Tracer("github.com/reflex/inventario-api/internal/application/inventory"),
		now:      time.Now,
	}
}

// Sweep ejecuta un barrido. Vencidos: vencimiento <= hoy. Por vencer: hoy+1 .. hoy+horizonte.
// Si ctx se cancela a mitad de barrido devuelve el reporte parcial con Interrupted y ctx.Err().
func (m *ExpirationMonitor) Sweep(ctx context.Context) (SweepReport, error) {
	ctx, span := m.tracer.Start(ctx, "inventory.Sweep")
	defer span.End()

	window := inventory.NewExpirationWindow(m.now(), m.cfg.Location, m.cfg.HorizonDays)
	report := SweepReport{Today: window.Today}

	expired, err := m.reader.FindExpiredAsOf(ctx, window.Today)
	if err != nil {
		return m.fail(span, report, fmt.Errorf("consultar lotes vencidos: %w", err))
	}
	for _, b := range expired {
		if ctx.Err() != nil {
			report.Interrupted = true
			return m.fail(span, report, ctx.Err())
		}
		m.emit(&report, entity.AlertKindExpired, b)
	}

	soon, err := m.reader.FindExpiringBetween(ctx, window.SoonStart, window.Horizon)
	if err != nil {
		return m.fail(span, report, fmt.Errorf("consultar lotes por vencer: %w", err))
	}
	for _, b := range soon {
		if ctx.Err() != nil {
			report.Interrupted = true
			return m.fail(span, report, ctx.Err())
		}
		m.emit(&report, entity.AlertKindExpiringSoon, b)
	}

	span.SetAttributes(
		attribute.Int("sweep.expired", report.Expired),
		attribute.Int("sweep.expiring_soon", report.ExpiringSoon),
		attribute.Int("sweep.dropped", report.Dropped),
	)
	m.log.Info().
		Str("today", window.Today.Format(alertDateLayout)).
		Int("expired", report.Expired).
		Int("expiring_soon", report.ExpiringSoon).
		Int("dropped", report.Dropped).
		Msg("barrido de vencimientos completado")
	return report, nil
}

// SendTestAlert emite la alerta fija de prueba.
func (m *ExpirationMonitor) SendTestAlert() bool {
	return m.notifier.Notify(entity.ExpirationAlert{
		ID:        uuid.New().String(),
		Kind:      entity.AlertKindTest,
		Message:   testAlertText,
		EmittedAt: m.now(),
	})
}

// Run barre en cada tick de ticks hasta que ctx termine. Los errores de un barrido
// se registran y no detienen el ciclo.
func (m *ExpirationMonitor) Run(ctx context.Context, ticks TickSource) error {
	defer ticks.Stop()
	if m.cfg.RunOnStart {
		m.sweepAndLog(ctx)
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticks.C():
			m.sweepAndLog(ctx)
		}
	}
}

func (m *ExpirationMonitor) sweepAndLog(ctx context.Context) {
	if _, err := m.Sweep(ctx); err != nil && ctx.Err() == nil {
		m.log.Error().Err(err).Msg("barrido de vencimientos falló")
	}
}

func (m *ExpirationMonitor) emit(report *SweepReport, kind entity.AlertKind, b *entity.Batch) {
	alert := newAlert(kind, b, m.now())
	if kind == entity.AlertKindExpired {
		report.Expired++
	} else {
		report.ExpiringSoon++
	}
	if !m.notifier.Notify(alert) {
		report.Dropped++
		m.log.Warn().
			Int64("batch_id", b.ID).
			Str("kind", string(kind)).
			Msg("alerta descartada")
	}
}

func (m *ExpirationMonitor) fail(span trace.Span, report SweepReport, err error) (SweepReport, error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return report, err
}

func newAlert(kind entity.AlertKind, b *entity.Batch, now time.Time) entity.ExpirationAlert {
	date := b.ExpirationDate.Format(alertDateLayout)
	var msg string
	if kind == entity.AlertKindExpired {
		msg = fmt.Sprintf("⚠ Producto vencido: %s (Fecha: %s)", b.ProductName, date)
	} else {
		msg = fmt.Sprintf("🔔 Producto por vencer pronto: %s (Vence: %s)", b.ProductName, date)
	}
	return entity.ExpirationAlert{
		ID:             uuid.New().String(),
		Kind:           kind,
		ProductCode:    b.ProductCode,
		ProductName:    b.ProductName,
		BatchID:        b.ID,
		BatchNumber:    b.BatchNumber,
		ExpirationDate: date,
		Message:        msg,
		EmittedAt:      now,
	}
}
