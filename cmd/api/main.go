package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/reflex/inventario-api/internal/application/inventory"
	"github.com/reflex/inventario-api/internal/application/orders"
	"github.com/reflex/inventario-api/internal/domain/repository"
	"github.com/reflex/inventario-api/internal/infrastructure/memory"
	"github.com/reflex/inventario-api/internal/infrastructure/notify"
	"github.com/reflex/inventario-api/internal/infrastructure/postgres"
	httpRouter "github.com/reflex/inventario-api/internal/interfaces/http"
	"github.com/reflex/inventario-api/internal/platform/observability"
	"github.com/reflex/inventario-api/pkg/config"
	"github.com/reflex/inventario-api/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

// stores repositorios y runner transaccional del driver elegido.
type stores struct {
	orders   repository.OrderRepository
	batches  repository.BatchRepository
	products repository.ProductRepository
	reader   inventory.ExpirationReader
	tx       orders.TxRunner
	close    func()
}

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
		Str("store", cfg.Store.Driver).
		Str("alerts_mode", cfg.Alerts.Mode).
		Msg("iniciando aplicación")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	_, shutdownTracing, err := observability.SetupTracingSDK(ctx, tracingConfig(cfg))
	if err != nil {
		log.Fatal().Err(err).Msg("configurar trazas OTLP")
	}

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar almacén")
	}
	defer st.close()

	dispatcher, closePublishers := newDispatcher(cfg, log)

	loc, _ := cfg.Alerts.Location() // validado en config.Load
	monitor := inventory.NewExpirationMonitor(st.reader, dispatcher, inventory.MonitorConfig{
		HorizonDays: cfg.Alerts.HorizonDays,
		Location:    loc,
		RunOnStart:  cfg.Alerts.RunOnStart,
	}, log)
	trigger := inventory.NewManualTrigger()
	ticks, err := tickSource(cfg.Alerts, loc, trigger)
	if err != nil {
		log.Fatal().Err(err).Msg("programar monitor de vencimientos")
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: httpRouter.ErrorHandler,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Inventario API",
		}))
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		OrderUC:        orders.NewOrderUseCase(st.orders, st.products),
		ApprovalEngine: orders.NewApprovalEngine(st.tx, log),
		BatchUC:        inventory.NewBatchUseCase(st.batches, st.products),
		Monitor:        monitor,
		SweepTrigger:   trigger,
		JWTSecret:      cfg.JWT.Secret,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			return fmt.Errorf("servidor HTTP: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return monitor.Run(gctx, ticks)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("señal de apagado recibida, cerrando servidor...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		return app.ShutdownWithContext(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("aplicación finalizada con error")
	}

	// Vaciar alertas pendientes y trazas antes de salir
	drainCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := dispatcher.Close(drainCtx); err != nil {
		log.Warn().Err(err).Msg("cola de alertas no vaciada")
	}
	closePublishers()
	if err := shutdownTracing(drainCtx); err != nil {
		log.Warn().Err(err).Msg("cerrar exportador de trazas")
	}
	log.Info().
		Int64("alerts_dropped", dispatcher.Dropped()).
		Int64("alerts_failed", dispatcher.Failed()).
		Msg("aplicación detenida")
}

func openStores(ctx context.Context, cfg *config.Config, log *logger.Logger) (*stores, error) {
	if cfg.Store.Driver == config.StoreDriverMemory {
		store := memory.NewStore()
		store.SeedDemo(time.Now())
		log.Warn().Msg("almacén en memoria con datos demo: los cambios se pierden al reiniciar")
		return &stores{
			orders:   store.Orders(),
			batches:  store.Batches(),
			products: store.Products(),
			reader:   store.Batches(),
			tx:       store,
			close:    func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
	}
	if cfg.DB.AutoMigrate {
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		log.Info().Msg("migraciones aplicadas")
	}
	batches := postgres.NewBatchRepository(pool)
	return &stores{
		orders:   postgres.NewOrderRepository(pool),
		batches:  batches,
		products: postgres.NewProductRepository(pool),
		reader:   batches,
		tx:       postgres.NewTxRunner(pool),
		close:    pool.Close,
	}, nil
}

// newDispatcher registra el log siempre y Redis/Kafka si están configurados.
func newDispatcher(cfg *config.Config, log *logger.Logger) (*notify.Dispatcher, func()) {
	publishers := []notify.Publisher{notify.NewLogPublisher(log)}
	var closers []func() error

	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		publishers = append(publishers, notify.NewRedisPublisher(client, cfg.Redis.Channel))
		closers = append(closers, client.Close)
	}
	if len(cfg.Kafka.Brokers) > 0 {
		kp := notify.NewKafkaPublisher(notify.NewKafkaWriter(cfg.Kafka.Brokers, cfg.Kafka.Topic))
		publishers = append(publishers, kp)
		closers = append(closers, kp.Close)
	}

	d := notify.NewDispatcher(cfg.Alerts.Buffer, cfg.Alerts.PublishTimeout, log, publishers...)
	return d, func() {
		for _, c := range closers {
			if err := c(); err != nil {
				log.Warn().Err(err).Msg("cerrar publicador de alertas")
			}
		}
	}
}

// tickSource combina la programación configurada con el disparador manual de /api/alerts/sweep.
func tickSource(cfg config.AlertsConfig, loc *time.Location, trigger *inventory.ManualTrigger) (inventory.TickSource, error) {
	switch cfg.Mode {
	case config.AlertsModeDaily:
		hour, minute, err := inventory.ParseClock(cfg.DailyAt)
		if err != nil {
			return nil, err
		}
		return inventory.MergeTicks(inventory.NewDailyTicker(hour, minute, loc), trigger), nil
	case config.AlertsModeManual:
		return trigger, nil
	default:
		return inventory.MergeTicks(inventory.NewIntervalTicker(cfg.Interval), trigger), nil
	}
}

func tracingConfig(cfg *config.Config) observability.TracingConfig {
	tc := observability.TracingConfig{
		ServiceName:    cfg.App.Name,
		ServiceVersion: cfg.App.Version,
		Endpoint:       cfg.Otel.Endpoint,
		URLPath:        cfg.Otel.URLPath,
		Insecure:       cfg.Otel.Insecure,
		SampleRatio:    cfg.Otel.SampleRatio,
	}
	if cfg.Otel.AuthHeader != "" {
		tc.Headers = map[string]string{"Authorization": cfg.Otel.AuthHeader}
	}
	return tc
}
