package app

import (
	"context"
	"net/http"
	"time"

	"github.com/iwtcode/dmcAdapter/internal/adapters/handlers"
	"github.com/iwtcode/dmcAdapter/internal/config"
	"github.com/iwtcode/dmcAdapter/internal/devicelink"
	"github.com/iwtcode/dmcAdapter/internal/interfaces"
	"github.com/iwtcode/dmcAdapter/internal/middleware/logging"
	"github.com/iwtcode/dmcAdapter/internal/services/dmc_service"
	"github.com/iwtcode/dmcAdapter/internal/services/kafka"

	"go.uber.org/fx"
)

// New создает новый экземпляр fx.App
func New() *fx.App {
	return fx.New(
		ConfigModule,
		LoggingModule,
		ProducerModule,
		ServiceModule,
		HttpServerModule,
		fx.Invoke(InvokeAutoConnect),
	)
}

// --- Модули FX ---

var ConfigModule = fx.Module("config_module",
	fx.Provide(config.LoadConfiguration),
)

func ProvideLogger(cfg *config.AppConfig) *logging.Logger {
	return logging.NewLogger(cfg.Logging.Level, "DmcAdapter")
}

var LoggingModule = fx.Module("logging_module",
	fx.Provide(ProvideLogger),
)

var ProducerModule = fx.Module("producer_module",
	fx.Provide(kafka.NewKafkaProducer),
)

func ProvideDmcService(lc fx.Lifecycle, cfg *config.AppConfig, logger *logging.Logger, producer interfaces.KafkaService) interfaces.DmcService {
	service := dmc_service.NewDmcService(cfg, logger, producer, devicelink.NewTCPLink)

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			logger.Info("Stopping DMC service...")
			service.Shutdown(true)
			if producer != nil {
				return producer.Close()
			}
			return nil
		},
	})
	return service
}

var ServiceModule = fx.Module("service_module",
	fx.Provide(ProvideDmcService),
)

var HttpServerModule = fx.Module("http_server_module",
	fx.Provide(
		handlers.NewHandler,
		handlers.ProvideRouter,
	),
	fx.Invoke(InvokeHttpServer),
)

// InvokeAutoConnect подключается к контроллеру из конфигурации и запускает
// периодический опрос. Недоступный контроллер не мешает старту приложения.
func InvokeAutoConnect(lc fx.Lifecycle, cfg *config.AppConfig, service interfaces.DmcService, logger *logging.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if cfg.Device.Address == "" {
					logger.Info("No device address configured, waiting for connect request")
					return
				}
				if err := service.Connect(cfg.Device.Address); err != nil {
					logger.Warn("Initial connect failed, use the API to retry", "error", err)
				}
				if err := service.StartPolling(cfg.Device.PollInterval); err != nil {
					logger.Warn("Failed to start polling", "error", err)
				}
			}()
			return nil
		},
	})
}

// InvokeHttpServer запускает HTTP-сервер.
func InvokeHttpServer(lc fx.Lifecycle, cfg *config.AppConfig, h http.Handler, logger *logging.Logger) {
	serverAddr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      h,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info("HTTP Server is starting", "address", serverAddr)
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("Failed to start server", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Stopping HTTP server...")
			return server.Shutdown(ctx)
		},
	})
}
