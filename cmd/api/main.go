package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/Custodia-api/internal/application/importer"
	"github.com/jhoicas/Custodia-api/internal/application/ledger"
	"github.com/jhoicas/Custodia-api/internal/application/transfer"
	"github.com/jhoicas/Custodia-api/internal/domain/location"
	"github.com/jhoicas/Custodia-api/internal/infrastructure/redisstream"
	"github.com/jhoicas/Custodia-api/internal/infrastructure/storage"
	"github.com/jhoicas/Custodia-api/internal/infrastructure/xlsx"
	httpRouter "github.com/jhoicas/Custodia-api/internal/interfaces/http"
	"github.com/jhoicas/Custodia-api/pkg/config"
	"github.com/jhoicas/Custodia-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.Log.Level,
		App:   cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("db_driver", cfg.DB.Driver).
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET es obligatorio")
	}

	ctx := context.Background()
	store, err := storage.Open(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a la base de datos")
	}
	defer store.Close()

	locations, err := location.New(location.Config{
		Warehouse: cfg.Locations.Warehouse,
		Workshop:  cfg.Locations.Workshop,
		Branches:  cfg.Locations.Branches,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("catálogo de ubicaciones")
	}

	opts := []ledger.Option{
		ledger.WithLogger(log.Component("ledger")),
		ledger.WithTimeout(cfg.OperationTimeout),
	}
	// Stream de eventos para tableros y reportes; sin REDIS_ADDR no se publica.
	if cfg.Redis.Enabled() {
		client, err := redisstream.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer func() { _ = client.Close() }()
		opts = append(opts, ledger.WithPublisher(redisstream.NewPublisher(client, cfg.Redis.Stream, cfg.Redis.MaxLen)))
		log.Info().Str("stream", cfg.Redis.Stream).Msg("publicación de eventos activa")
	}

	ledgerSvc := ledger.NewService(store.TxRunner, store.Units, store.Events, store.Transfers, locations, opts...)
	transferSvc := transfer.NewService(store.TxRunner, store.Transfers, ledgerSvc, log.Component("transfer"))
	importSvc := importer.NewService(store.Units, ledgerSvc, cfg.Import.MaxRows, log.Component("importer"))

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
		BodyLimit:    16 * 1024 * 1024,
		ErrorHandler: httpRouter.ErrorHandler,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log.Component("http")))

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(cfg.HTTP.SwaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: cfg.HTTP.SwaggerFile,
			Path:     "docs",
			Title:    "Custodia API",
		}))
	} else {
		log.Warn().Str("file", cfg.HTTP.SwaggerFile).Msg("swagger no disponible")
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		Ledger:      ledgerSvc,
		Transfers:   transferSvc,
		Importer:    importSvc,
		SheetReader: xlsx.Read,
		JWTSecret:   cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
