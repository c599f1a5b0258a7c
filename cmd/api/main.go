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
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/ulule/limiter/v3"
	limitermemory "github.com/ulule/limiter/v3/drivers/store/memory"
	limiterredis "github.com/ulule/limiter/v3/drivers/store/redis"

	appanalytics "github.com/jhoicas/gsa-backend/internal/application/analytics"
	"github.com/jhoicas/gsa-backend/internal/application/audit"
	"github.com/jhoicas/gsa-backend/internal/application/auth"
	"github.com/jhoicas/gsa-backend/internal/application/billing"
	"github.com/jhoicas/gsa-backend/internal/application/containers"
	"github.com/jhoicas/gsa-backend/internal/application/inventory"
	"github.com/jhoicas/gsa-backend/internal/application/ports"
	"github.com/jhoicas/gsa-backend/internal/application/purchasing"
	"github.com/jhoicas/gsa-backend/internal/application/usecase"
	"github.com/jhoicas/gsa-backend/internal/domain/repository"
	"github.com/jhoicas/gsa-backend/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/gsa-backend/internal/infrastructure/pdf"
	"github.com/jhoicas/gsa-backend/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/gsa-backend/internal/infrastructure/redis"
	"github.com/jhoicas/gsa-backend/internal/infrastructure/scheduler"
	"github.com/jhoicas/gsa-backend/internal/infrastructure/storage"
	httpRouter "github.com/jhoicas/gsa-backend/internal/interfaces/http"
	"github.com/jhoicas/gsa-backend/pkg/config"
	"github.com/jhoicas/gsa-backend/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	lg := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log := lg.Zerolog()
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("db_driver", cfg.DB.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()

	// Persistencia: PostgreSQL o memoria (desarrollo / demos).
	var (
		repos         repository.Repositories
		txRunner      repository.TxRunner
		analyticsRepo repository.AnalyticsRepository
	)
	switch cfg.DB.Driver {
	case "memory":
		store := memory.NewStore()
		repos = store.Repositories()
		txRunner = memory.NewTxRunner(store)
		analyticsRepo = memory.NewAnalyticsRepo(store)
		log.Warn().Msg("usando almacenamiento en memoria: los datos se pierden al reiniciar")
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		if err := postgres.Migrate(ctx, pool, cfg.DB.Migrations, lg.Component("migrate")); err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
		repos = postgres.Repositories(pool)
		txRunner = postgres.NewTxRunner(pool, cfg.DB.MaxRetries, lg.Component("tx"))
		analyticsRepo = postgres.NewAnalyticsRepository(pool)
	}

	// Redis opcional: locks de jobs y rate limiting compartidos entre réplicas.
	rdb, err := infraredis.NewClient(ctx, cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a Redis")
	}
	if rdb != nil {
		defer rdb.Close()
	}

	docStore, closeStore := openDocumentStore(ctx, cfg.Storage, log)
	defer closeStore()

	docs := billing.NewDocumentService(repos, infrapdf.NewMarotoRenderer(), docStore, lg.Component("documents"))
	invoiceUC := billing.NewInvoiceUseCase(txRunner, repos, docs, lg.Component("billing"))
	acceptanceUC := billing.NewAcceptanceUseCase(
		txRunner, repos, docs,
		cfg.Billing.AcceptanceTokenTTL, cfg.Billing.PublicBaseURL,
		lg.Component("acceptance"),
	)
	authUC := auth.NewAuthUseCase(repos.Users, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	var sched *scheduler.Scheduler
	if cfg.Reminders.Enabled {
		sched = scheduler.New(invoiceUC, jobLock(rdb), lg.Component("scheduler"))
		if err := sched.ScheduleReminders(cfg.Reminders.Cron); err != nil {
			log.Fatal().Err(err).Msg("scheduler")
		}
		sched.Start()
	}

	rate, err := limiter.NewRateFromFormatted(cfg.RateLimit.Public)
	if err != nil {
		log.Fatal().Err(err).Str("rate", cfg.RateLimit.Public).Msg("PUBLIC_RATE_LIMIT inválido")
	}
	rateStore, err := openRateStore(rdb)
	if err != nil {
		log.Fatal().Err(err).Msg("store del rate limiter")
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
		BodyLimit:    1 << 20,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(cfg.HTTP.SwaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: cfg.HTTP.SwaggerFile,
			Path:     "docs",
			Title:    "GSA API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:       authUC,
		ProductUC:    usecase.NewProductUseCase(txRunner, repos),
		ClientUC:     usecase.NewClientUseCase(repos.Clients, repos.Prices, repos.Products),
		SettingsUC:   usecase.NewSettingsUseCase(txRunner, repos.Settings, lg.Component("settings")),
		UserUC:       usecase.NewUserUseCase(repos.Users),
		LedgerUC:     inventory.NewLedgerUseCase(txRunner, repos.Movements, repos.Products, lg.Component("inventory")),
		PurchaseUC:   purchasing.NewUseCase(txRunner, repos, lg.Component("purchasing")),
		ContainerUC:  containers.NewUseCase(txRunner, repos, lg.Component("containers")),
		InvoiceUC:    invoiceUC,
		AcceptanceUC: acceptanceUC,
		DashboardUC:  appanalytics.NewDashboardUseCase(analyticsRepo, repos),
		AuditUC:      audit.NewQueryUseCase(repos.Audit),
		JWTSecret:    cfg.JWT.Secret,
		RateStore:    rateStore,
		PublicRate:   rate,
		Log:          lg.Component("http"),
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

	if sched != nil {
		sched.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

// openDocumentStore almacenamiento de los PDF según STORAGE_DRIVER.
func openDocumentStore(ctx context.Context, cfg config.StorageConfig, log zerolog.Logger) (ports.DocumentStore, func()) {
	if cfg.Driver == "gcs" {
		s, err := storage.NewGCSStore(ctx, cfg.GCSBucket, cfg.GCSCredentialsJSON)
		if err != nil {
			log.Fatal().Err(err).Str("bucket", cfg.GCSBucket).Msg("cliente de Cloud Storage")
		}
		return s, func() {
			if err := s.Close(); err != nil {
				log.Warn().Err(err).Msg("cerrar cliente de Cloud Storage")
			}
		}
	}
	s, err := storage.NewLocalStore(cfg.Dir)
	if err != nil {
		log.Fatal().Err(err).Str("dir", cfg.Dir).Msg("directorio de documentos")
	}
	return s, func() {}
}

// jobLock lock distribuido si hay Redis; si no, uno local al proceso.
func jobLock(rdb *goredis.Client) ports.JobLock {
	if rdb == nil {
		return infraredis.NewLocalLock()
	}
	return infraredis.NewLock(rdb)
}

func openRateStore(rdb *goredis.Client) (limiter.Store, error) {
	if rdb == nil {
		return limitermemory.NewStore(), nil
	}
	return limiterredis.NewStoreWithOptions(rdb, limiter.StoreOptions{
		Prefix: "gsa:ratelimit",
	})
}
