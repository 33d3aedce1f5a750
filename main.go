package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"il2-stats/awards"
	"il2-stats/config"
	"il2-stats/handlers"
	"il2-stats/logger"
	"il2-stats/middleware"
	"il2-stats/models"
	"il2-stats/services"
	"il2-stats/utils"
	"il2-stats/workers"

	"github.com/go-redis/redis"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load config:", err)
	}
	if err := logger.Init(cfg.App.LogProduction); err != nil {
		log.Fatal("failed to init logger:", err)
	}
	defer logger.Sync()
	lg := logger.L()

	db, err := config.OpenDB(cfg)
	if err != nil {
		lg.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := models.AutoMigrate(db); err != nil {
		lg.Fatal("failed to migrate database", zap.Error(err))
	}
	if err := models.SeedRanks(db); err != nil {
		lg.Fatal("failed to seed ranks", zap.Error(err))
	}

	catalog, err := awards.Load()
	if err != nil {
		lg.Fatal("invalid award catalog", zap.Error(err))
	}
	rewardService := services.NewRewardService(db)
	if err := rewardService.SyncCatalog(catalog); err != nil {
		lg.Fatal("failed to sync award catalog", zap.Error(err))
	}

	var locker services.Locker = services.NewLocalLocker()
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping().Err(); err != nil {
			lg.Fatal("failed to connect to redis", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
		defer client.Close()
		locker = services.NewRedisLocker(client)
		lg.Info("singleton awards locked through redis", zap.String("addr", cfg.Redis.Addr))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine := services.NewAwardEngine(db, catalog, rewardService, locker)

	var archive *services.ArchiveService
	if cfg.StorageEnabled() {
		r2, err := utils.NewR2Client(ctx, cfg)
		if err != nil {
			lg.Fatal("failed to initialize R2 client", zap.Error(err))
		}
		archive = services.NewArchiveService(db, r2)
	} else {
		lg.Warn("storage not configured, closed tours will not be archived")
	}
	tourService := services.NewTourService(db, engine, archive)

	sched, err := tourService.StartTourScheduler(ctx, cfg.Scheduler.ReevaluateInterval)
	if err != nil {
		lg.Fatal("failed to start scheduler", zap.Error(err))
	}
	go workers.PollSorties(ctx, db, engine, cfg.Worker.Interval, cfg.Worker.Batch)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	app.Use(middleware.Recovery())
	app.Use(middleware.RequestLogger())

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	handlers.SetupTriggerRoutes(app, cfg.Service.Token, engine, tourService)
	handlers.SetupRewardRoutes(app, cfg.Service.Token, rewardService)

	go func() {
		if err := app.Listen(cfg.App.HTTPAddr); err != nil {
			lg.Error("server error", zap.Error(err))
			stop()
		}
	}()
	lg.Info("server running",
		zap.String("addr", cfg.App.HTTPAddr),
		zap.Int("awards", len(catalog.All())),
		zap.Duration("worker_interval", cfg.Worker.Interval),
	)

	<-ctx.Done()
	lg.Info("shutting down server")
	if err := sched.Shutdown(); err != nil {
		lg.Warn("scheduler shutdown", zap.Error(err))
	}
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		lg.Warn("server shutdown", zap.Error(err))
	}
}
