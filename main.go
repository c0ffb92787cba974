package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/etag"
	"github.com/gofiber/utils"

	"pmhub_backend/internals/configs"
	database "pmhub_backend/internals/databases"
	backupScheduler "pmhub_backend/internals/features/backup/scheduler"
	backupService "pmhub_backend/internals/features/backup/service"
	mergeScheduler "pmhub_backend/internals/features/files/pdfmerge/scheduler"
	mergeService "pmhub_backend/internals/features/files/pdfmerge/service"
	planScheduler "pmhub_backend/internals/features/projects/plans/scheduler"
	planService "pmhub_backend/internals/features/projects/plans/service"
	sessionScheduler "pmhub_backend/internals/features/users/sessions/scheduler"
	sessionService "pmhub_backend/internals/features/users/sessions/service"
	"pmhub_backend/internals/mailer"
	middlewares "pmhub_backend/internals/middlewares"
	routes "pmhub_backend/internals/route"
	"pmhub_backend/internals/search"
	"pmhub_backend/internals/seeds"
)

func main() {
	configs.LoadEnv()

	app := fiber.New(fiber.Config{
		// 🚀 JSON super cepat
		JSONEncoder:             sonic.Marshal,
		JSONDecoder:             sonic.Unmarshal,
		DisableStartupMessage:   true,
		ProxyHeader:             fiber.HeaderXForwardedFor,
		EnableTrustedProxyCheck: true,
		TrustedProxies:          []string{"0.0.0.0/0"},
		BodyLimit:               100 * 1024 * 1024, // upload PDF bisa besar
	})

	// ⚙️ middleware dasar + performa
	app.Use(compress.New(compress.Config{Level: compress.LevelDefault}))
	app.Use(etag.New())

	// 🔎 Request-ID + timing
	app.Use(func(c *fiber.Ctx) error {
		id := c.Get("X-Request-ID")
		if id == "" {
			id = utils.UUID()
		}
		c.Set("X-Request-ID", id)
		c.Locals("reqid", id)
		start := time.Now()
		err := c.Next()
		dur := time.Since(start)
		log.Printf("[REQ] id=%s %s %s status=%d dur=%s", id, c.Method(), c.OriginalURL(), c.Response().StatusCode(), dur)
		return err
	})

	middlewares.SetupMiddlewares(app)

	// 🔌 DB connect + pool + warm-up
	database.ConnectDB()
	database.TunePool()
	database.WarmUpQueries()

	if err := database.MigrateAll(database.DB); err != nil {
		log.Fatalf("[ERROR] migrasi gagal: %v", err)
	}

	if configs.GetEnv("RUN_SEEDS") == "true" {
		seeds.RunAllSeeds(database.DB)
	}

	// komponen bersama
	registry := sessionService.NewSessionRegistry(database.DB, configs.SessionIdleTimeout)
	searcher := search.New(database.DB)
	previews := mergeService.NewPreviewStore(database.DB, configs.StaticRoot, configs.PreviewTTL)
	rollup := planService.NewRollupService(database.DB, planService.NewPlanStore(database.DB))

	// ⏱ scheduler setelah DB siap
	stop := make(chan struct{})
	sessionScheduler.StartIdleSessionReaper(registry, stop)
	planScheduler.StartOverdueSweeper(rollup, stop)
	mergeScheduler.StartPreviewReaper(previews, stop)
	backupScheduler.StartDailyBackup(backupService.NewBackupService(database.DB, mailer.New()), stop)

	// 🖼 PNG preview disajikan statis; dir dibuat di depan
	previewDir := filepath.Join(configs.StaticRoot, "temp_preview_images")
	if err := os.MkdirAll(previewDir, 0o755); err != nil {
		log.Printf("[WARN] buat dir preview: %v", err)
	}
	app.Static("/static/temp_preview_images", previewDir)

	// ✅ Routes
	routes.SetupRoutes(app, database.DB, registry, searcher)

	// 🔒 Keep-Alive & timeout koneksi server
	app.Server().ReadTimeout = 15 * time.Second
	app.Server().WriteTimeout = 120 * time.Second // merge PDF besar butuh waktu
	app.Server().IdleTimeout = 90 * time.Second

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	go func() {
		log.Printf("✅ Listening on :%s", port)
		if err := app.Listen("0.0.0.0:" + port); err != nil {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown: stop scheduler, tutup server, tutup pool DB
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	close(stop)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = app.ShutdownWithContext(ctx)

	if sqlDB, err := database.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
