package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"colegio_backend/internals/configs"
	database "colegio_backend/internals/databases"
	paymentService "colegio_backend/internals/features/finance/payments/service"
	helperAuth "colegio_backend/internals/helpers/auth"
	middlewares "colegio_backend/internals/middlewares"
	routes "colegio_backend/internals/route"
	"colegio_backend/internals/scheduler"
	"colegio_backend/internals/seeds"
)

func main() {
	configs.LoadEnv()

	root := &cobra.Command{
		Use:           "colegio",
		Short:         "API de gestión escolar",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          func(cmd *cobra.Command, args []string) error { return serve() },
	}
	root.AddCommand(serveCmd(), migrateCmd(), seedCmd(), syncFinancialCmd())

	if err := root.Execute(); err != nil {
		log.Fatalf("❌ %v", err)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Levanta el servidor HTTP (por defecto)",
		RunE:  func(cmd *cobra.Command, args []string) error { return serve() },
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "AutoMigrate de todos los modelos e índices parciales",
		RunE: func(cmd *cobra.Command, args []string) error {
			db := configs.InitCommandDB()
			return database.Migrate(db)
		},
	}
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Carga un colegio de demostración",
		RunE: func(cmd *cobra.Command, args []string) error {
			db := configs.InitCommandDB()
			return seeds.RunAllSeeds(cmd.Context(), db, configs.Load())
		},
	}
}

func syncFinancialCmd() *cobra.Command {
	var tenant string
	cmd := &cobra.Command{
		Use:   "sync-financial-status",
		Short: "Recalcula el estado financiero de cada apoderado",
		RunE: func(cmd *cobra.Command, args []string) error {
			var tenantID *uuid.UUID
			if tenant != "" {
				id, err := uuid.Parse(tenant)
				if err != nil {
					return err
				}
				tenantID = &id
			}
			db := configs.InitCommandDB()
			out, err := paymentService.SyncAll(cmd.Context(), db, tenantID)
			if err != nil {
				return err
			}
			log.Printf("✅ sincronización terminada: %v", out)
			return nil
		},
	}
	cmd.Flags().StringVar(&tenant, "tenant", "", "limitar a un colegio (uuid)")
	return cmd
}

func serve() error {
	cfg := configs.Load()

	app := fiber.New(fiber.Config{
		// 🚀 JSON rápido
		JSONEncoder:             sonic.Marshal,
		JSONDecoder:             sonic.Unmarshal,
		DisableStartupMessage:   true,
		ProxyHeader:             fiber.HeaderXForwardedFor,
		EnableTrustedProxyCheck: true,
		TrustedProxies:          []string{"0.0.0.0/0"},
		BodyLimit:               12 * 1024 * 1024,
	})

	middlewares.SetupMiddlewares(app, cfg)

	// 🔌 DB connect + pool + warm-up
	database.ConnectDB()
	database.TunePool()
	database.WarmUpQueries()

	bl := helperAuth.NewBlacklist(database.DB, helperAuth.NewRedisFromURL(cfg.RedisURL), cfg.JWTSecret)

	// ✅ Routes
	routes.SetupRoutes(app, database.DB, cfg, bl)

	// ⏱ scheduler después de la DB
	cron, err := scheduler.StartDefault(database.DB, bl, cfg.OverdueCronSchedule, cfg.Timezone)
	if err != nil {
		return err
	}

	// 🔒 Keep-Alive & timeouts
	app.Server().ReadTimeout = 15 * time.Second
	app.Server().WriteTimeout = 30 * time.Second
	app.Server().IdleTimeout = 90 * time.Second

	go func() {
		log.Printf("✅ Listening on :%s", cfg.Port)
		if err := app.Listen("0.0.0.0:" + cfg.Port); err != nil {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown + cierre del pool
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = app.ShutdownWithContext(ctx)
	cron.Stop(ctx)

	database.Close()
	return nil
}
