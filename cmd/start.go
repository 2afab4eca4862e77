package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"beryll-inventory/core/loader"
	"beryll-inventory/core/logger"
	"beryll-inventory/core/metrics"
	"beryll-inventory/core/middleware/auth"
	"beryll-inventory/core/middleware/rayid"
	"beryll-inventory/feature/components"
	"beryll-inventory/feature/components/store"
	"beryll-inventory/feature/integrity"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "beryll-inventory/docs/swagger"
)

// @title Beryll Inventory API
// @version 1.0
// @description Hardware component inventory of Beryll servers, reconciled against BMC Redfish data.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key

var migrateOnStart bool

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the inventory HTTP server",
	Long:  `Starts the HTTP server and initializes all enabled features.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := bootstrap()
		if err != nil {
			return err
		}
		logg := rt.logger
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		if migrateOnStart {
			if err := store.Migrate(rt.db); err != nil {
				return fmt.Errorf("failed to migrate schema: %w", err)
			}
			logg.Info("Schema migrated")
		}

		ctx := context.Background()
		objects := rt.storageClient()
		engine, bmcClient, publisher, err := rt.engine(ctx, objects)
		if err != nil {
			return fmt.Errorf("failed to build reconciliation engine: %w", err)
		}
		defer publisher.Close()

		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
		})

		mgr := loader.NewManager()
		mgr.Register(components.NewFeature(rt.db, engine, bmcClient, publisher, logg))
		mgr.Register(integrity.NewFeature(objects, rt.cfg.Storage, logg, rt.db))

		// RayID must come first so every later log line carries it.
		app.Use(rayid.New())

		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			start := time.Now()
			err := c.Next()
			fields := []zap.Field{
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
				zap.Int("status", c.Response().StatusCode()),
				zap.Duration("elapsed", time.Since(start)),
			}
			if err != nil {
				l.Error("Request error", append(fields, zap.Error(err))...)
				return err
			}
			l.Info("Request", fields...)
			return nil
		})

		// Public routes
		app.Get("/swagger/*", swagger.HandlerDefault)
		if rt.cfg.Server.MetricsEnabled {
			app.Get("/metrics", metrics.Handler())
		}

		app.Use(auth.New(auth.Config{ApiKey: rt.cfg.Server.ApiKey}))

		if err := mgr.LoadAll(app); err != nil {
			return fmt.Errorf("failed to load features: %w", err)
		}

		errCh := make(chan error, 1)
		go func() {
			logg.Info("Starting server",
				zap.String("addr", rt.cfg.Server.ListenAddr()),
				zap.String("bmc_driver", bmcClient.Driver()),
			)
			errCh <- app.Listen(rt.cfg.Server.ListenAddr())
		}()

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		select {
		case err := <-errCh:
			return fmt.Errorf("server failed: %w", err)
		case <-sig:
		}

		logg.Info("Shutting down server...")
		timeout := time.Duration(rt.cfg.Server.ShutdownTimeoutSeconds) * time.Second
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		return app.ShutdownWithTimeout(timeout)
	},
}

func init() {
	startCmd.Flags().BoolVar(&migrateOnStart, "migrate", false, "Run schema migration before serving")
	RootCmd.AddCommand(startCmd)
}
