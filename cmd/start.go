package cmd

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"asset-resolver/core/catalog"
	"asset-resolver/core/config"
	"asset-resolver/core/graph"
	"asset-resolver/core/loader"
	"asset-resolver/core/logger"
	"asset-resolver/core/middleware/auth"
	"asset-resolver/core/middleware/rayid"
	"asset-resolver/core/provider"
	"asset-resolver/core/resolver"
	"asset-resolver/core/storage"

	"asset-resolver/feature/assets"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "asset-resolver/docs/swagger"
)

// @title Asset Resolver API
// @version 1.0
// @description API for resolving and caching assets.
// @host localhost:8080
// @BasePath /

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the asset resolver server",
	Long:  `Starts the HTTP server and initializes the resolution core.`,
	Run: func(cmd *cobra.Command, args []string) {
		// 1. Load Configuration
		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		// 2. Initialize Logger
		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		// 3. Connect to the catalog database (Optional)
		var cat *catalog.Catalog
		if cfg.Resolver.CatalogEnabled {
			if conn, err := catalog.Connect(cfg.Catalog); err != nil {
				logg.Warn("Optional catalog connection failed", zap.Error(err))
			} else {
				cat = catalog.New(conn)
				logg.Info("Connected to asset catalog")
			}
		}

		// 4. Initialize Storage
		store, err := storage.NewClient(cfg.Storage)
		if err != nil {
			logg.Fatal("Failed to create storage client", zap.Error(err))
		}

		// 5. Build the resolution core: providers, chain, sink, resolver.
		sink := graph.New(logg)
		primary := provider.NewBundleProvider(store, cfg.Storage.Bucket, cat, sink, nil, logg)
		fallback := provider.NewLocalProvider(afero.NewOsFs(), cfg.Resolver.FallbackDir, nil, logg)
		chain := provider.NewChain(primary, fallback, sink, logg)
		res := resolver.New(chain, sink, logg)

		// 6. Register the reload hook before anything can hand out handles:
		// a SIGHUP means every handle issued so far is no longer trustworthy.
		reload := make(chan os.Signal, 1)
		signal.Notify(reload, syscall.SIGHUP)
		res.ListenReload(reload)

		// 7. Initialize Fiber App
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true, // We will log our own startup message
		})

		// Middleware Registration
		// RayID must be first to trace everything
		app.Use(rayid.New())

		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		// Swagger Documentation (Public)
		app.Get("/swagger/*", swagger.HandlerDefault)

		// Auth (Protect API)
		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey}))

		// 8. Load Features
		mgr := loader.NewManager()
		mgr.Register(assets.NewFeature(res, sink, logg))
		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		// 9. Start Server
		go func() {
			logg.Info("Starting server", zap.String("port", cfg.Server.Port))
			if err := app.Listen(":" + cfg.Server.Port); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 10. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		_ = app.Shutdown()
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
