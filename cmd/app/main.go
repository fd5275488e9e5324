package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/Rogue-Bear-Innovations/bookmarker-web/internal/cache"
	"github.com/Rogue-Bear-Innovations/bookmarker-web/internal/config"
	"github.com/Rogue-Bear-Innovations/bookmarker-web/internal/db"
	"github.com/Rogue-Bear-Innovations/bookmarker-web/internal/proto"
	"github.com/Rogue-Bear-Innovations/bookmarker-web/internal/service"
	"github.com/Rogue-Bear-Innovations/bookmarker-web/internal/transport"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "bookmarker",
	Short:        "Personal bookmark manager",
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// a missing .env is fine, the environment is used as is
		_ = godotenv.Load()
	},
	RunE: serve,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP and gRPC servers",
	Args:  cobra.NoArgs,
	RunE:  serve,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema and exit",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.NewConfig()
		if err != nil {
			return err
		}
		logger, err := config.NewLogger(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		conn, err := db.NewGormClient(cfg, logger)
		if err != nil {
			return err
		}
		if sqlDB, err := conn.DB(); err == nil {
			_ = sqlDB.Close()
		}
		logger.Info("schema is up to date")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
}

func serve(cmd *cobra.Command, args []string) error {
	app := fx.New(options())
	if err := app.Err(); err != nil {
		return err
	}
	app.Run()
	return nil
}

func options() fx.Option {
	return fx.Options(
		fx.Provide(
			config.NewConfig,
			config.NewLogger,
			db.NewGormClient,
			cache.NewCategories,
			service.NewCategories,
			service.NewGeneral,
			transport.NewRenderer,
			transport.NewHTTPServer,
		),
		proto.Module,
		fx.WithLogger(func(logger *zap.SugaredLogger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: logger.Desugar()}
		}),
		fx.Invoke(func(*transport.HTTPServer) {}),
	)
}
