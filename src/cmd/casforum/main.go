package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/casapps/casforum/src/internal/config"
	"github.com/casapps/casforum/src/internal/database"
	"github.com/casapps/casforum/src/internal/server"
	"github.com/casapps/casforum/src/pkg/utils"
)

var Version = "dev"

func main() {
	root := &cobra.Command{
		Use:   "casforum",
		Short: "CasForum server and tooling",
	}

	root.AddCommand(serveCmd(), migrateCmd(), versionCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the forum server",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := utils.NewLogger()

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			db, err := database.Initialize(cfg)
			if err != nil {
				return fmt.Errorf("failed to initialize database: %w", err)
			}
			defer closeDB(db)

			if err := database.MigrateDB(db, cfg.GetString("database.type")); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}

			e := echo.New()
			e.HidePort = true

			srv := server.New(e, cfg, db, logger)

			address := fmt.Sprintf("%s:%d",
				cfg.GetString("server.host"),
				cfg.GetInt("server.port"))

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.Start(address)
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

			select {
			case err := <-errCh:
				return err
			case sig := <-quit:
				logger.Info("shutting down", "signal", sig.String())
			}

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			return srv.Shutdown(ctx)
		},
	}
}

func migrateCmd() *cobra.Command {
	var steps int

	cmd := &cobra.Command{
		Use:   "migrate [up|down|version]",
		Short: "Manage database schema migrations",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			db, err := database.Initialize(cfg)
			if err != nil {
				return fmt.Errorf("failed to initialize database: %w", err)
			}
			defer closeDB(db)

			manager, err := database.NewMigrationManager(db, cfg.GetString("database.type"))
			if err != nil {
				return err
			}
			defer manager.Close()

			action := "up"
			if len(args) > 0 {
				action = args[0]
			}

			switch action {
			case "up":
				return manager.Up()
			case "down":
				return manager.Down(steps)
			case "version":
				version, dirty, err := manager.Version()
				if err != nil {
					return err
				}
				fmt.Printf("version: %d dirty: %v\n", version, dirty)
				return nil
			default:
				return fmt.Errorf("unknown migrate action: %s", action)
			}
		},
	}

	cmd.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("CasForum v%s\n", Version)
		},
	}
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}
