package app

import (
	"context"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"token-vault/internal/common/logging"
	"token-vault/internal/config"
	"token-vault/internal/server"
)

// Run is the service entry point: load config, wire the app, serve until a
// termination signal, then drain.
func Run() error {
	_ = godotenv.Load()

	runtime.GOMAXPROCS(runtime.NumCPU())

	logging.InitGlobalLogger()
	defer logging.MustSync()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logging.Error("Configuration validation failed", err)
		return err
	}

	app, err := New(cfg)
	if err != nil {
		logging.Error("Failed to initialize application", err)
		return err
	}
	defer app.Cleanup()

	if err := app.Start(); err != nil {
		logging.Error("Failed to start refresh sweep", err)
		return err
	}

	srv := server.New(app.Router(), cfg.Port)
	serveErr := srv.Start()

	logging.Info("Token vault listening",
		logging.String("port", cfg.Port),
		logging.String("database", cfg.DatabaseType),
		logging.Bool("redis", cfg.RedisEnabled()),
		logging.Bool("sweep", cfg.SweepEnabled))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		logging.Error("Server failed", err)
		return err
	case <-quit:
	}

	logging.Info("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.Shutdown(ctx); err != nil {
		logging.Warn("Error during app shutdown", logging.Err(err))
	}

	if err := srv.Shutdown(ctx); err != nil {
		logging.Error("Server forced to shutdown", err)
		return err
	}

	logging.Info("Server exited")
	return nil
}
