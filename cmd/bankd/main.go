package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/DimaFiz/BankBackEnd/bank"
	"github.com/joho/godotenv"
	"golang.org/x/exp/slog"
)

func main() {
	// .env is optional; environment variables win either way.
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout))

	cfg := bank.DefaultConfig()
	cfg.HTTPAddr = getenv("HTTP_ADDR", cfg.HTTPAddr)
	cfg.BankName = getenv("BANK_NAME", cfg.BankName)
	cfg.BankBIC = getenv("BANK_BIC", cfg.BankBIC)
	cfg.ArchiveDSN = getenv("ARCHIVE_DSN", "")

	app := bank.NewApp(logger, cfg)
	if err := app.Start(); err != nil {
		logger.Error("starting app", "err", err)
		os.Exit(1)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	app.Shutdown()
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
