// Command mockapi runs the in-memory stand-in for the stock management
// backend, seeded with demo data. It exists so the dashboard can be developed
// and demoed without a real deployment.
package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/stockdesk-app/stockdesk/internal/config"
	"github.com/stockdesk-app/stockdesk/internal/mockapi"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	server := mockapi.New(cfg.Mock.Secret)
	server.SeedDemo()

	router := middleware.Logger(server.Router())

	port := fmt.Sprintf(":%d", cfg.Mock.Port)
	slog.Info("starting mock backend", "port", port, "username", "admin")

	if err := http.ListenAndServe(port, router); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
