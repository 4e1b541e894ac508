package main

import (
	"context"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/eliudmichira/Hama-Estate-sub005/internal/api"
	"github.com/eliudmichira/Hama-Estate-sub005/internal/config"
	"github.com/eliudmichira/Hama-Estate-sub005/internal/service"
	"github.com/eliudmichira/Hama-Estate-sub005/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := zap.NewProduction()
	if cfg.Env == "development" {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	defer logger.Sync()

	gateway, err := store.NewPostgres(context.Background(), cfg.DBSource, logger)
	if err != nil {
		logger.Fatal("unable to connect to database", zap.Error(err))
	}
	defer gateway.Close()

	// Initialize Layers
	tenants := service.NewTenantService(gateway, logger)
	handler := api.NewHandler(tenants, logger)

	// Router
	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.Handler())
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	handler.Register(r)

	logger.Info("server starting", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
