package main

import (
	"adaudit/internal/app"
	"adaudit/internal/config"
	"adaudit/internal/logger"
	"adaudit/internal/service"
	"adaudit/internal/transport/rest"
	"adaudit/internal/transport/ws"
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	for _, key := range cfg.Defaulted {
		log.Warnf("%s not set, using built-in development value", key)
	}

	ctx := context.Background()

	stores, err := app.Open(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("startup failed")
	}
	defer stores.Close(context.Background())

	// Initialize WebSocket hub
	wsHub := ws.NewHub(log)

	// Initialize services
	authSvc := service.NewAuthService(cfg.JWTSecret, cfg.Users)
	sessionSvc := service.NewSessionService(stores.Catalog, stores.Sessions, stores.Audits, log)
	auditSvc := service.NewAuditService(stores.Audits, log)

	// Inject broadcaster (wsHub implements service.Broadcaster)
	sessionSvc.SetBroadcaster(wsHub)
	auditSvc.SetBroadcaster(wsHub)

	// Create router with container
	container := &rest.Container{
		Catalog:        stores.Catalog,
		AuthService:    authSvc,
		SessionService: sessionSvc,
		AuditService:   auditSvc,
		WSHub:          wsHub,
		CORSOrigins:    cfg.CORSOrigins,
		Log:            log,
	}

	router := rest.NewRouter(container)

	// Start server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithFields(logrus.Fields{
			"port":  cfg.Port,
			"store": cfg.Store,
			"users": len(cfg.Users),
		}).Info("server starting")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("ListenAndServe")
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server forced to shutdown")
	}

	log.Info("server exited")
}
