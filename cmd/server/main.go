// cmd/server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/averbacoes/backoffice/internal/apiclient"
	"github.com/averbacoes/backoffice/internal/config"
	"github.com/averbacoes/backoffice/internal/database"
	"github.com/averbacoes/backoffice/internal/i18n"
	"github.com/averbacoes/backoffice/internal/router"
	"github.com/averbacoes/backoffice/internal/services"
	"github.com/averbacoes/backoffice/internal/utils"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	logrus.SetFormatter(&logrus.JSONFormatter{})
	if cfg.Environment != "production" {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		logrus.SetLevel(logrus.DebugLevel)
	}

	// Initialize i18n
	if err := i18n.Initialize(cfg.I18n.DefaultLocale); err != nil {
		logrus.WithError(err).Fatal("Failed to initialize i18n")
	}

	// Session store
	var db *gorm.DB
	var store services.SessionStore
	if cfg.Session.Store == "postgres" {
		db, err = database.Initialize(cfg.Database)
		if err != nil {
			logrus.WithError(err).Fatal("Failed to initialize database")
		}
		defer database.Close(db)

		if err := database.RunMigrations(db); err != nil {
			logrus.WithError(err).Fatal("Failed to run migrations")
		}
		store = services.NewGormSessionStore(db)
	} else {
		logrus.Warn("Sessions are kept in memory and are lost on restart")
		store = services.NewMemorySessionStore()
	}

	sealer, err := utils.NewSealer(cfg.Session.SealKey)
	if err != nil {
		logrus.WithError(err).Fatal("Invalid session seal key")
	}
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	api := apiclient.NewClient(cfg.Upstream.BaseURL, cfg.UpstreamTimeout())
	sessions := services.NewSessionManager(api, store, sealer, cfg)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	sessions.StartJanitor(ctx, 5*time.Minute)

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r, err := router.Initialize(db, cfg, api, sessions)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize router")
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logrus.WithFields(logrus.Fields{
			"addr":     srv.Addr,
			"upstream": cfg.Upstream.BaseURL,
			"store":    cfg.Session.Store,
		}).Info("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down server...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("Server forced to shutdown")
	}

	logrus.Info("Server exited")
}
