package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/vnkhanh/engchi-backend/config"
	"github.com/vnkhanh/engchi-backend/middleware"
	"github.com/vnkhanh/engchi-backend/routes"
	"github.com/vnkhanh/engchi-backend/services"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Chạy HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, db, err := bootstrap()
		if err != nil {
			return err
		}
		if sqlDB, err := db.DB(); err == nil {
			defer sqlDB.Close()
		}

		if log.IsLevelEnabled(logrus.DebugLevel) {
			gin.SetMode(gin.DebugMode)
		} else {
			gin.SetMode(gin.ReleaseMode)
		}
		r := gin.New()
		r.Use(middleware.RequestLogger(log), gin.Recovery())
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.Server.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Auth-Token"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))

		deps := routes.NewDeps(db, routes.External{
			Grader: services.NewGeminiGrader(cfg.Gemini.Model, log),
			Google: services.NewGoogleVerifier(cfg.Auth.GoogleClientID),
			TTS:    services.NewPronunciationService(cfg.TTS.CredentialsFile),
			Settings: services.AuthSettings{
				JWTSecret:     cfg.Auth.JWTSecret,
				SetupSecret:   cfg.Auth.JWTSetupSecret,
				TokenTTL:      cfg.Auth.TokenTTL,
				SetupTTL:      cfg.Auth.SetupTokenTTL,
				EncryptionKey: cfg.Crypto.APIKeySecret,
				FallbackKey:   cfg.Gemini.APIKey,
			},
			Rand: func() *rand.Rand { return rand.New(rand.NewSource(time.Now().UnixNano())) },
		}, log)
		routes.SetupRouter(r, db, deps)

		srv := &http.Server{
			Addr:              ":" + cfg.Server.Port,
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		}
		errCh := make(chan error, 1)
		go func() {
			log.Infof("Server running at Port:%s", cfg.Server.Port)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		select {
		case sig := <-sigCh:
			log.Infof("received signal: %s, shutting down", sig)
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(ctx)
		case err := <-errCh:
			return err
		}
	},
}

// bootstrap nạp config, logger và kết nối DB dùng chung cho các command.
func bootstrap() (*config.Config, *logrus.Logger, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}
	log, err := config.NewLogger(cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	db, err := config.InitDB(cfg, log)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, log, db, nil
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
