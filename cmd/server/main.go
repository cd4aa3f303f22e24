package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Jirayuth/frame_shop/internal/cart"
	"github.com/Jirayuth/frame_shop/internal/checkout"
	"github.com/Jirayuth/frame_shop/internal/config"
	"github.com/Jirayuth/frame_shop/internal/dashboard"
	"github.com/Jirayuth/frame_shop/internal/db"
	"github.com/Jirayuth/frame_shop/internal/es"
	"github.com/Jirayuth/frame_shop/internal/handlers"
	"github.com/Jirayuth/frame_shop/internal/logging"
	"github.com/Jirayuth/frame_shop/internal/mykafka"
	"github.com/Jirayuth/frame_shop/internal/orders"
	"github.com/Jirayuth/frame_shop/internal/service/token"
	"github.com/Jirayuth/frame_shop/internal/storage"
	httpserver "github.com/Jirayuth/frame_shop/internal/transport/http"
)

const productIndex = "products"

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger := logging.New(cfg.LOG_LEVEL)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	database, err := db.Open(ctx, cfg.DSN())
	cancel()
	if err != nil {
		logger.Error("database open failed", "error", err)
		os.Exit(1)
	}
	if err := db.Migrate(database); err != nil {
		logger.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// Events are best effort; the shop still runs without the broker.
	var producer *mykafka.Producer
	if cfg.KAFKA_ADDRESS != "" {
		producer, err = mykafka.NewProducer([]string{cfg.KAFKA_ADDRESS})
		if err != nil {
			logger.Warn("kafka unavailable, events disabled", "error", err)
			producer = nil
		}
	} else {
		logger.Warn("no kafka address configured, events disabled")
	}

	esClient, err := es.NewClient(cfg)
	if err != nil {
		logger.Warn("elasticsearch unavailable, search disabled", "error", err)
		esClient = nil
	}

	files, err := storage.NewFileStore(cfg.UPLOAD_DIR)
	if err != nil {
		logger.Error("upload dir unavailable", "error", err)
		os.Exit(1)
	}

	jwtSecret := []byte(cfg.JWT_SECRET)
	refreshSecret := []byte(cfg.REFRESH_SECRET)

	tokens := &token.TokenService{DB: database, JWTSecret: jwtSecret, RefreshSecret: refreshSecret}
	cartSvc := &cart.Service{DB: database}
	checkoutSvc := &checkout.Service{DB: database}
	orderSvc := &orders.Service{DB: database}
	dashSvc := &dashboard.Service{DB: database}

	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID(), logging.RequestLogger(logger))
	e.Static("/uploads", cfg.UPLOAD_DIR)

	httpserver.Register(e, &httpserver.Deps{
		Tokens:   tokens,
		Auth:     &handlers.AuthHandler{DB: database, JWTSecret: jwtSecret, RefreshSecret: refreshSecret, Producer: producer},
		Product:  &handlers.ProductHandler{DB: database, Producer: producer, ES: esClient, Index: productIndex},
		Category: &handlers.CategoryHandler{DB: database},
		Search:   &handlers.SearchHandler{ES: esClient, Index: productIndex},
		Cart:     &handlers.CartHandler{Cart: cartSvc, Producer: producer},
		Checkout: &handlers.CheckoutHandler{Checkout: checkoutSvc, Files: files, Producer: producer},
		Order:    &handlers.OrderHandler{Orders: orderSvc},
		Frame:    &handlers.FrameHandler{DB: database, Checkout: checkoutSvc, Files: files, Producer: producer},
		Plaque:   &handlers.PlaqueHandler{DB: database, Checkout: checkoutSvc, Files: files, Producer: producer},
		Admin:    &handlers.AdminHandler{DB: database, Orders: orderSvc, Dashboard: dashSvc, Producer: producer},
	})

	srv := &http.Server{
		Addr:         ":" + cfg.PORT,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if sqlDB, err := database.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error("db close error", "error", err)
		}
	}

	if producer != nil {
		if err := producer.Close(); err != nil {
			logger.Error("kafka close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
