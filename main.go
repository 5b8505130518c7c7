package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mmaaza/surgical-mart-sub001/auth"
	"github.com/mmaaza/surgical-mart-sub001/cart"
	"github.com/mmaaza/surgical-mart-sub001/checkout"
	"github.com/mmaaza/surgical-mart-sub001/config"
	"github.com/mmaaza/surgical-mart-sub001/controllers"
	"github.com/mmaaza/surgical-mart-sub001/gateway"
	"github.com/mmaaza/surgical-mart-sub001/logger"
	"github.com/mmaaza/surgical-mart-sub001/middleware"
	"github.com/mmaaza/surgical-mart-sub001/notify"
	"github.com/mmaaza/surgical-mart-sub001/order"
	"github.com/mmaaza/surgical-mart-sub001/routes"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	logger.Initialize(cfg.Env)
	zlog := logger.Log
	defer zlog.Sync()

	// --- Session & gateways ---
	session := auth.NewSession(cfg.JWTSecret)
	cartGW := gateway.NewHTTPCartGateway(cfg.CartGatewayURL, cfg.GatewayTimeout, session.Token)
	orderGW := gateway.NewHTTPOrderGateway(cfg.OrderGatewayURL, cfg.GatewayTimeout, session.Token)

	// --- Optional cart snapshot cache ---
	var snapshotCache cart.SnapshotCache
	if cfg.RedisURL != "" {
		redisClient, err := cart.NewRedisClient(cfg.RedisURL)
		if err != nil {
			zlog.Warn("snapshot cache disabled", zap.Error(err))
		} else {
			snapshotCache = cart.NewRedisSnapshotCache(redisClient, cfg.SnapshotTTL)
		}
	}

	// --- Engine ---
	notifier := notify.NewLogNotifier(zlog)
	cartManager := cart.NewManager(cartGW, session, snapshotCache, zlog)
	sweeper := cart.NewSweeper(cartManager, cfg.SweepInterval, zlog)
	submitter := order.NewSubmitter(orderGW, order.RetryPolicy{
		MaxAttempts:     cfg.MaxAttempts,
		BaseDelay:       cfg.BaseDelay,
		BackoffFactor:   cfg.BackoffFactor,
		MaxDelay:        cfg.MaxDelay,
		MaxReceiptBytes: cfg.ReceiptMaxBytes,
	}, zlog)
	flow := checkout.NewOrchestrator(cartManager, submitter, checkout.Policy{
		ShippingFee:      cfg.ShippingFee,
		PhoneCountryCode: cfg.PhoneCountryCode,
		ReceiptMaxBytes:  cfg.ReceiptMaxBytes,
	}, notifier, zlog)

	// --- HTTP router ---
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.RequestLogger())
	r.Use(middleware.RateLimit())
	r.Use(cors.Default())

	sessionC := controllers.NewSessionController(session, cartManager, sweeper, zlog)
	cartC := controllers.NewCartController(cartManager, zlog)
	checkoutC := controllers.NewCheckoutController(flow, zlog)
	routes.Register(r, session, sessionC, cartC, checkoutC)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK", "service": "storefront"})
	})

	// --- HTTP server ---
	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		zlog.Info("Storefront started", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal("server failed", zap.Error(err))
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("Initiating graceful shutdown...")
	session.Logout() // stops the background sweep

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("Server shutdown error", zap.Error(err))
	}
	zlog.Info("Storefront stopped gracefully")
}
