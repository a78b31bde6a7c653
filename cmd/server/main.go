package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/agrohub/farm_market/internal/config"
	"github.com/agrohub/farm_market/internal/db"
	"github.com/agrohub/farm_market/internal/events"
	"github.com/agrohub/farm_market/internal/httpserver"
	"github.com/agrohub/farm_market/internal/logging"
	loggingmw "github.com/agrohub/farm_market/internal/middleware/logging"
	"github.com/agrohub/farm_market/internal/repo"
	"github.com/agrohub/farm_market/internal/search"
	"github.com/agrohub/farm_market/internal/service/cart"
	"github.com/agrohub/farm_market/internal/service/catalog"
	"github.com/agrohub/farm_market/internal/service/checkout"
	"github.com/agrohub/farm_market/internal/service/profile"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.LOG_LEVEL).With("service", "farm_market")
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	gdb, err := db.Open(ctx, cfg.DatabaseURL())
	cancel()
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	var producer events.Publisher
	if cfg.KAFKA_ADDRESS != "" {
		p := events.NewProducer(cfg.KAFKA_ADDRESS, "market_events")
		defer p.Close()
		producer = p
	}

	store := &repo.GormRepo{DB: gdb}

	catalogSvc := &catalog.CatalogService{Repo: store, Producer: producer, ESIndex: cfg.ES_INDEX}
	if cfg.ES_URL != "" {
		es, err := search.NewClient(cfg)
		if err != nil {
			logger.Warn("elasticsearch unavailable, search disabled", "error", err)
		} else {
			catalogSvc.ES = es
		}
	}

	cartSvc := &cart.CartService{Repo: store}
	checkoutSvc := &checkout.CheckoutService{Store: store, Cart: cartSvc, Producer: producer}
	profileSvc := &profile.ProfileService{Repo: store}

	e := echo.New()
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(echomw.CORS())

	httpserver.Register(e, &httpserver.Deps{
		Catalog:   &httpserver.CatalogHTTP{Svc: catalogSvc},
		Cart:      &httpserver.CartHTTP{Svc: cartSvc},
		Checkout:  &httpserver.CheckoutHTTP{Svc: checkoutSvc},
		Profile:   &httpserver.ProfileHTTP{Svc: profileSvc},
		JWTSecret: []byte(cfg.JWT_SECRET),
	})

	port := cfg.SERVER_PORT
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}

	go func() {
		log.Printf("farm_market listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)

	if sqlDB, err := gdb.DB(); err == nil {
		_ = sqlDB.Close()
	}

	log.Println("farm_market stopped")
}
