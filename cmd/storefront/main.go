package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Zaidmakandar1/Divine-Elegant/internal/auth"
	"github.com/Zaidmakandar1/Divine-Elegant/internal/cart"
	"github.com/Zaidmakandar1/Divine-Elegant/internal/catalog"
	"github.com/Zaidmakandar1/Divine-Elegant/internal/checkout"
	"github.com/Zaidmakandar1/Divine-Elegant/internal/config"
	"github.com/Zaidmakandar1/Divine-Elegant/internal/db"
	"github.com/Zaidmakandar1/Divine-Elegant/internal/events"
	httpapi "github.com/Zaidmakandar1/Divine-Elegant/internal/http"
	"github.com/Zaidmakandar1/Divine-Elegant/internal/order"
	"github.com/Zaidmakandar1/Divine-Elegant/internal/user"
)

func main() {
	cfg := config.Load()

	logger := log.New(os.Stdout, "[storefront] ", log.LstdFlags|log.Lshortfile)

	if err := db.RunMigrations(cfg.DatabaseDSN, logger); err != nil {
		logger.Fatalf("run migrations: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool := db.MustOpen(ctx, cfg.DatabaseDSN)
	defer pool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()

	productRepo := catalog.NewCachedRepository(catalog.NewPostgresRepository(pool), redisClient, logger)
	cartStore := cart.NewRedisStore(redisClient)
	orderRepo := order.NewPostgresRepository(pool)
	userRepo := user.NewPostgresRepository(pool)

	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL)

	// The broker is optional: without it orders still commit, the
	// lifecycle events are just not emitted.
	var publisher *events.Publisher
	if conn, err := events.DialRabbit(cfg.RabbitURL); err != nil {
		logger.Printf("rabbitmq unavailable, order events disabled: %v", err)
	} else {
		defer conn.Close()
		publisher, err = events.NewPublisher(conn)
		if err != nil {
			logger.Fatalf("create events publisher: %v", err)
		}
	}

	var orderCreatedPub checkout.Publisher
	var statusPub httpapi.StatusPublisher
	if publisher != nil {
		orderCreatedPub = publisher
		statusPub = publisher
	}

	checkoutSvc := checkout.NewService(pool, cartStore, orderRepo, orderCreatedPub, logger)

	router := httpapi.NewRouter(httpapi.RouterDeps{
		Products:         productRepo,
		Carts:            cartStore,
		Orders:           orderRepo,
		Users:            userRepo,
		Checkout:         checkoutSvc,
		Tokens:           tokens,
		Verifier:         tokens,
		StatusPublisher:  statusPub,
		CORSAllowOrigins: cfg.CORSAllowOrigins,
		Logger:           logger,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: cfg.RequestTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Printf("storefront listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Printf("shutdown signal received")
	case err := <-errCh:
		logger.Fatalf("server error: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("graceful shutdown error: %v", err)
	}
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			logger.Printf("publisher close error: %v", err)
		}
	}
}
