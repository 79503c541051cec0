// README: Entry point; loads config, wires services, starts the HTTP server.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"lantern/internal/activity"
	"lantern/internal/booking"
	"lantern/internal/config"
	httptransport "lantern/internal/http"
	"lantern/internal/infra"
	"lantern/internal/logger"
	"lantern/internal/maps"
	"lantern/internal/notify"
	"lantern/internal/order"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	zlog, err := logger.New(cfg.Log.Level)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = zlog.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Firebase.ProjectID == "" {
		zlog.Fatal("LANTERN_FIREBASE_PROJECT_ID is required")
	}
	verifier, err := infra.NewFirebaseVerifier(ctx, cfg.Firebase.ProjectID, cfg.Firebase.CredentialsFile)
	if err != nil {
		zlog.Fatal("firebase init", zap.Error(err))
	}

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		zlog.Fatal("db connect", zap.Error(err))
	}
	defer dbPool.Close()

	redisClient := infra.NewRedis(cfg.Redis.Addr)
	defer func() { _ = redisClient.Close() }()

	provider, err := maps.NewGoogleProvider(cfg.Maps.APIKey, time.Duration(cfg.Maps.TimeoutMS)*time.Millisecond)
	if err != nil {
		zlog.Fatal("maps client init", zap.Error(err))
	}
	planner := maps.NewPlanner(provider, zlog)

	dispatcher := notify.NewDispatcher(redisClient, cfg.Redis.Channel, zlog)

	orderStore := order.NewStore(dbPool)
	orderSvc := order.NewService(orderStore, planner, dispatcher, zlog)

	bookingStore := booking.NewStore(dbPool)
	bookingSvc := booking.NewService(bookingStore, dispatcher, zlog)

	activitySvc := activity.NewService(orderSvc, bookingSvc, zlog)

	router := httptransport.NewRouter(httptransport.RouterDeps{
		Orders:   orderSvc,
		Bookings: bookingSvc,
		Activity: activitySvc,
		Provider: provider,
		Planner:  planner,
		Verifier: verifier,
	})

	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: router}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			zlog.Warn("shutdown", zap.Error(err))
		}
	}()

	zlog.Info("listening", zap.String("addr", cfg.HTTP.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		zlog.Fatal("serve", zap.Error(err))
	}
}
