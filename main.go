package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Gyarko10951917/Goldguard-Illegal-Mining-Tracking-System-sub000/api/handlers"
	"github.com/Gyarko10951917/Goldguard-Illegal-Mining-Tracking-System-sub000/api/scheduler"
	"github.com/Gyarko10951917/Goldguard-Illegal-Mining-Tracking-System-sub000/config"
)

func main() {
	a := handlers.App{}
	a.Config = *config.New()

	// initialize database, pending queue and router
	if err := a.Initialize(); err != nil {
		zap.S().Fatalw("failed to initialize", "error", err)
	}

	sched := scheduler.NewScheduler(a.Cases, a.Config.PollInterval, a.Config.SyncInterval)
	if err := sched.Start(); err != nil {
		zap.S().Fatalw("failed to start scheduler", "error", err)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%v", a.Config.Port),
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		zap.S().Infow("goldguard-case-api is up and running",
			"port", a.Config.Port,
			"url", a.Config.BaseURL,
			"remote", a.Config.RemoteMode,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.S().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zap.S().Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	sched.Stop()
	if err := srv.Shutdown(ctx); err != nil {
		zap.S().Errorw("server shutdown failed", "error", err)
	}
	a.Close(ctx)
	_ = zap.L().Sync()
}
