package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/yungbote/tenderbridge-backend/internal/app"
)

func main() {
	application, err := app.New()
	if err != nil {
		fmt.Printf("Failed to init app: %v\n", err)
		os.Exit(1)
	}
	defer application.Close()

	application.Start()

	errCh := make(chan error, 1)
	go func() { errCh <- application.Run() }()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			application.Log.Error("Server stopped", "error", err)
			application.Close()
			os.Exit(1)
		}
	case s := <-sig:
		application.Log.Info("Shutting down", "signal", s.String())
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		if err := application.Shutdown(ctx); err != nil {
			application.Log.Warn("Graceful shutdown failed", "error", err)
		}
		cancel()
	}
}
