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

	"github.com/xtding233/gacha-mercy/internal/app"
	"github.com/xtding233/gacha-mercy/internal/config"
	"github.com/xtding233/gacha-mercy/internal/gacha"
	"github.com/xtding233/gacha-mercy/internal/game"
	"github.com/xtding233/gacha-mercy/internal/rpc"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		config.Exitf("%v", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, log.Default())
	if err != nil {
		config.Exitf("start: %v", err)
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Printf("close: %v", err)
		}
	}()

	svc := rpc.NewService(a.Tracker)
	if w := game.WatchRules(a.Rules, cfg.WatchInterval, nil, func(rs gacha.RuleSet) {
		if err := svc.SetRules(rs); err != nil {
			log.Printf("apply reloaded rules: %v", err)
		}
	}); w != nil {
		defer w.Stop()
	}

	grpcServer, err := rpc.NewServer(cfg.GRPCAddr, svc, grpc.StatsHandler(otelgrpc.NewServerHandler()))
	if err != nil {
		config.Exitf("grpc: %v", err)
	}
	grpcDone := make(chan error, 1)
	go func() { grpcDone <- grpcServer.Serve(ctx) }()

	httpServer := &http.Server{Addr: cfg.HTTPAddr, Handler: newMux(svc), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	log.Printf("listening on %s ...", cfg.HTTPAddr)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("http: %v", err)
		stop()
	}
	if err := <-grpcDone; err != nil {
		log.Printf("grpc: %v", err)
	}
}
