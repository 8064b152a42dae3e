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

    "github.com/park285/cheese-chess/internal/chessbuilder"
    appcfg "github.com/park285/cheese-chess/internal/config"
    "github.com/park285/cheese-chess/internal/obslog"
)

func main() {
    if err := obslog.InitFromEnv(); err != nil {
        log.Fatalf("logger init error: %v", err)
    }
    logger := obslog.L()
    defer func() { _ = logger.Sync() }()

    cfg, err := appcfg.Load()
    if err != nil {
        logger.Fatal("config_error", zap.Error(err))
    }

    ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
    defer stop()

    deps, err := chessbuilder.New(ctx, cfg, logger)
    if err != nil {
        logger.Fatal("chess_init_error", zap.Error(err))
    }

    srv := &http.Server{
        Addr:              cfg.ListenAddr,
        Handler:           deps.Handler,
        ReadHeaderTimeout: 10 * time.Second,
    }
    go func() {
        logger.Info("chessd_listening", zap.String("addr", cfg.ListenAddr))
        if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
            logger.Error("chessd_serve_error", zap.Error(err))
            stop()
        }
    }()

    <-ctx.Done()
    logger.Info("chessd_shutdown")
    shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
    defer cancel()
    if err := srv.Shutdown(shutdownCtx); err != nil {
        logger.Warn("chessd_shutdown_error", zap.Error(err))
    }
    if err := deps.Close(); err != nil {
        logger.Warn("chessd_close_error", zap.Error(err))
    }
}
