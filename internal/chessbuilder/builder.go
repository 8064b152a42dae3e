package chessbuilder

import (
    "context"
    "fmt"
    "net/http"
    "strings"

    "go.uber.org/zap"

    "github.com/park285/cheese-chess/internal/archive"
    "github.com/park285/cheese-chess/internal/config"
    "github.com/park285/cheese-chess/internal/msgcat"
    "github.com/park285/cheese-chess/internal/netsync"
    "github.com/park285/cheese-chess/internal/notify"
    "github.com/park285/cheese-chess/internal/store"
)

type Deps struct {
    Store    *store.Store
    Repo     archive.Repository
    Archiver *archive.Archiver
    Notifier notify.Notifier
    Catalog  *msgcat.Catalog
    Hub      *netsync.Hub
    Handler  http.Handler
}

// New connects Redis (required) and Postgres (optional; the in-memory archive
// is used without DATABASE_URL) and wires the hub.
func New(ctx context.Context, cfg *config.AppConfig, logger *zap.Logger) (*Deps, error) {
    if cfg == nil {
        return nil, fmt.Errorf("nil config")
    }
    if logger == nil {
        logger = zap.NewNop()
    }

    st, err := store.Open(ctx, cfg.RedisURL,
        store.WithTTL(cfg.GameTTL()),
        store.WithMaxGames(cfg.MaxConcurrentGames),
        store.WithLogger(logger),
    )
    if err != nil {
        return nil, fmt.Errorf("init game store: %w", err)
    }

    var repo archive.Repository
    if strings.TrimSpace(cfg.DatabaseURL) != "" {
        pg, err := archive.Open(ctx, cfg.DatabaseURL)
        if err != nil {
            _ = st.Close()
            return nil, fmt.Errorf("init archive: %w", err)
        }
        repo = pg
    } else {
        logger.Warn("chess_archive_in_memory", zap.String("reason", "DATABASE_URL not set"))
        repo = archive.NewMemoryRepository()
    }

    cat, err := msgcat.New(cfg.Locale, cfg.MessagesDir)
    if err != nil {
        _ = st.Close()
        _ = repo.Close()
        return nil, fmt.Errorf("load messages: %w", err)
    }

    var notifier notify.Notifier = notify.Nop{}
    if cfg.WebhookURL != "" {
        opts := []notify.Option{notify.WithLogger(logger)}
        if token := cfg.WebhookToken; token != "" {
            opts = append(opts, notify.WithHeaderProvider(func() map[string]string {
                return map[string]string{"Authorization": "Bearer " + token}
            }))
        }
        notifier = notify.NewWebhook(cfg.WebhookURL, opts...)
    }

    archiver := archive.NewArchiver(repo, logger)
    hub := netsync.NewHub(st,
        netsync.WithArchiver(archiver),
        netsync.WithNotifier(notifier),
        netsync.WithCatalog(cat),
        netsync.WithHubLogger(logger),
    )

    return &Deps{
        Store:    st,
        Repo:     repo,
        Archiver: archiver,
        Notifier: notifier,
        Catalog:  cat,
        Hub:      hub,
        Handler:  netsync.NewHandler(hub, repo),
    }, nil
}

// Close waits for pending webhook deliveries and releases connections.
func (d *Deps) Close() error {
    if d == nil {
        return nil
    }
    if d.Hub != nil {
        d.Hub.Wait()
    }
    var firstErr error
    if d.Repo != nil {
        if err := d.Repo.Close(); err != nil {
            firstErr = err
        }
    }
    if d.Store != nil {
        if err := d.Store.Close(); err != nil && firstErr == nil {
            firstErr = err
        }
    }
    return firstErr
}
