package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/zhouzirui/objectchat/backend/internal/config"
	"github.com/zhouzirui/objectchat/backend/internal/handler"
	"github.com/zhouzirui/objectchat/backend/internal/service/ai"
	chatservice "github.com/zhouzirui/objectchat/backend/internal/service/chat"
	"github.com/zhouzirui/objectchat/backend/internal/service/fallback"
	personaservice "github.com/zhouzirui/objectchat/backend/internal/service/persona"
	"github.com/zhouzirui/objectchat/backend/internal/storage/sqlite"
	"github.com/zhouzirui/objectchat/backend/internal/telemetry"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	if _, err := telemetry.InitLogger(); err != nil {
		log.Fatalf("failed to initialize logging: %v", err)
	}

	telemetryCleanup, err := telemetry.InitTelemetry(ctx)
	if err != nil {
		log.Fatalf("failed to initialize telemetry: %v", err)
	}
	defer telemetryCleanup()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	store, err := sqlite.Open(cfg.Storage.SQLitePath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer store.Close()

	// Gateway construction never fails; an unconfigured or unreachable
	// provider just leaves the service on template replies.
	gateway := ai.NewGateway(ctx, cfg.AI)
	resolver := personaservice.NewResolver(gateway)
	bank := fallback.New(time.Now().UnixNano())

	var contexts chatservice.ContextStore
	if cfg.Storage.AnonBackend == config.AnonStoreRedis {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Storage.RedisAddr})
		contexts = chatservice.NewRedisContextStore(rdb, cfg.Storage.AnonTTL)
		slog.Info("anonymous contexts stored in redis", "addr", cfg.Storage.RedisAddr)
	} else {
		contexts = chatservice.NewMemoryContextStore(cfg.Storage.AnonTTL)
	}

	chatSvc := chatservice.NewService(resolver, gateway, bank, contexts, store)

	router := handler.NewRouter(chatSvc, store, store, gateway)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("objectchat backend listening on %s", serverCfg.Addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
