package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/er1ck02/blobbet-server/internal/config"
	"github.com/er1ck02/blobbet-server/internal/game"
	"github.com/er1ck02/blobbet-server/internal/logging"
	"github.com/er1ck02/blobbet-server/internal/transport"
)

func main() {
	configPath := flag.String("config", "", "path to a .toml or .yaml config file (env BLOBBET_CONFIG)")
	flag.Parse()

	// .env is optional; real environment variables win over it
	envErr := godotenv.Load()
	if envErr != nil && !errors.Is(envErr, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", envErr)
		os.Exit(1)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log, err := logging.New(cfg.Logging)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		path = os.Getenv("BLOBBET_CONFIG")
	}
	cfg := config.Default()
	if path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return nil, err
		}
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conns := transport.NewConnManager(log.Named("conns"))
	registry := game.NewRegistry(cfg, conns, log.Named("rooms"))
	loop := game.NewLoop(registry, cfg, log.Named("loop"))

	mux := http.NewServeMux()
	mux.Handle(cfg.Server.WebSocketPath, transport.NewHandler(registry, conns, cfg, log.Named("ws")))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	if cfg.Server.StaticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(cfg.Server.StaticDir)))
	}

	srv := &http.Server{Addr: cfg.Server.BindAddress, Handler: mux}

	go loop.Run(ctx)

	errc := make(chan error, 1)
	go func() {
		log.Info("server listening",
			zap.String("addr", cfg.Server.BindAddress),
			zap.String("ws", cfg.Server.WebSocketPath),
			zap.Float64("world_w", cfg.World.Width),
			zap.Float64("world_h", cfg.World.Height))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	// Hijacked websocket connections are not closed by Shutdown
	conns.CloseAll()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
