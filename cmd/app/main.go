package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/taskboard/internal/cache"
	"github.com/BuzzLyutic/taskboard/internal/config"
	"github.com/BuzzLyutic/taskboard/internal/gateway"
	"github.com/BuzzLyutic/taskboard/internal/handler"
	"github.com/BuzzLyutic/taskboard/internal/remote"
	"github.com/BuzzLyutic/taskboard/internal/service"
	"github.com/BuzzLyutic/taskboard/internal/worker"
)

func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Подключаем логгер
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	// Локальный кэш задач
	backend, err := openCache(context.Background(), cfg)
	if err != nil {
		logger.Fatal("Failed to open cache", zap.String("backend", cfg.CacheBackend), zap.Error(err))
	}
	tasksCache := cache.New(backend)
	defer tasksCache.Close()

	if err := tasksCache.Init(context.Background()); err != nil {
		logger.Fatal("Failed to init cache", zap.Error(err))
	}

	client := remote.NewClient(cfg.TodosURL, cfg.RequestTimeout)
	gw := gateway.New(client, tasksCache, logger)
	board := service.NewBoard(gw, logger, cfg.PageSize)

	loadCtx, cancelLoad := context.WithTimeout(context.Background(), cfg.RequestTimeout)
	src := board.Load(loadCtx)
	cancelLoad()
	logger.Info("Board ready", zap.Stringer("source", src), zap.String("todos", cfg.TodosURL))

	refresher := worker.NewRefresher(board, logger, cfg.RefreshInterval, cfg.RequestTimeout)
	refresher.Start(context.Background())

	r := chi.NewRouter() // Создаем роутер
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"ok"}`)
	})

	handler.NewBoardHandler(board, cfg.PageSize, logger).Routes(r)

	srv := http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() { // Запуск сервера и обработка ошибок
		logger.Info("Server started", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	logger.Info("Shutting down server...")
	refresher.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Shutdown error", zap.Error(err))
	}
	logger.Info("Server stopped successfully!")
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	zc.Level = lvl
	return zc.Build()
}

func openCache(ctx context.Context, cfg config.Config) (cache.Backend, error) {
	switch cfg.CacheBackend {
	case config.CacheMemory:
		return cache.NewMemoryStore(), nil
	case config.CachePostgres:
		return cache.OpenPostgresStore(ctx, cfg.DatabaseURL, cfg.CacheKey)
	case config.CacheMongo:
		return cache.OpenMongoStore(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.CacheKey)
	default:
		path := cfg.CachePath
		if path == "" {
			p, err := cache.DefaultPath()
			if err != nil {
				return nil, err
			}
			path = p
		}
		return cache.NewFileStore(path), nil
	}
}
