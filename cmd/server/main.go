package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hireloop/ai-interviewer/internal/ai"
	"github.com/hireloop/ai-interviewer/internal/common"
	"github.com/hireloop/ai-interviewer/internal/config"
	"github.com/hireloop/ai-interviewer/internal/db"
	"github.com/hireloop/ai-interviewer/internal/httpapi"
	"github.com/hireloop/ai-interviewer/internal/httpapi/handlers"
	"github.com/hireloop/ai-interviewer/internal/interview"
	"github.com/hireloop/ai-interviewer/internal/logger"
	"github.com/hireloop/ai-interviewer/internal/models"
	"github.com/hireloop/ai-interviewer/internal/resume"
	"github.com/hireloop/ai-interviewer/internal/storage"
	"github.com/hireloop/ai-interviewer/internal/store/rabbitmq"
	"github.com/hireloop/ai-interviewer/internal/store/redisstore"
)

func main() {
	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zlog, err := logger.New(cfg.Server.Mode == "release", cfg.Server.Mode != "release")
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zlog.Sync()

	gdb, err := db.Connect(cfg.Database.DSN)
	if err != nil {
		zlog.Fatal("db connect", zap.Error(err))
	}
	if err := db.Migrate(gdb); err != nil {
		zlog.Fatal("db migrate", zap.Error(err))
	}

	rds := redisstore.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	defer rds.Close()
	{
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := rds.Ping(ctx); err != nil {
			zlog.Warn("redis unreachable, snapshots and conn locks degraded", zap.Error(err))
		}
		cancel()
	}

	pub, err := rabbitmq.NewPublisher(cfg.Rabbit.URL, cfg.Rabbit.Queue)
	if err != nil {
		zlog.Fatal("rabbit connect", zap.Error(err))
	}
	defer pub.Close()

	files, err := newFileStore(cfg.Storage)
	if err != nil {
		zlog.Fatal("storage", zap.Error(err))
	}

	oracle, err := newOracle(cfg.Oracle)
	if err != nil {
		zlog.Fatal("oracle", zap.Error(err))
	}

	weights := make(map[interview.Category]float64, len(cfg.Weights))
	for k, v := range cfg.Weights {
		weights[interview.Category(k)] = v
	}

	dir := models.NewDirectory(gdb)
	repo := interview.NewRepo(gdb)
	orch := interview.NewOrchestrator(repo, dir, oracle, rds, weights, common.NewULID, zlog)

	resumeSvc := resume.NewService(gdb, files, pub)

	h := handlers.NewHandler(gdb, cfg, zlog, orch, repo, resumeSvc)
	gw := httpapi.NewGateway(orch, rds, zlog)
	router := httpapi.NewRouter(h, gw, cfg, zlog)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zlog.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("listen", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	zlog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("shutdown", zap.Error(err))
	}
}

func newFileStore(cfg config.StorageConfig) (storage.FileStore, error) {
	switch strings.ToLower(cfg.Type) {
	case "", "local":
		return storage.NewLocalStore(cfg.LocalPath), nil
	case "minio":
		return storage.NewMinioStore(cfg.MinioEndpoint, cfg.MinioAccessKey,
			cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
	default:
		return nil, errors.New("unknown storage type: " + cfg.Type)
	}
}

// newOracle builds the configured provider and wraps it with the retry
// policy. All turns in the process share one provider instance.
func newOracle(cfg config.OracleConfig) (ai.Provider, error) {
	reg := ai.NewRegistry()

	reg.Register("heuristic", func(ctx context.Context, model string) (ai.Provider, error) {
		return ai.NewHeuristicProvider(), nil
	})
	reg.Register("ollama", func(ctx context.Context, model string) (ai.Provider, error) {
		m := strings.TrimSpace(model)
		if m == "" {
			m = "llama3:latest"
		}
		return ai.NewOllamaProvider(cfg.BaseURL, m), nil
	})
	reg.Register("openai", func(ctx context.Context, model string) (ai.Provider, error) {
		return ai.NewOpenAIProvider(cfg.BaseURL, cfg.APIKey, model), nil
	})

	p, err := reg.Get(context.Background(), cfg.Provider, cfg.Model)
	if err != nil {
		return nil, err
	}
	return ai.WithRetry(p, ai.RetryConfig{
		MaxRetries:    cfg.MaxRetries,
		Backoff:       cfg.RetryBackoff,
		InvokeTimeout: cfg.InvokeTimeout,
	}), nil
}
