package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/hireloop/ai-interviewer/internal/config"
	"github.com/hireloop/ai-interviewer/internal/db"
	"github.com/hireloop/ai-interviewer/internal/logger"
	"github.com/hireloop/ai-interviewer/internal/resume"
	"github.com/hireloop/ai-interviewer/internal/storage"
	"github.com/hireloop/ai-interviewer/internal/store/rabbitmq"
)

func workerConcurrency() int {
	v := os.Getenv("WORKER_CONCURRENCY")
	if v == "" {
		return 2
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 2
	}
	if n > 50 {
		return 50
	}
	return n
}

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

	files, err := newFileStore(cfg.Storage)
	if err != nil {
		zlog.Fatal("storage", zap.Error(err))
	}

	svc := resume.NewService(gdb, files, noopPublisher{})

	conn, err := amqp.Dial(cfg.Rabbit.URL)
	if err != nil {
		zlog.Fatal("rabbit dial", zap.Error(err))
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		zlog.Fatal("rabbit channel", zap.Error(err))
	}
	defer ch.Close()

	if err := rabbitmq.DeclareQueues(ch, cfg.Rabbit.Queue); err != nil {
		zlog.Fatal("queue declare", zap.Error(err))
	}

	concurrency := workerConcurrency()
	if err := ch.Qos(concurrency, 0, false); err != nil {
		zlog.Fatal("qos", zap.Error(err))
	}

	msgs, err := ch.Consume(cfg.Rabbit.Queue, "", false, false, false, false, nil)
	if err != nil {
		zlog.Fatal("consume", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	zlog.Info("worker started",
		zap.String("queue", cfg.Rabbit.Queue), zap.Int("concurrency", concurrency))

	jobs := make(chan amqp.Delivery, concurrency*2)

	var wg sync.WaitGroup
	wg.Add(concurrency)
	for i := 0; i < concurrency; i++ {
		go func(workerID int) {
			defer wg.Done()
			for d := range jobs {
				var m rabbitmq.JobMessage
				if err := json.Unmarshal(d.Body, &m); err != nil || m.ResumeID == "" {
					zlog.Error("bad message", zap.Int("worker", workerID), zap.Error(err))
					_ = d.Nack(false, false)
					continue
				}

				start := time.Now()
				if err := svc.HandleExtraction(ctx, m.ResumeID); err != nil {
					zlog.Error("extraction failed",
						zap.Int("worker", workerID),
						zap.String("resume_id", m.ResumeID),
						zap.Duration("cost", time.Since(start)),
						zap.Error(err))
					_ = d.Nack(false, false)
					continue
				}

				if err := d.Ack(false); err != nil {
					zlog.Error("ack failed",
						zap.Int("worker", workerID),
						zap.String("resume_id", m.ResumeID),
						zap.Error(err))
				}
			}
		}(i)
	}

	for {
		select {
		case <-ctx.Done():
			zlog.Info("worker shutting down")
			close(jobs)
			wg.Wait()
			return

		case d, ok := <-msgs:
			if !ok {
				zlog.Warn("delivery channel closed")
				time.Sleep(1 * time.Second)
				continue
			}
			jobs <- d
		}
	}
}

// noopPublisher satisfies the resume service; the worker only consumes.
type noopPublisher struct{}

func (noopPublisher) PublishExtraction(ctx context.Context, resumeID string) error { return nil }

func newFileStore(cfg config.StorageConfig) (storage.FileStore, error) {
	switch cfg.Type {
	case "", "local":
		return storage.NewLocalStore(cfg.LocalPath), nil
	case "minio":
		return storage.NewMinioStore(cfg.MinioEndpoint, cfg.MinioAccessKey,
			cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
	default:
		return nil, errors.New("unknown storage type: " + cfg.Type)
	}
}
