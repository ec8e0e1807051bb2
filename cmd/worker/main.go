package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"hadhin/internal/config"
	"hadhin/internal/logging"
	"hadhin/internal/notify"
	"hadhin/internal/store"
)

// Worker drains the guardian notification queue. Actual delivery (push,
// email) is not wired up: each message is logged so an operator can verify
// the pipeline end to end.
func main() {
	cfg := config.Load()
	log := logging.New(cfg.Env)
	defer log.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info("shutdown signal received")
		cancel()
	}()

	var q notify.Queue
	if cfg.QueueBackend == "memory" {
		q = notify.NewInMemory(64)
	} else {
		redisClient := store.NewRedis(cfg.RedisAddr)
		q = notify.NewRedisQueue(redisClient.Client, "")
	}

	messages, err := q.Consume(ctx)
	if err != nil {
		log.Fatal("queue consume init failed", zap.Error(err))
	}

	log.Info("worker started, waiting for messages")
	for msg := range messages {
		log.Info("notification",
			zap.String("kind", msg.Kind),
			zap.Int64("child_id", msg.ChildID),
			zap.String("child_name", msg.ChildName),
			zap.Int64("parent_id", msg.ParentID),
			zap.String("body", msg.Body),
			zap.Time("at", msg.At),
		)
	}

	log.Info("worker stopped")
}
