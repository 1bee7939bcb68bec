package notifier

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/soukly/payments/internal/config"
)

type redisNotifier struct {
	client  *redis.Client
	channel string
	log     *zap.Logger
}

// New builds the notifier. Without a Redis address configured the
// events are only logged, which keeps local development free of a
// broker dependency.
func New(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) Notifier {
	log = log.Named("notifier")

	if cfg.RedisAddr == "" {
		log.Info("redis not configured, lifecycle events are log-only")
		return &logNotifier{log: log}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	lc.Append(fx.StopHook(func() error {
		return client.Close()
	}))

	return &redisNotifier{
		client:  client,
		channel: cfg.EventChannel,
		log:     log,
	}
}

func (n *redisNotifier) Publish(ctx context.Context, event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		n.log.Error("marshal lifecycle event", zap.Error(err))
		return
	}

	if err := n.client.Publish(ctx, n.channel, payload).Err(); err != nil {
		n.log.Warn("publish lifecycle event",
			zap.String("order_id", event.OrderID),
			zap.String("status", event.Status),
			zap.Error(err),
		)
		return
	}

	n.log.Debug("lifecycle event published",
		zap.String("order_id", event.OrderID),
		zap.String("status", event.Status),
	)
}

type logNotifier struct {
	log *zap.Logger
}

func (n *logNotifier) Publish(_ context.Context, event Event) {
	n.log.Info("lifecycle event",
		zap.String("order_id", event.OrderID),
		zap.String("status", event.Status),
		zap.String("currency", event.Currency),
	)
}
