package publisher

import (
	"context"
	"fmt"
	"strconv"
	"time"

	go_redis "github.com/redis/go-redis/v9"

	"referral-miniapp-backend/internal/features/payout/models"
)

const (
	EventTypePayoutRequested = "payout_requested"

	// streamMaxLen приблизительный предел длины стрима (XADD MAXLEN ~)
	streamMaxLen = 100000
)

// Publisher передает заявки на выплату во внешнюю систему
type Publisher interface {
	Publish(ctx context.Context, event models.PayoutEvent) error
}

type RedisStreamPublisher struct {
	rdb    *go_redis.Client
	stream string
}

func NewRedisStreamPublisher(rdb *go_redis.Client, stream string) *RedisStreamPublisher {
	return &RedisStreamPublisher{
		rdb:    rdb,
		stream: stream,
	}
}

// Publish добавляет событие в стрим. Значения пишутся строками, как их читают консьюмеры.
func (p *RedisStreamPublisher) Publish(ctx context.Context, event models.PayoutEvent) error {
	err := p.rdb.XAdd(ctx, &go_redis.XAddArgs{
		Stream: p.stream,
		MaxLen: streamMaxLen,
		Approx: true,
		Values: map[string]interface{}{
			"type":               EventTypePayoutRequested,
			"request_id":         event.RequestID,
			"user_id":            strconv.FormatInt(event.UserID, 10),
			"payment_identifier": event.PaymentIdentifier,
			"kind":               event.Kind,
			"points":             strconv.FormatInt(event.Points, 10),
			"requested_at":       event.RequestedAt.UTC().Format(time.RFC3339Nano),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("xadd %s: %w", p.stream, err)
	}
	return nil
}

// Nop используется, когда публикация выключена
type Nop struct{}

func (Nop) Publish(context.Context, models.PayoutEvent) error { return nil }
