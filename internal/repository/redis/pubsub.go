package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// CheckoutPubSub announces completed checkouts (either synchronous success or
// a settled PIX charge) to interested listeners such as notification workers.
type CheckoutPubSub struct {
	rdb     *redis.Client
	channel string
}

func NewCheckoutPubSub(rdb *redis.Client) *CheckoutPubSub {
	return &CheckoutPubSub{
		rdb:     rdb,
		channel: ChannelCheckoutCompleted(),
	}
}

type checkoutCompletedMsg struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
	OrderID   string `json:"order_id"`
	TsUnix    int64  `json:"ts_unix"`
}

func (p *CheckoutPubSub) PublishCheckoutCompleted(ctx context.Context, sessionID, orderID string) error {
	msg := checkoutCompletedMsg{
		Type:      "checkout_completed",
		SessionID: sessionID,
		OrderID:   orderID,
		TsUnix:    time.Now().Unix(),
	}

	b, _ := json.Marshal(msg)

	return p.rdb.Publish(ctx, p.channel, b).Err()
}

func (p *CheckoutPubSub) Subscribe(ctx context.Context, handler func(ctx context.Context, sessionID, orderID string)) error {
	sub := p.rdb.Subscribe(ctx, p.channel)
	defer sub.Close()

	ch := sub.Channel(redis.WithChannelSize(256))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			var ev checkoutCompletedMsg
			if err := json.Unmarshal([]byte(m.Payload), &ev); err == nil &&
				ev.SessionID != "" {
				handler(ctx, ev.SessionID, ev.OrderID)
			}
		}
	}
}
