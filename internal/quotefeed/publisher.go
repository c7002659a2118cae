// Package quotefeed pushes finished quotes over redis pub/sub for the
// dashboard. It is strictly fire-and-forget: the router never fails a
// quote because the feed is down.
package quotefeed

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/CorentinGC/venus-optimizer/internal/router"
)

type Publisher struct {
	rdb     *redis.Client
	channel string
}

func NewPublisher(addr, channel string) *Publisher {
	return &Publisher{
		rdb:     redis.NewClient(&redis.Options{Addr: addr}),
		channel: channel,
	}
}

// PublishQuote broadcasts the result on the channel and keeps the most
// recent one under <channel>:last for late-joining consumers.
func (p *Publisher) PublishQuote(ctx context.Context, res *router.Result) error {
	b, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("marshal quote: %w", err)
	}
	if err := p.rdb.Publish(ctx, p.channel, b).Err(); err != nil {
		return fmt.Errorf("publish quote: %w", err)
	}
	if err := p.rdb.Set(ctx, p.channel+":last", b, 0).Err(); err != nil {
		return fmt.Errorf("store last quote: %w", err)
	}
	return nil
}

func (p *Publisher) Close() error {
	return p.rdb.Close()
}
