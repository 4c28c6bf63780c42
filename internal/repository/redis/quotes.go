package redis

import (
	"context"
	"time"

	"github.com/tikko-events/checkout-go/internal/tikko"
)

// CouponPricer is the upstream quote call being decorated.
type CouponPricer interface {
	CouponPrice(ctx context.Context, req tikko.CouponPriceRequest) (*tikko.CouponPriceResponse, error)
}

// CachingCouponGateway caches successful coupon quotes per (event, pricing,
// code) for a short TTL. Rejections and upstream failures pass through
// uncached so a retried code is re-validated.
type CachingCouponGateway struct {
	next  CouponPricer
	cache *Cache
	ttl   time.Duration
}

func NewCachingCouponGateway(next CouponPricer, cache *Cache, ttl time.Duration) *CachingCouponGateway {
	if ttl <= 0 {
		ttl = 60 * time.Second
	}

	return &CachingCouponGateway{next: next, cache: cache, ttl: ttl}
}

func (g *CachingCouponGateway) CouponPrice(ctx context.Context, req tikko.CouponPriceRequest) (*tikko.CouponPriceResponse, error) {
	key := KeyCouponQuote(req.EventID, req.TicketPricingID, req.Coupon)

	quote, err := GetOrSetJSON(
		ctx,
		g.cache,
		key,
		g.ttl,
		func(ctx context.Context) (tikko.CouponPriceResponse, error) {
			resp, err := g.next.CouponPrice(ctx, req)
			if err != nil {
				return tikko.CouponPriceResponse{}, err
			}
			return *resp, nil
		},
	)
	if err != nil {
		return nil, err
	}

	return &quote, nil
}
