package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tikko-events/checkout-go/internal/domain"
	"github.com/tikko-events/checkout-go/internal/repository"
	"github.com/tikko-events/checkout-go/internal/tikko"
)

func setupRedis(t *testing.T) (*goredis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

func TestSessionStore_RoundTrip(t *testing.T) {
	client, mr := setupRedis(t)
	store := NewSessionStore(client, time.Minute)
	ctx := context.Background()

	sess := &domain.CheckoutSession{
		ID:              uuid.New(),
		EventID:         42,
		TicketPricingID: 7,
		PriceCents:      10000,
		FeeCents:        1000,
		CurrentStep:     domain.StepCoupon,
		TermsAccepted:   true,
		Discount:        &domain.Discount{Code: "PROMO10", AmountCents: 1000},
	}

	require.NoError(t, store.Save(ctx, sess))

	got, err := store.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, got.ID)
	assert.Equal(t, domain.StepCoupon, got.CurrentStep)
	require.NotNil(t, got.Discount)
	assert.Equal(t, "PROMO10", got.Discount.Code)

	// TTL is set on write.
	assert.Greater(t, mr.TTL(KeySession(sess.ID.String())), time.Duration(0))

	require.NoError(t, store.Delete(ctx, sess.ID))

	_, err = store.Get(ctx, sess.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	err = store.Delete(ctx, sess.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSessionStore_ExpiredSessionIsGone(t *testing.T) {
	client, mr := setupRedis(t)
	store := NewSessionStore(client, time.Minute)
	ctx := context.Background()

	sess := &domain.CheckoutSession{ID: uuid.New(), CurrentStep: domain.StepTerms}
	require.NoError(t, store.Save(ctx, sess))

	mr.FastForward(2 * time.Minute)

	_, err := store.Get(ctx, sess.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestIdempotencyStore(t *testing.T) {
	client, _ := setupRedis(t)
	store := NewIdempotencyStore(client, time.Hour)
	ctx := context.Background()

	key := KeyIdemSubmit(uuid.NewString(), "idem-1")

	locked, err := store.AcquireLock(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.True(t, locked)

	// Second lock attempt fails while in flight.
	locked, err = store.AcquireLock(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.False(t, locked)

	// No result yet: the value is still the lock marker.
	_, ok, err := store.GetResult(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.SaveResult(ctx, key, `{"order_id":"ord-1"}`))

	payload, ok, err := store.GetResult(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"order_id":"ord-1"}`, payload)

	require.NoError(t, store.Release(ctx, key))

	_, ok, err = store.GetResult(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSlidingWindowLimiter(t *testing.T) {
	client, _ := setupRedis(t)
	limiter := NewSlidingWindowLimiter(client, "coupon", 3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, _, _, err := limiter.Allow(ctx, "ip:1.2.3.4")
		require.NoError(t, err)
		assert.True(t, allowed)
	}

	allowed, current, retry, err := limiter.Allow(ctx, "ip:1.2.3.4")
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Equal(t, int64(4), current)
	assert.Greater(t, retry, time.Duration(0))

	// Another client is unaffected.
	allowed, _, _, err = limiter.Allow(ctx, "ip:5.6.7.8")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestCachingCouponGateway(t *testing.T) {
	client, _ := setupRedis(t)
	cache := NewCache(client)
	ctx := context.Background()

	calls := 0
	upstream := couponPricerFunc(func(_ context.Context, req tikko.CouponPriceRequest) (*tikko.CouponPriceResponse, error) {
		calls++
		return &tikko.CouponPriceResponse{OriginalPrice: 10000, FinalPrice: 9000, DiscountApplied: 1000}, nil
	})

	gw := NewCachingCouponGateway(upstream, cache, time.Minute)

	req := tikko.CouponPriceRequest{EventID: 42, TicketPricingID: 7, Coupon: "PROMO10"}

	first, err := gw.CouponPrice(ctx, req)
	require.NoError(t, err)
	second, err := gw.CouponPrice(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)

	// A different coupon misses the cache.
	req.Coupon = "OTHER"
	_, err = gw.CouponPrice(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

type couponPricerFunc func(ctx context.Context, req tikko.CouponPriceRequest) (*tikko.CouponPriceResponse, error)

func (f couponPricerFunc) CouponPrice(ctx context.Context, req tikko.CouponPriceRequest) (*tikko.CouponPriceResponse, error) {
	return f(ctx, req)
}
