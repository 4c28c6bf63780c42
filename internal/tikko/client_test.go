package tikko

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCouponPrice_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/public/coupon/price", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"original_price":10000,"final_price":9000,"discount_applied":1000}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL}, nil)

	resp, err := c.CouponPrice(context.Background(), CouponPriceRequest{
		EventID:         42,
		TicketPricingID: 7,
		Coupon:          "PROMO10",
	})
	require.NoError(t, err)
	assert.Equal(t, 10000, resp.OriginalPrice)
	assert.Equal(t, 9000, resp.FinalPrice)
	assert.Equal(t, 1000, resp.DiscountApplied)
}

func TestClient_NormalizesUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"code":"INVALID_COUPON","message":"coupon does not exist"}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL}, nil)

	_, err := c.CouponPrice(context.Background(), CouponPriceRequest{Coupon: "NOPE"})
	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, 404, apiErr.Status)
	assert.Equal(t, "INVALID_COUPON", apiErr.Code)
	assert.Equal(t, "coupon does not exist", apiErr.Message)
}

func TestClient_FallsBackToStatusCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL}, nil)

	_, err := c.CouponPrice(context.Background(), CouponPriceRequest{Coupon: "X"})
	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, 400, apiErr.Status)
	assert.Equal(t, "BAD_REQUEST", apiErr.Code)
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 2 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"original_price":100,"final_price":100,"discount_applied":0}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL}, nil)

	_, err := c.CouponPrice(context.Background(), CouponPriceRequest{Coupon: "X"})
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_GivesUpAfterRetryBudget(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL}, nil)

	_, err := c.CouponPrice(context.Background(), CouponPriceRequest{Coupon: "X"})
	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, 500, apiErr.Status)
	// initial attempt plus two retries
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_NetworkErrorHasZeroStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, Timeout: time.Second}, nil)

	_, err := c.CouponPrice(context.Background(), CouponPriceRequest{Coupon: "X"})
	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, 0, apiErr.Status)
	assert.Equal(t, CodeNetworkError, apiErr.Code)
}

func TestClient_UnauthorizedInvalidatesToken(t *testing.T) {
	var refreshes atomic.Int32
	var apiCalls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/public/auth/refresh":
			refreshes.Add(1)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"access_token":"opaque-token"}`))
		default:
			apiCalls.Add(1)
			assert.Equal(t, "Bearer opaque-token", r.Header.Get("Authorization"))
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"code":"UNAUTHORIZED"}`))
		}
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, RefreshToken: "refresh-1"}, nil)

	_, err := c.CouponPrice(context.Background(), CouponPriceRequest{Coupon: "X"})
	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, 401, apiErr.Status)

	// Second call must refresh again because the 401 dropped the cached token.
	_, err = c.CouponPrice(context.Background(), CouponPriceRequest{Coupon: "X"})
	require.Error(t, err)
	assert.GreaterOrEqual(t, refreshes.Load(), int32(2))
}

func TestAPIError_Unwrapping(t *testing.T) {
	var target *APIError
	err := error(&APIError{Status: 404, Code: "NOT_FOUND"})
	assert.True(t, errors.As(err, &target))
	assert.Equal(t, 404, target.Status)
}
