package tikko

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/sync/singleflight"
)

// expiryLeeway is subtracted from the token expiry so a token is refreshed
// before it actually lapses mid-request.
const expiryLeeway = 30 * time.Second

// defaultTokenTTL is assumed when the access token carries no readable exp
// claim.
const defaultTokenTTL = 15 * time.Minute

// TokenSource owns the upstream access token. Concurrent callers hitting an
// expired token share a single refresh request; free-floating refresh state is
// exactly what this type replaces.
type TokenSource struct {
	http         *resty.Client
	refreshToken string

	mu     sync.Mutex
	access string
	expiry time.Time

	sf singleflight.Group
}

func NewTokenSource(baseURL, refreshToken string, timeout time.Duration) *TokenSource {
	// Dedicated client: the refresh call must not recurse through the
	// authenticated client's request hooks.
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout)

	return &TokenSource{
		http:         httpClient,
		refreshToken: refreshToken,
	}
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type refreshResponse struct {
	AccessToken string `json:"access_token"`
}

// Token returns a fresh access token, refreshing it when missing or about to
// expire. Concurrent refresh attempts are deduplicated.
func (t *TokenSource) Token(ctx context.Context) (string, error) {
	const op = "tikko.TokenSource.Token"

	t.mu.Lock()
	if t.access != "" && time.Now().Before(t.expiry.Add(-expiryLeeway)) {
		access := t.access
		t.mu.Unlock()
		return access, nil
	}
	t.mu.Unlock()

	v, err, _ := t.sf.Do("refresh", func() (any, error) {
		// Re-check under the flight: a concurrent caller may have already
		// refreshed before we were scheduled.
		t.mu.Lock()
		if t.access != "" && time.Now().Before(t.expiry.Add(-expiryLeeway)) {
			access := t.access
			t.mu.Unlock()
			return access, nil
		}
		t.mu.Unlock()

		access, expiry, err := t.refresh(ctx)
		if err != nil {
			return "", err
		}

		t.mu.Lock()
		t.access = access
		t.expiry = expiry
		t.mu.Unlock()

		return access, nil
	})
	if err != nil {
		return "", fmt.Errorf("%s:%w", op, err)
	}

	return v.(string), nil
}

// Invalidate drops the cached access token so the next call refreshes. Called
// when the upstream answered 401.
func (t *TokenSource) Invalidate() {
	t.mu.Lock()
	t.access = ""
	t.expiry = time.Time{}
	t.mu.Unlock()
}

func (t *TokenSource) refresh(ctx context.Context) (string, time.Time, error) {
	var out refreshResponse

	resp, err := t.http.R().
		SetContext(ctx).
		SetBody(refreshRequest{RefreshToken: t.refreshToken}).
		SetResult(&out).
		Post("/public/auth/refresh")
	if err != nil {
		return "", time.Time{}, &APIError{Status: 0, Code: CodeNetworkError, Message: err.Error()}
	}

	if resp.IsError() {
		return "", time.Time{}, &APIError{
			Status: resp.StatusCode(),
			Code:   codeForStatus(resp.StatusCode()),
		}
	}

	if out.AccessToken == "" {
		return "", time.Time{}, &APIError{Status: resp.StatusCode(), Code: CodeUnknownError, Message: "empty access token"}
	}

	return out.AccessToken, tokenExpiry(out.AccessToken), nil
}

// tokenExpiry reads the exp claim without verifying the signature; the
// upstream signed the token, we only need the schedule.
func tokenExpiry(access string) time.Time {
	token, _, err := jwt.NewParser().ParseUnverified(access, jwt.MapClaims{})
	if err != nil {
		return time.Now().Add(defaultTokenTTL)
	}

	exp, err := token.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Now().Add(defaultTokenTTL)
	}

	return exp.Time
}
