package checkout

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

var (
	ErrSessionNotFound       = errors.New("checkout session not found")
	ErrSessionClosed         = errors.New("checkout session closed")
	ErrTermsNotAccepted      = errors.New("terms must be accepted")
	ErrUserInfoRequired      = errors.New("user info must be submitted first")
	ErrPaymentMethodRequired = errors.New("payment method must be selected")
	ErrPaymentDataRequired   = errors.New("payment data must be submitted")
	ErrCouponRequired        = errors.New("coupon code is empty")
	ErrSubmitInProgress      = errors.New("registration already in progress")
	ErrOrderNotFound         = errors.New("order not found")
)

// RateLimitedError is returned when coupon validation attempts exceed the
// per-client budget.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited, retry in %s", e.RetryAfter)
}

// ValidationError carries all user-info field errors at once so the caller
// can render every message without a second round-trip.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		names = append(names, f)
	}
	sort.Strings(names)
	return "invalid user info: " + strings.Join(names, ", ")
}
