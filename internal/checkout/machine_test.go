package checkout

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tikko-events/checkout-go/internal/domain"
)

func TestNext_ForwardChain(t *testing.T) {
	tests := []struct {
		name string
		step domain.Step
		free bool
		want domain.Step
	}{
		{"terms to user info", domain.StepTerms, false, domain.StepUserInfo},
		{"user info to coupon", domain.StepUserInfo, false, domain.StepCoupon},
		{"coupon to payment method", domain.StepCoupon, false, domain.StepPaymentMethod},
		{"payment method to payment info", domain.StepPaymentMethod, false, domain.StepPaymentInfo},
		{"payment info to confirmation", domain.StepPaymentInfo, false, domain.StepConfirmation},
		{"free skips payment method", domain.StepCoupon, true, domain.StepConfirmation},
		{"free skips payment info", domain.StepPaymentMethod, true, domain.StepConfirmation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Next(tt.step, EventContinue, tt.free)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNext_BackChain(t *testing.T) {
	tests := []struct {
		name string
		step domain.Step
		free bool
		want domain.Step
	}{
		{"first step is a no-op", domain.StepTerms, false, domain.StepTerms},
		{"user info to terms", domain.StepUserInfo, false, domain.StepTerms},
		{"coupon to user info", domain.StepCoupon, false, domain.StepUserInfo},
		{"payment method to coupon", domain.StepPaymentMethod, false, domain.StepCoupon},
		{"payment info to payment method", domain.StepPaymentInfo, false, domain.StepPaymentMethod},
		{"confirmation to payment info", domain.StepConfirmation, false, domain.StepPaymentInfo},
		{"free confirmation back to coupon", domain.StepConfirmation, true, domain.StepCoupon},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Next(tt.step, EventBack, tt.free)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNext_TerminalEvents(t *testing.T) {
	got, err := Next(domain.StepConfirmation, EventRegistered, false)
	require.NoError(t, err)
	assert.Equal(t, domain.StepSuccess, got)

	got, err = Next(domain.StepConfirmation, EventPixIssued, false)
	require.NoError(t, err)
	assert.Equal(t, domain.StepPixPending, got)

	got, err = Next(domain.StepPixPending, EventPixConfirmed, false)
	require.NoError(t, err)
	assert.Equal(t, domain.StepSuccess, got)
}

func TestNext_IllegalTransitions(t *testing.T) {
	tests := []struct {
		name string
		step domain.Step
		ev   Event
	}{
		{"continue past confirmation", domain.StepConfirmation, EventContinue},
		{"continue past success", domain.StepSuccess, EventContinue},
		{"back from success", domain.StepSuccess, EventBack},
		{"back from pix pending", domain.StepPixPending, EventBack},
		{"registered outside confirmation", domain.StepTerms, EventRegistered},
		{"pix issued outside confirmation", domain.StepPaymentInfo, EventPixIssued},
		{"pix confirmed outside pix pending", domain.StepConfirmation, EventPixConfirmed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Next(tt.step, tt.ev, false)
			var trErr *TransitionError
			require.True(t, errors.As(err, &trErr))
			assert.Equal(t, tt.step, trErr.Step)
			assert.Equal(t, tt.ev, trErr.Event)
		})
	}
}
