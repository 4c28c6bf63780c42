package checkout

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tikko-events/checkout-go/internal/domain"
	"github.com/tikko-events/checkout-go/internal/tikko"
)

func TestSubmit_CreditCompletesSession(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	sess := sessionAtConfirmation(t, env)

	env.registrations.resp = &tikko.RegistrationResponse{
		OrderID: "ord-123",
		Tickets: []tikko.RegistrationTicket{{ID: "1", Code: "TCK-001"}},
	}

	res, err := env.svc.Submit(ctx, sess.ID)
	require.NoError(t, err)

	assert.False(t, res.PixPending)
	assert.Equal(t, "ord-123", res.OrderID)
	assert.Equal(t, domain.StepSuccess, res.Session.CurrentStep)
	assert.False(t, res.Session.Processing)

	// Payload carries the full payable amount and credit defaults.
	payment := env.registrations.lastReq.Payment
	assert.Equal(t, 11000, payment.TransactionAmount)
	assert.Equal(t, "tok_abc", payment.Token)
	assert.Equal(t, "credit_card", payment.PaymentMethodID)
	assert.Equal(t, 1, payment.Installments)
	assert.True(t, payment.Capture)
	assert.Equal(t, "https://checkout.example.com/callback", payment.CallbackURL)
	assert.Equal(t, sess.ID.String(), payment.ExternalReference)

	user := env.registrations.lastReq.User
	assert.Equal(t, "maria", user.Username)
	assert.Equal(t, "+5511987654321", user.PhoneNumber)
	assert.Equal(t, "maria", user.InstagramProfile)
	assert.Equal(t, "12345678901", user.IdentificationNumber)

	payer := payment.Payer
	assert.Equal(t, "Maria", payer.FirstName)
	assert.Equal(t, "Silva", payer.LastName)
	assert.Equal(t, "CPF", payer.Identification.Type)

	require.Len(t, env.receipts.recorded, 1)
	rec := env.receipts.recorded[0]
	assert.Equal(t, domain.ReceiptConfirmed, rec.Status)
	assert.Equal(t, 11000, rec.TotalCents)
	require.Len(t, env.receipts.tickets[0], 1)
	assert.Equal(t, "TCK-001", env.receipts.tickets[0][0].Code)

	require.Len(t, env.pub.events, 1)
	assert.Equal(t, "ord-123", env.pub.events[0].orderID)
}

func TestSubmit_FreeSendsZeroAmountMarker(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	sess := createSession(t, env, 0)
	_, err := env.svc.AcceptTerms(ctx, sess.ID, true)
	require.NoError(t, err)
	_, err = env.svc.SubmitUserInfo(ctx, sess.ID, validUser(), domain.IdentificationCPF)
	require.NoError(t, err)
	_, err = env.svc.Continue(ctx, sess.ID)
	require.NoError(t, err)

	env.registrations.resp = &tikko.RegistrationResponse{
		OrderID: "ord-free",
		Tickets: []tikko.RegistrationTicket{{Code: "TCK-FREE"}},
	}

	res, err := env.svc.Submit(ctx, sess.ID)
	require.NoError(t, err)

	payment := env.registrations.lastReq.Payment
	assert.Equal(t, 0, payment.TransactionAmount)
	assert.Equal(t, "free", payment.PaymentMethodID)
	assert.Empty(t, payment.Token)

	assert.Equal(t, domain.StepSuccess, res.Session.CurrentStep)

	require.Len(t, env.receipts.recorded, 1)
	assert.Equal(t, domain.PaymentMethodFree, env.receipts.recorded[0].PaymentMethod)
}

func TestSubmit_DiscountBeyondTotalClampsAmount(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	sess := createSession(t, env, 1000)
	_, err := env.svc.AcceptTerms(ctx, sess.ID, true)
	require.NoError(t, err)
	_, err = env.svc.SubmitUserInfo(ctx, sess.ID, validUser(), domain.IdentificationCPF)
	require.NoError(t, err)

	// Discount exceeds price+fee: displayed total goes negative but the
	// upstream payload never does.
	env.coupons.resp = &tikko.CouponPriceResponse{OriginalPrice: 1000, FinalPrice: 0, DiscountApplied: 2000}
	got, err := env.svc.ApplyCoupon(ctx, sess.ID, "BIG", "ip:1.2.3.4")
	require.NoError(t, err)
	assert.Equal(t, -1100, got.TotalCents())
	assert.True(t, got.IsFree())

	_, err = env.svc.Continue(ctx, sess.ID)
	require.NoError(t, err)

	env.registrations.resp = &tikko.RegistrationResponse{OrderID: "ord-big"}
	_, err = env.svc.Submit(ctx, sess.ID)
	require.NoError(t, err)

	assert.Equal(t, 0, env.registrations.lastReq.Payment.TransactionAmount)
	assert.Equal(t, "free", env.registrations.lastReq.Payment.PaymentMethodID)
	assert.Equal(t, 0, env.receipts.recorded[0].TotalCents)
}

func TestSubmit_PixMovesToPixPending(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	sess := sessionAtConfirmation(t, env)

	// payment_id arrives as a JSON number.
	var resp tikko.RegistrationResponse
	require.NoError(t, json.Unmarshal([]byte(`{"qr_code":"00020126QR","payment_id":987654}`), &resp))
	env.registrations.resp = &resp

	res, err := env.svc.Submit(ctx, sess.ID)
	require.NoError(t, err)

	assert.True(t, res.PixPending)
	assert.Equal(t, "00020126QR", res.QRCode)
	assert.Equal(t, "987654", res.PaymentID)
	assert.Equal(t, domain.StepPixPending, res.Session.CurrentStep)

	require.Len(t, env.receipts.recorded, 1)
	rec := env.receipts.recorded[0]
	assert.Equal(t, domain.ReceiptPendingPix, rec.Status)
	assert.Equal(t, "987654", rec.PaymentID)

	assert.Empty(t, env.pub.events)
}

func TestSubmit_GatewayFailureKeepsConfirmation(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	sess := sessionAtConfirmation(t, env)

	env.registrations.err = &tikko.APIError{Status: 502, Code: "UPSTREAM_ERROR"}

	_, err := env.svc.Submit(ctx, sess.ID)
	require.Error(t, err)

	got, err := env.svc.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StepConfirmation, got.CurrentStep)
	assert.False(t, got.Processing)
	assert.Empty(t, env.receipts.recorded)
}

func TestSubmit_SecondSubmitWhileProcessing(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	sess := sessionAtConfirmation(t, env)

	env.registrations.onRegister = func() {
		_, err := env.svc.Submit(ctx, sess.ID)
		assert.ErrorIs(t, err, ErrSubmitInProgress)
	}
	env.registrations.resp = &tikko.RegistrationResponse{OrderID: "ord-1"}

	_, err := env.svc.Submit(ctx, sess.ID)
	require.NoError(t, err)
}

func TestSubmit_SessionClosedInFlight(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	sess := sessionAtConfirmation(t, env)

	// The session disappears while the registration call is in flight; the
	// response must be discarded.
	env.registrations.onRegister = func() {
		require.NoError(t, env.svc.Close(ctx, sess.ID))
	}
	env.registrations.resp = &tikko.RegistrationResponse{OrderID: "ord-late"}

	_, err := env.svc.Submit(ctx, sess.ID)
	assert.ErrorIs(t, err, ErrSessionClosed)
	assert.Empty(t, env.receipts.recorded)
}

func TestPaymentStatus_PendingThenApproved(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	sess := sessionAtConfirmation(t, env)

	var resp tikko.RegistrationResponse
	require.NoError(t, json.Unmarshal([]byte(`{"qr_code":"00020126QR","payment_id":"pay-1"}`), &resp))
	env.registrations.resp = &resp

	_, err := env.svc.Submit(ctx, sess.ID)
	require.NoError(t, err)

	env.registrations.statusResp = &tikko.PaymentStatusResponse{Status: tikko.PaymentStatusPending}

	st, err := env.svc.PaymentStatus(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StepPixPending, st.Step)
	assert.Equal(t, tikko.PaymentStatusPending, st.Status)
	assert.Equal(t, "00020126QR", st.QRCode)

	env.registrations.statusResp = &tikko.PaymentStatusResponse{Status: tikko.PaymentStatusApproved}

	st, err = env.svc.PaymentStatus(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StepSuccess, st.Step)
	assert.Equal(t, tikko.PaymentStatusApproved, st.Status)

	assert.Equal(t, []string{"pay-1"}, env.receipts.confirmed)
	require.Len(t, env.pub.events, 1)

	// Terminal sessions answer approved without an upstream call.
	env.registrations.statusErr = &tikko.APIError{Status: 500}
	st, err = env.svc.PaymentStatus(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, tikko.PaymentStatusApproved, st.Status)
}

func TestSweepPendingPix(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	sess := sessionAtConfirmation(t, env)

	var resp tikko.RegistrationResponse
	require.NoError(t, json.Unmarshal([]byte(`{"qr_code":"00020126QR","payment_id":"pay-7"}`), &resp))
	env.registrations.resp = &resp

	_, err := env.svc.Submit(ctx, sess.ID)
	require.NoError(t, err)

	env.receipts.pending = []domain.Receipt{{SessionID: sess.ID, PaymentID: "pay-7", Status: domain.ReceiptPendingPix}}
	env.registrations.statusResp = &tikko.PaymentStatusResponse{Status: tikko.PaymentStatusApproved}

	n, err := env.svc.SweepPendingPix(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := env.svc.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StepSuccess, got.CurrentStep)
	assert.Contains(t, env.receipts.confirmed, "pay-7")
}

func TestSweepPendingPix_ExpiredSessionStillConfirms(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	env.receipts.pending = []domain.Receipt{{PaymentID: "pay-gone", Status: domain.ReceiptPendingPix}}
	env.registrations.statusResp = &tikko.PaymentStatusResponse{Status: tikko.PaymentStatusApproved}

	n, err := env.svc.SweepPendingPix(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"pay-gone"}, env.receipts.confirmed)
}

func TestReceipt_NotFound(t *testing.T) {
	env := newTestEnv()

	_, err := env.svc.Receipt(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrOrderNotFound)
}
