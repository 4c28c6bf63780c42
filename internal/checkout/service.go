package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tikko-events/checkout-go/internal/domain"
	"github.com/tikko-events/checkout-go/internal/repository"
	"github.com/tikko-events/checkout-go/internal/tikko"
)

// SessionStore keeps live checkout sessions. Missing sessions surface as
// repository.ErrNotFound.
type SessionStore interface {
	Save(ctx context.Context, s *domain.CheckoutSession) error
	Get(ctx context.Context, id uuid.UUID) (*domain.CheckoutSession, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// CouponGateway validates a coupon against an event pricing upstream.
type CouponGateway interface {
	CouponPrice(ctx context.Context, req tikko.CouponPriceRequest) (*tikko.CouponPriceResponse, error)
}

// RegistrationGateway performs registration/ticket issuance and reports the
// state of asynchronous payments.
type RegistrationGateway interface {
	RegisterAndJoinEvent(ctx context.Context, req tikko.RegistrationRequest) (*tikko.RegistrationResponse, error)
	PaymentStatus(ctx context.Context, paymentID string) (*tikko.PaymentStatusResponse, error)
}

// ReceiptStore records completed checkouts and the pending-PIX work queue.
type ReceiptStore interface {
	Record(ctx context.Context, r *domain.Receipt, tickets []domain.Ticket) error
	Get(ctx context.Context, id uuid.UUID) (*domain.ReceiptWithTickets, error)
	MarkPixConfirmed(ctx context.Context, paymentID string) (*domain.Receipt, error)
	ListPendingPix(ctx context.Context, limit int) ([]domain.Receipt, error)
}

// Limiter bounds coupon validation attempts per client.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, int64, time.Duration, error)
}

// Publisher announces completed checkouts to interested listeners.
type Publisher interface {
	PublishCheckoutCompleted(ctx context.Context, sessionID, orderID string) error
}

type Config struct {
	// ServiceFeePercent is applied to the ticket price when a session is
	// created. Defaults to 10.
	ServiceFeePercent int
	// CallbackURL is forwarded in credit-card payment payloads.
	CallbackURL string
}

// Service owns the checkout state machine: it loads a session, applies one
// event, and saves the result. The session store is the only state; a session
// has a single writer so no locking beyond the Processing flag is needed.
type Service struct {
	sessions      SessionStore
	coupons       CouponGateway
	registrations RegistrationGateway
	receipts      ReceiptStore
	limiter       Limiter
	pub           Publisher
	logger        *slog.Logger
	cfg           Config
}

func New(
	sessions SessionStore,
	coupons CouponGateway,
	registrations RegistrationGateway,
	receipts ReceiptStore,
	limiter Limiter,
	pub Publisher,
	logger *slog.Logger,
	cfg Config,
) *Service {
	if cfg.ServiceFeePercent <= 0 {
		cfg.ServiceFeePercent = 10
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		sessions:      sessions,
		coupons:       coupons,
		registrations: registrations,
		receipts:      receipts,
		limiter:       limiter,
		pub:           pub,
		logger:        logger,
		cfg:           cfg,
	}
}

type CreateParams struct {
	EventID         int64
	TicketPricingID int64
	PriceCents      int
	// CouponCode optionally seeds the session with a pre-validated discount.
	CouponCode string
}

// Create opens a fresh session on the Terms step. When a coupon code is
// supplied it is validated upstream before the session is stored.
func (s *Service) Create(ctx context.Context, p CreateParams) (*domain.CheckoutSession, error) {
	const op = "checkout.Create"

	if p.EventID <= 0 || p.TicketPricingID <= 0 {
		return nil, fmt.Errorf("%s: event and pricing ids are required", op)
	}
	if p.PriceCents < 0 {
		return nil, fmt.Errorf("%s: price must not be negative", op)
	}

	now := time.Now()
	sess := &domain.CheckoutSession{
		ID:              uuid.New(),
		EventID:         p.EventID,
		TicketPricingID: p.TicketPricingID,
		PriceCents:      p.PriceCents,
		FeeCents:        p.PriceCents * s.cfg.ServiceFeePercent / 100,
		CurrentStep:     domain.StepTerms,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if code := normalizeCouponCode(p.CouponCode); code != "" {
		quote, err := s.coupons.CouponPrice(ctx, tikko.CouponPriceRequest{
			EventID:         p.EventID,
			TicketPricingID: p.TicketPricingID,
			Coupon:          code,
		})
		if err != nil {
			return nil, fmt.Errorf("%s:%w", op, err)
		}
		sess.Discount = discountFromQuote(code, quote, sess.PriceCents+sess.FeeCents)
	}

	if err := s.save(ctx, sess); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return sess, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.CheckoutSession, error) {
	const op = "checkout.Get"

	sess, err := s.load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return sess, nil
}

// AcceptTerms records terms acceptance and advances to UserInfo.
func (s *Service) AcceptTerms(ctx context.Context, id uuid.UUID, accepted bool) (*domain.CheckoutSession, error) {
	const op = "checkout.AcceptTerms"

	sess, err := s.load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	if sess.CurrentStep != domain.StepTerms {
		return nil, fmt.Errorf("%s:%w", op, &TransitionError{Step: sess.CurrentStep, Event: EventContinue})
	}

	if !accepted {
		return nil, fmt.Errorf("%s:%w", op, ErrTermsNotAccepted)
	}

	sess.TermsAccepted = true

	if err := s.advance(ctx, sess, EventContinue); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return sess, nil
}

// SubmitUserInfo validates the buyer profile and advances to Coupon. All
// field errors are returned together in a *ValidationError.
func (s *Service) SubmitUserInfo(
	ctx context.Context,
	id uuid.UUID,
	data domain.UserData,
	idType domain.IdentificationType,
) (*domain.CheckoutSession, error) {
	const op = "checkout.SubmitUserInfo"

	sess, err := s.load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	if sess.CurrentStep != domain.StepUserInfo {
		return nil, fmt.Errorf("%s:%w", op, &TransitionError{Step: sess.CurrentStep, Event: EventContinue})
	}

	if idType != domain.IdentificationCPF {
		idType = domain.IdentificationOther
	}

	if vErr := validateUserInfo(data, idType, time.Now()); vErr != nil {
		return nil, fmt.Errorf("%s:%w", op, vErr)
	}

	sess.UserData = data
	sess.IdentificationType = idType
	sess.UserInfoValid = true

	if err := s.advance(ctx, sess, EventContinue); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return sess, nil
}

// ApplyCoupon validates code upstream and stores the resulting discount. An
// invalid code clears any existing discount; a network or upstream failure
// leaves the previous discount untouched.
func (s *Service) ApplyCoupon(ctx context.Context, id uuid.UUID, code, rlKey string) (*domain.CheckoutSession, error) {
	const op = "checkout.ApplyCoupon"

	sess, err := s.load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	if sess.CurrentStep != domain.StepCoupon {
		return nil, fmt.Errorf("%s:%w", op, &TransitionError{Step: sess.CurrentStep, Event: EventContinue})
	}

	code = normalizeCouponCode(code)
	if code == "" {
		return nil, fmt.Errorf("%s:%w", op, ErrCouponRequired)
	}

	if s.limiter != nil && rlKey != "" {
		ok, _, retry, err := s.limiter.Allow(ctx, rlKey)
		if err != nil {
			return nil, fmt.Errorf("%s:%w", op, err)
		}
		if !ok {
			return nil, fmt.Errorf("%s:%w", op, &RateLimitedError{RetryAfter: retry})
		}
	}

	quote, err := s.coupons.CouponPrice(ctx, tikko.CouponPriceRequest{
		EventID:         sess.EventID,
		TicketPricingID: sess.TicketPricingID,
		Coupon:          code,
	})
	if err != nil {
		if apiErr, ok := tikko.AsAPIError(err); ok && isInvalidCoupon(apiErr) {
			sess.Discount = nil
			if saveErr := s.save(ctx, sess); saveErr != nil {
				return nil, fmt.Errorf("%s:%w", op, saveErr)
			}
		}
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	sess.Discount = discountFromQuote(code, quote, sess.PriceCents+sess.FeeCents)

	if err := s.save(ctx, sess); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return sess, nil
}

// RemoveCoupon drops the applied discount.
func (s *Service) RemoveCoupon(ctx context.Context, id uuid.UUID) (*domain.CheckoutSession, error) {
	const op = "checkout.RemoveCoupon"

	sess, err := s.load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	if sess.CurrentStep != domain.StepCoupon {
		return nil, fmt.Errorf("%s:%w", op, &TransitionError{Step: sess.CurrentStep, Event: EventContinue})
	}

	sess.Discount = nil

	if err := s.save(ctx, sess); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return sess, nil
}

// Continue moves the session forward from its current step, enforcing the
// step's guard. Free sessions skip the payment steps entirely.
func (s *Service) Continue(ctx context.Context, id uuid.UUID) (*domain.CheckoutSession, error) {
	const op = "checkout.Continue"

	sess, err := s.load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	if err := continueGuard(sess); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	if err := s.advance(ctx, sess, EventContinue); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return sess, nil
}

// SelectPaymentMethod stores the chosen method and advances to PaymentInfo.
func (s *Service) SelectPaymentMethod(ctx context.Context, id uuid.UUID, method domain.PaymentMethod) (*domain.CheckoutSession, error) {
	const op = "checkout.SelectPaymentMethod"

	sess, err := s.load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	if sess.CurrentStep != domain.StepPaymentMethod {
		return nil, fmt.Errorf("%s:%w", op, &TransitionError{Step: sess.CurrentStep, Event: EventContinue})
	}

	if method != domain.PaymentMethodCredit && method != domain.PaymentMethodPix {
		return nil, fmt.Errorf("%s:%w", op, ErrPaymentMethodRequired)
	}

	sess.PaymentMethod = method

	if err := s.advance(ctx, sess, EventContinue); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return sess, nil
}

// SubmitPaymentInfo stores the tokenized payment payload and advances to
// Confirmation. Credit requires a token, pix a payer email.
func (s *Service) SubmitPaymentInfo(ctx context.Context, id uuid.UUID, pd domain.PaymentData) (*domain.CheckoutSession, error) {
	const op = "checkout.SubmitPaymentInfo"

	sess, err := s.load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	if sess.CurrentStep != domain.StepPaymentInfo {
		return nil, fmt.Errorf("%s:%w", op, &TransitionError{Step: sess.CurrentStep, Event: EventContinue})
	}

	switch sess.PaymentMethod {
	case domain.PaymentMethodCredit:
		if pd.Token == "" {
			return nil, fmt.Errorf("%s:%w", op, ErrPaymentDataRequired)
		}
	case domain.PaymentMethodPix:
		if pd.PayerEmail == "" {
			pd.PayerEmail = strings.TrimSpace(sess.UserData.Email)
		}
		if pd.PayerEmail == "" {
			return nil, fmt.Errorf("%s:%w", op, ErrPaymentDataRequired)
		}
	default:
		return nil, fmt.Errorf("%s:%w", op, ErrPaymentMethodRequired)
	}

	sess.PaymentData = &pd

	if err := s.advance(ctx, sess, EventContinue); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return sess, nil
}

// Back retreats one step. Backing out of Confirmation on a free session lands
// on Coupon because the payment steps were never shown.
func (s *Service) Back(ctx context.Context, id uuid.UUID) (*domain.CheckoutSession, error) {
	const op = "checkout.Back"

	sess, err := s.load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	if err := s.advance(ctx, sess, EventBack); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return sess, nil
}

// Close discards the session. Closing an already-closed session is a no-op.
func (s *Service) Close(ctx context.Context, id uuid.UUID) error {
	const op = "checkout.Close"

	if err := s.sessions.Delete(ctx, id); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%s:%w", op, err)
	}

	return nil
}

func (s *Service) load(ctx context.Context, id uuid.UUID) (*domain.CheckoutSession, error) {
	sess, err := s.sessions.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return sess, nil
}

func (s *Service) save(ctx context.Context, sess *domain.CheckoutSession) error {
	sess.UpdatedAt = time.Now()
	return s.sessions.Save(ctx, sess)
}

// advance applies ev to the session and persists the new step.
func (s *Service) advance(ctx context.Context, sess *domain.CheckoutSession, ev Event) error {
	next, err := Next(sess.CurrentStep, ev, sess.IsFree())
	if err != nil {
		return err
	}

	sess.CurrentStep = next

	return s.save(ctx, sess)
}

func continueGuard(sess *domain.CheckoutSession) error {
	switch sess.CurrentStep {
	case domain.StepTerms:
		if !sess.TermsAccepted {
			return ErrTermsNotAccepted
		}
	case domain.StepUserInfo:
		if !sess.UserInfoValid {
			return ErrUserInfoRequired
		}
	case domain.StepPaymentMethod:
		if sess.PaymentMethod == domain.PaymentMethodNone {
			return ErrPaymentMethodRequired
		}
	case domain.StepPaymentInfo:
		if sess.PaymentData == nil {
			return ErrPaymentDataRequired
		}
	}
	return nil
}

func normalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// discountFromQuote turns a server-validated quote into the session discount.
// The upstream quotes against the bare ticket price; the percentage it implies
// is re-applied to the full payable base (price plus service fee) so the
// discount also covers the fee. When the upstream original price is unusable
// the quoted amount is kept as is.
func discountFromQuote(code string, q *tikko.CouponPriceResponse, baseCents int) *domain.Discount {
	quoted := q.DiscountApplied
	if quoted == 0 {
		quoted = q.OriginalPrice - q.FinalPrice
	}

	var pct float64
	amount := quoted
	if q.OriginalPrice > 0 {
		pct = float64(quoted) / float64(q.OriginalPrice)
		amount = int(math.Round(pct * float64(baseCents)))
	}

	return &domain.Discount{
		Code:        code,
		Percentage:  pct,
		AmountCents: amount,
	}
}

// isInvalidCoupon tells a rejected code apart from an infrastructure failure.
func isInvalidCoupon(err *tikko.APIError) bool {
	return err.Status >= 400 && err.Status < 500 && err.Status != 401 && err.Status != 429
}
