package checkout

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tikko-events/checkout-go/internal/domain"
	"github.com/tikko-events/checkout-go/internal/repository"
	"github.com/tikko-events/checkout-go/internal/tikko"
)

// fakeSessions implements SessionStore in memory.
type fakeSessions struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]domain.CheckoutSession
	saveErr  error
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{sessions: make(map[uuid.UUID]domain.CheckoutSession)}
}

func (f *fakeSessions) Save(_ context.Context, s *domain.CheckoutSession) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[s.ID] = *s
	return nil
}

func (f *fakeSessions) Get(_ context.Context, id uuid.UUID) (*domain.CheckoutSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := s
	return &cp, nil
}

func (f *fakeSessions) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.sessions[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.sessions, id)
	return nil
}

// fakeCoupons implements CouponGateway.
type fakeCoupons struct {
	resp    *tikko.CouponPriceResponse
	err     error
	lastReq tikko.CouponPriceRequest
	calls   int
}

func (f *fakeCoupons) CouponPrice(_ context.Context, req tikko.CouponPriceRequest) (*tikko.CouponPriceResponse, error) {
	f.calls++
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

// fakeRegistrations implements RegistrationGateway. onRegister runs while the
// registration call is "in flight", before the response is returned.
type fakeRegistrations struct {
	resp       *tikko.RegistrationResponse
	err        error
	statusResp *tikko.PaymentStatusResponse
	statusErr  error
	lastReq    tikko.RegistrationRequest
	onRegister func()
}

func (f *fakeRegistrations) RegisterAndJoinEvent(_ context.Context, req tikko.RegistrationRequest) (*tikko.RegistrationResponse, error) {
	f.lastReq = req
	if f.onRegister != nil {
		f.onRegister()
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func (f *fakeRegistrations) PaymentStatus(_ context.Context, _ string) (*tikko.PaymentStatusResponse, error) {
	if f.statusErr != nil {
		return nil, f.statusErr
	}
	return f.statusResp, nil
}

// fakeReceipts implements ReceiptStore.
type fakeReceipts struct {
	recorded  []*domain.Receipt
	tickets   [][]domain.Ticket
	recordErr error
	confirmed []string
	pending   []domain.Receipt
}

func (f *fakeReceipts) Record(_ context.Context, r *domain.Receipt, tickets []domain.Ticket) error {
	if f.recordErr != nil {
		return f.recordErr
	}
	f.recorded = append(f.recorded, r)
	f.tickets = append(f.tickets, tickets)
	return nil
}

func (f *fakeReceipts) Get(_ context.Context, id uuid.UUID) (*domain.ReceiptWithTickets, error) {
	for i, r := range f.recorded {
		if r.ID == id {
			return &domain.ReceiptWithTickets{Receipt: *r, Tickets: f.tickets[i]}, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeReceipts) MarkPixConfirmed(_ context.Context, paymentID string) (*domain.Receipt, error) {
	f.confirmed = append(f.confirmed, paymentID)
	return &domain.Receipt{PaymentID: paymentID, Status: domain.ReceiptConfirmed}, nil
}

func (f *fakeReceipts) ListPendingPix(_ context.Context, _ int) ([]domain.Receipt, error) {
	return f.pending, nil
}

// fakeLimiter implements Limiter.
type fakeLimiter struct {
	allowed bool
	retry   time.Duration
	lastKey string
}

func (f *fakeLimiter) Allow(_ context.Context, key string) (bool, int64, time.Duration, error) {
	f.lastKey = key
	return f.allowed, 0, f.retry, nil
}

type publishedEvent struct {
	sessionID string
	orderID   string
}

// fakePublisher implements Publisher.
type fakePublisher struct {
	events []publishedEvent
}

func (f *fakePublisher) PublishCheckoutCompleted(_ context.Context, sessionID, orderID string) error {
	f.events = append(f.events, publishedEvent{sessionID: sessionID, orderID: orderID})
	return nil
}

type testEnv struct {
	svc           *Service
	sessions      *fakeSessions
	coupons       *fakeCoupons
	registrations *fakeRegistrations
	receipts      *fakeReceipts
	limiter       *fakeLimiter
	pub           *fakePublisher
}

func newTestEnv() *testEnv {
	env := &testEnv{
		sessions:      newFakeSessions(),
		coupons:       &fakeCoupons{},
		registrations: &fakeRegistrations{},
		receipts:      &fakeReceipts{},
		limiter:       &fakeLimiter{allowed: true},
		pub:           &fakePublisher{},
	}
	env.svc = New(
		env.sessions,
		env.coupons,
		env.registrations,
		env.receipts,
		env.limiter,
		env.pub,
		nil,
		Config{CallbackURL: "https://checkout.example.com/callback"},
	)
	return env
}
