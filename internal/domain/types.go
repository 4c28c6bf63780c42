package domain

import (
	"time"

	"github.com/google/uuid"
)

// Step is the position of a checkout session inside the purchase wizard.
type Step int

const (
	StepTerms Step = iota + 1
	StepUserInfo
	StepCoupon
	StepPaymentMethod
	StepPaymentInfo
	StepConfirmation
	StepSuccess
	StepPixPending
)

func (s Step) String() string {
	switch s {
	case StepTerms:
		return "terms"
	case StepUserInfo:
		return "user_info"
	case StepCoupon:
		return "coupon"
	case StepPaymentMethod:
		return "payment_method"
	case StepPaymentInfo:
		return "payment_info"
	case StepConfirmation:
		return "confirmation"
	case StepSuccess:
		return "success"
	case StepPixPending:
		return "pix_pending"
	default:
		return "unknown"
	}
}

func (s Step) IsTerminal() bool {
	return s == StepSuccess
}

type IdentificationType string

const (
	IdentificationCPF   IdentificationType = "cpf"
	IdentificationOther IdentificationType = "other"
)

type PaymentMethod string

const (
	PaymentMethodNone   PaymentMethod = ""
	PaymentMethodCredit PaymentMethod = "credit"
	PaymentMethodPix    PaymentMethod = "pix"
	PaymentMethodFree   PaymentMethod = "free"
)

// UserData is the buyer profile collected on the user-info step. Email and
// phone carry paired confirmation fields that must match at validation time.
type UserData struct {
	FullName       string `json:"full_name"`
	Email          string `json:"email"`
	ConfirmEmail   string `json:"confirm_email"`
	Phone          string `json:"phone"`
	ConfirmPhone   string `json:"confirm_phone"`
	Identification string `json:"identification"`
	Birthdate      string `json:"birthdate"` // YYYY-MM-DD
	Instagram      string `json:"instagram"`
}

// Discount is a server-validated coupon applied to the session.
type Discount struct {
	Code        string  `json:"code"`
	Percentage  float64 `json:"percentage"`
	AmountCents int     `json:"amount_cents"`
}

// PaymentData is the provider-tokenized payment payload collected on the
// payment-info step. Shape differs between credit and pix; the service treats
// it as opaque except for the fields it forwards upstream.
type PaymentData struct {
	Token           string `json:"token,omitempty"`
	PaymentMethodID string `json:"payment_method_id,omitempty"`
	IssuerID        string `json:"issuer_id,omitempty"`
	Installments    int    `json:"installments,omitempty"`
	PayerEmail      string `json:"payer_email,omitempty"`
}

// CheckoutSession is the state of one run through the purchase wizard.
// There is exactly one writer per session; no cross-session sharing.
type CheckoutSession struct {
	ID              uuid.UUID `json:"id"`
	EventID         int64     `json:"event_id"`
	TicketPricingID int64     `json:"ticket_pricing_id"`
	PriceCents      int       `json:"price_cents"`
	FeeCents        int       `json:"fee_cents"`

	CurrentStep        Step               `json:"current_step"`
	TermsAccepted      bool               `json:"terms_accepted"`
	UserData           UserData           `json:"user_data"`
	IdentificationType IdentificationType `json:"identification_type"`
	UserInfoValid      bool               `json:"user_info_valid"`
	Discount           *Discount          `json:"discount,omitempty"`
	PaymentMethod      PaymentMethod      `json:"payment_method"`
	PaymentData        *PaymentData       `json:"payment_data,omitempty"`
	Processing         bool               `json:"processing"`

	// Populated only when registration returned a pending PIX charge.
	QRCode    string `json:"qr_code,omitempty"`
	PaymentID string `json:"payment_id,omitempty"`

	// Populated once registration succeeded.
	OrderID string `json:"order_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *CheckoutSession) DiscountCents() int {
	if s.Discount == nil {
		return 0
	}
	return s.Discount.AmountCents
}

// TotalCents is the payable total. Deliberately not clamped at zero: a
// discount larger than price+fee yields a negative total, which is what makes
// IsFree fire and the payment steps disappear.
func (s *CheckoutSession) TotalCents() int {
	return s.PriceCents + s.FeeCents - s.DiscountCents()
}

func (s *CheckoutSession) IsFree() bool {
	return s.TotalCents() <= 0
}

// Pricing is the derived price summary, recomputed from the session on demand.
type Pricing struct {
	PriceCents    int  `json:"price_cents"`
	FeeCents      int  `json:"fee_cents"`
	DiscountCents int  `json:"discount_cents"`
	TotalCents    int  `json:"total_cents"`
	Free          bool `json:"free"`
}

func (s *CheckoutSession) Pricing() Pricing {
	return Pricing{
		PriceCents:    s.PriceCents,
		FeeCents:      s.FeeCents,
		DiscountCents: s.DiscountCents(),
		TotalCents:    s.TotalCents(),
		Free:          s.IsFree(),
	}
}

type ReceiptStatus string

const (
	ReceiptConfirmed  ReceiptStatus = "confirmed"
	ReceiptPendingPix ReceiptStatus = "pending_pix"
)

// Receipt is the durable record of a completed (or PIX-pending) checkout.
type Receipt struct {
	ID              uuid.UUID     `json:"id"`
	SessionID       uuid.UUID     `json:"session_id"`
	EventID         int64         `json:"event_id"`
	TicketPricingID int64         `json:"ticket_pricing_id"`
	Email           string        `json:"email"`
	TotalCents      int           `json:"total_cents"`
	PaymentMethod   PaymentMethod `json:"payment_method"`
	Status          ReceiptStatus `json:"status"`
	PaymentID       string        `json:"payment_id,omitempty"`
	QRCode          string        `json:"qr_code,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	ConfirmedAt     *time.Time    `json:"confirmed_at,omitempty"`
}

type Ticket struct {
	ID        uuid.UUID `json:"id"`
	ReceiptID uuid.UUID `json:"receipt_id"`
	EventID   int64     `json:"event_id"`
	Code      string    `json:"code"`
	CreatedAt time.Time `json:"created_at"`
}

type ReceiptWithTickets struct {
	Receipt Receipt  `json:"receipt"`
	Tickets []Ticket `json:"tickets"`
}
