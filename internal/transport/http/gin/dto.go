package httpgin

import (
	"time"

	"github.com/tikko-events/checkout-go/internal/domain"
)

type CreateSessionRequest struct {
	EventID         int64  `json:"event_id" binding:"required,gt=0"`
	TicketPricingID int64  `json:"ticket_pricing_id" binding:"required,gt=0"`
	PriceCents      int    `json:"price_cents" binding:"gte=0"`
	Coupon          string `json:"coupon"`
}

type AcceptTermsRequest struct {
	Accepted bool `json:"accepted"`
}

type UserInfoRequest struct {
	FullName           string `json:"full_name" binding:"required"`
	Email              string `json:"email" binding:"required"`
	ConfirmEmail       string `json:"confirm_email" binding:"required"`
	Phone              string `json:"phone" binding:"required"`
	ConfirmPhone       string `json:"confirm_phone" binding:"required"`
	Identification     string `json:"identification" binding:"required"`
	IdentificationType string `json:"identification_type"`
	Birthdate          string `json:"birthdate" binding:"required"`
	Instagram          string `json:"instagram"`
}

type ApplyCouponRequest struct {
	Code string `json:"code" binding:"required"`
}

type SelectPaymentMethodRequest struct {
	Method string `json:"method" binding:"required,oneof=credit pix"`
}

type PaymentInfoRequest struct {
	Token           string `json:"token"`
	PaymentMethodID string `json:"payment_method_id"`
	IssuerID        string `json:"issuer_id"`
	Installments    int    `json:"installments"`
	PayerEmail      string `json:"payer_email"`
}

type DiscountResponse struct {
	Code        string  `json:"code"`
	Percentage  float64 `json:"percentage"`
	AmountCents int     `json:"amount_cents"`
}

type SessionResponse struct {
	ID              string            `json:"id"`
	EventID         int64             `json:"event_id"`
	TicketPricingID int64             `json:"ticket_pricing_id"`
	Step            int               `json:"step"`
	StepName        string            `json:"step_name"`
	TermsAccepted   bool              `json:"terms_accepted"`
	UserInfoValid   bool              `json:"user_info_valid"`
	PaymentMethod   string            `json:"payment_method,omitempty"`
	Discount        *DiscountResponse `json:"discount,omitempty"`
	Pricing         domain.Pricing    `json:"pricing"`
	Processing      bool              `json:"processing"`
	QRCode          string            `json:"qr_code,omitempty"`
	PaymentID       string            `json:"payment_id,omitempty"`
	OrderID         string            `json:"order_id,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

type SubmitResponse struct {
	Session    SessionResponse `json:"session"`
	PixPending bool            `json:"pix_pending"`
	OrderID    string          `json:"order_id,omitempty"`
	QRCode     string          `json:"qr_code,omitempty"`
	PaymentID  string          `json:"payment_id,omitempty"`
}

type PaymentStatusResponse struct {
	Step      int    `json:"step"`
	StepName  string `json:"step_name"`
	Status    string `json:"status"`
	QRCode    string `json:"qr_code,omitempty"`
	PaymentID string `json:"payment_id,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	// Code carries the upstream error code when the failure originated at the
	// ticketing API.
	Code string `json:"code,omitempty"`
	// Fields maps field name to message for validation failures.
	Fields map[string]string `json:"fields,omitempty"`
}

func toSessionResponse(s *domain.CheckoutSession) SessionResponse {
	resp := SessionResponse{
		ID:              s.ID.String(),
		EventID:         s.EventID,
		TicketPricingID: s.TicketPricingID,
		Step:            int(s.CurrentStep),
		StepName:        s.CurrentStep.String(),
		TermsAccepted:   s.TermsAccepted,
		UserInfoValid:   s.UserInfoValid,
		PaymentMethod:   string(s.PaymentMethod),
		Pricing:         s.Pricing(),
		Processing:      s.Processing,
		QRCode:          s.QRCode,
		PaymentID:       s.PaymentID,
		OrderID:         s.OrderID,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}

	if s.Discount != nil {
		resp.Discount = &DiscountResponse{
			Code:        s.Discount.Code,
			Percentage:  s.Discount.Percentage,
			AmountCents: s.Discount.AmountCents,
		}
	}

	return resp
}

func (r UserInfoRequest) toDomain() domain.UserData {
	return domain.UserData{
		FullName:       r.FullName,
		Email:          r.Email,
		ConfirmEmail:   r.ConfirmEmail,
		Phone:          r.Phone,
		ConfirmPhone:   r.ConfirmPhone,
		Identification: r.Identification,
		Birthdate:      r.Birthdate,
		Instagram:      r.Instagram,
	}
}

func (r PaymentInfoRequest) toDomain() domain.PaymentData {
	return domain.PaymentData{
		Token:           r.Token,
		PaymentMethodID: r.PaymentMethodID,
		IssuerID:        r.IssuerID,
		Installments:    r.Installments,
		PayerEmail:      r.PayerEmail,
	}
}
