package tikko

import (
	"context"
	"encoding/json"
	"strings"
)

// FlexString decodes a JSON string or number into a string. The upstream is
// not consistent about id types; payment_id in particular arrives as either.
type FlexString string

func (s *FlexString) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "null" {
		*s = ""
		return nil
	}

	if len(raw) > 0 && raw[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = FlexString(v)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*s = FlexString(n.String())
	return nil
}

type RegistrationUser struct {
	Email                string `json:"email"`
	Username             string `json:"username"`
	Gender               string `json:"gender,omitempty"`
	Birthday             string `json:"birthday"`
	PhoneNumber          string `json:"phone_number"`
	Location             string `json:"location,omitempty"`
	Bio                  string `json:"bio,omitempty"`
	InstagramProfile     string `json:"instagram_profile,omitempty"`
	IdentificationNumber string `json:"identification_number"`
}

type PayerIdentification struct {
	Type   string `json:"type"`
	Number string `json:"number"`
}

type Payer struct {
	Email          string              `json:"email"`
	FirstName      string              `json:"first_name"`
	LastName       string              `json:"last_name"`
	Identification PayerIdentification `json:"identification"`
}

type RegistrationPayment struct {
	TransactionAmount int    `json:"transaction_amount"`
	Token             string `json:"token,omitempty"`
	Description       string `json:"description"`
	Installments      int    `json:"installments,omitempty"`
	PaymentMethodID   string `json:"payment_method_id"`
	IssuerID          string `json:"issuer_id,omitempty"`
	Capture           bool   `json:"capture"`
	ExternalReference string `json:"external_reference"`
	CallbackURL       string `json:"callback_url,omitempty"`
	Payer             Payer  `json:"payer"`
}

type RegistrationRequest struct {
	User            RegistrationUser    `json:"user"`
	EventID         int64               `json:"event_id"`
	TicketPricingID int64               `json:"ticket_pricing_id"`
	Coupon          string              `json:"coupon,omitempty"`
	Payment         RegistrationPayment `json:"payment"`
}

type RegistrationTicket struct {
	ID   FlexString `json:"id"`
	Code string     `json:"code"`
}

// RegistrationResponse is either a completed order (OrderID and Tickets set)
// or a pending PIX charge (QRCode and PaymentID set).
type RegistrationResponse struct {
	OrderID   FlexString           `json:"order_id"`
	Tickets   []RegistrationTicket `json:"tickets,omitempty"`
	QRCode    string               `json:"qr_code,omitempty"`
	PaymentID FlexString           `json:"payment_id,omitempty"`
}

func (r *RegistrationResponse) PixPending() bool {
	return r.QRCode != ""
}

// RegisterAndJoinEvent performs registration and ticket issuance in one
// upstream call. It is atomic server-side; there is nothing to roll back on
// failure.
func (c *Client) RegisterAndJoinEvent(ctx context.Context, req RegistrationRequest) (*RegistrationResponse, error) {
	var out RegistrationResponse
	if err := c.post(ctx, "/public/user/register-and-join-event", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

const (
	PaymentStatusPending  = "pending"
	PaymentStatusApproved = "approved"
	PaymentStatusRejected = "rejected"
)

type PaymentStatusResponse struct {
	Status string `json:"status"`
}

// PaymentStatus reports the state of an asynchronous (PIX) payment.
func (c *Client) PaymentStatus(ctx context.Context, paymentID string) (*PaymentStatusResponse, error) {
	var out PaymentStatusResponse
	if err := c.get(ctx, "/public/payment/"+paymentID+"/status", &out); err != nil {
		return nil, err
	}
	return &out, nil
}
