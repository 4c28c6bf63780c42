package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tikko-events/checkout-go/internal/domain"
	"github.com/tikko-events/checkout-go/internal/repository"
	"github.com/tikko-events/checkout-go/internal/tikko"
)

type SubmitResult struct {
	Session    *domain.CheckoutSession
	PixPending bool
	OrderID    string
	QRCode     string
	PaymentID  string
}

// Submit assembles the registration payload and performs the upstream
// registration call. On success the session lands on Success, or on
// PixPending when the upstream returned a QR charge. On failure the session
// stays on Confirmation so the user can correct input and retry.
func (s *Service) Submit(ctx context.Context, id uuid.UUID) (*SubmitResult, error) {
	const op = "checkout.Submit"

	sess, err := s.load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	if sess.CurrentStep != domain.StepConfirmation {
		return nil, fmt.Errorf("%s:%w", op, &TransitionError{Step: sess.CurrentStep, Event: EventRegistered})
	}

	if sess.Processing {
		return nil, fmt.Errorf("%s:%w", op, ErrSubmitInProgress)
	}

	if !sess.TermsAccepted {
		return nil, fmt.Errorf("%s:%w", op, ErrTermsNotAccepted)
	}

	if !sess.UserInfoValid {
		return nil, fmt.Errorf("%s:%w", op, ErrUserInfoRequired)
	}

	sess.Processing = true
	if err := s.save(ctx, sess); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	resp, gwErr := s.registrations.RegisterAndJoinEvent(ctx, s.buildRegistration(sess))

	// Re-load after the round trip: if the session was closed while the
	// request was in flight the response must not be acted upon.
	sess, err = s.load(ctx, id)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			s.logger.Info("discarding registration response for closed session", "session_id", id)
			return nil, fmt.Errorf("%s:%w", op, ErrSessionClosed)
		}
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	sess.Processing = false

	if gwErr != nil {
		if saveErr := s.save(ctx, sess); saveErr != nil {
			return nil, fmt.Errorf("%s:%w", op, saveErr)
		}
		return nil, fmt.Errorf("%s:%w", op, gwErr)
	}

	if resp.PixPending() {
		return s.finishPixPending(ctx, sess, resp)
	}

	return s.finishRegistered(ctx, sess, resp)
}

func (s *Service) finishPixPending(ctx context.Context, sess *domain.CheckoutSession, resp *tikko.RegistrationResponse) (*SubmitResult, error) {
	const op = "checkout.Submit"

	sess.QRCode = resp.QRCode
	sess.PaymentID = string(resp.PaymentID)

	if err := s.advance(ctx, sess, EventPixIssued); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	receipt := s.buildReceipt(sess, domain.ReceiptPendingPix)
	if err := s.receipts.Record(ctx, receipt, nil); err != nil {
		// The upstream charge exists regardless; the polling endpoint still
		// confirms without the local record.
		s.logger.Error("failed to record pending pix receipt", "session_id", sess.ID, "error", err)
	}

	return &SubmitResult{
		Session:    sess,
		PixPending: true,
		QRCode:     sess.QRCode,
		PaymentID:  sess.PaymentID,
	}, nil
}

func (s *Service) finishRegistered(ctx context.Context, sess *domain.CheckoutSession, resp *tikko.RegistrationResponse) (*SubmitResult, error) {
	const op = "checkout.Submit"

	sess.OrderID = string(resp.OrderID)

	if err := s.advance(ctx, sess, EventRegistered); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	receipt := s.buildReceipt(sess, domain.ReceiptConfirmed)
	now := time.Now()
	receipt.ConfirmedAt = &now

	tickets := make([]domain.Ticket, 0, len(resp.Tickets))
	for _, t := range resp.Tickets {
		tickets = append(tickets, domain.Ticket{
			ID:        uuid.New(),
			ReceiptID: receipt.ID,
			EventID:   sess.EventID,
			Code:      t.Code,
			CreatedAt: now,
		})
	}

	if err := s.receipts.Record(ctx, receipt, tickets); err != nil {
		s.logger.Error("failed to record receipt", "session_id", sess.ID, "error", err)
	} else if s.pub != nil {
		_ = s.pub.PublishCheckoutCompleted(ctx, sess.ID.String(), sess.OrderID)
	}

	return &SubmitResult{
		Session: sess,
		OrderID: sess.OrderID,
	}, nil
}

type PixStatus struct {
	Step      domain.Step `json:"step"`
	Status    string      `json:"status"`
	QRCode    string      `json:"qr_code,omitempty"`
	PaymentID string      `json:"payment_id,omitempty"`
}

// PaymentStatus reports the state of the session's PIX charge, asking the
// upstream and completing the session when the charge was approved.
func (s *Service) PaymentStatus(ctx context.Context, id uuid.UUID) (*PixStatus, error) {
	const op = "checkout.PaymentStatus"

	sess, err := s.load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	if sess.CurrentStep == domain.StepSuccess {
		return &PixStatus{Step: sess.CurrentStep, Status: tikko.PaymentStatusApproved}, nil
	}

	if sess.CurrentStep != domain.StepPixPending {
		return nil, fmt.Errorf("%s:%w", op, &TransitionError{Step: sess.CurrentStep, Event: EventPixConfirmed})
	}

	status, err := s.registrations.PaymentStatus(ctx, sess.PaymentID)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	if status.Status != tikko.PaymentStatusApproved {
		return &PixStatus{
			Step:      sess.CurrentStep,
			Status:    status.Status,
			QRCode:    sess.QRCode,
			PaymentID: sess.PaymentID,
		}, nil
	}

	if err := s.confirmPix(ctx, sess); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return &PixStatus{Step: sess.CurrentStep, Status: tikko.PaymentStatusApproved, PaymentID: sess.PaymentID}, nil
}

// SweepPendingPix walks the pending-PIX receipts and completes the ones whose
// charge was approved. Returns how many were confirmed.
func (s *Service) SweepPendingPix(ctx context.Context, limit int) (int, error) {
	const op = "checkout.SweepPendingPix"

	pending, err := s.receipts.ListPendingPix(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("%s:%w", op, err)
	}

	confirmed := 0
	for _, r := range pending {
		status, err := s.registrations.PaymentStatus(ctx, r.PaymentID)
		if err != nil {
			s.logger.Warn("pix status check failed", "payment_id", r.PaymentID, "error", err)
			continue
		}
		if status.Status != tikko.PaymentStatusApproved {
			continue
		}

		sess, err := s.load(ctx, r.SessionID)
		if err != nil {
			if !errors.Is(err, ErrSessionNotFound) {
				s.logger.Warn("pix sweep session load failed", "session_id", r.SessionID, "error", err)
				continue
			}
			// Session expired while the charge settled: confirm the receipt
			// anyway so the order shows up as paid.
			if _, err := s.receipts.MarkPixConfirmed(ctx, r.PaymentID); err != nil && !errors.Is(err, repository.ErrNotFound) {
				s.logger.Error("failed to confirm pix receipt", "payment_id", r.PaymentID, "error", err)
				continue
			}
			confirmed++
			continue
		}

		if sess.CurrentStep != domain.StepPixPending {
			continue
		}

		if err := s.confirmPix(ctx, sess); err != nil {
			s.logger.Error("pix confirmation failed", "session_id", sess.ID, "error", err)
			continue
		}
		confirmed++
	}

	return confirmed, nil
}

func (s *Service) confirmPix(ctx context.Context, sess *domain.CheckoutSession) error {
	if err := s.advance(ctx, sess, EventPixConfirmed); err != nil {
		return err
	}

	if _, err := s.receipts.MarkPixConfirmed(ctx, sess.PaymentID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		s.logger.Error("failed to confirm pix receipt", "payment_id", sess.PaymentID, "error", err)
	}

	if s.pub != nil {
		_ = s.pub.PublishCheckoutCompleted(ctx, sess.ID.String(), sess.OrderID)
	}

	return nil
}

// Receipt returns a recorded checkout with its tickets.
func (s *Service) Receipt(ctx context.Context, id uuid.UUID) (*domain.ReceiptWithTickets, error) {
	const op = "checkout.Receipt"

	r, err := s.receipts.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s:%w", op, ErrOrderNotFound)
		}
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return r, nil
}

// buildRegistration assembles the upstream payload from the session per the
// selected payment method. Free sessions send a zero-amount "free" marker.
func (s *Service) buildRegistration(sess *domain.CheckoutSession) tikko.RegistrationRequest {
	u := sess.UserData

	req := tikko.RegistrationRequest{
		User: tikko.RegistrationUser{
			Email:                strings.TrimSpace(u.Email),
			Username:             usernameFromEmail(u.Email),
			Birthday:             strings.TrimSpace(u.Birthdate),
			PhoneNumber:          normalizePhoneForAPI(u.Phone),
			InstagramProfile:     strings.TrimPrefix(strings.TrimSpace(u.Instagram), "@"),
			IdentificationNumber: identificationNumber(u.Identification, sess.IdentificationType),
		},
		EventID:         sess.EventID,
		TicketPricingID: sess.TicketPricingID,
	}

	if sess.Discount != nil {
		req.Coupon = sess.Discount.Code
	}

	first, last := splitName(u.FullName)
	payer := tikko.Payer{
		Email:     strings.TrimSpace(u.Email),
		FirstName: first,
		LastName:  last,
		Identification: tikko.PayerIdentification{
			Type:   identificationTypeForAPI(sess.IdentificationType),
			Number: identificationNumber(u.Identification, sess.IdentificationType),
		},
	}

	description := fmt.Sprintf("Tikko event %d ticket %d", sess.EventID, sess.TicketPricingID)
	amount := sess.TotalCents()
	if amount < 0 {
		amount = 0
	}

	switch {
	case sess.IsFree():
		req.Payment = tikko.RegistrationPayment{
			TransactionAmount: 0,
			Description:       description,
			PaymentMethodID:   string(domain.PaymentMethodFree),
			ExternalReference: sess.ID.String(),
			Payer:             payer,
		}
	case sess.PaymentMethod == domain.PaymentMethodPix:
		if sess.PaymentData != nil && sess.PaymentData.PayerEmail != "" {
			payer.Email = sess.PaymentData.PayerEmail
		}
		req.Payment = tikko.RegistrationPayment{
			TransactionAmount: amount,
			Description:       description,
			PaymentMethodID:   string(domain.PaymentMethodPix),
			ExternalReference: sess.ID.String(),
			Payer:             payer,
		}
	default:
		pd := sess.PaymentData
		if pd == nil {
			pd = &domain.PaymentData{}
		}
		methodID := pd.PaymentMethodID
		if methodID == "" {
			methodID = "credit_card"
		}
		installments := pd.Installments
		if installments <= 0 {
			installments = 1
		}
		req.Payment = tikko.RegistrationPayment{
			TransactionAmount: amount,
			Token:             pd.Token,
			Description:       description,
			Installments:      installments,
			PaymentMethodID:   methodID,
			IssuerID:          pd.IssuerID,
			Capture:           true,
			ExternalReference: sess.ID.String(),
			CallbackURL:       s.cfg.CallbackURL,
			Payer:             payer,
		}
	}

	return req
}

func (s *Service) buildReceipt(sess *domain.CheckoutSession, status domain.ReceiptStatus) *domain.Receipt {
	method := sess.PaymentMethod
	if sess.IsFree() {
		method = domain.PaymentMethodFree
	}

	total := sess.TotalCents()
	if total < 0 {
		total = 0
	}

	return &domain.Receipt{
		ID:              uuid.New(),
		SessionID:       sess.ID,
		EventID:         sess.EventID,
		TicketPricingID: sess.TicketPricingID,
		Email:           strings.TrimSpace(sess.UserData.Email),
		TotalCents:      total,
		PaymentMethod:   method,
		Status:          status,
		PaymentID:       sess.PaymentID,
		QRCode:          sess.QRCode,
		CreatedAt:       time.Now(),
	}
}

func usernameFromEmail(email string) string {
	email = strings.TrimSpace(email)
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}

func splitName(full string) (first, last string) {
	parts := strings.Fields(strings.TrimSpace(full))
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}

func normalizePhoneForAPI(phone string) string {
	digits := stripNonDigits(phone)
	if digits == "" {
		return ""
	}
	return "+" + digits
}

func identificationNumber(id string, idType domain.IdentificationType) string {
	if idType == domain.IdentificationCPF {
		return stripNonDigits(id)
	}
	return strings.TrimSpace(id)
}

func identificationTypeForAPI(idType domain.IdentificationType) string {
	if idType == domain.IdentificationCPF {
		return "CPF"
	}
	return "OTHER"
}
