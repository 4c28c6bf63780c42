package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tikko-events/checkout-go/internal/domain"
)

type ReceiptRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *ReceiptRepo) With(db DB) *ReceiptRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *ReceiptRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

func (r *ReceiptRepo) Insert(ctx context.Context, rec *domain.Receipt) error {
	const op = "postgresrepo.ReceiptRepo.Insert"

	db := r.handle()

	_, err := db.Exec(ctx,
		`INSERT INTO receipts
		   (id, session_id, event_id, ticket_pricing_id, email, total_cents,
		    payment_method, status, payment_id, qr_code, created_at, confirmed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		rec.ID, rec.SessionID, rec.EventID, rec.TicketPricingID, rec.Email,
		rec.TotalCents, rec.PaymentMethod, rec.Status, nullIfEmpty(rec.PaymentID),
		nullIfEmpty(rec.QRCode), rec.CreatedAt, rec.ConfirmedAt,
	)
	if err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}

func (r *ReceiptRepo) InsertTickets(ctx context.Context, tickets []domain.Ticket) error {
	const op = "postgresrepo.ReceiptRepo.InsertTickets"

	if len(tickets) == 0 {
		return nil
	}

	db := r.handle()

	b := &pgx.Batch{}
	for _, t := range tickets {
		b.Queue(
			`INSERT INTO tickets (id, receipt_id, event_id, code, created_at)
			 VALUES ($1, $2, $3, $4, $5)`,
			t.ID, t.ReceiptID, t.EventID, t.Code, t.CreatedAt,
		)
	}

	br := db.SendBatch(ctx, b)
	defer br.Close()

	for range tickets {
		if _, err := br.Exec(); err != nil {
			return wrapDBErr(op, err)
		}
	}

	return nil
}

func (r *ReceiptRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Receipt, error) {
	const op = "postgresrepo.ReceiptRepo.Get"

	db := r.handle()

	var rec domain.Receipt
	err := db.QueryRow(ctx,
		`SELECT id, session_id, event_id, ticket_pricing_id, email, total_cents,
		        payment_method, status, COALESCE(payment_id, ''), COALESCE(qr_code, ''),
		        created_at, confirmed_at
		   FROM receipts WHERE id = $1`,
		id,
	).Scan(
		&rec.ID, &rec.SessionID, &rec.EventID, &rec.TicketPricingID, &rec.Email,
		&rec.TotalCents, &rec.PaymentMethod, &rec.Status, &rec.PaymentID,
		&rec.QRCode, &rec.CreatedAt, &rec.ConfirmedAt,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return &rec, nil
}

func (r *ReceiptRepo) Tickets(ctx context.Context, receiptID uuid.UUID) ([]domain.Ticket, error) {
	const op = "postgresrepo.ReceiptRepo.Tickets"

	db := r.handle()

	rows, err := db.Query(ctx,
		`SELECT id, receipt_id, event_id, code, created_at
		   FROM tickets WHERE receipt_id = $1 ORDER BY created_at`,
		receiptID,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}
	defer rows.Close()

	var tickets []domain.Ticket
	for rows.Next() {
		var t domain.Ticket
		if err := rows.Scan(&t.ID, &t.ReceiptID, &t.EventID, &t.Code, &t.CreatedAt); err != nil {
			return nil, wrapDBErr(op, err)
		}
		tickets = append(tickets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return tickets, nil
}

// MarkPixConfirmed flips a pending receipt to confirmed. Missing or
// already-confirmed receipts surface repository.ErrNotFound.
func (r *ReceiptRepo) MarkPixConfirmed(ctx context.Context, paymentID string) (*domain.Receipt, error) {
	const op = "postgresrepo.ReceiptRepo.MarkPixConfirmed"

	db := r.handle()

	var rec domain.Receipt
	err := db.QueryRow(ctx,
		`UPDATE receipts
		    SET status = $1, confirmed_at = now()
		  WHERE payment_id = $2 AND status = $3
		 RETURNING id, session_id, event_id, ticket_pricing_id, email, total_cents,
		           payment_method, status, COALESCE(payment_id, ''), COALESCE(qr_code, ''),
		           created_at, confirmed_at`,
		domain.ReceiptConfirmed, paymentID, domain.ReceiptPendingPix,
	).Scan(
		&rec.ID, &rec.SessionID, &rec.EventID, &rec.TicketPricingID, &rec.Email,
		&rec.TotalCents, &rec.PaymentMethod, &rec.Status, &rec.PaymentID,
		&rec.QRCode, &rec.CreatedAt, &rec.ConfirmedAt,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return &rec, nil
}

func (r *ReceiptRepo) ListPendingPix(ctx context.Context, limit int) ([]domain.Receipt, error) {
	const op = "postgresrepo.ReceiptRepo.ListPendingPix"

	if limit <= 0 {
		limit = 100
	}

	db := r.handle()

	rows, err := db.Query(ctx,
		`SELECT id, session_id, event_id, ticket_pricing_id, email, total_cents,
		        payment_method, status, COALESCE(payment_id, ''), COALESCE(qr_code, ''),
		        created_at, confirmed_at
		   FROM receipts WHERE status = $1 ORDER BY created_at LIMIT $2`,
		domain.ReceiptPendingPix, limit,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}
	defer rows.Close()

	var receipts []domain.Receipt
	for rows.Next() {
		var rec domain.Receipt
		if err := rows.Scan(
			&rec.ID, &rec.SessionID, &rec.EventID, &rec.TicketPricingID, &rec.Email,
			&rec.TotalCents, &rec.PaymentMethod, &rec.Status, &rec.PaymentID,
			&rec.QRCode, &rec.CreatedAt, &rec.ConfirmedAt,
		); err != nil {
			return nil, wrapDBErr(op, err)
		}
		receipts = append(receipts, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return receipts, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
