// Package receipts persists checkout outcomes. It composes the postgres
// receipt repository with the unit of work so a receipt and its tickets land
// in one transaction.
package receipts

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/tikko-events/checkout-go/internal/domain"
	postgres "github.com/tikko-events/checkout-go/internal/repository/postgres"
	"github.com/tikko-events/checkout-go/internal/uow"
)

type Store struct {
	repo *postgres.ReceiptRepo
	uow  *uow.UoW
}

func NewStore(store *postgres.Store) *Store {
	return &Store{
		repo: store.Receipts(),
		uow:  uow.New(store),
	}
}

// Record inserts the receipt together with its tickets atomically.
func (s *Store) Record(ctx context.Context, r *domain.Receipt, tickets []domain.Ticket) error {
	const op = "receipts.Store.Record"

	err := s.uow.Do(ctx, func(ctx context.Context, tx postgres.DB, _ func(uow.AfterCommit)) error {
		repo := s.repo.With(tx)

		if err := repo.Insert(ctx, r); err != nil {
			return err
		}

		return repo.InsertTickets(ctx, tickets)
	})
	if err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	return nil
}

func (s *Store) Get(ctx context.Context, id uuid.UUID) (*domain.ReceiptWithTickets, error) {
	const op = "receipts.Store.Get"

	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	tickets, err := s.repo.Tickets(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return &domain.ReceiptWithTickets{
		Receipt: *rec,
		Tickets: tickets,
	}, nil
}

func (s *Store) MarkPixConfirmed(ctx context.Context, paymentID string) (*domain.Receipt, error) {
	const op = "receipts.Store.MarkPixConfirmed"

	rec, err := s.repo.MarkPixConfirmed(ctx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return rec, nil
}

func (s *Store) ListPendingPix(ctx context.Context, limit int) ([]domain.Receipt, error) {
	const op = "receipts.Store.ListPendingPix"

	receipts, err := s.repo.ListPendingPix(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return receipts, nil
}
