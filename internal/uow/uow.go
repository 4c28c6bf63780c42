// Package uow runs repository work inside a single transaction and defers
// side effects that must only fire once the commit has succeeded.
package uow

import (
	"context"

	postgres "github.com/tikko-events/checkout-go/internal/repository/postgres"
)

// AfterCommit runs after a successful commit. Hooks never see the
// transaction; by the time they run it is gone.
type AfterCommit func(ctx context.Context)

type UoW struct {
	store *postgres.Store
}

func New(store *postgres.Store) *UoW {
	return &UoW{store: store}
}

// Do runs fn inside a transaction. Hooks queued through after are executed
// in order once the commit succeeds and are dropped on rollback.
func (u *UoW) Do(
	ctx context.Context,
	fn func(ctx context.Context, tx postgres.DB, after func(AfterCommit)) error,
) error {
	var hooks []AfterCommit

	err := u.store.RunTx(ctx, nil, func(ctx context.Context, tx postgres.DB) error {
		return fn(ctx, tx, func(h AfterCommit) {
			hooks = append(hooks, h)
		})
	})
	if err != nil {
		return err
	}

	for _, h := range hooks {
		h(ctx)
	}

	return nil
}
