package amongus

import (
	"context"

	"github.com/dev-tnsq/Proof-of-Sus/storage"
)

// NullifierGuard tracks consumed one-time tokens. Votes, tasks, kills and
// impostor-win claims share one namespace and tokens never expire.
//
// Callers must Check, then verify the proof, then Consume.
type NullifierGuard struct {
	store storage.Store
}

func NewNullifierGuard(store storage.Store) *NullifierGuard {
	return &NullifierGuard{store: store}
}

// Used reports whether token has been consumed.
func (g *NullifierGuard) Used(ctx context.Context, token Hash) (bool, error) {
	ok, err := g.store.Has(ctx, storage.UsedNullifier(token))
	if err != nil {
		return false, ErrStorage.wrap(err)
	}
	return ok, nil
}

// Check fails with ErrNullifierUsed when token has been consumed.
func (g *NullifierGuard) Check(ctx context.Context, token Hash) error {
	used, err := g.Used(ctx, token)
	if err != nil {
		return err
	}
	if used {
		return ErrNullifierUsed
	}
	return nil
}

// Consume marks token as used. Consuming twice is a no-op.
func (g *NullifierGuard) Consume(ctx context.Context, token Hash) error {
	if err := g.store.Set(ctx, storage.UsedNullifier(token), []byte{1}); err != nil {
		return ErrStorage.wrap(err)
	}
	return nil
}
