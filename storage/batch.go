package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
)

// Batch buffers writes over a backing Store. It is not safe for concurrent
// use; one batch serves one transaction.
type Batch struct {
	base   Store
	staged map[string]Write
}

// NewBatch starts an empty batch over base.
func NewBatch(base Store) *Batch {
	return &Batch{
		base:   base,
		staged: make(map[string]Write),
	}
}

// Get returns the staged value for key, falling back to the backing store.
func (b *Batch) Get(ctx context.Context, key Key) ([]byte, bool, error) {
	if w, ok := b.staged[key.String()]; ok {
		return clone(w.Value), true, nil
	}
	return b.base.Get(ctx, key)
}

// Set stages value under key.
func (b *Batch) Set(ctx context.Context, key Key, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.staged[key.String()] = Write{Key: key, Value: clone(value)}
	return nil
}

// Has reports whether key is staged or present in the backing store.
func (b *Batch) Has(ctx context.Context, key Key) (bool, error) {
	if _, ok := b.staged[key.String()]; ok {
		return true, nil
	}
	return b.base.Has(ctx, key)
}

// Writes returns the staged writes ordered by key name.
func (b *Batch) Writes() []Write {
	names := make([]string, 0, len(b.staged))
	for name := range b.staged {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]Write, 0, len(names))
	for _, name := range names {
		out = append(out, b.staged[name])
	}
	return out
}

// Commit persists the staged writes to the backing store and empties the
// batch. A backing Applier receives all writes in one call.
func (b *Batch) Commit(ctx context.Context) error {
	writes := b.Writes()
	if len(writes) == 0 {
		return nil
	}
	if applier, ok := b.base.(Applier); ok {
		if err := applier.Apply(ctx, writes); err != nil {
			return fmt.Errorf("apply %d writes: %w", len(writes), err)
		}
	} else {
		for _, w := range writes {
			if err := b.base.Set(ctx, w.Key, w.Value); err != nil {
				return fmt.Errorf("set %s: %w", w.Key, err)
			}
		}
	}
	b.staged = make(map[string]Write)
	return nil
}

// Discard drops every staged write.
func (b *Batch) Discard() {
	b.staged = make(map[string]Write)
}

// Digest returns the hex sha256 of the write set. Writes must be ordered as
// returned by Batch.Writes.
func Digest(writes []Write) string {
	h := sha256.New()
	for _, w := range writes {
		name := w.Key.String()
		fmt.Fprintf(h, "%d:%s%d:", len(name), name, len(w.Value))
		h.Write(w.Value)
	}
	return hex.EncodeToString(h.Sum(nil))
}
