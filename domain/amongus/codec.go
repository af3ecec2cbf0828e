package amongus

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dev-tnsq/Proof-of-Sus/storage"
)

// load decodes the JSON value under key into dst. It reports false when the
// key is absent.
func load(ctx context.Context, store storage.Store, key storage.Key, dst any) (bool, error) {
	raw, ok, err := store.Get(ctx, key)
	if err != nil {
		return false, ErrStorage.wrap(fmt.Errorf("get %s: %w", key, err))
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, ErrStorage.wrap(fmt.Errorf("decode %s: %w", key, err))
	}
	return true, nil
}

func save(ctx context.Context, store storage.Store, key storage.Key, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return ErrStorage.wrap(fmt.Errorf("encode %s: %w", key, err))
	}
	if err := store.Set(ctx, key, raw); err != nil {
		return ErrStorage.wrap(fmt.Errorf("set %s: %w", key, err))
	}
	return nil
}

// EncodeArgs returns the canonical payload for a method's arguments. The
// contract compares it byte for byte with the signed invocation payload.
func EncodeArgs(args any) ([]byte, error) {
	raw, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("encode arguments: %w", err)
	}
	return raw, nil
}
