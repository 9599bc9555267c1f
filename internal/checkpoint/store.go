package checkpoint

import (
	"context"
	"fmt"
	"time"

	"k8s.io/klog/v2"
)

// Store persists encoded checkpoints under string keys.
type Store interface {
	// Put stores data under key, replacing any previous object.
	Put(ctx context.Context, key string, data []byte) error

	// Get returns the data stored under key.
	// If no such object exists, Get returns an error for which
	// errors.Is(err, os.ErrNotExist) is true.
	Get(ctx context.Context, key string) ([]byte, error)
}

// Save encodes state and writes it to store under key.
func Save(ctx context.Context, store Store, key string, state State) error {
	log := klog.FromContext(ctx)

	data, err := Encode(state)
	if err != nil {
		return fmt.Errorf("encoding checkpoint %q: %w", key, err)
	}

	startedAt := time.Now()
	if err := store.Put(ctx, key, data); err != nil {
		return fmt.Errorf("saving checkpoint %q: %w", key, err)
	}

	log.Info("saved checkpoint", "key", key, "epoch", state.Epoch, "tensors", len(state.Model)+len(state.Optimizer),
		"bytes", len(data), "duration", time.Since(startedAt))
	return nil
}

// Load reads the checkpoint stored under key and decodes it.
func Load(ctx context.Context, store Store, key string) (State, error) {
	log := klog.FromContext(ctx)

	data, err := store.Get(ctx, key)
	if err != nil {
		return State{}, fmt.Errorf("loading checkpoint %q: %w", key, err)
	}

	state, err := Decode(data)
	if err != nil {
		return State{}, fmt.Errorf("decoding checkpoint %q: %w", key, err)
	}

	log.Info("loaded checkpoint", "key", key, "epoch", state.Epoch, "bytes", len(data))
	return state, nil
}
