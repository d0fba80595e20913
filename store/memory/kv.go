// Package memory is a process-local KVStore for development and tests.
package memory

import (
	"context"
	"sync"
)

type KV struct {
	mu    sync.RWMutex
	slots map[string]string
}

func NewKV() *KV {
	return &KV{slots: make(map[string]string)}
}

func (k *KV) Get(_ context.Context, key string) (string, bool, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	v, ok := k.slots[key]
	return v, ok, nil
}

func (k *KV) Set(_ context.Context, key, value string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.slots[key] = value
	return nil
}

func (k *KV) Ping(context.Context) error {
	return nil
}
