package storage

import (
	"context"
	"slices"
	"sync"
)

var _ Slot = (*MemorySlot)(nil)

// MemorySlot keeps data for the process lifetime only.
type MemorySlot struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemorySlot() *MemorySlot {
	return &MemorySlot{data: make(map[string][]byte)}
}

func (s *MemorySlot) Read(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.data[key]
	if !ok {
		return nil, ErrSlotEmpty
	}
	return slices.Clone(data), nil
}

func (s *MemorySlot) Write(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = slices.Clone(data)
	return nil
}

func (s *MemorySlot) Close() error { return nil }
