package dialog

import (
	"context"
	"encoding/json"
	"sync"
)

// MemRepo хранит состояния в памяти. Payload проходит через JSON,
// как и в Postgres, поэтому читается теми же хелперами.
type MemRepo struct {
	mu    sync.Mutex
	items map[int64]memItem
}

type memItem struct {
	state State
	raw   []byte
}

func NewMemRepo() *MemRepo { return &MemRepo{items: make(map[int64]memItem)} }

func (r *MemRepo) Get(_ context.Context, chatID int64) (*Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	it, ok := r.items[chatID]
	if !ok {
		return &Item{ChatID: chatID, State: StateIdle, Payload: Payload{}}, nil
	}
	return &Item{ChatID: chatID, State: it.state, Payload: decodePayload(it.raw)}, nil
}

func (r *MemRepo) Set(_ context.Context, chatID int64, state State, payload Payload) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[chatID] = memItem{state: state, raw: raw}
	return nil
}

func (r *MemRepo) Reset(_ context.Context, chatID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, chatID)
	return nil
}
