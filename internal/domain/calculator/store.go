package calculator

import (
	"context"
	"sync"
)

// Store — хранилище документа каталога: чтение и замена целиком.
// Load возвращает ErrNoDocument, если документа нет.
type Store interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, doc []byte) error
}

// MemStore хранит документ в памяти процесса.
type MemStore struct {
	mu  sync.RWMutex
	doc []byte
}

func NewMemStore() *MemStore { return &MemStore{} }

// NewMemStoreWith создаёт хранилище с готовым документом (удобно в тестах).
func NewMemStoreWith(doc []byte) *MemStore {
	return &MemStore{doc: append([]byte(nil), doc...)}
}

func (s *MemStore) Load(_ context.Context) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.doc == nil {
		return nil, ErrNoDocument
	}
	return append([]byte(nil), s.doc...), nil
}

func (s *MemStore) Save(_ context.Context, doc []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = append([]byte(nil), doc...)
	return nil
}
