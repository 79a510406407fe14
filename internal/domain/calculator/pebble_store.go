package calculator

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/cockroachdb/pebble"
)

var catalogKey = []byte("calculator/catalog")

// PebbleStore держит документ каталога во встроенной базе Pebble.
// Подходит для установки на один сервер без Postgres.
type PebbleStore struct {
	db *pebble.DB
}

func NewPebbleStore(dir string) (*PebbleStore, error) {
	db, err := pebble.Open(filepath.Clean(dir), &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("pebble open: %w", err)
	}
	return &PebbleStore{db: db}, nil
}

func (p *PebbleStore) Close() error { return p.db.Close() }

func (p *PebbleStore) Load(_ context.Context) ([]byte, error) {
	v, closer, err := p.db.Get(catalogKey)
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, ErrNoDocument
		}
		return nil, err
	}
	defer func() { _ = closer.Close() }()
	return append([]byte(nil), v...), nil
}

func (p *PebbleStore) Save(_ context.Context, doc []byte) error {
	// каталог меняется редко, поэтому пишем с синхронизацией WAL
	return p.db.Set(catalogKey, doc, pebble.Sync)
}
