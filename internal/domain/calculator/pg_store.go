package calculator

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore хранит каталог одной строкой jsonb в таблице calculator_catalog.
type PGStore struct{ pool *pgxpool.Pool }

func NewPGStore(pool *pgxpool.Pool) *PGStore { return &PGStore{pool: pool} }

func (s *PGStore) Load(ctx context.Context) ([]byte, error) {
	row := s.pool.QueryRow(ctx, `SELECT doc FROM calculator_catalog WHERE id = 1`)
	var raw []byte
	if err := row.Scan(&raw); err != nil {
		return nil, loadError(err)
	}
	return raw, nil
}

// loadError: отсутствие строки — ещё не сохранённый каталог.
func loadError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNoDocument
	}
	return err
}

func (s *PGStore) Save(ctx context.Context, doc []byte) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO calculator_catalog (id, doc, updated_at)
		VALUES (1, $1, now())
		ON CONFLICT (id) DO UPDATE SET
		  doc=$1, updated_at=now()
	`, doc)
	return err
}
