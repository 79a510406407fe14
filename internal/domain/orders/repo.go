package orders

import (
	"context"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var orderColumns = []string{
	"id", "name", "phone", "message", "source", "channel", "total::text", "chat_id", "status", "created_at", "processed_at",
}

type Repo struct {
	pool *pgxpool.Pool
	sb   sq.StatementBuilderType
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{
		pool: pool,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *Repo) Create(ctx context.Context, o *Order) error {
	q := r.sb.
		Insert("orders").
		Columns("id", "name", "phone", "message", "source", "channel", "total", "chat_id", "status").
		Values(o.ID, o.Name, o.Phone, o.Message, o.Source, o.Channel, o.Total.String(), o.ChatID, string(o.Status)).
		Suffix("RETURNING created_at")

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return err
	}
	return r.pool.QueryRow(ctx, sqlStr, args...).Scan(&o.CreatedAt)
}

func (r *Repo) OrderByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	q := r.sb.Select(orderColumns...).From("orders").Where(sq.Eq{"id": id})

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}
	o, err := scanOrder(r.pool.QueryRow(ctx, sqlStr, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return o, nil
}

// List — последние заявки, новые сверху. Пустой status — все.
func (r *Repo) List(ctx context.Context, status Status, limit int) ([]Order, error) {
	q := r.sb.Select(orderColumns...).From("orders").OrderBy("created_at DESC")
	if status != "" {
		q = q.Where(sq.Eq{"status": string(status)})
	}
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, *o)
	}
	return res, rows.Err()
}

func (r *Repo) MarkProcessed(ctx context.Context, id uuid.UUID) error {
	q := r.sb.
		Update("orders").
		Set("status", string(StatusProcessed)).
		Set("processed_at", sq.Expr("now()")).
		Where(sq.Eq{"id": id})

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return err
	}
	ct, err := r.pool.Exec(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanOrder(row pgx.Row) (*Order, error) {
	var (
		o      Order
		total  string
		status string
	)
	if err := row.Scan(&o.ID, &o.Name, &o.Phone, &o.Message, &o.Source, &o.Channel, &total, &o.ChatID, &status, &o.CreatedAt, &o.ProcessedAt); err != nil {
		return nil, err
	}
	d, err := decimal.NewFromString(total)
	if err != nil {
		return nil, err
	}
	o.Total = d
	o.Status = Status(status)
	return &o, nil
}
