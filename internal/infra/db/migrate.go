package db

import (
	"database/sql"
	"log/slog"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// Migrate накатывает SQL-миграции из dir.
func Migrate(dsn, dir string, log *slog.Logger) error {
	sqlDB, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer func() { _ = sqlDB.Close() }()

	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	before, _ := goose.GetDBVersion(sqlDB)
	if err := goose.Up(sqlDB, dir); err != nil {
		return err
	}
	after, _ := goose.GetDBVersion(sqlDB)
	log.Info("migrations applied", "from", before, "to", after)
	return nil
}
