package pg

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"

	"taskboard/internal/orm"
	"taskboard/internal/sqlstore"
)

// codeDuplicateObject: повторное добавление constraint при повторной миграции.
const codeDuplicateObject = "42710"

// GenerateDDL: DDL для Postgres: таблицы, затем внешние ключи.
func GenerateDDL(reg *orm.Registry) ([]string, error) {
	return sqlstore.GenerateDDL(reg, sqlstore.Postgres)
}

// ApplyDDL выполняет операторы по порядку. Ожидается idempotent DDL;
// duplicate_object (42710) пропускается.
func ApplyDDL(ctx context.Context, db *sql.DB, stmts []string) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	log := zerolog.Ctx(ctx)
	return sqlstore.Apply(ctx, db, stmts, func(err error) bool {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == codeDuplicateObject {
			log.Debug().Str("constraint", pgErr.ConstraintName).
				Msgf("DDL skipped (already exists): %s", strings.TrimSpace(pgErr.Message))
			return true
		}
		return false
	})
}

// Migrate генерирует и применяет схему реестра.
func Migrate(ctx context.Context, db *sql.DB, reg *orm.Registry) error {
	stmts, err := GenerateDDL(reg)
	if err != nil {
		return err
	}
	return ApplyDDL(ctx, db, stmts)
}

// NewRowStore: хранилище строк поверх Postgres.
func NewRowStore(db *sql.DB) *sqlstore.RowStore {
	return sqlstore.New(db, sqlstore.Postgres)
}
