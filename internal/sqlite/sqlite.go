// Package sqlite: хранилище строк на встроенной SQLite (modernc.org/sqlite, без cgo).
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // driver: sqlite

	"taskboard/internal/orm"
	"taskboard/internal/sqlstore"
)

// Open открывает базу по пути (":memory:": в памяти) и включает внешние ключи.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// одно соединение: прагмы и :memory: действуют в рамках соединения
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("set pragma: %w", err)
		}
	}
	return db, nil
}

// Migrate создаёт таблицы для всех типов реестра.
func Migrate(ctx context.Context, db *sql.DB, reg *orm.Registry) error {
	stmts, err := sqlstore.GenerateDDL(reg, sqlstore.SQLite)
	if err != nil {
		return err
	}
	return sqlstore.Apply(ctx, db, stmts, nil)
}

// NewRowStore: хранилище строк поверх SQLite.
func NewRowStore(db *sql.DB) *sqlstore.RowStore {
	return sqlstore.New(db, sqlstore.SQLite)
}
