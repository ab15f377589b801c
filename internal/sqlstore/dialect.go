// Package sqlstore: хранилище строк поверх database/sql, общее для Postgres и SQLite.
package sqlstore

import (
	"strconv"
	"strings"
)

// Dialect: различия SQL между поддерживаемыми СУБД.
type Dialect struct {
	Name string
	// InlineForeignKeys: FK объявляются прямо в create table (SQLite не умеет alter table add constraint).
	InlineForeignKeys bool
	Placeholder       func(i int) string
}

var Postgres = Dialect{
	Name:        "postgres",
	Placeholder: func(i int) string { return "$" + strconv.Itoa(i) },
}

var SQLite = Dialect{
	Name:              "sqlite",
	InlineForeignKeys: true,
	Placeholder:       func(int) string { return "?" },
}

// Ident экранирует идентификатор двойными кавычками.
func Ident(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
