package sqlstore

import (
	"fmt"
	"strings"

	"taskboard/internal/orm"
)

type fkStmt struct {
	table, name, col, refTable string
}

// GenerateDDL возвращает идемпотентные DDL-операторы для всех типов реестра.
// Все колонки text: хранилище строк оперирует сырыми строковыми значениями.
// Для Postgres внешние ключи идут второй фазой, после создания всех таблиц.
func GenerateDDL(reg *orm.Registry, d Dialect) ([]string, error) {
	var stmts []string
	var fks []fkStmt

	for _, typeName := range reg.Types() {
		desc := reg.MustLookup(typeName)
		tbl := desc.Table()

		cols := make([]string, 0, len(desc.Fields()))
		for _, f := range desc.Fields() {
			var col string
			switch {
			case f.Name == "id":
				col = fmt.Sprintf("%s text primary key", Ident(f.Name))
			case f.Required:
				col = fmt.Sprintf("%s text not null", Ident(f.Name))
			default:
				col = fmt.Sprintf("%s text null", Ident(f.Name))
			}

			if f.Ref != "" {
				target, ok := reg.Lookup(f.Ref)
				if !ok {
					return nil, fmt.Errorf("%s.%s: unknown ref target %s", typeName, f.Name, f.Ref)
				}
				if d.InlineForeignKeys {
					col += fmt.Sprintf(" references %s(%s)", Ident(target.Table()), Ident("id"))
				} else {
					fks = append(fks, fkStmt{
						table:    tbl,
						name:     strings.ToLower(tbl + "_" + f.Name + "_fk"),
						col:      f.Name,
						refTable: target.Table(),
					})
				}
			}
			cols = append(cols, col)
		}

		stmts = append(stmts, fmt.Sprintf("create table if not exists %s (\n  %s\n)",
			Ident(tbl), strings.Join(cols, ",\n  ")))
	}

	for _, fk := range fks {
		stmts = append(stmts, fmt.Sprintf(
			"alter table %s add constraint %s foreign key (%s) references %s(%s)",
			Ident(fk.table), Ident(fk.name), Ident(fk.col), Ident(fk.refTable), Ident("id"),
		))
	}
	return stmts, nil
}
