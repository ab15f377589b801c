package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"taskboard/internal/orm"
)

// RowStore реализует orm.Store и orm.Writer поверх *sql.DB.
// Пустая строка хранится как NULL и наоборот.
type RowStore struct {
	db      *sql.DB
	dialect Dialect
	orderBy string
}

// New оборачивает соединение. Строки выдаются в порядке колонки id.
func New(db *sql.DB, d Dialect) *RowStore {
	return &RowStore{db: db, dialect: d, orderBy: "id"}
}

func (s *RowStore) DB() *sql.DB { return s.db }

// buildQuery: пустое значение фильтра означает is null.
func (s *RowStore) buildQuery(table string, filter orm.Filter) (string, []any) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "select * from %s", Ident(table))

	args := make([]any, 0, len(filter))
	conds := make([]string, 0, len(filter))
	for _, c := range filter {
		if c.Value == "" {
			conds = append(conds, Ident(c.Key)+" is null")
			continue
		}
		args = append(args, c.Value)
		conds = append(conds, fmt.Sprintf("%s = %s", Ident(c.Key), s.dialect.Placeholder(len(args))))
	}
	if len(conds) > 0 {
		sb.WriteString(" where ")
		sb.WriteString(strings.Join(conds, " and "))
	}
	if s.orderBy != "" {
		fmt.Fprintf(&sb, " order by %s", Ident(s.orderBy))
	}
	return sb.String(), args
}

func (s *RowStore) Query(ctx context.Context, table string, filter orm.Filter) ([]orm.Row, error) {
	q, args := s.buildQuery(table, filter)
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	var out []orm.Row
	for rows.Next() {
		vals := make([]sql.NullString, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(orm.Row, len(cols))
		for i, c := range cols {
			row[i] = orm.Pair{Key: c, Value: vals[i].String}
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (s *RowStore) Insert(ctx context.Context, table string, row orm.Row) error {
	cols := make([]string, len(row))
	marks := make([]string, len(row))
	args := make([]any, len(row))
	for i, c := range row {
		cols[i] = Ident(c.Key)
		marks[i] = s.dialect.Placeholder(i + 1)
		if c.Value == "" {
			args[i] = nil
		} else {
			args[i] = c.Value
		}
	}
	q := fmt.Sprintf("insert into %s (%s) values (%s)",
		Ident(table), strings.Join(cols, ", "), strings.Join(marks, ", "))
	_, err := s.db.ExecContext(ctx, q, args...)
	return err
}

// Apply выполняет DDL по порядку. skip решает, какие ошибки считать «уже существует».
func Apply(ctx context.Context, db *sql.DB, stmts []string, skip func(error) bool) error {
	for _, stmt := range stmts {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			if skip != nil && skip(err) {
				continue
			}
			return fmt.Errorf("DDL apply failed: %w", err)
		}
	}
	return nil
}
