package orm

import "context"

// Store: абстрактное хранилище строк, к которому обращается маппер.
// Порядок строк в результате определяется хранилищем.
type Store interface {
	Query(ctx context.Context, table string, filter Filter) ([]Row, error)
}

// Writer: необязательная возможность хранилища: вставка строки.
type Writer interface {
	Insert(ctx context.Context, table string, row Row) error
}
