// Package memstore: хранилище строк в памяти. Порядок строк: порядок вставки.
package memstore

import (
	"context"
	"fmt"
	"sync"

	"taskboard/internal/orm"
)

type table struct {
	rows []orm.Row
	byID map[string]int
}

type Store struct {
	mu     sync.RWMutex
	tables map[string]*table
}

// New создаёт пустое хранилище; таблицы появляются при первой вставке.
func New() *Store {
	return &Store{tables: make(map[string]*table)}
}

// Query возвращает копии строк, удовлетворяющих фильтру.
func (s *Store) Query(ctx context.Context, tableName string, filter orm.Filter) ([]orm.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	t := s.tables[tableName]
	if t == nil {
		return nil, nil
	}
	// быстрый путь для выборки по id
	if len(filter) == 1 && filter[0].Key == "id" && filter[0].Value != "" {
		if i, ok := t.byID[filter[0].Value]; ok {
			return []orm.Row{t.rows[i].Clone()}, nil
		}
		return nil, nil
	}

	var out []orm.Row
	for _, r := range t.rows {
		if filter.Match(r) {
			out = append(out, r.Clone())
		}
	}
	return out, nil
}

// Insert добавляет строку; повтор id в таблице: ошибка.
func (s *Store) Insert(ctx context.Context, tableName string, row orm.Row) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.tables[tableName]
	if t == nil {
		t = &table{byID: make(map[string]int)}
		s.tables[tableName] = t
	}
	if id, ok := row.Get("id"); ok && id != "" {
		if _, dup := t.byID[id]; dup {
			return fmt.Errorf("%s: duplicate id %q", tableName, id)
		}
		t.byID[id] = len(t.rows)
	}
	t.rows = append(t.rows, row.Clone())
	return nil
}

// Len: число строк в таблице.
func (s *Store) Len(tableName string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if t := s.tables[tableName]; t != nil {
		return len(t.rows)
	}
	return 0
}
