package orm

import (
	"context"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Mapper связывает реестр схем с хранилищем строк.
type Mapper struct {
	reg   *Registry
	store Store

	idMu    sync.Mutex
	entropy io.Reader
}

// NewMapper готовит маппер; реестр после этого не меняется.
func NewMapper(reg *Registry, store Store) *Mapper {
	src := rand.New(rand.NewSource(time.Now().UnixNano()))
	return &Mapper{
		reg:     reg,
		store:   store,
		entropy: ulid.Monotonic(src, 0),
	}
}

func (m *Mapper) Registry() *Registry { return m.reg }

// newID: монотонный ULID; источник энтропии не потокобезопасен, поэтому под мьютексом.
func (m *Mapper) newID() string {
	m.idMu.Lock()
	defer m.idMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), m.entropy).String()
}

func (m *Mapper) fetch(ctx context.Context, d *Descriptor, filter Filter) ([]*Entity, error) {
	for _, c := range filter {
		if !d.HasField(c.Key) {
			return nil, &InvalidFilterError{Type: d.name, Field: c.Key}
		}
	}
	rows, err := m.store.Query(ctx, d.table, filter)
	if err != nil {
		return nil, &StoreError{Op: "query", Table: d.table, Cause: err}
	}
	out := make([]*Entity, 0, len(rows))
	for _, row := range rows {
		out = append(out, m.hydrate(d, row))
	}
	return out, nil
}

// hydrate копирует колонки строки в атрибуты в порядке реестра.
// Валидаторы не вызываются: данные из хранилища считаются корректными.
func (m *Mapper) hydrate(d *Descriptor, row Row) *Entity {
	e := newEntity(d, m)
	for _, f := range d.fields {
		v, _ := row.Get(f.Name)
		e.attrs[f.Name] = v
	}
	return e
}

func (m *Mapper) existsFunc(target string) func(ctx context.Context, id string) (bool, error) {
	d := m.reg.MustLookup(target)
	return func(ctx context.Context, id string) (bool, error) {
		rows, err := m.store.Query(ctx, d.table, Where("id", id))
		if err != nil {
			return false, &StoreError{Op: "query", Table: d.table, Cause: err}
		}
		return len(rows) > 0, nil
	}
}
