package orm

import (
	"context"
	"sync"
)

// Entity: общая часть сохраняемого объекта: тип, сырые атрибуты и
// привязки полей к валидаторам. Создаётся маппером при гидратации строки.
type Entity struct {
	desc   *Descriptor
	mapper *Mapper

	mu    sync.RWMutex
	attrs map[string]string

	bindMu   sync.Mutex
	bindings map[string]binding
}

func newEntity(d *Descriptor, m *Mapper) *Entity {
	return &Entity{
		desc:   d,
		mapper: m,
		attrs:  make(map[string]string, len(d.fields)),
	}
}

func (e *Entity) Type() string            { return e.desc.name }
func (e *Entity) Descriptor() *Descriptor { return e.desc }

// ID: значение поля "id".
func (e *Entity) ID() string { return e.Attr("id") }

// Get читает сырое значение по имени поля.
func (e *Entity) Get(name string) (string, error) {
	if !e.desc.HasField(name) {
		return "", &UnknownFieldError{Type: e.desc.name, Field: name}
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.attrs[name], nil
}

// Attr: чтение для типизированных аксессоров. Имя должно быть в реестре:
// Bind проверяет это при старте, поэтому неизвестное имя здесь: паника.
func (e *Entity) Attr(name string) string {
	v, err := e.Get(name)
	if err != nil {
		panic(err)
	}
	return v
}

// Set пропускает raw через валидатор поля и при успехе сохраняет нормализованное значение.
func (e *Entity) Set(ctx context.Context, name, raw string) error {
	spec, ok := e.desc.Field(name)
	if !ok {
		return &UnknownFieldError{Type: e.desc.name, Field: name}
	}
	if spec.Rule == nil {
		return &ValidationError{Field: name, Reason: "field is read-only", Constraint: "readonly", Value: raw}
	}
	return e.binding(name, spec.Rule).pass(ctx, raw)
}

func (e *Entity) binding(name string, r FieldRule) binding {
	e.bindMu.Lock()
	defer e.bindMu.Unlock()
	if b, ok := e.bindings[name]; ok {
		return b
	}
	if e.bindings == nil {
		e.bindings = make(map[string]binding)
	}
	b := r.bind(e, name)
	e.bindings[name] = b
	return b
}

// Values: снимок атрибутов в порядке объявления полей.
func (e *Entity) Values() Row {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make(Row, 0, len(e.desc.fields))
	for _, f := range e.desc.fields {
		out = append(out, Pair{Key: f.Name, Value: e.attrs[f.Name]})
	}
	return out
}

func (e *Entity) store(name, raw string) {
	e.mu.Lock()
	e.attrs[name] = raw
	e.mu.Unlock()
}
