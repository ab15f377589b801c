package orm

import (
	"context"
	"errors"
	"fmt"
)

// Kind: типизированный доступ к сущностям одного зарегистрированного типа.
type Kind[E any] struct {
	m    *Mapper
	desc *Descriptor
	wrap func(*Entity) E
}

// Bind связывает Go-тип E с типом из реестра. fields: имена полей, которые
// читают аксессоры E; каждое должно быть в реестре, иначе ошибка при старте.
func Bind[E any](m *Mapper, typeName string, wrap func(*Entity) E, fields ...string) (Kind[E], error) {
	d, ok := m.reg.Lookup(typeName)
	if !ok {
		return Kind[E]{}, fmt.Errorf("bind %s: type is not registered", typeName)
	}
	for _, f := range fields {
		if !d.HasField(f) {
			return Kind[E]{}, fmt.Errorf("bind %s: %w", typeName, &UnknownFieldError{Type: typeName, Field: f})
		}
	}
	return Kind[E]{m: m, desc: d, wrap: wrap}, nil
}

func (k Kind[E]) Name() string            { return k.desc.name }
func (k Kind[E]) Descriptor() *Descriptor { return k.desc }

// GetOne возвращает первую подходящую строку в порядке хранилища.
// Ноль совпадений: *NotFoundError.
func (k Kind[E]) GetOne(ctx context.Context, filter Filter) (E, error) {
	var zero E
	items, err := k.m.fetch(ctx, k.desc, filter)
	if err != nil {
		return zero, err
	}
	if len(items) == 0 {
		return zero, &NotFoundError{Type: k.desc.name, Filter: filter}
	}
	return k.wrap(items[0]), nil
}

// GetMany возвращает все подходящие сущности; пустой результат: не ошибка.
func (k Kind[E]) GetMany(ctx context.Context, filter Filter) ([]E, error) {
	items, err := k.m.fetch(ctx, k.desc, filter)
	if err != nil {
		return nil, err
	}
	out := make([]E, len(items))
	for i, e := range items {
		out[i] = k.wrap(e)
	}
	return out, nil
}

// Create проверяет внешний ввод валидаторами полей, присваивает id и
// записывает строку. Все ошибки валидации возвращаются вместе (errors.Join).
func (k Kind[E]) Create(ctx context.Context, input map[string]string) (E, error) {
	var zero E
	w, ok := k.m.store.(Writer)
	if !ok {
		return zero, ErrReadOnlyStore
	}

	var errs []error
	for name, raw := range input {
		spec, ok := k.desc.Field(name)
		if !ok {
			return zero, &UnknownFieldError{Type: k.desc.name, Field: name}
		}
		if spec.Rule == nil && raw != "" {
			errs = append(errs, &ValidationError{Field: name, Reason: "field is read-only", Constraint: "readonly", Value: raw})
		}
	}

	e := newEntity(k.desc, k.m)
	e.attrs["id"] = k.m.newID()
	for _, spec := range k.desc.fields {
		if spec.Name == "id" {
			continue
		}
		raw := input[spec.Name]
		if raw == "" && spec.Default != nil {
			raw = spec.Default()
		}
		if spec.Rule == nil {
			e.attrs[spec.Name] = raw
			continue
		}
		if err := e.Set(ctx, spec.Name, raw); err != nil {
			if !errors.Is(err, ErrValidation) {
				return zero, err
			}
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return zero, errors.Join(errs...)
	}

	if err := w.Insert(ctx, k.desc.table, e.Values()); err != nil {
		return zero, &StoreError{Op: "insert", Table: k.desc.table, Cause: err}
	}
	return k.wrap(e), nil
}

// SetOf: ленивая коллекция сущностей, у которых foreignKey == ownerID.
func (k Kind[E]) SetOf(foreignKey, ownerID string) *Set[E] {
	if !k.desc.HasField(foreignKey) {
		panic(&UnknownFieldError{Type: k.desc.name, Field: foreignKey})
	}
	return &Set[E]{kind: k, filter: Where(foreignKey, ownerID)}
}
