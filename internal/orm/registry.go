package orm

import (
	"errors"
	"fmt"
	"sort"
)

// FieldSpec описывает одно поле типа.
type FieldSpec struct {
	Name     string
	Rule     FieldRule     // nil: поле только для чтения (id, readonly)
	Ref      string        // целевой тип для ссылочных полей
	Required bool          // для DDL: not null
	Default  func() string // значение при создании, если на входе пусто
}

// Descriptor: неизменяемое описание формы хранения одного типа сущности.
type Descriptor struct {
	name   string
	table  string
	fields []FieldSpec
	index  map[string]int
}

// NewDescriptor собирает описание типа. Поле "id" обязательно.
func NewDescriptor(name, table string, fields ...FieldSpec) (*Descriptor, error) {
	if name == "" {
		return nil, errors.New("descriptor: empty type name")
	}
	if table == "" {
		return nil, fmt.Errorf("descriptor %s: empty table name", name)
	}
	d := &Descriptor{
		name:   name,
		table:  table,
		fields: make([]FieldSpec, 0, len(fields)),
		index:  make(map[string]int, len(fields)),
	}
	for _, f := range fields {
		if f.Name == "" {
			return nil, fmt.Errorf("descriptor %s: empty field name", name)
		}
		if _, dup := d.index[f.Name]; dup {
			return nil, fmt.Errorf("descriptor %s: duplicate field %q", name, f.Name)
		}
		d.index[f.Name] = len(d.fields)
		d.fields = append(d.fields, f)
	}
	if _, ok := d.index["id"]; !ok {
		return nil, fmt.Errorf("descriptor %s: missing id field", name)
	}
	return d, nil
}

func (d *Descriptor) Name() string  { return d.name }
func (d *Descriptor) Table() string { return d.table }

// FieldNames: имена полей в порядке объявления (копия).
func (d *Descriptor) FieldNames() []string {
	out := make([]string, len(d.fields))
	for i, f := range d.fields {
		out[i] = f.Name
	}
	return out
}

// Fields: описания полей в порядке объявления (копия).
func (d *Descriptor) Fields() []FieldSpec {
	out := make([]FieldSpec, len(d.fields))
	copy(out, d.fields)
	return out
}

func (d *Descriptor) HasField(name string) bool {
	_, ok := d.index[name]
	return ok
}

func (d *Descriptor) Field(name string) (FieldSpec, bool) {
	i, ok := d.index[name]
	if !ok {
		return FieldSpec{}, false
	}
	return d.fields[i], true
}

// Registry: реестр схем по имени типа. Строится один раз при старте,
// после этого только читается.
type Registry struct {
	byName  map[string]*Descriptor
	byTable map[string]*Descriptor
	names   []string
}

// NewRegistry строит реестр. Повтор типа или таблицы: ошибка;
// ссылки должны указывать на зарегистрированные типы.
func NewRegistry(descs ...*Descriptor) (*Registry, error) {
	r := &Registry{
		byName:  make(map[string]*Descriptor, len(descs)),
		byTable: make(map[string]*Descriptor, len(descs)),
	}
	for _, d := range descs {
		if d == nil {
			return nil, errors.New("registry: nil descriptor")
		}
		if _, dup := r.byName[d.name]; dup {
			return nil, fmt.Errorf("registry: type %s registered twice", d.name)
		}
		if other, dup := r.byTable[d.table]; dup {
			return nil, fmt.Errorf("registry: table %q shared by %s and %s", d.table, other.name, d.name)
		}
		r.byName[d.name] = d
		r.byTable[d.table] = d
		r.names = append(r.names, d.name)
	}
	for _, d := range descs {
		for _, f := range d.fields {
			if f.Ref == "" {
				continue
			}
			if _, ok := r.byName[f.Ref]; !ok {
				return nil, fmt.Errorf("registry: %s.%s references unknown type %s", d.name, f.Name, f.Ref)
			}
		}
	}
	sort.Strings(r.names)
	return r, nil
}

// Lookup возвращает описание типа.
func (r *Registry) Lookup(typeName string) (*Descriptor, bool) {
	d, ok := r.byName[typeName]
	return d, ok
}

// ByTable ищет описание по имени таблицы.
func (r *Registry) ByTable(table string) (*Descriptor, bool) {
	d, ok := r.byTable[table]
	return d, ok
}

// MustLookup: обращение к незарегистрированному типу является ошибкой
// программиста и приводит к панике.
func (r *Registry) MustLookup(typeName string) *Descriptor {
	d, ok := r.byName[typeName]
	if !ok {
		panic(fmt.Sprintf("orm: type %q is not registered", typeName))
	}
	return d
}

func (r *Registry) TableName(typeName string) string {
	return r.MustLookup(typeName).table
}

func (r *Registry) FieldNames(typeName string) []string {
	return r.MustLookup(typeName).FieldNames()
}

func (r *Registry) HasField(typeName, field string) bool {
	return r.MustLookup(typeName).HasField(field)
}

// Types: имена всех зарегистрированных типов по алфавиту.
func (r *Registry) Types() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}
