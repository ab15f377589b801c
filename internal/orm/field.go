package orm

import "context"

// Field: типизированный слот одного атрибута. Значение записывается только
// через Pass, при успехе сырая форма попадает в хранилище атрибутов владельца.
type Field[T any] struct {
	name  string
	owner *Entity
	value T
	set   bool
}

// NewField создаёт отдельный слот без владельца (например, для предварительной проверки формы).
func NewField[T any](name string) *Field[T] {
	return &Field[T]{name: name}
}

func (f *Field[T]) Name() string { return f.name }

// Value: последнее принятое значение.
func (f *Field[T]) Value() T { return f.value }

// IsSet сообщает, было ли значение принято хотя бы раз.
func (f *Field[T]) IsSet() bool { return f.set }

func (f *Field[T]) commit(v T, raw string) {
	f.value, f.set = v, true
	if f.owner != nil {
		f.owner.store(f.name, raw)
	}
}

// Validator: правило проверки и нормализации сырого ввода для полей типа T.
type Validator[T any] interface {
	Check(ctx context.Context, raw string) (T, error)
	Format(v T) string
	Constraint() string
}

// Pass проверяет raw. При успехе и непустом f записывает нормализованное
// значение в поле; при ошибке ничего не меняет. С f == nil только проверяет.
func Pass[T any](ctx context.Context, v Validator[T], raw string, f *Field[T]) error {
	val, err := v.Check(ctx, raw)
	if err != nil {
		if ve, ok := err.(*ValidationError); ok && ve.Field == "" && f != nil {
			cp := *ve
			cp.Field = f.name
			return &cp
		}
		return err
	}
	if f != nil {
		f.commit(val, v.Format(val))
	}
	return nil
}

// FieldRule связывает поле типа с валидатором. Собирается через Rule
// (или RefRule для ссылок), для каждой сущности создаётся свой слот.
type FieldRule interface {
	Constraint() string
	bind(owner *Entity, name string) binding
}

type binding interface {
	pass(ctx context.Context, raw string) error
}

// Rule делает правило поля из любого Validator[T].
func Rule[T any](v Validator[T]) FieldRule {
	return rule[T]{v: v}
}

type rule[T any] struct {
	v Validator[T]
}

func (r rule[T]) Constraint() string { return r.v.Constraint() }

func (r rule[T]) bind(owner *Entity, name string) binding {
	return &bound[T]{v: r.v, f: &Field[T]{name: name, owner: owner}}
}

type bound[T any] struct {
	v Validator[T]
	f *Field[T]
}

func (b *bound[T]) pass(ctx context.Context, raw string) error {
	return Pass(ctx, b.v, raw, b.f)
}

// RefRule: правило внешнего ключа: id должен существовать у целевого типа.
// Проверка существования идёт через маппер сущности-владельца.
func RefRule(target string, required bool) FieldRule {
	return refRule{target: target, required: required}
}

type refRule struct {
	target   string
	required bool
}

func (r refRule) Constraint() string {
	c := "ref[" + r.target + "]"
	if r.required {
		c = "required; " + c
	}
	return c
}

func (r refRule) bind(owner *Entity, name string) binding {
	ref := Reference{Target: r.target}
	if owner != nil && owner.mapper != nil {
		ref.Exists = owner.mapper.existsFunc(r.target)
	}
	if r.required {
		return rule[string]{v: Required[string]{Inner: ref}}.bind(owner, name)
	}
	return rule[*string]{v: Optional[string]{Inner: ref}}.bind(owner, name)
}
