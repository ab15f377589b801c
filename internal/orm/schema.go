package orm

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"taskboard/internal/dsl"
)

// FromDSL строит описания типов из сущностей DSL. now используется для
// значений по умолчанию today/now.
func FromDSL(entities []*dsl.Entity, now func() time.Time) ([]*Descriptor, error) {
	if now == nil {
		now = time.Now
	}
	out := make([]*Descriptor, 0, len(entities))
	for _, e := range entities {
		specs := make([]FieldSpec, 0, len(e.Fields))
		for _, f := range e.Fields {
			spec, err := fieldSpec(f, now)
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", e.Name, f.Name, err)
			}
			specs = append(specs, spec)
		}
		d, err := NewDescriptor(e.Name, e.Table, specs...)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// RegistryFromDSL: FromDSL + NewRegistry.
func RegistryFromDSL(entities []*dsl.Entity, now func() time.Time) (*Registry, error) {
	descs, err := FromDSL(entities, now)
	if err != nil {
		return nil, err
	}
	return NewRegistry(descs...)
}

func fieldSpec(f dsl.Field, now func() time.Time) (FieldSpec, error) {
	spec := FieldSpec{Name: f.Name, Required: f.Required() || f.Type == dsl.TypeID}
	if def, ok := f.Option("default"); ok {
		spec.Default = defaultFunc(f.Type, def, now)
	}
	if f.Type == dsl.TypeRef {
		spec.Ref = f.RefTarget
	}
	if f.ReadOnly() {
		return spec, nil
	}

	required := f.Required()
	switch f.Type {
	case dsl.TypeString, dsl.TypeText:
		limit := DefaultMaxLength
		if f.Type == dsl.TypeText {
			limit = 0
		}
		if v, ok := f.Option("max_length"); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return spec, fmt.Errorf("max_length: %w", err)
			}
			limit = n
		}
		if required {
			spec.Rule = Rule[string](Required[string]{Inner: Text{MaxLength: limit}})
		} else {
			spec.Rule = Rule[string](Text{MaxLength: limit})
		}
	case dsl.TypeInt:
		r := IntRange{Min: math.MinInt64, Max: math.MaxInt64}
		if v, ok := f.Option("min"); ok {
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return spec, fmt.Errorf("min: %w", err)
			}
			r.Min = n
		}
		if v, ok := f.Option("max"); ok {
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return spec, fmt.Errorf("max: %w", err)
			}
			r.Max = n
		}
		spec.Rule = ruleFor[int64](r, required)
	case dsl.TypeDate:
		spec.Rule = ruleFor[time.Time](Date{Layout: DateLayout}, required)
	case dsl.TypeDateTime:
		spec.Rule = ruleFor[time.Time](Date{Layout: time.RFC3339}, required)
	case dsl.TypeEnum:
		spec.Rule = ruleFor[string](OneOf{Values: append([]string(nil), f.Enum...)}, required)
	case dsl.TypeRef:
		spec.Rule = RefRule(f.RefTarget, required)
	default:
		return spec, fmt.Errorf("unknown type: %s", f.Type)
	}
	return spec, nil
}

func ruleFor[T any](v Validator[T], required bool) FieldRule {
	if required {
		return Rule[T](Required[T]{Inner: v})
	}
	return Rule[*T](Optional[T]{Inner: v})
}

func defaultFunc(typ, def string, now func() time.Time) func() string {
	switch {
	case typ == dsl.TypeDate && def == "today":
		return func() string { return now().Format(DateLayout) }
	case typ == dsl.TypeDateTime && def == "now":
		return func() string { return now().UTC().Format(time.RFC3339) }
	default:
		return func() string { return def }
	}
}
