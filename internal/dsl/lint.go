package dsl

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Issue: одна проблема схемы.
type Issue struct {
	Entity  string `json:"entity"`
	Field   string `json:"field,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (i Issue) String() string {
	if i.Field == "" {
		return fmt.Sprintf("%s: %s", i.Entity, i.Message)
	}
	return fmt.Sprintf("%s.%s: %s", i.Entity, i.Field, i.Message)
}

// Lint проверяет базовые противоречия в DSL.
func Lint(entities []*Entity) []Issue {
	var issues []Issue
	add := func(e, f, code, msg string) {
		issues = append(issues, Issue{Entity: e, Field: f, Code: code, Message: msg})
	}

	names := make(map[string]struct{}, len(entities))
	tables := make(map[string]string, len(entities))
	for _, e := range entities {
		if _, dup := names[e.Name]; dup {
			add(e.Name, "", "duplicate_entity", "entity declared more than once")
		}
		names[e.Name] = struct{}{}
		if prev, dup := tables[e.Table]; dup {
			add(e.Name, "", "duplicate_table", fmt.Sprintf("table %q already used by %s", e.Table, prev))
		}
		tables[e.Table] = e.Name
	}

	for _, e := range entities {
		seen := map[string]struct{}{}
		hasID := false
		for _, f := range e.Fields {
			if _, dup := seen[f.Name]; dup {
				add(e.Name, f.Name, "duplicate_field", "field declared more than once")
			}
			seen[f.Name] = struct{}{}

			if !KnownType(f.Type) {
				add(e.Name, f.Name, "unknown_type", fmt.Sprintf("unknown type %q", f.Type))
				continue
			}
			if f.Type == TypeID {
				if f.Name != "id" {
					add(e.Name, f.Name, "id_name", "id type is reserved for field \"id\"")
				}
				hasID = true
			}
			if f.Type == TypeRef {
				if strings.TrimSpace(f.RefTarget) == "" {
					add(e.Name, f.Name, "ref_target_empty", "ref field has empty target")
				} else if _, ok := names[f.RefTarget]; !ok {
					add(e.Name, f.Name, "ref_target_unknown", fmt.Sprintf("ref target %q is not declared", f.RefTarget))
				}
			}
			if f.Type == TypeEnum && len(f.Enum) == 0 {
				add(e.Name, f.Name, "enum_empty", "enum has no values")
			}
			for _, k := range []string{"max_length", "min", "max"} {
				v, ok := f.Option(k)
				if !ok {
					continue
				}
				if _, err := strconv.ParseInt(v, 10, 64); err != nil {
					add(e.Name, f.Name, "option_not_numeric", fmt.Sprintf("option %s=%q is not an integer", k, v))
				}
			}
			if f.Required() && f.ReadOnly() && f.Type != TypeID {
				add(e.Name, f.Name, "required_readonly", "readonly field cannot be required")
			}
		}
		if !hasID {
			add(e.Name, "", "missing_id", "entity has no \"id: id\" field")
		}
	}
	return issues
}

// Check возвращает ошибку, если Lint нашёл проблемы.
func Check(entities []*Entity) error {
	issues := Lint(entities)
	if len(issues) == 0 {
		return nil
	}
	errs := make([]error, 0, len(issues))
	for _, it := range issues {
		errs = append(errs, errors.New(it.String()))
	}
	return fmt.Errorf("schema has %d issue(s): %w", len(issues), errors.Join(errs...))
}
