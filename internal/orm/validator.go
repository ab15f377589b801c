package orm

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// DefaultMaxLength: предел длины строкового поля без явного max_length.
const DefaultMaxLength = 128

// DateLayout: формат поля date.
const DateLayout = "2006-01-02"

// Text: строка ограниченной длины (в символах). MaxLength <= 0: без ограничения.
type Text struct {
	MaxLength int
}

func (v Text) Check(_ context.Context, raw string) (string, error) {
	if !utf8.ValidString(raw) {
		return "", &ValidationError{Reason: "not valid UTF-8", Constraint: v.Constraint(), Value: raw}
	}
	if v.MaxLength > 0 && utf8.RuneCountInString(raw) > v.MaxLength {
		return "", &ValidationError{Reason: "exceeds max length", Constraint: v.Constraint(), Value: raw}
	}
	return raw, nil
}

func (v Text) Format(s string) string { return s }

func (v Text) Constraint() string {
	if v.MaxLength <= 0 {
		return "text"
	}
	return fmt.Sprintf("max_length=%d", v.MaxLength)
}

// IntRange: целое в диапазоне [Min, Max]. Открытые границы задаются
// через math.MinInt64 / math.MaxInt64.
type IntRange struct {
	Min, Max int64
}

func (v IntRange) Check(_ context.Context, raw string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, &ValidationError{Reason: "must be integer", Constraint: v.Constraint(), Value: raw}
	}
	if n < v.Min {
		return 0, &ValidationError{Reason: "below minimum", Constraint: v.Constraint(), Value: raw}
	}
	if n > v.Max {
		return 0, &ValidationError{Reason: "above maximum", Constraint: v.Constraint(), Value: raw}
	}
	return n, nil
}

func (v IntRange) Format(n int64) string { return strconv.FormatInt(n, 10) }

func (v IntRange) Constraint() string {
	return fmt.Sprintf("range=[%d,%d]", v.Min, v.Max)
}

// Date: дата/время в заданном формате; хранится в каноническом виде того же формата.
type Date struct {
	Layout string
}

func (v Date) layout() string {
	if v.Layout == "" {
		return DateLayout
	}
	return v.Layout
}

func (v Date) Check(_ context.Context, raw string) (time.Time, error) {
	t, err := time.Parse(v.layout(), strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, &ValidationError{Reason: "invalid date", Constraint: v.Constraint(), Value: raw}
	}
	return t, nil
}

func (v Date) Format(t time.Time) string { return t.Format(v.layout()) }

func (v Date) Constraint() string { return "layout=" + v.layout() }

// OneOf: значение из фиксированного списка (enum).
type OneOf struct {
	Values []string
}

func (v OneOf) Check(_ context.Context, raw string) (string, error) {
	for _, allowed := range v.Values {
		if raw == allowed {
			return raw, nil
		}
	}
	return "", &ValidationError{Reason: "value is not allowed", Constraint: v.Constraint(), Value: raw}
}

func (v OneOf) Format(s string) string { return s }

func (v OneOf) Constraint() string { return "enum[" + strings.Join(v.Values, ",") + "]" }

// Required отклоняет пустой (или из одних пробелов) ввод, остальное передаёт Inner.
type Required[T any] struct {
	Inner Validator[T]
}

func (v Required[T]) Check(ctx context.Context, raw string) (T, error) {
	if strings.TrimSpace(raw) == "" {
		var zero T
		return zero, &ValidationError{Reason: "value is required", Constraint: "required", Value: raw}
	}
	return v.Inner.Check(ctx, raw)
}

func (v Required[T]) Format(x T) string { return v.Inner.Format(x) }

func (v Required[T]) Constraint() string { return "required; " + v.Inner.Constraint() }

// Optional принимает пустой ввод как отсутствие значения (nil).
type Optional[T any] struct {
	Inner Validator[T]
}

func (v Optional[T]) Check(ctx context.Context, raw string) (*T, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	x, err := v.Inner.Check(ctx, raw)
	if err != nil {
		return nil, err
	}
	return &x, nil
}

func (v Optional[T]) Format(x *T) string {
	if x == nil {
		return ""
	}
	return v.Inner.Format(*x)
}

func (v Optional[T]) Constraint() string { return "optional; " + v.Inner.Constraint() }

// Reference: id, который должен существовать у типа Target.
// Без Exists проверяется только непустота.
type Reference struct {
	Target string
	Exists func(ctx context.Context, id string) (bool, error)
}

func (v Reference) Check(ctx context.Context, raw string) (string, error) {
	id := strings.TrimSpace(raw)
	if id == "" {
		return "", &ValidationError{Reason: "empty reference", Constraint: v.Constraint(), Value: raw}
	}
	if v.Exists == nil {
		return id, nil
	}
	ok, err := v.Exists(ctx, id)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", &ValidationError{
			Reason:     fmt.Sprintf("referenced %s not found", v.Target),
			Constraint: v.Constraint(),
			Value:      raw,
		}
	}
	return id, nil
}

func (v Reference) Format(id string) string { return id }

func (v Reference) Constraint() string { return "ref[" + v.Target + "]" }
