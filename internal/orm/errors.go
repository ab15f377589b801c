package orm

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound сопоставляется с любым *NotFoundError через errors.Is.
	ErrNotFound = errors.New("not found")
	// ErrValidation сопоставляется с любым *ValidationError через errors.Is.
	ErrValidation = errors.New("validation failed")
	// ErrReadOnlyStore: хранилище не умеет писать (не реализует Writer).
	ErrReadOnlyStore = errors.New("store does not support writes")
)

// ValidationError: значение не прошло правило валидатора. Поле не изменено.
type ValidationError struct {
	Field      string
	Reason     string
	Constraint string
	Value      string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid value: %s (%s)", e.Reason, e.Constraint)
	}
	return fmt.Sprintf("invalid value for %q: %s (%s)", e.Field, e.Reason, e.Constraint)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// UnknownFieldError: имя поля отсутствует в реестре типа.
type UnknownFieldError struct {
	Type  string
	Field string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("%s has no field %q", e.Type, e.Field)
}

// InvalidFilterError: фильтр ссылается на незарегистрированное поле.
type InvalidFilterError struct {
	Type  string
	Field string
}

func (e *InvalidFilterError) Error() string {
	return fmt.Sprintf("invalid filter for %s: unknown field %q", e.Type, e.Field)
}

// NotFoundError: GetOne не нашёл ни одной строки.
type NotFoundError struct {
	Type   string
	Filter Filter
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found (%s)", e.Type, e.Filter)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// StoreError оборачивает отказ нижележащего хранилища строк.
type StoreError struct {
	Op    string
	Table string
	Cause error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s %s: %v", e.Op, e.Table, e.Cause)
}

func (e *StoreError) Unwrap() error { return e.Cause }

// ValidationErrors возвращает все ошибки валидации из err (включая errors.Join).
func ValidationErrors(err error) []*ValidationError {
	var out []*ValidationError
	var walk func(error)
	walk = func(err error) {
		if err == nil {
			return
		}
		if ve, ok := err.(*ValidationError); ok {
			out = append(out, ve)
			return
		}
		switch x := err.(type) {
		case interface{ Unwrap() []error }:
			for _, e := range x.Unwrap() {
				walk(e)
			}
		case interface{ Unwrap() error }:
			walk(x.Unwrap())
		}
	}
	walk(err)
	return out
}
