package dsl

import "strings"

// Entity описывает структуру сущности из DSL
type Entity struct {
	Name   string
	Table  string
	Fields []Field
	Line   int // строка объявления, для сообщений об ошибках
}

// Field описывает поле сущности
type Field struct {
	Name      string
	Type      string            // id, string, text, int, date, datetime, enum, ref
	Enum      []string          // значения enum, если поле типа enum
	RefTarget string            // целевая сущность для ref[...]
	Options   map[string]string // required, max_length, min, max, default, readonly
	Line      int
}

// Field ищет поле по имени.
func (e *Entity) Field(name string) (Field, bool) {
	for _, f := range e.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Option возвращает значение опции (ключи нормализованы в нижний регистр).
func (f Field) Option(key string) (string, bool) {
	if f.Options == nil {
		return "", false
	}
	v, ok := f.Options[strings.ToLower(key)]
	return v, ok
}

func (f Field) flag(key string) bool {
	v, ok := f.Option(key)
	return ok && strings.EqualFold(v, "true")
}

func (f Field) Required() bool { return f.flag("required") }
func (f Field) ReadOnly() bool { return f.flag("readonly") || f.Type == TypeID }

// Типы полей
const (
	TypeID       = "id"
	TypeString   = "string"
	TypeText     = "text"
	TypeInt      = "int"
	TypeDate     = "date"
	TypeDateTime = "datetime"
	TypeEnum     = "enum"
	TypeRef      = "ref"
)

var knownTypes = map[string]struct{}{
	TypeID: {}, TypeString: {}, TypeText: {}, TypeInt: {},
	TypeDate: {}, TypeDateTime: {}, TypeEnum: {}, TypeRef: {},
}

// KnownType сообщает, поддерживает ли DSL тип поля.
func KnownType(t string) bool {
	_, ok := knownTypes[t]
	return ok
}
