package orm

import (
	"fmt"
	"strings"
)

// Pair: одна пара имя/значение.
type Pair struct {
	Key   string
	Value string
}

// Filter: упорядоченный набор условий равенства (конъюнкция).
type Filter []Pair

// Where строит фильтр из пар ключ, значение, ключ, значение...
func Where(kv ...string) Filter {
	if len(kv)%2 != 0 {
		panic("orm.Where: odd number of arguments")
	}
	f := make(Filter, 0, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		f = append(f, Pair{Key: kv[i], Value: kv[i+1]})
	}
	return f
}

// And возвращает новый фильтр с добавленным условием.
func (f Filter) And(key, value string) Filter {
	out := make(Filter, len(f), len(f)+1)
	copy(out, f)
	return append(out, Pair{Key: key, Value: value})
}

// Match проверяет строку на соответствие всем условиям.
// Отсутствующая колонка равна пустому значению.
func (f Filter) Match(r Row) bool {
	for _, c := range f {
		v, _ := r.Get(c.Key)
		if v != c.Value {
			return false
		}
	}
	return true
}

func (f Filter) String() string {
	if len(f) == 0 {
		return "all"
	}
	parts := make([]string, len(f))
	for i, c := range f {
		parts[i] = fmt.Sprintf("%s=%q", c.Key, c.Value)
	}
	return strings.Join(parts, " and ")
}

// Row: упорядоченное отображение колонка -> сырое значение.
type Row []Pair

// Get возвращает значение колонки.
func (r Row) Get(column string) (string, bool) {
	for _, c := range r {
		if c.Key == column {
			return c.Value, true
		}
	}
	return "", false
}

// Columns возвращает имена колонок в порядке строки.
func (r Row) Columns() []string {
	out := make([]string, len(r))
	for i, c := range r {
		out[i] = c.Key
	}
	return out
}

// Clone возвращает независимую копию строки.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	copy(out, r)
	return out
}
