// Package seed загружает YAML-фикстуры в хранилище строк.
package seed

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"taskboard/internal/orm"
)

// File: содержимое файла фикстур. Таблицы применяются по порядку,
// поэтому ссылаемые таблицы идут раньше ссылающихся.
type File struct {
	Tables []Table `yaml:"tables"`
}

type Table struct {
	Name string              `yaml:"name"`
	Rows []map[string]string `yaml:"rows"`
}

// Parse разбирает YAML.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// Load читает файл фикстур.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return f, nil
}

// Apply пишет строки напрямую, минуя валидаторы: фикстуры считаются
// доверенными. Колонки упорядочиваются по реестру. Возвращает число строк.
func Apply(ctx context.Context, f *File, reg *orm.Registry, w orm.Writer) (int, error) {
	n := 0
	for _, t := range f.Tables {
		desc, ok := reg.ByTable(t.Name)
		if !ok {
			return n, fmt.Errorf("seed: unknown table %q", t.Name)
		}
		for i, raw := range t.Rows {
			for col := range raw {
				if !desc.HasField(col) {
					return n, fmt.Errorf("seed: %s row %d: %w", t.Name, i, &orm.UnknownFieldError{Type: desc.Name(), Field: col})
				}
			}
			if raw["id"] == "" {
				return n, fmt.Errorf("seed: %s row %d: missing id", t.Name, i)
			}
			row := make(orm.Row, 0, len(desc.Fields()))
			for _, name := range desc.FieldNames() {
				row = append(row, orm.Pair{Key: name, Value: raw[name]})
			}
			if err := w.Insert(ctx, t.Name, row); err != nil {
				return n, fmt.Errorf("seed: %s row %d: %w", t.Name, i, err)
			}
			n++
		}
	}
	return n, nil
}
