package dsl

import (
	"bufio"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	entityRe = regexp.MustCompile(`^entity\s+(\w+)(.*):$`)
	fieldRe  = regexp.MustCompile(`^\s*([\w_]+):\s*([^\s#]+)(.*)$`)
	enumRe   = regexp.MustCompile(`^enum\[(.*)\]$`)
	refRe    = regexp.MustCompile(`^ref\[([A-Za-z0-9_]+)\]$`)
)

// SyntaxError: ошибка разбора с номером строки.
type SyntaxError struct {
	Line int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

// splitOptionTokens делит "k=v k2='v 2'" на токены, не рвёт по пробелам внутри кавычек/скобок
func splitOptionTokens(s string) []string {
	var out []string
	var buf []rune
	inSingle, inDouble := false, false
	bracketDepth := 0

	flush := func() {
		if len(buf) > 0 {
			out = append(out, string(buf))
			buf = buf[:0]
		}
	}

	for _, r := range s {
		switch r {
		case '\'':
			if !inDouble && bracketDepth == 0 {
				inSingle = !inSingle
			}
			buf = append(buf, r)
		case '"':
			if !inSingle && bracketDepth == 0 {
				inDouble = !inDouble
			}
			buf = append(buf, r)
		case '[':
			if !inSingle && !inDouble {
				bracketDepth++
			}
			buf = append(buf, r)
		case ']':
			if !inSingle && !inDouble && bracketDepth > 0 {
				bracketDepth--
			}
			buf = append(buf, r)
		default:
			if (r == ' ' || r == '\t') && !inSingle && !inDouble && bracketDepth == 0 {
				flush()
				continue
			}
			buf = append(buf, r)
		}
	}
	flush()
	return out
}

// parseOptions разбирает хвост строки: флаги без значения становятся "true".
func parseOptions(raw string) map[string]string {
	raw = strings.TrimSpace(raw)
	if i := strings.IndexByte(raw, '#'); i >= 0 {
		raw = strings.TrimSpace(raw[:i])
	}
	if strings.HasPrefix(strings.ToLower(raw), "options:") {
		raw = strings.TrimSpace(raw[len("options:"):])
	}
	raw = strings.ReplaceAll(raw, ",", " ")

	opts := map[string]string{}
	for _, tok := range splitOptionTokens(raw) {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		if !strings.Contains(tok, "=") {
			opts[strings.ToLower(tok)] = "true"
			continue
		}
		kv := strings.SplitN(tok, "=", 2)
		k := strings.ToLower(strings.TrimSpace(kv[0]))
		v := strings.TrimSpace(kv[1])
		if len(v) >= 2 {
			if (v[0] == '"' && v[len(v)-1] == '"') || (v[0] == '\'' && v[len(v)-1] == '\'') {
				v = v[1 : len(v)-1]
			}
		}
		if k != "" {
			opts[k] = v
		}
	}
	return opts
}

// Plural: элементарная плюрализация для имён таблиц (users, projects, tasks)
func Plural(s string) string {
	s = strings.ToLower(s)
	if strings.HasSuffix(s, "s") {
		return s
	}
	return s + "s"
}

// Parse читает объявления сущностей из r в порядке их следования.
func Parse(r io.Reader) ([]*Entity, error) {
	var entities []*Entity
	var current *Entity

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// entity <Name> [table=...]:
		if m := entityRe.FindStringSubmatch(line); m != nil {
			if current != nil {
				entities = append(entities, current)
			}
			opts := parseOptions(m[2])
			table := opts["table"]
			if table == "" {
				table = Plural(m[1])
			}
			current = &Entity{Name: m[1], Table: table, Line: lineNo}
			continue
		}
		if current == nil {
			return nil, &SyntaxError{Line: lineNo, Msg: "field declared outside of entity"}
		}

		m := fieldRe.FindStringSubmatch(line)
		if m == nil {
			return nil, &SyntaxError{Line: lineNo, Msg: fmt.Sprintf("cannot parse %q", line)}
		}
		name, rawType, tail := m[1], m[2], m[3]

		// склейка оборванных типов со скобками: enum[a, b]
		if strings.HasPrefix(rawType, "enum[") && !strings.Contains(rawType, "]") {
			if idx := strings.Index(tail, "]"); idx >= 0 {
				rawType = rawType + tail[:idx+1]
				tail = tail[idx+1:]
			}
		}

		f := Field{
			Name:    name,
			Type:    rawType,
			Options: parseOptions(tail),
			Line:    lineNo,
		}
		if mm := enumRe.FindStringSubmatch(rawType); mm != nil {
			f.Type = TypeEnum
			for _, p := range strings.Split(mm[1], ",") {
				s := strings.Trim(strings.TrimSpace(p), `"'`)
				if s != "" {
					f.Enum = append(f.Enum, s)
				}
			}
		} else if mm := refRe.FindStringSubmatch(rawType); mm != nil {
			f.Type = TypeRef
			f.RefTarget = mm[1]
		} else {
			f.Type = strings.ToLower(rawType)
		}

		current.Fields = append(current.Fields, f)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if current != nil {
		entities = append(entities, current)
	}
	return entities, nil
}

// LoadEntities читает один .dsl файл
func LoadEntities(path string) ([]*Entity, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	ents, err := Parse(file)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return ents, nil
}

// LoadAllEntities обходит каталог и собирает сущности из всех *.dsl файлов.
func LoadAllEntities(root string) ([]*Entity, error) {
	var result []*Entity
	seen := make(map[string]string)

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(d.Name()), ".dsl") {
			return nil
		}

		ents, err := LoadEntities(path)
		if err != nil {
			return err
		}
		for _, e := range ents {
			if prev, exists := seen[e.Name]; exists {
				return fmt.Errorf("duplicate entity %q (files: %s, %s)", e.Name, prev, path)
			}
			seen[e.Name] = path
			result = append(result, e)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
