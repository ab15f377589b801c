package api

import (
	"net/url"
	"sort"
	"strconv"
	"strings"

	"taskboard/internal/orm"
)

type ListParams struct {
	Limit  int
	Offset int
	Filter orm.Filter
}

const (
	defaultLimit = 50
	maxLimit     = 1000
)

// parseListParams: limit/offset + остальные ключи как фильтр равенства.
// Ключи фильтра сортируются, чтобы запрос к хранилищу был детерминированным.
// Проверку имён полей делает маппер (InvalidFilterError).
func parseListParams(q url.Values) ListParams {
	limit := defaultLimit
	lv := q.Get("_limit")
	if lv == "" {
		lv = q.Get("limit")
	}
	if lv != "" {
		if n, err := strconv.Atoi(lv); err == nil && n >= 0 && n <= maxLimit {
			limit = n
		}
	}

	offset := 0
	ov := q.Get("_offset")
	if ov == "" {
		ov = q.Get("offset")
	}
	if ov != "" {
		if n, err := strconv.Atoi(ov); err == nil && n >= 0 {
			offset = n
		}
	}

	keys := make([]string, 0, len(q))
	for key := range q {
		switch key {
		case "offset", "limit", "_offset", "_limit":
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var filter orm.Filter
	for _, key := range keys {
		for _, v := range q[key] {
			if strings.TrimSpace(v) != "" {
				filter = append(filter, orm.Pair{Key: key, Value: v})
			}
		}
	}

	return ListParams{Limit: limit, Offset: offset, Filter: filter}
}

// page возвращает границы среза [start:end) для списка длины n.
func (p ListParams) page(n int) (int, int) {
	start := p.Offset
	if start > n {
		start = n
	}
	end := start + p.Limit
	if end > n {
		end = n
	}
	return start, end
}
