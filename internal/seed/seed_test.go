package seed_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskboard/internal/memstore"
	"taskboard/internal/model"
	"taskboard/internal/orm"
	"taskboard/internal/seed"
)

func TestLoadDemo(t *testing.T) {
	ctx := context.Background()
	reg, err := model.NewRegistry(nil, nil)
	require.NoError(t, err)

	f, err := seed.Load("../../seed/demo.yaml")
	require.NoError(t, err)
	require.Len(t, f.Tables, 3)

	store := memstore.New()
	n, err := seed.Apply(ctx, f, reg, store)
	require.NoError(t, err)
	assert.Equal(t, 7, n)
	assert.Equal(t, 2, store.Len("users"))
	assert.Equal(t, 2, store.Len("projects"))
	assert.Equal(t, 3, store.Len("tasks"))

	// колонки приходят в порядке реестра, пропущенные пустые
	rows, err := store.Query(ctx, "tasks", orm.Where("id", "3"))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, reg.FieldNames(model.TypeTask), rows[0].Columns())
	uid, _ := rows[0].Get("user_id")
	assert.Equal(t, "", uid)
}

func TestApplyErrors(t *testing.T) {
	ctx := context.Background()
	reg, err := model.NewRegistry(nil, nil)
	require.NoError(t, err)

	tests := []struct {
		name string
		src  string
		want string
	}{
		{"unknown table", "tables:\n  - name: people\n    rows:\n      - id: \"1\"\n", "unknown table"},
		{"unknown column", "tables:\n  - name: users\n    rows:\n      - id: \"1\"\n        email: a@b\n", "email"},
		{"missing id", "tables:\n  - name: users\n    rows:\n      - name: x\n", "missing id"},
		{"duplicate id", "tables:\n  - name: users\n    rows:\n      - id: \"1\"\n      - id: \"1\"\n", "duplicate id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := seed.Parse([]byte(tt.src))
			require.NoError(t, err)
			_, err = seed.Apply(ctx, f, reg, memstore.New())
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestParseInvalidYAML(t *testing.T) {
	_, err := seed.Parse([]byte("tables: [oops"))
	assert.Error(t, err)
}
