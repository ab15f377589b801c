package pg

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"taskboard/internal/model"
	"taskboard/internal/orm"
	"taskboard/internal/seed"
)

func TestGenerateDDLForeignKeysLast(t *testing.T) {
	reg, err := model.NewRegistry(nil, nil)
	require.NoError(t, err)

	stmts, err := GenerateDDL(reg)
	require.NoError(t, err)

	seenFK := false
	for _, s := range stmts {
		isFK := strings.HasPrefix(s, "alter table")
		if seenFK {
			assert.True(t, isFK, "create after alter: %s", s)
		}
		seenFK = seenFK || isFK
	}
	assert.True(t, seenFK)
}

func TestPostgresIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("integration test")
	}
	ctx := zerolog.New(zerolog.NewTestWriter(t)).WithContext(context.Background())

	ctr, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("taskboard"),
		postgres.WithUsername("taskboard"),
		postgres.WithPassword("taskboard"),
		postgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	url, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := Open(ctx, url)
	require.NoError(t, err)
	defer db.Close()

	reg, err := model.NewRegistry(nil, nil)
	require.NoError(t, err)
	require.NoError(t, Migrate(ctx, db, reg))
	// повторно: constraint уже есть, 42710 пропускается
	require.NoError(t, Migrate(ctx, db, reg))

	store := NewRowStore(db)
	f, err := seed.Load("../../seed/demo.yaml")
	require.NoError(t, err)
	_, err = seed.Apply(ctx, f, reg, store)
	require.NoError(t, err)

	repo, err := model.Open(reg, store)
	require.NoError(t, err)

	p, err := repo.Projects.GetOne(ctx, orm.Where("id", "1"))
	require.NoError(t, err)
	n, err := p.Tasks().Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	owner, err := p.Owner(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Pupkin", owner.Surname())

	_, err = repo.Users.GetOne(ctx, orm.Where("id", "404"))
	assert.ErrorIs(t, err, orm.ErrNotFound)

	err = store.Insert(ctx, "tasks", orm.Row{
		{Key: "id", Value: "99"},
		{Key: "project_id", Value: "missing"},
		{Key: "title", Value: "orphan"},
	})
	assert.Error(t, err)
}
