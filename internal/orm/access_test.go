package orm_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskboard/internal/orm"
)

func TestGetOne(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seed(t)

	p, err := f.projects.GetOne(ctx, orm.Where("id", "1"))
	require.NoError(t, err)
	assert.Equal(t, "1", p.ID())
	assert.Equal(t, "Board", p.Attr("title"))

	// несколько совпадений: первое в порядке хранилища
	task, err := f.tasks.GetOne(ctx, orm.Where("project_id", "1", "status", "todo"))
	require.NoError(t, err)
	assert.Equal(t, "11", task.ID())
}

func TestGetOneNotFound(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seed(t)

	_, err := f.users.GetOne(ctx, orm.Where("id", "404"))
	require.Error(t, err)
	assert.ErrorIs(t, err, orm.ErrNotFound)
	var nf *orm.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "User", nf.Type)
	assert.Contains(t, err.Error(), `id="404"`)
}

func TestGetManyOrderAndEmpty(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seed(t)

	tasks, err := f.tasks.GetMany(ctx, orm.Where("project_id", "1"))
	require.NoError(t, err)
	assert.Equal(t, []string{"10", "11", "12"}, ids(tasks))

	all, err := f.tasks.GetMany(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	none, err := f.tasks.GetMany(ctx, orm.Where("project_id", "999"))
	require.NoError(t, err)
	assert.Empty(t, none)

	// пустой фильтр по необязательному полю совпадает с незаполненными строками
	undated, err := f.tasks.GetMany(ctx, orm.Where("due", ""))
	require.NoError(t, err)
	assert.Len(t, undated, 4)
}

func TestInvalidFilter(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seed(t)

	_, err := f.tasks.GetMany(ctx, orm.Where("project_id", "1", "owner", "x"))
	var inv *orm.InvalidFilterError
	require.ErrorAs(t, err, &inv)
	assert.Equal(t, "owner", inv.Field)
	assert.Zero(t, f.store.Queries(), "invalid filter must not reach the store")

	_, err = f.users.GetOne(ctx, orm.Where("title", "x"))
	assert.ErrorAs(t, err, &inv)
}

func TestStoreFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	boom := errors.New("disk on fire")
	f.store.setFail(boom)

	_, err := f.users.GetOne(ctx, orm.Where("id", "1"))
	require.Error(t, err)
	var se *orm.StoreError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "query", se.Op)
	assert.Equal(t, "users", se.Table)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, orm.ErrNotFound)
}

func TestHydrationSkipsValidators(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	long := strings.Repeat("x", 40)
	f.insert(t, "tasks", "id", "1", "project_id", "ghost", "title", long, "status", "weird")

	task, err := f.tasks.GetOne(ctx, orm.Where("id", "1"))
	require.NoError(t, err)
	assert.Equal(t, long, task.Attr("title"))
	assert.Equal(t, "weird", task.Attr("status"))
	assert.Equal(t, "", task.Attr("due"))
}

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seed(t)

	p, err := f.projects.GetOne(ctx, orm.Where("id", "1"))
	require.NoError(t, err)
	assert.Equal(t, orm.Row{
		{Key: "id", Value: "1"},
		{Key: "owner_id", Value: "1"},
		{Key: "title", Value: "Board"},
		{Key: "description", Value: "first"},
	}, p.Values())
}

func TestEntityGetSet(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seed(t)

	task, err := f.tasks.GetOne(ctx, orm.Where("id", "10"))
	require.NoError(t, err)

	_, err = task.Get("nope")
	var uf *orm.UnknownFieldError
	require.ErrorAs(t, err, &uf)
	assert.Equal(t, "Task", uf.Type)
	assert.Panics(t, func() { task.Attr("nope") })
	assert.ErrorAs(t, task.Set(ctx, "nope", "x"), &uf)

	require.NoError(t, task.Set(ctx, "title", strings.Repeat("t", 16)))
	err = task.Set(ctx, "title", strings.Repeat("t", 17))
	assert.ErrorIs(t, err, orm.ErrValidation)
	got, _ := task.Get("title")
	assert.Equal(t, strings.Repeat("t", 16), got)

	require.NoError(t, task.Set(ctx, "priority", " 3 "))
	assert.Equal(t, "3", task.Attr("priority"))
	require.NoError(t, task.Set(ctx, "priority", ""))
	assert.Equal(t, "", task.Attr("priority"))

	var ve *orm.ValidationError
	require.ErrorAs(t, task.Set(ctx, "id", "other"), &ve)
	assert.Equal(t, "readonly", ve.Constraint)
	assert.Equal(t, "10", task.ID())

	require.ErrorAs(t, task.Set(ctx, "project_id", "999"), &ve)
	assert.Equal(t, "project_id", ve.Field)
	assert.Equal(t, "ref[Project]", ve.Constraint)
	require.NoError(t, task.Set(ctx, "project_id", "2"))
	assert.Equal(t, "2", task.Attr("project_id"))
}

func TestCreate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seed(t)

	task, err := f.tasks.Create(ctx, map[string]string{
		"project_id": "2",
		"title":      "write docs",
		"due":        "2019-06-01",
	})
	require.NoError(t, err)
	assert.Len(t, task.ID(), 26)
	assert.Equal(t, "todo", task.Attr("status"))
	assert.Equal(t, "2019-05-20", task.Attr("created"))
	assert.Equal(t, "", task.Attr("priority"))

	stored, err := f.tasks.GetOne(ctx, orm.Where("id", task.ID()))
	require.NoError(t, err)
	assert.Equal(t, task.Values(), stored.Values())

	other, err := f.users.Create(ctx, map[string]string{"name": "Petya"})
	require.NoError(t, err)
	assert.NotEqual(t, task.ID(), other.ID())
}

func TestCreateValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seed(t)
	before := f.store.Len("tasks")

	_, err := f.tasks.Create(ctx, map[string]string{
		"project_id": "999",
		"title":      "",
		"status":     "later",
		"created":    "2000-01-01",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, orm.ErrValidation)

	fields := map[string]string{}
	for _, ve := range orm.ValidationErrors(err) {
		fields[ve.Field] = ve.Constraint
	}
	assert.Equal(t, map[string]string{
		"project_id": "ref[Project]",
		"title":      "required",
		"status":     "enum[todo,done]",
		"created":    "readonly",
	}, fields)
	assert.Equal(t, before, f.store.Len("tasks"))

	_, err = f.tasks.Create(ctx, map[string]string{"title": "x", "project_id": "1", "color": "red"})
	var uf *orm.UnknownFieldError
	assert.ErrorAs(t, err, &uf)
}

func TestCreateReadOnlyStore(t *testing.T) {
	reg := newRegistry(t)
	counting := &countingStore{}
	f := bindFixture(t, reg, counting, readOnlyStore{Store: counting})

	_, err := f.users.Create(context.Background(), map[string]string{"name": "x"})
	assert.ErrorIs(t, err, orm.ErrReadOnlyStore)
}

func TestBindUnknown(t *testing.T) {
	f := newFixture(t)
	_, err := orm.Bind(f.mapper, "Ghost", identity)
	assert.Error(t, err)

	_, err = orm.Bind(f.mapper, "User", identity, "name", "email")
	var uf *orm.UnknownFieldError
	require.ErrorAs(t, err, &uf)
	assert.Equal(t, "email", uf.Field)
}

func ids(es []*orm.Entity) []string {
	out := make([]string, len(es))
	for i, e := range es {
		out[i] = e.ID()
	}
	return out
}
