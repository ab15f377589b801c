package orm_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskboard/internal/orm"
)

func TestSetLoadsOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seed(t)

	set := f.tasks.SetOf("project_id", "1")
	assert.False(t, set.Loaded())
	assert.Zero(t, f.store.Queries())

	var runs [][]string
	for i := 0; i < 3; i++ {
		var seen []string
		require.NoError(t, set.Traverse(ctx, func(e *orm.Entity) { seen = append(seen, e.ID()) }))
		runs = append(runs, seen)
	}
	assert.Equal(t, 1, f.store.Queries())
	assert.True(t, set.Loaded())
	for _, r := range runs {
		assert.Equal(t, []string{"10", "11", "12"}, r)
	}

	n, err := set.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, 1, f.store.Queries())
}

func TestSetSnapshot(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seed(t)

	set := f.tasks.SetOf("project_id", "2")
	require.NoError(t, set.Load(ctx))

	// строки, добавленные после загрузки, в коллекцию не попадают
	f.insert(t, "tasks", "id", "21", "project_id", "2", "title", "late")
	items, err := set.Items(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"20"}, ids(items))

	items[0] = nil
	again, err := set.Items(ctx)
	require.NoError(t, err)
	assert.NotNil(t, again[0])

	empty := f.tasks.SetOf("project_id", "999")
	n, err := empty.Size(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.True(t, empty.Loaded())
}

func TestSetConcurrentFirstLoad(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seed(t)
	f.store.delay = 20 * time.Millisecond

	set := f.tasks.SetOf("project_id", "1")

	const workers = 16
	results := make([][]string, workers)
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			var seen []string
			err := set.Traverse(ctx, func(e *orm.Entity) { seen = append(seen, e.ID()) })
			assert.NoError(t, err)
			results[i] = seen
		}(i)
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 1, f.store.Queries())
	for _, r := range results {
		assert.Equal(t, []string{"10", "11", "12"}, r)
	}
}

func TestSetFailedLoadRetries(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seed(t)
	boom := errors.New("timeout")
	f.store.setFail(boom)

	set := f.tasks.SetOf("project_id", "1")
	called := false
	err := set.Traverse(ctx, func(*orm.Entity) { called = true })
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.False(t, called)
	assert.False(t, set.Loaded())

	f.store.setFail(nil)
	n, err := set.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.True(t, set.Loaded())
	assert.Equal(t, 2, f.store.Queries())
}

func TestSetOfUnknownKeyPanics(t *testing.T) {
	f := newFixture(t)
	assert.Panics(t, func() { f.tasks.SetOf("owner", "1") })
	assert.Equal(t, orm.Where("project_id", "1"), f.tasks.SetOf("project_id", "1").Filter())
}

func TestMemo(t *testing.T) {
	ctx := context.Background()
	var m orm.Memo[string]
	calls := 0
	fail := true
	resolve := func(context.Context) (string, error) {
		calls++
		if fail {
			return "", errors.New("not yet")
		}
		return "owner", nil
	}

	_, err := m.Get(ctx, resolve)
	require.Error(t, err)
	assert.False(t, m.Resolved())

	fail = false
	for i := 0; i < 3; i++ {
		v, err := m.Get(ctx, resolve)
		require.NoError(t, err)
		assert.Equal(t, "owner", v)
	}
	assert.Equal(t, 2, calls)
	assert.True(t, m.Resolved())
}
