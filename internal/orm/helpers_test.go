package orm_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"taskboard/internal/dsl"
	"taskboard/internal/memstore"
	"taskboard/internal/orm"
)

const testSchema = `
entity User:
  id: id
  name: string required

entity Project:
  id: id
  owner_id: ref[User] required
  title: string required
  description: text

entity Task:
  id: id
  project_id: ref[Project] required
  title: string max_length=16 required
  priority: int min=1 max=5
  status: enum[todo, done] default=todo
  due: date
  created: date readonly default=today
`

var fixedNow = func() time.Time { return time.Date(2019, 5, 20, 12, 0, 0, 0, time.UTC) }

// countingStore считает обращения к Query и умеет имитировать отказ и задержку.
type countingStore struct {
	*memstore.Store

	mu      sync.Mutex
	queries int
	fail    error
	delay   time.Duration
}

func (s *countingStore) Query(ctx context.Context, table string, f orm.Filter) ([]orm.Row, error) {
	s.mu.Lock()
	s.queries++
	fail, delay := s.fail, s.delay
	s.mu.Unlock()
	if delay > 0 {
		time.Sleep(delay)
	}
	if fail != nil {
		return nil, fail
	}
	return s.Store.Query(ctx, table, f)
}

func (s *countingStore) Queries() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queries
}

func (s *countingStore) setFail(err error) {
	s.mu.Lock()
	s.fail = err
	s.mu.Unlock()
}

// readOnlyStore реализует только Query.
type readOnlyStore struct{ orm.Store }

type fixture struct {
	reg      *orm.Registry
	store    *countingStore
	mapper   *orm.Mapper
	users    orm.Kind[*orm.Entity]
	projects orm.Kind[*orm.Entity]
	tasks    orm.Kind[*orm.Entity]
}

func identity(e *orm.Entity) *orm.Entity { return e }

func newRegistry(t *testing.T) *orm.Registry {
	t.Helper()
	ents, err := dsl.Parse(strings.NewReader(testSchema))
	require.NoError(t, err)
	require.NoError(t, dsl.Check(ents))
	reg, err := orm.RegistryFromDSL(ents, fixedNow)
	require.NoError(t, err)
	return reg
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	reg := newRegistry(t)
	store := &countingStore{Store: memstore.New()}
	return bindFixture(t, reg, store, store)
}

func bindFixture(t *testing.T, reg *orm.Registry, counting *countingStore, store orm.Store) *fixture {
	t.Helper()
	m := orm.NewMapper(reg, store)
	f := &fixture{reg: reg, store: counting, mapper: m}
	var err error
	f.users, err = orm.Bind(m, "User", identity, "name")
	require.NoError(t, err)
	f.projects, err = orm.Bind(m, "Project", identity, "owner_id", "title")
	require.NoError(t, err)
	f.tasks, err = orm.Bind(m, "Task", identity, "project_id", "title")
	require.NoError(t, err)
	return f
}

func (f *fixture) insert(t *testing.T, table string, kv ...string) {
	t.Helper()
	row := make(orm.Row, 0, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		row = append(row, orm.Pair{Key: kv[i], Value: kv[i+1]})
	}
	require.NoError(t, f.store.Insert(context.Background(), table, row))
}

// seed: два пользователя, два проекта, три задачи у проекта 1 и одна у проекта 2.
func (f *fixture) seed(t *testing.T) {
	t.Helper()
	f.insert(t, "users", "id", "1", "name", "Vasya")
	f.insert(t, "users", "id", "2", "name", "Masha")
	f.insert(t, "projects", "id", "1", "owner_id", "1", "title", "Board", "description", "first")
	f.insert(t, "projects", "id", "2", "owner_id", "2", "title", "Pages", "description", "")
	f.insert(t, "tasks", "id", "10", "project_id", "1", "title", "registry", "status", "done")
	f.insert(t, "tasks", "id", "11", "project_id", "1", "title", "validators", "status", "todo")
	f.insert(t, "tasks", "id", "12", "project_id", "1", "title", "sets", "status", "todo")
	f.insert(t, "tasks", "id", "20", "project_id", "2", "title", "templates", "status", "todo")
}
