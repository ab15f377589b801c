package model

import (
	"context"
	"sync"

	"taskboard/internal/orm"
)

var projectFields = []string{"id", "owner_id", "title", "description", "creation_date"}

type Project struct {
	*orm.Entity
	repo *Repository

	owner     orm.Memo[*User]
	tasksOnce sync.Once
	tasks     *orm.Set[*Task]
}

// Прямые поля
func (p *Project) OwnerID() string      { return p.Attr("owner_id") }
func (p *Project) Title() string        { return p.Attr("title") }
func (p *Project) Description() string  { return p.Attr("description") }
func (p *Project) CreationDate() string { return p.Attr("creation_date") }

// Owner: владелец проекта; загружается при первом обращении.
func (p *Project) Owner(ctx context.Context) (*User, error) {
	return p.owner.Get(ctx, func(ctx context.Context) (*User, error) {
		return p.repo.Users.GetOne(ctx, orm.Where("id", p.OwnerID()))
	})
}

// Tasks: задачи проекта, ленивая коллекция.
func (p *Project) Tasks() *orm.Set[*Task] {
	p.tasksOnce.Do(func() {
		p.tasks = p.repo.Tasks.SetOf("project_id", p.ID())
	})
	return p.tasks
}
