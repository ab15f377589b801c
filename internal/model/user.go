package model

import (
	"strings"
	"sync"

	"taskboard/internal/orm"
)

var userFields = []string{"id", "name", "surname", "birth_date", "avatar"}

type User struct {
	*orm.Entity
	repo *Repository

	projectsOnce sync.Once
	projects     *orm.Set[*Project]
	tasksOnce    sync.Once
	tasks        *orm.Set[*Task]
}

func (u *User) Name() string      { return u.Attr("name") }
func (u *User) Surname() string   { return u.Attr("surname") }
func (u *User) BirthDate() string { return u.Attr("birth_date") }
func (u *User) Avatar() string    { return u.Attr("avatar") }

func (u *User) FullName() string {
	return strings.TrimSpace(u.Name() + " " + u.Surname())
}

// Projects: проекты, где пользователь владелец.
func (u *User) Projects() *orm.Set[*Project] {
	u.projectsOnce.Do(func() {
		u.projects = u.repo.Projects.SetOf("owner_id", u.ID())
	})
	return u.projects
}

// Tasks: задачи, назначенные пользователю.
func (u *User) Tasks() *orm.Set[*Task] {
	u.tasksOnce.Do(func() {
		u.tasks = u.repo.Tasks.SetOf("user_id", u.ID())
	})
	return u.tasks
}
