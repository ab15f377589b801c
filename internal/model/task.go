package model

import (
	"context"

	"taskboard/internal/orm"
)

var taskFields = []string{
	"id", "project_id", "user_id", "title", "description",
	"status", "creation_date", "deadline",
}

// Status: состояние задачи
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
)

type Task struct {
	*orm.Entity
	repo *Repository

	project orm.Memo[*Project]
	user    orm.Memo[*User]
}

func (t *Task) ProjectID() string    { return t.Attr("project_id") }
func (t *Task) UserID() string       { return t.Attr("user_id") }
func (t *Task) Title() string        { return t.Attr("title") }
func (t *Task) Description() string  { return t.Attr("description") }
func (t *Task) Status() Status       { return Status(t.Attr("status")) }
func (t *Task) CreationDate() string { return t.Attr("creation_date") }
func (t *Task) Deadline() string     { return t.Attr("deadline") }

func (t *Task) Project(ctx context.Context) (*Project, error) {
	return t.project.Get(ctx, func(ctx context.Context) (*Project, error) {
		return t.repo.Projects.GetOne(ctx, orm.Where("id", t.ProjectID()))
	})
}

// User: исполнитель; nil, если задача никому не назначена.
func (t *Task) User(ctx context.Context) (*User, error) {
	return t.user.Get(ctx, func(ctx context.Context) (*User, error) {
		if t.UserID() == "" {
			return nil, nil
		}
		return t.repo.Users.GetOne(ctx, orm.Where("id", t.UserID()))
	})
}
