// Package model: сущности предметной области (User, Project, Task) поверх orm.
package model

import (
	_ "embed"
	"fmt"
	"strings"
	"time"

	"taskboard/internal/dsl"
	"taskboard/internal/orm"
)

//go:embed schema.dsl
var schemaDSL string

// Имена типов в реестре
const (
	TypeUser    = "User"
	TypeProject = "Project"
	TypeTask    = "Task"
)

// DefaultSchema: встроенная схема.
func DefaultSchema() ([]*dsl.Entity, error) {
	return dsl.Parse(strings.NewReader(schemaDSL))
}

// NewRegistry проверяет схему линтером и строит реестр. nil: встроенная схема.
func NewRegistry(schema []*dsl.Entity, now func() time.Time) (*orm.Registry, error) {
	if schema == nil {
		var err error
		if schema, err = DefaultSchema(); err != nil {
			return nil, fmt.Errorf("default schema: %w", err)
		}
	}
	if err := dsl.Check(schema); err != nil {
		return nil, err
	}
	return orm.RegistryFromDSL(schema, now)
}

// Repository: точка входа для контроллеров: типизированный доступ к сущностям.
type Repository struct {
	mapper *orm.Mapper

	Users    orm.Kind[*User]
	Projects orm.Kind[*Project]
	Tasks    orm.Kind[*Task]
}

// Open связывает Go-типы с реестром и хранилищем.
func Open(reg *orm.Registry, store orm.Store) (*Repository, error) {
	r := &Repository{mapper: orm.NewMapper(reg, store)}

	var err error
	r.Users, err = orm.Bind(r.mapper, TypeUser,
		func(e *orm.Entity) *User { return &User{Entity: e, repo: r} },
		userFields...)
	if err != nil {
		return nil, err
	}
	r.Projects, err = orm.Bind(r.mapper, TypeProject,
		func(e *orm.Entity) *Project { return &Project{Entity: e, repo: r} },
		projectFields...)
	if err != nil {
		return nil, err
	}
	r.Tasks, err = orm.Bind(r.mapper, TypeTask,
		func(e *orm.Entity) *Task { return &Task{Entity: e, repo: r} },
		taskFields...)
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Repository) Registry() *orm.Registry { return r.mapper.Registry() }
