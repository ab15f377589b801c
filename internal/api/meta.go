package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskboard/internal/orm"
)

type metaEntityListItem struct {
	Entity string `json:"entity"`
	Table  string `json:"table"`
}

type metaField struct {
	Name       string `json:"name"`
	Ref        string `json:"ref,omitempty"`
	Required   bool   `json:"required,omitempty"`
	ReadOnly   bool   `json:"readonly,omitempty"`
	Constraint string `json:"constraint,omitempty"`
}

type metaEntity struct {
	Entity string      `json:"entity"`
	Table  string      `json:"table"`
	Fields []metaField `json:"fields"`
}

// GET /api/meta
func (s *Server) metaList(c *gin.Context) {
	reg := s.repo.Registry()
	out := make([]metaEntityListItem, 0, len(reg.Types()))
	for _, name := range reg.Types() {
		d := reg.MustLookup(name)
		out = append(out, metaEntityListItem{Entity: d.Name(), Table: d.Table()})
	}
	c.JSON(http.StatusOK, out)
}

// GET /api/meta/:entity
func (s *Server) metaEntity(c *gin.Context) {
	d, ok := s.repo.Registry().Lookup(c.Param("entity"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"errors": []FieldError{ferr(ErrNotFound, "", "Entity not found")}})
		return
	}
	c.JSON(http.StatusOK, describe(d))
}

func describe(d *orm.Descriptor) metaEntity {
	fields := make([]metaField, 0, len(d.Fields()))
	for _, f := range d.Fields() {
		mf := metaField{Name: f.Name, Ref: f.Ref, Required: f.Required, ReadOnly: f.Rule == nil}
		if f.Rule != nil {
			mf.Constraint = f.Rule.Constraint()
		}
		fields = append(fields, mf)
	}
	return metaEntity{Entity: d.Name(), Table: d.Table(), Fields: fields}
}
