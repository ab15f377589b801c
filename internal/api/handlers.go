package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"taskboard/internal/model"
	"taskboard/internal/orm"
)

func entityView(e *orm.Entity) gin.H {
	out := gin.H{}
	for _, p := range e.Values() {
		out[p.Key] = p.Value
	}
	return out
}

func userBrief(u *model.User) gin.H {
	if u == nil {
		return nil
	}
	return gin.H{"id": u.ID(), "name": u.Name(), "surname": u.Surname()}
}

func bindInput(c *gin.Context) (map[string]string, bool) {
	var obj map[string]string
	if err := c.ShouldBindJSON(&obj); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": []FieldError{ferr(ErrBadRequest, "", "Invalid JSON: expected an object of string values")}})
		return nil, false
	}
	return obj, true
}

// GET /api/users/:id
func (s *Server) getUser(c *gin.Context) {
	ctx := c.Request.Context()
	u, err := s.repo.Users.GetOne(ctx, orm.Where("id", c.Param("id")))
	if err != nil {
		respondError(c, err)
		return
	}
	projects, err := u.Projects().Items(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	list := make([]gin.H, 0, len(projects))
	for _, p := range projects {
		list = append(list, entityView(p.Entity))
	}
	view := entityView(u.Entity)
	view["projects"] = list
	c.JSON(http.StatusOK, view)
}

// POST /api/users
func (s *Server) createUser(c *gin.Context) {
	obj, ok := bindInput(c)
	if !ok {
		return
	}
	u, err := s.repo.Users.Create(c.Request.Context(), obj)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entityView(u.Entity))
}

// GET /api/projects: список проектов с владельцами
func (s *Server) listProjects(c *gin.Context) {
	ctx := c.Request.Context()
	lp := parseListParams(c.Request.URL.Query())
	projects, err := s.repo.Projects.GetMany(ctx, lp.Filter)
	if err != nil {
		respondError(c, err)
		return
	}

	start, end := lp.page(len(projects))
	out := make([]gin.H, 0, end-start)
	for _, p := range projects[start:end] {
		owner, err := p.Owner(ctx)
		if err != nil {
			respondError(c, err)
			return
		}
		view := entityView(p.Entity)
		view["owner"] = userBrief(owner)
		out = append(out, view)
	}
	c.Header("X-Total-Count", strconv.Itoa(len(projects)))
	c.JSON(http.StatusOK, out)
}

// GET /api/projects/:id: проект, владелец и задачи с исполнителями
func (s *Server) getProject(c *gin.Context) {
	ctx := c.Request.Context()
	p, err := s.repo.Projects.GetOne(ctx, orm.Where("id", c.Param("id")))
	if err != nil {
		respondError(c, err)
		return
	}
	owner, err := p.Owner(ctx)
	if err != nil {
		respondError(c, err)
		return
	}

	var tasks []*model.Task
	if err := p.Tasks().Traverse(ctx, func(t *model.Task) { tasks = append(tasks, t) }); err != nil {
		respondError(c, err)
		return
	}
	taskViews, err := s.taskViews(ctx, tasks)
	if err != nil {
		respondError(c, err)
		return
	}

	view := entityView(p.Entity)
	view["owner"] = userBrief(owner)
	view["tasks"] = taskViews
	c.JSON(http.StatusOK, view)
}

// GET /api/projects/:id/tasks: задачи проекта с доп. фильтрами (?status=done)
func (s *Server) listProjectTasks(c *gin.Context) {
	ctx := c.Request.Context()
	p, err := s.repo.Projects.GetOne(ctx, orm.Where("id", c.Param("id")))
	if err != nil {
		respondError(c, err)
		return
	}
	lp := parseListParams(c.Request.URL.Query())
	tasks, err := s.repo.Tasks.GetMany(ctx, lp.Filter.And("project_id", p.ID()))
	if err != nil {
		respondError(c, err)
		return
	}
	start, end := lp.page(len(tasks))
	out, err := s.taskViews(ctx, tasks[start:end])
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("X-Total-Count", strconv.Itoa(len(tasks)))
	c.JSON(http.StatusOK, out)
}

func (s *Server) taskViews(ctx context.Context, tasks []*model.Task) ([]gin.H, error) {
	out := make([]gin.H, 0, len(tasks))
	for _, t := range tasks {
		executor, err := t.User(ctx)
		if err != nil {
			return nil, err
		}
		view := entityView(t.Entity)
		view["user"] = userBrief(executor)
		out = append(out, view)
	}
	return out, nil
}

// POST /api/projects
func (s *Server) createProject(c *gin.Context) {
	obj, ok := bindInput(c)
	if !ok {
		return
	}
	p, err := s.repo.Projects.Create(c.Request.Context(), obj)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entityView(p.Entity))
}

// GET /api/tasks/:id
func (s *Server) getTask(c *gin.Context) {
	ctx := c.Request.Context()
	t, err := s.repo.Tasks.GetOne(ctx, orm.Where("id", c.Param("id")))
	if err != nil {
		respondError(c, err)
		return
	}
	project, err := t.Project(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	executor, err := t.User(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	view := entityView(t.Entity)
	view["project"] = gin.H{"id": project.ID(), "title": project.Title()}
	view["user"] = userBrief(executor)
	c.JSON(http.StatusOK, view)
}

// POST /api/tasks
func (s *Server) createTask(c *gin.Context) {
	obj, ok := bindInput(c)
	if !ok {
		return
	}
	t, err := s.repo.Tasks.Create(c.Request.Context(), obj)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entityView(t.Entity))
}
