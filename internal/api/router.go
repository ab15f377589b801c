// api/router.go
package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"taskboard/internal/model"
)

// Server: HTTP-слой: загрузка сущностей и отдача JSON-представлений.
type Server struct {
	repo *model.Repository
	log  zerolog.Logger
}

func NewServer(repo *model.Repository, log zerolog.Logger) *Server {
	return &Server{repo: repo, log: log}
}

// Router собирает маршруты.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(s.log))

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/meta", s.metaList)
		apiGroup.GET("/meta/:entity", s.metaEntity)

		apiGroup.GET("/users/:id", s.getUser)
		apiGroup.POST("/users", s.createUser)

		apiGroup.GET("/projects", s.listProjects)
		apiGroup.GET("/projects/:id", s.getProject)
		apiGroup.GET("/projects/:id/tasks", s.listProjectTasks)
		apiGroup.POST("/projects", s.createProject)

		apiGroup.GET("/tasks/:id", s.getTask)
		apiGroup.POST("/tasks", s.createTask)
	}
	return r
}

// requestLogger пишет строку лога на каждый запрос и кладёт логгер в контекст запроса.
func requestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Request = c.Request.WithContext(log.WithContext(c.Request.Context()))

		c.Next()

		status := c.Writer.Status()
		ev := log.Info()
		switch {
		case status >= 500:
			ev = log.Error()
		case status >= 400:
			ev = log.Warn()
		}
		ev.Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}
