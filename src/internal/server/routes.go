package server

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/casapps/casforum/src/internal/api/handlers"
	"github.com/casapps/casforum/src/internal/auth"
	"github.com/casapps/casforum/src/internal/services"
)

func (s *Server) setupRoutes() {
	tagService := services.NewTagService(s.db, s.config, s.cache)
	topicTagService := services.NewTopicTagService(s.db, s.cache)
	groupService := services.NewTagGroupService(s.db)

	tagHandler := handlers.NewTagHandler(tagService, groupService, s.config, s.db)
	topicHandler := handlers.NewTopicHandler(tagService, topicTagService, s.config)

	authMiddleware := auth.NewMiddleware(s.auth)

	s.echo.GET("/health", s.handleHealth)

	// Anonymous chip surface
	s.echo.GET("/tags", tagHandler.ListTagChips)

	api := s.echo.Group("/api")

	// Lookup surface reads the caller's icon preference when signed in
	api.GET("/tags", tagHandler.LookupTags, authMiddleware.OptionalAuth())
	api.GET("/tag-groups", tagHandler.ListTagGroups)

	api.GET("/topics", topicHandler.ListTopics)
	api.GET("/topics/:id/tags", topicHandler.ListTopicTags)
	api.POST("/topics/:id/tags", topicHandler.AttachTopicTags, authMiddleware.Auth())

	admin := api.Group("/admin", authMiddleware.Auth(), authMiddleware.RequireAdmin())
	admin.GET("/tags/options", tagHandler.ListCanonicalOptions)
}

func (s *Server) handleHealth(c echo.Context) error {
	status := "healthy"
	code := http.StatusOK

	sqlDB, err := s.db.DB()
	if err != nil || sqlDB.Ping() != nil {
		status = "unhealthy"
		code = http.StatusServiceUnavailable
	}

	return c.JSON(code, map[string]interface{}{
		"status":  status,
		"uptime":  time.Since(s.startTime).String(),
		"version": s.config.GetString("app.version"),
	})
}
