package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/spf13/viper"

	"github.com/casapps/casforum/src/internal/auth"
	"github.com/casapps/casforum/src/internal/params"
	"github.com/casapps/casforum/src/internal/services"
)

// TopicHandler handles topic listing and topic-tag association endpoints
type TopicHandler struct {
	tags      *services.TagService
	topicTags *services.TopicTagService
	config    *viper.Viper
}

// NewTopicHandler creates a new topic handler
func NewTopicHandler(tagService *services.TagService, topicTagService *services.TopicTagService, cfg *viper.Viper) *TopicHandler {
	return &TopicHandler{
		tags:      tagService,
		topicTags: topicTagService,
		config:    cfg,
	}
}

// attachTagsRequest is the body for attaching tags to a topic
type attachTagsRequest struct {
	TagIDs []int64 `json:"tag_ids" validate:"required,min=1"`
}

// ListTopics serves the topic list, filtered by tags when requested. The
// response always echoes the filter that was actually honored.
func (h *TopicHandler) ListTopics(c echo.Context) error {
	requested := params.ParseIDList(c.QueryParam("tag_ids"))
	match := services.ParseMatchMode(c.QueryParam("match"))
	limit := params.ParseLimit(c.QueryParam("limit"), params.DefaultLimit)

	result, err := h.tags.ListTopicsByFilter(c.Request().Context(), requested, match, limit)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, result)
}

// ListTopicTags serves the tags currently attached to a topic
func (h *TopicHandler) ListTopicTags(c echo.Context) error {
	topicID, err := parseTopicID(c)
	if err != nil {
		return err
	}

	tags, err := h.topicTags.ListTopicTags(c.Request().Context(), topicID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"topic_id": topicID,
		"tags":     tags,
	})
}

// AttachTopicTags attaches tags to a topic and returns the full updated set
func (h *TopicHandler) AttachTopicTags(c echo.Context) error {
	userID, ok := auth.UserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	topicID, err := parseTopicID(c)
	if err != nil {
		return err
	}

	var req attachTagsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	tags, err := h.topicTags.AttachTags(c.Request().Context(), topicID, req.TagIDs, userID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"topic_id": topicID,
		"tags":     tags,
	})
}

func parseTopicID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid topic id")
	}
	return id, nil
}
