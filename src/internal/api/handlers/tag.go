package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/spf13/viper"
	"gorm.io/gorm"

	"github.com/casapps/casforum/src/internal/auth"
	"github.com/casapps/casforum/src/internal/database/models"
	"github.com/casapps/casforum/src/internal/params"
	"github.com/casapps/casforum/src/internal/services"
)

// TagHandler handles tag listing and search endpoints
type TagHandler struct {
	tags   *services.TagService
	groups *services.TagGroupService
	config *viper.Viper
	db     *gorm.DB
}

// NewTagHandler creates a new tag handler
func NewTagHandler(tagService *services.TagService, groupService *services.TagGroupService, cfg *viper.Viper, db *gorm.DB) *TagHandler {
	return &TagHandler{
		tags:   tagService,
		groups: groupService,
		config: cfg,
		db:     db,
	}
}

// tagResponse is the compact tag shape for the chip surface
type tagResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// tagLookupResponse adds the resolved display icon for autocomplete
type tagLookupResponse struct {
	ID   int64                `json:"id"`
	Name string               `json:"name"`
	Slug string               `json:"slug"`
	Icon services.DisplayIcon `json:"icon"`
}

// ListTagChips serves the filter-chip / search-as-you-type surface
func (h *TagHandler) ListTagChips(c echo.Context) error {
	input := services.ListTagsInput{
		Status:   strings.TrimSpace(c.QueryParam("status")),
		Query:    strings.TrimSpace(c.QueryParam("query")),
		Featured: params.ParseBool(c.QueryParam("featured")),
	}

	tags, err := h.tags.ListTags(c.Request().Context(), input)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	response := make([]tagResponse, len(tags))
	for i, tag := range tags {
		response[i] = tagResponse{ID: tag.ID, Name: tag.Name, Slug: tag.Slug}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"tags": response})
}

// LookupTags serves the autocomplete surface with resolved icons
func (h *TagHandler) LookupTags(c echo.Context) error {
	input := services.LookupTagsInput{
		Status:   strings.TrimSpace(c.QueryParam("status")),
		Query:    strings.TrimSpace(c.QueryParam("query")),
		Featured: params.ParseBool(c.QueryParam("featured")),
		IDs:      params.ParseIDList(c.QueryParam("ids")),
		Limit:    params.ParseLimit(c.QueryParam("limit"), h.config.GetInt("tags.lookup_limit")),
	}

	tags, err := h.tags.LookupTags(c.Request().Context(), input)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	legacyIcons := h.legacyIconsEnabled(c)

	response := make([]tagLookupResponse, len(tags))
	for i := range tags {
		response[i] = tagLookupResponse{
			ID:   tags[i].ID,
			Name: tags[i].Name,
			Slug: tags[i].Slug,
			Icon: services.ResolveIcon(&tags[i], legacyIcons),
		}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"tags": response})
}

// legacyIconsEnabled reads the caller's profile preference, falling back to
// the instance default for anonymous requests.
func (h *TagHandler) legacyIconsEnabled(c echo.Context) bool {
	userID, ok := auth.UserID(c)
	if !ok {
		return h.config.GetBool("tags.legacy_icons")
	}

	var pref models.UserPreference
	err := h.db.WithContext(c.Request().Context()).
		Where("user_id = ?", userID).
		First(&pref).Error
	if err != nil {
		return h.config.GetBool("tags.legacy_icons")
	}
	return pref.LegacyTagIcons
}

// ListTagGroups serves the searchable tag groups with ordered members
func (h *TagHandler) ListTagGroups(c echo.Context) error {
	groups, err := h.groups.ListSearchableGroups(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"tag_groups": groups})
}

// ListCanonicalOptions serves the admin merge-warning aggregates
func (h *TagHandler) ListCanonicalOptions(c echo.Context) error {
	options, err := h.groups.ListCanonicalTagOptions(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"tags": options})
}
