package handler

import (
	"net/http"
	"strconv"
	"time"

	httpPlatform "github.com/andreypavlenko/talentpipe/internal/platform/http"
	"github.com/andreypavlenko/talentpipe/modules/processtracker/model"
	"github.com/andreypavlenko/talentpipe/modules/processtracker/ports"
	"github.com/gin-gonic/gin"
)

type TrackerHandler struct {
	service ports.TrackerService
}

func NewTrackerHandler(service ports.TrackerService) *TrackerHandler {
	return &TrackerHandler{service: service}
}

func (h *TrackerHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/trackers/:id", h.Get)
	rg.GET("/trackers", h.Recent)
}

// Get returns one process tracker by id.
func (h *TrackerHandler) Get(c *gin.Context) {
	tracker, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		statusCode := http.StatusInternalServerError
		if model.GetErrorCode(err) == model.CodeTrackerNotFound {
			statusCode = http.StatusNotFound
		}
		httpPlatform.RespondWithError(c, statusCode, string(model.GetErrorCode(err)), model.GetErrorMessage(err))
		return
	}
	httpPlatform.RespondWithData(c, http.StatusOK, tracker)
}

// Recent lists trackers created within the last `hours` hours (default 24).
func (h *TrackerHandler) Recent(c *gin.Context) {
	hours := 24
	if raw := c.Query("hours"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			httpPlatform.RespondWithError(c, http.StatusBadRequest, "VALIDATION_ERROR", "hours must be a positive integer")
			return
		}
		hours = parsed
	}
	trackers, err := h.service.RecentSince(c.Request.Context(), time.Duration(hours)*time.Hour)
	if err != nil {
		httpPlatform.RespondWithError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to list recent trackers")
		return
	}
	httpPlatform.RespondWithData(c, http.StatusOK, gin.H{"trackers": trackers})
}
