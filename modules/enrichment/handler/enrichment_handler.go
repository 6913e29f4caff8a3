package handler

import (
	"net/http"

	httpPlatform "github.com/andreypavlenko/talentpipe/internal/platform/http"
	"github.com/andreypavlenko/talentpipe/modules/enrichment/model"
	"github.com/andreypavlenko/talentpipe/modules/enrichment/ports"
	"github.com/gin-gonic/gin"
)

type EnrichmentHandler struct {
	service ports.EnrichmentService
}

func NewEnrichmentHandler(service ports.EnrichmentService) *EnrichmentHandler {
	return &EnrichmentHandler{service: service}
}

func (h *EnrichmentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/candidates/:candidateId/profiles", h.Enrich)
	rg.POST("/candidates/:candidateId/profiles/from-url", h.EnrichFromURL)
	rg.GET("/candidates/:candidateId/profiles", h.ListProfiles)
	rg.POST("/profiles/:id/refresh", h.Refresh)
}

type enrichRequest struct {
	Source model.Source `json:"source" binding:"required"`
}

func (h *EnrichmentHandler) Enrich(c *gin.Context) {
	var req enrichRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpPlatform.RespondWithError(c, http.StatusBadRequest, "VALIDATION_ERROR", "source is required")
		return
	}
	profile, err := h.service.Enrich(c.Request.Context(), c.Param("candidateId"), req.Source)
	if err != nil {
		httpPlatform.RespondWithError(c, statusFor(err), string(model.GetErrorCode(err)), model.GetErrorMessage(err))
		return
	}
	httpPlatform.RespondWithData(c, http.StatusOK, profile)
}

type enrichFromURLRequest struct {
	URL string `json:"url" binding:"required"`
}

func (h *EnrichmentHandler) EnrichFromURL(c *gin.Context) {
	var req enrichFromURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpPlatform.RespondWithError(c, http.StatusBadRequest, "VALIDATION_ERROR", "url is required")
		return
	}
	profile, err := h.service.EnrichFromURL(c.Request.Context(), c.Param("candidateId"), req.URL)
	if err != nil {
		httpPlatform.RespondWithError(c, statusFor(err), string(model.GetErrorCode(err)), model.GetErrorMessage(err))
		return
	}
	if profile == nil {
		httpPlatform.RespondWithError(c, http.StatusUnprocessableEntity, string(model.CodeNoEnricherForURL), "no enricher recognises this url")
		return
	}
	httpPlatform.RespondWithData(c, http.StatusOK, profile)
}

func (h *EnrichmentHandler) Refresh(c *gin.Context) {
	profile, err := h.service.Refresh(c.Request.Context(), c.Param("id"))
	if err != nil {
		httpPlatform.RespondWithError(c, statusFor(err), string(model.GetErrorCode(err)), model.GetErrorMessage(err))
		return
	}
	httpPlatform.RespondWithData(c, http.StatusOK, profile)
}

func (h *EnrichmentHandler) ListProfiles(c *gin.Context) {
	profiles, err := h.service.GetProfiles(c.Request.Context(), c.Param("candidateId"))
	if err != nil {
		httpPlatform.RespondWithError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to list external profiles")
		return
	}
	httpPlatform.RespondWithData(c, http.StatusOK, gin.H{"profiles": profiles})
}

func statusFor(err error) int {
	switch model.GetErrorCode(err) {
	case model.CodeProfileNotFound:
		return http.StatusNotFound
	case model.CodeUnknownSource:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
