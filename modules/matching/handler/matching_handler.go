package handler

import (
	"net/http"

	httpPlatform "github.com/andreypavlenko/talentpipe/internal/platform/http"
	"github.com/andreypavlenko/talentpipe/modules/matching/model"
	"github.com/andreypavlenko/talentpipe/modules/matching/ports"
	"github.com/gin-gonic/gin"
)

type MatchingHandler struct {
	service ports.MatchingService
}

func NewMatchingHandler(service ports.MatchingService) *MatchingHandler {
	return &MatchingHandler{service: service}
}

func (h *MatchingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/matches", h.CreateMatch)
	rg.PATCH("/matches/:id", h.UpdateMatch)
	rg.POST("/jobs/:jobId/match-all", h.MatchAllForJob)
	rg.POST("/candidates/:candidateId/match-all", h.MatchAllForCandidate)
	rg.GET("/match-audits", h.ListAudits)
	rg.GET("/match-audits/active", h.ActiveMatchRuns)
	rg.GET("/match-audits/:id", h.GetAudit)
}

type createMatchRequest struct {
	CandidateID string `json:"candidateId" binding:"required"`
	JobID       string `json:"jobId" binding:"required"`
}

func (h *MatchingHandler) CreateMatch(c *gin.Context) {
	var req createMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpPlatform.RespondWithError(c, http.StatusBadRequest, "VALIDATION_ERROR", "candidateId and jobId are required")
		return
	}
	match, err := h.service.CreateMatch(c.Request.Context(), req.CandidateID, req.JobID)
	if err != nil {
		httpPlatform.RespondWithError(c, http.StatusInternalServerError, string(model.GetErrorCode(err)), model.GetErrorMessage(err))
		return
	}
	httpPlatform.RespondWithData(c, http.StatusOK, match)
}

func (h *MatchingHandler) MatchAllForJob(c *gin.Context) {
	callerIdentity := c.GetHeader("X-Caller-Identity")
	if callerIdentity == "" {
		callerIdentity = "system"
	}
	audit, err := h.service.MatchAllForJob(c.Request.Context(), c.Param("jobId"), callerIdentity)
	if err != nil {
		httpPlatform.RespondWithError(c, http.StatusInternalServerError, string(model.GetErrorCode(err)), model.GetErrorMessage(err))
		return
	}
	httpPlatform.RespondWithData(c, http.StatusAccepted, audit)
}

func (h *MatchingHandler) MatchAllForCandidate(c *gin.Context) {
	matches, err := h.service.MatchAllForCandidate(c.Request.Context(), c.Param("candidateId"))
	if err != nil {
		httpPlatform.RespondWithError(c, http.StatusInternalServerError, string(model.GetErrorCode(err)), model.GetErrorMessage(err))
		return
	}
	httpPlatform.RespondWithData(c, http.StatusOK, gin.H{"matches": matches})
}

type updateMatchRequest struct {
	IsShortlisted *bool   `json:"isShortlisted"`
	IsSelected    *bool   `json:"isSelected"`
	RecruiterNote *string `json:"recruiterNote"`
}

func (h *MatchingHandler) UpdateMatch(c *gin.Context) {
	var req updateMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpPlatform.RespondWithError(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request payload")
		return
	}
	match, err := h.service.UpdateMatch(c.Request.Context(), c.Param("id"), req.IsShortlisted, req.IsSelected, req.RecruiterNote)
	if err != nil {
		statusCode := http.StatusInternalServerError
		if model.GetErrorCode(err) == model.CodeMatchNotFound {
			statusCode = http.StatusNotFound
		}
		httpPlatform.RespondWithError(c, statusCode, string(model.GetErrorCode(err)), model.GetErrorMessage(err))
		return
	}
	httpPlatform.RespondWithData(c, http.StatusOK, match)
}

func (h *MatchingHandler) GetAudit(c *gin.Context) {
	audit, err := h.service.GetAudit(c.Request.Context(), c.Param("id"))
	if err != nil {
		statusCode := http.StatusInternalServerError
		if model.GetErrorCode(err) == model.CodeAuditNotFound {
			statusCode = http.StatusNotFound
		}
		httpPlatform.RespondWithError(c, statusCode, string(model.GetErrorCode(err)), model.GetErrorMessage(err))
		return
	}
	httpPlatform.RespondWithData(c, http.StatusOK, audit)
}

func (h *MatchingHandler) ListAudits(c *gin.Context) {
	params, err := httpPlatform.ParsePaginationParams(c)
	if err != nil {
		httpPlatform.RespondWithError(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid pagination parameters")
		return
	}
	audits, total, err := h.service.ListAudits(c.Request.Context(), params.Limit, params.Offset)
	if err != nil {
		httpPlatform.RespondWithError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to list match audits")
		return
	}
	httpPlatform.RespondWithPagination(c, http.StatusOK, audits, params.Limit, params.Offset, total)
}

func (h *MatchingHandler) ActiveMatchRuns(c *gin.Context) {
	audits, err := h.service.ActiveMatchRuns(c.Request.Context())
	if err != nil {
		httpPlatform.RespondWithError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to list active match runs")
		return
	}
	httpPlatform.RespondWithData(c, http.StatusOK, gin.H{"audits": audits})
}
