// internal/api/handlers/signal_handler.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/tj309c/supply-signals/internal/domain"
	"github.com/tj309c/supply-signals/internal/service"
)

type SignalHandler struct {
	service *service.SignalService
}

func NewSignalHandler(s *service.SignalService) *SignalHandler {
	return &SignalHandler{service: s}
}

// GetRisk serves stockout risk assessments, optionally filtered by
// risk_level, category, vendor, requires_action, min_score, and limit.
func (h *SignalHandler) GetRisk(c *gin.Context) {
	var filter domain.RiskFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		errorResponse(c, http.StatusBadRequest, "invalid risk filter: "+err.Error())
		return
	}

	items, err := h.service.Risk(c.Request.Context(), filter)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "failed to load risk assessments")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count": len(items),
		"items": items,
	})
}

// GetRiskSummary serves aggregated risk counters for the dashboard header.
func (h *SignalHandler) GetRiskSummary(c *gin.Context) {
	summary, err := h.service.RiskSummary(c.Request.Context())
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "failed to load risk summary")
		return
	}
	c.JSON(http.StatusOK, summary)
}

// GetCriticalRisk serves the top actionable SKUs, default 20.
func (h *SignalHandler) GetCriticalRisk(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			errorResponse(c, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	action := true
	items, err := h.service.Risk(c.Request.Context(), domain.RiskFilter{
		RequiresAction: &action,
		Limit:          limit,
	})
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "failed to load critical risk")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count": len(items),
		"items": items,
	})
}

// GetScrap serves scrap recommendations, optionally filtered by level,
// dead_only, min_qty, and limit.
func (h *SignalHandler) GetScrap(c *gin.Context) {
	var filter domain.ScrapFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		errorResponse(c, http.StatusBadRequest, "invalid scrap filter: "+err.Error())
		return
	}

	items, err := h.service.Scrap(c.Request.Context(), filter)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "failed to load scrap recommendations")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count": len(items),
		"items": items,
	})
}

// GetClassifications serves the full classification table.
func (h *SignalHandler) GetClassifications(c *gin.Context) {
	items, err := h.service.Classifications(c.Request.Context())
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "failed to load classifications")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count": len(items),
		"items": items,
	})
}

// GetFamilies serves the supersession families keyed by current code.
func (h *SignalHandler) GetFamilies(c *gin.Context) {
	families, err := h.service.Families(c.Request.Context())
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "failed to load code families")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":    len(families),
		"families": families,
	})
}

func errorResponse(c *gin.Context, statusCode int, message string) {
	log.Error().Msg(message)
	c.JSON(statusCode, gin.H{"error": message})
}
