package handler

import (
	"net/http"

	"safecircle/backend/internal/errs"
	"safecircle/backend/internal/metrics"

	"github.com/gin-gonic/gin"
)

// GetTrustScore recomputes and returns the trust record for an identity.
func (h *Handler) GetTrustScore(c *gin.Context) {
	anonID := c.Query("anonymousId")
	if anonID == "" {
		abortWithError(c, &errs.ValidationError{Message: "anonymousId is required"})
		return
	}

	score, err := h.Trust.Recompute(anonID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"anonymousId":      score.AnonymousID,
		"trustLevel":       score.TrustLevel,
		"helpfulnessScore": score.HelpfulnessScore,
		"reportCount":      score.ReportCount,
		"isMuted":          score.IsMuted,
		"isBanned":         score.IsBanned,
	})
}

// ReportUser records a report; three reports auto-mute for seven days.
func (h *Handler) ReportUser(c *gin.Context) {
	var body struct {
		ReporterID string `json:"reporterId" binding:"required"`
		ReportedID string `json:"reportedId" binding:"required"`
		Reason     string `json:"reason" binding:"required"`
		CircleID   string `json:"circleId"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		abortWithError(c, &errs.ValidationError{Message: "Missing required fields"})
		return
	}

	muted, err := h.Trust.Report(body.ReporterID, body.ReportedID, body.Reason, body.CircleID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	metrics.ReportsTotal.Inc()
	if muted {
		metrics.MutesTotal.Inc()
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "muted": muted})
}

// BlockUser permanently bans an identity.
func (h *Handler) BlockUser(c *gin.Context) {
	var body struct {
		AnonymousID string `json:"anonymousId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		abortWithError(c, &errs.ValidationError{Message: "anonymousId is required"})
		return
	}

	if err := h.Trust.Block(body.AnonymousID); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// MuteUser applies an explicit moderator mute.
func (h *Handler) MuteUser(c *gin.Context) {
	var body struct {
		AnonymousID string `json:"anonymousId" binding:"required"`
		Days        int    `json:"days"`
		Reason      string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		abortWithError(c, &errs.ValidationError{Message: "anonymousId is required"})
		return
	}

	until, err := h.Trust.Mute(body.AnonymousID, body.Days, body.Reason)
	if err != nil {
		abortWithError(c, err)
		return
	}

	metrics.MutesTotal.Inc()
	c.JSON(http.StatusOK, gin.H{"success": true, "mutedUntil": until})
}

// CheckSuspicious runs the suspicious-activity probe.
func (h *Handler) CheckSuspicious(c *gin.Context) {
	anonID := c.Query("anonymousId")
	if anonID == "" {
		abortWithError(c, &errs.ValidationError{Message: "anonymousId is required"})
		return
	}

	result, err := h.Trust.CheckSuspicious(anonID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
