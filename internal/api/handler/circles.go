package handler

import (
	"net/http"
	"strconv"

	"safecircle/backend/internal/circles"
	"safecircle/backend/internal/errs"

	"github.com/gin-gonic/gin"
)

// MatchCircle probes for an open circle on the exact grouping dimensions.
func (h *Handler) MatchCircle(c *gin.Context) {
	var params circles.MatchParams
	if err := c.ShouldBindJSON(&params); err != nil {
		abortWithError(c, &errs.ValidationError{Message: "Missing required fields"})
		return
	}

	result, err := h.Circles.Match(params)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// CreateCircle creates a circle with the creator as first member.
func (h *Handler) CreateCircle(c *gin.Context) {
	var params circles.CreateParams
	if err := c.ShouldBindJSON(&params); err != nil {
		abortWithError(c, &errs.ValidationError{Message: "Missing required fields"})
		return
	}

	circle, err := h.Circles.Create(params)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "circle": circle})
}

// JoinCircle adds a member to an existing circle.
func (h *Handler) JoinCircle(c *gin.Context) {
	var body struct {
		MemberData circles.MemberData `json:"memberData" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		abortWithError(c, &errs.ValidationError{Message: "memberData is required"})
		return
	}

	circle, err := h.Circles.Join(c.Param("id"), body.MemberData)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "circle": circle})
}

// LeaveCircle deactivates a membership.
func (h *Handler) LeaveCircle(c *gin.Context) {
	var body struct {
		AnonymousID string `json:"anonymousId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		abortWithError(c, &errs.ValidationError{Message: "anonymousId is required"})
		return
	}

	circle, err := h.Circles.Leave(c.Param("id"), body.AnonymousID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "circle": circle})
}

// GetCircle returns circle details.
func (h *Handler) GetCircle(c *gin.Context) {
	circle, err := h.Circles.Get(c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, circle)
}

// ListCircles returns open circles filtered by query dimensions.
func (h *Handler) ListCircles(c *gin.Context) {
	circlesList, err := h.Circles.List(
		c.Query("category"),
		c.Query("location"),
		c.Query("language"),
	)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, circlesList)
}

// GetCircleMessages returns recent message history for client rebuild
// after reconnect.
func (h *Handler) GetCircleMessages(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	messages, err := h.Circles.History(c.Param("id"), limit)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, messages)
}
