package handler

import (
	"errors"
	"net/http"

	"safecircle/backend/internal/chathub"
	"safecircle/backend/internal/circles"
	"safecircle/backend/internal/errs"
	"safecircle/backend/internal/trust"

	"github.com/gin-gonic/gin"
)

// Handler wires the HTTP surface to the services and the realtime hub.
type Handler struct {
	Hub       *chathub.ManagerService
	Gateway   *chathub.Gateway
	Circles   *circles.Service
	Trust     *trust.Service
	JWTSecret []byte
}

func NewHandler(hub *chathub.ManagerService, gw *chathub.Gateway, c *circles.Service, t *trust.Service, jwtSecret string) *Handler {
	return &Handler{
		Hub:       hub,
		Gateway:   gw,
		Circles:   c,
		Trust:     t,
		JWTSecret: []byte(jwtSecret),
	}
}

// abortWithError maps a domain error onto an HTTP status.
func abortWithError(c *gin.Context, err error) {
	var (
		validationErr *errs.ValidationError
		notFoundErr   *errs.NotFoundError
		capacityErr   *errs.CapacityError
		membershipErr *errs.MembershipError
		moderationErr *errs.ModerationError
	)

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"message": validationErr.Message})
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, gin.H{"message": notFoundErr.Error()})
	case errors.As(err, &capacityErr):
		c.JSON(http.StatusConflict, gin.H{"message": "Circle is full", "rematch": true})
	case errors.As(err, &membershipErr):
		c.JSON(http.StatusForbidden, gin.H{"message": membershipErr.Error()})
	case errors.As(err, &moderationErr):
		c.JSON(http.StatusForbidden, gin.H{"message": moderationErr.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
	}
}
