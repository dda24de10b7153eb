package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jabinweb/church-manager-sub003/internal/apperr"
	"github.com/jabinweb/church-manager-sub003/internal/model"
)

// respondError maps a service error to its HTTP status. Errors outside
// the domain taxonomy are masked as a generic 500.
func respondError(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	var e *apperr.Error
	if errors.As(err, &e) {
		c.JSON(status, model.ErrorResponse{Error: e.Message})
		return
	}
	c.JSON(status, model.ErrorResponse{Error: "Internal server error"})
}

// currentUserID reads the authenticated identity injected by the auth
// middleware. Routes using it must be behind AuthMiddleware.
func currentUserID(c *gin.Context) uuid.UUID {
	return c.MustGet("user_id").(uuid.UUID)
}

func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}
