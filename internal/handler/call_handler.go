package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jabinweb/church-manager-sub003/internal/model"
	"github.com/jabinweb/church-manager-sub003/internal/push"
)

// CallHandler relays two-party call signals through the registry
type CallHandler struct {
	relay *push.CallSignalRelay
}

func NewCallHandler(relay *push.CallSignalRelay) *CallHandler {
	return &CallHandler{relay: relay}
}

// Signal godoc
// @Summary Relay a call signal to its single target
// @Description Stateless relay: incoming goes to the receiver, accepted/rejected back to the caller, ended/failed to the other party. delivered=false means the target is not online; the caller's UI handles that.
// @Tags Calls
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body model.CallSignalRequest true "Signal"
// @Success 200 {object} model.CallSignalResponse
// @Router /calls/signal [post]
func (h *CallHandler) Signal(c *gin.Context) {
	var req model.CallSignalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}

	delivered, err := h.relay.Relay(currentUserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := model.CallSignalResponse{Delivered: delivered}
	if !delivered {
		resp.Message = "user is not online"
	}
	c.JSON(http.StatusOK, resp)
}
