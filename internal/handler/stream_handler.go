package handler

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jabinweb/church-manager-sub003/internal/model"
	"github.com/jabinweb/church-manager-sub003/internal/push"
	"github.com/jabinweb/church-manager-sub003/internal/repository"
	"github.com/jabinweb/church-manager-sub003/pkg/auth"
)

// StreamHandler owns the canonical push transport: a long-lived HTTP
// response carrying newline-delimited JSON envelopes. It also serves
// the presence queries backed by the registry.
type StreamHandler struct {
	registry   *push.Registry
	jwtManager *auth.JWTManager
	userRepo   *repository.UserRepository
}

func NewStreamHandler(registry *push.Registry, jwtManager *auth.JWTManager, userRepo *repository.UserRepository) *StreamHandler {
	return &StreamHandler{registry: registry, jwtManager: jwtManager, userRepo: userRepo}
}

// Stream godoc
// @Summary Open the push event stream
// @Description Long-lived NDJSON response. One JSON envelope per line. Auth via token query parameter. Opening a second stream retires the first (last registration wins).
// @Tags Stream
// @Produce json
// @Param token query string true "JWT"
// @Success 200
// @Router /stream [get]
func (h *StreamHandler) Stream(c *gin.Context) {
	// EventSource and fetch-streaming clients cannot set headers, so
	// the token travels as a query parameter, same as /ws.
	claims, err := h.jwtManager.ValidateToken(c.Query("token"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, model.ErrorResponse{Error: "Invalid token"})
		return
	}
	userID := claims.UserID

	c.Writer.Header().Set("Content-Type", "application/x-ndjson")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")
	c.Writer.WriteHeader(http.StatusOK)
	c.Writer.Flush()

	stream, err := push.NewNDJSONStream(c.Writer)
	if err != nil {
		log.Printf("❌ Cannot stream to %s: %v", userID, err)
		return
	}

	h.registry.Register(userID, stream)
	_ = h.userRepo.UpdateOnlineStatus(userID, true)
	log.Printf("✅ Stream connected: %s (%s)", claims.Name, userID)

	// The welcome frame confirms registration before any events flow.
	h.registry.Send(userID, model.NewEnvelope(model.ConnectionEstablishedEvent{
		UserID:    userID,
		Timestamp: time.Now(),
	}))

	// Block until the client goes away or the registry retires the
	// stream (failed write, replaced by a newer tab).
	select {
	case <-c.Request.Context().Done():
	case <-stream.Wait():
	}

	h.registry.Unregister(userID, stream)
	_ = stream.Close()
	h.markOfflineIfGone(userID)
	log.Printf("❌ Stream disconnected: %s", userID)
}

// Presence godoc
// @Summary Query online status
// @Description With user_id returns that user's status; without, the full online list.
// @Tags Stream
// @Produce json
// @Security BearerAuth
// @Param user_id query string false "User ID"
// @Success 200 {object} model.OnlineUsersResponse
// @Router /presence [get]
func (h *StreamHandler) Presence(c *gin.Context) {
	if raw := c.Query("user_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid user_id"})
			return
		}
		c.JSON(http.StatusOK, model.PresenceResponse{UserID: id, IsOnline: h.registry.IsOnline(id)})
		return
	}

	c.JSON(http.StatusOK, model.OnlineUsersResponse{
		UserIDs: h.registry.OnlineUsers(),
		AsOf:    time.Now(),
	})
}

// markOfflineIfGone records the user offline unless a replacement
// stream registered in the meantime (tab switch, reconnect).
func (h *StreamHandler) markOfflineIfGone(userID uuid.UUID) {
	if !h.registry.IsOnline(userID) {
		_ = h.userRepo.UpdateOnlineStatus(userID, false)
	}
}
