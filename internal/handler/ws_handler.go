package handler

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jabinweb/church-manager-sub003/internal/model"
	"github.com/jabinweb/church-manager-sub003/internal/push"
	"github.com/jabinweb/church-manager-sub003/internal/repository"
	"github.com/jabinweb/church-manager-sub003/pkg/auth"
)

const maxMessageSize = 1024

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // In production, validate origin
	},
}

// WSHandler serves the websocket push transport. It is push-only: the
// same envelopes as /stream go out, and inbound frames are ignored
// except for connection liveness — all mutations go through the REST
// endpoints so there is a single write path.
type WSHandler struct {
	registry   *push.Registry
	jwtManager *auth.JWTManager
	userRepo   *repository.UserRepository
}

func NewWSHandler(registry *push.Registry, jwtManager *auth.JWTManager, userRepo *repository.UserRepository) *WSHandler {
	return &WSHandler{registry: registry, jwtManager: jwtManager, userRepo: userRepo}
}

// HandleWebSocket godoc
// @Summary Open the push stream over a websocket
// @Description Alternative transport to /stream carrying identical JSON envelopes. Connect with ws://host/ws?token=<jwt>.
// @Tags Stream
// @Param token query string true "JWT"
// @Success 101
// @Router /ws [get]
func (h *WSHandler) HandleWebSocket(c *gin.Context) {
	claims, err := h.jwtManager.ValidateToken(c.Query("token"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, model.ErrorResponse{Error: "Invalid token"})
		return
	}
	userID := claims.UserID

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("❌ WebSocket upgrade error: %v", err)
		return
	}

	stream := push.NewWSStream(conn)
	h.registry.Register(userID, stream)
	_ = h.userRepo.UpdateOnlineStatus(userID, true)
	log.Printf("✅ WS connected: %s (%s)", claims.Name, userID)

	h.registry.Send(userID, model.NewEnvelope(model.ConnectionEstablishedEvent{
		UserID:    userID,
		Timestamp: time.Now(),
	}))

	go h.readUntilClosed(conn, stream, userID)
}

// readUntilClosed drains inbound frames to detect the close. Frame
// contents are intentionally dropped. Half-open sockets are caught by
// the heartbeat write failing, same as on the NDJSON transport, so no
// read deadline is set.
func (h *WSHandler) readUntilClosed(conn *websocket.Conn, stream *push.WSStream, userID uuid.UUID) {
	defer func() {
		h.registry.Unregister(userID, stream)
		_ = conn.Close()
		if !h.registry.IsOnline(userID) {
			_ = h.userRepo.UpdateOnlineStatus(userID, false)
		}
		log.Printf("❌ WS disconnected: %s", userID)
	}()

	conn.SetReadLimit(maxMessageSize)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			return
		}
	}
}
