package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/classcast/classcast-backend/internal/config"
	"github.com/classcast/classcast-backend/internal/middleware"
	"github.com/classcast/classcast-backend/internal/model"
	"github.com/classcast/classcast-backend/internal/service"
	ws "github.com/classcast/classcast-backend/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty origins slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams live engine events to connected clients. The push
// channel mirrors what the poll endpoints serve; a client that never
// connects here still sees everything, just a poll interval later.
type WSHandler struct {
	rdb            *redis.Client
	subjectService *service.SubjectService
	log            zerolog.Logger
	upgrader       websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(rdb *redis.Client, subjectService *service.SubjectService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		rdb:            rdb,
		subjectService: subjectService,
		log:            log.With().Str("component", "ws_handler").Logger(),
		upgrader:       buildUpgrader(allowedOrigins),
	}
}

// SubjectStream godoc
// WS /ws/v1/subjects/:id/stream
// Upgrades to WebSocket and forwards the subject's live engine events.
func (h *WSHandler) SubjectStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	subjectID, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	// Teachers must own the subject, students must be enrolled.
	ctx := c.Request.Context()
	if claims.Role == model.RoleTeacher {
		if _, err := h.subjectService.GetOwned(ctx, claims.UserID, subjectID); err != nil {
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
	} else {
		if err := h.subjectService.RequireEnrollment(ctx, subjectID, claims.UserID); err != nil {
			c.JSON(http.StatusForbidden, gin.H{"error": "not enrolled"})
			return
		}
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().
		Str("user_id", claims.UserID.String()).
		Str("subject_id", subjectID.String()).
		Logger()
	wsLog.Info().Msg("Client connected")

	channel := config.CacheKey.SubjectEventsChannel(subjectID.String())
	pubsub := h.rdb.Subscribe(ctx, channel)
	defer pubsub.Close()

	// Forward engine events until the subscription or connection dies.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for msg := range pubsub.Channel() {
			engineMsg := ws.EngineMessage{
				Event: ws.EventEngine,
				Data:  json.RawMessage(msg.Payload),
			}
			if err := ws.WriteTyped(conn, engineMsg); err != nil {
				wsLog.Debug().Err(err).Msg("Forward failed, dropping client")
				conn.Close()
				return
			}
		}
	}()

	for {
		var msg ws.RequestEnvelope
		if err := ws.ReadJSON(conn, &msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			break
		}

		switch msg.Action {
		case ws.ActionPing:
			if err := ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong}); err != nil {
				wsLog.Debug().Err(err).Msg("Pong failed")
			}
		default:
			ws.WriteError(conn, "unknown action: "+string(msg.Action))
		}
	}

	pubsub.Close()
	<-done
	wsLog.Info().Msg("Client disconnected")
}
