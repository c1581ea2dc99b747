package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Tuyetzz/QuizWeb/internal/config"
	"github.com/Tuyetzz/QuizWeb/internal/middleware"
	"github.com/Tuyetzz/QuizWeb/internal/model"
	"github.com/Tuyetzz/QuizWeb/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allowedOrigins slice permits all origins (development mode).
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

// WSHandler streams the attempt clock over WebSocket.
type WSHandler struct {
	rdb            *redis.Client
	attemptService *service.AttemptService
	log            zerolog.Logger
	upgrader       websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(rdb *redis.Client, attemptService *service.AttemptService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		rdb:            rdb,
		attemptService: attemptService,
		log:            log.With().Str("component", "ws_handler").Logger(),
		upgrader:       buildUpgrader(allowedOrigins),
	}
}

// clockTick is one frame of the attempt clock stream.
type clockTick struct {
	AttemptID        int64               `json:"attempt_id"`
	Status           model.AttemptStatus `json:"status"`
	RemainingSeconds int64               `json:"remaining_seconds"`
}

// AttemptClockStream godoc
// WS /ws/v1/attempts/:id/clock?token=...
// Pushes the remaining seconds of an in-progress attempt once per second
// until the clock runs out or the client disconnects.
func (h *WSHandler) AttemptClockStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	attemptID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || attemptID < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid attempt ID"})
		return
	}

	userID := middleware.ScopeUserID(c)
	attempt, err := h.attemptService.GetByID(c.Request.Context(), attemptID, userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "attempt not found"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	ctx := c.Request.Context()
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		expiresAt, ok := h.readClock(c, attemptID, attempt)
		remaining := int64(0)
		if ok {
			remaining = int64(time.Until(expiresAt).Seconds())
			if remaining < 0 {
				remaining = 0
			}
		}

		tick := clockTick{AttemptID: attemptID, Status: attempt.Status, RemainingSeconds: remaining}
		if err := conn.WriteJSON(tick); err != nil {
			return
		}
		if remaining == 0 {
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// readClock resolves the attempt expiry, preferring the Redis cache and
// falling back to the stored attempt row.
func (h *WSHandler) readClock(c *gin.Context, attemptID int64, attempt *model.Attempt) (time.Time, bool) {
	raw, err := h.rdb.Get(c.Request.Context(), config.CacheKey.AttemptClockKey(attemptID)).Result()
	if err == nil {
		if unix, perr := strconv.ParseInt(raw, 10, 64); perr == nil {
			return time.Unix(unix, 0), true
		}
	} else if !errors.Is(err, redis.Nil) {
		h.log.Warn().Err(err).Int64("attempt_id", attemptID).Msg("clock cache read failed")
	}
	if attempt.ExpiresAt != nil {
		return *attempt.ExpiresAt, true
	}
	return time.Time{}, false
}
