package server

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/nroche/timebomb/internal/game"
	"github.com/nroche/timebomb/internal/roomid"
)

type createRoomRequest struct {
	DisplayName string                 `json:"displayName" binding:"required"`
	Avatar      string                 `json:"avatar"`
	Options     *game.RoomOptionsPatch `json:"options"`
}

type joinRoomRequest struct {
	RoomID      string `json:"roomId" binding:"required"`
	DisplayName string `json:"displayName" binding:"required"`
	Avatar      string `json:"avatar"`
}

// NewRouter builds the REST and WebSocket surface. The REST endpoints cover
// room creation, joining, status queries, and the public lobby listing; live
// play happens over /ws.
func NewRouter(srv *Server, allowedOrigins []string, debug bool) *gin.Engine {
	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if len(allowedOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = allowedOrigins
	}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	r.Use(cors.New(corsConfig))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().UTC(),
			"stats":  srv.engine.Stats(),
		})
	})

	api := r.Group("/api")
	{
		api.POST("/rooms", func(c *gin.Context) {
			var req createRoomRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": err.Error()})
				return
			}

			created, err := srv.engine.CreateRoom(req.DisplayName, req.Avatar, req.Options)
			if err != nil {
				c.JSON(httpStatus(err), gin.H{"error": errorCode(err), "message": err.Error()})
				return
			}

			token, err := srv.signer.Sign(created.RoomID, created.PlayerID, req.DisplayName)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error", "message": "failed to create session token"})
				return
			}

			c.JSON(http.StatusCreated, RoomCreatedData{
				RoomID:   created.RoomID,
				PlayerID: created.PlayerID,
				Token:    token,
			})
		})

		api.POST("/rooms/join", func(c *gin.Context) {
			var req joinRoomRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": err.Error()})
				return
			}

			result, err := srv.engine.JoinRoom(c.Request.Context(), roomid.Normalize(req.RoomID), req.DisplayName, req.Avatar)
			if err != nil {
				c.JSON(httpStatus(err), gin.H{"error": errorCode(err), "message": err.Error()})
				return
			}

			token, err := srv.signer.Sign(result.RoomID, result.PlayerID, req.DisplayName)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error", "message": "failed to create session token"})
				return
			}

			c.JSON(http.StatusOK, RoomJoinedData{
				RoomID:      result.RoomID,
				PlayerID:    result.PlayerID,
				Token:       token,
				Reconnected: result.Reconnected,
			})
		})

		api.GET("/rooms", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"rooms": srv.engine.PublicRooms()})
		})

		api.GET("/sessions/:playerId", func(c *gin.Context) {
			sess, err := srv.engine.ResolveSession(c.Request.Context(), c.Param("playerId"))
			if err != nil {
				c.JSON(httpStatus(err), gin.H{"error": errorCode(err), "message": err.Error()})
				return
			}
			c.JSON(http.StatusOK, sess)
		})

		api.GET("/rooms/:id", func(c *gin.Context) {
			status, err := srv.engine.RoomStatus(c.Request.Context(), roomid.Normalize(c.Param("id")))
			if err != nil {
				c.JSON(httpStatus(err), gin.H{"error": errorCode(err), "message": err.Error()})
				return
			}
			c.JSON(http.StatusOK, status)
		})
	}

	r.GET("/ws", func(c *gin.Context) {
		srv.HandleWebSocket(c.Writer, c.Request)
	})

	return r
}
