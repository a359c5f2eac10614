package harness

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quizforge/scorm-engine/internal/utils"
)

// Server is a minimal LMS emulator: it exposes the runtime key/value channel
// over HTTP so an engine process can exercise the full SCORM write path
// without a real LMS. One store bucket per session id.
type Server struct {
	store  Store
	logger *slog.Logger
}

func NewServer(store Store, logger *slog.Logger) *Server {
	return &Server{store: store, logger: logger}
}

type setValueRequest struct {
	Key   string `json:"key" binding:"required"`
	Value string `json:"value"`
}

type valueResponse struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Router builds the gin engine with all harness routes mounted.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.LoggerMiddleware(s.logger))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	sessions := router.Group("/api/v1/sessions/:session")
	{
		sessions.POST("/initialize", s.initialize)
		sessions.GET("/values/:key", s.getValue)
		sessions.POST("/values", s.setValue)
		sessions.POST("/commit", s.commit)
		sessions.POST("/terminate", s.terminate)
		sessions.GET("/snapshot", s.snapshot)
		sessions.DELETE("", s.clear)
	}

	return router
}

func (s *Server) initialize(c *gin.Context) {
	session := c.Param("session")
	if err := s.store.Set(c.Request.Context(), session, "harness.state", "initialized"); err != nil {
		s.respondError(c, session, err)
		return
	}
	s.logger.Info("session initialized", "session", session)
	c.JSON(http.StatusOK, gin.H{"status": "initialized"})
}

func (s *Server) getValue(c *gin.Context) {
	session := c.Param("session")
	key := c.Param("key")

	value, err := s.store.Get(c.Request.Context(), session, key)
	if err != nil {
		s.respondError(c, session, err)
		return
	}
	c.JSON(http.StatusOK, valueResponse{Key: key, Value: value})
}

func (s *Server) setValue(c *gin.Context) {
	session := c.Param("session")

	var req setValueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body", "error": err.Error()})
		return
	}

	if err := s.store.Set(c.Request.Context(), session, req.Key, req.Value); err != nil {
		s.respondError(c, session, err)
		return
	}
	s.logger.Debug("runtime write", "session", session, "key", req.Key, "value", req.Value)
	c.JSON(http.StatusOK, gin.H{"status": "stored"})
}

func (s *Server) commit(c *gin.Context) {
	// The store writes through on every set, so commit is an acknowledgement.
	s.logger.Debug("commit", "session", c.Param("session"))
	c.JSON(http.StatusOK, gin.H{"status": "committed"})
}

func (s *Server) terminate(c *gin.Context) {
	session := c.Param("session")
	if err := s.store.Set(c.Request.Context(), session, "harness.state", "terminated"); err != nil {
		s.respondError(c, session, err)
		return
	}
	s.logger.Info("session terminated", "session", session)
	c.JSON(http.StatusOK, gin.H{"status": "terminated"})
}

func (s *Server) snapshot(c *gin.Context) {
	session := c.Param("session")
	values, err := s.store.Snapshot(c.Request.Context(), session)
	if err != nil {
		s.respondError(c, session, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session, "values": values})
}

func (s *Server) clear(c *gin.Context) {
	session := c.Param("session")
	if err := s.store.Clear(c.Request.Context(), session); err != nil {
		s.respondError(c, session, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cleared"})
}

func (s *Server) respondError(c *gin.Context, session string, err error) {
	s.logger.Error("store operation failed", "session", session, "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"message": "store operation failed"})
}
