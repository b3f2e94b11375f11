package admin

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/danmuck/stashctl/internal/observability"
	"github.com/danmuck/stashctl/internal/saveload"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

const (
	version         = "0.1.0"
	defaultRunLimit = 1000
)

// Clock is the host clock the admin surface may advance.
type Clock interface {
	Step() bool
	RunUntilIdle(ctx context.Context, max int) (int, error)
	Registers() (int64, int64)
	Round() int
}

type Server struct {
	ID       string
	Addr     string
	Appeared time.Time

	manager *saveload.Manager
	clock   Clock
	router  *gin.Engine

	mu       sync.Mutex
	lastSave *saveload.Future[struct{}]
	lastLoad *saveload.Future[string]
}

func New(id, addr string, corsOrigins []string, manager *saveload.Manager, clock Clock) *Server {
	observability.RegisterMetrics()
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestObserver(id, log.Logger))
	r.Use(cors.New(cors.Config{
		AllowOrigins: normalizeOrigins(corsOrigins),
		AllowMethods: []string{"GET", "POST"},
		AllowHeaders: []string{"Origin", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}))
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	s := &Server{
		ID:       id,
		Addr:     addr,
		Appeared: time.Now(),
		manager:  manager,
		clock:    clock,
		router:   r,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Serve() error {
	log.Info().Str("id", s.ID).Str("addr", s.Addr).Msg("admin server listening")
	return s.router.Run(s.Addr)
}

func (s *Server) registerRoutes() {
	r := s.router
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"uptime":  time.Since(s.Appeared).String(),
			"service": s.ID,
			"version": version,
		})
	})
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"ready":   s.manager != nil,
			"service": s.ID,
			"version": version,
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/session", s.handleSession)
	r.POST("/save", s.handleSave)
	r.POST("/load", s.handleLoad)
	r.GET("/load/result", s.handleLoadResult)
	r.POST("/cycle", s.handleCycle)
	r.POST("/cycle/run", s.handleCycleRun)
}

type sessionView struct {
	Key         string `json:"key"`
	SessionID   string `json:"session_id,omitempty"`
	State       string `json:"state"`
	ChunkIndex  int    `json:"chunk_index"`
	QueueLen    int    `json:"queue_len"`
	Accumulated int    `json:"accumulated"`
	ChannelA    int64  `json:"channel_a"`
	ChannelB    int64  `json:"channel_b"`
	Round       int    `json:"round"`
	SaveDone    bool   `json:"save_done"`
}

func (s *Server) view() sessionView {
	snap := s.manager.Snapshot()
	v := sessionView{
		Key:         snap.Key,
		SessionID:   snap.SessionID,
		State:       snap.State.String(),
		ChunkIndex:  snap.ChunkIndex,
		QueueLen:    snap.QueueLen,
		Accumulated: snap.Accumulated,
	}
	if s.clock != nil {
		v.ChannelA, v.ChannelB = s.clock.Registers()
		v.Round = s.clock.Round()
	}
	s.mu.Lock()
	if s.lastSave != nil {
		_, v.SaveDone = s.lastSave.Result()
	}
	s.mu.Unlock()
	return v
}

func (s *Server) handleSession(c *gin.Context) {
	c.JSON(http.StatusOK, s.view())
}

type saveRequest struct {
	Payload string `json:"payload"`
}

func (s *Server) handleSave(c *gin.Context) {
	var req saveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	fut, err := s.manager.Save(req.Payload)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	s.mu.Lock()
	s.lastSave = fut
	s.mu.Unlock()
	log.Info().Str("id", s.ID).Int("bytes", len(req.Payload)).Msg("save started")
	c.JSON(http.StatusAccepted, s.view())
}

func (s *Server) handleLoad(c *gin.Context) {
	fut, err := s.manager.Load()
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	s.mu.Lock()
	s.lastLoad = fut
	s.mu.Unlock()
	log.Info().Str("id", s.ID).Msg("load started")
	c.JSON(http.StatusAccepted, s.view())
}

func (s *Server) handleLoadResult(c *gin.Context) {
	s.mu.Lock()
	fut := s.lastLoad
	s.mu.Unlock()
	if fut == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no load started"})
		return
	}
	payload, ready := fut.Result()
	c.JSON(http.StatusOK, gin.H{"ready": ready, "payload": payload})
}

func (s *Server) handleCycle(c *gin.Context) {
	if s.clock == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "host clock is external"})
		return
	}
	advanced := s.clock.Step()
	c.JSON(http.StatusOK, gin.H{"advanced": advanced, "session": s.view()})
}

func (s *Server) handleCycleRun(c *gin.Context) {
	if s.clock == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "host clock is external"})
		return
	}
	limit := defaultRunLimit
	if raw := c.Query("max"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "max must be a positive integer"})
			return
		}
		limit = v
	}
	n, err := s.clock.RunUntilIdle(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "cycles": n, "session": s.view()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"cycles": n, "session": s.view()})
}

func statusFor(err error) int {
	if errors.Is(err, saveload.ErrSessionActive) {
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func normalizeOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"http://localhost:3000"}
	}
	return origins
}
