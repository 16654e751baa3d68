package server

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"kanbanflow/internal/assist"
	"kanbanflow/internal/board"
	"kanbanflow/internal/logging"
	"kanbanflow/internal/model"
	"kanbanflow/internal/search"
)

// Chatter is the optional free-form assistant (assist.Client implements it).
type Chatter interface {
	Chat(ctx context.Context, message string) string
}

// Server is a JSON API over one board session.
type Server struct {
	eng *board.Engine
	ai  assist.Assistant
	ix  *search.Index
	log *zap.Logger

	token string

	mu       sync.Mutex
	inFlight map[string]bool

	// streams ends open event streams and websockets on shutdown.
	streams     context.Context
	stopStreams context.CancelFunc
}

type Option func(*Server)

// WithToken requires token as a bearer token (or ?token=) on every route but health.
func WithToken(token string) Option {
	return func(s *Server) { s.token = strings.TrimSpace(token) }
}

func New(eng *board.Engine, ai assist.Assistant, ix *search.Index, log *zap.Logger, opts ...Option) *Server {
	if ai == nil {
		ai = assist.NewClient(nil, log)
	}
	s := &Server{
		eng:      eng,
		ai:       ai,
		ix:       ix,
		log:      logging.OrNop(log),
		inFlight: map[string]bool{},
	}
	s.streams, s.stopStreams = context.WithCancel(context.Background())
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Server) Handler() http.Handler {
	router := gin.New()
	router.Use(ginzap.Ginzap(s.log, time.RFC3339, true))
	router.Use(ginzap.RecoveryWithZap(s.log, true))

	router.GET("/api/health", s.health)

	api := router.Group("/api", s.requireToken)
	{
		api.GET("/board", s.getBoard)
		api.GET("/events", s.events)
		api.GET("/ws", s.ws)
		api.GET("/search", s.search)
		api.POST("/chat", s.chat)

		api.POST("/lists", s.addList)
		api.POST("/lists/:id/cards", s.addCard)
		api.POST("/lists/:id/move", s.moveList)

		api.GET("/cards/:id", s.getCard)
		api.PATCH("/cards/:id", s.updateCard)
		api.POST("/cards/:id/move", s.moveCard)
		api.POST("/cards/:id/comments", s.postComment)
		api.POST("/cards/:id/checklist/:itemID/toggle", s.toggleChecklistItem)
		api.POST("/cards/:id/archive", s.archiveCard)
		api.POST("/cards/:id/ai/description", s.generateDescription)
		api.POST("/cards/:id/ai/checklist", s.suggestChecklist)
	}
	return router
}

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.log.Info("shutting down")
		s.stopStreams()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// begin claims the in-flight slot for key; the returned func releases it.
func (s *Server) begin(key string) (func(), bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight[key] {
		return nil, false
	}
	s.inFlight[key] = true
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.inFlight, key)
	}, true
}

func (s *Server) requireToken(c *gin.Context) {
	if s.token == "" {
		c.Next()
		return
	}
	got := strings.TrimSpace(c.Query("token"))
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		got = strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if subtle.ConstantTimeCompare([]byte(got), []byte(s.token)) != 1 {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid token"})
		return
	}
	c.Next()
}

// follow subscribes to board changes. The channel holds only the latest snapshot
// and starts with the current board.
func (s *Server) follow() (<-chan model.Board, func()) {
	latest := make(chan model.Board, 1)
	push := func(b model.Board) {
		select {
		case latest <- b:
		default:
			select {
			case <-latest:
			default:
			}
			select {
			case latest <- b:
			default:
			}
		}
	}
	unsubscribe := s.eng.Subscribe(push)
	push(s.eng.Board())
	return latest, unsubscribe
}
