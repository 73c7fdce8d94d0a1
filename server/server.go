package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/s0up4200/bgmbot/bot"
)

const (
	// DefaultListen is the address used when none is configured
	DefaultListen = "127.0.0.1:8686"
	// DefaultCleanupDelay is how long image files referenced by a reply
	// stay on disk after the reply was sent
	DefaultCleanupDelay = time.Minute

	shutdownTimeout = 10 * time.Second
	maxBodyBytes    = 64 << 10
)

// CommandHandler answers one chat message
type CommandHandler interface {
	Handle(ctx context.Context, message string) (*bot.Reply, error)
}

// Server exposes the command layer over HTTP for chat frameworks that
// deliver messages by webhook.
type Server struct {
	listen       string
	handler      CommandHandler
	engine       *gin.Engine
	logger       zerolog.Logger
	cleanupDelay time.Duration

	mu      sync.Mutex
	pending map[*bot.Reply]*time.Timer
}

// Option configures a Server
type Option func(*Server)

// WithCleanupDelay sets how long image files of a reply are kept once the
// response is written. Zero removes them immediately.
func WithCleanupDelay(d time.Duration) Option {
	return func(s *Server) {
		if d >= 0 {
			s.cleanupDelay = d
		}
	}
}

// New creates a server listening on listen
func New(listen string, handler CommandHandler, logger zerolog.Logger, opts ...Option) *Server {
	if listen == "" {
		listen = DefaultListen
	}

	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		listen:       listen,
		handler:      handler,
		engine:       gin.New(),
		logger:       logger.With().Str("component", "server").Logger(),
		cleanupDelay: DefaultCleanupDelay,
		pending:      make(map[*bot.Reply]*time.Timer),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.setupRouter()
	return s
}

func (s *Server) setupRouter() {
	s.engine.Use(gin.Recovery())
	s.engine.Use(requestLogger(s.logger, "/healthz"))

	s.engine.GET("/healthz", s.handleHealth)

	api := s.engine.Group("/api")
	{
		api.POST("/command", s.handleCommand)
	}
}

// Handler returns the HTTP handler, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.listen,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info().Str("listen", s.listen).Msg("Webhook server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		s.logger.Info().Msg("Shutting down webhook server")
		err := httpServer.Shutdown(shutdownCtx)
		s.flushCleanups()
		return err
	})

	return g.Wait()
}

// scheduleCleanup removes the reply's image files after the cleanup delay
func (s *Server) scheduleCleanup(reply *bot.Reply) {
	if !reply.HasImage() {
		return
	}
	if s.cleanupDelay <= 0 {
		s.cleanup(reply)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending[reply] = time.AfterFunc(s.cleanupDelay, func() {
		s.mu.Lock()
		delete(s.pending, reply)
		s.mu.Unlock()

		s.cleanup(reply)
	})
}

// flushCleanups removes the files of every reply still waiting
func (s *Server) flushCleanups() {
	s.mu.Lock()
	pending := s.pending
	s.pending = make(map[*bot.Reply]*time.Timer)
	s.mu.Unlock()

	for reply, timer := range pending {
		// A timer that already fired cleans up on its own
		if timer.Stop() {
			s.cleanup(reply)
		}
	}
}

func (s *Server) cleanup(reply *bot.Reply) {
	if err := reply.Cleanup(); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to remove reply images")
	}
}
