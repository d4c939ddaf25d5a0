// Package server exposes the portfolio simulator over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/etnz/papertrade"
	"github.com/etnz/papertrade/yahoo"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Searcher looks up symbols matching a free-text query.
type Searcher interface {
	Search(ctx context.Context, query string) ([]yahoo.SearchResult, error)
}

// Config holds the server settings.
type Config struct {
	Addr            string        // listen address, e.g. ":8000"
	ShutdownTimeout time.Duration // graceful shutdown budget
}

// Server serves the portfolio API.
type Server struct {
	cfg    Config
	sim    *papertrade.Simulator
	search Searcher
	log    zerolog.Logger
	engine *gin.Engine
}

// New assembles the router around a simulator and a symbol searcher.
func New(cfg Config, sim *papertrade.Simulator, search Searcher, logger zerolog.Logger) *Server {
	if cfg.Addr == "" {
		cfg.Addr = ":8000"
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(RequestID(), Logging(logger), Recovery(logger))

	s := &Server{cfg: cfg, sim: sim, search: search, log: logger, engine: engine}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.engine.GET("/search/:query", s.handleSearch)
	s.engine.GET("/historical-data/:ticker", s.handleHistoricalData)
	s.engine.POST("/buy", s.handleBuy)
	s.engine.POST("/sell", s.handleSell)
	s.engine.GET("/portfolio", s.handlePortfolio)
	s.engine.GET("/portfolio-value", s.handlePortfolioValue)
}

// Handler returns the http.Handler, for tests.
func (s *Server) Handler() http.Handler { return s.engine }

// Run warms the bar cache for held symbols, then serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	if err := s.sim.WarmCache(ctx); err != nil {
		// Startup warm-up is best effort: a symbol without data must not
		// keep the whole service down.
		s.log.Warn().Err(err).Msg("bar cache warm-up incomplete")
	}

	srv := &http.Server{Addr: s.cfg.Addr, Handler: s.engine}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.cfg.Addr).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
