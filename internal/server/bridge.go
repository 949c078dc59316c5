package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/danmuck/padctl/internal/auth"
	"github.com/danmuck/padctl/internal/observability"
	"github.com/danmuck/padctl/internal/padctl"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const version = "0.1.0"

// Options configures one Bridge.
type Options struct {
	ID          string
	Addr        string
	CorsOrigins []string
	// AuthToken guards operation routes when set.
	AuthToken string
	// RateLimit is operation requests per second; zero disables limiting.
	RateLimit float64
	RateBurst int
}

// Bridge exposes pad control operations over local HTTP for the UI process.
type Bridge struct {
	ID       string
	Addr     string
	Appeared time.Time

	pads      padctl.Controller
	router    *gin.Engine
	validator auth.Validator
	limiter   *rate.Limiter
}

// New builds a Bridge with its routes registered. It fails when the CORS
// origins are malformed.
func New(pads padctl.Controller, opts Options) (*Bridge, error) {
	observability.RegisterMetrics()
	if opts.ID == "" {
		opts.ID = "padctl"
	}

	corsCfg := cors.Config{
		AllowOrigins: normalizeOrigins(opts.CorsOrigins),
		AllowMethods: []string{"GET", "POST"},
		AllowHeaders: []string{"Origin", "Content-Type", "Authorization"},
		MaxAge:       12 * time.Hour,
	}
	if err := corsCfg.Validate(); err != nil {
		return nil, fmt.Errorf("bridge cors: %w", err)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestLogger(log.Logger))
	r.Use(observability.RequestMetricsMiddleware(opts.ID))
	r.Use(cors.New(corsCfg))
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	b := &Bridge{
		ID:       opts.ID,
		Addr:     opts.Addr,
		Appeared: time.Now(),
		pads:     pads,
		router:   r,
	}
	if opts.AuthToken != "" {
		b.validator = auth.StaticToken{Token: opts.AuthToken}
	}
	if opts.RateLimit > 0 {
		burst := opts.RateBurst
		if burst < 1 {
			burst = 1
		}
		b.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}
	b.RegisterRoutes()
	return b, nil
}

func (b *Bridge) HTTPRouter() *gin.Engine {
	return b.router
}

// Serve listens on Addr until ctx is cancelled, then shuts down gracefully.
func (b *Bridge) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              b.Addr,
		Handler:           b.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("bridge", b.ID).Str("addr", b.Addr).Msg("bridge listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		log.Info().Str("bridge", b.ID).Msg("bridge stopped")
		return nil
	}
}

func (b *Bridge) rateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if b.limiter != nil && !b.limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limited"})
			return
		}
		c.Next()
	}
}

func normalizeOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"http://localhost:3000"}
	}
	return origins
}
