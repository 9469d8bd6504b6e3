package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/symbiote-h2020/Administration-sub000/internal/config"
	"github.com/symbiote-h2020/Administration-sub000/internal/domain"
	"github.com/symbiote-h2020/Administration-sub000/internal/infra/auth/header"
	"github.com/symbiote-h2020/Administration-sub000/internal/infra/auth/rbac"
	"github.com/symbiote-h2020/Administration-sub000/internal/infra/auth/session"
	"github.com/symbiote-h2020/Administration-sub000/internal/infra/ratelimit"
	"github.com/symbiote-h2020/Administration-sub000/internal/log"
	"github.com/symbiote-h2020/Administration-sub000/internal/usecase"

	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 10 * time.Second

// Authenticator turns an inbound request into a principal. It never decides admin status.
type Authenticator interface {
	Authenticate(ctx context.Context, r *http.Request) (domain.Principal, error)
}

type Server struct {
	cfg config.Config
	r   *gin.Engine

	federations *usecase.FederationService
	joined      *usecase.JoinedFederationsQuery

	storeMode string
	health    func(ctx context.Context) error

	adminAPIKey   string
	authenticator Authenticator
	authorizer    *rbac.Authorizer
	authInitErr   error

	rateLimiter         domain.RateLimiter
	rateLimitRequests   int
	rateLimitFederation int
	rateLimitWindow     time.Duration
	rateLimitFailClosed bool
}

type ServerDeps struct {
	Federations   *usecase.FederationService
	Joined        *usecase.JoinedFederationsQuery
	StoreMode     string
	Health        func(ctx context.Context) error
	Authenticator Authenticator
	Authorizer    *rbac.Authorizer
	RateLimiter   domain.RateLimiter
}

func NewServerWithDeps(cfg config.Config, deps ServerDeps) *Server {
	r := gin.New()
	r.Use(gin.Recovery(), requestID(), accessLog(), observeRequests())

	s := &Server{
		cfg:           cfg,
		r:             r,
		federations:   deps.Federations,
		joined:        deps.Joined,
		storeMode:     deps.StoreMode,
		health:        deps.Health,
		adminAPIKey:   cfg.AdminAPIKey,
		authenticator: deps.Authenticator,
		authorizer:    deps.Authorizer,
	}
	if s.storeMode == "" {
		s.storeMode = "unknown"
	}
	s.initRateLimit(deps.RateLimiter)
	s.initAuth()
	s.routes()
	return s
}

func (s *Server) initAuth() {
	if s.authorizer == nil {
		s.authorizer = rbac.NewAuthorizer(s.cfg.AdminRole)
	}
	if s.authenticator != nil {
		return
	}
	switch s.cfg.AuthMode {
	case "", "header":
		s.authenticator = header.NewAuthenticator()
	case "token":
		authenticator, err := session.NewAuthenticator(s.cfg.SessionPublicKeyBase64)
		if err != nil {
			s.authInitErr = err
			return
		}
		s.authenticator = authenticator
	default:
		s.authInitErr = fmt.Errorf("unsupported auth mode %q", s.cfg.AuthMode)
	}
}

func (s *Server) initRateLimit(override domain.RateLimiter) {
	if override != nil {
		s.rateLimiter = override
	}
	if s.rateLimiter == nil && (s.cfg.RateLimitRequests > 0 || s.cfg.RateLimitFederationMutations > 0) {
		if s.cfg.RedisAddr != "" {
			limiter, err := ratelimit.NewRedisLimiter(ratelimit.RedisConfig{
				Addr:     s.cfg.RedisAddr,
				Password: s.cfg.RedisPassword,
				DB:       s.cfg.RedisDB,
			})
			if err == nil {
				s.rateLimiter = limiter
			} else {
				logger := log.WithComponent("http")
				logger.Warn().Err(err).Msg("redis rate limiter unavailable; using in-memory limiter")
			}
		}
		if s.rateLimiter == nil {
			s.rateLimiter = ratelimit.NewMemoryLimiter(ratelimit.MemoryConfig{MaxKeys: s.cfg.RateLimitMaxKeys})
		}
	}
	s.rateLimitRequests = s.cfg.RateLimitRequests
	s.rateLimitFederation = s.cfg.RateLimitFederationMutations
	s.rateLimitWindow = s.cfg.RateLimitWindow()
	s.rateLimitFailClosed = s.cfg.RateLimitFailClosed
}

func (s *Server) Handler() http.Handler {
	return s.r
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	if s.authInitErr != nil {
		return s.authInitErr
	}
	srv := &http.Server{
		Addr:              s.cfg.HTTPAddr,
		Handler:           s.r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	logger := log.WithComponent("http")
	go func() {
		logger.Info().Str("addr", s.cfg.HTTPAddr).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return nil
}
