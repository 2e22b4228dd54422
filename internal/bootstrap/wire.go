// Package bootstrap wires config, storage, backend client and router into an *http.Server.
package bootstrap

import (
	"context"
	"net/http"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/baechuer/careportal/internal/api"
	"github.com/baechuer/careportal/internal/api/handlers"
	"github.com/baechuer/careportal/internal/apiclient"
	"github.com/baechuer/careportal/internal/audit"
	"github.com/baechuer/careportal/internal/backend"
	"github.com/baechuer/careportal/internal/config"
	"github.com/baechuer/careportal/internal/logger"
	"github.com/baechuer/careportal/internal/session"
	"github.com/baechuer/careportal/internal/tracing"
	"github.com/baechuer/careportal/internal/web"
)

const (
	serviceName    = "careportal"
	serviceVersion = "1.0.0"
)

func NewServer() (*http.Server, func(), error) {
	return newServer(defaultDeps())
}

// NewServerWithDeps allows injecting dependencies for testing
func NewServerWithDeps(deps Deps) (*http.Server, func(), error) {
	return newServer(deps)
}

type Deps struct {
	LoadConfig func() (*config.Config, error)
	NewRedis   func(addr, password string, db int) *goredis.Client
}

func defaultDeps() Deps {
	return Deps{
		LoadConfig: config.Load,
		NewRedis: func(addr, password string, db int) *goredis.Client {
			return goredis.NewClient(&goredis.Options{Addr: addr, Password: password, DB: db})
		},
	}
}

func newServer(deps Deps) (*http.Server, func(), error) {
	cfg, err := deps.LoadConfig()
	if err != nil {
		return nil, nil, err
	}

	var cleanupFns []func()
	fail := func(err error) (*http.Server, func(), error) {
		runCleanup(cleanupFns)
		return nil, nil, err
	}

	tp, err := tracing.Setup(context.Background(), tracing.Config{
		ServiceName: serviceName,
		Version:     serviceVersion,
		Endpoint:    cfg.OTLPEndpoint,
		SampleRatio: cfg.TracingSampleRatio,
		Enabled:     cfg.TracingEnabled,
	})
	if err != nil {
		return fail(err)
	}
	cleanupFns = append(cleanupFns, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tp.Shutdown(ctx)
	})

	// redis is best-effort: sessions fall back to process memory and the login limiter
	// switches off
	rdb := connectRedis(cfg, deps.NewRedis)
	var store session.Storage
	if rdb != nil {
		cleanupFns = append(cleanupFns, func() { _ = rdb.Close() })
		store = session.NewRedisStorage(rdb)
	} else {
		store = session.NewMemoryStorage()
	}

	client := apiclient.New(cfg.BackendURL, apiclient.ClientConfig{
		ReadTimeout:  cfg.DownstreamReadTimeout,
		WriteTimeout: cfg.DownstreamWriteTimeout,
	})
	apis := backend.NewAPIs(client, cfg.UploadURL)
	auditLog := audit.New(logger.Log)

	sessions := session.NewManager(apis.Auth, store, session.Options{
		Cookies: session.CookieOptions{
			TTL:    cfg.SessionTTL,
			Secure: cfg.CookieSecure,
			Domain: cfg.CookieDomain,
		},
		RevokeOnLogout: cfg.RevokeOnLogout,
		RevokeTimeout:  3 * time.Second,
	}, auditLog)

	rd, err := web.NewRenderer()
	if err != nil {
		return fail(err)
	}

	router, err := api.NewRouter(cfg, api.Deps{
		Sessions: sessions,
		Backend:  apis,
		Renderer: rd,
		Redis:    rdb,
		Audit:    auditLog,
		Probes: []handlers.Probe{
			handlers.BackendProbe(cfg.BackendURL),
			{Name: "session_store", Check: store.Ping},
		},
	})
	if err != nil {
		return fail(err)
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.HTTPReadTimeout,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
	}

	logger.Log.Info().
		Str("addr", cfg.HTTPAddr).
		Str("backend", cfg.BackendURL).
		Bool("redis", rdb != nil).
		Bool("tracing", cfg.TracingEnabled).
		Msg("server configured")

	return srv, func() { runCleanup(cleanupFns) }, nil
}

func connectRedis(cfg *config.Config, newRedis func(addr, password string, db int) *goredis.Client) *goredis.Client {
	if cfg.RedisAddr == "" || newRedis == nil {
		logger.Log.Warn().Msg("redis not configured; using in-memory sessions")
		return nil
	}
	c := newRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := c.Ping(ctx).Err(); err != nil {
		logger.Log.Warn().Err(err).Msg("redis unavailable; using in-memory sessions")
		_ = c.Close()
		return nil
	}
	logger.Log.Info().Msg("redis connected")
	return c
}

// runCleanup runs in reverse order of registration.
func runCleanup(fns []func()) {
	for i := len(fns) - 1; i >= 0; i-- {
		fns[i]()
	}
}
