// Package main is Pierre's HTTP composition root, following the
// teacher's cmd/container.go split between infrastructure and module
// wiring: one Container owns every shared collaborator, assembled once
// at startup and handed to each protocol adapter's RegisterRoutes.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/pierre-fitness/pierre-server/internal/a2a"
	"github.com/pierre-fitness/pierre-server/internal/admin"
	"github.com/pierre-fitness/pierre-server/internal/aisampling"
	"github.com/pierre-fitness/pierre-server/internal/auth"
	"github.com/pierre-fitness/pierre-server/internal/config"
	"github.com/pierre-fitness/pierre-server/internal/jobx"
	"github.com/pierre-fitness/pierre-server/internal/jobx/jobxmem"
	"github.com/pierre-fitness/pierre-server/internal/jobx/jobxredis"
	"github.com/pierre-fitness/pierre-server/internal/logx"
	"github.com/pierre-fitness/pierre-server/internal/mcp"
	"github.com/pierre-fitness/pierre-server/internal/notify"
	"github.com/pierre-fitness/pierre-server/internal/provider"
	"github.com/pierre-fitness/pierre-server/internal/ratelimit"
	"github.com/pierre-fitness/pierre-server/internal/restapi"
	"github.com/pierre-fitness/pierre-server/internal/sse"
	"github.com/pierre-fitness/pierre-server/internal/store"
	"github.com/pierre-fitness/pierre-server/internal/store/storepg"
	"github.com/pierre-fitness/pierre-server/internal/store/storesqlite"
	"github.com/pierre-fitness/pierre-server/internal/tools"
	"github.com/pierre-fitness/pierre-server/internal/usage"
)

const defaultTenantID = "default"

// Container holds every collaborator the protocol adapters need. Nothing
// here is a package-level global: main wires one Container and passes it
// down explicitly, the same "no Arc-cloned singletons" discipline
// internal/tools.CallContext documents for the tool layer.
type Container struct {
	Config *config.Config

	DB    *sqlx.DB // nil when Database.Driver == "sqlite"
	Redis *redis.Client
	Store store.Store

	Cipher       *store.TokenCipher
	JWT          *auth.JWTService
	AdminKeys    *auth.KeyManager
	AdminJWT     *auth.AdminJWTService
	APIKeyHasher *auth.APIKeyHasher
	Authn        *auth.Authenticator
	Middleware   *auth.Middleware
	Limiter      *ratelimit.Limiter

	ProviderRegistry *provider.Registry
	Providers        *provider.Manager
	OAuthState       *provider.StateStore

	JobQueue jobx.Queue
	Jobs     *jobx.Client

	Hub *sse.Hub

	ToolRegistry *tools.Registry
	Executor     *tools.Executor
	Sampling     *aisampling.Peer

	MCPServer *mcp.Server
	A2AServer *a2a.Server

	RestDeps  *restapi.Deps
	AdminDeps *admin.Deps

	Notifier notify.EmailSender
}

// NewContainer builds and wires every collaborator but starts nothing
// long-running; call StartBackgroundServices to begin the worker pool.
func NewContainer(cfg *config.Config) (*Container, error) {
	c := &Container{Config: cfg}

	if err := c.initStore(); err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}
	if err := c.initSecurity(); err != nil {
		return nil, fmt.Errorf("init security: %w", err)
	}
	c.initProviders()
	if err := c.initJobQueue(); err != nil {
		return nil, fmt.Errorf("init job queue: %w", err)
	}
	c.initTools()
	if err := c.initNotify(); err != nil {
		return nil, fmt.Errorf("init notify: %w", err)
	}
	c.Hub = sse.NewHub(sse.ParseOverflowPolicy(cfg.SSE.OverflowPolicy))
	c.initProtocolAdapters()
	c.initHTTPAdapters()

	if err := c.ensureDefaultTenant(context.Background()); err != nil {
		return nil, fmt.Errorf("bootstrap default tenant: %w", err)
	}

	return c, nil
}

func (c *Container) initStore() error {
	switch c.Config.Database.Driver {
	case "postgres":
		db, err := sqlx.Connect("postgres", c.Config.Database.URL)
		if err != nil {
			return err
		}
		if _, err := db.Exec(storepg.Schema); err != nil {
			return fmt.Errorf("run postgres schema: %w", err)
		}
		c.DB = db
		c.Store = storepg.New(db)
	case "sqlite":
		if dir := dirOf(c.Config.Database.Path); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}
		}
		repo, err := storesqlite.Open(c.Config.Database.Path)
		if err != nil {
			return err
		}
		c.Store = repo
	default:
		return fmt.Errorf("unknown DATABASE_DRIVER %q", c.Config.Database.Driver)
	}
	return nil
}

func dirOf(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[:i]
		}
	}
	return ""
}

func (c *Container) initSecurity() error {
	cipher, err := store.NewTokenCipher(c.Config.OAuth.MasterEncryptionKey)
	if err != nil {
		return err
	}
	c.Cipher = cipher

	c.JWT = auth.NewJWTService(c.Config.JWT.SigningKey, c.Config.JWT.AccessTokenTTL, c.Config.JWT.Issuer)

	keys, err := auth.NewKeyManager()
	if err != nil {
		return err
	}
	if c.Config.AdminJWT.PrivateKeyPEM != "" {
		if err := keys.LoadPrimary(c.Config.AdminJWT.PrivateKeyPEM, "primary"); err != nil {
			return err
		}
	}
	c.AdminKeys = keys
	c.AdminJWT = auth.NewAdminJWTService(keys, c.Config.AdminJWT.TokenTTL, c.Config.AdminJWT.Issuer)

	c.APIKeyHasher = auth.NewAPIKeyHasher(c.Config.OAuth.MasterEncryptionKey)
	c.Authn = auth.NewAuthenticator(c.Store, c.JWT, c.AdminJWT, c.APIKeyHasher)
	c.Middleware = auth.NewMiddleware(c.Authn)
	c.Limiter = ratelimit.NewLimiter()
	return nil
}

func (c *Container) initProviders() {
	c.ProviderRegistry = provider.NewRegistry()
	c.Providers = provider.NewManager(c.Store, c.Cipher, c.ProviderRegistry)
	c.OAuthState = provider.NewStateStore(c.Config.OAuth.StateTTL)
}

func (c *Container) initJobQueue() error {
	if c.Config.Redis.Enabled {
		c.Redis = redis.NewClient(&redis.Options{
			Addr:     c.Config.Redis.Addr,
			Password: c.Config.Redis.Password,
			DB:       c.Config.Redis.DB,
		})
		if _, err := c.Redis.Ping(context.Background()).Result(); err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		c.JobQueue = jobxredis.NewRedisQueue(c.Redis)
		logx.Info("job queue: redis backend")
	} else {
		c.JobQueue = jobxmem.New()
		logx.Info("job queue: in-memory backend (no REDIS_ADDR configured)")
	}

	c.Jobs = jobx.NewClient(c.JobQueue,
		jobx.WithQueues(jobx.QueueUsage, jobx.QueueDefault),
		jobx.WithConcurrency(4),
		jobx.WithShutdownTimeout(c.Config.Server.GracePeriod),
	)
	usage.RegisterWriter(c.Jobs, c.Store)
	return nil
}

func (c *Container) initTools() {
	c.ToolRegistry = tools.NewRegistry()
	recorder := usage.NewRecorder(c.Jobs)
	rlConfig := tools.RateLimitConfig{
		WindowSeconds:     int(c.Config.RateLimit.DefaultWindow.Seconds()),
		StarterLimit:      c.Config.RateLimit.StarterLimit,
		ProfessionalLimit: c.Config.RateLimit.ProfessionalLimit,
	}
	c.Sampling = aisampling.New(c.Config.Server.AnthropicAPIKey)

	ccFactory := func() tools.CallContext {
		weather := tools.NewNoopWeather()
		if c.Config.Weather.Enabled {
			weather = tools.NewWeatherService(c.Config.Weather.APIKey)
		}
		return tools.CallContext{
			Ctx:        context.Background(),
			Store:      c.Store,
			Providers:  c.Providers,
			OAuthState: c.OAuthState,
			Weather:    weather,
		}
	}
	c.Executor = tools.NewExecutor(c.ToolRegistry, c.Limiter, recorder, rlConfig, ccFactory)
}

// initNotify wires the admin approval-email sender (spec.md §4.8
// approval workflow): a NoopSender unless EMAIL_FROM_ADDRESS is set, so a
// deployment with no SES access never pays for a credential lookup.
func (c *Container) initNotify() error {
	if !c.Config.Email.Enabled {
		c.Notifier = notify.NoopSender{}
		return nil
	}
	sender, err := notify.NewSESProvider(context.Background(), c.Config.Email.FromAddress)
	if err != nil {
		return err
	}
	c.Notifier = sender
	return nil
}

func (c *Container) initProtocolAdapters() {
	c.MCPServer = mcp.NewServer(c.Executor, c.ToolRegistry)
	if c.Config.Server.DevSamplingMode == "anthropic" && c.Sampling != nil {
		c.MCPServer = c.MCPServer.WithSamplingPeer(c.Sampling)
		logx.Info("mcp: dev-mode anthropic sampling fallback enabled")
	}
	c.A2AServer = a2a.NewServer(c.Executor, c.Store)
}

func (c *Container) initHTTPAdapters() {
	c.RestDeps = &restapi.Deps{
		Store:            c.Store,
		JWT:              c.JWT,
		APIKeys:          c.APIKeyHasher,
		Authn:            c.Authn,
		Providers:        c.Providers,
		ProviderRegistry: c.ProviderRegistry,
		OAuthState:       c.OAuthState,
		Notifications:    c.Hub,
		AdminKeys:        c.AdminKeys,
		Limiter:          c.Limiter,
		RateLimit:        c.Config.RateLimit,
		DefaultTenant:    defaultTenantID,
		ServiceName:      "pierre-server",
		RefreshWindow:    24 * time.Hour,
	}
	c.AdminDeps = &admin.Deps{
		Store:         c.Store,
		AdminJWT:      c.AdminJWT,
		Keys:          c.AdminKeys,
		APIKeys:       c.APIKeyHasher,
		DefaultTenant: defaultTenantID,
		RateLimit:     c.Config.RateLimit,
		Notifier:      c.Notifier,
	}
}

// ensureDefaultTenant makes the single-tenant-by-default deployment path
// work out of the box: registration/provisioning reference a TenantID
// that must already exist (spec.md §4.4's tenant-scoped OAuth credentials
// join against it), so the composition root seeds one idempotently
// instead of requiring an operator to run `pierre-cli tenant create`
// first.
func (c *Container) ensureDefaultTenant(ctx context.Context) error {
	if _, err := c.Store.GetTenant(ctx, defaultTenantID); err == nil {
		return nil
	}
	_, err := c.Store.CreateTenant(ctx, store.Tenant{
		ID:        defaultTenantID,
		Name:      "default",
		CreatedAt: time.Now(),
	})
	return err
}

// StartBackgroundServices starts the job worker pool and the periodic
// sweep of expired OAuth state entries. Call once, after routes are
// registered.
func (c *Container) StartBackgroundServices(ctx context.Context) {
	go func() {
		if err := c.Jobs.Start(ctx); err != nil && ctx.Err() == nil {
			logx.WithError(err).Error("job worker pool exited unexpectedly")
		}
	}()
	go func() {
		ticker := time.NewTicker(c.OAuthState.TTL())
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.OAuthState.Sweep()
			}
		}
	}()
}

// Cleanup releases infrastructure handles on shutdown.
func (c *Container) Cleanup() {
	c.Hub.Shutdown()
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			logx.WithError(err).Warn("error closing database")
		}
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			logx.WithError(err).Warn("error closing redis")
		}
	}
}
