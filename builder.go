package authcore

import (
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	internalaudit "github.com/clearpath-hq/authcore/internal/audit"
	"github.com/clearpath-hq/authcore/password"
	"github.com/clearpath-hq/authcore/store"
	"github.com/clearpath-hq/authcore/token"
)

// Builder assembles an Engine. Configure it during initialization and call
// Build exactly once.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	auditSink AuditSink
	clock     func() time.Time

	built bool
}

// New returns a Builder seeded with the default configuration.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the builder's configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis sets the Redis client backing the credential store and, when a
// StreamSink is used, the audit stream.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithAuditSink sets the destination for audit events. Without one, enabled
// auditing discards events into a no-op sink.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithClock overrides the engine's time source. Lock deadlines, token
// lifetimes, and audit timestamps all derive from it.
func (b *Builder) WithClock(clock func() time.Time) *Builder {
	b.clock = clock
	return b
}

// Build validates the configuration, constructs every component, and
// returns the assembled Engine.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if b.redis == nil {
		return nil, errors.New("redis client required")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	hasher, err := password.New(password.Config{
		Memory:      cfg.Password.Memory,
		Time:        cfg.Password.Time,
		Parallelism: cfg.Password.Parallelism,
		SaltLength:  cfg.Password.SaltLength,
		KeyLength:   cfg.Password.KeyLength,
	})
	if err != nil {
		return nil, err
	}

	clock := b.clock
	if clock == nil {
		clock = time.Now
	}

	tokens, err := token.NewManager(token.Config{
		AccessTTL:     cfg.Token.AccessTTL,
		RefreshTTL:    cfg.Token.RefreshTTL,
		SigningMethod: token.SigningMethod(cfg.Token.SigningMethod),
		PrivateKey:    cloneBytes(cfg.Token.PrivateKey),
		PublicKey:     cloneBytes(cfg.Token.PublicKey),
		Issuer:        cfg.Token.Issuer,
		Leeway:        cfg.Token.Leeway,
		Clock:         clock,
	})
	if err != nil {
		return nil, err
	}

	redisStore := store.NewRedis(b.redis, cfg.Store.KeyPrefix)

	engine := &Engine{
		config:     cfg,
		principals: redisStore,
		tenants:    redisStore,
		hasher:     hasher,
		tokens:     tokens,
		clock:      clock,
	}

	engine.audit = internalaudit.NewDispatcher(internalaudit.Config{
		Enabled:    cfg.Audit.Enabled,
		BufferSize: cfg.Audit.BufferSize,
		DropIfFull: cfg.Audit.DropIfFull,
	}, b.auditSink)

	b.built = true

	return engine, nil
}
