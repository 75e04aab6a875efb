package goPerm

import (
	"context"
	"errors"

	"github.com/MrEthical07/goPerm/token"
	"github.com/redis/go-redis/v9"
)

// Builder assembles a [Registry]. Construction is allocation-only until
// [Builder.Build], which touches the store once to initialize or adopt
// the admin role.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config Config
	redis  *redis.Client
	store  Store

	initialAdmin Principal
	guard        Guard
	eventSink    EventSink

	built bool
}

// New returns a Builder seeded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the builder configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis backs the registry with a Redis store over client.
func (b *Builder) WithRedis(client *redis.Client) *Builder {
	b.redis = client
	return b
}

// WithStore backs the registry with a caller-provided store. Takes
// precedence over WithRedis.
func (b *Builder) WithStore(store Store) *Builder {
	b.store = store
	return b
}

// WithInitialAdmin sets the admin installed when the store holds no
// prior registry state. Required for a fresh store; ignored when the
// store already carries an admin (including a renounced one).
func (b *Builder) WithInitialAdmin(admin Principal) *Builder {
	b.initialAdmin = admin
	return b
}

// WithGuard substitutes the access-control wrapper around mutations.
// The default guard admits exactly the current admin.
func (b *Builder) WithGuard(guard Guard) *Builder {
	b.guard = guard
	return b
}

// WithEventSink sets the sink receiving emitted events.
func (b *Builder) WithEventSink(sink EventSink) *Builder {
	b.eventSink = sink
	return b
}

// WithMetricsEnabled toggles counter collection.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles the check-latency histogram.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration, wires the store, guard, events,
// metrics, and grant signing, and initializes the admin role. On a
// fresh store it installs the initial admin and emits the first
// admin_changed event; on a populated store it adopts the stored admin,
// renounced state included.
func (b *Builder) Build() (*Registry, error) {
	return b.BuildContext(context.Background())
}

// BuildContext is [Builder.Build] bounded by ctx for the store round-trips.
func (b *Builder) BuildContext(ctx context.Context) (*Registry, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	store := b.store
	if store == nil {
		if b.redis != nil {
			store = NewRedisStore(b.redis, cfg.Redis.Prefix)
		} else {
			store = NewMemoryStore()
		}
	}

	reg := &Registry{
		config:  cfg,
		store:   store,
		metrics: NewMetrics(cfg.Metrics),
		events:  newEventDispatcher(cfg.Events, b.eventSink),
	}

	reg.guard = b.guard
	if reg.guard == nil {
		reg.guard = &adminGuard{reg: reg}
	}

	if cfg.Grant.Enabled {
		tm, err := token.NewManager(token.Config{
			GrantTTL:      cfg.Grant.TTL,
			SigningMethod: token.SigningMethod(cfg.Grant.SigningMethod),
			PrivateKey:    cloneBytes(cfg.Grant.PrivateKey),
			PublicKey:     cloneBytes(cfg.Grant.PublicKey),
			Issuer:        cfg.Grant.Issuer,
			Leeway:        cfg.Grant.Leeway,
		})
		if err != nil {
			reg.Close()
			return nil, err
		}
		reg.grants = tm
	}

	_, initialized, err := store.Admin(ctx)
	if err != nil {
		reg.Close()
		return nil, err
	}
	if !initialized {
		if b.initialAdmin == NoPrincipal {
			reg.Close()
			return nil, ErrAdminEmpty
		}
		if err := store.SetAdmin(ctx, b.initialAdmin); err != nil {
			reg.Close()
			return nil, err
		}
		reg.emitEvent(ctx, Event{
			EventType: EventAdminChanged,
			Admin:     string(b.initialAdmin),
		})
	}

	b.built = true

	return reg, nil
}
