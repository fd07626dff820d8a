package app

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/plantstock/plantstock/internal/audit"
	"github.com/plantstock/plantstock/internal/platform/cache"
	"github.com/plantstock/plantstock/internal/rbac"
)

// NewAuditStore selects the audit back end for cfg.AuditMode. Queue mode falls
// back to direct when Redis does not answer at start-up. The returned func
// releases whatever the store holds.
func NewAuditStore(ctx context.Context, cfg *Config, direct audit.Store, logger *slog.Logger) (audit.Store, func()) {
	noop := func() {}
	if cfg.AuditMode != AuditModeQueue {
		logger.Info("audit journal writes directly to postgres")
		return direct, noop
	}

	probe, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("audit queue unavailable, falling back to direct writes",
			slog.String("redis_addr", cfg.RedisAddr), slog.Any("error", err))
		return direct, noop
	}
	_ = probe.Close()

	client := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	logger.Info("audit journal enqueues to redis",
		slog.String("redis_addr", cfg.RedisAddr), slog.String("queue", cfg.AuditQueue))
	return audit.NewQueueStore(client, cfg.AuditQueue), func() {
		if err := client.Close(); err != nil {
			logger.Warn("close audit queue client", slog.Any("error", err))
		}
	}
}

// LoadCatalog reads RBAC_POLICY_FILE when set and warns about permissions no
// role can exercise.
func LoadCatalog(cfg *Config, logger *slog.Logger) (*rbac.Catalog, error) {
	catalog := rbac.DefaultCatalog()
	if cfg.RBACPolicyFile != "" {
		loaded, err := rbac.LoadCatalogFile(cfg.RBACPolicyFile)
		if err != nil {
			return nil, err
		}
		catalog = loaded
		logger.Info("rbac policy loaded", slog.String("path", cfg.RBACPolicyFile))
	}
	for _, perm := range catalog.Ungranted() {
		logger.Warn("permission granted to no role", slog.String("permission", string(perm)))
	}
	return catalog, nil
}
