package zammad

import (
	"context"

	"github.com/fernandezvara/dbkit"
)

// Database defines the database operations interface for dependency injection
type Database interface {
	dbkit.IDB
}

// AccessChecker defines the single-check interface consumed by the HTTP middleware
type AccessChecker interface {
	HasAccess(ctx context.Context, ownerID int64, group GroupRef, access ...string) (bool, error)
}

// AccessResolver defines the read-side access query interface
type AccessResolver interface {
	AccessChecker
	AccessibleGroupIDs(ctx context.Context, ownerID int64, access ...string) ([]int64, error)
	AccessibleGroups(ctx context.Context, ownerID int64, access ...string) ([]Group, error)
	OwnerIDsWithAccess(ctx context.Context, group GroupRef, access ...string) ([]int64, error)
	AccessMapByID(ctx context.Context, ownerID int64) (map[int64][]string, error)
	AccessMapByName(ctx context.Context, ownerID int64) (map[string][]string, error)
}

// AccessWriter defines the grant mutation interface
type AccessWriter interface {
	StageByName(ctx context.Context, grants *GrantSet, m map[string][]string) error
	Commit(ctx context.Context, ownerID int64, grants *GrantSet) error
	SetAccessMapByID(ctx context.Context, ownerID int64, m map[int64][]string) (map[int64][]string, error)
	SetAccessMapByName(ctx context.Context, ownerID int64, m map[string][]string) (map[string][]string, error)
	PurgeOwner(ctx context.Context, ownerID int64) error
}

// TransactionManager defines the transaction management interface
type TransactionManager interface {
	Transaction(ctx context.Context, fn func(ctx context.Context, tx *Service) error) error
	TransactionWithOptions(ctx context.Context, opts dbkit.TxOptions, fn func(ctx context.Context, tx *Service) error) error
	ReadOnlyTransaction(ctx context.Context, fn func(ctx context.Context, tx *Service) error) error
}

// MigrationManager defines the migration management interface
type MigrationManager interface {
	Migrations() []dbkit.Migration
	Run(ctx context.Context) ([]string, error)
}

// HealthMonitor defines the health monitoring interface
type HealthMonitor interface {
	Health(ctx context.Context) dbkit.HealthStatus
	IsHealthy(ctx context.Context) bool
	Ping(ctx context.Context) error
	GetPoolStats() dbkit.PoolStats
}

// PoolManager defines the connection pool management interface
type PoolManager interface {
	ConfigureConnectionPool(config PoolConfig) error
	GetConnectionPoolConfig() (*PoolConfig, error)
	OptimizeConnectionPool() error
	ResetConnectionPool() error
}

// AuditReader defines the audit log query interface
type AuditReader interface {
	GetAuditLog(ctx context.Context, filter AuditLogFilter) ([]AccessAuditLog, error)
	CountAuditLog(ctx context.Context, filter AuditLogFilter) (int, error)
}

// TransactionMonitor defines the transaction monitoring interface
type TransactionMonitor interface {
	GetTransactionMetrics() TransactionMetrics
	ResetTransactionMetrics()
	IsTransactionHealthy() bool
}
