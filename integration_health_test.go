package zammad

import (
	"context"
	"testing"
)

// TestHealthCheck tests the comprehensive health check against a live
// database
func TestHealthCheck(t *testing.T) {
	if !requireDatabase(t) {
		return
	}

	ctx := context.Background()
	service, err := setupTestService(ctx)
	if err != nil {
		t.Fatalf("Failed to setup test service: %v", err)
	}

	health := NewHealthService(service)

	status := health.Health(ctx)
	if !status.Healthy {
		t.Errorf("Expected a healthy status, got %+v", status)
	}

	if !health.IsHealthy(ctx) {
		t.Error("IsHealthy should report true against a live database")
	}
	if err := health.Ping(ctx); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}

// TestHealthOnTransactionHandle tests the degraded check inside a
// transaction scope
func TestHealthOnTransactionHandle(t *testing.T) {
	if !requireDatabase(t) {
		return
	}

	ctx := context.Background()
	service, err := setupTestService(ctx)
	if err != nil {
		t.Fatalf("Failed to setup test service: %v", err)
	}

	err = service.Transaction(ctx, func(ctx context.Context, tx *Service) error {
		health := NewHealthService(tx)

		// Only a basic ping is possible on a transaction handle.
		if err := health.Ping(ctx); err != nil {
			t.Errorf("Ping inside a transaction failed: %v", err)
		}
		if !health.IsHealthy(ctx) {
			t.Error("IsHealthy should still report true inside a transaction")
		}

		status := health.Health(ctx)
		if !status.Healthy {
			t.Errorf("Expected a healthy status, got %+v", status)
		}
		if status.Error == "" {
			t.Error("Transaction-scoped health check should note its limits")
		}

		// Pool statistics are not available on a transaction handle.
		stats := health.GetPoolStats()
		if stats.OpenConnections != 0 {
			t.Errorf("Expected zero pool stats on a transaction handle, got %+v", stats)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Transaction failed: %v", err)
	}
}

// TestPoolStats tests connection pool statistics
func TestPoolStats(t *testing.T) {
	if !requireDatabase(t) {
		return
	}

	ctx := context.Background()
	service, err := setupTestService(ctx)
	if err != nil {
		t.Fatalf("Failed to setup test service: %v", err)
	}

	stats := NewHealthService(service).GetPoolStats()
	if stats.MaxOpenConnections <= 0 {
		t.Errorf("Expected a configured pool, got %+v", stats)
	}
	if stats.OpenConnections < 0 {
		t.Errorf("Open connections should not be negative, got %+v", stats)
	}
}

// TestPoolConfiguration tests configure, read back and reset of the pool
func TestPoolConfiguration(t *testing.T) {
	if !requireDatabase(t) {
		return
	}

	ctx := context.Background()
	service, err := setupTestService(ctx)
	if err != nil {
		t.Fatalf("Failed to setup test service: %v", err)
	}

	pool := NewPoolService(service)

	custom := PoolConfig{
		MaxOpenConnections:    10,
		MaxIdleConnections:    3,
		ConnectionMaxLifetime: DefaultPoolConfig().ConnectionMaxLifetime,
		ConnectionMaxIdleTime: DefaultPoolConfig().ConnectionMaxIdleTime,
	}
	if err := pool.ConfigureConnectionPool(custom); err != nil {
		t.Fatalf("ConfigureConnectionPool failed: %v", err)
	}

	config, err := pool.GetConnectionPoolConfig()
	if err != nil {
		t.Fatalf("GetConnectionPoolConfig failed: %v", err)
	}
	if config.MaxOpenConnections != custom.MaxOpenConnections {
		t.Errorf("Expected max open %d, got %d", custom.MaxOpenConnections, config.MaxOpenConnections)
	}
	if config.MaxIdleConnections != custom.MaxIdleConnections {
		t.Errorf("Expected max idle %d, got %d", custom.MaxIdleConnections, config.MaxIdleConnections)
	}

	if err := pool.OptimizeConnectionPool(); err != nil {
		t.Errorf("OptimizeConnectionPool failed: %v", err)
	}

	if err := pool.ResetConnectionPool(); err != nil {
		t.Fatalf("ResetConnectionPool failed: %v", err)
	}
	config, err = pool.GetConnectionPoolConfig()
	if err != nil {
		t.Fatalf("GetConnectionPoolConfig failed: %v", err)
	}
	if config.MaxOpenConnections != DefaultPoolConfig().MaxOpenConnections {
		t.Errorf("Expected default max open %d, got %d",
			DefaultPoolConfig().MaxOpenConnections, config.MaxOpenConnections)
	}
	if config.MaxIdleConnections != DefaultPoolConfig().MaxIdleConnections {
		t.Errorf("Expected default max idle %d, got %d",
			DefaultPoolConfig().MaxIdleConnections, config.MaxIdleConnections)
	}
}

// TestMigrationsAreIdempotent tests that running migrations twice applies
// nothing the second time
func TestMigrationsAreIdempotent(t *testing.T) {
	if !requireDatabase(t) {
		return
	}

	ctx := context.Background()
	service, err := setupTestService(ctx)
	if err != nil {
		t.Fatalf("Failed to setup test service: %v", err)
	}

	// setupTestService already ran the migrations once.
	applied, err := NewMigrationService(service).Run(ctx)
	if err != nil {
		t.Fatalf("Second migration run failed: %v", err)
	}
	if len(applied) != 0 {
		t.Errorf("Second run should apply nothing, got %v", applied)
	}
}

// TestMigrationsRejectTransactionHandle tests the DBKit-only constraint
func TestMigrationsRejectTransactionHandle(t *testing.T) {
	if !requireDatabase(t) {
		return
	}

	ctx := context.Background()
	service, err := setupTestService(ctx)
	if err != nil {
		t.Fatalf("Failed to setup test service: %v", err)
	}

	err = service.Transaction(ctx, func(ctx context.Context, tx *Service) error {
		_, err := NewMigrationService(tx).Run(ctx)
		if err == nil {
			t.Error("Migrations inside a transaction should be rejected")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Transaction failed: %v", err)
	}
}
