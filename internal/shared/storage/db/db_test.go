package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"sync/atomic"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func withMockOpen(t *testing.T, fail int32) *int32 {
	t.Helper()
	var calls int32
	prev := openDB
	openDB = func(driverName, dsn string) (*sql.DB, error) {
		if atomic.AddInt32(&calls, 1) <= fail {
			return nil, driver.ErrBadConn
		}
		pool, _, err := sqlmock.New()
		return pool, err
	}
	t.Cleanup(func() { openDB = prev })
	return &calls
}

func resetShared(t *testing.T) {
	t.Helper()
	shared.mu.Lock()
	shared.pool = nil
	shared.mu.Unlock()
	t.Cleanup(func() {
		shared.mu.Lock()
		shared.pool = nil
		shared.mu.Unlock()
	})
}

func TestSharedReusesPool(t *testing.T) {
	calls := withMockOpen(t, 0)
	resetShared(t)

	first, err := Shared(context.Background(), "postgres://ignored", Defaults(ProfileLambda))
	if err != nil {
		t.Fatalf("Shared first: %v", err)
	}
	second, err := Shared(context.Background(), "postgres://ignored", Defaults(ProfileLambda))
	if err != nil {
		t.Fatalf("Shared second: %v", err)
	}
	if first != second {
		t.Fatalf("expected the same pool on reuse")
	}
	if got := atomic.LoadInt32(calls); got != 1 {
		t.Fatalf("expected one open, got %d", got)
	}
}

func TestSharedRetriesAfterFailure(t *testing.T) {
	withMockOpen(t, 1)
	resetShared(t)

	if _, err := Shared(context.Background(), "postgres://ignored", Defaults(ProfileServer)); err == nil {
		t.Fatalf("expected first attempt to fail")
	}
	pool, err := Shared(context.Background(), "postgres://ignored", Defaults(ProfileServer))
	if err != nil || pool == nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
}

func TestConnectRejectsEmptyURL(t *testing.T) {
	if _, err := Connect(context.Background(), "  ", Defaults(ProfileServer)); err == nil {
		t.Fatalf("expected error for empty url")
	}
}

func TestOptionsFromEnvAppliesOverrides(t *testing.T) {
	withMockOpen(t, 0)
	t.Setenv("DB_MAX_OPEN_CONNS", "7")
	t.Setenv("DB_MAX_IDLE_CONNS", "3")
	t.Setenv("DB_CONN_MAX_LIFETIME", "20m")
	t.Setenv("DB_CONN_MAX_IDLE_TIME", "45s")
	t.Setenv("DB_PING_TIMEOUT", "bogus")

	opts := OptionsFromEnv(Defaults(ProfileServer))
	if opts.MaxIdleConns != 3 || opts.ConnMaxLifetime != 20*time.Minute || opts.ConnMaxIdleTime != 45*time.Second {
		t.Fatalf("unexpected options %+v", opts)
	}
	if opts.PingTimeout != Defaults(ProfileServer).PingTimeout {
		t.Fatalf("invalid duration should keep the default, got %s", opts.PingTimeout)
	}

	pool, err := Connect(context.Background(), "postgres://ignored", opts)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer pool.Close()
	if got := pool.Stats().MaxOpenConnections; got != 7 {
		t.Fatalf("expected MaxOpenConnections=7, got %d", got)
	}
}

func TestMigrateRejectsUnknownCommand(t *testing.T) {
	pool, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer pool.Close()
	if err := Migrate(context.Background(), pool, "sideways"); err == nil {
		t.Fatalf("expected unknown command error")
	}
	if err := Migrate(context.Background(), nil, "up"); err == nil {
		t.Fatalf("expected nil database error")
	}
	if err := RunMigrations(context.Background(), nil); err != nil {
		t.Fatalf("nil database should be a no-op, got %v", err)
	}
}
