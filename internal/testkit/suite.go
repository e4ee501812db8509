package testkit

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"exchangebank/internal/store/postgres"
)

// Suite manages the lifecycle of test infrastructure (Postgres and Redis containers)
// and the connections the integration tests share.
type Suite struct {
	mu    sync.Mutex
	cfg   Config
	pg    *PostgresModule
	redis *RedisModule
	db    *sql.DB
	rdb   *redis.Client
	ready bool
}

var (
	globalSuite *Suite
	globalOnce  sync.Once
)

// Global returns the singleton Suite instance.
func Global() *Suite {
	globalOnce.Do(func() {
		globalSuite = &Suite{cfg: LoadConfig()}
	})
	return globalSuite
}

// Setup starts all required containers (or uses external overrides).
// Returns an error if called twice without Shutdown in between.
func (s *Suite) Setup(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ready {
		return fmt.Errorf("suite already set up; call Shutdown first")
	}

	pg, err := StartPostgres(ctx, &s.cfg)
	if err != nil {
		return fmt.Errorf("setup postgres: %w", err)
	}
	s.pg = pg

	rdb, err := StartRedis(ctx, &s.cfg)
	if err != nil {
		// Clean up Postgres if Redis fails.
		if !s.cfg.KeepContainers {
			_ = pg.Terminate(ctx)
		}
		return fmt.Errorf("setup redis: %w", err)
	}
	s.redis = rdb

	if err := s.connect(ctx); err != nil {
		s.closeConns()
		if !s.cfg.KeepContainers {
			_ = rdb.Terminate(ctx)
			_ = pg.Terminate(ctx)
		}
		return err
	}
	s.ready = true

	return nil
}

// connect opens the shared connections and applies the rate store migrations.
func (s *Suite) connect(ctx context.Context) error {
	db, err := sql.Open("pgx", s.pg.DSN())
	if err != nil {
		return fmt.Errorf("open postgres: %w", err)
	}
	s.db = db
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping postgres: %w", err)
	}
	if err := postgres.RunMigrations(db, zap.NewNop().Sugar()); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	s.rdb = redis.NewClient(&redis.Options{Addr: s.redis.Addr()})
	if err := s.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	return nil
}

func (s *Suite) closeConns() {
	if s.rdb != nil {
		_ = s.rdb.Close()
		s.rdb = nil
	}
	if s.db != nil {
		_ = s.db.Close()
		s.db = nil
	}
}

// Shutdown terminates all containers unless KEEP_CONTAINERS is set.
func (s *Suite) Shutdown(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ready {
		return
	}
	s.closeConns()

	if s.cfg.KeepContainers {
		fmt.Println("KEEP_CONTAINERS=true, skipping container cleanup")
		if s.pg != nil {
			fmt.Println("  Postgres DSN:", s.pg.DSN())
		}
		if s.redis != nil {
			fmt.Println("  Redis Addr:", s.redis.Addr())
		}
		s.ready = false
		return
	}

	if s.redis != nil {
		if err := s.redis.Terminate(ctx); err != nil {
			fmt.Println("warning: failed to terminate redis container:", err)
		}
	}
	if s.pg != nil {
		if err := s.pg.Terminate(ctx); err != nil {
			fmt.Println("warning: failed to terminate postgres container:", err)
		}
	}
	s.ready = false
}

// PostgresDSN returns the connection string for the test Postgres database.
func (s *Suite) PostgresDSN() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pg == nil {
		return ""
	}
	return s.pg.DSN()
}

// DB returns the shared connection to the migrated test database.
func (s *Suite) DB() *sql.DB {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db
}

// Redis returns the shared client for the test Redis instance.
func (s *Suite) Redis() *redis.Client {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rdb
}

// Reset empties the rate table and flushes Redis between tests.
func (s *Suite) Reset(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	if _, err := s.DB().ExecContext(ctx, "TRUNCATE TABLE exchange_rates"); err != nil {
		t.Fatalf("failed to truncate exchange_rates: %v", err)
	}
	if err := s.Redis().FlushDB(ctx).Err(); err != nil {
		t.Fatalf("failed to flush redis: %v", err)
	}
}

// RedisAddr returns the host:port address for the test Redis instance.
func (s *Suite) RedisAddr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.redis == nil {
		return ""
	}
	return s.redis.Addr()
}

// Run sets up the suite, calls optional afterSetup callbacks (e.g. for seeding
// fixtures), executes tests, then shuts down. Intended for use in TestMain.
func (s *Suite) Run(m *testing.M, afterSetup ...func() error) {
	ctx := context.Background()

	if err := s.Setup(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "integration test setup failed: %v\n", err)
		os.Exit(1)
	}

	for _, fn := range afterSetup {
		if err := fn(); err != nil {
			fmt.Fprintf(os.Stderr, "afterSetup callback failed: %v\n", err)
			s.Shutdown(ctx)
			os.Exit(1)
		}
	}

	code := m.Run()

	s.Shutdown(ctx)
	os.Exit(code)
}

// Run is a package-level convenience that delegates to Global().Run.
// For a custom Suite instance, call the method directly: suite.Run(m, ...).
func Run(m *testing.M, afterSetup ...func() error) {
	Global().Run(m, afterSetup...)
}
