package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"
	_ "modernc.org/sqlite"

	"github.com/starlitcards/trade-core/tradecore/config"
	"github.com/starlitcards/trade-core/tradecore/database/models"
	"github.com/starlitcards/trade-core/tradecore/logger"
)

const (
	defaultMaxRetries    = 3
	defaultRetryInterval = time.Second
)

type DBConfig struct {
	Driver       string `toml:"driver"` // "postgres" or "sqlite"
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	User         string `toml:"user"`
	Password     string `toml:"password"`
	Database     string `toml:"database"`
	Path         string `toml:"path"` // sqlite DSN
	PoolSize     int    `toml:"pool_size"`
	MaxIdleConns int    `toml:"max_idle_conns"`
	MaxLifetime  int    `toml:"max_lifetime"`
}

// DB wraps the bun handle plus, on postgres, a pgx pool used for health
// checks. The sqlite driver exists for development and tests.
type DB struct {
	pool  *pgxpool.Pool
	bunDB *bun.DB
}

func New(ctx context.Context, cfg DBConfig) (*DB, error) {
	switch cfg.Driver {
	case "", "postgres":
		return newPostgres(ctx, cfg)
	case "sqlite":
		return newSQLite(cfg)
	default:
		return nil, fmt.Errorf("unsupported database driver: %q", cfg.Driver)
	}
}

func newPostgres(ctx context.Context, cfg DBConfig) (*DB, error) {
	poolConfig, err := pgxpool.ParseConfig(buildConnString(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	if cfg.PoolSize > 0 {
		poolConfig.MaxConns = int32(cfg.PoolSize)
	}
	if cfg.MaxIdleConns > 0 {
		poolConfig.MinConns = int32(cfg.MaxIdleConns)
	}
	if cfg.MaxLifetime > 0 {
		poolConfig.MaxConnLifetime = time.Duration(cfg.MaxLifetime) * time.Second
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Retry the initial ping so a restarting database doesn't kill startup.
	for i := 0; ; i++ {
		pingCtx, cancel := context.WithTimeout(ctx, config.NetworkDialTimeout)
		err = pool.Ping(pingCtx)
		cancel()
		if err == nil {
			break
		}
		if i+1 >= defaultMaxRetries {
			pool.Close()
			return nil, fmt.Errorf("database unreachable after %d attempts: %w", defaultMaxRetries, err)
		}
		time.Sleep(defaultRetryInterval)
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(buildConnString(cfg))))
	return &DB{pool: pool, bunDB: bun.NewDB(sqldb, pgdialect.New())}, nil
}

func newSQLite(cfg DBConfig) (*DB, error) {
	dsn := cfg.Path
	if dsn == "" {
		dsn = "file:tradecore.db?_busy_timeout=5000"
	}
	sqldb, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// A single connection keeps in-memory databases coherent and sidesteps
	// SQLITE_BUSY under concurrent writers.
	sqldb.SetMaxOpenConns(1)
	sqldb.SetMaxIdleConns(1)

	return &DB{bunDB: bun.NewDB(sqldb, sqlitedialect.New())}, nil
}

func buildConnString(cfg DBConfig) string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?connect_timeout=5&sslmode=disable",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database,
	)
}

// BunDB returns the bun handle used by repositories.
func (db *DB) BunDB() *bun.DB {
	return db.bunDB
}

// Ping verifies the database connection is working.
func (db *DB) Ping(ctx context.Context) error {
	if db.pool != nil {
		if err := db.pool.Ping(ctx); err != nil {
			return fmt.Errorf("pgxpool ping failed: %w", err)
		}
	}
	if err := db.bunDB.PingContext(ctx); err != nil {
		return fmt.Errorf("bun ping failed: %w", err)
	}
	return nil
}

func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
	if db.bunDB != nil {
		db.bunDB.Close()
	}
}

// InitializeSchema creates all required tables and indexes.
func (db *DB) InitializeSchema(ctx context.Context) error {
	// Order matters for foreign-key-shaped relations.
	tables := []interface{}{
		(*models.Card)(nil),
		(*models.Trade)(nil),
		(*models.TradeItem)(nil),
		(*models.Friendship)(nil),
	}

	for _, model := range tables {
		if _, err := db.bunDB.NewCreateTable().
			Model(model).
			IfNotExists().
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_cards_owner_id ON cards(owner_id);",
		"CREATE INDEX IF NOT EXISTS idx_cards_reserved ON cards(id) WHERE status = 'reserved';",
		"CREATE INDEX IF NOT EXISTS idx_trades_trade_id ON trades(trade_id);",
		"CREATE INDEX IF NOT EXISTS idx_trades_initiator_id ON trades(initiator_id);",
		"CREATE INDEX IF NOT EXISTS idx_trades_responder_id ON trades(responder_id);",
		"CREATE INDEX IF NOT EXISTS idx_trades_status ON trades(status);",
		"CREATE INDEX IF NOT EXISTS idx_trades_active_pair ON trades(initiator_id, responder_id) WHERE status IN ('proposed', 'accepted');",
		"CREATE INDEX IF NOT EXISTS idx_trades_stale_accepted ON trades(accepted_at) WHERE status = 'accepted';",
		"CREATE INDEX IF NOT EXISTS idx_trade_items_trade_id ON trade_items(trade_id);",
		"CREATE INDEX IF NOT EXISTS idx_trade_items_card_id ON trade_items(card_id);",
		"CREATE INDEX IF NOT EXISTS idx_friendships_friend_id ON friendships(friend_id);",
	}

	for _, idx := range indexes {
		if _, err := db.ExecWithLog(ctx, idx); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return nil
}

// ExecWithLog runs a statement through bun and logs its duration.
func (db *DB) ExecWithLog(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	start := time.Now()
	result, err := db.bunDB.ExecContext(ctx, query, args...)
	logger.LogQuery(query, time.Since(start), err)
	return result, err
}
