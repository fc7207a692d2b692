package sphinxql

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/kailas-cloud/sphinxsuggest/internal/db"
	"github.com/kailas-cloud/sphinxsuggest/internal/domain"
)

// Compile-time check: Client implements db.Store.
var _ db.Store = (*Client)(nil)

// Config holds connection parameters for a SphinxQL listener.
type Config struct {
	Addr           string
	User           string
	Password       string
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
}

// Client holds one logical connection to the engine. All calls are
// serialized; SHOW META must run on the same session as the query it describes.
type Client struct {
	mu   sync.Mutex
	pool *sql.DB
	conn *sql.Conn
}

// NewClient prepares a client. No connection is made until Open.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("addr is required")
	}

	mc := mysql.NewConfig()
	mc.Net = "tcp"
	mc.Addr = cfg.Addr
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.Timeout = cfg.ConnectTimeout
	mc.ReadTimeout = cfg.ReadTimeout
	mc.WriteTimeout = cfg.WriteTimeout
	mc.InterpolateParams = true // the engine has no server-side prepared statements
	mc.MultiStatements = true

	pool, err := sql.Open("mysql", mc.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	pool.SetMaxOpenConns(1)

	return &Client{pool: pool}, nil
}

// Open pins the connection. Calling Open on an open client is a no-op.
func (c *Client) Open(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		return nil
	}
	conn, err := c.pool.Conn(ctx)
	if err != nil {
		return &db.Error{Op: db.OpConnect, Err: err}
	}
	c.conn = conn
	return nil
}

// Close releases the pinned connection. The client returns to the
// not-connected state and can be opened again.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.release()
}

// Shutdown closes the connection and the underlying pool. The client cannot
// be opened afterwards.
func (c *Client) Shutdown() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	connErr := c.release()
	if err := c.pool.Close(); err != nil {
		return &db.Error{Op: db.OpConnect, Err: err}
	}
	return connErr
}

// release drops the pinned connection. Callers hold c.mu.
func (c *Client) release() error {
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	if err != nil {
		return &db.Error{Op: db.OpConnect, Err: err}
	}
	return nil
}

// IsConnected reports whether Open succeeded and Close has not been called.
func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// Ping checks connectivity on the pinned connection.
func (c *Client) Ping(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return domain.ErrNotConnected
	}
	if err := c.conn.PingContext(ctx); err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	return nil
}

// WaitForReady opens the connection and polls Ping until the engine
// responds or timeout expires.
func (c *Client) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for search engine: %w", ctx.Err())
		case <-ticker.C:
			if err := c.Open(ctx); err != nil {
				continue
			}
			if err := c.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}

// session returns the pinned connection. Callers hold c.mu.
func (c *Client) session() (*sql.Conn, error) {
	if c.conn == nil {
		return nil, domain.ErrNotConnected
	}
	return c.conn, nil
}
