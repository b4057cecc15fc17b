package database

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const defaultConnectTimeout = 10 * time.Second

type ConnectorConfig struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
}

// Dialer opens and verifies a client. It must not return a client that has
// not answered a ping.
type Dialer func(ctx context.Context, uri string, timeout time.Duration) (*mongo.Client, error)

type ConnectorOption func(*Connector)

func WithDialer(dial Dialer) ConnectorOption {
	return func(c *Connector) {
		c.dial = dial
	}
}

// Connector owns the process wide database connection. It is created once
// and shared by every store.
type Connector struct {
	cfg    ConnectorConfig
	dial   Dialer
	logger *zap.Logger

	group singleflight.Group

	mu     sync.RWMutex
	client *mongo.Client
	db     *mongo.Database
}

func NewConnector(cfg ConnectorConfig, logger *zap.Logger, opts ...ConnectorOption) *Connector {
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = defaultConnectTimeout
	}
	c := &Connector{
		cfg:    cfg,
		dial:   dialMongo,
		logger: logger.Named("connector"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Connect returns the cached database handle, opening it on first use.
// Concurrent callers during a cold start share a single attempt.
func (c *Connector) Connect(ctx context.Context) (*mongo.Database, error) {
	if db := c.cached(); db != nil {
		return db, nil
	}
	if err := c.validateConfig(); err != nil {
		return nil, err
	}

	// the attempt runs on its own context so one caller giving up does not
	// fail everyone else waiting on it
	result := c.group.DoChan("connect", c.open)
	select {
	case <-ctx.Done():
		return nil, &ConnectionError{Err: ctx.Err()}
	case res := <-result:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*mongo.Database), nil
	}
}

// Database is the non-dialing accessor. It returns the handle only if Connect
// already succeeded and never starts or joins a connection attempt, so callers
// that must not block on the database get a ConnectionError right away. The
// stores go through Connect instead.
func (c *Connector) Database() (*mongo.Database, error) {
	if db := c.cached(); db != nil {
		return db, nil
	}
	return nil, &ConnectionError{Err: errors.New("database is not connected yet")}
}

func (c *Connector) Ping(ctx context.Context) error {
	db, err := c.Connect(ctx)
	if err != nil {
		return err
	}
	if err := db.Client().Ping(ctx, readpref.Primary()); err != nil {
		return &ConnectionError{Err: err}
	}
	return nil
}

func (c *Connector) Disconnect(ctx context.Context) error {
	c.mu.Lock()
	client := c.client
	c.client = nil
	c.db = nil
	c.mu.Unlock()

	if client == nil {
		return nil
	}
	return client.Disconnect(ctx)
}

func (c *Connector) cached() *mongo.Database {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.db
}

func (c *Connector) validateConfig() error {
	if c.cfg.URI == "" {
		return &ConfigurationError{Key: "MONGODB_URI", Message: "connection string is not defined"}
	}
	if _, err := connstring.ParseAndValidate(c.cfg.URI); err != nil {
		return &ConfigurationError{Key: "MONGODB_URI", Message: err.Error()}
	}
	if c.cfg.Database == "" {
		return &ConfigurationError{Key: "MONGODB_DATABASE", Message: "database name is not defined"}
	}
	return nil
}

func (c *Connector) open() (interface{}, error) {
	// a caller may reach the group right after a previous attempt stored its handle
	if db := c.cached(); db != nil {
		return db, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.ConnectTimeout)
	defer cancel()

	client, err := c.dial(ctx, c.cfg.URI, c.cfg.ConnectTimeout)
	if err != nil {
		c.logger.Error("db connection failed", zap.Error(err))
		return nil, &ConnectionError{Err: err}
	}

	db := client.Database(c.cfg.Database)
	c.mu.Lock()
	c.client = client
	c.db = db
	c.mu.Unlock()

	c.logger.Info("db connected", zap.String("database", c.cfg.Database))
	return db, nil
}

func dialMongo(ctx context.Context, uri string, timeout time.Duration) (*mongo.Client, error) {
	clientOptions := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(timeout).
		SetServerSelectionTimeout(timeout)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("cannot connect to the db: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("db is not available: %w", err)
	}

	return client, nil
}
