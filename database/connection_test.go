package database

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const testURI = "mongodb://localhost:27017"

// offlineClient builds a client without any network I/O.
func offlineClient(t *testing.T) *mongo.Client {
	t.Helper()
	client, err := mongo.NewClient(options.Client().ApplyURI(testURI))
	require.NoError(t, err)
	return client
}

func newTestConnector(uri string, dial Dialer) *Connector {
	return NewConnector(
		ConnectorConfig{URI: uri, Database: "devevent_test", ConnectTimeout: time.Second},
		zap.NewNop(),
		WithDialer(dial))
}

func TestConnectMissingURI(t *testing.T) {
	var dials int32
	conn := newTestConnector("", func(ctx context.Context, uri string, timeout time.Duration) (*mongo.Client, error) {
		atomic.AddInt32(&dials, 1)
		return nil, errors.New("unreachable")
	})

	_, err := conn.Connect(context.Background())

	var cfgErr *ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "MONGODB_URI", cfgErr.Key)
	assert.Zero(t, atomic.LoadInt32(&dials))
}

func TestConnectInvalidURI(t *testing.T) {
	conn := newTestConnector("http://not-mongo", func(ctx context.Context, uri string, timeout time.Duration) (*mongo.Client, error) {
		return nil, errors.New("unreachable")
	})

	_, err := conn.Connect(context.Background())

	var cfgErr *ConfigurationError
	assert.True(t, errors.As(err, &cfgErr))
}

func TestConnectConcurrentColdStartDialsOnce(t *testing.T) {
	client := offlineClient(t)
	release := make(chan struct{})
	var dials int32

	conn := newTestConnector(testURI, func(ctx context.Context, uri string, timeout time.Duration) (*mongo.Client, error) {
		atomic.AddInt32(&dials, 1)
		<-release
		return client, nil
	})

	const callers = 20
	results := make([]*mongo.Database, callers)
	errs := make([]error, callers)
	var started, done sync.WaitGroup
	started.Add(callers)
	done.Add(callers)
	for i := 0; i < callers; i++ {
		go func(i int) {
			defer done.Done()
			started.Done()
			results[i], errs[i] = conn.Connect(context.Background())
		}(i)
	}
	started.Wait()
	time.Sleep(20 * time.Millisecond)
	close(release)
	done.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&dials))
	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Same(t, results[0], results[i])
	}

	// cached handle, no new dial
	db, err := conn.Connect(context.Background())
	require.NoError(t, err)
	assert.Same(t, results[0], db)
	assert.Equal(t, int32(1), atomic.LoadInt32(&dials))
}

func TestConnectRetriesAfterFailure(t *testing.T) {
	client := offlineClient(t)
	var dials int32

	conn := newTestConnector(testURI, func(ctx context.Context, uri string, timeout time.Duration) (*mongo.Client, error) {
		if atomic.AddInt32(&dials, 1) == 1 {
			return nil, errors.New("server selection timeout")
		}
		return client, nil
	})

	_, err := conn.Connect(context.Background())
	var connErr *ConnectionError
	require.True(t, errors.As(err, &connErr))

	db, err := conn.Connect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "devevent_test", db.Name())
	assert.Equal(t, int32(2), atomic.LoadInt32(&dials))
}

func TestConnectFollowerHonorsOwnContext(t *testing.T) {
	client := offlineClient(t)
	release := make(chan struct{})
	conn := newTestConnector(testURI, func(ctx context.Context, uri string, timeout time.Duration) (*mongo.Client, error) {
		<-release
		return client, nil
	})

	leaderDone := make(chan error, 1)
	go func() {
		_, err := conn.Connect(context.Background())
		leaderDone <- err
	}()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := conn.Connect(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	close(release)
	assert.NoError(t, <-leaderDone)
}

func TestDatabaseFailsFastBeforeConnect(t *testing.T) {
	client := offlineClient(t)
	conn := newTestConnector(testURI, func(ctx context.Context, uri string, timeout time.Duration) (*mongo.Client, error) {
		return client, nil
	})

	_, err := conn.Database()
	var connErr *ConnectionError
	require.True(t, errors.As(err, &connErr))

	_, err = conn.Connect(context.Background())
	require.NoError(t, err)

	db, err := conn.Database()
	require.NoError(t, err)
	assert.NotNil(t, db)
}
