// Package testutil holds shared fixtures for the ovaview tests: a scratch
// MongoDB per test, a fake OVA backend, and HTTP request helpers.
package testutil

import (
	"context"
	"os"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/dalemusser/ovaview/internal/app/system/indexes"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoURIEnv overrides the server used by SetupTestDB.
const MongoURIEnv = "OVAVIEW_TEST_MONGO_URI"

const (
	defaultMongoURI = "mongodb://localhost:27017"
	dbPrefix        = "ovaview_test_"
	// Mongo caps database names at 63 bytes.
	maxDBName = 63
)

var (
	sharedOnce   sync.Once
	sharedClient *mongo.Client
	sharedErr    error

	unsafeDBChars = regexp.MustCompile(`[^A-Za-z0-9_]`)
)

func connect() (*mongo.Client, error) {
	sharedOnce.Do(func() {
		uri := os.Getenv(MongoURIEnv)
		if uri == "" {
			uri = defaultMongoURI
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		opts := options.Client().
			ApplyURI(uri).
			SetMaxPoolSize(100).
			SetServerSelectionTimeout(3 * time.Second)
		sharedClient, sharedErr = mongo.Connect(ctx, opts)
		if sharedErr == nil {
			sharedErr = sharedClient.Ping(ctx, nil)
		}
	})
	return sharedClient, sharedErr
}

// SetupTestDB gives the test its own empty database with production indexes,
// dropped again on cleanup. Without a reachable MongoDB the test is skipped.
func SetupTestDB(t *testing.T) *mongo.Database {
	t.Helper()

	client, err := connect()
	if err != nil {
		t.Skipf("mongodb unavailable: %v", err)
	}
	db := client.Database(DBName(t.Name()))

	ctx, cancel := TestContext()
	defer cancel()
	if err := db.Drop(ctx); err != nil {
		t.Fatalf("drop %s: %v", db.Name(), err)
	}
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("ensure indexes: %v", err)
	}

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := db.Drop(ctx); err != nil {
			t.Logf("cleanup drop %s: %v", db.Name(), err)
		}
	})
	return db
}

// DBName maps a test name to a valid, length-capped database name.
func DBName(testName string) string {
	name := dbPrefix + unsafeDBChars.ReplaceAllString(testName, "_")
	if len(name) > maxDBName {
		name = name[:maxDBName]
	}
	return name
}

// TestContext bounds a single test's database work.
func TestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}
