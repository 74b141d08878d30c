// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/ovaview/internal/app/system/collation"
	"github.com/dalemusser/ovaview/internal/app/system/foldertree"
	"github.com/dalemusser/ovaview/internal/app/system/ovaclient"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database and backend dependencies for this WAFFLE app.
//
// It is created in ConnectDB and passed to EnsureSchema, Startup,
// BuildHandler, and Shutdown. Shutdown closes the connections held here.
type DBDeps struct {
	// MongoDB client and database (viewer data only)
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	// OVA is the shared backend client; all handlers reuse its rate limiter.
	OVA *ovaclient.Client

	// Folders is the cached folder tree, refreshed by a background job.
	Folders *foldertree.Fetching

	// Collator orders folders and titles.
	Collator *collation.Collator
}
