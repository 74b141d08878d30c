// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig covers the
// framework-level settings (ports, TLS, logging, CORS, body limits); this
// struct covers the OVA backend, the viewer cookie, and list presentation.
//
// The terminal shell loads the same struct, so keys that only the web
// service uses (Mongo, cookies, CSRF) are simply ignored there.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Maximum connections in pool (default: 100)
	MongoMinPoolSize uint64 // Minimum connections to keep warm (default: 10)

	// Viewer cookie configuration
	SessionKey    string        // Secret key for signing the viewer cookie (must be strong in production)
	SessionName   string        // Cookie name (default: ovaview-viewer)
	SessionMaxAge time.Duration // Cookie lifetime (default: 8760h)

	// CSRF protection configuration
	CSRFKey string // Secret key for CSRF token signing (32 bytes, must be strong in production)

	// API key for operator endpoints (folder tree refresh).
	// Leave empty to reject every operator request.
	APIKey string

	// OVA backend
	OVABaseURL   string        // e.g. http://ova.local:3000/api
	OVAAPIToken  string        // optional bearer token sent upstream
	OVATimeout   time.Duration // per upstream request (default: 15s)
	OVARateLimit float64       // upstream requests per second, 0 disables limiting
	OVARateBurst int           // limiter burst (default: 5)

	// List presentation
	PageSize         int    // items per page for client-side lists (default: 20)
	LatestBucketSize int    // IDs per server-side bucket on the latest list (default: 20)
	CollationLocale  string // BCP 47 tag for folder and title ordering (default: en)

	// Background work
	FolderRefreshInterval time.Duration // how often the folder tree is reloaded (default: 5m)
	ViewerDataRetention   time.Duration // viewer data untouched this long is pruned, 0 keeps it (default: 0)

	// Terminal shell
	SearchDebounce time.Duration // quiet period before a typed search runs (default: 300ms)
}
