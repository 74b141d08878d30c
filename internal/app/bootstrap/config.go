// internal/app/bootstrap/config.go
package bootstrap

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dalemusser/ovaview/internal/app/system/collation"
	"github.com/dalemusser/ovaview/internal/app/system/inputval"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

// EnvVarPrefix is the prefix for environment variables.
const EnvVarPrefix = "OVAVIEW"

// appConfigKeys defines the configuration keys for this application.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, ova_base_url, etc.
//   - Environment variables: OVAVIEW_MONGO_URI, OVAVIEW_OVA_BASE_URL, etc.
//   - Command-line flags: --mongo_uri, --ova_base_url, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "ovaview", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},
	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Viewer cookie signing key (must be strong in production)"},
	{Name: "session_name", Default: "ovaview-viewer", Desc: "Viewer cookie name"},
	{Name: "session_max_age", Default: "8760h", Desc: "Viewer cookie max age (e.g., 720h, 8760h)"},

	{Name: "csrf_key", Default: "dev-only-csrf-key-please-change-0123456789", Desc: "CSRF token signing key (32+ chars in production)"},

	// Operator endpoints (Bearer token auth)
	{Name: "api_key", Default: "", Desc: "API key for operator endpoints (leave empty to disable them)"},

	// OVA backend
	{Name: "ova_base_url", Default: "http://localhost:3000/api", Desc: "OVA backend base URL"},
	{Name: "ova_api_token", Default: "", Desc: "Bearer token sent to the OVA backend (optional)"},
	{Name: "ova_timeout", Default: "15s", Desc: "Per-request timeout for OVA backend calls"},
	{Name: "ova_rate_limit", Default: "0", Desc: "Max OVA backend requests per second (0 disables limiting)"},
	{Name: "ova_rate_burst", Default: 5, Desc: "Burst size for the OVA rate limiter"},

	// List presentation
	{Name: "page_size", Default: 20, Desc: "Videos per page on client-side lists"},
	{Name: "latest_bucket_size", Default: 20, Desc: "Videos per page on the latest uploads list"},
	{Name: "collation_locale", Default: "en", Desc: "Locale used to order folders and titles (BCP 47)"},

	// Background work
	{Name: "folder_refresh_interval", Default: "5m", Desc: "How often the folder tree is reloaded"},
	{Name: "viewer_data_retention", Default: "0", Desc: "Prune viewer data untouched this long (0 keeps it forever)"},

	// Terminal shell
	{Name: "search_debounce", Default: "300ms", Desc: "Quiet period before a typed search runs"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, OVAVIEW_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, EnvVarPrefix, appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	rate, err := strconv.ParseFloat(strings.TrimSpace(appValues.String("ova_rate_limit")), 64)
	if err != nil {
		return nil, AppConfig{}, fmt.Errorf("ova_rate_limit: %w", err)
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),
		SessionKey:       appValues.String("session_key"),
		SessionName:      appValues.String("session_name"),
		SessionMaxAge:    appValues.Duration("session_max_age", 8760*time.Hour),

		CSRFKey: appValues.String("csrf_key"),
		APIKey:  appValues.String("api_key"),

		// OVA backend
		OVABaseURL:   appValues.String("ova_base_url"),
		OVAAPIToken:  appValues.String("ova_api_token"),
		OVATimeout:   appValues.Duration("ova_timeout", 15*time.Second),
		OVARateLimit: rate,
		OVARateBurst: appValues.Int("ova_rate_burst"),

		// List presentation
		PageSize:         appValues.Int("page_size"),
		LatestBucketSize: appValues.Int("latest_bucket_size"),
		CollationLocale:  appValues.String("collation_locale"),

		// Background work
		FolderRefreshInterval: appValues.Duration("folder_refresh_interval", 5*time.Minute),
		ViewerDataRetention:   appValues.Duration("viewer_data_retention", 0),

		SearchDebounce: appValues.Duration("search_debounce", 300*time.Millisecond),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if err := ValidateShellConfig(appCfg); err != nil {
		logger.Error("invalid configuration", zap.Error(err))
		return err
	}
	return nil
}

// ValidateShellConfig checks the settings both shells depend on: the backend
// URL, page sizes, and timings.
func ValidateShellConfig(appCfg AppConfig) error {
	var errs []error

	if !inputval.IsValidHTTPURL(appCfg.OVABaseURL) {
		errs = append(errs, fmt.Errorf("ova_base_url must be an absolute http(s) URL, got %q", appCfg.OVABaseURL))
	}
	if appCfg.PageSize <= 0 {
		errs = append(errs, fmt.Errorf("page_size must be positive, got %d", appCfg.PageSize))
	}
	if appCfg.LatestBucketSize <= 0 {
		errs = append(errs, fmt.Errorf("latest_bucket_size must be positive, got %d", appCfg.LatestBucketSize))
	}
	if appCfg.OVARateLimit < 0 {
		errs = append(errs, fmt.Errorf("ova_rate_limit must not be negative, got %v", appCfg.OVARateLimit))
	}
	if appCfg.FolderRefreshInterval <= 0 {
		errs = append(errs, errors.New("folder_refresh_interval must be positive"))
	}
	if appCfg.ViewerDataRetention < 0 {
		errs = append(errs, errors.New("viewer_data_retention must not be negative"))
	}
	if appCfg.SearchDebounce < 0 {
		errs = append(errs, errors.New("search_debounce must not be negative"))
	}
	if _, err := language.Parse(appCfg.CollationLocale); err != nil {
		errs = append(errs, fmt.Errorf("collation_locale %q: %w", appCfg.CollationLocale, err))
	}
	return errors.Join(errs...)
}

// NewCollator returns the collator configured for folder and title ordering.
func NewCollator(appCfg AppConfig) *collation.Collator {
	return collation.New(appCfg.CollationLocale)
}
