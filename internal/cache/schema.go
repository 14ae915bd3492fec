package cache

// SQL schemas for cache tables.
// All cache tables use "cache_key" as the primary key column for consistency.

// GeocodeCacheSchema stores geocoded branch addresses (address key → lat/lon).
// Addresses are stable, so entries effectively never expire.
const GeocodeCacheSchema = `
CREATE TABLE IF NOT EXISTS geocode_cache (
	cache_key TEXT PRIMARY KEY NOT NULL,
	data TEXT NOT NULL,
	cached_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_geocode_cached_at ON geocode_cache(cached_at);
`

// CoversCacheSchema stores resolved cover image URLs keyed by ISBN.
// "No cover found" answers are negative-cached with a shorter TTL.
const CoversCacheSchema = `
CREATE TABLE IF NOT EXISTS covers_cache (
	cache_key TEXT PRIMARY KEY NOT NULL,
	data TEXT NOT NULL,
	cached_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_covers_cached_at ON covers_cache(cached_at);
`

// AllCacheSchemas contains all cache table schemas for initialization
var AllCacheSchemas = []string{
	GeocodeCacheSchema,
	CoversCacheSchema,
}

// ValidCacheTableNames is the whitelist of allowed cache table names.
// Used to prevent SQL injection when interpolating table names.
var ValidCacheTableNames = map[string]bool{
	"geocode_cache": true,
	"covers_cache":  true,
}
