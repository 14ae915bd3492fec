package config

import (
	"time"

	"github.com/spf13/viper"
)

// Global configuration variables
var (
	// CatalogBaseURL is the root of the library catalog (no trailing slash)
	CatalogBaseURL string
	// SearchScope is the Sierra search scope segment, e.g. "S8*est"
	SearchScope string
	// AvailabilityMarker is the status substring that counts a copy as available
	AvailabilityMarker string
	// Workers is the number of concurrent resolution workers
	Workers int
	// ConnectTimeout is the HTTP dial timeout for catalog fetches
	ConnectTimeout time.Duration
	// ReadTimeout is the full-response timeout; holdings tables render slowly
	ReadTimeout time.Duration
	// FetchRetries is the number of attempts per URL before failing soft
	FetchRetries int
)

// InitConfig initializes the global configuration from viper
func InitConfig() {
	viper.SetDefault("catalog.baseurl", "https://www.ester.ee")
	viper.SetDefault("catalog.scope", "S8*est")
	viper.SetDefault("catalog.availability_marker", "KOHAL")
	viper.SetDefault("resolve.workers", 1)
	viper.SetDefault("fetch.connect_timeout", "8s")
	viper.SetDefault("fetch.read_timeout", "60s")
	viper.SetDefault("fetch.retries", 3)

	CatalogBaseURL = viper.GetString("catalog.baseurl")
	SearchScope = viper.GetString("catalog.scope")
	AvailabilityMarker = viper.GetString("catalog.availability_marker")
	Workers = viper.GetInt("resolve.workers")
	ConnectTimeout = durationOrDefault("fetch.connect_timeout", 8*time.Second)
	ReadTimeout = durationOrDefault("fetch.read_timeout", 60*time.Second)
	FetchRetries = viper.GetInt("fetch.retries")
}

// SetWorkers sets the resolution worker count
func SetWorkers(n int) {
	if n < 1 {
		n = 1
	}
	Workers = n
}

func durationOrDefault(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(viper.GetString(key))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
