package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestInitConfigDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	InitConfig()

	assert.Equal(t, "https://www.ester.ee", CatalogBaseURL)
	assert.Equal(t, "S8*est", SearchScope)
	assert.Equal(t, "KOHAL", AvailabilityMarker)
	assert.Equal(t, 1, Workers)
	assert.Equal(t, 8*time.Second, ConnectTimeout)
	assert.Equal(t, 60*time.Second, ReadTimeout)
	assert.Equal(t, 3, FetchRetries)
}

func TestInitConfigOverrides(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("catalog.baseurl", "https://catalog.example.org")
	viper.Set("fetch.read_timeout", "90s")
	viper.Set("resolve.workers", 4)

	InitConfig()

	assert.Equal(t, "https://catalog.example.org", CatalogBaseURL)
	assert.Equal(t, 90*time.Second, ReadTimeout)
	assert.Equal(t, 4, Workers)
}

func TestSetWorkers(t *testing.T) {
	testCases := []struct {
		name     string
		input    int
		expected int
	}{
		{name: "positive value", input: 8, expected: 8},
		{name: "zero clamps to one", input: 0, expected: 1},
		{name: "negative clamps to one", input: -3, expected: 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			SetWorkers(tc.input)
			assert.Equal(t, tc.expected, Workers)
		})
	}
}

func TestDurationOrDefault(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("some.duration", "not-a-duration")
	assert.Equal(t, 5*time.Second, durationOrDefault("some.duration", 5*time.Second))

	viper.Set("some.duration", "12s")
	assert.Equal(t, 12*time.Second, durationOrDefault("some.duration", 5*time.Second))
}
