package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotFoundError(t *testing.T) {
	err := NewNotFoundError("no cover for ISBN 9789916127209")
	assert.Equal(t, "no cover for ISBN 9789916127209", err.Error())
	assert.True(t, IsNotFoundError(err))
	assert.True(t, IsNotFoundError(fmt.Errorf("lookup failed: %w", err)))
	assert.False(t, IsNotFoundError(fmt.Errorf("plain error")))
}

func TestRateLimitError(t *testing.T) {
	err := NewRateLimitError("geocoder returned 429")
	assert.Equal(t, "geocoder returned 429", err.Error())
	assert.True(t, IsRateLimitError(err))
	assert.True(t, IsRateLimitError(fmt.Errorf("wrapped: %w", err)))
	assert.False(t, IsRateLimitError(NewNotFoundError("different type")))
}
