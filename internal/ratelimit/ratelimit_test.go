package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultAssistantLimits(t *testing.T) {
	limits := DefaultAssistantLimits(20)
	assert.Equal(t, 20, limits.UserLimit)
	assert.Equal(t, 100, limits.IPLimit)
	assert.Equal(t, time.Minute, limits.UserWindow)
}

func TestDefaultAssistantLimitsZeroFallsBack(t *testing.T) {
	limits := DefaultAssistantLimits(0)
	assert.Equal(t, 10, limits.UserLimit)
	assert.Equal(t, 50, limits.IPLimit)
}

func TestCheckAssistantFailsOpenWithoutRedis(t *testing.T) {
	limiter := NewLimiter(nil)
	limits := DefaultAssistantLimits(1)

	for i := 0; i < 5; i++ {
		err := limiter.CheckAssistant(context.Background(), limits, "user-1", "1.2.3.4")
		assert.NoError(t, err)
	}
}

func TestCheckAssistantNilLimiterFailsOpen(t *testing.T) {
	var limiter *Limiter
	err := limiter.CheckAssistant(context.Background(), DefaultAssistantLimits(1), "user-1", "")
	assert.NoError(t, err)
}
