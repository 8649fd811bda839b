package breaker

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_OpensAfterThreshold(t *testing.T) {
	cb := New("test", Config{FailThreshold: 3, Cooldown: time.Hour}, slog.Default())
	boom := errors.New("boom")

	for i := 0; i < 3; i++ {
		_, err := cb.Execute(func() (interface{}, error) { return nil, boom })
		require.ErrorIs(t, err, boom)
	}
	assert.Equal(t, gobreaker.StateOpen, cb.State())

	_, err := cb.Execute(func() (interface{}, error) { return "unreachable", nil })
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
}

func TestNew_SuccessResetsCount(t *testing.T) {
	cb := New("test", Config{FailThreshold: 2}, nil)
	boom := errors.New("boom")

	_, _ = cb.Execute(func() (interface{}, error) { return nil, boom })
	_, _ = cb.Execute(func() (interface{}, error) { return "ok", nil })
	_, _ = cb.Execute(func() (interface{}, error) { return nil, boom })

	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, uint32(5), cfg.FailThreshold)
	assert.Equal(t, 30*time.Second, cfg.Cooldown)
	assert.Equal(t, 60*time.Second, cfg.FailWindow)
}
