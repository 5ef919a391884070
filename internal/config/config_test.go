package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.HTTPAddr)
	require.Equal(t, 5*time.Minute, cfg.OTPTTL)
	require.Equal(t, 3, cfg.OTPMaxAttempts)
	require.Equal(t, 5, cfg.OTPRateLimit)
	require.Equal(t, time.Minute, cfg.OTPRateWindow)
	require.Equal(t, 64, cfg.ImportQueueSize)
	require.False(t, cfg.EventsEnabled)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("OTP_TTL_MIN", "10")
	t.Setenv("OTP_MAX_ATTEMPTS", "5")
	t.Setenv("IMPORT_QUEUE_SIZE", "16")
	t.Setenv("EVENTS_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 10*time.Minute, cfg.OTPTTL)
	require.Equal(t, 5, cfg.OTPMaxAttempts)
	require.Equal(t, 16, cfg.ImportQueueSize)
	require.True(t, cfg.EventsEnabled)
	require.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("OTP_MAX_ATTEMPTS", "0")
	_, err := Load()
	require.Error(t, err)
}

func TestLoadRejectsNonNumeric(t *testing.T) {
	t.Setenv("OTP_TTL_MIN", "soon")
	_, err := Load()
	require.Error(t, err)
}
