package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SESSION_STORAGE", "")
	t.Setenv("BACKEND_URL", "http://backend.local/")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StorageMemory, cfg.Session.Storage)
	assert.Equal(t, "http://backend.local", cfg.Backend.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Backend.Timeout())
	assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
}

func TestLoad_RejectsUnknownStorage(t *testing.T) {
	t.Setenv("SESSION_STORAGE", "etcd")

	_, err := Load()
	assert.Error(t, err)
}

func TestSessionConfig_SealingKey(t *testing.T) {
	key, err := SessionConfig{}.SealingKey()
	require.NoError(t, err)
	assert.Nil(t, key)

	key, err = SessionConfig{SealingKeyHex: strings.Repeat("ab", 32)}.SealingKey()
	require.NoError(t, err)
	require.NotNil(t, key)
	assert.Equal(t, byte(0xab), key[31])

	_, err = SessionConfig{SealingKeyHex: "abcd"}.SealingKey()
	assert.Error(t, err)
}
