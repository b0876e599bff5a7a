package authentication

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

const api = "http://localhost:8080"

func TestSessionRoundTrip(t *testing.T) {
	keyring.MockInit()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	_, err := Load(api, now)
	assert.ErrorIs(t, err, keyring.ErrNotFound)

	require.NoError(t, Save(api, NewSession("abc", "ada@example.com", 3600, now)))
	s, err := Load(api, now.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, "abc", s.AccessToken)
	assert.Equal(t, "ada@example.com", s.Email)

	// sessions are per server
	_, err = Load("https://blog.example.com", now)
	assert.ErrorIs(t, err, keyring.ErrNotFound)

	_, err = Load(api, now.Add(time.Hour))
	assert.ErrorIs(t, err, ErrSessionExpired)

	require.NoError(t, Forget(api))
	require.NoError(t, Forget(api))
	_, err = Load(api, now)
	assert.ErrorIs(t, err, keyring.ErrNotFound)
}
