package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateProxy(t *testing.T) {
	valid := []string{"http://proxy:8080", "https://proxy:8443", "socks5://127.0.0.1:1080", "proxy.local:3128"}
	for _, p := range valid {
		assert.True(t, ValidateProxy(p), p)
	}

	invalid := []string{"ftp://proxy:21", "http://", "://nope"}
	for _, p := range invalid {
		assert.False(t, ValidateProxy(p), p)
	}
}

func TestParseProxy_AddsScheme(t *testing.T) {
	u, err := ParseProxy("proxy.local:3128")
	require.NoError(t, err)
	assert.Equal(t, "http://proxy.local:3128", u.String())

	_, err = ParseProxy("ftp://proxy:21")
	assert.Error(t, err)
}
