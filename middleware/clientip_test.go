package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func forwardedRequest(remote string, xff ...string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = remote
	for _, v := range xff {
		req.Header.Add("X-Forwarded-For", v)
	}
	return req
}

func TestClientIPIgnoresForwardedFor(t *testing.T) {
	req := forwardedRequest("192.0.2.7:5555", "203.0.113.1, 10.0.0.1")
	assert.Equal(t, "192.0.2.7", ClientIP(req))

	var nilResolver *ClientIPResolver
	assert.Equal(t, "192.0.2.7", nilResolver.ClientIP(req))

	untrusting, err := NewClientIPResolver()
	require.NoError(t, err)
	assert.Equal(t, "192.0.2.7", untrusting.ClientIP(req))
}

func TestClientIPResolverTrustedProxy(t *testing.T) {
	ips, err := NewClientIPResolver("10.0.0.0/8", "2001:db8::1")
	require.NoError(t, err)

	tests := []struct {
		name   string
		remote string
		xff    []string
		want   string
	}{
		{"untrusted peer keeps its own address", "192.0.2.7:5555", []string{"203.0.113.1"}, "192.0.2.7"},
		{"trusted peer without header", "10.1.2.3:443", nil, "10.1.2.3"},
		{"trusted peer single hop", "10.1.2.3:443", []string{"203.0.113.1"}, "203.0.113.1"},
		{"forged left-most hop is skipped", "10.1.2.3:443", []string{"1.1.1.1, 203.0.113.1"}, "203.0.113.1"},
		{"trusted hops are walked past", "10.1.2.3:443", []string{"203.0.113.1, 10.9.9.9"}, "203.0.113.1"},
		{"repeated headers join in order", "10.1.2.3:443", []string{"1.1.1.1", "203.0.113.1, 10.9.9.9"}, "203.0.113.1"},
		{"all hops trusted", "10.1.2.3:443", []string{"10.0.0.5, 10.0.0.6"}, "10.0.0.5"},
		{"ipv6 peer", "[2001:db8::1]:443", []string{"198.51.100.4"}, "198.51.100.4"},
		{"ipv4-mapped peer", "[::ffff:10.0.0.1]:443", []string{"198.51.100.4"}, "198.51.100.4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ips.ClientIP(forwardedRequest(tt.remote, tt.xff...)))
		})
	}
}

func TestNewClientIPResolverRejectsGarbage(t *testing.T) {
	_, err := NewClientIPResolver("10.0.0.0/33")
	assert.Error(t, err)
	_, err = NewClientIPResolver("proxy.internal")
	assert.Error(t, err)

	ips, err := NewClientIPResolver(" ", "")
	require.NoError(t, err)
	assert.Equal(t, "192.0.2.7", ips.ClientIP(forwardedRequest("192.0.2.7:1", "203.0.113.1")))
}
