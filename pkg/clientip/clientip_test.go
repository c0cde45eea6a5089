package clientip_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/onion/pkg/clientip"
)

func TestGetIP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		want       string
	}{
		{name: "remote addr", remoteAddr: "192.0.2.7:5000", want: "192.0.2.7"},
		{name: "remote addr without port", remoteAddr: "192.0.2.7", want: "192.0.2.7"},
		{name: "ipv6 remote addr", remoteAddr: "[2001:db8::1]:443", want: "2001:db8::1"},
		{
			name:       "cloudflare first",
			headers:    map[string]string{"CF-Connecting-IP": "203.0.113.1", "X-Forwarded-For": "203.0.113.2"},
			remoteAddr: "10.0.0.1:1",
			want:       "203.0.113.1",
		},
		{
			name:       "digitalocean",
			headers:    map[string]string{"DO-Connecting-IP": "203.0.113.3", "X-Real-IP": "203.0.113.4"},
			remoteAddr: "10.0.0.1:1",
			want:       "203.0.113.3",
		},
		{
			name:       "leftmost forwarded",
			headers:    map[string]string{"X-Forwarded-For": " 203.0.113.5 , 10.0.0.2, 10.0.0.3"},
			remoteAddr: "10.0.0.1:1",
			want:       "203.0.113.5",
		},
		{
			name:       "invalid header skipped",
			headers:    map[string]string{"X-Forwarded-For": "garbage", "X-Real-IP": "203.0.113.6"},
			remoteAddr: "10.0.0.1:1",
			want:       "203.0.113.6",
		},
		{
			name:       "unspecified rejected",
			headers:    map[string]string{"X-Real-IP": "0.0.0.0"},
			remoteAddr: "10.0.0.1:1",
			want:       "10.0.0.1",
		},
		{
			name:       "mapped ipv4 normalized",
			headers:    map[string]string{"X-Real-IP": "::ffff:192.0.2.1"},
			remoteAddr: "10.0.0.1:1",
			want:       "192.0.2.1",
		},
		{name: "unparseable remote addr", remoteAddr: "pipe", want: "pipe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, clientip.GetIP(r))
		})
	}
}
