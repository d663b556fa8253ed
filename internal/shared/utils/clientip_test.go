package utils

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClientIPResolver_Resolve(t *testing.T) {
	r := ClientIPResolver{TrustedProxyHeader: "X-Forwarded-For", CDNHeader: "CF-Connecting-IP"}

	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{"proxy header first hop", map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1", "CF-Connecting-IP": "198.51.100.2"}, "203.0.113.7"},
		{"cdn header when proxy missing", map[string]string{"CF-Connecting-IP": "198.51.100.2"}, "198.51.100.2"},
		{"cdn header when proxy garbage", map[string]string{"X-Forwarded-For": "not-an-ip", "CF-Connecting-IP": "2001:db8::1"}, "2001:db8::1"},
		{"host:port accepted", map[string]string{"X-Forwarded-For": "203.0.113.7:5120"}, "203.0.113.7"},
		{"no headers", map[string]string{}, UnknownIP},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := http.Header{}
			for k, v := range tt.headers {
				h.Set(k, v)
			}
			assert.Equal(t, tt.want, r.Resolve(h))
		})
	}
}

func TestClientIPResolver_NoHeadersConfigured(t *testing.T) {
	h := http.Header{}
	h.Set("X-Forwarded-For", "203.0.113.7")
	assert.Equal(t, UnknownIP, ClientIPResolver{}.Resolve(h))
}
