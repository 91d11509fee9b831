package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateScheme(t *testing.T) {
	tests := []struct {
		url string
		ok  bool
	}{
		{"https://example.com", true},
		{"http://example.com/x", true},
		{"ftp://example.com", false},
		{"example.com", false},
		{"HTTPS://example.com", false},
		{"", false},
		{" https://example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			err := ValidateScheme(tt.url)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrBadScheme)
			}
		})
	}
}

func TestValidateRejectsSchemeBeforeNetwork(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer server.Close()

	c := New(WithHTTPClient(server.Client()))
	// Strip the scheme so only the host:port remains.
	_, err := c.Validate(context.Background(), server.Listener.Addr().String())
	assert.ErrorIs(t, err, ErrBadScheme)
	assert.Zero(t, hits.Load())
}

func TestProbeAnyStatusIsReachable(t *testing.T) {
	for _, status := range []int{http.StatusOK, http.StatusNotFound, http.StatusInternalServerError, http.StatusUnauthorized} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			var method, ua string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				method = r.Method
				ua = r.Header.Get("User-Agent")
				w.WriteHeader(status)
			}))
			defer server.Close()

			c := New(WithHTTPClient(server.Client()), WithUserAgent("Mozilla/5.0 test"))
			got, err := c.Validate(context.Background(), server.URL)
			require.NoError(t, err)
			assert.Equal(t, status, got)
			assert.Equal(t, http.MethodHead, method)
			assert.Equal(t, "Mozilla/5.0 test", ua)
		})
	}
}

func TestProbeConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := New().Probe(context.Background(), url)
	assert.ErrorIs(t, err, ErrUnreachable)
}

func TestProbeDNSFailure(t *testing.T) {
	_, err := New(WithProbeTimeout(5*time.Second)).Probe(context.Background(), "http://does-not-exist.invalid/")
	assert.ErrorIs(t, err, ErrUnreachable)
}

func TestProbeTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	c := New(WithHTTPClient(server.Client()), WithProbeTimeout(50*time.Millisecond))
	_, err := c.Probe(context.Background(), server.URL)
	assert.ErrorIs(t, err, ErrUnreachable)
}
