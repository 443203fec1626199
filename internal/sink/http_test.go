// internal/sink/http_test.go
package sink

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tamzrod/beacon-reporter/internal/fault"
)

type captured struct {
	mu          sync.Mutex
	method      string
	path        string
	contentType string
	body        string
}

func (c *captured) handler(status int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		c.mu.Lock()
		c.method = r.Method
		c.path = r.URL.Path
		c.contentType = r.Header.Get("Content-Type")
		c.body = string(b)
		c.mu.Unlock()
		w.WriteHeader(status)
	}
}

func hostPort(t *testing.T, rawURL string) (string, int) {
	t.Helper()
	u := rawURL[len("http://"):]
	host, p, err := net.SplitHostPort(u)
	require.NoError(t, err)
	port, err := strconv.Atoi(p)
	require.NoError(t, err)
	return host, port
}

func newTestHTTPSink(t *testing.T, srvURL, method string, body bool) *HTTPSink {
	host, port := hostPort(t, srvURL)
	return NewHTTPSink(HTTPConfig{
		Host:           host,
		Port:           port,
		Method:         method,
		SendBody:       body,
		ConnectTimeout: time.Second,
		ReadTimeout:    time.Second,
	})
}

func TestHTTPSink_GetWithoutBody(t *testing.T) {
	c := &captured{}
	srv := httptest.NewServer(c.handler(http.StatusOK))
	defer srv.Close()

	h := newTestHTTPSink(t, srv.URL, http.MethodGet, false)
	res := h.Deliver(context.Background(), snap(1, "AA:BB"))
	require.True(t, res.Success, "err: %v", res.Err)

	c.mu.Lock()
	defer c.mu.Unlock()
	assert.Equal(t, http.MethodGet, c.method)
	assert.Equal(t, "/", c.path)
	assert.Equal(t, ContentTypeJSON, c.contentType)
	assert.Empty(t, c.body)
}

func TestHTTPSink_PostCarriesPayload(t *testing.T) {
	c := &captured{}
	srv := httptest.NewServer(c.handler(http.StatusOK))
	defer srv.Close()

	h := newTestHTTPSink(t, srv.URL, http.MethodPost, true)
	res := h.Deliver(context.Background(), snap(2, "AA:BB", "CC:DD"))
	require.True(t, res.Success, "err: %v", res.Err)

	c.mu.Lock()
	defer c.mu.Unlock()
	assert.Equal(t, http.MethodPost, c.method)
	assert.JSONEq(t, `{"deviceAddresses":["AA:BB","CC:DD"]}`, c.body)
}

func TestHTTPSink_AnyStatusIsDelivered(t *testing.T) {
	c := &captured{}
	srv := httptest.NewServer(c.handler(http.StatusInternalServerError))
	defer srv.Close()

	res := newTestHTTPSink(t, srv.URL, http.MethodGet, false).Deliver(context.Background(), snap(0))
	assert.True(t, res.Success)
	assert.Equal(t, fault.KindNone, res.Kind)
}

func TestHTTPSink_UnreachableIsIOFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().(*net.TCPAddr)
	require.NoError(t, ln.Close())

	h := NewHTTPSink(HTTPConfig{
		Host:           "127.0.0.1",
		Port:           addr.Port,
		ConnectTimeout: time.Second,
		ReadTimeout:    time.Second,
	})
	res := h.Deliver(context.Background(), snap(0))
	assert.False(t, res.Success)
	assert.Equal(t, fault.KindNetworkIOFailure, res.Kind)
}

func TestHTTPSink_SlowResponseIsTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	host, port := hostPort(t, srv.URL)
	h := NewHTTPSink(HTTPConfig{
		Host:           host,
		Port:           port,
		ConnectTimeout: time.Second,
		ReadTimeout:    50 * time.Millisecond,
	})
	res := h.Deliver(context.Background(), snap(0))
	assert.False(t, res.Success)
	assert.Equal(t, fault.KindNetworkTimeout, res.Kind)
}

func TestHTTPSink_MalformedEndpoint(t *testing.T) {
	cases := []struct {
		name string
		host string
		port int
	}{
		{"empty host", "", 80},
		{"space in host", "bad host", 80},
		{"port zero", "127.0.0.1", 0},
		{"port too large", "127.0.0.1", 70000},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewHTTPSinkWithClient(HTTPConfig{Host: tc.host, Port: tc.port}, http.DefaultClient)
			res := h.Deliver(context.Background(), snap(0))
			assert.False(t, res.Success)
			assert.Equal(t, fault.KindMalformedEndpoint, res.Kind)
		})
	}
}

func TestHTTPSink_SetEndpoint(t *testing.T) {
	c := &captured{}
	srv := httptest.NewServer(c.handler(http.StatusOK))
	defer srv.Close()

	h := NewHTTPSink(HTTPConfig{Host: "", Port: 1, ConnectTimeout: time.Second, ReadTimeout: time.Second})
	res := h.Deliver(context.Background(), snap(0))
	require.False(t, res.Success)

	host, port := hostPort(t, srv.URL)
	h.SetEndpoint(host, port)
	assert.Equal(t, net.JoinHostPort(host, strconv.Itoa(port)), h.Endpoint())

	res = h.Deliver(context.Background(), snap(0))
	assert.True(t, res.Success, "err: %v", res.Err)
}
