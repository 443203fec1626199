// internal/sink/http.go
package sink

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/tamzrod/beacon-reporter/internal/fault"
	"github.com/tamzrod/beacon-reporter/internal/status"
)

// ContentTypeJSON is sent on every observer request, with or without a body.
const ContentTypeJSON = "application/json; charset=UTF-8"

// HTTPClient is the subset of *http.Client the remote sink needs.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPConfig is minimal transport config for the observer endpoint.
type HTTPConfig struct {
	Host           string
	Port           int
	Method         string // GET or POST
	SendBody       bool
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
}

// HTTPSink pushes each snapshot to the remote observer at http://host:port/.
// One request per tick, no retry. Any HTTP status counts as delivered and is
// logged; transport failures are classified and contained.
type HTTPSink struct {
	method   string
	sendBody bool
	client   HTTPClient

	mu   sync.RWMutex
	host string
	port int
}

// NewHTTPSink builds the sink with its own client so connect and read
// timeouts are enforced independently.
func NewHTTPSink(cfg HTTPConfig) *HTTPSink {
	tr := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout: cfg.ConnectTimeout,
		}).DialContext,
		ResponseHeaderTimeout: cfg.ReadTimeout,
		MaxIdleConns:          1,
		IdleConnTimeout:       30 * time.Second,
	}
	client := &http.Client{
		Transport: tr,
		Timeout:   cfg.ConnectTimeout + cfg.ReadTimeout,
	}
	return NewHTTPSinkWithClient(cfg, client)
}

// NewHTTPSinkWithClient is NewHTTPSink with a caller-supplied client.
func NewHTTPSinkWithClient(cfg HTTPConfig, client HTTPClient) *HTTPSink {
	method := cfg.Method
	if method == "" {
		method = http.MethodGet
	}
	return &HTTPSink{
		method:   method,
		sendBody: cfg.SendBody,
		client:   client,
		host:     cfg.Host,
		port:     cfg.Port,
	}
}

func (h *HTTPSink) Name() string { return "observer" }

// SetEndpoint replaces the observer address. Takes effect on the next tick;
// a request already in flight keeps its old target.
func (h *HTTPSink) SetEndpoint(host string, port int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.host = host
	h.port = port
}

// Endpoint returns the current host:port.
func (h *HTTPSink) Endpoint() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return net.JoinHostPort(h.host, strconv.Itoa(h.port))
}

func (h *HTTPSink) url() (string, error) {
	h.mu.RLock()
	host, port := h.host, h.port
	h.mu.RUnlock()

	if host == "" {
		return "", fault.New(fault.KindMalformedEndpoint, "observer url", errors.New("empty host"))
	}
	if port <= 0 || port > 65535 {
		return "", fault.New(fault.KindMalformedEndpoint, "observer url", fmt.Errorf("port %d out of range", port))
	}

	raw := "http://" + net.JoinHostPort(host, strconv.Itoa(port)) + "/"
	u, err := url.Parse(raw)
	if err != nil {
		return "", fault.New(fault.KindMalformedEndpoint, "observer url", err)
	}
	if u.Hostname() != host || u.Path != "/" {
		return "", fault.New(fault.KindMalformedEndpoint, "observer url", fmt.Errorf("host %q does not form a plain URL", host))
	}
	return u.String(), nil
}

func (h *HTTPSink) Deliver(ctx context.Context, s status.Snapshot) Result {
	target, err := h.url()
	if err != nil {
		return failed(h.Name(), err)
	}

	var body io.Reader
	if h.sendBody {
		payload, err := status.EncodeJSON(s)
		if err != nil {
			return failed(h.Name(), fault.New(fault.KindRenderFailure, "observer encode", err))
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, h.method, target, body)
	if err != nil {
		return failed(h.Name(), fault.New(fault.KindMalformedEndpoint, "observer request", err))
	}
	req.Header.Set("Content-Type", ContentTypeJSON)

	resp, err := h.client.Do(req)
	if err != nil {
		return failed(h.Name(), fmt.Errorf("observer %s %s: %w", h.method, target, err))
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	log.WithFields(log.Fields{
		"sink":     h.Name(),
		"snapshot": s.ID,
		"url":      target,
		"method":   h.method,
		"status":   resp.StatusCode,
	}).Info("observer responded")

	return ok(h.Name())
}
