// internal/fault/fault_test.go
package fault

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"testing"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, KindNone},
		{"tagged", New(KindScanStartFailure, "scan start", errors.New("busy")), KindScanStartFailure},
		{"wrapped tagged", fmt.Errorf("outer: %w", New(KindScanHardwareUnavailable, "open", errors.New("no hci"))), KindScanHardwareUnavailable},
		{"deadline", context.DeadlineExceeded, KindNetworkTimeout},
		{"net timeout", &net.OpError{Op: "dial", Err: timeoutErr{}}, KindNetworkTimeout},
		{"addr error", &net.AddrError{Err: "missing port in address", Addr: "host"}, KindMalformedEndpoint},
		{"url parse", &url.Error{Op: "parse", URL: "http://[::1", Err: errors.New("missing ']'")}, KindMalformedEndpoint},
		{"url transport", &url.Error{Op: "Get", URL: "http://127.0.0.1:1/", Err: &net.OpError{Op: "dial", Err: errors.New("connection refused")}}, KindNetworkIOFailure},
		{"unknown", errors.New("boom"), KindNetworkIOFailure},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.err); got != tc.want {
				t.Fatalf("Classify(%v) = %q, want %q", tc.err, got, tc.want)
			}
		})
	}
}

func TestNew_NilPassthrough(t *testing.T) {
	if err := New(KindNetworkIOFailure, "op", nil); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}
