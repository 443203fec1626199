// internal/fault/fault.go
package fault

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
)

// Kind classifies a failure for reporting. It is never used for control flow
// beyond logging and result tagging.
type Kind string

const (
	KindNone                    Kind = ""
	KindMalformedEndpoint       Kind = "MalformedEndpoint"
	KindNetworkTimeout          Kind = "NetworkTimeout"
	KindNetworkIOFailure        Kind = "NetworkIOFailure"
	KindScanHardwareUnavailable Kind = "ScanHardwareUnavailable"
	KindScanStartFailure        Kind = "ScanStartFailure"
	KindScanFailure             Kind = "ScanFailure" // runtime scan error after a good start

	// Local sink failures (terminal write, payload encode, history store).
	KindRenderFailure  Kind = "RenderFailure"
	KindStorageFailure Kind = "StorageFailure"
	KindSinkPanic      Kind = "SinkPanic"
)

// Error is an error tagged with a Kind.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// New tags err with kind. Returns nil when err is nil.
func New(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// Classify extracts a best-effort Kind from err without assuming concrete types.
// Unknown errors are reported as NetworkIOFailure.
func Classify(err error) Kind {
	if err == nil {
		return KindNone
	}

	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}

	type kinder interface{ FaultKind() Kind }
	var k kinder
	if errors.As(err, &k) {
		return k.FaultKind()
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return KindNetworkTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return KindNetworkTimeout
	}

	var ae *net.AddrError
	if errors.As(err, &ae) {
		return KindMalformedEndpoint
	}
	var pe *net.ParseError
	if errors.As(err, &pe) {
		return KindMalformedEndpoint
	}
	var ue *url.Error
	if errors.As(err, &ue) && ue.Err != nil {
		// url.Error wraps transport failures too; only parse failures are malformed.
		if ue.Op == "parse" {
			return KindMalformedEndpoint
		}
		return Classify(ue.Err)
	}

	return KindNetworkIOFailure
}
