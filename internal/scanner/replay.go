// internal/scanner/replay.go
package scanner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/tamzrod/beacon-reporter/internal/fault"
	"github.com/tamzrod/beacon-reporter/internal/proximity"
)

// ReplaySource feeds recorded observations instead of a radio.
// Input is one "<address> <rssi>" pair per line (comma or whitespace
// separated). Blank lines and lines starting with '#' are skipped.
// Malformed lines are reported through OnScanError and skipped.
type ReplaySource struct {
	open func() (io.ReadCloser, error)
	pace time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewReplayFile replays path, sleeping pace between lines.
// The file is reopened on every Start.
func NewReplayFile(path string, pace time.Duration) *ReplaySource {
	return &ReplaySource{
		open: func() (io.ReadCloser, error) { return os.Open(path) },
		pace: pace,
	}
}

// NewReplayReader replays r once. A restart after EOF yields nothing.
func NewReplayReader(r io.Reader, pace time.Duration) *ReplaySource {
	return &ReplaySource{
		open: func() (io.ReadCloser, error) { return io.NopCloser(r), nil },
		pace: pace,
	}
}

func (s *ReplaySource) Start(cb Callbacks) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		return nil
	}

	rc, err := s.open()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fault.New(fault.KindScanHardwareUnavailable, "replay open", err)
		}
		return fault.New(fault.KindScanStartFailure, "replay open", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done

	go func() {
		defer close(done)
		defer rc.Close()
		s.run(ctx, rc, cb)
	}()
	return nil
}

// Stop halts the replay and waits for the feeder goroutine to exit.
func (s *ReplaySource) Stop() error {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()
	<-done
	return nil
}

func (s *ReplaySource) run(ctx context.Context, r io.Reader, cb Callbacks) {
	sc := bufio.NewScanner(r)
	lineNo := 0

	for sc.Scan() {
		lineNo++
		if ctx.Err() != nil {
			return
		}

		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		obs, err := ParseObservation(line)
		if err != nil {
			cb.scanError(fault.New(fault.KindScanFailure, fmt.Sprintf("replay line %d", lineNo), err))
			continue
		}
		cb.observation(obs)

		if s.pace > 0 {
			t := time.NewTimer(s.pace)
			select {
			case <-ctx.Done():
				t.Stop()
				return
			case <-t.C:
			}
		}
	}

	if err := sc.Err(); err != nil && ctx.Err() == nil {
		cb.scanError(fault.New(fault.KindScanFailure, "replay read", err))
	}
}

// ParseObservation parses "<address> <rssi>" or "<address>,<rssi>".
func ParseObservation(line string) (proximity.Observation, error) {
	fields := strings.FieldsFunc(line, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	if len(fields) != 2 {
		return proximity.Observation{}, fmt.Errorf("expected \"<address> <rssi>\", got %q", line)
	}
	rssi, err := strconv.Atoi(fields[1])
	if err != nil {
		return proximity.Observation{}, fmt.Errorf("bad rssi %q: %w", fields[1], err)
	}
	return proximity.Observation{Address: fields[0], RSSI: rssi}, nil
}
