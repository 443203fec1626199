// internal/observer/observer.go
package observer

import (
	"io"
	"net/http"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/tamzrod/beacon-reporter/internal/status"
)

// Banner is the body returned to a plain GET.
const Banner = "Beacon Observer"

// maxBody bounds a single report.
const maxBody = 1 << 20

// Report is the latest status received from a reporter.
type Report struct {
	DeviceAddresses []string
	RemoteAddr      string
	ReceivedAt      time.Time
}

// Server receives reporter pushes at "/".
type Server struct {
	now func() time.Time

	mu       sync.RWMutex
	latest   Report
	have     bool
	received uint64
}

func New() *Server {
	return &Server{now: time.Now}
}

// Latest returns the most recent report, if any has been received.
func (s *Server) Latest() (Report, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r := s.latest
	if s.have {
		r.DeviceAddresses = make([]string, len(s.latest.DeviceAddresses))
		copy(r.DeviceAddresses, s.latest.DeviceAddresses)
	}
	return r, s.have
}

// Received returns how many reports have been recorded.
func (s *Server) Received() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.received
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		// Reporters in GET mode may still carry a body.
		body, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
		if err == nil && len(body) > 0 {
			if p, err := status.DecodeJSON(body); err == nil {
				s.record(p, r.RemoteAddr)
			}
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, Banner)

	case http.MethodPost:
		body, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
		if err != nil {
			http.Error(w, "read body", http.StatusBadRequest)
			return
		}
		p, err := status.DecodeJSON(body)
		if err != nil {
			log.WithFields(log.Fields{
				"remote": r.RemoteAddr,
			}).WithError(err).Warn("observer: malformed report")
			http.Error(w, "malformed JSON", http.StatusBadRequest)
			return
		}
		s.record(p, r.RemoteAddr)
		w.WriteHeader(http.StatusOK)

	default:
		http.NotFound(w, r)
	}
}

func (s *Server) record(p status.Payload, remote string) {
	addrs := p.DeviceAddresses
	if addrs == nil {
		addrs = []string{}
	}

	s.mu.Lock()
	s.latest = Report{
		DeviceAddresses: addrs,
		RemoteAddr:      remote,
		ReceivedAt:      s.now(),
	}
	s.have = true
	s.received++
	s.mu.Unlock()

	log.WithFields(log.Fields{
		"remote":  remote,
		"devices": addrs,
	}).Info("observer: report received")
}
