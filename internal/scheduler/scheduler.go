// internal/scheduler/scheduler.go
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/tamzrod/beacon-reporter/internal/fault"
	"github.com/tamzrod/beacon-reporter/internal/proximity"
	"github.com/tamzrod/beacon-reporter/internal/scanner"
	"github.com/tamzrod/beacon-reporter/internal/sink"
	"github.com/tamzrod/beacon-reporter/internal/status"
)

// DefaultInterval is the fixed delay between ticks.
const DefaultInterval = 5000 * time.Millisecond

type State int32

const (
	StateIdle State = iota
	StateScanning
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateScanning:
		return "scanning"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Config is the minimal runtime config the scheduler needs.
type Config struct {
	Interval       time.Duration
	MaxAddresses   int // <= 0 keeps every address
	WindowWarnSize int // 0 disables
	RestartOnError bool
}

// Keeper holds a wake-keeping resource for the duration of a session.
// Acquire returns the matching release.
type Keeper interface {
	Acquire() (release func())
}

// Hooks are optional observers of the pipeline. All may be nil.
// They are called from scan and delivery goroutines and must not block.
type Hooks struct {
	Keeper      Keeper
	OnDetection func(ev proximity.DetectionEvent)
	OnResult    func(res sink.Result)
	Now         func() time.Time
}

// Scheduler owns the scan session, the active window and the tick loop.
// Ingestion and reporting share only the ActiveSet.
type Scheduler struct {
	cfg    Config
	source scanner.Source
	filter *proximity.Filter
	sinks  []sink.Sink
	hooks  Hooks

	seq      atomic.Uint64
	inflight sync.WaitGroup

	mu      sync.Mutex
	state   State
	cancel  context.CancelFunc
	done    chan struct{}
	release func()
}

// session is the per-Start state shared by the scan callbacks and the loop.
type session struct {
	set         *status.ActiveSet
	cb          scanner.Callbacks
	needRestart atomic.Bool
	warned      atomic.Bool
}

// New creates an idle scheduler with immutable config.
func New(cfg Config, src scanner.Source, filter *proximity.Filter, sinks []sink.Sink, hooks Hooks) (*Scheduler, error) {
	if src == nil {
		return nil, errors.New("scheduler: scan source required")
	}
	if filter == nil {
		return nil, errors.New("scheduler: filter required")
	}
	if cfg.Interval < 0 {
		return nil, errors.New("scheduler: interval must be > 0")
	}
	if cfg.Interval == 0 {
		cfg.Interval = DefaultInterval
	}
	if hooks.Now == nil {
		hooks.Now = time.Now
	}
	return &Scheduler{
		cfg:    cfg,
		source: src,
		filter: filter,
		sinks:  sinks,
		hooks:  hooks,
	}, nil
}

func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start begins a scan session and arms the tick loop. No-op while scanning.
//
// A scan start failure is returned, but the session still runs and keeps
// reporting (empty) snapshots.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateScanning {
		return nil
	}

	if s.hooks.Keeper != nil {
		s.release = s.hooks.Keeper.Acquire()
	}

	sess := &session{set: status.NewActiveSet()}
	sess.cb = scanner.Callbacks{
		OnObservation: func(obs proximity.Observation) { s.observe(sess, obs) },
		OnScanError:   func(err error) { s.scanError(sess, err) },
	}

	err := s.startSource(sess)

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	s.state = StateScanning

	go s.loop(ctx, s.done, sess)

	log.WithFields(log.Fields{
		"interval_ms":   s.cfg.Interval.Milliseconds(),
		"max_addresses": s.cfg.MaxAddresses,
		"sinks":         len(s.sinks),
	}).Info("scheduler started")

	return err
}

// Stop ends the session. No-op unless scanning. Once Stop returns no new
// dispatch can start; deliveries already running are left to finish.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateScanning {
		return nil
	}

	s.cancel()
	<-s.done

	err := s.source.Stop()
	if err != nil {
		log.WithError(err).Warn("scan source stop failed")
		err = fmt.Errorf("scheduler: stop scan: %w", err)
	}

	if s.release != nil {
		s.release()
		s.release = nil
	}
	s.state = StateStopped

	log.Info("scheduler stopped")
	return err
}

// Wait blocks until every dispatched delivery has returned.
func (s *Scheduler) Wait() {
	s.inflight.Wait()
}

func (s *Scheduler) startSource(sess *session) error {
	err := s.source.Start(sess.cb)
	if err == nil {
		return nil
	}

	switch fault.Classify(err) {
	case fault.KindScanHardwareUnavailable, fault.KindScanStartFailure:
	default:
		err = fault.New(fault.KindScanStartFailure, "scan start", err)
	}
	sess.needRestart.Store(true)

	log.WithFields(log.Fields{
		"kind": fault.Classify(err),
	}).WithError(err).Error("scan start failed")
	return err
}

func (s *Scheduler) observe(sess *session, obs proximity.Observation) {
	ev, ok := s.filter.Accept(obs)
	if !ok {
		return
	}

	added := sess.set.Record(ev.Address)
	if added && s.cfg.WindowWarnSize > 0 && sess.set.Len() > s.cfg.WindowWarnSize {
		if sess.warned.CompareAndSwap(false, true) {
			log.WithFields(log.Fields{
				"size":  sess.set.Len(),
				"limit": s.cfg.WindowWarnSize,
			}).Warn("active window above soft limit")
		}
	}

	if s.hooks.OnDetection != nil {
		s.hooks.OnDetection(ev)
	}
}

func (s *Scheduler) scanError(sess *session, err error) {
	log.WithFields(log.Fields{
		"kind": fault.Classify(err),
	}).WithError(err).Warn("scan error")

	if s.cfg.RestartOnError {
		sess.needRestart.Store(true)
	}
}

// loop is the fixed-delay timer: the next tick is armed only after the
// current dispatch has been handed off.
func (s *Scheduler) loop(ctx context.Context, done chan<- struct{}, sess *session) {
	defer close(done)

	timer := time.NewTimer(s.cfg.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		if s.cfg.RestartOnError && sess.needRestart.CompareAndSwap(true, false) {
			s.restart(sess)
		}

		s.tick(ctx, sess)
		timer.Reset(s.cfg.Interval)
	}
}

func (s *Scheduler) restart(sess *session) {
	log.Info("restarting scan source")
	if err := s.source.Stop(); err != nil {
		log.WithError(err).Debug("scan source stop before restart failed")
	}
	_ = s.startSource(sess)
}

func (s *Scheduler) tick(ctx context.Context, sess *session) {
	snap := sess.set.SnapshotAndClear(s.cfg.MaxAddresses, s.hooks.Now())
	snap.Seq = s.seq.Add(1)
	sess.warned.Store(false)

	log.WithFields(log.Fields{
		"seq":      snap.Seq,
		"snapshot": snap.ID,
		"count":    snap.Count,
	}).Debug("tick")

	dctx := context.WithoutCancel(ctx)
	for _, sk := range s.sinks {
		s.inflight.Add(1)
		go s.deliver(dctx, sk, snap)
	}
}

// deliver runs one sink in its own failure domain.
func (s *Scheduler) deliver(ctx context.Context, sk sink.Sink, snap status.Snapshot) {
	defer s.inflight.Done()

	res := func() (res sink.Result) {
		defer func() {
			if r := recover(); r != nil {
				err := fault.New(fault.KindSinkPanic, "sink "+sk.Name(), fmt.Errorf("%v", r))
				res = sink.Result{Sink: sk.Name(), Kind: fault.KindSinkPanic, Err: err}
			}
		}()
		return sk.Deliver(ctx, snap)
	}()
	if res.Sink == "" {
		res.Sink = sk.Name()
	}

	fields := log.Fields{
		"sink": res.Sink,
		"seq":  snap.Seq,
	}
	if res.Success {
		log.WithFields(fields).Debug("delivered")
	} else {
		fields["kind"] = res.Kind
		log.WithFields(fields).WithError(res.Err).Warn("delivery failed")
	}

	if s.hooks.OnResult != nil {
		s.hooks.OnResult(res)
	}
}
