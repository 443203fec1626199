// cmd/beaconreporter/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/tamzrod/beacon-reporter/internal/broadcast"
	"github.com/tamzrod/beacon-reporter/internal/config"
	"github.com/tamzrod/beacon-reporter/internal/proximity"
	"github.com/tamzrod/beacon-reporter/internal/scanner"
	"github.com/tamzrod/beacon-reporter/internal/scheduler"
	"github.com/tamzrod/beacon-reporter/internal/sink"
)

// How long shutdown waits for in-flight deliveries.
const drainTimeout = 15 * time.Second

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: beaconreporter <config.yaml> | beaconreporter history <config.yaml> [n]")
	}

	if os.Args[1] == "history" {
		if err := runHistory(os.Args[2:]); err != nil {
			log.Fatal(err)
		}
		return
	}

	cfgPath := os.Args[1]

	// --------------------
	// Load + validate config
	// --------------------

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		log.Fatal(err)
	}
	configureLogging(cfg.Log)

	// --------------------
	// Build pipeline
	// --------------------

	bus := broadcast.NewBus()
	defer bus.Close()

	sinks, err := sink.Build(cfg.Sinks, sink.Deps{UIOut: os.Stdout, Bus: bus})
	if err != nil {
		log.Fatalf("sink build failed: %v", err)
	}
	defer sinks.Close()

	if config.On(cfg.Sinks.Broadcast.Enabled) {
		_, ch := bus.Subscribe(cfg.Sinks.Broadcast.Name)
		go logBroadcasts(ch)
	}

	est := proximity.Estimator{
		ReferenceDBm:     *cfg.Distance.ReferenceDBm,
		PathLossExponent: cfg.Distance.PathLossExponent,
	}
	filter := proximity.NewFilter(est, cfg.Distance.IgnoreThresholdM)

	src, err := scanner.Build(cfg.Scan)
	if err != nil {
		log.Fatalf("scanner build failed: %v", err)
	}

	hooks := scheduler.Hooks{Keeper: scheduler.NewHostKeeper()}
	if sinks.UI != nil {
		hooks.OnDetection = sinks.UI.ObserveDetection
	}

	sch, err := scheduler.New(scheduler.Config{
		Interval:       time.Duration(cfg.Reporter.IntervalMs) * time.Millisecond,
		MaxAddresses:   cfg.Reporter.MaxAddresses,
		WindowWarnSize: cfg.Reporter.WindowWarnSize,
		RestartOnError: cfg.Scan.RestartOnError,
	}, src, filter, sinks.Sinks, hooks)
	if err != nil {
		log.Fatalf("scheduler build failed: %v", err)
	}

	if err := sch.Start(); err != nil {
		// Not fatal: empty windows keep being reported.
		log.WithError(err).Error("scanning unavailable")
	}

	// --------------------
	// Signals: HUP reloads, INT/TERM stop
	// --------------------

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	for sig := range sigs {
		if sig == syscall.SIGHUP {
			reload(cfgPath, sinks)
			continue
		}
		log.WithField("signal", sig.String()).Info("shutting down")
		break
	}

	if err := sch.Stop(); err != nil {
		log.WithError(err).Warn("stop")
	}

	drained := make(chan struct{})
	go func() {
		sch.Wait()
		close(drained)
	}()
	select {
	case <-drained:
	case <-time.After(drainTimeout):
		log.Warn("deliveries still in flight at exit")
	}
}

func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("config load failed: %w", err)
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	config.Normalize(cfg)
	return cfg, nil
}

// reload applies the parts of the config that can change at runtime:
// log settings and the observer address.
func reload(path string, sinks *sink.Set) {
	cfg, err := loadConfig(path)
	if err != nil {
		log.WithError(err).Error("reload rejected")
		return
	}
	configureLogging(cfg.Log)

	if sinks.Observer != nil {
		o := cfg.Sinks.Observer
		sinks.Observer.SetEndpoint(o.Host, o.Port)
		log.WithField("endpoint", sinks.Observer.Endpoint()).Info("observer endpoint updated")
	}
}

func configureLogging(c config.LogConfig) {
	if c.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	lvl, err := log.ParseLevel(c.Level)
	if err != nil {
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
}

// logBroadcasts is the in-process consumer of the status message.
func logBroadcasts(ch <-chan broadcast.Message) {
	for msg := range ch {
		log.WithField("message", msg.Name).Debug(string(msg.Payload))
	}
}

func runHistory(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: beaconreporter history <config.yaml> [n]")
	}
	cfg, err := loadConfig(args[0])
	if err != nil {
		return err
	}
	n := 20
	if len(args) > 1 {
		if n, err = strconv.Atoi(args[1]); err != nil || n <= 0 {
			return fmt.Errorf("history: bad count %q", args[1])
		}
	}

	h, err := sink.OpenHistory(cfg.Sinks.History.Path)
	if err != nil {
		return err
	}
	defer h.Close()

	rows, err := h.Recent(context.Background(), n)
	if err != nil {
		return err
	}
	for _, s := range rows {
		fmt.Printf("%s seq=%d nearby=%d %s\n",
			s.TakenAt.Format(time.RFC3339), s.Seq, s.Count, strings.Join(s.Addresses, " "))
	}
	return nil
}
