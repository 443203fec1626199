// cmd/observer/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/skip2/go-qrcode"

	"github.com/tamzrod/beacon-reporter/internal/config"
	"github.com/tamzrod/beacon-reporter/internal/observer"
)

var (
	port      = flag.Int("port", config.DefaultObserverPort, "Port to listen on")
	advertise = flag.String("advertise", "", "Host reporters should use (default: first non-loopback IPv4)")
	noQR      = flag.Bool("no-qr", false, "Do not print the pairing QR code")
	debug     = flag.Bool("debug", false, "Debug logging")
)

func main() {
	flag.Parse()
	if *debug {
		log.SetLevel(log.DebugLevel)
	}

	host := *advertise
	if host == "" {
		host = localIPv4()
	}
	endpoint := net.JoinHostPort(host, strconv.Itoa(*port))

	if !*noQR {
		qr, err := qrcode.New("http://"+endpoint+"/", qrcode.Medium)
		if err != nil {
			log.WithError(err).Warn("qr code")
		} else {
			fmt.Println(qr.ToSmallString(false))
		}
	}
	fmt.Printf("reporters: sinks.observer.host=%s sinks.observer.port=%d\n", host, *port)

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(*port),
		Handler:           observer.New(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
	}

	go func() {
		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
		<-sigs
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}()

	log.WithField("addr", srv.Addr).Info("observer listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("observer: %v", err)
	}
}

func localIPv4() string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "127.0.0.1"
	}
	for _, a := range addrs {
		ipn, ok := a.(*net.IPNet)
		if !ok || ipn.IP.IsLoopback() {
			continue
		}
		if ip4 := ipn.IP.To4(); ip4 != nil {
			return ip4.String()
		}
	}
	return "127.0.0.1"
}
