//
// Copyright (c) 2014-2019 Cesanta Software Limited
// All rights reserved
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//

// Command espbrewd is the Remote Board Server: it scans for attached
// ESP32 boards, tracks their identity across reconnects, and serves the
// HTTP+Push Surface the Firmware Image Assembler and Flash Executor sit
// behind. Startup sequencing (flags, then wiring, then serve, then
// signal-driven drain) follows common/webcore.Run's shape.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/golang/glog"
	"github.com/juju/errors"
	"github.com/skratchdot/open-golang/open"

	"github.com/mongoose-os/espbrewd/internal/api"
	"github.com/mongoose-os/espbrewd/internal/broker"
	"github.com/mongoose-os/espbrewd/internal/config"
	"github.com/mongoose-os/espbrewd/internal/flasher"
	"github.com/mongoose-os/espbrewd/internal/mqttpub"
	"github.com/mongoose-os/espbrewd/internal/registry"
	"github.com/mongoose-os/espbrewd/internal/scanner"
	"github.com/mongoose-os/espbrewd/internal/stubs"
	"github.com/mongoose-os/espbrewd/version"
)

func main() {
	if err := run(); err != nil {
		glog.Exitf("espbrewd: %v", err)
	}
}

func run() error {
	cfg, err := config.Parse()
	if err != nil {
		return errors.Annotate(err, "parsing configuration")
	}
	defer glog.Flush()

	glog.Infof("espbrewd %s (%s) starting, bind=%s", version.Version, version.BuildId, cfg.Bind)

	if err := cfg.EnsureConfigDir(); err != nil {
		return errors.Annotate(err, "preparing config dir")
	}

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}

	reg, err := registry.New(registry.Options{
		ConfigPath: cfg.AssignmentsFile(),
		Hostname:   hostname,
	})
	if err != nil {
		return errors.Annotate(err, "loading board registry")
	}

	var mqttPub *mqttpub.Publisher
	if cfg.MQTTBrokerURL != "" {
		mqttPub, err = mqttpub.Connect(cfg.MQTTBrokerURL, "")
		if err != nil {
			// Non-fatal: per §7, runtime infrastructure errors log and
			// continue with last good state rather than block startup.
			glog.Warningf("espbrewd: MQTT connect failed, continuing without it: %v", err)
			mqttPub = nil
		} else {
			defer mqttPub.Close()
		}
	}

	brk := broker.New(broker.Options{})
	stubProvider := stubs.New()
	flashExec := flasher.New(brk, stubProvider)

	// lastScan is the time the scanner last reported a board change; a tick
	// that changes nothing leaves it as it was.
	var lastScanMu sync.Mutex
	var lastScan time.Time
	scanLoop := scanner.New(reg, scanner.Options{
		ScanInterval: time.Duration(cfg.ScanIntervalMs) * time.Millisecond,
		MQTT:         mqttPub,
		OnChange: func(b registry.Board) {
			lastScanMu.Lock()
			lastScan = time.Now()
			lastScanMu.Unlock()
			glog.V(1).Infof("espbrewd: board %s -> %s", b.ID, b.Status)
		},
	})

	srv := api.New(reg, brk, flashExec, api.Options{
		Hostname:  hostname,
		FlashBaud: cfg.FlashBaud,
		LastScan: func() time.Time {
			lastScanMu.Lock()
			defer lastScanMu.Unlock()
			return lastScan
		},
	})
	defer srv.Close()

	httpSrv := &http.Server{Addr: cfg.Bind, Handler: srv.Handler()}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	scanLoop.Run(ctx)
	defer scanLoop.Stop()

	errCh := make(chan error, 1)
	go func() {
		glog.Infof("espbrewd: listening on %s", cfg.Bind)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- errors.Annotate(err, "HTTP server")
			return
		}
		errCh <- nil
	}()

	if cfg.OpenBrowser {
		go open.Start("http://" + dashboardHost(cfg.Bind))
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigs:
		glog.Infof("espbrewd: received %s, shutting down", sig)
	}

	// Drain HTTP for up to 5s (an in-flight flash request holds its
	// connection open until it finishes or the 5s pass), then end every
	// monitor session with reason "shutdown". A flash still running after
	// that is cut off when the process exits — the chip has a watchdog, so
	// an aborted flash is safe per §4.5.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		glog.Warningf("espbrewd: HTTP shutdown: %v", err)
	}
	brk.Shutdown()

	return nil
}

// dashboardHost substitutes a loopback address for a wildcard bind
// address, since "open.Start" must be handed something the OS browser
// can actually resolve.
func dashboardHost(bind string) string {
	if len(bind) > 0 && bind[0] == ':' {
		return "localhost" + bind
	}
	if len(bind) >= 8 && bind[:8] == "0.0.0.0:" {
		return "localhost" + bind[7:]
	}
	return bind
}
