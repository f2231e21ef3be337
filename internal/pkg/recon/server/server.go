// Copyright (c) 2024 Telisik Project and contributors, All rights reserved.
//
// This file is part of Telisik.
//
// Telisik is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation version 3 of the License.
//
// Telisik is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Telisik. If not, see <https://www.gnu.org/licenses/>.

// Package server exposes scan control over HTTP.
package server

import (
	"errors"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/buaazp/fasthttprouter"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/reuseport"

	rc "github.com/paulbellamy/ratecounter"

	"github.com/telisik/telisik/internal/pkg/recon/engine"
	log "github.com/telisik/telisik/internal/pkg/shared/logger"
)

// Config defines the server options
type Config struct {
	// Engine runs the scans started over the API
	Engine *engine.Engine
	// Addr is the address to listen on
	Addr string
	// Port is the TCP port to listen on
	Port int
	// LogDir receives completed scan reports, empty disables them
	LogDir string
	// Pprof enables the /debug/pprof endpoint
	Pprof bool
}

var cmu sync.RWMutex
var eng *engine.Engine
var logDir string
var ln net.Listener
var connCounter uint64
var rateCounter *rc.RateCounter

// Start starts the server, returning once it is listening
func Start(cfg Config) error {
	if a := net.ParseIP(cfg.Addr); a == nil {
		return errors.New(cfg.Addr + " is not a valid IP address")
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return errors.New("Invalid TCP port number")
	}
	if cfg.Engine == nil {
		return errors.New("Engine cannot be nil")
	}

	cmu.Lock()
	eng = cfg.Engine
	logDir = cfg.LogDir
	rateCounter = rc.NewRateCounter(1 * time.Second)
	cmu.Unlock()

	p := strconv.Itoa(cfg.Port)
	log.Info(log.M{Msg: "Server listening on " + cfg.Addr + ":" + p})

	router := fasthttprouter.New()
	router.POST("/scan", handleScanStart)
	router.GET("/scan/:id", handleScanGet)
	router.DELETE("/scan/:id", handleScanStop)
	router.GET("/scans/", handleScanList)
	if cfg.Pprof {
		router.GET("/debug/pprof/:name", pprofHandler)
		router.GET("/debug/pprof/", pprofHandler)
	}

	l, err := reuseport.Listen("tcp4", cfg.Addr+":"+p)
	if err != nil {
		return err
	}
	cmu.Lock()
	ln = l
	cmu.Unlock()

	go func() {
		if err := fasthttp.Serve(l, router.Handler); err != nil {
			log.Info(log.M{Msg: "Server stopped: " + err.Error()})
		}
	}()
	return nil
}

// Stop closes the server listener
func Stop() error {
	cmu.Lock()
	defer cmu.Unlock()
	if ln == nil {
		return errors.New("server is not started")
	}
	err := ln.Close()
	ln = nil
	return err
}

func increaseConnCounter() uint64 {
	atomic.AddUint64(&connCounter, 1)
	i := atomic.LoadUint64(&connCounter)
	return i
}
