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

package server

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/telisik/telisik/internal/pkg/recon/engine"
	log "github.com/telisik/telisik/internal/pkg/shared/logger"

	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/pprofhandler"
)

type scanRequest struct {
	Target  string   `json:"target"`
	Modules []string `json:"modules"`
}

type scanSummary struct {
	ScanID     string `json:"scan_id"`
	Target     string `json:"target"`
	Status     string `json:"status"`
	EventCount int    `json:"event_count"`
}

type scanList struct {
	Scans []scanSummary `json:"scans"`
}

func pprofHandler(ctx *fasthttp.RequestCtx) {
	pprofhandler.PprofHandler(ctx)
}

func summarize(sc *engine.Scan) scanSummary {
	return scanSummary{
		ScanID:     sc.ID(),
		Target:     sc.Target(),
		Status:     sc.Status(),
		EventCount: len(sc.Events()),
	}
}

func handleScanStart(ctx *fasthttp.RequestCtx) {
	clientAddr := ctx.RemoteAddr().String()
	connID := increaseConnCounter()
	rateCounter.Incr(1)

	req := scanRequest{}
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		log.Warn(log.M{Msg: "Cannot parse scan request from " + clientAddr +
			" (conn " + strconv.FormatUint(connID, 10) + "): " + err.Error()})
		fmt.Fprintf(ctx, "Cannot parse the submitted scan request\n")
		ctx.SetStatusCode(fasthttp.StatusBadRequest)
		return
	}

	cmu.RLock()
	e := eng
	ldir := logDir
	cmu.RUnlock()

	sc, err := e.Start(context.Background(), req.Target, req.Modules)
	if err != nil {
		log.Warn(log.M{Msg: "Cannot start scan requested by " + clientAddr + ": " + err.Error()})
		fmt.Fprintf(ctx, "Cannot start scan: "+err.Error()+"\n")
		ctx.SetStatusCode(fasthttp.StatusBadRequest)
		return
	}
	log.Info(log.M{Msg: "Scan requested by " + clientAddr, SId: sc.ID()})

	if ldir != "" {
		go func() {
			<-sc.Done()
			if err := sc.WriteReport(ldir); err != nil {
				log.Warn(log.M{Msg: "Cannot write scan report: " + err.Error(), SId: sc.ID()})
			}
		}()
	}

	b, err := json.MarshalIndent(summarize(sc), "", "  ")
	if err != nil {
		fmt.Fprintf(ctx, "Cannot marshal scan summary\n")
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		return
	}
	_, _ = ctx.Write(b)
	ctx.SetStatusCode(fasthttp.StatusCreated)
}

func handleScanGet(ctx *fasthttp.RequestCtx) {
	id := ctx.UserValue("id").(string)

	cmu.RLock()
	e := eng
	cmu.RUnlock()

	sc := e.Scan(id)
	if sc == nil {
		fmt.Fprintf(ctx, "no such scan: "+id+"\n")
		ctx.SetStatusCode(fasthttp.StatusNotFound)
		return
	}
	b, err := json.MarshalIndent(sc.Result(), "", "  ")
	if err != nil {
		fmt.Fprintf(ctx, "Cannot marshal scan report\n")
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		return
	}
	_, _ = ctx.Write(b)
}

func handleScanStop(ctx *fasthttp.RequestCtx) {
	id := ctx.UserValue("id").(string)

	cmu.RLock()
	e := eng
	cmu.RUnlock()

	sc := e.Scan(id)
	if sc == nil {
		fmt.Fprintf(ctx, "no such scan: "+id+"\n")
		ctx.SetStatusCode(fasthttp.StatusNotFound)
		return
	}
	sc.Stop()
	fmt.Fprintf(ctx, "scan "+id+" stopping\n")
	ctx.SetStatusCode(fasthttp.StatusAccepted)
}

func handleScanList(ctx *fasthttp.RequestCtx) {
	cmu.RLock()
	e := eng
	cmu.RUnlock()

	l := scanList{Scans: []scanSummary{}}
	for _, sc := range e.Scans() {
		l.Scans = append(l.Scans, summarize(sc))
	}
	b, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		fmt.Fprintf(ctx, "Cannot marshal scan list\n")
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		return
	}
	_, _ = ctx.Write(b)
}
