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

// Package virustotal queries the VirusTotal v2 API for identified IP
// addresses and internet names, and emits malicious-indicator events
// along with any sibling domains and subdomains found in the reports.
package virustotal

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strconv"
	"time"

	"github.com/telisik/telisik/internal/pkg/recon/dnsutil"
	"github.com/telisik/telisik/internal/pkg/recon/fetch"
	"github.com/telisik/telisik/internal/pkg/shared/ip"
	log "github.com/telisik/telisik/internal/pkg/shared/logger"
	"github.com/telisik/telisik/pkg/event"
	"github.com/telisik/telisik/pkg/plugin"
)

func init() {
	plugin.RegisterExtension(new(VirusTotal), "virustotal")
}

const (
	moduleName    = "virustotal"
	defaultAPIURL = "https://www.virustotal.com/vtapi/v2"
	reportURLBase = "https://www.virustotal.com/en/"

	// public API keys are limited to 4 queries per minute
	publicAPIInterval = 15 * time.Second
)

// Config defines the module options
type Config struct {
	APIKey          string `json:"api_key"`
	APIURL          string `json:"api_url"`
	Verify          bool   `json:"verify"`
	PublicAPI       bool   `json:"public_api"`
	CheckCoHosts    bool   `json:"check_cohosts"`
	CheckAffiliates bool   `json:"check_affiliates"`
	NetblockLookup  bool   `json:"netblock_lookup"`
	MaxNetblock     int    `json:"max_netblock"`
	SubnetLookup    bool   `json:"subnet_lookup"`
	MaxSubnet       int    `json:"max_subnet"`
	Timeout         int    `json:"timeout"`
}

func defaultConfig() Config {
	return Config{
		APIURL:          defaultAPIURL,
		Verify:          true,
		PublicAPI:       true,
		CheckCoHosts:    true,
		CheckAffiliates: true,
		NetblockLookup:  true,
		MaxNetblock:     24,
		SubnetLookup:    true,
		MaxSubnet:       24,
		Timeout:         30,
	}
}

type hostResolver interface {
	Resolves(ctx context.Context, host string) bool
}

// VirusTotal is a reputation lookup module
type VirusTotal struct {
	Cfg      Config `json:"cfg"`
	cl       *fetch.Client
	resolver hostResolver
}

// vtReport is the subset of the v2 report response this module reads
type vtReport struct {
	ResponseCode   int             `json:"response_code"`
	DetectedURLs   []vtDetectedURL `json:"detected_urls"`
	DomainSiblings []string        `json:"domain_siblings"`
	Subdomains     []string        `json:"subdomains"`
}

type vtDetectedURL struct {
	URL       string `json:"url"`
	Positives int    `json:"positives"`
	Total     int    `json:"total"`
}

// Initialize implement iface
func (v *VirusTotal) Initialize(b []byte) error {
	cfg := defaultConfig()
	if len(b) > 0 {
		if err := json.Unmarshal(b, &cfg); err != nil {
			return err
		}
	}
	if cfg.APIURL == "" {
		cfg.APIURL = defaultAPIURL
	}
	v.Cfg = cfg

	var interval time.Duration
	if cfg.PublicAPI {
		interval = publicAPIInterval
	}
	v.cl = fetch.New(fetch.Options{
		Timeout:  time.Duration(cfg.Timeout) * time.Second,
		Interval: interval,
	})
	if v.resolver == nil {
		v.resolver = dnsutil.New(time.Duration(cfg.Timeout) * time.Second)
	}
	return nil
}

// Name implement iface
func (v *VirusTotal) Name() string {
	return moduleName
}

// WatchedEvents implement iface
func (v *VirusTotal) WatchedEvents() []string {
	return []string{
		event.TypeIPAddr, event.TypeAffiliateIP, event.TypeInternetName,
		event.TypeCoHostedSite, event.TypeNetblockOwner, event.TypeNetblockMember,
	}
}

// ProducedEvents implement iface
func (v *VirusTotal) ProducedEvents() []string {
	return []string{
		event.TypeMaliciousIP, event.TypeMaliciousInternetName,
		event.TypeMaliciousCoHost, event.TypeMaliciousAffiliateName,
		event.TypeMaliciousAffiliateIP, event.TypeMaliciousNetblock,
		event.TypeMaliciousSubnet, event.TypeInternetName,
		event.TypeAffiliateName, event.TypeUnresolvedName,
		event.TypeDomainName,
	}
}

// query fetches the v2 report for qry, selecting the ip-address or
// domain endpoint. A nil report with nil error means no data (the
// failure was transient or VirusTotal has nothing on qry).
func (v *VirusTotal) query(ctx context.Context, s plugin.Session, qry string) (*vtReport, error) {
	var u string
	if ip.IsIP(qry) {
		u = v.Cfg.APIURL + "/ip-address/report?ip=" + url.QueryEscape(qry)
	} else {
		u = v.Cfg.APIURL + "/domain/report?domain=" + url.QueryEscape(qry)
	}
	u = u + "&apikey=" + url.QueryEscape(v.Cfg.APIKey)

	body, status, err := v.cl.Get(ctx, u)
	if err != nil {
		log.Warn(log.M{Msg: "Fetch failed: " + err.Error(), SId: s.ScanID(), Mod: moduleName, Item: qry})
		return nil, nil
	}
	if status != 200 || len(body) == 0 {
		log.Info(log.M{Msg: "No VirusTotal info found (status " + strconv.Itoa(status) + ")",
			SId: s.ScanID(), Mod: moduleName, Item: qry})
		return nil, nil
	}

	var rep vtReport
	if err := json.Unmarshal(body, &rep); err != nil {
		msg := "Error processing JSON response from VirusTotal: " + err.Error()
		log.Error(log.M{Msg: msg, SId: s.ScanID(), Mod: moduleName, Item: qry})
		s.SetError(msg)
		return nil, errors.New(msg)
	}
	return &rep, nil
}

// maliciousEventFor maps the source event category to the malicious
// event category and the VirusTotal report type for the data value.
func maliciousEventFor(srcType string) (evtType, infoType string) {
	switch srcType {
	case event.TypeIPAddr, event.TypeNetblockOwner, event.TypeNetblockMember:
		return event.TypeMaliciousIP, "ip-address"
	case event.TypeAffiliateIP:
		return event.TypeMaliciousAffiliateIP, "ip-address"
	case event.TypeInternetName:
		return event.TypeMaliciousInternetName, "domain"
	case event.TypeAffiliateName:
		return event.TypeMaliciousAffiliateName, "domain"
	case event.TypeCoHostedSite:
		return event.TypeMaliciousCoHost, "domain"
	}
	return "", ""
}

func isNetblockEvent(t string) bool {
	return t == event.TypeNetblockOwner || t == event.TypeNetblockMember
}

// HandleEvent implement iface
func (v *VirusTotal) HandleEvent(ctx context.Context, s plugin.Session, evt event.Event) error {
	if s.Errored() {
		return nil
	}

	log.Debug(log.M{Msg: "Received event " + evt.Type + " from " + evt.Module,
		SId: s.ScanID(), Mod: moduleName})

	if v.Cfg.APIKey == "" {
		msg := "virustotal module enabled but no API key is set"
		log.Error(log.M{Msg: msg, SId: s.ScanID(), Mod: moduleName})
		s.SetError(msg)
		return errors.New(msg)
	}

	// don't look up stuff twice
	if s.Seen(evt.Data) {
		log.Debug(log.M{Msg: "Skipping, already checked", SId: s.ScanID(), Mod: moduleName, Item: evt.Data})
		return nil
	}
	s.MarkSeen(evt.Data)

	switch {
	case evt.Type == event.TypeAffiliateIP && !v.Cfg.CheckAffiliates:
		return nil
	case evt.Type == event.TypeCoHostedSite && !v.Cfg.CheckCoHosts:
		return nil
	case evt.Type == event.TypeNetblockOwner:
		if !v.Cfg.NetblockLookup {
			return nil
		}
		if v.netblockTooLarge(s, evt.Data, v.Cfg.MaxNetblock) {
			return nil
		}
	case evt.Type == event.TypeNetblockMember:
		if !v.Cfg.SubnetLookup {
			return nil
		}
		if v.netblockTooLarge(s, evt.Data, v.Cfg.MaxSubnet) {
			return nil
		}
	}

	var qrylist []string
	if isNetblockEvent(evt.Type) {
		ips, err := ip.ExpandCIDR(evt.Data)
		if err != nil {
			log.Warn(log.M{Msg: "Cannot expand netblock: " + err.Error(),
				SId: s.ScanID(), Mod: moduleName, Item: evt.Data})
			return nil
		}
		for _, addr := range ips {
			qrylist = append(qrylist, addr)
			s.MarkSeen(addr)
		}
	} else {
		qrylist = append(qrylist, evt.Data)
	}

	for _, addr := range qrylist {
		if s.ShouldStop() {
			return nil
		}

		rep, err := v.query(ctx, s, addr)
		if err != nil {
			return err
		}
		if rep == nil {
			continue
		}

		if len(rep.DetectedURLs) > 0 {
			log.Info(log.M{Msg: "Found VirusTotal URL data", SId: s.ScanID(), Mod: moduleName, Item: addr})
			evtType, infoType := maliciousEventFor(evt.Type)
			if evtType != "" {
				s.Emit(event.Event{
					Type:     evtType,
					Data:     "VirusTotal [" + addr + "]\n" + reportURLBase + infoType + "/" + addr + "/information/",
					Module:   moduleName,
					SourceID: evt.ID,
				})
			}
		}

		// siblings of the original target count as part of it,
		// anything else is an affiliate
		if evt.Type == event.TypeIPAddr || evt.Type == event.TypeInternetName {
			for _, sib := range rep.DomainSiblings {
				if s.Seen(sib) {
					continue
				}
				if !s.Target().Matches(sib) {
					s.Emit(event.Event{Type: event.TypeAffiliateName, Data: sib,
						Module: moduleName, SourceID: evt.ID})
					continue
				}
				if v.Cfg.Verify {
					if v.resolver.Resolves(ctx, sib) {
						s.Emit(event.Event{Type: event.TypeInternetName, Data: sib,
							Module: moduleName, SourceID: evt.ID})
					} else {
						s.Emit(event.Event{Type: event.TypeUnresolvedName, Data: sib,
							Module: moduleName, SourceID: evt.ID})
					}
				}
				if dnsutil.IsRegisteredDomain(sib) {
					s.Emit(event.Event{Type: event.TypeDomainName, Data: sib,
						Module: moduleName, SourceID: evt.ID})
				}
			}
		}

		if evt.Type == event.TypeInternetName {
			for _, sub := range rep.Subdomains {
				if s.Seen(sub) {
					continue
				}
				if v.Cfg.Verify {
					if !v.resolver.Resolves(ctx, sub) {
						s.Emit(event.Event{Type: event.TypeUnresolvedName, Data: sub,
							Module: moduleName, SourceID: evt.ID})
					}
				} else {
					s.Emit(event.Event{Type: event.TypeInternetName, Data: sub,
						Module: moduleName, SourceID: evt.ID})
				}
				if dnsutil.IsRegisteredDomain(sub) {
					s.Emit(event.Event{Type: event.TypeDomainName, Data: sub,
						Module: moduleName, SourceID: evt.ID})
				}
			}
		}
	}
	return nil
}

// netblockTooLarge applies the maximum CIDR size gate: a prefix
// shorter than max means a network larger than permitted.
func (v *VirusTotal) netblockTooLarge(s plugin.Session, cidr string, max int) bool {
	pl, err := ip.PrefixLen(cidr)
	if err != nil {
		log.Warn(log.M{Msg: "Cannot parse netblock: " + err.Error(),
			SId: s.ScanID(), Mod: moduleName, Item: cidr})
		return true
	}
	if pl < max {
		log.Debug(log.M{Msg: "Network size bigger than permitted: " +
			strconv.Itoa(pl) + " > " + strconv.Itoa(max),
			SId: s.ScanID(), Mod: moduleName, Item: cidr})
		return true
	}
	return false
}
