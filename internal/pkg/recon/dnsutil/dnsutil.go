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

// Package dnsutil provides hostname verification helpers for modules.
package dnsutil

import (
	"context"
	"net"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"
)

// Resolver checks whether hostnames still resolve
type Resolver struct {
	r       *net.Resolver
	timeout time.Duration
}

// New returns a Resolver using the system resolver. timeout bounds
// each lookup; 0 defaults to 5 seconds.
func New(timeout time.Duration) *Resolver {
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	return &Resolver{r: net.DefaultResolver, timeout: timeout}
}

// Resolves tells whether host has at least one A or AAAA record
func (rv *Resolver) Resolves(ctx context.Context, host string) bool {
	ctx, cancel := context.WithTimeout(ctx, rv.timeout)
	defer cancel()
	addrs, err := rv.r.LookupHost(ctx, host)
	return err == nil && len(addrs) > 0
}

// IsRegisteredDomain tells whether name is a registered domain, i.e.
// exactly one label under its effective TLD, rather than a hostname
// inside one.
func IsRegisteredDomain(name string) bool {
	name = strings.ToLower(strings.TrimSuffix(name, "."))
	d, err := publicsuffix.EffectiveTLDPlusOne(name)
	return err == nil && d == name
}
