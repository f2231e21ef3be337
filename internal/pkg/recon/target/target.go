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

package target

import (
	"errors"
	"net"
	"strings"

	"github.com/telisik/telisik/internal/pkg/shared/ip"
	"github.com/telisik/telisik/pkg/event"

	"github.com/yl2chen/cidranger"
)

// Kind classifies what a scan target is
type Kind int

const (
	// KindInternetName is a hostname or domain target
	KindInternetName Kind = iota
	// KindIPAddress is a single IP target
	KindIPAddress
	// KindNetblock is a CIDR target
	KindNetblock
)

// Target is the subject of a scan run
type Target struct {
	kind   Kind
	value  string
	ranger cidranger.Ranger
}

// New classifies value into an IP, netblock, or internet name target
func New(value string) (*Target, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, errors.New("target cannot be empty")
	}
	t := &Target{value: value}
	switch {
	case ip.IsIP(value):
		t.kind = KindIPAddress
	case ip.IsCIDR(value):
		t.kind = KindNetblock
		_, ipnet, err := net.ParseCIDR(value)
		if err != nil {
			return nil, err
		}
		t.ranger = cidranger.NewPCTrieRanger()
		if err := t.ranger.Insert(cidranger.NewBasicRangerEntry(*ipnet)); err != nil {
			return nil, err
		}
	default:
		if strings.ContainsAny(value, " /\\") {
			return nil, errors.New("not a valid internet name: " + value)
		}
		t.kind = KindInternetName
		t.value = strings.ToLower(value)
	}
	return t, nil
}

// Kind returns the target kind
func (t *Target) Kind() Kind {
	return t.kind
}

// Value returns the target value as given at scan start
func (t *Target) Value() string {
	return t.value
}

// SeedEventType returns the event category used to seed the scan
func (t *Target) SeedEventType() string {
	switch t.kind {
	case KindIPAddress:
		return event.TypeIPAddr
	case KindNetblock:
		return event.TypeNetblockOwner
	default:
		return event.TypeInternetName
	}
}

// Matches tells whether name belongs to the target: equal to it, a
// host under a domain target, or an address inside a netblock target.
func (t *Target) Matches(name string) bool {
	if name == "" {
		return false
	}
	switch t.kind {
	case KindIPAddress:
		return name == t.value
	case KindNetblock:
		addr := net.ParseIP(name)
		if addr == nil {
			return false
		}
		contains, err := t.ranger.Contains(addr)
		return err == nil && contains
	default:
		name = strings.ToLower(name)
		return name == t.value || strings.HasSuffix(name, "."+t.value)
	}
}
