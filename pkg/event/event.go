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

// Package event defines the typed events exchanged between the scan
// engine and its modules.
package event

// Input event categories that modules may watch for.
const (
	TypeRoot           = "ROOT"
	TypeIPAddr         = "IP_ADDRESS"
	TypeAffiliateIP    = "AFFILIATE_IPADDR"
	TypeInternetName   = "INTERNET_NAME"
	TypeCoHostedSite   = "CO_HOSTED_SITE"
	TypeNetblockOwner  = "NETBLOCK_OWNER"
	TypeNetblockMember = "NETBLOCK_MEMBER"
)

// Output event categories that modules may produce.
const (
	TypeMaliciousIP            = "MALICIOUS_IPADDR"
	TypeMaliciousInternetName  = "MALICIOUS_INTERNET_NAME"
	TypeMaliciousCoHost        = "MALICIOUS_COHOST"
	TypeMaliciousAffiliateName = "MALICIOUS_AFFILIATE_INTERNET_NAME"
	TypeMaliciousAffiliateIP   = "MALICIOUS_AFFILIATE_IPADDR"
	TypeMaliciousNetblock      = "MALICIOUS_NETBLOCK"
	TypeMaliciousSubnet        = "MALICIOUS_SUBNET"
	TypeAffiliateName          = "AFFILIATE_INTERNET_NAME"
	TypeUnresolvedName         = "INTERNET_NAME_UNRESOLVED"
	TypeDomainName             = "DOMAIN_NAME"
)

var knownTypes = map[string]struct{}{
	TypeRoot:                   {},
	TypeIPAddr:                 {},
	TypeAffiliateIP:            {},
	TypeInternetName:           {},
	TypeCoHostedSite:           {},
	TypeNetblockOwner:          {},
	TypeNetblockMember:         {},
	TypeMaliciousIP:            {},
	TypeMaliciousInternetName:  {},
	TypeMaliciousCoHost:        {},
	TypeMaliciousAffiliateName: {},
	TypeMaliciousAffiliateIP:   {},
	TypeMaliciousNetblock:      {},
	TypeMaliciousSubnet:        {},
	TypeAffiliateName:          {},
	TypeUnresolvedName:         {},
	TypeDomainName:             {},
}

// KnownType tells whether t is one of the defined event categories.
func KnownType(t string) bool {
	_, ok := knownTypes[t]
	return ok
}

// Event is a single finding or observation travelling on the scan bus.
// ID and Timestamp are filled in by the session when the event is
// emitted, SourceID points to the event that triggered it.
type Event struct {
	ID        string `json:"event_id"`
	Type      string `json:"type"`
	Data      string `json:"data"`
	Module    string `json:"module"`
	SourceID  string `json:"source_id"`
	Timestamp int64  `json:"timestamp"`
}

// Valid checks that the event carries a known type and non-empty data.
func (e Event) Valid() bool {
	return e.Data != "" && KnownType(e.Type)
}
