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
	"testing"

	"github.com/telisik/telisik/pkg/event"
)

func TestNew(t *testing.T) {
	type tgtTests struct {
		value    string
		err      bool
		kind     Kind
		seedType string
	}
	var tbl = []tgtTests{
		{"example.com", false, KindInternetName, event.TypeInternetName},
		{"Example.COM", false, KindInternetName, event.TypeInternetName},
		{"8.8.8.8", false, KindIPAddress, event.TypeIPAddr},
		{"10.0.0.0/24", false, KindNetblock, event.TypeNetblockOwner},
		{"", true, 0, ""},
		{"not a name", true, 0, ""},
	}

	for _, tt := range tbl {
		tgt, err := New(tt.value)
		if (err != nil) != tt.err {
			t.Errorf("New(%v): expected err %v, actual err %v", tt.value, tt.err, err)
			continue
		}
		if err != nil {
			continue
		}
		if tgt.Kind() != tt.kind {
			t.Errorf("New(%v): expected kind %v, actual %v", tt.value, tt.kind, tgt.Kind())
		}
		if tgt.SeedEventType() != tt.seedType {
			t.Errorf("New(%v): expected seed %v, actual %v", tt.value, tt.seedType, tgt.SeedEventType())
		}
	}
}

func TestMatches(t *testing.T) {
	type matchTests struct {
		target   string
		name     string
		expected bool
	}
	var tbl = []matchTests{
		{"example.com", "example.com", true},
		{"example.com", "WWW.Example.Com", true},
		{"example.com", "sub.www.example.com", true},
		{"example.com", "notexample.com", false},
		{"example.com", "", false},
		{"8.8.8.8", "8.8.8.8", true},
		{"8.8.8.8", "8.8.4.4", false},
		{"10.0.0.0/24", "10.0.0.99", true},
		{"10.0.0.0/24", "10.0.1.1", false},
		{"10.0.0.0/24", "example.com", false},
	}

	for _, tt := range tbl {
		tgt, err := New(tt.target)
		if err != nil {
			t.Fatal(err)
		}
		if actual := tgt.Matches(tt.name); actual != tt.expected {
			t.Errorf("Matches(%v, %v): expected %v, actual %v",
				tt.target, tt.name, tt.expected, actual)
		}
	}
}
