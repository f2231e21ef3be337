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

package str

import (
	"reflect"
	"testing"
)

func TestAppendUniq(t *testing.T) {
	s := []string{"a", "b"}
	s = AppendUniq(s, "b")
	s = AppendUniq(s, "c")
	if !reflect.DeepEqual(s, []string{"a", "b", "c"}) {
		t.Errorf("AppendUniq result: %v", s)
	}
}

func TestCaseInsensitiveContains(t *testing.T) {
	type strTests struct {
		s        string
		substr   string
		expected bool
	}
	var tbl = []strTests{
		{"Example.Com", "example", true},
		{"example.com", "EXAMPLE", true},
		{"example.com", "nothere", false},
	}
	for _, tt := range tbl {
		if actual := CaseInsensitiveContains(tt.s, tt.substr); actual != tt.expected {
			t.Errorf("CaseInsensitiveContains(%v, %v): expected %v, actual %v",
				tt.s, tt.substr, tt.expected, actual)
		}
	}
}

func TestCsvToSlice(t *testing.T) {
	res := CsvToSlice("a, b,c")
	if !reflect.DeepEqual(res, []string{"a", "b", "c"}) {
		t.Errorf("CsvToSlice result: %v", res)
	}
}

func TestIsInList(t *testing.T) {
	l := []string{"virustotal", "dns"}
	if !IsInList(l, "virustotal") {
		t.Error("expected virustotal to be in list")
	}
	if IsInList(l, "whois") {
		t.Error("expected whois to not be in list")
	}
}
