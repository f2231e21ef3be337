package ip

import (
	"testing"
)

func TestIsPrivateIP(t *testing.T) {
	type ipTests struct {
		ip       string
		expected bool
	}
	var tbl = []ipTests{
		{"10.0.0.1", true},
		{"192.168.1.1", true},
		{"172.16.0.1", true},
		{"8.8.8.8", false},
		{"::1", true},
		{"not-an-ip", false},
	}
	for _, tt := range tbl {
		if actual := IsPrivateIP(tt.ip); actual != tt.expected {
			t.Errorf("IsPrivateIP(%v): expected %v, actual %v", tt.ip, tt.expected, actual)
		}
	}
}

func TestIsIPAndCIDR(t *testing.T) {
	if !IsIP("8.8.8.8") || !IsIP("2001:db8::1") {
		t.Error("expected valid IPs to be recognized")
	}
	if IsIP("example.com") || IsIP("10.0.0.0/24") {
		t.Error("expected non-IPs to be rejected")
	}
	if !IsCIDR("10.0.0.0/24") {
		t.Error("expected valid CIDR to be recognized")
	}
	if IsCIDR("10.0.0.1") {
		t.Error("expected plain IP to not be a CIDR")
	}
}

func TestPrefixLen(t *testing.T) {
	n, err := PrefixLen("192.168.0.0/28")
	if err != nil {
		t.Fatal(err)
	}
	if n != 28 {
		t.Errorf("PrefixLen: expected 28, actual %v", n)
	}
	if _, err := PrefixLen("not-a-cidr"); err == nil {
		t.Error("expected error for invalid CIDR")
	}
}

func TestExpandCIDR(t *testing.T) {
	ips, err := ExpandCIDR("192.168.1.0/30")
	if err != nil {
		t.Fatal(err)
	}
	expected := []string{"192.168.1.0", "192.168.1.1", "192.168.1.2", "192.168.1.3"}
	if len(ips) != len(expected) {
		t.Fatalf("ExpandCIDR: expected %v addresses, actual %v", len(expected), len(ips))
	}
	for i := range expected {
		if ips[i] != expected[i] {
			t.Errorf("ExpandCIDR: expected %v at %v, actual %v", expected[i], i, ips[i])
		}
	}

	if _, err := ExpandCIDR("2001:db8::/126"); err == nil {
		t.Error("expected error for IPv6 netblock")
	}
	if _, err := ExpandCIDR("junk"); err == nil {
		t.Error("expected error for invalid CIDR")
	}
}
