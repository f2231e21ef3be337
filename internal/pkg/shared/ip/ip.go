package ip

import (
	"errors"
	"net"
)

var privateIPBlocks []*net.IPNet

func init() {
	for _, cidr := range []string{
		"127.0.0.0/8",    // IPv4 loopback
		"10.0.0.0/8",     // RFC1918
		"172.16.0.0/12",  // RFC1918
		"192.168.0.0/16", // RFC1918
		"::1/128",        // IPv6 loopback
		"fe80::/10",      // IPv6 link-local
	} {
		_, block, _ := net.ParseCIDR(cidr)
		privateIPBlocks = append(privateIPBlocks, block)
	}
}

// IsPrivateIP check if IP is in private range
func IsPrivateIP(ip string) bool {
	ipn := net.ParseIP(ip)
	for _, block := range privateIPBlocks {
		if block.Contains(ipn) {
			return true
		}
	}
	return false
}

// IsIP check if s is a valid IPv4 or IPv6 address
func IsIP(s string) bool {
	return net.ParseIP(s) != nil
}

// IsCIDR check if s is a valid CIDR notation
func IsCIDR(s string) bool {
	_, _, err := net.ParseCIDR(s)
	return err == nil
}

// PrefixLen returns the prefix length of cidr, e.g. 24 for a /24
func PrefixLen(cidr string) (int, error) {
	_, ipnet, err := net.ParseCIDR(cidr)
	if err != nil {
		return 0, err
	}
	ones, _ := ipnet.Mask.Size()
	return ones, nil
}

// ExpandCIDR returns every address in an IPv4 netblock, network and
// broadcast addresses included. Callers are expected to gate on
// PrefixLen first so the result stays bounded.
func ExpandCIDR(cidr string) ([]string, error) {
	ipa, ipnet, err := net.ParseCIDR(cidr)
	if err != nil {
		return nil, err
	}
	ip4 := ipa.To4()
	if ip4 == nil {
		return nil, errors.New("only IPv4 netblocks can be expanded")
	}
	var out []string
	for addr := ip4.Mask(ipnet.Mask); ipnet.Contains(addr); inc(addr) {
		out = append(out, addr.String())
	}
	return out, nil
}

func inc(addr net.IP) {
	for j := len(addr) - 1; j >= 0; j-- {
		addr[j]++
		if addr[j] > 0 {
			break
		}
	}
}
