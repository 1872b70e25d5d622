package nets

import (
	"net"
	"net/url"
	"strings"
)

// IsLocalAddr reports whether addr (host, host:port or URL) refers to this machine or a private network.
type IsLocalAddr func(addr string) (bool, error)

func (Module) IsLocalAddr() IsLocalAddr {
	return func(addr string) (bool, error) {
		if strings.Contains(addr, "://") {
			u, err := url.Parse(addr)
			if err != nil {
				return false, err
			}
			addr = u.Host
		}

		host, _, err := net.SplitHostPort(addr)
		if err != nil {
			// no port
			host = strings.Trim(addr, "[]")
		}
		if host == "" || strings.EqualFold(host, "localhost") {
			return true, nil
		}

		if ip := net.ParseIP(host); ip != nil {
			return ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified(), nil
		}

		ips, err := net.LookupIP(host)
		if err != nil {
			// unresolvable hosts are treated as remote
			return false, nil
		}
		for _, ip := range ips {
			if ip.IsLoopback() || ip.IsPrivate() {
				return true, nil
			}
		}

		return false, nil
	}
}
