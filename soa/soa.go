// Package soa queries name servers for DNS zone SOA serial numbers.
package soa

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/miekg/dns"
)

// Port used when an endpoint spec does not name one.
const DefaultPort = 53

// A name server to query, as an immutable host and port pair.
type Endpoint struct {
	Host string
	Port uint16
}

// `ParseEndpoint` builds an endpoint from a `host[:port]` spec. The port
// defaults to 53 and must lie in 1-65535. IPv6 addresses carrying a port
// must be bracketed (`[::1]:5353`); bare IPv6 addresses are accepted as
// host-only specs.
func ParseEndpoint(spec string) (Endpoint, error) {
	if spec == "" {
		return Endpoint{}, fmt.Errorf("empty host spec")
	}
	if net.ParseIP(spec) != nil || !strings.Contains(spec, ":") {
		return Endpoint{Host: spec, Port: DefaultPort}, nil
	}
	host, portStr, err := net.SplitHostPort(spec)
	if err != nil {
		return Endpoint{}, fmt.Errorf("invalid host spec %q: %s", spec, err)
	}
	if host == "" {
		return Endpoint{}, fmt.Errorf("invalid host spec %q: empty host", spec)
	}
	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil || port == 0 {
		return Endpoint{}, fmt.Errorf("invalid port %q in host spec %q", portStr, spec)
	}
	return Endpoint{Host: host, Port: uint16(port)}, nil
}

// `Addr` returns the endpoint as a dialable `host:port` address.
func (e Endpoint) Addr() string {
	return net.JoinHostPort(e.Host, strconv.Itoa(int(e.Port)))
}

func (e Endpoint) String() string {
	return e.Addr()
}

// Fetcher issues SOA queries over a fixed protocol.
type Fetcher struct {
	client *dns.Client
}

// `NewFetcher` creates a fetcher that queries over `proto` ("udp" or
// "tcp"), giving up on any query after `timeout`.
func NewFetcher(proto string, timeout time.Duration) *Fetcher {
	return &Fetcher{
		client: &dns.Client{
			Net:     proto,
			Timeout: timeout,
		},
	}
}

// `FetchSerial` queries `server` for the SOA record of `zone` and returns
// the serial number along with the query round-trip time. There are no
// retries; every failure comes back as an error naming both the zone and
// the server.
func (f *Fetcher) FetchSerial(server Endpoint, zone string) (uint32, time.Duration, error) {
	dnsq := new(dns.Msg)
	dnsq.SetQuestion(dns.Fqdn(zone), dns.TypeSOA)
	in, rtt, err := f.client.Exchange(dnsq, server.Addr())
	if err != nil {
		return 0, 0, fmt.Errorf("SOA query for %s to %s failed: %w", zone, server, err)
	}
	if in.Truncated {
		return 0, rtt, fmt.Errorf("SOA query for %s to %s failed: response truncated", zone, server)
	}
	if in.Rcode != dns.RcodeSuccess {
		return 0, rtt, fmt.Errorf("SOA query for %s to %s failed: %s", zone, server,
			dns.RcodeToString[in.Rcode])
	}
	for _, answer := range in.Answer {
		if soa, ok := answer.(*dns.SOA); ok {
			return soa.Serial, rtt, nil
		}
	}
	return 0, rtt, fmt.Errorf("no SOA record in answer for %s from %s", zone, server)
}
