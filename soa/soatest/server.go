// Package soatest runs an in-process DNS server that answers every SOA
// query it receives, for use in tests. Specific zones can be mapped to
// fixed serial numbers to simulate serial drift between servers.
package soatest

import (
	"fmt"
	"net"
	"strings"
	"sync"

	"github.com/miekg/dns"
)

// Serial returned for zones without an explicit mapping.
const DefaultSerial uint32 = 1507

// A single query received by the server.
type Request struct {
	Proto string // "udp" or "tcp"
	Name  string // fully qualified query name
}

// Server answers SOA queries over both UDP and TCP on a single loopback
// port. Serials come from ZoneSerials, keyed by zone name without the
// trailing dot, or fall back to DefaultSerial. ZoneSerials must not be
// modified after Start.
type Server struct {
	ZoneSerials map[string]uint32

	udp  *dns.Server
	tcp  *dns.Server
	addr string

	mu       sync.Mutex
	rcode    int
	requests []Request
}

// `NewServer` creates a server serving the given zone serial mappings;
// nil means every zone gets DefaultSerial.
func NewServer(zoneSerials map[string]uint32) *Server {
	return &Server{ZoneSerials: zoneSerials}
}

// `SetRcode` makes the server reply to subsequent queries with the given
// rcode and no answer; dns.RcodeSuccess restores normal behaviour.
func (s *Server) SetRcode(rcode int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rcode = rcode
}

// `Start` binds an unused loopback port for both UDP and TCP and serves
// until `Close` is called.
func (s *Server) Start() error {
	var pc net.PacketConn
	var ln net.Listener
	for attempt := 0; ; attempt++ {
		var err error
		pc, err = net.ListenPacket("udp", "127.0.0.1:0")
		if err != nil {
			return err
		}
		port := pc.LocalAddr().(*net.UDPAddr).Port
		ln, err = net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
		if err == nil {
			break
		}
		pc.Close()
		if attempt == 9 {
			return fmt.Errorf("no loopback port usable for both udp and tcp: %s", err)
		}
	}
	s.addr = ln.Addr().String()
	s.udp = &dns.Server{PacketConn: pc, Handler: s.handler("udp")}
	s.tcp = &dns.Server{Listener: ln, Handler: s.handler("tcp")}
	go s.udp.ActivateAndServe()
	go s.tcp.ActivateAndServe()
	return nil
}

// `Addr` returns the server's `host:port` address.
func (s *Server) Addr() string {
	return s.addr
}

// `Close` shuts down both listeners.
func (s *Server) Close() {
	if s.udp != nil {
		s.udp.Shutdown()
	}
	if s.tcp != nil {
		s.tcp.Shutdown()
	}
}

// `Requests` returns a copy of the queries received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

func (s *Server) handler(proto string) dns.Handler {
	return dns.HandlerFunc(func(w dns.ResponseWriter, r *dns.Msg) {
		m := new(dns.Msg)
		m.SetReply(r)
		m.Authoritative = true
		if len(r.Question) == 0 {
			w.WriteMsg(m)
			return
		}
		q := r.Question[0]
		s.mu.Lock()
		s.requests = append(s.requests, Request{Proto: proto, Name: q.Name})
		rcode := s.rcode
		s.mu.Unlock()
		if rcode != dns.RcodeSuccess {
			m.Rcode = rcode
			w.WriteMsg(m)
			return
		}
		serial := DefaultSerial
		if mapped, ok := s.ZoneSerials[strings.TrimSuffix(q.Name, ".")]; ok {
			serial = mapped
		}
		m.Answer = append(m.Answer, &dns.SOA{
			Hdr: dns.RR_Header{
				Name:   q.Name,
				Rrtype: dns.TypeSOA,
				Class:  dns.ClassINET,
				Ttl:    3600,
			},
			Ns:      "dns." + q.Name,
			Mbox:    "postmaster." + q.Name,
			Serial:  serial,
			Refresh: 10800,
			Retry:   3600,
			Expire:  604800,
			Minttl:  86400,
		})
		w.WriteMsg(m)
	})
}
