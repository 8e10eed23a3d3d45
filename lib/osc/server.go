// Package osc implements the subset of Open Sound Control used by the show:
// message and bundle codecs, a UDP listener with fan-out to subscribers,
// and SLIP-framed streams for TCP peers.
package osc

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
)

const DefaultPort = 7777

// Server receives OSC datagrams and fans them out to subscribers. Delivery
// never blocks the reader: a subscriber whose buffer is full misses the
// message.
type Server struct {
	conn *net.UDPConn
	log  *slog.Logger

	mu     sync.Mutex
	subs   []chan Message
	closed bool

	addrMu sync.Mutex
	addrs  map[string]*net.UDPAddr

	dropped atomic.Uint64
	done    chan struct{}
}

// Listen opens a UDP socket on addr (e.g. ":7777") and starts reading.
func Listen(addr string, log *slog.Logger) (*Server, error) {
	ua, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("osc: resolve %s: %w", addr, err)
	}
	conn, err := net.ListenUDP("udp", ua)
	if err != nil {
		return nil, fmt.Errorf("osc: listen %s: %w", addr, err)
	}
	if log == nil {
		log = slog.Default()
	}
	s := &Server{
		conn:  conn,
		log:   log.With("component", "osc"),
		addrs: make(map[string]*net.UDPAddr),
		done:  make(chan struct{}),
	}
	go s.readLoop()
	return s, nil
}

func (s *Server) Addr() *net.UDPAddr {
	return s.conn.LocalAddr().(*net.UDPAddr)
}

func (s *Server) Port() int {
	return s.Addr().Port
}

// Dropped reports how many deliveries were skipped because a subscriber
// was full.
func (s *Server) Dropped() uint64 {
	return s.dropped.Load()
}

// Subscribe returns a channel receiving every message decoded after the
// call. The channel is closed when the server closes.
func (s *Server) Subscribe(size int) <-chan Message {
	ch := make(chan Message, size)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		close(ch)
		return ch
	}
	s.subs = append(s.subs, ch)
	return ch
}

// Close stops the reader and closes every subscriber channel.
func (s *Server) Close() error {
	err := s.conn.Close()
	<-s.done
	return err
}

// Done is closed once the reader has stopped.
func (s *Server) Done() <-chan struct{} {
	return s.done
}

// SendTo sends msg as a single datagram to addr ("host:port").
func (s *Server) SendTo(addr string, msg Message) error {
	ua, err := s.resolve(addr)
	if err != nil {
		return err
	}
	_, err = s.conn.WriteToUDP(msg.Encode(), ua)
	return err
}

func (s *Server) resolve(addr string) (*net.UDPAddr, error) {
	s.addrMu.Lock()
	defer s.addrMu.Unlock()
	if ua, ok := s.addrs[addr]; ok {
		return ua, nil
	}
	ua, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("osc: resolve %s: %w", addr, err)
	}
	s.addrs[addr] = ua
	return ua, nil
}

func (s *Server) readLoop() {
	defer close(s.done)
	defer s.closeSubs()

	buf := make([]byte, 65536)
	for {
		n, from, err := s.conn.ReadFromUDP(buf)
		if err != nil {
			if !errors.Is(err, net.ErrClosed) {
				s.log.Error("read failed", "error", err)
			}
			return
		}
		s.handlePacket(buf[:n], from.String())
	}
}

func (s *Server) handlePacket(data []byte, from string) {
	msgs, err := DecodePacket(data)
	if err != nil {
		s.log.Warn("dropping malformed packet", "from", from, "error", err)
	}
	for _, m := range msgs {
		s.log.Debug("recv", "from", from, "addr", m.Addr, "args", m.Args)
		s.publish(m)
	}
}

func (s *Server) publish(m Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- m:
		default:
			s.dropped.Add(1)
		}
	}
}

func (s *Server) closeSubs() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for _, ch := range s.subs {
		close(ch)
	}
	s.subs = nil
}
