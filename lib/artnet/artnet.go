// Package artnet sends DMX universes as Art-Net ArtDMX packets.
package artnet

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"net"
)

const (
	Port       = 6454
	HeaderSize = 18
	MaxSlots   = 512

	opDMX    = 0x5000
	opSync   = 0x5200
	protocol = 14
)

var id = []byte("Art-Net\x00")

// DMX builds an ArtDMX packet. Universe is the 15-bit port address: net in
// bits 8-14, subnet and universe in the low byte.
func DMX(seq byte, universe uint16, data []byte) []byte {
	n := len(data)
	if n%2 == 1 {
		// ArtDMX payloads have even length
		n++
	}
	b := make([]byte, HeaderSize+n)
	copy(b, id)
	binary.LittleEndian.PutUint16(b[8:], opDMX)
	binary.BigEndian.PutUint16(b[10:], protocol)
	b[12] = seq
	b[14] = byte(universe)
	b[15] = byte(universe>>8) & 0x7f
	binary.BigEndian.PutUint16(b[16:], uint16(n))
	copy(b[18:], data)
	return b
}

// Sync builds an ArtSync packet.
func Sync() []byte {
	b := make([]byte, 14)
	copy(b, id)
	binary.LittleEndian.PutUint16(b[8:], opSync)
	binary.BigEndian.PutUint16(b[10:], protocol)
	return b
}

type Options struct {
	Universe uint16
	// Target is a node address or a directed broadcast address. Empty means
	// the limited broadcast address.
	Target string
	Sync   bool
}

// Sender streams one universe to a node or subnet.
type Sender struct {
	conn     *net.UDPConn
	dst      *net.UDPAddr
	universe uint16
	sync     bool
	seq      byte
	log      *slog.Logger
}

func NewSender(opts Options, log *slog.Logger) (*Sender, error) {
	if opts.Universe > 0x7fff {
		return nil, fmt.Errorf("artnet: universe %d out of range", opts.Universe)
	}
	ip := net.IPv4bcast
	if opts.Target != "" {
		ip = net.ParseIP(opts.Target)
		if ip == nil {
			return nil, fmt.Errorf("artnet: invalid target %q", opts.Target)
		}
	}
	conn, err := net.ListenUDP("udp4", nil)
	if err != nil {
		return nil, fmt.Errorf("artnet: open socket: %w", err)
	}
	if log == nil {
		log = slog.Default()
	}
	s := &Sender{
		conn:     conn,
		dst:      &net.UDPAddr{IP: ip, Port: Port},
		universe: opts.Universe,
		sync:     opts.Sync,
		seq:      1,
		log:      log.With("component", "artnet", "universe", opts.Universe),
	}
	if err := s.enableBroadcast(); err != nil {
		s.log.Warn("unable to set SO_BROADCAST", "error", err)
	}
	s.log.Info("sending", "dst", s.dst.String())
	return s, nil
}

func (s *Sender) Addr() *net.UDPAddr { return s.dst }

// Send transmits data as the next frame, followed by an ArtSync if enabled.
func (s *Sender) Send(data []byte) error {
	if len(data) > MaxSlots {
		return fmt.Errorf("artnet: %d slots exceeds %d", len(data), MaxSlots)
	}
	pkt := DMX(s.seq, s.universe, data)
	// 0 tells the node to disable reordering, so it is skipped
	s.seq++
	if s.seq == 0 {
		s.seq = 1
	}
	if _, err := s.conn.WriteToUDP(pkt, s.dst); err != nil {
		return fmt.Errorf("artnet: send to %s: %w", s.dst, err)
	}
	if s.sync {
		if _, err := s.conn.WriteToUDP(Sync(), s.dst); err != nil {
			return fmt.Errorf("artnet: sync to %s: %w", s.dst, err)
		}
	}
	return nil
}

func (s *Sender) Close() error {
	return s.conn.Close()
}
