// Package e131 sends DMX universes as ANSI E1.31 (streaming ACN) data
// packets over UDP.
package e131

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"net"

	"github.com/google/uuid"
)

const (
	Port            = 5568
	DefaultPriority = 100
	HeaderSize      = 126
	MaxSlots        = 512
)

const (
	vectorRootData   = 0x00000004
	vectorFramingDMP = 0x00000002
	vectorDMPSetProp = 0x02
	flagsPDU         = 0x7000
)

var acnPacketID = [12]byte{'A', 'S', 'C', '-', 'E', '1', '.', '1', '7', 0, 0, 0}

// Source identifies the sender in every packet.
type Source struct {
	CID      uuid.UUID
	Name     string
	Priority byte
}

// Packet builds a data packet carrying data as slots 1..len(data) of
// universe. It panics if data is longer than a universe.
func Packet(src Source, universe uint16, seq byte, data []byte) []byte {
	if len(data) > MaxSlots {
		panic(fmt.Sprintf("e131: %d slots exceeds %d", len(data), MaxSlots))
	}
	n := HeaderSize + len(data)
	b := make([]byte, n)

	// root layer
	binary.BigEndian.PutUint16(b[0:], 0x0010)
	copy(b[4:16], acnPacketID[:])
	binary.BigEndian.PutUint16(b[16:], flagsPDU|uint16(n-16))
	binary.BigEndian.PutUint32(b[18:], vectorRootData)
	copy(b[22:38], src.CID[:])

	// framing layer
	binary.BigEndian.PutUint16(b[38:], flagsPDU|uint16(n-38))
	binary.BigEndian.PutUint32(b[40:], vectorFramingDMP)
	copy(b[44:107], src.Name)
	b[108] = src.Priority
	b[111] = seq
	binary.BigEndian.PutUint16(b[113:], universe)

	// DMP layer
	binary.BigEndian.PutUint16(b[115:], flagsPDU|uint16(n-115))
	b[117] = vectorDMPSetProp
	b[118] = 0xa1
	binary.BigEndian.PutUint16(b[121:], 1)
	binary.BigEndian.PutUint16(b[123:], uint16(1+len(data)))
	copy(b[126:], data)
	return b
}

// MulticastAddr is the group address for a universe.
func MulticastAddr(universe uint16) *net.UDPAddr {
	return &net.UDPAddr{
		IP:   net.IPv4(239, 255, byte(universe>>8), byte(universe)),
		Port: Port,
	}
}

type Options struct {
	Universe uint16
	// Unicast sends to this host instead of the universe's multicast group.
	Unicast  string
	Name     string
	Priority byte
}

// Sender streams one universe.
type Sender struct {
	conn     *net.UDPConn
	dst      *net.UDPAddr
	src      Source
	universe uint16
	seq      byte
	log      *slog.Logger
}

func NewSender(opts Options, log *slog.Logger) (*Sender, error) {
	if opts.Universe == 0 || opts.Universe > 63999 {
		return nil, fmt.Errorf("e131: universe %d out of range 1-63999", opts.Universe)
	}
	dst := MulticastAddr(opts.Universe)
	if opts.Unicast != "" {
		ua, err := net.ResolveUDPAddr("udp4", net.JoinHostPort(opts.Unicast, fmt.Sprint(Port)))
		if err != nil {
			return nil, fmt.Errorf("e131: resolve %s: %w", opts.Unicast, err)
		}
		dst = ua
	}
	conn, err := net.ListenUDP("udp4", nil)
	if err != nil {
		return nil, fmt.Errorf("e131: open socket: %w", err)
	}
	if opts.Priority == 0 {
		opts.Priority = DefaultPriority
	}
	if log == nil {
		log = slog.Default()
	}
	s := &Sender{
		conn: conn,
		dst:  dst,
		src: Source{
			CID:      uuid.New(),
			Name:     opts.Name,
			Priority: opts.Priority,
		},
		universe: opts.Universe,
		log:      log.With("component", "e131", "universe", opts.Universe),
	}
	s.log.Info("sending", "dst", dst.String(), "cid", s.src.CID.String())
	return s, nil
}

func (s *Sender) Addr() *net.UDPAddr { return s.dst }

// Send transmits data as the universe's next frame.
func (s *Sender) Send(data []byte) error {
	pkt := Packet(s.src, s.universe, s.seq, data)
	s.seq++
	if _, err := s.conn.WriteToUDP(pkt, s.dst); err != nil {
		return fmt.Errorf("e131: send to %s: %w", s.dst, err)
	}
	return nil
}

func (s *Sender) Close() error {
	return s.conn.Close()
}
