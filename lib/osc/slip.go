package osc

import (
	"errors"
	"net"
)

const (
	slipEnd    = 0xC0
	slipEsc    = 0xDB
	slipEscEnd = 0xDC
	slipEscEsc = 0xDD

	// MaxStreamFrame bounds an unterminated frame from a stream peer.
	MaxStreamFrame = 65536
)

// ServeStream accepts OSC 1.1 stream peers on ln and feeds their
// SLIP-framed packets to the same subscribers as the datagram socket. It
// returns when ln is closed.
func (s *Server) ServeStream(ln net.Listener) error {
	go func() {
		<-s.done
		ln.Close()
	}()
	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		go s.handleStream(conn)
	}
}

func (s *Server) handleStream(conn net.Conn) {
	defer conn.Close()
	go func() {
		<-s.done
		conn.Close()
	}()

	from := conn.RemoteAddr().String()
	s.log.Info("stream peer connected", "from", from)
	buf := make([]byte, 0, 65536)
	tmp := make([]byte, 4096)
	for {
		n, err := conn.Read(tmp)
		if err != nil {
			s.log.Info("stream peer disconnected", "from", from)
			return
		}
		buf = s.feedStream(buf, tmp[:n], from)
	}
}

// feedStream appends data to buf, handles every complete frame and returns
// the unconsumed tail. A tail longer than MaxStreamFrame is discarded;
// extraction resynchronizes on the next END byte.
func (s *Server) feedStream(buf, data []byte, from string) []byte {
	buf = append(buf, data...)
	for {
		frame, rest, ok := extractSLIPFrame(buf)
		if !ok {
			break
		}
		buf = rest
		if len(frame) > 0 {
			s.handlePacket(frame, from)
		}
	}
	if len(buf) > MaxStreamFrame {
		s.log.Warn("dropping oversized stream frame", "from", from, "bytes", len(buf))
		buf = buf[:0]
	}
	return buf
}

// WriteStream sends msg to a stream peer as one SLIP frame.
func WriteStream(conn net.Conn, msg Message) error {
	_, err := conn.Write(slipEncode(msg.Encode()))
	return err
}

func extractSLIPFrame(data []byte) (frame []byte, rest []byte, ok bool) {
	start := -1
	for i, b := range data {
		if b != slipEnd {
			continue
		}
		if start == -1 {
			start = i
			continue
		}
		if i == start+1 {
			// back-to-back END bytes delimit an empty frame
			start = i
			continue
		}
		return slipDecode(data[start+1 : i]), data[i:], true
	}
	return nil, data, false
}

func slipEncode(data []byte) []byte {
	out := []byte{slipEnd}
	for _, b := range data {
		switch b {
		case slipEnd:
			out = append(out, slipEsc, slipEscEnd)
		case slipEsc:
			out = append(out, slipEsc, slipEscEsc)
		default:
			out = append(out, b)
		}
	}
	out = append(out, slipEnd)
	return out
}

func slipDecode(data []byte) []byte {
	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); i++ {
		if data[i] == slipEsc && i+1 < len(data) {
			switch data[i+1] {
			case slipEscEnd:
				out = append(out, slipEnd)
			case slipEscEsc:
				out = append(out, slipEsc)
			default:
				out = append(out, data[i+1])
			}
			i++
			continue
		}
		out = append(out, data[i])
	}
	return out
}
