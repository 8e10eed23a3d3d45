package artnet

import (
	"bytes"
	"net"
	"testing"
	"time"
)

func TestDMXHeader(t *testing.T) {
	b := DMX(9, 0x0123, []byte{1, 2, 3, 4})
	want := []byte{
		'A', 'r', 't', '-', 'N', 'e', 't', 0,
		0x00, 0x50, // opcode, little endian
		0x00, 14, // protocol
		9, 0, // sequence, physical
		0x23, 0x01, // subuni, net
		0x00, 4, // length
		1, 2, 3, 4,
	}
	if !bytes.Equal(b, want) {
		t.Errorf("got  % x\nwant % x", b, want)
	}
}

func TestDMXOddLengthPadded(t *testing.T) {
	b := DMX(1, 0, make([]byte, 205))
	if len(b) != HeaderSize+206 || b[16] != 0 || b[17] != 206 {
		t.Errorf("len %d, length field % x", len(b), b[16:18])
	}
}

func TestDMXNetMasked(t *testing.T) {
	b := DMX(1, 0xffff, nil)
	if b[15] != 0x7f {
		t.Errorf("net = %#x", b[15])
	}
}

func TestSync(t *testing.T) {
	want := []byte("Art-Net\x00\x00\x52\x00\x0e\x00\x00")
	if !bytes.Equal(Sync(), want) {
		t.Errorf("got % x", Sync())
	}
}

func TestSenderOptions(t *testing.T) {
	if _, err := NewSender(Options{Universe: 0x8000}, nil); err == nil {
		t.Error("universe accepted")
	}
	if _, err := NewSender(Options{Target: "nope"}, nil); err == nil {
		t.Error("target accepted")
	}
}

func TestSenderSend(t *testing.T) {
	rx, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: Port})
	if err != nil {
		t.Skipf("port %d unavailable: %v", Port, err)
	}
	defer rx.Close()

	s, err := NewSender(Options{Universe: 2, Target: "127.0.0.1", Sync: true}, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if err := s.Send(make([]byte, MaxSlots+1)); err == nil {
		t.Error("oversized frame accepted")
	}
	if err := s.Send([]byte{0xaa, 0xbb}); err != nil {
		t.Fatal(err)
	}

	buf := make([]byte, 1024)
	rx.SetReadDeadline(time.Now().Add(2 * time.Second))
	n, _, err := rx.ReadFromUDP(buf)
	if err != nil {
		t.Fatal(err)
	}
	if n != HeaderSize+2 || buf[12] != 1 || buf[14] != 2 || buf[18] != 0xaa {
		t.Errorf("dmx packet % x", buf[:n])
	}
	n, _, err = rx.ReadFromUDP(buf)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(buf[:n], Sync()) {
		t.Errorf("sync packet % x", buf[:n])
	}
}
