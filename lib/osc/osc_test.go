package osc

import (
	"bytes"
	"net"
	"testing"
	"time"
)

func setupServer(t *testing.T) *Server {
	t.Helper()
	s, err := Listen("127.0.0.1:0", nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func recv(t *testing.T, ch <-chan Message) Message {
	t.Helper()
	select {
	case m, ok := <-ch:
		if !ok {
			t.Fatal("channel closed")
		}
		return m
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
	}
	return Message{}
}

func TestEncodeLayout(t *testing.T) {
	got := NewMessage("/bpm", float32(128)).Encode()
	want := []byte{
		'/', 'b', 'p', 'm', 0, 0, 0, 0,
		',', 'f', 0, 0,
		0x43, 0x00, 0x00, 0x00,
	}
	if !bytes.Equal(got, want) {
		t.Errorf("got % x, want % x", got, want)
	}
}

func TestRoundTrip(t *testing.T) {
	in := NewMessage("/mixed", int32(-7), float32(0.25), "hello", []byte{1, 2, 3}, int64(1<<40), Double(1.5), true, false, nil)
	out, err := Decode(in.Encode())
	if err != nil {
		t.Fatal(err)
	}
	if out.Addr != "/mixed" {
		t.Errorf("addr = %q", out.Addr)
	}
	if len(out.Args) != 9 {
		t.Fatalf("got %d args, want 9: %v", len(out.Args), out.Args)
	}
	if out.Args[0] != int32(-7) {
		t.Errorf("int32 = %v", out.Args[0])
	}
	if out.Args[1] != float32(0.25) {
		t.Errorf("float32 = %v", out.Args[1])
	}
	if out.Args[2] != "hello" {
		t.Errorf("string = %v", out.Args[2])
	}
	if !bytes.Equal(out.Args[3].([]byte), []byte{1, 2, 3}) {
		t.Errorf("blob = %v", out.Args[3])
	}
	if out.Args[4] != int64(1<<40) {
		t.Errorf("int64 = %v", out.Args[4])
	}
	if out.Args[5] != float64(1.5) {
		t.Errorf("float64 = %v", out.Args[5])
	}
	if out.Args[6] != true || out.Args[7] != false || out.Args[8] != nil {
		t.Errorf("TFN = %v %v %v", out.Args[6], out.Args[7], out.Args[8])
	}
}

func TestNoArgs(t *testing.T) {
	out, err := Decode(NewMessage("/beat").Encode())
	if err != nil {
		t.Fatal(err)
	}
	if out.Addr != "/beat" || len(out.Args) != 0 {
		t.Errorf("got %v", out)
	}
}

func TestDecodeErrors(t *testing.T) {
	good := NewMessage("/x", int32(1)).Encode()
	tests := map[string][]byte{
		"short":     {'/', 0},
		"no slash":  []byte("abcd\x00\x00\x00\x00"),
		"truncated": good[:len(good)-2],
	}
	for name, data := range tests {
		if _, err := Decode(data); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestAccessors(t *testing.T) {
	m := NewMessage("/x", float32(2.5), int32(3), "s")
	if f, ok := m.Float(0); !ok || f != 2.5 {
		t.Errorf("Float(0) = %v %v", f, ok)
	}
	if f, ok := m.Float(1); !ok || f != 3 {
		t.Errorf("Float(1) = %v %v", f, ok)
	}
	if _, ok := m.Float(2); ok {
		t.Error("Float(2) accepted a string")
	}
	if _, ok := m.Int(0); ok {
		t.Error("Int(0) accepted a float")
	}
	if i, ok := m.Int(1); !ok || i != 3 {
		t.Errorf("Int(1) = %v %v", i, ok)
	}
	if _, ok := m.Int(5); ok {
		t.Error("Int(5) out of range")
	}
}

func TestBundle(t *testing.T) {
	inner := EncodeBundle(NewMessage("/b", int32(2)))
	data := EncodeBundle(NewMessage("/a", int32(1)))
	data = append(data, 0, 0, 0, byte(len(inner)))
	data = append(data, inner...)

	msgs, err := DecodePacket(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 2 || msgs[0].Addr != "/a" || msgs[1].Addr != "/b" {
		t.Errorf("got %v", msgs)
	}
}

func TestSLIP(t *testing.T) {
	payload := []byte{1, slipEnd, 2, slipEsc, 3}
	framed := slipEncode(payload)
	framed = append(framed, slipEncode([]byte{9})...)

	frame, rest, ok := extractSLIPFrame(framed)
	if !ok || !bytes.Equal(frame, payload) {
		t.Fatalf("frame = % x ok=%v", frame, ok)
	}
	frame, _, ok = extractSLIPFrame(rest)
	if !ok || !bytes.Equal(frame, []byte{9}) {
		t.Fatalf("second frame = % x ok=%v", frame, ok)
	}
}

func TestServerFanOut(t *testing.T) {
	s := setupServer(t)
	a := s.Subscribe(4)
	b := s.Subscribe(4)

	if err := s.SendTo(s.Addr().String(), NewMessage("/beats", int32(5))); err != nil {
		t.Fatal(err)
	}
	for _, ch := range []<-chan Message{a, b} {
		m := recv(t, ch)
		if i, ok := m.Int(0); m.Addr != "/beats" || !ok || i != 5 {
			t.Errorf("got %v", m)
		}
	}
}

func TestServerDropsWhenFull(t *testing.T) {
	s := setupServer(t)
	slow := s.Subscribe(1)
	fast := s.Subscribe(8)

	for i := range 3 {
		if err := s.SendTo(s.Addr().String(), NewMessage("/n", int32(i))); err != nil {
			t.Fatal(err)
		}
		recv(t, fast)
	}
	m := recv(t, slow)
	if i, _ := m.Int(0); i != 0 {
		t.Errorf("slow subscriber got %v, want first message", m)
	}
	if s.Dropped() != 2 {
		t.Errorf("Dropped() = %d, want 2", s.Dropped())
	}
}

func TestServerCloseClosesSubscribers(t *testing.T) {
	s, err := Listen("127.0.0.1:0", nil)
	if err != nil {
		t.Fatal(err)
	}
	ch := s.Subscribe(1)
	s.Close()
	select {
	case _, ok := <-ch:
		if ok {
			t.Error("expected closed channel")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("subscriber not closed")
	}
	late := s.Subscribe(1)
	if _, ok := <-late; ok {
		t.Error("subscribe after close should return a closed channel")
	}
}

func TestServeStream(t *testing.T) {
	s := setupServer(t)
	ch := s.Subscribe(4)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	go s.ServeStream(ln)

	conn, err := net.Dial("tcp", ln.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := WriteStream(conn, NewMessage("/vdj/bpm", float32(174))); err != nil {
		t.Fatal(err)
	}
	m := recv(t, ch)
	if f, _ := m.Float(0); m.Addr != "/vdj/bpm" || f != 174 {
		t.Errorf("got %v", m)
	}
}

func TestStreamOversizedFrameDropped(t *testing.T) {
	s := setupServer(t)
	ch := s.Subscribe(4)

	junk := bytes.Repeat([]byte{'a'}, 4096)
	var buf []byte
	for range MaxStreamFrame/len(junk) + 2 {
		buf = s.feedStream(buf, junk, "test")
		if len(buf) > MaxStreamFrame {
			t.Fatalf("buffer grew to %d", len(buf))
		}
	}

	s.feedStream(buf, append(junk, slipEncode(NewMessage("/vdj/time", float32(2)).Encode())...), "test")
	m := recv(t, ch)
	if f, _ := m.Float(0); m.Addr != "/vdj/time" || f != 2 {
		t.Errorf("got %v", m)
	}
}
