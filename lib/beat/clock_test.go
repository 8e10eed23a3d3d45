package beat

import (
	"testing"
	"time"

	"lightwave/lib/osc"
)

func setupClock(t *testing.T) (*Clock, chan osc.Message) {
	t.Helper()
	c := New(Options{}, nil)
	src := make(chan osc.Message, 64)
	c.Start(src)
	t.Cleanup(c.Close)
	return c, src
}

func beats(src chan<- osc.Message, from, to int) {
	for i := from; i < to; i++ {
		src <- osc.NewMessage(DefaultBeatAddr, int32(i))
	}
}

func collect(t *testing.T, ch <-chan uint16, n int) []uint16 {
	t.Helper()
	var out []uint16
	for len(out) < n {
		select {
		case v, ok := <-ch:
			if !ok {
				t.Fatalf("channel closed after %v", out)
			}
			out = append(out, v)
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out after %v", out)
		}
	}
	return out
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestDefaults(t *testing.T) {
	c := New(Options{}, nil)
	if c.BPM() != 120 || c.Beat() != 0 || c.Quantum() != 4 {
		t.Errorf("got bpm=%v beat=%v quantum=%v", c.BPM(), c.Beat(), c.Quantum())
	}
}

func TestTempoMessage(t *testing.T) {
	c, src := setupClock(t)
	src <- osc.NewMessage("/bpm", float32(128))
	waitFor(t, func() bool { return c.BPM() == 128 })

	src <- osc.NewMessage("/bpm", "fast")
	src <- osc.NewMessage("/bpm")
	src <- osc.NewMessage("/bpm", float32(-1))
	src <- osc.NewMessage("/bpm", float32(140))
	waitFor(t, func() bool { return c.BPM() == 140 })
}

func TestBeatWraps(t *testing.T) {
	c := New(Options{}, nil)
	c.handle(osc.NewMessage("/beats", int32(65536+5)))
	if c.Beat() != 5 {
		t.Errorf("Beat() = %d, want 5", c.Beat())
	}
	c.handle(osc.NewMessage("/beats", int32(-1)))
	if c.Beat() != 65535 {
		t.Errorf("Beat() = %d, want 65535", c.Beat())
	}
	c.handle(osc.NewMessage("/beats", float32(3)))
	if c.Beat() != 65535 {
		t.Errorf("malformed beat changed state: %d", c.Beat())
	}
}

func TestSubscribe(t *testing.T) {
	c, src := setupClock(t)
	ch := c.Subscribe()
	beats(src, 0, 5)
	got := collect(t, ch, 5)
	for i, v := range got {
		if v != uint16(i) {
			t.Fatalf("got %v", got)
		}
	}
}

func TestSubscribeDiv(t *testing.T) {
	tests := []struct {
		num, denom uint16
		want       []uint16
	}{
		{1, 1, []uint16{0, 1, 2}},
		{1, 2, []uint16{0, 1, 2, 3, 4}},
		{2, 1, []uint16{0, 1}},
		{1, 8, []uint16{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}},
	}
	for _, tt := range tests {
		c, src := setupClock(t)
		ch := c.SubscribeDiv(tt.num, tt.denom)
		beats(src, 0, 10)
		got := collect(t, ch, len(tt.want))
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("%d/%d: got %v, want %v", tt.num, tt.denom, got, tt.want)
				break
			}
		}
		select {
		case v := <-ch:
			t.Errorf("%d/%d: unexpected extra index %d", tt.num, tt.denom, v)
		case <-time.After(20 * time.Millisecond):
		}
	}
}

func TestSubscribersAgree(t *testing.T) {
	c, src := setupClock(t)
	a := c.SubscribeDiv(1, 1)
	b := c.SubscribeDiv(1, 1)
	// fits in one queue, so nothing is dropped
	beats(src, 4, 4+QueueSize-3)
	ga := collect(t, a, 4)
	gb := collect(t, b, 4)
	for i := range ga {
		if ga[i] != gb[i] {
			t.Fatalf("a=%v b=%v", ga, gb)
		}
	}
	if ga[0] != 1 || ga[3] != 4 {
		t.Errorf("got %v, want [1 2 3 4]", ga)
	}
}

func TestOverflowGapsMatch(t *testing.T) {
	a := &subscriber{queue: make(chan uint16, QueueSize)}
	b := &subscriber{queue: make(chan uint16, QueueSize)}
	const n = 40
	for i := range uint16(n) {
		a.push(i)
		b.push(i)
	}
	if a.lag.Load() != n-QueueSize || b.lag.Load() != n-QueueSize {
		t.Errorf("lag a=%d b=%d, want %d", a.lag.Load(), b.lag.Load(), n-QueueSize)
	}
	for want := uint16(n - QueueSize); want < n; want++ {
		va, vb := <-a.queue, <-b.queue
		if va != want || vb != want {
			t.Fatalf("a=%d b=%d, want %d", va, vb, want)
		}
	}
}

func TestCloseDeliversQueued(t *testing.T) {
	c := New(Options{}, nil)
	ch := c.Subscribe()
	for i := range 10 {
		c.handle(osc.NewMessage("/beats", int32(i)))
	}
	c.Close()

	var got []uint16
	for v := range ch {
		got = append(got, v)
	}
	if len(got) != 10 || got[9] != 9 {
		t.Errorf("got %v after close, want 0..9", got)
	}
}

func TestSlowSubscriberDropsOldest(t *testing.T) {
	c := New(Options{}, nil)
	t.Cleanup(c.Close)
	ch := c.Subscribe()

	const n = 40
	for i := range n {
		c.handle(osc.NewMessage("/beats", int32(i)))
	}

	var got []uint16
	for {
		select {
		case v := <-ch:
			if len(got) > 0 && v <= got[len(got)-1] {
				t.Fatalf("out of order: %v then %d", got, v)
			}
			got = append(got, v)
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out, got %v", got)
		}
		if got[len(got)-1] == n-1 {
			break
		}
	}
	if len(got) >= n {
		t.Errorf("received all %d values, expected drops", len(got))
	}
}

func TestCloseEndsSubscriptions(t *testing.T) {
	c, src := setupClock(t)
	a := c.Subscribe()
	b := c.SubscribeDiv(1, 1)
	close(src)

	select {
	case <-c.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("clock did not close")
	}
	for _, ch := range []<-chan uint16{a, b} {
		select {
		case _, ok := <-ch:
			if ok {
				t.Error("expected closed channel")
			}
		case <-time.After(2 * time.Second):
			t.Fatal("subscription not closed")
		}
	}
	if _, ok := <-c.Subscribe(); ok {
		t.Error("subscribe after close should be closed")
	}
}
