// Package beat tracks the shared tempo and beat counter received from the
// DJ software and distributes beat indices to subscribers.
package beat

import (
	"log/slog"
	"math"
	"sync"
	"sync/atomic"

	"lightwave/lib/osc"
)

const (
	DefaultQuantum   = 4
	DefaultBPM       = 120
	DefaultTempoAddr = "/bpm"
	DefaultBeatAddr  = "/beats"

	// QueueSize bounds how many undelivered indices each subscriber holds
	// before the oldest are discarded.
	QueueSize = 16
)

type Options struct {
	Quantum   uint16
	BPM       float64
	TempoAddr string
	BeatAddr  string
}

// Clock holds the current tempo and beat. Reads are lock-free and safe from
// any goroutine; only the listener started by Start writes the beat.
type Clock struct {
	log       *slog.Logger
	quantum   uint16
	tempoAddr string
	beatAddr  string

	bpm  atomic.Uint64
	beat atomic.Uint32

	mu     sync.Mutex
	subs   []*subscriber
	closed bool
	done   chan struct{}
}

func New(opts Options, log *slog.Logger) *Clock {
	if opts.Quantum == 0 {
		opts.Quantum = DefaultQuantum
	}
	if opts.BPM <= 0 {
		opts.BPM = DefaultBPM
	}
	if opts.TempoAddr == "" {
		opts.TempoAddr = DefaultTempoAddr
	}
	if opts.BeatAddr == "" {
		opts.BeatAddr = DefaultBeatAddr
	}
	if log == nil {
		log = slog.Default()
	}
	c := &Clock{
		log:       log.With("component", "beat"),
		quantum:   opts.Quantum,
		tempoAddr: opts.TempoAddr,
		beatAddr:  opts.BeatAddr,
		done:      make(chan struct{}),
	}
	c.SetBPM(opts.BPM)
	return c
}

func (c *Clock) Quantum() uint16 { return c.quantum }

func (c *Clock) BPM() float64 {
	return math.Float64frombits(c.bpm.Load())
}

func (c *Clock) SetBPM(bpm float64) {
	c.bpm.Store(math.Float64bits(bpm))
}

func (c *Clock) Beat() uint16 {
	return uint16(c.beat.Load())
}

// Done is closed when the clock stops publishing.
func (c *Clock) Done() <-chan struct{} {
	return c.done
}

// Start consumes src in a background goroutine until src is closed, at
// which point the clock closes and every subscription ends.
func (c *Clock) Start(src <-chan osc.Message) {
	go func() {
		for msg := range src {
			c.handle(msg)
		}
		c.log.Error("tempo source closed")
		c.Close()
	}()
}

func (c *Clock) handle(msg osc.Message) {
	switch msg.Addr {
	case c.tempoAddr:
		bpm, ok := msg.Float(0)
		if !ok || bpm <= 0 || math.IsNaN(bpm) || math.IsInf(bpm, 0) {
			c.log.Warn("invalid tempo message", "addr", msg.Addr, "args", msg.Args)
			return
		}
		c.log.Debug("bpm", "bpm", bpm)
		c.SetBPM(bpm)
	case c.beatAddr:
		i, ok := msg.Int(0)
		if !ok {
			c.log.Warn("invalid beat message", "addr", msg.Addr, "args", msg.Args)
			return
		}
		n := wrap(i)
		c.beat.Store(uint32(n))
		c.publish(n)
	}
}

func wrap(i int64) uint16 {
	const m = 1 << 16
	return uint16(((i % m) + m) % m)
}

func (c *Clock) publish(n uint16) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	for _, s := range c.subs {
		s.push(n)
	}
}

// Close stops publishing. Each subscription hands its queued indices to its
// channel buffer and then closes; indices that do not fit a stalled
// reader's full buffer are discarded.
func (c *Clock) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	for _, s := range c.subs {
		close(s.queue)
	}
	c.subs = nil
	close(c.done)
}

// Subscribe returns a channel receiving every published beat index.
func (c *Clock) Subscribe() <-chan uint16 {
	return c.subscribe("beat", func(i uint16) (uint16, bool) { return i, true })
}

// SubscribeDiv returns a channel that fires on every beat index divisible
// by quantum*num/denom, delivering the quotient. A subdivision shorter than
// one beat fires on every beat.
func (c *Clock) SubscribeDiv(num, denom uint16) <-chan uint16 {
	div := uint16(1)
	if denom != 0 {
		div = uint16(uint32(c.quantum) * uint32(num) / uint32(denom))
	}
	if div == 0 {
		c.log.Warn("subdivision below one beat, using 1", "num", num, "denom", denom)
		div = 1
	}
	return c.subscribe("beat_div", func(i uint16) (uint16, bool) {
		if i%div != 0 {
			return 0, false
		}
		return i / div, true
	})
}

func (c *Clock) subscribe(name string, fn func(uint16) (uint16, bool)) <-chan uint16 {
	s := &subscriber{queue: make(chan uint16, QueueSize)}
	out := make(chan uint16, QueueSize)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		close(out)
		return out
	}
	c.subs = append(c.subs, s)
	c.mu.Unlock()

	go c.relay(name, s, fn, out)
	return out
}

func (c *Clock) relay(name string, s *subscriber, fn func(uint16) (uint16, bool), out chan<- uint16) {
	defer close(out)
	for i := range s.queue {
		if n := s.lag.Swap(0); n > 0 {
			c.log.Warn("subscriber lagged", "subscription", name, "skipped", n)
		}
		v, ok := fn(i)
		if !ok {
			continue
		}
		select {
		case out <- v:
			continue
		default:
		}
		select {
		case out <- v:
		case <-c.done:
			c.flush(name, s, fn, out, 1)
			return
		}
	}
}

// flush moves what is left in s into out without blocking. dropped counts
// values the caller already failed to deliver.
func (c *Clock) flush(name string, s *subscriber, fn func(uint16) (uint16, bool), out chan<- uint16, dropped int) {
	for i := range s.queue {
		v, ok := fn(i)
		if !ok {
			continue
		}
		select {
		case out <- v:
		default:
			dropped++
		}
	}
	if dropped > 0 {
		c.log.Warn("subscriber closed with undelivered beats", "subscription", name, "dropped", dropped)
	}
}

// subscriber is a bounded queue between the publisher and a relay. When it
// is full the oldest entry is discarded so the publisher never waits.
type subscriber struct {
	queue chan uint16
	lag   atomic.Uint64
}

func (s *subscriber) push(v uint16) {
	for {
		select {
		case s.queue <- v:
			return
		default:
		}
		select {
		case <-s.queue:
			s.lag.Add(1)
		default:
		}
	}
}
