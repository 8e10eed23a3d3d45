package dmx

import "fmt"

// UniverseSize is the largest payload a single DMX512 universe carries.
const UniverseSize = 512

// Device is a fixture that occupies a contiguous block of channels.
// Encode writes exactly Size() bytes starting at buf[0]; bytes the device
// does not drive are left at zero.
type Device interface {
	Size() int
	Encode(buf []byte)
}

// Universe is a frame of DMX channel values. Addresses are 1-based as they
// are printed on fixtures.
type Universe struct {
	data []byte
}

func NewUniverse(size int) *Universe {
	if size <= 0 || size > UniverseSize {
		panic(fmt.Sprintf("dmx: universe size %d out of range", size))
	}
	return &Universe{data: make([]byte, size)}
}

func (u *Universe) Len() int      { return len(u.data) }
func (u *Universe) Bytes() []byte { return u.data }

func (u *Universe) Clear() {
	clear(u.data)
}

// Put encodes d at the 1-based start address.
func (u *Universe) Put(addr int, d Device) {
	n := d.Size()
	if addr < 1 || addr-1+n > len(u.data) {
		panic(fmt.Sprintf("dmx: device of size %d at %d overflows universe of %d", n, addr, len(u.data)))
	}
	d.Encode(u.data[addr-1 : addr-1+n])
}

// Block checks that buf can hold a device of size n and zeroes it.
func Block(buf []byte, n int) []byte {
	if len(buf) < n {
		panic(fmt.Sprintf("dmx: buffer of %d bytes, device needs %d", len(buf), n))
	}
	b := buf[:n]
	clear(b)
	return b
}
