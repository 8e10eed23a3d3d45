//go:build !unix

package artnet

// Sockets on these platforms may broadcast without an explicit option.
func (s *Sender) enableBroadcast() error { return nil }
