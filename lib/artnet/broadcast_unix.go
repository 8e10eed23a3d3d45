//go:build unix

package artnet

import (
	"errors"

	"golang.org/x/sys/unix"
)

func (s *Sender) enableBroadcast() error {
	raw, err := s.conn.SyscallConn()
	if err != nil {
		return err
	}
	var serr error
	err = raw.Control(func(fd uintptr) {
		serr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_BROADCAST, 1)
	})
	return errors.Join(err, serr)
}
