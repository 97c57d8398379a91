//go:build linux

package feed

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// nmeaBauds are the rates seen on instrument buses: 4800 is the
// NMEA-0183 standard rate, 38400 the high-speed variant used by AIS,
// the rest show up on USB multiplexers.
var nmeaBauds = map[int]uint32{
	4800:   unix.B4800,
	9600:   unix.B9600,
	19200:  unix.B19200,
	38400:  unix.B38400,
	57600:  unix.B57600,
	115200: unix.B115200,
}

// openSerial puts the port into raw 8N1 mode at the requested rate.
func openSerial(path string, baud int) (*os.File, error) {
	spd, ok := nmeaBauds[baud]
	if !ok {
		return nil, fmt.Errorf("serial: unsupported baud %d", baud)
	}

	fd, err := unix.Open(path, unix.O_RDWR|unix.O_NOCTTY, 0)
	if err != nil {
		return nil, fmt.Errorf("serial: open %s: %w", path, err)
	}

	t, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("serial: termios get: %w", err)
	}

	// Raw input; sentences arrive as plain ASCII lines and the scanner
	// downstream does the splitting.
	t.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.PARMRK | unix.ISTRIP | unix.INLCR | unix.IGNCR | unix.ICRNL | unix.IXON
	t.Oflag &^= unix.OPOST
	t.Lflag &^= unix.ECHO | unix.ECHONL | unix.ICANON | unix.ISIG | unix.IEXTEN

	// 8N1.
	t.Cflag &^= unix.CSIZE | unix.PARENB
	t.Cflag |= unix.CS8

	// Block for the first byte, give up after a second of silence so a
	// dead instrument surfaces as short reads instead of a hang.
	t.Cc[unix.VMIN] = 1
	t.Cc[unix.VTIME] = 10

	t.Cflag &^= unix.CBAUD
	t.Cflag |= spd
	t.Ispeed = spd
	t.Ospeed = spd

	if err := unix.IoctlSetTermios(fd, unix.TCSETS, t); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("serial: termios set: %w", err)
	}

	return os.NewFile(uintptr(fd), path), nil
}
